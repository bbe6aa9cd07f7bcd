package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	"contestdraw/config"
	_ "contestdraw/docs"
	"contestdraw/internal/adapters/auth"
	"contestdraw/internal/adapters/email"
	deliveryhttp "contestdraw/internal/delivery/http"
	"contestdraw/internal/delivery/http/controllers"
	"contestdraw/internal/delivery/http/middleware"
	"contestdraw/internal/metrics"
	"contestdraw/internal/notification"
	"contestdraw/internal/repository/postgres"
	"contestdraw/internal/scheduler"
	"contestdraw/internal/services"
)

// @title Contest Draw API
// @version 1.0
// @description Closes events, selects winners and exposes the audit trail of every selection.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	logger := config.NewLogger()

	db, err := sql.Open("postgres", cfg.DBUrl)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()
	pingCtx, cancelPing := context.WithTimeout(context.Background(), cfg.ContextTimeout)
	if err := db.PingContext(pingCtx); err != nil {
		cancelPing()
		log.Fatalf("failed to reach database: %v", err)
	}
	cancelPing()

	registry := services.NewSelectorRegistry(services.DefaultSelectors()...)
	if err := registry.CheckComplete(); err != nil {
		log.Fatalf("selector registry: %v", err)
	}

	mailer, err := email.NewMailer(email.MailerConfig{
		Provider:    cfg.EmailProvider,
		FromAddress: cfg.EmailFromAddress,
		FromName:    cfg.EmailFromName,
		ReplyTo:     cfg.EmailReplyTo,
		SES: email.SESConfig{
			Region:             cfg.AWSRegion,
			AccessKeyID:        cfg.AWSAccessKeyID,
			SecretAccessKey:    cfg.AWSSecretAccessKey,
			InsecureSkipVerify: cfg.SESInsecureSkipVerify,
			ConfigurationSet:   cfg.SESConfigurationSet,
		},
	}, logger)
	if err != nil {
		log.Fatalf("failed to create mailer: %v", err)
	}
	notifier := services.NewEmailNotifier(mailer, email.NewTemplateRenderer(), logger)
	dispatcher := notification.NewDispatcher(notifier, logger, notification.Options{
		Workers:   cfg.NotifyWorkers,
		QueueSize: cfg.NotifyQueueSize,
		Timeout:   cfg.NotifyTimeout,
	})
	dispatcher.Start()

	finalizationService := services.NewFinalizationService(
		postgres.NewEventRepository(db),
		postgres.NewEntryRepository(db),
		postgres.NewAuditRepository(db),
		postgres.NewUserRepository(db),
		registry,
		dispatcher,
		logger,
		cfg.ContextTimeout,
	)

	sched := scheduler.New(logger)
	sched.Schedule(cfg.CloseSweepInterval, scheduler.JobFunc{
		JobName: "close_expired_events",
		Fn: func(ctx context.Context) error {
			n, err := finalizationService.CloseExpired(ctx, time.Now())
			if n > 0 {
				logger.Info("closed expired events", "count", n)
			}
			return err
		},
	})

	controller := controllers.NewFinalizationController(logger, finalizationService)
	router := deliveryhttp.NewRouter(controller, auth.NewJWTVerifier(cfg.JWTSecret), logger)
	handler := middleware.CORS(cfg.CORSAllowedOrigins, middleware.LoggingMiddleware(logger, metrics.Middleware(router)))

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("server starting", "port", cfg.Port, "env", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server failed: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown", "err", err)
	}
	sched.Stop()
	if err := dispatcher.Stop(shutdownCtx); err != nil {
		logger.Error("notification shutdown", "err", err)
	}
}
