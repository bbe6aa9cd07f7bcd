package http

import (
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"contestdraw/internal/delivery/http/controllers"
	"contestdraw/internal/delivery/http/middleware"
	"contestdraw/internal/domain"
)

// NewRouter initializes the HTTP router with all application routes
func NewRouter(finalizationController *controllers.FinalizationController, verifier domain.TokenVerifier, logger *slog.Logger) *http.ServeMux {
	mux := http.NewServeMux()
	auth := middleware.RequireAuth(verifier, logger)

	// Event lifecycle
	mux.HandleFunc("POST /events/{eventID}/close", auth(finalizationController.CloseEvent))
	mux.HandleFunc("POST /events/{eventID}/finalize", auth(finalizationController.FinalizeEvent))

	// Audit
	mux.HandleFunc("GET /events/{eventID}/audit", auth(finalizationController.ListAuditActions))
	mux.HandleFunc("GET /audit/actions/{actionID}/replay", auth(finalizationController.ReplayAuditAction))

	// Ops
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return mux
}
