package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP Metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameHTTPRequestsTotal,
			Help: HelpTextHTTPRequestsTotal,
		},
		[]string{LabelMethod, LabelPath, LabelStatus},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    MetricNameHTTPRequestDuration,
			Help:    HelpTextHTTPRequestDuration,
			Buckets: prometheus.DefBuckets,
		},
		[]string{LabelMethod, LabelPath},
	)
)

// Finalization Metrics
var (
	FinalizationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameFinalizationsTotal,
			Help: HelpTextFinalizationsTotal,
		},
		[]string{LabelKind, LabelOutcome},
	)

	ClosesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameClosesTotal,
			Help: HelpTextClosesTotal,
		},
		[]string{LabelOutcome},
	)

	SelectionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    MetricNameSelectionDuration,
			Help:    HelpTextSelectionDuration,
			Buckets: SelectionLatencyBuckets,
		},
		[]string{LabelKind},
	)
)

// Notification Metrics
var (
	NotificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameNotificationsTotal,
			Help: HelpTextNotificationsTotal,
		},
		[]string{LabelKind, LabelOutcome},
	)

	NotificationQueueLength = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: MetricNameNotificationQueueLen,
			Help: HelpTextNotificationQueueLen,
		},
	)
)
