package metrics

// Metric names
const (
	MetricNameHTTPRequestsTotal    = "contestdraw_http_requests_total"
	MetricNameHTTPRequestDuration  = "contestdraw_http_request_duration_seconds"
	MetricNameFinalizationsTotal   = "contestdraw_finalizations_total"
	MetricNameClosesTotal          = "contestdraw_closes_total"
	MetricNameSelectionDuration    = "contestdraw_selection_duration_seconds"
	MetricNameNotificationsTotal   = "contestdraw_notifications_total"
	MetricNameNotificationQueueLen = "contestdraw_notification_queue_length"
)

// Help text
const (
	HelpTextHTTPRequestsTotal    = "Total number of HTTP requests"
	HelpTextHTTPRequestDuration  = "HTTP request latency in seconds"
	HelpTextFinalizationsTotal   = "Finalization attempts by event kind and outcome"
	HelpTextClosesTotal          = "Close attempts by outcome"
	HelpTextSelectionDuration    = "Time spent running a winner selection"
	HelpTextNotificationsTotal   = "Notifications by message kind and outcome"
	HelpTextNotificationQueueLen = "Notifications waiting to be delivered"
)

// Labels
const (
	LabelMethod  = "method"
	LabelPath    = "path"
	LabelStatus  = "status"
	LabelKind    = "kind"
	LabelOutcome = "outcome"
)

// Outcome label values
const (
	OutcomeSuccess  = "success"
	OutcomeError    = "error"
	OutcomeNoop     = "noop"
	OutcomeSent     = "sent"
	OutcomeFailed   = "failed"
	OutcomeDropped  = "dropped"
	OutcomeConflict = "conflict"
)

// SelectionLatencyBuckets covers in-memory selections over rosters up to a few hundred thousand entries.
var SelectionLatencyBuckets = []float64{.0001, .0005, .001, .005, .01, .05, .1, .5, 1}
