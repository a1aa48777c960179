package observability

import "github.com/prometheus/client_golang/prometheus"

var (
	// TurnsTotal counts processed turns by result kind
	// (onboarding, wellness, fallback) and fallback reason.
	TurnsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "checkin_turns_total",
			Help: "Processed chat turns by result kind.",
		},
		[]string{"kind", "reason"},
	)

	// ExtractorDuration observes language-model latency per schema.
	ExtractorDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "checkin_extractor_duration_seconds",
			Help:    "Duration of language-model calls in seconds.",
			Buckets: []float64{0.25, 0.5, 1, 2, 4, 8, 15, 30, 60},
		},
		[]string{"schema", "outcome"},
	)

	// AlertsCreated counts alerts created by type.
	AlertsCreated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "checkin_alerts_created_total",
			Help: "Alerts created by the turn pipeline.",
		},
		[]string{"type"},
	)

	// AlertTransitions counts status updates by outcome code.
	AlertTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "checkin_alert_status_updates_total",
			Help: "Alert status update attempts by result code.",
		},
		[]string{"code"},
	)

	// InsightsCreated counts archived insights by scope.
	InsightsCreated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "checkin_insights_created_total",
			Help: "Insights produced by rollups.",
		},
		[]string{"scope"},
	)

	// RollupFailures counts isolated per-team and per-club rollup failures.
	RollupFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "checkin_rollup_failures_total",
			Help: "Rollup failures isolated to one team or club.",
		},
		[]string{"scope"},
	)

	// BackgroundTasks counts worker-pool tasks by name and outcome
	// (ok, error, panic, dropped).
	BackgroundTasks = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "checkin_background_tasks_total",
			Help: "Background tasks by outcome.",
		},
		[]string{"task", "outcome"},
	)

	// PushSends counts notification multicasts by outcome.
	PushSends = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "checkin_push_sends_total",
			Help: "Push notification sends by outcome.",
		},
		[]string{"outcome"},
	)
)

func init() {
	prometheus.MustRegister(
		TurnsTotal,
		ExtractorDuration,
		AlertsCreated,
		AlertTransitions,
		InsightsCreated,
		RollupFailures,
		BackgroundTasks,
		PushSends,
	)
}
