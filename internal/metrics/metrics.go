package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Logins counts login attempts by outcome (ok, invalid, no_menu).
	Logins = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "abdig",
		Name:      "logins_total",
		Help:      "Login attempts by outcome.",
	}, []string{"outcome"})

	// RecordsAppended counts attendance records added by source (clock_in, roll_call).
	RecordsAppended = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "abdig",
		Name:      "attendance_records_appended_total",
		Help:      "Attendance records appended to the journal.",
	}, []string{"source"})

	// NavigationRejected counts navigation attempts to views outside the role menu.
	NavigationRejected = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "abdig",
		Name:      "navigation_rejected_total",
		Help:      "Navigation attempts rejected because the view is not in the role menu.",
	})

	// Summaries counts summary jobs by outcome (requested, applied, discarded, expired).
	Summaries = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "abdig",
		Name:      "report_summaries_total",
		Help:      "AI summary jobs by outcome.",
	}, []string{"outcome"})

	// HTTPDuration observes request latency by route and status code.
	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "abdig",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route", "code"})
)
