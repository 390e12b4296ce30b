// Package metrics exposes Prometheus instrumentation for feed loading and
// markup binding.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	FetchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hxfeed_fetches_total",
			Help: "Feed requests by transport and outcome",
		},
		[]string{"transport", "outcome"},
	)

	FetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "hxfeed_fetch_duration_seconds",
			Help:    "Duration of feed requests",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"transport"},
	)

	StaleResponsesDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "hxfeed_stale_responses_dropped_total",
			Help: "Responses discarded because a newer request superseded them",
		},
	)

	EntriesRendered = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "hxfeed_entries_rendered_total",
			Help: "Entries rendered into feed containers",
		},
	)

	EvaluationErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hxfeed_evaluation_errors_total",
			Help: "Attribute expressions that failed to evaluate, by context",
		},
		[]string{"context"},
	)
)

// Outcome labels for FetchesTotal.
const (
	OutcomeOK       = "ok"
	OutcomeError    = "error"
	OutcomeCanceled = "canceled"
	OutcomeRejected = "rejected"
)
