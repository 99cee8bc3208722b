// Package telemetry exposes Prometheus collectors for the ingestion service.
package telemetry

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ingestAPICallsTotal          prometheus.Counter
	ingestJobsFetchedTotal       prometheus.Counter
	ingestRunsTotal              *prometheus.CounterVec
	ingestRunDurationSeconds     prometheus.Histogram
	ingestPolicyTransitionsTotal *prometheus.CounterVec
	searchRequestDuration        *prometheus.HistogramVec

	once sync.Once
)

// Init registers the Prometheus collectors. Safe to call multiple times.
func Init() {
	once.Do(func() {
		ingestAPICallsTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "ingest_api_calls_total",
				Help: "Total external search API calls issued.",
			},
		)

		ingestJobsFetchedTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "ingest_jobs_fetched_total",
				Help: "Total job postings fetched across all runs.",
			},
		)

		ingestRunsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ingest_runs_total",
				Help: "Total crawl runs, labeled by stop reason.",
			},
			[]string{"stop_reason"},
		)

		ingestRunDurationSeconds = promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "ingest_run_duration_seconds",
				Help:    "Histogram of crawl run wall-clock durations.",
				Buckets: []float64{1, 5, 15, 60, 300, 900, 3600},
			},
		)

		ingestPolicyTransitionsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ingest_policy_transitions_total",
				Help: "Total policy tier transitions, labeled by from and to tier.",
			},
			[]string{"from", "to"},
		)

		searchRequestDuration = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ingest_search_request_duration_seconds",
				Help:    "Histogram of search API request latencies, labeled by outcome.",
				Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
			},
			[]string{"outcome"},
		)
	})
}

// APICall increments the API call counter.
func APICall() {
	if ingestAPICallsTotal == nil {
		return
	}
	ingestAPICallsTotal.Inc()
}

// JobsFetched adds n fetched postings.
func JobsFetched(n int) {
	if ingestJobsFetchedTotal == nil || n <= 0 {
		return
	}
	ingestJobsFetchedTotal.Add(float64(n))
}

// RunFinished records a run's stop reason and duration.
func RunFinished(stopReason string, duration time.Duration) {
	if ingestRunsTotal == nil {
		return
	}
	ingestRunsTotal.WithLabelValues(stopReason).Inc()
	ingestRunDurationSeconds.Observe(duration.Seconds())
}

// PolicyTransition records one policy tier change.
func PolicyTransition(from, to string) {
	if ingestPolicyTransitionsTotal == nil {
		return
	}
	ingestPolicyTransitionsTotal.WithLabelValues(from, to).Inc()
}

// ObserveSearchRequest records one search call's latency and outcome.
func ObserveSearchRequest(outcome string, duration time.Duration) {
	if searchRequestDuration == nil {
		return
	}
	searchRequestDuration.WithLabelValues(outcome).Observe(duration.Seconds())
}
