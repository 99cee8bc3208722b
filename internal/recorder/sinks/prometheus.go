package sinks

import (
	"context"

	"github.com/talentlens/jobcrawler/internal/ingest"
	"github.com/talentlens/jobcrawler/internal/telemetry"
)

// PrometheusSink exports run summaries to the Prometheus collectors. The
// engine feeds the per-call counters; run-level metrics land here so each
// finished run is counted exactly once.
type PrometheusSink struct{}

// NewPrometheusSink registers the collectors and returns the sink.
func NewPrometheusSink() *PrometheusSink {
	telemetry.Init()
	return &PrometheusSink{}
}

// Record updates the run-level collectors.
func (PrometheusSink) Record(_ context.Context, summary ingest.RunSummary) error {
	telemetry.RunFinished(string(summary.StopReason), summary.Duration())
	return nil
}
