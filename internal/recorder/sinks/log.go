// Package sinks provides RunSink implementations.
package sinks

import (
	"context"

	"go.uber.org/zap"

	"github.com/talentlens/jobcrawler/internal/ingest"
)

// LogSink emits one structured log line per run summary. It is the sink of
// last resort when no durable telemetry backend is configured.
type LogSink struct {
	logger *zap.Logger
}

// NewLogSink wires a zap logger to the RunSink interface.
func NewLogSink(logger *zap.Logger) *LogSink {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogSink{logger: logger}
}

// Record logs the summary with structured fields.
func (s *LogSink) Record(_ context.Context, summary ingest.RunSummary) error {
	s.logger.Info("run summary",
		zap.String("run_id", summary.RunID),
		zap.String("batch_id", summary.BatchID),
		zap.String("stop_reason", string(summary.StopReason)),
		zap.Int("api_calls_made", summary.APICallsMade),
		zap.Int("jobs_fetched", summary.JobsFetched),
		zap.Duration("duration", summary.Duration()),
	)
	return nil
}
