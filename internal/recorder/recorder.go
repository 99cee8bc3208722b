// Package recorder fans the end-of-run telemetry record out to configured
// sinks. The engine calls it exactly once per run, aborts included.
package recorder

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/talentlens/jobcrawler/internal/ingest"
)

// Recorder delivers one RunSummary to every sink. A failing sink does not
// prevent delivery to the others; failures are joined into one error.
type Recorder struct {
	sinks []ingest.RunSink

	mu   sync.Mutex
	last *ingest.RunSummary
}

// New constructs a Recorder over the given sinks.
func New(sinks ...ingest.RunSink) *Recorder {
	return &Recorder{sinks: sinks}
}

// Record delivers the summary to all sinks and remembers it for /v1/runs/last.
func (r *Recorder) Record(ctx context.Context, summary ingest.RunSummary) error {
	r.mu.Lock()
	s := summary
	r.last = &s
	r.mu.Unlock()

	var errs []error
	for _, sink := range r.sinks {
		if err := sink.Record(ctx, summary); err != nil {
			errs = append(errs, fmt.Errorf("run sink: %w", err))
		}
	}
	return errors.Join(errs...)
}

// Last returns the most recently recorded summary, or false before any run.
func (r *Recorder) Last() (ingest.RunSummary, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.last == nil {
		return ingest.RunSummary{}, false
	}
	return *r.last, true
}
