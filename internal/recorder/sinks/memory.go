package sinks

import (
	"context"
	"sync"

	"github.com/talentlens/jobcrawler/internal/ingest"
)

// MemorySink keeps recorded summaries in memory for tests and dry runs.
type MemorySink struct {
	mu        sync.Mutex
	summaries []ingest.RunSummary
	err       error
}

// NewMemorySink creates an empty MemorySink.
func NewMemorySink() *MemorySink {
	return &MemorySink{}
}

// Record appends the summary, or returns the injected error.
func (s *MemorySink) Record(_ context.Context, summary ingest.RunSummary) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.summaries = append(s.summaries, summary)
	return nil
}

// Summaries returns a copy of everything recorded so far.
func (s *MemorySink) Summaries() []ingest.RunSummary {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]ingest.RunSummary, len(s.summaries))
	copy(out, s.summaries)
	return out
}

// FailWith makes subsequent Record calls return err.
func (s *MemorySink) FailWith(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}
