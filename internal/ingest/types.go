// Package ingest holds the shared domain types and collaborator interfaces for
// the adaptive job-posting ingestion pipeline. Keeping them in one place lets
// the drift analyzer, scheduler and crawl engine share a vocabulary without
// importing each other.
package ingest

import (
	"errors"
	"strings"
	"time"
)

// Priority is the crawl priority tier assigned to a job category.
type Priority string

// Priority tiers, ordered from most to least crawl coverage.
const (
	PriorityHigh   Priority = "High"
	PriorityMedium Priority = "Medium"
	PriorityLow    Priority = "Low"

	// PriorityNone is the comparison value for a category that has no active
	// policy yet. It is never written to the policy table.
	PriorityNone Priority = "None"
)

// Valid reports whether p is a tier that can be persisted.
func (p Priority) Valid() bool {
	switch p {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return true
	default:
		return false
	}
}

// StopReason records why a crawl run terminated.
type StopReason string

// Terminal run states. Running is the initial, non-terminal state.
const (
	RunRunning          StopReason = "running"
	RunCompleted        StopReason = "completed"
	RunStoppedAPILimit  StopReason = "api_limit_reached"
	RunStoppedQuota     StopReason = "quota_exceeded"
	RunStoppedRateLimit StopReason = "rate_limited"
)

// Terminal reports whether the run may issue further API calls.
func (r StopReason) Terminal() bool {
	return r != RunRunning
}

// Sentinel errors used to classify provider failures. The search client wraps
// provider responses in these; the engine only ever checks errors.Is.
var (
	// ErrQuotaExceeded signals the provider account has no searches remaining.
	ErrQuotaExceeded = errors.New("search quota exceeded")
	// ErrRateLimited signals the provider rejected the call with a rate limit.
	ErrRateLimited = errors.New("search rate limited")
)

// PolicyRecord is one row of the SCD2 ingestion policy history.
type PolicyRecord struct {
	Category      string
	Priority      Priority
	EffectiveFrom time.Time
	// EffectiveTo is nil while the record is the active policy for its category.
	EffectiveTo *time.Time
	Reason      string
}

// CategoryCount is one bucket of the target store's category distribution.
type CategoryCount struct {
	Category string
	Count    int64
}

// JobTitleEntry pairs a crawlable job title with its resolved priority tier.
type JobTitleEntry struct {
	JobTitle string
	Priority Priority
}

// WorkItem is one (job title, location) unit of the crawl plan.
type WorkItem struct {
	JobTitle string
	Location string
	Priority Priority
}

// SearchPage is one page of provider results.
type SearchPage struct {
	// Payload is the raw provider response body, persisted verbatim.
	Payload []byte
	// Results is the number of job postings carried by the page.
	Results int
	// NextToken is the continuation token for the following page, empty when
	// this is the last page for the query.
	NextToken string
}

// CrawlRun is the mutable per-invocation accounting object. The engine is its
// single writer; it replaces the original design's package-level counters.
type CrawlRun struct {
	RunID        string
	BatchID      string
	APICallsMade int
	JobsFetched  int
	StopReason   StopReason
	StartedAt    time.Time
	EndedAt      time.Time
}

// Summary freezes the run into the telemetry record handed to RunSinks.
func (r *CrawlRun) Summary() RunSummary {
	return RunSummary{
		RunID:        r.RunID,
		BatchID:      r.BatchID,
		StopReason:   r.StopReason,
		APICallsMade: r.APICallsMade,
		JobsFetched:  r.JobsFetched,
		StartedAt:    r.StartedAt,
		EndedAt:      r.EndedAt,
	}
}

// RunSummary is the immutable end-of-run telemetry record.
type RunSummary struct {
	RunID        string     `json:"run_id"`
	BatchID      string     `json:"batch_id"`
	StopReason   StopReason `json:"stop_reason"`
	APICallsMade int        `json:"api_calls_made"`
	JobsFetched  int        `json:"jobs_fetched"`
	StartedAt    time.Time  `json:"started_at"`
	EndedAt      time.Time  `json:"ended_at"`
}

// Duration returns the wall-clock span of the run.
func (s RunSummary) Duration() time.Duration {
	return s.EndedAt.Sub(s.StartedAt)
}

var filenameReplacer = strings.NewReplacer(
	" ", "_",
	",", "",
	"/", "_",
	"\\", "_",
)

// SafeFilename normalizes a job title or location for use in artifact names:
// spaces become underscores, commas are dropped, slashes become underscores.
func SafeFilename(text string) string {
	return filenameReplacer.Replace(text)
}

// RunMonth formats t as the YYYY-MM batch identifier partitioning artifacts
// and telemetry.
func RunMonth(t time.Time) string {
	return t.Format("2006-01")
}
