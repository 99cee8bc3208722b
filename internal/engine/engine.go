// Package engine executes the crawl plan against the external search API
// under a global call budget.
package engine

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/talentlens/jobcrawler/internal/ingest"
	"github.com/talentlens/jobcrawler/internal/telemetry"
)

// Config bounds one engine run.
type Config struct {
	// MaxAPICalls is the local per-run call budget, checked before every call.
	MaxAPICalls int
	// BatchID partitions artifacts and telemetry (typically the run month).
	BatchID string
}

// Engine walks the flat work-item plan sequentially. The run's StopReason is
// the single shared cancellation signal: once any loop level sets a terminal
// reason, every level observes it and no further API call is issued. All
// counters live on the CrawlRun the engine owns for the duration of Run; there
// is no package-level state.
type Engine struct {
	search    ingest.SearchClient
	artifacts ingest.ArtifactSink
	recorder  ingest.RunSink
	clock     ingest.Clock
	ids       ingest.IDGenerator
	cfg       Config
	logger    *zap.Logger
}

// New constructs an Engine.
func New(
	search ingest.SearchClient,
	artifacts ingest.ArtifactSink,
	recorder ingest.RunSink,
	clock ingest.Clock,
	ids ingest.IDGenerator,
	cfg Config,
	logger *zap.Logger,
) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		search:    search,
		artifacts: artifacts,
		recorder:  recorder,
		clock:     clock,
		ids:       ids,
		cfg:       cfg,
		logger:    logger,
	}
}

// Run executes the plan and returns the finalized run summary. The recorder
// receives the summary exactly once, on every path out of Run, aborts
// included. Run never issues an API call once a terminal state is reached.
func (e *Engine) Run(ctx context.Context, plan []ingest.WorkItem) (ingest.RunSummary, error) {
	if e.cfg.MaxAPICalls <= 0 {
		return ingest.RunSummary{}, fmt.Errorf("max api calls must be > 0")
	}
	runID, err := e.ids.NewID()
	if err != nil {
		return ingest.RunSummary{}, fmt.Errorf("generate run id: %w", err)
	}

	run := &ingest.CrawlRun{
		RunID:      runID,
		BatchID:    e.cfg.BatchID,
		StopReason: ingest.RunRunning,
		StartedAt:  e.clock.Now(),
	}
	e.logger.Info("crawl run starting",
		zap.String("run_id", run.RunID),
		zap.String("batch_id", run.BatchID),
		zap.Int("work_items", len(plan)),
		zap.Int("max_api_calls", e.cfg.MaxAPICalls),
	)

	for _, item := range plan {
		if run.StopReason.Terminal() {
			break
		}
		e.crawlItem(ctx, run, item)
	}
	if !run.StopReason.Terminal() {
		run.StopReason = ingest.RunCompleted
	}

	return e.finalize(ctx, run), nil
}

// crawlItem pages through one (job title, location) query. A terminal stop
// reason set here aborts the whole run; any other failure abandons only this
// item's pagination.
func (e *Engine) crawlItem(ctx context.Context, run *ingest.CrawlRun, item ingest.WorkItem) {
	pageToken := ""
	pageIndex := 0

	for {
		if run.StopReason.Terminal() {
			return
		}
		if run.APICallsMade >= e.cfg.MaxAPICalls {
			e.logger.Warn("api call budget reached",
				zap.Int("api_calls_made", run.APICallsMade),
				zap.Int("max_api_calls", e.cfg.MaxAPICalls),
			)
			run.StopReason = ingest.RunStoppedAPILimit
			return
		}

		page, err := e.search.Search(ctx, item.JobTitle, item.Location, pageToken)
		if err != nil {
			e.classifyFailure(run, item, err)
			return
		}
		run.APICallsMade++
		telemetry.APICall()
		pageIndex++

		e.logger.Info("api progress",
			zap.Int("api_calls_made", run.APICallsMade),
			zap.Int("max_api_calls", e.cfg.MaxAPICalls),
			zap.String("job_title", item.JobTitle),
			zap.String("location", item.Location),
			zap.Int("page", pageIndex),
		)

		if err := e.artifacts.Save(ctx, run.BatchID, item.JobTitle, item.Location, pageIndex, page.Payload); err != nil {
			// Item-local: skip the rest of this item's pages, keep the run alive.
			e.logger.Error("persist page failed",
				zap.String("job_title", item.JobTitle),
				zap.String("location", item.Location),
				zap.Int("page", pageIndex),
				zap.Error(err),
			)
			return
		}

		run.JobsFetched += page.Results
		telemetry.JobsFetched(page.Results)

		if page.NextToken == "" {
			return
		}
		pageToken = page.NextToken
	}
}

func (e *Engine) classifyFailure(run *ingest.CrawlRun, item ingest.WorkItem, err error) {
	switch {
	case errors.Is(err, ingest.ErrQuotaExceeded):
		e.logger.Error("provider quota exhausted, aborting run", zap.Error(err))
		run.StopReason = ingest.RunStoppedQuota
	case errors.Is(err, ingest.ErrRateLimited):
		e.logger.Error("provider rate limit hit, aborting run", zap.Error(err))
		run.StopReason = ingest.RunStoppedRateLimit
	default:
		e.logger.Error("non-fatal search error, skipping work item",
			zap.String("job_title", item.JobTitle),
			zap.String("location", item.Location),
			zap.Error(err),
		)
	}
}

func (e *Engine) finalize(ctx context.Context, run *ingest.CrawlRun) ingest.RunSummary {
	run.EndedAt = e.clock.Now()
	summary := run.Summary()

	if e.recorder != nil {
		if err := e.recorder.Record(ctx, summary); err != nil {
			e.logger.Error("record run telemetry failed", zap.Error(err))
		}
	}

	e.logger.Info("crawl run finished",
		zap.String("run_id", summary.RunID),
		zap.String("stop_reason", string(summary.StopReason)),
		zap.Int("api_calls_made", summary.APICallsMade),
		zap.Int("jobs_fetched", summary.JobsFetched),
		zap.Duration("duration", summary.Duration()),
	)
	return summary
}
