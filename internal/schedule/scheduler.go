// Package schedule turns prioritized job titles and active locations into a
// deterministic, ordered crawl plan.
package schedule

import (
	"go.uber.org/zap"

	"github.com/talentlens/jobcrawler/internal/ingest"
)

// Config holds the per-tier location coverage fractions.
type Config struct {
	// MediumTierFraction of the location list crawled for Medium jobs.
	MediumTierFraction float64
	// LowTierFraction of the location list crawled for Low jobs.
	LowTierFraction float64
}

// DefaultConfig mirrors the tuned production fractions.
func DefaultConfig() Config {
	return Config{
		MediumTierFraction: 0.9,
		LowTierFraction:    0.75,
	}
}

// Scheduler builds crawl plans.
type Scheduler struct {
	cfg    Config
	logger *zap.Logger
}

// New constructs a Scheduler.
func New(cfg Config, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MediumTierFraction <= 0 {
		cfg.MediumTierFraction = DefaultConfig().MediumTierFraction
	}
	if cfg.LowTierFraction <= 0 {
		cfg.LowTierFraction = DefaultConfig().LowTierFraction
	}
	return &Scheduler{cfg: cfg, logger: logger}
}

// SliceLocations returns the ordered portion of locations a tier is entitled
// to. High gets everything; Medium and Low get a prefix whose length uses
// truncation, never rounding, so coverage at non-round list lengths stays
// stable. An unrecognized tier falls open to the full list. An empty input
// always yields an empty output: the minimum-one floor must not fabricate a
// location.
func (s *Scheduler) SliceLocations(locations []string, tier ingest.Priority) []string {
	n := len(locations)
	if n == 0 {
		return nil
	}

	switch tier {
	case ingest.PriorityHigh:
		return locations
	case ingest.PriorityMedium:
		return locations[:prefixLen(n, s.cfg.MediumTierFraction)]
	case ingest.PriorityLow:
		return locations[:prefixLen(n, s.cfg.LowTierFraction)]
	default:
		// Fail open: an unknown tier crawls everything rather than nothing.
		s.logger.Warn("unrecognized priority tier, using full location list",
			zap.String("tier", string(tier)))
		return locations
	}
}

func prefixLen(n int, fraction float64) int {
	k := int(fraction * float64(n))
	if k < 1 {
		k = 1
	}
	if k > n {
		k = n
	}
	return k
}

// BuildPlan expands jobs x sliced locations into the flat, ordered work-item
// list the engine consumes. Identical inputs produce identical plans.
func (s *Scheduler) BuildPlan(jobs []ingest.JobTitleEntry, locations []string) []ingest.WorkItem {
	plan := make([]ingest.WorkItem, 0, len(jobs)*len(locations))
	for _, job := range jobs {
		sliced := s.SliceLocations(locations, job.Priority)
		s.logger.Info("scheduled job",
			zap.String("job_title", job.JobTitle),
			zap.String("priority", string(job.Priority)),
			zap.Int("locations", len(sliced)),
		)
		for _, loc := range sliced {
			plan = append(plan, ingest.WorkItem{
				JobTitle: job.JobTitle,
				Location: loc,
				Priority: job.Priority,
			})
		}
	}
	return plan
}
