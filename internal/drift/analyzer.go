// Package drift classifies category distribution drift and versions the
// ingestion policy accordingly.
package drift

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/talentlens/jobcrawler/internal/ingest"
	"github.com/talentlens/jobcrawler/internal/telemetry"
)

// Config holds the classification thresholds. Both are percentages of the
// total item count, tunable per deployment.
type Config struct {
	// MinThresholdPct: a category below this share is starved.
	MinThresholdPct float64
	// MaxThresholdPct: a category above this share is saturated.
	MaxThresholdPct float64
}

// DefaultConfig returns the production thresholds.
func DefaultConfig() Config {
	return Config{
		MinThresholdPct: 2.0,
		MaxThresholdPct: 15.0,
	}
}

// Analyzer runs one drift pass: measure, classify, version changed policies.
type Analyzer struct {
	distribution ingest.DistributionSource
	policies     ingest.PolicyRepository
	clock        ingest.Clock
	cfg          Config
	logger       *zap.Logger
}

// New constructs an Analyzer.
func New(
	distribution ingest.DistributionSource,
	policies ingest.PolicyRepository,
	clock ingest.Clock,
	cfg Config,
	logger *zap.Logger,
) *Analyzer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Analyzer{
		distribution: distribution,
		policies:     policies,
		clock:        clock,
		cfg:          cfg,
		logger:       logger,
	}
}

// Run executes one drift pass and returns the number of policies updated.
// An empty distribution is not an error: there is no data to classify yet, so
// existing policies are kept. A policy write failure for one category is
// logged and does not stop the remaining categories; the pass only returns an
// error when the distribution or active policies cannot be read at all.
func (a *Analyzer) Run(ctx context.Context) (int, error) {
	counts, err := a.distribution.CategoryCounts(ctx)
	if err != nil {
		return 0, fmt.Errorf("load category distribution: %w", err)
	}

	var total int64
	for _, c := range counts {
		total += c.Count
	}
	if total == 0 {
		a.logger.Warn("category distribution is empty, keeping current policies")
		return 0, nil
	}
	a.logger.Info("analyzing category drift",
		zap.Int64("total_items", total),
		zap.Int("categories", len(counts)),
	)

	active, err := a.policies.ActivePolicies(ctx)
	if err != nil {
		return 0, fmt.Errorf("load active policies: %w", err)
	}

	updated := 0
	for _, c := range counts {
		pct := 100 * float64(c.Count) / float64(total)
		newPriority, reason := a.classify(pct)

		current, ok := active[c.Category]
		if !ok {
			current = ingest.PriorityNone
		}
		if current == newPriority {
			continue
		}

		a.logger.Info("policy transition",
			zap.String("category", c.Category),
			zap.String("from", string(current)),
			zap.String("to", string(newPriority)),
			zap.String("reason", reason),
		)
		now := a.clock.Now()
		if err := a.policies.ReplacePolicy(ctx, c.Category, newPriority, reason, now); err != nil {
			// Per-category isolation: one failed replace must not abort the pass.
			a.logger.Error("policy update failed",
				zap.String("category", c.Category),
				zap.Error(err),
			)
			continue
		}
		telemetry.PolicyTransition(string(current), string(newPriority))
		updated++
	}

	a.logger.Info("drift pass complete", zap.Int("policies_updated", updated))
	return updated, nil
}

// classify maps a category's share of the store to a tier and the
// human-readable reason persisted with the policy row.
func (a *Analyzer) classify(pct float64) (ingest.Priority, string) {
	switch {
	case pct < a.cfg.MinThresholdPct:
		return ingest.PriorityHigh,
			fmt.Sprintf("Starved: Only %.2f%% (Threshold: %.1f%%)", pct, a.cfg.MinThresholdPct)
	case pct > a.cfg.MaxThresholdPct:
		return ingest.PriorityLow,
			fmt.Sprintf("Saturated: %.2f%% (Threshold: %.1f%%)", pct, a.cfg.MaxThresholdPct)
	default:
		return ingest.PriorityMedium, fmt.Sprintf("Healthy: %.2f%%", pct)
	}
}
