package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/talentlens/jobcrawler/internal/app"
	"github.com/talentlens/jobcrawler/internal/drift"
)

// newDriftCmd creates the 'drift' subcommand, which runs one drift analysis
// pass: measure the category distribution, classify each category and
// version the ingestion policy where the tier changed.
func newDriftCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "drift",
		Short: "Analyze category drift and update the ingestion policy",
		Long: `Computes the current category distribution of the target store, classifies
each category as starved, healthy or saturated, and atomically versions the
priority policy for every category whose tier changed. Unchanged categories
produce no writes, so repeated passes over the same distribution are no-ops.`,

		RunE: runDriftCommand,
	}
}

func runDriftCommand(cmd *cobra.Command, _ []string) error {
	appInstance, err := resolveApp(cmd.Context())
	if err != nil {
		return err
	}

	analyzer, err := buildAnalyzer(appInstance)
	if err != nil {
		return err
	}

	updated, err := analyzer.Run(cmd.Context())
	if err != nil {
		return fmt.Errorf("run drift analysis: %w", err)
	}
	appInstance.Logger().Info("drift command finished", zap.Int("policies_updated", updated))
	return nil
}

func buildAnalyzer(appInstance *app.App) (*drift.Analyzer, error) {
	distribution, err := appInstance.Distribution()
	if err != nil {
		return nil, err
	}
	policies, err := appInstance.PolicyStore()
	if err != nil {
		return nil, err
	}

	cfg := appInstance.Config()
	return drift.New(
		distribution,
		policies,
		appInstance.Clock(),
		drift.Config{
			MinThresholdPct: cfg.Drift.MinThresholdPct,
			MaxThresholdPct: cfg.Drift.MaxThresholdPct,
		},
		appInstance.Logger(),
	), nil
}
