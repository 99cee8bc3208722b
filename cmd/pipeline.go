package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/talentlens/jobcrawler/internal/drift"
)

// newPipelineCmd creates the 'pipeline' subcommand: the scheduled production
// sequence. Connectivity is verified first so the heavy crawl never starts
// against a dead database, then the drift pass refreshes the policy the
// crawl immediately consumes.
func newPipelineCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pipeline",
		Short: "Run the full ingestion pipeline: DB check, drift pass, crawl",

		RunE: runPipelineCommand,
	}
}

func runPipelineCommand(cmd *cobra.Command, args []string) error {
	appInstance, err := resolveApp(cmd.Context())
	if err != nil {
		return err
	}
	logger := appInstance.Logger()

	if err := appInstance.PingDB(cmd.Context()); err != nil {
		return fmt.Errorf("pre-flight database check: %w", err)
	}
	logger.Info("pre-flight database check passed")

	var analyzer *drift.Analyzer
	if analyzer, err = buildAnalyzer(appInstance); err != nil {
		return err
	}
	updated, err := analyzer.Run(cmd.Context())
	if err != nil {
		return fmt.Errorf("run drift analysis: %w", err)
	}
	logger.Info("drift pass complete", zap.Int("policies_updated", updated))

	return runCrawlCommand(cmd, args)
}
