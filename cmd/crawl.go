package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/talentlens/jobcrawler/internal/app"
	"github.com/talentlens/jobcrawler/internal/engine"
	"github.com/talentlens/jobcrawler/internal/ingest"
	"github.com/talentlens/jobcrawler/internal/schedule"
)

// newCrawlCmd creates the 'crawl' subcommand: build the priority-sliced plan
// and execute it against the search API under the configured call budget.
func newCrawlCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "crawl",
		Short: "Execute the priority-sliced crawl plan",
		Long: `Reads the active job titles with their policy priority and the active
location list, expands them into an ordered work-item plan, and crawls the
external search API page by page. The run stops at the configured call
budget, or immediately on provider quota exhaustion or rate limiting; the
stop reason is recorded either way.`,

		RunE: runCrawlCommand,
	}
}

func runCrawlCommand(cmd *cobra.Command, _ []string) error {
	appInstance, err := resolveApp(cmd.Context())
	if err != nil {
		return err
	}

	plan, err := buildPlan(cmd.Context(), appInstance)
	if err != nil {
		return err
	}

	search, err := appInstance.SearchClient()
	if err != nil {
		return err
	}

	cfg := appInstance.Config()
	eng := engine.New(
		search,
		appInstance.Artifacts(),
		appInstance.Recorder(),
		appInstance.Clock(),
		appInstance.IDs(),
		engine.Config{
			MaxAPICalls: cfg.Ingestion.MaxAPICalls,
			BatchID:     appInstance.BatchID(),
		},
		appInstance.Logger(),
	)

	summary, err := eng.Run(cmd.Context(), plan)
	if err != nil {
		return fmt.Errorf("run crawl: %w", err)
	}
	appInstance.Logger().Info("crawl command finished",
		zap.String("stop_reason", string(summary.StopReason)),
		zap.Int("api_calls_made", summary.APICallsMade),
		zap.Int("jobs_fetched", summary.JobsFetched),
	)
	return nil
}

func buildPlan(ctx context.Context, appInstance *app.App) ([]ingest.WorkItem, error) {
	registry, err := appInstance.Registry()
	if err != nil {
		return nil, err
	}
	jobs, err := registry.ActiveJobs(ctx)
	if err != nil {
		return nil, fmt.Errorf("load active jobs: %w", err)
	}
	locations, err := registry.ActiveLocations(ctx)
	if err != nil {
		return nil, fmt.Errorf("load active locations: %w", err)
	}

	cfg := appInstance.Config()
	scheduler := schedule.New(schedule.Config{
		MediumTierFraction: cfg.Schedule.MediumTierFraction,
		LowTierFraction:    cfg.Schedule.LowTierFraction,
	}, appInstance.Logger())

	return scheduler.BuildPlan(jobs, locations), nil
}
