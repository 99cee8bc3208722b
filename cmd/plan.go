package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// newPlanCmd creates the 'plan' subcommand, a dry run that prints the
// work-item plan the crawl would execute, without issuing any API call.
func newPlanCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "plan",
		Short: "Print the crawl plan without executing it",

		RunE: runPlanCommand,
	}
}

func runPlanCommand(cmd *cobra.Command, _ []string) error {
	appInstance, err := resolveApp(cmd.Context())
	if err != nil {
		return err
	}

	plan, err := buildPlan(cmd.Context(), appInstance)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for i, item := range plan {
		fmt.Fprintf(out, "%4d  %-10s %s @ %s\n", i+1, item.Priority, item.JobTitle, item.Location)
	}
	fmt.Fprintf(out, "total: %d work items (budget: %d api calls)\n",
		len(plan), appInstance.Config().Ingestion.MaxAPICalls)
	return nil
}
