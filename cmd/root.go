// Package cmd defines and implements the CLI commands for the jobcrawler
// executable.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/talentlens/jobcrawler/internal/app"
	"github.com/talentlens/jobcrawler/internal/config"
)

var cfgFile string

// appKeyType is the key for storing the App in the command context.
type appKeyType string

const appKey appKeyType = "app"

// newApp is the application factory. It is a variable so tests can replace
// it with a mock factory.
var newApp = func(ctx context.Context, cfg config.Config) (*app.App, error) {
	return app.New(ctx, cfg)
}

// newRootCmd creates and configures the root command.
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "jobcrawler",
		Short: "Adaptive job-posting ingestion under an API quota",
		Long: `jobcrawler keeps the job-posting store balanced: it measures how over-
or under-represented each category is, versions a priority policy from the
drift, and crawls the external search API with coverage proportional to each
title's priority, all under a hard per-run call budget.`,

		// Build and inject the application before any subcommand runs. A dead
		// database or unwritable artifact directory fails here, before any
		// crawl side effect.
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return fmt.Errorf("load configuration: %w", err)
			}
			appInstance, err := newApp(cmd.Context(), cfg)
			if err != nil {
				return fmt.Errorf("initialize application services: %w", err)
			}
			cmd.SetContext(context.WithValue(cmd.Context(), appKey, appInstance))
			return nil
		},

		PersistentPostRun: func(cmd *cobra.Command, _ []string) {
			if appInstance, ok := cmd.Context().Value(appKey).(*app.App); ok && appInstance != nil {
				appInstance.Close()
			}
		},
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./jobcrawler.yaml)")

	cmd.AddCommand(newDriftCmd())
	cmd.AddCommand(newPlanCmd())
	cmd.AddCommand(newCrawlCmd())
	cmd.AddCommand(newPipelineCmd())

	return cmd
}

// Execute is the main entry point. Fatal errors exit non-zero.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func resolveApp(ctx context.Context) (*app.App, error) {
	appInstance, ok := ctx.Value(appKey).(*app.App)
	if !ok || appInstance == nil {
		return nil, errors.New("application services not initialized")
	}
	return appInstance, nil
}
