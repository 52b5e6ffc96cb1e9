package main

import (
	"fmt"

	"github.com/Veraticus/homestats/internal/tui"
	"github.com/spf13/cobra"
)

func dashboardCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "dashboard",
		Aliases: []string{"ui"},
		Short:   "Open the interactive home view",
		Long: `Open the home view with the four summary cards.

Press r to refresh, ? for help and q to quit. Logs are written to the
file configured by logging.file while the view is open.`,
		RunE: runDashboard,
	}

	cmd.Flags().String("title", "Homebox", "Heading shown above the cards")

	return cmd
}

func runDashboard(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	title, _ := cmd.Flags().GetString("title")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	formatter, err := newFormatter(cfg)
	if err != nil {
		return err
	}

	restoreLogs, err := redirectLogs(cfg)
	if err != nil {
		return err
	}
	defer restoreLogs()

	fetcher, cleanup, err := buildFetcher(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	if err := tui.Run(ctx,
		tui.WithFetcher(fetcher),
		tui.WithFormatter(formatter),
		tui.WithTitle(title),
		tui.WithFetchTimeout(fetchTimeout(cfg.API.Timeout, cfg.API.Retries)),
	); err != nil {
		return fmt.Errorf("dashboard failed: %w", err)
	}
	return nil
}
