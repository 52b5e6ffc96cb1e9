package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/Veraticus/homestats/internal/cli"
	"github.com/Veraticus/homestats/internal/service"
	"github.com/Veraticus/homestats/internal/tui/viewmodel"
	"github.com/spf13/cobra"
)

func showCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Fetch the statistics once and print the summary cards",
		Long: `Fetch the group statistics once and print the four summary cards.

If the fetch fails the cards are printed with zero values, the error is
reported and the command exits with status 1.`,
		RunE: runShow,
	}

	cmd.Flags().StringP("format", "o", cli.FormatText, "Output format (text, json)")
	cmd.Flags().Bool("no-spinner", false, "Do not show a spinner while fetching")

	return cmd
}

func runShow(cmd *cobra.Command, _ []string) error {
	format, _ := cmd.Flags().GetString("format")
	noSpinner, _ := cmd.Flags().GetBool("no-spinner")

	if format != cli.FormatText && format != cli.FormatJSON {
		return fmt.Errorf("unknown output format %q (want %s or %s)", format, cli.FormatText, cli.FormatJSON)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	formatter, err := newFormatter(cfg)
	if err != nil {
		return err
	}

	fetcher, cleanup, err := buildFetcher(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	ctx, cancel := context.WithTimeout(cmd.Context(), fetchTimeout(cfg.API.Timeout, cfg.API.Retries))
	defer cancel()

	var progress io.Writer
	if !noSpinner && format == cli.FormatText {
		progress = cmd.ErrOrStderr()
	}

	return showStatistics(ctx, cmd.OutOrStdout(), progress, fetcher, format, formatter)
}

// showStatistics fetches once through a view model and prints its cards.
// Cards are printed even when the fetch fails; the fetch error is returned.
func showStatistics(ctx context.Context, out, progress io.Writer, fetcher service.StatisticsFetcher, format string, formatter viewmodel.Formatter) error {
	vm := viewmodel.NewStatisticsViewModel(fetcher)
	defer vm.Close()

	var spinner *cli.FetchSpinner
	if progress != nil {
		spinner = cli.StartFetchSpinner(progress, "Fetching statistics...")
	}

	fetchErr := vm.Initialize(ctx)
	if spinner != nil {
		spinner.Stop()
	}

	cards, status := vm.Snapshot()
	if err := cli.WriteCards(out, format, cards, status, formatter); err != nil {
		return err
	}

	if fetchErr != nil {
		return fmt.Errorf("failed to fetch statistics: %w", fetchErr)
	}
	return nil
}

// fetchTimeout bounds one fetch including its retries.
func fetchTimeout(perRequest time.Duration, retries int) time.Duration {
	return perRequest*time.Duration(max(retries, 1)) + 5*time.Second
}
