package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/Veraticus/homestats/internal/cli"
	"github.com/Veraticus/homestats/internal/common"
	"github.com/Veraticus/homestats/internal/service"
	"github.com/Veraticus/homestats/internal/tui/viewmodel"
	"github.com/spf13/cobra"
)

func historyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded statistics snapshots",
		Long: `List the statistics snapshots recorded by previous fetches, newest first.

Snapshots are written whenever storage.enabled is true and a fetch succeeds.`,
		RunE: runHistory,
	}

	cmd.Flags().IntP("limit", "n", 20, "Maximum number of snapshots to show")
	cmd.Flags().StringP("format", "o", cli.FormatText, "Output format (text, json)")

	return cmd
}

func runHistory(cmd *cobra.Command, _ []string) error {
	limit, _ := cmd.Flags().GetInt("limit")
	format, _ := cmd.Flags().GetString("format")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if !cfg.Storage.Enabled {
		return common.NewUserError("snapshot history is disabled (set storage.enabled to true)", nil)
	}

	formatter, err := newFormatter(cfg)
	if err != nil {
		return err
	}

	store, err := initStorage(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	return printHistory(cmd.Context(), cmd.OutOrStdout(), store, limit, format, formatter)
}

func printHistory(ctx context.Context, out io.Writer, store service.SnapshotStore, limit int, format string, formatter viewmodel.Formatter) error {
	if limit < 1 {
		return fmt.Errorf("--limit must be at least 1, got %d", limit)
	}

	snapshots, err := store.ListSnapshots(ctx, limit)
	if err != nil {
		return fmt.Errorf("failed to list snapshots: %w", err)
	}

	switch format {
	case cli.FormatJSON:
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(snapshots)
	case cli.FormatText:
		_, err := fmt.Fprintln(out, cli.RenderHistory(snapshots, formatter))
		return err
	default:
		return fmt.Errorf("unknown output format %q (want %s or %s)", format, cli.FormatText, cli.FormatJSON)
	}
}
