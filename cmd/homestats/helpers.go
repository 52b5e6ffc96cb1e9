package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/Veraticus/homestats/internal/common"
	"github.com/Veraticus/homestats/internal/config"
	"github.com/Veraticus/homestats/internal/homebox"
	"github.com/Veraticus/homestats/internal/service"
	"github.com/Veraticus/homestats/internal/storage"
	"github.com/Veraticus/homestats/internal/tui/viewmodel"
	"github.com/spf13/viper"
)

const snapshotSource = "homebox"

// loadConfig resolves the configuration from flags, env and the config file.
func loadConfig() (config.Config, error) {
	return config.Load(viper.GetViper())
}

// newFormatter builds the card formatter from display settings.
func newFormatter(cfg config.Config) (viewmodel.Formatter, error) {
	f, err := viewmodel.NewFormatter(cfg.Display.Locale, cfg.Display.Currency)
	if err != nil {
		return viewmodel.Formatter{}, fmt.Errorf("%w: %w", common.ErrInvalidConfig, err)
	}
	return f, nil
}

// initStorage opens the snapshot database and runs migrations.
func initStorage(ctx context.Context, cfg config.Config) (*storage.SQLiteStorage, error) {
	store, err := storage.NewSQLiteStorage(cfg.Storage.Path)
	if err != nil {
		return nil, err
	}

	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

// buildFetcher creates the live statistics fetcher. When history is enabled,
// successful fetches are recorded; a database that cannot be opened only
// disables recording. The returned cleanup func is never nil.
func buildFetcher(ctx context.Context, cfg config.Config) (service.StatisticsFetcher, func(), error) {
	noop := func() {}

	if err := cfg.RequireAPI(); err != nil {
		return nil, noop, err
	}

	client, err := homebox.NewClient(homebox.Options{
		BaseURL: cfg.API.URL,
		Token:   cfg.API.Token,
		Timeout: cfg.API.Timeout,
		Retry:   cfg.API.RetryOptions(),
	})
	if err != nil {
		return nil, noop, fmt.Errorf("failed to create API client: %w", err)
	}

	if !cfg.Storage.Enabled {
		return client, noop, nil
	}

	store, err := initStorage(ctx, cfg)
	if err != nil {
		slog.Warn("Snapshot history disabled", "path", cfg.Storage.Path, "error", err)
		return client, noop, nil
	}

	cleanup := func() {
		if err := store.Close(); err != nil {
			slog.Warn("Failed to close snapshot database", "error", err)
		}
	}
	return storage.NewRecordingFetcher(client, store, snapshotSource), cleanup, nil
}

// redirectLogs sends slog output to a file for the lifetime of the TUI.
// The returned func restores the previous logger.
func redirectLogs(cfg config.Config) (func(), error) {
	if err := os.MkdirAll(filepath.Dir(cfg.Logging.File), 0o750); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	f, err := os.OpenFile(cfg.Logging.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}

	level, err := common.ParseLevel(cfg.Logging.Level)
	if err != nil {
		_ = f.Close()
		return nil, err
	}

	logger, err := common.NewLogger(f, level, cfg.Logging.Format)
	if err != nil {
		_ = f.Close()
		return nil, err
	}

	prev := slog.Default()
	slog.SetDefault(logger)

	return func() {
		slog.SetDefault(prev)
		_ = f.Close()
	}, nil
}
