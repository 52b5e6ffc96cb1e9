// Package service defines the interfaces for all application services.
package service

import (
	"context"
	"time"

	"github.com/Veraticus/homestats/internal/model"
)

// StatisticsFetcher retrieves the pre-aggregated statistics of the current group.
// A nil result with a nil error means the server sent no document.
type StatisticsFetcher interface {
	FetchGroupStatistics(ctx context.Context) (*model.GroupStatistics, error)
}

// StatisticsFetcherFunc adapts a plain function to StatisticsFetcher.
type StatisticsFetcherFunc func(ctx context.Context) (*model.GroupStatistics, error)

// FetchGroupStatistics calls f(ctx).
func (f StatisticsFetcherFunc) FetchGroupStatistics(ctx context.Context) (*model.GroupStatistics, error) {
	return f(ctx)
}

// SnapshotStore persists the history of fetched statistics.
type SnapshotStore interface {
	SaveSnapshot(ctx context.Context, snapshot *model.Snapshot) error
	ListSnapshots(ctx context.Context, limit int) ([]model.Snapshot, error)
	LatestSnapshot(ctx context.Context) (*model.Snapshot, error)
	Migrate(ctx context.Context) error
	Close() error
}

// RetryOptions configures retry behavior for operations.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}
