package storage

import (
	"context"
	"log/slog"
	"time"

	"github.com/Veraticus/homestats/internal/model"
	"github.com/Veraticus/homestats/internal/service"
)

// RecordingFetcher saves every successful fetch as a snapshot. Recording
// failures are logged and never fail the fetch.
type RecordingFetcher struct {
	next   service.StatisticsFetcher
	store  service.SnapshotStore
	now    func() time.Time
	source string
}

// NewRecordingFetcher wraps next so its results are recorded in store under source.
func NewRecordingFetcher(next service.StatisticsFetcher, store service.SnapshotStore, source string) *RecordingFetcher {
	return &RecordingFetcher{
		next:   next,
		store:  store,
		source: source,
		now:    time.Now,
	}
}

// FetchGroupStatistics fetches through the wrapped fetcher and records the result.
func (f *RecordingFetcher) FetchGroupStatistics(ctx context.Context) (*model.GroupStatistics, error) {
	stats, err := f.next.FetchGroupStatistics(ctx)
	if err != nil {
		return nil, err
	}

	snapshot := &model.Snapshot{
		FetchedAt: f.now(),
		Source:    f.source,
	}
	if stats != nil {
		snapshot.Statistics = *stats.Clone()
	}

	if saveErr := f.store.SaveSnapshot(ctx, snapshot); saveErr != nil {
		slog.Warn("Failed to record statistics snapshot", "error", saveErr)
	}

	return stats, nil
}
