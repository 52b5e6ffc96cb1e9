// Package demo provides an in-process statistics source for trying the home
// view without a server.
package demo

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/Veraticus/homestats/internal/model"
)

// ErrDemoFailure is returned by a Fetcher configured to fail.
var ErrDemoFailure = errors.New("demo: simulated server failure")

// Fetcher serves a growing inventory after a fixed delay.
type Fetcher struct {
	delay time.Duration
	fail  bool
	mu    sync.Mutex
	calls int
}

// NewFetcher creates a demo fetcher. With fail set every fetch fails after the
// delay, which shows the error state of the view.
func NewFetcher(delay time.Duration, fail bool) *Fetcher {
	return &Fetcher{delay: delay, fail: fail}
}

// FetchGroupStatistics waits for the delay and returns the next document.
func (f *Fetcher) FetchGroupStatistics(ctx context.Context) (*model.GroupStatistics, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(f.delay):
	}

	f.mu.Lock()
	n := f.calls
	f.calls++
	f.mu.Unlock()

	if f.fail {
		return nil, ErrDemoFailure
	}

	stats := &model.GroupStatistics{
		TotalItemPrice: model.Float64(12850.75 + 399.99*float64(n)),
		TotalItems:     model.Float64(float64(342 + 3*n)),
		TotalLocations: model.Float64(float64(18 + n/2)),
	}
	// Labels arrive from the second fetch on, so the first render shows a
	// field the server left out.
	if n > 0 {
		stats.TotalLabels = model.Float64(float64(25 + n))
	}
	return stats, nil
}

// Calls returns how many fetches have completed.
func (f *Fetcher) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}
