package viewmodel

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Veraticus/homestats/internal/model"
	"github.com/Veraticus/homestats/internal/service"
)

// ErrClosed is returned by fetch operations after the view has been torn down.
var ErrClosed = errors.New("statistics view closed")

// FetchState is the lifecycle position of the statistics fetch.
type FetchState int

const (
	// FetchUnfetched means no fetch has been started yet.
	FetchUnfetched FetchState = iota
	// FetchPending means a fetch is in flight.
	FetchPending
	// FetchResolved means the last fetch succeeded.
	FetchResolved
	// FetchFailed means the last fetch failed; the previous document is kept.
	FetchFailed
)

// String returns a string representation of the fetch state.
func (s FetchState) String() string {
	switch s {
	case FetchUnfetched:
		return "Unfetched"
	case FetchPending:
		return "Pending"
	case FetchResolved:
		return "Resolved"
	case FetchFailed:
		return "Failed"
	default:
		return fmt.Sprintf("Unknown(%d)", s)
	}
}

// FetchStatus is the pending/error signal of the fetch. It is reported next to
// the cards, never folded into their values.
type FetchStatus struct {
	FetchedAt time.Time
	Err       error
	Version   uint64
	State     FetchState
}

// IsLoading returns true while a fetch is in flight or has not started.
func (s FetchStatus) IsLoading() bool {
	return s.State == FetchUnfetched || s.State == FetchPending
}

// HasError returns true if the last fetch failed.
func (s FetchStatus) HasError() bool {
	return s.State == FetchFailed && s.Err != nil
}

// BuildStatCards maps a statistics document onto the four fixed cards.
// A nil document, a missing field and a zero field all give a value of 0.
func BuildStatCards(raw *model.GroupStatistics) []model.StatCard {
	cards := make([]model.StatCard, 0, len(model.CardSlots))
	for _, slot := range model.CardSlots {
		cards = append(cards, model.StatCard{
			Label: slot.Label(),
			Value: cardValue(slot.Field(raw)),
			Type:  slot.Type(),
		})
	}
	return cards
}

// cardValue defaults absent and non-finite values to 0 and clamps negatives.
func cardValue(p *float64) float64 {
	v := model.ValueOr(p)
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}

// statsCell is one immutable published state. Readers load it atomically, so
// they see either the old or the new document, never a mix.
type statsCell struct {
	stats  *model.GroupStatistics
	cards  []model.StatCard
	status FetchStatus
}

// StatisticsViewModel owns the statistics document of one home view and
// derives its summary cards.
type StatisticsViewModel struct {
	fetcher    service.StatisticsFetcher
	logger     *slog.Logger
	now        func() time.Time
	cell       atomic.Pointer[statsCell]
	generation uint64
	mu         sync.Mutex
	inFlight   bool
	closed     bool
}

// Option configures a StatisticsViewModel.
type Option func(*StatisticsViewModel)

// WithLogger sets the logger used for fetch events.
func WithLogger(logger *slog.Logger) Option {
	return func(vm *StatisticsViewModel) {
		vm.logger = logger
	}
}

// WithClock overrides time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(vm *StatisticsViewModel) {
		vm.now = now
	}
}

// NewStatisticsViewModel creates a view model that fetches through fetcher.
func NewStatisticsViewModel(fetcher service.StatisticsFetcher, opts ...Option) *StatisticsViewModel {
	vm := &StatisticsViewModel{
		fetcher: fetcher,
		logger:  slog.Default(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(vm)
	}
	vm.cell.Store(&statsCell{cards: BuildStatCards(nil)})
	return vm
}

// Initialize fetches the statistics once for the lifetime of the view.
// Later or concurrent calls return nil without fetching. The returned error is
// the fetch error, if any; the cards keep their previous values on failure.
func (vm *StatisticsViewModel) Initialize(ctx context.Context) error {
	return vm.fetch(ctx, false)
}

// Refetch starts a new fetch unless one is already in flight. A successful
// result replaces the previous document as a whole.
func (vm *StatisticsViewModel) Refetch(ctx context.Context) error {
	return vm.fetch(ctx, true)
}

// Cards returns the four summary cards derived from the latest resolved
// document. It never blocks on a fetch.
func (vm *StatisticsViewModel) Cards() []model.StatCard {
	cards := vm.cell.Load().cards
	out := make([]model.StatCard, len(cards))
	copy(out, cards)
	return out
}

// Statistics returns a copy of the latest resolved document, or nil.
func (vm *StatisticsViewModel) Statistics() *model.GroupStatistics {
	return vm.cell.Load().stats.Clone()
}

// Status returns the fetch signal.
func (vm *StatisticsViewModel) Status() FetchStatus {
	return vm.cell.Load().status
}

// Version increases on every state change. Consumers re-read Cards when it moves.
func (vm *StatisticsViewModel) Version() uint64 {
	return vm.cell.Load().status.Version
}

// Snapshot returns cards and status from the same published state.
func (vm *StatisticsViewModel) Snapshot() ([]model.StatCard, FetchStatus) {
	cell := vm.cell.Load()
	cards := make([]model.StatCard, len(cell.cards))
	copy(cards, cell.cards)
	return cards, cell.status
}

// Close tears the view down. A fetch that completes afterwards is dropped and
// the held document is discarded.
func (vm *StatisticsViewModel) Close() {
	vm.mu.Lock()
	defer vm.mu.Unlock()

	if vm.closed {
		return
	}
	vm.closed = true
	vm.generation++
	vm.inFlight = false

	prev := vm.cell.Load()
	vm.cell.Store(&statsCell{
		cards: BuildStatCards(nil),
		status: FetchStatus{
			State:   FetchUnfetched,
			Version: prev.status.Version + 1,
		},
	})
}

func (vm *StatisticsViewModel) fetch(ctx context.Context, refetch bool) error {
	gen, started, err := vm.begin(refetch)
	if err != nil || !started {
		return err
	}

	vm.logger.Debug("Fetching group statistics", "refetch", refetch)

	stats, fetchErr := vm.fetcher.FetchGroupStatistics(ctx)
	return vm.complete(gen, stats, fetchErr)
}

// begin moves the state to Pending. started is false when the call must not
// issue a fetch.
func (vm *StatisticsViewModel) begin(refetch bool) (gen uint64, started bool, err error) {
	vm.mu.Lock()
	defer vm.mu.Unlock()

	if vm.closed {
		return 0, false, ErrClosed
	}
	if vm.fetcher == nil {
		return 0, false, fmt.Errorf("statistics fetcher not configured")
	}
	if vm.inFlight {
		return 0, false, nil
	}

	prev := vm.cell.Load()
	if !refetch && prev.status.State != FetchUnfetched {
		return 0, false, nil
	}

	vm.inFlight = true
	vm.cell.Store(&statsCell{
		stats: prev.stats,
		cards: prev.cards,
		status: FetchStatus{
			State:     FetchPending,
			Version:   prev.status.Version + 1,
			FetchedAt: prev.status.FetchedAt,
		},
	})

	return vm.generation, true, nil
}

// complete applies a fetch result if the view that started it is still alive.
func (vm *StatisticsViewModel) complete(gen uint64, stats *model.GroupStatistics, fetchErr error) error {
	vm.mu.Lock()
	defer vm.mu.Unlock()

	if vm.closed || gen != vm.generation {
		vm.logger.Debug("Dropping statistics for a closed view")
		return ErrClosed
	}
	vm.inFlight = false

	prev := vm.cell.Load()

	if fetchErr != nil {
		vm.logger.Warn("Failed to fetch group statistics", "error", fetchErr)
		vm.cell.Store(&statsCell{
			stats: prev.stats,
			cards: prev.cards,
			status: FetchStatus{
				State:     FetchFailed,
				Err:       fetchErr,
				Version:   prev.status.Version + 1,
				FetchedAt: prev.status.FetchedAt,
			},
		})
		return fetchErr
	}

	stats = stats.Clone()
	vm.cell.Store(&statsCell{
		stats: stats,
		cards: BuildStatCards(stats),
		status: FetchStatus{
			State:     FetchResolved,
			Version:   prev.status.Version + 1,
			FetchedAt: vm.now(),
		},
	})

	vm.logger.Debug("Fetched group statistics", "empty", stats.IsEmpty())
	return nil
}
