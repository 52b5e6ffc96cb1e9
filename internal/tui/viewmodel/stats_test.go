package viewmodel

import (
	"context"
	"errors"
	"math"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Veraticus/homestats/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeFetcher returns queued results and counts calls. When gate is set, each
// call blocks until a value is sent on it.
type fakeFetcher struct {
	gate    chan struct{}
	results []fakeResult
	calls   atomic.Int32
	mu      sync.Mutex
}

type fakeResult struct {
	stats *model.GroupStatistics
	err   error
}

func (f *fakeFetcher) FetchGroupStatistics(ctx context.Context) (*model.GroupStatistics, error) {
	n := int(f.calls.Add(1))
	if f.gate != nil {
		select {
		case <-f.gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.results) == 0 {
		return nil, nil
	}
	idx := n - 1
	if idx >= len(f.results) {
		idx = len(f.results) - 1
	}
	return f.results[idx].stats, f.results[idx].err
}

func zeroCards() []model.StatCard {
	return []model.StatCard{
		{Label: "总价值", Value: 0, Type: model.CardTypeCurrency},
		{Label: "物品总数", Value: 0, Type: model.CardTypeNumber},
		{Label: "位置总数", Value: 0, Type: model.CardTypeNumber},
		{Label: "标签总数", Value: 0, Type: model.CardTypeNumber},
	}
}

func TestBuildStatCards(t *testing.T) {
	tests := []struct {
		raw  *model.GroupStatistics
		name string
		want []float64
	}{
		{
			name: "absent document",
			raw:  nil,
			want: []float64{0, 0, 0, 0},
		},
		{
			name: "empty document",
			raw:  &model.GroupStatistics{},
			want: []float64{0, 0, 0, 0},
		},
		{
			name: "partial document",
			raw: &model.GroupStatistics{
				TotalItemPrice: model.Float64(150),
				TotalItems:     model.Float64(12),
			},
			want: []float64{150, 12, 0, 0},
		},
		{
			name: "only labels",
			raw:  &model.GroupStatistics{TotalLabels: model.Float64(3)},
			want: []float64{0, 0, 0, 3},
		},
		{
			name: "explicit zeros",
			raw: &model.GroupStatistics{
				TotalItemPrice: model.Float64(0),
				TotalItems:     model.Float64(0),
				TotalLocations: model.Float64(0),
				TotalLabels:    model.Float64(0),
			},
			want: []float64{0, 0, 0, 0},
		},
		{
			name: "fully populated",
			raw: &model.GroupStatistics{
				TotalItemPrice: model.Float64(500),
				TotalItems:     model.Float64(40),
				TotalLocations: model.Float64(5),
				TotalLabels:    model.Float64(8),
			},
			want: []float64{500, 40, 5, 8},
		},
		{
			name: "fractional price",
			raw:  &model.GroupStatistics{TotalItemPrice: model.Float64(1234.56)},
			want: []float64{1234.56, 0, 0, 0},
		},
		{
			name: "non-finite and negative values",
			raw: &model.GroupStatistics{
				TotalItemPrice: model.Float64(math.NaN()),
				TotalItems:     model.Float64(math.Inf(1)),
				TotalLocations: model.Float64(-2),
				TotalLabels:    model.Float64(7),
			},
			want: []float64{0, 0, 0, 7},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cards := BuildStatCards(tt.raw)

			require.Len(t, cards, 4)
			expected := zeroCards()
			for i := range expected {
				assert.Equal(t, expected[i].Label, cards[i].Label)
				assert.Equal(t, expected[i].Type, cards[i].Type)
				assert.InDelta(t, tt.want[i], cards[i].Value, 0.0001)
			}
		})
	}
}

func TestBuildStatCards_Idempotent(t *testing.T) {
	raw := &model.GroupStatistics{TotalItems: model.Float64(9)}

	assert.Equal(t, BuildStatCards(raw), BuildStatCards(raw))
}

func TestStatisticsViewModel_CardsBeforeInitialize(t *testing.T) {
	vm := NewStatisticsViewModel(&fakeFetcher{})

	assert.Equal(t, zeroCards(), vm.Cards())
	assert.Equal(t, FetchUnfetched, vm.Status().State)
	assert.True(t, vm.Status().IsLoading())
	assert.Nil(t, vm.Statistics())
}

func TestStatisticsViewModel_InitializeResolves(t *testing.T) {
	fetchedAt := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	fetcher := &fakeFetcher{results: []fakeResult{{
		stats: &model.GroupStatistics{
			TotalItemPrice: model.Float64(150),
			TotalItems:     model.Float64(12),
		},
	}}}
	vm := NewStatisticsViewModel(fetcher, WithClock(func() time.Time { return fetchedAt }))

	require.NoError(t, vm.Initialize(context.Background()))

	want := []model.StatCard{
		{Label: "总价值", Value: 150, Type: model.CardTypeCurrency},
		{Label: "物品总数", Value: 12, Type: model.CardTypeNumber},
		{Label: "位置总数", Value: 0, Type: model.CardTypeNumber},
		{Label: "标签总数", Value: 0, Type: model.CardTypeNumber},
	}
	assert.Equal(t, want, vm.Cards())

	status := vm.Status()
	assert.Equal(t, FetchResolved, status.State)
	assert.Equal(t, fetchedAt, status.FetchedAt)
	assert.False(t, status.IsLoading())
	assert.False(t, status.HasError())
}

func TestStatisticsViewModel_InitializeOnlyOnce(t *testing.T) {
	fetcher := &fakeFetcher{results: []fakeResult{
		{stats: &model.GroupStatistics{TotalItems: model.Float64(1)}},
		{stats: &model.GroupStatistics{TotalItems: model.Float64(2)}},
	}}
	vm := NewStatisticsViewModel(fetcher)

	for i := 0; i < 5; i++ {
		require.NoError(t, vm.Initialize(context.Background()))
	}

	assert.Equal(t, int32(1), fetcher.calls.Load())
	assert.InDelta(t, 1.0, vm.Cards()[1].Value, 0.0001)
}

func TestStatisticsViewModel_ConcurrentInitialize(t *testing.T) {
	fetcher := &fakeFetcher{
		gate:    make(chan struct{}),
		results: []fakeResult{{stats: &model.GroupStatistics{TotalLabels: model.Float64(4)}}},
	}
	vm := NewStatisticsViewModel(fetcher)

	done := make(chan error, 1)
	go func() {
		done <- vm.Initialize(context.Background())
	}()

	require.Eventually(t, func() bool {
		return vm.Status().State == FetchPending
	}, time.Second, time.Millisecond)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, vm.Initialize(context.Background()))
		}()
	}
	wg.Wait()

	// Reads racing the fetch see the pre-fetch state.
	assert.Equal(t, zeroCards(), vm.Cards())

	close(fetcher.gate)
	require.NoError(t, <-done)

	assert.Equal(t, int32(1), fetcher.calls.Load())
	assert.InDelta(t, 4.0, vm.Cards()[3].Value, 0.0001)
}

func TestStatisticsViewModel_FailureBeforeResolve(t *testing.T) {
	fetchErr := errors.New("connection refused")
	fetcher := &fakeFetcher{results: []fakeResult{{err: fetchErr}}}
	vm := NewStatisticsViewModel(fetcher)

	err := vm.Initialize(context.Background())

	require.ErrorIs(t, err, fetchErr)
	assert.Equal(t, zeroCards(), vm.Cards())

	status := vm.Status()
	assert.Equal(t, FetchFailed, status.State)
	assert.True(t, status.HasError())
	assert.ErrorIs(t, status.Err, fetchErr)
	assert.True(t, status.FetchedAt.IsZero())
}

func TestStatisticsViewModel_FailureKeepsPreviousDocument(t *testing.T) {
	fetcher := &fakeFetcher{results: []fakeResult{
		{stats: &model.GroupStatistics{TotalItemPrice: model.Float64(99), TotalItems: model.Float64(3)}},
		{err: errors.New("server error")},
	}}
	vm := NewStatisticsViewModel(fetcher)

	require.NoError(t, vm.Initialize(context.Background()))
	before := vm.Cards()

	require.Error(t, vm.Refetch(context.Background()))

	assert.Equal(t, before, vm.Cards())
	assert.Equal(t, FetchFailed, vm.Status().State)
	assert.False(t, vm.Status().FetchedAt.IsZero())
}

func TestStatisticsViewModel_RefetchReplacesWholeDocument(t *testing.T) {
	fetcher := &fakeFetcher{results: []fakeResult{
		{stats: &model.GroupStatistics{TotalItemPrice: model.Float64(150), TotalItems: model.Float64(12)}},
		{stats: &model.GroupStatistics{
			TotalItemPrice: model.Float64(500),
			TotalItems:     model.Float64(40),
			TotalLocations: model.Float64(5),
			TotalLabels:    model.Float64(8),
		}},
		{stats: &model.GroupStatistics{TotalLabels: model.Float64(1)}},
	}}
	vm := NewStatisticsViewModel(fetcher)

	require.NoError(t, vm.Initialize(context.Background()))
	require.NoError(t, vm.Refetch(context.Background()))

	want := []model.StatCard{
		{Label: "总价值", Value: 500, Type: model.CardTypeCurrency},
		{Label: "物品总数", Value: 40, Type: model.CardTypeNumber},
		{Label: "位置总数", Value: 5, Type: model.CardTypeNumber},
		{Label: "标签总数", Value: 8, Type: model.CardTypeNumber},
	}
	assert.Equal(t, want, vm.Cards())

	// A sparser document is not merged with the previous one.
	require.NoError(t, vm.Refetch(context.Background()))
	assert.Equal(t, []float64{0, 0, 0, 1}, cardValues(vm.Cards()))
}

func TestStatisticsViewModel_RefetchWhilePending(t *testing.T) {
	fetcher := &fakeFetcher{
		gate:    make(chan struct{}),
		results: []fakeResult{{stats: &model.GroupStatistics{TotalItems: model.Float64(2)}}},
	}
	vm := NewStatisticsViewModel(fetcher)

	done := make(chan error, 1)
	go func() {
		done <- vm.Initialize(context.Background())
	}()
	require.Eventually(t, func() bool {
		return vm.Status().State == FetchPending
	}, time.Second, time.Millisecond)

	require.NoError(t, vm.Refetch(context.Background()))

	close(fetcher.gate)
	require.NoError(t, <-done)
	assert.Equal(t, int32(1), fetcher.calls.Load())
}

func TestStatisticsViewModel_CardsIdempotent(t *testing.T) {
	fetcher := &fakeFetcher{results: []fakeResult{{stats: &model.GroupStatistics{TotalItems: model.Float64(7)}}}}
	vm := NewStatisticsViewModel(fetcher)
	require.NoError(t, vm.Initialize(context.Background()))

	first := vm.Cards()
	second := vm.Cards()

	assert.Equal(t, first, second)

	// Callers get their own slice.
	first[0].Value = 1000
	assert.Equal(t, second, vm.Cards())
}

func TestStatisticsViewModel_FetchedDocumentIsCopied(t *testing.T) {
	raw := &model.GroupStatistics{TotalItems: model.Float64(5)}
	fetcher := &fakeFetcher{results: []fakeResult{{stats: raw}}}
	vm := NewStatisticsViewModel(fetcher)
	require.NoError(t, vm.Initialize(context.Background()))

	*raw.TotalItems = 50

	assert.InDelta(t, 5.0, vm.Cards()[1].Value, 0.0001)
	assert.InDelta(t, 5.0, *vm.Statistics().TotalItems, 0.0001)
}

func TestStatisticsViewModel_VersionMoves(t *testing.T) {
	fetcher := &fakeFetcher{results: []fakeResult{
		{stats: &model.GroupStatistics{TotalItems: model.Float64(1)}},
		{err: errors.New("boom")},
	}}
	vm := NewStatisticsViewModel(fetcher)

	v0 := vm.Version()
	require.NoError(t, vm.Initialize(context.Background()))
	v1 := vm.Version()
	require.NoError(t, vm.Initialize(context.Background()))
	assert.Equal(t, v1, vm.Version(), "no-op initialize must not change the version")

	require.Error(t, vm.Refetch(context.Background()))
	v2 := vm.Version()

	assert.Greater(t, v1, v0)
	assert.Greater(t, v2, v1)
}

func TestStatisticsViewModel_CloseDropsLateResult(t *testing.T) {
	fetcher := &fakeFetcher{
		gate:    make(chan struct{}),
		results: []fakeResult{{stats: &model.GroupStatistics{TotalItems: model.Float64(10)}}},
	}
	vm := NewStatisticsViewModel(fetcher)

	done := make(chan error, 1)
	go func() {
		done <- vm.Initialize(context.Background())
	}()
	require.Eventually(t, func() bool {
		return vm.Status().State == FetchPending
	}, time.Second, time.Millisecond)

	vm.Close()
	close(fetcher.gate)

	assert.ErrorIs(t, <-done, ErrClosed)
	assert.Equal(t, zeroCards(), vm.Cards())
	assert.Nil(t, vm.Statistics())

	assert.ErrorIs(t, vm.Initialize(context.Background()), ErrClosed)
	assert.ErrorIs(t, vm.Refetch(context.Background()), ErrClosed)
	assert.Equal(t, int32(1), fetcher.calls.Load())
}

func TestStatisticsViewModel_CloseIsIdempotent(t *testing.T) {
	vm := NewStatisticsViewModel(&fakeFetcher{})

	vm.Close()
	v := vm.Version()
	vm.Close()

	assert.Equal(t, v, vm.Version())
}

func TestStatisticsViewModel_NilFetcher(t *testing.T) {
	vm := NewStatisticsViewModel(nil)

	err := vm.Initialize(context.Background())

	require.Error(t, err)
	assert.Equal(t, zeroCards(), vm.Cards())
	assert.Equal(t, FetchUnfetched, vm.Status().State)
}

func TestStatisticsViewModel_Snapshot(t *testing.T) {
	fetcher := &fakeFetcher{results: []fakeResult{{stats: &model.GroupStatistics{TotalLocations: model.Float64(6)}}}}
	vm := NewStatisticsViewModel(fetcher)
	require.NoError(t, vm.Initialize(context.Background()))

	cards, status := vm.Snapshot()

	assert.Equal(t, vm.Cards(), cards)
	assert.Equal(t, vm.Status(), status)
}

func TestFetchState_String(t *testing.T) {
	tests := []struct {
		want  string
		state FetchState
	}{
		{state: FetchUnfetched, want: "Unfetched"},
		{state: FetchPending, want: "Pending"},
		{state: FetchResolved, want: "Resolved"},
		{state: FetchFailed, want: "Failed"},
		{state: FetchState(42), want: "Unknown(42)"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.state.String())
		})
	}
}

func cardValues(cards []model.StatCard) []float64 {
	values := make([]float64, 0, len(cards))
	for _, c := range cards {
		values = append(values, c.Value)
	}
	return values
}
