package homebox

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Veraticus/homestats/internal/common"
	"github.com/Veraticus/homestats/internal/model"
	"github.com/Veraticus/homestats/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fastRetry = service.RetryOptions{
	MaxAttempts:  3,
	InitialDelay: time.Millisecond,
	MaxDelay:     5 * time.Millisecond,
	Multiplier:   2,
}

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *atomic.Int32) {
	t.Helper()

	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		handler(w, r)
	}))
	t.Cleanup(server.Close)

	client, err := NewClient(Options{
		BaseURL: server.URL + "/api",
		Token:   "secret-token",
		Retry:   fastRetry,
		Timeout: 2 * time.Second,
	})
	require.NoError(t, err)

	return client, &calls
}

func TestNewClient_Validation(t *testing.T) {
	tests := []struct {
		wantErr error
		name    string
		opts    Options
	}{
		{
			name:    "missing base URL",
			opts:    Options{Token: "t"},
			wantErr: common.ErrMissingConfig,
		},
		{
			name:    "relative base URL",
			opts:    Options{BaseURL: "homebox/api", Token: "t"},
			wantErr: common.ErrInvalidConfig,
		},
		{
			name:    "missing token",
			opts:    Options{BaseURL: "https://homebox.example.com/api"},
			wantErr: common.ErrMissingConfig,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewClient(tt.opts)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestClient_FetchGroupStatistics(t *testing.T) {
	client, calls := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/v1/groups/statistics", r.URL.Path)
		assert.Equal(t, "Bearer secret-token", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"totalUsers":2,"totalItems":40,"totalLocations":5,"totalLabels":8,"totalItemPrice":500.25,"totalWithWarranty":3}`))
	})

	stats, err := client.FetchGroupStatistics(context.Background())

	require.NoError(t, err)
	require.NotNil(t, stats)
	assert.InDelta(t, 500.25, model.ValueOr(stats.TotalItemPrice), 0.0001)
	assert.InDelta(t, 40.0, model.ValueOr(stats.TotalItems), 0.0001)
	assert.InDelta(t, 5.0, model.ValueOr(stats.TotalLocations), 0.0001)
	assert.InDelta(t, 8.0, model.ValueOr(stats.TotalLabels), 0.0001)
	assert.Equal(t, int32(1), calls.Load())
}

func TestClient_FetchGroupStatistics_PartialDocuments(t *testing.T) {
	tests := []struct {
		check func(t *testing.T, stats *model.GroupStatistics)
		name  string
		body  string
	}{
		{
			name: "missing fields",
			body: `{"totalItemPrice":150,"totalItems":12}`,
			check: func(t *testing.T, stats *model.GroupStatistics) {
				require.NotNil(t, stats)
				assert.NotNil(t, stats.TotalItemPrice)
				assert.NotNil(t, stats.TotalItems)
				assert.Nil(t, stats.TotalLocations)
				assert.Nil(t, stats.TotalLabels)
			},
		},
		{
			name: "null fields",
			body: `{"totalItemPrice":null,"totalItems":3}`,
			check: func(t *testing.T, stats *model.GroupStatistics) {
				require.NotNil(t, stats)
				assert.Nil(t, stats.TotalItemPrice)
				assert.InDelta(t, 3.0, *stats.TotalItems, 0.0001)
			},
		},
		{
			name: "non-numeric field",
			body: `{"totalItems":"lots","totalLabels":4}`,
			check: func(t *testing.T, stats *model.GroupStatistics) {
				require.NotNil(t, stats)
				assert.Nil(t, stats.TotalItems)
				assert.InDelta(t, 4.0, *stats.TotalLabels, 0.0001)
			},
		},
		{
			name: "null document",
			body: `null`,
			check: func(t *testing.T, stats *model.GroupStatistics) {
				assert.Nil(t, stats)
			},
		},
		{
			name: "empty body",
			body: ``,
			check: func(t *testing.T, stats *model.GroupStatistics) {
				assert.Nil(t, stats)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(tt.body))
			})

			stats, err := client.FetchGroupStatistics(context.Background())

			require.NoError(t, err)
			tt.check(t, stats)
		})
	}
}

func TestClient_FetchGroupStatistics_Errors(t *testing.T) {
	tests := []struct {
		wantErr   error
		name      string
		body      string
		status    int
		wantCalls int32
	}{
		{
			name:      "unauthorized is not retried",
			status:    http.StatusUnauthorized,
			body:      "token expired",
			wantErr:   common.ErrUnauthorized,
			wantCalls: 1,
		},
		{
			name:      "forbidden is not retried",
			status:    http.StatusForbidden,
			wantErr:   common.ErrUnauthorized,
			wantCalls: 1,
		},
		{
			name:      "not found is not retried",
			status:    http.StatusNotFound,
			wantErr:   common.ErrNotFound,
			wantCalls: 1,
		},
		{
			name:      "server error is retried",
			status:    http.StatusBadGateway,
			wantErr:   common.ErrServer,
			wantCalls: 3,
		},
		{
			name:      "rate limit is retried",
			status:    http.StatusTooManyRequests,
			wantErr:   common.ErrRateLimit,
			wantCalls: 3,
		},
		{
			name:      "malformed JSON",
			status:    http.StatusOK,
			body:      `[1,2,3]`,
			wantErr:   common.ErrBadResponse,
			wantCalls: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, calls := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			stats, err := client.FetchGroupStatistics(context.Background())

			require.Error(t, err)
			assert.Nil(t, stats)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, tt.wantCalls, calls.Load())
		})
	}
}

func TestClient_FetchGroupStatistics_RecoversAfterServerError(t *testing.T) {
	var attempts atomic.Int32
	client, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		if attempts.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"totalItems":12}`))
	})

	stats, err := client.FetchGroupStatistics(context.Background())

	require.NoError(t, err)
	assert.InDelta(t, 12.0, model.ValueOr(stats.TotalItems), 0.0001)
	assert.Equal(t, int32(2), attempts.Load())
}

func TestClient_FetchGroupStatistics_ContextCanceled(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.FetchGroupStatistics(ctx)

	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestClient_TokenWithBearerPrefix(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.False(t, strings.HasPrefix(r.Header.Get("Authorization"), "Bearer Bearer"))
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client, err := NewClient(Options{BaseURL: server.URL, Token: "Bearer abc"})
	require.NoError(t, err)

	_, err = client.FetchGroupStatistics(context.Background())
	assert.NoError(t, err)
}
