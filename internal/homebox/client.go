// Package homebox talks to the inventory server's REST API.
package homebox

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Veraticus/homestats/internal/common"
	"github.com/Veraticus/homestats/internal/model"
	"github.com/Veraticus/homestats/internal/service"
	"golang.org/x/oauth2"
)

const statisticsPath = "/v1/groups/statistics"

// maxErrorBody caps how much of an error response is kept in the error message.
const maxErrorBody = 512

// Options configures a Client.
type Options struct {
	HTTPClient *http.Client
	BaseURL    string
	Token      string
	Retry      service.RetryOptions
	Timeout    time.Duration
}

// Client implements service.StatisticsFetcher against a Homebox server.
type Client struct {
	httpClient *http.Client
	baseURL    *url.URL
	retry      service.RetryOptions
}

// NewClient creates a client for the API rooted at opts.BaseURL,
// e.g. https://homebox.example.com/api.
func NewClient(opts Options) (*Client, error) {
	if opts.BaseURL == "" {
		return nil, fmt.Errorf("%w: base URL", common.ErrMissingConfig)
	}
	base, err := url.Parse(strings.TrimRight(opts.BaseURL, "/"))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("%w: base URL %q", common.ErrInvalidConfig, opts.BaseURL)
	}
	if opts.Token == "" {
		return nil, fmt.Errorf("%w: API token", common.ErrMissingConfig)
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 15 * time.Second
	}

	// The oauth2 transport wraps the base client's transport and sets the
	// Authorization header on every request.
	ctx := context.Background()
	if opts.HTTPClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, opts.HTTPClient)
	}
	httpClient := oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: strings.TrimPrefix(opts.Token, "Bearer "),
		TokenType:   "Bearer",
	}))
	httpClient.Timeout = opts.Timeout

	return &Client{
		httpClient: httpClient,
		baseURL:    base,
		retry:      opts.Retry,
	}, nil
}

// FetchGroupStatistics returns the aggregate statistics of the caller's group.
func (c *Client) FetchGroupStatistics(ctx context.Context) (*model.GroupStatistics, error) {
	var stats *model.GroupStatistics

	err := common.WithRetry(ctx, func() error {
		var fetchErr error
		stats, fetchErr = c.fetchOnce(ctx)
		return fetchErr
	}, c.retry)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch group statistics: %w", err)
	}

	return stats, nil
}

func (c *Client) fetchOnce(ctx context.Context) (*model.GroupStatistics, error) {
	endpoint := c.baseURL.JoinPath(statisticsPath)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, common.Permanent(fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("Accept", "application/json")

	slog.Debug("Requesting group statistics", "url", endpoint.Redacted())

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &common.RetryableError{
			Err:       fmt.Errorf("request failed: %w", err),
			Retryable: true,
		}
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	slog.Debug("Group statistics response",
		"status", resp.StatusCode,
		"duration", time.Since(start))

	if err := checkStatus(resp); err != nil {
		return nil, err
	}

	return decodeStatistics(resp.Body)
}

// checkStatus maps non-2xx responses to application errors.
func checkStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	detail := strings.TrimSpace(string(body))

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return common.Permanent(fmt.Errorf("%w: %d %s", common.ErrUnauthorized, resp.StatusCode, detail))
	case resp.StatusCode == http.StatusNotFound:
		return common.Permanent(fmt.Errorf("%w: %s", common.ErrNotFound, statisticsPath))
	case resp.StatusCode == http.StatusTooManyRequests:
		return fmt.Errorf("%w: %s", common.ErrRateLimit, detail)
	case resp.StatusCode >= 500:
		return fmt.Errorf("%w: %d %s", common.ErrServer, resp.StatusCode, detail)
	default:
		return common.Permanent(fmt.Errorf("unexpected status %d: %s", resp.StatusCode, detail))
	}
}

// decodeStatistics parses the response body. An empty body or a JSON null
// yields a nil document. Fields that are absent, null or not numbers stay nil.
func decodeStatistics(r io.Reader) (*model.GroupStatistics, error) {
	var fields map[string]json.RawMessage
	if err := json.NewDecoder(r).Decode(&fields); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, common.Permanent(fmt.Errorf("%w: %w", common.ErrBadResponse, err))
	}
	if fields == nil {
		return nil, nil
	}

	return &model.GroupStatistics{
		TotalItemPrice: numberField(fields, "totalItemPrice"),
		TotalItems:     numberField(fields, "totalItems"),
		TotalLocations: numberField(fields, "totalLocations"),
		TotalLabels:    numberField(fields, "totalLabels"),
	}, nil
}

func numberField(fields map[string]json.RawMessage, name string) *float64 {
	raw, ok := fields[name]
	if !ok {
		return nil
	}

	var v *float64
	if err := json.Unmarshal(raw, &v); err != nil {
		slog.Debug("Ignoring non-numeric statistics field", "field", name, "value", string(raw))
		return nil
	}
	return v
}
