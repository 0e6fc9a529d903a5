package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/meltforce/setlog/internal/analytics"
	"github.com/meltforce/setlog/internal/catalog"
	"github.com/meltforce/setlog/internal/models"
	"github.com/meltforce/setlog/internal/progress"
)

// HTTPClient implements DataSource by calling the setlog REST API.
// Used for remote MCP mode where the binary runs locally (stdio) but
// data lives on the remote server (accessed over Tailscale).
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
}

// Compile-time check: *HTTPClient satisfies DataSource.
var _ DataSource = (*HTTPClient)(nil)

// NewHTTPClient creates an HTTPClient targeting the given base URL.
func NewHTTPClient(baseURL string) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *HTTPClient) get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("httpclient: create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("httpclient: %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("httpclient: read body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("httpclient: %s returned %d: %s", path, resp.StatusCode, body)
	}

	return body, nil
}

// getJSON fetches path and decodes the response into v.
func (c *HTTPClient) getJSON(ctx context.Context, path string, params url.Values, v any) error {
	body, err := c.get(ctx, path, params)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("httpclient: decode %s: %w", path, err)
	}
	return nil
}

func (c *HTTPClient) Plans(ctx context.Context) (map[models.Day]catalog.DayPlan, error) {
	var plans map[models.Day]catalog.DayPlan
	if err := c.getJSON(ctx, "/api/v1/catalog", nil, &plans); err != nil {
		return nil, err
	}
	return plans, nil
}

func (c *HTTPClient) State(ctx context.Context) (models.SessionState, error) {
	var resp struct {
		Days models.SessionState `json:"days"`
	}
	if err := c.getJSON(ctx, "/api/v1/state", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Days, nil
}

func (c *HTTPClient) Progress(ctx context.Context, day models.Day) (progress.Progress, error) {
	var p progress.Progress
	if err := c.getJSON(ctx, "/api/v1/progress/"+url.PathEscape(string(day)), nil, &p); err != nil {
		return progress.Progress{}, err
	}
	return p, nil
}

func (c *HTTPClient) AllProgress(ctx context.Context) ([]progress.Progress, error) {
	var all []progress.Progress
	if err := c.getJSON(ctx, "/api/v1/progress", nil, &all); err != nil {
		return nil, err
	}
	return all, nil
}

func (c *HTTPClient) History(ctx context.Context, limit int) ([]models.HistoryEntry, error) {
	params := url.Values{}
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}

	var entries []models.HistoryEntry
	if err := c.getJSON(ctx, "/api/v1/history", params, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func (c *HTTPClient) Streak(ctx context.Context) (int, error) {
	var resp struct {
		Streak int `json:"streak"`
	}
	if err := c.getJSON(ctx, "/api/v1/analytics/streak", nil, &resp); err != nil {
		return 0, err
	}
	return resp.Streak, nil
}

func (c *HTTPClient) PersonalRecords(ctx context.Context) (map[string]float64, error) {
	var prs map[string]float64
	if err := c.getJSON(ctx, "/api/v1/analytics/prs", nil, &prs); err != nil {
		return nil, err
	}
	return prs, nil
}

func (c *HTTPClient) WeeklyVolume(ctx context.Context) ([]analytics.WeekBucket, error) {
	var buckets []analytics.WeekBucket
	if err := c.getJSON(ctx, "/api/v1/analytics/weekly", nil, &buckets); err != nil {
		return nil, err
	}
	return buckets, nil
}

func (c *HTTPClient) Suggestions(ctx context.Context) ([]analytics.Suggestion, error) {
	var suggestions []analytics.Suggestion
	if err := c.getJSON(ctx, "/api/v1/analytics/suggestions", nil, &suggestions); err != nil {
		return nil, err
	}
	return suggestions, nil
}

func (c *HTTPClient) Summary(ctx context.Context) (analytics.Summary, error) {
	var summary analytics.Summary
	if err := c.getJSON(ctx, "/api/v1/analytics/summary", nil, &summary); err != nil {
		return analytics.Summary{}, err
	}
	return summary, nil
}
