// Package sync pushes a local history log to a remote setlog server, so a
// workout logged offline ends up in the canonical history. The server
// deduplicates on entry ID, which makes repeated pushes safe.
package sync

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Client sends data to a setlog server over HTTP.
type Client struct {
	serverURL  string
	httpClient *http.Client
}

// NewClient creates a new HTTP client for the given server.
func NewClient(serverURL string) *Client {
	return &Client{
		serverURL: strings.TrimRight(serverURL, "/"),
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// RemoteCount returns the number of finalized workouts the server knows of.
func (c *Client) RemoteCount() (int, error) {
	resp, err := c.httpClient.Get(c.serverURL + "/api/v1/analytics/summary")
	if err != nil {
		return 0, fmt.Errorf("fetching summary: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return 0, fmt.Errorf("summary request failed (status %d): %s", resp.StatusCode, body)
	}

	var summary struct {
		TotalWorkouts int `json:"total_workouts"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&summary); err != nil {
		return 0, fmt.Errorf("decoding summary: %w", err)
	}
	return summary.TotalWorkouts, nil
}

// PushHistory POSTs an exported history resource to the server's import
// endpoint and returns the number of entries the server added. Retries up to
// 3 times with exponential backoff on failure.
func (c *Client) PushHistory(export []byte) (int, error) {
	var lastErr error
	for attempt := range 3 {
		if attempt > 0 {
			time.Sleep(time.Duration(1<<uint(attempt-1)) * time.Second)
		}

		resp, err := c.httpClient.Post(
			c.serverURL+"/api/v1/history/import",
			"application/json",
			bytes.NewReader(export),
		)
		if err != nil {
			lastErr = err
			continue
		}

		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()

		if resp.StatusCode == http.StatusOK {
			var result struct {
				Added int `json:"added"`
			}
			if err := json.Unmarshal(body, &result); err != nil {
				return 0, fmt.Errorf("decoding import response: %w", err)
			}
			return result.Added, nil
		}
		lastErr = fmt.Errorf("import failed (status %d): %s", resp.StatusCode, body)
	}

	return 0, fmt.Errorf("after 3 attempts: %w", lastErr)
}
