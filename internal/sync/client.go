// Package sync mirrors locally committed training data to a remote LiftLog
// server. Dispatch after a completed workout is fire-and-forget; anything the
// network drops stays queued in the local outbox and is replayed by
// Reconcile. Every server endpoint is an upsert, so replays are safe.
package sync

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client sends data to the LiftLog server over HTTP.
type Client struct {
	serverURL  string
	apiKey     string
	httpClient *http.Client
	backoff    time.Duration
}

// NewClient creates a new HTTP client for the LiftLog server.
func NewClient(serverURL, apiKey string) *Client {
	return &Client{
		serverURL: serverURL,
		apiKey:    apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		backoff: time.Second,
	}
}

// endpoints maps outbox kinds to server sync paths.
var endpoints = map[string]string{
	"session": "/api/v1/sync/sessions",
	"records": "/api/v1/sync/records",
	"cursor":  "/api/v1/sync/cursor",
	"mission": "/api/v1/sync/missions",
}

// Send POSTs one queued payload to the endpoint for its kind. Retries up to
// 3 times with exponential backoff.
func (c *Client) Send(kind string, payload json.RawMessage) error {
	path, ok := endpoints[kind]
	if !ok {
		return fmt.Errorf("unknown sync kind %q", kind)
	}

	var lastErr error
	for attempt := range 3 {
		if attempt > 0 {
			time.Sleep(time.Duration(1<<uint(attempt-1)) * c.backoff)
		}

		req, err := http.NewRequest(http.MethodPost, c.serverURL+path, bytes.NewReader(payload))
		if err != nil {
			return fmt.Errorf("building %s request: %w", kind, err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-API-Key", c.apiKey)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()

		if resp.StatusCode == http.StatusOK {
			return nil
		}
		lastErr = fmt.Errorf("%s sync failed (status %d): %s", kind, resp.StatusCode, body)
	}

	return fmt.Errorf("after 3 attempts: %w", lastErr)
}
