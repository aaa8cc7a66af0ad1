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

	"github.com/claude/liftlog/internal/models"
	"github.com/claude/liftlog/internal/storage"
)

// HTTPClient implements DataSource by calling the LiftLog REST API.
// Used for remote MCP mode where the binary runs locally (stdio) but
// data lives on the hosted server (accessed over Tailscale).
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
}

// Compile-time check: HTTPClient satisfies DataSource.
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

func timeParams(start, end time.Time) url.Values {
	v := url.Values{}
	v.Set("start", start.Format(time.RFC3339))
	v.Set("end", end.Format(time.RFC3339))
	return v
}

func (c *HTTPClient) QuerySessions(ctx context.Context, start, end time.Time, _ int) ([]storage.SessionSummary, error) {
	body, err := c.get(ctx, "/api/v1/sessions", timeParams(start, end))
	if err != nil {
		return nil, err
	}

	var sessions []storage.SessionSummary
	if err := json.Unmarshal(body, &sessions); err != nil {
		return nil, fmt.Errorf("httpclient: decode sessions: %w", err)
	}
	return sessions, nil
}

func (c *HTTPClient) GetSession(ctx context.Context, sessionID string, _ int) (*models.WorkoutSession, error) {
	body, err := c.get(ctx, "/api/v1/sessions/"+url.PathEscape(sessionID), nil)
	if err != nil {
		return nil, err
	}

	var session models.WorkoutSession
	if err := json.Unmarshal(body, &session); err != nil {
		return nil, fmt.Errorf("httpclient: decode session: %w", err)
	}
	return &session, nil
}

func (c *HTTPClient) QueryPersonalRecords(ctx context.Context, _ int) ([]models.PersonalRecord, error) {
	body, err := c.get(ctx, "/api/v1/records", nil)
	if err != nil {
		return nil, err
	}

	var records []models.PersonalRecord
	if err := json.Unmarshal(body, &records); err != nil {
		return nil, fmt.Errorf("httpclient: decode records: %w", err)
	}
	return records, nil
}

func (c *HTTPClient) QueryMissions(ctx context.Context, _ int, programID string) ([]models.BlockMission, error) {
	params := url.Values{}
	params.Set("program", programID)

	body, err := c.get(ctx, "/api/v1/missions", params)
	if err != nil {
		return nil, err
	}

	var missions []models.BlockMission
	if err := json.Unmarshal(body, &missions); err != nil {
		return nil, fmt.Errorf("httpclient: decode missions: %w", err)
	}
	return missions, nil
}

func (c *HTTPClient) GetExerciseProgression(ctx context.Context, _ int, exerciseID string, limit int) ([]storage.ProgressionRow, error) {
	params := url.Values{}
	params.Set("exercise", exerciseID)
	params.Set("limit", strconv.Itoa(limit))

	body, err := c.get(ctx, "/api/v1/progression", params)
	if err != nil {
		return nil, err
	}

	var points []storage.ProgressionRow
	if err := json.Unmarshal(body, &points); err != nil {
		return nil, fmt.Errorf("httpclient: decode progression: %w", err)
	}
	return points, nil
}

func (c *HTTPClient) GetWeeklyExerciseVolume(ctx context.Context, _ int, start, end time.Time) ([]storage.ExerciseWeekVolume, error) {
	// The REST endpoint takes a week count; derive it from the range.
	weeks := int(end.Sub(start).Hours()/(7*24) + 0.5)
	if weeks < 1 {
		weeks = 1
	}

	params := url.Values{}
	params.Set("by", "exercise")
	params.Set("weeks", strconv.Itoa(weeks))

	body, err := c.get(ctx, "/api/v1/volume/weekly", params)
	if err != nil {
		return nil, err
	}

	var rows []storage.ExerciseWeekVolume
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("httpclient: decode weekly volume: %w", err)
	}
	return rows, nil
}

func (c *HTTPClient) GetDataStats(ctx context.Context, _ int) (*storage.DataStats, error) {
	body, err := c.get(ctx, "/api/v1/stats", nil)
	if err != nil {
		return nil, err
	}

	var stats storage.DataStats
	if err := json.Unmarshal(body, &stats); err != nil {
		return nil, fmt.Errorf("httpclient: decode stats: %w", err)
	}
	return &stats, nil
}
