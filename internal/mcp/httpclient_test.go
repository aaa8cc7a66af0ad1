package mcp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/claude/liftlog/internal/storage"
)

// newTestServer creates an httptest server that routes requests to handler functions
// keyed by path. Verifies the HTTP client sends correct paths and query params.
func newTestServer(t *testing.T, handlers map[string]http.HandlerFunc) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h, ok := handlers[r.URL.Path]
		if !ok {
			t.Errorf("unexpected request path: %s", r.URL.Path)
			http.NotFound(w, r)
			return
		}
		h(w, r)
	}))
}

func writeTestJSON(t *testing.T, w http.ResponseWriter, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		t.Fatal(err)
	}
}

// TestQuerySessions verifies the HTTP client sends the time range and parses
// the session list response.
func TestQuerySessions(t *testing.T) {
	ts := newTestServer(t, map[string]http.HandlerFunc{
		"/api/v1/sessions": func(w http.ResponseWriter, r *http.Request) {
			if got := r.URL.Query().Get("start"); got == "" {
				t.Error("start param missing")
			}
			writeTestJSON(t, w, []storage.SessionSummary{
				{ID: "session-1", ProgramID: "strength-101", TotalVolumeKg: 5400},
			})
		},
	})
	defer ts.Close()

	client := NewHTTPClient(ts.URL)
	start := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC)

	sessions, err := client.QuerySessions(context.Background(), start, end, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(sessions) != 1 {
		t.Fatalf("got %d sessions, want 1", len(sessions))
	}
	if sessions[0].TotalVolumeKg != 5400 {
		t.Errorf("total_volume_kg=%f, want 5400", sessions[0].TotalVolumeKg)
	}
}

// TestGetExerciseProgression verifies query params and the progression
// response shape.
func TestGetExerciseProgression(t *testing.T) {
	ts := newTestServer(t, map[string]http.HandlerFunc{
		"/api/v1/progression": func(w http.ResponseWriter, r *http.Request) {
			if got := r.URL.Query().Get("exercise"); got != "barbell-squat" {
				t.Errorf("exercise=%q, want barbell-squat", got)
			}
			if got := r.URL.Query().Get("limit"); got != "20" {
				t.Errorf("limit=%q, want 20", got)
			}
			writeTestJSON(t, w, []storage.ProgressionRow{
				{Date: "2026-08-10", MaxWeightKg: 140, EstimatedOneRM: 163.33, Sets: 3},
			})
		},
	})
	defer ts.Close()

	client := NewHTTPClient(ts.URL)
	points, err := client.GetExerciseProgression(context.Background(), 1, "barbell-squat", 20)
	if err != nil {
		t.Fatal(err)
	}
	if len(points) != 1 {
		t.Fatalf("got %d points, want 1", len(points))
	}
	if points[0].MaxWeightKg != 140 {
		t.Errorf("max_weight_kg=%f, want 140", points[0].MaxWeightKg)
	}
}

// TestGetWeeklyExerciseVolume verifies the range-to-weeks conversion and the
// by=exercise parameter.
func TestGetWeeklyExerciseVolume(t *testing.T) {
	ts := newTestServer(t, map[string]http.HandlerFunc{
		"/api/v1/volume/weekly": func(w http.ResponseWriter, r *http.Request) {
			if got := r.URL.Query().Get("by"); got != "exercise" {
				t.Errorf("by=%q, want exercise", got)
			}
			if got := r.URL.Query().Get("weeks"); got != "4" {
				t.Errorf("weeks=%q, want 4", got)
			}
			writeTestJSON(t, w, []storage.ExerciseWeekVolume{
				{WeekStart: time.Date(2026, 8, 3, 0, 0, 0, 0, time.UTC), ExerciseID: "bench-press", TonnageKg: 2200},
			})
		},
	})
	defer ts.Close()

	client := NewHTTPClient(ts.URL)
	end := time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC)
	start := end.AddDate(0, 0, -28)

	rows, err := client.GetWeeklyExerciseVolume(context.Background(), 1, start, end)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 {
		t.Fatalf("got %d rows, want 1", len(rows))
	}
	if rows[0].ExerciseID != "bench-press" {
		t.Errorf("exercise_id=%q, want bench-press", rows[0].ExerciseID)
	}
}

// TestGetDataStats verifies the stats endpoint parses a single struct response.
func TestGetDataStats(t *testing.T) {
	ts := newTestServer(t, map[string]http.HandlerFunc{
		"/api/v1/stats": func(w http.ResponseWriter, _ *http.Request) {
			writeTestJSON(t, w, storage.DataStats{
				TotalSessions: 42,
				TotalSets:     510,
				TotalRecords:  9,
			})
		},
	})
	defer ts.Close()

	client := NewHTTPClient(ts.URL)
	stats, err := client.GetDataStats(context.Background(), 1)
	if err != nil {
		t.Fatal(err)
	}
	if stats.TotalSessions != 42 {
		t.Errorf("total_sessions=%d, want 42", stats.TotalSessions)
	}
}

// TestHTTPClientServerError verifies the client returns an error on non-200 responses.
func TestHTTPClientServerError(t *testing.T) {
	ts := newTestServer(t, map[string]http.HandlerFunc{
		"/api/v1/records": func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"error":"database down"}`))
		},
	})
	defer ts.Close()

	client := NewHTTPClient(ts.URL)
	_, err := client.QueryPersonalRecords(context.Background(), 1)
	if err == nil {
		t.Fatal("expected error for 500 response")
	}
}
