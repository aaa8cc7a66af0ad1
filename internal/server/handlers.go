package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/claude/liftlog/internal/models"
	"github.com/claude/liftlog/internal/storage"
	"github.com/go-chi/chi/v5"
)

func (s *Server) handleSyncSessions(w http.ResponseWriter, r *http.Request) {
	var session models.WorkoutSession
	if err := json.NewDecoder(r.Body).Decode(&session); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	if session.ID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "session ID required"})
		return
	}

	inserted, err := s.db.UpsertSession(r.Context(), userIDFromContext(r), &session)
	if err != nil {
		s.log.Error("session sync error", "session", session.ID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"id": session.ID, "inserted": inserted})
}

func (s *Server) handleSyncRecords(w http.ResponseWriter, r *http.Request) {
	var records []models.PersonalRecord
	if err := json.NewDecoder(r.Body).Decode(&records); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}

	written, err := s.db.UpsertPersonalRecords(r.Context(), userIDFromContext(r), records)
	if err != nil {
		s.log.Error("record sync error", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"written": written})
}

func (s *Server) handleSyncCursor(w http.ResponseWriter, r *http.Request) {
	var cursor models.Cursor
	if err := json.NewDecoder(r.Body).Decode(&cursor); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	if cursor.ProgramID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "program ID required"})
		return
	}

	if err := s.db.UpsertCursor(r.Context(), userIDFromContext(r), cursor); err != nil {
		s.log.Error("cursor sync error", "program", cursor.ProgramID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleSyncMissions(w http.ResponseWriter, r *http.Request) {
	var mission models.BlockMission
	if err := json.NewDecoder(r.Body).Decode(&mission); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	if mission.ID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "mission ID required"})
		return
	}

	if err := s.db.UpsertMission(r.Context(), userIDFromContext(r), mission); err != nil {
		s.log.Error("mission sync error", "mission", mission.ID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleQuerySessions(w http.ResponseWriter, r *http.Request) {
	start, end, err := parseTimeRange(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	sessions, err := s.db.QuerySessions(r.Context(), start, end, userIDFromContext(r))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, sessions)
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	session, err := s.db.GetSession(r.Context(), id, userIDFromContext(r))
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "session not found"})
		return
	}
	writeJSON(w, http.StatusOK, session)
}

func (s *Server) handleQueryRecords(w http.ResponseWriter, r *http.Request) {
	records, err := s.db.QueryPersonalRecords(r.Context(), userIDFromContext(r))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, records)
}

func (s *Server) handleQueryMissions(w http.ResponseWriter, r *http.Request) {
	programID := r.URL.Query().Get("program")
	if programID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "program parameter required"})
		return
	}

	missions, err := s.db.QueryMissions(r.Context(), userIDFromContext(r), programID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, missions)
}

func (s *Server) handleGetCursor(w http.ResponseWriter, r *http.Request) {
	programID := r.URL.Query().Get("program")
	if programID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "program parameter required"})
		return
	}

	cursor, err := s.db.GetCursor(r.Context(), userIDFromContext(r), programID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, cursor)
}

func (s *Server) handleProgression(w http.ResponseWriter, r *http.Request) {
	exerciseID := r.URL.Query().Get("exercise")
	if exerciseID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "exercise parameter required"})
		return
	}

	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid limit"})
			return
		}
		limit = n
	}

	points, err := s.db.GetExerciseProgression(r.Context(), userIDFromContext(r), exerciseID, limit)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, points)
}

func (s *Server) handleWeeklyVolume(w http.ResponseWriter, r *http.Request) {
	weeks := 6
	if v := r.URL.Query().Get("weeks"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid weeks"})
			return
		}
		weeks = n
	}

	end := time.Now().UTC()
	start := end.AddDate(0, 0, -7*weeks)
	rows, err := s.db.GetWeeklyExerciseVolume(r.Context(), userIDFromContext(r), start, end)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	// by=exercise returns the raw per-exercise rows; the default groups
	// tonnage by muscle through the catalog.
	if r.URL.Query().Get("by") == "exercise" {
		writeJSON(w, http.StatusOK, rows)
		return
	}
	writeJSON(w, http.StatusOK, storage.GroupVolumeByMuscle(rows, s.catalog))
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.db.GetDataStats(r.Context(), userIDFromContext(r))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func parseTimeRange(r *http.Request) (start, end time.Time, err error) {
	startStr := r.URL.Query().Get("start")
	endStr := r.URL.Query().Get("end")

	if startStr == "" {
		// Default: last 30 days
		end = time.Now()
		start = end.AddDate(0, 0, -30)
		return
	}

	start, err = time.Parse(time.RFC3339, startStr)
	if err != nil {
		start, err = time.Parse("2006-01-02", startStr)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
	}

	if endStr == "" {
		end = time.Now()
	} else {
		end, err = time.Parse(time.RFC3339, endStr)
		if err != nil {
			end, err = time.Parse("2006-01-02", endStr)
			if err != nil {
				return time.Time{}, time.Time{}, err
			}
			// End of day for date-only
			end = end.Add(24 * time.Hour)
		}
	}
	return
}
