package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/meltforce/setlog/internal/models"
	"github.com/meltforce/setlog/internal/tracker"
)

func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.tracker.Catalog().Plans())
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{
		"schema": models.SchemaVersion,
		"days":   s.tracker.State(),
	})
}

func (s *Server) handleDayState(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	state, err := s.tracker.DayState(models.Day(chi.URLParam(r, "day")))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

func (s *Server) handleGetSet(w http.ResponseWriter, r *http.Request) {
	day, key, idx, ok := setParams(w, r)
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, err := s.tracker.GetSet(day, key, idx)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleToggleSet(w http.ResponseWriter, r *http.Request) {
	day, key, idx, ok := setParams(w, r)
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	res, err := s.tracker.ToggleSet(day, key, idx)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handlePatchSet(w http.ResponseWriter, r *http.Request) {
	day, key, idx, ok := setParams(w, r)
	if !ok {
		return
	}
	var patch tracker.SetPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, err := s.tracker.UpdateSet(day, key, idx, patch)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleResetDay(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.tracker.ResetDay(models.Day(chi.URLParam(r, "day"))); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

func (s *Server) handleResetExercise(w http.ResponseWriter, r *http.Request) {
	day := models.Day(chi.URLParam(r, "day"))
	key, err := models.ParseExerciseKey(chi.URLParam(r, "key"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid exercise key"})
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.tracker.ResetExercise(day, key); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

func (s *Server) handleFinalize(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, err := s.tracker.Finalize(models.Day(chi.URLParam(r, "day")))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, entry)
}

func (s *Server) handleAllProgress(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, s.tracker.AllProgress())
}

func (s *Server) handleProgress(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, err := s.tracker.Progress(models.Day(chi.URLParam(r, "day")))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid limit"})
			return
		}
		limit = n
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, s.tracker.History(limit))
}

func (s *Server) handleHistoryEntry(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid entry ID"})
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.tracker.HistoryEntry(id)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "entry not found"})
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

func (s *Server) handleClearHistory(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.tracker.ClearHistory(); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}

func (s *Server) handleExportHistory(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	data, err := s.tracker.ExportHistory()
	s.mu.Unlock()
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="workout_history.json"`)
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func (s *Server) handleImportHistory(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(r.Body)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "reading body: " + err.Error()})
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	added, err := s.tracker.ImportHistory(data)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"added": added})
}

func (s *Server) handleStreak(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]int{"streak": s.tracker.Streak()})
}

func (s *Server) handlePersonalRecords(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, s.tracker.PersonalRecords())
}

func (s *Server) handleWeekly(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, s.tracker.WeeklyVolume())
}

func (s *Server) handleSuggestions(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, s.tracker.Suggestions())
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, s.tracker.Summary())
}

func (s *Server) handleRest(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, s.tracker.Rest())
}

func (s *Server) handleStartRest(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Seconds int `json:"seconds"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	if req.Seconds <= 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "seconds must be positive"})
		return
	}
	s.mu.Lock()
	until := s.tracker.StartRest(req.Seconds)
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{"rest_until": until})
}

func (s *Server) handleModifier(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]bool{"reduced_volume": s.tracker.ReducedVolume()})
}

func (s *Server) handleSetModifier(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ReducedVolume bool `json:"reduced_volume"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	s.mu.Lock()
	s.tracker.SetReducedVolume(req.ReducedVolume)
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]bool{"reduced_volume": req.ReducedVolume})
}

// setParams pulls the (day, key, idx) triple out of the URL. On parse failure
// it writes the error response and returns ok=false.
func setParams(w http.ResponseWriter, r *http.Request) (models.Day, models.ExerciseKey, int, bool) {
	day := models.Day(chi.URLParam(r, "day"))
	key, err := models.ParseExerciseKey(chi.URLParam(r, "key"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid exercise key"})
		return "", models.ExerciseKey{}, 0, false
	}
	idx, err := strconv.Atoi(chi.URLParam(r, "idx"))
	if err != nil || idx < 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid set index"})
		return "", models.ExerciseKey{}, 0, false
	}
	return day, key, idx, true
}

// writeError maps tracker sentinels to HTTP statuses.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, tracker.ErrUnknownDay), errors.Is(err, tracker.ErrUnknownExercise):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	case errors.Is(err, tracker.ErrNoSetsLogged):
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
	default:
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
