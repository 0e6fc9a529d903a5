package store

import (
	"log/slog"

	"github.com/meltforce/setlog/internal/catalog"
	"github.com/meltforce/setlog/internal/models"
)

// Limits bound user-supplied set fields at the input boundary. Values above
// a limit are clamped; zero or negative values mean "unset".
type Limits struct {
	MaxWeightKg float64
	MaxRPE      float64
}

// SessionStore owns the mutable current-session state. Every mutation is
// written through to the session resource immediately; a failed write is
// logged and retried implicitly on the next mutation, since each write
// rewrites the whole file.
type SessionStore struct {
	gw     *Gateway
	log    *slog.Logger
	limits Limits
	state  models.SessionState
}

// OpenSession loads (and, if needed, migrates) the persisted session state.
func OpenSession(gw *Gateway, cat *catalog.Catalog, limits Limits, log *slog.Logger) *SessionStore {
	if limits.MaxRPE <= 0 {
		limits.MaxRPE = 10
	}
	return &SessionStore{
		gw:     gw,
		log:    log,
		limits: limits,
		state:  Migrate(gw.LoadSessionRaw(), cat, log),
	}
}

// GetSet returns the record for one set. Absent days, exercises, or indices
// yield the default record; lookups never fail and never create entries.
func (s *SessionStore) GetSet(day models.Day, key models.ExerciseKey, idx int) models.SetRecord {
	return s.state[day][key][idx].Clone()
}

// ToggleDone flips a set's done flag and returns the new value so the caller
// can decide about side effects such as starting a rest timer.
func (s *SessionStore) ToggleDone(day models.Day, key models.ExerciseKey, idx int) bool {
	var done bool
	s.update(day, key, idx, func(rec *models.SetRecord) {
		rec.Done = !rec.Done
		done = rec.Done
	})
	return done
}

// SetDone sets a set's done flag explicitly.
func (s *SessionStore) SetDone(day models.Day, key models.ExerciseKey, idx int, done bool) {
	s.update(day, key, idx, func(rec *models.SetRecord) {
		rec.Done = done
	})
}

// LogWeight records the weight used for a set. Zero or negative means
// "clear": a logged 0 is indistinguishable from "not logged", which is the
// documented convention, not an accident.
func (s *SessionStore) LogWeight(day models.Day, key models.ExerciseKey, idx int, weight float64) {
	s.update(day, key, idx, func(rec *models.SetRecord) {
		if weight <= 0 {
			rec.Weight = nil
			return
		}
		if weight > s.limits.MaxWeightKg {
			weight = s.limits.MaxWeightKg
		}
		rec.Weight = &weight
	})
}

// LogReps records the actual reps performed for a set. Empty clears.
func (s *SessionStore) LogReps(day models.Day, key models.ExerciseKey, idx int, reps string) {
	s.update(day, key, idx, func(rec *models.SetRecord) {
		if reps == "" {
			rec.Reps = nil
			return
		}
		rec.Reps = &reps
	})
}

// LogRPE records the perceived exertion for a set, clamped to the RPE scale.
// Zero or negative clears, same convention as weight.
func (s *SessionStore) LogRPE(day models.Day, key models.ExerciseKey, idx int, rpe float64) {
	s.update(day, key, idx, func(rec *models.SetRecord) {
		if rpe <= 0 {
			rec.RPE = nil
			return
		}
		if rpe > s.limits.MaxRPE {
			rpe = s.limits.MaxRPE
		}
		rec.RPE = &rpe
	})
}

// ResetDay empties the day's state. This is the user-facing cancellation of
// an in-progress session; there is no undo.
func (s *SessionStore) ResetDay(day models.Day) {
	s.state[day] = models.DayState{}
	s.persist()
}

// ResetExercise removes a single exercise's logged sets.
func (s *SessionStore) ResetExercise(day models.Day, key models.ExerciseKey) {
	delete(s.state[day], key)
	s.persist()
}

// DayState returns a deep copy of one day's state. Finalize snapshots rely
// on the copy being detached from the live state.
func (s *SessionStore) DayState(day models.Day) models.DayState {
	return s.state[day].Clone()
}

// State returns a deep copy of the full session state.
func (s *SessionStore) State() models.SessionState {
	return s.state.Clone()
}

// update applies a mutation to one set record, creating intermediate maps as
// needed, and writes through.
func (s *SessionStore) update(day models.Day, key models.ExerciseKey, idx int, fn func(*models.SetRecord)) {
	if s.state == nil {
		s.state = models.SessionState{}
	}
	if s.state[day] == nil {
		s.state[day] = models.DayState{}
	}
	if s.state[day][key] == nil {
		s.state[day][key] = models.SetMap{}
	}
	rec := s.state[day][key][idx]
	fn(&rec)
	s.state[day][key][idx] = rec
	s.persist()
}

func (s *SessionStore) persist() {
	if err := s.gw.SaveSession(s.state); err != nil {
		// Non-fatal: the in-memory state is authoritative and the next
		// mutation rewrites the whole file.
		s.log.Warn("session write-through failed", "error", err)
	}
}
