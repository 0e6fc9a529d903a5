// Package tracker is the application core behind the HTTP and MCP surfaces.
// It owns the template catalog, the live session store, the history log, the
// active volume modifier, and the rest timer, and enforces the finalize
// protocol that turns a session into an immutable history entry.
package tracker

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/meltforce/setlog/internal/analytics"
	"github.com/meltforce/setlog/internal/catalog"
	"github.com/meltforce/setlog/internal/models"
	"github.com/meltforce/setlog/internal/progress"
	"github.com/meltforce/setlog/internal/store"
)

var (
	// ErrNoSetsLogged rejects finalizing a day whose effective total is zero.
	ErrNoSetsLogged = errors.New("no sets to log for this day")
	// ErrUnknownDay marks a day identifier missing from the catalog.
	ErrUnknownDay = errors.New("unknown training day")
	// ErrUnknownExercise marks an exercise key outside the day's template.
	ErrUnknownExercise = errors.New("unknown exercise")
)

// Options carries the tunables the tracker needs beyond its collaborators.
type Options struct {
	Modifier            progress.ModifierRule
	DefaultRestSec      int
	StreakToleranceDays int
	RPEThreshold        float64
	RPEWindow           int
}

// Tracker coordinates the session store, history log, and analytics over one
// catalog. It is not safe for concurrent use by itself; the serving layer
// serializes access.
type Tracker struct {
	cat      *catalog.Catalog
	sessions *store.SessionStore
	history  *store.HistoryLog
	opts     Options
	log      *slog.Logger

	reducedVolume bool
	startedAt     map[models.Day]time.Time
	restUntil     time.Time

	now func() time.Time
}

// New wires a tracker over its collaborators.
func New(cat *catalog.Catalog, sessions *store.SessionStore, history *store.HistoryLog, opts Options, log *slog.Logger) *Tracker {
	if opts.DefaultRestSec <= 0 {
		opts.DefaultRestSec = 90
	}
	if opts.StreakToleranceDays <= 0 {
		opts.StreakToleranceDays = 2
	}
	if opts.RPEThreshold <= 0 {
		opts.RPEThreshold = 7
	}
	if opts.RPEWindow <= 0 {
		opts.RPEWindow = 3
	}
	return &Tracker{
		cat:       cat,
		sessions:  sessions,
		history:   history,
		opts:      opts,
		log:       log,
		startedAt: make(map[models.Day]time.Time),
		now:       time.Now,
	}
}

// Catalog returns the template catalog.
func (t *Tracker) Catalog() *catalog.Catalog { return t.cat }

// ReducedVolume reports whether the reduced-volume modifier is active.
func (t *Tracker) ReducedVolume() bool { return t.reducedVolume }

// SetReducedVolume toggles the reduced-volume modifier. It affects progress
// totals and the meta block of entries finalized while active.
func (t *Tracker) SetReducedVolume(on bool) { t.reducedVolume = on }

func (t *Tracker) modifier() *progress.ModifierRule {
	if !t.reducedVolume {
		return nil
	}
	mod := t.opts.Modifier
	return &mod
}

// checkExercise validates a (day, key) pair against the catalog.
func (t *Tracker) checkExercise(day models.Day, key models.ExerciseKey) error {
	if !t.cat.HasDay(day) {
		return fmt.Errorf("%w: %s", ErrUnknownDay, day)
	}
	if _, ok := t.cat.Exercise(day, key); !ok {
		return fmt.Errorf("%w: %s %s", ErrUnknownExercise, day, key)
	}
	return nil
}

// State returns a deep copy of the full session state.
func (t *Tracker) State() models.SessionState {
	return t.sessions.State()
}

// DayState returns a deep copy of one day's state.
func (t *Tracker) DayState(day models.Day) (models.DayState, error) {
	if !t.cat.HasDay(day) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownDay, day)
	}
	return t.sessions.DayState(day), nil
}

// GetSet returns one set record, defaulting when absent.
func (t *Tracker) GetSet(day models.Day, key models.ExerciseKey, idx int) (models.SetRecord, error) {
	if err := t.checkExercise(day, key); err != nil {
		return models.SetRecord{}, err
	}
	return t.sessions.GetSet(day, key, idx), nil
}

// ToggleResult reports the outcome of toggling a set, including the rest
// suggestion the UI can feed into its countdown.
type ToggleResult struct {
	Done      bool       `json:"done"`
	RestSec   int        `json:"rest_sec,omitempty"`
	RestUntil *time.Time `json:"rest_until,omitempty"`
}

// ToggleSet flips a set's done flag. The first mutation of a day marks its
// session start for duration accounting. Completing a set starts the rest
// timer using the exercise's suggested rest.
func (t *Tracker) ToggleSet(day models.Day, key models.ExerciseKey, idx int) (ToggleResult, error) {
	if err := t.checkExercise(day, key); err != nil {
		return ToggleResult{}, err
	}
	t.markStarted(day)

	res := ToggleResult{Done: t.sessions.ToggleDone(day, key, idx)}
	if res.Done {
		rest := t.opts.DefaultRestSec
		if ex, ok := t.cat.Exercise(day, key); ok && ex.RestSec > 0 {
			rest = ex.RestSec
		}
		until := t.StartRest(rest)
		res.RestSec = rest
		res.RestUntil = &until
	}
	return res, nil
}

// SetPatch is a partial update to one set record. Nil fields are untouched.
type SetPatch struct {
	Done   *bool    `json:"done,omitempty"`
	Weight *float64 `json:"weight,omitempty"`
	Reps   *string  `json:"reps,omitempty"`
	RPE    *float64 `json:"rpe,omitempty"`
}

// UpdateSet applies a patch to one set record and returns the result. Weight
// and RPE follow the logging convention: zero or negative clears the field.
func (t *Tracker) UpdateSet(day models.Day, key models.ExerciseKey, idx int, patch SetPatch) (models.SetRecord, error) {
	if err := t.checkExercise(day, key); err != nil {
		return models.SetRecord{}, err
	}
	t.markStarted(day)

	if patch.Done != nil {
		t.sessions.SetDone(day, key, idx, *patch.Done)
	}
	if patch.Weight != nil {
		t.sessions.LogWeight(day, key, idx, *patch.Weight)
	}
	if patch.Reps != nil {
		t.sessions.LogReps(day, key, idx, *patch.Reps)
	}
	if patch.RPE != nil {
		t.sessions.LogRPE(day, key, idx, *patch.RPE)
	}
	return t.sessions.GetSet(day, key, idx), nil
}

// ResetDay empties the day's logged sets and forgets its start marker.
func (t *Tracker) ResetDay(day models.Day) error {
	if !t.cat.HasDay(day) {
		return fmt.Errorf("%w: %s", ErrUnknownDay, day)
	}
	t.sessions.ResetDay(day)
	delete(t.startedAt, day)
	return nil
}

// ResetExercise removes one exercise's logged sets.
func (t *Tracker) ResetExercise(day models.Day, key models.ExerciseKey) error {
	if err := t.checkExercise(day, key); err != nil {
		return err
	}
	t.sessions.ResetExercise(day, key)
	return nil
}

// Progress computes the day's completion figures under the active modifier.
func (t *Tracker) Progress(day models.Day) (progress.Progress, error) {
	plan, ok := t.cat.Day(day)
	if !ok {
		return progress.Progress{}, fmt.Errorf("%w: %s", ErrUnknownDay, day)
	}
	return progress.Compute(day, plan, t.sessions.DayState(day), t.modifier()), nil
}

// AllProgress computes progress for every catalog day, in day order.
func (t *Tracker) AllProgress() []progress.Progress {
	days := t.cat.Days()
	out := make([]progress.Progress, 0, len(days))
	for _, day := range days {
		p, err := t.Progress(day)
		if err != nil {
			continue
		}
		out = append(out, p)
	}
	return out
}

// Finalize snapshots the day into an immutable history entry, persists it,
// and clears the day for the next session. The sequence is all-or-nothing: a
// failed history write leaves the session state untouched so the user can
// retry without losing logged sets.
func (t *Tracker) Finalize(day models.Day) (models.HistoryEntry, error) {
	plan, ok := t.cat.Day(day)
	if !ok {
		return models.HistoryEntry{}, fmt.Errorf("%w: %s", ErrUnknownDay, day)
	}

	p, err := t.Progress(day)
	if err != nil {
		return models.HistoryEntry{}, err
	}
	if p.TotalSets == 0 {
		return models.HistoryEntry{}, fmt.Errorf("%w: %s", ErrNoSetsLogged, day)
	}

	now := t.now()
	var duration float64
	if started, ok := t.startedAt[day]; ok {
		duration = now.Sub(started).Seconds()
	}

	entry := models.HistoryEntry{
		Date:                 now,
		Day:                  day,
		WorkoutName:          plan.Title,
		CompletedSets:        p.CompletedSets,
		TotalSets:            p.TotalSets,
		CompletionPercentage: p.Percentage,
		Data:                 t.sessions.DayState(day),
		Meta: models.EntryMeta{
			ID:            uuid.New(),
			Schema:        models.SchemaVersion,
			DurationSec:   duration,
			NameMap:       t.cat.NameMap(day),
			ReducedVolume: t.reducedVolume,
		},
	}

	if err := t.history.Append(entry); err != nil {
		return models.HistoryEntry{}, fmt.Errorf("persisting history entry: %w", err)
	}

	t.sessions.ResetDay(day)
	delete(t.startedAt, day)
	t.log.Info("session finalized",
		"day", day,
		"completed", p.CompletedSets,
		"total", p.TotalSets,
		"duration_sec", duration,
	)
	return entry, nil
}

// markStarted records the session start on the first mutation of a day.
func (t *Tracker) markStarted(day models.Day) {
	if _, ok := t.startedAt[day]; !ok {
		t.startedAt[day] = t.now()
	}
}

// History returns up to limit entries, most recent first. limit <= 0 means
// all.
func (t *Tracker) History(limit int) []models.HistoryEntry {
	return t.history.Recent(limit)
}

// HistoryEntry returns one entry by its ID.
func (t *Tracker) HistoryEntry(id uuid.UUID) (models.HistoryEntry, bool) {
	return t.history.Get(id)
}

// ClearHistory removes every history entry.
func (t *Tracker) ClearHistory() error {
	return t.history.Clear()
}

// ExportHistory returns the history resource verbatim for download.
func (t *Tracker) ExportHistory() ([]byte, error) {
	return t.history.Export()
}

// ImportHistory merges entries from an exported history resource, skipping
// entries already present. Returns the number added.
func (t *Tracker) ImportHistory(data []byte) (int, error) {
	entries, err := store.DecodeHistory(data)
	if err != nil {
		return 0, fmt.Errorf("decoding history: %w", err)
	}
	return t.history.Merge(entries)
}

// Streak returns the current workout streak.
func (t *Tracker) Streak() int {
	return analytics.Streak(t.history.All(), t.now(), t.opts.StreakToleranceDays)
}

// PersonalRecords returns the max logged weight per exercise name.
func (t *Tracker) PersonalRecords() map[string]float64 {
	return analytics.PersonalRecords(t.history.All())
}

// WeeklyVolume returns per-(ISO week, day) workout and set counts.
func (t *Tracker) WeeklyVolume() []analytics.WeekBucket {
	return analytics.WeeklyAggregate(t.history.All())
}

// Suggestions returns load-progression suggestions from recent RPE data.
func (t *Tracker) Suggestions() []analytics.Suggestion {
	return analytics.ProgressionSuggestions(t.history.All(), t.opts.RPEWindow, t.opts.RPEThreshold)
}

// Summary returns headline figures over the whole history.
func (t *Tracker) Summary() analytics.Summary {
	return analytics.Summarize(t.history.All(), t.now(), t.opts.StreakToleranceDays)
}

// RestState is the rest timer as seen by a polling client.
type RestState struct {
	Active       bool    `json:"active"`
	RemainingSec float64 `json:"remaining_sec"`
}

// StartRest arms the rest timer for the given number of seconds and returns
// the deadline. The timer is a stored deadline; the client polls Rest for the
// remaining duration.
func (t *Tracker) StartRest(seconds int) time.Time {
	t.restUntil = t.now().Add(time.Duration(seconds) * time.Second)
	return t.restUntil
}

// Rest returns the rest timer state. An elapsed or never-started timer reads
// as inactive with zero remaining.
func (t *Tracker) Rest() RestState {
	remaining := t.restUntil.Sub(t.now())
	if remaining <= 0 {
		return RestState{}
	}
	return RestState{Active: true, RemainingSec: remaining.Seconds()}
}
