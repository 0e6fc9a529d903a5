package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// SchemaVersion is the current on-disk session-state schema. Version history:
//
//	1 — per-set values were plain booleans (done only)
//	2 — per-set values became objects, but carried only done and weight
//	3 — full SetRecord with done, weight, reps, rpe
const SchemaVersion = 3

// Day identifies a training day template (e.g. "tuesday").
type Day string

// ExerciseKey is the stable positional identity of an exercise within a
// day's template: block index plus item index within the block. The display
// name is not part of the identity because templates change over time.
type ExerciseKey struct {
	Block int
	Item  int
}

// String returns the wire form, e.g. "b0_i2".
func (k ExerciseKey) String() string {
	return fmt.Sprintf("b%d_i%d", k.Block, k.Item)
}

// MarshalText implements encoding.TextMarshaler so ExerciseKey can be used
// as a JSON map key.
func (k ExerciseKey) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *ExerciseKey) UnmarshalText(text []byte) error {
	parsed, err := ParseExerciseKey(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// ParseExerciseKey parses the wire form "b<block>_i<item>".
func ParseExerciseKey(s string) (ExerciseKey, error) {
	rest, ok := strings.CutPrefix(s, "b")
	if !ok {
		return ExerciseKey{}, fmt.Errorf("invalid exercise key %q", s)
	}
	blockStr, itemStr, ok := strings.Cut(rest, "_i")
	if !ok {
		return ExerciseKey{}, fmt.Errorf("invalid exercise key %q", s)
	}
	block, err := strconv.Atoi(blockStr)
	if err != nil || block < 0 {
		return ExerciseKey{}, fmt.Errorf("invalid block index in key %q", s)
	}
	item, err := strconv.Atoi(itemStr)
	if err != nil || item < 0 {
		return ExerciseKey{}, fmt.Errorf("invalid item index in key %q", s)
	}
	return ExerciseKey{Block: block, Item: item}, nil
}

// SetRecord holds everything logged for one set. Completion and logging are
// independent: a set can carry a weight or RPE while done is still false.
// Optional fields use nil for "not logged"; a submitted weight or RPE of
// zero or below is normalized to nil before it reaches a record.
type SetRecord struct {
	Done   bool     `json:"done"`
	Weight *float64 `json:"weight"`
	Reps   *string  `json:"reps"`
	RPE    *float64 `json:"rpe"`
}

// IsZero reports whether the record carries no information at all.
func (r SetRecord) IsZero() bool {
	return !r.Done && r.Weight == nil && r.Reps == nil && r.RPE == nil
}

// Clone returns a deep copy of the record.
func (r SetRecord) Clone() SetRecord {
	c := SetRecord{Done: r.Done}
	if r.Weight != nil {
		w := *r.Weight
		c.Weight = &w
	}
	if r.Reps != nil {
		reps := *r.Reps
		c.Reps = &reps
	}
	if r.RPE != nil {
		rpe := *r.RPE
		c.RPE = &rpe
	}
	return c
}

// SetMap maps set index to its record. Absent indices mean "not done, no
// data"; out-of-range indices are readable but never created by the store.
type SetMap map[int]SetRecord

// DayState is the mutable completion state of one day's session.
type DayState map[ExerciseKey]SetMap

// Clone returns a deep copy of the day state.
func (d DayState) Clone() DayState {
	c := make(DayState, len(d))
	for key, sets := range d {
		cs := make(SetMap, len(sets))
		for idx, rec := range sets {
			cs[idx] = rec.Clone()
		}
		c[key] = cs
	}
	return c
}

// CompletedSets counts sets marked done, regardless of index range.
func (d DayState) CompletedSets() int {
	n := 0
	for _, sets := range d {
		for _, rec := range sets {
			if rec.Done {
				n++
			}
		}
	}
	return n
}

// SessionState is the full current-session state across all days. It is
// constructed once at startup and passed explicitly; there is no ambient
// process-global copy.
type SessionState map[Day]DayState

// Clone returns a deep copy of the session state.
func (s SessionState) Clone() SessionState {
	c := make(SessionState, len(s))
	for day, state := range s {
		c[day] = state.Clone()
	}
	return c
}

// EntryMeta is the metadata block of a finalized history entry. NameMap is
// required reading material for the entry: exercise keys are positional and
// only meaningful against the template version active at save time.
type EntryMeta struct {
	ID            uuid.UUID              `json:"id"`
	Schema        int                    `json:"schema"`
	DurationSec   float64                `json:"duration_sec"`
	NameMap       map[ExerciseKey]string `json:"name_map"`
	ReducedVolume bool                   `json:"reduced_volume,omitempty"`
}

// HistoryEntry is one finalized session. Immutable once appended: Data is a
// deep copy taken at finalize time, so later edits to the live session
// cannot reach it.
type HistoryEntry struct {
	Date                 time.Time `json:"date"`
	Day                  Day       `json:"day"`
	WorkoutName          string    `json:"workout_name"`
	CompletedSets        int       `json:"completed_sets"`
	TotalSets            int       `json:"total_sets"`
	CompletionPercentage float64   `json:"completion_percentage"`
	Data                 DayState  `json:"data"`
	Meta                 EntryMeta `json:"meta"`
}

// Clone returns a deep copy of the entry.
func (e HistoryEntry) Clone() HistoryEntry {
	c := e
	c.Data = e.Data.Clone()
	if e.Meta.NameMap != nil {
		nm := make(map[ExerciseKey]string, len(e.Meta.NameMap))
		for k, v := range e.Meta.NameMap {
			nm[k] = v
		}
		c.Meta.NameMap = nm
	}
	return c
}
