package store

import (
	"log/slog"
	"strconv"

	"github.com/meltforce/setlog/internal/catalog"
	"github.com/meltforce/setlog/internal/models"
)

// A migration upgrades a raw session-state blob from one schema version to
// the next. Steps run in order, so adding a version means appending one
// function here and bumping models.SchemaVersion.
type migration struct {
	from int
	up   func(raw map[string]any) map[string]any
}

var migrations = []migration{
	{from: 1, up: migrateV1BoolsToRecords},
	{from: 2, up: migrateV2FillFields},
}

// Migrate upgrades a raw session-state blob of any schema version to the
// current typed SessionState. It is total: malformed entries are skipped
// per-entry, days absent from the catalog are dropped with an informational
// log, and every catalog day is present in the output (empty by default).
// A nil blob yields the empty state.
func Migrate(raw map[string]any, cat *catalog.Catalog, log *slog.Logger) models.SessionState {
	version := schemaOf(raw)
	if version < models.SchemaVersion && raw != nil {
		// The steps rewrite nested maps in place; work on a copy so the
		// caller's blob is untouched.
		raw = cloneRaw(raw)
	}
	for _, m := range migrations {
		if version == m.from && raw != nil {
			raw = m.up(raw)
			version++
		}
	}

	state := make(models.SessionState)
	for _, day := range cat.Days() {
		state[day] = models.DayState{}
	}

	for key, value := range raw {
		if key == "_schema" {
			continue
		}
		day := models.Day(key)
		if !cat.HasDay(day) {
			log.Info("dropping session data for unknown day", "day", key)
			continue
		}
		state[day] = decodeDayState(value)
	}
	return state
}

// cloneRaw deep-copies the nested map layers of a decoded JSON blob. Leaf
// values are immutable after decoding, so they are shared.
func cloneRaw(raw map[string]any) map[string]any {
	out := make(map[string]any, len(raw))
	for k, v := range raw {
		if m, ok := v.(map[string]any); ok {
			out[k] = cloneRaw(m)
		} else {
			out[k] = v
		}
	}
	return out
}

// schemaOf reads the version tag. Blobs predating the tag are version 1.
func schemaOf(raw map[string]any) int {
	if raw == nil {
		return models.SchemaVersion
	}
	if v, ok := raw["_schema"].(float64); ok && v >= 1 {
		return int(v)
	}
	return 1
}

// migrateV1BoolsToRecords converts v1 per-set plain booleans into record
// objects: true becomes {done: true}, everything else defaults.
func migrateV1BoolsToRecords(raw map[string]any) map[string]any {
	for dayKey, dayVal := range raw {
		if dayKey == "_schema" {
			continue
		}
		dayMap, ok := dayVal.(map[string]any)
		if !ok {
			continue
		}
		for exKey, exVal := range dayMap {
			setMap, ok := exVal.(map[string]any)
			if !ok {
				continue
			}
			for setIdx, setVal := range setMap {
				if done, ok := setVal.(bool); ok {
					setMap[setIdx] = map[string]any{"done": done}
				}
			}
			dayMap[exKey] = setMap
		}
	}
	raw["_schema"] = 2
	return raw
}

// migrateV2FillFields adds the fields v2 records may be missing. Missing
// optional fields default to null, missing done to false.
func migrateV2FillFields(raw map[string]any) map[string]any {
	for dayKey, dayVal := range raw {
		if dayKey == "_schema" {
			continue
		}
		dayMap, ok := dayVal.(map[string]any)
		if !ok {
			continue
		}
		for _, exVal := range dayMap {
			setMap, ok := exVal.(map[string]any)
			if !ok {
				continue
			}
			for _, setVal := range setMap {
				rec, ok := setVal.(map[string]any)
				if !ok {
					continue
				}
				if _, ok := rec["done"]; !ok {
					rec["done"] = false
				}
				for _, field := range []string{"weight", "reps", "rpe"} {
					if _, ok := rec[field]; !ok {
						rec[field] = nil
					}
				}
			}
		}
	}
	raw["_schema"] = 3
	return raw
}

// decodeDayState converts one day's raw mapping into a typed DayState,
// skipping anything that does not fit the shape.
func decodeDayState(value any) models.DayState {
	state := models.DayState{}
	dayMap, ok := value.(map[string]any)
	if !ok {
		return state
	}

	for exKeyStr, exVal := range dayMap {
		key, err := models.ParseExerciseKey(exKeyStr)
		if err != nil {
			continue
		}
		setMap, ok := exVal.(map[string]any)
		if !ok {
			continue
		}

		sets := models.SetMap{}
		for idxStr, setVal := range setMap {
			idx, err := strconv.Atoi(idxStr)
			if err != nil || idx < 0 {
				continue
			}
			rec, ok := decodeSetRecord(setVal)
			if !ok {
				continue
			}
			sets[idx] = rec
		}
		if len(sets) > 0 {
			state[key] = sets
		}
	}
	return state
}

func decodeSetRecord(value any) (models.SetRecord, bool) {
	raw, ok := value.(map[string]any)
	if !ok {
		return models.SetRecord{}, false
	}

	var rec models.SetRecord
	if done, ok := raw["done"].(bool); ok {
		rec.Done = done
	}
	// Zero and negative numbers mean "not logged" by convention; keep that
	// precisely even though it makes a literal 0 unrepresentable.
	if w, ok := raw["weight"].(float64); ok && w > 0 {
		rec.Weight = &w
	}
	if r, ok := raw["rpe"].(float64); ok && r > 0 {
		rec.RPE = &r
	}
	switch reps := raw["reps"].(type) {
	case string:
		if reps != "" {
			rec.Reps = &reps
		}
	case float64:
		s := strconv.FormatFloat(reps, 'f', -1, 64)
		rec.Reps = &s
	}
	return rec, true
}
