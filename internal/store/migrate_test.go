package store

import (
	"encoding/json"
	"reflect"
	"testing"

	"github.com/meltforce/setlog/internal/models"
)

// TestMigrateV1Booleans verifies the v1 plain-boolean shape upgrades to full
// records: true → done with all optional fields unset, false likewise.
func TestMigrateV1Booleans(t *testing.T) {
	raw := map[string]any{
		"tuesday": map[string]any{
			"b0_i0": map[string]any{"0": true, "1": false},
		},
	}

	state := Migrate(raw, testCatalog(t), testLogger())

	sets := state["tuesday"][models.ExerciseKey{Block: 0, Item: 0}]
	set0 := sets[0]
	if !set0.Done || set0.Weight != nil || set0.Reps != nil || set0.RPE != nil {
		t.Errorf("set 0 = %+v, want done=true and all fields unset", set0)
	}
	set1 := sets[1]
	if set1.Done || set1.Weight != nil || set1.Reps != nil || set1.RPE != nil {
		t.Errorf("set 1 = %+v, want done=false and all fields unset", set1)
	}
}

// TestMigrateV2PartialRecords verifies records missing newer fields get
// defaults while present fields survive.
func TestMigrateV2PartialRecords(t *testing.T) {
	raw := map[string]any{
		"_schema": float64(2),
		"thursday": map[string]any{
			"b1_i0": map[string]any{
				"0": map[string]any{"done": true, "weight": float64(15)},
			},
		},
	}

	state := Migrate(raw, testCatalog(t), testLogger())

	rec := state["thursday"][models.ExerciseKey{Block: 1, Item: 0}][0]
	if !rec.Done {
		t.Error("done lost in migration")
	}
	if rec.Weight == nil || *rec.Weight != 15 {
		t.Errorf("weight = %v, want 15", rec.Weight)
	}
	if rec.Reps != nil || rec.RPE != nil {
		t.Errorf("reps/rpe = %v/%v, want unset", rec.Reps, rec.RPE)
	}
}

// TestMigrateIdempotent verifies migrate(migrate(x)) == migrate(x), using the
// wire encoding as the round-trip medium.
func TestMigrateIdempotent(t *testing.T) {
	w := 22.5
	raw := map[string]any{
		"tuesday": map[string]any{
			"b1_i0": map[string]any{"0": true, "1": false},
		},
	}
	cat := testCatalog(t)

	once := Migrate(raw, cat, testLogger())
	once["tuesday"][models.ExerciseKey{Block: 1, Item: 0}][0] = models.SetRecord{Done: true, Weight: &w}

	// Re-encode in the current wire shape and migrate again.
	wire := map[string]any{"_schema": models.SchemaVersion}
	for day, ds := range once {
		wire[string(day)] = ds
	}
	data, err := json.Marshal(wire)
	if err != nil {
		t.Fatal(err)
	}
	var rawAgain map[string]any
	if err := json.Unmarshal(data, &rawAgain); err != nil {
		t.Fatal(err)
	}

	twice := Migrate(rawAgain, cat, testLogger())
	if !reflect.DeepEqual(once, twice) {
		t.Errorf("second migration changed the state:\n once: %+v\ntwice: %+v", once, twice)
	}
}

// TestMigrateLeavesInputUntouched verifies migration does not rewrite the
// caller's blob while upgrading it.
func TestMigrateLeavesInputUntouched(t *testing.T) {
	raw := map[string]any{
		"tuesday": map[string]any{
			"b0_i0": map[string]any{"0": true},
		},
	}

	state := Migrate(raw, testCatalog(t), testLogger())

	if !state["tuesday"][models.ExerciseKey{Block: 0, Item: 0}][0].Done {
		t.Fatal("migrated record not done")
	}
	if _, ok := raw["_schema"]; ok {
		t.Error("version tag written into the input blob")
	}
	set := raw["tuesday"].(map[string]any)["b0_i0"].(map[string]any)["0"]
	if done, ok := set.(bool); !ok || !done {
		t.Errorf("input set value = %v (%T), want the original boolean", set, set)
	}
}

// TestMigrateDropsUnknownDays verifies obsolete day identifiers are dropped
// while every current catalog day is present in the output.
func TestMigrateDropsUnknownDays(t *testing.T) {
	raw := map[string]any{
		"monday": map[string]any{
			"b0_i0": map[string]any{"0": true},
		},
		"tuesday": map[string]any{
			"b0_i0": map[string]any{"0": true},
		},
	}
	cat := testCatalog(t)

	state := Migrate(raw, cat, testLogger())

	if _, ok := state["monday"]; ok {
		t.Error("obsolete day survived migration")
	}
	for _, day := range cat.Days() {
		if _, ok := state[day]; !ok {
			t.Errorf("catalog day %q missing from migrated state", day)
		}
	}
	if len(state["tuesday"]) != 1 {
		t.Errorf("tuesday data lost: %+v", state["tuesday"])
	}
}

// TestMigrateSkipsMalformedEntries verifies garbage at any nesting level is
// skipped per entry instead of failing the whole migration.
func TestMigrateSkipsMalformedEntries(t *testing.T) {
	raw := map[string]any{
		"tuesday": map[string]any{
			"not-a-key": map[string]any{"0": true},
			"b0_i0":     "not-a-map",
			"b0_i1": map[string]any{
				"x":  true,
				"-3": true,
				"0":  true,
				"1":  "garbage",
			},
		},
		"thursday": 42,
	}

	state := Migrate(raw, testCatalog(t), testLogger())

	tuesday := state["tuesday"]
	if len(tuesday) != 1 {
		t.Fatalf("tuesday has %d exercises, want 1 (only the well-formed one)", len(tuesday))
	}
	sets := tuesday[models.ExerciseKey{Block: 0, Item: 1}]
	if len(sets) != 1 || !sets[0].Done {
		t.Errorf("sets = %+v, want only index 0 done", sets)
	}
	if len(state["thursday"]) != 0 {
		t.Errorf("thursday = %+v, want empty", state["thursday"])
	}
}

// TestMigrateNilBlob verifies a missing resource yields the empty default
// with all catalog days initialized.
func TestMigrateNilBlob(t *testing.T) {
	cat := testCatalog(t)
	state := Migrate(nil, cat, testLogger())
	if len(state) != len(cat.Days()) {
		t.Errorf("state has %d days, want %d", len(state), len(cat.Days()))
	}
	for day, ds := range state {
		if len(ds) != 0 {
			t.Errorf("day %q not empty: %+v", day, ds)
		}
	}
}

// TestMigrateNormalizesZeroWeight verifies the ≤0 → unset convention is
// applied during migration too.
func TestMigrateNormalizesZeroWeight(t *testing.T) {
	raw := map[string]any{
		"_schema": float64(3),
		"tuesday": map[string]any{
			"b1_i0": map[string]any{
				"0": map[string]any{"done": true, "weight": float64(0), "reps": nil, "rpe": float64(-1)},
			},
		},
	}

	state := Migrate(raw, testCatalog(t), testLogger())
	rec := state["tuesday"][models.ExerciseKey{Block: 1, Item: 0}][0]
	if rec.Weight != nil || rec.RPE != nil {
		t.Errorf("record = %+v, want weight and rpe unset", rec)
	}
}

// TestMigrateCoercesNumericReps verifies a numeric reps value from an older
// client is preserved as its string form.
func TestMigrateCoercesNumericReps(t *testing.T) {
	raw := map[string]any{
		"_schema": float64(3),
		"tuesday": map[string]any{
			"b1_i0": map[string]any{
				"0": map[string]any{"done": true, "reps": float64(8)},
			},
		},
	}

	state := Migrate(raw, testCatalog(t), testLogger())
	rec := state["tuesday"][models.ExerciseKey{Block: 1, Item: 0}][0]
	if rec.Reps == nil || *rec.Reps != "8" {
		t.Errorf("reps = %v, want \"8\"", rec.Reps)
	}
}
