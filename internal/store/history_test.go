package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/meltforce/setlog/internal/models"
)

func historyEntry(day models.Day, date time.Time) models.HistoryEntry {
	w := 22.5
	return models.HistoryEntry{
		Date:                 date,
		Day:                  day,
		WorkoutName:          "Full-body Strength & Power",
		CompletedSets:        3,
		TotalSets:            12,
		CompletionPercentage: 25.0,
		Data: models.DayState{
			{Block: 1, Item: 0}: {0: {Done: true, Weight: &w}},
		},
		Meta: models.EntryMeta{
			ID:          uuid.New(),
			Schema:      models.SchemaVersion,
			DurationSec: 1800,
			NameMap: map[models.ExerciseKey]string{
				{Block: 1, Item: 0}: "Goblet squat",
			},
		},
	}
}

// TestAppendAndReload verifies appended entries survive a reload through the
// gateway.
func TestAppendAndReload(t *testing.T) {
	gw := testGateway(t)
	h := OpenHistory(gw, testLogger())

	entry := historyEntry("tuesday", time.Date(2024, 1, 2, 18, 0, 0, 0, time.UTC))
	if err := h.Append(entry); err != nil {
		t.Fatalf("append: %v", err)
	}

	reloaded := OpenHistory(gw, testLogger())
	if reloaded.Len() != 1 {
		t.Fatalf("len = %d after reload, want 1", reloaded.Len())
	}
	got := reloaded.All()[0]
	if got.Meta.ID != entry.Meta.ID {
		t.Errorf("id = %v, want %v", got.Meta.ID, entry.Meta.ID)
	}
	if got.WorkoutName != entry.WorkoutName || got.CompletedSets != 3 {
		t.Errorf("entry = %+v, want %+v", got, entry)
	}
	if name := got.Meta.NameMap[models.ExerciseKey{Block: 1, Item: 0}]; name != "Goblet squat" {
		t.Errorf("name_map entry = %q, want Goblet squat", name)
	}
}

// TestAllReturnsCopies verifies callers cannot mutate stored entries through
// the returned slice.
func TestAllReturnsCopies(t *testing.T) {
	h := OpenHistory(testGateway(t), testLogger())
	if err := h.Append(historyEntry("tuesday", time.Now())); err != nil {
		t.Fatal(err)
	}

	out := h.All()
	*out[0].Data[models.ExerciseKey{Block: 1, Item: 0}][0].Weight = 999
	out[0].Meta.NameMap[models.ExerciseKey{Block: 1, Item: 0}] = "tampered"

	fresh := h.All()[0]
	if *fresh.Data[models.ExerciseKey{Block: 1, Item: 0}][0].Weight != 22.5 {
		t.Error("stored entry weight mutated through All()")
	}
	if fresh.Meta.NameMap[models.ExerciseKey{Block: 1, Item: 0}] != "Goblet squat" {
		t.Error("stored entry name map mutated through All()")
	}
}

// TestRecentOrdersByDate verifies most-recent-first ordering and the limit.
func TestRecentOrdersByDate(t *testing.T) {
	h := OpenHistory(testGateway(t), testLogger())
	dates := []time.Time{
		time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 5, 8, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 3, 8, 0, 0, 0, time.UTC),
	}
	for _, d := range dates {
		if err := h.Append(historyEntry("tuesday", d)); err != nil {
			t.Fatal(err)
		}
	}

	recent := h.Recent(2)
	if len(recent) != 2 {
		t.Fatalf("len = %d, want 2", len(recent))
	}
	if !recent[0].Date.Equal(dates[1]) || !recent[1].Date.Equal(dates[2]) {
		t.Errorf("order = %v, %v; want Jan 5 then Jan 3", recent[0].Date, recent[1].Date)
	}
}

// TestAppendRollsBackOnWriteFailure verifies a failed persist leaves the log
// unchanged so the caller can retry without duplicates.
func TestAppendRollsBackOnWriteFailure(t *testing.T) {
	dir := t.TempDir()
	// Point the history resource at a directory so writes fail.
	gw := testGatewayAt(t, filepath.Join(dir, "session.json"), dir)
	h := OpenHistory(gw, testLogger())

	if err := h.Append(historyEntry("tuesday", time.Now())); err == nil {
		t.Fatal("append succeeded against unwritable resource")
	}
	if h.Len() != 0 {
		t.Errorf("len = %d after failed append, want 0", h.Len())
	}
}

// TestClear verifies the bulk clear persists.
func TestClear(t *testing.T) {
	gw := testGateway(t)
	h := OpenHistory(gw, testLogger())
	if err := h.Append(historyEntry("tuesday", time.Now())); err != nil {
		t.Fatal(err)
	}

	if err := h.Clear(); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if h.Len() != 0 {
		t.Errorf("len = %d after clear, want 0", h.Len())
	}
	if reloaded := OpenHistory(gw, testLogger()); reloaded.Len() != 0 {
		t.Errorf("len = %d after clear and reload, want 0", reloaded.Len())
	}
}

// TestExportMergeRoundTrip verifies export → clear → merge reproduces an
// equivalent log, and that re-merging the same export adds nothing.
func TestExportMergeRoundTrip(t *testing.T) {
	h := OpenHistory(testGateway(t), testLogger())
	e1 := historyEntry("tuesday", time.Date(2024, 1, 2, 18, 0, 0, 0, time.UTC))
	e2 := historyEntry("thursday", time.Date(2024, 1, 4, 18, 0, 0, 0, time.UTC))
	for _, e := range []models.HistoryEntry{e1, e2} {
		if err := h.Append(e); err != nil {
			t.Fatal(err)
		}
	}

	exported, err := h.Export()
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if err := h.Clear(); err != nil {
		t.Fatal(err)
	}

	entries, err := DecodeHistory(exported)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	added, err := h.Merge(entries)
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	if added != 2 {
		t.Errorf("added = %d, want 2", added)
	}

	restored := h.All()
	if len(restored) != 2 {
		t.Fatalf("len = %d after restore, want 2", len(restored))
	}
	if restored[0].Meta.ID != e1.Meta.ID || restored[1].Meta.ID != e2.Meta.ID {
		t.Error("restored entries differ from originals")
	}

	// Merging the same export again is a no-op thanks to ID dedupe.
	added, err = h.Merge(entries)
	if err != nil {
		t.Fatal(err)
	}
	if added != 0 || h.Len() != 2 {
		t.Errorf("re-merge added %d entries (len %d), want 0 (len 2)", added, h.Len())
	}
}

// TestMergeRollsBackOnWriteFailure verifies a failed persist during a merge
// leaves the existing log byte-for-byte intact, even when the backing slice
// has spare capacity an in-place merge would reuse.
func TestMergeRollsBackOnWriteFailure(t *testing.T) {
	dir := t.TempDir()
	// Point the history resource at a directory so writes fail.
	gw := testGatewayAt(t, filepath.Join(dir, "session.json"), dir)
	h := OpenHistory(gw, testLogger())

	existing := make([]models.HistoryEntry, 0, 8)
	existing = append(existing,
		historyEntry("tuesday", time.Date(2024, 5, 1, 18, 0, 0, 0, time.UTC)),
		historyEntry("thursday", time.Date(2024, 5, 3, 18, 0, 0, 0, time.UTC)),
	)
	h.entries = existing

	// An earlier-dated entry sorts before the existing ones, so any
	// in-place reordering across the shared array would be visible.
	incoming := historyEntry("tuesday", time.Date(2024, 1, 1, 18, 0, 0, 0, time.UTC))
	added, err := h.Merge([]models.HistoryEntry{incoming})
	if err == nil {
		t.Fatal("merge succeeded against unwritable resource")
	}
	if added != 0 {
		t.Errorf("added = %d on failed merge, want 0", added)
	}

	got := h.All()
	if len(got) != 2 {
		t.Fatalf("len = %d after failed merge, want 2", len(got))
	}
	for i := range got {
		if got[i].Meta.ID != existing[i].Meta.ID {
			t.Errorf("entry %d id = %v after failed merge, want %v", i, got[i].Meta.ID, existing[i].Meta.ID)
		}
		if !got[i].Date.Equal(existing[i].Date) {
			t.Errorf("entry %d date = %v after failed merge, want %v", i, got[i].Date, existing[i].Date)
		}
	}
}

// TestMergeDedupesWithinImport verifies an import file carrying the same
// entry twice adds it only once.
func TestMergeDedupesWithinImport(t *testing.T) {
	h := OpenHistory(testGateway(t), testLogger())
	entry := historyEntry("tuesday", time.Date(2024, 1, 2, 18, 0, 0, 0, time.UTC))

	added, err := h.Merge([]models.HistoryEntry{entry, entry})
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	if added != 1 || h.Len() != 1 {
		t.Errorf("added = %d (len %d), want 1 (len 1)", added, h.Len())
	}
}

// TestGetByID verifies single-entry lookup.
func TestGetByID(t *testing.T) {
	h := OpenHistory(testGateway(t), testLogger())
	entry := historyEntry("tuesday", time.Now())
	if err := h.Append(entry); err != nil {
		t.Fatal(err)
	}

	got, ok := h.Get(entry.Meta.ID)
	if !ok {
		t.Fatal("entry not found by id")
	}
	if got.Day != "tuesday" {
		t.Errorf("day = %q, want tuesday", got.Day)
	}
	if _, ok := h.Get(uuid.New()); ok {
		t.Error("lookup of random id succeeded")
	}
}
