package store

import (
	"testing"

	"github.com/meltforce/setlog/internal/models"
)

func openTestSession(t *testing.T, gw *Gateway) *SessionStore {
	t.Helper()
	return OpenSession(gw, testCatalog(t), Limits{MaxWeightKg: 500}, testLogger())
}

var (
	tuesday = models.Day("tuesday")
	squat   = models.ExerciseKey{Block: 1, Item: 0}
)

// TestGetSetDefaults verifies reads never require pre-initialization and
// never create entries.
func TestGetSetDefaults(t *testing.T) {
	s := openTestSession(t, testGateway(t))

	rec := s.GetSet(tuesday, squat, 0)
	if rec.Done || rec.Weight != nil || rec.Reps != nil || rec.RPE != nil {
		t.Errorf("default record = %+v, want zero value", rec)
	}

	// Out-of-range and unknown lookups behave the same.
	if rec := s.GetSet("nope", models.ExerciseKey{Block: 9, Item: 9}, 99); !rec.IsZero() {
		t.Errorf("out-of-range record = %+v, want zero value", rec)
	}
	if len(s.State()[tuesday]) != 0 {
		t.Error("reads materialized state entries")
	}
}

// TestFieldWritesAreIndependent verifies each field holds its latest written
// value while unwritten fields stay default — logging and completion are
// independent.
func TestFieldWritesAreIndependent(t *testing.T) {
	s := openTestSession(t, testGateway(t))

	s.LogWeight(tuesday, squat, 0, 22.5)
	s.LogRPE(tuesday, squat, 0, 8)

	rec := s.GetSet(tuesday, squat, 0)
	if rec.Done {
		t.Error("logging a weight marked the set done")
	}
	if rec.Weight == nil || *rec.Weight != 22.5 {
		t.Errorf("weight = %v, want 22.5", rec.Weight)
	}
	if rec.RPE == nil || *rec.RPE != 8 {
		t.Errorf("rpe = %v, want 8", rec.RPE)
	}
	if rec.Reps != nil {
		t.Errorf("reps = %v, want unset", rec.Reps)
	}

	s.LogWeight(tuesday, squat, 0, 24)
	if rec := s.GetSet(tuesday, squat, 0); *rec.Weight != 24 {
		t.Errorf("weight = %v after rewrite, want 24", *rec.Weight)
	}
}

// TestToggleDone verifies the flip semantics and the returned new value.
func TestToggleDone(t *testing.T) {
	s := openTestSession(t, testGateway(t))

	if done := s.ToggleDone(tuesday, squat, 1); !done {
		t.Error("first toggle returned false, want true")
	}
	if done := s.ToggleDone(tuesday, squat, 1); done {
		t.Error("second toggle returned true, want false")
	}
}

// TestZeroWeightMeansUnset verifies the documented precision-loss behavior:
// a submitted weight of exactly 0 is stored as unset.
func TestZeroWeightMeansUnset(t *testing.T) {
	s := openTestSession(t, testGateway(t))

	s.LogWeight(tuesday, squat, 0, 20)
	s.LogWeight(tuesday, squat, 0, 0)
	if rec := s.GetSet(tuesday, squat, 0); rec.Weight != nil {
		t.Errorf("weight = %v, want unset after logging 0", *rec.Weight)
	}

	s.LogRPE(tuesday, squat, 0, -2)
	if rec := s.GetSet(tuesday, squat, 0); rec.RPE != nil {
		t.Errorf("rpe = %v, want unset after logging negative", *rec.RPE)
	}
}

// TestInputClamping verifies out-of-range values are clamped at the boundary
// and never persisted out of range.
func TestInputClamping(t *testing.T) {
	s := openTestSession(t, testGateway(t))

	s.LogRPE(tuesday, squat, 0, 14)
	if rec := s.GetSet(tuesday, squat, 0); rec.RPE == nil || *rec.RPE != 10 {
		t.Errorf("rpe = %v, want clamped to 10", rec.RPE)
	}

	s.LogWeight(tuesday, squat, 0, 9000)
	if rec := s.GetSet(tuesday, squat, 0); rec.Weight == nil || *rec.Weight != 500 {
		t.Errorf("weight = %v, want clamped to 500", rec.Weight)
	}
}

// TestResetDay verifies reset empties only the targeted day.
func TestResetDay(t *testing.T) {
	s := openTestSession(t, testGateway(t))

	s.SetDone(tuesday, squat, 0, true)
	s.SetDone("thursday", squat, 0, true)

	s.ResetDay(tuesday)

	if got := s.State()[tuesday]; len(got) != 0 {
		t.Errorf("tuesday = %+v after reset, want empty", got)
	}
	if !s.GetSet("thursday", squat, 0).Done {
		t.Error("reset of tuesday touched thursday")
	}
}

// TestResetExercise verifies only the one exercise is removed.
func TestResetExercise(t *testing.T) {
	s := openTestSession(t, testGateway(t))
	other := models.ExerciseKey{Block: 1, Item: 1}

	s.SetDone(tuesday, squat, 0, true)
	s.SetDone(tuesday, other, 0, true)

	s.ResetExercise(tuesday, squat)

	if s.GetSet(tuesday, squat, 0).Done {
		t.Error("reset exercise left its sets behind")
	}
	if !s.GetSet(tuesday, other, 0).Done {
		t.Error("reset exercise removed a different exercise")
	}
}

// TestWriteThroughSurvivesReopen verifies every mutation lands on disk:
// reopening the store from the same gateway sees the same state.
func TestWriteThroughSurvivesReopen(t *testing.T) {
	gw := testGateway(t)
	s := openTestSession(t, gw)

	s.ToggleDone(tuesday, squat, 0)
	s.LogWeight(tuesday, squat, 0, 24)
	s.LogReps(tuesday, squat, 0, "8")
	s.LogRPE(tuesday, squat, 0, 7.5)

	reopened := openTestSession(t, gw)
	rec := reopened.GetSet(tuesday, squat, 0)
	if !rec.Done {
		t.Error("done flag lost across reopen")
	}
	if rec.Weight == nil || *rec.Weight != 24 {
		t.Errorf("weight = %v, want 24", rec.Weight)
	}
	if rec.Reps == nil || *rec.Reps != "8" {
		t.Errorf("reps = %v, want \"8\"", rec.Reps)
	}
	if rec.RPE == nil || *rec.RPE != 7.5 {
		t.Errorf("rpe = %v, want 7.5", rec.RPE)
	}
}

// TestMutationSurvivesFailedWrite verifies a failing write-through keeps the
// in-memory mutation (the next successful write carries it).
func TestMutationSurvivesFailedWrite(t *testing.T) {
	dir := t.TempDir()
	// Point the session resource at a directory so writes fail.
	gw := testGatewayAt(t, dir, dir+"/history.json")
	s := openTestSession(t, gw)

	s.SetDone(tuesday, squat, 0, true)

	if !s.GetSet(tuesday, squat, 0).Done {
		t.Error("mutation lost after failed write-through")
	}
}
