package analytics

import (
	"math"
	"sort"
	"time"

	"github.com/meltforce/setlog/internal/models"
)

// WeekBucket is one (ISO year, ISO week, day) aggregate for frequency and
// volume charts.
type WeekBucket struct {
	ISOYear       int        `json:"iso_year"`
	ISOWeek       int        `json:"iso_week"`
	Day           models.Day `json:"day"`
	Workouts      int        `json:"workouts"`
	CompletedSets int        `json:"completed_sets"`
}

// WeeklyAggregate groups entries by ISO week and day identifier, counting
// workouts and summing completed sets. Buckets are ordered chronologically,
// then by day identifier.
func WeeklyAggregate(entries []models.HistoryEntry) []WeekBucket {
	type bucketKey struct {
		year int
		week int
		day  models.Day
	}

	buckets := make(map[bucketKey]*WeekBucket)
	for _, e := range entries {
		year, week := e.Date.UTC().ISOWeek()
		k := bucketKey{year: year, week: week, day: e.Day}
		b, ok := buckets[k]
		if !ok {
			b = &WeekBucket{ISOYear: year, ISOWeek: week, Day: e.Day}
			buckets[k] = b
		}
		b.Workouts++
		b.CompletedSets += e.CompletedSets
	}

	out := make([]WeekBucket, 0, len(buckets))
	for _, b := range buckets {
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ISOYear != out[j].ISOYear {
			return out[i].ISOYear < out[j].ISOYear
		}
		if out[i].ISOWeek != out[j].ISOWeek {
			return out[i].ISOWeek < out[j].ISOWeek
		}
		return out[i].Day < out[j].Day
	})
	return out
}

// Summary holds headline figures over the whole history.
type Summary struct {
	TotalWorkouts      int     `json:"total_workouts"`
	TotalCompletedSets int     `json:"total_completed_sets"`
	AvgCompletionPct   float64 `json:"avg_completion_percentage"`
	CurrentStreak      int     `json:"current_streak"`
}

// Summarize computes the headline figures. today and toleranceDays feed the
// streak calculation.
func Summarize(entries []models.HistoryEntry, today time.Time, toleranceDays int) Summary {
	s := Summary{TotalWorkouts: len(entries)}
	if len(entries) == 0 {
		return s
	}

	var pctSum float64
	for _, e := range entries {
		s.TotalCompletedSets += e.CompletedSets
		pctSum += e.CompletionPercentage
	}
	s.AvgCompletionPct = math.Round(10*pctSum/float64(len(entries))) / 10
	s.CurrentStreak = Streak(entries, today, toleranceDays)
	return s
}
