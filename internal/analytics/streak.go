// Package analytics derives statistics from a history snapshot. Every
// function is pure: it takes the entries by value and never touches storage,
// so callers can run them on demand against a consistent copy of the log.
package analytics

import (
	"sort"
	"time"

	"github.com/meltforce/setlog/internal/models"
)

// Streak counts consecutive qualifying workouts walking back from today.
// An entry qualifies while its calendar date is within toleranceDays of the
// running anchor date; each match advances the anchor to the entry's date.
// The first larger gap ends the streak.
func Streak(entries []models.HistoryEntry, today time.Time, toleranceDays int) int {
	if len(entries) == 0 {
		return 0
	}

	sorted := make([]models.HistoryEntry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Date.After(sorted[j].Date) })

	streak := 0
	anchor := dateOnly(today)
	for _, e := range sorted {
		d := dateOnly(e.Date)
		if daysBetween(d, anchor) > toleranceDays {
			break
		}
		streak++
		anchor = d
	}
	return streak
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// daysBetween returns the whole calendar days from earlier to later, 0 when
// they coincide or later precedes earlier.
func daysBetween(earlier, later time.Time) int {
	n := int(later.Sub(earlier).Hours() / 24)
	if n < 0 {
		return 0
	}
	return n
}
