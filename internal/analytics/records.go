package analytics

import (
	"github.com/meltforce/setlog/internal/models"
)

// PersonalRecords returns the maximum weight ever logged per exercise
// display name, across all entries and all set indices. Names are matched by
// exact string equality: renaming an exercise in the template starts a fresh
// PR lineage.
func PersonalRecords(entries []models.HistoryEntry) map[string]float64 {
	prs := make(map[string]float64)
	for _, entry := range entries {
		for key, sets := range entry.Data {
			name, ok := entry.Meta.NameMap[key]
			if !ok {
				// A key with no name in its own entry is uninterpretable.
				continue
			}
			for _, rec := range sets {
				if rec.Weight == nil {
					continue
				}
				if *rec.Weight > prs[name] {
					prs[name] = *rec.Weight
				}
			}
		}
	}
	return prs
}
