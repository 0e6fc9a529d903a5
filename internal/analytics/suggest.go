package analytics

import (
	"sort"

	"github.com/meltforce/setlog/internal/models"
)

// Suggestion recommends a load change for one exercise based on recent effort.
type Suggestion struct {
	Exercise string  `json:"exercise"`
	MaxRPE   float64 `json:"max_rpe"`
	Sessions int     `json:"sessions"`
	Message  string  `json:"message"`
}

// ProgressionSuggestions inspects the last window entries that mention each
// exercise. If every RPE logged for the exercise in that window is at or
// below threshold, the lifter has headroom and an increase is suggested.
// Exercises with no RPE logged in the window produce no suggestion.
func ProgressionSuggestions(entries []models.HistoryEntry, window int, threshold float64) []Suggestion {
	if window <= 0 || len(entries) == 0 {
		return nil
	}

	sorted := make([]models.HistoryEntry, len(entries))
	copy(sorted, entries)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Date.After(sorted[j].Date)
	})

	type track struct {
		sessions int
		maxRPE   float64
		logged   bool
		capped   bool // an RPE above threshold was seen
	}
	tracks := map[string]*track{}

	for _, e := range sorted {
		// Group RPEs by exercise name within this entry; a name can map to
		// more than one key when a movement repeats across blocks.
		byName := map[string][]float64{}
		for key, sets := range e.Data {
			name, ok := e.Meta.NameMap[key]
			if !ok || name == "" {
				continue
			}
			if _, present := byName[name]; !present {
				byName[name] = nil
			}
			for _, rec := range sets {
				if rec.RPE != nil {
					byName[name] = append(byName[name], *rec.RPE)
				}
			}
		}
		for name, rpes := range byName {
			tr := tracks[name]
			if tr == nil {
				tr = &track{}
				tracks[name] = tr
			}
			if tr.sessions >= window {
				continue
			}
			tr.sessions++
			for _, v := range rpes {
				tr.logged = true
				if v > tr.maxRPE {
					tr.maxRPE = v
				}
				if v > threshold {
					tr.capped = true
				}
			}
		}
	}

	var out []Suggestion
	for name, tr := range tracks {
		if !tr.logged || tr.capped {
			continue
		}
		out = append(out, Suggestion{
			Exercise: name,
			MaxRPE:   tr.maxRPE,
			Sessions: tr.sessions,
			Message:  "recent effort at or below target, consider increasing load",
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Exercise < out[j].Exercise })
	return out
}
