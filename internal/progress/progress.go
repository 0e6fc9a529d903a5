// Package progress derives completion figures for a day from the template
// catalog and the current session state. All functions are pure: they never
// mutate state or touch storage, so they can back both live UI rendering and
// the finalize precondition check.
package progress

import (
	"math"

	"github.com/meltforce/setlog/internal/catalog"
	"github.com/meltforce/setlog/internal/models"
)

// ModifierRule describes a volume modifier as data. Which categories qualify
// and how far volume may drop differ between template revisions, so the rule
// lives in configuration rather than code.
type ModifierRule struct {
	SubtractSets int
	Floor        int
	Categories   map[catalog.Category]bool
}

// NewModifierRule builds a rule from configuration values. Unknown category
// strings are carried as-is; they simply never match a template category.
func NewModifierRule(subtract, floor int, categories []string) ModifierRule {
	set := make(map[catalog.Category]bool, len(categories))
	for _, c := range categories {
		set[catalog.Category(c)] = true
	}
	return ModifierRule{SubtractSets: subtract, Floor: floor, Categories: set}
}

// EffectiveSets returns the set count for an exercise after applying the
// rule, or the nominal count when the rule is nil or does not apply.
func (r *ModifierRule) EffectiveSets(ex catalog.Exercise) int {
	if r == nil || !r.Categories[ex.Category] {
		return ex.Sets
	}
	n := ex.Sets - r.SubtractSets
	floor := r.Floor
	if floor < 1 {
		floor = 1
	}
	if n < floor {
		n = floor
	}
	return n
}

// Progress holds the derived completion figures for one day.
type Progress struct {
	Day           models.Day `json:"day"`
	CompletedSets int        `json:"completed_sets"`
	TotalSets     int        `json:"total_sets"`
	Percentage    float64    `json:"completion_percentage"`
}

// Compute walks the day's template, applies the modifier to each item's set
// count, and counts done sets within the effective range. Sets logged beyond
// the effective range do not count toward completion.
func Compute(day models.Day, plan catalog.DayPlan, state models.DayState, mod *ModifierRule) Progress {
	p := Progress{Day: day}
	for bi, block := range plan.Blocks {
		for ii, ex := range block.Exercises {
			effective := mod.EffectiveSets(ex)
			p.TotalSets += effective

			sets := state[models.ExerciseKey{Block: bi, Item: ii}]
			for idx := 0; idx < effective; idx++ {
				if sets[idx].Done {
					p.CompletedSets++
				}
			}
		}
	}
	p.Percentage = Percentage(p.CompletedSets, p.TotalSets)
	return p
}

// Percentage returns 100*done/total rounded to one decimal, or 0 when total
// is zero.
func Percentage(done, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(1000*float64(done)/float64(total)) / 10
}
