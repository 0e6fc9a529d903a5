// Package catalog holds the exercise template catalog: the static, read-only
// definitions of each training day. The catalog is configuration, not state —
// the default is embedded and a deployment can point at its own YAML file.
package catalog

import (
	_ "embed"
	"fmt"
	"os"
	"sort"

	"github.com/meltforce/setlog/internal/models"
	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var defaultCatalogYAML []byte

// Category classifies an exercise for styling and for volume-modifier rules.
type Category string

const (
	CategoryWarmup    Category = "warmup"
	CategoryStrength  Category = "strength"
	CategoryPower     Category = "power"
	CategoryCore      Category = "core"
	CategoryAccessory Category = "accessory"
	CategoryCooldown  Category = "cooldown"
	CategoryRecovery  Category = "recovery"
	CategoryTendon    Category = "tendon"
)

var validCategories = map[Category]bool{
	CategoryWarmup:    true,
	CategoryStrength:  true,
	CategoryPower:     true,
	CategoryCore:      true,
	CategoryAccessory: true,
	CategoryCooldown:  true,
	CategoryRecovery:  true,
	CategoryTendon:    true,
}

// UnmarshalYAML validates the category string on load.
func (c *Category) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	cat := Category(s)
	if !validCategories[cat] {
		return fmt.Errorf("unknown exercise category %q", s)
	}
	*c = cat
	return nil
}

// Exercise is one template item. Identity within a day is positional
// (block index, item index); the name is display data only.
type Exercise struct {
	Name     string   `yaml:"name" json:"name"`
	Sets     int      `yaml:"sets" json:"sets"`
	Reps     string   `yaml:"reps" json:"reps"`
	Category Category `yaml:"category" json:"category"`
	Notes    string   `yaml:"notes,omitempty" json:"notes,omitempty"`
	RestSec  int      `yaml:"rest_sec,omitempty" json:"rest_sec,omitempty"`
}

// Block is an ordered group of exercises within a day.
type Block struct {
	Name      string     `yaml:"name" json:"name"`
	Exercises []Exercise `yaml:"exercises" json:"exercises"`
}

// DayPlan is the full template for one training day.
type DayPlan struct {
	Title   string  `yaml:"title" json:"title"`
	Weekday string  `yaml:"weekday" json:"weekday"`
	Blocks  []Block `yaml:"blocks" json:"blocks"`
}

// Catalog maps day identifier to its plan. Immutable after load.
type Catalog struct {
	days map[models.Day]DayPlan
}

type catalogFile struct {
	Days map[models.Day]DayPlan `yaml:"days"`
}

// Default returns the embedded catalog.
func Default() (*Catalog, error) {
	return parse(defaultCatalogYAML)
}

// Load reads a catalog from a YAML file.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog file: %w", err)
	}
	return parse(data)
}

func parse(data []byte) (*Catalog, error) {
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing catalog: %w", err)
	}
	if len(f.Days) == 0 {
		return nil, fmt.Errorf("catalog defines no days")
	}
	for day, plan := range f.Days {
		if plan.Title == "" {
			return nil, fmt.Errorf("day %q: title is required", day)
		}
		for bi, block := range plan.Blocks {
			for ii, ex := range block.Exercises {
				if ex.Name == "" {
					return nil, fmt.Errorf("day %q block %d item %d: name is required", day, bi, ii)
				}
				if ex.Sets < 1 {
					return nil, fmt.Errorf("day %q exercise %q: sets must be positive", day, ex.Name)
				}
			}
		}
	}
	return &Catalog{days: f.Days}, nil
}

// Day returns the plan for a day identifier.
func (c *Catalog) Day(day models.Day) (DayPlan, bool) {
	plan, ok := c.days[day]
	return plan, ok
}

// Days returns all day identifiers in sorted order.
func (c *Catalog) Days() []models.Day {
	days := make([]models.Day, 0, len(c.days))
	for d := range c.days {
		days = append(days, d)
	}
	sort.Slice(days, func(i, j int) bool { return days[i] < days[j] })
	return days
}

// HasDay reports whether the day identifier exists in the catalog.
func (c *Catalog) HasDay(day models.Day) bool {
	_, ok := c.days[day]
	return ok
}

// Exercise returns the template item at the given positional key.
func (c *Catalog) Exercise(day models.Day, key models.ExerciseKey) (Exercise, bool) {
	plan, ok := c.days[day]
	if !ok {
		return Exercise{}, false
	}
	if key.Block < 0 || key.Block >= len(plan.Blocks) {
		return Exercise{}, false
	}
	block := plan.Blocks[key.Block]
	if key.Item < 0 || key.Item >= len(block.Exercises) {
		return Exercise{}, false
	}
	return block.Exercises[key.Item], true
}

// NameMap builds the exercise-key → display-name mapping for a day. History
// entries store this at finalize time so they stay interpretable after the
// catalog changes.
func (c *Catalog) NameMap(day models.Day) map[models.ExerciseKey]string {
	plan, ok := c.days[day]
	if !ok {
		return nil
	}
	nm := make(map[models.ExerciseKey]string)
	for bi, block := range plan.Blocks {
		for ii, ex := range block.Exercises {
			nm[models.ExerciseKey{Block: bi, Item: ii}] = ex.Name
		}
	}
	return nm
}

// Plans returns a copy of the day → plan mapping for serving to clients.
func (c *Catalog) Plans() map[models.Day]DayPlan {
	plans := make(map[models.Day]DayPlan, len(c.days))
	for d, p := range c.days {
		plans[d] = p
	}
	return plans
}
