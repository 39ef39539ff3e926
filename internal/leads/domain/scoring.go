package domain

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed scoring.yaml
var scoringYAML []byte

type weightedOption struct {
	Value    string `yaml:"value"`
	Weight   int    `yaml:"weight"`
	Category string `yaml:"category"`
}

type scoringTable struct {
	Budget struct {
		DefaultWeight   int              `yaml:"defaultWeight"`
		DefaultCategory string           `yaml:"defaultCategory"`
		Options         []weightedOption `yaml:"options"`
	} `yaml:"budget"`
	Timing struct {
		DefaultWeight int              `yaml:"defaultWeight"`
		Options       []weightedOption `yaml:"options"`
	} `yaml:"timing"`
}

// ScoringTables maps questionnaire answers to qualification weights.
type ScoringTables struct {
	budgetWeights         map[string]int
	budgetCategories      map[string]string
	timingWeights         map[string]int
	defaultBudgetWeight   int
	defaultBudgetCategory string
	defaultTimingWeight   int
	budgetOptions         []string
	timingOptions         []string
}

var defaultTables = mustLoadTables(scoringYAML)

func mustLoadTables(raw []byte) *ScoringTables {
	tables, err := ParseScoringTables(raw)
	if err != nil {
		panic("domain: invalid embedded scoring tables: " + err.Error())
	}
	return tables
}

// ParseScoringTables decodes and checks a YAML scoring table.
func ParseScoringTables(raw []byte) (*ScoringTables, error) {
	var table scoringTable
	if err := yaml.Unmarshal(raw, &table); err != nil {
		return nil, err
	}

	t := &ScoringTables{
		budgetWeights:         make(map[string]int, len(table.Budget.Options)),
		budgetCategories:      make(map[string]string, len(table.Budget.Options)),
		timingWeights:         make(map[string]int, len(table.Timing.Options)),
		defaultBudgetWeight:   table.Budget.DefaultWeight,
		defaultBudgetCategory: table.Budget.DefaultCategory,
		defaultTimingWeight:   table.Timing.DefaultWeight,
	}

	if err := checkWeight("budget default", t.defaultBudgetWeight); err != nil {
		return nil, err
	}
	if err := checkWeight("timing default", t.defaultTimingWeight); err != nil {
		return nil, err
	}
	if t.defaultBudgetCategory == "" {
		return nil, fmt.Errorf("budget defaultCategory is required")
	}

	for _, opt := range table.Budget.Options {
		if err := checkWeight("budget "+opt.Value, opt.Weight); err != nil {
			return nil, err
		}
		if opt.Category == "" {
			return nil, fmt.Errorf("budget %q has no category", opt.Value)
		}
		t.budgetWeights[opt.Value] = opt.Weight
		t.budgetCategories[opt.Value] = opt.Category
		t.budgetOptions = append(t.budgetOptions, opt.Value)
	}
	for _, opt := range table.Timing.Options {
		if err := checkWeight("timing "+opt.Value, opt.Weight); err != nil {
			return nil, err
		}
		t.timingWeights[opt.Value] = opt.Weight
		t.timingOptions = append(t.timingOptions, opt.Value)
	}

	return t, nil
}

func checkWeight(name string, weight int) error {
	if weight < 0 || weight > 100 {
		return fmt.Errorf("%s weight %d outside 0..100", name, weight)
	}
	return nil
}

// Score combines budget and timing weights 70/30, rounding half up.
// Unknown answers use the table defaults.
func (t *ScoringTables) Score(budget, startTiming string) int {
	b, ok := t.budgetWeights[budget]
	if !ok {
		b = t.defaultBudgetWeight
	}
	tm, ok := t.timingWeights[startTiming]
	if !ok {
		tm = t.defaultTimingWeight
	}
	// round(b*0.7 + tm*0.3) in integer arithmetic.
	return (7*b + 3*tm + 5) / 10
}

// BudgetCategory returns the segmentation tag for a budget answer.
func (t *ScoringTables) BudgetCategory(budget string) string {
	if category, ok := t.budgetCategories[budget]; ok {
		return category
	}
	return t.defaultBudgetCategory
}

// BudgetOptions lists the known budget answers in table order.
func (t *ScoringTables) BudgetOptions() []string {
	return append([]string(nil), t.budgetOptions...)
}

// TimingOptions lists the known start-timing answers in table order.
func (t *ScoringTables) TimingOptions() []string {
	return append([]string(nil), t.timingOptions...)
}

// DefaultScoringTables returns the embedded tables.
func DefaultScoringTables() *ScoringTables {
	return defaultTables
}

// Score computes the teaser lead score with the embedded tables.
func Score(budget, startTiming string) int {
	return defaultTables.Score(budget, startTiming)
}

// BudgetCategory tags a budget answer with the embedded tables.
func BudgetCategory(budget string) string {
	return defaultTables.BudgetCategory(budget)
}

// TeaserCategory is the human-readable band shown with the teaser score.
func TeaserCategory(score int) string {
	switch {
	case score >= 80:
		return "Excellent"
	case score >= 60:
		return "Strong"
	case score >= 40:
		return "Developing"
	default:
		return "Exploring"
	}
}

// Admin list badges.
const (
	PriorityHot  = "HOT"
	PriorityWarm = "WARM"
	PriorityCool = "COOL"
	PriorityNew  = "NEW"
)

// Priority is the admin list badge for a lead score.
func Priority(score int) string {
	switch {
	case score >= 75:
		return PriorityHot
	case score >= 50:
		return PriorityWarm
	case score >= 25:
		return PriorityCool
	default:
		return PriorityNew
	}
}

// ReportTier labels an analysis overall score in the user report.
func ReportTier(overall int) string {
	switch {
	case overall >= 80:
		return "Exceptional Potential"
	case overall >= 65:
		return "High Potential"
	case overall >= 50:
		return "Promising"
	default:
		return "Under Review"
	}
}
