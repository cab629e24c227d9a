package scoring

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

// Term is a phrase with the weight it contributes when matched.
type Term struct {
	Term   string `yaml:"term"`
	Weight int    `yaml:"weight"`
}

// Table holds every weight the extractor and matcher use. Scoring behavior is
// fully described by a Table; nothing is hard-coded in the matching code.
type Table struct {
	// Labels maps a lower-case label to its weight.
	Labels map[string]int `yaml:"labels"`

	// Milestones are ordered earliest first. The milestone at index i is
	// worth max(MilestoneTop - i*MilestoneStep, 0).
	Milestones    []string `yaml:"milestones"`
	MilestoneTop  int      `yaml:"milestone_top"`
	MilestoneStep int      `yaml:"milestone_step"`

	// MilestoneNone is the weight of an issue without a milestone.
	MilestoneNone int `yaml:"milestone_none"`

	CoreKeywords   []Term `yaml:"core_keywords"`
	CoreCap        int    `yaml:"core_cap"`
	PolishKeywords []Term `yaml:"polish_keywords"`
	PolishCap      int    `yaml:"polish_cap"`

	// RoadmapPaths are matched against the description only.
	RoadmapPaths []Term `yaml:"roadmap_paths"`
}

// DefaultTable returns the built-in weight table. Each call returns a fresh
// copy that the caller may modify.
func DefaultTable() Table {
	return Table{
		Labels: map[string]int{
			"scope:core":    100,
			"scope:systems": 60,
			"scope:world":   40,
			"bug":           30,
			"feature":       20,
			"enhancement":   10,
			"chore":         -10,
			"scope:devx":    -20,
			"docs":          -25,
			"documentation": -25,
		},
		Milestones:    []string{"m0", "m1", "m2", "m3", "m4", "m5", "m6"},
		MilestoneTop:  60,
		MilestoneStep: 10,
		MilestoneNone: -10,
		CoreKeywords: []Term{
			{Term: "foundation", Weight: 25},
			{Term: "core", Weight: 25},
			{Term: "persistence", Weight: 25},
			{Term: "database", Weight: 25},
			{Term: "infrastructure", Weight: 25},
			{Term: "schema", Weight: 25},
			{Term: "architecture", Weight: 25},
		},
		CoreCap: 75,
		PolishKeywords: []Term{
			{Term: "typo", Weight: -15},
			{Term: "polish", Weight: -15},
			{Term: "documentation", Weight: -15},
			{Term: "readme", Weight: -15},
			{Term: "cosmetic", Weight: -15},
			{Term: "cleanup", Weight: -15},
			{Term: "wording", Weight: -15},
		},
		PolishCap: -45,
		RoadmapPaths: []Term{
			{Term: "gremlin", Weight: 40},
			{Term: "traversal", Weight: 30},
			{Term: "cosmos", Weight: 30},
			{Term: "vertex", Weight: 25},
			{Term: "exit edge", Weight: 25},
			{Term: "graph", Weight: 20},
			{Term: "location", Weight: 15},
		},
	}
}

// LoadTable decodes a YAML weight table on top of [DefaultTable].
//
// Keys absent from the document keep their default. Label entries are
// lower-cased and then merged into the default label map, so "Scope:Core"
// overrides the default "scope:core". Keyword, milestone and roadmap lists
// replace the default list entirely. Unknown keys are rejected.
func LoadTable(data []byte) (Table, error) {
	table := DefaultTable()
	defaults := table.Labels
	table.Labels = nil

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	err := dec.Decode(&table)
	if err != nil && !errors.Is(err, io.EOF) {
		return Table{}, fmt.Errorf("%w: %w", ErrInvalidTable, err)
	}

	overrides, err := lowerLabels(table.Labels)
	if err != nil {
		return Table{}, err
	}

	table.Labels = defaults
	maps.Copy(table.Labels, overrides)

	table = table.normalized()

	if err := table.Validate(); err != nil {
		return Table{}, err
	}

	return table, nil
}

// Validate checks that the table is internally consistent.
func (t Table) Validate() error {
	if t.MilestoneStep < 0 {
		return fmt.Errorf("%w: milestone_step must not be negative", ErrInvalidTable)
	}

	if t.CoreCap < 0 {
		return fmt.Errorf("%w: core_cap must not be negative", ErrInvalidTable)
	}

	if t.PolishCap > 0 {
		return fmt.Errorf("%w: polish_cap must not be positive", ErrInvalidTable)
	}

	for name := range t.Labels {
		if name == "" {
			return fmt.Errorf("%w: empty label", ErrInvalidTable)
		}
	}

	for _, m := range t.Milestones {
		if m == "" || strings.ContainsAny(m, " \t") {
			return fmt.Errorf("%w: milestone %q must be a single token", ErrInvalidTable, m)
		}
	}

	for _, list := range [][]Term{t.CoreKeywords, t.PolishKeywords, t.RoadmapPaths} {
		for _, term := range list {
			if term.Term == "" {
				return fmt.Errorf("%w: empty term", ErrInvalidTable)
			}
		}
	}

	for _, core := range t.CoreKeywords {
		for _, polish := range t.PolishKeywords {
			if core.Term == polish.Term {
				return fmt.Errorf("%w: keyword %q is both foundational and polish", ErrInvalidTable, core.Term)
			}
		}
	}

	return nil
}

// normalized lower-cases every matchable string so lookups can compare
// against lower-cased input.
func (t Table) normalized() Table {
	labels := make(map[string]int, len(t.Labels))
	for _, name := range slices.Sorted(maps.Keys(t.Labels)) {
		labels[strings.ToLower(strings.TrimSpace(name))] = t.Labels[name]
	}

	t.Labels = labels
	t.Milestones = lowerAll(t.Milestones)
	t.CoreKeywords = lowerTerms(t.CoreKeywords)
	t.PolishKeywords = lowerTerms(t.PolishKeywords)
	t.RoadmapPaths = lowerTerms(t.RoadmapPaths)

	return t
}

// lowerLabels lower-cases label keys. Two keys that differ only in case are
// rejected since neither weight can be preferred.
func lowerLabels(in map[string]int) (map[string]int, error) {
	out := make(map[string]int, len(in))

	for _, name := range slices.Sorted(maps.Keys(in)) {
		key := strings.ToLower(strings.TrimSpace(name))
		if _, dup := out[key]; dup {
			return nil, fmt.Errorf("%w: label %q given more than once", ErrInvalidTable, key)
		}

		out[key] = in[name]
	}

	return out, nil
}

func lowerAll(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = strings.ToLower(strings.TrimSpace(s))
	}

	return out
}

func lowerTerms(in []Term) []Term {
	out := make([]Term, len(in))
	for i, term := range in {
		out[i] = Term{Term: strings.ToLower(strings.TrimSpace(term.Term)), Weight: term.Weight}
	}

	return out
}
