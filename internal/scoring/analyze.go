package scoring

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
)

// Analyze runs the full pipeline for one issue: signal extraction, roadmap
// matching, scoring and placement. An existing order must lie within
// 1..backlogLength.
func Analyze(meta IssueMetadata, backlogLength int, table Table) (ScoreResult, error) {
	if err := meta.Validate(); err != nil {
		return ScoreResult{}, err
	}

	if backlogLength < 0 {
		return ScoreResult{}, fmt.Errorf("%w: %d", ErrInvalidBacklogLength, backlogLength)
	}

	if meta.ExistingOrder > backlogLength {
		return ScoreResult{}, fmt.Errorf("%w: %d is past the end of a %d item backlog",
			ErrInvalidExistingOrder, meta.ExistingOrder, backlogLength)
	}

	signals := Signals(meta, table)
	score, confidence := Score(signals)

	result := Decide(meta.Number, score, confidence, meta.ExistingOrder, meta.ForceResequence, backlogLength)

	result.Factors = make([]string, 0, len(signals))
	for _, sig := range signals {
		result.Factors = append(result.Factors, sig.Label)
	}

	result.Rationale = Rationale(signals, result)

	return result, nil
}

// Signals returns the extractor signals followed by the roadmap-path signals.
func Signals(meta IssueMetadata, table Table) []Signal {
	signals := ExtractSignals(meta, table)

	return append(signals, MatchRoadmapPaths(meta.Description, table)...)
}

var categoryNames = map[Category]string{
	CategoryLabel:     "labels",
	CategoryMilestone: "milestone",
	CategoryKeyword:   "keywords",
	CategoryRoadmap:   "roadmap paths",
}

var categoryOrder = []Category{CategoryLabel, CategoryMilestone, CategoryKeyword, CategoryRoadmap}

// Rationale summarizes which signal categories drove the result. Roadmap
// phrases are always named when any matched.
func Rationale(signals []Signal, result ScoreResult) string {
	type contribution struct {
		category Category
		weight   int
	}

	totals := make(map[Category]int, len(categoryOrder))
	for _, sig := range signals {
		totals[sig.Category] += sig.Weight
	}

	var parts []contribution

	for _, c := range categoryOrder {
		if w, ok := totals[c]; ok && w != 0 {
			parts = append(parts, contribution{category: c, weight: w})
		}
	}

	// Stable: ties keep category order.
	slices.SortStableFunc(parts, func(a, b contribution) int {
		return cmp.Compare(abs(b.weight), abs(a.weight))
	})

	var sb strings.Builder

	fmt.Fprintf(&sb, "%s confidence (score %d)", capitalize(string(result.Confidence)), result.PriorityScore)

	if len(parts) == 0 {
		sb.WriteString(": no recognized signals")
	} else {
		sb.WriteString(": driven by ")

		for i, p := range parts {
			if i > 0 {
				sb.WriteString(", ")
			}

			fmt.Fprintf(&sb, "%s %+d", categoryNames[p.category], p.weight)
		}
	}

	var paths []string

	for _, sig := range signals {
		if sig.Category == CategoryRoadmap {
			paths = append(paths, strings.TrimPrefix(sig.Label, RoadmapPrefix))
		}
	}

	if len(paths) > 0 {
		fmt.Fprintf(&sb, "; roadmap paths matched: %s", strings.Join(paths, ", "))
	}

	switch {
	case result.Action == ActionSkip:
		fmt.Fprintf(&sb, "; keeping current position %d", result.RecommendedOrder)
	case result.RequiresResequence:
		fmt.Fprintf(&sb, "; insert at position %d and resequence", result.RecommendedOrder)
	default:
		fmt.Fprintf(&sb, "; append at position %d", result.RecommendedOrder)
	}

	sb.WriteString(".")

	return sb.String()
}

func abs(n int) int {
	if n < 0 {
		return -n
	}

	return n
}

func capitalize(s string) string {
	if s == "" {
		return s
	}

	return strings.ToUpper(s[:1]) + s[1:]
}
