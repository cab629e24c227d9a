package scoring

import (
	"slices"
	"strings"
)

// ExtractSignals returns the label, milestone and keyword signals for meta, in
// that order. Unknown labels and zero-weight matches produce no signal.
func ExtractSignals(meta IssueMetadata, table Table) []Signal {
	var signals []Signal

	signals = append(signals, labelSignals(meta.Labels, table)...)

	if sig, ok := milestoneSignal(meta.Milestone, table); ok {
		signals = append(signals, sig)
	}

	text := strings.ToLower(meta.Title + "\n" + meta.Description)

	if sig, ok := keywordSignal("Foundational keywords", text, table.CoreKeywords, table.CoreCap); ok {
		signals = append(signals, sig)
	}

	if sig, ok := keywordSignal("Polish keywords", text, table.PolishKeywords, table.PolishCap); ok {
		signals = append(signals, sig)
	}

	return signals
}

func labelSignals(labels []string, table Table) []Signal {
	names := make([]string, 0, len(labels))
	for _, label := range labels {
		name := strings.ToLower(strings.TrimSpace(label))
		if name != "" {
			names = append(names, name)
		}
	}

	slices.Sort(names)
	names = slices.Compact(names)

	var signals []Signal

	for _, name := range names {
		weight := table.Labels[name]
		if weight == 0 {
			continue
		}

		signals = append(signals, Signal{
			Label:    "Label: " + name,
			Weight:   weight,
			Category: CategoryLabel,
		})
	}

	return signals
}

func milestoneSignal(milestone string, table Table) (Signal, bool) {
	token := milestoneToken(milestone)
	if token == "" {
		if table.MilestoneNone == 0 {
			return Signal{}, false
		}

		return Signal{Label: "Milestone: unassigned", Weight: table.MilestoneNone, Category: CategoryMilestone}, true
	}

	idx := slices.Index(table.Milestones, token)
	if idx < 0 {
		return Signal{}, false
	}

	weight := max(table.MilestoneTop-idx*table.MilestoneStep, 0)
	if weight == 0 {
		return Signal{}, false
	}

	return Signal{
		Label:    "Milestone: " + strings.TrimSpace(milestone),
		Weight:   weight,
		Category: CategoryMilestone,
	}, true
}

// milestoneToken returns the lower-cased leading token of a milestone title,
// so "M1: Traversal" and "m1 - traversal" both map to "m1".
func milestoneToken(milestone string) string {
	fields := strings.FieldsFunc(strings.ToLower(milestone), func(r rune) bool {
		return r == ' ' || r == '\t' || r == ':' || r == '-' || r == '/'
	})
	if len(fields) == 0 {
		return ""
	}

	return fields[0]
}

// keywordSignal folds every distinct term found in text into one signal whose
// weight is clamped toward zero by limit.
func keywordSignal(name, text string, terms []Term, limit int) (Signal, bool) {
	var (
		matched []string
		total   int
	)

	for _, term := range terms {
		if strings.Contains(text, term.Term) && !slices.Contains(matched, term.Term) {
			matched = append(matched, term.Term)
			total += term.Weight
		}
	}

	if limit >= 0 {
		total = min(total, limit)
	} else {
		total = max(total, limit)
	}

	if len(matched) == 0 || total == 0 {
		return Signal{}, false
	}

	return Signal{
		Label:    name + ": " + strings.Join(matched, ", "),
		Weight:   total,
		Category: CategoryKeyword,
	}, true
}
