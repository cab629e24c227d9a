package scoring

import "strings"

// RoadmapPrefix starts the label of every roadmap-path signal.
const RoadmapPrefix = "Roadmap path: "

// MatchRoadmapPaths scans description for the table's roadmap phrases. Each
// phrase contributes at most once no matter how often it occurs. The title is
// deliberately not scanned.
func MatchRoadmapPaths(description string, table Table) []Signal {
	text := strings.ToLower(description)

	var signals []Signal

	seen := make(map[string]bool, len(table.RoadmapPaths))

	for _, path := range table.RoadmapPaths {
		if seen[path.Term] || path.Weight == 0 || !strings.Contains(text, path.Term) {
			continue
		}

		seen[path.Term] = true

		signals = append(signals, Signal{
			Label:    RoadmapPrefix + path.Term,
			Weight:   path.Weight,
			Category: CategoryRoadmap,
		})
	}

	return signals
}

// IsRoadmapFactor reports whether a factor label came from [MatchRoadmapPaths].
func IsRoadmapFactor(label string) bool {
	return strings.HasPrefix(label, RoadmapPrefix)
}
