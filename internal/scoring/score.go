package scoring

// Score sums the signal weights and classifies the total into a confidence
// band.
func Score(signals []Signal) (int, Confidence) {
	total := 0
	for _, sig := range signals {
		total += sig.Weight
	}

	return total, Classify(total)
}

// Classify maps an aggregate score to its confidence band.
func Classify(score int) Confidence {
	switch {
	case score >= HighThreshold:
		return ConfidenceHigh
	case score >= MediumThreshold:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}
