package scoring

// TheoreticalOrder is where an item with the given confidence belongs in a
// backlog of backlogLength items: the front, the middle, or the end.
func TheoreticalOrder(confidence Confidence, backlogLength int) int {
	switch confidence {
	case ConfidenceHigh:
		return 1
	case ConfidenceMedium:
		return backlogLength/2 + 1
	default:
		return backlogLength + 1
	}
}

// Decide turns a score into a placement. existingOrder is 0 for items not yet
// in the backlog.
//
// New items are always assigned; they only require resequencing when they
// land inside the backlog rather than after it. Existing items within one
// position of where they belong are skipped unless force is set.
//
// The returned result carries no factors or rationale; [Analyze] fills those.
func Decide(issue, score int, confidence Confidence, existingOrder int, force bool, backlogLength int) ScoreResult {
	target := TheoreticalOrder(confidence, backlogLength)

	result := ScoreResult{
		IssueNumber:   issue,
		PriorityScore: score,
		Confidence:    confidence,
		Factors:       []string{},
	}

	if existingOrder == 0 {
		result.Action = ActionAssign
		result.RecommendedOrder = target
		result.RequiresResequence = target <= backlogLength

		return result
	}

	delta := existingOrder - target
	if delta < 0 {
		delta = -delta
	}

	if delta <= 1 && !force {
		result.Action = ActionSkip
		result.RecommendedOrder = existingOrder
		result.RequiresResequence = false

		return result
	}

	result.Action = ActionAssign
	result.RecommendedOrder = target
	result.RequiresResequence = true

	return result
}
