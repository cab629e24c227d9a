// Package scoring turns issue metadata into a priority score and a placement
// decision for an ordered backlog.
//
// Every function in this package is pure: the same inputs always produce the
// same signals, score, and decision, in the same order.
package scoring

import (
	"errors"
	"fmt"
)

// Confidence thresholds on the aggregate score.
const (
	HighThreshold   = 200
	MediumThreshold = 100
)

// Confidence is a coarse band over the aggregate score.
type Confidence string

// Confidence bands.
const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// Action is the terminal outcome of a placement decision.
type Action string

// Actions.
const (
	ActionAssign Action = "assign"
	ActionSkip   Action = "skip"
)

// ParseAction parses "assign" or "skip".
func ParseAction(s string) (Action, error) {
	switch Action(s) {
	case ActionAssign, ActionSkip:
		return Action(s), nil
	default:
		return "", fmt.Errorf("%w: %q (must be assign or skip)", ErrInvalidAction, s)
	}
}

// Category groups signals by their source.
type Category string

// Signal categories, in output order.
const (
	CategoryLabel     Category = "label"
	CategoryMilestone Category = "milestone"
	CategoryKeyword   Category = "keyword"
	CategoryRoadmap   Category = "roadmap"
)

// Signal is a named contribution to the priority score.
type Signal struct {
	Label    string
	Weight   int
	Category Category
}

// IssueMetadata describes the issue being scored.
type IssueMetadata struct {
	Number      int
	Title       string
	Description string
	Labels      []string
	Milestone   string

	// ExistingOrder is the item's current backlog position, or 0 if the
	// item is not in the backlog yet.
	ExistingOrder int

	// ForceResequence repositions an existing item even when its current
	// position is within one place of the computed one.
	ForceResequence bool
}

// Validate checks the structural constraints on the metadata.
func (m IssueMetadata) Validate() error {
	if m.Number <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidIssueNumber, m.Number)
	}

	if m.ExistingOrder < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidExistingOrder, m.ExistingOrder)
	}

	return nil
}

// ScoreResult is the outcome of analyzing one issue.
type ScoreResult struct {
	IssueNumber        int        `json:"issueNumber"`
	PriorityScore      int        `json:"priorityScore"`
	Confidence         Confidence `json:"confidence"`
	Action             Action     `json:"action"`
	RequiresResequence bool       `json:"requiresResequence"`
	RecommendedOrder   int        `json:"recommendedOrder"`
	Factors            []string   `json:"factors"`
	Rationale          string     `json:"rationale"`
}

// Errors returned by this package.
var (
	ErrInvalidIssueNumber   = errors.New("issue number must be positive")
	ErrInvalidExistingOrder = errors.New("existing order out of range")
	ErrInvalidBacklogLength = errors.New("backlog length must not be negative")
	ErrInvalidAction        = errors.New("invalid action")
	ErrInvalidTable         = errors.New("invalid weight table")
)
