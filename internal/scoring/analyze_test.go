package scoring_test

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calvinalkan/prio/internal/scoring"
)

func Test_Analyze_Ranks_Core_Foundation_Work_High_When_New(t *testing.T) {
	t.Parallel()

	meta := scoring.IssueMetadata{
		Number:      101,
		Title:       "Core Database Foundation",
		Description: "Foundation persistence layer for core database operations",
		Labels:      []string{"scope:core", "feature"},
		Milestone:   "M0",
	}

	result, err := scoring.Analyze(meta, 3, scoring.DefaultTable())
	require.NoError(t, err)

	assert.Equal(t, scoring.ConfidenceHigh, result.Confidence)
	assert.Equal(t, scoring.ActionAssign, result.Action)
	assert.Greater(t, result.PriorityScore, 200)
	assert.True(t, result.RequiresResequence)
	assert.Equal(t, 1, result.RecommendedOrder)
	assert.Equal(t, 255, result.PriorityScore)
}

func Test_Analyze_Appends_Documentation_Polish_When_New(t *testing.T) {
	t.Parallel()

	meta := scoring.IssueMetadata{
		Number:      102,
		Title:       "Documentation Polish",
		Description: "Polish documentation and fix typos",
		Labels:      []string{"scope:devx", "docs"},
	}

	result, err := scoring.Analyze(meta, 3, scoring.DefaultTable())
	require.NoError(t, err)

	assert.Equal(t, scoring.ConfidenceLow, result.Confidence)
	assert.Equal(t, scoring.ActionAssign, result.Action)
	assert.Less(t, result.PriorityScore, 100)
	assert.False(t, result.RequiresResequence)
	assert.Equal(t, 4, result.RecommendedOrder)
}

func Test_Analyze_Reports_Roadmap_Paths_When_Description_Names_Them(t *testing.T) {
	t.Parallel()

	meta := scoring.IssueMetadata{
		Number:      103,
		Title:       "Navigation Foundation Work",
		Description: "Implement core location vertex and exit edge persistence using Gremlin API",
		Labels:      []string{"scope:core", "feature"},
		Milestone:   "M0",
	}

	result, err := scoring.Analyze(meta, 10, scoring.DefaultTable())
	require.NoError(t, err)

	assert.Greater(t, result.PriorityScore, 300)
	assert.Equal(t, scoring.ConfidenceHigh, result.Confidence)

	var roadmap []string

	for _, f := range result.Factors {
		if scoring.IsRoadmapFactor(f) {
			roadmap = append(roadmap, f)
		}
	}

	want := []string{
		"Roadmap path: gremlin",
		"Roadmap path: vertex",
		"Roadmap path: exit edge",
		"Roadmap path: location",
	}
	if diff := cmp.Diff(want, roadmap); diff != "" {
		t.Errorf("roadmap factors mismatch (-want +got):\n%s", diff)
	}

	assert.Contains(t, result.Rationale, "roadmap paths matched: gremlin, vertex, exit edge, location")
}

func Test_Analyze_Skips_Existing_Item_When_Within_One_Position(t *testing.T) {
	t.Parallel()

	meta := scoring.IssueMetadata{
		Number:        104,
		Title:         "Polish wording",
		Labels:        []string{"docs"},
		ExistingOrder: 12,
	}

	result, err := scoring.Analyze(meta, 12, scoring.DefaultTable())
	require.NoError(t, err)

	require.Equal(t, scoring.ConfidenceLow, result.Confidence)
	assert.Equal(t, scoring.ActionSkip, result.Action)
	assert.Equal(t, 12, result.RecommendedOrder)
	assert.False(t, result.RequiresResequence)
	assert.Contains(t, result.Rationale, "keeping current position 12")
}

func Test_Analyze_Is_Deterministic_When_Called_Repeatedly(t *testing.T) {
	t.Parallel()

	meta := scoring.IssueMetadata{
		Number:      7,
		Title:       "Graph traversal schema",
		Description: "Cosmos graph traversal over vertex data; fix typo in README",
		Labels:      []string{"feature", "scope:systems", "unknown", "Feature"},
		Milestone:   "M2: Traversal",
	}

	first, err := scoring.Analyze(meta, 20, scoring.DefaultTable())
	require.NoError(t, err)

	for range 20 {
		again, err := scoring.Analyze(meta, 20, scoring.DefaultTable())
		require.NoError(t, err)

		if diff := cmp.Diff(first, again); diff != "" {
			t.Fatalf("result changed between calls (-first +again):\n%s", diff)
		}
	}
}

func Test_Analyze_Ignores_Label_Order_When_Scoring(t *testing.T) {
	t.Parallel()

	a := scoring.IssueMetadata{Number: 1, Labels: []string{"bug", "scope:core"}}
	b := scoring.IssueMetadata{Number: 1, Labels: []string{"scope:core", "bug", "bug"}}

	ra, err := scoring.Analyze(a, 0, scoring.DefaultTable())
	require.NoError(t, err)

	rb, err := scoring.Analyze(b, 0, scoring.DefaultTable())
	require.NoError(t, err)

	assert.Equal(t, ra, rb)
}

func Test_Analyze_Returns_Error_When_Input_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		meta    scoring.IssueMetadata
		length  int
		wantErr error
	}{
		{
			name:    "zero issue number",
			meta:    scoring.IssueMetadata{Number: 0},
			wantErr: scoring.ErrInvalidIssueNumber,
		},
		{
			name:    "negative existing order",
			meta:    scoring.IssueMetadata{Number: 1, ExistingOrder: -3},
			wantErr: scoring.ErrInvalidExistingOrder,
		},
		{
			name:    "existing order past end of backlog",
			meta:    scoring.IssueMetadata{Number: 1, ExistingOrder: 5},
			length:  3,
			wantErr: scoring.ErrInvalidExistingOrder,
		},
		{
			name:    "existing order with empty backlog",
			meta:    scoring.IssueMetadata{Number: 1, ExistingOrder: 1},
			wantErr: scoring.ErrInvalidExistingOrder,
		},
		{
			name:    "negative backlog length",
			meta:    scoring.IssueMetadata{Number: 1},
			length:  -1,
			wantErr: scoring.ErrInvalidBacklogLength,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			_, err := scoring.Analyze(tc.meta, tc.length, scoring.DefaultTable())
			require.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func Test_Rationale_Orders_Categories_By_Contribution(t *testing.T) {
	t.Parallel()

	signals := []scoring.Signal{
		{Label: "Label: feature", Weight: 20, Category: scoring.CategoryLabel},
		{Label: "Milestone: M0", Weight: 60, Category: scoring.CategoryMilestone},
		{Label: "Polish keywords: typo", Weight: -15, Category: scoring.CategoryKeyword},
	}

	result := scoring.Decide(5, 65, scoring.ConfidenceLow, 0, false, 4)
	got := scoring.Rationale(signals, result)

	want := "Low confidence (score 65): driven by milestone +60, labels +20, keywords -15; append at position 5."
	assert.Equal(t, want, got)
	assert.False(t, strings.Contains(got, "roadmap"), "no roadmap mention without roadmap signals")
}

func Test_Rationale_Reports_No_Signals_When_Empty(t *testing.T) {
	t.Parallel()

	result := scoring.Decide(5, 0, scoring.ConfidenceLow, 0, false, 0)

	assert.Equal(t, "Low confidence (score 0): no recognized signals; append at position 1.", scoring.Rationale(nil, result))
}
