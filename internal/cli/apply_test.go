package cli_test

import (
	"testing"

	"github.com/calvinalkan/prio/internal/backlog"
	"github.com/calvinalkan/prio/internal/cli"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const backlogRel = "roadmap/implementation-order.json"

const threeItemBacklog = `{
  "project": "PVT_1",
  "fieldId": "PVTF_9",
  "generated": "2026-01-01T00:00:00Z",
  "items": [
    {"issue": 1, "order": 1, "title": "one"},
    {"issue": 2, "order": 2, "title": "two"},
    {"issue": 3, "order": 3, "title": "three"}
  ]
}
`

type pair struct{ Issue, Order int }

func readPairs(t *testing.T, c *cli.CLI) []pair {
	t.Helper()

	b, err := backlog.Decode([]byte(c.ReadFile(backlogRel)))
	require.NoError(t, err)

	out := make([]pair, 0, b.Len())
	for _, it := range b.Items {
		out = append(out, pair{it.Issue, it.Order})
	}

	return out
}

func Test_Apply_Inserts_At_Front_And_Shifts_When_Resequence(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	c.WriteFile(backlogRel, threeItemBacklog)

	out := c.MustRun("apply", "--issue", "999", "--title", "new", "--action", "assign",
		"--order", "1", "--requires-resequence")

	assert.Equal(t, "Assigned #999 at position 1 (3 of 4 items resequenced)", out)

	want := []pair{{999, 1}, {1, 2}, {2, 3}, {3, 4}}
	if diff := cmp.Diff(want, readPairs(t, c)); diff != "" {
		t.Errorf("backlog mismatch (-want +got):\n%s", diff)
	}
}

func Test_Apply_Appends_When_No_Resequence(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	c.WriteFile(backlogRel, threeItemBacklog)

	out := c.MustRun("apply", "--issue", "998", "--action", "assign", "--order", "4")

	assert.Equal(t, "Assigned #998 at position 4 (0 of 4 items resequenced)", out)

	want := []pair{{1, 1}, {2, 2}, {3, 3}, {998, 4}}
	if diff := cmp.Diff(want, readPairs(t, c)); diff != "" {
		t.Errorf("backlog mismatch (-want +got):\n%s", diff)
	}
}

func Test_Apply_Keeps_Bookkeeping_Fields(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	c.WriteFile(backlogRel, threeItemBacklog)

	c.MustRun("apply", "--issue", "4", "--action", "assign", "--order", "4")

	b, err := backlog.Decode([]byte(c.ReadFile(backlogRel)))
	require.NoError(t, err)

	assert.Equal(t, "PVT_1", b.Project)
	assert.Equal(t, "PVTF_9", b.FieldID)
	assert.Equal(t, "2026-01-01T00:00:00Z", b.Generated)
}

func Test_Apply_Moves_Existing_Issue(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	c.WriteFile(backlogRel, threeItemBacklog)

	out := c.MustRun("apply", "--issue", "3", "--action", "assign", "--order", "1",
		"--requires-resequence", "--existing")

	assert.Equal(t, "Moved #3 at position 1 (2 of 3 items resequenced)", out)

	want := []pair{{3, 1}, {1, 2}, {2, 3}}
	if diff := cmp.Diff(want, readPairs(t, c)); diff != "" {
		t.Errorf("backlog mismatch (-want +got):\n%s", diff)
	}
}

func Test_Apply_Skip_Leaves_File_Byte_Identical(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	c.WriteFile(backlogRel, threeItemBacklog)

	out := c.MustRun("apply", "--issue", "2", "--action", "skip")

	assert.Equal(t, "Skipped #2 (backlog unchanged, 3 items)", out)
	assert.Equal(t, threeItemBacklog, c.ReadFile(backlogRel))
}

func Test_Apply_Fails_Without_Writing_When(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{
			name:    "issue already present",
			args:    []string{"--issue", "2", "--action", "assign", "--order", "1", "--requires-resequence"},
			wantErr: "issue already in backlog",
		},
		{
			name:    "order past end",
			args:    []string{"--issue", "9", "--action", "assign", "--order", "5"},
			wantErr: "recommended order out of range",
		},
		{
			name:    "order zero",
			args:    []string{"--issue", "9", "--action", "assign", "--order", "0"},
			wantErr: "recommended order out of range",
		},
		{
			name:    "existing issue absent",
			args:    []string{"--issue", "9", "--action", "assign", "--order", "1", "--existing"},
			wantErr: "issue not in backlog",
		},
		{
			name:    "unknown action",
			args:    []string{"--issue", "9", "--action", "bump", "--order", "1"},
			wantErr: "invalid action",
		},
		{
			name:    "order missing for assign",
			args:    []string{"--issue", "9", "--action", "assign"},
			wantErr: "--order is required",
		},
		{
			name:    "issue missing",
			args:    []string{"--action", "skip"},
			wantErr: "--issue is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			c := cli.NewCLI(t)
			c.WriteFile(backlogRel, threeItemBacklog)

			stderr := c.MustFail(append([]string{"apply"}, tt.args...)...)

			cli.AssertContains(t, stderr, tt.wantErr)
			assert.Equal(t, threeItemBacklog, c.ReadFile(backlogRel))
		})
	}
}

func Test_Apply_Refuses_Malformed_Backlog(t *testing.T) {
	t.Parallel()

	bad := `{"project": "p", "items": [{"issue": 1, "order": 1}, {"issue": 2, "order": 3}]}`

	c := cli.NewCLI(t)
	c.WriteFile(backlogRel, bad)

	stderr := c.MustFail("apply", "--issue", "9", "--action", "assign", "--order", "1")

	cli.AssertContains(t, stderr, "malformed backlog document")
	assert.Equal(t, bad, c.ReadFile(backlogRel))
}

func Test_Apply_Fails_When_Backlog_Missing(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)

	stderr := c.MustFail("apply", "--issue", "9", "--action", "assign", "--order", "1")

	cli.AssertContains(t, stderr, "backlog file not found")
}

func Test_Apply_Writes_To_Backlog_Flag_Path(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	c.WriteFile("other.json", threeItemBacklog)

	c.MustRun("--backlog", "other.json", "apply", "--issue", "4", "--action", "assign", "--order", "4")

	b, err := backlog.Decode([]byte(c.ReadFile("other.json")))
	require.NoError(t, err)
	assert.Equal(t, 4, b.Len())
}

func Test_Analyze_Then_Apply_Places_Issue_Where_Recommended(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	c.WriteFile(backlogRel, threeItemBacklog)

	result := analyze(t, c, "--issue", "77", "--title", "core database foundation",
		"--labels", "scope:core,feature", "--milestone", "M0")
	require.True(t, result.RequiresResequence)

	args := []string{"apply", "--issue", "77", "--action", string(result.Action),
		"--order", itoa(result.RecommendedOrder)}
	if result.RequiresResequence {
		args = append(args, "--requires-resequence")
	}

	c.MustRun(args...)

	want := []pair{{77, 1}, {1, 2}, {2, 3}, {3, 4}}
	if diff := cmp.Diff(want, readPairs(t, c)); diff != "" {
		t.Errorf("backlog mismatch (-want +got):\n%s", diff)
	}
}

func Test_Apply_Writes_When_Expected_Version_Matches(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	c.WriteFile(backlogRel, threeItemBacklog)

	version := string(backlog.VersionOf([]byte(threeItemBacklog)))

	out := c.MustRun("apply", "--issue", "999", "--action", "assign", "--order", "1",
		"--requires-resequence", "--expect-version", version)

	assert.Equal(t, "Assigned #999 at position 1 (3 of 4 items resequenced)", out)

	want := []pair{{999, 1}, {1, 2}, {2, 3}, {3, 4}}
	if diff := cmp.Diff(want, readPairs(t, c)); diff != "" {
		t.Errorf("backlog mismatch (-want +got):\n%s", diff)
	}
}

func Test_Apply_Fails_Without_Writing_When_Expected_Version_Stale(t *testing.T) {
	t.Parallel()

	stale := string(backlog.VersionOf([]byte(threeItemBacklog)))

	tests := []struct {
		name string
		args []string
	}{
		{name: "assign", args: []string{"--issue", "9", "--action", "assign", "--order", "1", "--requires-resequence"}},
		{name: "skip", args: []string{"--issue", "2", "--action", "skip"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			c := cli.NewCLI(t)
			c.WriteFile(backlogRel, threeItemBacklog)

			// Someone else appends an issue after the caller ran check.
			c.MustRun("apply", "--issue", "4", "--action", "assign", "--order", "4")
			before := c.ReadFile(backlogRel)

			args := append([]string{"apply"}, tt.args...)
			stderr := c.MustFail(append(args, "--expect-version", stale)...)

			cli.AssertContains(t, stderr, "backlog changed since it was read")
			assert.Equal(t, before, c.ReadFile(backlogRel))
		})
	}
}
