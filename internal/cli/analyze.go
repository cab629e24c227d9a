package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/calvinalkan/prio/internal/backlog"
	"github.com/calvinalkan/prio/internal/scoring"

	flag "github.com/spf13/pflag"
)

var (
	errIssueRequired         = errors.New("--issue is required and must be positive")
	errExistingOrderRequired = errors.New("--existing-order must be positive when --has-existing-order is set")
	errDescriptionUnreadable = errors.New("cannot read description")
)

// AnalyzeCmd returns the analyze command.
func AnalyzeCmd(a *app) *Command {
	fs := flag.NewFlagSet("analyze", flag.ContinueOnError)
	fs.Int("issue", 0, "Issue number (required)")
	fs.String("title", "", "Issue title")
	fs.String("description-file", "", "File holding the issue description (- for stdin)")
	fs.StringSlice("labels", nil, "Comma-separated labels (repeatable)")
	fs.String("milestone", "", "Milestone title")
	fs.Bool("has-existing-order", false, "The issue is already in the backlog")
	fs.Int("existing-order", 0, "Current backlog position (with --has-existing-order)")
	fs.Bool("force-resequence", false, "Reposition even when within one place of the computed position")
	fs.Int("backlog-length", 0, "Backlog length to assume instead of reading the backlog file")

	return &Command{
		Flags: fs,
		Usage: "analyze --issue <n> [flags]",
		Short: "Score an issue and recommend a backlog position",
		Long: `Score an issue from its metadata and decide whether and where it belongs
in the backlog. Prints one JSON object:

  {issueNumber, priorityScore, confidence, action, requiresResequence,
   recommendedOrder, factors, rationale}

The backlog file is only read for its length; a missing file counts as an
empty backlog. Exits 0 whenever analysis succeeds, including for skip.`,
		Examples: []string{
			"prio analyze --issue 42 --labels scope:core,feature --milestone M0 --description-file body.md",
			"gh issue view 42 --json body -q .body | prio analyze --issue 42 --description-file -",
		},
		Exec: func(ctx context.Context, o *IO) error {
			return execAnalyze(ctx, o, a, fs)
		},
	}
}

func execAnalyze(ctx context.Context, o *IO, a *app, fs *flag.FlagSet) error {
	meta, err := metadataFromFlags(o, a, fs)
	if err != nil {
		return err
	}

	table, err := a.table()
	if err != nil {
		return err
	}

	length, err := backlogLength(ctx, a, fs, meta)
	if err != nil {
		return err
	}

	signals := scoring.Signals(meta, table)
	for _, sig := range signals {
		a.log.Debug("signal", "issue", meta.Number, "category", sig.Category, "label", sig.Label, "weight", sig.Weight)
	}

	result, err := scoring.Analyze(meta, length, table)
	if err != nil {
		return err
	}

	a.log.Debug("decision",
		"issue", result.IssueNumber,
		"score", result.PriorityScore,
		"confidence", result.Confidence,
		"action", result.Action,
		"order", result.RecommendedOrder,
		"resequence", result.RequiresResequence,
	)

	enc := json.NewEncoder(o.Stdout())
	enc.SetIndent("", "  ")

	if err := enc.Encode(result); err != nil {
		return fmt.Errorf("writing result: %w", err)
	}

	return nil
}

func metadataFromFlags(o *IO, a *app, fs *flag.FlagSet) (scoring.IssueMetadata, error) {
	issue, _ := fs.GetInt("issue")
	if issue <= 0 {
		return scoring.IssueMetadata{}, errIssueRequired
	}

	title, _ := fs.GetString("title")
	labels, _ := fs.GetStringSlice("labels")
	milestone, _ := fs.GetString("milestone")
	force, _ := fs.GetBool("force-resequence")

	meta := scoring.IssueMetadata{
		Number:          issue,
		Title:           title,
		Labels:          labels,
		Milestone:       milestone,
		ForceResequence: force,
	}

	if hasExisting, _ := fs.GetBool("has-existing-order"); hasExisting {
		existing, _ := fs.GetInt("existing-order")
		if existing <= 0 {
			return scoring.IssueMetadata{}, errExistingOrderRequired
		}

		meta.ExistingOrder = existing
	}

	if path, _ := fs.GetString("description-file"); path != "" {
		description, err := readDescription(o, a, path)
		if err != nil {
			return scoring.IssueMetadata{}, err
		}

		meta.Description = description
	}

	return meta, nil
}

// readDescription reads path relative to the work dir, or stdin for "-".
func readDescription(o *IO, a *app, path string) (string, error) {
	var (
		data []byte
		err  error
	)

	if path == "-" {
		data, err = io.ReadAll(o.Stdin())
	} else {
		if !filepath.IsAbs(path) {
			path = filepath.Join(a.cfg.WorkDir, path)
		}

		data, err = a.fs.ReadFile(path)
	}

	if err != nil {
		return "", fmt.Errorf("%w: %w", errDescriptionUnreadable, err)
	}

	return string(data), nil
}

// backlogLength returns --backlog-length when given, otherwise the length of
// the stored backlog (0 when the file does not exist yet).
func backlogLength(ctx context.Context, a *app, fs *flag.FlagSet, meta scoring.IssueMetadata) (int, error) {
	if fs.Changed("backlog-length") {
		n, _ := fs.GetInt("backlog-length")
		if n < 0 {
			return 0, fmt.Errorf("%w: %d", scoring.ErrInvalidBacklogLength, n)
		}

		return n, nil
	}

	snap, err := a.store().Load(ctx)
	if errors.Is(err, backlog.ErrNotFound) {
		a.log.Debug("no backlog file, assuming empty backlog", "path", a.cfg.BacklogFileAbs)

		return 0, nil
	}

	if err != nil {
		return 0, err
	}

	if item, ok := snap.Backlog.Find(meta.Number); ok && meta.ExistingOrder == 0 {
		a.log.Warn("issue is already in the backlog but no existing order was given",
			"issue", meta.Number, "order", item.Order)
	}

	return snap.Backlog.Len(), nil
}
