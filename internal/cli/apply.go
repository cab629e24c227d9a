package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/calvinalkan/prio/internal/backlog"
	"github.com/calvinalkan/prio/internal/scoring"

	flag "github.com/spf13/pflag"
)

var errOrderRequired = errors.New("--order is required for assign")

// ApplyCmd returns the apply command.
func ApplyCmd(a *app) *Command {
	fs := flag.NewFlagSet("apply", flag.ContinueOnError)
	fs.Int("issue", 0, "Issue number (required)")
	fs.String("title", "", "Issue title stored in the backlog")
	fs.Int("order", 0, "Recommended 1-based position")
	fs.Bool("requires-resequence", false, "Shift items at or after --order to make room")
	fs.String("action", "", "assign|skip (required)")
	fs.Bool("existing", false, "Move an issue already in the backlog instead of inserting it")
	fs.String("expect-version", "", "Fail unless the backlog still has this version (from prio check)")

	return &Command{
		Flags: fs,
		Usage: "apply --issue <n> --action <a> [flags]",
		Short: "Apply a placement to the backlog file",
		Long: `Apply an analyze result to the backlog document.

assign with --requires-resequence inserts at --order and shifts later items
down by one; without it the issue is appended. With --existing the issue is
moved instead. skip validates the backlog and leaves it untouched.

Fails without writing if the issue is already present (or, with --existing,
absent), if --order is outside 1..N+1, or if the result would break the
ordering invariant.

With --expect-version the backlog is only written if its BLAKE3 version, as
printed by "prio check", still matches; otherwise apply fails with a
conflict and leaves the file untouched.`,
		Examples: []string{
			"prio apply --issue 42 --title 'Core storage' --action assign --order 1 --requires-resequence",
			"prio apply --issue 7 --action assign --order 12 --requires-resequence --existing",
			"prio apply --issue 42 --action assign --order 1 --requires-resequence --expect-version <version>",
		},
		Exec: func(ctx context.Context, o *IO) error {
			return execApply(ctx, o, a, fs)
		},
	}
}

func execApply(ctx context.Context, o *IO, a *app, fs *flag.FlagSet) error {
	req, err := requestFromFlags(fs)
	if err != nil {
		return err
	}

	store := a.store()
	expected, _ := fs.GetString("expect-version")

	if req.Action == scoring.ActionSkip {
		snap, err := store.Load(ctx)
		if err != nil {
			return err
		}

		if expected != "" && snap.Version != backlog.Version(expected) {
			return fmt.Errorf("%w: have %s, want %s", backlog.ErrConflict, snap.Version, expected)
		}

		if _, err := backlog.Apply(snap.Backlog, req); err != nil {
			return err
		}

		o.Printf("Skipped #%d (backlog unchanged, %d items)\n", req.Issue, snap.Backlog.Len())

		return nil
	}

	if expected != "" {
		return applyAtVersion(ctx, o, a, store, req, backlog.Version(expected))
	}

	var shifted int

	res, err := store.Update(ctx, func(b backlog.Backlog) (backlog.Backlog, error) {
		next, err := backlog.Apply(b, req)
		if err != nil {
			return backlog.Backlog{}, err
		}

		shifted = countMoved(b, next, req.Issue)

		return next, nil
	})
	if err != nil {
		return err
	}

	placed, _ := res.Backlog.Find(req.Issue)

	a.log.Debug("applied", "issue", req.Issue, "order", placed.Order, "shifted", shifted, "changed", res.Changed)

	printPlaced(o, req, placed.Order, shifted, res.Backlog.Len())

	return nil
}

// applyAtVersion applies req to the backlog read from disk and saves it only
// if the file still has version expected.
func applyAtVersion(ctx context.Context, o *IO, a *app, store *backlog.Store, req backlog.Request, expected backlog.Version) error {
	snap, err := store.Load(ctx)
	if err != nil {
		return err
	}

	next, err := backlog.Apply(snap.Backlog, req)
	if err != nil {
		return err
	}

	version, err := store.Save(ctx, next, expected)
	if err != nil {
		return err
	}

	placed, _ := next.Find(req.Issue)

	a.log.Debug("applied", "issue", req.Issue, "order", placed.Order, "before", expected, "after", version)

	printPlaced(o, req, placed.Order, countMoved(snap.Backlog, next, req.Issue), next.Len())

	return nil
}

func printPlaced(o *IO, req backlog.Request, order, shifted, total int) {
	verb := "Assigned"
	if req.Existing {
		verb = "Moved"
	}

	o.Printf("%s #%d at position %d (%d of %d items resequenced)\n",
		verb, req.Issue, order, shifted, total)
}

func requestFromFlags(fs *flag.FlagSet) (backlog.Request, error) {
	issue, _ := fs.GetInt("issue")
	if issue <= 0 {
		return backlog.Request{}, errIssueRequired
	}

	actionName, _ := fs.GetString("action")

	action, err := scoring.ParseAction(actionName)
	if err != nil {
		return backlog.Request{}, err
	}

	if action == scoring.ActionAssign && !fs.Changed("order") {
		return backlog.Request{}, errOrderRequired
	}

	title, _ := fs.GetString("title")
	order, _ := fs.GetInt("order")
	resequence, _ := fs.GetBool("requires-resequence")
	existing, _ := fs.GetBool("existing")

	return backlog.Request{
		Issue:      issue,
		Title:      title,
		Action:     action,
		Order:      order,
		Resequence: resequence,
		Existing:   existing,
	}, nil
}

// countMoved counts items other than issue whose order differs between
// before and after.
func countMoved(before, after backlog.Backlog, issue int) int {
	n := 0

	for _, it := range before.Items {
		if it.Issue == issue {
			continue
		}

		if now, ok := after.Find(it.Issue); ok && now.Order != it.Order {
			n++
		}
	}

	return n
}

