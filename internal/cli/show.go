package cli

import (
	"context"

	"github.com/calvinalkan/prio/internal/backlog"

	flag "github.com/spf13/pflag"
)

// ShowCmd returns the show command.
func ShowCmd(a *app) *Command {
	fs := flag.NewFlagSet("show", flag.ContinueOnError)
	fs.Bool("json", false, "Print the normalized backlog document")
	fs.Int("limit", 0, "Show only the first N items, also with --json (0 = all)")

	return &Command{
		Flags: fs,
		Usage: "show [flags]",
		Short: "Print the backlog in order",
		Exec: func(ctx context.Context, o *IO) error {
			return execShow(ctx, o, a, fs)
		},
	}
}

func execShow(ctx context.Context, o *IO, a *app, fs *flag.FlagSet) error {
	snap, err := a.store().Load(ctx)
	if err != nil {
		return err
	}

	b := snap.Backlog

	if limit, _ := fs.GetInt("limit"); limit > 0 && limit < b.Len() {
		b.Items = b.Items[:limit]
	}

	if asJSON, _ := fs.GetBool("json"); asJSON {
		data, err := backlog.Encode(b)
		if err != nil {
			return err
		}

		o.Printf("%s", data)

		return nil
	}

	o.Printf("project=%s field=%s generated=%s items=%d\n",
		snap.Backlog.Project, snap.Backlog.FieldID, snap.Backlog.Generated, snap.Backlog.Len())
	o.Printf("%s", b.String())

	return nil
}
