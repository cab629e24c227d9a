package cli

import (
	"context"

	flag "github.com/spf13/pflag"
)

// CheckCmd returns the check command.
func CheckCmd(a *app) *Command {
	return &Command{
		Flags: flag.NewFlagSet("check", flag.ContinueOnError),
		Usage: "check",
		Short: "Validate the backlog document",
		Long: `Validate the backlog document: it must parse, its orders must be exactly
1..N, and its issue numbers must be unique. Prints the item count and the
BLAKE3 version of the file on success; lists every violation otherwise.`,
		Exec: func(ctx context.Context, o *IO) error {
			snap, err := a.store().Load(ctx)
			if err != nil {
				return err
			}

			o.Printf("ok: %d items, version %s\n", snap.Backlog.Len(), snap.Version)

			return nil
		},
	}
}
