package cli

import (
	"context"
	"errors"
	"time"

	"github.com/calvinalkan/prio/internal/backlog"

	flag "github.com/spf13/pflag"
)

var errProjectRequired = errors.New("--project is required")

// InitCmd returns the init command.
func InitCmd(a *app) *Command {
	fs := flag.NewFlagSet("init", flag.ContinueOnError)
	fs.String("project", "", "Project identifier (required)")
	fs.String("field-id", "", "Ordering field identifier")
	fs.String("generated", "", "Generation timestamp [default: now, RFC 3339]")

	return &Command{
		Flags: fs,
		Usage: "init --project <id> [flags]",
		Short: "Create an empty backlog file",
		Long:  "Create an empty backlog document at the configured path. Fails if it exists.",
		Exec: func(ctx context.Context, o *IO) error {
			return execInit(ctx, o, a, fs)
		},
	}
}

func execInit(ctx context.Context, o *IO, a *app, fs *flag.FlagSet) error {
	project, _ := fs.GetString("project")
	if project == "" {
		return errProjectRequired
	}

	fieldID, _ := fs.GetString("field-id")

	generated, _ := fs.GetString("generated")
	if generated == "" {
		generated = a.now().UTC().Format(time.RFC3339)
	}

	store := a.store()

	version, err := store.Create(ctx, backlog.Backlog{
		Project:   project,
		FieldID:   fieldID,
		Generated: generated,
	})
	if err != nil {
		return err
	}

	o.Println("Created", store.Path())
	a.log.Debug("backlog created", "version", version)

	return nil
}
