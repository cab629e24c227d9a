package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/calvinalkan/prio/internal/backlog"
	"github.com/calvinalkan/prio/internal/config"
	"github.com/calvinalkan/prio/internal/fs"
	"github.com/calvinalkan/prio/internal/scoring"
)

const (
	minArgs      = 2
	consumedOne  = 1
	consumedTwo  = 2
	consumedNone = 0
	helpFlag     = "--help"
)

var (
	errFlagRequiresArg = errors.New("flag requires an argument")
	errUnknownFlag     = errors.New("unknown flag")
	errUnknownCommand  = errors.New("unknown command")
)

// app carries what every command needs. cfg and log are filled in by Run
// after global flags are parsed, before any command executes.
type app struct {
	cfg *config.Config
	fs  fs.FS
	log *slog.Logger
	now func() time.Time
}

func (a *app) store() *backlog.Store {
	return backlog.NewStore(a.fs, a.cfg.BacklogFileAbs, time.Duration(a.cfg.LockTimeout), a.log)
}

// table returns the default weight table, or the configured weights file
// decoded over it.
func (a *app) table() (scoring.Table, error) {
	if a.cfg.WeightsFileAbs == "" {
		return scoring.DefaultTable(), nil
	}

	data, err := a.fs.ReadFile(a.cfg.WeightsFileAbs)
	if err != nil {
		return scoring.Table{}, fmt.Errorf("reading weights file: %w", err)
	}

	table, err := scoring.LoadTable(data)
	if err != nil {
		return scoring.Table{}, fmt.Errorf("%s: %w", a.cfg.WeightsFileAbs, err)
	}

	a.log.Debug("loaded weight table", "path", a.cfg.WeightsFileAbs)

	return table, nil
}

func commands(a *app) []*Command {
	return []*Command{
		AnalyzeCmd(a),
		ApplyCmd(a),
		ShowCmd(a),
		CheckCmd(a),
		InitCmd(a),
		PrintConfigCmd(a.cfg),
	}
}

// Run is the main entry point. Returns the process exit code.
//
// A signal on sigCh cancels the running command; sigCh may be nil.
func Run(in io.Reader, out io.Writer, errOut io.Writer, args []string, env map[string]string, sigCh <-chan os.Signal) int {
	o := NewIO(in, out, errOut)

	var cfg config.Config

	a := &app{cfg: &cfg, fs: fs.NewReal(), log: slog.New(slog.DiscardHandler), now: time.Now}
	cmds := commands(a)

	if len(args) < minArgs {
		printUsage(o, cmds)

		return 0
	}

	flags, err := parseGlobalFlags(args[1:])
	if err != nil {
		o.ErrPrintln("error:", err)

		return 1
	}

	if len(flags.remaining) == 0 || flags.remaining[0] == helpFlag || flags.remaining[0] == "-h" {
		printUsage(o, cmds)

		return 0
	}

	name := flags.remaining[0]

	var cmd *Command

	for _, c := range cmds {
		if c.Name() == name {
			cmd = c
		}
	}

	if cmd == nil {
		o.ErrPrintln("error:", fmt.Errorf("%w: %s", errUnknownCommand, name))
		printUsage(o.Stderr(), cmds)

		return 1
	}

	loaded, err := config.Load(config.LoadInput{
		WorkDir:         flags.workDir,
		ConfigPath:      flags.configPath,
		BacklogOverride: flags.backlogFile,
		Env:             env,
	})
	if err != nil {
		o.ErrPrintln("error:", err)

		return 1
	}

	cfg = loaded
	a.log = newLogger(o.errOut, flags.verbose)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		select {
		case sig := <-sigCh:
			a.log.Warn("interrupted", "signal", sig.String())
			cancel()
		case <-ctx.Done():
		}
	}()

	return cmd.Run(ctx, o, flags.remaining[1:])
}

func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}

	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

type globalFlags struct {
	workDir     string
	configPath  string
	backlogFile string
	verbose     bool
	remaining   []string
}

func parseGlobalFlags(args []string) (globalFlags, error) {
	var flags globalFlags

	idx := 0
	for idx < len(args) {
		consumed, err := parseFlag(args, idx, &flags)
		if err != nil {
			return globalFlags{}, err
		}

		if consumed == consumedNone {
			// Not a flag, this is the command
			flags.remaining = args[idx:]

			break
		}

		idx += consumed
	}

	return flags, nil
}

// parseFlag tries to parse a global flag at args[idx]. Returns the number of
// args consumed (0 if args[idx] is not a global flag).
func parseFlag(args []string, idx int, flags *globalFlags) (int, error) {
	arg := args[idx]

	for _, f := range []struct {
		short, long string
		dst         *string
	}{
		{"-C", "--cwd", &flags.workDir},
		{"-c", "--config", &flags.configPath},
		{"", "--backlog", &flags.backlogFile},
	} {
		if arg == f.long || (f.short != "" && arg == f.short) {
			if idx+1 >= len(args) {
				return consumedNone, fmt.Errorf("%w: %s", errFlagRequiresArg, arg)
			}

			*f.dst = args[idx+1]

			return consumedTwo, nil
		}

		if after, ok := strings.CutPrefix(arg, f.long+"="); ok {
			*f.dst = after

			return consumedOne, nil
		}
	}

	if after, ok := strings.CutPrefix(arg, "-C"); ok && after != "" {
		flags.workDir = after

		return consumedOne, nil
	}

	if arg == "-v" || arg == "--verbose" {
		flags.verbose = true

		return consumedOne, nil
	}

	if arg == "-h" || arg == helpFlag {
		flags.remaining = []string{helpFlag}

		return len(args) - idx, nil
	}

	if strings.HasPrefix(arg, "-") && arg != "-" {
		return consumedNone, fmt.Errorf("%w: %s", errUnknownFlag, arg)
	}

	return consumedNone, nil
}

func printUsage(o *IO, cmds []*Command) {
	o.Println(`prio - issue priority scoring and backlog resequencing

Usage: prio [options] <command> [args]

Options:
  -C, --cwd <dir>      Run as if started in <dir>
  -c, --config <file>  Use specified config file
  --backlog <file>     Backlog document (overrides backlog_file)
  -v, --verbose        Log debug output to stderr

Commands:`)

	for _, c := range cmds {
		o.Println(c.HelpLine())
	}

	o.Println()
	o.Println(`Run "prio <command> --help" for command flags.`)
}
