package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	flag "github.com/spf13/pflag"
)

var errUnexpectedArgs = errors.New("unexpected arguments")

// Command is one prio subcommand. Commands take flags only; positional
// arguments are rejected before Exec runs.
type Command struct {
	Flags *flag.FlagSet

	// Usage follows "prio" in help and starts with the command name,
	// e.g. "apply --issue <n> --action <a> [flags]".
	Usage string

	// Short is the one-line summary in the global command list.
	Short string

	// Long is the command help body. Short is used when empty.
	Long string

	// Examples are full invocations printed under "Examples:".
	Examples []string

	Exec func(ctx context.Context, o *IO) error
}

// Name returns the first word of Usage.
func (c *Command) Name() string {
	name, _, _ := strings.Cut(c.Usage, " ")

	return name
}

// HelpLine returns the command's row in the global usage listing.
func (c *Command) HelpLine() string {
	return fmt.Sprintf("  %-34s %s", c.Usage, c.Short)
}

// PrintHelp writes "prio <cmd> --help" output to o.
func (c *Command) PrintHelp(o *IO) {
	o.Println("Usage: prio", c.Usage)
	o.Println()

	if c.Long != "" {
		o.Println(c.Long)
	} else {
		o.Println(c.Short)
	}

	if c.Flags.HasFlags() {
		o.Println()
		o.Println("Flags:")
		o.Printf("%s", c.Flags.FlagUsages())
	}

	if len(c.Examples) > 0 {
		o.Println()
		o.Println("Examples:")

		for _, ex := range c.Examples {
			o.Println("  " + ex)
		}
	}
}

// Run parses args into c.Flags and executes the command. Parse errors and
// stray arguments print the error followed by the command help to stderr.
func (c *Command) Run(ctx context.Context, o *IO, args []string) int {
	c.Flags.SetOutput(&strings.Builder{})

	err := c.Flags.Parse(args)
	if errors.Is(err, flag.ErrHelp) {
		c.PrintHelp(o)

		return 0
	}

	if err == nil && c.Flags.NArg() > 0 {
		err = fmt.Errorf("%w: %s", errUnexpectedArgs, strings.Join(c.Flags.Args(), " "))
	}

	if err != nil {
		o.ErrPrintln("error:", err)
		o.ErrPrintln()
		c.PrintHelp(o.Stderr())

		return 1
	}

	if err := c.Exec(ctx, o); err != nil {
		o.ErrPrintln("error:", err)

		return 1
	}

	return 0
}
