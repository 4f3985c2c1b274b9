package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	flag "github.com/spf13/pflag"
)

// Command is one dstruct subcommand.
type Command struct {
	Flags *flag.FlagSet
	// Usage starts with the command name, e.g. "validate -s <schema> <doc>...".
	Usage string
	// Short is listed in the global help.
	Short string
	// Long replaces Short in "dstruct <cmd> --help" when set.
	Long string
	Exec func(ctx context.Context, o *IO, args []string) error
}

// errReported is returned by commands that already printed their failure
// (for example a list of validation errors).
var errReported = errors.New("reported")

// Name is the first word of Usage.
func (c *Command) Name() string {
	name, _, _ := strings.Cut(c.Usage, " ")
	return name
}

// HelpLine is the command's row in the global help.
func (c *Command) HelpLine() string {
	return fmt.Sprintf("  %-36s %s", c.Usage, c.Short)
}

func (c *Command) help() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Usage: dstruct %s\n\n", c.Usage)
	desc := c.Long
	if desc == "" {
		desc = c.Short
	}
	b.WriteString(desc)
	b.WriteByte('\n')
	if c.Flags != nil && c.Flags.HasFlags() {
		b.WriteString("\nFlags:\n")
		b.WriteString(c.Flags.FlagUsages())
	}
	return b.String()
}

// PrintHelp writes the command help to stdout.
func (c *Command) PrintHelp(o *IO) { o.Printf("%s", c.help()) }

// Run parses args and executes the command, returning the exit code. Flag
// errors print the help to stderr; --help prints it to stdout.
func (c *Command) Run(ctx context.Context, o *IO, args []string) int {
	if c.Flags == nil {
		c.Flags = flag.NewFlagSet(c.Name(), flag.ContinueOnError)
	}
	c.Flags.SetOutput(&strings.Builder{})

	err := c.Flags.Parse(args)
	switch {
	case errors.Is(err, flag.ErrHelp):
		c.PrintHelp(o)
		return 0
	case err != nil:
		o.ErrPrintln("error:", err)
		o.ErrPrintln()
		o.ErrPrintln(strings.TrimRight(c.help(), "\n"))
		return 1
	}

	err = c.Exec(ctx, o, c.Flags.Args())
	switch {
	case err == nil:
		return 0
	case !errors.Is(err, errReported):
		o.ErrPrintln(o.Bad("error:"), err)
	}
	return 1
}
