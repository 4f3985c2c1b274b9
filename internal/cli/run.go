// Package cli implements the dstruct command line.
package cli

import (
	"context"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	flag "github.com/spf13/pflag"

	"github.com/reoring/dstruct/internal/config"
	"github.com/reoring/dstruct/internal/logging"
)

const defaultConfigPath = "dstruct.yaml"

// app is the state shared by all commands of one invocation.
type app struct {
	cfg *config.Config
	log zerolog.Logger
}

func (a *app) commands() []*Command {
	return []*Command{
		a.checkCmd(),
		a.validateCmd(),
		a.buildCmd(),
		a.genCmd(),
		a.getCmd(),
		a.flattenCmd(),
		a.hashCmd(),
		a.diffCmd(),
		a.watchCmd(),
		a.storeCmd(),
	}
}

// Run is the main entry point. args includes the program name. Returns the
// exit code.
func Run(ctx context.Context, in io.Reader, out, errOut io.Writer, args []string) int {
	o := NewIO(in, out, errOut)

	global := flag.NewFlagSet("dstruct", flag.ContinueOnError)
	global.SetInterspersed(false)
	global.SetOutput(&strings.Builder{})
	configPath := global.StringP("config", "c", "", "config file (default $DSTRUCT_CONFIG or "+defaultConfigPath+")")
	lang := global.String("lang", "", "message language: en or ja")
	var rest []string
	if len(args) > 1 {
		if err := global.Parse(args[1:]); err != nil {
			o.ErrPrintln("error:", err)
			printUsage(o, nil)
			return 1
		}
		rest = global.Args()
	}

	path := *configPath
	if path == "" {
		path = os.Getenv("DSTRUCT_CONFIG")
	}
	if path == "" {
		path = defaultConfigPath
	}
	cfg, err := config.LoadWithFallback(path)
	if err != nil {
		o.ErrPrintln("error:", err)
		return 1
	}
	if *lang != "" {
		cfg.Language = *lang
	}
	cfg.Apply()

	a := &app{cfg: cfg, log: logging.New(cfg.Logging, errOut)}
	cmds := a.commands()

	if len(rest) == 0 || rest[0] == "-h" || rest[0] == "--help" || rest[0] == "help" {
		printUsage(o, cmds)
		return 0
	}
	for _, c := range cmds {
		if c.Name() == rest[0] {
			a.log.Debug().Str("command", c.Name()).Strs("args", rest[1:]).Msg("run")
			return c.Run(ctx, o, rest[1:])
		}
	}
	o.ErrPrintln("error: unknown command:", rest[0])
	printUsage(o, cmds)
	return 1
}

func printUsage(o *IO, cmds []*Command) {
	o.Println("dstruct - structured-document schemas")
	o.Println()
	o.Println("Usage: dstruct [--config <file>] [--lang en|ja] <command> [args]")
	if len(cmds) == 0 {
		return
	}
	o.Println()
	o.Println("Commands:")
	for _, c := range cmds {
		o.Println(c.HelpLine())
	}
	o.Println()
	o.Println("Run 'dstruct <command> --help' for command flags.")
}
