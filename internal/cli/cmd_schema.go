package cli

import (
	"context"
	"fmt"

	flag "github.com/spf13/pflag"

	"github.com/reoring/dstruct"
	"github.com/reoring/dstruct/schemafile"
)

func (a *app) checkCmd() *Command {
	fs := flag.NewFlagSet("check", flag.ContinueOnError)
	asYAML := fs.Bool("yaml", false, "print the schema as a YAML declaration")
	return &Command{
		Flags: fs,
		Usage: "check <schema>...",
		Short: "Check schema declaration files",
		Long:  "Parse every schema file (JSON, JSONC or YAML) and report definition errors.",
		Exec: func(_ context.Context, o *IO, args []string) error {
			if len(args) == 0 {
				return fmt.Errorf("no schema files given")
			}
			failed := false
			for _, path := range args {
				s, err := schemafile.Load(path)
				if err != nil {
					o.Println(o.Bad("invalid"), err)
					failed = true
					continue
				}
				if *asYAML {
					b, err := schemafile.EncodeYAML(s)
					if err != nil {
						return err
					}
					o.Printf("%s", b)
					continue
				}
				o.Println(o.Good("ok"), path, s)
			}
			if failed {
				return errReported
			}
			return nil
		},
	}
}

func (a *app) validateCmd() *Command {
	fs := flag.NewFlagSet("validate", flag.ContinueOnError)
	schemaPath := fs.StringP("schema", "s", "", "schema file")
	all := fs.Bool("all", false, "report every violation instead of the first")
	return &Command{
		Flags: fs,
		Usage: "validate -s <schema> <doc>...",
		Short: "Validate JSON documents against a schema",
		Exec: func(_ context.Context, o *IO, args []string) error {
			s, err := loadSchema(*schemaPath)
			if err != nil {
				return err
			}
			if len(args) == 0 {
				return fmt.Errorf("no documents given")
			}
			failed := false
			for _, path := range args {
				doc, err := a.loadDoc(o, path, s)
				if err != nil {
					return err
				}
				if !a.reportValidation(o, path, s, doc, *all) {
					failed = true
				}
			}
			if failed {
				return errReported
			}
			return nil
		},
	}
}

func (a *app) buildCmd() *Command {
	fs := flag.NewFlagSet("build", flag.ContinueOnError)
	schemaPath := fs.StringP("schema", "s", "", "schema file")
	out := fs.StringP("output", "o", "", "write the document to this file")
	sets := fs.StringArray("set", nil, "override as path=json (repeatable)")
	return &Command{
		Flags: fs,
		Usage: "build -s <schema> [--set path=value]...",
		Short: "Build a default document",
		Long: "Build a document with every map key filled by its kind's default and lists left empty.\n" +
			"Overrides replace whole subtrees; an override whose path is not in the schema fails the build.",
		Exec: func(_ context.Context, o *IO, _ []string) error {
			s, err := loadSchema(*schemaPath)
			if err != nil {
				return err
			}
			overrides, err := a.parseSets(s.Root(), *sets)
			if err != nil {
				return err
			}
			doc, err := dstruct.NewBuilder(dstruct.WithDefaults(a.cfg.Defaults())).Build(s, overrides)
			if err != nil {
				return err
			}
			return a.writeDoc(o, doc, *out)
		},
	}
}

func (a *app) genCmd() *Command {
	fs := flag.NewFlagSet("gen", flag.ContinueOnError)
	schemaPath := fs.StringP("schema", "s", "", "schema file")
	at := fs.String("at", "", "schema path of the node to build, e.g. friends")
	sets := fs.StringArray("set", nil, "override relative to the node as path=json (repeatable)")
	return &Command{
		Flags: fs,
		Usage: "gen -s <schema> --at <path> [--set path=value]...",
		Short: "Build the node at a schema path (one item for lists)",
		Exec: func(_ context.Context, o *IO, _ []string) error {
			s, err := loadSchema(*schemaPath)
			if err != nil {
				return err
			}
			g := dstruct.NewBuilder(dstruct.WithDefaults(a.cfg.Defaults())).Gen(s).At(*at)
			n, err := g.Node()
			if err != nil {
				return err
			}
			if n.Shape() == dstruct.ShapeList {
				n = n.Elem()
			}
			overrides, err := a.parseSets(n, *sets)
			if err != nil {
				return err
			}
			v, err := g.Build(overrides)
			if err != nil {
				return err
			}
			return a.writeDoc(o, v, "")
		},
	}
}
