package cli

import (
	"context"
	"fmt"

	flag "github.com/spf13/pflag"

	"github.com/reoring/dstruct"
	"github.com/reoring/dstruct/codec"
	"github.com/reoring/dstruct/patch"
)

// optionalSchema loads a schema when a path is given.
func optionalSchema(path string) (*dstruct.Schema, error) {
	if path == "" {
		return nil, nil
	}
	return loadSchema(path)
}

func (a *app) getCmd() *Command {
	fs := flag.NewFlagSet("get", flag.ContinueOnError)
	schemaPath := fs.StringP("schema", "s", "", "schema file used to revive leaf kinds")
	return &Command{
		Flags: fs,
		Usage: "get [-s <schema>] <doc> <path>",
		Short: "Print the value at a dotted path",
		Exec: func(_ context.Context, o *IO, args []string) error {
			if len(args) != 2 {
				return fmt.Errorf("want <doc> <path>")
			}
			s, err := optionalSchema(*schemaPath)
			if err != nil {
				return err
			}
			doc, err := a.loadDoc(o, args[0], s)
			if err != nil {
				return err
			}
			v, err := dstruct.Retrieve(doc, args[1])
			if err != nil {
				return err
			}
			return a.writeDoc(o, v, "")
		},
	}
}

func (a *app) flattenCmd() *Command {
	fs := flag.NewFlagSet("flatten", flag.ContinueOnError)
	schemaPath := fs.StringP("schema", "s", "", "schema file used to revive leaf kinds")
	return &Command{
		Flags: fs,
		Usage: "flatten [-s <schema>] <doc>",
		Short: "Print every leaf as path = value",
		Exec: func(_ context.Context, o *IO, args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("want <doc>")
			}
			s, err := optionalSchema(*schemaPath)
			if err != nil {
				return err
			}
			doc, err := a.loadDoc(o, args[0], s)
			if err != nil {
				return err
			}
			flat, err := dstruct.FlattenDepth(doc, a.cfg.Validation.MaxDepth)
			if err != nil {
				return err
			}
			for _, p := range dstruct.SortedPaths(flat) {
				b, err := codec.EncodeJSON(flat[p], a.codecOpts()...)
				if err != nil {
					return err
				}
				o.Printf("%s = %s\n", p, b)
			}
			return nil
		},
	}
}

func (a *app) hashCmd() *Command {
	fs := flag.NewFlagSet("hash", flag.ContinueOnError)
	schemaPath := fs.StringP("schema", "s", "", "schema file used to revive leaf kinds")
	return &Command{
		Flags: fs,
		Usage: "hash [-s <schema>] <doc>...",
		Short: "Print the key-order independent hash of documents",
		Exec: func(_ context.Context, o *IO, args []string) error {
			if len(args) == 0 {
				return fmt.Errorf("no documents given")
			}
			s, err := optionalSchema(*schemaPath)
			if err != nil {
				return err
			}
			for _, path := range args {
				doc, err := a.loadDoc(o, path, s)
				if err != nil {
					return err
				}
				o.Printf("%s  %s\n", dstruct.Hash(doc), path)
			}
			return nil
		},
	}
}

func (a *app) diffCmd() *Command {
	fs := flag.NewFlagSet("diff", flag.ContinueOnError)
	schemaPath := fs.StringP("schema", "s", "", "schema file used to revive leaf kinds")
	mode := fs.String("format", "changes", "output: changes, text or merge")
	return &Command{
		Flags: fs,
		Usage: "diff [-s <schema>] [--format changes|text|merge] <a> <b>",
		Short: "Compare two documents",
		Long: "Compare two documents. 'changes' lists leaf changes by path, 'text' prints a line diff\n" +
			"of the JSON forms and 'merge' prints the RFC 7386 merge patch from a to b.",
		Exec: func(_ context.Context, o *IO, args []string) error {
			if len(args) != 2 {
				return fmt.Errorf("want <a> <b>")
			}
			s, err := optionalSchema(*schemaPath)
			if err != nil {
				return err
			}
			da, err := a.loadDoc(o, args[0], s)
			if err != nil {
				return err
			}
			db, err := a.loadDoc(o, args[1], s)
			if err != nil {
				return err
			}
			switch *mode {
			case "changes":
				for _, c := range dstruct.Diff(da, db) {
					o.Println(a.formatChange(o, c))
				}
			case "text":
				t, err := patch.Text(da, db, a.codecOpts()...)
				if err != nil {
					return err
				}
				o.Printf("%s", t)
			case "merge":
				p, err := patch.Merge(da, db, a.codecOpts()...)
				if err != nil {
					return err
				}
				o.Printf("%s\n", p)
			default:
				return fmt.Errorf("unknown --format %q", *mode)
			}
			return nil
		},
	}
}

func (a *app) formatChange(o *IO, c dstruct.Change) string {
	show := func(v any) string {
		b, err := codec.EncodeJSON(v, a.codecOpts()...)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(b)
	}
	switch c.Op {
	case dstruct.Added:
		return o.Good("+ ") + c.Path + " = " + show(c.New)
	case dstruct.Removed:
		return o.Bad("- ") + c.Path + " = " + show(c.Old)
	}
	return "~ " + c.Path + ": " + show(c.Old) + " -> " + show(c.New)
}
