package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	flag "github.com/spf13/pflag"

	"github.com/reoring/dstruct"
	"github.com/reoring/dstruct/store"
	"github.com/reoring/dstruct/store/memory"
	"github.com/reoring/dstruct/store/sqlite"
)

func (a *app) openBackend() (store.Backend, error) {
	switch a.cfg.Store.Driver {
	case "memory":
		return memory.New(), nil
	case "sqlite":
		return sqlite.OpenBackend(a.cfg.Store.DSN)
	}
	return nil, fmt.Errorf("unknown store driver %q", a.cfg.Store.Driver)
}

func (a *app) storeCmd() *Command {
	fs := flag.NewFlagSet("store", flag.ContinueOnError)
	schemaPath := fs.StringP("schema", "s", "", "schema file")
	name := fs.String("collection", "", "collection name (default: schema file name)")
	keyPath := fs.String("key", "id", "document path holding the record key")
	where := fs.String("where", "", "ls filter as path=json")
	return &Command{
		Flags: fs,
		Usage: "store save|get|ls -s <schema> [args]",
		Short: "Save, fetch and list documents in the configured store",
		Long: "store save <doc>...   validate and save documents, printing their keys\n" +
			"store get <key>       print a stored document\n" +
			"store ls              list stored keys (optionally --where path=value)",
		Exec: func(ctx context.Context, o *IO, args []string) error {
			if len(args) == 0 {
				return fmt.Errorf("want save, get or ls")
			}
			s, err := loadSchema(*schemaPath)
			if err != nil {
				return err
			}
			coll := *name
			if coll == "" {
				coll = strings.TrimSuffix(filepath.Base(*schemaPath), filepath.Ext(*schemaPath))
			}
			b, err := a.openBackend()
			if err != nil {
				return err
			}
			defer b.Close()
			c := store.NewCollection(coll, s, b,
				store.WithLogger(a.log),
				store.WithKeyPath(*keyPath),
				store.WithValidateOptions(a.cfg.ValidateOptions()...))

			switch args[0] {
			case "save":
				return a.storeSave(ctx, o, c, args[1:])
			case "get":
				if len(args) != 2 {
					return fmt.Errorf("want store get <key>")
				}
				d, err := c.Get(ctx, args[1])
				if err != nil {
					return err
				}
				return a.writeDoc(o, d.Data(), "")
			case "ls":
				return a.storeList(ctx, o, c, *where)
			}
			return fmt.Errorf("unknown store action %q", args[0])
		},
	}
}

func (a *app) storeSave(ctx context.Context, o *IO, c *store.Collection, paths []string) error {
	if len(paths) == 0 {
		return fmt.Errorf("no documents given")
	}
	for _, path := range paths {
		doc, err := a.loadDoc(o, path, c.Schema())
		if err != nil {
			return err
		}
		key, err := c.Save(ctx, dstruct.Wrap(c.Schema(), doc))
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		o.Println(o.Good("saved"), key)
	}
	return nil
}

func (a *app) storeList(ctx context.Context, o *IO, c *store.Collection, where string) error {
	if where == "" {
		keys, err := c.Keys(ctx)
		if err != nil {
			return err
		}
		for _, k := range keys {
			o.Println(k)
		}
		return nil
	}
	path, raw, ok := strings.Cut(where, "=")
	if !ok {
		return fmt.Errorf("--where %q: want path=value", where)
	}
	want, err := a.decodeAt(c.Schema().Root(), path, raw)
	if err != nil {
		return err
	}
	docs, err := c.Find(ctx, path, want)
	if err != nil {
		return err
	}
	for _, d := range docs {
		k, err := c.Key(d)
		if err != nil {
			return err
		}
		o.Println(k)
	}
	return nil
}
