package cli

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	flag "github.com/spf13/pflag"

	"github.com/reoring/dstruct"
)

func (a *app) watchCmd() *Command {
	fs := flag.NewFlagSet("watch", flag.ContinueOnError)
	schemaPath := fs.StringP("schema", "s", "", "schema file")
	return &Command{
		Flags: fs,
		Usage: "watch -s <schema> <doc>",
		Short: "Revalidate a document whenever it changes",
		Long:  "Validate the document, then validate it again on every write until interrupted.",
		Exec: func(ctx context.Context, o *IO, args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("want <doc>")
			}
			s, err := loadSchema(*schemaPath)
			if err != nil {
				return err
			}
			return a.watch(ctx, o, s, args[0])
		},
	}
}

func (a *app) revalidate(o *IO, s *dstruct.Schema, path string) {
	doc, err := a.loadDoc(o, path, s)
	if err != nil {
		o.Println(o.Bad("invalid"), err)
		return
	}
	a.reportValidation(o, path, s, doc, false)
}

func (a *app) watch(ctx context.Context, o *IO, s *dstruct.Schema, path string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	// Watch the directory (editors that save atomically replace the file)
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("watch directory: %w", err)
	}
	a.log.Info().Str("path", path).Msg("watching document for changes")

	a.revalidate(o, s, path)
	filename := filepath.Base(path)
	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Base(event.Name) != filename {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				a.log.Debug().
					Str("event", event.Op.String()).
					Str("file", event.Name).
					Msg("document changed")
				a.revalidate(o, s, path)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			a.log.Error().Err(err).Msg("file watcher error")
		case <-ctx.Done():
			return nil
		}
	}
}
