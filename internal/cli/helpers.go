package cli

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/natefinch/atomic"

	"github.com/reoring/dstruct"
	"github.com/reoring/dstruct/codec"
	"github.com/reoring/dstruct/schemafile"
)

func (a *app) codecOpts() []codec.Option {
	return []codec.Option{codec.WithScheme(a.cfg.Scheme())}
}

// loadSchema reads a required schema file named by a -s flag.
func loadSchema(path string) (*dstruct.Schema, error) {
	if path == "" {
		return nil, fmt.Errorf("a schema file is required (-s)")
	}
	return schemafile.Load(path)
}

// loadDoc reads a JSON document; "-" reads stdin. With a schema the leaves
// are revived to their declared kinds.
func (a *app) loadDoc(o *IO, path string, s *dstruct.Schema) (any, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(o.in)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}
	doc, err := codec.DecodeJSON(data, s, a.codecOpts()...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

// writeDoc prints doc as indented JSON to stdout, or atomically replaces
// the file at outPath.
func (a *app) writeDoc(o *IO, doc any, outPath string) error {
	b, err := codec.EncodeJSON(doc, append(a.codecOpts(), codec.WithIndent("", "  "))...)
	if err != nil {
		return err
	}
	b = append(b, '\n')
	if outPath == "" || outPath == "-" {
		o.Printf("%s", b)
		return nil
	}
	if err := atomic.WriteFile(outPath, bytes.NewReader(b)); err != nil {
		return fmt.Errorf("write %s: %w", outPath, err)
	}
	a.log.Info().Str("file", outPath).Msg("wrote document")
	return nil
}

// parseSets turns "path=json" assignments into build overrides relative to
// root.
func (a *app) parseSets(root *dstruct.Node, sets []string) (map[string]any, error) {
	if len(sets) == 0 {
		return nil, nil
	}
	out := make(map[string]any, len(sets))
	for _, set := range sets {
		path, raw, ok := strings.Cut(set, "=")
		if !ok {
			return nil, fmt.Errorf("--set %q: want path=value", set)
		}
		v, err := a.decodeAt(root, path, raw)
		if err != nil {
			return nil, err
		}
		out[path] = v
	}
	return out, nil
}

// decodeAt decodes a command-line value against the schema node that path
// names under root, so ids and datetimes can be given as plain strings.
// Text that is not JSON is taken as a string.
func (a *app) decodeAt(root *dstruct.Node, path, raw string) (any, error) {
	base, err := dstruct.New(root)
	if err != nil {
		return nil, err
	}
	var sub *dstruct.Schema
	if n, err := base.Lookup(path); err == nil {
		sub, _ = dstruct.New(n)
	}
	if v, err := codec.DecodeJSON([]byte(raw), sub, a.codecOpts()...); err == nil {
		return v, nil
	}
	quoted, err := json.Marshal(raw)
	if err != nil {
		return nil, err
	}
	return codec.DecodeJSON(quoted, sub, a.codecOpts()...)
}

// reportValidation prints the outcome of validating doc and reports whether
// it passed.
func (a *app) reportValidation(o *IO, name string, s *dstruct.Schema, doc any, all bool) bool {
	opts := a.cfg.ValidateOptions()
	var err error
	if all || a.cfg.Validation.CollectAll {
		err = dstruct.ValidateAll(doc, s, opts...)
	} else {
		err = dstruct.Validate(doc, s, opts...)
	}
	if err == nil {
		o.Println(o.Good("ok"), name)
		return true
	}
	if es, ok := dstruct.AsValidationErrors(err); ok {
		for _, e := range es {
			o.Println(o.Bad("invalid"), name+":", e.Error())
		}
	} else {
		o.Println(o.Bad("invalid"), name+":", err)
	}
	a.log.Debug().Err(err).Str("document", name).Msg("validation failed")
	return false
}
