// Package store persists schema documents through a pluggable Backend.
//
// A Collection validates documents before they are written and hands back
// stored records wrapped in their schema without validating them again;
// callers that distrust their storage call Document.Validate themselves.
// Records read back are revived to the schema's kinds, and datetimes are
// saved at codec.BSONPrecision whatever the backend.
package store

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/rs/zerolog"

	"github.com/reoring/dstruct"
	"github.com/reoring/dstruct/codec"
	"github.com/reoring/dstruct/ident"
)

// ErrNotFound is returned when no record exists under a key.
var ErrNotFound = errors.New("store: record not found")

// Record is one stored document body.
type Record struct {
	Key  string
	Data any
}

// Backend stores raw document bodies under (collection, key).
// Implementations must not retain or mutate the values they are given.
type Backend interface {
	Put(ctx context.Context, collection, key string, data any) error
	Get(ctx context.Context, collection, key string) (any, error)
	Delete(ctx context.Context, collection, key string) error
	// List returns every record of collection ordered by key.
	List(ctx context.Context, collection string) ([]Record, error)
	Close() error
}

// Option configures a Collection.
type Option func(*Collection)

// WithLogger sets the logger used for store events.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Collection) { c.log = l }
}

// WithKeyPath sets the document path holding each record's key.
// The default is "id".
func WithKeyPath(path string) Option {
	return func(c *Collection) { c.keyPath = path }
}

// WithValidateOptions sets the options used to validate on Save and that
// are attached to documents handed back.
func WithValidateOptions(opts ...dstruct.ValidateOption) Option {
	return func(c *Collection) { c.opts = opts }
}

// Collection is a named set of documents sharing one schema.
type Collection struct {
	name    string
	schema  *dstruct.Schema
	backend Backend
	keyPath string
	opts    []dstruct.ValidateOption
	log     zerolog.Logger
}

// NewCollection binds a schema to a backend under name.
func NewCollection(name string, s *dstruct.Schema, b Backend, opts ...Option) *Collection {
	c := &Collection{name: name, schema: s, backend: b, keyPath: "id", log: zerolog.Nop()}
	for _, o := range opts {
		o(c)
	}
	c.log = c.log.With().Str("collection", name).Logger()
	return c
}

// Name returns the collection name.
func (c *Collection) Name() string { return c.name }

// Schema returns the collection schema.
func (c *Collection) Schema() *dstruct.Schema { return c.schema }

// Save validates d and writes it under the value at the key path. It returns
// the key used. The datetimes of d are truncated to codec.BSONPrecision
// first, so d hashes like the record read back.
func (c *Collection) Save(ctx context.Context, d *dstruct.Document) (string, error) {
	data := codec.TruncateTimes(d.Data())
	if err := dstruct.Validate(data, c.schema, c.opts...); err != nil {
		c.log.Warn().Err(err).Msg("rejected invalid document")
		return "", err
	}
	if err := d.Set("", data); err != nil {
		return "", err
	}
	key, err := c.Key(d)
	if err != nil {
		return "", err
	}
	if err := c.backend.Put(ctx, c.name, key, data); err != nil {
		return "", fmt.Errorf("store: save %s/%s: %w", c.name, key, err)
	}
	c.log.Debug().Str("key", key).Str("hash", d.Hash()).Msg("saved document")
	return key, nil
}

// Key returns the record key of d: the value at the key path rendered by
// KeyOf.
func (c *Collection) Key(d *dstruct.Document) (string, error) {
	raw, err := d.Get(c.keyPath)
	if err != nil {
		return "", fmt.Errorf("store: key path %q: %w", c.keyPath, err)
	}
	return KeyOf(raw)
}

// Get returns the document stored under key.
func (c *Collection) Get(ctx context.Context, key string) (*dstruct.Document, error) {
	data, err := c.backend.Get(ctx, c.name, key)
	if err != nil {
		return nil, err
	}
	return dstruct.Wrap(c.schema, c.revive(data), c.opts...), nil
}

func (c *Collection) revive(data any) any { return codec.Revive(data, c.schema) }

// Delete removes the document stored under key.
func (c *Collection) Delete(ctx context.Context, key string) error {
	if err := c.backend.Delete(ctx, c.name, key); err != nil {
		return err
	}
	c.log.Debug().Str("key", key).Msg("deleted document")
	return nil
}

// Keys lists the stored keys in order.
func (c *Collection) Keys(ctx context.Context) ([]string, error) {
	recs, err := c.backend.List(ctx, c.name)
	if err != nil {
		return nil, err
	}
	keys := make([]string, len(recs))
	for i, r := range recs {
		keys[i] = r.Key
	}
	return keys, nil
}

// All returns every stored document ordered by key.
func (c *Collection) All(ctx context.Context) ([]*dstruct.Document, error) {
	return c.Find(ctx, "", nil)
}

// Find returns the documents whose value at path equals value, ordered by
// key. Values are compared by Hash after truncating datetimes the way Save
// does. An empty path matches every document.
func (c *Collection) Find(ctx context.Context, path string, value any) ([]*dstruct.Document, error) {
	if _, err := dstruct.ParsePath(path); err != nil {
		return nil, err
	}
	recs, err := c.backend.List(ctx, c.name)
	if err != nil {
		return nil, err
	}
	want := dstruct.Hash(codec.TruncateTimes(value))
	var out []*dstruct.Document
	for _, r := range recs {
		data := c.revive(r.Data)
		if path != "" {
			got, err := dstruct.Retrieve(data, path)
			if err != nil || dstruct.Hash(got) != want {
				continue
			}
		}
		out = append(out, dstruct.Wrap(c.schema, data, c.opts...))
	}
	c.log.Debug().Str("path", path).Int("matches", len(out)).Msg("find")
	return out, nil
}

// KeyOf renders a key value as a record key. Identifiers use their
// canonical string form.
func KeyOf(v any) (string, error) {
	for _, s := range []ident.Scheme{ident.ObjectIDs, ident.UUIDs} {
		if k, ok := s.Format(v); ok {
			return k, nil
		}
	}
	switch t := v.(type) {
	case string:
		if t == "" {
			return "", errors.New("store: empty key")
		}
		return t, nil
	case int, int32, int64, uint, uint32, uint64:
		return fmt.Sprint(t), nil
	}
	return "", fmt.Errorf("store: unsupported key type %T", v)
}

// SortRecords orders records by key; backends use it for List.
func SortRecords(recs []Record) {
	sort.Slice(recs, func(i, j int) bool { return recs[i].Key < recs[j].Key })
}
