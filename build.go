package dstruct

import (
	"fmt"
	"maps"
	"sort"
	"time"

	"github.com/reoring/dstruct/ident"
)

// DefaultFunc produces the default value of one kind. It is called once per
// synthesized leaf, so identity-bearing kinds get a fresh value each time.
type DefaultFunc func() any

// Defaults maps leaf kinds to their default producers. Treat a Defaults
// value as immutable; With and friends return modified copies.
type Defaults map[Kind]DefaultFunc

// StandardDefaults returns the stock policy: zero numbers, false, "", empty
// bytes/list/map, a fresh ObjectID and the current time.
func StandardDefaults() Defaults {
	return Defaults{
		KindNull:     func() any { return nil },
		KindBool:     func() any { return false },
		KindInt:      func() any { return 0 },
		KindInt32:    func() any { return int32(0) },
		KindFloat:    func() any { return 0.0 },
		KindFloat32:  func() any { return float32(0) },
		KindString:   func() any { return "" },
		KindBytes:    func() any { return []byte{} },
		KindList:     func() any { return []any{} },
		KindMap:      func() any { return map[string]any{} },
		KindID:       ident.ObjectIDs.New,
		KindDateTime: func() any { return time.Now() },
	}
}

// With returns a copy of d with k produced by f.
func (d Defaults) With(k Kind, f DefaultFunc) Defaults {
	out := maps.Clone(d)
	if out == nil {
		out = Defaults{}
	}
	out[k] = f
	return out
}

// WithIDScheme returns a copy of d generating ids from s.
func (d Defaults) WithIDScheme(s ident.Scheme) Defaults { return d.With(KindID, s.New) }

// WithClock returns a copy of d taking datetimes from now.
func (d Defaults) WithClock(now func() time.Time) Defaults {
	return d.With(KindDateTime, func() any { return now() })
}

// BuildOption configures a Builder.
type BuildOption func(*Builder)

// WithDefaults replaces the default policy.
func WithDefaults(d Defaults) BuildOption {
	return func(b *Builder) { b.defaults = d }
}

// Builder synthesizes schema-conformant documents.
type Builder struct {
	defaults Defaults
}

// NewBuilder returns a Builder using StandardDefaults unless overridden.
func NewBuilder(opts ...BuildOption) *Builder {
	b := &Builder{defaults: StandardDefaults()}
	for _, o := range opts {
		o(b)
	}
	return b
}

var defaultBuilder = NewBuilder()

// Build is Builder.Build with the standard defaults.
func (s *Schema) Build(overrides map[string]any) (any, error) {
	return defaultBuilder.Build(s, overrides)
}

// Build synthesizes a document for s. A value in overrides whose path names
// a schema node replaces that whole subtree verbatim. Lists are never
// populated automatically. Every override must be claimed; leftovers fail
// the build with an *OverrideError. The caller's map is not modified.
func (b *Builder) Build(s *Schema, overrides map[string]any) (any, error) {
	return b.BuildNode(s.root, overrides)
}

// BuildNode is Build for a bare (already checked) node; override paths are
// relative to n.
func (b *Builder) BuildNode(n *Node, overrides map[string]any) (any, error) {
	pending := make(map[string]any, len(overrides))
	for k, v := range overrides {
		p, err := ParsePath(k)
		if err != nil {
			return nil, err
		}
		pending[p.String()] = v
	}
	doc, err := b.build(n, nil, pending)
	if err != nil {
		return nil, err
	}
	if len(pending) > 0 {
		left := make([]string, 0, len(pending))
		for k := range pending {
			left = append(left, k)
		}
		sort.Strings(left)
		return nil, &OverrideError{Paths: left}
	}
	return doc, nil
}

func (b *Builder) build(n *Node, p Path, pending map[string]any) (any, error) {
	key := p.String()
	if v, ok := pending[key]; ok {
		delete(pending, key)
		return v, nil
	}
	switch n.shape {
	case ShapeMap:
		out := make(map[string]any, len(n.keys))
		for _, k := range n.keys {
			v, err := b.build(n.fields[k], p.Key(k), pending)
			if err != nil {
				return nil, err
			}
			out[k] = v
		}
		return out, nil
	case ShapeList:
		return []any{}, nil
	}
	f, ok := b.defaults[n.kind]
	if !ok || f == nil {
		return nil, fmt.Errorf("%w: kind %s at %s", ErrNoDefault, n.kind, pathLabel(key))
	}
	return f(), nil
}
