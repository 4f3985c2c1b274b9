package dstruct

import (
	"strconv"

	"github.com/reoring/dstruct/i18n"
)

// Gen accumulates a path through a schema and builds the node it ends on.
// It exists because Build leaves lists empty: Gen produces one well-formed
// list item to place in an override.
//
//	item, err := s.Gen().Field("friends").Build(map[string]any{"nick": "zorro"})
//	doc, err := s.Build(map[string]any{"friends": []any{item}})
//
// Gen values are immutable; every step returns a new Gen. A failing step is
// remembered and reported by Build. The zero Gen has no schema and fails
// with CodeNilNode.
type Gen struct {
	builder *Builder
	node    *Node
	path    Path
	err     error
}

// checked records the zero-value failure.
func (g Gen) checked() Gen {
	if g.err == nil && (g.node == nil || g.builder == nil) {
		g.err = &SchemaError{Path: g.path.String(), Code: CodeNilNode, Message: i18n.T(CodeNilNode, nil)}
	}
	return g
}

// Gen starts a generator at the schema root with the standard defaults.
func (s *Schema) Gen() Gen { return defaultBuilder.Gen(s) }

// Gen starts a generator at the root of s that builds with b.
func (b *Builder) Gen(s *Schema) Gen { return Gen{builder: b, node: s.root} }

// Field descends into a map key. On a list node it first descends into the
// element, so Field chains mirror document paths without index tokens.
func (g Gen) Field(name string) Gen {
	if g = g.checked(); g.err != nil {
		return g
	}
	n := g.node
	p := g.path
	if n.shape == ShapeList {
		n = n.elem
		p = p.Index(0)
	}
	p = p.Key(name)
	if n.shape != ShapeMap {
		g.err = &PathError{Path: p.String(), Segment: name, Code: CodeKindMismatch,
			Message: i18n.T(CodeKindMismatch, map[string]string{"segment": name, "container": n.shape.String()})}
		return g
	}
	c, ok := n.fields[name]
	if !ok {
		g.err = &PathError{Path: p.String(), Segment: name, Code: CodeMissingKey,
			Message: i18n.T(CodeMissingKey, map[string]string{"key": strconv.Quote(name)})}
		return g
	}
	return Gen{builder: g.builder, node: c, path: p}
}

// Elem descends into the element of a list node.
func (g Gen) Elem() Gen {
	if g = g.checked(); g.err != nil {
		return g
	}
	p := g.path.Index(0)
	if g.node.shape != ShapeList {
		g.err = &PathError{Path: p.String(), Segment: "[0]", Code: CodeKindMismatch,
			Message: i18n.T(CodeKindMismatch, map[string]string{"segment": "[0]", "container": g.node.shape.String()})}
		return g
	}
	return Gen{builder: g.builder, node: g.node.elem, path: p}
}

// At applies a dotted schema path relative to the current node.
func (g Gen) At(path string) Gen {
	if g = g.checked(); g.err != nil {
		return g
	}
	p, err := ParsePath(path)
	if err != nil {
		g.err = err
		return g
	}
	for _, seg := range p {
		if seg.IsIndex {
			g = g.Elem()
		} else {
			g = g.Field(seg.Key)
		}
	}
	return g
}

// Path returns the accumulated schema path.
func (g Gen) Path() string { return g.path.String() }

// Node returns the schema node the generator points at.
func (g Gen) Node() (*Node, error) {
	if g = g.checked(); g.err != nil {
		return nil, g.err
	}
	return g.node, nil
}

// Build synthesizes the current node. On a list node it builds one item of
// the list instead; override paths are relative to what is built.
func (g Gen) Build(overrides map[string]any) (any, error) {
	if g = g.checked(); g.err != nil {
		return nil, g.err
	}
	n := g.node
	if n.shape == ShapeList {
		n = n.elem
	}
	return g.builder.BuildNode(n, overrides)
}

// MustBuild is like Build but panics on error.
func (g Gen) MustBuild(overrides map[string]any) any {
	v, err := g.Build(overrides)
	if err != nil {
		panic(err)
	}
	return v
}
