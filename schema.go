package dstruct

import (
	"strconv"
	"strings"

	"github.com/reoring/dstruct/i18n"
)

// Shape tags the three schema node variants.
type Shape uint8

const (
	ShapeLeaf Shape = iota + 1
	ShapeMap
	ShapeList
)

func (s Shape) String() string {
	switch s {
	case ShapeLeaf:
		return "leaf"
	case ShapeMap:
		return "map"
	case ShapeList:
		return "list"
	}
	return "invalid"
}

// Node is an immutable schema node: Leaf(kind), Map(ordered fields) or
// List(element).
type Node struct {
	shape  Shape
	kind   Kind
	keys   []string
	fields map[string]*Node
	elem   *Node
	// set by Map when the same key is declared twice; reported by New
	dupKey string
}

// Field is one key/node pair of a map node.
type Field struct {
	Name string
	Node *Node
}

// F pairs a key with its schema node.
func F(name string, n *Node) Field { return Field{Name: name, Node: n} }

// Leaf returns a node that matches values of kind k.
func Leaf(k Kind) *Node { return &Node{shape: ShapeLeaf, kind: k} }

// List returns a node whose runtime items must all match elem.
func List(elem *Node) *Node { return &Node{shape: ShapeList, kind: KindList, elem: elem} }

// Map returns a node with the given fields, keeping declaration order.
func Map(fields ...Field) *Node {
	n := &Node{shape: ShapeMap, kind: KindMap, keys: make([]string, 0, len(fields)), fields: make(map[string]*Node, len(fields))}
	for _, f := range fields {
		if _, dup := n.fields[f.Name]; dup {
			if n.dupKey == "" {
				n.dupKey = f.Name
			}
			continue
		}
		n.keys = append(n.keys, f.Name)
		n.fields[f.Name] = f.Node
	}
	return n
}

// Shape reports the node variant.
func (n *Node) Shape() Shape { return n.shape }

// Kind is the leaf kind; map and list nodes report KindMap and KindList.
func (n *Node) Kind() Kind { return n.kind }

// Keys returns the map keys in declaration order.
func (n *Node) Keys() []string { return append([]string(nil), n.keys...) }

// Field returns the child node declared under key.
func (n *Node) Field(key string) (*Node, bool) {
	c, ok := n.fields[key]
	return c, ok
}

// Elem returns the element node of a list node, nil otherwise.
func (n *Node) Elem() *Node { return n.elem }

// String renders the node as a compact declaration, e.g.
// {id: id, friends: [{nick: string}]}.
func (n *Node) String() string {
	b := &strings.Builder{}
	n.render(b)
	return b.String()
}

func (n *Node) render(b *strings.Builder) {
	if n == nil {
		b.WriteString("<nil>")
		return
	}
	switch n.shape {
	case ShapeMap:
		b.WriteByte('{')
		for i, k := range n.keys {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(k)
			b.WriteString(": ")
			n.fields[k].render(b)
		}
		b.WriteByte('}')
	case ShapeList:
		b.WriteByte('[')
		n.elem.render(b)
		b.WriteByte(']')
	default:
		b.WriteString(n.kind.String())
	}
}

// Schema is a checked, immutable schema tree. It is safe for concurrent use.
type Schema struct {
	root *Node
}

// New converts a declaration into a Schema and checks it once. decl may be a
// *Node, a Kind, a kind name, a reflect.Type, a string-keyed map of
// declarations or a single-element slice holding the element declaration.
func New(decl any) (*Schema, error) {
	root, err := fromDecl(decl, nil)
	if err != nil {
		return nil, err
	}
	if err := check(root, nil); err != nil {
		return nil, err
	}
	return &Schema{root: root}, nil
}

// MustNew is like New but panics on a malformed declaration. Intended for
// package-level schema variables.
func MustNew(decl any) *Schema {
	s, err := New(decl)
	if err != nil {
		panic(err)
	}
	return s
}

// Root returns the root node.
func (s *Schema) Root() *Node { return s.root }

func (s *Schema) String() string { return s.root.String() }

// Lookup resolves a schema path. Index segments descend into the element
// node of a list regardless of their value.
func (s *Schema) Lookup(path string) (*Node, error) {
	p, err := ParsePath(path)
	if err != nil {
		return nil, err
	}
	return lookupNode(s.root, p)
}

func lookupNode(n *Node, p Path) (*Node, error) {
	cur := n
	for i, seg := range p {
		switch {
		case seg.IsIndex && cur.shape == ShapeList:
			cur = cur.elem
		case !seg.IsIndex && cur.shape == ShapeMap:
			c, ok := cur.fields[seg.Key]
			if !ok {
				return nil, &PathError{Path: p.String(), Segment: seg.String(), Code: CodeMissingKey,
					Message: i18n.T(CodeMissingKey, map[string]string{"key": strconv.Quote(seg.Key)})}
			}
			cur = c
		default:
			return nil, &PathError{Path: p.String(), Segment: p[i].String(), Code: CodeKindMismatch,
				Message: i18n.T(CodeKindMismatch, map[string]string{"segment": seg.String(), "container": cur.shape.String()})}
		}
	}
	return cur, nil
}

// check is the one-time well-formedness pass.
func check(n *Node, p Path) error {
	if n == nil {
		return &SchemaError{Path: p.String(), Code: CodeNilNode, Message: i18n.T(CodeNilNode, nil)}
	}
	switch n.shape {
	case ShapeLeaf:
		if !n.kind.Valid() {
			return &SchemaError{Path: p.String(), Code: CodeInvalidLeaf, Value: n.kind,
				Message: i18n.T(CodeInvalidLeaf, map[string]string{"value": "kind(" + strconv.Itoa(int(n.kind)) + ")"})}
		}
	case ShapeList:
		return check(n.elem, p.Index(0))
	case ShapeMap:
		if n.dupKey != "" {
			return &SchemaError{Path: p.Key(n.dupKey).String(), Code: CodeDuplicateKey, Value: n.dupKey,
				Message: i18n.T(CodeDuplicateKey, map[string]string{"key": strconv.Quote(n.dupKey)})}
		}
		for _, k := range n.keys {
			if err := checkKey(k, p); err != nil {
				return err
			}
			if err := check(n.fields[k], p.Key(k)); err != nil {
				return err
			}
		}
	default:
		return &SchemaError{Path: p.String(), Code: CodeNilNode, Message: i18n.T(CodeNilNode, nil)}
	}
	return nil
}

// checkKey rejects keys that the dotted path syntax cannot address.
func checkKey(k string, p Path) error {
	if k == "" || strings.Contains(k, ".") || isIndexToken(k) {
		return &SchemaError{Path: p.String(), Code: CodeInvalidKey, Value: k,
			Message: i18n.T(CodeInvalidKey, nil) + ": " + strconv.Quote(k)}
	}
	return nil
}
