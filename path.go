package dstruct

import (
	"strconv"
	"strings"

	"github.com/reoring/dstruct/i18n"
)

// Segment is one step of a Path: a map key or a list index.
type Segment struct {
	Key     string
	Index   int
	IsIndex bool
}

// KeySeg returns a map-key segment.
func KeySeg(k string) Segment { return Segment{Key: k} }

// IndexSeg returns a list-index segment.
func IndexSeg(i int) Segment { return Segment{Index: i, IsIndex: true} }

// String renders the segment as it appears in a dotted path.
func (s Segment) String() string {
	if s.IsIndex {
		return "[" + strconv.Itoa(s.Index) + "]"
	}
	return s.Key
}

// Path addresses a node inside a document or schema, for example
// "friends.[1].nick". The zero Path is the root.
type Path []Segment

// ParsePath parses the dotted path syntax. The empty string is the root.
func ParsePath(s string) (Path, error) {
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ".")
	p := make(Path, 0, len(parts))
	for _, part := range parts {
		if part == "" {
			return nil, &PathError{Path: s, Code: CodeSyntax, Message: i18n.T(CodeSyntax, nil) + ": empty segment"}
		}
		if isIndexToken(part) {
			n, err := strconv.Atoi(part[1 : len(part)-1])
			if err != nil || n < 0 {
				return nil, &PathError{Path: s, Segment: part, Code: CodeSyntax, Message: i18n.T(CodeSyntax, nil) + ": bad index"}
			}
			p = append(p, IndexSeg(n))
			continue
		}
		p = append(p, KeySeg(part))
	}
	return p, nil
}

// MustParsePath is like ParsePath but panics on malformed input.
func MustParsePath(s string) Path {
	p, err := ParsePath(s)
	if err != nil {
		panic(err)
	}
	return p
}

func isIndexToken(s string) bool {
	return len(s) >= 2 && s[0] == '[' && s[len(s)-1] == ']'
}

// String joins the segments with '.'; the root renders as "".
func (p Path) String() string {
	if len(p) == 0 {
		return ""
	}
	b := &strings.Builder{}
	for i, s := range p {
		if i > 0 {
			b.WriteByte('.')
		}
		b.WriteString(s.String())
	}
	return b.String()
}

// Key returns a new path extended by a map key.
func (p Path) Key(k string) Path { return append(append(Path{}, p...), KeySeg(k)) }

// Index returns a new path extended by a list index.
func (p Path) Index(i int) Path { return append(append(Path{}, p...), IndexSeg(i)) }

// Parent drops the last segment. The root is its own parent.
func (p Path) Parent() Path {
	if len(p) == 0 {
		return nil
	}
	return p[:len(p)-1:len(p)-1]
}

// Last returns the final segment.
func (p Path) Last() (Segment, bool) {
	if len(p) == 0 {
		return Segment{}, false
	}
	return p[len(p)-1], true
}

// Retrieve resolves path against doc. The empty path returns doc unchanged.
func Retrieve(doc any, path string) (any, error) {
	p, err := ParsePath(path)
	if err != nil {
		return nil, err
	}
	return RetrievePath(doc, p)
}

// RetrievePath is Retrieve for an already parsed path.
func RetrievePath(doc any, p Path) (any, error) {
	cur := doc
	for i, seg := range p {
		next, err := step(cur, seg, p, i)
		if err != nil {
			return nil, err
		}
		cur = next
	}
	return cur, nil
}

func step(cur any, seg Segment, p Path, i int) (any, error) {
	if seg.IsIndex {
		items, ok := asList(cur)
		if !ok {
			return nil, mismatch(p, i, cur)
		}
		if seg.Index >= len(items) {
			return nil, outOfRange(p, i, len(items))
		}
		return items[seg.Index], nil
	}
	m, ok := asMap(cur)
	if !ok {
		return nil, mismatch(p, i, cur)
	}
	v, ok := m[seg.Key]
	if !ok {
		return nil, &PathError{Path: p.String(), Segment: seg.String(), Code: CodeMissingKey,
			Message: i18n.T(CodeMissingKey, map[string]string{"key": strconv.Quote(seg.Key)})}
	}
	return v, nil
}

func mismatch(p Path, i int, cur any) *PathError {
	return &PathError{Path: p.String(), Segment: p[i].String(), Code: CodeKindMismatch,
		Message: i18n.T(CodeKindMismatch, map[string]string{"segment": p[i].String(), "container": KindOf(cur, nil).String()})}
}

func outOfRange(p Path, i, n int) *PathError {
	return &PathError{Path: p.String(), Segment: p[i].String(), Code: CodeIndexRange,
		Message: i18n.T(CodeIndexRange, map[string]string{"index": strconv.Itoa(p[i].Index), "len": strconv.Itoa(n)})}
}

// Set stores v at path and returns the (possibly replaced) root. Setting a
// map key creates or replaces it; list indexes must already exist. Only
// map[string]any and []any containers can be mutated. A nil map[string]any
// on the way is replaced by a new map.
func Set(doc any, path string, v any) (any, error) {
	p, err := ParsePath(path)
	if err != nil {
		return nil, err
	}
	return setAt(doc, p, 0, v)
}

func setAt(cur any, p Path, i int, v any) (any, error) {
	if i == len(p) {
		return v, nil
	}
	seg := p[i]
	if seg.IsIndex {
		items, ok := cur.([]any)
		if !ok {
			return nil, mismatch(p, i, cur)
		}
		if seg.Index >= len(items) {
			return nil, outOfRange(p, i, len(items))
		}
		nv, err := setAt(items[seg.Index], p, i+1, v)
		if err != nil {
			return nil, err
		}
		items[seg.Index] = nv
		return items, nil
	}
	m, ok := cur.(map[string]any)
	if !ok {
		return nil, mismatch(p, i, cur)
	}
	if m == nil {
		// a typed nil map reads as empty; the caller re-links the fresh one
		m = map[string]any{}
	}
	if i == len(p)-1 {
		m[seg.Key] = v
		return m, nil
	}
	child, ok := m[seg.Key]
	if !ok {
		return nil, &PathError{Path: p.String(), Segment: seg.String(), Code: CodeMissingKey,
			Message: i18n.T(CodeMissingKey, map[string]string{"key": strconv.Quote(seg.Key)})}
	}
	nv, err := setAt(child, p, i+1, v)
	if err != nil {
		return nil, err
	}
	m[seg.Key] = nv
	return m, nil
}

// Delete removes the node at path and returns the (possibly replaced) root.
// List items after a removed index shift down by one. The root cannot be
// deleted.
func Delete(doc any, path string) (any, error) {
	p, err := ParsePath(path)
	if err != nil {
		return nil, err
	}
	if len(p) == 0 {
		return nil, &PathError{Path: path, Code: CodeSyntax, Message: "cannot delete the root"}
	}
	return deleteAt(doc, p, 0)
}

func deleteAt(cur any, p Path, i int) (any, error) {
	seg := p[i]
	last := i == len(p)-1
	if seg.IsIndex {
		items, ok := cur.([]any)
		if !ok {
			return nil, mismatch(p, i, cur)
		}
		if seg.Index >= len(items) {
			return nil, outOfRange(p, i, len(items))
		}
		if last {
			return append(items[:seg.Index:seg.Index], items[seg.Index+1:]...), nil
		}
		nv, err := deleteAt(items[seg.Index], p, i+1)
		if err != nil {
			return nil, err
		}
		items[seg.Index] = nv
		return items, nil
	}
	m, ok := cur.(map[string]any)
	if !ok {
		return nil, mismatch(p, i, cur)
	}
	child, ok := m[seg.Key]
	if !ok {
		return nil, &PathError{Path: p.String(), Segment: seg.String(), Code: CodeMissingKey,
			Message: i18n.T(CodeMissingKey, map[string]string{"key": strconv.Quote(seg.Key)})}
	}
	if last {
		delete(m, seg.Key)
		return m, nil
	}
	nv, err := deleteAt(child, p, i+1)
	if err != nil {
		return nil, err
	}
	m[seg.Key] = nv
	return m, nil
}
