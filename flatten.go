package dstruct

import (
	"bytes"
	"sort"
	"strconv"

	"github.com/reoring/dstruct/i18n"
)

// Flatten walks doc and maps every leaf path to its value. Maps extend the
// path with their keys, lists with bracket indexes. Empty maps and lists
// have no leaves and therefore produce no entries; a non-container root
// produces the single entry "". The result is unordered, see SortedPaths.
//
// Keys are not escaped. A document key holding "." or "[n]", which a schema
// rejects but a document may still carry as an extra key, renders like a
// nested path: {"a.b": 1} and {"a": {"b": 1}} flatten alike.
func Flatten(doc any) map[string]any {
	out := make(map[string]any)
	_ = flattenRecurse(doc, nil, out, -1)
	return out
}

// FlattenDepth is Flatten for untrusted input: it fails with CodeTooDeep
// once nesting exceeds maxDepth containers.
func FlattenDepth(doc any, maxDepth int) (map[string]any, error) {
	out := make(map[string]any)
	if err := flattenRecurse(doc, nil, out, maxDepth); err != nil {
		return nil, err
	}
	return out, nil
}

func flattenRecurse(v any, cur Path, out map[string]any, budget int) error {
	m, isMap := asMap(v)
	l, isList := asList(v)
	if !isMap && !isList {
		out[cur.String()] = v
		return nil
	}
	if budget == 0 {
		return &PathError{Path: cur.String(), Code: CodeTooDeep,
			Message: i18n.T(CodeTooDeep, map[string]string{"max": strconv.Itoa(len(cur))})}
	}
	if isMap {
		for k, val := range m {
			if err := flattenRecurse(val, cur.Key(k), out, budget-1); err != nil {
				return err
			}
		}
		return nil
	}
	for i, val := range l {
		if err := flattenRecurse(val, cur.Index(i), out, budget-1); err != nil {
			return err
		}
	}
	return nil
}

// SortedPaths returns the keys of a flattened document in lexicographic
// order.
func SortedPaths(flat map[string]any) []string {
	paths := make([]string, 0, len(flat))
	for p := range flat {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// Copy deep-copies the map and list structure of doc. Leaves are shared,
// except []byte which is cloned.
func Copy(doc any) any {
	switch t := doc.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, v := range t {
			out[k] = Copy(v)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, v := range t {
			out[i] = Copy(v)
		}
		return out
	case []byte:
		return bytes.Clone(t)
	}
	if m, ok := asMap(doc); ok {
		return Copy(m)
	}
	if l, ok := asList(doc); ok {
		return Copy(l)
	}
	return doc
}
