package dstruct

import (
	"fmt"
	"reflect"
	"sort"
	"strconv"

	"github.com/reoring/dstruct/i18n"
)

// fromDecl turns a schema declaration literal into nodes. Go maps carry no
// order, so map declarations get their keys sorted; declare with Map/F to
// keep an explicit order.
func fromDecl(decl any, p Path) (*Node, error) {
	switch d := decl.(type) {
	case *Node:
		if d == nil {
			return nil, &SchemaError{Path: p.String(), Code: CodeNilNode, Message: i18n.T(CodeNilNode, nil)}
		}
		return d, nil
	case Kind:
		return Leaf(d), nil
	case string:
		k, ok := ParseKind(d)
		if !ok {
			return nil, invalidLeaf(p, d)
		}
		return Leaf(k), nil
	case reflect.Type:
		k := KindOfType(d)
		if k == KindInvalid {
			return nil, invalidLeaf(p, d)
		}
		return Leaf(k), nil
	case map[string]any:
		keys := sortedKeys(d)
		fields := make([]Field, 0, len(keys))
		for _, k := range keys {
			if err := checkKey(k, p); err != nil {
				return nil, err
			}
			child, err := fromDecl(d[k], p.Key(k))
			if err != nil {
				return nil, err
			}
			fields = append(fields, F(k, child))
		}
		return Map(fields...), nil
	case []any:
		if len(d) != 1 {
			return nil, notHomomorphic(p, d, len(d))
		}
		elem, err := fromDecl(d[0], p.Index(0))
		if err != nil {
			return nil, err
		}
		return List(elem), nil
	case nil:
		return nil, invalidLeaf(p, nil)
	}
	return fromReflectDecl(reflect.ValueOf(decl), p)
}

// fromReflectDecl handles declarations held in other map and slice types,
// such as map[any]any from YAML decoders or []map[string]any.
func fromReflectDecl(rv reflect.Value, p Path) (*Node, error) {
	switch rv.Kind() {
	case reflect.Map:
		type entry struct {
			key string
			val any
		}
		entries := make([]entry, 0, rv.Len())
		it := rv.MapRange()
		for it.Next() {
			kv := it.Key()
			if kv.Kind() == reflect.Interface {
				kv = kv.Elem()
			}
			if kv.Kind() != reflect.String {
				return nil, &SchemaError{Path: p.String(), Code: CodeInvalidKey, Value: it.Key().Interface(),
					Message: i18n.T(CodeInvalidKey, nil) + ": " + fmt.Sprintf("%#v", it.Key().Interface())}
			}
			entries = append(entries, entry{key: kv.String(), val: it.Value().Interface()})
		}
		sort.Slice(entries, func(i, j int) bool { return entries[i].key < entries[j].key })
		fields := make([]Field, 0, len(entries))
		for _, e := range entries {
			if err := checkKey(e.key, p); err != nil {
				return nil, err
			}
			child, err := fromDecl(e.val, p.Key(e.key))
			if err != nil {
				return nil, err
			}
			fields = append(fields, F(e.key, child))
		}
		return Map(fields...), nil
	case reflect.Slice, reflect.Array:
		if rv.Len() != 1 {
			return nil, notHomomorphic(p, rv.Interface(), rv.Len())
		}
		elem, err := fromDecl(rv.Index(0).Interface(), p.Index(0))
		if err != nil {
			return nil, err
		}
		return List(elem), nil
	}
	return nil, invalidLeaf(p, rv.Interface())
}

func invalidLeaf(p Path, v any) *SchemaError {
	return &SchemaError{Path: p.String(), Code: CodeInvalidLeaf, Value: v,
		Message: i18n.T(CodeInvalidLeaf, map[string]string{"value": fmt.Sprintf("%#v", v)})}
}

func notHomomorphic(p Path, v any, n int) *SchemaError {
	return &SchemaError{Path: p.String(), Code: CodeNotHomomorphic, Value: v,
		Message: i18n.T(CodeNotHomomorphic, map[string]string{"count": strconv.Itoa(n)})}
}
