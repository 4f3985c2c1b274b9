package codec

import (
	"encoding/base64"
	"math"

	json "github.com/goccy/go-json"

	"github.com/reoring/dstruct"
	"github.com/reoring/dstruct/ident"
)

// Revive converts an already decoded tree toward the kinds s declares, as
// DecodeJSON and DecodeBSON do. Backends that hand back plain values (double
// for float32, int64 for int) go through it. A nil s only settles numbers.
func Revive(v any, s *dstruct.Schema, opts ...Option) any {
	if s == nil {
		return settle(v)
	}
	o := newOptions(opts)
	return revive(s.Root(), v, o.scheme)
}

// revive converts decoded wire values toward the kinds n declares.
func revive(n *dstruct.Node, v any, scheme ident.Scheme) any {
	if v == nil {
		return nil
	}
	switch n.Shape() {
	case dstruct.ShapeMap:
		m, ok := v.(map[string]any)
		if !ok {
			return settle(v)
		}
		out := make(map[string]any, len(m))
		for k, c := range m {
			if child, ok := n.Field(k); ok {
				out[k] = revive(child, c, scheme)
			} else {
				out[k] = settle(c)
			}
		}
		return out
	case dstruct.ShapeList:
		l, ok := v.([]any)
		if !ok {
			return settle(v)
		}
		out := make([]any, len(l))
		for i, c := range l {
			out[i] = revive(n.Elem(), c, scheme)
		}
		return out
	}
	if r, ok := leaf(n.Kind(), v, scheme); ok {
		return r
	}
	return settle(v)
}

func leaf(k dstruct.Kind, v any, scheme ident.Scheme) (any, bool) {
	switch k {
	case dstruct.KindInt:
		if i, ok := asInt64(v); ok {
			return int(i), true
		}
	case dstruct.KindInt32:
		if i, ok := asInt64(v); ok && i >= math.MinInt32 && i <= math.MaxInt32 {
			return int32(i), true
		}
	case dstruct.KindFloat:
		if f, ok := asFloat64(v); ok {
			return f, true
		}
	case dstruct.KindFloat32:
		if f, ok := asFloat64(v); ok {
			return float32(f), true
		}
	case dstruct.KindID:
		if s, ok := v.(string); ok {
			if id, err := scheme.Parse(s); err == nil {
				return id, true
			}
		}
	case dstruct.KindDateTime:
		if s, ok := v.(string); ok {
			if t, err := ParseTime(s); err == nil {
				return t, true
			}
		}
	case dstruct.KindBytes:
		if s, ok := v.(string); ok {
			if b, err := base64.StdEncoding.DecodeString(s); err == nil {
				return b, true
			}
		}
	}
	return nil, false
}

// settle resolves json.Number values outside the schema: integral numbers
// become int, the rest float64.
func settle(v any) any {
	switch t := v.(type) {
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return int(i)
		}
		if f, err := t.Float64(); err == nil {
			return f
		}
		return t.String()
	case map[string]any:
		for k, c := range t {
			t[k] = settle(c)
		}
		return t
	case []any:
		for i, c := range t {
			t[i] = settle(c)
		}
		return t
	}
	return v
}

func asInt64(v any) (int64, bool) {
	switch t := v.(type) {
	case json.Number:
		i, err := t.Int64()
		return i, err == nil
	case int:
		return int64(t), true
	case int32:
		return int64(t), true
	case int64:
		return t, true
	}
	return 0, false
}

func asFloat64(v any) (float64, bool) {
	switch t := v.(type) {
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int32:
		return float64(t), true
	case int64:
		return float64(t), true
	}
	return 0, false
}
