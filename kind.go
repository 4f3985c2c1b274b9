package dstruct

import (
	"reflect"
	"strings"
	"time"

	"github.com/reoring/dstruct/ident"
)

// Kind is the type tag of a schema leaf and the runtime classification of a
// document value.
type Kind uint8

const (
	KindInvalid  Kind = iota // zero value, never a valid leaf
	KindNull                 // nil
	KindBool                 // bool
	KindInt                  // int, int64, uint, uint32, uint64 (unbounded integer)
	KindInt32                // int8, int16, int32, uint8, uint16 (narrow integer)
	KindFloat                // float64
	KindFloat32              // float32
	KindString               // string
	KindBytes                // []byte
	KindList                 // any slice (other than []byte)
	KindMap                  // any map with string keys
	KindID                   // identifier recognised by an ident.Scheme
	KindDateTime             // time.Time
)

var kindNames = [...]string{
	KindInvalid:  "invalid",
	KindNull:     "null",
	KindBool:     "bool",
	KindInt:      "int",
	KindInt32:    "int32",
	KindFloat:    "float",
	KindFloat32:  "float32",
	KindString:   "string",
	KindBytes:    "bytes",
	KindList:     "list",
	KindMap:      "map",
	KindID:       "id",
	KindDateTime: "datetime",
}

var kindAliases = map[string]Kind{
	"none":     KindNull,
	"nil":      KindNull,
	"boolean":  KindBool,
	"integer":  KindInt,
	"int64":    KindInt,
	"long":     KindInt,
	"int8":     KindInt32,
	"int16":    KindInt32,
	"double":   KindFloat,
	"float64":  KindFloat,
	"str":      KindString,
	"text":     KindString,
	"unicode":  KindString,
	"binary":   KindBytes,
	"array":    KindList,
	"dict":     KindMap,
	"object":   KindMap,
	"objectid": KindID,
	"time":     KindDateTime,
	"date":     KindDateTime,
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "invalid"
}

// Valid reports whether k belongs to the allowed leaf set.
func (k Kind) Valid() bool { return k > KindInvalid && int(k) < len(kindNames) }

// ParseKind resolves a kind name (or one of its aliases), case-insensitively.
func ParseKind(name string) (Kind, bool) {
	n := strings.ToLower(strings.TrimSpace(name))
	for k := KindNull; int(k) < len(kindNames); k++ {
		if kindNames[k] == n {
			return k, true
		}
	}
	k, ok := kindAliases[n]
	return k, ok
}

// MarshalText renders the kind name so kinds read well in config and JSON.
func (k Kind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// UnmarshalText parses a kind name.
func (k *Kind) UnmarshalText(b []byte) error {
	v, ok := ParseKind(string(b))
	if !ok {
		return &SchemaError{Code: CodeInvalidLeaf, Value: string(b)}
	}
	*k = v
	return nil
}

var (
	timeType  = reflect.TypeOf(time.Time{})
	bytesType = reflect.TypeOf([]byte(nil))
)

// KindOf classifies a runtime value. Identifiers are recognised through
// scheme; a nil scheme disables identifier detection.
func KindOf(v any, scheme ident.Scheme) Kind {
	if v == nil {
		return KindNull
	}
	if scheme != nil && scheme.Is(v) {
		return KindID
	}
	switch v.(type) {
	case bool:
		return KindBool
	case int, int64, uint, uint32, uint64:
		return KindInt
	case int8, int16, int32, uint8, uint16:
		return KindInt32
	case float64:
		return KindFloat
	case float32:
		return KindFloat32
	case string:
		return KindString
	case []byte:
		return KindBytes
	case time.Time:
		return KindDateTime
	case []any:
		return KindList
	case map[string]any:
		return KindMap
	}
	return KindOfType(reflect.TypeOf(v))
}

// KindOfType classifies a Go type without looking at a value. Identifier
// types are not recognised here.
func KindOfType(t reflect.Type) Kind {
	if t == nil {
		return KindNull
	}
	if t == timeType {
		return KindDateTime
	}
	if t == bytesType {
		return KindBytes
	}
	switch t.Kind() {
	case reflect.Bool:
		return KindBool
	case reflect.Int, reflect.Int64, reflect.Uint, reflect.Uint32, reflect.Uint64:
		return KindInt
	case reflect.Int8, reflect.Int16, reflect.Int32, reflect.Uint8, reflect.Uint16:
		return KindInt32
	case reflect.Float64:
		return KindFloat
	case reflect.Float32:
		return KindFloat32
	case reflect.String:
		return KindString
	case reflect.Slice:
		if t.Elem().Kind() == reflect.Uint8 {
			return KindBytes
		}
		return KindList
	case reflect.Map:
		if t.Key().Kind() == reflect.String {
			return KindMap
		}
	}
	return KindInvalid
}
