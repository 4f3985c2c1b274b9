package codec

import (
	"bytes"
	"fmt"
	"time"

	json "github.com/goccy/go-json"

	"github.com/reoring/dstruct"
)

// EncodeJSON renders doc as JSON. Ids become their scheme string and
// datetimes canonical UTC RFC3339Nano strings; bytes are base64 encoded.
func EncodeJSON(doc any, opts ...Option) ([]byte, error) {
	o := newOptions(opts)
	wire := toJSONWire(Normalize(doc), o)
	var (
		b   []byte
		err error
	)
	if o.indent != "" || o.prefix != "" {
		b, err = json.MarshalIndent(wire, o.prefix, o.indent)
	} else {
		b, err = json.Marshal(wire)
	}
	if err != nil {
		return nil, fmt.Errorf("codec: encode json: %w", err)
	}
	return b, nil
}

// DecodeJSON parses data and, when s is non-nil, revives leaves to the kinds
// s declares. Values that cannot be revived are left as decoded so that a
// later validation reports them.
func DecodeJSON(data []byte, s *dstruct.Schema, opts ...Option) (any, error) {
	o := newOptions(opts)
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("codec: decode json: %w", err)
	}
	if dec.More() {
		return nil, fmt.Errorf("codec: decode json: trailing data after document")
	}
	if s == nil {
		return settle(v), nil
	}
	return revive(s.Root(), v, o.scheme), nil
}

func toJSONWire(v any, o options) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, c := range t {
			out[k] = toJSONWire(c, o)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, c := range t {
			out[i] = toJSONWire(c, o)
		}
		return out
	case time.Time:
		return FormatTime(t)
	}
	if s, ok := o.scheme.Format(v); ok {
		return s
	}
	return v
}
