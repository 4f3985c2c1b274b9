package codec

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/reoring/dstruct"
)

// EncodeBSON renders a map-rooted document as BSON. Integers are widened to
// int64 (int8/int16/int32/uint8/uint16 stay int32) so that decoding returns
// the same kinds; UUIDs are written as binary subtype 4.
func EncodeBSON(doc any) ([]byte, error) {
	m, ok := Normalize(doc).(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: got %T", ErrNotDocument, doc)
	}
	wire, err := toBSONWire(m)
	if err != nil {
		return nil, err
	}
	b, err := bson.Marshal(wire)
	if err != nil {
		return nil, fmt.Errorf("codec: encode bson: %w", err)
	}
	return b, nil
}

// DecodeBSON parses a BSON document into plain maps and lists. With a
// non-nil s leaves are additionally revived to the declared kinds, which
// matters for float32 (stored as double).
func DecodeBSON(data []byte, s *dstruct.Schema, opts ...Option) (any, error) {
	o := newOptions(opts)
	var raw bson.M
	if err := bson.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("codec: decode bson: %w", err)
	}
	v := Normalize(raw)
	if s == nil {
		return v, nil
	}
	return revive(s.Root(), v, o.scheme), nil
}

// Normalize converts BSON driver types (primitive.M, D, A, DateTime,
// Binary) to plain documents, recursively. Other values are returned as is.
func Normalize(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, c := range t {
			out[k] = Normalize(c)
		}
		return out
	case primitive.M:
		return Normalize(map[string]any(t))
	case primitive.D:
		out := make(map[string]any, len(t))
		for _, e := range t {
			out[e.Key] = Normalize(e.Value)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, c := range t {
			out[i] = Normalize(c)
		}
		return out
	case primitive.A:
		return Normalize([]any(t))
	case primitive.DateTime:
		return t.Time().UTC()
	case primitive.Binary:
		if t.Subtype == bson.TypeBinaryUUID && len(t.Data) == 16 {
			u, err := uuid.FromBytes(t.Data)
			if err == nil {
				return u
			}
		}
		return t.Data
	}
	return v
}

// BSONPrecision is the resolution of BSON datetimes.
const BSONPrecision = time.Millisecond

// TruncateTimes returns a copy of doc with every datetime in UTC truncated
// to BSONPrecision, the form a BSON round trip produces.
func TruncateTimes(doc any) any {
	switch t := doc.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, c := range t {
			out[k] = TruncateTimes(c)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, c := range t {
			out[i] = TruncateTimes(c)
		}
		return out
	case time.Time:
		return t.UTC().Truncate(BSONPrecision)
	}
	return doc
}

func toBSONWire(v any) (any, error) {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, c := range t {
			w, err := toBSONWire(c)
			if err != nil {
				return nil, err
			}
			out[k] = w
		}
		return out, nil
	case []any:
		out := make([]any, len(t))
		for i, c := range t {
			w, err := toBSONWire(c)
			if err != nil {
				return nil, err
			}
			out[i] = w
		}
		return out, nil
	case int:
		return int64(t), nil
	case uint:
		return uintToInt64(uint64(t))
	case uint32:
		return int64(t), nil
	case uint64:
		return uintToInt64(t)
	case int8:
		return int32(t), nil
	case int16:
		return int32(t), nil
	case uint8:
		return int32(t), nil
	case uint16:
		return int32(t), nil
	case uuid.UUID:
		return primitive.Binary{Subtype: bson.TypeBinaryUUID, Data: t[:]}, nil
	case time.Time:
		return primitive.NewDateTimeFromTime(t), nil
	}
	return v, nil
}

func uintToInt64(u uint64) (any, error) {
	if u > math.MaxInt64 {
		return nil, fmt.Errorf("codec: encode bson: %d overflows int64", u)
	}
	return int64(u), nil
}
