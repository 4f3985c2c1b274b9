package codec

import (
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/reoring/dstruct"
)

func TestBSON_RoundTripKeepsHash(t *testing.T) {
	doc := map[string]any{
		"id":      primitive.NewObjectID(),
		"ref":     uuid.New(),
		"at":      time.Date(2024, 6, 1, 8, 0, 0, 5_000_000, time.UTC),
		"count":   42,
		"small":   int16(3),
		"ratio":   0.25,
		"blob":    []byte{1, 2},
		"ok":      true,
		"friends": []any{map[string]any{"nick": "bo"}},
	}
	b, err := EncodeBSON(doc)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	got, err := DecodeBSON(b, nil)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if dstruct.Hash(got) != dstruct.Hash(doc) {
		t.Fatalf("round trip changed the document: %v", dstruct.Diff(doc, got))
	}
}

func TestBSON_SchemaRevivesFloat32(t *testing.T) {
	s := dstruct.MustNew(map[string]any{"f": "float32", "n": "int"})
	b, err := EncodeBSON(map[string]any{"f": float32(1.5), "n": 2})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	got, err := DecodeBSON(b, s)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if diff := cmp.Diff(map[string]any{"f": float32(1.5), "n": 2}, got); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
}

func TestBSON_RootMustBeMap(t *testing.T) {
	if _, err := EncodeBSON([]any{1}); !errors.Is(err, ErrNotDocument) {
		t.Fatalf("expected ErrNotDocument, got %v", err)
	}
}

func TestNormalize(t *testing.T) {
	at := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	in := primitive.M{
		"d": primitive.D{{Key: "x", Value: primitive.A{int32(1)}}},
		"t": primitive.NewDateTimeFromTime(at),
		"b": primitive.Binary{Data: []byte("z")},
	}
	want := map[string]any{
		"d": map[string]any{"x": []any{int32(1)}},
		"t": at,
		"b": []byte("z"),
	}
	if diff := cmp.Diff(want, Normalize(in)); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
}

func TestBSON_SubMillisecondTimes(t *testing.T) {
	at := time.Date(2024, 6, 1, 8, 0, 0, 123_456_789, time.FixedZone("x", 3600))
	doc := map[string]any{"at": at, "list": []any{at}}
	b, err := EncodeBSON(doc)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	got, err := DecodeBSON(b, nil)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if dstruct.Hash(got) == dstruct.Hash(doc) {
		t.Fatalf("sub-millisecond part should not survive BSON")
	}
	trunc := TruncateTimes(doc)
	if dstruct.Hash(got) != dstruct.Hash(trunc) {
		t.Fatalf("truncated form must match the round trip: %v", dstruct.Diff(trunc, got))
	}
	if doc["at"] != at {
		t.Fatalf("TruncateTimes must not modify its input")
	}
}

func TestRevive_PlainValues(t *testing.T) {
	s := dstruct.MustNew(map[string]any{
		"f":    "float32",
		"n":    "int",
		"id":   "id",
		"tags": []any{"int32"},
	})
	id := primitive.NewObjectID()
	in := map[string]any{"f": 0.10000000149011612, "n": int64(7), "id": id.Hex(), "tags": []any{int64(1)}, "extra": int64(2)}
	want := map[string]any{"f": float32(0.1), "n": 7, "id": id, "tags": []any{int32(1)}, "extra": int64(2)}
	if diff := cmp.Diff(want, Revive(in, s)); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
}
