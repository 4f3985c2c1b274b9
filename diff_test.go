package dstruct_test

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/reoring/dstruct"
)

func TestDiff(t *testing.T) {
	a := map[string]any{"name": "ann", "age": 3, "friends": []any{map[string]any{"nick": "bo"}}}
	b := map[string]any{"name": "ann", "age": 4, "email": "a@x", "friends": []any{}}
	want := []dstruct.Change{
		{Path: "age", Op: dstruct.Modified, Old: 3, New: 4},
		{Path: "email", Op: dstruct.Added, New: "a@x"},
		{Path: "friends.[0].nick", Op: dstruct.Removed, Old: "bo"},
	}
	if diff := cmp.Diff(want, dstruct.Diff(a, b)); diff != "" {
		t.Fatalf("changes mismatch (-want +got):\n%s", diff)
	}
	if got := dstruct.Diff(a, dstruct.Copy(a)); len(got) != 0 {
		t.Fatalf("a copy has no changes, got %v", got)
	}
}

func TestDiff_Leaves(t *testing.T) {
	at := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	a := map[string]any{"t": at, "b": []byte("xy")}
	b := map[string]any{"t": at.In(time.FixedZone("x", 7200)), "b": []byte("xy")}
	if got := dstruct.Diff(a, b); len(got) != 0 {
		t.Fatalf("equal instants and bytes are unchanged, got %v", got)
	}
	if dstruct.Modified.String() != "modified" || dstruct.ChangeOp(0).String() != "unknown" {
		t.Fatalf("op names broken")
	}
}
