package dstruct_test

import (
	"errors"
	"testing"

	"github.com/reoring/dstruct"
)

func TestDocument_Lifecycle(t *testing.T) {
	s := userSchema(t)
	d, err := dstruct.NewDocument(s, map[string]any{"name": "ann"})
	if err != nil {
		t.Fatalf("new document: %v", err)
	}
	if v, _ := d.Get("name"); v != "ann" {
		t.Fatalf("expected ann, got %v", v)
	}
	before := d.Hash()
	cp := d.Copy()
	if err := d.Set("age", 40); err != nil {
		t.Fatalf("set: %v", err)
	}
	if d.Hash() == before || cp.Hash() != before {
		t.Fatalf("copy must be independent of later writes")
	}
	changes := cp.Diff(d)
	if len(changes) != 1 || changes[0].Path != "age" || changes[0].Op != dstruct.Modified {
		t.Fatalf("unexpected diff: %v", changes)
	}
	if err := d.Delete("name"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := d.Validate(); !errors.Is(err, dstruct.ErrValidation) {
		t.Fatalf("document without name must fail validation, got %v", err)
	}
	if d.Schema() != s {
		t.Fatalf("schema not retained")
	}
}

func TestDocument_OptionsKept(t *testing.T) {
	s := dstruct.MustNew(map[string]any{"name": "string"})
	d := dstruct.Wrap(s, map[string]any{"name": nil}, dstruct.AllowNull(dstruct.KindString))
	if err := d.Validate(); err != nil {
		t.Fatalf("construction options must apply: %v", err)
	}
	if _, err := dstruct.NewDocument(s, map[string]any{"name": 5}); err == nil {
		t.Fatalf("an override that breaks the schema must fail construction")
	}
}

func TestDocument_RootSet(t *testing.T) {
	d := dstruct.Wrap(dstruct.MustNew("int"), 1)
	if err := d.Set("", 2); err != nil || d.Data() != 2 {
		t.Fatalf("root set: %v %v", d.Data(), err)
	}
}
