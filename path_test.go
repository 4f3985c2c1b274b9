package dstruct_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/reoring/dstruct"
)

func sampleDoc() map[string]any {
	return map[string]any{
		"name": "ann",
		"friends": []any{
			map[string]any{"nick": "bo"},
			map[string]any{"nick": "cy"},
		},
		"meta": map[string]any{"tags": []any{}},
	}
}

func TestParsePath_RoundTrip(t *testing.T) {
	p, err := dstruct.ParsePath("friends.[1].nick")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	want := dstruct.Path{dstruct.KeySeg("friends"), dstruct.IndexSeg(1), dstruct.KeySeg("nick")}
	if diff := cmp.Diff(want, p); diff != "" {
		t.Fatalf("segments mismatch (-want +got):\n%s", diff)
	}
	if p.String() != "friends.[1].nick" {
		t.Fatalf("render mismatch: %q", p.String())
	}
	if p.Parent().String() != "friends.[1]" {
		t.Fatalf("parent mismatch: %q", p.Parent().String())
	}
	root, err := dstruct.ParsePath("")
	if err != nil || len(root) != 0 || root.String() != "" {
		t.Fatalf("empty path should be the root, got %v %v", root, err)
	}
}

func TestParsePath_Syntax(t *testing.T) {
	for _, in := range []string{"a..b", ".a", "a.", "a.[x]", "a.[-1]"} {
		_, err := dstruct.ParsePath(in)
		var pe *dstruct.PathError
		if !errors.As(err, &pe) || pe.Code != dstruct.CodeSyntax {
			t.Fatalf("%q: expected syntax error, got %v", in, err)
		}
	}
}

func TestRetrieve(t *testing.T) {
	doc := sampleDoc()
	v, err := dstruct.Retrieve(doc, "friends.[1].nick")
	if err != nil || v != "cy" {
		t.Fatalf("expected cy, got %v err=%v", v, err)
	}
	whole, err := dstruct.Retrieve(doc, "")
	if err != nil {
		t.Fatalf("root: %v", err)
	}
	if diff := cmp.Diff(doc, whole); diff != "" {
		t.Fatalf("empty path must return doc unchanged:\n%s", diff)
	}
}

func TestRetrieve_Errors(t *testing.T) {
	doc := sampleDoc()
	cases := map[string]string{
		"email":              dstruct.CodeMissingKey,
		"friends.[2]":        dstruct.CodeIndexRange,
		"friends.nick":       dstruct.CodeKindMismatch,
		"name.[0]":           dstruct.CodeKindMismatch,
		"friends.[0].[0]":    dstruct.CodeKindMismatch,
		"meta.tags.[0]":      dstruct.CodeIndexRange,
		"friends.[0].nick.x": dstruct.CodeKindMismatch,
	}
	for path, code := range cases {
		_, err := dstruct.Retrieve(doc, path)
		if !errors.Is(err, dstruct.ErrPath) {
			t.Fatalf("%s: expected ErrPath, got %v", path, err)
		}
		var pe *dstruct.PathError
		errors.As(err, &pe)
		if pe.Code != code {
			t.Fatalf("%s: expected %s, got %s", path, code, pe.Code)
		}
	}
}

func TestRetrieve_TypedContainers(t *testing.T) {
	doc := map[string]any{"tags": []string{"a", "b"}, "attrs": map[string]int{"n": 3}}
	if v, err := dstruct.Retrieve(doc, "tags.[1]"); err != nil || v != "b" {
		t.Fatalf("typed slice: %v %v", v, err)
	}
	if v, err := dstruct.Retrieve(doc, "attrs.n"); err != nil || v != 3 {
		t.Fatalf("typed map: %v %v", v, err)
	}
}

func TestSet(t *testing.T) {
	doc := sampleDoc()
	root, err := dstruct.Set(doc, "friends.[0].nick", "bob")
	if err != nil {
		t.Fatalf("set: %v", err)
	}
	if v, _ := dstruct.Retrieve(root, "friends.[0].nick"); v != "bob" {
		t.Fatalf("expected bob, got %v", v)
	}
	if _, err := dstruct.Set(doc, "meta.owner", "ann"); err != nil {
		t.Fatalf("creating a key should work: %v", err)
	}
	if _, err := dstruct.Set(doc, "friends.[5].nick", "x"); !errors.Is(err, dstruct.ErrPath) {
		t.Fatalf("expected index error, got %v", err)
	}
	if _, err := dstruct.Set(doc, "missing.key", "x"); !errors.Is(err, dstruct.ErrPath) {
		t.Fatalf("expected missing parent error, got %v", err)
	}
	replaced, err := dstruct.Set(doc, "", 7)
	if err != nil || replaced != 7 {
		t.Fatalf("root set should replace the document, got %v %v", replaced, err)
	}
}

func TestSet_NilMap(t *testing.T) {
	doc := map[string]any{"meta": map[string]any(nil)}
	root, err := dstruct.Set(doc, "meta.a", 1)
	if err != nil {
		t.Fatalf("set into nil map: %v", err)
	}
	if v, err := dstruct.Retrieve(root, "meta.a"); err != nil || v != 1 {
		t.Fatalf("expected 1 at meta.a, got %v %v", v, err)
	}
	fresh, err := dstruct.Set(map[string]any(nil), "name", "ann")
	if err != nil {
		t.Fatalf("set on nil root: %v", err)
	}
	if diff := cmp.Diff(map[string]any{"name": "ann"}, fresh); diff != "" {
		t.Fatalf("nil root should become a new map:\n%s", diff)
	}
	if _, err := dstruct.Set(doc, "meta.b.c", 1); !errors.Is(err, dstruct.ErrPath) {
		t.Fatalf("missing parent under a nil map must fail, got %v", err)
	}
}

func TestDelete(t *testing.T) {
	doc := sampleDoc()
	root, err := dstruct.Delete(doc, "friends.[0]")
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if v, _ := dstruct.Retrieve(root, "friends.[0].nick"); v != "cy" {
		t.Fatalf("items should shift after delete, got %v", v)
	}
	root, err = dstruct.Delete(root, "name")
	if err != nil {
		t.Fatalf("delete key: %v", err)
	}
	if _, err := dstruct.Retrieve(root, "name"); !errors.Is(err, dstruct.ErrPath) {
		t.Fatalf("name should be gone")
	}
	if _, err := dstruct.Delete(root, ""); !errors.Is(err, dstruct.ErrPath) {
		t.Fatalf("deleting the root must fail")
	}
	if _, err := dstruct.Delete(root, "nope"); !errors.Is(err, dstruct.ErrPath) {
		t.Fatalf("deleting a missing key must fail")
	}
}

func TestFlatten(t *testing.T) {
	flat := dstruct.Flatten(sampleDoc())
	want := map[string]any{
		"name":             "ann",
		"friends.[0].nick": "bo",
		"friends.[1].nick": "cy",
	}
	if diff := cmp.Diff(want, flat); diff != "" {
		t.Fatalf("flatten mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"friends.[0].nick", "friends.[1].nick", "name"}, dstruct.SortedPaths(flat)); diff != "" {
		t.Fatalf("sorted paths mismatch:\n%s", diff)
	}
	if got := dstruct.Flatten(5); len(got) != 1 || got[""] != 5 {
		t.Fatalf("scalar root should flatten to the empty path, got %v", got)
	}
	if got := dstruct.Flatten(map[string]any{}); len(got) != 0 {
		t.Fatalf("empty map has no leaves, got %v", got)
	}
}

func TestFlattenDepth(t *testing.T) {
	deep := map[string]any{"a": map[string]any{"b": map[string]any{"c": 1}}}
	if _, err := dstruct.FlattenDepth(deep, 3); err != nil {
		t.Fatalf("depth 3 should suffice: %v", err)
	}
	if _, err := dstruct.FlattenDepth(deep, 2); !errors.Is(err, dstruct.ErrPath) {
		t.Fatalf("expected too_deep, got %v", err)
	}
}

func TestCopy_Independent(t *testing.T) {
	doc := sampleDoc()
	cp := dstruct.Copy(doc).(map[string]any)
	if _, err := dstruct.Set(cp, "friends.[0].nick", "changed"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if v, _ := dstruct.Retrieve(doc, "friends.[0].nick"); v != "bo" {
		t.Fatalf("original mutated through copy: %v", v)
	}
}
