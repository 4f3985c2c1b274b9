package patch

import (
	"strings"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/reoring/dstruct"
	"github.com/reoring/dstruct/codec"
	"github.com/reoring/dstruct/ident"
)

var userSchema = dstruct.MustNew(map[string]any{
	"id":      "id",
	"name":    "string",
	"age":     "int",
	"seen":    "datetime",
	"friends": []any{map[string]any{"nick": "string"}},
})

func user() map[string]any {
	return map[string]any{
		"id":      primitive.NewObjectID(),
		"name":    "ann",
		"age":     30,
		"seen":    time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		"friends": []any{map[string]any{"nick": "bo"}},
	}
}

func TestMerge_ApplyYieldsTarget(t *testing.T) {
	a := user()
	b := dstruct.Copy(a).(map[string]any)
	b["age"] = 31
	b["seen"] = time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	b["friends"] = []any{map[string]any{"nick": "bo"}, map[string]any{"nick": "cy"}}

	p, err := Merge(a, b)
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	if strings.Contains(string(p), `"name"`) {
		t.Fatalf("unchanged keys must not appear in the patch: %s", p)
	}
	got, err := Apply(a, p, userSchema)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if dstruct.Hash(got) != dstruct.Hash(b) {
		t.Fatalf("apply(a, merge(a, b)) != b: %v", dstruct.Diff(b, got))
	}
	if err := userSchema.Validate(got); err != nil {
		t.Fatalf("patched document must validate: %v", err)
	}
}

func TestApply_RemovesKeys(t *testing.T) {
	got, err := Apply(user(), []byte(`{"name": null}`), userSchema)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if _, err := dstruct.Retrieve(got, "name"); err == nil {
		t.Fatalf("null in a merge patch deletes the key")
	}
}

func TestApplyOps(t *testing.T) {
	ops := []byte(`[{"op": "replace", "path": "/friends/0/nick", "value": "zorro"}, {"op": "add", "path": "/email", "value": "a@x"}]`)
	got, err := ApplyOps(user(), ops, userSchema)
	if err != nil {
		t.Fatalf("apply ops: %v", err)
	}
	if v, _ := dstruct.Retrieve(got, "friends.[0].nick"); v != "zorro" {
		t.Fatalf("expected zorro, got %v", v)
	}
	if v, _ := dstruct.Retrieve(got, "email"); v != "a@x" {
		t.Fatalf("expected added email, got %v", v)
	}
	if _, err := ApplyOps(user(), []byte(`[{"op": "remove", "path": "/missing"}]`), nil); err == nil {
		t.Fatalf("removing a missing path must fail")
	}
	if _, err := ApplyOps(user(), []byte(`{}`), nil); err == nil {
		t.Fatalf("operations must be a list")
	}
}

func TestText(t *testing.T) {
	a := map[string]any{"name": "ann", "age": 30}
	b := map[string]any{"name": "ann", "age": 31}
	out, err := Text(a, b)
	if err != nil {
		t.Fatalf("text: %v", err)
	}
	want := "  {\n-   \"age\": 30,\n+   \"age\": 31,\n    \"name\": \"ann\"\n  }\n"
	if out != want {
		t.Fatalf("unexpected diff:\n%s", out)
	}
	same, _ := Text(a, a)
	if strings.Contains(same, "+ ") || strings.Contains(same, "- ") {
		t.Fatalf("equal documents must not differ:\n%s", same)
	}
}

func TestText_KeepsCallerOptions(t *testing.T) {
	opts := make([]codec.Option, 1, 4)
	opts[0] = codec.WithScheme(ident.ObjectIDs)
	if _, err := Text(map[string]any{"a": 1}, map[string]any{"a": 2}, opts...); err != nil {
		t.Fatalf("text: %v", err)
	}
	if spare := opts[:2][1]; spare != nil {
		t.Fatalf("Text wrote into the caller's option slice")
	}
}
