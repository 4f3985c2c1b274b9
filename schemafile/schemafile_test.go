package schemafile

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/reoring/dstruct"
)

const usersJSONC = `{
  // user records
  "age": "int",
  "friends": [{"nick": "string"}],
  "id": "id",
  "name": "string", // trailing comma allowed
}`

const usersYAML = `
age: int
friends:
  - nick: string
id: id
name: string
`

func literalUsers() *dstruct.Schema {
	return dstruct.MustNew(map[string]any{
		"id":      dstruct.KindID,
		"name":    dstruct.KindString,
		"age":     dstruct.KindInt,
		"friends": []any{map[string]any{"nick": dstruct.KindString}},
	})
}

func TestParse_MatchesLiteral(t *testing.T) {
	want := literalUsers().String()
	for name, f := range map[string]func([]byte) (*dstruct.Schema, error){
		"json": ParseJSON,
		"yaml": ParseYAML,
	} {
		src := usersJSONC
		if name == "yaml" {
			src = usersYAML
		}
		s, err := f([]byte(src))
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if s.String() != want {
			t.Fatalf("%s: got %s, want %s", name, s, want)
		}
	}
}

func TestParse_KeepsOrder(t *testing.T) {
	want := []string{"zeta", "alpha", "mid"}
	js, err := ParseJSON([]byte(`{"zeta": "int", "alpha": "int", "mid": "int"}`))
	if err != nil {
		t.Fatalf("json: %v", err)
	}
	if diff := cmp.Diff(want, js.Root().Keys()); diff != "" {
		t.Fatalf("json order (-want +got):\n%s", diff)
	}
	ys, err := ParseYAML([]byte("zeta: int\nalpha: int\nmid: int\n"))
	if err != nil {
		t.Fatalf("yaml: %v", err)
	}
	if diff := cmp.Diff(want, ys.Root().Keys()); diff != "" {
		t.Fatalf("yaml order (-want +got):\n%s", diff)
	}
}

func TestParse_DefinitionErrors(t *testing.T) {
	cases := []struct {
		name string
		f    Format
		src  string
		code string
		path string
	}{
		{"json duplicate", FormatJSON, `{"a": "int", "a": "string"}`, dstruct.CodeDuplicateKey, "a"},
		{"yaml duplicate", FormatYAML, "a: int\na: string\n", dstruct.CodeDuplicateKey, "a"},
		{"json unknown kind", FormatJSON, `{"a": {"b": "decimal"}}`, dstruct.CodeInvalidLeaf, "a.b"},
		{"json number leaf", FormatJSON, `{"a": 5}`, dstruct.CodeInvalidLeaf, "a"},
		{"json empty list", FormatJSON, `{"a": []}`, dstruct.CodeNotHomomorphic, "a"},
		{"yaml two items", FormatYAML, "a:\n  - int\n  - string\n", dstruct.CodeNotHomomorphic, "a"},
		{"yaml int key", FormatYAML, "1: int\n", dstruct.CodeInvalidKey, ""},
		{"json dotted key", FormatJSON, `{"a.b": "int"}`, dstruct.CodeInvalidKey, ""},
		{"list item error", FormatJSON, `{"a": [{"b": "nope"}]}`, dstruct.CodeInvalidLeaf, "a.[0].b"},
	}
	for _, c := range cases {
		_, err := Parse([]byte(c.src), c.f)
		var se *dstruct.SchemaError
		if !errors.As(err, &se) {
			t.Fatalf("%s: expected *SchemaError, got %v", c.name, err)
		}
		if se.Code != c.code || se.Path != c.path {
			t.Fatalf("%s: got code=%s path=%q", c.name, se.Code, se.Path)
		}
		if !errors.Is(err, dstruct.ErrSchemaDefinition) {
			t.Fatalf("%s: expected ErrSchemaDefinition", c.name)
		}
	}
}

func TestParse_SyntaxErrors(t *testing.T) {
	if _, err := ParseJSON([]byte(`{"a": `)); err == nil {
		t.Fatalf("truncated JSON must fail")
	}
	if _, err := ParseJSON([]byte(`{} []`)); err == nil {
		t.Fatalf("trailing JSON must fail")
	}
	if _, err := ParseYAML([]byte("a: [int\n")); err == nil {
		t.Fatalf("broken YAML must fail")
	}
	if _, err := ParseYAML(nil); err == nil {
		t.Fatalf("empty YAML must fail")
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	for name, src := range map[string]string{"users.jsonc": usersJSONC, "users.yml": usersYAML} {
		p := filepath.Join(dir, name)
		if err := os.WriteFile(p, []byte(src), 0o600); err != nil {
			t.Fatal(err)
		}
		s, err := Load(p)
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if s.String() != literalUsers().String() {
			t.Fatalf("%s: unexpected schema %s", name, s)
		}
	}
	if _, err := Load(filepath.Join(dir, "users.toml")); !errors.Is(err, ErrUnknownFormat) {
		t.Fatalf("expected ErrUnknownFormat, got %v", err)
	}
	if _, err := Load(filepath.Join(dir, "missing.json")); err == nil {
		t.Fatalf("missing file must fail")
	}
}

func TestEncodeYAML_RoundTrip(t *testing.T) {
	s, err := ParseJSON([]byte(`{"zeta": "int", "friends": [{"nick": "str"}]}`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	b, err := EncodeYAML(s)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	want := "zeta: int\nfriends:\n  - nick: string\n"
	if string(b) != want {
		t.Fatalf("unexpected YAML:\n%s", b)
	}
	back, err := ParseYAML(b)
	if err != nil {
		t.Fatalf("reparse: %v", err)
	}
	if back.String() != s.String() {
		t.Fatalf("round trip changed schema: %s vs %s", back, s)
	}
}
