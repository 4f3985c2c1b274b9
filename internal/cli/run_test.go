package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/reoring/dstruct"
	"github.com/reoring/dstruct/codec"
)

const usersSchema = `{
  "id": "id",
  "name": "string",
  "age": "int",
  "friends": [{"nick": "string"}]
}`

type testEnv struct {
	t   *testing.T
	dir string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("DSTRUCT_CONFIG", filepath.Join(dir, "missing.yaml"))
	t.Setenv("DSTRUCT_STORE_DSN", filepath.Join(dir, "test.db"))
	t.Setenv("DSTRUCT_LOG_LEVEL", "error")
	e := &testEnv{t: t, dir: dir}
	e.write("users.json", usersSchema)
	return e
}

func (e *testEnv) write(name, content string) string {
	e.t.Helper()
	p := filepath.Join(e.dir, name)
	if err := os.WriteFile(p, []byte(content), 0o600); err != nil {
		e.t.Fatalf("write %s: %v", name, err)
	}
	return p
}

func (e *testEnv) path(name string) string { return filepath.Join(e.dir, name) }

func (e *testEnv) run(stdin string, args ...string) (int, string, string) {
	e.t.Helper()
	var out, errOut bytes.Buffer
	code := Run(context.Background(), strings.NewReader(stdin), &out, &errOut, append([]string{"dstruct"}, args...))
	return code, out.String(), errOut.String()
}

func TestRun_Usage(t *testing.T) {
	e := newTestEnv(t)
	code, out, _ := e.run("")
	if code != 0 || !strings.Contains(out, "Commands:") || !strings.Contains(out, "validate -s <schema>") {
		t.Fatalf("unexpected usage (%d): %s", code, out)
	}
	code, _, errOut := e.run("", "frobnicate")
	if code != 1 || !strings.Contains(errOut, "unknown command") {
		t.Fatalf("unknown command must fail: %d %s", code, errOut)
	}
	code, out, _ = e.run("", "build", "--help")
	if code != 0 || !strings.Contains(out, "Usage: dstruct build") || !strings.Contains(out, "--set") {
		t.Fatalf("command help: %d %s", code, out)
	}
}

func TestRun_Check(t *testing.T) {
	e := newTestEnv(t)
	code, out, _ := e.run("", "check", e.path("users.json"))
	if code != 0 || !strings.Contains(out, "ok") || !strings.Contains(out, "friends: [{nick: string}]") {
		t.Fatalf("check: %d %s", code, out)
	}
	bad := e.write("bad.yaml", "a:\n  - int\n  - string\n")
	code, out, _ = e.run("", "check", bad)
	if code != 1 || !strings.Contains(out, "invalid") {
		t.Fatalf("bad schema must fail: %d %s", code, out)
	}
	code, out, _ = e.run("", "check", "--yaml", e.path("users.json"))
	if code != 0 || !strings.Contains(out, "nick: string") || strings.Contains(out, "{") {
		t.Fatalf("yaml output: %d %s", code, out)
	}
}

func TestRun_BuildGenValidate(t *testing.T) {
	e := newTestEnv(t)
	code, item, errOut := e.run("", "gen", "-s", e.path("users.json"), "--at", "friends", "--set", "nick=zorro")
	if code != 0 {
		t.Fatalf("gen: %s", errOut)
	}
	if !strings.Contains(item, `"nick": "zorro"`) {
		t.Fatalf("gen output: %s", item)
	}
	out := e.path("user.json")
	code, _, errOut = e.run("", "build", "-s", e.path("users.json"), "-o", out,
		"--set", "name=ann", "--set", "friends=["+strings.TrimSpace(item)+"]")
	if code != 0 {
		t.Fatalf("build: %s", errOut)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read built document: %v", err)
	}
	doc, err := codec.DecodeJSON(data, nil)
	if err != nil {
		t.Fatalf("decode built document: %v", err)
	}
	if v, _ := dstruct.Retrieve(doc, "friends.[0].nick"); v != "zorro" {
		t.Fatalf("expected zorro in %s", data)
	}

	code, stdout, _ := e.run("", "validate", "-s", e.path("users.json"), out)
	if code != 0 || !strings.Contains(stdout, "ok") {
		t.Fatalf("validate built document: %d %s", code, stdout)
	}

	code, _, errOut = e.run("", "build", "-s", e.path("users.json"), "--set", "email=x")
	if code != 1 || !strings.Contains(errOut, "email") {
		t.Fatalf("unclaimed override must fail: %d %s", code, errOut)
	}
}

func TestRun_ValidateReportsAll(t *testing.T) {
	e := newTestEnv(t)
	doc := e.write("doc.json", `{"id": "nope", "friends": [{}]}`)
	code, out, _ := e.run("", "validate", "--all", "-s", e.path("users.json"), doc)
	if code != 1 {
		t.Fatalf("invalid document must fail")
	}
	if n := strings.Count(out, "\n"); n != 4 {
		t.Fatalf("expected 4 violations, got %d:\n%s", n, out)
	}
	code, out, _ = e.run(`{"id": "0123456789abcdef01234567", "name": "a", "age": 1, "friends": []}`,
		"validate", "-s", e.path("users.json"), "-")
	if code != 0 || !strings.Contains(out, "ok") {
		t.Fatalf("stdin document must validate: %d %s", code, out)
	}
}

func TestRun_DocCommands(t *testing.T) {
	e := newTestEnv(t)
	a := e.write("a.json", `{"name": "ann", "age": 3, "friends": [{"nick": "bo"}]}`)
	b := e.write("b.json", `{"friends": [{"nick": "bo"}], "age": 4, "name": "ann"}`)
	c := e.write("c.json", `{"age": 3, "friends": [{"nick": "bo"}], "name": "ann"}`)

	code, out, _ := e.run("", "get", a, "friends.[0].nick")
	if code != 0 || strings.TrimSpace(out) != `"bo"` {
		t.Fatalf("get: %d %q", code, out)
	}
	code, _, errOut := e.run("", "get", a, "friends.[3]")
	if code != 1 || !strings.Contains(errOut, "out of range") {
		t.Fatalf("get out of range: %d %s", code, errOut)
	}

	code, out, _ = e.run("", "flatten", a)
	want := "age = 3\nfriends.[0].nick = \"bo\"\nname = \"ann\"\n"
	if code != 0 || out != want {
		t.Fatalf("flatten: %d %q", code, out)
	}

	code, out, _ = e.run("", "hash", a, c)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if code != 0 || len(lines) != 2 || strings.Fields(lines[0])[0] != strings.Fields(lines[1])[0] {
		t.Fatalf("reordered documents must hash alike: %s", out)
	}

	code, out, _ = e.run("", "diff", a, b)
	if code != 0 || strings.TrimSpace(out) != "~ age: 3 -> 4" {
		t.Fatalf("diff: %d %q", code, out)
	}
	code, out, _ = e.run("", "diff", "--format", "merge", a, b)
	if code != 0 || strings.TrimSpace(out) != `{"age":4}` {
		t.Fatalf("merge: %d %q", code, out)
	}
	code, out, _ = e.run("", "diff", "--format", "text", a, b)
	if code != 0 || !strings.Contains(out, "-   \"age\": 3,") || !strings.Contains(out, "+   \"age\": 4,") {
		t.Fatalf("text diff: %d %s", code, out)
	}
}

func TestRun_Store(t *testing.T) {
	e := newTestEnv(t)
	schema := e.path("users.json")
	ann := e.write("ann.json", `{"id": "65a000000000000000000001", "name": "ann", "age": 30, "friends": []}`)
	bo := e.write("bo.json", `{"id": "65a000000000000000000002", "name": "bo", "age": 31, "friends": []}`)

	code, out, errOut := e.run("", "store", "-s", schema, "save", ann, bo)
	if code != 0 || strings.Count(out, "saved") != 2 {
		t.Fatalf("save: %d %s %s", code, out, errOut)
	}
	code, out, _ = e.run("", "store", "-s", schema, "ls")
	if code != 0 || out != "65a000000000000000000001\n65a000000000000000000002\n" {
		t.Fatalf("ls: %d %q", code, out)
	}
	code, out, _ = e.run("", "store", "-s", schema, "--where", "age=31", "ls")
	if code != 0 || out != "65a000000000000000000002\n" {
		t.Fatalf("ls --where: %d %q", code, out)
	}
	code, out, _ = e.run("", "store", "-s", schema, "get", "65a000000000000000000001")
	if code != 0 || !strings.Contains(out, `"name": "ann"`) {
		t.Fatalf("get: %d %s", code, out)
	}
	code, _, errOut = e.run("", "store", "-s", schema, "get", "65a000000000000000000009")
	if code != 1 || !strings.Contains(errOut, "not found") {
		t.Fatalf("missing key: %d %s", code, errOut)
	}
	broken := e.write("broken.json", `{"id": "65a000000000000000000003", "name": 5, "age": 1, "friends": []}`)
	code, _, errOut = e.run("", "store", "-s", schema, "save", broken)
	if code != 1 || !strings.Contains(errOut, "invalid_type") {
		t.Fatalf("invalid document must not be saved: %d %s", code, errOut)
	}
}

func TestWatch_CanceledContext(t *testing.T) {
	e := newTestEnv(t)
	doc := e.write("doc.json", `{"id": "65a000000000000000000001", "name": "a", "age": 1, "friends": []}`)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var out, errOut bytes.Buffer
	code := Run(ctx, strings.NewReader(""), &out, &errOut, []string{"dstruct", "watch", "-s", e.path("users.json"), doc})
	if code != 0 || !strings.Contains(out.String(), "ok") {
		t.Fatalf("watch should validate once before waiting: %d %s %s", code, out.String(), errOut.String())
	}
}

func TestRun_Language(t *testing.T) {
	e := newTestEnv(t)
	doc := e.write("doc.json", `{"id": "65a000000000000000000001", "age": 1, "friends": []}`)
	code, out, _ := e.run("", "--lang", "ja", "validate", "-s", e.path("users.json"), doc)
	if code != 1 || !strings.Contains(out, "必須") {
		t.Fatalf("ja messages expected: %d %s", code, out)
	}
}
