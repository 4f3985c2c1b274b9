// Package patch expresses document changes as JSON patches and text diffs.
//
// Documents travel through codec.EncodeJSON, so patched results are decoded
// back against a schema to recover ids, datetimes and numeric kinds.
package patch

import (
	"fmt"
	"strings"

	jsonpatch "github.com/evanphx/json-patch"
	diffpatch "github.com/sergi/go-diff/diffmatchpatch"

	"github.com/reoring/dstruct"
	"github.com/reoring/dstruct/codec"
)

// Merge returns the RFC 7386 merge patch that turns a into b.
func Merge(a, b any, opts ...codec.Option) ([]byte, error) {
	ja, err := codec.EncodeJSON(a, opts...)
	if err != nil {
		return nil, err
	}
	jb, err := codec.EncodeJSON(b, opts...)
	if err != nil {
		return nil, err
	}
	p, err := jsonpatch.CreateMergePatch(ja, jb)
	if err != nil {
		return nil, fmt.Errorf("patch: create merge patch: %w", err)
	}
	return p, nil
}

// Apply applies an RFC 7386 merge patch to doc and decodes the result
// against s (which may be nil).
func Apply(doc any, mergePatch []byte, s *dstruct.Schema, opts ...codec.Option) (any, error) {
	j, err := codec.EncodeJSON(doc, opts...)
	if err != nil {
		return nil, err
	}
	out, err := jsonpatch.MergePatch(j, mergePatch)
	if err != nil {
		return nil, fmt.Errorf("patch: apply merge patch: %w", err)
	}
	return codec.DecodeJSON(out, s, opts...)
}

// ApplyOps applies an RFC 6902 operation list to doc and decodes the result
// against s (which may be nil).
func ApplyOps(doc any, ops []byte, s *dstruct.Schema, opts ...codec.Option) (any, error) {
	p, err := jsonpatch.DecodePatch(ops)
	if err != nil {
		return nil, fmt.Errorf("patch: decode operations: %w", err)
	}
	j, err := codec.EncodeJSON(doc, opts...)
	if err != nil {
		return nil, err
	}
	out, err := p.Apply(j)
	if err != nil {
		return nil, fmt.Errorf("patch: apply operations: %w", err)
	}
	return codec.DecodeJSON(out, s, opts...)
}

// Text renders a line diff of the indented JSON forms of a and b. Removed
// lines start with "- ", added lines with "+ " and unchanged ones with two
// spaces. Equal documents produce only unchanged lines.
func Text(a, b any, opts ...codec.Option) (string, error) {
	opts = append(append([]codec.Option(nil), opts...), codec.WithIndent("", "  "))
	ja, err := codec.EncodeJSON(a, opts...)
	if err != nil {
		return "", err
	}
	jb, err := codec.EncodeJSON(b, opts...)
	if err != nil {
		return "", err
	}
	dmp := diffpatch.New()
	ca, cb, lines := dmp.DiffLinesToChars(string(ja)+"\n", string(jb)+"\n")
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(ca, cb, false), lines)

	var sb strings.Builder
	for _, d := range diffs {
		prefix := "  "
		switch d.Type {
		case diffpatch.DiffInsert:
			prefix = "+ "
		case diffpatch.DiffDelete:
			prefix = "- "
		}
		for _, line := range strings.SplitAfter(d.Text, "\n") {
			if line == "" {
				continue
			}
			sb.WriteString(prefix)
			sb.WriteString(line)
			if !strings.HasSuffix(line, "\n") {
				sb.WriteByte('\n')
			}
		}
	}
	return sb.String(), nil
}
