package dstruct

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/reoring/dstruct/i18n"
)

// Error codes (exported consts for IDE completion and type safety by convention)
const (
	// Schema definition
	CodeInvalidKey     = "invalid_key"
	CodeInvalidLeaf    = "invalid_leaf"
	CodeNotHomomorphic = "not_homomorphic"
	CodeNilNode        = "nil_node"
	CodeDuplicateKey   = "duplicate_key"
	// Validation
	CodeRequired    = "required"
	CodeInvalidType = "invalid_type"
	CodeTooDeep     = "too_deep"
	// Path addressing
	CodeMissingKey   = "missing_key"
	CodeIndexRange   = "index_range"
	CodeKindMismatch = "kind_mismatch"
	CodeSyntax       = "syntax"
	// Builder
	CodeUnclaimedOverride = "unclaimed_override"
	CodeNoDefault         = "no_default"
)

// Sentinel errors matched with errors.Is against the typed errors below.
var (
	ErrSchemaDefinition = errors.New("dstruct: invalid schema definition")
	ErrValidation       = errors.New("dstruct: validation failed")
	ErrPath             = errors.New("dstruct: path error")
	ErrOverride         = errors.New("dstruct: unclaimed build overrides")
	ErrNoDefault        = errors.New("dstruct: no default value")
)

// pathLabel renders a path for messages; the root has no segments.
func pathLabel(p string) string {
	if p == "" {
		return "<root>"
	}
	return p
}

// SchemaError reports a malformed schema declaration.
type SchemaError struct {
	Path    string // location of the offending node inside the declaration
	Code    string
	Value   any // the offending key or leaf value
	Message string
}

func (e *SchemaError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = i18n.T(e.Code, map[string]string{"value": fmt.Sprintf("%#v", e.Value)})
	}
	return fmt.Sprintf("dstruct: schema %s at %s: %s", e.Code, pathLabel(e.Path), msg)
}

func (e *SchemaError) Is(target error) bool { return target == ErrSchemaDefinition }

// ValidationError describes one document/schema mismatch.
type ValidationError struct {
	Path     string
	Code     string
	Key      string // missing key for CodeRequired
	Expected Kind
	Actual   Kind
	Value    any
	Message  string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("dstruct: %s at %s: %s", e.Code, pathLabel(e.Path), e.Message)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// ValidationErrors is a collection of validation errors that implements error.
type ValidationErrors []*ValidationError

// Error summarizes the first few errors.
func (es ValidationErrors) Error() string {
	if len(es) == 0 {
		return ""
	}
	const maxShown = 3
	b := &strings.Builder{}
	lim := min(len(es), maxShown)
	for i := 0; i < lim; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		// e.g. invalid_type at friends.[0].nick
		fmt.Fprintf(b, "%s at %s", es[i].Code, pathLabel(es[i].Path))
	}
	if len(es) > lim {
		fmt.Fprintf(b, "; ... (total %d)", len(es))
	}
	return b.String()
}

func (es ValidationErrors) Is(target error) bool { return target == ErrValidation && len(es) > 0 }

// AsValidationErrors extracts every validation error carried by err.
func AsValidationErrors(err error) (ValidationErrors, bool) {
	if err == nil {
		return nil, false
	}
	var es ValidationErrors
	if errors.As(err, &es) {
		return es, true
	}
	var e *ValidationError
	if errors.As(err, &e) {
		return ValidationErrors{e}, true
	}
	return nil, false
}

// PathError reports a path that cannot be resolved against a document or
// schema.
type PathError struct {
	Path    string // the full path being resolved
	Segment string // the failing segment, empty for syntax errors on the whole path
	Code    string
	Message string
}

func (e *PathError) Error() string {
	if e.Segment == "" {
		return fmt.Sprintf("dstruct: path %q: %s", e.Path, e.Message)
	}
	return fmt.Sprintf("dstruct: path %q at segment %s: %s", e.Path, e.Segment, e.Message)
}

func (e *PathError) Is(target error) bool { return target == ErrPath }

// OverrideError lists override paths that no schema node claimed during a
// build.
type OverrideError struct {
	Paths []string
}

func (e *OverrideError) Error() string {
	quoted := make([]string, len(e.Paths))
	for i, p := range e.Paths {
		quoted[i] = strconv.Quote(p)
	}
	return "dstruct: " + i18n.T(CodeUnclaimedOverride, map[string]string{"paths": strings.Join(quoted, ", ")})
}

func (e *OverrideError) Is(target error) bool { return target == ErrOverride }
