package dstruct

import (
	"fmt"
	"strconv"

	"github.com/reoring/dstruct/i18n"
	"github.com/reoring/dstruct/ident"
)

// DefaultMaxDepth bounds validation recursion when no WithMaxDepth option is
// given.
const DefaultMaxDepth = 128

// ValidateOption configures a Validator.
type ValidateOption func(*Validator)

// AllowNull lets nil satisfy leaves (or map/list nodes) of the given kinds.
func AllowNull(kinds ...Kind) ValidateOption {
	return func(v *Validator) {
		for _, k := range kinds {
			v.nullable[k] = true
		}
	}
}

// Equivalent registers one group of mutually compatible kinds, for example
// Equivalent(KindInt, KindInt32).
func Equivalent(kinds ...Kind) ValidateOption {
	return func(v *Validator) {
		if len(kinds) < 2 {
			return
		}
		group := make(map[Kind]bool, len(kinds))
		for _, k := range kinds {
			group[k] = true
		}
		v.groups = append(v.groups, group)
	}
}

// WithIDScheme selects the identifier scheme used to recognise id values.
func WithIDScheme(s ident.Scheme) ValidateOption {
	return func(v *Validator) { v.scheme = s }
}

// WithMaxDepth bounds the nesting depth walked by the validator.
func WithMaxDepth(n int) ValidateOption {
	return func(v *Validator) { v.maxDepth = n }
}

// Validator checks documents against schemas. It never mutates either and
// is safe for concurrent use once constructed.
type Validator struct {
	nullable map[Kind]bool
	groups   []map[Kind]bool
	scheme   ident.Scheme
	maxDepth int
}

// NewValidator returns a Validator configured by opts. Without options nil
// is rejected everywhere except KindNull leaves and no kinds are equivalent.
func NewValidator(opts ...ValidateOption) *Validator {
	v := &Validator{nullable: map[Kind]bool{}, scheme: ident.ObjectIDs, maxDepth: DefaultMaxDepth}
	for _, o := range opts {
		o(v)
	}
	return v
}

// Validate checks doc against s and returns the first violation.
func Validate(doc any, s *Schema, opts ...ValidateOption) error {
	return NewValidator(opts...).Validate(doc, s)
}

// ValidateAll checks doc against s and returns every violation as
// ValidationErrors.
func ValidateAll(doc any, s *Schema, opts ...ValidateOption) error {
	return NewValidator(opts...).ValidateAll(doc, s)
}

// Validate is the package-level Validate bound to s.
func (s *Schema) Validate(doc any, opts ...ValidateOption) error { return Validate(doc, s, opts...) }

// Validate returns the first violation of doc against s, or nil.
func (v *Validator) Validate(doc any, s *Schema) error {
	w := walk{v: v, failFast: true}
	w.node(s.root, doc, nil)
	if len(w.errs) > 0 {
		return w.errs[0]
	}
	return nil
}

// ValidateAll returns every violation of doc against s as ValidationErrors,
// or nil.
func (v *Validator) ValidateAll(doc any, s *Schema) error {
	w := walk{v: v}
	w.node(s.root, doc, nil)
	if len(w.errs) > 0 {
		return w.errs
	}
	return nil
}

// compatible reports whether a runtime kind satisfies an expected kind.
func (v *Validator) compatible(expected, actual Kind) bool {
	if expected == actual {
		return true
	}
	for _, g := range v.groups {
		if g[expected] && g[actual] {
			return true
		}
	}
	return false
}

type walk struct {
	v        *Validator
	failFast bool
	errs     ValidationErrors
}

func (w *walk) stop() bool { return w.failFast && len(w.errs) > 0 }

func (w *walk) fail(e *ValidationError) { w.errs = append(w.errs, e) }

func (w *walk) typeError(p Path, expected Kind, val any) {
	actual := KindOf(val, w.v.scheme)
	msg := i18n.T(CodeInvalidType, map[string]string{"expected": expected.String(), "actual": actual.String()})
	w.fail(&ValidationError{
		Path:     p.String(),
		Code:     CodeInvalidType,
		Expected: expected,
		Actual:   actual,
		Value:    val,
		Message:  msg + fmt.Sprintf(" (%#v)", val),
	})
}

// node walks schema node n and document value val in lock-step.
func (w *walk) node(n *Node, val any, p Path) {
	if w.stop() {
		return
	}
	if len(p) > w.v.maxDepth {
		w.fail(&ValidationError{Path: p.String(), Code: CodeTooDeep, Expected: n.kind, Value: val,
			Message: i18n.T(CodeTooDeep, map[string]string{"max": strconv.Itoa(w.v.maxDepth)})})
		return
	}
	if val == nil && w.v.nullable[n.kind] {
		return
	}
	switch n.shape {
	case ShapeMap:
		m, ok := asMap(val)
		if !ok {
			w.typeError(p, KindMap, val)
			return
		}
		// Keys present in the document but absent from the schema are allowed.
		for _, k := range n.keys {
			child, ok := m[k]
			if !ok {
				w.fail(&ValidationError{Path: p.Key(k).String(), Code: CodeRequired, Key: k, Expected: n.fields[k].kind,
					Message: i18n.T(CodeRequired, map[string]string{"key": strconv.Quote(k), "path": pathLabel(p.String())})})
				if w.stop() {
					return
				}
				continue
			}
			w.node(n.fields[k], child, p.Key(k))
			if w.stop() {
				return
			}
		}
	case ShapeList:
		items, ok := asList(val)
		if !ok {
			w.typeError(p, KindList, val)
			return
		}
		for i, item := range items {
			w.node(n.elem, item, p.Index(i))
			if w.stop() {
				return
			}
		}
	default:
		actual := KindOf(val, w.v.scheme)
		if !w.v.compatible(n.kind, actual) {
			w.typeError(p, n.kind, val)
		}
	}
}
