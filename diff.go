package dstruct

import (
	"bytes"
	"reflect"
	"sort"
	"time"
)

// ChangeOp classifies a leaf difference between two documents.
type ChangeOp int

const (
	Added ChangeOp = iota + 1
	Removed
	Modified
)

func (op ChangeOp) String() string {
	switch op {
	case Added:
		return "added"
	case Removed:
		return "removed"
	case Modified:
		return "modified"
	}
	return "unknown"
}

// Change is one leaf-level difference.
type Change struct {
	Path string
	Op   ChangeOp
	Old  any
	New  any
}

// Diff compares the flattened forms of a and b and returns their leaf
// differences sorted by path. Like Flatten, it does not see empty
// containers.
func Diff(a, b any) []Change {
	fa, fb := Flatten(a), Flatten(b)
	var changes []Change
	for p, va := range fa {
		vb, ok := fb[p]
		switch {
		case !ok:
			changes = append(changes, Change{Path: p, Op: Removed, Old: va})
		case !leafEqual(va, vb):
			changes = append(changes, Change{Path: p, Op: Modified, Old: va, New: vb})
		}
	}
	for p, vb := range fb {
		if _, ok := fa[p]; !ok {
			changes = append(changes, Change{Path: p, Op: Added, New: vb})
		}
	}
	sort.Slice(changes, func(i, j int) bool { return changes[i].Path < changes[j].Path })
	return changes
}

func leafEqual(a, b any) bool {
	switch ta := a.(type) {
	case time.Time:
		tb, ok := b.(time.Time)
		return ok && ta.Equal(tb)
	case []byte:
		tb, ok := b.([]byte)
		return ok && bytes.Equal(ta, tb)
	}
	return reflect.DeepEqual(a, b)
}
