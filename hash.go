package dstruct

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"time"

	json "github.com/goccy/go-json"

	"github.com/reoring/dstruct/ident"
)

// Hash digests the flattened form of doc: entries are sorted by path and
// written as path, type tag and JSON value. Documents with equal
// path->value mappings hash equally whatever their key insertion order.
// MD5 is used for equality checks only, not as a security boundary.
// Hash inherits Flatten's unescaped keys, so only documents whose keys a
// schema could declare are told apart reliably.
func Hash(doc any) string {
	flat := Flatten(doc)
	h := md5.New()
	for _, p := range SortedPaths(flat) {
		v := flat[p]
		io.WriteString(h, p)
		h.Write([]byte{0x1f})
		io.WriteString(h, hashTag(v))
		h.Write([]byte{0x1f})
		h.Write(serializeLeaf(v))
		h.Write([]byte{'\n'})
	}
	return hex.EncodeToString(h.Sum(nil))
}

// hashTag names the value's kind so that 1, "1" and int32(1) hash apart
// while int and int64 (and BSON round trips between them) hash alike.
func hashTag(v any) string {
	if ident.ObjectIDs.Is(v) {
		return "objectid"
	}
	if ident.UUIDs.Is(v) {
		return "uuid"
	}
	if k := KindOf(v, nil); k != KindInvalid {
		return k.String()
	}
	return fmt.Sprintf("%T", v)
}

func serializeLeaf(v any) []byte {
	switch t := v.(type) {
	case time.Time:
		return []byte(t.UTC().Format(time.RFC3339Nano))
	case nil:
		return []byte("null")
	}
	if s, ok := ident.ObjectIDs.Format(v); ok {
		return []byte(s)
	}
	if s, ok := ident.UUIDs.Format(v); ok {
		return []byte(s)
	}
	b, err := json.Marshal(v)
	if err != nil {
		return []byte(fmt.Sprintf("%#v", v))
	}
	return b
}
