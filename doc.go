// Package dstruct provides:
//
//   - Declarative nested schemas: Leaf(kind) | Map(ordered fields) | List(element)
//   - Validation of arbitrary documents (map[string]any / []any trees) against a schema
//   - Synthesis of default-populated documents with path overrides (Build, Gen)
//   - Dot-path addressing ("friends.[0].nick"), flattening, hashing and diffing
//
// Design policy:
//
//   - Keep the schema engine pure: no I/O and no logging.
//   - Put collaborators in subpackages: identifiers under ident/, wire codecs under codec/,
//     schema files under schemafile/, persistence under store/, and the CLI under cmd/dstruct.
//   - A Schema is checked once by New and is read-only afterwards.
//
// Typical usage:
//
//	s := dstruct.MustNew(map[string]any{
//	    "id":      dstruct.KindID,
//	    "name":    dstruct.KindString,
//	    "age":     dstruct.KindInt,
//	    "friends": []any{map[string]any{"nick": dstruct.KindString}},
//	})
//	friend, err := s.Gen().Field("friends").Build(map[string]any{"nick": "zorro"})
//	doc, err := s.Build(map[string]any{"friends": []any{friend}})
//	err = s.Validate(doc)
//	nick, err := dstruct.Retrieve(doc, "friends.[0].nick")
package dstruct
