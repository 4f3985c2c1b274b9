// Package schemafile reads schema declarations from JSONC and YAML files.
//
// A declaration file mirrors the literal form accepted by dstruct.New: an
// object declares a map node (keys keep their file order), a one-element
// array declares a list node and a string names a leaf kind.
//
//	{
//	  // users
//	  "id": "id",
//	  "name": "string",
//	  "friends": [{"nick": "string"}]
//	}
package schemafile

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/reoring/dstruct"
	"github.com/reoring/dstruct/i18n"
)

// ErrUnknownFormat is returned by Load for unsupported file extensions.
var ErrUnknownFormat = errors.New("schemafile: unknown file format")

// Format names a declaration syntax.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatOf picks the format from a file extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".jsonc", ".hujson":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, filepath.Ext(path))
}

// Load reads and parses the declaration file at path.
func Load(path string) (*dstruct.Schema, error) {
	f, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("schemafile: %w", err)
	}
	s, err := Parse(data, f)
	if err != nil {
		return nil, fmt.Errorf("schemafile: %s: %w", path, err)
	}
	return s, nil
}

// Parse parses data in the given format.
func Parse(data []byte, f Format) (*dstruct.Schema, error) {
	switch f {
	case FormatJSON:
		return ParseJSON(data)
	case FormatYAML:
		return ParseYAML(data)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, string(f))
}

func leafNode(v any, p dstruct.Path) (*dstruct.Node, error) {
	if name, ok := v.(string); ok {
		if k, ok := dstruct.ParseKind(name); ok {
			return dstruct.Leaf(k), nil
		}
	}
	return nil, &dstruct.SchemaError{Path: p.String(), Code: dstruct.CodeInvalidLeaf, Value: v}
}

func listNode(items []*dstruct.Node, p dstruct.Path) (*dstruct.Node, error) {
	if len(items) != 1 {
		return nil, &dstruct.SchemaError{Path: p.String(), Code: dstruct.CodeNotHomomorphic, Value: len(items),
			Message: i18n.T(dstruct.CodeNotHomomorphic, map[string]string{"count": strconv.Itoa(len(items))})}
	}
	return dstruct.List(items[0]), nil
}
