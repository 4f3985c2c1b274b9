package schemafile

import (
	"bytes"
	"fmt"
	"io"

	json "github.com/goccy/go-json"
	"github.com/tailscale/hujson"

	"github.com/reoring/dstruct"
)

// ParseJSON parses a JSON declaration. Comments and trailing commas (JSONC)
// are accepted.
func ParseJSON(data []byte) (*dstruct.Schema, error) {
	std, err := hujson.Standardize(data)
	if err != nil {
		return nil, fmt.Errorf("invalid JSONC: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(std))
	dec.UseNumber()
	root, err := decodeNode(dec, nil)
	if err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("invalid JSON: trailing data after declaration")
	}
	return dstruct.New(root)
}

// decodeNode reads one declaration value from the token stream. Objects are
// read key by key so that order and duplicates survive.
func decodeNode(dec *json.Decoder, p dstruct.Path) (*dstruct.Node, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	d, ok := tok.(json.Delim)
	if !ok {
		return leafNode(tok, p)
	}
	switch d {
	case '{':
		var fields []dstruct.Field
		for dec.More() {
			kt, err := dec.Token()
			if err != nil {
				return nil, fmt.Errorf("invalid JSON: %w", err)
			}
			key, _ := kt.(string)
			child, err := decodeNode(dec, p.Key(key))
			if err != nil {
				return nil, err
			}
			fields = append(fields, dstruct.F(key, child))
		}
		if _, err := dec.Token(); err != nil {
			return nil, fmt.Errorf("invalid JSON: %w", err)
		}
		return dstruct.Map(fields...), nil
	case '[':
		var items []*dstruct.Node
		for dec.More() {
			child, err := decodeNode(dec, p.Index(len(items)))
			if err != nil {
				return nil, err
			}
			items = append(items, child)
		}
		if _, err := dec.Token(); err != nil {
			return nil, fmt.Errorf("invalid JSON: %w", err)
		}
		return listNode(items, p)
	}
	return nil, fmt.Errorf("invalid JSON: unexpected %v", d)
}
