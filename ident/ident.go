// Package ident supplies the identifier schemes used for "id" leaves.
//
// The schema engine only needs three things from an identifier: a fresh value,
// a parser for its string form and a membership check. Two schemes ship with
// the package: MongoDB ObjectIDs (24 hex characters) and RFC 4122 UUIDs.
package ident

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ErrInvalidID is returned when a string cannot be parsed by a scheme.
var ErrInvalidID = errors.New("ident: invalid identifier")

// Scheme describes one identifier representation.
type Scheme interface {
	// Name is the registry name of the scheme ("objectid", "uuid").
	Name() string
	// New returns a fresh, unique identifier value.
	New() any
	// Parse converts the canonical string form into an identifier value.
	Parse(s string) (any, error)
	// Format renders v in its canonical string form. ok is false when v is
	// not an identifier of this scheme.
	Format(v any) (s string, ok bool)
	// Is reports whether v is an identifier of this scheme.
	Is(v any) bool
}

var (
	// ObjectIDs generates primitive.ObjectID values.
	ObjectIDs Scheme = objectIDScheme{}
	// UUIDs generates uuid.UUID (v4) values.
	UUIDs Scheme = uuidScheme{}
)

// Lookup returns the scheme registered under name. The empty name selects
// ObjectIDs.
func Lookup(name string) (Scheme, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "objectid", "oid":
		return ObjectIDs, nil
	case "uuid":
		return UUIDs, nil
	}
	return nil, fmt.Errorf("ident: unknown scheme %q", name)
}

type objectIDScheme struct{}

func (objectIDScheme) Name() string { return "objectid" }

func (objectIDScheme) New() any { return primitive.NewObjectID() }

func (objectIDScheme) Parse(s string) (any, error) {
	oid, err := primitive.ObjectIDFromHex(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %q is not an ObjectID: %v", ErrInvalidID, s, err)
	}
	return oid, nil
}

func (objectIDScheme) Format(v any) (string, bool) {
	switch t := v.(type) {
	case primitive.ObjectID:
		return t.Hex(), true
	case *primitive.ObjectID:
		if t == nil {
			return "", false
		}
		return t.Hex(), true
	}
	return "", false
}

func (objectIDScheme) Is(v any) bool {
	_, ok := objectIDScheme{}.Format(v)
	return ok
}

type uuidScheme struct{}

func (uuidScheme) Name() string { return "uuid" }

func (uuidScheme) New() any { return uuid.New() }

func (uuidScheme) Parse(s string) (any, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %q is not a UUID: %v", ErrInvalidID, s, err)
	}
	return u, nil
}

func (uuidScheme) Format(v any) (string, bool) {
	switch t := v.(type) {
	case uuid.UUID:
		return t.String(), true
	case *uuid.UUID:
		if t == nil {
			return "", false
		}
		return t.String(), true
	}
	return "", false
}

func (uuidScheme) Is(v any) bool {
	_, ok := uuidScheme{}.Format(v)
	return ok
}
