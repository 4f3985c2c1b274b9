// Package codec moves documents on and off the wire.
//
// JSON loses the distinction between most leaf kinds, so decoding takes the
// schema the document is expected to follow and revives ids, datetimes,
// bytes and numbers from it. BSON keeps most kinds natively; decoded BSON
// values are normalised back to plain maps, lists and Go scalars.
package codec

import (
	"errors"

	"github.com/reoring/dstruct/ident"
)

// ErrNotDocument is returned when a BSON root is not a map.
var ErrNotDocument = errors.New("codec: BSON root must be a map")

// Option configures encoding and decoding.
type Option func(*options)

type options struct {
	scheme ident.Scheme
	prefix string
	indent string
}

func newOptions(opts []Option) options {
	o := options{scheme: ident.ObjectIDs}
	for _, fn := range opts {
		fn(&o)
	}
	return o
}

// WithScheme selects the identifier scheme used to render and revive ids.
func WithScheme(s ident.Scheme) Option {
	return func(o *options) {
		if s != nil {
			o.scheme = s
		}
	}
}

// WithIndent makes EncodeJSON pretty-print.
func WithIndent(prefix, indent string) Option {
	return func(o *options) { o.prefix, o.indent = prefix, indent }
}
