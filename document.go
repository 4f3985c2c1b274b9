package dstruct

// Document pairs a mutable document tree with the schema it claims to
// follow. Nothing is enforced between explicit Validate calls. A Document is
// not safe for concurrent mutation.
type Document struct {
	schema *Schema
	data   any
	opts   []ValidateOption
}

// NewDocument builds a document for s from overrides and validates the
// result with opts (which are kept for later Validate calls).
func NewDocument(s *Schema, overrides map[string]any, opts ...ValidateOption) (*Document, error) {
	return NewDocumentWith(defaultBuilder, s, overrides, opts...)
}

// NewDocumentWith is NewDocument with an explicit Builder.
func NewDocumentWith(b *Builder, s *Schema, overrides map[string]any, opts ...ValidateOption) (*Document, error) {
	data, err := b.Build(s, overrides)
	if err != nil {
		return nil, err
	}
	d := &Document{schema: s, data: data, opts: opts}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return d, nil
}

// Wrap attaches s to existing data without validating it, as done for
// records read back from storage.
func Wrap(s *Schema, data any, opts ...ValidateOption) *Document {
	return &Document{schema: s, data: data, opts: opts}
}

// Schema returns the document's schema.
func (d *Document) Schema() *Schema { return d.schema }

// Data returns the underlying tree. Mutating it mutates the document.
func (d *Document) Data() any { return d.data }

// Get returns the value at path.
func (d *Document) Get(path string) (any, error) { return Retrieve(d.data, path) }

// Set stores v at path. The empty path replaces the whole tree.
func (d *Document) Set(path string, v any) error {
	root, err := Set(d.data, path, v)
	if err != nil {
		return err
	}
	d.data = root
	return nil
}

// Delete removes the node at path.
func (d *Document) Delete(path string) error {
	root, err := Delete(d.data, path)
	if err != nil {
		return err
	}
	d.data = root
	return nil
}

// Validate checks the document against its schema, using the options given
// at construction followed by opts.
func (d *Document) Validate(opts ...ValidateOption) error {
	all := append(append([]ValidateOption(nil), d.opts...), opts...)
	return Validate(d.data, d.schema, all...)
}

// Hash is Hash(d.Data()).
func (d *Document) Hash() string { return Hash(d.data) }

// Diff lists leaf changes from d to other.
func (d *Document) Diff(other *Document) []Change { return Diff(d.data, other.data) }

// Copy returns an independent deep copy sharing the schema.
func (d *Document) Copy() *Document {
	return &Document{schema: d.schema, data: Copy(d.data), opts: d.opts}
}
