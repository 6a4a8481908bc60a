// SPDX-License-Identifier: MPL-2.0

package cueutil

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
)

// Schema names a root definition inside CUE schema source.
// A Schema is immutable and safe to share; every Validate call compiles in a
// fresh cue.Context.
type Schema struct {
	source string
	root   string
}

// NewSchema returns a Schema validating against the root definition
// (e.g. "#Config") in source.
func NewSchema(source, root string) *Schema {
	return &Schema{source: source, root: root}
}

// Root returns the root definition path.
func (s *Schema) Root() string { return s.root }

// Compile compiles the schema and returns its root definition.
func (s *Schema) Compile() (cue.Value, error) {
	return s.compile(cuecontext.New())
}

func (s *Schema) compile(ctx *cue.Context) (cue.Value, error) {
	v := ctx.CompileString(s.source)
	if v.Err() != nil {
		return cue.Value{}, fmt.Errorf("internal error: failed to compile schema: %w", v.Err())
	}
	root := v.LookupPath(cue.ParsePath(s.root))
	if root.Err() != nil {
		return cue.Value{}, fmt.Errorf("internal error: schema definition %s not found: %w", s.root, root.Err())
	}
	return root, nil
}

// Validate compiles data, unifies it with the schema root and validates the
// result. Errors are formatted with FormatError.
func (s *Schema) Validate(data []byte, opts ...Option) (cue.Value, error) {
	options := defaultOptions()
	for _, opt := range opts {
		opt(&options)
	}

	if err := CheckFileSize(data, options.maxFileSize, options.filename); err != nil {
		return cue.Value{}, err
	}

	ctx := cuecontext.New()
	root, err := s.compile(ctx)
	if err != nil {
		return cue.Value{}, err
	}

	user := ctx.CompileBytes(data, cue.Filename(options.filename))
	if user.Err() != nil {
		return cue.Value{}, FormatError(user.Err(), options.filename)
	}

	unified := root.Unify(user)
	if err := unified.Validate(cue.Concrete(options.concrete)); err != nil {
		return cue.Value{}, FormatError(err, options.filename)
	}
	return unified, nil
}

// Decode validates data against schema and decodes the unified value into T.
func Decode[T any](schema *Schema, data []byte, opts ...Option) (*T, error) {
	options := defaultOptions()
	for _, opt := range opts {
		opt(&options)
	}

	unified, err := schema.Validate(data, opts...)
	if err != nil {
		return nil, err
	}

	var result T
	if err := unified.Decode(&result); err != nil {
		return nil, FormatError(err, options.filename)
	}
	return &result, nil
}
