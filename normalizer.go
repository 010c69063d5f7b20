/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package entitynorm

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/suparena/entitynorm/errors"
	"github.com/suparena/entitynorm/logger"
	"github.com/suparena/entitynorm/process"
	"github.com/suparena/entitynorm/registry"
	"github.com/suparena/entitynorm/schema"
)

type (
	// Output is the result of a normalization.
	Output = process.Output
	// Entities maps entity types to records keyed by identifier.
	Entities = process.Entities
	// Diagnostic is a non-fatal problem found while normalizing.
	Diagnostic = process.Diagnostic
)

// Normalizer normalizes nested records against a fixed set of schemas.
// It is safe for concurrent use as long as the schemas passed to New are no
// longer changed: AddRelation or AddResolvers on a registered schema races
// with Normalize.
type Normalizer struct {
	schemas *registry.Schemas
	log     logger.Logger
}

// Option configures a Normalizer.
type Option func(*Normalizer)

// WithLogger sets the logger used for run summaries and diagnostics.
func WithLogger(l logger.Logger) Option {
	return func(n *Normalizer) {
		if l != nil {
			n.log = l
		}
	}
}

// New validates schemas and builds a Normalizer. When two schemas share a
// name the later one wins. The schemas are shared, not copied, and must not
// be modified afterwards.
func New(schemas []*schema.Entity, opts ...Option) (*Normalizer, error) {
	for i, s := range schemas {
		if s == nil {
			return nil, fmt.Errorf("schema %d: %w", i, errors.NewUnexpectedModelError("nil"))
		}
		if err := s.Validate(); err != nil {
			return nil, err
		}
	}

	n := &Normalizer{
		schemas: registry.NewSchemas(schemas...),
		log:     logger.NewNop(),
	}
	for _, opt := range opts {
		opt(n)
	}
	return n, nil
}

// Schemas returns the registered schema names in sorted order.
func (n *Normalizer) Schemas() []string {
	return n.schemas.Names()
}

// Normalize flattens data against the schema named schemaName. data must be
// a record or a sequence of records.
func (n *Normalizer) Normalize(data any, schemaName string) (*Output, error) {
	if !objectCapable(data) {
		return nil, errors.NewUnexpectedInputError(describe(data))
	}
	if schemaName == "" {
		return nil, errors.NewSchemaNotFoundError(schemaName)
	}

	out, err := process.New(data, schemaName, n.schemas).Run()
	if err != nil {
		return nil, err
	}

	for _, d := range out.Diagnostics {
		n.log.Warn(d.Message, "schema", d.Schema, "property", d.Property, "resolved", d.Resolved)
	}
	n.log.Debug("normalized", "schema", schemaName, "entities", out.Entities.Count())
	return out, nil
}

// NormalizeJSON decodes a JSON document and normalizes it. Numbers are kept
// as json.Number so large identifiers do not lose precision.
func (n *Normalizer) NormalizeJSON(data []byte, schemaName string) (*Output, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode input: %w", err)
	}
	return n.Normalize(doc, schemaName)
}

// objectCapable reports whether v can hold fields or elements.
func objectCapable(v any) bool {
	if v == nil {
		return false
	}
	if _, ok := v.(schema.Getter); ok {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Map, reflect.Slice, reflect.Pointer:
		return !rv.IsNil()
	case reflect.Struct, reflect.Array:
		return true
	}
	return false
}

func describe(v any) string {
	if v == nil {
		return "null"
	}
	return fmt.Sprintf("%T", v)
}
