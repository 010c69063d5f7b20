/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package process

import (
	"fmt"
	"reflect"

	"github.com/suparena/entitynorm/errors"
	"github.com/suparena/entitynorm/schema"
)

// Lookup resolves schema names.
type Lookup interface {
	Lookup(name string) (*schema.Entity, bool)
}

// Process is a single normalization run. It owns its visited set and entity
// store and must not be reused or shared.
type Process struct {
	input       any
	schemaName  string
	schemas     Lookup
	visited     visitedSet
	store       *entityStore
	diagnostics []Diagnostic
}

// New prepares a run of input against the schema named schemaName.
func New(input any, schemaName string, schemas Lookup) *Process {
	return &Process{
		input:      input,
		schemaName: schemaName,
		schemas:    schemas,
		visited:    make(visitedSet),
		store:      newEntityStore(),
	}
}

// Run normalizes the input. Slices and arrays are normalized element by
// element against the root schema; anything else as a single record.
func (p *Process) Run() (*Output, error) {
	root, err := p.rootSchema()
	if err != nil {
		return nil, err
	}
	if isSequence(p.input) {
		return p.normalizeFromSequence(root)
	}
	return p.normalizeFromObject(p.input, root)
}

func (p *Process) rootSchema() (*schema.Entity, error) {
	s, ok := p.schemas.Lookup(p.schemaName)
	if !ok {
		return nil, errors.NewSchemaNotFoundError(p.schemaName)
	}
	return s, nil
}

func (p *Process) normalizeFromSequence(root *schema.Entity) (*Output, error) {
	items, ok := toSequence(p.input)
	if !ok {
		return nil, errors.NewTypeMismatchError("sequence", describe(p.input))
	}

	results := make([]any, 0, len(items))
	for i, item := range items {
		if err := validate(item, root); err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
		id, err := p.normalizeFromModel(item, root)
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
		results = append(results, id)
	}
	return p.output(results), nil
}

func (p *Process) normalizeFromObject(input any, root *schema.Entity) (*Output, error) {
	if err := validate(input, root); err != nil {
		return nil, err
	}
	id, err := p.normalizeFromModel(input, root)
	if err != nil {
		return nil, err
	}
	return p.output(id), nil
}

func (p *Process) output(result any) *Output {
	return &Output{
		Result:      result,
		Entities:    p.store.entities,
		Diagnostics: p.diagnostics,
	}
}

// normalizeFromModel flattens raw into the entity store and returns its
// identifier. Values the schema cannot read as records are returned as is,
// so identifiers that were already normalized pass through.
func (p *Process) normalizeFromModel(raw any, s *schema.Entity) (any, error) {
	if raw == nil {
		return nil, nil
	}
	view, ok := s.Accessor().View(raw)
	if !ok {
		return raw, nil
	}

	// The identifier only depends on the raw record, which is what ends
	// a cycle.
	if p.visited.visit(raw) {
		return s.Identify(view), nil
	}

	working, _ := s.Accessor().Fields(raw)

	for _, property := range s.ResolverNames() {
		resolve, _ := s.Resolver(property)
		name := resolve(view)
		if name == "" {
			continue
		}
		value, present := view.Get(property)
		if !present {
			continue
		}
		target, found := p.schemas.Lookup(name)
		if !found || target == nil {
			p.diagnostics = append(p.diagnostics, Diagnostic{
				Schema:   s.Name(),
				Property: property,
				Resolved: name,
				Message:  fmt.Sprintf("schema %q not found for property %q", name, property),
			})
			continue
		}
		normalized, err := p.normalizeFromModel(value, target)
		if err != nil {
			return nil, err
		}
		working[property] = normalized
	}

	for _, property := range s.RelationNames() {
		rel, _ := s.Relation(property)
		delete(working, property)
		value, present := view.Get(property)
		if !present {
			// a missing to-many counts as empty; a missing to-one stays missing
			if rel.IsMany() {
				working[property] = []any{}
			}
			continue
		}
		normalized, err := p.normalizeRelation(value, rel)
		if err != nil {
			return nil, fmt.Errorf("%s.%s: %w", s.Name(), property, err)
		}
		working[property] = normalized
	}

	if err := p.addEntity(working, s, view); err != nil {
		return nil, err
	}
	return s.Identify(view), nil
}

func (p *Process) normalizeRelation(value any, rel schema.Relation) (any, error) {
	target := rel.Schema()
	if target == nil {
		return nil, errors.NewUnexpectedModelError("nil")
	}
	if !rel.IsMany() {
		return p.normalizeFromModel(value, target)
	}

	items := coerceSequence(value)
	out := make([]any, len(items))
	for i, item := range items {
		normalized, err := p.normalizeFromModel(item, target)
		if err != nil {
			return nil, err
		}
		out[i] = normalized
	}
	return out, nil
}

// addEntity stores the flattened record. The identifier comes from the
// flattened fields first and from the raw record when flattening replaced
// what the identifier strategy reads. Records without an identifier are
// not stored.
func (p *Process) addEntity(fields map[string]any, s *schema.Entity, raw schema.Getter) error {
	id := s.Identify(schema.Map(fields))
	if absent(id) {
		id = s.Identify(raw)
		if absent(id) {
			return nil
		}
	}
	return p.store.add(s, fmt.Sprint(id), fields)
}

func validate(input any, s *schema.Entity) error {
	if s == nil {
		return errors.NewUnexpectedModelError("nil")
	}
	if _, ok := s.Accessor().View(input); !ok {
		return errors.NewUnexpectedInputError(describe(input))
	}
	return nil
}

func absent(id any) bool {
	if id == nil {
		return true
	}
	s, ok := id.(string)
	return ok && s == ""
}

func describe(v any) string {
	if v == nil {
		return "null"
	}
	return fmt.Sprintf("%T", v)
}

func isSequence(v any) bool {
	switch reflect.ValueOf(v).Kind() {
	case reflect.Slice, reflect.Array:
		return true
	}
	return false
}

func toSequence(v any) ([]any, bool) {
	if items, ok := v.([]any); ok {
		return items, true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		items := make([]any, rv.Len())
		for i := range items {
			items[i] = rv.Index(i).Interface()
		}
		return items, true
	}
	return nil, false
}

// coerceSequence treats nil as empty and a lone value as a one-element sequence.
func coerceSequence(v any) []any {
	if v == nil {
		return nil
	}
	if items, ok := toSequence(v); ok {
		return items
	}
	return []any{v}
}
