/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package schema

import (
	"fmt"

	"github.com/mitchellh/mapstructure"
	"github.com/suparena/entitynorm/errors"
)

// DefaultIDAttribute is the attribute read by the default identifier strategy.
const DefaultIDAttribute = "id"

// IdentifierFunc extracts the identifier of a record.
type IdentifierFunc func(record Getter) any

// Resolver picks the schema of a property from its parent record. It returns
// the schema name, or "" when the property should be left alone.
type Resolver func(parent Getter) string

// Factory builds the stored shape of an entity from its flattened fields.
type Factory func(fields map[string]any) (any, error)

// Relation declares the schema of a nested property.
type Relation struct {
	elems []*Entity
	many  bool
}

// One declares a to-one relation.
func One(e *Entity) Relation {
	return Relation{elems: []*Entity{e}}
}

// Many declares a to-many relation. Exactly one element schema is allowed.
func Many(elems ...*Entity) Relation {
	return Relation{elems: elems, many: true}
}

// IsMany reports whether the relation is to-many.
func (r Relation) IsMany() bool {
	return r.many
}

// Schema returns the related schema.
func (r Relation) Schema() *Entity {
	if len(r.elems) == 0 {
		return nil
	}
	return r.elems[0]
}

func (r Relation) validate(property string) error {
	if r.many && len(r.elems) != 1 {
		return errors.NewExpectedSchemaSingleError(property, len(r.elems))
	}
	if len(r.elems) != 1 || r.elems[0] == nil {
		return errors.NewUnexpectedModelError("nil")
	}
	return nil
}

// Entity describes one entity type: its name, how its identifier is
// extracted, how its records are read, and which of its properties hold
// nested entities.
type Entity struct {
	name          string
	identify      IdentifierFunc
	accessor      Accessor
	factory       Factory
	relations     map[string]Relation
	relationOrder []string
	resolvers     map[string]Resolver
	resolverOrder []string
}

// Option configures an Entity.
type Option func(*Entity)

// WithIDAttribute reads the identifier from the given attribute.
func WithIDAttribute(attr string) Option {
	return func(e *Entity) {
		e.identify = attributeIdentifier(attr)
	}
}

// WithIdentifier installs a custom identifier strategy.
func WithIdentifier(fn IdentifierFunc) Option {
	return func(e *Entity) {
		if fn != nil {
			e.identify = fn
		}
	}
}

// WithRelation declares a relation. Invalid relations are reported by Validate.
func WithRelation(property string, rel Relation) Option {
	return func(e *Entity) {
		e.setRelation(property, rel)
	}
}

// WithFactory sets the construction strategy of stored records.
func WithFactory(f Factory) Option {
	return func(e *Entity) {
		e.factory = f
	}
}

// WithAccessor declares how records of this schema are read.
func WithAccessor(a Accessor) Option {
	return func(e *Entity) {
		if a != nil {
			e.accessor = a
		}
	}
}

// New creates an entity schema. Records are plain field maps or structs
// identified by their "id" attribute unless options say otherwise.
func New(name string, opts ...Option) *Entity {
	e := &Entity{
		name:      name,
		identify:  attributeIdentifier(DefaultIDAttribute),
		accessor:  FieldAccess{},
		relations: make(map[string]Relation),
		resolvers: make(map[string]Resolver),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func attributeIdentifier(attr string) IdentifierFunc {
	return func(record Getter) any {
		v, _ := record.Get(attr)
		return v
	}
}

// Name returns the entity type name.
func (e *Entity) Name() string {
	return e.name
}

// Accessor returns the record accessor of the schema.
func (e *Entity) Accessor() Accessor {
	return e.accessor
}

// Factory returns the construction strategy, or nil.
func (e *Entity) Factory() Factory {
	return e.factory
}

// Identify applies the identifier strategy to an adapted record.
func (e *Entity) Identify(record Getter) any {
	return e.identify(record)
}

// IdentifierValue applies the identifier strategy to a raw record. It
// returns nil when raw cannot be read by the schema accessor.
func (e *Entity) IdentifierValue(raw any) any {
	view, ok := e.accessor.View(raw)
	if !ok {
		return nil
	}
	return e.identify(view)
}

// AddRelation adds or replaces a relation after construction, which is how
// self-referential and mutually referential schemas are expressed.
func (e *Entity) AddRelation(property string, rel Relation) error {
	if err := rel.validate(property); err != nil {
		return err
	}
	e.setRelation(property, rel)
	return nil
}

func (e *Entity) setRelation(property string, rel Relation) {
	if _, exists := e.relations[property]; !exists {
		e.relationOrder = append(e.relationOrder, property)
	}
	e.relations[property] = rel
}

// AddResolvers merges property resolvers into the schema.
func (e *Entity) AddResolvers(resolvers map[string]Resolver) {
	for property, r := range resolvers {
		if _, exists := e.resolvers[property]; !exists {
			e.resolverOrder = append(e.resolverOrder, property)
		}
		e.resolvers[property] = r
	}
}

// RelationNames returns the related properties in declaration order.
func (e *Entity) RelationNames() []string {
	return append([]string(nil), e.relationOrder...)
}

// Relation returns the relation declared for a property.
func (e *Entity) Relation(property string) (Relation, bool) {
	rel, ok := e.relations[property]
	return rel, ok
}

// ResolverNames returns the resolved properties in declaration order.
func (e *Entity) ResolverNames() []string {
	return append([]string(nil), e.resolverOrder...)
}

// Resolver returns the resolver declared for a property.
func (e *Entity) Resolver(property string) (Resolver, bool) {
	r, ok := e.resolvers[property]
	return r, ok
}

// Validate checks every declared relation.
func (e *Entity) Validate() error {
	for _, property := range e.relationOrder {
		if err := e.relations[property].validate(property); err != nil {
			return fmt.Errorf("schema %q: %w", e.name, err)
		}
	}
	return nil
}

// DecodeAs returns a Factory that decodes flattened fields into a *T,
// matching fields by json tag.
func DecodeAs[T any]() Factory {
	return func(fields map[string]any) (any, error) {
		out := new(T)
		dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
			TagName:          "json",
			WeaklyTypedInput: true,
			Result:           out,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create decoder: %w", err)
		}
		if err := dec.Decode(fields); err != nil {
			return nil, fmt.Errorf("failed to decode %T: %w", out, err)
		}
		return out, nil
	}
}
