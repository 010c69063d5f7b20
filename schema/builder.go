/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package schema

import (
	"fmt"

	"github.com/suparena/entitynorm/errors"
)

// Builder declares schemas in two phases: shells first, then relations
// between them by name. Cycles in the schema graph need no mutation of a
// schema that is already in use.
type Builder struct {
	order    []string
	entities map[string]*Entity
	wires    []func() error
	err      error
}

// NewBuilder creates an empty Builder.
func NewBuilder() *Builder {
	return &Builder{entities: make(map[string]*Entity)}
}

// Declare adds a schema shell.
func (b *Builder) Declare(name string, opts ...Option) *Builder {
	if _, exists := b.entities[name]; exists {
		b.fail(errors.NewAlreadyExistsError("schema", name))
		return b
	}
	b.entities[name] = New(name, opts...)
	b.order = append(b.order, name)
	return b
}

// Entity returns a declared shell.
func (b *Builder) Entity(name string) (*Entity, bool) {
	e, ok := b.entities[name]
	return e, ok
}

// RelateOne wires a to-one relation from owner.property to target.
func (b *Builder) RelateOne(owner, property, target string) *Builder {
	b.wires = append(b.wires, func() error {
		from, to, err := b.pair(owner, target)
		if err != nil {
			return err
		}
		return from.AddRelation(property, One(to))
	})
	return b
}

// RelateMany wires a to-many relation from owner.property. Exactly one
// target is accepted.
func (b *Builder) RelateMany(owner, property string, targets ...string) *Builder {
	b.wires = append(b.wires, func() error {
		from, err := b.lookup(owner)
		if err != nil {
			return err
		}
		elems := make([]*Entity, 0, len(targets))
		for _, name := range targets {
			to, err := b.lookup(name)
			if err != nil {
				return err
			}
			elems = append(elems, to)
		}
		if err := from.AddRelation(property, Many(elems...)); err != nil {
			return fmt.Errorf("schema %q: %w", owner, err)
		}
		return nil
	})
	return b
}

// Resolve attaches a dynamic resolver to owner.property.
func (b *Builder) Resolve(owner, property string, r Resolver) *Builder {
	b.wires = append(b.wires, func() error {
		from, err := b.lookup(owner)
		if err != nil {
			return err
		}
		from.AddResolvers(map[string]Resolver{property: r})
		return nil
	})
	return b
}

// Build runs the wiring phase and returns the schemas in declaration order.
func (b *Builder) Build() ([]*Entity, error) {
	if b.err != nil {
		return nil, b.err
	}
	for _, wire := range b.wires {
		if err := wire(); err != nil {
			return nil, err
		}
	}
	out := make([]*Entity, 0, len(b.order))
	for _, name := range b.order {
		out = append(out, b.entities[name])
	}
	return out, nil
}

func (b *Builder) fail(err error) {
	if b.err == nil {
		b.err = err
	}
}

func (b *Builder) lookup(name string) (*Entity, error) {
	e, ok := b.entities[name]
	if !ok {
		return nil, errors.NewSchemaNotFoundError(name)
	}
	return e, nil
}

func (b *Builder) pair(owner, target string) (*Entity, *Entity, error) {
	from, err := b.lookup(owner)
	if err != nil {
		return nil, nil, err
	}
	to, err := b.lookup(target)
	if err != nil {
		return nil, nil, err
	}
	return from, to, nil
}
