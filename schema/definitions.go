/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package schema

import (
	"fmt"
	"io"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/suparena/entitynorm/errors"
)

// Definitions is the declarative form of a schema set:
//
//	schemas:
//	  - name: articles
//	    indexMap:
//	      PK: "{EntityType}"
//	      SK: "ARTICLE#{ID}"
//	    relations:
//	      author: users
//	      comments: [comments]
//	  - name: linkables
//	    resolvers:
//	      data:
//	        field: schema_type
//	        cases: {media: media, lists: lists}
type Definitions struct {
	Schemas []Definition `yaml:"schemas"`
}

// Definition declares one schema.
type Definition struct {
	Name        string                 `yaml:"name"`
	IDAttribute string                 `yaml:"idAttribute,omitempty"`
	Relations   map[string]RelationRef `yaml:"relations,omitempty"`
	Resolvers   map[string]ResolverDef `yaml:"resolvers,omitempty"`
	// IndexMap holds the DynamoDB key templates of the entity type.
	IndexMap map[string]string `yaml:"indexMap,omitempty"`
}

// RelationRef is a relation target: a schema name for to-one, or a list of
// schema names for to-many.
type RelationRef struct {
	Targets []string
	Many    bool
}

// UnmarshalYAML accepts a scalar or a sequence.
func (r *RelationRef) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		var name string
		if err := node.Decode(&name); err != nil {
			return err
		}
		r.Targets, r.Many = []string{name}, false
	case yaml.SequenceNode:
		var names []string
		if err := node.Decode(&names); err != nil {
			return err
		}
		r.Targets, r.Many = names, true
	default:
		return fmt.Errorf("line %d: relation must be a schema name or a list of schema names", node.Line)
	}
	return nil
}

// MarshalYAML writes the scalar or sequence form.
func (r RelationRef) MarshalYAML() (interface{}, error) {
	if r.Many {
		return r.Targets, nil
	}
	if len(r.Targets) == 0 {
		return "", nil
	}
	return r.Targets[0], nil
}

// ResolverDef selects a schema from a sibling field. Without cases the field
// value is the schema name.
type ResolverDef struct {
	Field string            `yaml:"field"`
	Cases map[string]string `yaml:"cases,omitempty"`
}

// Resolver turns the definition into a Resolver.
func (d ResolverDef) Resolver() Resolver {
	if len(d.Cases) == 0 {
		return FieldValue(d.Field)
	}
	return SwitchOn(d.Field, d.Cases)
}

// Builder declares every schema and wires relations and resolvers.
// Properties are wired in sorted order.
func (d Definitions) Builder() *Builder {
	b := NewBuilder()
	for _, def := range d.Schemas {
		var opts []Option
		if def.IDAttribute != "" {
			opts = append(opts, WithIDAttribute(def.IDAttribute))
		}
		b.Declare(def.Name, opts...)
	}
	for _, def := range d.Schemas {
		for _, property := range sortedKeys(def.Relations) {
			ref := def.Relations[property]
			if len(ref.Targets) == 0 && !ref.Many {
				// null and empty values never reach UnmarshalYAML
				b.fail(fmt.Errorf("schema %q: %w", def.Name, errors.NewExpectedSchemaSingleError(property, 0)))
				continue
			}
			if ref.Many {
				b.RelateMany(def.Name, property, ref.Targets...)
				continue
			}
			b.RelateOne(def.Name, property, ref.Targets[0])
		}
		for _, property := range sortedKeys(def.Resolvers) {
			b.Resolve(def.Name, property, def.Resolvers[property].Resolver())
		}
	}
	return b
}

// IndexMaps returns the declared index maps keyed by schema name.
func (d Definitions) IndexMaps() map[string]map[string]string {
	out := make(map[string]map[string]string)
	for _, def := range d.Schemas {
		if len(def.IndexMap) > 0 {
			out[def.Name] = def.IndexMap
		}
	}
	return out
}

// ParseDefinitions decodes YAML definitions.
func ParseDefinitions(r io.Reader) (Definitions, error) {
	var defs Definitions
	if err := yaml.NewDecoder(r).Decode(&defs); err != nil {
		return Definitions{}, fmt.Errorf("failed to parse schema definitions: %w", err)
	}
	return defs, nil
}

// ParseDefinitionsFile decodes YAML definitions from path.
func ParseDefinitionsFile(path string) (Definitions, error) {
	f, err := os.Open(path)
	if err != nil {
		return Definitions{}, fmt.Errorf("failed to open schema definitions: %w", err)
	}
	defer f.Close()
	return ParseDefinitions(f)
}

// LoadDefinitions parses YAML definitions and builds the schemas.
func LoadDefinitions(r io.Reader) ([]*Entity, error) {
	defs, err := ParseDefinitions(r)
	if err != nil {
		return nil, err
	}
	return defs.Builder().Build()
}

// LoadDefinitionsFile reads YAML definitions from path and builds the schemas.
func LoadDefinitionsFile(path string) ([]*Entity, error) {
	defs, err := ParseDefinitionsFile(path)
	if err != nil {
		return nil, err
	}
	return defs.Builder().Build()
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
