/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package registry

import (
	"sort"
	"sync"

	"github.com/suparena/entitynorm/schema"
)

// Schemas maps entity type names to their schemas.
type Schemas struct {
	mu      sync.RWMutex
	schemas map[string]*schema.Entity
}

// NewSchemas registers the given schemas in order; a later schema with the
// same name replaces an earlier one.
func NewSchemas(entities ...*schema.Entity) *Schemas {
	s := &Schemas{schemas: make(map[string]*schema.Entity, len(entities))}
	for _, e := range entities {
		s.Register(e)
	}
	return s
}

// Register adds or replaces a schema. Nil schemas are ignored.
func (s *Schemas) Register(e *schema.Entity) {
	if e == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.schemas[e.Name()] = e
}

// Lookup returns the schema registered under name.
func (s *Schemas) Lookup(name string) (*schema.Entity, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.schemas[name]
	return e, ok
}

// Names returns the registered names, sorted.
func (s *Schemas) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.schemas))
	for name := range s.schemas {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
