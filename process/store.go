/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package process

import (
	"fmt"
	"maps"

	"github.com/suparena/entitynorm/schema"
)

// Merge combines two observations of the same entity. Fields of incoming
// override matching fields of existing; every other field is kept. Neither
// argument is modified.
func Merge(existing, incoming map[string]any) map[string]any {
	merged := make(map[string]any, len(existing)+len(incoming))
	maps.Copy(merged, existing)
	maps.Copy(merged, incoming)
	return merged
}

// entityStore keeps the merged fields of every entity alongside the stored
// value built from them.
type entityStore struct {
	fields   map[string]map[string]map[string]any
	entities Entities
}

func newEntityStore() *entityStore {
	return &entityStore{
		fields:   make(map[string]map[string]map[string]any),
		entities: make(Entities),
	}
}

func (st *entityStore) add(s *schema.Entity, id string, incoming map[string]any) error {
	name := s.Name()
	bucket, ok := st.fields[name]
	if !ok {
		bucket = make(map[string]map[string]any)
		st.fields[name] = bucket
		st.entities[name] = make(map[string]any)
	}

	merged := Merge(bucket[id], incoming)
	bucket[id] = merged

	var stored any = merged
	if factory := s.Factory(); factory != nil {
		v, err := factory(maps.Clone(merged))
		if err != nil {
			return fmt.Errorf("failed to construct %s %q: %w", name, id, err)
		}
		stored = v
	}
	st.entities[name][id] = stored
	return nil
}
