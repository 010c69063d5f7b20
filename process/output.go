/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package process

// Entities maps an entity type name to its records keyed by stringified identifier.
type Entities map[string]map[string]any

// Get returns the stored record of an entity.
func (e Entities) Get(entityType, id string) (any, bool) {
	bucket, ok := e[entityType]
	if !ok {
		return nil, false
	}
	v, ok := bucket[id]
	return v, ok
}

// Count returns the number of stored records across all types.
func (e Entities) Count() int {
	n := 0
	for _, bucket := range e {
		n += len(bucket)
	}
	return n
}

// Diagnostic is a non-fatal problem found during a run.
type Diagnostic struct {
	// Schema is the schema whose resolver produced the problem.
	Schema string `json:"schema"`
	// Property is the resolved property.
	Property string `json:"property"`
	// Resolved is the schema name returned by the resolver.
	Resolved string `json:"resolved"`
	Message  string `json:"message"`
}

// Output is the result of a run.
type Output struct {
	// Result is the root identifier, or a []any of identifiers when the
	// input was a sequence.
	Result      any          `json:"result"`
	Entities    Entities     `json:"entities"`
	Diagnostics []Diagnostic `json:"diagnostics,omitempty"`
}
