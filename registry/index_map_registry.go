/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package registry

import (
	"maps"
	"sync"
)

// DefaultIndexMap keeps every entity type in its own partition, one item per
// identifier.
var DefaultIndexMap = map[string]string{
	"PK": "{EntityType}",
	"SK": "{EntityType}#{ID}",
}

var (
	indexMapRegistry = make(map[string]map[string]string)
	mu               sync.RWMutex
)

// RegisterIndexMap associates an entity type with a DynamoDB index map (PK, SK, etc.).
func RegisterIndexMap(entityType string, idxMap map[string]string) {
	mu.Lock()
	defer mu.Unlock()
	indexMapRegistry[entityType] = maps.Clone(idxMap)
}

// GetIndexMap retrieves the index map registered for an entity type, if any.
func GetIndexMap(entityType string) (map[string]string, bool) {
	mu.RLock()
	defer mu.RUnlock()
	m, ok := indexMapRegistry[entityType]
	return m, ok
}

// IndexMapFor returns the registered index map of an entity type, or DefaultIndexMap.
func IndexMapFor(entityType string) map[string]string {
	if m, ok := GetIndexMap(entityType); ok {
		return m
	}
	return DefaultIndexMap
}

// UnregisterIndexMap removes the index map of an entity type.
func UnregisterIndexMap(entityType string) {
	mu.Lock()
	defer mu.Unlock()
	delete(indexMapRegistry, entityType)
}
