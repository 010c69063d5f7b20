/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package entitynorm

import (
	"sort"
	"sync"

	"github.com/suparena/entitynorm/datastore"
	"github.com/suparena/entitynorm/errors"
)

// StorageManager routes entity types to the datastores that persist them.
// It is safe for concurrent use.
type StorageManager struct {
	mu       sync.RWMutex
	stores   map[string]datastore.DataStore
	fallback datastore.DataStore
}

// NewStorageManager creates a manager. fallback, when not nil, serves every
// entity type without a dedicated datastore.
func NewStorageManager(fallback datastore.DataStore) *StorageManager {
	return &StorageManager{
		stores:   make(map[string]datastore.DataStore),
		fallback: fallback,
	}
}

// RegisterDataStore assigns a datastore to an entity type.
func (sm *StorageManager) RegisterDataStore(entityType string, ds datastore.DataStore) error {
	if ds == nil {
		return errors.NewValidationError("datastore", "datastore is required")
	}

	sm.mu.Lock()
	defer sm.mu.Unlock()

	if _, exists := sm.stores[entityType]; exists {
		return errors.NewAlreadyExistsError("datastore", entityType)
	}
	sm.stores[entityType] = ds
	return nil
}

// GetDataStore returns the datastore of an entity type, or the fallback.
func (sm *StorageManager) GetDataStore(entityType string) (datastore.DataStore, error) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if ds, exists := sm.stores[entityType]; exists {
		return ds, nil
	}
	if sm.fallback != nil {
		return sm.fallback, nil
	}
	return nil, errors.NewNotFoundError("datastore", entityType)
}

// RemoveDataStore removes the datastore of an entity type.
func (sm *StorageManager) RemoveDataStore(entityType string) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if _, exists := sm.stores[entityType]; !exists {
		return errors.NewNotFoundError("datastore", entityType)
	}
	delete(sm.stores, entityType)
	return nil
}

// ListDataStores returns the entity types with a dedicated datastore, sorted.
func (sm *StorageManager) ListDataStores() []string {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	keys := make([]string, 0, len(sm.stores))
	for k := range sm.stores {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
