/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

// Package mock provides an in-memory implementation of the DataStore interface
package mock

import (
	"context"
	"maps"
	"sort"
	"sync"
	"time"

	"github.com/suparena/entitynorm/datastore"
	"github.com/suparena/entitynorm/errors"
	"github.com/suparena/entitynorm/storagemodels"
)

// DataStore is an in-memory datastore.DataStore
type DataStore struct {
	mu          sync.RWMutex
	data        map[string]map[string]datastore.Record
	queryFunc   func(ctx context.Context, params *storagemodels.QueryParams) ([]storagemodels.Item, error)
	putError    error
	deleteError error
}

// New creates a new mock DataStore
func New() *DataStore {
	return &DataStore{
		data: make(map[string]map[string]datastore.Record),
	}
}

// WithQueryFunc sets a custom query function for testing
func (m *DataStore) WithQueryFunc(f func(ctx context.Context, params *storagemodels.QueryParams) ([]storagemodels.Item, error)) *DataStore {
	m.queryFunc = f
	return m
}

// WithPutError makes Put operations return an error
func (m *DataStore) WithPutError(err error) *DataStore {
	m.putError = err
	return m
}

// WithDeleteError makes Delete operations return an error
func (m *DataStore) WithDeleteError(err error) *DataStore {
	m.deleteError = err
	return m
}

// GetOne retrieves a copy of an entity record
func (m *DataStore) GetOne(ctx context.Context, entityType, id string) (datastore.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if record, exists := m.data[entityType][id]; exists {
		return maps.Clone(record), nil
	}
	return nil, errors.NewNotFoundError(entityType, id)
}

// Put stores a copy of an entity record
func (m *DataStore) Put(ctx context.Context, entityType, id string, record datastore.Record) error {
	if m.putError != nil {
		return m.putError
	}
	if entityType == "" || id == "" {
		return errors.NewValidationError("key", "entity type and id are required")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	bucket, ok := m.data[entityType]
	if !ok {
		bucket = make(map[string]datastore.Record)
		m.data[entityType] = bucket
	}
	bucket[id] = maps.Clone(record)
	return nil
}

// Delete removes an entity record
func (m *DataStore) Delete(ctx context.Context, entityType, id string) error {
	if m.deleteError != nil {
		return m.deleteError
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.data[entityType][id]; !exists {
		return errors.NewNotFoundError(entityType, id)
	}
	delete(m.data[entityType], id)
	return nil
}

// Query lists records of params.EntityType (every type when empty), ordered
// by type then id
func (m *DataStore) Query(ctx context.Context, params *storagemodels.QueryParams) ([]storagemodels.Item, error) {
	if m.queryFunc != nil {
		return m.queryFunc(ctx, params)
	}

	items := m.snapshot(params)
	if params != nil && params.Limit != nil && int(*params.Limit) < len(items) {
		items = items[:*params.Limit]
	}
	return items, nil
}

// Stream returns every matching record through a channel, one page per PageSize items
func (m *DataStore) Stream(ctx context.Context, params *storagemodels.QueryParams, opts ...storagemodels.StreamOption) <-chan storagemodels.StreamResult {
	options := storagemodels.ApplyStreamOptions(opts...)
	resultChan := make(chan storagemodels.StreamResult, options.BufferSize)
	items := m.snapshot(params)

	go func() {
		defer close(resultChan)

		start := time.Now()
		pageSize := int(options.PageSize)
		if pageSize <= 0 {
			pageSize = len(items) + 1
		}
		for i, item := range items {
			select {
			case <-ctx.Done():
				return
			case resultChan <- storagemodels.StreamResult{
				Item: item,
				Meta: storagemodels.StreamMeta{
					Index:      int64(i),
					PageNumber: i/pageSize + 1,
					Timestamp:  time.Now(),
				},
			}:
			}
		}
		if options.ProgressHandler != nil {
			options.ProgressHandler(storagemodels.StreamProgress{
				ItemsProcessed: int64(len(items)),
				PagesProcessed: (len(items) + pageSize - 1) / pageSize,
				StartTime:      start,
			})
		}
	}()

	return resultChan
}

func (m *DataStore) snapshot(params *storagemodels.QueryParams) []storagemodels.Item {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var types []string
	if params != nil && params.EntityType != "" {
		types = []string{params.EntityType}
	} else {
		for t := range m.data {
			types = append(types, t)
		}
		sort.Strings(types)
	}

	var items []storagemodels.Item
	for _, t := range types {
		ids := make([]string, 0, len(m.data[t]))
		for id := range m.data[t] {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		for _, id := range ids {
			items = append(items, storagemodels.Item{EntityType: t, ID: id, Record: maps.Clone(m.data[t][id])})
		}
	}
	return items
}

// Helper methods for testing

// Count returns the number of stored entities
func (m *DataStore) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, bucket := range m.data {
		n += len(bucket)
	}
	return n
}

// Clear removes all data
func (m *DataStore) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = make(map[string]map[string]datastore.Record)
}
