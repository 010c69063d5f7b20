/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package datastore

import (
	"context"

	"github.com/suparena/entitynorm/storagemodels"
)

// Record is a flattened entity record.
type Record = map[string]any

// DataStore persists normalized entity records addressed by entity type and
// stringified identifier.
type DataStore interface {
	GetOne(ctx context.Context, entityType, id string) (Record, error)

	Put(ctx context.Context, entityType, id string, record Record) error

	Delete(ctx context.Context, entityType, id string) error

	Query(ctx context.Context, params *storagemodels.QueryParams) ([]storagemodels.Item, error)

	Stream(ctx context.Context, params *storagemodels.QueryParams, opts ...storagemodels.StreamOption) <-chan storagemodels.StreamResult
}
