/*
Package datastore defines the persistence interface for normalized entities.

	type DataStore interface {
	    GetOne(ctx context.Context, entityType, id string) (Record, error)
	    Put(ctx context.Context, entityType, id string, record Record) error
	    Delete(ctx context.Context, entityType, id string) error
	    Query(ctx context.Context, params *storagemodels.QueryParams) ([]storagemodels.Item, error)
	    Stream(ctx context.Context, params *storagemodels.QueryParams, opts ...storagemodels.StreamOption) <-chan storagemodels.StreamResult
	}

Records are the flattened field maps produced by normalization: every
relation already holds identifiers, so a record can be stored on its own.

Implementations:
  - ddb: DynamoDB implementation with single-table keys
  - mock: In-memory implementation for testing

GetOne and Delete return an error matching errors.ErrNotFound when the
entity does not exist.
*/
package datastore
