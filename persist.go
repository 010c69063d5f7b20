/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package entitynorm

import (
	"context"
	"fmt"
	"maps"
	"sort"

	"github.com/mitchellh/mapstructure"

	"github.com/suparena/entitynorm/datastore"
	"github.com/suparena/entitynorm/errors"
	"github.com/suparena/entitynorm/process"
)

type persistOptions struct {
	mergeExisting bool
}

// PersistOption configures Persist.
type PersistOption func(*persistOptions)

// WithMergeExisting merges each entity into the record already stored under
// its key instead of replacing it.
func WithMergeExisting() PersistOption {
	return func(o *persistOptions) {
		o.mergeExisting = true
	}
}

// Persist writes every entity of out to the datastore of its type, in type
// then identifier order. It stops at the first failure and returns the
// number of entities written.
func Persist(ctx context.Context, out *Output, sm *StorageManager, opts ...PersistOption) (int, error) {
	var options persistOptions
	for _, opt := range opts {
		opt(&options)
	}
	if out == nil {
		return 0, nil
	}

	types := make([]string, 0, len(out.Entities))
	for t := range out.Entities {
		types = append(types, t)
	}
	sort.Strings(types)

	written := 0
	for _, entityType := range types {
		ds, err := sm.GetDataStore(entityType)
		if err != nil {
			return written, err
		}

		bucket := out.Entities[entityType]
		ids := make([]string, 0, len(bucket))
		for id := range bucket {
			ids = append(ids, id)
		}
		sort.Strings(ids)

		for _, id := range ids {
			if err := ctx.Err(); err != nil {
				return written, err
			}
			record, err := toRecord(bucket[id])
			if err != nil {
				return written, fmt.Errorf("persist %s %q: %w", entityType, id, err)
			}
			if options.mergeExisting {
				if record, err = mergeStored(ctx, ds, entityType, id, record); err != nil {
					return written, fmt.Errorf("persist %s %q: %w", entityType, id, err)
				}
			}
			if err := ds.Put(ctx, entityType, id, record); err != nil {
				return written, fmt.Errorf("persist %s %q: %w", entityType, id, err)
			}
			written++
		}
	}
	return written, nil
}

func mergeStored(ctx context.Context, ds datastore.DataStore, entityType, id string, record datastore.Record) (datastore.Record, error) {
	existing, err := ds.GetOne(ctx, entityType, id)
	if errors.IsNotFound(err) {
		return record, nil
	}
	if err != nil {
		return nil, err
	}
	return process.Merge(existing, record), nil
}

// toRecord converts a stored entity back to a field map. Values built by a
// factory are decoded through their json tags.
func toRecord(v any) (datastore.Record, error) {
	if m, ok := v.(map[string]any); ok {
		return maps.Clone(m), nil
	}

	record := make(datastore.Record)
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName: "json",
		Result:  &record,
	})
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(v); err != nil {
		return nil, errors.NewTypeMismatchError("record", fmt.Sprintf("%T", v))
	}
	return record, nil
}
