/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package mock_test

import (
	"context"
	"testing"

	"github.com/suparena/entitynorm/datastore"
	"github.com/suparena/entitynorm/datastore/mock"
	"github.com/suparena/entitynorm/errors"
	"github.com/suparena/entitynorm/storagemodels"
)

var _ datastore.DataStore = (*mock.DataStore)(nil)

func TestMockDataStore(t *testing.T) {
	ctx := context.Background()

	t.Run("BasicOperations", func(t *testing.T) {
		mockStore := mock.New()

		record := datastore.Record{"id": "123", "name": "Test"}
		if err := mockStore.Put(ctx, "users", "123", record); err != nil {
			t.Fatalf("Put failed: %v", err)
		}
		record["name"] = "mutated"

		retrieved, err := mockStore.GetOne(ctx, "users", "123")
		if err != nil {
			t.Fatalf("GetOne failed: %v", err)
		}
		if retrieved["name"] != "Test" {
			t.Fatalf("Retrieved entity mismatch: %+v", retrieved)
		}

		if _, err := mockStore.GetOne(ctx, "articles", "123"); !errors.IsNotFound(err) {
			t.Fatalf("Expected not found for another type, got: %v", err)
		}

		if err := mockStore.Delete(ctx, "users", "123"); err != nil {
			t.Fatalf("Delete failed: %v", err)
		}

		_, err = mockStore.GetOne(ctx, "users", "123")
		if !errors.IsNotFound(err) {
			t.Fatalf("Expected not found error, got: %v", err)
		}

		if err := mockStore.Delete(ctx, "users", "123"); !errors.IsNotFound(err) {
			t.Fatalf("Expected not found error on second delete, got: %v", err)
		}
	})

	t.Run("Validation", func(t *testing.T) {
		mockStore := mock.New()
		err := mockStore.Put(ctx, "users", "", datastore.Record{})
		if !errors.IsValidationError(err) {
			t.Fatalf("Expected validation error, got: %v", err)
		}
	})

	t.Run("ErrorSimulation", func(t *testing.T) {
		mockStore := mock.New()

		putErr := errors.NewValidationError("name", "required")
		mockStore.WithPutError(putErr)

		err := mockStore.Put(ctx, "users", "123", datastore.Record{"id": "123"})
		if err != putErr {
			t.Fatalf("Expected put error, got: %v", err)
		}

		deleteErr := errors.NewConditionFailedError("delete", "version mismatch")
		mockStore.WithDeleteError(deleteErr)

		err = mockStore.Delete(ctx, "users", "123")
		if err != deleteErr {
			t.Fatalf("Expected delete error, got: %v", err)
		}
	})

	t.Run("Query", func(t *testing.T) {
		mockStore := mock.New()
		for _, id := range []string{"b", "a", "c"} {
			if err := mockStore.Put(ctx, "users", id, datastore.Record{"id": id}); err != nil {
				t.Fatal(err)
			}
		}
		if err := mockStore.Put(ctx, "articles", "1", datastore.Record{"id": "1"}); err != nil {
			t.Fatal(err)
		}

		items, err := mockStore.Query(ctx, &storagemodels.QueryParams{EntityType: "users"})
		if err != nil {
			t.Fatalf("Query failed: %v", err)
		}
		if len(items) != 3 || items[0].ID != "a" || items[2].ID != "c" {
			t.Fatalf("Unexpected query result: %+v", items)
		}

		limit := int32(1)
		all, _ := mockStore.Query(ctx, &storagemodels.QueryParams{Limit: &limit})
		if len(all) != 1 || all[0].EntityType != "articles" {
			t.Fatalf("Unexpected limited result: %+v", all)
		}

		if mockStore.Count() != 4 {
			t.Fatalf("Expected 4 entities, got %d", mockStore.Count())
		}
		mockStore.Clear()
		if mockStore.Count() != 0 {
			t.Fatal("Expected empty store after Clear")
		}
	})

	t.Run("CustomQuery", func(t *testing.T) {
		mockStore := mock.New().WithQueryFunc(func(ctx context.Context, params *storagemodels.QueryParams) ([]storagemodels.Item, error) {
			return []storagemodels.Item{{EntityType: params.EntityType, ID: "x"}}, nil
		})

		items, err := mockStore.Query(ctx, &storagemodels.QueryParams{EntityType: "users"})
		if err != nil || len(items) != 1 || items[0].ID != "x" {
			t.Fatalf("Custom query not used: %+v, %v", items, err)
		}
	})
}

func TestMockStream(t *testing.T) {
	ctx := context.Background()
	mockStore := mock.New()
	for _, id := range []string{"1", "2", "3"} {
		if err := mockStore.Put(ctx, "users", id, datastore.Record{"id": id}); err != nil {
			t.Fatal(err)
		}
	}

	var progress storagemodels.StreamProgress
	results := mockStore.Stream(ctx, &storagemodels.QueryParams{EntityType: "users"},
		storagemodels.WithPageSize(2),
		storagemodels.WithProgressHandler(func(p storagemodels.StreamProgress) { progress = p }),
	)

	var pages []int
	for r := range results {
		if r.Error != nil {
			t.Fatalf("Unexpected stream error: %v", r.Error)
		}
		pages = append(pages, r.Meta.PageNumber)
	}

	if len(pages) != 3 || pages[0] != 1 || pages[2] != 2 {
		t.Fatalf("Unexpected pages: %v", pages)
	}
	if progress.ItemsProcessed != 3 || progress.PagesProcessed != 2 {
		t.Fatalf("Unexpected progress: %+v", progress)
	}
}
