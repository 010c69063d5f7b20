/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ddb

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	entityerrors "github.com/suparena/entitynorm/errors"
	"github.com/suparena/entitynorm/registry"
	"github.com/suparena/entitynorm/storagemodels"
)

// GSIQueryBuilder looks up entities of one type through a secondary index.
// Key values are produced by expanding the type's index map templates, the
// same way Put stores them.
type GSIQueryBuilder struct {
	store      *DynamodbDataStore
	entityType string
	indexName  string
	values     map[string]any
	skPrefix   string
	limit      *int32
}

// QueryGSI creates a new GSI query builder for an entity type
func (d *DynamodbDataStore) QueryGSI(entityType string) *GSIQueryBuilder {
	return &GSIQueryBuilder{
		store:      d,
		entityType: entityType,
		values:     make(map[string]any),
	}
}

// OnIndex selects the index. By default the first index the entity type's
// index map writes a key for is used.
func (q *GSIQueryBuilder) OnIndex(indexName string) *GSIQueryBuilder {
	q.indexName = indexName
	return q
}

// Where supplies a field value used by the partition key template
func (q *GSIQueryBuilder) Where(field string, value any) *GSIQueryBuilder {
	q.values[field] = value
	return q
}

// WithSortKeyPrefix restricts the sort key with begins_with
func (q *GSIQueryBuilder) WithSortKeyPrefix(prefix string) *GSIQueryBuilder {
	q.skPrefix = prefix
	return q
}

// WithLimit sets the query limit
func (q *GSIQueryBuilder) WithLimit(limit int32) *GSIQueryBuilder {
	q.limit = aws.Int32(limit)
	return q
}

// Build constructs the final query parameters
func (q *GSIQueryBuilder) Build() (*storagemodels.QueryParams, error) {
	indexMap := registry.IndexMapFor(q.entityType)

	indexName := q.indexName
	if indexName == "" {
		indexes := IndexesFor(indexMap)
		if len(indexes) == 0 {
			return nil, entityerrors.NewValidationError("indexMap",
				fmt.Sprintf("%s has no secondary index keys", q.entityType))
		}
		indexName = indexes[0]
	}

	gsi, ok := GetGSIConfig(indexName)
	if !ok {
		return nil, entityerrors.NewValidationError("indexName", fmt.Sprintf("unknown index %q", indexName))
	}

	template, ok := indexMap[gsi.PartitionKeyName]
	if !ok {
		return nil, entityerrors.NewValidationError("indexMap",
			fmt.Sprintf("%s has no %s template", q.entityType, gsi.PartitionKeyName))
	}

	av, err := attributevalue.MarshalMap(q.values)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal key values: %w", err)
	}
	expanded, missing := expandMacros(map[string]string{gsi.PartitionKeyName: template}, q.entityType, "", av)
	if len(missing) > 0 {
		return nil, entityerrors.NewValidationError(gsi.PartitionKeyName, fmt.Sprintf("missing values for %v", missing))
	}

	keyCondition := gsi.PartitionKeyName + " = :pk"
	values := map[string]types.AttributeValue{
		":pk": &types.AttributeValueMemberS{Value: expanded[gsi.PartitionKeyName]},
	}
	if q.skPrefix != "" {
		keyCondition += " AND begins_with(" + gsi.SortKeyName + ", :sk)"
		values[":sk"] = &types.AttributeValueMemberS{Value: q.skPrefix}
	}

	return &storagemodels.QueryParams{
		EntityType:                q.entityType,
		TableName:                 q.store.tableName,
		KeyConditionExpression:    keyCondition,
		ExpressionAttributeValues: values,
		IndexName:                 aws.String(gsi.IndexName),
		Limit:                     q.limit,
	}, nil
}

// Execute runs the query and returns results
func (q *GSIQueryBuilder) Execute(ctx context.Context) ([]storagemodels.Item, error) {
	params, err := q.Build()
	if err != nil {
		return nil, err
	}
	return q.store.Query(ctx, params)
}

// Stream executes the query as a stream
func (q *GSIQueryBuilder) Stream(ctx context.Context, opts ...storagemodels.StreamOption) <-chan storagemodels.StreamResult {
	params, err := q.Build()
	if err != nil {
		ch := make(chan storagemodels.StreamResult, 1)
		ch <- storagemodels.StreamResult{Error: fmt.Errorf("failed to build query: %w", err)}
		close(ch)
		return ch
	}
	return q.store.Stream(ctx, params, opts...)
}
