/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ddb

import (
	"context"
	"fmt"
	"maps"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	entityerrors "github.com/suparena/entitynorm/errors"
	"github.com/suparena/entitynorm/registry"
	"github.com/suparena/entitynorm/storagemodels"
)

// Query performs one query page against the table. Without an explicit key
// condition the partition of params.EntityType is queried.
func (d *DynamodbDataStore) Query(ctx context.Context, params *storagemodels.QueryParams) ([]storagemodels.Item, error) {
	input, err := d.queryInput(params)
	if err != nil {
		return nil, err
	}

	out, err := d.client.Query(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("query error: %w", err)
	}

	results := make([]storagemodels.Item, 0, len(out.Items))
	for _, raw := range out.Items {
		item, err := decodeItem(raw)
		if err != nil {
			return nil, err
		}
		results = append(results, item)
	}
	return results, nil
}

// QueryType returns every stored entity of one type, following pagination.
func (d *DynamodbDataStore) QueryType(ctx context.Context, entityType string) ([]storagemodels.Item, error) {
	input, err := d.queryInput(&storagemodels.QueryParams{EntityType: entityType})
	if err != nil {
		return nil, err
	}

	var results []storagemodels.Item
	for {
		out, err := d.client.Query(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("query %s: %w", entityType, err)
		}
		for _, raw := range out.Items {
			item, err := decodeItem(raw)
			if err != nil {
				return nil, err
			}
			results = append(results, item)
		}
		if len(out.LastEvaluatedKey) == 0 {
			return results, nil
		}
		input.ExclusiveStartKey = out.LastEvaluatedKey
	}
}

func (d *DynamodbDataStore) queryInput(params *storagemodels.QueryParams) (*dynamodb.QueryInput, error) {
	if params == nil {
		return nil, entityerrors.NewValidationError("params", "query parameters are required")
	}

	tableName := params.TableName
	if tableName == "" {
		tableName = d.tableName
	}

	keyCondition := params.KeyConditionExpression
	values := maps.Clone(params.ExpressionAttributeValues)
	if keyCondition == "" {
		if params.EntityType == "" {
			return nil, entityerrors.NewValidationError("params", "entity type or key condition is required")
		}
		template := registry.IndexMapFor(params.EntityType)["PK"]
		partition, missing := expandMacros(map[string]string{"PK": template}, params.EntityType, "", nil)
		// an ID macro cannot address a whole partition
		if len(missing) > 0 || partition["PK"] == "" || containsIDMacro(template) {
			return nil, entityerrors.NewValidationError("indexMap",
				fmt.Sprintf("partition key of %s is not derivable from the entity type", params.EntityType))
		}
		keyCondition = "PK = :pk"
		if values == nil {
			values = make(map[string]types.AttributeValue, 1)
		}
		values[":pk"] = &types.AttributeValueMemberS{Value: partition["PK"]}
	}

	return &dynamodb.QueryInput{
		TableName:                 &tableName,
		KeyConditionExpression:    &keyCondition,
		ExpressionAttributeValues: values,
		FilterExpression:          params.FilterExpression,
		IndexName:                 params.IndexName,
		Limit:                     params.Limit,
		ScanIndexForward:          params.ScanIndexForward,
		ExclusiveStartKey:         params.ExclusiveStartKey,
	}, nil
}

func containsIDMacro(template string) bool {
	for _, m := range macroPattern.FindAllStringSubmatch(template, -1) {
		if m[1] == "ID" {
			return true
		}
	}
	return false
}

// decodeItem converts a raw item into an Item using the injected
// EntityType and EntityID attributes.
func decodeItem(raw map[string]types.AttributeValue) (storagemodels.Item, error) {
	var item storagemodels.Item

	attr, ok := raw[AttrEntityType]
	if !ok {
		return item, fmt.Errorf("missing %s attribute in item", AttrEntityType)
	}
	if err := attributevalue.Unmarshal(attr, &item.EntityType); err != nil {
		return item, fmt.Errorf("failed to unmarshal %s: %w", AttrEntityType, err)
	}
	if attr, ok := raw[AttrEntityID]; ok {
		if err := attributevalue.Unmarshal(attr, &item.ID); err != nil {
			return item, fmt.Errorf("failed to unmarshal %s: %w", AttrEntityID, err)
		}
	}

	record, err := decodeRecord(registry.IndexMapFor(item.EntityType), raw)
	if err != nil {
		return item, fmt.Errorf("%s %q: %w", item.EntityType, item.ID, err)
	}
	item.Record = record
	return item, nil
}
