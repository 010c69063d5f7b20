/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package storagemodels

import (
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// Item is a stored entity record.
type Item struct {
	// EntityType is the schema name the record was normalized under.
	EntityType string
	// ID is the stringified identifier.
	ID string
	// Record holds the flattened fields.
	Record map[string]any
}

// QueryParams defines parameters for listing stored entities.
// EntityType alone is enough for every backend; the DynamoDB fields refine
// or replace the generated key condition.
type QueryParams struct {
	// EntityType restricts results to one entity type.
	EntityType string
	// Limit defines an optional limit per query page.
	Limit *int32

	// TableName overrides the table of the datastore.
	TableName string
	// KeyConditionExpression replaces the key condition derived from EntityType.
	KeyConditionExpression string
	// FilterExpression is an optional filter expression.
	FilterExpression *string
	// ExpressionAttributeValues contains the values for expression placeholders.
	ExpressionAttributeValues map[string]types.AttributeValue
	// IndexName is optional if you wish to query a secondary index.
	IndexName *string
	// ExclusiveStartKey for pagination
	ExclusiveStartKey map[string]types.AttributeValue
	// ScanIndexForward specifies the order for index traversal.
	// If true (default), traversal is in ascending order.
	// If false, traversal is in descending order.
	ScanIndexForward *bool
}
