/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ddb

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"regexp"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	sdk "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/go-openapi/strfmt"

	"github.com/suparena/entitynorm/datastore"
	entityerrors "github.com/suparena/entitynorm/errors"
	"github.com/suparena/entitynorm/registry"
)

// Attributes injected into every stored item and stripped on read.
const (
	AttrEntityType   = "EntityType"
	AttrEntityID     = "EntityID"
	AttrNormalizedAt = "NormalizedAt"
)

// API is the subset of the DynamoDB client used by the datastore.
type API interface {
	GetItem(ctx context.Context, params *sdk.GetItemInput, optFns ...func(*sdk.Options)) (*sdk.GetItemOutput, error)
	PutItem(ctx context.Context, params *sdk.PutItemInput, optFns ...func(*sdk.Options)) (*sdk.PutItemOutput, error)
	DeleteItem(ctx context.Context, params *sdk.DeleteItemInput, optFns ...func(*sdk.Options)) (*sdk.DeleteItemOutput, error)
	Query(ctx context.Context, params *sdk.QueryInput, optFns ...func(*sdk.Options)) (*sdk.QueryOutput, error)
}

// DynamodbDataStore implements datastore.DataStore on a single DynamoDB table.
// Keys come from the index map registered for the entity type.
type DynamodbDataStore struct {
	client    API
	tableName string
	now       func() time.Time
}

var macroPattern = regexp.MustCompile(`{([^}]+)}`)

// expandMacros fills every template of indexMap. EntityType and ID resolve to
// the given key; any other macro reads the attribute of the same name.
// The second result lists the macros that could not be resolved.
func expandMacros(indexMap map[string]string, entityType, id string, av map[string]types.AttributeValue) (map[string]string, []string) {
	res := make(map[string]string, len(indexMap))
	var missing []string

	for fieldName, template := range indexMap {
		expanded := macroPattern.ReplaceAllStringFunc(template, func(macro string) string {
			key := strings.Trim(macro, "{}")

			switch key {
			case "EntityType":
				return entityType
			case "ID":
				return id
			}

			val, ok := av[key]
			if !ok {
				missing = append(missing, key)
				return ""
			}

			switch tv := val.(type) {
			case *types.AttributeValueMemberS:
				return tv.Value
			case *types.AttributeValueMemberN:
				return tv.Value
			case *types.AttributeValueMemberBOOL:
				return fmt.Sprintf("%v", tv.Value)
			default:
				// NULL, binary, sets, lists and maps do not make keys
				missing = append(missing, key)
				return ""
			}
		})
		res[fieldName] = expanded
	}

	return res, missing
}

// NewDynamoDBClient initializes a DynamoDB client. Empty keys fall back to
// the default AWS credential chain.
func NewDynamoDBClient(awsAccessKey, awsSecretKey, awsRegion string, optFns ...func(*sdk.Options)) (*sdk.Client, error) {
	loadOpts := []func(*config.LoadOptions) error{config.WithRegion(awsRegion)}
	if awsAccessKey != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(awsAccessKey, awsSecretKey, ""),
		))
	}

	cfg, err := config.LoadDefaultConfig(context.TODO(), loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
	}

	return sdk.NewFromConfig(cfg, optFns...), nil
}

// WithEndpoint points the client at a custom endpoint such as DynamoDB Local.
func WithEndpoint(endpoint string) func(*sdk.Options) {
	return func(o *sdk.Options) {
		if endpoint != "" {
			o.BaseEndpoint = &endpoint
		}
	}
}

// NewDynamodbDataStore constructs a datastore backed by a new client.
func NewDynamodbDataStore(awsAccessKey, awsSecretKey, awsRegion, awsDDBTableName string, optFns ...func(*sdk.Options)) (*DynamodbDataStore, error) {
	client, err := NewDynamoDBClient(awsAccessKey, awsSecretKey, awsRegion, optFns...)
	if err != nil {
		return nil, fmt.Errorf("failed to create DynamoDB client: %w", err)
	}
	return NewWithClient(client, awsDDBTableName), nil
}

// NewWithClient constructs a datastore over an existing client.
func NewWithClient(client API, tableName string) *DynamodbDataStore {
	return &DynamodbDataStore{
		client:    client,
		tableName: tableName,
		now:       time.Now,
	}
}

// TableName returns the table the datastore writes to.
func (d *DynamodbDataStore) TableName() string {
	return d.tableName
}

// GetOne retrieves one entity record.
func (d *DynamodbDataStore) GetOne(ctx context.Context, entityType, id string) (datastore.Record, error) {
	indexMap := registry.IndexMapFor(entityType)
	keyMap, err := tableKey(indexMap, entityType, id)
	if err != nil {
		return nil, err
	}

	out, err := d.client.GetItem(ctx, &sdk.GetItemInput{
		TableName: &d.tableName,
		Key:       keyMap,
	})
	if err != nil {
		return nil, fmt.Errorf("GetItem error: %w", err)
	}
	if len(out.Item) == 0 {
		return nil, entityerrors.NewNotFoundError(entityType, id)
	}

	return decodeRecord(indexMap, out.Item)
}

// Put stores an entity record. Every entry of the index map is expanded and
// stored alongside the record fields, so secondary index keys are kept
// current on each write.
func (d *DynamodbDataStore) Put(ctx context.Context, entityType, id string, record datastore.Record) error {
	if entityType == "" || id == "" {
		return entityerrors.NewValidationError("key", "entity type and id are required")
	}

	av, err := attributevalue.MarshalMap(record)
	if err != nil {
		return fmt.Errorf("failed to marshal %s %q: %w", entityType, id, err)
	}

	expanded, missing := expandMacros(registry.IndexMapFor(entityType), entityType, id, av)
	if len(missing) > 0 {
		return entityerrors.NewValidationError("indexMap",
			fmt.Sprintf("unresolved macros %v for %s %q", missing, entityType, id))
	}

	for k, v := range expanded {
		av[k] = &types.AttributeValueMemberS{Value: v}
	}
	av[AttrEntityType] = &types.AttributeValueMemberS{Value: entityType}
	av[AttrEntityID] = &types.AttributeValueMemberS{Value: id}
	av[AttrNormalizedAt] = &types.AttributeValueMemberS{Value: strfmt.DateTime(d.now()).String()}

	_, err = d.client.PutItem(ctx, &sdk.PutItemInput{
		TableName: &d.tableName,
		Item:      av,
	})
	if err != nil {
		return fmt.Errorf("PutItem failed: %w", err)
	}
	return nil
}

// Delete removes an entity record.
func (d *DynamodbDataStore) Delete(ctx context.Context, entityType, id string) error {
	keyMap, err := tableKey(registry.IndexMapFor(entityType), entityType, id)
	if err != nil {
		return err
	}

	_, err = d.client.DeleteItem(ctx, &sdk.DeleteItemInput{
		TableName: &d.tableName,
		Key:       keyMap,
	})
	if err != nil {
		var cfe *types.ConditionalCheckFailedException
		if errors.As(err, &cfe) {
			return entityerrors.NewConditionFailedError("delete", cfe.ErrorMessage())
		}
		return fmt.Errorf("failed to delete item in DynamoDB: %w", err)
	}
	return nil
}

// tableKey builds the primary key of an item from the PK and SK templates.
func tableKey(indexMap map[string]string, entityType, id string) (map[string]types.AttributeValue, error) {
	keyTemplates := map[string]string{"PK": indexMap["PK"], "SK": indexMap["SK"]}
	expanded, missing := expandMacros(keyTemplates, entityType, id, nil)
	if len(missing) > 0 {
		return nil, entityerrors.NewValidationError("indexMap",
			fmt.Sprintf("key of %s needs record fields %v", entityType, missing))
	}
	return buildKeyFromExpanded(expanded)
}

// buildKeyFromExpanded builds a DynamoDB key from the expanded index map.
// It assumes that the expanded map has valid non-empty values for "PK" and "SK".
func buildKeyFromExpanded(expanded map[string]string) (map[string]types.AttributeValue, error) {
	pk, okPK := expanded["PK"]
	sk, okSK := expanded["SK"]

	if !okPK || !okSK || pk == "" || sk == "" {
		return nil, entityerrors.NewValidationError("indexMap", "expanded index map missing valid PK or SK")
	}

	return map[string]types.AttributeValue{
		"PK": &types.AttributeValueMemberS{Value: pk},
		"SK": &types.AttributeValueMemberS{Value: sk},
	}, nil
}

// decodeRecord unmarshals an item, dropping the key and injected attributes.
func decodeRecord(indexMap map[string]string, item map[string]types.AttributeValue) (datastore.Record, error) {
	fields := maps.Clone(item)
	for k := range indexMap {
		delete(fields, k)
	}
	delete(fields, AttrEntityType)
	delete(fields, AttrEntityID)
	delete(fields, AttrNormalizedAt)

	record := make(datastore.Record, len(fields))
	if err := attributevalue.UnmarshalMap(fields, &record); err != nil {
		return nil, fmt.Errorf("failed to unmarshal item: %w", err)
	}
	return record, nil
}
