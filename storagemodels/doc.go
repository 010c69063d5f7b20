/*
Package storagemodels defines the data structures shared by entitynorm datastores.

Key Types:

Item:
A stored entity record, addressed by entity type and stringified identifier.

QueryParams:
Parameters for listing stored entities:

	params := &QueryParams{
	    EntityType: "users",
	    Limit:      aws.Int32(100),
	}

DynamoDB-specific fields (KeyConditionExpression, IndexName, ...) refine the
query for the ddb backend.

StreamResult:
Results from streaming operations with metadata:

	type StreamResult struct {
	    Item  Item                            // The decoded entity
	    Raw   map[string]types.AttributeValue // Raw DynamoDB attributes
	    Error error                           // Item-specific error, if any
	    Meta  StreamMeta                      // Metadata about this item
	}

StreamOptions:
Configuration for streaming behavior:

	opts := []StreamOption{
	    WithBufferSize(100),
	    WithPageSize(25),
	    WithMaxRetries(3),
	    WithProgressHandler(progressFunc),
	}
*/
package storagemodels
