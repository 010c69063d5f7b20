/*
Package registry holds the lookup tables used by entitynorm.

Schema registry:
Maps entity type names to schemas. Later registrations replace earlier ones:

	schemas := registry.NewSchemas(users, comments, articles)
	articles, ok := schemas.Lookup("articles")

Index map registry:
Associates entity types with DynamoDB key patterns used when normalized
entities are persisted:

	registry.RegisterIndexMap("users", map[string]string{
	    "PK": "USER#{ID}",
	    "SK": "USER#{ID}",
	    "GSI1PK": "EMAIL#{email}",
	})

Macros name record fields; {EntityType} and {ID} are always available.
Types without a registered map use DefaultIndexMap.

Both registries are safe for concurrent use.
*/
package registry
