/*
Package ddb provides a DynamoDB implementation of the DataStore interface.

Normalized entities share one table. Each entity type has an index map in
the registry package whose templates are expanded into key attributes on
every write:

	registry.RegisterIndexMap("users", map[string]string{
	    "PK":  "{EntityType}",          // Becomes "users"
	    "SK":  "{EntityType}#{ID}",     // Becomes "users#123"
	    "PK1": "EMAIL#{email}",         // Record field value, for GSI1
	})

Types without a registered map use registry.DefaultIndexMap. Stored items
also carry EntityType, EntityID and NormalizedAt attributes; these and the
key attributes are stripped again on read.

Streaming:

	results := store.Stream(ctx, &storagemodels.QueryParams{EntityType: "users"},
	    storagemodels.WithPageSize(25),
	    storagemodels.WithMaxRetries(3),
	    storagemodels.WithProgressHandler(func(p storagemodels.StreamProgress) {
	        log.Printf("Processed %d items", p.ItemsProcessed)
	    }),
	)

Secondary index lookups:

	items, err := store.QueryGSI("users").Where("email", "a@b.c").Execute(ctx)
*/
package ddb
