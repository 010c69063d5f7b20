/*
Package entitynorm flattens nested object graphs into entity tables.

Schemas describe which properties of a record hold other entities. A run
walks the input depth first, replaces every nested entity with its
identifier, and collects each distinct entity once per type, merging
repeated observations field by field. Cyclic graphs terminate.

Basic Usage:

	users := schema.New("users")
	comments := schema.New("comments", schema.WithRelation("user", schema.One(users)))
	articles := schema.New("articles",
	    schema.WithRelation("author", schema.One(users)),
	    schema.WithRelation("comments", schema.Many(comments)),
	)

	n, err := entitynorm.New([]*schema.Entity{users, comments, articles})
	out, err := n.Normalize(article, "articles")
	// out.Result == "123"
	// out.Entities["users"]["8472"] == map[string]any{"id": "8472", "name": "Paul"}

Schemas can also be declared in YAML and loaded with schema.LoadDefinitions.

Persistence:

The entity tables of an Output can be written to any datastore.DataStore,
in memory or DynamoDB single-table:

	sm := entitynorm.NewStorageManager(store)
	written, err := entitynorm.Persist(ctx, out, sm)
*/
package entitynorm
