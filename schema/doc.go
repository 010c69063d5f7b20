/*
Package schema describes entity types for normalization.

An Entity names a type, says how its identifier is extracted, how its raw
records are read, and which properties hold nested entities:

	users := schema.New("users")
	comments := schema.New("comments", schema.WithRelation("user", schema.One(users)))
	articles := schema.New("articles",
	    schema.WithRelation("author", schema.One(users)),
	    schema.WithRelation("comments", schema.Many(comments)),
	)

Self-referential schemas are wired after construction:

	users.AddRelation("friends", schema.Many(users))

or declared in two phases with a Builder, which is also what YAML definitions
compile to:

	schemas, err := schema.NewBuilder().
	    Declare("users").
	    RelateMany("users", "friends", "users").
	    Build()

Dynamic resolvers pick the schema of a property from sibling fields of the
original record:

	linkables.AddResolvers(map[string]schema.Resolver{
	    "data": schema.SwitchOn("schema_type", map[string]string{"media": "media", "lists": "lists"}),
	})

Records are read through the schema Accessor. FieldAccess (the default) reads
maps and structs; KeyedAccess reads values implementing Record.
*/
package schema
