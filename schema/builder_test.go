/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package schema

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/suparena/entitynorm/errors"
)

func TestBuilder(t *testing.T) {
	t.Run("MutualReferences", func(t *testing.T) {
		schemas, err := NewBuilder().
			Declare("users").
			Declare("groups").
			RelateMany("users", "groups", "groups").
			RelateMany("groups", "members", "users").
			RelateOne("groups", "owner", "users").
			Build()
		require.NoError(t, err)
		require.Len(t, schemas, 2)

		users, groups := schemas[0], schemas[1]
		assert.Equal(t, "users", users.Name())
		rel, ok := groups.Relation("members")
		require.True(t, ok)
		assert.Same(t, users, rel.Schema())
		owner, _ := groups.Relation("owner")
		assert.False(t, owner.IsMany())
	})

	t.Run("UnknownTarget", func(t *testing.T) {
		_, err := NewBuilder().Declare("users").RelateOne("users", "manager", "staff").Build()
		assert.True(t, errors.IsSchemaNotFound(err))
	})

	t.Run("UnknownOwner", func(t *testing.T) {
		_, err := NewBuilder().Declare("users").Resolve("posts", "data", FieldValue("kind")).Build()
		assert.True(t, errors.IsSchemaNotFound(err))
	})

	t.Run("DuplicateDeclaration", func(t *testing.T) {
		_, err := NewBuilder().Declare("users").Declare("users").Build()
		assert.True(t, errors.IsAlreadyExists(err))
	})

	t.Run("ManyWithSeveralTargets", func(t *testing.T) {
		_, err := NewBuilder().
			Declare("users").
			Declare("bots").
			RelateMany("users", "friends", "users", "bots").
			Build()
		assert.True(t, errors.IsExpectedSchemaSingle(err))
	})
}

const definitionsYAML = `
schemas:
  - name: users
  - name: comments
    relations:
      user: users
  - name: articles
    idAttribute: slug
    relations:
      author: users
      comments: [comments]
  - name: media
  - name: linkables
    resolvers:
      data:
        field: schema_type
        cases:
          media: media
      extra:
        field: extra_type
`

func TestLoadDefinitions(t *testing.T) {
	schemas, err := LoadDefinitions(strings.NewReader(definitionsYAML))
	require.NoError(t, err)
	require.Len(t, schemas, 5)

	articles := schemas[2]
	assert.Equal(t, "articles", articles.Name())
	assert.Equal(t, []string{"author", "comments"}, articles.RelationNames())
	assert.Equal(t, "my-post", articles.IdentifierValue(map[string]any{"slug": "my-post", "id": 1}))

	comments, _ := articles.Relation("comments")
	assert.True(t, comments.IsMany())
	assert.Equal(t, "comments", comments.Schema().Name())

	linkables := schemas[4]
	assert.Equal(t, []string{"data", "extra"}, linkables.ResolverNames())
	data, _ := linkables.Resolver("data")
	assert.Equal(t, "media", data(Map{"schema_type": "media"}))
	extra, _ := linkables.Resolver("extra")
	assert.Equal(t, "users", extra(Map{"extra_type": "users"}))
}

func TestLoadDefinitionsErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		check func(error) bool
	}{
		{
			name:  "unknown relation target",
			input: "schemas:\n  - name: a\n    relations:\n      b: missing\n",
			check: errors.IsSchemaNotFound,
		},
		{
			name:  "empty to-many",
			input: "schemas:\n  - name: a\n    relations:\n      b: []\n",
			check: errors.IsExpectedSchemaSingle,
		},
		{
			name:  "null relation",
			input: "schemas:\n  - name: a\n    relations:\n      b: ~\n",
			check: errors.IsExpectedSchemaSingle,
		},
		{
			name:  "empty relation",
			input: "schemas:\n  - name: a\n    relations:\n      b:\n",
			check: errors.IsExpectedSchemaSingle,
		},
		{
			name:  "relation as mapping",
			input: "schemas:\n  - name: a\n    relations:\n      b: {x: y}\n",
			check: func(err error) bool { return err != nil && strings.Contains(err.Error(), "relation must be") },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadDefinitions(strings.NewReader(tt.input))
			require.Error(t, err)
			assert.True(t, tt.check(err), "unexpected error: %v", err)
		})
	}
}

func TestDefinitionsIndexMaps(t *testing.T) {
	defs, err := ParseDefinitions(strings.NewReader(`
schemas:
  - name: users
    indexMap:
      PK: "{EntityType}"
      SK: "USER#{ID}"
      PK1: "EMAIL#{email}"
  - name: comments
`))
	require.NoError(t, err)

	assert.Equal(t, map[string]map[string]string{
		"users": {"PK": "{EntityType}", "SK": "USER#{ID}", "PK1": "EMAIL#{email}"},
	}, defs.IndexMaps())

	schemas, err := defs.Builder().Build()
	require.NoError(t, err)
	assert.Len(t, schemas, 2)

	_, err = ParseDefinitionsFile("does-not-exist.yaml")
	assert.Error(t, err)
}
