/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package process

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/suparena/entitynorm/errors"
	"github.com/suparena/entitynorm/registry"
	"github.com/suparena/entitynorm/schema"
)

func run(t *testing.T, input any, root string, schemas ...*schema.Entity) *Output {
	t.Helper()
	out, err := New(input, root, registry.NewSchemas(schemas...)).Run()
	require.NoError(t, err)
	return out
}

func blogSchemas() (users, comments, articles *schema.Entity) {
	users = schema.New("users")
	comments = schema.New("comments", schema.WithRelation("user", schema.One(users)))
	articles = schema.New("articles",
		schema.WithRelation("author", schema.One(users)),
		schema.WithRelation("comments", schema.Many(comments)),
	)
	return users, comments, articles
}

func blogPost() map[string]any {
	return map[string]any{
		"id":    "123",
		"title": "A Great Article",
		"author": map[string]any{
			"id":   "8472",
			"name": "Paul",
		},
		"body": "This article is great.",
		"comments": []any{
			map[string]any{
				"id":      "comment-123-4738",
				"comment": "I like it!",
				"user": map[string]any{
					"id":   "10293",
					"name": "Jane",
				},
			},
		},
	}
}

func TestNormalizeSequence(t *testing.T) {
	out := run(t, []any{
		map[string]any{"id": 1, "type": "foo"},
		map[string]any{"id": 2, "type": "bar"},
	}, "test", schema.New("test"))

	assert.Equal(t, []any{1, 2}, out.Result)
	assert.Equal(t, Entities{
		"test": {
			"1": map[string]any{"id": 1, "type": "foo"},
			"2": map[string]any{"id": 2, "type": "bar"},
		},
	}, out.Entities)
	assert.Empty(t, out.Diagnostics)
}

func TestNormalizeTypedSequencePreservesOrder(t *testing.T) {
	input := []map[string]any{{"id": "c"}, {"id": "a"}, {"id": "b"}, {"id": "a"}}
	out := run(t, input, "letters", schema.New("letters"))

	assert.Equal(t, []any{"c", "a", "b", "a"}, out.Result)
	assert.Len(t, out.Entities["letters"], 3)
}

func TestNormalizeSelfReference(t *testing.T) {
	users := schema.New("users")
	require.NoError(t, users.AddRelation("friends", schema.Many(users)))

	input := map[string]any{"id": 123}
	input["friends"] = []any{input}

	out := run(t, input, "users", users)

	assert.Equal(t, 123, out.Result)
	assert.Equal(t, Entities{
		"users": {"123": map[string]any{"id": 123, "friends": []any{123}}},
	}, out.Entities)
}

func TestNormalizeSelfReferenceInSequence(t *testing.T) {
	users := schema.New("users")
	require.NoError(t, users.AddRelation("friends", schema.Many(users)))

	input := map[string]any{"id": 123}
	input["friends"] = []any{input}

	out := run(t, []any{input, map[string]any{"id": 897, "friends": []any{}}}, "users", users)

	assert.Equal(t, []any{123, 897}, out.Result)
	assert.Equal(t, Entities{
		"users": {
			"123": map[string]any{"id": 123, "friends": []any{123}},
			"897": map[string]any{"id": 897, "friends": []any{}},
		},
	}, out.Entities)
}

func TestNormalizeMutualReference(t *testing.T) {
	schemas, err := schema.NewBuilder().
		Declare("users").
		Declare("teams").
		RelateOne("users", "team", "teams").
		RelateMany("teams", "members", "users").
		Build()
	require.NoError(t, err)

	team := map[string]any{"id": "t1", "name": "core"}
	alice := map[string]any{"id": "u1", "team": team}
	bob := map[string]any{"id": "u2", "team": team}
	team["members"] = []any{alice, bob}

	out := run(t, alice, "users", schemas...)

	assert.Equal(t, "u1", out.Result)
	assert.Equal(t, map[string]any{"id": "u1", "team": "t1"}, out.Entities["users"]["u1"])
	assert.Equal(t, map[string]any{"id": "u2", "team": "t1"}, out.Entities["users"]["u2"])
	assert.Equal(t, map[string]any{"id": "t1", "name": "core", "members": []any{"u1", "u2"}}, out.Entities["teams"]["t1"])
}

func TestNormalizeNested(t *testing.T) {
	users, comments, articles := blogSchemas()

	out := run(t, blogPost(), "articles", users, comments, articles)

	assert.Equal(t, "123", out.Result)
	assert.Equal(t, Entities{
		"users": {
			"8472":  map[string]any{"id": "8472", "name": "Paul"},
			"10293": map[string]any{"id": "10293", "name": "Jane"},
		},
		"comments": {
			"comment-123-4738": map[string]any{"id": "comment-123-4738", "comment": "I like it!", "user": "10293"},
		},
		"articles": {
			"123": map[string]any{
				"id":       "123",
				"title":    "A Great Article",
				"body":     "This article is great.",
				"author":   "8472",
				"comments": []any{"comment-123-4738"},
			},
		},
	}, out.Entities)
}

func TestNormalizeReconstructsTopLevelFields(t *testing.T) {
	users, comments, articles := blogSchemas()
	input := blogPost()

	out := run(t, input, "articles", users, comments, articles)

	stored, ok := out.Entities.Get("articles", "123")
	require.True(t, ok)
	record := stored.(map[string]any)
	for key, value := range input {
		if _, related := articles.Relation(key); related {
			continue
		}
		assert.Equal(t, value, record[key], key)
	}
}

func TestNormalizeDoesNotModifyInput(t *testing.T) {
	users, comments, articles := blogSchemas()
	input := blogPost()
	before := blogPost()

	run(t, input, "articles", users, comments, articles)

	assert.Equal(t, before, input)
}

func TestNormalizePassesOverIdentifiers(t *testing.T) {
	users := schema.New("users")
	articles := schema.New("articles", schema.WithRelation("author", schema.One(users)))

	out := run(t, map[string]any{"id": "123", "title": "normalizr is great!", "author": 1}, "articles", users, articles)

	assert.Equal(t, "123", out.Result)
	assert.Equal(t, Entities{
		"articles": {"123": map[string]any{"id": "123", "title": "normalizr is great!", "author": 1}},
	}, out.Entities)
}

func TestNormalizeFromModelIsIdempotentOnIdentifiers(t *testing.T) {
	users := schema.New("users")
	p := New(nil, "users", registry.NewSchemas(users))

	for _, id := range []any{42, "42", nil, true} {
		got, err := p.normalizeFromModel(id, users)
		require.NoError(t, err)
		assert.Equal(t, id, got)
	}
	assert.Empty(t, p.store.entities)
}

func TestNormalizeToManyCoercion(t *testing.T) {
	tags := schema.New("tags")
	posts := schema.New("posts", schema.WithRelation("tags", schema.Many(tags)))

	out := run(t, []any{
		map[string]any{"id": 1, "tags": map[string]any{"id": "go"}},
		map[string]any{"id": 2, "tags": nil},
		map[string]any{"id": 3},
		map[string]any{"id": 4, "tags": []any{"go", map[string]any{"id": "db"}}},
	}, "posts", posts, tags)

	assert.Equal(t, []any{"go"}, out.Entities["posts"]["1"].(map[string]any)["tags"])
	assert.Equal(t, []any{}, out.Entities["posts"]["2"].(map[string]any)["tags"])
	assert.Equal(t, []any{}, out.Entities["posts"]["3"].(map[string]any)["tags"])
	assert.Equal(t, []any{"go", "db"}, out.Entities["posts"]["4"].(map[string]any)["tags"])
	assert.Len(t, out.Entities["tags"], 2)
}

func TestNormalizeMissingRelations(t *testing.T) {
	users := schema.New("users")
	tags := schema.New("tags")
	posts := schema.New("posts",
		schema.WithRelation("author", schema.One(users)),
		schema.WithRelation("tags", schema.Many(tags)),
	)

	out := run(t, map[string]any{"id": 1}, "posts", posts, users, tags)

	assert.Equal(t, map[string]any{"id": 1, "tags": []any{}}, out.Entities["posts"]["1"])
}

func TestNormalizeMergesObservations(t *testing.T) {
	users := schema.New("users")
	comments := schema.New("comments", schema.WithRelation("user", schema.One(users)))

	out := run(t, []any{
		map[string]any{"id": "c1", "user": map[string]any{"id": "u1", "name": "Jane", "email": "jane@example.com"}},
		map[string]any{"id": "c2", "user": map[string]any{"id": "u1", "name": "Jane Doe", "avatar": "jane.png"}},
	}, "comments", users, comments)

	assert.Equal(t, map[string]any{
		"id":     "u1",
		"name":   "Jane Doe",
		"email":  "jane@example.com",
		"avatar": "jane.png",
	}, out.Entities["users"]["u1"])
}

func TestNormalizeCustomIdentifier(t *testing.T) {
	t.Run("Attribute", func(t *testing.T) {
		children := schema.New("children")
		mine := schema.New("mySchema",
			schema.WithIDAttribute("uuid"),
			schema.WithRelation("children", schema.Many(children)),
		)

		out := run(t, map[string]any{
			"uuid":     "1234",
			"name":     "tacos",
			"children": []any{map[string]any{"id": 4, "name": "lettuce"}},
		}, "mySchema", mine, children)

		assert.Equal(t, "1234", out.Result)
		assert.Equal(t, Entities{
			"children": {"4": map[string]any{"id": 4, "name": "lettuce"}},
			"mySchema": {"1234": map[string]any{"uuid": "1234", "name": "tacos", "children": []any{4}}},
		}, out.Entities)
	})

	t.Run("UsesRawInputWhenFlatteningHidesIdentifier", func(t *testing.T) {
		var calls []any
		users := schema.New("users")
		recommendations := schema.New("recommendations",
			schema.WithRelation("user", schema.One(users)),
			schema.WithIdentifier(func(r schema.Getter) any {
				u, _ := r.Get("user")
				calls = append(calls, u)
				nested, ok := u.(map[string]any)
				if !ok {
					return nil
				}
				return nested["id"]
			}),
		)

		out := run(t, map[string]any{"user": map[string]any{"id": "456"}}, "recommendations", users, recommendations)

		assert.Equal(t, "456", out.Result)
		assert.Equal(t, Entities{
			"recommendations": {"456": map[string]any{"user": "456"}},
			"users":           {"456": map[string]any{"id": "456"}},
		}, out.Entities)
		assert.Equal(t, []any{"456", map[string]any{"id": "456"}, map[string]any{"id": "456"}}, calls)
	})
}

func TestNormalizeDropsEntitiesWithoutIdentifier(t *testing.T) {
	users := schema.New("users")
	posts := schema.New("posts", schema.WithRelation("author", schema.One(users)))

	out := run(t, map[string]any{"id": "p1", "author": map[string]any{"name": "anonymous"}}, "posts", posts, users)

	assert.Equal(t, "p1", out.Result)
	assert.NotContains(t, out.Entities, "users")
	assert.Nil(t, out.Entities["posts"]["p1"].(map[string]any)["author"])
}

func TestNormalizeDynamicResolvers(t *testing.T) {
	linkables := schema.New("linkables")
	media := schema.New("media")
	lists := schema.New("lists")
	linkables.AddResolvers(map[string]schema.Resolver{
		"data": schema.SwitchOn("schema_type", map[string]string{"media": "media", "lists": "lists"}),
	})

	t.Run("Resolved", func(t *testing.T) {
		out := run(t, map[string]any{
			"id":          1,
			"module_type": "article",
			"schema_type": "media",
			"data":        map[string]any{"id": 2, "url": "catimage.jpg"},
		}, "linkables", linkables, media, lists)

		assert.Equal(t, 1, out.Result)
		assert.Equal(t, Entities{
			"linkables": {"1": map[string]any{"id": 1, "module_type": "article", "schema_type": "media", "data": 2}},
			"media":     {"2": map[string]any{"id": 2, "url": "catimage.jpg"}},
		}, out.Entities)
		assert.Empty(t, out.Diagnostics)
	})

	t.Run("NoSchemaSelected", func(t *testing.T) {
		data := map[string]any{"id": 2}
		out := run(t, map[string]any{"id": 1, "schema_type": "video", "data": data}, "linkables", linkables, media, lists)

		assert.Equal(t, data, out.Entities["linkables"]["1"].(map[string]any)["data"])
		assert.Empty(t, out.Diagnostics)
	})

	t.Run("UnknownSchemaIsDiagnosed", func(t *testing.T) {
		data := map[string]any{"id": 2, "url": "catimage.jpg"}
		out := run(t, map[string]any{"id": 1, "schema_type": "lists", "data": data}, "linkables", linkables, media)

		assert.Equal(t, data, out.Entities["linkables"]["1"].(map[string]any)["data"])
		assert.NotContains(t, out.Entities, "lists")
		require.Len(t, out.Diagnostics, 1)
		assert.Equal(t, Diagnostic{
			Schema:   "linkables",
			Property: "data",
			Resolved: "lists",
			Message:  `schema "lists" not found for property "data"`,
		}, out.Diagnostics[0])
	})
}

func TestNormalizeRelationOverridesResolver(t *testing.T) {
	users := schema.New("users")
	bots := schema.New("bots")
	posts := schema.New("posts", schema.WithRelation("owner", schema.One(users)))
	posts.AddResolvers(map[string]schema.Resolver{"owner": schema.FieldValue("owner_type")})

	out := run(t, map[string]any{"id": 1, "owner_type": "bots", "owner": map[string]any{"id": "b1"}}, "posts", users, bots, posts)

	assert.Equal(t, "b1", out.Entities["posts"]["1"].(map[string]any)["owner"])
	assert.Contains(t, out.Entities, "bots")
}

type user struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type comment struct {
	ID      string `json:"id"`
	Comment string `json:"comment"`
	User    *user  `json:"user"`
}

type article struct {
	ID       string     `json:"id"`
	Title    string     `json:"title"`
	Body     string     `json:"body"`
	Author   *user      `json:"author"`
	Comments []*comment `json:"comments"`
}

func classArticle() *article {
	return &article{
		ID:     "123",
		Title:  "A Great Article",
		Body:   "This article is great.",
		Author: &user{ID: "8472", Name: "Paul"},
		Comments: []*comment{
			{ID: "comment-123-4738", Comment: "I like it!", User: &user{ID: "10293", Name: "Jane"}},
		},
	}
}

func TestNormalizeStructs(t *testing.T) {
	users, comments, articles := blogSchemas()

	out := run(t, classArticle(), "articles", users, comments, articles)

	assert.Equal(t, "123", out.Result)
	assert.Equal(t, map[string]any{"id": "8472", "name": "Paul"}, out.Entities["users"]["8472"])
	assert.Equal(t, map[string]any{"id": "comment-123-4738", "comment": "I like it!", "user": "10293"}, out.Entities["comments"]["comment-123-4738"])
	assert.Equal(t, map[string]any{
		"id":       "123",
		"title":    "A Great Article",
		"body":     "This article is great.",
		"author":   "8472",
		"comments": []any{"comment-123-4738"},
	}, out.Entities["articles"]["123"])
}

func TestNormalizeWithFactory(t *testing.T) {
	users := schema.New("users", schema.WithFactory(schema.DecodeAs[user]()))
	comments := schema.New("comments",
		schema.WithRelation("user", schema.One(users)),
		schema.WithFactory(func(fields map[string]any) (any, error) {
			return &struct {
				ID   string
				User string
			}{ID: fields["id"].(string), User: fields["user"].(string)}, nil
		}),
	)

	out := run(t, []any{
		&comment{ID: "c1", User: &user{ID: "u1", Name: "Jane"}},
		&comment{ID: "c2", User: &user{ID: "u1"}},
	}, "comments", users, comments)

	require.IsType(t, &user{}, out.Entities["users"]["u1"])
	assert.Equal(t, &user{ID: "u1", Name: ""}, out.Entities["users"]["u1"], "later observations override earlier fields")
	assert.Equal(t, "u1", out.Entities["comments"]["c2"].(*struct {
		ID   string
		User string
	}).User)
}

type keyedRecord struct {
	values map[string]any
}

func (k *keyedRecord) Get(key string) (any, bool) {
	v, ok := k.values[key]
	return v, ok
}

func (k *keyedRecord) Keys() []string {
	return schema.Map(k.values).Keys()
}

func TestNormalizeKeyedRecords(t *testing.T) {
	users := schema.New("users", schema.WithAccessor(schema.KeyedAccess{}))
	require.NoError(t, users.AddRelation("manager", schema.One(users)))

	boss := &keyedRecord{values: map[string]any{"id": "u1"}}
	boss.values["manager"] = boss
	staff := &keyedRecord{values: map[string]any{"id": "u2", "manager": boss}}

	out := run(t, staff, "users", users)

	assert.Equal(t, "u2", out.Result)
	assert.Equal(t, Entities{
		"users": {
			"u1": map[string]any{"id": "u1", "manager": "u1"},
			"u2": map[string]any{"id": "u2", "manager": "u1"},
		},
	}, out.Entities)
}

func TestNormalizeDistinctRecordsWithEqualFields(t *testing.T) {
	nodes := schema.New("nodes")
	require.NoError(t, nodes.AddRelation("next", schema.One(nodes)))

	tail := map[string]any{"id": "n1", "v": 2}
	head := map[string]any{"id": "n1", "v": 1, "next": tail}

	out := run(t, head, "nodes", nodes)

	// The tail is a different record, so it is normalized and merged, then
	// overridden by the head which is stored last.
	assert.Equal(t, map[string]any{"id": "n1", "v": 1, "next": "n1"}, out.Entities["nodes"]["n1"])
}

func TestRunErrors(t *testing.T) {
	test := schema.New("test")

	tests := []struct {
		name  string
		input any
		root  string
		check func(error) bool
	}{
		{name: "unknown root schema", input: map[string]any{}, root: "unknownSchema", check: errors.IsSchemaNotFound},
		{name: "nil input", input: nil, root: "test", check: errors.IsUnexpectedInput},
		{name: "int input", input: 42, root: "test", check: errors.IsUnexpectedInput},
		{name: "string input", input: "42", root: "test", check: errors.IsUnexpectedInput},
		{name: "func input", input: func() {}, root: "test", check: errors.IsUnexpectedInput},
		{name: "nil element", input: []any{nil}, root: "test", check: errors.IsUnexpectedInput},
		{name: "bool element", input: []any{false}, root: "test", check: errors.IsUnexpectedInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.input, tt.root, registry.NewSchemas(test)).Run()
			require.Error(t, err)
			assert.True(t, tt.check(err), "unexpected error: %v", err)
		})
	}
}

type nilLookup struct{}

func (nilLookup) Lookup(string) (*schema.Entity, bool) { return nil, true }

func TestRunRejectsNilSchema(t *testing.T) {
	_, err := New(map[string]any{"id": 1}, "test", nilLookup{}).Run()
	assert.True(t, errors.IsUnexpectedModel(err))
}

func TestFactoryErrorAbortsRun(t *testing.T) {
	users := schema.New("users", schema.WithFactory(func(map[string]any) (any, error) {
		return nil, errors.NewValidationError("name", "required")
	}))

	_, err := New(map[string]any{"id": 1}, "users", registry.NewSchemas(users)).Run()
	require.Error(t, err)
	assert.True(t, errors.IsValidationError(err))
	assert.Contains(t, err.Error(), `users "1"`)
}
