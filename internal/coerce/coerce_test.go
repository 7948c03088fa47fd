package coerce

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	scalars "github.com/gqlwire/gqlwire/internal/scalars"
	schema "github.com/gqlwire/gqlwire/internal/schema"
)

func testContext(t *testing.T) *Context {
	t.Helper()
	s, err := schema.BuildFromSDL(`
type Query { ok: Boolean }

input Person {
  name: String
  age: Int
  friend: Person
}

input Filter {
  terms: [String!]
}

enum Color { RED GREEN BLUE }

scalar Upload
scalar Mystery
`)
	require.NoError(t, err)
	return &Context{Schema: s, Scalars: scalars.NewRegistry()}
}

func TestCoerceScalars(t *testing.T) {
	cc := testContext(t)

	got, err := Value(cc, "tester", Target{Key: "name", Type: schema.NamedType("String")})
	require.NoError(t, err)
	require.Equal(t, "tester", got)

	got, err = Value(cc, "42", Target{Key: "count", Type: schema.NamedType("Int")})
	require.NoError(t, err)
	require.Equal(t, 42, got)

	_, err = Value(cc, "not a number", Target{Key: "count", Type: schema.NamedType("Int")})
	require.Error(t, err)

	got, err = Value(cc, 7, Target{Key: "id", Type: schema.NonNullType(schema.NamedType("ID"))})
	require.NoError(t, err)
	require.Equal(t, "7", got)
}

func TestCoerceNullIsNeverAnError(t *testing.T) {
	cc := testContext(t)
	for _, target := range []Target{
		{Key: "s", Type: schema.NamedType("String")},
		{Key: "s", Type: schema.NonNullType(schema.NamedType("String"))},
		{Key: "p", Type: schema.NamedType("Person")},
		{Key: "l", Type: schema.ListType(schema.NamedType("Int"))},
	} {
		got, err := Value(cc, nil, target)
		require.NoError(t, err, "target %s", target.Type.String())
		require.Nil(t, got)
	}
}

func TestCoerceUnregisteredScalarPassThrough(t *testing.T) {
	cc := testContext(t)

	for _, raw := range []any{"text", true, 42, int64(42), 4.2, []byte("payload")} {
		got, err := Value(cc, raw, Target{Key: "m", Type: schema.NamedType("Mystery")})
		require.NoError(t, err, "raw %v (%T)", raw, raw)
		require.Equal(t, raw, got)
	}

	_, err := Value(cc, map[string]any{"not": "primitive"}, Target{Key: "m", Type: schema.NamedType("Mystery")})
	require.Error(t, err)
	var unknownErr *UnknownScalarTypeError
	require.ErrorAs(t, err, &unknownErr)
	require.Equal(t, "Mystery", unknownErr.Name)
}

func TestCoerceRegisteredScalarWins(t *testing.T) {
	cc := testContext(t)
	cc.Scalars.Register("Upload", scalars.Coercion{
		Parse: func(v any) (any, error) {
			if b, ok := v.([]byte); ok {
				return b, nil
			}
			return []byte(v.(string)), nil
		},
	})

	got, err := Value(cc, "abc", Target{Key: "file", Type: schema.NamedType("Upload")})
	require.NoError(t, err)
	require.Equal(t, []byte("abc"), got)
}

func TestCoerceInputObject(t *testing.T) {
	cc := testContext(t)

	got, err := Value(cc, map[string]any{
		"name":   "ada",
		"friend": map[string]any{"age": 40},
	}, Target{Key: "person", Type: schema.NamedType("Person")})
	require.NoError(t, err)

	want := map[string]any{
		"name": "ada",
		"age":  nil,
		"friend": map[string]any{
			"name":   nil,
			"age":    40,
			"friend": nil,
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("coerced input mismatch (-want +got):\n%s", diff)
	}
}

func TestCoerceInputObjectStructuralMismatch(t *testing.T) {
	cc := testContext(t)
	_, err := Value(cc, []any{"not", "a", "map"}, Target{Key: "person", Type: schema.NamedType("Person")})
	require.Error(t, err)
	require.Contains(t, err.Error(), "Person")
}

func TestCoerceInputObjectNestedFieldError(t *testing.T) {
	cc := testContext(t)
	_, err := Value(cc, map[string]any{"age": "old"}, Target{Key: "person", Type: schema.NamedType("Person")})
	require.Error(t, err)
	require.Contains(t, err.Error(), "Person.age")
}

func TestCoerceList(t *testing.T) {
	cc := testContext(t)

	got, err := Value(cc, []any{"1", 2, 3.0}, Target{Key: "nums", Type: schema.ListType(schema.NamedType("Int"))})
	require.NoError(t, err)
	require.Equal(t, []any{1, 2, 3}, got)

	// Single value becomes a one-element sequence.
	got, err = Value(cc, 5, Target{Key: "nums", Type: schema.ListType(schema.NamedType("Int"))})
	require.NoError(t, err)
	require.Equal(t, []any{5}, got)
}

func TestCoerceListOfInputObjects(t *testing.T) {
	cc := testContext(t)

	got, err := Value(cc, []any{
		map[string]any{"name": "a"},
		map[string]any{"name": "b"},
	}, Target{Key: "people", Type: schema.ListType(schema.NamedType("Person"))})
	require.NoError(t, err)

	seq, ok := got.([]any)
	require.True(t, ok)
	require.Len(t, seq, 2)
	require.Equal(t, "a", seq[0].(map[string]any)["name"])
	require.Equal(t, "b", seq[1].(map[string]any)["name"])
}

func TestCoerceRejectsNonSequenceCollections(t *testing.T) {
	cc := testContext(t)

	for _, kind := range []CollectionKind{CollectionSet, CollectionMap} {
		_, err := Value(cc, []any{1, 2}, Target{
			Key:        "people",
			Type:       schema.ListType(schema.NamedType("Person")),
			Collection: kind,
		})
		require.Error(t, err)
		var colErr *InvalidCollectionTypeError
		require.ErrorAs(t, err, &colErr)
		require.Equal(t, "people", colErr.Key)
		require.Equal(t, "ordered sequence", colErr.Expected)
		require.Equal(t, kind.String(), colErr.Actual)
	}
}

func TestCoerceElementTypeOverride(t *testing.T) {
	cc := testContext(t)

	// Ambiguous collection: list with no derivable element type.
	ambiguous := &schema.TypeRef{Kind: schema.TypeRefKindList}

	got, err := Value(cc, []any{map[string]any{"name": "a"}}, Target{
		Key:         "people",
		Type:        ambiguous,
		ElementType: "Person",
	})
	require.NoError(t, err)
	require.Len(t, got.([]any), 1)

	// Override naming an unknown type fails.
	_, err = Value(cc, []any{1}, Target{
		Key:         "people",
		Type:        ambiguous,
		ElementType: "Nobody",
	})
	var colErr *InvalidCollectionTypeError
	require.ErrorAs(t, err, &colErr)
	require.Equal(t, "people", colErr.Key)
	require.Contains(t, colErr.Actual, "Nobody")

	// Override conflicting with a concrete declared element type fails.
	_, err = Value(cc, []any{1}, Target{
		Key:         "nums",
		Type:        schema.ListType(schema.NamedType("Int")),
		ElementType: "Person",
	})
	require.ErrorAs(t, err, &colErr)
	require.Equal(t, "nums", colErr.Key)

	// Ambiguous collection with no override fails.
	_, err = Value(cc, []any{1}, Target{Key: "people", Type: ambiguous})
	require.ErrorAs(t, err, &colErr)
}

func TestCoerceEnum(t *testing.T) {
	cc := testContext(t)

	got, err := Value(cc, "RED", Target{Key: "color", Type: schema.NamedType("Color")})
	require.NoError(t, err)
	require.Equal(t, "RED", got)

	_, err = Value(cc, "MAGENTA", Target{Key: "color", Type: schema.NamedType("Color")})
	require.Error(t, err)

	_, err = Value(cc, 3, Target{Key: "color", Type: schema.NamedType("Color")})
	require.Error(t, err)
}

func TestCoerceRejectsOutputTypes(t *testing.T) {
	cc := testContext(t)
	_, err := Value(cc, map[string]any{}, Target{Key: "q", Type: schema.NamedType("Query")})
	require.Error(t, err)
	require.Contains(t, err.Error(), "cannot be used as an argument type")
}
