package binding

import (
	"context"
	"net/http"
	"net/url"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	coerce "github.com/gqlwire/gqlwire/internal/coerce"
	scalars "github.com/gqlwire/gqlwire/internal/scalars"
	schema "github.com/gqlwire/gqlwire/internal/schema"
)

func testResolver(t *testing.T) *Resolver {
	t.Helper()
	s, err := schema.BuildFromSDL(`
type Query { ok: Boolean }

input Person {
  name: String
  age: Int
}
`)
	require.NoError(t, err)
	return NewResolver(&coerce.Context{Schema: s, Scalars: scalars.NewRegistry()})
}

func execContext(args map[string]any, scope *RequestScope) *ExecutionContext {
	return &ExecutionContext{
		Context: context.Background(),
		Field:   FieldCoordinate{Type: "Query", Field: "hello"},
		Args:    args,
		Scope:   scope,
	}
}

func TestResolveInputArgument(t *testing.T) {
	r := testResolver(t)

	got, err := r.Resolve(
		[]Descriptor{Arg("name", schema.NamedType("String"))},
		execContext(map[string]any{"name": "tester"}, nil),
	)
	require.NoError(t, err)
	require.Equal(t, []any{"tester"}, got)
}

func TestResolveAbsentArgumentIsNil(t *testing.T) {
	r := testResolver(t)

	got, err := r.Resolve(
		[]Descriptor{
			Arg("name", schema.NamedType("String")),
			Arg("count", schema.NonNullType(schema.NamedType("Int"))),
		},
		execContext(map[string]any{}, nil),
	)
	require.NoError(t, err)
	require.Equal(t, []any{nil, nil}, got)
}

func TestResolveNullInputObject(t *testing.T) {
	r := testResolver(t)

	got, err := r.Resolve(
		[]Descriptor{Arg("person", schema.NamedType("Person"))},
		execContext(map[string]any{"person": nil}, nil),
	)
	require.NoError(t, err)
	require.Equal(t, []any{nil}, got)
}

func TestResolveArgumentKeyOverride(t *testing.T) {
	r := testResolver(t)

	got, err := r.Resolve(
		[]Descriptor{Arg("personArg", schema.NamedType("String"), WithKey("person"))},
		execContext(map[string]any{"person": "ada"}, nil),
	)
	require.NoError(t, err)
	require.Equal(t, []any{"ada"}, got)
}

func TestResolveSetCollectionFails(t *testing.T) {
	r := testResolver(t)

	_, err := r.Resolve(
		[]Descriptor{Arg("people", schema.ListType(schema.NamedType("Person")),
			WithCollection(coerce.CollectionSet),
			WithElementType("Person"),
		)},
		execContext(map[string]any{"people": []any{
			map[string]any{"name": "a"},
			map[string]any{"name": "b"},
		}}, nil),
	)
	require.Error(t, err)
	var colErr *coerce.InvalidCollectionTypeError
	require.ErrorAs(t, err, &colErr)
	require.Equal(t, "people", colErr.Key)
	require.Equal(t, "ordered sequence", colErr.Expected)
	require.Equal(t, "Set", colErr.Actual)
}

func TestResolveHeadersAndParams(t *testing.T) {
	r := testResolver(t)

	headers := http.Header{}
	headers.Set("X-Tenant", "acme")
	headers.Add("X-Multi", "first")
	headers.Add("X-Multi", "second")
	params := url.Values{"page": {"3", "4"}}
	scope := NewRequestScope(headers, params)

	got, err := r.Resolve(
		[]Descriptor{
			Header("x-tenant"),
			Header("X-Multi"),
			Header("X-Missing"),
			Param("page"),
			Param("missing"),
		},
		execContext(nil, scope),
	)
	require.NoError(t, err)
	require.Equal(t, []any{"acme", "first", nil, "3", nil}, got)
}

func TestResolveMissingScopeIsNil(t *testing.T) {
	r := testResolver(t)

	got, err := r.Resolve(
		[]Descriptor{Header("x-tenant"), Param("page")},
		execContext(nil, nil),
	)
	require.NoError(t, err)
	require.Equal(t, []any{nil, nil}, got)
}

func TestResolveExecutionContextAnyPosition(t *testing.T) {
	r := testResolver(t)
	exec := execContext(map[string]any{"a": "1", "b": "2"}, nil)

	first, err := r.Resolve([]Descriptor{
		Ctx(),
		Arg("a", schema.NamedType("String")),
		Arg("b", schema.NamedType("String")),
	}, exec)
	require.NoError(t, err)

	second, err := r.Resolve([]Descriptor{
		Arg("b", schema.NamedType("String")),
		Ctx(),
		Arg("a", schema.NamedType("String")),
	}, exec)
	require.NoError(t, err)

	// Same values regardless of declaration order, keyed by source+key.
	require.Same(t, exec, first[0].(*ExecutionContext))
	require.Same(t, exec, second[1].(*ExecutionContext))
	require.Equal(t, first[1], second[2]) // a
	require.Equal(t, first[2], second[0]) // b
}

func TestResolveUnbound(t *testing.T) {
	r := testResolver(t)

	got, err := r.Resolve(
		[]Descriptor{Unbound("future"), Arg("name", schema.NamedType("String"))},
		execContext(map[string]any{"name": "x", "future": "ignored"}, nil),
	)
	require.NoError(t, err)
	require.Equal(t, []any{nil, "x"}, got)
}

func TestResolveConcurrently(t *testing.T) {
	r := testResolver(t)
	args := map[string]any{"name": "tester", "person": map[string]any{"name": "ada"}}
	descs := []Descriptor{
		Arg("name", schema.NamedType("String")),
		Arg("person", schema.NamedType("Person")),
	}

	var wg sync.WaitGroup
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := r.Resolve(descs, execContext(args, nil))
			if err != nil {
				t.Error(err)
				return
			}
			if got[0] != "tester" {
				t.Errorf("got %v", got[0])
			}
		}()
	}
	wg.Wait()
}

func TestDescriptorKeyFallback(t *testing.T) {
	require.Equal(t, "name", Arg("name", schema.NamedType("String")).Key())
	require.Equal(t, "alias", Arg("name", schema.NamedType("String"), WithKey("alias")).Key())
	require.Equal(t, "x-id", Header("x-id").Key())
}

func TestSourceKindString(t *testing.T) {
	require.Equal(t, "InputArgument", SourceInputArgument.String())
	require.Equal(t, "ExecutionContext", SourceExecutionContext.String())
	require.Equal(t, "Unbound", SourceUnbound.String())
}
