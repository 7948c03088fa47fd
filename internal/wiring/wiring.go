// Package wiring associates schema fields with fetchers at startup.
//
// A Registry collects registrations while the process boots; Build validates
// them against the schema and produces an immutable Wiring that request
// handlers share without locking. All validation is fail-fast: a bad
// registration aborts startup instead of surfacing per request.
package wiring

import (
	"context"
	"errors"
	"fmt"

	binding "github.com/gqlwire/gqlwire/internal/binding"
	coerce "github.com/gqlwire/gqlwire/internal/coerce"
	scalars "github.com/gqlwire/gqlwire/internal/scalars"
	schema "github.com/gqlwire/gqlwire/internal/schema"
)

// Fetcher produces the value for one schema field. args holds the resolved
// parameter values in declaration order.
type Fetcher func(ctx context.Context, args []any) (any, error)

// TypeResolver returns the concrete object type name for a value of an
// abstract (interface or union) type.
type TypeResolver func(value any) (string, error)

// Error is a startup-time wiring failure.
type Error struct {
	Coordinate binding.FieldCoordinate
	Message    string
}

func (e *Error) Error() string {
	return fmt.Sprintf("wiring %s: %s", e.Coordinate, e.Message)
}

// Registry accumulates fetcher registrations before Build. Not safe for
// concurrent use; wiring is a single-threaded startup activity.
type Registry struct {
	order         []binding.FieldCoordinate
	fetchers      map[binding.FieldCoordinate]*FetcherRegistration
	typeResolvers map[string]TypeResolver
	scalars       *scalars.Registry
	errs          []error
}

// NewRegistry returns an empty registry with the builtin scalars loaded.
func NewRegistry() *Registry {
	return &Registry{
		fetchers:      make(map[binding.FieldCoordinate]*FetcherRegistration),
		typeResolvers: make(map[string]TypeResolver),
		scalars:       scalars.NewRegistry(),
	}
}

// Field registers a fetcher for the given coordinate with its declared
// parameter list. Registering the same coordinate twice is a wiring error
// reported by Build.
func (r *Registry) Field(typeName, fieldName string, f Fetcher, params ...binding.Descriptor) *Registry {
	coord := binding.FieldCoordinate{Type: typeName, Field: fieldName}
	if _, dup := r.fetchers[coord]; dup {
		r.errs = append(r.errs, &Error{Coordinate: coord, Message: "duplicate fetcher registration"})
		return r
	}
	r.order = append(r.order, coord)
	r.fetchers[coord] = &FetcherRegistration{Coordinate: coord, Fetcher: f, Params: params}
	return r
}

// TypeResolver registers the concrete-type resolver for an abstract type.
func (r *Registry) TypeResolver(typeName string, fn TypeResolver) *Registry {
	r.typeResolvers[typeName] = fn
	return r
}

// Scalar registers a scalar coercion. Last registration for a name wins.
func (r *Registry) Scalar(name string, c scalars.Coercion) *Registry {
	r.scalars.Register(name, c)
	return r
}

// FetcherRegistration owns a coordinate, its fetcher, and the precomputed
// parameter binding descriptors. Immutable after Build.
type FetcherRegistration struct {
	Coordinate binding.FieldCoordinate
	Fetcher    Fetcher
	Params     []binding.Descriptor
}

// Wiring is the immutable result of Build, shared read-only across all
// request-handling goroutines.
type Wiring struct {
	Schema        *schema.Schema
	Scalars       *scalars.Registry
	fetchers      map[binding.FieldCoordinate]*FetcherRegistration
	typeResolvers map[string]TypeResolver
}

// Build validates every registration against the schema and returns the
// immutable wiring. Any failure aborts with an error joining all violations.
func (r *Registry) Build(s *schema.Schema) (*Wiring, error) {
	errs := append([]error(nil), r.errs...)

	for _, coord := range r.order {
		reg := r.fetchers[coord]
		if err := r.validate(s, reg); err != nil {
			errs = append(errs, err)
			continue
		}
		// Precompute the effective lookup key so nothing falls back per
		// request.
		for i, d := range reg.Params {
			d.LookupKey = d.Key()
			reg.Params[i] = d
		}
	}
	for name := range r.typeResolvers {
		typ := s.Types[name]
		if typ == nil {
			errs = append(errs, &Error{Coordinate: binding.FieldCoordinate{Type: name}, Message: "type resolver for unknown type"})
			continue
		}
		if typ.Kind != schema.TypeKindInterface && typ.Kind != schema.TypeKindUnion {
			errs = append(errs, &Error{Coordinate: binding.FieldCoordinate{Type: name}, Message: fmt.Sprintf("type resolver registered for non-abstract %s type", typ.Kind)})
		}
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	return &Wiring{
		Schema:        s,
		Scalars:       r.scalars,
		fetchers:      r.fetchers,
		typeResolvers: r.typeResolvers,
	}, nil
}

func (r *Registry) validate(s *schema.Schema, reg *FetcherRegistration) error {
	coord := reg.Coordinate
	typ := s.Types[coord.Type]
	if typ == nil {
		return &Error{Coordinate: coord, Message: "unknown type"}
	}
	if typ.Kind != schema.TypeKindObject && typ.Kind != schema.TypeKindInterface {
		return &Error{Coordinate: coord, Message: fmt.Sprintf("fetchers may only be registered on object or interface types, not %s", typ.Kind)}
	}
	if typ.Field(coord.Field) == nil {
		return &Error{Coordinate: coord, Message: "unknown field"}
	}
	for _, d := range reg.Params {
		switch d.Source {
		case binding.SourceInputArgument:
			if d.Key() == "" {
				return &Error{Coordinate: coord, Message: "argument parameter has no name and no lookup key"}
			}
			if d.Type == nil {
				return &Error{Coordinate: coord, Message: fmt.Sprintf("argument parameter %q has no declared type", d.Key())}
			}
			if err := validateTypeRef(s, d.Type); err != nil {
				return &Error{Coordinate: coord, Message: fmt.Sprintf("argument parameter %q: %v", d.Key(), err)}
			}
		case binding.SourceRequestHeader, binding.SourceRequestParam:
			if d.Key() == "" {
				return &Error{Coordinate: coord, Message: fmt.Sprintf("%s parameter has no name and no lookup key", d.Source)}
			}
		}
	}
	return nil
}

// validateTypeRef checks that every named component of the reference exists
// in the schema. A list with a nil element reference is allowed here: it is
// the ambiguous-collection shape resolved by an element-type override.
func validateTypeRef(s *schema.Schema, t *schema.TypeRef) error {
	for t != nil {
		if t.Named != "" && s.Types[t.Named] == nil {
			return fmt.Errorf("unknown type %q", t.Named)
		}
		t = t.OfType
	}
	return nil
}

// Fetcher returns the registration for the given coordinate.
func (w *Wiring) Fetcher(typeName, fieldName string) (*FetcherRegistration, bool) {
	reg, ok := w.fetchers[binding.FieldCoordinate{Type: typeName, Field: fieldName}]
	return reg, ok
}

// ResolveType resolves the concrete type name for a value of an abstract
// type using the registered resolver.
func (w *Wiring) ResolveType(abstractType string, value any) (string, error) {
	fn, ok := w.typeResolvers[abstractType]
	if !ok {
		return "", fmt.Errorf("no type resolver registered for abstract type %s", abstractType)
	}
	return fn(value)
}

// CoercionContext returns the read-only coercion context shared by all
// resolutions against this wiring.
func (w *Wiring) CoercionContext() *coerce.Context {
	return &coerce.Context{Schema: w.Schema, Scalars: w.Scalars}
}
