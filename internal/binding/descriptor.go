// Package binding resolves the declared parameters of a fetcher into a
// concrete argument list for one invocation.
//
// Every parameter is described by a Descriptor computed once at wiring time;
// nothing is inspected per request. Descriptors are immutable after wiring
// and shared read-only across request handlers.
package binding

import (
	coerce "github.com/gqlwire/gqlwire/internal/coerce"
	schema "github.com/gqlwire/gqlwire/internal/schema"
)

// FieldCoordinate identifies a schema field by parent type and field name.
type FieldCoordinate struct {
	Type  string
	Field string
}

func (c FieldCoordinate) String() string { return c.Type + "." + c.Field }

// SourceKind selects the value source a parameter is bound from.
type SourceKind int

const (
	// SourceUnbound parameters resolve to nil unconditionally. This keeps
	// fetchers written against future source kinds callable.
	SourceUnbound SourceKind = iota
	// SourceInputArgument pulls from the field's argument map and coerces.
	SourceInputArgument
	// SourceRequestHeader pulls the first matching request header.
	SourceRequestHeader
	// SourceRequestParam pulls the first matching query parameter.
	SourceRequestParam
	// SourceExecutionContext binds the per-invocation execution context.
	SourceExecutionContext
)

func (k SourceKind) String() string {
	switch k {
	case SourceUnbound:
		return "Unbound"
	case SourceInputArgument:
		return "InputArgument"
	case SourceRequestHeader:
		return "RequestHeader"
	case SourceRequestParam:
		return "RequestParam"
	case SourceExecutionContext:
		return "ExecutionContext"
	default:
		return "Unknown"
	}
}

// Descriptor is the precomputed binding plan for one fetcher parameter.
type Descriptor struct {
	// Name is the parameter's declared name.
	Name string
	// Source selects where the value comes from.
	Source SourceKind
	// LookupKey is the key used against the selected source. Empty means
	// "use Name" (the naming fallback).
	LookupKey string
	// Type is the declared type for argument-sourced parameters.
	Type *schema.TypeRef
	// Collection is the declared collection kind when Type is a list.
	Collection coerce.CollectionKind
	// ElementType optionally overrides the collection element type.
	ElementType string
}

// Key returns the effective lookup key.
func (d Descriptor) Key() string {
	if d.LookupKey != "" {
		return d.LookupKey
	}
	return d.Name
}

// Option adjusts a Descriptor at construction time.
type Option func(*Descriptor)

// WithKey overrides the lookup key used against the value source.
func WithKey(key string) Option {
	return func(d *Descriptor) { d.LookupKey = key }
}

// WithElementType sets an explicit collection element type, for parameters
// whose declared type alone cannot determine it.
func WithElementType(name string) Option {
	return func(d *Descriptor) { d.ElementType = name }
}

// WithCollection declares the parameter's collection kind. Anything other
// than coerce.CollectionSequence is rejected at coercion time.
func WithCollection(kind coerce.CollectionKind) Option {
	return func(d *Descriptor) { d.Collection = kind }
}

// Arg declares a parameter bound from the field's argument map.
func Arg(name string, t *schema.TypeRef, opts ...Option) Descriptor {
	return build(Descriptor{Name: name, Source: SourceInputArgument, Type: t}, opts)
}

// Header declares a parameter bound from the request headers.
func Header(name string, opts ...Option) Descriptor {
	return build(Descriptor{Name: name, Source: SourceRequestHeader}, opts)
}

// Param declares a parameter bound from the request query parameters.
func Param(name string, opts ...Option) Descriptor {
	return build(Descriptor{Name: name, Source: SourceRequestParam}, opts)
}

// Ctx declares a parameter bound to the execution context. At most one per
// fetcher is meaningful; it may appear at any position.
func Ctx() Descriptor {
	return Descriptor{Source: SourceExecutionContext}
}

// Unbound declares a parameter that always resolves to nil.
func Unbound(name string) Descriptor {
	return Descriptor{Name: name, Source: SourceUnbound}
}

func build(d Descriptor, opts []Option) Descriptor {
	for _, opt := range opts {
		opt(&d)
	}
	return d
}
