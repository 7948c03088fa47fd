// Package coerce converts raw argument values (nested maps, lists, and
// primitives produced by the query layer) into declared target shapes.
//
// Null handling is deliberately shallow: a nil raw value coerces to nil for
// any target, including non-null ones. Enforcing nullability is the caller's
// concern, not the coercer's.
package coerce

import (
	"fmt"

	schema "github.com/gqlwire/gqlwire/internal/schema"
	scalars "github.com/gqlwire/gqlwire/internal/scalars"
)

// CollectionKind is the declared shape of a collection-typed parameter.
// Only ordered, duplicate-permitting sequences are ever materialized; any
// other declared kind is rejected rather than adapted.
type CollectionKind int

const (
	CollectionSequence CollectionKind = iota
	CollectionSet
	CollectionMap
)

func (k CollectionKind) String() string {
	switch k {
	case CollectionSequence:
		return "ordered sequence"
	case CollectionSet:
		return "Set"
	case CollectionMap:
		return "Map"
	default:
		return fmt.Sprintf("CollectionKind(%d)", int(k))
	}
}

// Context carries the schema type registry and the scalar registry.
// It is read-only and shared across all coercions in a request.
type Context struct {
	Schema  *schema.Schema
	Scalars *scalars.Registry
}

// Target describes the shape a raw value must be coerced into.
type Target struct {
	// Key is the parameter lookup key, used only in error messages.
	Key string
	// Type is the declared type. A list type whose element reference is nil
	// is an ambiguous collection and requires ElementType.
	Type *schema.TypeRef
	// Collection is the declared collection kind when Type is a list.
	Collection CollectionKind
	// ElementType optionally overrides the list element type when the
	// declared type alone cannot determine it.
	ElementType string
}

// Value coerces raw into the target shape.
//
// Nil coerces to nil for any target. Non-null wrappers are transparent here;
// the caller decides what a nil result means for a non-null declaration.
func Value(cc *Context, raw any, t Target) (any, error) {
	ref := t.Type
	for schema.IsNonNull(ref) {
		ref = schema.Unwrap(ref)
	}
	if raw == nil {
		return nil, nil
	}
	if schema.IsList(ref) {
		return coerceList(cc, raw, ref, t)
	}

	named := schema.GetNamedType(ref)
	typ := cc.Schema.Types[named]
	if typ == nil {
		return coerceScalar(cc, named, raw)
	}
	switch typ.Kind {
	case schema.TypeKindScalar:
		return coerceScalar(cc, named, raw)
	case schema.TypeKindEnum:
		return coerceEnum(typ, raw)
	case schema.TypeKindInputObject:
		return coerceInputObject(cc, typ, raw)
	default:
		return nil, fmt.Errorf("type %s is a %s and cannot be used as an argument type", named, typ.Kind)
	}
}

func coerceList(cc *Context, raw any, ref *schema.TypeRef, t Target) (any, error) {
	if t.Collection != CollectionSequence {
		return nil, &InvalidCollectionTypeError{
			Key:      t.Key,
			Expected: CollectionSequence.String(),
			Actual:   t.Collection.String(),
		}
	}

	elemRef := schema.Unwrap(ref)
	if t.ElementType != "" {
		if cc.Schema.Types[t.ElementType] == nil {
			return nil, &InvalidCollectionTypeError{
				Key:      t.Key,
				Expected: "a type declared in the schema",
				Actual:   fmt.Sprintf("element type %q", t.ElementType),
			}
		}
		if declared := schema.GetNamedType(elemRef); declared != "" && declared != t.ElementType {
			return nil, &InvalidCollectionTypeError{
				Key:      t.Key,
				Expected: fmt.Sprintf("element type %q", declared),
				Actual:   fmt.Sprintf("element type %q", t.ElementType),
			}
		}
		elemRef = schema.NamedType(t.ElementType)
	}
	if elemRef == nil {
		return nil, &InvalidCollectionTypeError{
			Key:      t.Key,
			Expected: "a collection with a derivable element type or an explicit element type",
			Actual:   "an untyped collection",
		}
	}

	seq, ok := raw.([]any)
	if !ok {
		// A single value coerces to a one-element sequence.
		item, err := Value(cc, raw, Target{Key: t.Key, Type: elemRef})
		if err != nil {
			return nil, err
		}
		return []any{item}, nil
	}
	out := make([]any, len(seq))
	for i, item := range seq {
		cv, err := Value(cc, item, Target{Key: t.Key, Type: elemRef})
		if err != nil {
			return nil, err
		}
		out[i] = cv
	}
	return out, nil
}

func coerceInputObject(cc *Context, typ *schema.Type, raw any) (any, error) {
	m, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("cannot coerce %T into input object %s", raw, typ.Name)
	}
	// Every schema-declared field is present in the result; fields absent
	// from the raw mapping coerce to nil.
	out := make(map[string]any, len(typ.InputFields))
	for _, f := range typ.InputFields {
		cv, err := Value(cc, m[f.Name], Target{Key: f.Name, Type: f.Type})
		if err != nil {
			return nil, fmt.Errorf("field %s.%s: %w", typ.Name, f.Name, err)
		}
		out[f.Name] = cv
	}
	return out, nil
}

func coerceEnum(typ *schema.Type, raw any) (any, error) {
	name, ok := raw.(string)
	if !ok {
		return nil, fmt.Errorf("cannot coerce %T into enum %s", raw, typ.Name)
	}
	for _, v := range typ.EnumValues {
		if v.Name == name {
			return name, nil
		}
	}
	return nil, fmt.Errorf("%q is not a value of enum %s", name, typ.Name)
}

func coerceScalar(cc *Context, named string, raw any) (any, error) {
	if c, ok := cc.Scalars.Lookup(named); ok {
		return c.Parse(raw)
	}
	// Unregistered scalar: pass primitives (and pre-materialized binary
	// payloads) through unchanged.
	switch raw.(type) {
	case string, bool, int, int32, int64, float32, float64, []byte:
		return raw, nil
	}
	return nil, &UnknownScalarTypeError{Name: named}
}
