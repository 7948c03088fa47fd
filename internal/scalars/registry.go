// Package scalars maps scalar type names to coercion function pairs.
//
// A Registry is populated at startup and read-only afterwards; it may be
// shared by reference across concurrently executing resolutions.
package scalars

import (
	"fmt"
	"strconv"
)

// ParseFunc converts a raw input value into the scalar's internal
// representation.
type ParseFunc func(value any) (any, error)

// SerializeFunc converts the internal representation into an output value.
type SerializeFunc func(value any) (any, error)

// Coercion is the parse/serialize pair registered for one scalar name.
type Coercion struct {
	Parse     ParseFunc
	Serialize SerializeFunc
}

// Registry maps scalar type names to coercions.
//
// Registration is not synchronized: register everything during wiring, before
// the registry is shared with request handlers.
type Registry struct {
	byName map[string]Coercion
}

// NewRegistry returns a registry preloaded with the builtin scalars
// (Int, Float, String, Boolean, ID).
func NewRegistry() *Registry {
	r := &Registry{byName: make(map[string]Coercion)}
	r.Register("Int", Coercion{Parse: ParseInt, Serialize: ParseInt})
	r.Register("Float", Coercion{Parse: ParseFloat, Serialize: ParseFloat})
	r.Register("String", Coercion{Parse: ParseString, Serialize: ParseString})
	r.Register("Boolean", Coercion{Parse: ParseBoolean, Serialize: ParseBoolean})
	r.Register("ID", Coercion{Parse: ParseID, Serialize: ParseID})
	return r
}

// Register adds a coercion under the given name. Registering a name twice
// replaces the earlier entry: the last registration wins. This is the
// override point for replacing builtin scalar behavior.
func (r *Registry) Register(name string, c Coercion) {
	r.byName[name] = c
}

// Lookup returns the coercion registered under name.
func (r *Registry) Lookup(name string) (Coercion, bool) {
	c, ok := r.byName[name]
	return c, ok
}

// ----- builtin coercions -----

// ParseInt coerces numeric and numeric-string values to int.
func ParseInt(value any) (any, error) {
	switch v := value.(type) {
	case int:
		return v, nil
	case int32:
		return int(v), nil
	case int64:
		return int(v), nil
	case float64:
		return int(v), nil
	case float32:
		return int(v), nil
	case string:
		if iv, err := strconv.Atoi(v); err == nil {
			return iv, nil
		}
	}
	return nil, fmt.Errorf("cannot coerce %v (%T) to int", value, value)
}

// ParseFloat coerces numeric and numeric-string values to float64.
func ParseFloat(value any) (any, error) {
	switch v := value.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int32:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case string:
		if fv, err := strconv.ParseFloat(v, 64); err == nil {
			return fv, nil
		}
	}
	return nil, fmt.Errorf("cannot coerce %v (%T) to float", value, value)
}

// ParseString stringifies any value.
func ParseString(value any) (any, error) {
	if v, ok := value.(string); ok {
		return v, nil
	}
	return fmt.Sprintf("%v", value), nil
}

// ParseBoolean accepts only bool values.
func ParseBoolean(value any) (any, error) {
	if v, ok := value.(bool); ok {
		return v, nil
	}
	return nil, fmt.Errorf("cannot coerce %v (%T) to boolean", value, value)
}

// ParseID accepts strings and integers, normalizing to string.
func ParseID(value any) (any, error) {
	switch v := value.(type) {
	case string:
		return v, nil
	case int:
		return strconv.Itoa(v), nil
	case int32:
		return strconv.FormatInt(int64(v), 10), nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	default:
		return fmt.Sprintf("%v", value), nil
	}
}
