package coerce

import "fmt"

// UnknownScalarTypeError reports a scalar type that has neither a registered
// coercion nor a primitive fallback representation.
type UnknownScalarTypeError struct {
	Name string
}

func (e *UnknownScalarTypeError) Error() string {
	return fmt.Sprintf("unknown scalar type %q: no registered coercion and the raw value has no primitive representation", e.Name)
}

// InvalidCollectionTypeError reports a declared collection shape the coercer
// refuses to materialize, or an element-type override that does not
// correspond to a reachable type.
type InvalidCollectionTypeError struct {
	Key      string // offending parameter lookup key
	Expected string
	Actual   string
}

func (e *InvalidCollectionTypeError) Error() string {
	return fmt.Sprintf("invalid collection type for parameter %q: expected %s, got %s", e.Key, e.Expected, e.Actual)
}
