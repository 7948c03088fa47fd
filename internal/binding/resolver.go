package binding

import (
	"context"
	"fmt"

	coerce "github.com/gqlwire/gqlwire/internal/coerce"
)

// ExecutionContext carries the metadata of one fetcher invocation. It is
// bound as the value of ExecutionContext-sourced parameters.
type ExecutionContext struct {
	Context context.Context
	Field   FieldCoordinate
	// Source is the parent object value (nil for root fields).
	Source any
	// Args is the field's raw argument map. Immutable during resolution.
	Args map[string]any
	// Scope is the per-request transport scope. May be nil for transports
	// without headers or query parameters.
	Scope *RequestScope
}

// Resolver turns descriptor sequences into concrete argument lists.
// It is stateless apart from the shared read-only coercion context and safe
// for concurrent use.
type Resolver struct {
	coercion *coerce.Context
}

func NewResolver(cc *coerce.Context) *Resolver {
	return &Resolver{coercion: cc}
}

// Resolve produces one value per descriptor, in declaration order.
//
// A value absent from its source is never an error: the parameter resolves
// to nil and the fetcher decides what that means. Only structural type
// mismatches during coercion fail, and those surface as field-scoped errors
// at the executor boundary.
func (r *Resolver) Resolve(descs []Descriptor, exec *ExecutionContext) ([]any, error) {
	args := make([]any, len(descs))
	for i, d := range descs {
		v, err := r.resolveOne(d, exec)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}
	return args, nil
}

func (r *Resolver) resolveOne(d Descriptor, exec *ExecutionContext) (any, error) {
	switch d.Source {
	case SourceInputArgument:
		raw := exec.Args[d.Key()] // absent means nil, not an error
		v, err := coerce.Value(r.coercion, raw, coerce.Target{
			Key:         d.Key(),
			Type:        d.Type,
			Collection:  d.Collection,
			ElementType: d.ElementType,
		})
		if err != nil {
			return nil, fmt.Errorf("bind argument %q: %w", d.Key(), err)
		}
		return v, nil

	case SourceRequestHeader:
		if v, ok := exec.Scope.Header(d.Key()); ok {
			return v, nil
		}
		return nil, nil

	case SourceRequestParam:
		if v, ok := exec.Scope.Param(d.Key()); ok {
			return v, nil
		}
		return nil, nil

	case SourceExecutionContext:
		return exec, nil

	case SourceUnbound:
		return nil, nil

	default:
		return nil, fmt.Errorf("parameter %q has unknown source kind %d", d.Name, int(d.Source))
	}
}
