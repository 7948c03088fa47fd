package executor

import (
	"context"
	"fmt"
	"reflect"
	"strings"
	"time"

	binding "github.com/gqlwire/gqlwire/internal/binding"
	coerce "github.com/gqlwire/gqlwire/internal/coerce"
	eventbus "github.com/gqlwire/gqlwire/internal/eventbus"
	events "github.com/gqlwire/gqlwire/internal/events"
	language "github.com/gqlwire/gqlwire/internal/language"
	schema "github.com/gqlwire/gqlwire/internal/schema"
	wiring "github.com/gqlwire/gqlwire/internal/wiring"
)

type Path []PathElement

type PathElement any

// executionState holds the state during one request's execution
type executionState struct {
	wiring         *wiring.Wiring
	resolver       *binding.Resolver
	coercion       *coerce.Context
	document       *language.QueryDocument
	variableValues map[string]any
	context        context.Context
	scope          *binding.RequestScope
	errors         []GraphQLError
}

type Executor struct {
	wiring   *wiring.Wiring
	resolver *binding.Resolver
	coercion *coerce.Context
}

// NewExecutor creates an executor over an immutable wiring. The executor is
// stateless across requests and safe for concurrent use.
func NewExecutor(w *wiring.Wiring) *Executor {
	cc := w.CoercionContext()
	return &Executor{wiring: w, resolver: binding.NewResolver(cc), coercion: cc}
}

// ExecuteRequest executes one operation of a parsed document.
//
// Binding and coercion errors raised during one field's resolution are
// recorded as field-scoped errors; sibling fields keep executing. Only
// request-level problems (unknown operation, bad variables) short-circuit.
func (e *Executor) ExecuteRequest(
	ctx context.Context,
	document *language.QueryDocument,
	operationName string,
	variableValues map[string]any,
	initialValue any,
	scope *binding.RequestScope,
) *ExecutionResult {
	operation := getOperation(document, operationName)
	if operation == nil {
		return &ExecutionResult{Errors: []GraphQLError{{Message: "operation not found"}}}
	}

	coercedVariableValues, err := coerceVariableValues(e.coercion, operation, variableValues)
	if err != nil {
		return &ExecutionResult{Errors: []GraphQLError{{Message: err.Error()}}}
	}

	var rootType *schema.Type
	switch operation.Operation {
	case language.Query:
		rootType = e.wiring.Schema.GetQueryType()
	case language.Mutation:
		rootType = e.wiring.Schema.GetMutationType()
	default:
		return &ExecutionResult{Errors: []GraphQLError{{Message: fmt.Sprintf("unsupported operation type: %s", operation.Operation)}}}
	}

	if rootType == nil {
		return &ExecutionResult{Errors: []GraphQLError{{Message: fmt.Sprintf("root type not found for %s operation", operation.Operation)}}}
	}

	state := &executionState{
		wiring:         e.wiring,
		resolver:       e.resolver,
		coercion:       e.coercion,
		document:       document,
		variableValues: coercedVariableValues,
		context:        ctx,
		scope:          scope,
		errors:         []GraphQLError{},
	}

	data := executeSelectionSet(state, rootType, operation.SelectionSet, initialValue, Path{})
	return &ExecutionResult{Data: data, Errors: state.errors}
}

// executeSelectionSet executes a selection set against one object value
func executeSelectionSet(state *executionState, objectType *schema.Type, selectionSet language.SelectionSet, objectValue any, path Path) map[string]any {
	groupedFields := collectFields(state, objectType, selectionSet)
	resultMap := make(map[string]any)

	for _, collectedField := range groupedFields.orderedFields() {
		responseName := collectedField.ResponseName
		fields := collectedField.Fields
		fieldPath := appendPath(path, responseName)

		fieldResult := executeFieldGroup(state, objectType, objectValue, fields, fieldPath)

		// Handle __typename special case
		if fields[0].Name == "__typename" {
			resultMap[responseName] = fieldResult
			continue
		}

		fieldDef := getFieldDefinition(objectType, fields[0].Name)
		if fieldDef == nil {
			// Unknown field – error was already recorded in executeFieldGroup; do not include it
			continue
		}

		// Non-null child that resolved to null propagates to the parent
		if schema.IsNonNull(fieldDef.Type) && isNullish(fieldResult) {
			if len(path) > 0 {
				return nil
			}
			// Root level: keep going but write nil
			resultMap[responseName] = nil
			continue
		}

		// For nullable fields, coerce typed-nil to interface-nil
		if isNullish(fieldResult) {
			resultMap[responseName] = nil
		} else {
			resultMap[responseName] = fieldResult
		}
	}

	return resultMap
}

func executeFieldGroup(state *executionState, objectType *schema.Type, objectValue any, fields []*language.Field, path Path) any {
	field := fields[0]
	fieldName := field.Name

	// Handle __typename meta field
	if fieldName == "__typename" {
		return objectType.Name
	}

	fieldDef := getFieldDefinition(objectType, fieldName)
	if fieldDef == nil {
		state.addError(fmt.Sprintf("Cannot query field '%s' on type '%s'", fieldName, objectType.Name), path)
		return nil
	}

	argumentValues := buildArgumentValues(fieldDef, field.Arguments, state, path)
	resolvedValue := resolveFieldValue(state, objectType, fieldName, objectValue, argumentValues, path)
	return completeValue(state, fieldDef.Type, fields, resolvedValue, path)
}

// resolveFieldValue invokes the registered fetcher for the field, binding
// each declared parameter first. Fields without a fetcher fall back to a
// property lookup on the source value.
func resolveFieldValue(state *executionState, objectType *schema.Type, fieldName string, source any, args map[string]any, path Path) any {
	reg, ok := state.wiring.Fetcher(objectType.Name, fieldName)
	if !ok {
		return defaultFieldValue(source, fieldName)
	}

	exec := &binding.ExecutionContext{
		Context: state.context,
		Field:   reg.Coordinate,
		Source:  source,
		Args:    args,
		Scope:   state.scope,
	}
	bound, err := state.resolver.Resolve(reg.Params, exec)
	if err != nil {
		state.addError(err.Error(), path)
		return nil
	}
	started := time.Now()
	value, err := reg.Fetcher(state.context, bound)
	eventbus.Publish(state.context, events.FieldResolve{
		Type:     objectType.Name,
		Field:    fieldName,
		Err:      err,
		Duration: time.Since(started),
	})
	if err != nil {
		state.addError(err.Error(), path)
		return nil
	}
	return value
}

// defaultFieldValue looks the field up on the source value: map entry for
// map sources, exported struct field (case-insensitive) for struct sources.
func defaultFieldValue(source any, fieldName string) any {
	if source == nil {
		return nil
	}
	if m, ok := source.(map[string]any); ok {
		return m[fieldName]
	}
	rv := reflect.ValueOf(source)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil
	}
	rt := rv.Type()
	for i := range rt.NumField() {
		f := rt.Field(i)
		if f.IsExported() && strings.EqualFold(f.Name, fieldName) {
			return rv.Field(i).Interface()
		}
	}
	return nil
}

// completeValue completes a resolved value against the field's declared type
func completeValue(state *executionState, fieldType *schema.TypeRef, fields []*language.Field, result any, path Path) any {
	if schema.IsNonNull(fieldType) {
		if isNullish(result) {
			if !state.hasErrorAtPath(path) {
				state.addError(fmt.Sprintf("Cannot return null for non-nullable field %s", pathToString(path)), path)
			}
			return nil
		}
		inner := schema.Unwrap(fieldType)
		completed := completeValue(state, inner, fields, result, path)
		if isNullish(completed) {
			// Error already recorded at original path; propagate only
			return nil
		}
		return completed
	}

	if isNullish(result) {
		return nil
	}

	if schema.IsList(fieldType) {
		return completeListValue(state, fieldType, fields, result, path)
	}
	namedType := schema.GetNamedType(fieldType)
	typeObj := state.wiring.Schema.Types[namedType]
	if typeObj == nil {
		state.addError(fmt.Sprintf("Unknown type: %s", namedType), path)
		return nil
	}

	switch typeObj.Kind {
	case schema.TypeKindScalar:
		return serializeScalar(state, namedType, result, path)
	case schema.TypeKindEnum:
		return serializeEnum(state, typeObj, result, path)
	case schema.TypeKindObject:
		return completeObjectValue(state, typeObj, fields, result, path)
	case schema.TypeKindInterface, schema.TypeKindUnion:
		return completeAbstractValue(state, namedType, fields, result, path)
	default:
		state.addError(fmt.Sprintf("Cannot complete value of unexpected type: %s", typeObj.Kind), path)
		return nil
	}
}

// serializeScalar serializes a leaf value through the scalar registry.
// Unregistered scalars pass through unchanged.
func serializeScalar(state *executionState, name string, result any, path Path) any {
	c, ok := state.wiring.Scalars.Lookup(name)
	if !ok || c.Serialize == nil {
		return result
	}
	serialized, err := c.Serialize(result)
	if err != nil {
		state.addError(err.Error(), path)
		return nil
	}
	return serialized
}

func serializeEnum(state *executionState, typeObj *schema.Type, result any, path Path) any {
	name, ok := result.(string)
	if !ok {
		state.addError(fmt.Sprintf("Cannot serialize %T as enum %s", result, typeObj.Name), path)
		return nil
	}
	return name
}

// completeListValue completes a list value
func completeListValue(state *executionState, listType *schema.TypeRef, fields []*language.Field, result any, path Path) any {
	var items []any
	if direct, ok := result.([]any); ok {
		items = direct
	} else {
		rv := reflect.ValueOf(result)
		if rv.Kind() != reflect.Slice {
			state.addError(fmt.Sprintf("Expected list value, got %T", result), path)
			return nil
		}
		items = make([]any, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			items[i] = rv.Index(i).Interface()
		}
	}

	inner := schema.Unwrap(listType)
	completed := make([]any, len(items))
	for i, item := range items {
		p := appendPath(path, i)
		v := completeValue(state, inner, fields, item, p)
		if schema.IsNonNull(inner) && isNullish(v) {
			// Propagate null to the list field; error already recorded by inner completion
			return nil
		}
		completed[i] = v
	}
	return completed
}

func completeObjectValue(state *executionState, objectType *schema.Type, fields []*language.Field, result any, path Path) any {
	sub := mergeSelectionSets(fields)
	return executeSelectionSet(state, objectType, sub, result, path)
}

func completeAbstractValue(state *executionState, abstractTypeName string, fields []*language.Field, result any, path Path) any {
	typeName, err := state.wiring.ResolveType(abstractTypeName, result)
	if err != nil {
		state.addError(err.Error(), path)
		return nil
	}
	objectType := state.wiring.Schema.Types[typeName]
	if objectType == nil || objectType.Kind != schema.TypeKindObject {
		state.addError(fmt.Sprintf("Abstract type %s must resolve to an Object type at runtime. Got: %s", abstractTypeName, typeName), path)
		return nil
	}
	return completeObjectValue(state, objectType, fields, result, path)
}

func pathToString(path Path) string {
	result := ""
	for i, elem := range path {
		if i > 0 {
			result += "."
		}
		switch v := elem.(type) {
		case string:
			result += v
		case int:
			result += fmt.Sprintf("[%d]", v)
		}
	}
	return result
}

func appendPath(path Path, elem PathElement) Path {
	newPath := make(Path, len(path)+1)
	copy(newPath, path)
	newPath[len(path)] = elem
	return newPath
}

// getOperation retrieves the operation from the document
func getOperation(document *language.QueryDocument, operationName string) *language.OperationDefinition {
	if operationName == "" && len(document.Operations) == 1 {
		for _, op := range document.Operations {
			return op
		}
	}
	for _, op := range document.Operations {
		if op.Name == operationName {
			return op
		}
	}
	return nil
}

// Helper function to add an error to the execution state
func (state *executionState) addError(message string, path Path) {
	state.errors = append(state.errors, GraphQLError{Message: message, Path: path})
}

// hasErrorAtPath reports whether an error with the given path already exists.
func (state *executionState) hasErrorAtPath(path Path) bool {
	for _, err := range state.errors {
		if reflect.DeepEqual(err.Path, path) {
			return true
		}
	}
	return false
}

// mergeSelectionSets merges selection sets from multiple fields
func mergeSelectionSets(fields []*language.Field) language.SelectionSet {
	var merged language.SelectionSet
	for _, f := range fields {
		merged = append(merged, f.SelectionSet...)
	}
	return merged
}

// isNullish returns true for nil interfaces and typed nils (map, slice, ptr, interface)
func isNullish(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Interface, reflect.Ptr, reflect.Slice, reflect.Map, reflect.Func, reflect.Chan:
		return rv.IsNil()
	default:
		return false
	}
}
