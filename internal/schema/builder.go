package schema

import (
	"fmt"
	"strconv"

	language "github.com/gqlwire/gqlwire/internal/language"
	"github.com/vektah/gqlparser/v2/ast"
)

// BuildFromSDL parses an SDL document and returns the corresponding Schema.
// Builtin scalars and the @include/@skip directives are always present.
// A missing schema block defaults the query root to "Query".
func BuildFromSDL(sdl string) (*Schema, error) {
	doc, err := language.ParseSchema("sdl", sdl)
	if err != nil {
		return nil, err
	}
	return BuildFromDocument(doc)
}

// BuildFromDocument converts a parsed SDL document into a Schema.
func BuildFromDocument(doc *language.SchemaDocument) (*Schema, error) {
	s := NewSchema("")
	s.AddType(stringType).
		AddType(intType).
		AddType(floatType).
		AddType(booleanType).
		AddType(idType)
	s.AddDirective(includeDirective).
		AddDirective(skipDirective)

	for _, def := range doc.Definitions {
		t, err := buildDefinition(def)
		if err != nil {
			return nil, err
		}
		s.AddType(t)
	}
	for _, dir := range doc.Directives {
		s.AddDirective(buildDirectiveDefinition(dir))
	}

	s.SetQueryType("Query")
	for _, sd := range doc.Schema {
		applySchemaDefinition(s, sd)
	}
	for _, sd := range doc.SchemaExtension {
		applySchemaDefinition(s, sd)
	}

	if s.Types[s.QueryType] == nil {
		return nil, fmt.Errorf("schema has no %q type", s.QueryType)
	}
	return s, nil
}

func applySchemaDefinition(s *Schema, sd *ast.SchemaDefinition) {
	if sd.Description != "" {
		s.Description = sd.Description
	}
	for _, op := range sd.OperationTypes {
		switch op.Operation {
		case ast.Query:
			s.SetQueryType(op.Type)
		case ast.Mutation:
			s.SetMutationType(op.Type)
		case ast.Subscription:
			s.SetSubscriptionType(op.Type)
		}
	}
}

func buildDefinition(def *language.Definition) (*Type, error) {
	switch def.Kind {
	case language.Object:
		return buildComposite(def, TypeKindObject), nil
	case language.Interface:
		return buildComposite(def, TypeKindInterface), nil
	case language.Union:
		t := NewType(def.Name, TypeKindUnion, def.Description)
		for _, name := range def.Types {
			t.AddPossibleType(name)
		}
		return t, nil
	case language.Enum:
		t := NewType(def.Name, TypeKindEnum, def.Description)
		for _, v := range def.EnumValues {
			ev := NewEnumValue(v.Name, v.Description)
			if reason, ok := deprecation(v.Directives); ok {
				ev.Deprecate(reason)
			}
			t.AddEnumValue(ev)
		}
		return t, nil
	case language.InputObject:
		t := NewType(def.Name, TypeKindInputObject, def.Description)
		t.SetOneOf(def.Directives.ForName("oneOf") != nil)
		for _, fd := range def.Fields {
			in := NewInputValue(fd.Name, fd.Description, buildTypeRef(fd.Type))
			if fd.DefaultValue != nil {
				in.SetDefault(buildValue(fd.DefaultValue))
			}
			if reason, ok := deprecation(fd.Directives); ok {
				in.Deprecate(reason)
			}
			t.AddInputField(in)
		}
		return t, nil
	case language.Scalar:
		t := NewType(def.Name, TypeKindScalar, def.Description)
		if sb := def.Directives.ForName("specifiedBy"); sb != nil {
			if arg := sb.Arguments.ForName("url"); arg != nil && arg.Value != nil {
				url := arg.Value.Raw
				t.SpecifiedByURL = &url
			}
		}
		return t, nil
	default:
		return nil, fmt.Errorf("unsupported definition kind %s for %s", def.Kind, def.Name)
	}
}

func buildComposite(def *language.Definition, kind TypeKind) *Type {
	t := NewType(def.Name, kind, def.Description)
	for _, iface := range def.Interfaces {
		t.AddInterface(iface)
	}
	for _, fd := range def.Fields {
		t.AddField(buildFieldDefinition(fd))
	}
	return t
}

func buildFieldDefinition(fd *language.FieldDefinition) *Field {
	f := NewField(fd.Name, fd.Description, buildTypeRef(fd.Type))
	if reason, ok := deprecation(fd.Directives); ok {
		f.Deprecate(reason)
	}
	for _, arg := range fd.Arguments {
		in := NewInputValue(arg.Name, arg.Description, buildTypeRef(arg.Type))
		if arg.DefaultValue != nil {
			in.SetDefault(buildValue(arg.DefaultValue))
		}
		f.AddArgument(in)
	}
	return f
}

func buildDirectiveDefinition(dd *ast.DirectiveDefinition) *Directive {
	d := NewDirective(dd.Name, dd.Description).SetRepeatable(dd.IsRepeatable)
	for _, loc := range dd.Locations {
		d.Locations = append(d.Locations, string(loc))
	}
	for _, arg := range dd.Arguments {
		in := NewInputValue(arg.Name, arg.Description, buildTypeRef(arg.Type))
		if arg.DefaultValue != nil {
			in.SetDefault(buildValue(arg.DefaultValue))
		}
		d.AddArgument(in)
	}
	return d
}

func buildTypeRef(t *language.Type) *TypeRef {
	if t == nil {
		return nil
	}
	if t.NonNull {
		return NonNullType(buildTypeRef(&language.Type{NamedType: t.NamedType, Elem: t.Elem}))
	}
	if t.NamedType != "" {
		return NamedType(t.NamedType)
	}
	return ListType(buildTypeRef(t.Elem))
}

// buildValue converts an SDL constant value to a plain Go value.
func buildValue(v *language.Value) any {
	if v == nil {
		return nil
	}
	switch v.Kind {
	case language.IntValue:
		iv, _ := strconv.Atoi(v.Raw)
		return iv
	case language.FloatValue:
		fv, _ := strconv.ParseFloat(v.Raw, 64)
		return fv
	case language.StringValue, language.BlockValue, language.EnumValue:
		return v.Raw
	case language.BooleanValue:
		return v.Raw == "true"
	case language.NullValue:
		return nil
	case language.ListValue:
		out := make([]any, len(v.Children))
		for i, c := range v.Children {
			out[i] = buildValue(c.Value)
		}
		return out
	case language.ObjectValue:
		m := make(map[string]any)
		for _, f := range v.Children {
			m[f.Name] = buildValue(f.Value)
		}
		return m
	default:
		return nil
	}
}

func deprecation(directives language.DirectiveList) (string, bool) {
	d := directives.ForName("deprecated")
	if d == nil {
		return "", false
	}
	if arg := d.Arguments.ForName("reason"); arg != nil && arg.Value != nil {
		return arg.Value.Raw, true
	}
	return "", true
}
