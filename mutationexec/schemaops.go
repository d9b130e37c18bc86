package mutationexec

import (
	"fmt"

	"github.com/speakeasy-api/openapi/jsonschema/oas3"
	"gopkg.in/yaml.v3"
)

// GlobalsFromSchema synthesizes a globals object from a JSON Schema
// describing it. Objects become maps holding their declared properties
// (composition keywords included), arrays hold one representative element,
// and scalars take their const, default, first enum value or first example.
// Nesting beyond Options.MaxSchemaDepth is cut off.
func GlobalsFromSchema(schema *oas3.Schema, opts ...Options) (map[string]any, error) {
	opt := DefaultOptions()
	if len(opts) > 0 {
		opt = opts[0]
	}
	if schema == nil {
		return nil, fmt.Errorf("%w: schema cannot be nil", ErrInvalidGlobals)
	}

	s := &schemaSynth{maxDepth: opt.MaxSchemaDepth}
	v, err := s.value(schema, 0)
	if err != nil {
		return nil, err
	}
	globals, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: schema describes %T, expected an object", ErrInvalidGlobals, v)
	}
	return globals, nil
}

type schemaSynth struct {
	maxDepth int
}

func (s *schemaSynth) value(schema *oas3.Schema, depth int) (any, error) {
	if schema == nil || (s.maxDepth > 0 && depth > s.maxDepth) {
		return nil, nil
	}

	for _, node := range []*yaml.Node{schema.Const, schema.Default} {
		if node != nil {
			return decodeNode(node)
		}
	}
	if len(schema.Enum) > 0 {
		return decodeNode(schema.Enum[0])
	}

	switch {
	case MightBeObject(schema) && hasObjectShape(schema):
		return s.object(schema, depth)
	case mightBeType(schema, oas3.SchemaTypeArray) && (schema.Items != nil || len(schema.PrefixItems) > 0):
		return s.array(schema, depth)
	}

	if len(schema.Examples) > 0 {
		return decodeNode(schema.Examples[0])
	}
	if schema.Example != nil {
		return decodeNode(schema.Example)
	}
	return zeroValue(schema), nil
}

// hasObjectShape reports whether schema declares properties, directly or
// through composition, or is typed as an object.
func hasObjectShape(schema *oas3.Schema) bool {
	if schema.Properties != nil && schema.Properties.Len() > 0 {
		return true
	}
	if len(schema.AllOf)+len(schema.AnyOf)+len(schema.OneOf) > 0 {
		return true
	}
	for _, t := range schema.GetType() {
		if t == oas3.SchemaTypeObject {
			return true
		}
	}
	return false
}

// object merges the properties of schema and every composed branch; the
// first definition of a property wins.
func (s *schemaSynth) object(schema *oas3.Schema, depth int) (any, error) {
	out := make(map[string]any)
	if err := s.collectProperties(schema, depth, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *schemaSynth) collectProperties(schema *oas3.Schema, depth int, out map[string]any) error {
	if schema == nil || (s.maxDepth > 0 && depth > s.maxDepth) {
		return nil
	}
	if schema.Properties != nil {
		for name, prop := range schema.Properties.All() {
			if _, ok := out[name]; ok {
				continue
			}
			child, ok := derefJSONSchema(prop)
			if !ok {
				out[name] = nil
				continue
			}
			v, err := s.value(child, depth+1)
			if err != nil {
				return fmt.Errorf("property %s: %w", name, err)
			}
			out[name] = v
		}
	}
	for _, group := range [][]*oas3.JSONSchema[oas3.Referenceable]{schema.AllOf, schema.AnyOf, schema.OneOf} {
		for _, branch := range group {
			if b, ok := derefJSONSchema(branch); ok {
				if err := s.collectProperties(b, depth+1, out); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func (s *schemaSynth) array(schema *oas3.Schema, depth int) (any, error) {
	out := make([]any, 0, len(schema.PrefixItems)+1)
	for _, item := range schema.PrefixItems {
		if b, ok := derefJSONSchema(item); ok {
			v, err := s.value(b, depth+1)
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
	}
	if items, ok := derefJSONSchema(schema.Items); ok {
		v, err := s.value(items, depth+1)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// derefJSONSchema returns the schema behind js, following resolved $refs.
func derefJSONSchema(js *oas3.JSONSchema[oas3.Referenceable]) (*oas3.Schema, bool) {
	if js == nil {
		return nil, false
	}
	if resolved := js.GetResolvedSchema(); resolved != nil {
		if schema := resolved.GetLeft(); schema != nil {
			return schema, true
		}
	}
	if js.Left != nil {
		return js.Left, true
	}
	return nil, false
}

func decodeNode(node *yaml.Node) (any, error) {
	var v any
	if err := node.Decode(&v); err != nil {
		return nil, fmt.Errorf("failed to decode schema value at line %d: %w", node.Line, err)
	}
	return v, nil
}

func zeroValue(schema *oas3.Schema) any {
	types := schema.GetType()
	if len(types) == 0 {
		return nil
	}
	switch types[0] {
	case oas3.SchemaTypeString:
		return ""
	case oas3.SchemaTypeNumber, oas3.SchemaTypeInteger:
		return 0
	case oas3.SchemaTypeBoolean:
		return false
	case oas3.SchemaTypeObject:
		return map[string]any{}
	case oas3.SchemaTypeArray:
		return []any{}
	default:
		return nil
	}
}

// MightBeObject checks if schema could be an object.
func MightBeObject(s *oas3.Schema) bool {
	return mightBeType(s, oas3.SchemaTypeObject)
}

// mightBeType checks if a schema could possibly be of the given type.
func mightBeType(s *oas3.Schema, typ oas3.SchemaType) bool {
	if s == nil {
		return false
	}

	types := s.GetType()
	if len(types) > 0 {
		for _, t := range types {
			if t == typ {
				return true
			}
		}
		return false
	}

	// No explicit type - could be anything
	if s.AnyOf == nil && s.AllOf == nil && s.OneOf == nil {
		return true
	}

	if s.AnyOf != nil {
		for _, branch := range s.AnyOf {
			if branch.Left != nil && mightBeType(branch.Left, typ) {
				return true
			}
		}
		return false
	}
	return true
}
