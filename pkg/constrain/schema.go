package constrain

import (
	"fmt"
	"sort"

	json "github.com/goccy/go-json"
)

// Supported schema types. This is the constrained-decoding subset, not full
// JSON Schema.
const (
	TypeObject  = "object"
	TypeArray   = "array"
	TypeString  = "string"
	TypeNumber  = "number"
	TypeInteger = "integer"
	TypeBoolean = "boolean"
)

// Node is one position in the schema tree. The automaton's schema cursor
// walks these nodes as structures open and close.
type Node struct {
	Type       string
	Properties map[string]*Node
	Required   []string
	Minimum    *float64
	Maximum    *float64
	Items      *Node

	// Wildcard, when set on an object node with no declared Properties,
	// types the values of arbitrary keys. Used by presets.
	Wildcard *Node

	// propOrder is the deterministic iteration order for Properties, used
	// by forced-continuation hints.
	propOrder []string
}

// SchemaProvider supplies an externally derived schema document for a host
// type. The derivation mechanism (reflection, code generation, hand-written)
// is the provider's business; this package only consumes the document.
type SchemaProvider interface {
	JSONSchema() []byte
}

// schemaKeys are the document keys this subset understands. Annotation keys
// are accepted and ignored; anything else is an unsupported construct.
var (
	schemaKeys = map[string]bool{
		"type": true, "properties": true, "required": true,
		"minimum": true, "maximum": true, "items": true,
	}
	annotationKeys = map[string]bool{
		"title": true, "description": true, "$schema": true, "$id": true,
		"default": true, "examples": true,
	}
)

// ParseSchema parses a JSON schema document into the subset tree. Constructs
// outside the subset (composition keywords, $ref, enums, type unions, ...)
// fail with ErrUnsupportedSchema.
func ParseSchema(text []byte) (*Node, error) {
	var raw map[string]any
	if err := json.Unmarshal(text, &raw); err != nil {
		return nil, fmt.Errorf("parse schema: %w", err)
	}
	return buildNode(raw)
}

func buildNode(raw map[string]any) (*Node, error) {
	for key := range raw {
		if !schemaKeys[key] && !annotationKeys[key] {
			return nil, fmt.Errorf("%w: %q", ErrUnsupportedSchema, key)
		}
	}

	typ, ok := raw["type"].(string)
	if !ok {
		return nil, fmt.Errorf("%w: missing or non-string \"type\"", ErrUnsupportedSchema)
	}

	n := &Node{Type: typ}
	switch typ {
	case TypeObject:
		if props, ok := raw["properties"].(map[string]any); ok {
			n.Properties = make(map[string]*Node, len(props))
			for name, sub := range props {
				subMap, ok := sub.(map[string]any)
				if !ok {
					return nil, fmt.Errorf("%w: property %q is not a schema", ErrUnsupportedSchema, name)
				}
				child, err := buildNode(subMap)
				if err != nil {
					return nil, err
				}
				n.Properties[name] = child
				n.propOrder = append(n.propOrder, name)
			}
			sort.Strings(n.propOrder)
		}
		if reqs, ok := raw["required"].([]any); ok {
			for _, r := range reqs {
				name, ok := r.(string)
				if !ok {
					return nil, fmt.Errorf("%w: non-string entry in \"required\"", ErrUnsupportedSchema)
				}
				if _, known := n.Properties[name]; !known {
					return nil, fmt.Errorf("%w: required property %q is not declared", ErrUnsupportedSchema, name)
				}
				n.Required = append(n.Required, name)
			}
			sort.Strings(n.Required)
		}
	case TypeArray:
		if items, ok := raw["items"].(map[string]any); ok {
			child, err := buildNode(items)
			if err != nil {
				return nil, err
			}
			n.Items = child
		}
	case TypeNumber, TypeInteger:
		if v, ok := raw["minimum"].(float64); ok {
			n.Minimum = &v
		}
		if v, ok := raw["maximum"].(float64); ok {
			n.Maximum = &v
		}
	case TypeString, TypeBoolean:
		// No constraints in the subset.
	default:
		return nil, fmt.Errorf("%w: type %q", ErrUnsupportedSchema, typ)
	}
	return n, nil
}

// Preset schema trees for common output shapes.

// ArrayOfStringsSchema matches a JSON array whose elements are strings.
func ArrayOfStringsSchema() *Node {
	return &Node{Type: TypeArray, Items: &Node{Type: TypeString}}
}

// ArrayOfIntegersSchema matches a JSON array whose elements are integers.
func ArrayOfIntegersSchema() *Node {
	return &Node{Type: TypeArray, Items: &Node{Type: TypeInteger}}
}

// ObjectOfStringsSchema matches a JSON object mapping arbitrary keys to
// string values.
func ObjectOfStringsSchema() *Node {
	return &Node{Type: TypeObject, Wildcard: &Node{Type: TypeString}}
}
