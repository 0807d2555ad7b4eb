package value

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// FromAny canonicalizes a generic Go tree (the output of encoding/json's
// Unmarshal into `any`, or a hand-built structure from a test) into a
// Value. Maps are accepted as map[string]any; key order is whatever
// range over the map produces, which Go does not guarantee — callers that
// need order preserved from the source document should prefer FromYAMLNode
// or an ordered-decode path (see internal/ingest). FromAny exists for
// callers (tests, programmatic construction) that do not care about order.
func FromAny(v any) Value {
	switch t := v.(type) {
	case nil:
		return Null()
	case bool:
		return NewBool(t)
	case int:
		return NewInt(int64(t))
	case int64:
		return NewInt(t)
	case float64:
		if t == float64(int64(t)) {
			return NewInt(int64(t))
		}
		return NewFloat(t)
	case string:
		return fromScalarString(t)
	case []any:
		items := make([]Value, len(t))
		for i, e := range t {
			items[i] = FromAny(e)
		}
		return NewList(items)
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		values := make(map[string]Value, len(t))
		for _, k := range keys {
			values[k] = FromAny(t[k])
		}
		return NewMap(keys, values)
	default:
		return NewString(fmt.Sprintf("%v", t))
	}
}

// fromScalarString recognizes regex literals in already-decoded strings: a
// string surrounded by /…/ becomes a Regex, anything else stays a String.
// It does not recognize bool identifiers; bare true/false reach Bool
// through the decoders' own typing (YAML !!bool, JSON true/false), so a
// string whose text is "true" stays a String.
func fromScalarString(s string) Value {
	if strings.HasPrefix(s, "/") && strings.HasSuffix(s, "/") && len(s) >= 2 {
		return NewRegex(strings.TrimSuffix(strings.TrimPrefix(s, "/"), "/"))
	}
	return NewString(s)
}

// FromYAMLNode canonicalizes a *yaml.Node (from yaml.Unmarshal into a Node,
// or yaml.Decoder.Decode) into a Value, preserving map key order from the
// source document as required by spec §3.1. This is the preferred
// conversion path: map[string]any loses order, *yaml.Node does not.
func FromYAMLNode(n *yaml.Node) (Value, error) {
	if n == nil {
		return Null(), nil
	}
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return Null(), nil
		}
		return FromYAMLNode(n.Content[0])
	case yaml.AliasNode:
		return FromYAMLNode(n.Alias)
	case yaml.ScalarNode:
		return scalarFromYAML(n)
	case yaml.SequenceNode:
		items := make([]Value, len(n.Content))
		for i, c := range n.Content {
			v, err := FromYAMLNode(c)
			if err != nil {
				return Value{}, err
			}
			items[i] = v
		}
		return NewList(items), nil
	case yaml.MappingNode:
		keys := make([]string, 0, len(n.Content)/2)
		values := make(map[string]Value, len(n.Content)/2)
		for i := 0; i+1 < len(n.Content); i += 2 {
			keyNode := n.Content[i]
			valNode := n.Content[i+1]
			key := keyNode.Value
			val, err := FromYAMLNode(valNode)
			if err != nil {
				return Value{}, err
			}
			if _, exists := values[key]; !exists {
				keys = append(keys, key)
			}
			values[key] = val
		}
		return NewMap(keys, values), nil
	default:
		return Null(), fmt.Errorf("canonicalize: unsupported yaml node kind %d", n.Kind)
	}
}

func scalarFromYAML(n *yaml.Node) (Value, error) {
	switch n.Tag {
	case "!!null":
		return Null(), nil
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err != nil {
			return Value{}, err
		}
		return NewBool(b), nil
	case "!!int":
		var i int64
		if err := n.Decode(&i); err != nil {
			return Value{}, err
		}
		return NewInt(i), nil
	case "!!float":
		var f float64
		if err := n.Decode(&f); err != nil {
			return Value{}, err
		}
		return NewFloat(f), nil
	default:
		return fromScalarString(n.Value), nil
	}
}
