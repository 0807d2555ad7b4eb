package value

import (
	"encoding/json"
	"fmt"
	"io"
)

// FromJSON canonicalizes a JSON document read from r into a Value,
// preserving object key order (spec §3.1's Map invariant) by driving
// json.Decoder's token stream by hand rather than unmarshaling into
// map[string]any, which Go does not order. This mirrors FromYAMLNode's
// role for the YAML side of internal/ingest.
func FromJSON(r io.Reader) (Value, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	v, err := decodeJSONValue(dec)
	if err != nil {
		return Value{}, err
	}
	return v, nil
}

func decodeJSONValue(dec *json.Decoder) (Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return Value{}, err
	}
	return jsonValueFromToken(dec, tok)
}

func jsonValueFromToken(dec *json.Decoder, tok json.Token) (Value, error) {
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			return decodeJSONObject(dec)
		case '[':
			return decodeJSONArray(dec)
		default:
			return Value{}, fmt.Errorf("canonicalize json: unexpected delimiter %q", t)
		}
	case nil:
		return Null(), nil
	case bool:
		return NewBool(t), nil
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return NewInt(i), nil
		}
		f, err := t.Float64()
		if err != nil {
			return Value{}, err
		}
		return NewFloat(f), nil
	case string:
		return fromScalarString(t), nil
	default:
		return Value{}, fmt.Errorf("canonicalize json: unsupported token %T", tok)
	}
}

func decodeJSONObject(dec *json.Decoder) (Value, error) {
	var keys []string
	values := make(map[string]Value)
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return Value{}, err
		}
		key, ok := keyTok.(string)
		if !ok {
			return Value{}, fmt.Errorf("canonicalize json: object key is not a string: %v", keyTok)
		}
		val, err := decodeJSONValue(dec)
		if err != nil {
			return Value{}, err
		}
		if _, exists := values[key]; !exists {
			keys = append(keys, key)
		}
		values[key] = val
	}
	// consume the closing '}'
	if _, err := dec.Token(); err != nil {
		return Value{}, err
	}
	return NewMap(keys, values), nil
}

func decodeJSONArray(dec *json.Decoder) (Value, error) {
	var items []Value
	for dec.More() {
		val, err := decodeJSONValue(dec)
		if err != nil {
			return Value{}, err
		}
		items = append(items, val)
	}
	// consume the closing ']'
	if _, err := dec.Token(); err != nil {
		return Value{}, err
	}
	return NewList(items), nil
}
