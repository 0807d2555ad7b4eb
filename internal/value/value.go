// Package value defines the generic tagged Value the rest of ruleweave's
// core builds on: a canonical in-memory shape for a parsed JSON or YAML
// document, independent of either source format.
package value

import (
	"fmt"
	"regexp"
	"strconv"
)

// Kind identifies which field of a Value is populated.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindInt
	KindFloat
	KindString
	KindRegex
	KindRangeInt
	KindRangeFloat
	KindRangeChar
	KindList
	KindMap
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindRegex:
		return "regex"
	case KindRangeInt:
		return "range_int"
	case KindRangeFloat:
		return "range_float"
	case KindRangeChar:
		return "range_char"
	case KindList:
		return "list"
	case KindMap:
		return "map"
	default:
		return fmt.Sprintf("unknown(%d)", int(k))
	}
}

// Range carries lower/upper bounds and inclusivity flags for both endpoints.
// Exactly one of {IntLower/IntUpper, FloatLower/FloatUpper, CharLower/CharUpper}
// is meaningful, selected by the owning Value's Kind.
type Range struct {
	IntLower, IntUpper     int64
	FloatLower, FloatUpper float64
	CharLower, CharUpper   rune
	LowerInclusive         bool
	UpperInclusive         bool
}

// Value is a tagged union over the generic data model (spec §3.1). Exactly
// one field corresponding to Kind is meaningful; this mirrors the
// exactly-one-field-set idiom the teacher uses for its AST literal nodes
// rather than a Go interface with N implementations, since there is no
// behavior to dispatch on beyond "which kind is this."
type Value struct {
	Kind Kind

	Bool   bool
	Int    int64
	Float  float64
	String string

	// RegexSource is the pattern text; the compiled *regexp.Regexp is built
	// lazily via Regexp() and cached.
	RegexSource   string
	compiledRegex *regexp.Regexp

	Range Range

	List []Value

	// Map entries, insertion order preserved via Keys. MapValues indexes the
	// same way as Keys; Keys is the iteration-order authority.
	Keys      []string
	MapValues map[string]Value
}

// Null returns the Null value.
func Null() Value { return Value{Kind: KindNull} }

// NewBool wraps a bool.
func NewBool(b bool) Value { return Value{Kind: KindBool, Bool: b} }

// NewInt wraps a signed 64-bit integer.
func NewInt(i int64) Value { return Value{Kind: KindInt, Int: i} }

// NewFloat wraps an IEEE-754 double.
func NewFloat(f float64) Value { return Value{Kind: KindFloat, Float: f} }

// NewString wraps a string.
func NewString(s string) Value { return Value{Kind: KindString, String: s} }

// NewRegex wraps an uncompiled regex pattern.
func NewRegex(pattern string) Value { return Value{Kind: KindRegex, RegexSource: pattern} }

// NewList wraps an ordered sequence of Values.
func NewList(items []Value) Value { return Value{Kind: KindList, List: items} }

// NewMap builds a Map value, preserving the given key order.
func NewMap(keys []string, values map[string]Value) Value {
	return Value{Kind: KindMap, Keys: keys, MapValues: values}
}

// NewRangeInt builds an integer range.
func NewRangeInt(lower, upper int64, lowerInclusive, upperInclusive bool) Value {
	return Value{
		Kind: KindRangeInt,
		Range: Range{
			IntLower: lower, IntUpper: upper,
			LowerInclusive: lowerInclusive, UpperInclusive: upperInclusive,
		},
	}
}

// NewRangeFloat builds a float range.
func NewRangeFloat(lower, upper float64, lowerInclusive, upperInclusive bool) Value {
	return Value{
		Kind: KindRangeFloat,
		Range: Range{
			FloatLower: lower, FloatUpper: upper,
			LowerInclusive: lowerInclusive, UpperInclusive: upperInclusive,
		},
	}
}

// NewRangeChar builds a character range.
func NewRangeChar(lower, upper rune, lowerInclusive, upperInclusive bool) Value {
	return Value{
		Kind: KindRangeChar,
		Range: Range{
			CharLower: lower, CharUpper: upper,
			LowerInclusive: lowerInclusive, UpperInclusive: upperInclusive,
		},
	}
}

// Regexp lazily compiles and caches the regex pattern. Returns RegexError
// (via the caller wrapping with oops) shape: callers check the error.
func (v *Value) Regexp() (*regexp.Regexp, error) {
	if v.Kind != KindRegex {
		return nil, fmt.Errorf("value is not a regex: %s", v.Kind)
	}
	if v.compiledRegex != nil {
		return v.compiledRegex, nil
	}
	re, err := regexp.Compile(v.RegexSource)
	if err != nil {
		return nil, err
	}
	v.compiledRegex = re
	return re, nil
}

// IsScalar reports whether the value is a leaf (not List or Map).
func (v Value) IsScalar() bool {
	return v.Kind != KindList && v.Kind != KindMap
}

// MapGet looks up a key with exact-match semantics only (no case-conversion
// fallback; that lives in internal/query, which is the only caller that
// needs the fallback family).
func (v Value) MapGet(key string) (Value, bool) {
	if v.Kind != KindMap {
		return Value{}, false
	}
	val, ok := v.MapValues[key]
	return val, ok
}

// ListGet resolves a (possibly negative) index against a List.
func (v Value) ListGet(i int) (Value, bool) {
	if v.Kind != KindList {
		return Value{}, false
	}
	n := len(v.List)
	if i < 0 {
		i = n + i
	}
	if i < 0 || i >= n {
		return Value{}, false
	}
	return v.List[i], true
}

// AsInt attempts to read the value as an int64, promoting from Float only
// when the float has no fractional part is NOT performed here — numeric
// promotion for comparisons lives in internal/eval; this accessor is exact.
func (v Value) AsInt() (int64, bool) {
	if v.Kind != KindInt {
		return 0, false
	}
	return v.Int, true
}

func (v Value) String_() string { return v.String }

// ParseScalar is a small helper to decide Int vs Float: s is an Int if it
// parses as a base-10 int64, otherwise a Float if it parses as a float64,
// and ok is false if neither (spec §3.1 invariant: numeric parsing prefers
// Int over Float).
func ParseScalar(s string) (Value, bool) {
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return NewInt(i), true
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return NewFloat(f), true
	}
	return Value{}, false
}
