package eval

import (
	"strings"

	"github.com/ruleweave/ruleweave/internal/value"
)

// promoteNumeric extracts a float64 reading of v if v is Int or Float,
// promoting Int to Float for comparison purposes (spec §4.3 step 3:
// "For ordering operators on mixed numeric types, promote Int to Float").
// Applied uniformly to all numeric comparisons, not only ordering, since
// the spec gives no reason equality should behave differently.
func promoteNumeric(v value.Value) (float64, bool) {
	switch v.Kind {
	case value.KindInt:
		return float64(v.Int), true
	case value.KindFloat:
		return v.Float, true
	default:
		return 0, false
	}
}

// valuesEqual implements scalar/list equality, including the special-case
// "RHS is a single-element list, LHS is scalar" collapse (spec §4.3 step
// 3).
func valuesEqual(lhs, rhs value.Value) bool {
	if rhs.Kind == value.KindList && len(rhs.List) == 1 && lhs.Kind != value.KindList {
		return valuesEqual(lhs, rhs.List[0])
	}
	if lhs.Kind == value.KindList && len(lhs.List) == 1 && rhs.Kind != value.KindList {
		return valuesEqual(lhs.List[0], rhs)
	}

	if lf, lok := promoteNumeric(lhs); lok {
		if rf, rok := promoteNumeric(rhs); rok {
			return lf == rf
		}
	}

	switch {
	case lhs.Kind == value.KindString && rhs.Kind == value.KindRegex:
		return regexMatches(rhs, lhs.String)
	case lhs.Kind == value.KindRegex && rhs.Kind == value.KindString:
		return regexMatches(lhs, rhs.String)
	case lhs.Kind == value.KindString && rhs.Kind == value.KindString:
		return lhs.String == rhs.String
	case lhs.Kind == value.KindBool && rhs.Kind == value.KindBool:
		return lhs.Bool == rhs.Bool
	case lhs.Kind == value.KindNull && rhs.Kind == value.KindNull:
		return true
	case lhs.Kind == value.KindList && rhs.Kind == value.KindList:
		if len(lhs.List) != len(rhs.List) {
			return false
		}
		for i := range lhs.List {
			if !valuesEqual(lhs.List[i], rhs.List[i]) {
				return false
			}
		}
		return true
	case lhs.Kind == value.KindMap && rhs.Kind == value.KindMap:
		if len(lhs.Keys) != len(rhs.Keys) {
			return false
		}
		for _, k := range lhs.Keys {
			rv, ok := rhs.MapGet(k)
			if !ok {
				return false
			}
			if !valuesEqual(lhs.MapValues[k], rv) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

func regexMatches(re value.Value, s string) bool {
	r := re
	compiled, err := r.Regexp()
	if err != nil {
		return false
	}
	return compiled.MatchString(s)
}

// orderingCompare returns lhs-op-rhs for <, <=, >, >= between numeric
// values or, failing that, between two strings (lexical order). Returns
// ok=false when the operands have no common ordering (IncompatibleError
// territory, spec §7), which the caller treats as FAIL.
func orderingCompare(lhs, rhs value.Value, op string) (result, ok bool) {
	if lf, lok := promoteNumeric(lhs); lok {
		if rf, rok := promoteNumeric(rhs); rok {
			return applyOrder(lf < rf, lf == rf, op), true
		}
	}
	if lhs.Kind == value.KindString && rhs.Kind == value.KindString {
		c := strings.Compare(lhs.String, rhs.String)
		return applyOrder(c < 0, c == 0, op), true
	}
	return false, false
}

func applyOrder(less, equal bool, op string) bool {
	switch op {
	case "<":
		return less
	case "<=":
		return less || equal
	case ">":
		return !less && !equal
	case ">=":
		return !less || equal
	default:
		return false
	}
}

// inRange reports whether v (Int or Float for a numeric range, a
// one-character String for RangeChar) falls within a RangeInt/RangeFloat/
// RangeChar value, honoring per-endpoint inclusivity.
func inRange(v value.Value, rng value.Value) bool {
	switch rng.Kind {
	case value.KindRangeInt:
		i, ok := promoteNumericInt(v)
		if !ok {
			return false
		}
		return boundCheck(float64(i), float64(rng.Range.IntLower), float64(rng.Range.IntUpper), rng.Range.LowerInclusive, rng.Range.UpperInclusive)
	case value.KindRangeFloat:
		f, ok := promoteNumeric(v)
		if !ok {
			return false
		}
		return boundCheck(f, rng.Range.FloatLower, rng.Range.FloatUpper, rng.Range.LowerInclusive, rng.Range.UpperInclusive)
	case value.KindRangeChar:
		if v.Kind != value.KindString || len(v.String) != 1 {
			return false
		}
		c := rune(v.String[0])
		return boundCheck(float64(c), float64(rng.Range.CharLower), float64(rng.Range.CharUpper), rng.Range.LowerInclusive, rng.Range.UpperInclusive)
	default:
		return false
	}
}

func promoteNumericInt(v value.Value) (int64, bool) {
	if v.Kind == value.KindInt {
		return v.Int, true
	}
	if v.Kind == value.KindFloat && v.Float == float64(int64(v.Float)) {
		return int64(v.Float), true
	}
	return 0, false
}

func boundCheck(v, lower, upper float64, lowerInclusive, upperInclusive bool) bool {
	if lowerInclusive {
		if v < lower {
			return false
		}
	} else if v <= lower {
		return false
	}
	if upperInclusive {
		if v > upper {
			return false
		}
	} else if v >= upper {
		return false
	}
	return true
}

// inSet implements the IN operator (spec §4.3 step 5): lhs must equal at
// least one element of rhs (rhs is typically a list; nested lists compare
// as sub-lists).
func inSet(lhs, rhs value.Value) bool {
	if rhs.Kind != value.KindList {
		return valuesEqual(lhs, rhs)
	}
	for _, elem := range rhs.List {
		if valuesEqual(lhs, elem) {
			return true
		}
	}
	return false
}

// compareBinary applies a binary comparison operator (everything except
// the unary exists/empty/is_* family) to a single lhs/rhs pair; "in" with
// a Range RHS routes through inRange, any other "in" through inSet.
func compareBinary(lhs, rhs value.Value, op string) (bool, error) {
	switch op {
	case "==":
		return valuesEqual(lhs, rhs), nil
	case "!=":
		return !valuesEqual(lhs, rhs), nil
	case "<", "<=", ">", ">=":
		result, ok := orderingCompare(lhs, rhs, op)
		if !ok {
			return false, nil
		}
		return result, nil
	case "in":
		if rhs.Kind == value.KindRangeInt || rhs.Kind == value.KindRangeFloat || rhs.Kind == value.KindRangeChar {
			return inRange(lhs, rhs), nil
		}
		return inSet(lhs, rhs), nil
	default:
		return false, nil
	}
}

// isKindCheck implements the is_* family against a concrete value.Value.
func isKindCheck(op string, v value.Value) bool {
	switch op {
	case "is_string":
		return v.Kind == value.KindString
	case "is_int":
		return v.Kind == value.KindInt
	case "is_list":
		return v.Kind == value.KindList
	case "is_map":
		return v.Kind == value.KindMap
	case "is_bool":
		return v.Kind == value.KindBool
	case "is_float":
		return v.Kind == value.KindFloat
	case "is_int_range":
		return v.Kind == value.KindRangeInt
	case "is_float_range":
		return v.Kind == value.KindRangeFloat
	case "is_char_range":
		return v.Kind == value.KindRangeChar
	default:
		return false
	}
}
