package query

import (
	"strconv"

	"github.com/ruleweave/ruleweave/internal/lang"
	"github.com/ruleweave/ruleweave/internal/pathvalue"
	"github.com/ruleweave/ruleweave/internal/value"
)

// Evaluate walks q against root (the current scope's "this" value) and
// returns every QueryResult the query yields (spec §4.2). Multiple results
// arise whenever the query passes through a wildcard, AllIndices/AllValues
// bracket, or a Filter/MapKeyFilter bracket that matches more than one
// child.
//
// Variable-capture-key binding (spec §4.3 add_variable_capture_key,
// SPEC_FULL.md supplemented feature) is not driven from here, and the
// grammar has no capture-name syntax. Nothing in the module calls
// env.AddCaptureKey, so iterating a map with AllValues never binds its
// keys to a name.
func Evaluate(root pathvalue.PathValue, q *lang.AccessQuery, env Env) ([]QueryResult, error) {
	preferred := new(string)
	results := []QueryResult{resolved(root)}
	for i, part := range q.Parts {
		var err error
		results, err = stepAll(results, part, q.Parts[i+1:], env, preferred)
		if err != nil {
			return nil, err
		}
	}
	return results, nil
}

// stepAll applies part to every still-traversable result in in. Results
// that already terminated as Unresolved pass through untouched: once a
// query fails to resolve, no later part can revive it.
func stepAll(in []QueryResult, part *lang.QueryPart, remaining []*lang.QueryPart, env Env, preferred *string) ([]QueryResult, error) {
	out := make([]QueryResult, 0, len(in))
	for _, r := range in {
		if r.Kind == Unresolved {
			out = append(out, r)
			continue
		}
		next, err := applyPart(r.Value, part, remaining, env, preferred)
		if err != nil {
			return nil, err
		}
		out = append(out, next...)
	}
	return out, nil
}

func applyPart(pv pathvalue.PathValue, part *lang.QueryPart, remaining []*lang.QueryPart, env Env, preferred *string) ([]QueryResult, error) {
	self := []*lang.QueryPart{part}
	switch {
	case part.Bracket != nil:
		return applyBracket(pv, part.Bracket, remaining, env, preferred, part)

	case part.This:
		return []QueryResult{resolved(pv)}, nil

	case part.Star:
		return allChildren(pv, append(self, remaining...))

	case part.VarKey != nil:
		return applyVarKey(pv, *part.VarKey, remaining, env, preferred, part)

	case part.Key != nil:
		return applyKey(pv, *part.Key, remaining, preferred, part)

	case part.QuotedKey != nil:
		return applyKey(pv, *part.QuotedKey, remaining, preferred, part)

	case part.IndexLit != nil:
		idx := int(*part.IndexLit)
		child, ok := pv.Index(idx)
		if !ok {
			return []QueryResult{unresolved(pv, append(self, remaining...), "index out of range: "+strconv.FormatInt(*part.IndexLit, 10))}, nil
		}
		return []QueryResult{resolved(child)}, nil

	default:
		return []QueryResult{unresolved(pv, append(self, remaining...), "empty query part")}, nil
	}
}

// applyKey resolves a string-valued key segment (a bare/quoted identifier,
// or a %variable that resolved to a string) against pv. Per spec §4.2's
// traversal rule, a key applied to a List is not automatically an error:
// if key parses as an integer, it is treated as Index instead, so a
// quoted key like this.'0' or a %variable bound to the string "0" can
// address list elements the same way a literal index would
// (DESIGN.md Open Questions: "0" key vs list index 0).
func applyKey(pv pathvalue.PathValue, key string, remaining []*lang.QueryPart, preferred *string, self *lang.QueryPart) ([]QueryResult, error) {
	if pv.Value.Kind == value.KindList {
		if idx, err := strconv.Atoi(key); err == nil {
			child, ok := pv.Index(idx)
			if !ok {
				return []QueryResult{unresolved(pv, append([]*lang.QueryPart{self}, remaining...), "index out of range: "+key)}, nil
			}
			return []QueryResult{resolved(child)}, nil
		}
		return []QueryResult{unresolved(pv, append([]*lang.QueryPart{self}, remaining...), "not a map: "+pv.Value.Kind.String())}, nil
	}
	if pv.Value.Kind != value.KindMap {
		return []QueryResult{unresolved(pv, append([]*lang.QueryPart{self}, remaining...), "not a map: "+pv.Value.Kind.String())}, nil
	}
	if child, ok := pv.Get(key); ok {
		return []QueryResult{resolved(child)}, nil
	}
	if resolvedKey, conv, ok := resolveKeyWithFallback(pv.Keys, key, *preferred); ok {
		if conv != "" {
			*preferred = conv
		}
		return []QueryResult{resolved(pv.Map[resolvedKey])}, nil
	}
	return []QueryResult{unresolved(pv, append([]*lang.QueryPart{self}, remaining...), "key not found: "+key)}, nil
}

// applyVarKey resolves a "%name" query part: name is bound (by a let
// binding or an AllValues capture key) to one or more already-resolved
// scalar values, each of which is used as a map key into pv in turn (spec
// §4.3's variable-as-key usage, e.g. "Resources.%refs").
func applyVarKey(pv pathvalue.PathValue, name string, remaining []*lang.QueryPart, env Env, preferred *string, self *lang.QueryPart) ([]QueryResult, error) {
	bound, err := env.ResolveVariable(name)
	if err != nil {
		return nil, err
	}
	out := make([]QueryResult, 0, len(bound))
	for _, b := range bound {
		if !b.IsResolved() {
			out = append(out, b)
			continue
		}
		key := b.Value.Value.String_()
		next, err := applyKey(pv, key, remaining, preferred, self)
		if err != nil {
			return nil, err
		}
		out = append(out, next...)
	}
	return out, nil
}

func applyBracket(pv pathvalue.PathValue, b *lang.BracketPart, remaining []*lang.QueryPart, env Env, preferred *string, self *lang.QueryPart) ([]QueryResult, error) {
	selfChain := []*lang.QueryPart{self}
	switch {
	case b.AllIndices:
		return allChildren(pv, append(selfChain, remaining...))

	case b.Index != nil:
		idx := int(*b.Index)
		child, ok := pv.Index(idx)
		if !ok {
			return []QueryResult{unresolved(pv, append(selfChain, remaining...), "index out of range: "+strconv.FormatInt(*b.Index, 10))}, nil
		}
		return []QueryResult{resolved(child)}, nil

	case b.KeyFilter != nil:
		if pv.Value.Kind != value.KindMap {
			return []QueryResult{unresolved(pv, append(selfChain, remaining...), "not a map: "+pv.Value.Kind.String())}, nil
		}
		var out []QueryResult
		for _, k := range pv.Keys {
			matched, err := matchKeyFilter(k, b.KeyFilter)
			if err != nil {
				return nil, err
			}
			want := b.KeyFilter.Comparator == "=="
			if matched == want {
				out = append(out, resolved(pv.Map[k]))
			}
		}
		if len(out) == 0 {
			return []QueryResult{unresolved(pv, append(selfChain, remaining...), "no keys matched filter")}, nil
		}
		return out, nil

	case b.Filter != nil:
		children := filterCandidates(pv)
		var out []QueryResult
		for _, c := range children {
			ok, err := env.EvalGuard(c, b.Filter)
			if err != nil {
				return nil, err
			}
			if ok {
				out = append(out, resolved(c))
			}
		}
		if len(out) == 0 {
			return []QueryResult{unresolved(pv, append(selfChain, remaining...), "no entries matched filter")}, nil
		}
		return out, nil

	default:
		return []QueryResult{unresolved(pv, append(selfChain, remaining...), "empty bracket")}, nil
	}
}

// allChildren implements AllIndices/AllValues/bare "*" (spec §4.2): list
// elements or map values in order; a scalar passes through unchanged; an
// empty list or map yields a single Unresolved result (the "no more
// entries" rule).
func allChildren(pv pathvalue.PathValue, remaining []*lang.QueryPart) ([]QueryResult, error) {
	switch pv.Value.Kind {
	case value.KindList:
		if len(pv.List) == 0 {
			return []QueryResult{unresolved(pv, remaining, "no more entries")}, nil
		}
		out := make([]QueryResult, len(pv.List))
		for i, c := range pv.List {
			out[i] = resolved(c)
		}
		return out, nil
	case value.KindMap:
		if len(pv.Keys) == 0 {
			return []QueryResult{unresolved(pv, remaining, "no more entries")}, nil
		}
		out := make([]QueryResult, 0, len(pv.Keys))
		for _, k := range pv.Keys {
			out = append(out, resolved(pv.Map[k]))
		}
		return out, nil
	default:
		return []QueryResult{resolved(pv)}, nil
	}
}

// filterCandidates returns the values a Filter bracket tests its inner
// clause against. A List filters its own elements ("Statement[cond]"
// picks among Statement's entries). Anything else — a Map or a scalar —
// is tested as a single candidate: this is what makes
// "Resources.*[ Type == T ]" work, where the preceding "*" has already
// selected one resource map per branch and the bracket tests that single
// map directly rather than iterating its property values.
func filterCandidates(pv pathvalue.PathValue) []pathvalue.PathValue {
	if pv.Value.Kind == value.KindList {
		return pv.List
	}
	return []pathvalue.PathValue{pv}
}

// matchKeyFilter evaluates a "keys == /regex/" or "keys == 'literal'"
// comparator against a single map key. The grammar accepts any Rhs here,
// but only a regex or string literal can match: a list, a query or any
// other literal matches no key, so this does not need the full comparison
// machinery in internal/eval.
func matchKeyFilter(key string, mkf *lang.MapKeyFilter) (bool, error) {
	if mkf.CompareWith.Literal == nil {
		return false, nil
	}
	lit := mkf.CompareWith.Literal
	switch {
	case lit.Regex != nil:
		regexVal := value.NewRegex(*lit.Regex)
		re, err := regexVal.Regexp()
		if err != nil {
			return false, err
		}
		return re.MatchString(key), nil
	case lit.Str != nil:
		return key == *lit.Str, nil
	default:
		return false, nil
	}
}
