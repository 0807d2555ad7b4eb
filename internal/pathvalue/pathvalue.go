// Package pathvalue defines the path-aware value: a tree structurally
// parallel to value.Value where every node additionally carries the
// JSON-pointer-style path at which it was found in the source document
// (spec §3.2).
package pathvalue

import (
	"strconv"
	"strings"

	"github.com/ruleweave/ruleweave/internal/value"
)

// PathValue pairs a value.Value with the Path at which it lives in the
// document. Paths are immutable after construction (they are never
// mutated once FromValue returns).
type PathValue struct {
	Value value.Value
	Path  string

	// List/Map hold the same children as Value.List/Value.MapValues, but
	// wrapped as PathValue so every descendant also carries its path. Kept
	// alongside rather than derived on demand because the query engine
	// walks this shape repeatedly per evaluation.
	List []PathValue
	Keys []string
	Map  map[string]PathValue
}

// Root converts a value.Value into a path-aware tree rooted at "".
func Root(v value.Value) PathValue {
	return build(v, "")
}

// FromValue is an alias for Root kept for call-site readability where the
// caller is converting a whole document rather than a sub-value.
func FromValue(v value.Value) PathValue { return Root(v) }

func build(v value.Value, path string) PathValue {
	pv := PathValue{Value: v, Path: path}
	switch v.Kind {
	case value.KindList:
		pv.List = make([]PathValue, len(v.List))
		for i, elem := range v.List {
			pv.List[i] = build(elem, joinIndex(path, i))
		}
	case value.KindMap:
		pv.Keys = append([]string(nil), v.Keys...)
		pv.Map = make(map[string]PathValue, len(v.MapValues))
		for _, k := range v.Keys {
			pv.Map[k] = build(v.MapValues[k], joinKey(path, k))
		}
	}
	return pv
}

func joinKey(base, key string) string {
	return base + "/" + key
}

func joinIndex(base string, i int) string {
	return base + "/" + strconv.Itoa(i)
}

// IsLeaf reports whether this node is a scalar (not List or Map).
func (pv PathValue) IsLeaf() bool {
	return pv.Value.Kind != value.KindList && pv.Value.Kind != value.KindMap
}

// Get looks up a map key with exact-match semantics, returning the
// path-aware child and whether it was found. Case-insensitive fallback
// lookups live in internal/query, the only caller that needs them.
func (pv PathValue) Get(key string) (PathValue, bool) {
	if pv.Value.Kind != value.KindMap {
		return PathValue{}, false
	}
	child, ok := pv.Map[key]
	return child, ok
}

// Index resolves a (possibly negative) list index.
func (pv PathValue) Index(i int) (PathValue, bool) {
	if pv.Value.Kind != value.KindList {
		return PathValue{}, false
	}
	n := len(pv.List)
	if i < 0 {
		i = n + i
	}
	if i < 0 || i >= n {
		return PathValue{}, false
	}
	return pv.List[i], true
}

// SplitPath breaks a "/a/b/0" path into its segments ["a","b","0"]. Useful
// for diagnostics and report rendering.
func SplitPath(path string) []string {
	if path == "" {
		return nil
	}
	return strings.Split(strings.TrimPrefix(path, "/"), "/")
}
