package eval

import (
	"github.com/ruleweave/ruleweave/internal/lang"
	"github.com/ruleweave/ruleweave/internal/pathvalue"
	"github.com/ruleweave/ruleweave/internal/query"
)

// scopeKind tags which of the four scope shapes (spec §4.3) a frame is.
// Kept only for diagnostics; behavior is identical across kinds except for
// what newXScope populates.
type scopeKind int

const (
	scopeRoot scopeKind = iota
	scopeRule
	scopeBlock
	scopeValue
)

// scope is one frame of the evaluation scope chain: RootScope (file-level
// lets), RuleScope (a rule's own scope, one per rule evaluation),
// BlockScope (a block's local lets), ValueScope (transient root
// substitution with no lets of its own, used by Filter/BlockClause to
// re-point "this" without introducing new bindings). Unknown names
// delegate to parent (spec §9's linked-frame design note).
type scope struct {
	kind   scopeKind
	parent *scope
	root   pathvalue.PathValue

	lets map[string]*lang.Let

	// captures binds a name to a literal key string recorded while
	// iterating AllValues with variable capture (spec §4.3
	// add_variable_capture_key).
	captures map[string]string

	// resolved memoizes resolve_variable results per scope per name (spec
	// §4.3: "caches resolution per scope").
	resolved map[string][]query.QueryResult
}

func newRootScope(root pathvalue.PathValue, lets map[string]*lang.Let) *scope {
	return &scope{kind: scopeRoot, root: root, lets: lets}
}

func newRuleScope(parent *scope, root pathvalue.PathValue) *scope {
	return &scope{kind: scopeRule, parent: parent, root: root}
}

func newBlockScope(parent *scope, lets map[string]*lang.Let) *scope {
	return &scope{kind: scopeBlock, parent: parent, root: parent.root, lets: lets}
}

func newValueScope(parent *scope, root pathvalue.PathValue) *scope {
	return &scope{kind: scopeValue, parent: parent, root: root}
}

// lookupLet walks the chain looking for a let binding named name, local
// scope first.
func (s *scope) lookupLet(name string) (*lang.Let, *scope, bool) {
	for cur := s; cur != nil; cur = cur.parent {
		if cur.lets != nil {
			if l, ok := cur.lets[name]; ok {
				return l, cur, true
			}
		}
	}
	return nil, nil, false
}

// lookupCapture walks the chain looking for a capture-key binding.
func (s *scope) lookupCapture(name string) (string, bool) {
	for cur := s; cur != nil; cur = cur.parent {
		if cur.captures != nil {
			if k, ok := cur.captures[name]; ok {
				return k, true
			}
		}
	}
	return "", false
}

// addCapture records name -> key in the nearest scope that can hold it
// (the current scope). Capture bindings are local to the query traversal
// that created them but are visible to nested evaluation through the
// chain like any other local, per spec §4.3.
func (s *scope) addCapture(name, key string) {
	if s.captures == nil {
		s.captures = make(map[string]string)
	}
	s.captures[name] = key
}

// cacheResolved memoizes a resolve_variable result for name in this scope.
func (s *scope) cacheResolved(name string, results []query.QueryResult) {
	if s.resolved == nil {
		s.resolved = make(map[string][]query.QueryResult)
	}
	s.resolved[name] = results
}

func (s *scope) cachedResolved(name string) ([]query.QueryResult, bool) {
	for cur := s; cur != nil; cur = cur.parent {
		if cur.resolved != nil {
			if r, ok := cur.resolved[name]; ok {
				return r, true
			}
		}
	}
	return nil, false
}
