// Package query implements the query engine (spec §4.2): given a
// path-aware value, an AccessQuery, and an evaluation environment, it
// produces the list of QueryResult the query yields.
package query

import (
	"github.com/ruleweave/ruleweave/internal/lang"
	"github.com/ruleweave/ruleweave/internal/pathvalue"
)

// ResultKind discriminates the three QueryResult variants (spec §4.2).
type ResultKind int

const (
	Resolved ResultKind = iota
	Literal
	Unresolved
)

// Env is the capability set the query engine needs from its caller (spec
// §4.3 EvaluationContext, restricted to what queries consult). Defined
// here (not in internal/eval) so internal/query has no dependency on
// internal/eval, even though the evaluator is Env's only implementation —
// the evaluator needs the query engine, and the query engine's Filter and
// variable-reference handling needs to call back into the evaluator, so the capability boundary is inverted here rather than
// creating an import cycle.
type Env interface {
	// ResolveVariable resolves a "%name" reference to the list of Results
	// bound to name in the current scope (a let binding or a capture key).
	ResolveVariable(name string) ([]QueryResult, error)

	// AddCaptureKey records that, while iterating AllValues, the current
	// step's map key should be bound under name for the remainder of this
	// query's evaluation (spec §4.3 add_variable_capture_key).
	AddCaptureKey(name, key string)

	// EvalGuard evaluates clauses with root as the scope's root value,
	// returning PASS (true) or not (false). Used by Filter brackets.
	EvalGuard(root pathvalue.PathValue, clauses *lang.Disjunction) (bool, error)
}

// QueryResult is one outcome of evaluating a query (spec §4.2).
type QueryResult struct {
	Kind ResultKind

	// Value holds the path-aware value for Resolved and Literal results.
	Value pathvalue.PathValue

	// TraversedTo is the deepest value reached before traversal failed
	// (Unresolved only).
	TraversedTo pathvalue.PathValue

	// RemainingQuery is the unapplied suffix of query parts (Unresolved only).
	RemainingQuery []*lang.QueryPart

	// Reason is a short diagnostic, e.g. "no more entries", "key not found".
	Reason string
}

func resolved(v pathvalue.PathValue) QueryResult {
	return QueryResult{Kind: Resolved, Value: v}
}

func unresolved(traversedTo pathvalue.PathValue, remaining []*lang.QueryPart, reason string) QueryResult {
	return QueryResult{Kind: Unresolved, TraversedTo: traversedTo, RemainingQuery: remaining, Reason: reason}
}

// IsResolved reports whether this result reached a concrete value.
func (r QueryResult) IsResolved() bool { return r.Kind == Resolved || r.Kind == Literal }
