package eval

import (
	"github.com/ruleweave/ruleweave/internal/lang"
	"github.com/ruleweave/ruleweave/internal/pathvalue"
	"github.com/ruleweave/ruleweave/internal/query"
	"github.com/ruleweave/ruleweave/internal/value"
)

// evalComparisonClause implements the comparison algorithm (spec §4.3):
// evaluate the LHS query, dispatch to the unary (exists/empty/is_*) or
// binary operator family, and fold the per-pair results according to
// matchAll ("every resolved must satisfy") or some ("at least one pair").
func (e *Evaluator) evalComparisonClause(scope *scope, c *lang.ComparisonClause, matchAll bool) (Status, error) {
	handle := e.recorder.Start(RecordClauseValueCheck, c.Query.String())
	lhsResults, err := e.runQuery(scope, c.Query)
	if err != nil {
		e.recorder.End(handle, Fail, Detail{Message: err.Error()})
		return Fail, nil
	}

	var status Status
	from := describeResults(lhsResults)
	to := ""
	unary := c.IsUnary()
	if unary {
		status = evalUnary(lhsResults, c.Op, matchAll)
	} else {
		var rhsResults []query.QueryResult
		status, rhsResults = e.evalBinary(scope, lhsResults, c, matchAll)
		to = describeResults(rhsResults)
	}
	e.recorder.End(handle, status, Detail{Label: c.Op, From: from, To: to, Unary: unary})
	return status, nil
}

// describeResults renders a short from/to diagnostic string for the event
// record (spec §4.4/§4.5: "binary clause failures carry both from- and
// to- sides, resolved or unresolved"). Resolved/Literal results show their
// path-aware value's path (or a literal marker); Unresolved results show
// the traversal failure reason.
func describeResults(results []query.QueryResult) string {
	if len(results) == 0 {
		return ""
	}
	r := results[0]
	if !r.IsResolved() {
		return "<unresolved: " + r.Reason + ">"
	}
	if r.Value.Path == "" {
		return "<literal>"
	}
	return r.Value.Path
}

// evalUnary evaluates exists/empty/is_* against every LHS result and folds
// with matchAll/some. Unlike binary comparisons, UnResolved results are
// not an automatic FAIL: "exists" is false for them, "empty" is true for
// them, "is_*" is false for them — the fold then produces the right
// outcome (e.g. a negated "!exists" flips a false-per-result fold into
// PASS, consuming the UnResolved as success per spec §4.3 step 1).
func evalUnary(results []query.QueryResult, op string, matchAll bool) Status {
	if len(results) == 0 {
		return Fail
	}
	satisfiedCount := 0
	for _, r := range results {
		if unarySatisfied(op, r) {
			satisfiedCount++
		} else if matchAll {
			return Fail
		}
	}
	if matchAll {
		return Pass
	}
	if satisfiedCount > 0 {
		return Pass
	}
	return Fail
}

func unarySatisfied(op string, r query.QueryResult) bool {
	switch op {
	case "exists":
		return r.IsResolved()
	case "empty":
		if !r.IsResolved() {
			return true
		}
		return isEmptyValue(r.Value.Value)
	default:
		if !r.IsResolved() {
			return false
		}
		return isKindCheck(op, r.Value.Value)
	}
}

func isEmptyValue(v value.Value) bool {
	switch v.Kind {
	case value.KindList:
		return len(v.List) == 0
	case value.KindMap:
		return len(v.Keys) == 0
	case value.KindString:
		return v.String == ""
	case value.KindNull:
		return true
	default:
		return false
	}
}

// evalBinary evaluates a non-unary comparison: resolve the RHS, then fold
// every (resolved LHS, resolved RHS) pair through the operator. Returns the
// resolved RHS results alongside the Status so the caller can describe
// both sides of the comparison for the event record.
func (e *Evaluator) evalBinary(scope *scope, lhsResults []query.QueryResult, c *lang.ComparisonClause, matchAll bool) (Status, []query.QueryResult) {
	if matchAll {
		for _, l := range lhsResults {
			if !l.IsResolved() {
				return Fail, nil
			}
		}
	}

	rhsResults, err := e.evalRhs(scope, c.Rhs)
	if err != nil {
		return Fail, nil
	}

	pairCount := 0
	satisfiedCount := 0
	for _, l := range lhsResults {
		if !l.IsResolved() {
			continue
		}
		for _, r := range rhsResults {
			if !r.IsResolved() {
				continue
			}
			pairCount++
			ok, err := compareBinary(l.Value.Value, r.Value.Value, c.Op)
			if err != nil || !ok {
				if matchAll {
					return Fail, rhsResults
				}
				continue
			}
			satisfiedCount++
		}
	}
	if pairCount == 0 {
		return Fail, rhsResults
	}
	if matchAll {
		return Pass, rhsResults
	}
	if satisfiedCount > 0 {
		return Pass, rhsResults
	}
	return Fail, rhsResults
}

// evalRhs resolves the right-hand side of a binary comparison to a list of
// QueryResult. A ListLiteral collapses to a single List-typed Value (not
// one QueryResult per element) so List/scalar comparison semantics in
// compare.go apply uniformly regardless of whether the list came from a
// literal or a query.
func (e *Evaluator) evalRhs(scope *scope, rhs *lang.Rhs) ([]query.QueryResult, error) {
	if rhs == nil {
		return nil, nil
	}
	switch {
	case rhs.Literal != nil:
		v, err := literalToValue(rhs.Literal)
		if err != nil {
			return nil, err
		}
		return []query.QueryResult{{Kind: query.Literal, Value: pathvalue.Root(v)}}, nil

	case rhs.List != nil:
		items := make([]value.Value, len(rhs.List.Values))
		for i, lit := range rhs.List.Values {
			v, err := literalToValue(lit)
			if err != nil {
				return nil, err
			}
			items[i] = v
		}
		return []query.QueryResult{{Kind: query.Literal, Value: pathvalue.Root(value.NewList(items))}}, nil

	case rhs.Query != nil:
		return e.runQuery(scope, rhs.Query)

	default:
		return nil, nil
	}
}
