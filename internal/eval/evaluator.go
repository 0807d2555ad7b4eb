package eval

import (
	"fmt"

	"github.com/samber/oops"

	"github.com/ruleweave/ruleweave/internal/lang"
	"github.com/ruleweave/ruleweave/internal/pathvalue"
	"github.com/ruleweave/ruleweave/internal/query"
	"github.com/ruleweave/ruleweave/internal/value"
)

// errMissingValue marks a rule or variable reference that does not exist
// in scope (spec §7 MissingValue). It aborts only the clause that
// triggered it, never the whole file evaluation.
type errMissingValue struct {
	name string
	kind string
}

func (e *errMissingValue) Error() string {
	return fmt.Sprintf("missing %s: %s", e.kind, e.name)
}

// Evaluator applies a parsed RulesFile against a root path-aware value. It
// implements query.Env so the query engine can call back into variable
// resolution, capture-key binding, and guard evaluation (Filter brackets)
// without internal/query depending on internal/eval.
//
// Mirrors the teacher's EvalContext (internal/access/policy/dsl/evaluator.go):
// a single mutable context struct threaded through a recursive depth-first
// walk, rather than a value passed by copy at every call.
type Evaluator struct {
	rules map[string]*lang.Rule

	memo         map[string]Status
	memoInFlight map[string]bool

	recorder Recorder

	rootScope *scope
	// curScope is the scope in effect for the query currently being
	// evaluated; runQuery saves/restores it around each query.Evaluate
	// call so query.Env methods (which take no scope parameter) resolve
	// against the right frame.
	curScope *scope
}

// FileResult is the outcome of evaluating every rule in a RulesFile (spec
// §6.3 invocation contract): a file-level Status (PASS iff every rule is
// PASS or SKIP) plus each rule's individual Status.
type FileResult struct {
	Status Status
	Rules  []RuleResult
}

// RuleResult names one rule's outcome.
type RuleResult struct {
	Name   string
	Status Status
}

// Evaluate parses nothing (the caller already has file and root) and
// produces the file-level result, running every rule in source order
// (named-rule references trigger lazily-memoized out-of-order evaluation
// of their targets, per spec §4.3).
func Evaluate(file *lang.RulesFile, root pathvalue.PathValue, recorder Recorder) *FileResult {
	if recorder == nil {
		recorder = nopRecorder{}
	}
	e := newEvaluator(file, root, recorder)

	fileHandle := e.recorder.Start(RecordFile, "file")
	overall := Pass
	var results []RuleResult
	for _, entry := range file.Entries {
		switch {
		case entry.Rule != nil:
			st, _ := e.ruleStatus(entry.Rule.Name)
			results = append(results, RuleResult{Name: entry.Rule.Name, Status: st})
			if st == Fail {
				overall = Fail
			}

		case entry.TypeBlock != nil:
			name := "type " + entry.TypeBlock.Type
			st, _ := e.evalTypeBlock(entry.TypeBlock)
			results = append(results, RuleResult{Name: name, Status: st})
			if st == Fail {
				overall = Fail
			}
		}
	}
	e.recorder.End(fileHandle, overall, Detail{Label: "file"})
	return &FileResult{Status: overall, Rules: results}
}

func newEvaluator(file *lang.RulesFile, root pathvalue.PathValue, recorder Recorder) *Evaluator {
	e := &Evaluator{
		rules:        make(map[string]*lang.Rule),
		memo:         make(map[string]Status),
		memoInFlight: make(map[string]bool),
		recorder:     recorder,
	}
	fileLets := make(map[string]*lang.Let)
	for _, entry := range file.Entries {
		switch {
		case entry.Rule != nil:
			e.rules[entry.Rule.Name] = entry.Rule
		case entry.Let != nil:
			fileLets[entry.Let.Name] = entry.Let
		}
	}
	e.rootScope = newRootScope(root, fileLets)
	e.curScope = e.rootScope
	return e
}

// --- query.Env implementation ---

var _ query.Env = (*Evaluator)(nil)

func (e *Evaluator) ResolveVariable(name string) ([]query.QueryResult, error) {
	return e.resolveVariable(e.curScope, name)
}

func (e *Evaluator) AddCaptureKey(name, key string) {
	e.curScope.addCapture(name, key)
}

// EvalGuard evaluates a Filter bracket's inner clauses against one
// candidate element, recording a Filter event per iteration (spec §4.2:
// "Records a Filter event for each iteration").
func (e *Evaluator) EvalGuard(root pathvalue.PathValue, clauses *lang.Disjunction) (bool, error) {
	handle := e.recorder.Start(RecordFilter, root.Path)
	child := newValueScope(e.curScope, root)
	status, _ := e.evalDisjunctionWithScope(child, clauses)
	e.recorder.End(handle, status, Detail{Label: root.Path})
	return status == Pass, nil
}

// runQuery evaluates q with scope as the active frame, restoring the
// previous frame before returning (query.Env's methods have no scope
// parameter, so e.curScope is this evaluation's implicit argument).
func (e *Evaluator) runQuery(scope *scope, q *lang.AccessQuery) ([]query.QueryResult, error) {
	prev := e.curScope
	e.curScope = scope
	defer func() { e.curScope = prev }()
	return query.Evaluate(scope.root, q, e)
}

// resolveVariable implements "%name" resolution (spec §4.3
// resolve_variable): checks the per-scope cache, then a let binding, then
// a capture-key binding, walking the scope chain.
func (e *Evaluator) resolveVariable(scope *scope, name string) ([]query.QueryResult, error) {
	if cached, ok := scope.cachedResolved(name); ok {
		return cached, nil
	}
	if letAST, ownerScope, ok := scope.lookupLet(name); ok {
		results, err := e.evalLetExpr(ownerScope, letAST.Value)
		if err != nil {
			return nil, err
		}
		ownerScope.cacheResolved(name, results)
		return results, nil
	}
	if key, ok := scope.lookupCapture(name); ok {
		results := []query.QueryResult{{
			Kind:  query.Literal,
			Value: pathvalue.Root(value.NewString(key)),
		}}
		return results, nil
	}
	return nil, &errMissingValue{name: name, kind: "variable"}
}

func (e *Evaluator) evalLetExpr(scope *scope, le *lang.LetExpr) ([]query.QueryResult, error) {
	switch {
	case le.Literal != nil:
		v, err := literalToValue(le.Literal)
		if err != nil {
			return nil, err
		}
		return []query.QueryResult{{Kind: query.Literal, Value: pathvalue.Root(v)}}, nil

	case le.Query != nil:
		results, err := e.runQuery(scope, le.Query)
		if err != nil {
			return nil, err
		}
		if le.Some {
			// "some" accepts partial resolution: drop UnResolved entries
			// rather than letting them poison every later use of the
			// variable (spec §8 scenario 6).
			filtered := results[:0]
			for _, r := range results {
				if r.IsResolved() {
					filtered = append(filtered, r)
				}
			}
			return filtered, nil
		}
		return results, nil

	case le.Call != nil:
		return nil, oops.Code("UNSUPPORTED_LET_CALL").
			With("name", le.Call.Name).
			Errorf("parameterized function calls in let expressions are not supported")

	default:
		return nil, oops.Code("MALFORMED_LET_EXPR").Errorf("let expression has no value")
	}
}

// literalToValue converts an AST Literal into a generic Value.
func literalToValue(lit *lang.Literal) (value.Value, error) {
	switch {
	case lit.Range != nil:
		lower, upper := lit.Range.Lower, lit.Range.Upper
		li, ui := lit.Range.LowerInclusive(), lit.Range.UpperInclusive()
		if lower == float64(int64(lower)) && upper == float64(int64(upper)) {
			return value.NewRangeInt(int64(lower), int64(upper), li, ui), nil
		}
		return value.NewRangeFloat(lower, upper, li, ui), nil
	case lit.Str != nil:
		return value.NewString(*lit.Str), nil
	case lit.Regex != nil:
		return value.NewRegex(*lit.Regex), nil
	case lit.Bool != nil:
		return value.NewBool(lit.BoolValue()), nil
	case lit.Number != nil:
		n := *lit.Number
		if n == float64(int64(n)) {
			return value.NewInt(int64(n)), nil
		}
		return value.NewFloat(n), nil
	default:
		return value.Value{}, oops.Code("MALFORMED_LITERAL").Errorf("literal has no value")
	}
}

// --- rule evaluation & memoization ---

// ruleStatus evaluates (and memoizes) the named rule, matching teacher's
// lazy-memoized rule_status with the spec's cycle-break rule: a rule
// currently being evaluated that is referenced again (directly or through
// a "when" guard) returns SKIP rather than recursing forever.
func (e *Evaluator) ruleStatus(name string) (Status, error) {
	if st, ok := e.memo[name]; ok {
		return st, nil
	}
	if e.memoInFlight[name] {
		return Skip, nil
	}
	rule, ok := e.rules[name]
	if !ok {
		return Fail, &errMissingValue{name: name, kind: "rule"}
	}

	e.memoInFlight[name] = true
	handle := e.recorder.Start(RecordRule, name)
	status, _ := e.evalRule(rule)
	e.recorder.End(handle, status, Detail{Label: name})
	delete(e.memoInFlight, name)

	e.memo[name] = status
	return status, nil
}

func (e *Evaluator) evalRule(rule *lang.Rule) (Status, error) {
	ruleScope := newRuleScope(e.rootScope, e.rootScope.root)
	if rule.When != nil {
		handle := e.recorder.Start(RecordRuleCondition, rule.Name)
		whenStatus, _ := e.evalDisjunctionWithScope(ruleScope, rule.When)
		e.recorder.End(handle, whenStatus, Detail{Label: "when"})
		if override, skip := whenGate(whenStatus); skip {
			return override, nil
		}
	}
	return e.evalBlock(ruleScope, rule.Body)
}

// --- block / conjunction / disjunction ---

func (e *Evaluator) evalBlock(parent *scope, block *lang.Block) (Status, error) {
	lets := make(map[string]*lang.Let)
	for _, entry := range block.Entries {
		if entry.Let != nil {
			lets[entry.Let.Name] = entry.Let
		}
	}
	blockScope := newBlockScope(parent, lets)

	sawAny := false
	allSkip := true
	for _, entry := range block.Entries {
		if entry.Disjunction == nil {
			continue
		}
		sawAny = true
		st, _ := e.evalDisjunctionWithScope(blockScope, entry.Disjunction)
		if st == Fail {
			return Fail, nil
		}
		if st != Skip {
			allSkip = false
		}
	}
	if !sawAny {
		return Pass, nil
	}
	if allSkip {
		return Skip, nil
	}
	return Pass, nil
}

// evalDisjunctionWithScope implements OR: PASS absorbs (short-circuit,
// left to right); SKIP propagates only if every disjunct is SKIP;
// otherwise FAIL (spec §4.3).
func (e *Evaluator) evalDisjunctionWithScope(scope *scope, disj *lang.Disjunction) (Status, error) {
	handle := e.recorder.Start(RecordDisjunction, "")
	allSkip := true
	status := Fail
	for _, clause := range disj.Clauses {
		st, _ := e.evalGuardClause(scope, clause)
		if st != Skip {
			allSkip = false
		}
		if st == Pass {
			status = Pass
			break
		}
	}
	if allSkip {
		status = Skip
	}
	e.recorder.End(handle, status, Detail{})
	return status, nil
}

func (e *Evaluator) evalGuardClause(scope *scope, g *lang.GuardClause) (Status, error) {
	var status Status
	switch {
	case g.When != nil:
		status, _ = e.evalNestedWhen(scope, g.When)
	case g.Block != nil:
		status, _ = e.evalBlockClause(scope, g.Block)
	case g.Compare != nil:
		status, _ = e.evalComparisonClause(scope, g.Compare, g.MatchAll())
	case g.Named != nil:
		status, _ = e.evalNamedRuleClause(scope, *g.Named)
	default:
		status = Skip
	}
	if g.Not && status != Skip {
		if status == Pass {
			status = Fail
		} else {
			status = Pass
		}
	}
	return status, nil
}

func (e *Evaluator) evalNestedWhen(scope *scope, w *lang.WhenGuard) (Status, error) {
	handle := e.recorder.Start(RecordWhenCheck, "")
	condStatus, _ := e.evalDisjunctionWithScope(scope, w.Cond)
	if override, skip := whenGate(condStatus); skip {
		e.recorder.End(handle, override, Detail{Label: "when-gated"})
		return override, nil
	}
	status, _ := e.evalBlock(scope, w.Body)
	e.recorder.End(handle, status, Detail{})
	return status, nil
}

// evalBlockClause scopes Body to each value Query yields (spec §3.3
// BlockClause). Every targeted value must pass for the clause to pass
// (an implicit AND across the query's fan-out), matching spec §8 scenario
// 6's "Resources.%refs { Type == ... }" requiring each referenced
// resource to satisfy the nested block. Records a GuardClauseBlockCheck
// for the clause as a whole and one BlockGuardCheck per targeted value
// (spec §4.4).
func (e *Evaluator) evalBlockClause(scope *scope, bc *lang.BlockClause) (Status, error) {
	handle := e.recorder.Start(RecordBlockCheck, bc.Query.String())
	results, err := e.runQuery(scope, bc.Query)
	if err != nil {
		e.recorder.End(handle, Fail, Detail{Message: err.Error()})
		return Fail, nil
	}
	if len(results) == 0 {
		e.recorder.End(handle, Fail, Detail{Message: "no targets"})
		return Fail, nil
	}

	sawAny := false
	allSkip := true
	status := Skip
	for _, r := range results {
		var childRoot pathvalue.PathValue
		if r.IsResolved() {
			childRoot = r.Value
		} else {
			childRoot = r.TraversedTo
		}
		childScope := newValueScope(scope, childRoot)
		guardHandle := e.recorder.Start(RecordBlockGuardCheck, childRoot.Path)
		st, _ := e.evalBlock(childScope, bc.Body)
		e.recorder.End(guardHandle, st, Detail{Label: childRoot.Path})
		sawAny = true
		if st == Fail {
			status = Fail
			break
		}
		if st != Skip {
			allSkip = false
		}
	}
	if status != Fail {
		if !sawAny || allSkip {
			status = Skip
		} else {
			status = Pass
		}
	}
	e.recorder.End(handle, status, Detail{})
	return status, nil
}

func (e *Evaluator) evalNamedRuleClause(scope *scope, name string) (Status, error) {
	_ = scope
	handle := e.recorder.Start(RecordDependentRule, name)
	st, err := e.ruleStatus(name)
	if err != nil {
		e.recorder.End(handle, Fail, Detail{Message: err.Error()})
		return Fail, nil
	}
	e.recorder.End(handle, st, Detail{})
	return st, nil
}
