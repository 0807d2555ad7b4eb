// Package report implements report flattening (spec §4.5): it walks the
// event tree an evaluation produced and converts it into a FAIL-oriented
// tree suitable for human and machine consumption, discarding every
// subtree whose Status is not FAIL.
//
// Grounded on the teacher's policy.Decision/PolicyMatch shaping
// (_examples/holomush-holomush/internal/access/policy/engine.go): a small
// reporting struct constructed from the evaluation's internal state at the
// package boundary, rather than exposing the recorder's own Event type to
// callers outside the core.
package report

import (
	"github.com/ruleweave/ruleweave/internal/eval"
	"github.com/ruleweave/ruleweave/internal/record"
)

// ClauseReportKind discriminates the four report node kinds spec §4.5
// names: Rule, Block, Disjunctions, Clause.
type ClauseReportKind string

const (
	KindRule         ClauseReportKind = "Rule"
	KindBlock        ClauseReportKind = "Block"
	KindDisjunctions ClauseReportKind = "Disjunctions"
	KindClause       ClauseReportKind = "Clause"
)

// ClauseReport is one node of the failure-oriented report tree. Binary
// clause failures carry both From and To; unary failures (EXISTS, EMPTY,
// IS_*) carry only From and set Unary (spec §4.5, SPEC_FULL.md supplemented
// feature 3: unary clauses are a distinct diagnostic shape from binary
// ones, not a binary comparison with an empty RHS).
type ClauseReport struct {
	Kind     ClauseReportKind `json:"kind"`
	Label    string           `json:"label,omitempty"`
	Operator string           `json:"operator,omitempty"`
	From     string           `json:"from,omitempty"`
	To       string           `json:"to,omitempty"`
	Unary    bool             `json:"unary,omitempty"`
	Message  string           `json:"message,omitempty"`
	Children []*ClauseReport  `json:"children,omitempty"`
}

// RuleSet partitions every evaluated rule/type-block name by outcome (spec
// §6.3: "a FileReport containing per-rule compliant/not-applicable/
// not-compliant sets").
type RuleSet struct {
	Compliant    []string `json:"compliant"`
	NotApplicable []string `json:"not_applicable"`
	NotCompliant []string `json:"not_compliant"`
}

// FileReport is the full outcome of evaluating one rules file against one
// document (spec §6.3 invocation contract).
type FileReport struct {
	Status  string          `json:"status"`
	Rules   RuleSet         `json:"rules"`
	Failures []*ClauseReport `json:"failures,omitempty"`
}

// recordKindToReportKind maps an eval.RecordKind onto the report node kind
// its completed event should surface as, when that event's Status is FAIL.
// Kinds with no entry (e.g. RecordFile, RecordFilter) are walked through
// transparently: their FAIL children are hoisted rather than wrapped in an
// extra report node, since the file-level wrapper and raw Filter steps add
// no information a reader of the flattened report needs.
func recordKindToReportKind(k eval.RecordKind) (ClauseReportKind, bool) {
	switch k {
	case eval.RecordRule, eval.RecordTypeBlock:
		return KindRule, true
	case eval.RecordRuleCondition, eval.RecordWhenCheck, eval.RecordBlockCheck, eval.RecordBlockGuardCheck, eval.RecordTypeCheck:
		return KindBlock, true
	case eval.RecordDisjunction:
		return KindDisjunctions, true
	case eval.RecordClauseValueCheck, eval.RecordDependentRule:
		return KindClause, true
	default:
		return "", false
	}
}

// Flatten builds a FileReport from an evaluator's FileResult and the
// root event its Recorder produced (record.Recorder.Root(), after
// Evaluate has returned). root may be nil if the caller ran without a
// recorder (eval.Evaluate(file, doc, nil)); the report then has empty
// Failures but still carries the rule-level partition.
func Flatten(result *eval.FileResult, root *record.Event) *FileReport {
	fr := &FileReport{Status: result.Status.String()}
	for _, r := range result.Rules {
		switch r.Status {
		case eval.Pass:
			fr.Rules.Compliant = append(fr.Rules.Compliant, r.Name)
		case eval.Skip:
			fr.Rules.NotApplicable = append(fr.Rules.NotApplicable, r.Name)
		case eval.Fail:
			fr.Rules.NotCompliant = append(fr.Rules.NotCompliant, r.Name)
		}
	}

	if root == nil {
		return fr
	}
	for _, child := range root.Children {
		if child.Status != eval.Fail {
			continue
		}
		fr.Failures = append(fr.Failures, flattenEvent(child)...)
	}
	return fr
}

// flattenEvent converts a single FAIL event into zero or more ClauseReport
// nodes: one if the event's kind maps to a report node kind, or its
// flattened children hoisted directly if it does not (spec §4.5: "Walks
// the event tree emitting only FAIL subtrees").
func flattenEvent(ev *record.Event) []*ClauseReport {
	var failChildren []*ClauseReport
	for _, c := range ev.Children {
		if c.Status != eval.Fail {
			continue
		}
		failChildren = append(failChildren, flattenEvent(c)...)
	}

	kind, ok := recordKindToReportKind(ev.Kind)
	if !ok {
		return failChildren
	}

	node := &ClauseReport{
		Kind:     kind,
		Label:    ev.Label,
		Children: failChildren,
	}
	if kind == KindClause {
		node.Operator = ev.Detail.Label
		node.From = ev.Detail.From
		node.To = ev.Detail.To
		node.Unary = ev.Detail.Unary
	}
	node.Message = ev.Detail.Message
	return []*ClauseReport{node}
}
