package eval

import (
	"github.com/ruleweave/ruleweave/internal/lang"
)

// typeBlockQuery builds the AST for "Resources.*[ Type == "<typeName>" ]"
// by hand rather than re-parsing DSL text (spec §3.3: "TypeBlock is
// shorthand for Resources.*[ Type == "T" ] plus a block").
func typeBlockQuery(typeName string) *lang.AccessQuery {
	resourcesKey := "Resources"
	typeKey := "Type"
	lit := typeName
	return &lang.AccessQuery{
		Parts: []*lang.QueryPart{
			{Key: &resourcesKey},
			{Star: true},
			{Bracket: &lang.BracketPart{
				Filter: &lang.Disjunction{
					Clauses: []*lang.GuardClause{{
						Compare: &lang.ComparisonClause{
							Query: &lang.AccessQuery{Parts: []*lang.QueryPart{{Key: &typeKey}}},
							Op:    "==",
							Rhs:   &lang.Rhs{Literal: &lang.Literal{Str: &lit}},
						},
					}},
				},
			}},
		},
	}
}

// evalTypeBlock evaluates a TypeBlock: every Resources entry whose Type
// matches must satisfy Body (an implicit AND across matches, matching
// BlockClause's fan-out semantics since the two are the same shape per
// spec §3.3).
func (e *Evaluator) evalTypeBlock(tb *lang.TypeBlock) (Status, error) {
	handle := e.recorder.Start(RecordTypeBlock, tb.Type)
	results, err := e.runQuery(e.rootScope, typeBlockQuery(tb.Type))
	if err != nil {
		e.recorder.End(handle, Fail, Detail{Message: err.Error()})
		return Fail, nil
	}

	sawAny := false
	allSkip := true
	status := Pass
	for _, r := range results {
		if !r.IsResolved() {
			continue
		}
		sawAny = true
		childScope := newValueScope(e.rootScope, r.Value)
		checkHandle := e.recorder.Start(RecordTypeCheck, r.Value.Path)
		st, _ := e.evalBlock(childScope, tb.Body)
		e.recorder.End(checkHandle, st, Detail{Label: r.Value.Path})
		if st != Skip {
			allSkip = false
		}
		if st == Fail {
			status = Fail
			break
		}
	}
	if !sawAny || allSkip {
		status = Skip
	} else if status != Fail {
		status = Pass
	}
	e.recorder.End(handle, status, Detail{Label: tb.Type})
	return status, nil
}
