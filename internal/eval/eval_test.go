package eval_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ruleweave/ruleweave/internal/eval"
	"github.com/ruleweave/ruleweave/internal/lang"
	"github.com/ruleweave/ruleweave/internal/pathvalue"
	"github.com/ruleweave/ruleweave/internal/value"
)

func mustParseRules(t *testing.T, src string) *lang.RulesFile {
	t.Helper()
	f, err := lang.Parse("test.guard", src)
	require.NoError(t, err)
	return f
}

func docRoot(t *testing.T, doc any) pathvalue.PathValue {
	t.Helper()
	return pathvalue.Root(value.FromAny(doc))
}

func ruleStatus(t *testing.T, result *eval.FileResult, name string) eval.Status {
	t.Helper()
	for _, r := range result.Rules {
		if r.Name == name {
			return r.Status
		}
	}
	t.Fatalf("no result for rule %q", name)
	return eval.Fail
}

// Scenario 1 (spec §8): wildcard comparison fails when one element's value
// does not match the regex.
func TestScenario1_WildcardRegexFails(t *testing.T) {
	f := mustParseRules(t, `rule r {
  Resources.*.Properties.Name == /NAME/
}`)
	doc := map[string]any{
		"Resources": map[string]any{
			"a": map[string]any{"Properties": map[string]any{"Name": "hasNAME"}},
			"b": map[string]any{"Properties": map[string]any{"Name": "other"}},
		},
	}
	result := eval.Evaluate(f, docRoot(t, doc), nil)
	assert.Equal(t, eval.Fail, result.Status)
	assert.Equal(t, eval.Fail, ruleStatus(t, result, "r"))
}

// Scenario 2: a when-gate that itself FAILs converts the rule to SKIP.
func TestScenario2_WhenGateSkipsRule(t *testing.T) {
	f := mustParseRules(t, `rule e when skip !exists {
  Resources.*.Properties.Tags !empty
}`)
	doc := map[string]any{
		"skip":      true,
		"Resources": map[string]any{},
	}
	result := eval.Evaluate(f, docRoot(t, doc), nil)
	assert.Equal(t, eval.Skip, ruleStatus(t, result, "e"))
	assert.Equal(t, eval.Pass, result.Status) // SKIP counts as file-level PASS
}

// Scenario 3: "some" qualifier passes if at least one element matches;
// an empty list fails (no elements to satisfy "some").
func TestScenario3_SomeQualifier(t *testing.T) {
	f := mustParseRules(t, `rule r {
  some Tags[*].Key == /PROD/
}`)

	passDoc := map[string]any{
		"Tags": []any{
			map[string]any{"Key": "InPROD"},
			map[string]any{"Key": "NoP"},
		},
	}
	passResult := eval.Evaluate(f, docRoot(t, passDoc), nil)
	assert.Equal(t, eval.Pass, ruleStatus(t, passResult, "r"))

	failDoc := map[string]any{"Tags": []any{}}
	failResult := eval.Evaluate(f, docRoot(t, failDoc), nil)
	assert.Equal(t, eval.Fail, ruleStatus(t, failResult, "r"))
}

// Scenario 4: nested filter + MapKeyFilter over IAM-like statements.
func TestScenario4_FilterAndMapKeyFilter(t *testing.T) {
	f := mustParseRules(t, `rule r {
  Statement[ Condition exists ].Condition.*[ keys == /aws:[sS]ource(Vpc|VPC|Vpce|VPCE)/ ] !empty
}`)

	withKey := map[string]any{
		"Statement": []any{
			map[string]any{
				"Condition": map[string]any{
					"StringEquals": map[string]any{"aws:SourceVpc": "vpc-1"},
				},
			},
		},
	}
	result := eval.Evaluate(f, docRoot(t, withKey), nil)
	assert.Equal(t, eval.Pass, ruleStatus(t, result, "r"))

	withoutKey := map[string]any{
		"Statement": []any{
			map[string]any{
				"Condition": map[string]any{
					"StringEquals": map[string]any{"SomethingElse": "x"},
				},
			},
		},
	}
	result2 := eval.Evaluate(f, docRoot(t, withoutKey), nil)
	assert.Equal(t, eval.Fail, ruleStatus(t, result2, "r"))
}

// Scenario 5: inclusive integer range clause.
func TestScenario5_RangeClause(t *testing.T) {
	f := mustParseRules(t, `rule r {
  this[*] in r[0, 65535]
}`)

	passDoc := []any{float64(21), float64(22), float64(101)}
	result := eval.Evaluate(f, docRoot(t, passDoc), nil)
	assert.Equal(t, eval.Pass, ruleStatus(t, result, "r"))

	failDoc := []any{float64(21), float64(22), float64(101), float64(100000)}
	result2 := eval.Evaluate(f, docRoot(t, failDoc), nil)
	assert.Equal(t, eval.Fail, ruleStatus(t, result2, "r"))
}

// Scenario 6: cross-reference via a "some"-qualified let binding whose
// resolved values are used as map keys in a later BlockClause.
func TestScenario6_CrossReference(t *testing.T) {
	f := mustParseRules(t, `let refs = some Resources.*[ Type == 'AWS::Lambda::Function' ].Properties.Role.Ref
rule r {
  Resources.%refs {
    Type == 'AWS::IAM::Role'
  }
}`)

	doc := map[string]any{
		"Resources": map[string]any{
			"MyFunc": map[string]any{
				"Type": "AWS::Lambda::Function",
				"Properties": map[string]any{
					"Role": map[string]any{"Ref": "MyRole"},
				},
			},
			"OtherFunc": map[string]any{
				"Type": "AWS::Lambda::Function",
				"Properties": map[string]any{
					"Role": "arn:aws:iam::123:role/literal",
				},
			},
			"MyRole": map[string]any{
				"Type": "AWS::IAM::Role",
			},
		},
	}
	result := eval.Evaluate(f, docRoot(t, doc), nil)
	assert.Equal(t, eval.Pass, ruleStatus(t, result, "r"))
}

// Testable property: empty-collection rule.
func TestEmptyCollectionRule(t *testing.T) {
	f := mustParseRules(t, `rule r1 {
  Tags[*].X == 1
}
rule r2 {
  Tags empty
}
rule r3 {
  Tags !empty
}`)
	doc := map[string]any{"Tags": []any{}}
	result := eval.Evaluate(f, docRoot(t, doc), nil)
	assert.Equal(t, eval.Fail, ruleStatus(t, result, "r1"))
	assert.Equal(t, eval.Pass, ruleStatus(t, result, "r2"))
	assert.Equal(t, eval.Fail, ruleStatus(t, result, "r3"))
}

// Testable property: memoization, exercised through two rules referencing
// a common named rule.
func TestRuleMemoizationConsistency(t *testing.T) {
	f := mustParseRules(t, `rule base {
  this.Name == "ok"
}
rule a {
  base
}
rule b {
  base
}`)
	doc := map[string]any{"Name": "ok"}
	result := eval.Evaluate(f, docRoot(t, doc), nil)
	assert.Equal(t, eval.Pass, ruleStatus(t, result, "a"))
	assert.Equal(t, eval.Pass, ruleStatus(t, result, "b"))
}

// Testable property: disjunction short-circuits on the first PASS branch.
func TestDisjunctionShortCircuit(t *testing.T) {
	f := mustParseRules(t, `rule r {
  this.A == 1 or this.B == 2
}`)
	doc := map[string]any{"A": float64(1), "B": float64(99)}
	result := eval.Evaluate(f, docRoot(t, doc), nil)
	assert.Equal(t, eval.Pass, ruleStatus(t, result, "r"))
}
