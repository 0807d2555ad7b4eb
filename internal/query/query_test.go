package query_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ruleweave/ruleweave/internal/lang"
	"github.com/ruleweave/ruleweave/internal/pathvalue"
	"github.com/ruleweave/ruleweave/internal/query"
	"github.com/ruleweave/ruleweave/internal/value"
)

// fakeEnv is a minimal query.Env for exercising Evaluate in isolation from
// internal/eval.
type fakeEnv struct {
	vars map[string][]query.QueryResult
}

func (e *fakeEnv) ResolveVariable(name string) ([]query.QueryResult, error) {
	if v, ok := e.vars[name]; ok {
		return v, nil
	}
	return nil, fmt.Errorf("unbound variable %q", name)
}

func (e *fakeEnv) AddCaptureKey(name, key string) {}

func (e *fakeEnv) EvalGuard(root pathvalue.PathValue, clauses *lang.Disjunction) (bool, error) {
	// Minimal guard: passes when the child has a "Match" key set to true.
	child, ok := root.Get("Match")
	return ok && child.Value.Kind == value.KindBool && child.Value.Bool, nil
}

func parseQuery(t *testing.T, queryText string) *lang.AccessQuery {
	t.Helper()
	src := fmt.Sprintf("rule r {\n%s exists\n}", queryText)
	f, err := lang.Parse("test.guard", src)
	require.NoError(t, err)
	cmp := f.Entries[0].Rule.Body.Entries[0].Disjunction.Clauses[0].Compare
	require.NotNil(t, cmp)
	return cmp.Query
}

func mapVal(keys []string, vals map[string]value.Value) value.Value {
	return value.NewMap(keys, vals)
}

func TestEvaluateExactKey(t *testing.T) {
	root := pathvalue.Root(mapVal([]string{"Name"}, map[string]value.Value{
		"Name": value.NewString("bucket-a"),
	}))
	q := parseQuery(t, "Name")
	results, err := query.Evaluate(root, q, &fakeEnv{})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.True(t, results[0].IsResolved())
	assert.Equal(t, "bucket-a", results[0].Value.Value.String)
}

func TestEvaluateCaseFallbackKey(t *testing.T) {
	root := pathvalue.Root(mapVal([]string{"bucket_name"}, map[string]value.Value{
		"bucket_name": value.NewString("bucket-a"),
	}))
	q := parseQuery(t, "BucketName")
	results, err := query.Evaluate(root, q, &fakeEnv{})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.True(t, results[0].IsResolved())
	assert.Equal(t, "bucket-a", results[0].Value.Value.String)
}

func TestEvaluateKeyNotFound(t *testing.T) {
	root := pathvalue.Root(mapVal([]string{"Name"}, map[string]value.Value{
		"Name": value.NewString("bucket-a"),
	}))
	q := parseQuery(t, "Missing")
	results, err := query.Evaluate(root, q, &fakeEnv{})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.False(t, results[0].IsResolved())
	assert.Equal(t, query.Unresolved, results[0].Kind)
}

func TestEvaluateIndexLiteral(t *testing.T) {
	root := pathvalue.Root(value.NewList([]value.Value{
		value.NewInt(10), value.NewInt(20), value.NewInt(30),
	}))
	q := parseQuery(t, "1")
	results, err := query.Evaluate(root, q, &fakeEnv{})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, int64(20), results[0].Value.Value.Int)
}

func TestEvaluateAllIndicesBracket(t *testing.T) {
	root := pathvalue.Root(value.NewList([]value.Value{
		value.NewInt(1), value.NewInt(2), value.NewInt(3),
	}))
	q := parseQuery(t, "this[*]")
	results, err := query.Evaluate(root, q, &fakeEnv{})
	require.NoError(t, err)
	require.Len(t, results, 3)
	for _, r := range results {
		assert.True(t, r.IsResolved())
	}
}

func TestEvaluateStarOverMap(t *testing.T) {
	root := pathvalue.Root(mapVal([]string{"a", "b"}, map[string]value.Value{
		"a": value.NewInt(1),
		"b": value.NewInt(2),
	}))
	q := parseQuery(t, "*")
	results, err := query.Evaluate(root, q, &fakeEnv{})
	require.NoError(t, err)
	require.Len(t, results, 2)
}

func TestEvaluateEmptyListYieldsUnresolved(t *testing.T) {
	root := pathvalue.Root(value.NewList(nil))
	q := parseQuery(t, "this[*]")
	results, err := query.Evaluate(root, q, &fakeEnv{})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, query.Unresolved, results[0].Kind)
	assert.Equal(t, "no more entries", results[0].Reason)
}

func TestEvaluateFilterBracket(t *testing.T) {
	root := pathvalue.Root(value.NewList([]value.Value{
		mapVal([]string{"Match"}, map[string]value.Value{"Match": value.NewBool(true)}),
		mapVal([]string{"Match"}, map[string]value.Value{"Match": value.NewBool(false)}),
	}))
	q := parseQuery(t, "this[ Match == true ]")
	results, err := query.Evaluate(root, q, &fakeEnv{})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.True(t, results[0].IsResolved())
}

func TestEvaluateMapKeyFilter(t *testing.T) {
	root := pathvalue.Root(mapVal([]string{"aws:sourceVpc", "other"}, map[string]value.Value{
		"aws:sourceVpc": value.NewInt(1),
		"other":         value.NewInt(2),
	}))
	q := parseQuery(t, `this[ keys == /aws:.*/ ]`)
	results, err := query.Evaluate(root, q, &fakeEnv{})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, int64(1), results[0].Value.Value.Int)
}

// A quoted key applied to a list is treated as an integer index when it
// parses as one (spec §4.2, DESIGN.md Open Questions: "0" key vs list
// index 0), reachable via applyKey's List fallback.
func TestEvaluateQuotedKeyOnListTreatedAsIndex(t *testing.T) {
	root := pathvalue.Root(value.NewList([]value.Value{
		value.NewInt(10), value.NewInt(20), value.NewInt(30),
	}))
	q := parseQuery(t, "this.'1'")
	results, err := query.Evaluate(root, q, &fakeEnv{})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.True(t, results[0].IsResolved())
	assert.Equal(t, int64(20), results[0].Value.Value.Int)
}

// A non-numeric key against a list still fails to resolve.
func TestEvaluateNonNumericKeyOnListUnresolved(t *testing.T) {
	root := pathvalue.Root(value.NewList([]value.Value{value.NewInt(10)}))
	q := parseQuery(t, "this.'Name'")
	results, err := query.Evaluate(root, q, &fakeEnv{})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, query.Unresolved, results[0].Kind)
}

func TestEvaluateVarKeyResolvesAsMapKey(t *testing.T) {
	root := pathvalue.Root(mapVal([]string{"RoleA"}, map[string]value.Value{
		"RoleA": value.NewString("arn"),
	}))
	q := parseQuery(t, "this.%refs")
	env := &fakeEnv{vars: map[string][]query.QueryResult{
		"refs": {{Kind: query.Literal, Value: pathvalue.Root(value.NewString("RoleA"))}},
	}}
	results, err := query.Evaluate(root, q, env)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "arn", results[0].Value.Value.String)
}
