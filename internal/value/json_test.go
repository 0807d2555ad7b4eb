package value_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ruleweave/ruleweave/internal/value"
)

func TestFromJSON_PreservesKeyOrder(t *testing.T) {
	v, err := value.FromJSON(strings.NewReader(`{"z": 1, "a": 2, "m": 3}`))
	require.NoError(t, err)
	assert.Equal(t, []string{"z", "a", "m"}, v.Keys)
}

func TestFromJSON_IntPreferredOverFloat(t *testing.T) {
	v, err := value.FromJSON(strings.NewReader(`{"n": 42}`))
	require.NoError(t, err)
	n, ok := v.MapGet("n")
	require.True(t, ok)
	assert.Equal(t, value.KindInt, n.Kind)
	assert.Equal(t, int64(42), n.Int)
}

func TestFromJSON_FloatWhenFractional(t *testing.T) {
	v, err := value.FromJSON(strings.NewReader(`{"n": 4.5}`))
	require.NoError(t, err)
	n, ok := v.MapGet("n")
	require.True(t, ok)
	assert.Equal(t, value.KindFloat, n.Kind)
}

func TestFromJSON_NestedArraysAndObjects(t *testing.T) {
	v, err := value.FromJSON(strings.NewReader(`{"list": [1, "two", {"three": true}]}`))
	require.NoError(t, err)
	list, ok := v.MapGet("list")
	require.True(t, ok)
	require.Equal(t, value.KindList, list.Kind)
	require.Len(t, list.List, 3)
	assert.Equal(t, value.KindInt, list.List[0].Kind)
	assert.Equal(t, value.KindString, list.List[1].Kind)
	assert.Equal(t, value.KindMap, list.List[2].Kind)
}

func TestFromJSON_RegexLiteralString(t *testing.T) {
	v, err := value.FromJSON(strings.NewReader(`{"pattern": "/abc/"}`))
	require.NoError(t, err)
	p, ok := v.MapGet("pattern")
	require.True(t, ok)
	assert.Equal(t, value.KindRegex, p.Kind)
}
