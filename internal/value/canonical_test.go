package value_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/ruleweave/ruleweave/internal/value"
)

func TestFromYAMLNodePreservesKeyOrder(t *testing.T) {
	var n yaml.Node
	require.NoError(t, yaml.Unmarshal([]byte("Zebra: 1\nApple: 2\nMango: 3\n"), &n))

	v, err := value.FromYAMLNode(&n)
	require.NoError(t, err)
	assert.Equal(t, []string{"Zebra", "Apple", "Mango"}, v.Keys)
}

func TestFromYAMLNodeScalarKinds(t *testing.T) {
	var n yaml.Node
	require.NoError(t, yaml.Unmarshal([]byte(`
name: hasNAME
count: 3
ratio: 1.5
enabled: true
nothing: null
`), &n))

	v, err := value.FromYAMLNode(&n)
	require.NoError(t, err)

	name, _ := v.MapGet("name")
	assert.Equal(t, value.KindString, name.Kind)

	count, _ := v.MapGet("count")
	assert.Equal(t, value.KindInt, count.Kind)
	assert.Equal(t, int64(3), count.Int)

	ratio, _ := v.MapGet("ratio")
	assert.Equal(t, value.KindFloat, ratio.Kind)

	enabled, _ := v.MapGet("enabled")
	assert.Equal(t, value.KindBool, enabled.Kind)
	assert.True(t, enabled.Bool)

	nothing, _ := v.MapGet("nothing")
	assert.Equal(t, value.KindNull, nothing.Kind)
}

func TestFromYAMLNodeSequence(t *testing.T) {
	var n yaml.Node
	require.NoError(t, yaml.Unmarshal([]byte("- 21\n- 22\n- 101\n"), &n))

	v, err := value.FromYAMLNode(&n)
	require.NoError(t, err)
	require.Equal(t, value.KindList, v.Kind)
	require.Len(t, v.List, 3)
	assert.Equal(t, int64(101), v.List[2].Int)
}
