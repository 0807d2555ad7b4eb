package value_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ruleweave/ruleweave/internal/value"
)

func TestNewMapPreservesOrder(t *testing.T) {
	v := value.NewMap([]string{"b", "a", "c"}, map[string]value.Value{
		"a": value.NewInt(1),
		"b": value.NewInt(2),
		"c": value.NewInt(3),
	})

	assert.Equal(t, []string{"b", "a", "c"}, v.Keys)

	got, ok := v.MapGet("a")
	require.True(t, ok)
	assert.Equal(t, int64(1), got.Int)
}

func TestListGetNegativeIndex(t *testing.T) {
	v := value.NewList([]value.Value{value.NewInt(1), value.NewInt(2), value.NewInt(3)})

	got, ok := v.ListGet(-1)
	require.True(t, ok)
	assert.Equal(t, int64(3), got.Int)

	_, ok = v.ListGet(-10)
	assert.False(t, ok)
}

func TestRegexpCompilesAndCaches(t *testing.T) {
	v := value.NewRegex("^a+$")
	re1, err := v.Regexp()
	require.NoError(t, err)
	assert.True(t, re1.MatchString("aaa"))

	re2, err := v.Regexp()
	require.NoError(t, err)
	assert.Same(t, re1, re2)
}

func TestRegexpInvalidPattern(t *testing.T) {
	v := value.NewRegex("(unclosed")
	_, err := v.Regexp()
	assert.Error(t, err)
}

func TestFromAnyPrefersIntOverFloat(t *testing.T) {
	v := value.FromAny(float64(42))
	assert.Equal(t, value.KindInt, v.Kind)
	assert.Equal(t, int64(42), v.Int)

	v = value.FromAny(float64(42.5))
	assert.Equal(t, value.KindFloat, v.Kind)
}

func TestFromAnyRecognizesRegexLiteral(t *testing.T) {
	v := value.FromAny("/NAME/")
	assert.Equal(t, value.KindRegex, v.Kind)
	assert.Equal(t, "NAME", v.RegexSource)
}

func TestFromAnyNestedStructure(t *testing.T) {
	doc := map[string]any{
		"Resources": map[string]any{
			"a": map[string]any{"Type": "AWS::S3::Bucket"},
		},
	}
	v := value.FromAny(doc)
	require.Equal(t, value.KindMap, v.Kind)
	res, ok := v.MapGet("Resources")
	require.True(t, ok)
	assert.Equal(t, value.KindMap, res.Kind)
}
