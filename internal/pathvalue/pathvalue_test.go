package pathvalue_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ruleweave/ruleweave/internal/pathvalue"
	"github.com/ruleweave/ruleweave/internal/value"
)

func TestRootAnnotatesLeafPaths(t *testing.T) {
	doc := value.FromAny(map[string]any{
		"Resources": map[string]any{
			"a": map[string]any{
				"Properties": map[string]any{"Name": "hasNAME"},
			},
		},
	})

	pv := pathvalue.Root(doc)

	resources, ok := pv.Get("Resources")
	require.True(t, ok)
	assert.Equal(t, "/Resources", resources.Path)

	a, ok := resources.Get("a")
	require.True(t, ok)
	assert.Equal(t, "/Resources/a", a.Path)

	props, ok := a.Get("Properties")
	require.True(t, ok)
	name, ok := props.Get("Name")
	require.True(t, ok)
	assert.Equal(t, "/Resources/a/Properties/Name", name.Path)
	assert.Equal(t, "hasNAME", name.Value.String)
}

func TestRootAnnotatesListIndexPaths(t *testing.T) {
	doc := value.FromAny(map[string]any{
		"Tags": []any{
			map[string]any{"Key": "InPROD"},
			map[string]any{"Key": "NoP"},
		},
	})

	pv := pathvalue.Root(doc)
	tags, ok := pv.Get("Tags")
	require.True(t, ok)
	require.Len(t, tags.List, 2)
	assert.Equal(t, "/Tags/0", tags.List[0].Path)
	assert.Equal(t, "/Tags/1", tags.List[1].Path)

	key, ok := tags.List[1].Get("Key")
	require.True(t, ok)
	assert.Equal(t, "/Tags/1/Key", key.Path)
}

func TestIndexNegative(t *testing.T) {
	doc := value.FromAny([]any{int64(1), int64(2), int64(3)})
	pv := pathvalue.Root(doc)

	last, ok := pv.Index(-1)
	require.True(t, ok)
	assert.Equal(t, "/2", last.Path)
	assert.Equal(t, int64(3), last.Value.Int)
}
