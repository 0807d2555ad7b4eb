package record_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ruleweave/ruleweave/internal/eval"
	"github.com/ruleweave/ruleweave/internal/record"
)

func TestTracingRecorderStillBuildsEventTree(t *testing.T) {
	r := record.NewTracing(context.Background())

	fileHandle := r.Start(eval.RecordFile, "file")
	ruleHandle := r.Start(eval.RecordRule, "r1")
	r.End(ruleHandle, eval.Fail, eval.Detail{Message: "mismatch"})
	r.End(fileHandle, eval.Fail, eval.Detail{})

	assert.Equal(t, 0, r.Open())
	root := r.Root()
	require.NotNil(t, root)
	assert.Equal(t, eval.Fail, root.Status)
	require.Len(t, root.Children, 1)
	assert.Equal(t, "mismatch", root.Children[0].Detail.Message)
}
