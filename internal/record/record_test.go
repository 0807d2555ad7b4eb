package record_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ruleweave/ruleweave/internal/eval"
	"github.com/ruleweave/ruleweave/internal/record"
)

func TestStartEndPairingBuildsTree(t *testing.T) {
	r := record.New()

	fileHandle := r.Start(eval.RecordFile, "file")
	ruleHandle := r.Start(eval.RecordRule, "r1")
	clauseHandle := r.Start(eval.RecordClauseValueCheck, "Resources.*.Type")
	r.End(clauseHandle, eval.Pass, eval.Detail{Label: "=="})
	r.End(ruleHandle, eval.Pass, eval.Detail{Label: "r1"})
	r.End(fileHandle, eval.Pass, eval.Detail{Label: "file"})

	assert.Equal(t, 0, r.Open())
	root := r.Root()
	require.NotNil(t, root)
	assert.Equal(t, eval.RecordFile, root.Kind)
	require.Len(t, root.Children, 1)

	ruleEvent := root.Children[0]
	assert.Equal(t, eval.RecordRule, ruleEvent.Kind)
	assert.Equal(t, "r1", ruleEvent.Label)
	require.Len(t, ruleEvent.Children, 1)
	assert.Equal(t, eval.RecordClauseValueCheck, ruleEvent.Children[0].Kind)
	assert.Equal(t, eval.Pass, ruleEvent.Children[0].Status)
}

func TestEndWithWrongHandleIsNoOp(t *testing.T) {
	r := record.New()
	outer := r.Start(eval.RecordFile, "file")
	r.Start(eval.RecordRule, "r1")

	r.End(outer, eval.Pass, eval.Detail{})
	assert.Equal(t, 2, r.Open(), "mismatched handle must not pop the stack")
}

func TestUnbalancedStartLeavesNoRoot(t *testing.T) {
	r := record.New()
	r.Start(eval.RecordFile, "file")
	assert.Equal(t, 1, r.Open())
	assert.Nil(t, r.Root())
}

func TestSiblingEventsAttachInOrder(t *testing.T) {
	r := record.New()
	fileHandle := r.Start(eval.RecordFile, "file")

	a := r.Start(eval.RecordRule, "a")
	r.End(a, eval.Pass, eval.Detail{})
	b := r.Start(eval.RecordRule, "b")
	r.End(b, eval.Fail, eval.Detail{})

	r.End(fileHandle, eval.Fail, eval.Detail{})

	root := r.Root()
	require.Len(t, root.Children, 2)
	assert.Equal(t, "a", root.Children[0].Label)
	assert.Equal(t, "b", root.Children[1].Label)
	assert.Equal(t, eval.Pass, root.Children[0].Status)
	assert.Equal(t, eval.Fail, root.Children[1].Status)
}
