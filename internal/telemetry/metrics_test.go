package telemetry_test

import (
	"testing"
	"time"

	"github.com/ruleweave/ruleweave/internal/eval"
	"github.com/ruleweave/ruleweave/internal/telemetry"
)

func TestRecordRuleEvaluation_DoesNotPanic(t *testing.T) {
	telemetry.RecordRuleEvaluation(eval.Pass)
	telemetry.RecordRuleEvaluation(eval.Fail)
	telemetry.RecordRuleEvaluation(eval.Skip)
}

func TestRecordFileEvaluation_DoesNotPanic(t *testing.T) {
	telemetry.RecordFileEvaluation(10*time.Millisecond, eval.Fail)
	telemetry.RecordFileEvaluation(5*time.Millisecond, eval.Pass)
}
