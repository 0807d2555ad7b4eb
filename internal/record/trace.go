package record

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/ruleweave/ruleweave/internal/eval"
)

var tracer = otel.Tracer("ruleweave/eval")

// TracingRecorder wraps Recorder with an additive OpenTelemetry span per
// start_record/end_record pair (SPEC_FULL.md A.3): the event tree built by
// the embedded Recorder remains the source of truth, spans are a side
// channel for external APM populated from the same start/end pairing.
// Grounded on the teacher's command.Dispatcher ("tracer.Start(ctx, name,
// trace.WithAttributes(...))" / "span.End()" / error-status-on-failure
// pattern in internal/command/dispatcher.go).
type TracingRecorder struct {
	*Recorder
	ctx   context.Context
	spans []trace.Span
}

// NewTracing returns a Recorder that also opens an OpenTelemetry span per
// event under ctx. If ctx carries no active span and no configured
// exporter, the spans are cheap no-ops (otel's default behavior).
func NewTracing(ctx context.Context) *TracingRecorder {
	return &TracingRecorder{Recorder: New(), ctx: ctx}
}

var _ eval.Recorder = (*TracingRecorder)(nil)

func (r *TracingRecorder) Start(kind eval.RecordKind, label string) int {
	_, span := tracer.Start(r.ctx, string(kind),
		trace.WithAttributes(attribute.String("ruleweave.label", label)),
	)
	r.spans = append(r.spans, span)
	return r.Recorder.Start(kind, label)
}

func (r *TracingRecorder) End(handle int, status eval.Status, detail eval.Detail) {
	if len(r.spans) == 0 {
		r.Recorder.End(handle, status, detail)
		return
	}
	span := r.spans[len(r.spans)-1]
	r.spans = r.spans[:len(r.spans)-1]

	span.SetAttributes(attribute.String("ruleweave.status", status.String()))
	if detail.Message != "" {
		span.SetAttributes(attribute.String("ruleweave.message", detail.Message))
	}
	if status == eval.Fail {
		span.SetStatus(codes.Error, detail.Message)
	}
	span.End()

	r.Recorder.End(handle, status, detail)
}
