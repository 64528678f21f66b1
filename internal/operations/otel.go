package operations

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/CayleighSitchon/water-quality-analysis/internal/infrastructure"
)

// OperationTracer creates spans for runs and steps and records the step
// metrics. A zero tracer or nil metrics are valid and record nothing.
type OperationTracer struct {
	tracer  trace.Tracer
	metrics *infrastructure.PipelineMetrics
}

// NewOperationTracer creates a new operation tracer
func NewOperationTracer(tracer trace.Tracer, metrics *infrastructure.PipelineMetrics) *OperationTracer {
	if tracer == nil {
		tracer = noop.NewTracerProvider().Tracer(infrastructure.ServiceName)
	}
	return &OperationTracer{tracer: tracer, metrics: metrics}
}

// TraceOperation creates a span for the entire run
func (ot *OperationTracer) TraceOperation(ctx context.Context, operationID string, stepIDs []string) (context.Context, trace.Span) {
	return ot.tracer.Start(ctx, "operation.execute",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("operation.id", operationID),
			attribute.StringSlice("operation.steps", stepIDs),
		),
	)
}

// TraceStep creates a span for one step
func (ot *OperationTracer) TraceStep(ctx context.Context, operationID, stepID string) (context.Context, trace.Span) {
	return ot.tracer.Start(ctx, "operation.step."+stepID,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("operation.id", operationID),
			attribute.String("step.id", stepID),
		),
	)
}

// RecordStepCompletion ends the step span and records its duration
func (ot *OperationTracer) RecordStepCompletion(ctx context.Context, span trace.Span, stepID string, duration time.Duration, err error) {
	span.SetAttributes(attribute.Float64("step.duration_seconds", duration.Seconds()))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "step completed")
	}
	span.End()

	ot.metrics.RecordStep(ctx, stepID, duration.Seconds(), err)
}

// RecordOperationCompletion ends the run span
func (ot *OperationTracer) RecordOperationCompletion(span trace.Span, status OperationStatusValue, duration time.Duration, err error) {
	span.SetAttributes(
		attribute.String("operation.status", string(status)),
		attribute.Float64("operation.duration_seconds", duration.Seconds()),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "operation completed")
	}
	span.End()
}
