package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Run statuses.
const (
	StatusOK        = "ok"
	StatusError     = "error"
	StatusCancelled = "cancelled"
)

// Run tracks one comprehension run: a span for its lifetime and, when
// metrics are configured, the run counter and duration histogram.
type Run struct {
	Definition string
	StartTime  time.Time
	Metrics    *Metrics

	span    trace.Span
	results int64
}

// StartRun starts a span named SpanRun for the definition. metrics may be nil.
func StartRun(ctx context.Context, definition string, binders []string, metrics *Metrics) (context.Context, *Run) {
	ctx, span := StartSpan(ctx, SpanRun, trace.WithAttributes(
		attribute.String(AttrDefinition, definition),
		attribute.StringSlice(AttrBinders, binders),
		attribute.Int(AttrDepth, len(binders)),
	))
	return ctx, &Run{
		Definition: definition,
		StartTime:  time.Now(),
		Metrics:    metrics,
		span:       span,
	}
}

// Result counts one delivered result.
func (r *Run) Result() { r.results++ }

// Results returns the number of results counted so far.
func (r *Run) Results() int64 { return r.results }

// End finishes the run with the outcome err and returns its status.
func (r *Run) End(ctx context.Context, err error) string {
	status := StatusOK
	switch {
	case err == nil:
	case ctx.Err() != nil:
		status = StatusCancelled
	default:
		status = StatusError
	}
	if err != nil {
		SetSpanError(trace.ContextWithSpan(ctx, r.span), err)
	}
	r.span.SetAttributes(
		attribute.Int64(AttrResults, r.results),
		attribute.String(AttrStatus, status),
	)
	r.span.End()

	if r.Metrics != nil {
		r.Metrics.RecordRun(ctx, status, r.Duration())
	}
	return status
}

// Duration returns the elapsed time since the run started.
func (r *Run) Duration() time.Duration {
	return time.Since(r.StartTime)
}
