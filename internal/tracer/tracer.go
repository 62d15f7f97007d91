// Package tracer wraps query execution in OpenTelemetry client spans.
package tracer

import (
	"context"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// InstrumentationName is the name of the OpenTelemetry tracer.
const InstrumentationName = "github.com/coregx/chsql"

// Tracer starts a span for each execution.
type Tracer interface {
	StartSpan(ctx context.Context, name string) (context.Context, Span)
}

// Span is an execution in flight. Finish records the outcome and ends it;
// it is called exactly once.
type Span interface {
	Finish(meta *QueryMetadata)
}

// NoopTracer is the default tracer; it records nothing.
type NoopTracer struct{}

// StartSpan returns ctx unchanged.
func (NoopTracer) StartSpan(ctx context.Context, _ string) (context.Context, Span) {
	return ctx, noopSpan{}
}

type noopSpan struct{}

func (noopSpan) Finish(*QueryMetadata) {}

// OtelTracer starts spans from an OpenTelemetry tracer provider.
type OtelTracer struct {
	tracer trace.Tracer
}

// NewOtelTracer creates a tracer from tp, or from the global provider
// when tp is nil.
func NewOtelTracer(tp trace.TracerProvider) *OtelTracer {
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	return &OtelTracer{tracer: tp.Tracer(InstrumentationName)}
}

// StartSpan starts a client span.
func (t *OtelTracer) StartSpan(ctx context.Context, name string) (context.Context, Span) {
	ctx, span := t.tracer.Start(ctx, name, trace.WithSpanKind(trace.SpanKindClient))
	return ctx, otelSpan{span: span}
}

type otelSpan struct {
	span trace.Span
}

func (s otelSpan) Finish(meta *QueryMetadata) {
	s.span.SetAttributes(meta.Attributes()...)
	if meta.Error != nil {
		s.span.RecordError(meta.Error)
		s.span.SetStatus(codes.Error, meta.Error.Error())
	} else {
		s.span.SetStatus(codes.Ok, "")
	}
	s.span.End()
}

// QueryMetadata describes one executed statement.
type QueryMetadata struct {
	SQL      string
	Duration time.Duration
	// Rows is the number of rows read from the result set.
	Rows  int64
	Error error
	// System is the database/sql driver name (clickhouse, postgres, ...).
	System string
	// Dialect is the rendering dialect, which may differ from System.
	Dialect   string
	Operation string
}

// Attributes returns the database semantic convention attributes for m.
// See: https://opentelemetry.io/docs/specs/semconv/database/
func (m *QueryMetadata) Attributes() []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		attribute.String("db.system", m.System),
		attribute.String("db.statement", m.SQL),
		attribute.String("db.operation", m.Operation),
		attribute.Float64("db.duration_ms", float64(m.Duration.Microseconds())/1000.0),
	}
	if m.Dialect != "" {
		attrs = append(attrs, attribute.String("db.chsql.dialect", m.Dialect))
	}
	if m.Rows > 0 {
		attrs = append(attrs, attribute.Int64("db.response.returned_rows", m.Rows))
	}
	return attrs
}

// DetectOperation returns SELECT for statements produced by the query
// builder (SELECT, WITH, or a parenthesized aliased subquery) and the
// leading keyword, upper-cased, for anything else.
func DetectOperation(sql string) string {
	sql = strings.TrimSpace(sql)
	if strings.HasPrefix(sql, "(") {
		return "SELECT"
	}
	keyword, _, _ := strings.Cut(strings.ToUpper(sql), " ")
	switch keyword {
	case "SELECT", "WITH":
		return "SELECT"
	case "":
		return "UNKNOWN"
	default:
		return keyword
	}
}
