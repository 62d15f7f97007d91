package tracer

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

func newTestTracer(t *testing.T) (*OtelTracer, *tracetest.InMemoryExporter) {
	t.Helper()
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })
	return NewOtelTracer(tp), exporter
}

func attrMap(attrs []attribute.KeyValue) map[string]any {
	m := make(map[string]any, len(attrs))
	for _, a := range attrs {
		m[string(a.Key)] = a.Value.AsInterface()
	}
	return m
}

func TestNoopTracer(t *testing.T) {
	ctx := context.Background()
	got, span := NoopTracer{}.StartSpan(ctx, "chsql.query.all")
	require.NotNil(t, span)
	assert.Equal(t, ctx, got)

	span.Finish(&QueryMetadata{Error: errors.New("ignored")})
}

func TestNewOtelTracer_GlobalProvider(t *testing.T) {
	tr := NewOtelTracer(nil)
	ctx, span := tr.StartSpan(context.Background(), "chsql.query.one")
	require.NotNil(t, span)
	assert.NotNil(t, ctx)
	span.Finish(&QueryMetadata{})
}

func TestOtelTracer_Success(t *testing.T) {
	tr, exporter := newTestTracer(t)

	ctx, span := tr.StartSpan(context.Background(), "chsql.query.all")
	assert.True(t, trace.SpanContextFromContext(ctx).IsValid())
	span.Finish(&QueryMetadata{
		SQL:       "SELECT id FROM users LIMIT 10",
		Duration:  15 * time.Millisecond,
		Rows:      10,
		System:    "clickhouse",
		Dialect:   "clickhouse",
		Operation: "SELECT",
	})

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	s := spans[0]
	assert.Equal(t, "chsql.query.all", s.Name)
	assert.Equal(t, trace.SpanKindClient, s.SpanKind)
	assert.Equal(t, InstrumentationName, s.InstrumentationLibrary.Name)
	assert.Equal(t, codes.Ok, s.Status.Code)

	attrs := attrMap(s.Attributes)
	assert.Equal(t, "clickhouse", attrs["db.system"])
	assert.Equal(t, "SELECT id FROM users LIMIT 10", attrs["db.statement"])
	assert.Equal(t, "SELECT", attrs["db.operation"])
	assert.Equal(t, "clickhouse", attrs["db.chsql.dialect"])
	assert.Equal(t, int64(10), attrs["db.response.returned_rows"])
	assert.InDelta(t, 15.0, attrs["db.duration_ms"], 0.1)
}

func TestOtelTracer_Error(t *testing.T) {
	tr, exporter := newTestTracer(t)

	_, span := tr.StartSpan(context.Background(), "chsql.query.maps")
	span.Finish(&QueryMetadata{
		SQL:       "SELECT * FORM users",
		Duration:  5 * time.Millisecond,
		Error:     errors.New("syntax error"),
		System:    "sqlite",
		Operation: "SELECT",
	})

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Error, spans[0].Status.Code)
	assert.Equal(t, "syntax error", spans[0].Status.Description)
	require.Len(t, spans[0].Events, 1)
	assert.Equal(t, "exception", spans[0].Events[0].Name)

	attrs := attrMap(spans[0].Attributes)
	assert.NotContains(t, attrs, "db.chsql.dialect")
	assert.NotContains(t, attrs, "db.response.returned_rows")
}

func TestDetectOperation(t *testing.T) {
	tests := []struct {
		sql  string
		want string
	}{
		{"SELECT * FROM users", "SELECT"},
		{"  select 1", "SELECT"},
		{"WITH sum(bytes) AS s SELECT s", "SELECT"},
		{"(SELECT id FROM users) AS p", "SELECT"},
		{"INSERT INTO t VALUES (1)", "INSERT"},
		{"", "UNKNOWN"},
	}

	for _, tt := range tests {
		t.Run(tt.sql, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectOperation(tt.sql))
		})
	}
}
