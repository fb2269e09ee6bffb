package telemetry

import (
	"bytes"
	"context"
	"testing"

	"github.com/hackhub-dev/server/internal/config"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestInitTracingDisabled(t *testing.T) {
	shutdown, err := InitTracing(context.Background(), config.TracingConfig{}, "test")
	require.NoError(t, err)
	require.NoError(t, shutdown(context.Background()))
}

func TestInitTracingValidation(t *testing.T) {
	_, err := InitTracing(context.Background(), config.TracingConfig{Enabled: true, Exporter: "stdout", SampleRatio: 2}, "test")
	require.ErrorContains(t, err, "sample ratio")

	_, err = InitTracing(context.Background(), config.TracingConfig{Enabled: true, Exporter: "zipkin", SampleRatio: 1}, "test")
	require.ErrorContains(t, err, "unsupported exporter")
}

func TestInitTracingStdoutExportsSpans(t *testing.T) {
	var buf bytes.Buffer
	shutdown, err := initTracing(context.Background(), config.TracingConfig{
		Enabled:     true,
		Exporter:    "stdout",
		ServiceName: "hackhub-test",
		SampleRatio: 1,
	}, "v0.0.0", &buf)
	require.NoError(t, err)

	_, span := otel.Tracer("test").Start(context.Background(), "unit-span")
	span.End()

	require.NoError(t, shutdown(context.Background()))
	require.Contains(t, buf.String(), "unit-span")
}

func TestQueryTracer(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	otel.SetTracerProvider(tp)
	defer func() { _ = tp.Shutdown(context.Background()) }()

	tracer := NewQueryTracer()

	ctx := tracer.TraceQueryStart(context.Background(), nil, pgx.TraceQueryStartData{
		SQL: "\nWITH updated AS (\n  UPDATE events SET stat_views = stat_views + 1 RETURNING *\n) SELECT 1",
	})
	tracer.TraceQueryEnd(ctx, nil, pgx.TraceQueryEndData{CommandTag: pgconn.NewCommandTag("SELECT 1")})

	ctx = tracer.TraceQueryStart(context.Background(), nil, pgx.TraceQueryStartData{SQL: "SELECT broken"})
	tracer.TraceQueryEnd(ctx, nil, pgx.TraceQueryEndData{Err: context.DeadlineExceeded})

	spans := exporter.GetSpans()
	require.Len(t, spans, 2)
	require.Equal(t, "db UPDATE", spans[0].Name)
	require.Equal(t, codes.Error, spans[1].Status.Code)
}

func TestStatementVerb(t *testing.T) {
	require.Equal(t, "query", statementVerb("   "))
	require.Equal(t, "DELETE", statementVerb("delete from events"))
	require.Equal(t, "INSERT", statementVerb("WITH inserted AS (INSERT INTO events"))
}
