package observe_test

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/cypherbooth/versecraft/internal/observe"
)

// withRecordingTracer installs a span-recording tracer provider for the
// duration of the test and returns the recorder.
func withRecordingTracer(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		otel.SetTracerProvider(prev)
		_ = tp.Shutdown(context.Background())
	})
	return recorder
}

func TestStartSpan_RecordsNamedSpan(t *testing.T) {
	recorder := withRecordingTracer(t)

	_, span := observe.StartSpan(context.Background(), "engine.enhance")
	span.End()

	ended := recorder.Ended()
	if len(ended) != 1 {
		t.Fatalf("recorded %d spans, want 1", len(ended))
	}
	if got := ended[0].Name(); got != "engine.enhance" {
		t.Errorf("span name = %q, want engine.enhance", got)
	}
}

func TestCorrelationID_WithActiveSpan(t *testing.T) {
	withRecordingTracer(t)

	ctx, span := observe.StartSpan(context.Background(), "op")
	defer span.End()

	id := observe.CorrelationID(ctx)
	if id == "" {
		t.Fatal("CorrelationID returned empty string inside a span")
	}
	if id != span.SpanContext().TraceID().String() {
		t.Errorf("CorrelationID = %q, want the span's trace ID", id)
	}
}

func TestCorrelationID_NoSpan(t *testing.T) {
	if id := observe.CorrelationID(context.Background()); id != "" {
		t.Errorf("CorrelationID = %q, want empty without a span", id)
	}
}

func TestLogger_EnrichesWithTraceIDs(t *testing.T) {
	withRecordingTracer(t)

	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, nil)))
	t.Cleanup(func() { slog.SetDefault(prev) })

	ctx, span := observe.StartSpan(context.Background(), "op")
	defer span.End()

	observe.Logger(ctx).Info("inside span")
	out := buf.String()
	if !strings.Contains(out, "trace_id=") || !strings.Contains(out, "span_id=") {
		t.Errorf("log output missing trace correlation fields: %q", out)
	}

	buf.Reset()
	observe.Logger(context.Background()).Info("outside span")
	if strings.Contains(buf.String(), "trace_id=") {
		t.Errorf("log output should not carry trace_id without a span: %q", buf.String())
	}
}
