package telemetry_test

import (
	"context"
	"errors"
	"testing"

	"github.com/erp/orderverify/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

// setupTestTracer installs an in-memory span recorder as the global provider.
func setupTestTracer(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()

	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))

	original := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		otel.SetTracerProvider(original)
		_ = tp.Shutdown(context.Background())
	})
	return sr
}

func attrMap(attrs []attribute.KeyValue) map[string]attribute.Value {
	m := make(map[string]attribute.Value, len(attrs))
	for _, kv := range attrs {
		m[string(kv.Key)] = kv.Value
	}
	return m
}

func TestStartServiceSpan(t *testing.T) {
	sr := setupTestTracer(t)

	_, span := telemetry.StartServiceSpan(context.Background(), "bc", "get_purchase_order",
		telemetry.WithAttribute(telemetry.SpanAttrOrderNumber, "PO-1"),
		telemetry.WithAttribute("top", 5),
		telemetry.WithSpanKind(trace.SpanKindClient),
	)
	span.End()

	spans := sr.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "bc.get_purchase_order", spans[0].Name())
	assert.Equal(t, trace.SpanKindClient, spans[0].SpanKind())

	attrs := attrMap(spans[0].Attributes())
	assert.Equal(t, "PO-1", attrs["order.number"].AsString())
	assert.Equal(t, int64(5), attrs["top"].AsInt64())
}

func TestSpanHelpers(t *testing.T) {
	sr := setupTestTracer(t)

	ctx, span := telemetry.StartSpan(context.Background(), "verify")
	id := uuid.MustParse("10326524-b1eb-3c53-bfab-792d11a135b0")
	telemetry.SetAttribute(span, telemetry.SpanAttrVendorPortal, id)
	telemetry.SetAttributes(span, "flag", true, 42, "ignored", "ratio", 0.5)
	telemetry.AddEvent(span, "remote_query_failed", "error", "boom")
	telemetry.RecordError(span, errors.New("boom"))

	assert.NotEmpty(t, telemetry.GetTraceID(ctx))
	assert.NotEmpty(t, telemetry.GetSpanID(ctx))
	span.End()

	spans := sr.Ended()
	require.Len(t, spans, 1)
	s := spans[0]

	attrs := attrMap(s.Attributes())
	assert.Equal(t, id.String(), attrs["vendor.portal_id"].AsString())
	assert.True(t, attrs["flag"].AsBool())
	assert.Equal(t, 0.5, attrs["ratio"].AsFloat64())
	_, hasIgnored := attrs["ignored"]
	assert.False(t, hasIgnored)

	assert.Equal(t, codes.Error, s.Status().Code)
	assert.Equal(t, "boom", s.Status().Description)

	names := make([]string, 0, len(s.Events()))
	for _, e := range s.Events() {
		names = append(names, e.Name)
	}
	assert.Contains(t, names, "remote_query_failed")
	assert.Contains(t, names, "exception")
}

func TestSpanHelpers_NilSafe(t *testing.T) {
	assert.NotPanics(t, func() {
		telemetry.SetAttribute(nil, "k", "v")
		telemetry.SetAttributes(nil, "k", "v")
		telemetry.AddEvent(nil, "e")
		telemetry.RecordError(nil, errors.New("x"))
		telemetry.SetOK(nil)
	})
}

func TestGetTraceID_NoSpan(t *testing.T) {
	assert.Empty(t, telemetry.GetTraceID(context.Background()))
	assert.Empty(t, telemetry.GetSpanID(context.Background()))
}

func TestSetOK(t *testing.T) {
	sr := setupTestTracer(t)

	_, span := telemetry.StartSpan(context.Background(), "ok")
	telemetry.SetOK(span)
	span.End()

	require.Len(t, sr.Ended(), 1)
	assert.Equal(t, codes.Ok, sr.Ended()[0].Status().Code)
}
