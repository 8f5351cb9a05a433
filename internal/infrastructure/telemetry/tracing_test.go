package telemetry_test

import (
	"context"
	"errors"
	"testing"

	"github.com/erp/taxinvoice/internal/infrastructure/telemetry"
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

func attrValue(attrs []attribute.KeyValue, key string) (attribute.Value, bool) {
	for _, a := range attrs {
		if string(a.Key) == key {
			return a.Value, true
		}
	}
	return attribute.Value{}, false
}

func TestStartSpan(t *testing.T) {
	sr := setupTestTracer(t)

	_, span := telemetry.StartSpan(context.Background(), "test.operation")
	require.NotNil(t, span)
	span.End()

	spans := sr.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "test.operation", spans[0].Name())
	assert.Equal(t, trace.SpanKindInternal, spans[0].SpanKind())
	assert.Equal(t, telemetry.TracerName, spans[0].InstrumentationScope().Name)
}

func TestStartSpan_WithOptions(t *testing.T) {
	sr := setupTestTracer(t)

	_, span := telemetry.StartSpan(context.Background(), "test.operation",
		telemetry.WithAttribute(telemetry.SpanAttrField, "ppn_rp"),
		telemetry.WithAttribute(telemetry.SpanAttrVersion, 3),
		telemetry.WithSpanKind(trace.SpanKindServer),
	)
	span.End()

	spans := sr.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, trace.SpanKindServer, spans[0].SpanKind())

	v, ok := attrValue(spans[0].Attributes(), telemetry.SpanAttrField)
	require.True(t, ok)
	assert.Equal(t, "ppn_rp", v.AsString())

	v, ok = attrValue(spans[0].Attributes(), telemetry.SpanAttrVersion)
	require.True(t, ok)
	assert.Equal(t, int64(3), v.AsInt64())
}

func TestStartServiceSpan(t *testing.T) {
	sr := setupTestTracer(t)

	_, span := telemetry.StartServiceSpan(context.Background(), "tax_invoice_editor", "submit")
	span.End()

	spans := sr.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "tax_invoice_editor.submit", spans[0].Name())
}

func TestSetAttributes(t *testing.T) {
	sr := setupTestTracer(t)
	id := uuid.New()

	_, span := telemetry.StartSpan(context.Background(), "test.operation")
	telemetry.SetAttributes(span,
		telemetry.SpanAttrTaxInvoiceID, id,
		telemetry.SpanAttrSessionState, "EDITING",
		42, "ignored",
		"dangling",
	)
	span.End()

	attrs := sr.Ended()[0].Attributes()
	assert.Len(t, attrs, 2)

	v, ok := attrValue(attrs, telemetry.SpanAttrTaxInvoiceID)
	require.True(t, ok)
	assert.Equal(t, id.String(), v.AsString())
}

func TestRecordError(t *testing.T) {
	sr := setupTestTracer(t)

	_, span := telemetry.StartSpan(context.Background(), "test.operation")
	telemetry.RecordError(span, errors.New("boom"))
	span.End()

	s := sr.Ended()[0]
	assert.Equal(t, codes.Error, s.Status().Code)
	assert.Equal(t, "boom", s.Status().Description)
	require.Len(t, s.Events(), 1)
	assert.Equal(t, "exception", s.Events()[0].Name)
}

func TestRecordError_NilSafe(t *testing.T) {
	assert.NotPanics(t, func() {
		telemetry.RecordError(nil, errors.New("boom"))
		telemetry.SetOK(nil)
		telemetry.SetAttributes(nil, "k", "v")
		telemetry.AddEvent(nil, "event")
	})
}

func TestSetOK(t *testing.T) {
	sr := setupTestTracer(t)

	_, span := telemetry.StartSpan(context.Background(), "test.operation")
	telemetry.SetOK(span)
	span.End()

	assert.Equal(t, codes.Ok, sr.Ended()[0].Status().Code)
}

func TestAddEvent(t *testing.T) {
	sr := setupTestTracer(t)

	_, span := telemetry.StartSpan(context.Background(), "test.operation")
	telemetry.AddEvent(span, "field_edited", telemetry.SpanAttrField, "potongan_harga")
	span.End()

	events := sr.Ended()[0].Events()
	require.Len(t, events, 1)
	assert.Equal(t, "field_edited", events[0].Name)
	v, ok := attrValue(events[0].Attributes, telemetry.SpanAttrField)
	require.True(t, ok)
	assert.Equal(t, "potongan_harga", v.AsString())
}

func TestGetTraceID(t *testing.T) {
	setupTestTracer(t)

	assert.Empty(t, telemetry.GetTraceID(context.Background()))

	ctx, span := telemetry.StartSpan(context.Background(), "test.operation")
	defer span.End()

	assert.Equal(t, span.SpanContext().TraceID().String(), telemetry.GetTraceID(ctx))
}
