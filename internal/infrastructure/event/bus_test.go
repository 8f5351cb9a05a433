package event

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/erp/taxinvoice/internal/domain/shared"
	"github.com/erp/taxinvoice/internal/domain/shared/valueobject"
	"github.com/erp/taxinvoice/internal/domain/taxinvoice"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

// testHandler records the events it receives
type testHandler struct {
	eventTypes []string
	handled    []shared.DomainEvent
	err        error
	panicWith  any
	mu         sync.Mutex
}

func newTestHandler(eventTypes ...string) *testHandler {
	return &testHandler{eventTypes: eventTypes}
}

func (h *testHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.handled = append(h.handled, event)
	if h.panicWith != nil {
		panic(h.panicWith)
	}
	return h.err
}

func (h *testHandler) EventTypes() []string {
	return h.eventTypes
}

func (h *testHandler) getHandled() []shared.DomainEvent {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]shared.DomainEvent(nil), h.handled...)
}

func newCreatedEvent(t *testing.T) shared.DomainEvent {
	t.Helper()
	ti, err := taxinvoice.NewTaxInvoice(
		uuid.New(),
		uuid.New(),
		"INV-2024-00001",
		uuid.New(),
		"PT Maju Jaya",
		valueobject.NewMoneyIDRFromInt(1000000),
		valueobject.NewMoneyIDRFromInt(0),
		decimal.NewFromInt(11),
	)
	require.NoError(t, err)
	events := ti.GetDomainEvents()
	require.Len(t, events, 1)
	return events[0]
}

func newStartedBus(t *testing.T, logger *zap.Logger) *InMemoryEventBus {
	t.Helper()
	bus := NewInMemoryEventBus(logger)
	require.NoError(t, bus.Start(context.Background()))
	t.Cleanup(func() { _ = bus.Stop(context.Background()) })
	return bus
}

func TestInMemoryEventBus_Publish(t *testing.T) {
	ctx := context.Background()

	t.Run("delivers to subscribed handlers", func(t *testing.T) {
		bus := newStartedBus(t, zap.NewNop())
		created := newTestHandler(taxinvoice.EventTypeTaxInvoiceCreated)
		updated := newTestHandler(taxinvoice.EventTypeTaxInvoiceUpdated)
		bus.Subscribe(created)
		bus.Subscribe(updated)

		event := newCreatedEvent(t)
		require.NoError(t, bus.Publish(ctx, event, event))

		assert.Len(t, created.getHandled(), 2)
		assert.Empty(t, updated.getHandled())
	})

	t.Run("explicit types override handler types", func(t *testing.T) {
		bus := newStartedBus(t, zap.NewNop())
		handler := newTestHandler(taxinvoice.EventTypeTaxInvoiceUpdated)
		bus.Subscribe(handler, taxinvoice.EventTypeTaxInvoiceCreated)

		require.NoError(t, bus.Publish(ctx, newCreatedEvent(t)))
		assert.Len(t, handler.getHandled(), 1)
	})

	t.Run("handler errors are logged and do not stop delivery", func(t *testing.T) {
		core, logs := observer.New(zap.ErrorLevel)
		bus := newStartedBus(t, zap.New(core))

		failing := newTestHandler(taxinvoice.EventTypeTaxInvoiceCreated)
		failing.err = errors.New("handler error")
		healthy := newTestHandler(taxinvoice.EventTypeTaxInvoiceCreated)
		bus.Subscribe(failing)
		bus.Subscribe(healthy)

		require.NoError(t, bus.Publish(ctx, newCreatedEvent(t)))
		assert.Len(t, healthy.getHandled(), 1)
		assert.Equal(t, 1, logs.FilterMessage("handler failed to process event").Len())
	})

	t.Run("handler panic is recovered", func(t *testing.T) {
		core, logs := observer.New(zap.ErrorLevel)
		bus := newStartedBus(t, zap.New(core))

		panicking := newTestHandler(taxinvoice.EventTypeTaxInvoiceCreated)
		panicking.panicWith = "boom"
		healthy := newTestHandler(taxinvoice.EventTypeTaxInvoiceCreated)
		bus.Subscribe(panicking)
		bus.Subscribe(healthy)

		require.NoError(t, bus.Publish(ctx, newCreatedEvent(t)))
		assert.Len(t, healthy.getHandled(), 1)

		entries := logs.FilterMessage("handler failed to process event").All()
		require.Len(t, entries, 1)
		assert.Contains(t, entries[0].ContextMap()["error"], "handler panicked: boom")
	})

	t.Run("stopped bus drops events", func(t *testing.T) {
		core, logs := observer.New(zap.WarnLevel)
		bus := NewInMemoryEventBus(zap.New(core))
		handler := newTestHandler(taxinvoice.EventTypeTaxInvoiceCreated)
		bus.Subscribe(handler)

		require.NoError(t, bus.Publish(ctx, newCreatedEvent(t)))
		assert.Empty(t, handler.getHandled())
		assert.Equal(t, 1, logs.FilterMessage("event bus not running, dropping event").Len())
	})

	t.Run("unsubscribed handler receives nothing", func(t *testing.T) {
		bus := newStartedBus(t, zap.NewNop())
		handler := newTestHandler(taxinvoice.EventTypeTaxInvoiceCreated)
		bus.Subscribe(handler)
		bus.Unsubscribe(handler)

		require.NoError(t, bus.Publish(ctx, newCreatedEvent(t)))
		assert.Empty(t, handler.getHandled())
	})
}

func TestInMemoryEventBus_DispatchSpans(t *testing.T) {
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	original := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		otel.SetTracerProvider(original)
		_ = tp.Shutdown(context.Background())
	})

	bus := newStartedBus(t, zap.NewNop())
	ok := newTestHandler(taxinvoice.EventTypeTaxInvoiceCreated)
	failing := newTestHandler(taxinvoice.EventTypeTaxInvoiceCreated)
	failing.err = errors.New("handler error")
	bus.Subscribe(ok)
	bus.Subscribe(failing)

	require.NoError(t, bus.Publish(context.Background(), newCreatedEvent(t)))

	spans := sr.Ended()
	require.Len(t, spans, 2)
	assert.Equal(t, "event.dispatch", spans[0].Name())
	assert.Equal(t, codes.Ok, spans[0].Status().Code)
	assert.Equal(t, codes.Error, spans[1].Status().Code)
}
