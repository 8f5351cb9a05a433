package event

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHandlerRegistry_Register(t *testing.T) {
	t.Run("specific types", func(t *testing.T) {
		registry := NewHandlerRegistry()
		handler := newTestHandler()
		registry.Register(handler, "TaxInvoiceCreated", "TaxInvoiceUpdated")

		assert.Len(t, registry.GetHandlers("TaxInvoiceCreated"), 1)
		assert.Len(t, registry.GetHandlers("TaxInvoiceUpdated"), 1)
		assert.Empty(t, registry.GetHandlers("TaxInvoiceDeleted"))
		assert.Equal(t, []string{"TaxInvoiceCreated", "TaxInvoiceUpdated"}, registry.EventTypes())
	})

	t.Run("wildcard receives every type", func(t *testing.T) {
		registry := NewHandlerRegistry()
		handler := newTestHandler()
		registry.Register(handler)

		handlers := registry.GetHandlers("Anything")
		assert.Len(t, handlers, 1)
		assert.Same(t, handler, handlers[0])
		assert.Empty(t, registry.EventTypes())
	})

	t.Run("registering twice stores the handler once", func(t *testing.T) {
		registry := NewHandlerRegistry()
		handler := newTestHandler()
		registry.Register(handler, "TaxInvoiceCreated")
		registry.Register(handler, "TaxInvoiceCreated")
		registry.Register(handler)

		assert.Len(t, registry.GetHandlers("TaxInvoiceCreated"), 1)
	})

	t.Run("specific handlers come before wildcard handlers", func(t *testing.T) {
		registry := NewHandlerRegistry()
		wildcard := newTestHandler()
		specific := newTestHandler()
		registry.Register(wildcard)
		registry.Register(specific, "TaxInvoiceCreated")

		handlers := registry.GetHandlers("TaxInvoiceCreated")
		assert.Len(t, handlers, 2)
		assert.Same(t, specific, handlers[0])
		assert.Same(t, wildcard, handlers[1])
	})
}

func TestHandlerRegistry_Unregister(t *testing.T) {
	registry := NewHandlerRegistry()
	h1 := newTestHandler()
	h2 := newTestHandler()
	registry.Register(h1, "TaxInvoiceCreated", "TaxInvoiceUpdated")
	registry.Register(h2, "TaxInvoiceCreated")
	registry.Register(h1)

	registry.Unregister(h1)

	handlers := registry.GetHandlers("TaxInvoiceCreated")
	assert.Len(t, handlers, 1)
	assert.Same(t, h2, handlers[0])
	assert.Empty(t, registry.GetHandlers("TaxInvoiceUpdated"))
	assert.Equal(t, []string{"TaxInvoiceCreated"}, registry.EventTypes())
}
