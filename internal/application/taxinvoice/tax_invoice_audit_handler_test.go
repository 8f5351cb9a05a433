package taxinvoice

import (
	"context"
	"testing"

	"github.com/erp/taxinvoice/internal/domain/shared"
	"github.com/erp/taxinvoice/internal/domain/taxinvoice"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type unrelatedEvent struct {
	shared.BaseDomainEvent
}

func TestTaxInvoiceAuditHandler_EventTypes(t *testing.T) {
	h := NewTaxInvoiceAuditHandler(zap.NewNop())

	assert.ElementsMatch(t, []string{
		taxinvoice.EventTypeTaxInvoiceCreated,
		taxinvoice.EventTypeTaxInvoiceUpdated,
	}, h.EventTypes())
}

func TestTaxInvoiceAuditHandler_Handle(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	h := NewTaxInvoiceAuditHandler(zap.New(core))
	doc := newTestDocument(t, uuid.New())

	t.Run("created", func(t *testing.T) {
		require.NoError(t, h.Handle(context.Background(), taxinvoice.NewTaxInvoiceCreatedEvent(doc)))

		entries := logs.FilterMessage("tax invoice created").All()
		require.Len(t, entries, 1)
		assert.Equal(t, doc.ID.String(), entries[0].ContextMap()["tax_invoice_id"])
		assert.Equal(t, "INV-2024-00001", entries[0].ContextMap()["invoice_number"])
		assert.Equal(t, "audit", entries[0].LoggerName)
	})

	t.Run("submitted", func(t *testing.T) {
		doc.DocumentNumber = "010.000-24.12345678"
		require.NoError(t, h.Handle(context.Background(), taxinvoice.NewTaxInvoiceUpdatedEvent(doc)))

		entries := logs.FilterMessage("tax invoice submitted").All()
		require.Len(t, entries, 1)
		assert.Equal(t, "010.000-24.12345678", entries[0].ContextMap()["nomor_faktur"])
		assert.Equal(t, "99000", entries[0].ContextMap()["ppn_rp"])
	})

	t.Run("unexpected event", func(t *testing.T) {
		event := &unrelatedEvent{
			BaseDomainEvent: shared.NewBaseDomainEvent("SomethingElse", "Other", uuid.New(), uuid.New()),
		}

		err := h.Handle(context.Background(), event)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "SomethingElse")
	})
}
