package taxinvoice

import (
	"context"
	"fmt"

	"github.com/erp/taxinvoice/internal/domain/shared"
	"github.com/erp/taxinvoice/internal/domain/taxinvoice"
	"go.uber.org/zap"
)

// TaxInvoiceAuditHandler writes an audit log line for every tax invoice
// creation and submission
type TaxInvoiceAuditHandler struct {
	logger *zap.Logger
}

// NewTaxInvoiceAuditHandler creates a new handler for tax invoice events
func NewTaxInvoiceAuditHandler(logger *zap.Logger) *TaxInvoiceAuditHandler {
	return &TaxInvoiceAuditHandler{
		logger: logger.Named("audit"),
	}
}

// EventTypes returns the event types this handler is interested in
func (h *TaxInvoiceAuditHandler) EventTypes() []string {
	return []string{
		taxinvoice.EventTypeTaxInvoiceCreated,
		taxinvoice.EventTypeTaxInvoiceUpdated,
	}
}

// Handle logs a TaxInvoiceCreatedEvent or TaxInvoiceUpdatedEvent
func (h *TaxInvoiceAuditHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	switch e := event.(type) {
	case *taxinvoice.TaxInvoiceCreatedEvent:
		h.logger.Info("tax invoice created",
			zap.String("event_id", e.EventID().String()),
			zap.String("tenant_id", e.TenantID().String()),
			zap.String("tax_invoice_id", e.TaxInvoiceID.String()),
			zap.String("invoice_id", e.InvoiceID.String()),
			zap.String("invoice_number", e.InvoiceNumber),
			zap.String("dasar_pengenaan_pajak", e.TaxBase.String()),
			zap.String("ppn_rp", e.VATAmount.String()),
		)
		return nil

	case *taxinvoice.TaxInvoiceUpdatedEvent:
		h.logger.Info("tax invoice submitted",
			zap.String("event_id", e.EventID().String()),
			zap.String("tenant_id", e.TenantID().String()),
			zap.String("tax_invoice_id", e.TaxInvoiceID.String()),
			zap.String("nomor_faktur", e.DocumentNumber),
			zap.String("dasar_pengenaan_pajak", e.TaxBase.String()),
			zap.String("ppn_percentage", e.VATPercentage.String()),
			zap.String("ppn_rp", e.VATAmount.String()),
			zap.String("status", e.Status.String()),
			zap.Int("version", e.Version),
		)
		return nil

	default:
		h.logger.Error("unexpected event type",
			zap.Strings("expected", h.EventTypes()),
			zap.String("actual", event.EventType()),
		)
		return fmt.Errorf("unexpected event type: %s", event.EventType())
	}
}
