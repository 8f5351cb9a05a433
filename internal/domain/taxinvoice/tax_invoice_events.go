package taxinvoice

import (
	"github.com/erp/taxinvoice/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Aggregate type constant for TaxInvoice
const AggregateTypeTaxInvoice = "TaxInvoice"

// Event type constants for TaxInvoice
const (
	EventTypeTaxInvoiceCreated = "TaxInvoiceCreated"
	EventTypeTaxInvoiceUpdated = "TaxInvoiceUpdated"
)

// TaxInvoiceCreatedEvent is raised when a draft tax invoice is created
type TaxInvoiceCreatedEvent struct {
	shared.BaseDomainEvent
	TaxInvoiceID  uuid.UUID       `json:"tax_invoice_id"`
	InvoiceID     uuid.UUID       `json:"invoice_id"`
	InvoiceNumber string          `json:"invoice_number"`
	CustomerID    uuid.UUID       `json:"customer_id"`
	TaxBase       decimal.Decimal `json:"dasar_pengenaan_pajak"`
	VATAmount     decimal.Decimal `json:"ppn_rp"`
}

// NewTaxInvoiceCreatedEvent creates a new TaxInvoiceCreatedEvent
func NewTaxInvoiceCreatedEvent(t *TaxInvoice) *TaxInvoiceCreatedEvent {
	return &TaxInvoiceCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeTaxInvoiceCreated, AggregateTypeTaxInvoice, t.ID, t.TenantID),
		TaxInvoiceID:    t.ID,
		InvoiceID:       t.InvoiceID,
		InvoiceNumber:   t.InvoiceNumber,
		CustomerID:      t.CustomerID,
		TaxBase:         t.TaxBase,
		VATAmount:       t.VATAmount,
	}
}

// TaxInvoiceUpdatedEvent is raised when an edit session is submitted successfully
type TaxInvoiceUpdatedEvent struct {
	shared.BaseDomainEvent
	TaxInvoiceID   uuid.UUID        `json:"tax_invoice_id"`
	DocumentNumber string           `json:"nomor_faktur"`
	TaxBase        decimal.Decimal  `json:"dasar_pengenaan_pajak"`
	VATPercentage  decimal.Decimal  `json:"ppn_percentage"`
	VATAmount      decimal.Decimal  `json:"ppn_rp"`
	Status         TaxInvoiceStatus `json:"status"`
	Version        int              `json:"version"`
}

// NewTaxInvoiceUpdatedEvent creates a new TaxInvoiceUpdatedEvent
func NewTaxInvoiceUpdatedEvent(t *TaxInvoice) *TaxInvoiceUpdatedEvent {
	return &TaxInvoiceUpdatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeTaxInvoiceUpdated, AggregateTypeTaxInvoice, t.ID, t.TenantID),
		TaxInvoiceID:    t.ID,
		DocumentNumber:  t.DocumentNumber,
		TaxBase:         t.TaxBase,
		VATPercentage:   t.VATPercentage,
		VATAmount:       t.VATAmount,
		Status:          t.Status,
		Version:         t.Version,
	}
}
