package taxinvoice

import (
	"time"

	"github.com/erp/taxinvoice/internal/domain/shared"
	"github.com/erp/taxinvoice/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TaxInvoiceStatus represents the status of a tax invoice
type TaxInvoiceStatus string

const (
	TaxInvoiceStatusDraft  TaxInvoiceStatus = "DRAFT"  // Created from a sales invoice, never submitted
	TaxInvoiceStatusIssued TaxInvoiceStatus = "ISSUED" // Submitted at least once with a valid number
)

// IsValid checks if the status is a valid TaxInvoiceStatus
func (s TaxInvoiceStatus) IsValid() bool {
	return s == TaxInvoiceStatusDraft || s == TaxInvoiceStatusIssued
}

// String returns the string representation of TaxInvoiceStatus
func (s TaxInvoiceStatus) String() string {
	return string(s)
}

// TaxInvoice represents a Faktur Pajak aggregate root.
// It is the authoritative server record an edit session is seeded from.
type TaxInvoice struct {
	shared.TenantAggregateRoot
	InvoiceID       uuid.UUID        `json:"invoice_id"` // Source sales invoice
	InvoiceNumber   string           `json:"invoice_number"`
	CustomerID      uuid.UUID        `json:"customer_id"`
	CustomerName    string           `json:"customer_name"`
	DocumentNumber  string           `json:"nomor_faktur"`
	TaxDate         *time.Time       `json:"tanggal_faktur"`
	TotalSalePrice  decimal.Decimal  `json:"total_harga_jual"`
	Discount        decimal.Decimal  `json:"potongan_harga"`
	DownPayment     decimal.Decimal  `json:"uang_muka"`
	TaxBase         decimal.Decimal  `json:"dasar_pengenaan_pajak"`
	VATPercentage   decimal.Decimal  `json:"ppn_percentage"`
	VATAmount       decimal.Decimal  `json:"ppn_rp"`
	LuxuryTaxAmount decimal.Decimal  `json:"ppnbm_rp"`
	Notes           string           `json:"keterangan"`
	Status          TaxInvoiceStatus `json:"status"`
	IssuedAt        *time.Time       `json:"issued_at"`
}

// NewTaxInvoice creates a draft tax invoice for a sales invoice.
// DPP and PPN are derived with the same rules the editor uses.
func NewTaxInvoice(
	tenantID uuid.UUID,
	invoiceID uuid.UUID,
	invoiceNumber string,
	customerID uuid.UUID,
	customerName string,
	totalSalePrice valueobject.Money,
	discount valueobject.Money,
	vatPercentage decimal.Decimal,
) (*TaxInvoice, error) {
	if invoiceID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INVOICE", "Invoice ID cannot be empty")
	}
	if invoiceNumber == "" {
		return nil, shared.NewDomainError("INVALID_INVOICE", "Invoice number cannot be empty")
	}
	if len(invoiceNumber) > 50 {
		return nil, shared.NewDomainError("INVALID_INVOICE", "Invoice number cannot exceed 50 characters")
	}
	if customerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CUSTOMER", "Customer ID cannot be empty")
	}
	if customerName == "" {
		return nil, shared.NewDomainError("INVALID_CUSTOMER_NAME", "Customer name cannot be empty")
	}
	if totalSalePrice.IsNegative() || discount.IsNegative() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Amounts cannot be negative")
	}
	if vatPercentage.IsNegative() || vatPercentage.GreaterThan(maxPercentage) {
		return nil, shared.NewDomainError("INVALID_PERCENTAGE", "PPN percentage must be between 0 and 100")
	}

	ti := &TaxInvoice{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		InvoiceID:           invoiceID,
		InvoiceNumber:       invoiceNumber,
		CustomerID:          customerID,
		CustomerName:        customerName,
		TotalSalePrice:      totalSalePrice.RoundToUnit().Amount(),
		Discount:            discount.RoundToUnit().Amount(),
		DownPayment:         decimal.Zero,
		LuxuryTaxAmount:     decimal.Zero,
		VATPercentage:       vatPercentage,
		Status:              TaxInvoiceStatusDraft,
	}

	store := NewDefaultFieldStore()
	store.Load(ti.FieldValues())
	store.RecomputeAll()
	ti.TaxBase, _ = ParseAmount(store.Get(FieldTaxBase))
	ti.VATAmount, _ = ParseAmount(store.Get(FieldVATAmount))

	ti.AddDomainEvent(NewTaxInvoiceCreatedEvent(ti))

	return ti, nil
}

// FieldValues renders the record as raw field values for seeding a FieldStore
func (t *TaxInvoice) FieldValues() map[FieldName]string {
	taxDate := ""
	if t.TaxDate != nil {
		taxDate = t.TaxDate.Format("2006-01-02")
	}
	return map[FieldName]string{
		FieldDocumentNumber:  t.DocumentNumber,
		FieldTaxDate:         taxDate,
		FieldTotalSalePrice:  t.TotalSalePrice.String(),
		FieldDiscount:        t.Discount.String(),
		FieldDownPayment:     t.DownPayment.String(),
		FieldTaxBase:         t.TaxBase.String(),
		FieldVATPercentage:   t.VATPercentage.String(),
		FieldVATAmount:       t.VATAmount.String(),
		FieldLuxuryTaxAmount: t.LuxuryTaxAmount.String(),
		FieldNotes:           t.Notes,
	}
}

// ApplyPayload replaces the editable fields with a submitted payload.
// The payload must target this record at its current version.
func (t *TaxInvoice) ApplyPayload(p Payload) error {
	if p.ID != t.ID.String() {
		return shared.NewDomainError("INVALID_INPUT", "Payload does not belong to this tax invoice")
	}
	if p.Version != t.Version {
		return shared.ErrConcurrencyConflict
	}

	var taxDate *time.Time
	if p.TaxDate != "" {
		d, err := time.Parse(time.RFC3339, p.TaxDate)
		if err != nil {
			return shared.NewDomainError(CodeValidationFormat, "Tanggal Faktur must be an ISO-8601 timestamp")
		}
		taxDate = &d
	}

	t.DocumentNumber = p.DocumentNumber
	t.TaxDate = taxDate
	t.TotalSalePrice = p.TotalSalePrice
	t.Discount = p.Discount
	t.DownPayment = p.DownPayment
	t.TaxBase = p.TaxBase
	t.VATPercentage = p.VATPercentage
	t.VATAmount = p.VATAmount
	t.LuxuryTaxAmount = p.LuxuryTaxAmount
	t.Notes = p.Notes

	now := time.Now()
	if t.Status == TaxInvoiceStatusDraft {
		t.Status = TaxInvoiceStatusIssued
		t.IssuedAt = &now
	}
	t.Touch(now)
	t.IncrementVersion()

	t.AddDomainEvent(NewTaxInvoiceUpdatedEvent(t))
	return nil
}
