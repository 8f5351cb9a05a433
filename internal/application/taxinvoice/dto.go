package taxinvoice

import (
	"time"

	"github.com/erp/taxinvoice/internal/domain/taxinvoice"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ===================== Tax Invoice DTOs =====================

// CreateTaxInvoiceRequest represents a request to create a draft tax invoice
type CreateTaxInvoiceRequest struct {
	InvoiceID      uuid.UUID        `json:"invoice_id" binding:"required"`
	InvoiceNumber  string           `json:"invoice_number" binding:"required,min=1,max=50"`
	CustomerID     uuid.UUID        `json:"customer_id" binding:"required"`
	CustomerName   string           `json:"customer_name" binding:"required,min=1,max=200"`
	TotalSalePrice decimal.Decimal  `json:"total_harga_jual"`
	Discount       *decimal.Decimal `json:"potongan_harga"`
	VATPercentage  *decimal.Decimal `json:"ppn_percentage"` // Defaults to the configured rate
}

// TaxInvoiceListFilter represents filter options for the tax invoice list
type TaxInvoiceListFilter struct {
	Search     string                       `form:"search"`
	CustomerID string                       `form:"customer_id" binding:"omitempty,uuid"`
	Status     *taxinvoice.TaxInvoiceStatus `form:"status"`
	Page       int                          `form:"page" binding:"omitempty,min=1"`
	PageSize   int                          `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy    string                       `form:"order_by"`
	OrderDir   string                       `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// TaxInvoiceResponse represents a tax invoice in API responses
type TaxInvoiceResponse struct {
	ID              uuid.UUID       `json:"id"`
	TenantID        uuid.UUID       `json:"tenant_id"`
	InvoiceID       uuid.UUID       `json:"invoice_id"`
	InvoiceNumber   string          `json:"invoice_number"`
	CustomerID      uuid.UUID       `json:"customer_id"`
	CustomerName    string          `json:"customer_name"`
	DocumentNumber  string          `json:"nomor_faktur"`
	TaxDate         *time.Time      `json:"tanggal_faktur,omitempty"`
	TotalSalePrice  decimal.Decimal `json:"total_harga_jual"`
	Discount        decimal.Decimal `json:"potongan_harga"`
	DownPayment     decimal.Decimal `json:"uang_muka"`
	TaxBase         decimal.Decimal `json:"dasar_pengenaan_pajak"`
	VATPercentage   decimal.Decimal `json:"ppn_percentage"`
	VATAmount       decimal.Decimal `json:"ppn_rp"`
	LuxuryTaxAmount decimal.Decimal `json:"ppnbm_rp"`
	Notes           string          `json:"keterangan"`
	Status          string          `json:"status"`
	IssuedAt        *time.Time      `json:"issued_at,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
	Version         int             `json:"version"`
}

// ToTaxInvoiceResponse converts a domain TaxInvoice to a response DTO
func ToTaxInvoiceResponse(t *taxinvoice.TaxInvoice) TaxInvoiceResponse {
	return TaxInvoiceResponse{
		ID:              t.ID,
		TenantID:        t.TenantID,
		InvoiceID:       t.InvoiceID,
		InvoiceNumber:   t.InvoiceNumber,
		CustomerID:      t.CustomerID,
		CustomerName:    t.CustomerName,
		DocumentNumber:  t.DocumentNumber,
		TaxDate:         t.TaxDate,
		TotalSalePrice:  t.TotalSalePrice,
		Discount:        t.Discount,
		DownPayment:     t.DownPayment,
		TaxBase:         t.TaxBase,
		VATPercentage:   t.VATPercentage,
		VATAmount:       t.VATAmount,
		LuxuryTaxAmount: t.LuxuryTaxAmount,
		Notes:           t.Notes,
		Status:          string(t.Status),
		IssuedAt:        t.IssuedAt,
		CreatedAt:       t.CreatedAt,
		UpdatedAt:       t.UpdatedAt,
		Version:         t.Version,
	}
}

// ToTaxInvoiceResponses converts a slice of domain TaxInvoices to response DTOs
func ToTaxInvoiceResponses(items []taxinvoice.TaxInvoice) []TaxInvoiceResponse {
	responses := make([]TaxInvoiceResponse, len(items))
	for i := range items {
		responses[i] = ToTaxInvoiceResponse(&items[i])
	}
	return responses
}

// ===================== Edit Session DTOs =====================

// EditFieldRequest sets one field directly
type EditFieldRequest struct {
	Field string `json:"field" binding:"required"`
	Value string `json:"value"`
}

// FieldResponse is one field of the document under edit
type FieldResponse struct {
	Name     string `json:"name"`
	Label    string `json:"label"`
	Kind     string `json:"kind"`
	Value    string `json:"value"`
	Touched  bool   `json:"touched"`
	Derived  bool   `json:"derived"`
	Required bool   `json:"required"`
}

// SessionResponse is the state of an edit session
type SessionResponse struct {
	SessionID    uuid.UUID          `json:"session_id"`
	TaxInvoiceID uuid.UUID          `json:"tax_invoice_id"`
	State        string             `json:"state"`
	Fields       []FieldResponse    `json:"fields"`
	Document     TaxInvoiceResponse `json:"document"`
	UpdatedAt    time.Time          `json:"updated_at"`
}

// toSessionResponse renders a session snapshot in schema order
func toSessionResponse(schema *taxinvoice.Schema, graph *taxinvoice.DependencyGraph, snap taxinvoice.SessionSnapshot) SessionResponse {
	specs := schema.Specs()
	fields := make([]FieldResponse, 0, len(specs))
	for _, spec := range specs {
		fields = append(fields, FieldResponse{
			Name:     spec.Name.String(),
			Label:    spec.Label,
			Kind:     string(spec.Kind),
			Value:    snap.Fields.Value(spec.Name),
			Touched:  snap.Fields.Touched[spec.Name],
			Derived:  graph.IsDerived(spec.Name),
			Required: spec.Required,
		})
	}
	return SessionResponse{
		SessionID:    snap.ID,
		TaxInvoiceID: snap.Document.ID,
		State:        snap.State.String(),
		Fields:       fields,
		Document:     ToTaxInvoiceResponse(snap.Document),
		UpdatedAt:    snap.UpdatedAt,
	}
}
