package taxinvoice

import (
	"fmt"
	"strings"
	"time"

	"github.com/erp/taxinvoice/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Payload is the normalized document handed to the persistence collaborator.
// Amounts are numbers, the date is an RFC 3339 timestamp and identifiers are
// carried as strings.
type Payload struct {
	ID              string          `json:"id"`
	TenantID        string          `json:"tenant_id"`
	InvoiceID       string          `json:"invoice_id"`
	CustomerID      string          `json:"customer_id"`
	Version         int             `json:"version"`
	DocumentNumber  string          `json:"nomor_faktur"`
	TaxDate         string          `json:"tanggal_faktur"`
	TotalSalePrice  decimal.Decimal `json:"total_harga_jual"`
	Discount        decimal.Decimal `json:"potongan_harga"`
	DownPayment     decimal.Decimal `json:"uang_muka"`
	TaxBase         decimal.Decimal `json:"dasar_pengenaan_pajak"`
	VATPercentage   decimal.Decimal `json:"ppn_percentage"`
	VATAmount       decimal.Decimal `json:"ppn_rp"`
	LuxuryTaxAmount decimal.Decimal `json:"ppnbm_rp"`
	Notes           string          `json:"keterangan"`
}

// BuildPayload normalizes a validated snapshot of doc's fields.
// Blank optional amounts become zero.
func BuildPayload(doc *TaxInvoice, snap Snapshot) (Payload, error) {
	p := Payload{
		ID:             doc.ID.String(),
		TenantID:       doc.TenantID.String(),
		InvoiceID:      doc.InvoiceID.String(),
		CustomerID:     doc.CustomerID.String(),
		Version:        doc.Version,
		DocumentNumber: strings.TrimSpace(snap.Value(FieldDocumentNumber)),
		Notes:          snap.Value(FieldNotes),
	}

	if raw := snap.Value(FieldTaxDate); !IsBlank(raw) {
		d, ok := ParseDate(raw)
		if !ok {
			return Payload{}, shared.NewDomainError(CodeValidationFormat, "Tanggal Faktur must be a date")
		}
		p.TaxDate = d.UTC().Format(time.RFC3339)
	}

	amounts := []struct {
		name FieldName
		dst  *decimal.Decimal
	}{
		{FieldTotalSalePrice, &p.TotalSalePrice},
		{FieldDiscount, &p.Discount},
		{FieldDownPayment, &p.DownPayment},
		{FieldTaxBase, &p.TaxBase},
		{FieldVATPercentage, &p.VATPercentage},
		{FieldVATAmount, &p.VATAmount},
		{FieldLuxuryTaxAmount, &p.LuxuryTaxAmount},
	}
	for _, a := range amounts {
		raw := snap.Value(a.name)
		if IsBlank(raw) {
			*a.dst = decimal.Zero
			continue
		}
		v, ok := ParseAmount(raw)
		if !ok {
			return Payload{}, shared.NewDomainError(CodeValidationFormat,
				fmt.Sprintf("%s is not a number", a.name))
		}
		*a.dst = v
	}

	return p, nil
}
