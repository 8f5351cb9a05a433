package models

import (
	"time"

	"github.com/erp/taxinvoice/internal/domain/taxinvoice"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TaxInvoiceModel is the persistence model for the TaxInvoice aggregate root.
type TaxInvoiceModel struct {
	TenantAggregateModel
	InvoiceID       uuid.UUID                   `gorm:"type:uuid;not null;uniqueIndex:idx_tax_invoices_invoice_id"`
	InvoiceNumber   string                      `gorm:"type:varchar(50);not null"`
	CustomerID      uuid.UUID                   `gorm:"type:uuid;not null;index"`
	CustomerName    string                      `gorm:"type:varchar(200);not null"`
	DocumentNumber  string                      `gorm:"type:varchar(30);index"`
	TaxDate         *time.Time                  `gorm:"index"`
	TotalSalePrice  decimal.Decimal             `gorm:"type:decimal(18,4);not null;default:0"`
	Discount        decimal.Decimal             `gorm:"type:decimal(18,4);not null;default:0"`
	DownPayment     decimal.Decimal             `gorm:"type:decimal(18,4);not null;default:0"`
	TaxBase         decimal.Decimal             `gorm:"type:decimal(18,4);not null;default:0"`
	VATPercentage   decimal.Decimal             `gorm:"type:decimal(5,2);not null;default:0"`
	VATAmount       decimal.Decimal             `gorm:"type:decimal(18,4);not null;default:0"`
	LuxuryTaxAmount decimal.Decimal             `gorm:"type:decimal(18,4);not null;default:0"`
	Notes           string                      `gorm:"type:text"`
	Status          taxinvoice.TaxInvoiceStatus `gorm:"type:varchar(20);not null;default:'DRAFT';index"`
	IssuedAt        *time.Time
}

// TableName returns the table name for GORM
func (TaxInvoiceModel) TableName() string {
	return "tax_invoices"
}

// ToDomain converts the persistence model to a domain TaxInvoice entity.
func (m *TaxInvoiceModel) ToDomain() *taxinvoice.TaxInvoice {
	ti := &taxinvoice.TaxInvoice{
		InvoiceID:       m.InvoiceID,
		InvoiceNumber:   m.InvoiceNumber,
		CustomerID:      m.CustomerID,
		CustomerName:    m.CustomerName,
		DocumentNumber:  m.DocumentNumber,
		TaxDate:         m.TaxDate,
		TotalSalePrice:  m.TotalSalePrice,
		Discount:        m.Discount,
		DownPayment:     m.DownPayment,
		TaxBase:         m.TaxBase,
		VATPercentage:   m.VATPercentage,
		VATAmount:       m.VATAmount,
		LuxuryTaxAmount: m.LuxuryTaxAmount,
		Notes:           m.Notes,
		Status:          m.Status,
		IssuedAt:        m.IssuedAt,
	}
	m.PopulateTenantAggregateRoot(&ti.TenantAggregateRoot)
	return ti
}

// FromDomain populates the persistence model from a domain TaxInvoice entity.
func (m *TaxInvoiceModel) FromDomain(t *taxinvoice.TaxInvoice) {
	m.FromDomainTenantAggregateRoot(t.TenantAggregateRoot)
	m.InvoiceID = t.InvoiceID
	m.InvoiceNumber = t.InvoiceNumber
	m.CustomerID = t.CustomerID
	m.CustomerName = t.CustomerName
	m.DocumentNumber = t.DocumentNumber
	m.TaxDate = t.TaxDate
	m.TotalSalePrice = t.TotalSalePrice
	m.Discount = t.Discount
	m.DownPayment = t.DownPayment
	m.TaxBase = t.TaxBase
	m.VATPercentage = t.VATPercentage
	m.VATAmount = t.VATAmount
	m.LuxuryTaxAmount = t.LuxuryTaxAmount
	m.Notes = t.Notes
	m.Status = t.Status
	m.IssuedAt = t.IssuedAt
}

// TaxInvoiceModelFromDomain creates a new persistence model from a domain TaxInvoice entity.
func TaxInvoiceModelFromDomain(t *taxinvoice.TaxInvoice) *TaxInvoiceModel {
	m := &TaxInvoiceModel{}
	m.FromDomain(t)
	return m
}

// TaxInvoiceModels converts a slice of models to domain entities
func TaxInvoiceModels(ms []TaxInvoiceModel) []taxinvoice.TaxInvoice {
	out := make([]taxinvoice.TaxInvoice, len(ms))
	for i := range ms {
		out[i] = *ms[i].ToDomain()
	}
	return out
}
