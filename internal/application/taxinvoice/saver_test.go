package taxinvoice

import (
	"context"
	"testing"

	"github.com/erp/taxinvoice/internal/domain/shared"
	"github.com/erp/taxinvoice/internal/domain/taxinvoice"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func payloadFor(doc *taxinvoice.TaxInvoice) taxinvoice.Payload {
	return taxinvoice.Payload{
		ID:              doc.ID.String(),
		TenantID:        doc.TenantID.String(),
		InvoiceID:       doc.InvoiceID.String(),
		CustomerID:      doc.CustomerID.String(),
		Version:         doc.Version,
		DocumentNumber:  "010.000-24.00000001",
		TaxDate:         "2024-03-15T00:00:00Z",
		TotalSalePrice:  decimal.NewFromInt(1000000),
		Discount:        decimal.NewFromInt(100000),
		DownPayment:     decimal.Zero,
		TaxBase:         decimal.NewFromInt(900000),
		VATPercentage:   decimal.NewFromInt(11),
		VATAmount:       decimal.NewFromInt(99000),
		LuxuryTaxAmount: decimal.Zero,
	}
}

func TestRepositorySaver_Save(t *testing.T) {
	tenantID := uuid.New()

	t.Run("applies the payload and saves with lock", func(t *testing.T) {
		repo := new(MockTaxInvoiceRepository)
		doc := newTestDocument(t, tenantID)
		repo.On("FindByIDForTenant", mock.Anything, tenantID, doc.ID).Return(copyDocument(doc), nil)
		repo.On("SaveWithLock", mock.Anything, mock.Anything).Return(nil)

		saved, err := NewRepositorySaver(repo, tenantID).Save(context.Background(), payloadFor(doc))

		require.NoError(t, err)
		assert.Equal(t, 2, saved.Version)
		assert.Equal(t, taxinvoice.TaxInvoiceStatusIssued, saved.Status)
		assert.Equal(t, "010.000-24.00000001", saved.DocumentNumber)
		require.NotNil(t, saved.TaxDate)
		assert.Equal(t, "2024-03-15", saved.TaxDate.Format("2006-01-02"))
		repo.AssertExpectations(t)
	})

	t.Run("stale version is a conflict", func(t *testing.T) {
		repo := new(MockTaxInvoiceRepository)
		doc := newTestDocument(t, tenantID)
		current := copyDocument(doc)
		current.Version = 3
		repo.On("FindByIDForTenant", mock.Anything, tenantID, doc.ID).Return(current, nil)

		_, err := NewRepositorySaver(repo, tenantID).Save(context.Background(), payloadFor(doc))

		assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)
		repo.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything)
	})

	t.Run("lock failure", func(t *testing.T) {
		repo := new(MockTaxInvoiceRepository)
		doc := newTestDocument(t, tenantID)
		repo.On("FindByIDForTenant", mock.Anything, tenantID, doc.ID).Return(copyDocument(doc), nil)
		repo.On("SaveWithLock", mock.Anything, mock.Anything).Return(shared.ErrConcurrencyConflict)

		_, err := NewRepositorySaver(repo, tenantID).Save(context.Background(), payloadFor(doc))

		assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)
	})

	t.Run("malformed ID", func(t *testing.T) {
		repo := new(MockTaxInvoiceRepository)

		_, err := NewRepositorySaver(repo, tenantID).Save(context.Background(), taxinvoice.Payload{ID: "nope"})

		assert.ErrorIs(t, err, shared.ErrInvalidInput)
		repo.AssertNotCalled(t, "FindByIDForTenant", mock.Anything, mock.Anything, mock.Anything)
	})
}
