package taxinvoice

import (
	"context"

	"github.com/erp/taxinvoice/internal/domain/shared"
	"github.com/google/uuid"
)

// TaxInvoiceFilter defines filtering options for tax invoice queries
type TaxInvoiceFilter struct {
	shared.Filter
	CustomerID *uuid.UUID        // Filter by customer
	Status     *TaxInvoiceStatus // Filter by status
}

// TaxInvoiceRepository defines the interface for tax invoice persistence
type TaxInvoiceRepository interface {
	// FindByIDForTenant finds a tax invoice by ID for a specific tenant
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*TaxInvoice, error)

	// FindByInvoiceID finds the tax invoice issued for a sales invoice
	FindByInvoiceID(ctx context.Context, tenantID, invoiceID uuid.UUID) (*TaxInvoice, error)

	// FindAllForTenant finds all tax invoices for a tenant with filtering
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter TaxInvoiceFilter) ([]TaxInvoice, error)

	// CountForTenant counts tax invoices for a tenant with optional filters
	CountForTenant(ctx context.Context, tenantID uuid.UUID, filter TaxInvoiceFilter) (int64, error)

	// Save creates or updates a tax invoice
	Save(ctx context.Context, taxInvoice *TaxInvoice) error

	// SaveWithLock saves with optimistic locking (version check)
	SaveWithLock(ctx context.Context, taxInvoice *TaxInvoice) error
}
