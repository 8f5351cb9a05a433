package taxinvoice

import (
	"context"

	"github.com/erp/taxinvoice/internal/domain/shared"
	"github.com/erp/taxinvoice/internal/domain/taxinvoice"
	"github.com/google/uuid"
)

// RepositorySaver submits session payloads to a TaxInvoiceRepository.
// It reloads the current record, applies the payload at the version the
// session was opened with and saves with optimistic locking.
type RepositorySaver struct {
	repo     taxinvoice.TaxInvoiceRepository
	tenantID uuid.UUID
}

// NewRepositorySaver creates a saver bound to one tenant
func NewRepositorySaver(repo taxinvoice.TaxInvoiceRepository, tenantID uuid.UUID) *RepositorySaver {
	return &RepositorySaver{repo: repo, tenantID: tenantID}
}

// Save implements taxinvoice.Saver
func (r *RepositorySaver) Save(ctx context.Context, payload taxinvoice.Payload) (*taxinvoice.TaxInvoice, error) {
	id, err := uuid.Parse(payload.ID)
	if err != nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Payload carries an invalid tax invoice ID")
	}

	current, err := r.repo.FindByIDForTenant(ctx, r.tenantID, id)
	if err != nil {
		return nil, err
	}
	if err := current.ApplyPayload(payload); err != nil {
		return nil, err
	}
	if err := r.repo.SaveWithLock(ctx, current); err != nil {
		return nil, err
	}
	return current, nil
}
