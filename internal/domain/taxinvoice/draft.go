package taxinvoice

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// DraftStore keeps the state of open edit sessions so they survive a restart.
// Load returns shared.ErrNotFound when no draft exists or it has expired.
type DraftStore interface {
	Save(ctx context.Context, tenantID, taxInvoiceID uuid.UUID, snap SessionSnapshot, ttl time.Duration) error
	Load(ctx context.Context, tenantID, taxInvoiceID uuid.UUID) (*SessionSnapshot, error)
	Delete(ctx context.Context, tenantID, taxInvoiceID uuid.UUID) error
}
