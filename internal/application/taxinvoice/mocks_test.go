package taxinvoice

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/erp/taxinvoice/internal/domain/shared"
	"github.com/erp/taxinvoice/internal/domain/shared/valueobject"
	"github.com/erp/taxinvoice/internal/domain/taxinvoice"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockTaxInvoiceRepository is a mock implementation of TaxInvoiceRepository
type MockTaxInvoiceRepository struct {
	mock.Mock
}

func (m *MockTaxInvoiceRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*taxinvoice.TaxInvoice, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*taxinvoice.TaxInvoice), args.Error(1)
}

func (m *MockTaxInvoiceRepository) FindByInvoiceID(ctx context.Context, tenantID, invoiceID uuid.UUID) (*taxinvoice.TaxInvoice, error) {
	args := m.Called(ctx, tenantID, invoiceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*taxinvoice.TaxInvoice), args.Error(1)
}

func (m *MockTaxInvoiceRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter taxinvoice.TaxInvoiceFilter) ([]taxinvoice.TaxInvoice, error) {
	args := m.Called(ctx, tenantID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]taxinvoice.TaxInvoice), args.Error(1)
}

func (m *MockTaxInvoiceRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter taxinvoice.TaxInvoiceFilter) (int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockTaxInvoiceRepository) Save(ctx context.Context, ti *taxinvoice.TaxInvoice) error {
	args := m.Called(ctx, ti)
	return args.Error(0)
}

func (m *MockTaxInvoiceRepository) SaveWithLock(ctx context.Context, ti *taxinvoice.TaxInvoice) error {
	args := m.Called(ctx, ti)
	return args.Error(0)
}

// MockDraftStore is a mock implementation of DraftStore
type MockDraftStore struct {
	mock.Mock
}

func (m *MockDraftStore) Save(ctx context.Context, tenantID, taxInvoiceID uuid.UUID, snap taxinvoice.SessionSnapshot, ttl time.Duration) error {
	args := m.Called(ctx, tenantID, taxInvoiceID, snap, ttl)
	return args.Error(0)
}

func (m *MockDraftStore) Load(ctx context.Context, tenantID, taxInvoiceID uuid.UUID) (*taxinvoice.SessionSnapshot, error) {
	args := m.Called(ctx, tenantID, taxInvoiceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*taxinvoice.SessionSnapshot), args.Error(1)
}

func (m *MockDraftStore) Delete(ctx context.Context, tenantID, taxInvoiceID uuid.UUID) error {
	args := m.Called(ctx, tenantID, taxInvoiceID)
	return args.Error(0)
}

// MockEventPublisher is a mock implementation of EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	args := m.Called(ctx, events)
	return args.Error(0)
}

// memoryDrafts is a map-backed DraftStore for flow tests
type memoryDrafts struct {
	mu     sync.Mutex
	drafts map[[2]uuid.UUID]taxinvoice.SessionSnapshot
}

func newMemoryDrafts() *memoryDrafts {
	return &memoryDrafts{drafts: make(map[[2]uuid.UUID]taxinvoice.SessionSnapshot)}
}

func (d *memoryDrafts) Save(_ context.Context, tenantID, taxInvoiceID uuid.UUID, snap taxinvoice.SessionSnapshot, _ time.Duration) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.drafts[[2]uuid.UUID{tenantID, taxInvoiceID}] = snap
	return nil
}

func (d *memoryDrafts) Load(_ context.Context, tenantID, taxInvoiceID uuid.UUID) (*taxinvoice.SessionSnapshot, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	snap, ok := d.drafts[[2]uuid.UUID{tenantID, taxInvoiceID}]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return &snap, nil
}

func (d *memoryDrafts) Delete(_ context.Context, tenantID, taxInvoiceID uuid.UUID) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.drafts, [2]uuid.UUID{tenantID, taxInvoiceID})
	return nil
}

func (d *memoryDrafts) has(tenantID, taxInvoiceID uuid.UUID) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.drafts[[2]uuid.UUID{tenantID, taxInvoiceID}]
	return ok
}

// newTestDocument creates a draft with total 1,000,000, discount 100,000 and 11% PPN:
// DPP 900,000 and PPN 99,000
func newTestDocument(t *testing.T, tenantID uuid.UUID) *taxinvoice.TaxInvoice {
	t.Helper()
	doc, err := taxinvoice.NewTaxInvoice(
		tenantID,
		uuid.New(),
		"INV-2024-00001",
		uuid.New(),
		"PT Maju Jaya",
		valueobject.NewMoneyIDRFromInt(1000000),
		valueobject.NewMoneyIDRFromInt(100000),
		decimal.NewFromInt(11),
	)
	require.NoError(t, err)
	doc.ClearDomainEvents()
	return doc
}

// copyDocument returns a copy the repository can hand out without sharing state
func copyDocument(doc *taxinvoice.TaxInvoice) *taxinvoice.TaxInvoice {
	c := *doc
	return &c
}

func fieldValue(resp *SessionResponse, name taxinvoice.FieldName) FieldResponse {
	for _, f := range resp.Fields {
		if f.Name == name.String() {
			return f
		}
	}
	return FieldResponse{}
}
