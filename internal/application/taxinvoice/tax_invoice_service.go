package taxinvoice

import (
	"context"
	"errors"

	"github.com/erp/taxinvoice/internal/domain/shared"
	"github.com/erp/taxinvoice/internal/domain/shared/valueobject"
	"github.com/erp/taxinvoice/internal/domain/taxinvoice"
	"github.com/erp/taxinvoice/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TaxInvoiceService handles tax invoice record operations
type TaxInvoiceService struct {
	repo           taxinvoice.TaxInvoiceRepository
	defaultVAT     decimal.Decimal
	eventPublisher shared.EventPublisher
	metrics        *telemetry.EditorMetrics
}

// NewTaxInvoiceService creates a new TaxInvoiceService.
// defaultVAT is the PPN percentage applied when a create request omits it.
func NewTaxInvoiceService(repo taxinvoice.TaxInvoiceRepository, defaultVAT decimal.Decimal) *TaxInvoiceService {
	return &TaxInvoiceService{
		repo:       repo,
		defaultVAT: defaultVAT,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *TaxInvoiceService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetMetrics sets the editor metrics recorder
func (s *TaxInvoiceService) SetMetrics(metrics *telemetry.EditorMetrics) {
	s.metrics = metrics
}

// Create creates a draft tax invoice for a sales invoice.
// A sales invoice has at most one tax invoice.
func (s *TaxInvoiceService) Create(ctx context.Context, tenantID uuid.UUID, req CreateTaxInvoiceRequest) (*TaxInvoiceResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "tax_invoice", "create")
	defer span.End()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrInvoiceID, req.InvoiceID.String(),
		telemetry.SpanAttrCustomerID, req.CustomerID.String(),
	)

	existing, err := s.repo.FindByInvoiceID(ctx, tenantID, req.InvoiceID)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if existing != nil {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "Tax invoice for this invoice already exists")
	}

	vat := s.defaultVAT
	if req.VATPercentage != nil {
		vat = *req.VATPercentage
	}
	discount := decimal.Zero
	if req.Discount != nil {
		discount = *req.Discount
	}

	ti, err := taxinvoice.NewTaxInvoice(
		tenantID,
		req.InvoiceID,
		req.InvoiceNumber,
		req.CustomerID,
		req.CustomerName,
		valueobject.NewMoneyIDR(req.TotalSalePrice),
		valueobject.NewMoneyIDR(discount),
		vat,
	)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Save(ctx, ti); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.publishDomainEvents(ctx, ti)
	s.metrics.RecordInvoiceCreated(ctx)
	telemetry.SetAttributes(span, telemetry.SpanAttrTaxInvoiceID, ti.ID.String())
	telemetry.SetOK(span)

	response := ToTaxInvoiceResponse(ti)
	return &response, nil
}

// GetByID retrieves a tax invoice by ID
func (s *TaxInvoiceService) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*TaxInvoiceResponse, error) {
	ti, err := s.repo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	response := ToTaxInvoiceResponse(ti)
	return &response, nil
}

// List retrieves one page of tax invoices.
// Unset paging and ordering fall back to shared.DefaultFilter.
func (s *TaxInvoiceService) List(ctx context.Context, tenantID uuid.UUID, filter TaxInvoiceListFilter) (shared.Paginated[TaxInvoiceResponse], error) {
	base := shared.DefaultFilter()
	if filter.Page > 0 {
		base.Page = filter.Page
	}
	if filter.PageSize > 0 {
		base.PageSize = filter.PageSize
	}
	if filter.OrderBy != "" {
		base.OrderBy = filter.OrderBy
	}
	if filter.OrderDir != "" {
		base.OrderDir = filter.OrderDir
	}
	base.Search = filter.Search

	var customerID *uuid.UUID
	if filter.CustomerID != "" {
		parsed, err := uuid.Parse(filter.CustomerID)
		if err != nil {
			return shared.Paginated[TaxInvoiceResponse]{}, shared.NewDomainError("INVALID_CUSTOMER", "Invalid customer ID format")
		}
		customerID = &parsed
	}

	domainFilter := taxinvoice.TaxInvoiceFilter{
		Filter:     base,
		CustomerID: customerID,
		Status:     filter.Status,
	}

	items, err := s.repo.FindAllForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return shared.Paginated[TaxInvoiceResponse]{}, err
	}
	total, err := s.repo.CountForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return shared.Paginated[TaxInvoiceResponse]{}, err
	}

	return shared.NewPaginated(ToTaxInvoiceResponses(items), total, base.Page, base.PageSize), nil
}

// publishDomainEvents publishes and clears the aggregate's pending events
func (s *TaxInvoiceService) publishDomainEvents(ctx context.Context, ti *taxinvoice.TaxInvoice) {
	events := ti.PullDomainEvents()
	if len(events) == 0 || s.eventPublisher == nil {
		return
	}
	// Errors are logged by the event bus, not propagated
	_ = s.eventPublisher.Publish(ctx, events...)
}
