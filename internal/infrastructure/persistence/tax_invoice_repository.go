package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/erp/taxinvoice/internal/domain/shared"
	"github.com/erp/taxinvoice/internal/domain/taxinvoice"
	"github.com/erp/taxinvoice/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormTaxInvoiceRepository implements TaxInvoiceRepository using GORM
type GormTaxInvoiceRepository struct {
	db *gorm.DB
}

// NewGormTaxInvoiceRepository creates a new GormTaxInvoiceRepository
func NewGormTaxInvoiceRepository(db *gorm.DB) *GormTaxInvoiceRepository {
	return &GormTaxInvoiceRepository{db: db}
}

// FindByIDForTenant finds a tax invoice by ID within a tenant
func (r *GormTaxInvoiceRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*taxinvoice.TaxInvoice, error) {
	var model models.TaxInvoiceModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByInvoiceID finds the tax invoice issued for a sales invoice
func (r *GormTaxInvoiceRepository) FindByInvoiceID(ctx context.Context, tenantID, invoiceID uuid.UUID) (*taxinvoice.TaxInvoice, error) {
	var model models.TaxInvoiceModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND invoice_id = ?", tenantID, invoiceID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAllForTenant finds all tax invoices for a tenant with filtering
func (r *GormTaxInvoiceRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter taxinvoice.TaxInvoiceFilter) ([]taxinvoice.TaxInvoice, error) {
	var taxInvoiceModels []models.TaxInvoiceModel
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&models.TaxInvoiceModel{}).Where("tenant_id = ?", tenantID),
		filter,
	)

	if err := query.Find(&taxInvoiceModels).Error; err != nil {
		return nil, err
	}
	return models.TaxInvoiceModels(taxInvoiceModels), nil
}

// CountForTenant counts tax invoices for a tenant with filtering
func (r *GormTaxInvoiceRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter taxinvoice.TaxInvoiceFilter) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&models.TaxInvoiceModel{}).
		Where("tenant_id = ?", tenantID)
	query = r.applyFilterWithoutPagination(query, filter)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save creates or updates a tax invoice
func (r *GormTaxInvoiceRepository) Save(ctx context.Context, ti *taxinvoice.TaxInvoice) error {
	model := models.TaxInvoiceModelFromDomain(ti)
	if err := r.db.WithContext(ctx).Save(model).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return shared.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// SaveWithLock saves with optimistic locking (version check).
// The aggregate's version has already been incremented by the domain.
func (r *GormTaxInvoiceRepository) SaveWithLock(ctx context.Context, ti *taxinvoice.TaxInvoice) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		expectedVersion := ti.GetVersion() - 1

		result := tx.Model(&models.TaxInvoiceModel{}).
			Where("id = ? AND tenant_id = ? AND version = ?", ti.ID, ti.TenantID, expectedVersion).
			Updates(map[string]any{
				"document_number":   ti.DocumentNumber,
				"tax_date":          ti.TaxDate,
				"total_sale_price":  ti.TotalSalePrice,
				"discount":          ti.Discount,
				"down_payment":      ti.DownPayment,
				"tax_base":          ti.TaxBase,
				"vat_percentage":    ti.VATPercentage,
				"vat_amount":        ti.VATAmount,
				"luxury_tax_amount": ti.LuxuryTaxAmount,
				"notes":             ti.Notes,
				"status":            ti.Status,
				"issued_at":         ti.IssuedAt,
				"version":           ti.Version,
				"updated_at":        ti.UpdatedAt,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected > 0 {
			return nil
		}

		var exists int64
		if err := tx.Model(&models.TaxInvoiceModel{}).
			Where("id = ? AND tenant_id = ?", ti.ID, ti.TenantID).
			Count(&exists).Error; err != nil {
			return err
		}
		if exists == 0 {
			return shared.ErrNotFound
		}
		return shared.ErrConcurrencyConflict
	})
}

// applyFilter applies filter conditions to query
func (r *GormTaxInvoiceRepository) applyFilter(query *gorm.DB, filter taxinvoice.TaxInvoiceFilter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	// Apply sorting with whitelist validation to prevent SQL injection
	sortField := ValidateSortField(filter.OrderBy, TaxInvoiceSortFields, "created_at")
	sortOrder := ValidateSortOrder(filter.OrderDir)
	query = query.Order(fmt.Sprintf("%s %s", sortField, sortOrder))

	if filter.PageSize > 0 {
		query = query.Limit(filter.PageSize)
		offset := (filter.Page - 1) * filter.PageSize
		if offset > 0 {
			query = query.Offset(offset)
		}
	}

	return query
}

// applyFilterWithoutPagination applies filter conditions without pagination
func (r *GormTaxInvoiceRepository) applyFilterWithoutPagination(query *gorm.DB, filter taxinvoice.TaxInvoiceFilter) *gorm.DB {
	// Search in invoice number, Nomor Faktur and customer name
	if search := strings.TrimSpace(filter.Search); search != "" {
		searchPattern := "%" + strings.ToLower(search) + "%"
		query = query.Where("(LOWER(invoice_number) LIKE ? OR LOWER(document_number) LIKE ? OR LOWER(customer_name) LIKE ?)",
			searchPattern, searchPattern, searchPattern)
	}

	if filter.CustomerID != nil {
		query = query.Where("customer_id = ?", *filter.CustomerID)
	}

	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}

	return query
}
