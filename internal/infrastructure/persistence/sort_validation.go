package persistence

import (
	"strings"
)

// ValidateSortOrder validates and normalizes the sort order to ASC or DESC.
// Returns "DESC" as the default if the input is invalid or empty.
func ValidateSortOrder(orderDir string) string {
	normalized := strings.ToUpper(strings.TrimSpace(orderDir))
	if normalized == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField validates the sort field against a whitelist of allowed fields.
// Returns the defaultField if the input is invalid, empty, or not in the whitelist.
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if trimmed == "" {
		return defaultField
	}
	if allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// TaxInvoiceSortFields contains allowed sort fields for tax invoices
var TaxInvoiceSortFields = map[string]bool{
	"id":               true,
	"created_at":       true,
	"updated_at":       true,
	"invoice_number":   true,
	"document_number":  true,
	"customer_name":    true,
	"tax_date":         true,
	"total_sale_price": true,
	"tax_base":         true,
	"vat_amount":       true,
	"status":           true,
	"issued_at":        true,
}
