package handler

import (
	taxinvoiceapp "github.com/erp/taxinvoice/internal/application/taxinvoice"
	"github.com/erp/taxinvoice/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
)

// TaxInvoiceHandler handles tax invoice API endpoints
type TaxInvoiceHandler struct {
	BaseHandler
	taxInvoiceService *taxinvoiceapp.TaxInvoiceService
}

// NewTaxInvoiceHandler creates a new TaxInvoiceHandler
func NewTaxInvoiceHandler(taxInvoiceService *taxinvoiceapp.TaxInvoiceService) *TaxInvoiceHandler {
	return &TaxInvoiceHandler{
		taxInvoiceService: taxInvoiceService,
	}
}

// Create godoc
//
//	@Summary		Create a draft tax invoice
//	@Description	Create a draft Faktur Pajak for a sales invoice. DPP and PPN are derived from the amounts.
//	@Tags			tax-invoices
//	@Accept			json
//	@Produce		json
//	@Param			X-Tenant-ID	header		string								true	"Tenant ID"
//	@Param			request		body		taxinvoiceapp.CreateTaxInvoiceRequest	true	"Tax invoice creation request"
//	@Success		201			{object}	APIResponse[taxinvoiceapp.TaxInvoiceResponse]
//	@Failure		400			{object}	ErrorResponse
//	@Failure		409			{object}	ErrorResponse
//	@Router			/tax-invoices [post]
func (h *TaxInvoiceHandler) Create(c *gin.Context) {
	tenantID, ok := getTenantID(c)
	if !ok {
		h.TenantRequired(c)
		return
	}

	var req taxinvoiceapp.CreateTaxInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	taxInvoice, err := h.taxInvoiceService.Create(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, taxInvoice)
}

// GetByID godoc
//
//	@Summary		Get tax invoice by ID
//	@Tags			tax-invoices
//	@Produce		json
//	@Param			X-Tenant-ID	header		string	true	"Tenant ID"
//	@Param			id			path		string	true	"Tax invoice ID"	format(uuid)
//	@Success		200			{object}	APIResponse[taxinvoiceapp.TaxInvoiceResponse]
//	@Failure		400			{object}	ErrorResponse
//	@Failure		404			{object}	ErrorResponse
//	@Router			/tax-invoices/{id} [get]
func (h *TaxInvoiceHandler) GetByID(c *gin.Context) {
	tenantID, ok := getTenantID(c)
	if !ok {
		h.TenantRequired(c)
		return
	}

	id, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid tax invoice ID format")
		return
	}

	taxInvoice, err := h.taxInvoiceService.GetByID(c.Request.Context(), tenantID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, taxInvoice)
}

// List godoc
//
//	@Summary		List tax invoices
//	@Description	List tax invoices of the tenant with search, filters and pagination
//	@Tags			tax-invoices
//	@Produce		json
//	@Param			X-Tenant-ID	header		string	true	"Tenant ID"
//	@Param			search		query		string	false	"Search invoice number, Nomor Faktur or customer name"
//	@Param			customer_id	query		string	false	"Customer ID"	format(uuid)
//	@Param			status		query		string	false	"Status"		Enums(DRAFT, ISSUED)
//	@Param			page		query		int		false	"Page number"	default(1)
//	@Param			page_size	query		int		false	"Page size"		default(20)	maximum(100)
//	@Param			order_by	query		string	false	"Order by field"	default(created_at)
//	@Param			order_dir	query		string	false	"Order direction"	Enums(asc, desc)	default(desc)
//	@Success		200			{object}	APIResponse[[]taxinvoiceapp.TaxInvoiceResponse]
//	@Failure		400			{object}	ErrorResponse
//	@Router			/tax-invoices [get]
func (h *TaxInvoiceHandler) List(c *gin.Context) {
	tenantID, ok := getTenantID(c)
	if !ok {
		h.TenantRequired(c)
		return
	}

	var filter taxinvoiceapp.TaxInvoiceListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	result, err := h.taxInvoiceService.List(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, result.Items, result.Total, result.Page, result.PageSize)
}
