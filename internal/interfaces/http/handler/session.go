package handler

import (
	"context"

	taxinvoiceapp "github.com/erp/taxinvoice/internal/application/taxinvoice"
	"github.com/erp/taxinvoice/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// SessionHandler exposes the edit session of a tax invoice.
// Every endpoint returns the full session state so clients can re-render
// all fields after a change.
type SessionHandler struct {
	BaseHandler
	editorService *taxinvoiceapp.EditorService
}

// NewSessionHandler creates a new SessionHandler
func NewSessionHandler(editorService *taxinvoiceapp.EditorService) *SessionHandler {
	return &SessionHandler{
		editorService: editorService,
	}
}

// sessionTarget resolves the tenant and tax invoice of the request
func (h *SessionHandler) sessionTarget(c *gin.Context) (tenantID, taxInvoiceID uuid.UUID, ok bool) {
	tenantID, ok = getTenantID(c)
	if !ok {
		h.TenantRequired(c)
		return uuid.Nil, uuid.Nil, false
	}

	taxInvoiceID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid tax invoice ID format")
		return uuid.Nil, uuid.Nil, false
	}
	return tenantID, taxInvoiceID, true
}

// respond runs op and writes its session state
func (h *SessionHandler) respond(c *gin.Context, op func(ctx context.Context, tenantID, taxInvoiceID uuid.UUID) (*taxinvoiceapp.SessionResponse, error)) {
	tenantID, taxInvoiceID, ok := h.sessionTarget(c)
	if !ok {
		return
	}

	session, err := op(c.Request.Context(), tenantID, taxInvoiceID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, session)
}

// Open godoc
//
//	@Summary		Open an edit session
//	@Description	Open the edit session of a tax invoice, restoring an unsaved draft if one exists
//	@Tags			tax-invoice-sessions
//	@Produce		json
//	@Param			X-Tenant-ID	header		string	true	"Tenant ID"
//	@Param			id			path		string	true	"Tax invoice ID"	format(uuid)
//	@Success		200			{object}	APIResponse[taxinvoiceapp.SessionResponse]
//	@Failure		404			{object}	ErrorResponse
//	@Router			/tax-invoices/{id}/session [post]
func (h *SessionHandler) Open(c *gin.Context) {
	h.respond(c, h.editorService.Open)
}

// Get godoc
//
//	@Summary	Get the open edit session
//	@Tags		tax-invoice-sessions
//	@Produce	json
//	@Param		X-Tenant-ID	header		string	true	"Tenant ID"
//	@Param		id			path		string	true	"Tax invoice ID"	format(uuid)
//	@Success	200			{object}	APIResponse[taxinvoiceapp.SessionResponse]
//	@Failure	404			{object}	ErrorResponse
//	@Router		/tax-invoices/{id}/session [get]
func (h *SessionHandler) Get(c *gin.Context) {
	h.respond(c, h.editorService.Get)
}

// EditField godoc
//
//	@Summary		Edit a field
//	@Description	Set a field directly. The field becomes touched and untouched fields derived from it are recomputed.
//	@Tags			tax-invoice-sessions
//	@Accept			json
//	@Produce		json
//	@Param			X-Tenant-ID	header		string							true	"Tenant ID"
//	@Param			id			path		string							true	"Tax invoice ID"	format(uuid)
//	@Param			request		body		taxinvoiceapp.EditFieldRequest	true	"Field edit"
//	@Success		200			{object}	APIResponse[taxinvoiceapp.SessionResponse]
//	@Failure		400			{object}	ErrorResponse
//	@Failure		404			{object}	ErrorResponse
//	@Failure		409			{object}	ErrorResponse
//	@Router			/tax-invoices/{id}/session/fields [patch]
func (h *SessionHandler) EditField(c *gin.Context) {
	var req taxinvoiceapp.EditFieldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	h.respond(c, func(ctx context.Context, tenantID, taxInvoiceID uuid.UUID) (*taxinvoiceapp.SessionResponse, error) {
		return h.editorService.Edit(ctx, tenantID, taxInvoiceID, req)
	})
}

// ResetField godoc
//
//	@Summary		Reset a field's touched flag
//	@Description	Keep the field's value but let it follow its inputs again
//	@Tags			tax-invoice-sessions
//	@Produce		json
//	@Param			X-Tenant-ID	header		string	true	"Tenant ID"
//	@Param			id			path		string	true	"Tax invoice ID"	format(uuid)
//	@Param			field		path		string	true	"Field name"	example(ppn_rp)
//	@Success		200			{object}	APIResponse[taxinvoiceapp.SessionResponse]
//	@Failure		400			{object}	ErrorResponse
//	@Failure		404			{object}	ErrorResponse
//	@Router			/tax-invoices/{id}/session/fields/{field}/reset [post]
func (h *SessionHandler) ResetField(c *gin.Context) {
	field := c.Param("field")
	h.respond(c, func(ctx context.Context, tenantID, taxInvoiceID uuid.UUID) (*taxinvoiceapp.SessionResponse, error) {
		return h.editorService.ResetTouched(ctx, tenantID, taxInvoiceID, field)
	})
}

// RecalculateField godoc
//
//	@Summary		Recalculate a field
//	@Description	Clear the field's touched flag and recompute it from its current inputs
//	@Tags			tax-invoice-sessions
//	@Produce		json
//	@Param			X-Tenant-ID	header		string	true	"Tenant ID"
//	@Param			id			path		string	true	"Tax invoice ID"	format(uuid)
//	@Param			field		path		string	true	"Field name"	example(dasar_pengenaan_pajak)
//	@Success		200			{object}	APIResponse[taxinvoiceapp.SessionResponse]
//	@Failure		400			{object}	ErrorResponse
//	@Failure		404			{object}	ErrorResponse
//	@Router			/tax-invoices/{id}/session/fields/{field}/recalculate [post]
func (h *SessionHandler) RecalculateField(c *gin.Context) {
	field := c.Param("field")
	h.respond(c, func(ctx context.Context, tenantID, taxInvoiceID uuid.UUID) (*taxinvoiceapp.SessionResponse, error) {
		return h.editorService.Recalculate(ctx, tenantID, taxInvoiceID, field)
	})
}

// ResetAll godoc
//
//	@Summary		Reset every field
//	@Description	Reload every field from the saved tax invoice and clear all touched flags
//	@Tags			tax-invoice-sessions
//	@Produce		json
//	@Param			X-Tenant-ID	header		string	true	"Tenant ID"
//	@Param			id			path		string	true	"Tax invoice ID"	format(uuid)
//	@Success		200			{object}	APIResponse[taxinvoiceapp.SessionResponse]
//	@Failure		404			{object}	ErrorResponse
//	@Router			/tax-invoices/{id}/session/reset [post]
func (h *SessionHandler) ResetAll(c *gin.Context) {
	h.respond(c, h.editorService.ResetAll)
}

// Submit godoc
//
//	@Summary		Submit the edit session
//	@Description	Validate and save the tax invoice. On failure the session stays open with every edit retained.
//	@Tags			tax-invoice-sessions
//	@Produce		json
//	@Param			X-Tenant-ID	header		string	true	"Tenant ID"
//	@Param			id			path		string	true	"Tax invoice ID"	format(uuid)
//	@Success		200			{object}	APIResponse[taxinvoiceapp.SessionResponse]
//	@Failure		404			{object}	ErrorResponse
//	@Failure		409			{object}	ErrorResponse
//	@Failure		422			{object}	ErrorResponse
//	@Failure		500			{object}	ErrorResponse
//	@Router			/tax-invoices/{id}/session/submit [post]
func (h *SessionHandler) Submit(c *gin.Context) {
	h.respond(c, h.editorService.Submit)
}

// Cancel godoc
//
//	@Summary		Cancel the edit session
//	@Description	Discard every edit and close the session
//	@Tags			tax-invoice-sessions
//	@Produce		json
//	@Param			X-Tenant-ID	header		string	true	"Tenant ID"
//	@Param			id			path		string	true	"Tax invoice ID"	format(uuid)
//	@Success		200			{object}	APIResponse[taxinvoiceapp.SessionResponse]
//	@Failure		404			{object}	ErrorResponse
//	@Router			/tax-invoices/{id}/session [delete]
func (h *SessionHandler) Cancel(c *gin.Context) {
	h.respond(c, h.editorService.Cancel)
}
