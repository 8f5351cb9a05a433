package handler

import (
	"errors"
	"net/http"

	"github.com/erp/taxinvoice/internal/domain/shared"
	"github.com/erp/taxinvoice/internal/domain/taxinvoice"
	"github.com/erp/taxinvoice/internal/interfaces/http/dto"
	"github.com/erp/taxinvoice/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// BaseHandler provides common handler utilities
type BaseHandler struct{}

// getTenantID returns the tenant resolved by the tenant middleware
func getTenantID(c *gin.Context) (uuid.UUID, bool) {
	return middleware.GetTenantID(c)
}

// parseIDParam parses a UUID path parameter
func parseIDParam(c *gin.Context, name string) (uuid.UUID, error) {
	return uuid.Parse(c.Param(name))
}

// Success sends a success response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// SuccessWithMeta sends a success response with pagination meta
func (h *BaseHandler) SuccessWithMeta(c *gin.Context, data any, total int64, page, pageSize int) {
	c.JSON(http.StatusOK, dto.NewSuccessResponseWithMeta(data, total, page, pageSize))
}

// Created sends a 201 created response
func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data))
}

// Error sends an error response with the appropriate status code
func (h *BaseHandler) Error(c *gin.Context, statusCode int, code, message string) {
	c.JSON(statusCode, dto.NewErrorResponseWithRequestID(code, message, middleware.GetRequestID(c)))
}

// BadRequest sends a 400 bad request response
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	h.Error(c, http.StatusBadRequest, dto.ErrCodeBadRequest, message)
}

// TenantRequired sends a 400 response for requests without a tenant
func (h *BaseHandler) TenantRequired(c *gin.Context) {
	h.Error(c, http.StatusBadRequest, dto.ErrCodeTenantRequired, "Tenant identification required")
}

// InternalError sends a 500 internal server error response
func (h *BaseHandler) InternalError(c *gin.Context, message string) {
	h.Error(c, http.StatusInternalServerError, dto.ErrCodeInternal, message)
}

// HandleError converts service errors to HTTP responses.
// Field validation failures carry the offending field; optimistic lock
// failures are reported as conflicts even when wrapped by a save failure.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}

	requestID := middleware.GetRequestID(c)

	var validationErr *taxinvoice.ValidationError
	if errors.As(err, &validationErr) {
		var code string
		var domainErr *shared.DomainError
		if errors.As(validationErr, &domainErr) {
			code = dto.NormalizeErrorCode(domainErr.Code)
		} else {
			code = dto.ErrCodeValidation
		}
		c.JSON(dto.GetHTTPStatus(code), dto.NewValidationErrorResponse(code, validationErr.Error(), requestID,
			[]dto.ValidationDetail{{
				Field:   validationErr.Field.String(),
				Rule:    validationErr.Rule,
				Message: validationErr.Error(),
			}},
		))
		return
	}

	if errors.Is(err, shared.ErrConcurrencyConflict) {
		c.JSON(http.StatusConflict, dto.NewErrorResponseWithRequestID(
			dto.ErrCodeConcurrencyConflict,
			"Tax invoice was modified by another user. Reload and try again.",
			requestID,
		))
		return
	}

	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		code := dto.NormalizeErrorCode(domainErr.Code)
		c.JSON(dto.GetHTTPStatus(code), dto.NewErrorResponseWithRequestID(code, domainErr.Message, requestID))
		return
	}

	h.InternalError(c, "An unexpected error occurred")
}
