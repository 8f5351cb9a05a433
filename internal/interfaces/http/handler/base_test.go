package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/erp/taxinvoice/internal/domain/shared"
	"github.com/erp/taxinvoice/internal/domain/taxinvoice"
	"github.com/erp/taxinvoice/internal/interfaces/http/dto"
	"github.com/erp/taxinvoice/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestContext(t *testing.T) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	return c, w
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) dto.Response {
	t.Helper()
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestGetTenantID(t *testing.T) {
	t.Run("returns the resolved tenant", func(t *testing.T) {
		c, _ := newTestContext(t)
		tenantID := uuid.New()
		c.Set(middleware.TenantIDKey, tenantID)

		got, ok := getTenantID(c)
		assert.True(t, ok)
		assert.Equal(t, tenantID, got)
	})

	t.Run("missing tenant", func(t *testing.T) {
		c, _ := newTestContext(t)

		_, ok := getTenantID(c)
		assert.False(t, ok)
	})
}

func TestBaseHandlerSuccess(t *testing.T) {
	h := &BaseHandler{}
	c, w := newTestContext(t)

	h.Success(c, map[string]string{"key": "value"})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, decodeResponse(t, w).Success)
}

func TestBaseHandlerSuccessWithMeta(t *testing.T) {
	h := &BaseHandler{}
	c, w := newTestContext(t)

	h.SuccessWithMeta(c, []string{"item1", "item2"}, 100, 1, 10)

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decodeResponse(t, w)
	assert.True(t, resp.Success)
	require.NotNil(t, resp.Meta)
	assert.Equal(t, int64(100), resp.Meta.Total)
	assert.Equal(t, 10, resp.Meta.TotalPages)
}

func TestBaseHandlerCreated(t *testing.T) {
	h := &BaseHandler{}
	c, w := newTestContext(t)

	h.Created(c, map[string]string{"id": "123"})

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.True(t, decodeResponse(t, w).Success)
}

func TestBaseHandlerErrorMethods(t *testing.T) {
	tests := []struct {
		name         string
		call         func(h *BaseHandler, c *gin.Context)
		expectedCode int
		expectedErr  string
	}{
		{
			name:         "BadRequest",
			call:         func(h *BaseHandler, c *gin.Context) { h.BadRequest(c, "bad") },
			expectedCode: http.StatusBadRequest,
			expectedErr:  dto.ErrCodeBadRequest,
		},
		{
			name:         "TenantRequired",
			call:         func(h *BaseHandler, c *gin.Context) { h.TenantRequired(c) },
			expectedCode: http.StatusBadRequest,
			expectedErr:  dto.ErrCodeTenantRequired,
		},
		{
			name:         "InternalError",
			call:         func(h *BaseHandler, c *gin.Context) { h.InternalError(c, "boom") },
			expectedCode: http.StatusInternalServerError,
			expectedErr:  dto.ErrCodeInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, w := newTestContext(t)
			c.Set(middleware.RequestIDKey, "req-1")

			tt.call(&BaseHandler{}, c)

			assert.Equal(t, tt.expectedCode, w.Code)
			resp := decodeResponse(t, w)
			assert.False(t, resp.Success)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.expectedErr, resp.Error.Code)
			assert.Equal(t, "req-1", resp.Error.RequestID)
		})
	}
}

func TestBaseHandlerHandleError(t *testing.T) {
	tests := []struct {
		name         string
		err          error
		expectedCode int
		expectedErr  string
	}{
		{
			name:         "NOT_FOUND error",
			err:          shared.ErrNotFound,
			expectedCode: http.StatusNotFound,
			expectedErr:  dto.ErrCodeNotFound,
		},
		{
			name:         "ALREADY_EXISTS error",
			err:          shared.ErrAlreadyExists,
			expectedCode: http.StatusConflict,
			expectedErr:  dto.ErrCodeAlreadyExists,
		},
		{
			name:         "INVALID_INPUT error",
			err:          shared.ErrInvalidInput,
			expectedCode: http.StatusBadRequest,
			expectedErr:  dto.ErrCodeInvalidInput,
		},
		{
			name:         "INVALID_STATE error",
			err:          taxinvoice.ErrSessionBusy,
			expectedCode: http.StatusConflict,
			expectedErr:  dto.ErrCodeInvalidState,
		},
		{
			name:         "domain specific code",
			err:          shared.NewDomainError("INVALID_AMOUNT", "Amounts cannot be negative"),
			expectedCode: http.StatusBadRequest,
			expectedErr:  "ERR_INVALID_AMOUNT",
		},
		{
			name:         "CONCURRENCY_CONFLICT error",
			err:          shared.ErrConcurrencyConflict,
			expectedCode: http.StatusConflict,
			expectedErr:  dto.ErrCodeConcurrencyConflict,
		},
		{
			name:         "conflict wrapped by a save failure",
			err:          shared.WrapDomainError("PERSISTENCE_FAILED", "Failed to save document", shared.ErrConcurrencyConflict),
			expectedCode: http.StatusConflict,
			expectedErr:  dto.ErrCodeConcurrencyConflict,
		},
		{
			name:         "save failure",
			err:          shared.WrapDomainError("PERSISTENCE_FAILED", "Failed to save document", errors.New("connection reset")),
			expectedCode: http.StatusInternalServerError,
			expectedErr:  dto.ErrCodePersistenceFailed,
		},
		{
			name:         "wrapped domain error",
			err:          fmt.Errorf("loading: %w", shared.ErrNotFound),
			expectedCode: http.StatusNotFound,
			expectedErr:  dto.ErrCodeNotFound,
		},
		{
			name:         "unknown error",
			err:          errors.New("boom"),
			expectedCode: http.StatusInternalServerError,
			expectedErr:  dto.ErrCodeInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, w := newTestContext(t)

			(&BaseHandler{}).HandleError(c, tt.err)

			assert.Equal(t, tt.expectedCode, w.Code)
			resp := decodeResponse(t, w)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.expectedErr, resp.Error.Code)
		})
	}

	t.Run("nil error writes nothing", func(t *testing.T) {
		c, w := newTestContext(t)
		(&BaseHandler{}).HandleError(c, nil)
		assert.Empty(t, w.Body.String())
	})
}

func TestBaseHandlerHandleValidationError(t *testing.T) {
	err := taxinvoice.NewValidator(taxinvoice.DefaultSchema()).Validate(taxinvoice.Snapshot{})
	require.Error(t, err)

	c, w := newTestContext(t)
	(&BaseHandler{}).HandleError(c, err)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	resp := decodeResponse(t, w)
	require.NotNil(t, resp.Error)
	assert.Equal(t, dto.ErrCodeValidationRequired, resp.Error.Code)
	require.Len(t, resp.Error.Details, 1)
	assert.Equal(t, taxinvoice.FieldDocumentNumber.String(), resp.Error.Details[0].Field)
	assert.Equal(t, taxinvoice.RuleRequired, resp.Error.Details[0].Rule)
}
