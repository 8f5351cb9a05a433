package middleware

import (
	"net/http"
	"strings"

	"github.com/erp/taxinvoice/internal/infrastructure/logger"
	"github.com/erp/taxinvoice/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// TenantIDKey is the gin context key of the resolved tenant
	TenantIDKey = "tenant_id"
	// TenantHeaderKey names the header that selects the tenant
	TenantHeaderKey = "X-Tenant-ID"
)

// TenantConfig holds configuration for tenant middleware
type TenantConfig struct {
	// SkipPaths are paths that don't require tenant context (e.g., health check)
	SkipPaths []string
	// DefaultTenantID is used when the header is absent. uuid.Nil makes the header mandatory.
	DefaultTenantID uuid.UUID
}

// DefaultTenantConfig returns default tenant middleware configuration
func DefaultTenantConfig() TenantConfig {
	return TenantConfig{
		SkipPaths: []string{"/health", "/healthz", "/ready"},
	}
}

// Tenant resolves the tenant of the request from the X-Tenant-ID header
func Tenant(cfg TenantConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		for _, skipPath := range cfg.SkipPaths {
			if path == skipPath || strings.HasPrefix(path, skipPath+"/") {
				c.Next()
				return
			}
		}

		tenantID := cfg.DefaultTenantID
		if raw := c.GetHeader(TenantHeaderKey); raw != "" {
			parsed, err := uuid.Parse(raw)
			if err != nil {
				abortTenant(c, "Invalid tenant ID format")
				return
			}
			tenantID = parsed
		}
		if tenantID == uuid.Nil {
			abortTenant(c, "Tenant identification required")
			return
		}

		c.Set(TenantIDKey, tenantID)
		ctx := logger.WithTenantID(c.Request.Context(), tenantID.String())
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

func abortTenant(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, dto.NewErrorResponseWithRequestID(
		dto.ErrCodeTenantRequired, message, GetRequestID(c),
	))
}

// GetTenantID returns the tenant resolved by Tenant
func GetTenantID(c *gin.Context) (uuid.UUID, bool) {
	v, exists := c.Get(TenantIDKey)
	if !exists {
		return uuid.Nil, false
	}
	tenantID, ok := v.(uuid.UUID)
	return tenantID, ok && tenantID != uuid.Nil
}
