package middleware

import (
	"context"

	"github.com/erp/taxinvoice/internal/infrastructure/telemetry"
	"github.com/gin-gonic/gin"
)

// Profiling attaches pprof labels to every request so Pyroscope can slice
// profiles by route, method and tenant. Mount it after Tenant.
func Profiling(enabled bool) gin.HandlerFunc {
	if !enabled {
		return func(c *gin.Context) {
			c.Next()
		}
	}

	return func(c *gin.Context) {
		labels := map[string]string{
			telemetry.ProfilingLabelMethod: c.Request.Method,
			telemetry.ProfilingLabelRoute:  c.FullPath(),
		}
		if tenantID, ok := GetTenantID(c); ok {
			labels[telemetry.ProfilingLabelTenantID] = tenantID.String()
		}

		telemetry.WithProfilingLabels(c.Request.Context(), labels, func(ctx context.Context) {
			c.Request = c.Request.WithContext(ctx)
			c.Next()
		})
	}
}
