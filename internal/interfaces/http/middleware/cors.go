package middleware

import (
	"slices"
	"time"

	"github.com/erp/taxinvoice/internal/infrastructure/config"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// CORS returns the cross-origin middleware for the configured origins.
// With no origins configured, cross-origin requests get no CORS headers.
// A "*" entry allows every origin without credentials.
func CORS(cfg config.HTTPConfig) gin.HandlerFunc {
	if len(cfg.CORSAllowOrigins) == 0 {
		return func(c *gin.Context) {
			c.Next()
		}
	}

	corsCfg := cors.Config{
		AllowMethods:     cfg.CORSAllowMethods,
		AllowHeaders:     cfg.CORSAllowHeaders,
		ExposeHeaders:    []string{RequestIDHeader, RateLimitLimitHeader, RateLimitRemainingHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if slices.Contains(cfg.CORSAllowOrigins, "*") {
		corsCfg.AllowAllOrigins = true
		corsCfg.AllowCredentials = false
	} else {
		corsCfg.AllowOrigins = cfg.CORSAllowOrigins
	}

	return cors.New(corsCfg)
}
