package router

import (
	"fmt"
	"io"

	"github.com/erp/taxinvoice/internal/infrastructure/config"
	"github.com/erp/taxinvoice/internal/infrastructure/logger"
	"github.com/erp/taxinvoice/internal/interfaces/http/handler"
	"github.com/erp/taxinvoice/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// EngineConfig holds what the HTTP engine needs beyond its handlers
type EngineConfig struct {
	Env            string
	ServiceName    string
	HTTP           config.HTTPConfig
	TracingEnabled bool
	TracerProvider trace.TracerProvider // nil uses the global provider
	Meter          metric.Meter         // nil disables HTTP metrics
	Profiling      bool                 // label requests for the continuous profiler
}

// Handlers are the endpoint handlers mounted by NewEngine
type Handlers struct {
	TaxInvoice *handler.TaxInvoiceHandler
	Session    *handler.SessionHandler
	System     *handler.SystemHandler
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// NewEngine builds the gin engine with the middleware stack and every route.
// The returned closer stops background work started for the engine.
//
// Middleware order:
//  1. Tracing and RequestID wrap everything else
//  2. Recovery and request logging
//  3. Span enrichment and HTTP metrics
//  4. Security headers, CORS and the body limit
//  5. Tenant resolution, profiling labels and rate limiting on /api only
func NewEngine(cfg EngineConfig, log *zap.Logger, h Handlers) (*gin.Engine, io.Closer, error) {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	httpMetrics, err := middleware.HTTPMetrics(cfg.Meter)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create HTTP metrics: %w", err)
	}

	engine.Use(
		middleware.Tracing(middleware.TracingConfig{
			ServiceName:    cfg.ServiceName,
			Enabled:        cfg.TracingEnabled,
			TracerProvider: cfg.TracerProvider,
		}),
		middleware.RequestID(),
		logger.Recovery(log),
		logger.GinMiddleware(log),
		middleware.SpanEnricher(),
		httpMetrics,
		middleware.Secure(),
		middleware.CORS(cfg.HTTP),
		middleware.BodyLimit(cfg.HTTP.MaxBodySize),
	)

	engine.GET("/health", h.System.Health)

	tenantCfg := middleware.DefaultTenantConfig()
	if cfg.HTTP.DefaultTenantID != "" {
		tenantID, err := uuid.Parse(cfg.HTTP.DefaultTenantID)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid default tenant ID: %w", err)
		}
		tenantCfg.DefaultTenantID = tenantID
	}

	r := NewRouter(engine, WithAPIVersion("v1"))
	r.Use(middleware.Tenant(tenantCfg), middleware.Profiling(cfg.Profiling))

	var closer io.Closer = nopCloser{}
	if cfg.HTTP.RateLimitEnabled {
		limiter := middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		r.Use(middleware.RateLimit(limiter))
		closer = limiter
		log.Info("Rate limiting enabled",
			zap.Int("requests", cfg.HTTP.RateLimitRequests),
			zap.Duration("window", cfg.HTTP.RateLimitWindow),
		)
	}

	r.Register(TaxInvoiceRoutes(h.TaxInvoice, h.Session))

	// system routes are reachable without a tenant
	systemRoutes := SystemRoutes(h.System)
	systemRoutes.RegisterRoutes(engine.Group(r.BasePath()))

	r.Setup()

	return engine, closer, nil
}
