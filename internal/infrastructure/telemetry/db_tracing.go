package telemetry

import (
	"context"
	"errors"
	"time"

	"github.com/erp/taxinvoice/internal/infrastructure/config"
	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DBTracingConfig holds configuration for database tracing.
type DBTracingConfig struct {
	Enabled          bool
	SlowQueryThresh  time.Duration
	DBSystem         string // postgresql or sqlite
	WithoutVariables bool   // Keep bound values out of db.statement
}

// DefaultDBTracingConfig returns default configuration for database tracing.
func DefaultDBTracingConfig() DBTracingConfig {
	return DBTracingConfig{
		Enabled:          false,
		SlowQueryThresh:  200 * time.Millisecond,
		DBSystem:         "postgresql",
		WithoutVariables: true,
	}
}

// DBTracingFromAppConfig builds the database tracing settings for the configured driver.
// Statement spans are only created while trace export is enabled.
func DBTracingFromAppConfig(cfg config.TelemetryConfig, driver string) DBTracingConfig {
	dbCfg := DefaultDBTracingConfig()
	dbCfg.Enabled = cfg.Enabled && cfg.DBTracingEnabled
	if cfg.DBSlowQueryThresh > 0 {
		dbCfg.SlowQueryThresh = cfg.DBSlowQueryThresh
	}
	if driver == config.DriverSQLite {
		dbCfg.DBSystem = "sqlite"
	}
	return dbCfg
}

// DBTracingPlugin registers otelgorm and marks slow or failed statements on their spans.
type DBTracingPlugin struct {
	config DBTracingConfig
	logger *zap.Logger
}

// NewDBTracingPlugin creates a new database tracing plugin.
func NewDBTracingPlugin(cfg DBTracingConfig, logger *zap.Logger) *DBTracingPlugin {
	return &DBTracingPlugin{
		config: cfg,
		logger: logger,
	}
}

type queryStartKey struct{}

// Register installs otelgorm and the timing callbacks on db.
// It is a no-op when tracing is disabled.
func (p *DBTracingPlugin) Register(db *gorm.DB) error {
	if !p.config.Enabled {
		p.logger.Debug("Database tracing disabled, skipping otelgorm registration")
		return nil
	}

	opts := []otelgorm.Option{otelgorm.WithDBName(p.config.DBSystem)}
	if p.config.WithoutVariables {
		opts = append(opts, otelgorm.WithoutQueryVariables())
	}
	if err := db.Use(otelgorm.NewPlugin(opts...)); err != nil {
		return err
	}

	cb := db.Callback()
	registrations := []func() error{
		func() error { return cb.Create().Before("gorm:create").Register("otel_timing:before_create", p.before) },
		func() error { return cb.Query().Before("gorm:query").Register("otel_timing:before_query", p.before) },
		func() error { return cb.Update().Before("gorm:update").Register("otel_timing:before_update", p.before) },
		func() error { return cb.Delete().Before("gorm:delete").Register("otel_timing:before_delete", p.before) },
		func() error { return cb.Row().Before("gorm:row").Register("otel_timing:before_row", p.before) },
		func() error { return cb.Raw().Before("gorm:raw").Register("otel_timing:before_raw", p.before) },
		func() error { return cb.Create().After("gorm:create").Register("otel_timing:after_create", p.after) },
		func() error { return cb.Query().After("gorm:query").Register("otel_timing:after_query", p.after) },
		func() error { return cb.Update().After("gorm:update").Register("otel_timing:after_update", p.after) },
		func() error { return cb.Delete().After("gorm:delete").Register("otel_timing:after_delete", p.after) },
		func() error { return cb.Row().After("gorm:row").Register("otel_timing:after_row", p.after) },
		func() error { return cb.Raw().After("gorm:raw").Register("otel_timing:after_raw", p.after) },
	}
	for _, register := range registrations {
		if err := register(); err != nil {
			return err
		}
	}

	p.logger.Info("Database tracing enabled",
		zap.Duration("slow_query_threshold", p.config.SlowQueryThresh),
		zap.String("db_system", p.config.DBSystem),
	)
	return nil
}

func (p *DBTracingPlugin) before(db *gorm.DB) {
	if db.Statement.Context != nil {
		db.Statement.Context = context.WithValue(db.Statement.Context, queryStartKey{}, time.Now())
	}
}

func (p *DBTracingPlugin) after(db *gorm.DB) {
	ctx := db.Statement.Context
	if ctx == nil {
		return
	}
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}

	if db.Statement.RowsAffected >= 0 {
		span.SetAttributes(attribute.Int64("db.rows_affected", db.Statement.RowsAffected))
	}
	if db.Statement.Table != "" {
		span.SetAttributes(attribute.String("db.sql.table", db.Statement.Table))
	}
	if db.Error != nil && !errors.Is(db.Error, gorm.ErrRecordNotFound) {
		span.SetStatus(codes.Error, db.Error.Error())
		span.RecordError(db.Error)
	}

	start, ok := ctx.Value(queryStartKey{}).(time.Time)
	if !ok {
		return
	}
	if elapsed := time.Since(start); elapsed > p.config.SlowQueryThresh {
		span.SetAttributes(
			attribute.Bool("db.slow_query", true),
			attribute.Int64("db.query_duration_ms", elapsed.Milliseconds()),
		)
		span.AddEvent("slow_query_warning", trace.WithAttributes(
			attribute.Int64("duration_ms", elapsed.Milliseconds()),
			attribute.Int64("threshold_ms", p.config.SlowQueryThresh.Milliseconds()),
		))
	}
}
