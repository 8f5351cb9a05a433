package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	taxinvoiceapp "github.com/erp/taxinvoice/internal/application/taxinvoice"
	"github.com/erp/taxinvoice/internal/infrastructure/cache"
	"github.com/erp/taxinvoice/internal/infrastructure/config"
	"github.com/erp/taxinvoice/internal/infrastructure/event"
	"github.com/erp/taxinvoice/internal/infrastructure/logger"
	"github.com/erp/taxinvoice/internal/infrastructure/migration"
	"github.com/erp/taxinvoice/internal/infrastructure/persistence"
	"github.com/erp/taxinvoice/internal/infrastructure/persistence/models"
	"github.com/erp/taxinvoice/internal/infrastructure/telemetry"
	"github.com/erp/taxinvoice/internal/interfaces/http/handler"
	"github.com/erp/taxinvoice/internal/interfaces/http/router"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const version = "1.0.0"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	ctx := context.Background()
	telemetryCfg := telemetry.FromAppConfig(cfg.Telemetry)

	// The log bridge needs a logger of its own before the application logger exists
	bootLog, err := logger.New(logger.FromAppConfig(cfg.Log))
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}

	logProvider, err := telemetry.NewLoggerProvider(ctx, telemetryCfg, bootLog)
	if err != nil {
		bootLog.Fatal("Failed to initialize log exporter", zap.Error(err))
	}

	var extraCores []zapcore.Core
	if logProvider.IsEnabled() {
		extraCores = append(extraCores, logProvider.ZapCore(zapcore.InfoLevel))
	}
	log, err := logger.New(logger.FromAppConfig(cfg.Log), extraCores...)
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting tax invoice service",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("db_driver", cfg.Database.Driver),
		zap.String("draft_store", cfg.Editor.DraftStore),
	)

	tracerProvider, err := telemetry.NewTracerProvider(ctx, telemetryCfg, log)
	if err != nil {
		log.Fatal("Failed to initialize tracing", zap.Error(err))
	}
	profiler, err := telemetry.NewProfiler(telemetry.ProfilerFromAppConfig(cfg.Telemetry), log)
	if err != nil {
		log.Fatal("Failed to start profiler", zap.Error(err))
	}
	if profiler.IsEnabled() && cfg.Telemetry.ProfilingSpanProfiles {
		tracerProvider.EnableSpanProfiles()
	}
	meterProvider, err := telemetry.NewMeterProvider(ctx, telemetryCfg, log)
	if err != nil {
		log.Fatal("Failed to initialize metrics", zap.Error(err))
	}
	editorMetrics, err := telemetry.NewEditorMetrics(meterProvider.Meter("taxinvoice.editor"))
	if err != nil {
		log.Fatal("Failed to create editor metrics", zap.Error(err))
	}

	// Create GORM logger backed by zap
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))

	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	dbTracing := telemetry.NewDBTracingPlugin(telemetry.DBTracingFromAppConfig(cfg.Telemetry, cfg.Database.Driver), log)
	if err := dbTracing.Register(db.DB); err != nil {
		log.Fatal("Failed to register database tracing", zap.Error(err))
	}

	if err := migrateSchema(cfg, db, log); err != nil {
		log.Fatal("Failed to migrate database schema", zap.Error(err))
	}

	drafts, draftsCloser, err := cache.NewDraftStoreFactory(cfg.Editor, cfg.Redis,
		cache.WithLogger(log),
		cache.WithInMemoryFallback(cfg.App.Env != "production"),
	).CreateStore(ctx)
	if err != nil {
		log.Fatal("Failed to create draft store", zap.Error(err))
	}
	defer func() {
		if err := draftsCloser.Close(); err != nil {
			log.Error("Error closing draft store", zap.Error(err))
		}
	}()

	// Initialize event bus and handlers
	eventBus := event.NewInMemoryEventBus(log)
	eventBus.Subscribe(taxinvoiceapp.NewTaxInvoiceAuditHandler(log))
	if err := eventBus.Start(ctx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}

	// Initialize application services
	taxInvoiceRepo := persistence.NewGormTaxInvoiceRepository(db.DB)

	taxInvoiceService := taxinvoiceapp.NewTaxInvoiceService(taxInvoiceRepo, cfg.Editor.DefaultVATPercentage)
	taxInvoiceService.SetEventPublisher(eventBus)
	taxInvoiceService.SetMetrics(editorMetrics)

	editorService := taxinvoiceapp.NewEditorService(taxInvoiceRepo, drafts, cfg.Editor.DraftTTL, log)
	editorService.SetEventPublisher(eventBus)
	editorService.SetMetrics(editorMetrics)

	engine, engineCloser, err := router.NewEngine(router.EngineConfig{
		Env:            cfg.App.Env,
		ServiceName:    cfg.Telemetry.ServiceName,
		HTTP:           cfg.HTTP,
		TracingEnabled: tracerProvider.IsEnabled(),
		Meter:          meterProvider.Meter("http.server"),
		Profiling:      profiler.IsEnabled(),
	}, log, router.Handlers{
		TaxInvoice: handler.NewTaxInvoiceHandler(taxInvoiceService),
		Session:    handler.NewSessionHandler(editorService),
		System:     handler.NewSystemHandler(cfg.App.Name, version, db),
	})
	if err != nil {
		log.Fatal("Failed to build HTTP engine", zap.Error(err))
	}

	// Create HTTP server with config
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	if err := engineCloser.Close(); err != nil {
		log.Error("Error stopping HTTP background work", zap.Error(err))
	}
	if err := eventBus.Stop(shutdownCtx); err != nil {
		log.Error("Error stopping event bus", zap.Error(err))
	}
	if err := meterProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("Error shutting down meter provider", zap.Error(err))
	}
	if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("Error shutting down tracer provider", zap.Error(err))
	}
	if err := profiler.Stop(); err != nil {
		log.Error("Error stopping profiler", zap.Error(err))
	}
	if err := logProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("Error shutting down log provider", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// migrateSchema brings the schema up to date.
// Postgres runs the embedded SQL migrations; sqlite is auto-migrated from the models.
func migrateSchema(cfg *config.Config, db *persistence.Database, log *zap.Logger) error {
	if cfg.Database.Driver == config.DriverSQLite {
		log.Info("Auto-migrating sqlite schema")
		return db.AutoMigrate(&models.TaxInvoiceModel{})
	}
	if !cfg.Database.MigrateOnStartup {
		return nil
	}

	sqlDB, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	m, err := migration.New(sqlDB, log)
	if err != nil {
		return err
	}
	defer m.Close()

	return m.Up()
}
