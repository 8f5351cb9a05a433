package telemetry_test

import (
	"context"
	"testing"
	"time"

	"github.com/erp/taxinvoice/internal/infrastructure/config"
	"github.com/erp/taxinvoice/internal/infrastructure/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
)

func TestFromAppConfig(t *testing.T) {
	cfg := telemetry.FromAppConfig(config.TelemetryConfig{
		Enabled:           true,
		CollectorEndpoint: "collector:4317",
		SamplingRatio:     0.5,
		ServiceName:       "taxinvoice",
		Insecure:          true,
		MetricsEnabled:    true,
		MetricsInterval:   30 * time.Second,
		LogsEnabled:       true,
	})

	assert.True(t, cfg.Enabled)
	assert.Equal(t, "collector:4317", cfg.CollectorEndpoint)
	assert.Equal(t, 0.5, cfg.SamplingRatio)
	assert.Equal(t, "taxinvoice", cfg.ServiceName)
	assert.True(t, cfg.Insecure)
	assert.True(t, cfg.MetricsEnabled)
	assert.Equal(t, 30*time.Second, cfg.MetricsInterval)
	assert.True(t, cfg.LogsEnabled)
}

func TestNewTracerProvider_Disabled(t *testing.T) {
	ctx := context.Background()
	tp, err := telemetry.NewTracerProvider(ctx, telemetry.Config{ServiceName: "test"}, zaptest.NewLogger(t))

	require.NoError(t, err)
	assert.False(t, tp.IsEnabled())
	assert.NotNil(t, tp.Tracer("test"))
	assert.NoError(t, tp.Shutdown(ctx))
}

func TestNewMeterProvider_Disabled(t *testing.T) {
	ctx := context.Background()
	mp, err := telemetry.NewMeterProvider(ctx, telemetry.Config{ServiceName: "test"}, zaptest.NewLogger(t))

	require.NoError(t, err)
	assert.False(t, mp.IsEnabled())
	assert.NotNil(t, mp.Meter("test"))
	assert.NoError(t, mp.Shutdown(ctx))
}

func TestNewLoggerProvider_Disabled(t *testing.T) {
	ctx := context.Background()
	lp, err := telemetry.NewLoggerProvider(ctx, telemetry.Config{ServiceName: "test"}, zaptest.NewLogger(t))

	require.NoError(t, err)
	assert.False(t, lp.IsEnabled())

	core := lp.ZapCore(zapcore.InfoLevel)
	assert.False(t, core.Enabled(zapcore.ErrorLevel))
	assert.NoError(t, lp.Shutdown(ctx))
}
