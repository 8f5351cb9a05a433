package logger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	gormlogger "gorm.io/gorm/logger"
)

func newObservedGormLogger(level gormlogger.LogLevel, opts ...GormLoggerOption) (*GormLogger, *observer.ObservedLogs) {
	core, recorded := observer.New(zapcore.DebugLevel)
	return NewGormLogger(zap.New(core), level, opts...), recorded
}

func TestGormLogger_LogMode(t *testing.T) {
	gl, _ := newObservedGormLogger(gormlogger.Info)

	changed, ok := gl.LogMode(gormlogger.Warn).(*GormLogger)

	require.True(t, ok)
	assert.Equal(t, gormlogger.Warn, changed.logLevel)
	assert.Equal(t, gormlogger.Info, gl.logLevel)
}

func TestGormLogger_Trace(t *testing.T) {
	ctx := WithTenantID(WithRequestID(context.Background(), "req-1"), "tenant-1")
	query := func() (string, int64) { return "SELECT * FROM tax_invoices", 1 }

	t.Run("query at info level", func(t *testing.T) {
		gl, recorded := newObservedGormLogger(gormlogger.Info)

		gl.Trace(ctx, time.Now(), query, nil)

		logs := recorded.FilterMessage("SQL Query").All()
		require.Len(t, logs, 1)
		assert.Equal(t, "req-1", logs[0].ContextMap()["request_id"])
		assert.Equal(t, "tenant-1", logs[0].ContextMap()["tenant_id"])
	})

	t.Run("error", func(t *testing.T) {
		gl, recorded := newObservedGormLogger(gormlogger.Error)

		gl.Trace(ctx, time.Now(), query, errors.New("connection reset"))

		assert.Equal(t, 1, recorded.FilterMessage("SQL Error").Len())
	})

	t.Run("record not found is ignored", func(t *testing.T) {
		gl, recorded := newObservedGormLogger(gormlogger.Error)

		gl.Trace(ctx, time.Now(), query, gormlogger.ErrRecordNotFound)

		assert.Equal(t, 0, recorded.Len())
	})

	t.Run("record not found is logged when configured", func(t *testing.T) {
		gl, recorded := newObservedGormLogger(gormlogger.Error, WithIgnoreRecordNotFoundError(false))

		gl.Trace(ctx, time.Now(), query, gormlogger.ErrRecordNotFound)

		assert.Equal(t, 1, recorded.FilterMessage("SQL Error").Len())
	})

	t.Run("slow query", func(t *testing.T) {
		gl, recorded := newObservedGormLogger(gormlogger.Warn, WithSlowThreshold(time.Millisecond))

		gl.Trace(ctx, time.Now().Add(-time.Second), query, nil)

		assert.Equal(t, 1, recorded.FilterMessage("Slow SQL").Len())
	})

	t.Run("silent logs nothing", func(t *testing.T) {
		gl, recorded := newObservedGormLogger(gormlogger.Silent)

		gl.Trace(ctx, time.Now(), query, errors.New("x"))

		assert.Equal(t, 0, recorded.Len())
	})
}

func TestMapGormLogLevel(t *testing.T) {
	assert.Equal(t, gormlogger.Silent, MapGormLogLevel("silent"))
	assert.Equal(t, gormlogger.Error, MapGormLogLevel("error"))
	assert.Equal(t, gormlogger.Warn, MapGormLogLevel("warn"))
	assert.Equal(t, gormlogger.Info, MapGormLogLevel("debug"))
	assert.Equal(t, gormlogger.Warn, MapGormLogLevel("other"))
}
