package telemetry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLevelFilterCore(t *testing.T) {
	inner, logs := observer.New(zapcore.DebugLevel)
	core := newLevelFilterCore(inner, zapcore.WarnLevel)

	assert.False(t, core.Enabled(zapcore.InfoLevel))
	assert.True(t, core.Enabled(zapcore.WarnLevel))

	log := zap.New(core).With(zap.String("session_id", "s-1"))
	log.Info("dropped")
	log.Warn("kept")
	log.Error("also kept")

	entries := logs.All()
	if assert.Len(t, entries, 2) {
		assert.Equal(t, "kept", entries[0].Message)
		assert.Equal(t, "s-1", entries[0].ContextMap()["session_id"])
		assert.Equal(t, "also kept", entries[1].Message)
	}
}

func TestNewSampler(t *testing.T) {
	assert.Equal(t, "AlwaysOnSampler", newSampler(1.0).Description())
	assert.Equal(t, "AlwaysOffSampler", newSampler(0).Description())
	assert.Contains(t, newSampler(0.25).Description(), "TraceIDRatioBased{0.25}")
}
