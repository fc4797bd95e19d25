package internal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, LogLevelError, ParseLogLevel("error"))
	assert.Equal(t, LogLevelWarn, ParseLogLevel("WARNING"))
	assert.Equal(t, LogLevelTrace, ParseLogLevel(" trace "))
	assert.Equal(t, LogLevelInfo, ParseLogLevel("verbose"))
}

func TestLogger_FiltersByLevel(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := NewLoggerWithZap(LogLevelWarn, zap.New(core))

	l.Error("disk %s", "full")
	l.Warn("slow query")
	l.Info("ignored")
	l.Debug("ignored")
	l.Trace("ignored")

	entries := logs.All()
	if assert.Len(t, entries, 2) {
		assert.Equal(t, "disk full", entries[0].Message)
		assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
	}
}

func TestLogger_TraceGoesToDebug(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := NewLoggerWithZap(LogLevelTrace, zap.New(core)).Named("engine")

	l.Trace("row %d", 7)

	entries := logs.All()
	if assert.Len(t, entries, 1) {
		assert.Equal(t, "[TRACE] row 7", entries[0].Message)
		assert.Equal(t, "engine", entries[0].LoggerName)
	}
}
