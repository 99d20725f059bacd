package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func withObservedLogger(t *testing.T) *observer.ObservedLogs {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	previous := Log
	Log = zap.New(core)
	t.Cleanup(func() { Log = previous })
	return logs
}

func TestInitialize_InvalidLevel(t *testing.T) {
	err := Initialize(Config{Level: "loud"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid log level")
}

func TestInitialize_ProductionWritesLogDir(t *testing.T) {
	previous := Log
	t.Cleanup(func() { Log = previous })

	dir := t.TempDir()
	require.NoError(t, Initialize(Config{Level: "info", LogDir: dir, Environment: "production", ServiceName: "appraiser-api"}))
	assert.NotNil(t, Log)
	assert.DirExists(t, dir)
}

func TestLogHTTPRequest_LevelByStatus(t *testing.T) {
	logs := withObservedLogger(t)

	LogHTTPRequest(context.Background(), "POST", "/evaluate/idea", 200, 0.01)
	LogHTTPRequest(context.Background(), "POST", "/evaluate/idea", 400, 0.01)
	LogHTTPRequest(context.Background(), "POST", "/evaluate/idea", 500, 0.01)

	entries := logs.All()
	require.Len(t, entries, 3)
	assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
	assert.Equal(t, zapcore.ErrorLevel, entries[2].Level)
	assert.Equal(t, "/evaluate/idea", entries[0].ContextMap()["path"])
}

func TestTraceFields(t *testing.T) {
	assert.Empty(t, TraceFields(context.Background()))

	traceID, _ := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	spanID, _ := trace.SpanIDFromHex("00f067aa0ba902b7")
	ctx := trace.ContextWithSpanContext(context.Background(), trace.NewSpanContext(trace.SpanContextConfig{
		TraceID: traceID,
		SpanID:  spanID,
	}))

	fields := TraceFields(ctx)
	require.Len(t, fields, 2)
	assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", fields[0].String)
	assert.Equal(t, "00f067aa0ba902b7", fields[1].String)
}

func TestLogAPICall(t *testing.T) {
	logs := withObservedLogger(t)

	LogAPICall("huggingface", "generate", "success", 0.2, zap.String("model", "org/model"))
	LogAPICall("huggingface", "generate", "error", 1.5)

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
	assert.Equal(t, "huggingface", entries[0].ContextMap()["api"])
	assert.Equal(t, "org/model", entries[0].ContextMap()["model"])
	assert.Equal(t, zapcore.ErrorLevel, entries[1].Level)
	assert.Equal(t, "API call failed", entries[1].Message)
}

func TestInitialize_DevelopmentConsole(t *testing.T) {
	previous := Log
	t.Cleanup(func() { Log = previous })

	require.NoError(t, Initialize(Config{Level: "debug", Environment: "development"}))
	assert.True(t, Log.Core().Enabled(zapcore.DebugLevel))
}
