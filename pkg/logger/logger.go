package logger

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Log is the process-wide logger. It discards everything until Initialize runs.
var Log = zap.NewNop()

type Config struct {
	Level       string
	LogDir      string
	Environment string
	ServiceName string
}

// rotation settings for one log file under Config.LogDir
type logFile struct {
	name       string
	maxSizeMB  int
	maxAgeDays int
	minLevel   zapcore.LevelEnabler
}

// Initialize replaces Log. Development gets a colored console; every other
// environment logs JSON, and production additionally writes rotated files.
func Initialize(cfg Config) error {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		return fmt.Errorf("invalid log level %s: %w", cfg.Level, err)
	}
	enabled := zap.NewAtomicLevelAt(level)

	consoleEncoder, fileEncoder := encoders(cfg.Environment)
	cores := []zapcore.Core{
		zapcore.NewCore(consoleEncoder, zapcore.Lock(os.Stdout), enabled),
	}

	if cfg.Environment == "production" && cfg.LogDir != "" {
		if err := os.MkdirAll(cfg.LogDir, 0o755); err != nil {
			return fmt.Errorf("failed to create log directory: %w", err)
		}
		for _, f := range []logFile{
			{name: "app.log", maxSizeMB: 100, maxAgeDays: 14, minLevel: enabled},
			{name: "error.log", maxSizeMB: 50, maxAgeDays: 30, minLevel: zapcore.ErrorLevel},
		} {
			sink := &lumberjack.Logger{
				Filename:   filepath.Join(cfg.LogDir, f.name),
				MaxSize:    f.maxSizeMB,
				MaxBackups: 5,
				MaxAge:     f.maxAgeDays,
				Compress:   true,
			}
			cores = append(cores, zapcore.NewCore(fileEncoder, zapcore.AddSync(sink), f.minLevel))
		}
	}

	l := zap.New(zapcore.NewTee(cores...),
		zap.AddCaller(),
		zap.AddCallerSkip(1),
		zap.AddStacktrace(zapcore.ErrorLevel),
	)
	if cfg.ServiceName != "" {
		l = l.With(zap.String("service", cfg.ServiceName))
	}

	Log = l
	return nil
}

func encoders(environment string) (console, file zapcore.Encoder) {
	if environment == "development" {
		ec := zap.NewDevelopmentEncoderConfig()
		ec.EncodeLevel = zapcore.CapitalColorLevelEncoder
		return zapcore.NewConsoleEncoder(ec), zapcore.NewJSONEncoder(ec)
	}

	ec := zap.NewProductionEncoderConfig()
	ec.TimeKey = "timestamp"
	ec.EncodeTime = zapcore.ISO8601TimeEncoder
	return zapcore.NewJSONEncoder(ec), zapcore.NewJSONEncoder(ec)
}

func Debug(msg string, fields ...zap.Field) { Log.Debug(msg, fields...) }
func Info(msg string, fields ...zap.Field)  { Log.Info(msg, fields...) }
func Warn(msg string, fields ...zap.Field)  { Log.Warn(msg, fields...) }
func Error(msg string, fields ...zap.Field) { Log.Error(msg, fields...) }

// Fatal logs and exits the process
func Fatal(msg string, fields ...zap.Field) { Log.Fatal(msg, fields...) }

// Sync flushes buffered entries; the error from syncing stdout is ignored
func Sync() {
	_ = Log.Sync()
}

// TraceFields returns trace_id and span_id for the span carried by ctx
func TraceFields(ctx context.Context) []zap.Field {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.IsValid() {
		return nil
	}
	return []zap.Field{
		zap.String("trace_id", sc.TraceID().String()),
		zap.String("span_id", sc.SpanID().String()),
	}
}

// LogHTTPRequest writes the access log line. 5xx is logged as an error and
// 4xx as a warning.
func LogHTTPRequest(ctx context.Context, method, path string, statusCode int, duration float64, fields ...zap.Field) {
	all := append([]zap.Field{
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", statusCode),
		zap.Float64("duration", duration),
	}, TraceFields(ctx)...)
	all = append(all, fields...)

	switch {
	case statusCode >= 500:
		Error("HTTP request failed", all...)
	case statusCode >= 400:
		Warn("HTTP request client error", all...)
	default:
		Info("HTTP request", all...)
	}
}

// LogAPICall records one call to an external API such as the inference service
func LogAPICall(api, operation, status string, duration float64, fields ...zap.Field) {
	all := append([]zap.Field{
		zap.String("api", api),
		zap.String("operation", operation),
		zap.String("status", status),
		zap.Float64("duration", duration),
	}, fields...)

	if status == "error" {
		Error("API call failed", all...)
		return
	}
	Info("API call", all...)
}
