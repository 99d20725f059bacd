package tracing

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/maxappraiser/appraiser-api/config"
	"github.com/maxappraiser/appraiser-api/pkg/logger"
	"go.uber.org/zap"
)

const instrumentationName = "github.com/maxappraiser/appraiser-api"

// ShutdownFunc flushes pending spans and stops the tracer provider
type ShutdownFunc func(context.Context) error

// InitTracer installs the global OpenTelemetry tracer provider.
// An empty exporter endpoint leaves tracing disabled and returns a no-op shutdown.
func InitTracer(cfg config.ObservabilityConfig, environment string) (ShutdownFunc, error) {
	if cfg.ExporterEndpoint == "" {
		logger.Info("Tracing disabled: O11Y_EXPORTER_ENDPOINT not set")
		return func(context.Context) error { return nil }, nil
	}

	logger.Info("Initializing OpenTelemetry tracer",
		zap.String("service", cfg.ServiceName),
		zap.String("namespace", cfg.ServiceNamespace),
		zap.String("version", cfg.ServiceVersion),
		zap.String("environment", environment),
		zap.String("endpoint", cfg.ExporterEndpoint))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// collector runs on the internal network (no TLS)
	exporter, err := otlptracehttp.New(ctx,
		otlptracehttp.WithEndpoint(cfg.ExporterEndpoint),
		otlptracehttp.WithInsecure(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP exporter: %w", err)
	}

	res, err := newResource(ctx, cfg, environment)
	if err != nil {
		return nil, err
	}

	// Export failures must never block request handling
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter,
			sdktrace.WithBatchTimeout(2*time.Second),
			sdktrace.WithExportTimeout(5*time.Second),
			sdktrace.WithMaxQueueSize(2048),
			sdktrace.WithMaxExportBatchSize(512),
		),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.AlwaysSample())),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	logger.Info("OpenTelemetry tracer initialized successfully")
	return tp.Shutdown, nil
}

func newResource(ctx context.Context, cfg config.ObservabilityConfig, environment string) (*resource.Resource, error) {
	attrs := []attribute.KeyValue{
		semconv.ServiceName(cfg.ServiceName),
		semconv.ServiceNamespace(cfg.ServiceNamespace),
		semconv.ServiceVersion(cfg.ServiceVersion),
		attribute.String("deployment.environment.name", environment),
	}
	if cfg.ServiceInstanceID != "" {
		attrs = append(attrs, semconv.ServiceInstanceID(cfg.ServiceInstanceID))
	}

	res, err := resource.New(ctx, resource.WithAttributes(attrs...))
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}
	return res, nil
}

// StartSpan starts a child span of whatever span ctx carries. Before
// InitTracer runs the global provider is a no-op and so is the span.
func StartSpan(ctx context.Context, spanName string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return otel.Tracer(instrumentationName).Start(ctx, spanName, trace.WithAttributes(attrs...))
}

// RecordError marks span as failed with err
func RecordError(span trace.Span, err error, description string) {
	span.RecordError(err)
	span.SetStatus(codes.Error, description)
}
