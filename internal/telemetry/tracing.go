package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"funnelworks/internal/config"
)

const instrumentation = "funnelworks"

// Shutdown flushes and stops the tracer provider
type Shutdown func(ctx context.Context) error

// Setup installs a global OTLP/HTTP tracer provider when an endpoint is configured.
// Without one the global no-op provider stays in place.
func Setup(ctx context.Context, cfg config.TracingConfig, logger *zap.Logger) (Shutdown, error) {
	if cfg.Endpoint == "" {
		logger.Info("tracing disabled: no OTLP endpoint")
		return func(context.Context) error { return nil }, nil
	}

	opts := []otlptracehttp.Option{otlptracehttp.WithEndpoint(cfg.Endpoint)}
	if cfg.Insecure {
		opts = append(opts, otlptracehttp.WithInsecure())
	}
	exp, err := otlptracehttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create otlp exporter: %w", err)
	}

	tp := sdktrace.NewTracerProvider(sdktrace.WithBatcher(exp))
	otel.SetTracerProvider(tp)
	logger.Info("tracing enabled", zap.String("endpoint", cfg.Endpoint), zap.String("service", cfg.ServiceName))
	return tp.Shutdown, nil
}

// Tracer returns the service tracer from the global provider
func Tracer() trace.Tracer {
	return otel.Tracer(instrumentation)
}
