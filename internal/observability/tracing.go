// Package observability wires OpenTelemetry tracing with a Zipkin exporter.
package observability

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/zipkin"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/valpere/pogoda/internal/config"
)

// ShutdownFunc flushes and stops the tracer provider.
type ShutdownFunc func(ctx context.Context) error

func noopShutdown(context.Context) error { return nil }

// InitTracer installs a global tracer provider exporting to Zipkin. With an
// empty endpoint tracing stays on the default no-op provider.
func InitTracer(cfg config.MetricsConfig, serviceName, serviceVersion string, logger *zerolog.Logger) (ShutdownFunc, error) {
	if cfg.ZipkinEndpoint == "" {
		logger.Debug().Msg("Zipkin endpoint not configured, tracing disabled")
		return noopShutdown, nil
	}

	exporter, err := zipkin.New(cfg.ZipkinEndpoint)
	if err != nil {
		return noopShutdown, fmt.Errorf("failed to create zipkin exporter: %w", err)
	}

	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			"",
			attribute.String("service.name", serviceName),
			attribute.String("service.version", serviceVersion),
		),
	)
	if err != nil {
		return noopShutdown, fmt.Errorf("failed to create trace resource: %w", err)
	}

	tracerProvider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tracerProvider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{}))

	logger.Info().
		Str("endpoint", cfg.ZipkinEndpoint).
		Msg("Tracing enabled")

	return tracerProvider.Shutdown, nil
}
