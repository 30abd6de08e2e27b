// Package telemetry wires OpenTelemetry tracing and metrics to an OTLP gRPC
// collector. Without an endpoint the global no-op providers stay in place.
package telemetry

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"time"

	"fuzzynews/internal/logging"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// ServiceName is reported as service.name.
const ServiceName = "fuzzynews"

// EndpointFromEnv returns OTEL_EXPORTER_OTLP_ENDPOINT, or "".
func EndpointFromEnv() string { return os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT") }

// Shutdown flushes and stops the providers installed by Init.
type Shutdown func(context.Context) error

// Init installs global tracer and meter providers exporting to endpoint.
// An empty endpoint leaves telemetry disabled and returns a no-op Shutdown.
// Exporter failures are logged and also leave telemetry disabled; they never
// stop the caller.
func Init(ctx context.Context, endpoint, version string) Shutdown {
	log := logging.New("telemetry")
	if endpoint == "" {
		log.Debug("telemetry disabled, no OTLP endpoint")
		return func(context.Context) error { return nil }
	}
	res := resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(ServiceName),
		semconv.ServiceVersion(version),
		attribute.String("service", ServiceName),
	)
	dial := otlptracegrpc.WithDialOption(grpc.WithTransportCredentials(insecure.NewCredentials()))

	initCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	texp, err := otlptracegrpc.New(initCtx, otlptracegrpc.WithEndpoint(endpoint), dial)
	if err != nil {
		log.Warn("trace exporter init failed", "error", err)
		return func(context.Context) error { return nil }
	}
	tp := sdktrace.NewTracerProvider(sdktrace.WithBatcher(texp), sdktrace.WithResource(res))
	otel.SetTracerProvider(tp)

	mexp, err := otlpmetricgrpc.New(initCtx,
		otlpmetricgrpc.WithEndpoint(endpoint),
		otlpmetricgrpc.WithDialOption(grpc.WithTransportCredentials(insecure.NewCredentials())),
	)
	if err != nil {
		log.Warn("metrics exporter init failed, tracing only", "error", err)
		return tp.Shutdown
	}
	reader := sdkmetric.NewPeriodicReader(mexp, sdkmetric.WithInterval(10*time.Second))
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader), sdkmetric.WithResource(res))
	otel.SetMeterProvider(mp)

	log.Info("telemetry initialized", "endpoint", endpoint)
	return func(ctx context.Context) error {
		return errors.Join(tp.Shutdown(ctx), mp.Shutdown(ctx))
	}
}

// Flush runs shutdown with a bounded timeout and logs any error.
func Flush(ctx context.Context, shutdown Shutdown) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := shutdown(ctx); err != nil {
		slog.Warn("telemetry flush failed", "error", err)
	}
}

// WithSpan starts a span on the global tracer. The caller ends it.
func WithSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return otel.Tracer("fuzzynews").Start(ctx, name, trace.WithAttributes(attrs...))
}
