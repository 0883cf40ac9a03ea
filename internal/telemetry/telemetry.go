// Package telemetry wires OpenTelemetry tracing into the engine's
// transport, grounded on the teacher's referenced internal/node/telemetry
// package (cmd/node/main.go: telemetry.InitTracer(cfg.Telemetry, ...),
// and its use of otelgrpc.NewServerHandler/NewClientHandler as grpc
// stats handlers) — rebuilt here since that package itself was not part
// of the retrieval pack.
package telemetry

import (
	"context"
	"fmt"

	"chordring/internal/config"

	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"google.golang.org/grpc"
	"google.golang.org/grpc/stats"
)

// Shutdown flushes and tears down the tracer provider installed by
// InitTracer.
type Shutdown func(context.Context) error

// InitTracer installs a global TracerProvider per cfg, naming the
// service serviceName and tagging every span with nodeID. When tracing
// is disabled it installs nothing, leaving the global provider as it
// was, and returns a no-op shutdown. cfg.Exporter selects the span exporter: "otlp" dials
// cfg.Endpoint over grpc via otlptracegrpc; anything else (including
// the empty string) prints spans to stdout.
func InitTracer(cfg config.TracingConfig, serviceName string, nodeID uint64) Shutdown {
	if !cfg.Enabled {
		return func(context.Context) error { return nil }
	}

	exporter, err := newExporter(cfg)
	if err != nil {
		return func(context.Context) error { return nil }
	}

	res := resource.NewSchemaless(
		attribute.String("service.name", serviceName),
		attribute.String("service.instance.id", fmt.Sprintf("0x%016x", nodeID)),
	)

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(provider)

	return provider.Shutdown
}

// newExporter builds the span exporter cfg.Exporter selects.
func newExporter(cfg config.TracingConfig) (sdktrace.SpanExporter, error) {
	if cfg.Exporter != "otlp" {
		return stdouttrace.New(stdouttrace.WithPrettyPrint())
	}
	return otlptracegrpc.New(context.Background(),
		otlptracegrpc.WithEndpoint(cfg.Endpoint),
		otlptracegrpc.WithInsecure(),
	)
}

// ServerStatsHandler returns the otelgrpc stats handler to attach via
// grpc.StatsHandler on the server, or nil when tracing is disabled —
// callers append it to grpc.ServerOption only when non-nil.
func ServerStatsHandler(cfg config.TracingConfig) stats.Handler {
	if !cfg.Enabled {
		return nil
	}
	return otelgrpc.NewServerHandler(
		otelgrpc.WithTracerProvider(otel.GetTracerProvider()),
		otelgrpc.WithPropagators(otel.GetTextMapPropagator()),
	)
}

// ClientDialOptions returns the grpc.DialOption needed to trace
// outbound peer RPCs, or nil when tracing is disabled.
func ClientDialOptions(cfg config.TracingConfig) []grpc.DialOption {
	if !cfg.Enabled {
		return nil
	}
	return []grpc.DialOption{
		grpc.WithStatsHandler(otelgrpc.NewClientHandler(
			otelgrpc.WithTracerProvider(otel.GetTracerProvider()),
			otelgrpc.WithPropagators(otel.GetTextMapPropagator()),
		)),
	}
}
