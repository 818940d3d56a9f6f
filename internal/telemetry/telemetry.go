// Package telemetry provides OpenTelemetry instrumentation for the content and combat layers.
package telemetry

import (
	"context"
	"os"
	"runtime"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

const serviceName = "emberfall"

// Version is reported as service.version.
var Version = "0.1.0"

type options struct {
	exporter sdktrace.SpanExporter
	sync     bool
}

// Option customizes Setup.
type Option func(*options)

// WithExporter replaces the OTLP exporter, for example with an in-memory one.
func WithExporter(exp sdktrace.SpanExporter) Option {
	return func(o *options) { o.exporter = exp }
}

// WithSyncExport exports each span as it ends instead of batching.
func WithSyncExport() Option {
	return func(o *options) { o.sync = true }
}

// Setup installs a global tracer provider. Unless WithExporter is given it exports over
// OTLP HTTP configured by the standard OTEL_EXPORTER_OTLP_* environment variables.
//
// Returns a shutdown function that flushes pending spans; call it on exit.
func Setup(ctx context.Context, opts ...Option) (shutdown func(context.Context) error, err error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if o.exporter == nil {
		o.exporter, err = otlptracehttp.New(ctx)
		if err != nil {
			return nil, err
		}
	}

	// Own resource rather than merging with Default() to avoid schema URL conflicts
	res, err := resource.New(ctx,
		resource.WithAttributes(
			attribute.String("service.name", serviceName),
			attribute.String("service.version", Version),
			attribute.String("host.name", hostname()),
			attribute.String("os.type", runtime.GOOS),
			attribute.String("process.runtime.version", runtime.Version()),
		),
	)
	if err != nil {
		return nil, err
	}

	export := sdktrace.WithBatcher(o.exporter)
	if o.sync {
		export = sdktrace.WithSyncer(o.exporter)
	}
	tp := sdktrace.NewTracerProvider(export, sdktrace.WithResource(res))

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})

	return tp.Shutdown, nil
}

// Tracer returns a tracer scoped to one component, e.g. "manifest" or "combat".
func Tracer(component string) trace.Tracer {
	return otel.GetTracerProvider().Tracer(serviceName + "/" + component)
}

func hostname() string {
	name, err := os.Hostname()
	if err != nil {
		return "unknown"
	}
	return name
}
