package tracer

import (
	"context"
	"log"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
)

const serviceName = "docsync-worker"

// Resource attribute keys describing which index feeds which store.
const (
	SourceIndexKey = attribute.Key("docsync.source.index")
	WriteModeKey   = attribute.Key("docsync.storage.write_mode")
	SchedulerKey   = attribute.Key("docsync.scheduler.cron")
)

type Options struct {
	Enabled     bool
	Endpoint    string
	Environment string
	SourceIndex string
	WriteMode   string
	Cron        string
}

// InitTracer exports spans over OTLP HTTP when opts.Enabled is set and returns
// the provider shutdown. Spans cover each processing run, each search request
// and, through otelfiber, the ops endpoints.
func InitTracer(opts Options) func(context.Context) error {
	if !opts.Enabled {
		log.Println("OpenTelemetry tracing is disabled (set OTEL_ENABLED=true to enable)")
		return func(context.Context) error { return nil }
	}

	exporter, err := otlptracehttp.New(context.Background(),
		otlptracehttp.WithEndpoint(opts.Endpoint),
		otlptracehttp.WithInsecure(),
	)
	if err != nil {
		log.Printf("Warning: Failed to create OTLP exporter: %v (tracing disabled)", err)
		return func(context.Context) error { return nil }
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(newResource(opts)),
	)

	otel.SetTracerProvider(tp)
	log.Printf("✅ OpenTelemetry tracer initialized (endpoint: %s, index: %s)", opts.Endpoint, opts.SourceIndex)

	return tp.Shutdown
}

func newResource(opts Options) *resource.Resource {
	attrs := []attribute.KeyValue{
		semconv.ServiceNameKey.String(serviceName),
		semconv.DeploymentEnvironmentKey.String(opts.Environment),
		SourceIndexKey.String(opts.SourceIndex),
		WriteModeKey.String(opts.WriteMode),
	}
	if opts.Cron != "" {
		attrs = append(attrs, SchedulerKey.String(opts.Cron))
	}
	return resource.NewWithAttributes(semconv.SchemaURL, attrs...)
}
