package exporters

import (
	"context"
	"runtime"
	"time"

	"github.com/hilthontt/ephemera/infrastructure/config"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/jaeger"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

const (
	defaultJaegerEndpoint = "http://localhost:14268/api/traces"
	defaultAppName        = "ephemera"
	TracerName            = "ephemera"
)

// InitTracer installs the global tracer provider. With Jaeger disabled it
// installs a no-op provider and returns a shutdown func that does nothing.
func InitTracer(cfg *config.Config) (trace.Tracer, func(context.Context) error, error) {
	if !cfg.Jaeger.Enabled {
		tp := noop.NewTracerProvider()
		otel.SetTracerProvider(tp)
		return tp.Tracer(TracerName), func(context.Context) error { return nil }, nil
	}

	tp, err := initJaegerExporter(cfg)
	if err != nil {
		return nil, nil, err
	}

	tracer := tp.Tracer(TracerName)
	announceStartup(tracer, cfg)

	return tracer, tp.Shutdown, nil
}

func initJaegerExporter(cfg *config.Config) (*sdktrace.TracerProvider, error) {
	if cfg.Jaeger.ServiceName == "" {
		cfg.Jaeger.ServiceName = defaultAppName
	}
	if cfg.Jaeger.ServiceVersion == "" {
		cfg.Jaeger.ServiceVersion = "unknown"
	}
	if cfg.Jaeger.Endpoint == "" {
		cfg.Jaeger.Endpoint = defaultJaegerEndpoint
	}

	exp, err := jaeger.New(
		jaeger.WithCollectorEndpoint(jaeger.WithEndpoint(cfg.Jaeger.Endpoint)),
	)
	if err != nil {
		return nil, err
	}

	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(cfg.Jaeger.ServiceName),
			semconv.ServiceVersion(cfg.Jaeger.ServiceVersion),
			attribute.String("go.version", runtime.Version()),
			attribute.String("os", runtime.GOOS),
			attribute.String("arch", runtime.GOARCH),
		),
	)
	if err != nil {
		return nil, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exp),
		sdktrace.WithResource(res),
	)

	otel.SetTracerProvider(tp)
	return tp, nil
}

func announceStartup(tracer trace.Tracer, cfg *config.Config) {
	now := time.Now().UTC()

	_, span := tracer.Start(context.Background(), "ephemera.startup",
		trace.WithTimestamp(now),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
	defer span.End()

	span.SetAttributes(
		attribute.String("service.name", cfg.Jaeger.ServiceName),
		attribute.String("service.version", cfg.Jaeger.ServiceVersion),
		attribute.String("run.mode", cfg.Server.RunMode),
		attribute.Int("room.capacity", cfg.Room.Capacity),
		attribute.String("realtime.driver", cfg.Realtime.Driver),
		attribute.String("startup.time", now.Format(time.RFC3339)),
	)
}
