package tracing

import (
	"context"

	"github.com/Gobusters/ectologger"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/Ramsey-B/poppy/pkg/tracing/exporters"
)

// Setup installs the global tracer provider. Spans go to the OTLP collector
// when enabled, otherwise to the debug log.
func Setup(ctx context.Context, appName string, otlpEnabled bool, otlpCfg exporters.OTLPConfig, logger ectologger.Logger) (func(context.Context) error, error) {
	var exporter sdktrace.SpanExporter = exporters.NewConsoleExporter(logger)
	if otlpEnabled {
		otlpExporter, err := exporters.NewOTLPExporter(ctx, otlpCfg)
		if err != nil {
			return nil, err
		}
		exporter = otlpExporter
		logger.WithFields(map[string]any{
			"endpoint": otlpCfg.Endpoint,
			"protocol": otlpCfg.Protocol,
		}).Info("exporting traces over OTLP")
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(resource.NewSchemaless(attribute.String("service.name", appName))),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{}))
	SetTracer(tp.Tracer(appName))

	return tp.Shutdown, nil
}
