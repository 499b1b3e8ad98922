// Package observability sets up the OpenTelemetry meter and tracer used by
// the automation pipeline. A nil *Observability is valid and records nothing.
package observability

import (
	"context"
	"fmt"
	"time"

	promclient "github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/jaeger"
	"go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

type Observability struct {
	meterProvider  *metric.MeterProvider
	tracerProvider *sdktrace.TracerProvider
	tracer         trace.Tracer
	stageCounter   otelmetric.Int64Counter
	stageDuration  otelmetric.Float64Histogram
}

// New registers the Prometheus exporter on the default registry and
// installs global meter and tracer providers. Spans go to Jaeger when
// jaegerEndpoint is set and are dropped otherwise.
func New(serviceName, jaegerEndpoint string) (*Observability, error) {
	tp, err := NewTracerProvider(serviceName, jaegerEndpoint)
	if err != nil {
		return nil, err
	}
	return NewWithRegisterer(serviceName, promclient.DefaultRegisterer, tp)
}

// NewTracerProvider batches spans to the Jaeger collector at endpoint, or
// builds a provider without exporters when endpoint is empty.
func NewTracerProvider(serviceName, endpoint string) (*sdktrace.TracerProvider, error) {
	res := resource.NewSchemaless(attribute.String("service.name", serviceName))
	if endpoint == "" {
		return sdktrace.NewTracerProvider(sdktrace.WithResource(res)), nil
	}
	exporter, err := jaeger.New(jaeger.WithCollectorEndpoint(jaeger.WithEndpoint(endpoint)))
	if err != nil {
		return nil, fmt.Errorf("jaeger exporter: %w", err)
	}
	return sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	), nil
}

// NewWithRegisterer is New with an explicit registry and tracer provider,
// so tests can use an isolated registry and an in-memory span recorder.
func NewWithRegisterer(serviceName string, reg promclient.Registerer, tp *sdktrace.TracerProvider) (*Observability, error) {
	exporter, err := prometheus.New(prometheus.WithRegisterer(reg))
	if err != nil {
		return nil, err
	}

	provider := metric.NewMeterProvider(metric.WithReader(exporter))
	otel.SetMeterProvider(provider)
	otel.SetTracerProvider(tp)

	meter := provider.Meter(serviceName)
	stageCounter, err := meter.Int64Counter(
		"automation.stages",
		otelmetric.WithDescription("Pipeline stages executed"),
	)
	if err != nil {
		return nil, err
	}
	stageDuration, err := meter.Float64Histogram(
		"automation.stage.duration",
		otelmetric.WithDescription("Pipeline stage duration"),
		otelmetric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	return &Observability{
		meterProvider:  provider,
		tracerProvider: tp,
		tracer:         tp.Tracer(serviceName),
		stageCounter:   stageCounter,
		stageDuration:  stageDuration,
	}, nil
}

// StartSpan opens a span for one pipeline step.
func (o *Observability) StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	if o == nil || o.tracer == nil {
		return noop.NewTracerProvider().Tracer("").Start(ctx, name)
	}
	return o.tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

// EndSpan records err, if any, and closes span.
func EndSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// RecordStage counts a finished stage and its duration.
func (o *Observability) RecordStage(ctx context.Context, stage, outcome string, d time.Duration) {
	if o == nil {
		return
	}
	attrs := otelmetric.WithAttributes(
		attribute.String("stage", stage),
		attribute.String("outcome", outcome),
	)
	o.stageCounter.Add(ctx, 1, attrs)
	o.stageDuration.Record(ctx, float64(d.Milliseconds()), attrs)
}

func (o *Observability) Shutdown(ctx context.Context) error {
	if o == nil {
		return nil
	}
	if err := o.tracerProvider.Shutdown(ctx); err != nil {
		return err
	}
	return o.meterProvider.Shutdown(ctx)
}
