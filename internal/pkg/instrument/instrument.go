// Package instrument owns the service's OpenTelemetry pipeline and its slog setup.
package instrument

import (
	"cmp"
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploggrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/propagation"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

// Instrumentation hands out tracers and meters to the layers that need them.
type Instrumentation interface {
	Tracer(name string) trace.Tracer
	Meter(name string) metric.Meter
	Shutdown(ctx context.Context) error
}

// Config is read from the instrument.* keys.
type Config struct {
	Enabled        bool
	ServiceName    string
	ServiceVersion string
	Environment    string

	// OTLPEndpoint is a host:port gRPC collector; OTLPSecure switches on TLS.
	OTLPEndpoint string
	OTLPSecure   bool

	// TraceSampleRatio is clamped to [0,1] and applied to root spans only.
	TraceSampleRatio float64
	MetricsInterval  time.Duration

	// MaskFields are attribute keys whose values are replaced before a
	// record is written. Recipient addresses belong here.
	MaskFields []string
	LogLevel   string
}

const defaultMetricsInterval = time.Minute

// pipeline holds the three SDK providers. Tracer and Meter go through the
// interfaces so the same type also serves as the noop.
type pipeline struct {
	tracers  trace.TracerProvider
	meters   metric.MeterProvider
	shutdown []func(context.Context) error
}

// New installs the slog handler and, when enabled, an OTLP pipeline whose
// providers also become the otel globals (otelhttp and the propagator read them).
func New(ctx context.Context, cfg *Config) (Instrumentation, error) {
	if cfg == nil {
		return NewNoop(), nil
	}

	if !cfg.Enabled {
		initLogging(cfg.ServiceName, ParseLevel(cfg.LogLevel), nil, cfg.MaskFields)
		return NewNoop(), nil
	}

	res, err := resource.New(ctx, resource.WithAttributes(
		semconv.ServiceName(cfg.ServiceName),
		semconv.ServiceVersion(cfg.ServiceVersion),
		attribute.String("env", cfg.Environment),
	))
	if err != nil {
		return nil, err
	}

	spans, readings, records, err := exporters(ctx, cfg)
	if err != nil {
		return nil, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(min(max(cfg.TraceSampleRatio, 0), 1)))),
		sdktrace.WithBatcher(spans),
	)

	interval := cmp.Or(cfg.MetricsInterval, defaultMetricsInterval)
	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(readings, sdkmetric.WithInterval(interval))),
	)

	lp := sdklog.NewLoggerProvider(
		sdklog.WithResource(res),
		sdklog.WithProcessor(sdklog.NewBatchProcessor(records)),
	)

	initLogging(cfg.ServiceName, ParseLevel(cfg.LogLevel), lp, cfg.MaskFields)

	otel.SetTracerProvider(tp)
	otel.SetMeterProvider(mp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{}))

	return &pipeline{
		tracers:  tp,
		meters:   mp,
		shutdown: []func(context.Context) error{tp.Shutdown, mp.Shutdown, lp.Shutdown},
	}, nil
}

func exporters(ctx context.Context, cfg *Config) (*otlptrace.Exporter, *otlpmetricgrpc.Exporter, *otlploggrpc.Exporter, error) {
	traceOpts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(cfg.OTLPEndpoint)}
	metricOpts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithEndpoint(cfg.OTLPEndpoint)}
	logOpts := []otlploggrpc.Option{otlploggrpc.WithEndpoint(cfg.OTLPEndpoint)}
	if !cfg.OTLPSecure {
		traceOpts = append(traceOpts, otlptracegrpc.WithInsecure())
		metricOpts = append(metricOpts, otlpmetricgrpc.WithInsecure())
		logOpts = append(logOpts, otlploggrpc.WithInsecure())
	}

	spans, err := otlptracegrpc.New(ctx, traceOpts...)
	if err != nil {
		return nil, nil, nil, err
	}

	readings, err := otlpmetricgrpc.New(ctx, metricOpts...)
	if err != nil {
		return nil, nil, nil, errors.Join(err, spans.Shutdown(ctx))
	}

	records, err := otlploggrpc.New(ctx, logOpts...)
	if err != nil {
		return nil, nil, nil, errors.Join(err, spans.Shutdown(ctx), readings.Shutdown(ctx))
	}

	return spans, readings, records, nil
}

// NewNoop discards every span and measurement. Tests use it.
func NewNoop() Instrumentation {
	return &pipeline{
		tracers: tracenoop.NewTracerProvider(),
		meters:  metricnoop.NewMeterProvider(),
	}
}

func (p *pipeline) Tracer(name string) trace.Tracer { return p.tracers.Tracer(name) }

func (p *pipeline) Meter(name string) metric.Meter { return p.meters.Meter(name) }

// Shutdown flushes every provider and reports all failures together.
func (p *pipeline) Shutdown(ctx context.Context) error {
	var errs []error
	for _, fn := range p.shutdown {
		errs = append(errs, fn(ctx))
	}
	return errors.Join(errs...)
}
