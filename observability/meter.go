package observability

import (
	"context"
	"fmt"
	"slices"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/kbukum/comprehend/comprehension"
	"github.com/kbukum/comprehend/logger"
)

// Metric names.
const (
	MetricTuplesBound    = "comprehension.tuples.bound"
	MetricTuplesRejected = "comprehension.tuples.rejected"
	MetricResultsEmitted = "comprehension.results.emitted"
	MetricRuns           = "comprehension.runs"
	MetricRunDuration    = "comprehension.run.duration"
)

// MeterConfig configures the OpenTelemetry meter provider.
type MeterConfig struct {
	ServiceName    string
	ServiceVersion string
	Environment    string
	// Endpoint is the OTLP HTTP endpoint host:port (e.g., "localhost:4318").
	Endpoint string
	Insecure bool
	// Interval is the metric export interval.
	Interval time.Duration
}

// DefaultMeterConfig returns sensible defaults for development.
func DefaultMeterConfig(serviceName string) MeterConfig {
	return MeterConfig{
		ServiceName:    serviceName,
		ServiceVersion: "dev",
		Environment:    "development",
		Endpoint:       "localhost:4318",
		Insecure:       true,
		Interval:       15 * time.Second,
	}
}

// InitMeter initializes the global OpenTelemetry meter provider.
// The caller must shut the provider down to flush pending data.
func InitMeter(ctx context.Context, config *MeterConfig) (*sdkmetric.MeterProvider, error) {
	opts := []otlpmetrichttp.Option{
		otlpmetrichttp.WithEndpoint(config.Endpoint),
	}
	if config.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}

	exporter, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating metric exporter: %w", err)
	}

	res, err := newResource(config.ServiceName, config.ServiceVersion, config.Environment)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	var readerOpts []sdkmetric.PeriodicReaderOption
	if config.Interval > 0 {
		readerOpts = append(readerOpts, sdkmetric.WithInterval(config.Interval))
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, readerOpts...)),
		sdkmetric.WithResource(res),
	)
	otel.SetMeterProvider(mp)

	logger.WithComponent("observability").Info("meter initialized", logger.Fields(
		"endpoint", config.Endpoint,
		"interval", config.Interval.String(),
	))
	return mp, nil
}

// Meter returns a named meter from the global provider.
func Meter(name string) metric.Meter {
	return otel.Meter(name)
}

// Metrics records comprehension activity. It implements
// comprehension.Observer, so it can be attached with
// comprehension.WithObserver.
type Metrics struct {
	bound    metric.Int64Counter
	rejected metric.Int64Counter
	emitted  metric.Int64Counter
	runs     metric.Int64Counter
	duration metric.Float64Histogram

	attrs []attribute.KeyValue
}

var _ comprehension.Observer = (*Metrics)(nil)

// NewMetrics creates the instruments on meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	bound, err := meter.Int64Counter(MetricTuplesBound,
		metric.WithDescription("Candidate tuples produced by a clause generator"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating %s counter: %w", MetricTuplesBound, err)
	}

	rejected, err := meter.Int64Counter(MetricTuplesRejected,
		metric.WithDescription("Candidate tuples dropped by a clause predicate"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating %s counter: %w", MetricTuplesRejected, err)
	}

	emitted, err := meter.Int64Counter(MetricResultsEmitted,
		metric.WithDescription("Results produced by the yield expression"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating %s counter: %w", MetricResultsEmitted, err)
	}

	runs, err := meter.Int64Counter(MetricRuns,
		metric.WithDescription("Completed comprehension runs by status"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating %s counter: %w", MetricRuns, err)
	}

	duration, err := meter.Float64Histogram(MetricRunDuration,
		metric.WithDescription("Duration of comprehension runs in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating %s histogram: %w", MetricRunDuration, err)
	}

	return &Metrics{
		bound:    bound,
		rejected: rejected,
		emitted:  emitted,
		runs:     runs,
		duration: duration,
	}, nil
}

// ForDefinition returns a Metrics that tags every measurement with the
// definition name. The instruments are shared with m.
func (m *Metrics) ForDefinition(name string) *Metrics {
	c := *m
	c.attrs = append(slices.Clip(m.attrs), attribute.String(AttrDefinition, name))
	return &c
}

func (m *Metrics) with(extra ...attribute.KeyValue) metric.MeasurementOption {
	return metric.WithAttributes(append(slices.Clip(m.attrs), extra...)...)
}

// Bound implements comprehension.Observer.
func (m *Metrics) Bound(ctx context.Context, level int, binder string) {
	m.bound.Add(ctx, 1, m.with(attribute.Int(AttrLevel, level), attribute.String(AttrBinder, binder)))
}

// Rejected implements comprehension.Observer.
func (m *Metrics) Rejected(ctx context.Context, level int, binder string) {
	m.rejected.Add(ctx, 1, m.with(attribute.Int(AttrLevel, level), attribute.String(AttrBinder, binder)))
}

// Emitted implements comprehension.Observer.
func (m *Metrics) Emitted(ctx context.Context) {
	m.emitted.Add(ctx, 1, m.with())
}

// RecordRun records one finished run.
func (m *Metrics) RecordRun(ctx context.Context, status string, d time.Duration) {
	m.runs.Add(ctx, 1, m.with(attribute.String(AttrStatus, status)))
	m.duration.Record(ctx, d.Seconds(), m.with())
}
