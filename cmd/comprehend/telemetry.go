package main

import (
	"context"
	"time"

	"github.com/kbukum/comprehend/logger"
	"github.com/kbukum/comprehend/observability"
	"github.com/kbukum/comprehend/version"
)

const shutdownTimeout = 5 * time.Second

// telemetry holds the providers started for one command.
type telemetry struct {
	metrics *observability.Metrics
	closers []func(context.Context) error
	log     *logger.Logger
}

// startTelemetry installs the OTLP exporters enabled in config. With both
// disabled it returns an empty telemetry and the global no-op providers
// stay in place.
func (a *app) startTelemetry(ctx context.Context) (*telemetry, error) {
	t := &telemetry{log: a.log.WithComponent("telemetry")}
	info := version.Get()

	if tc := a.cfg.Tracing; tc.Enabled {
		tp, err := observability.InitTracer(ctx, &observability.TracerConfig{
			ServiceName:    a.cfg.Name,
			ServiceVersion: info.Short(),
			Environment:    a.cfg.Environment,
			Endpoint:       tc.Endpoint,
			Insecure:       tc.Insecure,
			SampleRate:     tc.SampleRate,
		})
		if err != nil {
			return nil, err
		}
		t.closers = append(t.closers, tp.Shutdown)
	}

	if mc := a.cfg.Metrics; mc.Enabled {
		mp, err := observability.InitMeter(ctx, &observability.MeterConfig{
			ServiceName:    a.cfg.Name,
			ServiceVersion: info.Short(),
			Environment:    a.cfg.Environment,
			Endpoint:       mc.Endpoint,
			Insecure:       mc.Insecure,
			Interval:       mc.Interval,
		})
		if err != nil {
			t.shutdown()
			return nil, err
		}
		t.closers = append(t.closers, mp.Shutdown)

		m, err := observability.NewMetrics(observability.Meter(a.cfg.Name))
		if err != nil {
			t.shutdown()
			return nil, err
		}
		t.metrics = m
	}
	return t, nil
}

// shutdown flushes and stops the providers, newest first.
func (t *telemetry) shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	for i := len(t.closers) - 1; i >= 0; i-- {
		if err := t.closers[i](ctx); err != nil {
			t.log.Warn("telemetry shutdown failed", logger.ErrorFields("shutdown", err))
		}
	}
	t.closers = nil
}
