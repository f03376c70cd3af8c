// Package observability exports comprehension activity through
// OpenTelemetry.
//
// Metrics implements comprehension.Observer and counts, per clause level
// and binder, the candidate tuples generated and rejected, plus the
// results emitted:
//
//	m, _ := observability.NewMetrics(observability.Meter("comprehend"))
//	c, _ := expr.Compile(def, comprehension.WithObserver(m.ForDefinition(def.Name)))
//
// StartRun wraps one run in a span and records its duration and status.
// InitMeter and InitTracer install OTLP/HTTP exporters as the global
// providers.
package observability
