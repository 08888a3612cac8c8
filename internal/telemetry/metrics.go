// Package telemetry wires OpenTelemetry metrics and traces for the auth
// service.
package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Outcomes recorded with every operation.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// Metrics records auth operation counts, latencies and swept sessions.
type Metrics struct {
	operations metric.Int64Counter
	duration   metric.Float64Histogram
	swept      metric.Int64Counter
}

func NewMetrics(meter metric.Meter) (*Metrics, error) {
	ops, err := meter.Int64Counter("tripauth.auth.operations",
		metric.WithDescription("Number of auth operations by outcome"),
	)
	if err != nil {
		return nil, err
	}

	dur, err := meter.Float64Histogram("tripauth.auth.duration",
		metric.WithDescription("Duration of auth operations in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	swept, err := meter.Int64Counter("tripauth.sessions.swept",
		metric.WithDescription("Number of expired sessions removed by the sweeper"),
	)
	if err != nil {
		return nil, err
	}

	return &Metrics{operations: ops, duration: dur, swept: swept}, nil
}

// RecordOperation counts one call of op. kind is the failure kind, empty
// on success. A nil receiver records nothing.
func (m *Metrics) RecordOperation(ctx context.Context, op, kind string, elapsed time.Duration) {
	if m == nil {
		return
	}

	outcome := OutcomeSuccess
	if kind != "" {
		outcome = OutcomeFailure
	}
	attrs := []attribute.KeyValue{
		attribute.String("operation", op),
		attribute.String("outcome", outcome),
	}
	if kind != "" {
		attrs = append(attrs, attribute.String("kind", kind))
	}

	m.operations.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.duration.Record(ctx, elapsed.Seconds(), metric.WithAttributes(attribute.String("operation", op)))
}

// RecordSwept adds n removed sessions.
func (m *Metrics) RecordSwept(ctx context.Context, n int) {
	if m == nil || n == 0 {
		return
	}
	m.swept.Add(ctx, int64(n))
}
