package instrumentation

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics holds all metric instruments for the userinfo client
type Metrics struct {
	LookupsTotal          metric.Int64Counter
	LookupDuration        metric.Float64Histogram
	LookupAttempts        metric.Int64Counter
	LookupRetries         metric.Int64Counter
	InstanceParseFailures metric.Int64Counter
}

// newMetrics creates and registers all metric instruments
func newMetrics(inst *Instrumentation) (*Metrics, error) {
	meter := inst.Meter("client")
	m := &Metrics{}

	var err error
	m.LookupsTotal, err = meter.Int64Counter(
		"forceoauth.lookup.total",
		metric.WithDescription("Number of completed userinfo lookups"),
		metric.WithUnit("{lookup}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create lookup.total counter: %w", err)
	}

	m.LookupDuration, err = meter.Float64Histogram(
		"forceoauth.lookup.duration",
		metric.WithDescription("Userinfo lookup duration in milliseconds, retries included"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create lookup.duration histogram: %w", err)
	}

	m.LookupAttempts, err = meter.Int64Counter(
		"forceoauth.lookup.attempts",
		metric.WithDescription("Number of HTTP attempts made against the userinfo endpoint"),
		metric.WithUnit("{attempt}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create lookup.attempts counter: %w", err)
	}

	m.LookupRetries, err = meter.Int64Counter(
		"forceoauth.lookup.retries",
		metric.WithDescription("Number of backoff waits scheduled after a transient failure"),
		metric.WithUnit("{retry}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create lookup.retries counter: %w", err)
	}

	m.InstanceParseFailures, err = meter.Int64Counter(
		"forceoauth.instance.parse_failures",
		metric.WithDescription("Number of partner URLs the instance name could not be parsed from"),
		metric.WithUnit("{failure}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create instance.parse_failures counter: %w", err)
	}

	return m, nil
}

// RecordLookup records a finished lookup. result is "success" or an error kind.
func (m *Metrics) RecordLookup(ctx context.Context, environment, result string, attempts int, durationMs float64) {
	m.LookupsTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("environment", environment),
		attribute.String("result", result),
	))
	m.LookupDuration.Record(ctx, durationMs, metric.WithAttributes(
		attribute.String("environment", environment),
		attribute.Int("attempts", attempts),
	))
}

// RecordAttempt records one HTTP attempt. statusCode is zero for transport failures.
func (m *Metrics) RecordAttempt(ctx context.Context, environment string, statusCode int) {
	m.LookupAttempts.Add(ctx, 1, metric.WithAttributes(
		attribute.String("environment", environment),
		attribute.Int("status", statusCode),
	))
}

// RecordRetry records a scheduled backoff wait
func (m *Metrics) RecordRetry(ctx context.Context, environment string) {
	m.LookupRetries.Add(ctx, 1, metric.WithAttributes(
		attribute.String("environment", environment),
	))
}

// RecordInstanceParseFailure records a partner URL without a usable host label
func (m *Metrics) RecordInstanceParseFailure(ctx context.Context) {
	m.InstanceParseFailures.Add(ctx, 1)
}
