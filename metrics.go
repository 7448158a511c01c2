package ygggo_upsert

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	metricsInstrumentationName = "github.com/yggai/ygggo_upsert"
)

// MetricsConfig holds metrics configuration
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

// Metrics holds all the metric instruments
type Metrics struct {
	// Connection metrics
	connectionsActive metric.Int64UpDownCounter

	// Statement metrics
	statementsTotal   metric.Int64Counter
	rowsSubmitted     metric.Int64Counter
	rowsAffected      metric.Int64Counter
	statementDuration metric.Float64Histogram

	// Transaction metrics
	transactionsTotal metric.Int64Counter
}

// EnableMetrics enables or disables metrics collection for this pool
func (p *Pool) EnableMetrics(enabled bool) {
	if p == nil {
		return
	}
	p.metricsEnabled = enabled
	if enabled && p.metrics == nil {
		p.initMetrics()
	}
}

// SetMeterProvider sets a custom meter provider for metrics
func (p *Pool) SetMeterProvider(provider metric.MeterProvider) {
	if p == nil {
		return
	}
	p.meterProvider = provider
	if p.metricsEnabled {
		p.initMetrics()
	}
}

// initMetrics initializes all metric instruments
func (p *Pool) initMetrics() {
	if p == nil {
		return
	}

	var meter metric.Meter
	if p.meterProvider != nil {
		meter = p.meterProvider.Meter(metricsInstrumentationName)
	} else {
		meter = otel.Meter(metricsInstrumentationName)
	}

	p.metrics = &Metrics{}

	p.metrics.connectionsActive, _ = meter.Int64UpDownCounter(
		"ygggo_upsert_connections_active",
		metric.WithDescription("Number of connections currently held by callers"),
	)

	p.metrics.statementsTotal, _ = meter.Int64Counter(
		"ygggo_upsert_statements_total",
		metric.WithDescription("Total number of upsert statements executed"),
	)

	p.metrics.rowsSubmitted, _ = meter.Int64Counter(
		"ygggo_upsert_rows_submitted_total",
		metric.WithDescription("Total number of rows sent in upsert statements"),
	)

	p.metrics.rowsAffected, _ = meter.Int64Counter(
		"ygggo_upsert_rows_affected_total",
		metric.WithDescription("Total affected-row count reported by the server"),
	)

	p.metrics.statementDuration, _ = meter.Float64Histogram(
		"ygggo_upsert_statement_duration_seconds",
		metric.WithDescription("Duration of upsert statements"),
		metric.WithUnit("s"),
	)

	p.metrics.transactionsTotal, _ = meter.Int64Counter(
		"ygggo_upsert_transactions_total",
		metric.WithDescription("Total number of database transactions"),
	)
}

func (p *Pool) metricsOn() bool {
	return p != nil && p.metricsEnabled && p.metrics != nil
}

// recordConnectionAcquired records when a connection is acquired
func (p *Pool) recordConnectionAcquired(ctx context.Context) {
	if !p.metricsOn() {
		return
	}
	p.metrics.connectionsActive.Add(ctx, 1)
}

// recordConnectionReleased records when a connection goes back to the pool
func (p *Pool) recordConnectionReleased(ctx context.Context) {
	if !p.metricsOn() {
		return
	}
	p.metrics.connectionsActive.Add(ctx, -1)
}

// recordStatement records one executed upsert statement
func (p *Pool) recordStatement(ctx context.Context, kind Kind, rows int, affected int64, duration time.Duration, err error) {
	if !p.metricsOn() {
		return
	}

	status := "success"
	if err != nil {
		status = "error"
	}
	attrs := metric.WithAttributes(
		attribute.String("operation", kind.String()),
		attribute.String("status", status),
	)

	p.metrics.statementsTotal.Add(ctx, 1, attrs)
	p.metrics.rowsSubmitted.Add(ctx, int64(rows), attrs)
	if err == nil {
		p.metrics.rowsAffected.Add(ctx, affected, attrs)
	}
	p.metrics.statementDuration.Record(ctx, duration.Seconds(), attrs)
}

// recordTransaction records a finished transaction
func (p *Pool) recordTransaction(ctx context.Context, err error) {
	if !p.metricsOn() {
		return
	}
	status := "commit"
	if err != nil {
		status = "rollback"
	}
	p.metrics.transactionsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("status", status)))
}
