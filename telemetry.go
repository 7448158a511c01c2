package ygggo_upsert

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	instrumentationName    = "github.com/yggai/ygggo_upsert"
	instrumentationVersion = "v0.1.0"
)

// TelemetryConfig holds telemetry configuration
type TelemetryConfig struct {
	// Enabled turns on library spans and opens the database through otelsql
	// so driver calls are traced too.
	Enabled bool `yaml:"enabled"`
}

// EnableTelemetry enables or disables OpenTelemetry tracing for this pool
func (p *Pool) EnableTelemetry(enabled bool) {
	if p == nil {
		return
	}
	p.telemetryEnabled = enabled
}

func tracer() trace.Tracer {
	return otel.Tracer(instrumentationName, trace.WithInstrumentationVersion(instrumentationVersion))
}

// startSpan creates a new span with common database attributes
func (p *Pool) startSpan(ctx context.Context, operation string, statement string, rows int) (context.Context, trace.Span) {
	if p == nil || !p.telemetryEnabled {
		return ctx, trace.SpanFromContext(ctx)
	}

	ctx, span := tracer().Start(ctx, fmt.Sprintf("ygggo_upsert.%s", operation), trace.WithSpanKind(trace.SpanKindClient))
	span.SetAttributes(
		attribute.String("db.system", "mysql"),
		attribute.String("db.operation", operation),
	)
	if statement != "" {
		span.SetAttributes(attribute.String("db.statement", statement))
	}
	if rows > 0 {
		span.SetAttributes(attribute.Int("db.rows", rows))
	}
	return ctx, span
}

// finishSpan completes a span with error handling
func (p *Pool) finishSpan(span trace.Span, affected int64, err error) {
	if p == nil || !p.telemetryEnabled {
		return
	}

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetAttributes(attribute.Int64("db.rows_affected", affected))
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}
