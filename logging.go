package ygggo_upsert

import (
	"context"
	"log/slog"
	"os"
	"time"
)

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Enabled       bool          `yaml:"enabled"`
	SlowThreshold time.Duration `yaml:"slow_threshold"`
	Level         slog.Level    `yaml:"level"`
}

var (
	defaultLogger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
)

// EnableLogging enables or disables structured logging for this pool
func (p *Pool) EnableLogging(enabled bool) {
	if p == nil {
		return
	}
	p.loggingEnabled = enabled
	if enabled && p.logger == nil {
		p.logger = defaultLogger
	}
}

// SetLogger sets a custom logger for this pool
func (p *Pool) SetLogger(logger *slog.Logger) {
	if p == nil {
		return
	}
	p.logger = logger
}

// SetSlowThreshold makes statements slower than d log at WARN. Zero disables it.
func (p *Pool) SetSlowThreshold(d time.Duration) {
	if p == nil {
		return
	}
	p.slowThreshold = d
}

// logStatement logs one executed upsert statement. Bound values are never
// logged, only their count.
func (p *Pool) logStatement(ctx context.Context, kind Kind, stmt Statement, rows int, affected int64, duration time.Duration, err error) {
	if p == nil || !p.loggingEnabled || p.logger == nil {
		return
	}

	attrs := []slog.Attr{
		slog.String("operation", kind.String()),
		slog.String("statement", stmt.SQL),
		slog.Int("rows", rows),
		slog.Int("arg_count", len(stmt.Params)),
		slog.Float64("duration_ms", float64(duration.Nanoseconds())/1e6),
	}

	if err != nil {
		attrs = append(attrs,
			slog.String("status", "error"),
			slog.String("error", err.Error()),
		)
		if code := mysqlErrorCode(err); code != 0 {
			attrs = append(attrs, slog.Int("error_code", int(code)))
		}
	} else {
		attrs = append(attrs,
			slog.String("status", "success"),
			slog.Int64("rows_affected", affected),
		)
	}

	switch {
	case p.slowThreshold > 0 && duration > p.slowThreshold:
		p.logger.LogAttrs(ctx, slog.LevelWarn, "slow statement detected", attrs...)
	case err != nil:
		p.logger.LogAttrs(ctx, slog.LevelError, "upsert statement failed", attrs...)
	default:
		p.logger.LogAttrs(ctx, slog.LevelInfo, "upsert statement executed", attrs...)
	}
}

// logTransaction logs database transaction events
func (p *Pool) logTransaction(ctx context.Context, event string, duration time.Duration, err error) {
	if p == nil || !p.loggingEnabled || p.logger == nil {
		return
	}

	attrs := []slog.Attr{
		slog.String("event", event),
		slog.Float64("duration_ms", float64(duration.Nanoseconds())/1e6),
	}

	if err != nil {
		attrs = append(attrs,
			slog.String("status", "error"),
			slog.String("error", err.Error()),
		)
		p.logger.LogAttrs(ctx, slog.LevelError, "database transaction event", attrs...)
		return
	}
	attrs = append(attrs, slog.String("status", "success"))
	p.logger.LogAttrs(ctx, slog.LevelDebug, "database transaction event", attrs...)
}
