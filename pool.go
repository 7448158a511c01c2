package ygggo_upsert

import (
	"context"
	"database/sql"
	"log/slog"
	"os"
	"time"

	"github.com/XSAM/otelsql"
	_ "github.com/go-sql-driver/mysql"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Pool wraps *sql.DB and carries the logging, tracing, metrics and retry
// settings used by every statement run through it.
type Pool struct {
	db      *sql.DB
	retry   RetryPolicy
	maxRows int

	loggingEnabled bool
	logger         *slog.Logger
	slowThreshold  time.Duration

	telemetryEnabled bool

	metricsEnabled bool
	meterProvider  metric.MeterProvider
	metrics        *Metrics
}

// NewPool opens a pool from cfg. YGGGO_UPSERT_* environment variables
// override cfg, then the result is validated and the database pinged.
func NewPool(ctx context.Context, cfg Config) (*Pool, error) {
	applyEnv(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}
	dsn, err := dsnFromConfig(cfg)
	if err != nil {
		return nil, err
	}

	var db *sql.DB
	if cfg.Telemetry.Enabled {
		db, err = otelsql.Open(cfg.driverName(), dsn,
			otelsql.WithAttributes(attribute.String("db.system", "mysql")))
	} else {
		db, err = sql.Open(cfg.driverName(), dsn)
	}
	if err != nil {
		return nil, errors.Wrap(err, "open database")
	}
	if cfg.Pool.MaxOpen > 0 {
		db.SetMaxOpenConns(cfg.Pool.MaxOpen)
	}
	if cfg.Pool.MaxIdle > 0 {
		db.SetMaxIdleConns(cfg.Pool.MaxIdle)
	}
	if cfg.Pool.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.Pool.ConnMaxLifetime)
	}
	if cfg.Pool.ConnMaxIdleTime > 0 {
		db.SetConnMaxIdleTime(cfg.Pool.ConnMaxIdleTime)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "ping database")
	}

	p := newPool(db, cfg)
	return p, nil
}

// NewPoolFromDB wraps an already opened *sql.DB. cfg supplies everything but
// the connection settings.
func NewPoolFromDB(db *sql.DB, cfg Config) *Pool {
	return newPool(db, cfg)
}

func newPool(db *sql.DB, cfg Config) *Pool {
	p := &Pool{
		db:            db,
		retry:         cfg.Retry,
		maxRows:       cfg.maxRows(),
		slowThreshold: cfg.Logging.SlowThreshold,
	}
	if cfg.Logging.Enabled && cfg.Logging.Level != slog.LevelInfo {
		p.logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.Logging.Level}))
	}
	p.EnableLogging(cfg.Logging.Enabled)
	p.EnableTelemetry(cfg.Telemetry.Enabled)
	p.EnableMetrics(cfg.Metrics.Enabled)
	return p
}

// DB exposes the underlying *sql.DB.
func (p *Pool) DB() *sql.DB {
	if p == nil {
		return nil
	}
	return p.db
}

// Ping verifies the database is reachable.
func (p *Pool) Ping(ctx context.Context) error {
	if p == nil || p.db == nil {
		return errors.New("nil pool")
	}
	return p.db.PingContext(ctx)
}

// Close closes the underlying *sql.DB.
func (p *Pool) Close() error {
	if p == nil || p.db == nil {
		return nil
	}
	return p.db.Close()
}
