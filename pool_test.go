package ygggo_upsert

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPool_AppliesPoolSettings(t *testing.T) {
	const dsn = "pool_settings_dsn"
	db, mock, err := sqlmock.NewWithDSN(dsn, sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer db.Close()
	mock.ExpectPing()

	p, err := NewPool(context.Background(), Config{
		Driver: "sqlmock",
		DSN:    dsn,
		Pool: PoolConfig{
			MaxOpen:         5,
			MaxIdle:         2,
			ConnMaxLifetime: time.Minute,
			ConnMaxIdleTime: 30 * time.Second,
		},
		MaxRowsPerStatement: 42,
		Logging:             LoggingConfig{Enabled: true, SlowThreshold: time.Second},
		Metrics:             MetricsConfig{Enabled: true},
	})
	require.NoError(t, err)
	defer p.Close()

	assert.Equal(t, 5, p.DB().Stats().MaxOpenConnections)
	assert.Equal(t, 42, p.maxRows)
	assert.True(t, p.loggingEnabled)
	assert.NotNil(t, p.logger)
	assert.Equal(t, time.Second, p.slowThreshold)
	assert.True(t, p.metricsEnabled)
	assert.NotNil(t, p.metrics)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestNewPool_PingFailure(t *testing.T) {
	const dsn = "ping_failure_dsn"
	db, mock, err := sqlmock.NewWithDSN(dsn, sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer db.Close()
	mock.ExpectPing().WillReturnError(errors.New("connection refused"))

	_, err = NewPool(context.Background(), Config{Driver: "sqlmock", DSN: dsn})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ping database")
}

func TestNewPool_InvalidConfig(t *testing.T) {
	_, err := NewPool(context.Background(), Config{Driver: "sqlmock", Port: -1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid config")
}

func TestNewPool_TelemetryOpensThroughOtelsql(t *testing.T) {
	const dsn = "otelsql_dsn"
	db, mock, err := sqlmock.NewWithDSN(dsn, sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer db.Close()
	mock.ExpectPing()

	p, err := NewPool(context.Background(), Config{
		Driver:    "sqlmock",
		DSN:       dsn,
		Telemetry: TelemetryConfig{Enabled: true},
	})
	require.NoError(t, err)
	defer p.Close()

	assert.True(t, p.telemetryEnabled)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestNewPoolFromDB(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer db.Close()
	mock.ExpectPing()

	p := NewPoolFromDB(db, Config{Retry: RetryPolicy{MaxAttempts: 3}})
	assert.Same(t, db, p.DB())
	assert.Equal(t, 3, p.retry.MaxAttempts)
	assert.Equal(t, DefaultMaxRowsPerStatement, p.maxRows)
	require.NoError(t, p.Ping(context.Background()))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestWithConn_ReturnsConnection(t *testing.T) {
	p, _ := newMockPool(t)
	ctx := context.Background()

	var held *Conn
	require.NoError(t, p.WithConn(ctx, func(c *Conn) error {
		held = c
		return nil
	}))
	// closed by WithConn
	_, err := held.Exec(ctx, "SELECT 1")
	assert.Error(t, err)
	assert.NoError(t, held.Close())
	assert.Equal(t, 0, p.DB().Stats().InUse)
}

func TestVersion(t *testing.T) {
	assert.NotEmpty(t, Version())
}
