package ygggo_upsert

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"
)

// Conn wraps a single connection obtained from *sql.DB
// It must be closed to return the connection back to the pool.
type Conn struct {
	inner *sql.Conn
	p     *Pool
}

// WithConn acquires a connection, calls fn, and always returns the connection.
func (p *Pool) WithConn(ctx context.Context, fn func(*Conn) error) error {
	conn, err := p.Acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()
	return fn(conn)
}

// Acquire gets a connection from the underlying *sql.DB honoring context.
func (p *Pool) Acquire(ctx context.Context) (*Conn, error) {
	if p == nil || p.db == nil {
		return nil, errors.New("nil pool")
	}
	c, err := p.db.Conn(ctx)
	if err != nil {
		return nil, err
	}
	p.recordConnectionAcquired(ctx)
	return &Conn{inner: c, p: p}, nil
}

// Close returns the connection to the pool.
func (c *Conn) Close() error {
	if c == nil || c.inner == nil {
		return nil
	}
	c.p.recordConnectionReleased(context.Background())
	err := c.inner.Close()
	c.inner = nil
	return err
}

// Exec executes a statement using the underlying connection.
func (c *Conn) Exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	if c == nil || c.inner == nil {
		return nil, sql.ErrConnDone
	}
	return c.inner.ExecContext(ctx, query, args...)
}
