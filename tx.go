package ygggo_upsert

import (
	"context"
	"database/sql"
	"time"

	"github.com/pkg/errors"
)

// Tx wraps *sql.Tx and shares the upsert methods with Conn.
type Tx struct {
	inner *sql.Tx
	p     *Pool
}

// Exec executes within the transaction.
func (tx *Tx) Exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	if tx == nil || tx.inner == nil {
		return nil, sql.ErrTxDone
	}
	return tx.inner.ExecContext(ctx, query, args...)
}

// WithinTx runs fn in a transaction, committing when fn returns nil and rolling
// back otherwise. Deadlocks, lock wait timeouts and read-only errors restart the
// whole transaction according to the pool's RetryPolicy, so fn must be safe to
// run more than once.
func (p *Pool) WithinTx(ctx context.Context, fn func(*Tx) error) error {
	if p == nil || p.db == nil {
		return errors.New("nil pool")
	}
	op := func() error {
		start := time.Now()
		tx, err := p.db.BeginTx(ctx, nil)
		if err != nil {
			p.logTransaction(ctx, "begin", time.Since(start), err)
			return err
		}
		err = fn(&Tx{inner: tx, p: p})
		if err == nil {
			err = tx.Commit()
			p.logTransaction(ctx, "commit", time.Since(start), err)
		} else {
			_ = tx.Rollback()
			p.logTransaction(ctx, "rollback", time.Since(start), err)
		}
		p.recordTransaction(ctx, err)
		return err
	}
	return retryWithPolicy(ctx, p.retry, op, Classify)
}
