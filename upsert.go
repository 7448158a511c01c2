package ygggo_upsert

import (
	"context"
	"database/sql"
	"time"
)

// Executor runs a statement. *sql.DB, *sql.Conn and *sql.Tx all satisfy it.
type Executor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// Upserter is implemented by Pool, Conn and Tx.
//
// The returned count is the server's affected-row count, passed through as is:
// ON DUPLICATE KEY UPDATE counts 1 per inserted and 2 per updated row,
// INSERT IGNORE counts 1 per inserted row, REPLACE counts 1 per inserted row
// plus 1 per deleted duplicate.
type Upserter interface {
	Upsert(ctx context.Context, kind Kind, table string, in Input, update ...UpdateColumn) (int64, error)
	InsertOnDuplicate(ctx context.Context, table string, in Input, update ...UpdateColumn) (int64, error)
	InsertIgnore(ctx context.Context, table string, in Input) (int64, error)
	Replace(ctx context.Context, table string, in Input) (int64, error)
}

var (
	_ Upserter = (*Pool)(nil)
	_ Upserter = (*Conn)(nil)
	_ Upserter = (*Tx)(nil)
)

// ExecUpsert builds and runs one statement on ex without any pool-level
// logging, tracing or metrics.
func ExecUpsert(ctx context.Context, ex Executor, kind Kind, table string, in Input, update ...UpdateColumn) (int64, error) {
	var p *Pool
	return p.exec(ctx, ex, kind, table, in, update)
}

func (p *Pool) exec(ctx context.Context, ex Executor, kind Kind, table string, in Input, update []UpdateColumn) (int64, error) {
	stmt, err := Builder{Kind: kind}.Build(table, in, update...)
	if err != nil {
		return 0, err
	}
	rows := in.Len()

	spanCtx, span := p.startSpan(ctx, kind.String(), stmt.SQL, rows)
	start := time.Now()
	var affected int64
	res, err := ex.ExecContext(spanCtx, stmt.SQL, stmt.Args()...)
	if err == nil {
		affected, err = res.RowsAffected()
	}
	duration := time.Since(start)
	p.finishSpan(span, affected, err)

	p.logStatement(ctx, kind, stmt, rows, affected, duration, err)
	p.recordStatement(ctx, kind, rows, affected, duration, err)
	return affected, err
}

// Upsert runs a statement of the given kind directly on the pool.
func (p *Pool) Upsert(ctx context.Context, kind Kind, table string, in Input, update ...UpdateColumn) (int64, error) {
	if p == nil || p.db == nil {
		return 0, sql.ErrConnDone
	}
	return p.exec(ctx, p.db, kind, table, in, update)
}

// InsertOnDuplicate runs INSERT ... ON DUPLICATE KEY UPDATE on the pool.
func (p *Pool) InsertOnDuplicate(ctx context.Context, table string, in Input, update ...UpdateColumn) (int64, error) {
	return p.Upsert(ctx, KindOnDuplicate, table, in, update...)
}

// InsertIgnore runs INSERT IGNORE on the pool.
func (p *Pool) InsertIgnore(ctx context.Context, table string, in Input) (int64, error) {
	return p.Upsert(ctx, KindIgnore, table, in)
}

// Replace runs REPLACE INTO on the pool.
func (p *Pool) Replace(ctx context.Context, table string, in Input) (int64, error) {
	return p.Upsert(ctx, KindReplace, table, in)
}

// UpsertChunked splits in into statements of at most the configured
// MaxRowsPerStatement rows, fewer when the rows are wide enough to pass
// MaxPlaceholders, and runs them in one transaction. The result is the
// sum of the affected-row counts of all chunks.
func (p *Pool) UpsertChunked(ctx context.Context, kind Kind, table string, in Input, update ...UpdateColumn) (int64, error) {
	if p == nil || p.db == nil {
		return 0, sql.ErrConnDone
	}
	chunks := Chunk(in, chunkSize(p.maxRows, in))
	// validate every chunk before opening a transaction
	for _, c := range chunks {
		if _, err := (Builder{Kind: kind}).Build(table, c, update...); err != nil {
			return 0, err
		}
	}
	var total int64
	err := p.WithinTx(ctx, func(tx *Tx) error {
		total = 0
		for _, c := range chunks {
			n, err := tx.Upsert(ctx, kind, table, c, update...)
			if err != nil {
				return err
			}
			total += n
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return total, nil
}

// Upsert runs a statement of the given kind on the connection.
func (c *Conn) Upsert(ctx context.Context, kind Kind, table string, in Input, update ...UpdateColumn) (int64, error) {
	if c == nil || c.inner == nil {
		return 0, sql.ErrConnDone
	}
	return c.p.exec(ctx, c.inner, kind, table, in, update)
}

// InsertOnDuplicate runs INSERT ... ON DUPLICATE KEY UPDATE on the connection.
func (c *Conn) InsertOnDuplicate(ctx context.Context, table string, in Input, update ...UpdateColumn) (int64, error) {
	return c.Upsert(ctx, KindOnDuplicate, table, in, update...)
}

// InsertIgnore runs INSERT IGNORE on the connection.
func (c *Conn) InsertIgnore(ctx context.Context, table string, in Input) (int64, error) {
	return c.Upsert(ctx, KindIgnore, table, in)
}

// Replace runs REPLACE INTO on the connection.
func (c *Conn) Replace(ctx context.Context, table string, in Input) (int64, error) {
	return c.Upsert(ctx, KindReplace, table, in)
}

// Upsert runs a statement of the given kind inside the transaction.
func (tx *Tx) Upsert(ctx context.Context, kind Kind, table string, in Input, update ...UpdateColumn) (int64, error) {
	if tx == nil || tx.inner == nil {
		return 0, sql.ErrTxDone
	}
	return tx.p.exec(ctx, tx.inner, kind, table, in, update)
}

// InsertOnDuplicate runs INSERT ... ON DUPLICATE KEY UPDATE inside the transaction.
func (tx *Tx) InsertOnDuplicate(ctx context.Context, table string, in Input, update ...UpdateColumn) (int64, error) {
	return tx.Upsert(ctx, KindOnDuplicate, table, in, update...)
}

// InsertIgnore runs INSERT IGNORE inside the transaction.
func (tx *Tx) InsertIgnore(ctx context.Context, table string, in Input) (int64, error) {
	return tx.Upsert(ctx, KindIgnore, table, in)
}

// Replace runs REPLACE INTO inside the transaction.
func (tx *Tx) Replace(ctx context.Context, table string, in Input) (int64, error) {
	return tx.Upsert(ctx, KindReplace, table, in)
}
