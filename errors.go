package ygggo_upsert

import (
	mysql "github.com/go-sql-driver/mysql"
	"github.com/pkg/errors"
)

var (
	// ErrEmptyInput is returned when a batch has no rows or a row has no columns.
	ErrEmptyInput = errors.New("empty input")
	// ErrInvalidShape is returned when a value that should be a row is not one.
	ErrInvalidShape = errors.New("invalid row shape")
)

// ErrorClass groups execution errors by how a caller should react to them.
type ErrorClass int

const (
	ErrClassUnknown ErrorClass = iota
	ErrClassRetryable
	ErrClassConflict
	ErrClassReadonly
	ErrClassConstraint
)

func (c ErrorClass) String() string {
	switch c {
	case ErrClassRetryable:
		return "retryable"
	case ErrClassConflict:
		return "conflict"
	case ErrClassReadonly:
		return "readonly"
	case ErrClassConstraint:
		return "constraint"
	default:
		return "unknown"
	}
}

// Classify maps a MySQL server error to an ErrorClass. Anything that is not a
// *mysql.MySQLError is ErrClassUnknown.
func Classify(err error) ErrorClass {
	var me *mysql.MySQLError
	if !errors.As(err, &me) {
		return ErrClassUnknown
	}
	switch me.Number {
	case 1213, 1205: // ER_LOCK_DEADLOCK, ER_LOCK_WAIT_TIMEOUT
		return ErrClassRetryable
	case 1290: // ER_OPTION_PREVENTS_STATEMENT (read-only)
		return ErrClassReadonly
	case 1062, 1022: // ER_DUP_ENTRY, ER_DUP_KEY
		return ErrClassConflict
	case 1048, 1451, 1452, 3819:
		return ErrClassConstraint
	}
	return ErrClassUnknown
}

// isRetryableClass reports whether a failure of class c is worth running again:
// deadlocks and lock wait timeouts, or a read-only node during failover.
func isRetryableClass(c ErrorClass) bool {
	switch c {
	case ErrClassRetryable, ErrClassReadonly:
		return true
	}
	return false
}

// mysqlErrorCode returns the server error number, or 0.
func mysqlErrorCode(err error) uint16 {
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		return me.Number
	}
	return 0
}
