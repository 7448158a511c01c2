package ygggo_upsert

import (
	"context"
	"errors"
	"testing"
	"time"

	mysql "github.com/go-sql-driver/mysql"
)

var errRetry = errors.New("retryable")
var errNonRetry = errors.New("non-retryable")

func classifyForTest(err error) ErrorClass {
	if errors.Is(err, errRetry) {
		return ErrClassRetryable
	}
	return ErrClassUnknown
}

func TestRetry_SucceedsAfterRetries(t *testing.T) {
	ctx := context.Background()
	pol := RetryPolicy{MaxAttempts: 3, BaseBackoff: time.Millisecond, MaxBackoff: 2 * time.Millisecond, MaxElapsed: time.Second}
	calls := 0
	op := func() error {
		calls++
		if calls < 3 {
			return errRetry
		}
		return nil
	}
	if err := retryWithPolicy(ctx, pol, op, classifyForTest); err != nil {
		t.Fatalf("retryWithPolicy err: %v", err)
	}
	if calls != 3 {
		t.Fatalf("calls=%d want 3", calls)
	}
}

func TestRetry_StopsOnNonRetryable(t *testing.T) {
	ctx := context.Background()
	pol := RetryPolicy{MaxAttempts: 5, BaseBackoff: time.Millisecond, MaxBackoff: 2 * time.Millisecond}
	calls := 0
	op := func() error { calls++; return errNonRetry }
	if err := retryWithPolicy(ctx, pol, op, classifyForTest); !errors.Is(err, errNonRetry) {
		t.Fatalf("expected non-retryable returned, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("calls=%d want 1", calls)
	}
}

func TestRetry_GivesUpAfterMaxAttempts(t *testing.T) {
	ctx := context.Background()
	pol := RetryPolicy{MaxAttempts: 3, BaseBackoff: time.Millisecond}
	calls := 0
	op := func() error { calls++; return errRetry }
	if err := retryWithPolicy(ctx, pol, op, classifyForTest); !errors.Is(err, errRetry) {
		t.Fatalf("expected last retryable error, got %v", err)
	}
	if calls != 3 {
		t.Fatalf("calls=%d want 3", calls)
	}
}

func TestRetry_RespectsMaxElapsed(t *testing.T) {
	ctx := context.Background()
	pol := RetryPolicy{MaxAttempts: 100, BaseBackoff: 2 * time.Millisecond, MaxBackoff: 5 * time.Millisecond, MaxElapsed: 5 * time.Millisecond}
	calls := 0
	op := func() error { calls++; return errRetry }
	if err := retryWithPolicy(ctx, pol, op, classifyForTest); err == nil {
		t.Fatalf("expected error due to elapsed")
	}
	if calls < 1 || calls >= pol.MaxAttempts {
		t.Fatalf("calls=%d out of expected range", calls)
	}
}

func TestRetry_ZeroPolicyRunsOnce(t *testing.T) {
	calls := 0
	op := func() error { calls++; return errRetry }
	if err := retryWithPolicy(context.Background(), RetryPolicy{}, op, classifyForTest); !errors.Is(err, errRetry) {
		t.Fatalf("expected errRetry, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("calls=%d want 1", calls)
	}
}

func TestRetry_ReadonlyFailoverWithClassify(t *testing.T) {
	ctx := context.Background()
	pol := RetryPolicy{MaxAttempts: 3, BaseBackoff: time.Millisecond}
	calls := 0
	op := func() error {
		calls++
		if calls == 1 {
			return &mysql.MySQLError{Number: 1290, Message: "read-only"}
		}
		if calls == 2 {
			return &mysql.MySQLError{Number: 1062, Message: "duplicate"}
		}
		return nil
	}
	err := retryWithPolicy(ctx, pol, op, Classify)
	var me *mysql.MySQLError
	if !errors.As(err, &me) || me.Number != 1062 {
		t.Fatalf("expected duplicate error returned as is, got %v", err)
	}
	if calls != 2 {
		t.Fatalf("calls=%d want 2", calls)
	}
}
