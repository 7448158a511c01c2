package ygggo_upsert

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// RetryPolicy controls how WithinTx retries deadlocks, lock wait timeouts and
// read-only failovers.
type RetryPolicy struct {
	MaxAttempts int           `yaml:"max_attempts"`
	BaseBackoff time.Duration `yaml:"base_backoff"`
	MaxBackoff  time.Duration `yaml:"max_backoff"`
	Jitter      bool          `yaml:"jitter"`
	MaxElapsed  time.Duration `yaml:"max_elapsed"`
}

func (pol RetryPolicy) backOff() backoff.BackOff {
	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = pol.BaseBackoff
	if eb.InitialInterval <= 0 {
		eb.InitialInterval = 10 * time.Millisecond
	}
	eb.MaxInterval = pol.MaxBackoff
	if eb.MaxInterval < eb.InitialInterval {
		eb.MaxInterval = eb.InitialInterval
	}
	eb.MaxElapsedTime = pol.MaxElapsed
	if !pol.Jitter {
		eb.RandomizationFactor = 0
	}
	eb.Reset()
	attempts := pol.MaxAttempts
	if attempts <= 0 {
		attempts = 1
	}
	return backoff.WithMaxRetries(eb, uint64(attempts-1))
}

// retryWithPolicy retries op while classify reports a retryable or read-only
// error. Any other error is returned at once.
func retryWithPolicy(ctx context.Context, pol RetryPolicy, op func() error, classify func(error) ErrorClass) error {
	wrapped := func() error {
		err := op()
		if err == nil {
			return nil
		}
		if isRetryableClass(classify(err)) {
			return err
		}
		return backoff.Permanent(err)
	}
	return backoff.Retry(wrapped, backoff.WithContext(pol.backOff(), ctx))
}
