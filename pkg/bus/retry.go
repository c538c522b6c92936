package bus

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"time"

	"github.com/cenkalti/backoff/v5"
)

// DefaultRetryInterval is the pause between readiness attempts.
const DefaultRetryInterval = time.Second

var errEmptyAnswer = errors.New("empty answer")

// RetryPolicy controls CallUntilReady. The zero value retries forever at a
// fixed DefaultRetryInterval with DefaultCallTimeout per attempt.
type RetryPolicy struct {
	// Timeout bounds each attempt.
	Timeout time.Duration
	// Interval is the pause after an empty attempt.
	Interval time.Duration
	// MaxAttempts stops the loop with ErrNotReady; 0 means unbounded.
	MaxAttempts uint
	// Multiplier above 1 grows the pause exponentially up to MaxInterval.
	Multiplier float64
	// MaxInterval caps the pause when Multiplier is set.
	MaxInterval time.Duration
}

// DefaultRetryPolicy returns the fixed-interval, unbounded policy.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{Timeout: DefaultCallTimeout, Interval: DefaultRetryInterval}
}

func (p RetryPolicy) backOff() backoff.BackOff {
	interval := p.Interval
	if interval <= 0 {
		interval = DefaultRetryInterval
	}

	if p.Multiplier <= 1 {
		return backoff.NewConstantBackOff(interval)
	}

	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = interval
	exp.Multiplier = p.Multiplier
	exp.RandomizationFactor = 0
	exp.MaxInterval = p.MaxInterval
	if exp.MaxInterval < interval {
		exp.MaxInterval = interval
	}
	return exp
}

// CallUntilReady repeats a timed Call on name until it yields a non-empty
// answer. Empty means no answer in time, a failed call, or a zero value.
//
// Only use it when the receiver is certain to mount eventually: with the
// default policy it waits for as long as ctx allows.
func CallUntilReady[T any](ctx context.Context, b *Bus, name Name, data any, policy RetryPolicy) (T, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	var zero T
	attempts := 0
	operation := func() (T, error) {
		attempts++
		value, ok := WithTimeout(Call[T](ctx, b, name, data), policy.Timeout)
		if !ok || isEmpty(value) {
			return zero, errEmptyAnswer
		}
		return value, nil
	}

	opts := []backoff.RetryOption{
		backoff.WithBackOff(policy.backOff()),
		backoff.WithMaxElapsedTime(0),
		backoff.WithNotify(func(_ error, next time.Duration) {
			b.log.Debug("Receiver not ready", "name", name, "attempt", attempts, "retry_in", next)
		}),
	}
	if policy.MaxAttempts > 0 {
		opts = append(opts, backoff.WithMaxTries(policy.MaxAttempts))
	}

	value, err := backoff.Retry(ctx, operation, opts...)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return zero, ctxErr
		}
		return zero, fmt.Errorf("%w: %s after %d attempts", ErrNotReady, name, attempts)
	}

	return value, nil
}

func isEmpty[T any](value T) bool {
	rv := reflect.ValueOf(any(value))
	return !rv.IsValid() || rv.IsZero()
}
