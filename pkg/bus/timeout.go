package bus

import (
	"context"
	"time"
)

// DefaultCallTimeout bounds UI-facing calls when no timeout is configured.
const DefaultCallTimeout = 300 * time.Millisecond

// WithTimeout races f against a deadline of d. It returns the future's value
// and true when the future resolves first. A rejected future and an expired
// deadline both come back as the zero value and false, after being logged;
// "no answer" is a normal condition for callers, not an error.
//
// On expiry the request is cancelled so its listener does not outlive the
// caller's interest in the answer.
func WithTimeout[T any](f *Future[T], d time.Duration) (T, bool) {
	var zero T
	if d <= 0 {
		d = DefaultCallTimeout
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-f.Done():
		value, err := f.result()
		if err != nil {
			f.log.Warn("Call failed", "name", f.name, "request_id", f.id, "error", err)
			return zero, false
		}
		return value, true
	case <-timer.C:
		f.Cancel()
		f.log.Debug("Timed out", "name", f.name, "request_id", f.id, "timeout", d)
		return zero, false
	}
}

// Transition waits for f and for at least d to pass before returning, so
// short-lived loading states stay on screen long enough to be seen. Errors
// from f are returned unchanged.
func Transition[T any](ctx context.Context, f *Future[T], d time.Duration) (T, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	value, err := f.Await(ctx)
	select {
	case <-timer.C:
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}

	return value, err
}
