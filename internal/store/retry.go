package store

import (
	"context"
	"errors"
	"time"
)

const (
	retryAttempts = 3
	retryBaseWait = 100 * time.Millisecond
)

// WithRetry runs fn up to three times, backing off exponentially, but only
// while the failure is ErrStoreUnavailable. Any other error (and the last
// attempt's error) is returned as-is. Intended for the analytics and
// detection read paths; triage writes must call their store directly so a
// transient failure cannot replay a side effect.
func WithRetry[T any](ctx context.Context, fn func(context.Context) (T, error)) (T, error) {
	var result T
	var err error
	wait := retryBaseWait
	for attempt := 0; attempt < retryAttempts; attempt++ {
		result, err = fn(ctx)
		if err == nil || !errors.Is(err, ErrStoreUnavailable) {
			return result, err
		}
		if attempt == retryAttempts-1 {
			break
		}
		select {
		case <-time.After(wait):
		case <-ctx.Done():
			return result, ctx.Err()
		}
		wait *= 2
	}
	return result, err
}
