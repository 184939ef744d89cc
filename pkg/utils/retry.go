package utils

import (
	"context"
	"time"
)

// RetryTransient runs fn, retrying only failures isTransient accepts, with
// one delay from the backoff schedule before each retry. Fatal failures
// propagate immediately; after the schedule is exhausted the last error is
// returned.
func RetryTransient(ctx context.Context, fn func() error, backoffMs []int, isTransient func(error) bool) error {
	err := fn()
	if err == nil || !isTransient(err) {
		return err
	}

	for _, delayMs := range backoffMs {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(delayMs) * time.Millisecond):
		}

		err = fn()
		if err == nil || !isTransient(err) {
			return err
		}
	}
	return err
}
