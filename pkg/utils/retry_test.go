package utils

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

var errTransient = errors.New("transient")
var errFatal = errors.New("fatal")

func isTransientErr(err error) bool {
	return errors.Is(err, errTransient)
}

func TestRetryTransient_FirstAttemptSucceeds(t *testing.T) {
	calls := 0
	err := RetryTransient(context.Background(), func() error {
		calls++
		return nil
	}, []int{1, 1, 1}, isTransientErr)

	assert.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestRetryTransient_FatalNotRetried(t *testing.T) {
	calls := 0
	err := RetryTransient(context.Background(), func() error {
		calls++
		return errFatal
	}, []int{1, 1, 1}, isTransientErr)

	assert.Equal(t, errFatal, err)
	assert.Equal(t, 1, calls)
}

func TestRetryTransient_RecoversAfterTransient(t *testing.T) {
	calls := 0
	err := RetryTransient(context.Background(), func() error {
		calls++
		if calls < 3 {
			return errTransient
		}
		return nil
	}, []int{1, 1, 1}, isTransientErr)

	assert.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestRetryTransient_ExhaustsSchedule(t *testing.T) {
	calls := 0
	err := RetryTransient(context.Background(), func() error {
		calls++
		return errTransient
	}, []int{1, 1, 1}, isTransientErr)

	assert.Equal(t, errTransient, err)
	// One initial attempt plus one per backoff entry.
	assert.Equal(t, 4, calls)
}

func TestRetryTransient_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	err := RetryTransient(ctx, func() error {
		calls++
		return errTransient
	}, []int{1000}, isTransientErr)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}
