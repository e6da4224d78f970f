package annotate

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetryWithBackoff(t *testing.T) {
	tests := []struct {
		name         string
		failures     int
		maxAttempts  int
		wantErr      bool
		wantAttempts int
	}{
		{name: "first try", failures: 0, maxAttempts: 3, wantAttempts: 1},
		{name: "eventual success", failures: 2, maxAttempts: 3, wantAttempts: 3},
		{name: "all attempts fail", failures: 10, maxAttempts: 3, wantErr: true, wantAttempts: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			attempts := 0
			errTransport := errors.New("connection refused")
			err := RetryWithBackoff(context.Background(), func() error {
				attempts++
				if attempts <= tt.failures {
					return errTransport
				}
				return nil
			}, tt.maxAttempts, time.Millisecond)

			if tt.wantErr {
				assert.ErrorIs(t, err, errTransport)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.wantAttempts, attempts)
		})
	}
}

func TestRetryWithBackoff_InvalidMaxAttempts(t *testing.T) {
	for _, n := range []int{0, -1} {
		attempts := 0
		err := RetryWithBackoff(context.Background(), func() error {
			attempts++
			return nil
		}, n, time.Millisecond)
		assert.ErrorIs(t, err, ErrInvalidMaxAttempts)
		assert.Zero(t, attempts)
	}
}

func TestRetryWithBackoff_ContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	attempts := 0

	err := RetryWithBackoff(ctx, func() error {
		attempts++
		if attempts == 2 {
			cancel()
		}
		return errors.New("error")
	}, 10, time.Millisecond)

	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 2, attempts)
}

func TestRetryWithBackoff_Permanent(t *testing.T) {
	errRejected := errors.New("unknown model")
	attempts := 0

	err := RetryWithBackoff(context.Background(), func() error {
		attempts++
		return Permanent(errRejected)
	}, 5, time.Millisecond)

	assert.Equal(t, errRejected, err, "marker removed")
	assert.Equal(t, 1, attempts)
	assert.NoError(t, Permanent(nil))
}

func TestRetryWithBackoff_ContextErrorFromOperation(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{name: "canceled", err: context.Canceled},
		{name: "deadline", err: fmt.Errorf("post chat completion: %w", context.DeadlineExceeded)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			attempts := 0
			err := RetryWithBackoff(context.Background(), func() error {
				attempts++
				return tt.err
			}, 5, time.Millisecond)

			assert.ErrorIs(t, err, tt.err)
			assert.Equal(t, 1, attempts, "request timeouts are not retried")
		})
	}
}
