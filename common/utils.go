package common

import (
	"context"
	"errors"
	"net/url"
	"time"
)

func IsValidURL(input string) bool {
	_, err := url.ParseRequestURI(input)
	return err == nil
}

type IsRecoverableErrorFn func(err error) bool

// ExecuteWithRetry attempts to execute the provided executeFn function multiple
// times with a fixed delay between attempts. It retries up to numRetries times.
func ExecuteWithRetry(ctx context.Context,
	numRetries int, waitTime time.Duration,
	executeFn func(ctx context.Context) error,
	isRecoverableError ...IsRecoverableErrorFn,
) error {
	var lastErr error

	for count := 0; count < numRetries; count++ {
		lastErr = executeFn(ctx)
		if lastErr == nil {
			return nil
		}

		if len(isRecoverableError) > 0 && !isRecoverableError[0](lastErr) {
			return lastErr
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(waitTime):
		}
	}

	return lastErr
}

// RetryForever executes executeFn until it succeeds or ctx is done, waiting
// waitTime between attempts.
func RetryForever(ctx context.Context, waitTime time.Duration,
	executeFn func(ctx context.Context) error,
) error {
	for {
		err := executeFn(ctx)
		if err == nil {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(waitTime):
		}
	}
}

// WaitWithContext pauses for the given duration or until ctx is done,
// whichever comes first. Used for the fixed pauses between dependent
// ledger steps.
func WaitWithContext(ctx context.Context, duration time.Duration) error {
	if duration <= 0 {
		return nil
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(duration):
		return nil
	}
}

func IsContextDoneErr(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
