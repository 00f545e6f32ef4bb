package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
)

var errPending = errors.New("condition not met yet")

// poll re-runs probe with exponential backoff until it reports true or
// timeout elapses. A timeout is reported as (false, nil); only context
// cancellation is an error. Probe errors are treated as transient because the
// page is often mid-navigation while we look at it.
func poll(ctx context.Context, interval, timeout time.Duration, probe func(context.Context) (bool, error)) (bool, error) {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = interval
	b.RandomizationFactor = 0.2
	b.Multiplier = 1.5
	b.MaxInterval = 2 * time.Second
	b.MaxElapsedTime = timeout
	b.Reset()

	deadline, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	err := backoff.Retry(func() error {
		ok, err := probe(deadline)
		if err != nil {
			if ctx.Err() != nil {
				return backoff.Permanent(ctx.Err())
			}
			slog.Debug("Probe failed, retrying.", "error", err)
			return err
		}
		if !ok {
			return errPending
		}
		return nil
	}, backoff.WithContext(b, deadline))

	if err == nil {
		return true, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return false, ctxErr
	}
	return false, nil
}

// pause sleeps for d unless ctx is cancelled first.
func pause(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
