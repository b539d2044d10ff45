package cache

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNetwork marks a failed round trip to a remote backend.
	ErrNetwork = errors.New("network error")

	// ErrUnknownBackend is returned by Open for an unrecognised backend name.
	ErrUnknownBackend = errors.New("unknown cache backend")
)

// transient marks an error worth another attempt.
type transient struct{ err error }

func (t *transient) Error() string { return t.err.Error() }
func (t *transient) Unwrap() error { return t.err }

// Retryable marks err as transient. Only transient errors are retried by the
// remote backends. Retryable(nil) is nil.
func Retryable(err error) error {
	if err == nil {
		return nil
	}
	return &transient{err: err}
}

// IsRetryable reports whether err was marked with Retryable.
func IsRetryable(err error) bool {
	var t *transient
	return errors.As(err, &t)
}

// backoff doubles its delay after every failed attempt.
type backoff struct {
	attempts int
	delay    time.Duration
}

// remoteBackoff is used by the redis and mongo stores; tests shorten it.
var remoteBackoff = backoff{attempts: 3, delay: 100 * time.Millisecond}

// do runs fn until it succeeds, returns a permanent error or runs out of
// attempts. The transient marker is removed from the error it returns.
func (b backoff) do(ctx context.Context, fn func() error) error {
	delay := b.delay
	for attempt := 1; ; attempt++ {
		err := fn()
		var t *transient
		if err == nil || !errors.As(err, &t) {
			return err
		}
		if attempt >= b.attempts {
			return t.err
		}
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
		delay *= 2
	}
}
