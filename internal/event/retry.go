package event

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"time"
)

// RetryPolicy bounds how often a webhook delivery is reattempted.
type RetryPolicy struct {
	MaxRetries     int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	JitterFraction float64
}

// DefaultRetryPolicy is used for webhooks configured with retries > 0.
func DefaultRetryPolicy(retries int) RetryPolicy {
	return RetryPolicy{
		MaxRetries:     retries,
		InitialBackoff: 250 * time.Millisecond,
		MaxBackoff:     5 * time.Second,
		JitterFraction: 0.2,
	}
}

// statusError is a webhook response that came back with an error status.
type statusError struct {
	hook   string
	status int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("webhook %s returned status %d", e.hook, e.status)
}

// retryable reports whether a delivery failure may succeed on a later attempt:
// transport errors, 429 and 5xx. Cancellation never retries.
func retryable(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}
	var se *statusError
	if errors.As(err, &se) {
		return se.status == 429 || se.status >= 500
	}
	return true
}

// do runs attempt until it succeeds, fails permanently, or the policy is
// exhausted.
func (p RetryPolicy) do(ctx context.Context, attempt func() error) error {
	var lastErr error
	for n := 0; n <= p.MaxRetries; n++ {
		lastErr = attempt()
		if lastErr == nil || !retryable(lastErr) {
			return lastErr
		}
		if n == p.MaxRetries {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(p.backoff(n)):
		}
	}
	if p.MaxRetries == 0 {
		return lastErr
	}
	return fmt.Errorf("gave up after %d retries: %w", p.MaxRetries, lastErr)
}

// backoff doubles from InitialBackoff up to MaxBackoff, with ±JitterFraction.
func (p RetryPolicy) backoff(n int) time.Duration {
	base := float64(p.InitialBackoff) * math.Pow(2, float64(n))
	if base > float64(p.MaxBackoff) {
		base = float64(p.MaxBackoff)
	}
	d := time.Duration(base + base*p.JitterFraction*(rand.Float64()*2-1))
	if d < 0 {
		return 0
	}
	return d
}
