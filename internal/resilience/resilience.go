// Package resilience wraps calls to the Sync Gateway and the AI service with
// retry and circuit breaking.
package resilience

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"time"

	"github.com/sony/gobreaker"
)

// Config holds retry parameters. MaxRetries of zero means a single attempt.
type Config struct {
	MaxRetries     int
	InitialBackoff time.Duration
}

// ErrPermanent marks an error that must not be retried.
type ErrPermanent struct {
	Err error
}

func (e *ErrPermanent) Error() string { return e.Err.Error() }
func (e *ErrPermanent) Unwrap() error { return e.Err }

// Permanent wraps err so RetryWithBackoff returns it immediately. The wrapper
// is kept on the returned error so the breaker can tell it apart.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &ErrPermanent{Err: err}
}

// RetryWithBackoff executes fn with exponential backoff + jitter.
// It respects context cancellation.
func RetryWithBackoff(ctx context.Context, cfg Config, fn func() error) error {
	var lastErr error
	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		lastErr = fn()
		if lastErr == nil {
			return nil
		}
		var perm *ErrPermanent
		if errors.As(lastErr, &perm) {
			return lastErr
		}

		if attempt < cfg.MaxRetries {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff(cfg.InitialBackoff, attempt)):
			}
		}
	}
	return lastErr
}

func backoff(initial time.Duration, attempt int) time.Duration {
	wait := time.Duration(math.Pow(2, float64(attempt))) * initial
	if half := int64(wait / 2); half > 0 {
		wait += time.Duration(rand.Int63n(half))
	}
	return wait
}

// NewCircuitBreaker creates a circuit breaker that opens after at least five
// requests with a 60% failure ratio.
func NewCircuitBreaker(name string) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 3,
		Interval:    30 * time.Second,
		Timeout:     10 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 5 && failureRatio >= 0.6
		},
		IsSuccessful: func(err error) bool {
			// a permanent (4xx-style) failure says nothing about the remote's health
			var perm *ErrPermanent
			return err == nil || errors.As(err, &perm)
		},
	})
}

// Call runs fn inside the breaker, retrying according to cfg.
func Call[T any](ctx context.Context, cb *gobreaker.CircuitBreaker, cfg Config, fn func(context.Context) (T, error)) (T, error) {
	res, err := cb.Execute(func() (any, error) {
		var out T
		err := RetryWithBackoff(ctx, cfg, func() error {
			v, err := fn(ctx)
			if err != nil {
				return err
			}
			out = v
			return nil
		})
		return out, err
	})
	if err != nil {
		var zero T
		return zero, err
	}
	v, _ := res.(T)
	return v, nil
}
