// Package resilience provides bounded retry with backoff and a circuit
// breaker for transport and I/O operations. Business failures such as an
// unavailable seat must never be routed through either: retrying cannot
// change their outcome.
package resilience

import (
	"context"
	"math/rand/v2"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/jyasuu/ticket-master/internal/observability"
)

type RetryConfig struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
	Jitter       bool
}

// ProducerRetry is tuned for broker publishes: more attempts, short initial
// delay, jittered so competing producers do not retry in lockstep.
func ProducerRetry() RetryConfig {
	return RetryConfig{
		MaxAttempts:  5,
		InitialDelay: 50 * time.Millisecond,
		MaxDelay:     10 * time.Second,
		Multiplier:   1.5,
		Jitter:       true,
	}
}

// StoreRetry is tuned for local store I/O, which either recovers quickly or
// not at all.
func StoreRetry() RetryConfig {
	return RetryConfig{
		MaxAttempts:  3,
		InitialDelay: 10 * time.Millisecond,
		MaxDelay:     5 * time.Second,
		Multiplier:   2.0,
	}
}

// Retry runs op until it succeeds, the attempt budget is spent, or ctx is
// cancelled. The last error is returned wrapped with the attempt count.
func Retry(ctx context.Context, log observability.Logger, cfg RetryConfig, name string, op func(context.Context) error) error {
	delay := cfg.InitialDelay

	var lastErr error
	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		lastErr = op(ctx)
		if lastErr == nil {
			if attempt > 1 {
				log.WithField("operation", name).WithField("attempt", attempt).Info("operation succeeded after retry")
			}
			return nil
		}
		if attempt == cfg.MaxAttempts {
			break
		}

		log.WithField("operation", name).WithField("attempt", attempt).WithError(lastErr).Warn("operation failed, retrying")

		wait := delay
		if cfg.Jitter {
			wait += time.Duration(rand.Float64() * 0.1 * float64(delay))
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}

		delay = time.Duration(float64(delay) * cfg.Multiplier)
		if delay > cfg.MaxDelay {
			delay = cfg.MaxDelay
		}
	}

	return errors.Wrapf(lastErr, "%s failed after %d attempts", name, cfg.MaxAttempts)
}
