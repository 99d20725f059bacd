package retry

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/maxappraiser/appraiser-api/pkg/logger"
	"go.uber.org/zap"
)

// Config controls exponential backoff between attempts
type Config struct {
	MaxRetries   int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
	// Jitter spreads each delay by up to 25% in either direction
	Jitter bool
	// Retryable decides whether an error deserves another attempt; IsRetryable when nil
	Retryable func(error) bool
}

// InferenceConfig suits the Hugging Face inference API, which answers 503
// while a cold model is loading
func InferenceConfig() Config {
	return Config{
		MaxRetries:   2,
		InitialDelay: 500 * time.Millisecond,
		MaxDelay:     4 * time.Second,
		Multiplier:   2,
		Jitter:       true,
	}
}

type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Permanent marks err as final so DoWithResult returns it without retrying
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// DoWithResult calls fn until it succeeds, returns a non-retryable error, the
// retries run out or ctx is done
func DoWithResult[T any](ctx context.Context, cfg Config, operation string, fn func() (T, error)) (T, error) {
	var zero T

	retryable := cfg.Retryable
	if retryable == nil {
		retryable = IsRetryable
	}

	var lastErr error
	for attempt := 0; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return zero, err
		}

		res, err := fn()
		if err == nil {
			if attempt > 0 {
				logger.Info("Operation succeeded after retry",
					zap.String("operation", operation),
					zap.Int("attempt", attempt))
			}
			return res, nil
		}
		lastErr = err

		if !retryable(err) {
			return zero, err
		}
		if attempt >= cfg.MaxRetries {
			break
		}

		delay := backoff(attempt, cfg)
		logger.Warn("Operation failed, retrying",
			zap.String("operation", operation),
			zap.Int("attempt", attempt+1),
			zap.Duration("delay", delay),
			zap.Error(err))

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return zero, ctx.Err()
		case <-timer.C:
		}
	}

	logger.Error("Operation failed after all retries",
		zap.String("operation", operation),
		zap.Int("max_retries", cfg.MaxRetries),
		zap.Error(lastErr))
	return zero, fmt.Errorf("%s failed after %d retries: %w", operation, cfg.MaxRetries, lastErr)
}

// backoff returns InitialDelay * Multiplier^attempt, capped at MaxDelay
func backoff(attempt int, cfg Config) time.Duration {
	delay := float64(cfg.InitialDelay)
	for i := 0; i < attempt; i++ {
		delay *= cfg.Multiplier
		if delay >= float64(cfg.MaxDelay) {
			break
		}
	}
	if cfg.MaxDelay > 0 && delay > float64(cfg.MaxDelay) {
		delay = float64(cfg.MaxDelay)
	}

	if cfg.Jitter {
		//nolint:gosec // jitter does not need crypto/rand
		delay += delay * 0.25 * (rand.Float64()*2 - 1)
	}
	return time.Duration(delay)
}

// MaxElapsed is the worst-case time DoWithResult can take when every attempt
// runs for attemptTimeout before failing
func (c Config) MaxElapsed(attemptTimeout time.Duration) time.Duration {
	total := time.Duration(c.MaxRetries+1) * attemptTimeout
	for attempt := 0; attempt < c.MaxRetries; attempt++ {
		delay := backoff(attempt, Config{InitialDelay: c.InitialDelay, MaxDelay: c.MaxDelay, Multiplier: c.Multiplier})
		if c.Jitter {
			delay += delay / 4
		}
		total += delay
	}
	return total
}

// IsRetryable treats everything except cancellation and Permanent errors as transient
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	var permanent *permanentError
	if errors.As(err, &permanent) {
		return false
	}
	return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}
