package circuitbreaker

import (
	"errors"
	"fmt"
	"time"

	"github.com/maxappraiser/appraiser-api/pkg/logger"
	"github.com/maxappraiser/appraiser-api/pkg/metrics"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// Config describes when a breaker trips and how long it stays open
type Config struct {
	Name string

	// MinRequests is the number of calls in the current interval before the
	// failure ratio is considered
	MinRequests  uint32
	FailureRatio float64

	HalfOpenRequests uint32
	Interval         time.Duration
	OpenTimeout      time.Duration
}

// InferenceConfig trips after three calls when most of them failed
func InferenceConfig(name string) Config {
	return Config{
		Name:             name,
		MinRequests:      3,
		FailureRatio:     0.6,
		HalfOpenRequests: 3,
		Interval:         time.Minute,
		OpenTimeout:      30 * time.Second,
	}
}

// New creates a breaker that logs and exports its state transitions
func New(cfg Config) *gobreaker.CircuitBreaker {
	metrics.CircuitBreakerState.WithLabelValues(cfg.Name).Set(stateValue(gobreaker.StateClosed))

	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.HalfOpenRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinRequests || counts.Requests == 0 {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= cfg.FailureRatio
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateValue(to))
			logger.Warn("Circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	})
}

// Execute runs fn through cb. Rejections by an open breaker wrap the gobreaker
// sentinel errors, so IsOpenError recognises them.
func Execute[T any](cb *gobreaker.CircuitBreaker, fn func() (T, error)) (T, error) {
	var zero T

	result, err := cb.Execute(func() (interface{}, error) {
		return fn()
	})
	if err != nil {
		if IsOpenError(err) {
			return zero, fmt.Errorf("%s: %w", cb.Name(), err)
		}
		return zero, err
	}

	typed, ok := result.(T)
	if !ok {
		return zero, fmt.Errorf("%s: unexpected result type %T", cb.Name(), result)
	}
	return typed, nil
}

// State returns "closed", "half-open" or "open"
func State(cb *gobreaker.CircuitBreaker) string {
	return cb.State().String()
}

// IsOpenError reports whether err means the call was rejected without running
func IsOpenError(err error) bool {
	return errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests)
}

func stateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}
