package circuitbreaker

import (
	"errors"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker/v2"
)

type Config struct {
	Name string
	// MaxRequests allowed through while half-open
	MaxRequests uint32
	// Interval resets the closed-state counts; zero never resets
	Interval time.Duration
	// Timeout is how long the breaker stays open
	Timeout time.Duration
	// ConsecutiveFailures that trip the breaker
	ConsecutiveFailures uint32
	// Ignore reports errors that must not count as failures
	Ignore func(err error) bool
}

func DefaultConfig(name string) Config {
	return Config{
		Name:                name,
		MaxRequests:         1,
		Interval:            time.Minute,
		Timeout:             30 * time.Second,
		ConsecutiveFailures: 5,
	}
}

// New builds a breaker returning T. State changes are logged.
func New[T any](cfg Config, log logrus.FieldLogger) *gobreaker.CircuitBreaker[T] {
	return gobreaker.NewCircuitBreaker[T](gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.ConsecutiveFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.WithFields(logrus.Fields{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			}).Warn("circuit breaker state changed")
		},
		IsSuccessful: func(err error) bool {
			if err == nil {
				return true
			}
			return cfg.Ignore != nil && cfg.Ignore(err)
		},
	})
}

// IsOpen reports whether err was returned because the breaker rejected the call
func IsOpen(err error) bool {
	return errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests)
}
