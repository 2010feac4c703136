package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
	"github.com/terraincognita07/nyinsen/internal/metrics"
)

type BreakerConfig struct {
	// Consecutive failures that open the breaker.
	FailureThreshold uint32
	// How long the breaker stays open before probing again.
	OpenTimeout time.Duration
	// Upper bound for one completion, including the HTTP round trip.
	CallTimeout time.Duration
}

func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		FailureThreshold: 5,
		OpenTimeout:      30 * time.Second,
		CallTimeout:      20 * time.Second,
	}
}

// Breaker guards a Completer with a circuit breaker and a per-call timeout.
// While open it fails fast with ErrUnavailable.
type Breaker struct {
	next        Completer
	cb          *gobreaker.CircuitBreaker
	callTimeout time.Duration
}

func NewBreaker(next Completer, cfg BreakerConfig, log logrus.FieldLogger) *Breaker {
	defaults := DefaultBreakerConfig()
	if cfg.FailureThreshold == 0 {
		cfg.FailureThreshold = defaults.FailureThreshold
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = defaults.OpenTimeout
	}
	if cfg.CallTimeout <= 0 {
		cfg.CallTimeout = defaults.CallTimeout
	}
	if log == nil {
		log = logrus.StandardLogger()
	}

	component := "chat_" + next.Provider()
	metrics.CircuitBreakerState.WithLabelValues(component).Set(0)

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        component,
		MaxRequests: 1,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.FailureThreshold
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			metrics.CircuitBreakerState.WithLabelValues(name).Set(breakerStateValue(to))
			log.WithFields(logrus.Fields{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			}).Warn("chat circuit breaker changed state")
		},
	})

	return &Breaker{next: next, cb: cb, callTimeout: cfg.CallTimeout}
}

func (breaker *Breaker) Provider() string {
	return breaker.next.Provider()
}

func (breaker *Breaker) State() gobreaker.State {
	return breaker.cb.State()
}

func (breaker *Breaker) Complete(ctx context.Context, prompt string) (string, error) {
	result, err := breaker.cb.Execute(func() (interface{}, error) {
		callCtx, cancel := context.WithTimeout(ctx, breaker.callTimeout)
		defer cancel()

		started := time.Now()
		answer, err := breaker.next.Complete(callCtx, prompt)
		metrics.ChatCompletionDuration.WithLabelValues(breaker.next.Provider()).Observe(time.Since(started).Seconds())
		return answer, err
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if err != nil {
		return "", err
	}
	return result.(string), nil
}

func breakerStateValue(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}
