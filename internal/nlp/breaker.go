package nlp

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sony/gobreaker"
)

// BreakerConfig holds the configuration for the tagger circuit breaker.
type BreakerConfig struct {
	// MaxFailures is the number of consecutive failures required to trip
	// the circuit. Default: 3
	MaxFailures uint32

	// Timeout is the duration the circuit stays open before transitioning
	// to half-open. Default: 30 seconds
	Timeout time.Duration

	// HalfOpenMaxSuccesses is the number of consecutive successes required
	// in half-open state to close the circuit again. Default: 2
	HalfOpenMaxSuccesses uint32
}

// BreakerTagger wraps a Tagger with a circuit breaker so that a failing
// backend does not stall every turn. While the circuit is open, Annotate
// reports ErrBackendUnavailable immediately and the pipeline degrades to
// domain regex extraction.
type BreakerTagger struct {
	inner   Tagger
	breaker *gobreaker.CircuitBreaker
}

// NewBreakerTagger wraps the given tagger with default breaker settings.
func NewBreakerTagger(inner Tagger) *BreakerTagger {
	return NewBreakerTaggerWithConfig(inner, BreakerConfig{
		MaxFailures:          3,
		Timeout:              30 * time.Second,
		HalfOpenMaxSuccesses: 2,
	})
}

// NewBreakerTaggerWithConfig wraps the given tagger with custom breaker settings.
func NewBreakerTaggerWithConfig(inner Tagger, cfg BreakerConfig) *BreakerTagger {
	settings := gobreaker.Settings{
		Name:        "TaggerCircuitBreaker",
		MaxRequests: cfg.HalfOpenMaxSuccesses,
		Interval:    0, // Don't clear counts periodically
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.MaxFailures
		},
	}
	return &BreakerTagger{
		inner:   inner,
		breaker: gobreaker.NewCircuitBreaker(settings),
	}
}

// Model returns the wrapped tagger's model identifier.
func (t *BreakerTagger) Model() string {
	return t.inner.Model()
}

// State returns the current breaker state: "closed", "open", or "half-open".
func (t *BreakerTagger) State() string {
	switch t.breaker.State() {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateOpen:
		return "open"
	case gobreaker.StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// Annotate routes the call through the circuit breaker. An open circuit is
// surfaced as ErrBackendUnavailable.
func (t *BreakerTagger) Annotate(ctx context.Context, text string) (*Annotation, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	result, err := t.breaker.Execute(func() (interface{}, error) {
		return t.inner.Annotate(ctx, text)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("nlp: circuit open: %w", ErrBackendUnavailable)
		}
		return nil, err
	}
	return result.(*Annotation), nil
}
