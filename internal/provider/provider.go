// Package provider wraps the sports data client with retries and a circuit
// breaker.
package provider

import (
	"context"
	"errors"

	"github.com/rotisserie/eris"

	"github.com/sells-group/odds-chat/internal/model"
	"github.com/sells-group/odds-chat/internal/resilience"
	"github.com/sells-group/odds-chat/pkg/oddsapi"
)

// Resilient decorates an oddsapi.Client. Every call goes through the circuit
// breaker, and transient failures are retried with backoff inside it.
type Resilient struct {
	inner   oddsapi.Client
	retry   resilience.RetryConfig
	breaker *resilience.CircuitBreaker
}

var _ oddsapi.Client = (*Resilient)(nil)

// NewResilient wraps inner with the given retry policy and breaker.
func NewResilient(inner oddsapi.Client, retry resilience.RetryConfig, breaker *resilience.CircuitBreaker) *Resilient {
	if breaker == nil {
		breaker = resilience.NewCircuitBreaker(resilience.DefaultCircuitBreakerConfig())
	}
	return &Resilient{inner: inner, retry: retry, breaker: breaker}
}

// Breaker exposes the circuit breaker for health reporting.
func (r *Resilient) Breaker() *resilience.CircuitBreaker {
	return r.breaker
}

func (r *Resilient) ListSports(ctx context.Context, all bool) ([]oddsapi.Sport, error) {
	return call(ctx, r, "list_sports", func(ctx context.Context) ([]oddsapi.Sport, error) {
		return r.inner.ListSports(ctx, all)
	})
}

func (r *Resilient) ListEvents(ctx context.Context, sportKey string) ([]oddsapi.Event, error) {
	return call(ctx, r, "list_events", func(ctx context.Context) ([]oddsapi.Event, error) {
		return r.inner.ListEvents(ctx, sportKey)
	})
}

func (r *Resilient) GetScores(ctx context.Context, sportKey string, daysFrom int) ([]oddsapi.Score, error) {
	return call(ctx, r, "get_scores", func(ctx context.Context) ([]oddsapi.Score, error) {
		return r.inner.GetScores(ctx, sportKey, daysFrom)
	})
}

func (r *Resilient) GetOdds(ctx context.Context, sportKey, regions, markets string) ([]oddsapi.EventOdds, error) {
	return call(ctx, r, "get_odds", func(ctx context.Context) ([]oddsapi.EventOdds, error) {
		return r.inner.GetOdds(ctx, sportKey, regions, markets)
	})
}

func call[T any](ctx context.Context, r *Resilient, op string, fn func(context.Context) (T, error)) (T, error) {
	cfg := r.retry
	if cfg.OnRetry == nil {
		cfg.OnRetry = resilience.LogRetry(op)
	}
	val, err := resilience.Call(ctx, r.breaker, func(ctx context.Context) (T, error) {
		return resilience.Retry(ctx, cfg, fn)
	})
	if err != nil {
		var zero T
		if errors.Is(err, resilience.ErrCircuitOpen) {
			return zero, eris.Wrapf(model.ErrProviderUnavailable, "provider: %s: circuit open", op)
		}
		return zero, eris.Wrapf(errors.Join(model.ErrProviderUnavailable, err), "provider: %s", op)
	}
	return val, nil
}
