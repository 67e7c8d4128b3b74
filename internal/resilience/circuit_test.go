package resilience

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sells-group/odds-chat/internal/config"
)

func newTestBreaker(threshold int, reset time.Duration) (*CircuitBreaker, *time.Time) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	cb := NewCircuitBreaker(CircuitBreakerConfig{Name: "test", FailureThreshold: threshold, ResetTimeout: reset})
	cb.nowFunc = func() time.Time { return now }
	return cb, &now
}

var errUpstream = NewTransientError(errors.New("503 service unavailable"), 503)

func failN(t *testing.T, cb *CircuitBreaker, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		_, _ = Call(context.Background(), cb, func(context.Context) (int, error) { return 0, errUpstream })
	}
}

func TestCircuitBreaker_OpensAtThreshold(t *testing.T) {
	cb, _ := newTestBreaker(3, time.Minute)

	failN(t, cb, 2)
	if cb.State() != CircuitClosed {
		t.Fatalf("state = %v, want closed", cb.State())
	}
	failN(t, cb, 1)
	if cb.State() != CircuitOpen {
		t.Fatalf("state = %v, want open", cb.State())
	}

	called := false
	_, err := Call(context.Background(), cb, func(context.Context) (int, error) {
		called = true
		return 1, nil
	})
	if !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("err = %v, want ErrCircuitOpen", err)
	}
	if called {
		t.Fatal("fn must not run while open")
	}
}

func TestCircuitBreaker_HalfOpenRecovers(t *testing.T) {
	cb, now := newTestBreaker(2, 30*time.Second)
	failN(t, cb, 2)

	*now = now.Add(31 * time.Second)
	if cb.State() != CircuitHalfOpen {
		t.Fatalf("state = %v, want half-open", cb.State())
	}

	val, err := Call(context.Background(), cb, func(context.Context) (string, error) { return "ok", nil })
	if err != nil || val != "ok" {
		t.Fatalf("probe failed: %v", err)
	}
	if cb.State() != CircuitClosed {
		t.Fatalf("state = %v, want closed", cb.State())
	}
	if cb.Failures() != 0 {
		t.Fatalf("failures = %d, want 0", cb.Failures())
	}
}

func TestCircuitBreaker_HalfOpenFailureReopens(t *testing.T) {
	cb, now := newTestBreaker(2, 30*time.Second)
	failN(t, cb, 2)

	*now = now.Add(time.Minute)
	failN(t, cb, 1)
	if cb.State() != CircuitOpen {
		t.Fatalf("state = %v, want open", cb.State())
	}
}

func TestCircuitBreaker_PermanentErrorsDoNotTrip(t *testing.T) {
	cb, _ := newTestBreaker(2, time.Minute)
	notFound := errors.New("404 unknown sport")
	for i := 0; i < 5; i++ {
		_, _ = Call(context.Background(), cb, func(context.Context) (int, error) { return 0, notFound })
	}
	if cb.State() != CircuitClosed {
		t.Fatalf("state = %v, want closed", cb.State())
	}
}

func TestCircuitBreaker_SuccessResetsCount(t *testing.T) {
	cb, _ := newTestBreaker(3, time.Minute)
	failN(t, cb, 2)
	_, _ = Call(context.Background(), cb, func(context.Context) (int, error) { return 1, nil })
	failN(t, cb, 2)
	if cb.State() != CircuitClosed {
		t.Fatalf("state = %v, want closed", cb.State())
	}
}

func TestCircuitStateString(t *testing.T) {
	tests := map[CircuitState]string{
		CircuitClosed:    "closed",
		CircuitOpen:      "open",
		CircuitHalfOpen:  "half-open",
		CircuitState(42): "unknown",
	}
	for s, want := range tests {
		if s.String() != want {
			t.Errorf("%d.String() = %q, want %q", s, s.String(), want)
		}
	}
}

func TestCircuitFromConfig(t *testing.T) {
	cfg := CircuitFromConfig("odds_api", config.ResilienceConfig{CircuitFailureThreshold: 7, CircuitResetSecs: 10})
	if cfg.Name != "odds_api" || cfg.FailureThreshold != 7 || cfg.ResetTimeout != 10*time.Second {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	def := CircuitFromConfig("x", config.ResilienceConfig{})
	if def.FailureThreshold != 5 || def.ResetTimeout != 30*time.Second {
		t.Fatalf("zero values should fall back to defaults: %+v", def)
	}
}
