package resilience

import (
	"time"

	"github.com/sells-group/odds-chat/internal/config"
)

// RetryFromConfig converts configured values to a RetryConfig. Zero values
// fall back to the defaults.
func RetryFromConfig(c config.ResilienceConfig) RetryConfig {
	cfg := DefaultRetryConfig()
	if c.MaxAttempts > 0 {
		cfg.MaxAttempts = c.MaxAttempts
	}
	if c.InitialBackoffMs > 0 {
		cfg.InitialBackoff = time.Duration(c.InitialBackoffMs) * time.Millisecond
	}
	if c.MaxBackoffMs > 0 {
		cfg.MaxBackoff = time.Duration(c.MaxBackoffMs) * time.Millisecond
	}
	if c.Multiplier > 0 {
		cfg.Multiplier = c.Multiplier
	}
	if c.JitterFraction >= 0 {
		cfg.JitterFraction = c.JitterFraction
	}
	return cfg
}

// CircuitFromConfig converts configured values to a CircuitBreakerConfig.
func CircuitFromConfig(name string, c config.ResilienceConfig) CircuitBreakerConfig {
	cfg := DefaultCircuitBreakerConfig()
	cfg.Name = name
	if c.CircuitFailureThreshold > 0 {
		cfg.FailureThreshold = c.CircuitFailureThreshold
	}
	if c.CircuitResetSecs > 0 {
		cfg.ResetTimeout = time.Duration(c.CircuitResetSecs) * time.Second
	}
	return cfg
}
