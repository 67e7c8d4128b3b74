package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Odds         OddsConfig         `yaml:"odds" mapstructure:"odds"`
	Catalog      CatalogConfig      `yaml:"catalog" mapstructure:"catalog"`
	Resolver     ResolverConfig     `yaml:"resolver" mapstructure:"resolver"`
	Orchestrator OrchestratorConfig `yaml:"orchestrator" mapstructure:"orchestrator"`
	Anthropic    AnthropicConfig    `yaml:"anthropic" mapstructure:"anthropic"`
	Store        StoreConfig        `yaml:"store" mapstructure:"store"`
	Resilience   ResilienceConfig   `yaml:"resilience" mapstructure:"resilience"`
	Server       ServerConfig       `yaml:"server" mapstructure:"server"`
	Log          LogConfig          `yaml:"log" mapstructure:"log"`
}

// OddsConfig holds The Odds API settings.
type OddsConfig struct {
	Key         string  `yaml:"key" mapstructure:"key"`
	BaseURL     string  `yaml:"base_url" mapstructure:"base_url"`
	Region      string  `yaml:"region" mapstructure:"region"`
	Markets     string  `yaml:"markets" mapstructure:"markets"`
	TimeoutSecs int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	RatePerSec  float64 `yaml:"rate_per_sec" mapstructure:"rate_per_sec"`
}

// Timeout returns the per-call provider timeout.
func (c OddsConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSecs) * time.Second
}

// CatalogConfig configures the sports catalog cache.
type CatalogConfig struct {
	// TTLMinutes is how long a fetched catalog stays fresh. Zero or less
	// means the catalog is fetched once and never refreshed.
	TTLMinutes      int  `yaml:"ttl_minutes" mapstructure:"ttl_minutes"`
	IncludeInactive bool `yaml:"include_inactive" mapstructure:"include_inactive"`
}

// TTL returns the catalog freshness window.
func (c CatalogConfig) TTL() time.Duration {
	return time.Duration(c.TTLMinutes) * time.Minute
}

// ResolverConfig configures sport-key resolution.
type ResolverConfig struct {
	FuzzyCutoff float64 `yaml:"fuzzy_cutoff" mapstructure:"fuzzy_cutoff"`
	// Similarity selects the fuzzy algorithm: "ratcliff" or "levenshtein".
	Similarity string `yaml:"similarity" mapstructure:"similarity"`
}

// OrchestratorConfig configures data-fetch parameters per intent.
type OrchestratorConfig struct {
	ScoresDaysFrom int `yaml:"scores_days_from" mapstructure:"scores_days_from"`
	NextEvents     int `yaml:"next_events" mapstructure:"next_events"`
}

// AnthropicConfig holds Anthropic API settings for the answer formatter.
type AnthropicConfig struct {
	Key          string  `yaml:"key" mapstructure:"key"`
	Model        string  `yaml:"model" mapstructure:"model"`
	MaxTokens    int64   `yaml:"max_tokens" mapstructure:"max_tokens"`
	Temperature  float64 `yaml:"temperature" mapstructure:"temperature"`
	HistoryTurns int     `yaml:"history_turns" mapstructure:"history_turns"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// ResilienceConfig configures retries and circuit breaking for provider calls.
type ResilienceConfig struct {
	MaxAttempts             int     `yaml:"max_attempts" mapstructure:"max_attempts"`
	InitialBackoffMs        int     `yaml:"initial_backoff_ms" mapstructure:"initial_backoff_ms"`
	MaxBackoffMs            int     `yaml:"max_backoff_ms" mapstructure:"max_backoff_ms"`
	Multiplier              float64 `yaml:"multiplier" mapstructure:"multiplier"`
	JitterFraction          float64 `yaml:"jitter_fraction" mapstructure:"jitter_fraction"`
	CircuitFailureThreshold int     `yaml:"circuit_failure_threshold" mapstructure:"circuit_failure_threshold"`
	CircuitResetSecs        int     `yaml:"circuit_reset_secs" mapstructure:"circuit_reset_secs"`
}

// ServerConfig configures the chat HTTP server.
type ServerConfig struct {
	Port           int      `yaml:"port" mapstructure:"port"`
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("ODDSCHAT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Secrets have no default, but must be bound so AutomaticEnv sees them
	// during Unmarshal.
	for _, key := range []string{"odds.key", "anthropic.key"} {
		if err := v.BindEnv(key); err != nil {
			return nil, eris.Wrapf(err, "config: bind env %s", key)
		}
	}

	// Defaults
	v.SetDefault("odds.base_url", "https://api.the-odds-api.com/v4")
	v.SetDefault("odds.region", "us")
	v.SetDefault("odds.markets", "h2h")
	v.SetDefault("odds.timeout_secs", 10)
	v.SetDefault("odds.rate_per_sec", 5)
	v.SetDefault("catalog.ttl_minutes", 60)
	v.SetDefault("catalog.include_inactive", true)
	v.SetDefault("resolver.fuzzy_cutoff", 0.6)
	v.SetDefault("resolver.similarity", "ratcliff")
	v.SetDefault("orchestrator.scores_days_from", 1)
	v.SetDefault("orchestrator.next_events", 3)
	v.SetDefault("anthropic.model", "claude-sonnet-4-5-20250929")
	v.SetDefault("anthropic.max_tokens", 1024)
	v.SetDefault("anthropic.temperature", 0.4)
	v.SetDefault("anthropic.history_turns", 6)
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "odds-chat.db")
	v.SetDefault("resilience.max_attempts", 3)
	v.SetDefault("resilience.initial_backoff_ms", 500)
	v.SetDefault("resilience.max_backoff_ms", 5000)
	v.SetDefault("resilience.multiplier", 2.0)
	v.SetDefault("resilience.jitter_fraction", 0.25)
	v.SetDefault("resilience.circuit_failure_threshold", 5)
	v.SetDefault("resilience.circuit_reset_secs", 30)
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks the settings required by the given command mode:
// "resolve" (provider only), "chat" (provider + LLM) or "serve" (chat + port).
func (c *Config) Validate(mode string) error {
	var problems []string

	switch mode {
	case "resolve", "chat", "serve":
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if c.Odds.Key == "" {
		problems = append(problems, "odds.key is required")
	}
	if c.Resolver.FuzzyCutoff < 0 || c.Resolver.FuzzyCutoff > 1 {
		problems = append(problems, "resolver.fuzzy_cutoff must be between 0 and 1")
	}
	switch c.Resolver.Similarity {
	case "ratcliff", "levenshtein":
	default:
		problems = append(problems, fmt.Sprintf("resolver.similarity %q is not supported", c.Resolver.Similarity))
	}

	if mode == "chat" || mode == "serve" {
		if c.Anthropic.Key == "" {
			problems = append(problems, "anthropic.key is required")
		}
		switch c.Store.Driver {
		case "sqlite", "postgres", "memory":
		default:
			problems = append(problems, fmt.Sprintf("store.driver %q is not supported", c.Store.Driver))
		}
		if c.Store.Driver != "memory" && c.Store.DatabaseURL == "" {
			problems = append(problems, "store.database_url is required")
		}
	}

	if mode == "serve" && c.Server.Port <= 0 {
		problems = append(problems, "server.port must be > 0")
	}

	if len(problems) > 0 {
		return eris.Errorf("config: %s", strings.Join(problems, "; "))
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
