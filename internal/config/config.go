package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/moonback/Esil-events-v1-sub001/internal/budget"
)

type Config struct {
	// NATS configuration
	NatsURL            string
	NatsRequestSubject string
	NatsEventPrefix    string
	NatsCartSubject    string
	NatsTimeout        time.Duration

	// Generative model configuration
	LLMProvider    string
	LLMAPIKey      string
	LLMModel       string
	LLMBaseURL     string
	LLMTimeout     time.Duration
	LLMMaxTokens   int
	LLMTemperature float64

	// Redis configuration
	RedisURL   string
	SessionTTL time.Duration

	// Catalog database; empty runs on the demo catalog
	CatalogDSN string

	// Pipeline
	PipelineTimeout time.Duration
	BudgetPolicy    budget.Policy

	// Service configuration
	ServiceName string
	HTTPAddr    string
	LogFile     string
	Environment string
}

func Load() (*Config, error) {
	provider := strings.ToLower(getEnv("LLM_PROVIDER", "anthropic"))

	defaults := budget.DefaultPolicy()
	cfg := &Config{
		// NATS settings
		NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
		NatsRequestSubject: getEnv("NATS_REQUEST_SUBJECT", "assistant.request"),
		NatsEventPrefix:    getEnv("NATS_EVENT_PREFIX", "assistant.events"),
		NatsCartSubject:    getEnv("NATS_CART_SUBJECT", "cart.items.add"),
		NatsTimeout:        getDurationEnv("NATS_TIMEOUT", 30*time.Second),

		// Model settings
		LLMProvider:    provider,
		LLMAPIKey:      getEnv("LLM_API_KEY", providerKey(provider)),
		LLMModel:       getEnv("LLM_MODEL", defaultModel(provider)),
		LLMBaseURL:     getEnv("LLM_BASE_URL", ""),
		LLMTimeout:     getDurationEnv("LLM_TIMEOUT", 60*time.Second),
		LLMMaxTokens:   getIntEnv("LLM_MAX_TOKENS", 2000),
		LLMTemperature: getFloatEnv("LLM_TEMPERATURE", 0.7),

		// Redis settings
		RedisURL:   getEnv("REDIS_URL", "redis://localhost:6379/0"),
		SessionTTL: getDurationEnv("SESSION_TTL", 30*time.Minute),

		CatalogDSN: getEnv("CATALOG_DSN", ""),

		PipelineTimeout: getDurationEnv("PIPELINE_TIMEOUT", 90*time.Second),
		BudgetPolicy: budget.Policy{
			MinRatio:       getFloatEnv("BUDGET_MIN_RATIO", defaults.MinRatio),
			MaxRatio:       getFloatEnv("BUDGET_MAX_RATIO", defaults.MaxRatio),
			EssentialShare: getFloatEnv("BUDGET_ESSENTIAL_SHARE", defaults.EssentialShare),
			ComfortShare:   getFloatEnv("BUDGET_COMFORT_SHARE", defaults.ComfortShare),
			DecorShare:     getFloatEnv("BUDGET_DECOR_SHARE", defaults.DecorShare),
		},

		// Service settings
		ServiceName: getEnv("SERVICE_NAME", "esil-quote-assistant"),
		HTTPAddr:    getEnv("HTTP_ADDR", ":8080"),
		LogFile:     getEnv("LOG_FILE", ""),
		Environment: getEnv("APP_ENV", "development"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []error
	switch c.LLMProvider {
	case "anthropic", "openai":
	default:
		errs = append(errs, fmt.Errorf("LLM_PROVIDER must be anthropic or openai, got %q", c.LLMProvider))
	}
	if c.LLMAPIKey == "" {
		errs = append(errs, fmt.Errorf("an API key is required for provider %s (LLM_API_KEY)", c.LLMProvider))
	}
	if c.LLMMaxTokens <= 0 {
		errs = append(errs, errors.New("LLM_MAX_TOKENS must be positive"))
	}
	if c.SessionTTL <= 0 {
		errs = append(errs, errors.New("SESSION_TTL must be positive"))
	}
	if !c.BudgetPolicy.Valid() {
		errs = append(errs, errors.New("budget ratios are inconsistent: min must not exceed max and shares must add up to 1"))
	}
	return errors.Join(errs...)
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func providerKey(provider string) string {
	if provider == "openai" {
		return os.Getenv("OPENAI_API_KEY")
	}
	return os.Getenv("ANTHROPIC_API_KEY")
}

func defaultModel(provider string) string {
	if provider == "openai" {
		return "gpt-4o-mini"
	}
	return "claude-3-5-sonnet-20241022"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}
