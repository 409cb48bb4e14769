package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"LLM_PROVIDER", "LLM_API_KEY", "LLM_MODEL", "ANTHROPIC_API_KEY", "OPENAI_API_KEY",
		"LLM_MAX_TOKENS", "LLM_TEMPERATURE", "SESSION_TTL", "NATS_REQUEST_SUBJECT",
		"BUDGET_MIN_RATIO", "BUDGET_MAX_RATIO", "BUDGET_ESSENTIAL_SHARE", "CATALOG_DSN", "APP_ENV",
	} {
		t.Setenv(k, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("ANTHROPIC_API_KEY", "sk-test")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "anthropic", cfg.LLMProvider)
	assert.Equal(t, "sk-test", cfg.LLMAPIKey)
	assert.Equal(t, "claude-3-5-sonnet-20241022", cfg.LLMModel)
	assert.Equal(t, "assistant.request", cfg.NatsRequestSubject)
	assert.Equal(t, "assistant.events", cfg.NatsEventPrefix)
	assert.Equal(t, "cart.items.add", cfg.NatsCartSubject)
	assert.Equal(t, 30*time.Minute, cfg.SessionTTL)
	assert.Equal(t, 2000, cfg.LLMMaxTokens)
	assert.Equal(t, 0.3, cfg.BudgetPolicy.MinRatio)
	assert.Equal(t, 1.2, cfg.BudgetPolicy.MaxRatio)
	assert.Empty(t, cfg.CatalogDSN)
	assert.False(t, cfg.IsProduction())
}

func TestLoadOpenAI(t *testing.T) {
	clearEnv(t)
	t.Setenv("LLM_PROVIDER", "OpenAI")
	t.Setenv("OPENAI_API_KEY", "sk-openai")
	t.Setenv("LLM_TEMPERATURE", "0.2")
	t.Setenv("SESSION_TTL", "1h")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "openai", cfg.LLMProvider)
	assert.Equal(t, "sk-openai", cfg.LLMAPIKey)
	assert.Equal(t, "gpt-4o-mini", cfg.LLMModel)
	assert.Equal(t, 0.2, cfg.LLMTemperature)
	assert.Equal(t, time.Hour, cfg.SessionTTL)
}

func TestLoadIgnoresUnparseableValues(t *testing.T) {
	clearEnv(t)
	t.Setenv("LLM_API_KEY", "k")
	t.Setenv("LLM_MAX_TOKENS", "lots")
	t.Setenv("SESSION_TTL", "forever")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 2000, cfg.LLMMaxTokens)
	assert.Equal(t, 30*time.Minute, cfg.SessionTTL)
}

func TestValidateReportsAllProblems(t *testing.T) {
	clearEnv(t)
	t.Setenv("LLM_PROVIDER", "mistral")
	t.Setenv("BUDGET_ESSENTIAL_SHARE", "0.9")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "LLM_PROVIDER")
	assert.Contains(t, err.Error(), "API key")
	assert.Contains(t, err.Error(), "budget ratios")
}
