package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/moonback/Esil-events-v1-sub001/internal/metrics"
)

// LLMProvider defines the interface for generative model providers.
// The call is single-shot: the full context is resent on every request.
type LLMProvider interface {
	Complete(ctx context.Context, request *LLMRequest) (*LLMResponse, error)
}

// LLMRequest represents the structured request to LLM
type LLMRequest struct {
	Prompt      string
	MaxTokens   int
	Temperature float64
}

// LLMResponse represents the raw response from LLM
type LLMResponse struct {
	Content string
	Usage   *Usage
}

type Usage struct {
	InputTokens  int
	OutputTokens int
}

// Settings selects and configures a provider.
type Settings struct {
	Provider string // "anthropic" or "openai"
	APIKey   string
	Model    string
	BaseURL  string
	Timeout  time.Duration
}

// NewProvider builds the configured provider.
func NewProvider(s Settings, log *zap.Logger, m *metrics.AssistantMetrics) (LLMProvider, error) {
	switch strings.ToLower(strings.TrimSpace(s.Provider)) {
	case "", "anthropic":
		return NewAnthropicProvider(s.APIKey, s.Model, s.BaseURL, s.Timeout, log, m)
	case "openai":
		return NewOpenAIProvider(s.APIKey, s.Model, s.BaseURL, s.Timeout, log, m)
	default:
		return nil, fmt.Errorf("unknown LLM provider %q", s.Provider)
	}
}
