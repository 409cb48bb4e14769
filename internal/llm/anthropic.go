package llm

import (
	"fmt"
	"time"

	"github.com/tmc/langchaingo/llms/anthropic"
	"go.uber.org/zap"

	"github.com/moonback/Esil-events-v1-sub001/internal/metrics"
)

func NewAnthropicProvider(apiKey, model, baseURL string, timeout time.Duration, log *zap.Logger, m *metrics.AssistantMetrics) (*LangChainProvider, error) {
	opts := []anthropic.Option{
		anthropic.WithToken(apiKey),
		anthropic.WithModel(model),
	}
	if baseURL != "" {
		opts = append(opts, anthropic.WithBaseURL(baseURL))
	}

	client, err := anthropic.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create anthropic client: %w", err)
	}
	return NewLangChainProvider(client, "anthropic", timeout, log, m), nil
}
