package llm

import (
	"fmt"
	"time"

	"github.com/tmc/langchaingo/llms/openai"
	"go.uber.org/zap"

	"github.com/moonback/Esil-events-v1-sub001/internal/metrics"
)

func NewOpenAIProvider(apiKey, model, baseURL string, timeout time.Duration, log *zap.Logger, m *metrics.AssistantMetrics) (*LangChainProvider, error) {
	opts := []openai.Option{
		openai.WithToken(apiKey),
		openai.WithModel(model),
	}
	if baseURL != "" {
		opts = append(opts, openai.WithBaseURL(baseURL))
	}

	client, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create openai client: %w", err)
	}
	return NewLangChainProvider(client, "openai", timeout, log, m), nil
}
