package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tmc/langchaingo/llms"
	"go.uber.org/zap"

	"github.com/moonback/Esil-events-v1-sub001/internal/logger"
	"github.com/moonback/Esil-events-v1-sub001/internal/metrics"
	"github.com/moonback/Esil-events-v1-sub001/internal/models"
)

// LangChainProvider sends single prompts to any langchaingo model.
type LangChainProvider struct {
	model   llms.Model
	name    string
	timeout time.Duration
	log     *zap.Logger
	metrics *metrics.AssistantMetrics
}

func NewLangChainProvider(model llms.Model, name string, timeout time.Duration, log *zap.Logger, m *metrics.AssistantMetrics) *LangChainProvider {
	return &LangChainProvider{
		model:   model,
		name:    name,
		timeout: timeout,
		log:     logger.OrNop(log).Named("llm"),
		metrics: m,
	}
}

// Complete sends the prompt as one human message. Transport and provider
// errors are reported as models.ErrNetworkFailure.
func (p *LangChainProvider) Complete(ctx context.Context, request *LLMRequest) (*LLMResponse, error) {
	if request == nil || request.Prompt == "" {
		return nil, fmt.Errorf("empty prompt")
	}
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	opts := make([]llms.CallOption, 0, 2)
	if request.MaxTokens > 0 {
		opts = append(opts, llms.WithMaxTokens(request.MaxTokens))
	}
	opts = append(opts, llms.WithTemperature(request.Temperature))

	msg := llms.MessageContent{
		Role:  llms.ChatMessageTypeHuman,
		Parts: []llms.ContentPart{llms.TextContent{Text: request.Prompt}},
	}

	start := time.Now()
	resp, err := p.model.GenerateContent(ctx, []llms.MessageContent{msg}, opts...)
	elapsed := time.Since(start)
	if err != nil {
		p.metrics.ObserveModelLatency("error", elapsed.Seconds())
		p.log.Warn("model call failed", zap.String("provider", p.name), zap.Duration("elapsed", elapsed), zap.Error(err))
		return nil, fmt.Errorf("%s completion: %w", p.name, errors.Join(models.ErrNetworkFailure, err))
	}
	if resp == nil || len(resp.Choices) == 0 || resp.Choices[0] == nil {
		p.metrics.ObserveModelLatency("empty", elapsed.Seconds())
		return nil, fmt.Errorf("%s completion: empty response: %w", p.name, models.ErrMalformedResponse)
	}
	p.metrics.ObserveModelLatency("ok", elapsed.Seconds())

	choice := resp.Choices[0]
	usage := &Usage{
		InputTokens:  intFromInfo(choice.GenerationInfo, "InputTokens", "PromptTokens"),
		OutputTokens: intFromInfo(choice.GenerationInfo, "OutputTokens", "CompletionTokens"),
	}
	p.log.Debug("model call completed",
		zap.String("provider", p.name),
		zap.Duration("elapsed", elapsed),
		zap.Int("input_tokens", usage.InputTokens),
		zap.Int("output_tokens", usage.OutputTokens),
	)

	return &LLMResponse{Content: choice.Content, Usage: usage}, nil
}

func intFromInfo(info map[string]any, keys ...string) int {
	for _, k := range keys {
		switch v := info[k].(type) {
		case int:
			return v
		case int32:
			return int(v)
		case int64:
			return int(v)
		case float64:
			return int(v)
		}
	}
	return 0
}
