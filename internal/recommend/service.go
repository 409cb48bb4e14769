package recommend

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/moonback/Esil-events-v1-sub001/internal/budget"
	"github.com/moonback/Esil-events-v1-sub001/internal/catalog"
	"github.com/moonback/Esil-events-v1-sub001/internal/llm"
	"github.com/moonback/Esil-events-v1-sub001/internal/logger"
	"github.com/moonback/Esil-events-v1-sub001/internal/metrics"
	"github.com/moonback/Esil-events-v1-sub001/internal/models"
	"github.com/moonback/Esil-events-v1-sub001/internal/prompts"
)

// CandidateSource is the catalog side of the pipeline.
type CandidateSource interface {
	Candidates(ctx context.Context, q catalog.Query) (*catalog.Result, error)
}

type Options struct {
	MaxTokens   int
	Temperature float64
}

func DefaultOptions() Options {
	return Options{MaxTokens: 2000, Temperature: 0.7}
}

// Service runs one recommendation: catalog, prompt, model, parse, validate.
type Service struct {
	catalog  CandidateSource
	provider llm.LLMProvider
	policy   budget.Policy
	opts     Options
	now      func() time.Time
	log      *zap.Logger
	metrics  *metrics.AssistantMetrics
}

func NewService(source CandidateSource, provider llm.LLMProvider, policy budget.Policy, opts Options, log *zap.Logger, m *metrics.AssistantMetrics) *Service {
	return &Service{
		catalog:  source,
		provider: provider,
		policy:   policy,
		opts:     opts,
		now:      time.Now,
		log:      logger.OrNop(log).Named("recommend"),
		metrics:  m,
	}
}

// Recommend runs the pipeline for a completed answer set. Errors wrap one of
// models.ErrEmptyCatalog, models.ErrNetworkFailure or models.ErrMalformedResponse.
func (s *Service) Recommend(ctx context.Context, answers models.AnswerSet) (*models.RecommendationResult, error) {
	result, err := s.recommend(ctx, answers)
	s.metrics.ObservePipeline(outcome(err))
	return result, err
}

func (s *Service) recommend(ctx context.Context, answers models.AnswerSet) (*models.RecommendationResult, error) {
	params := models.ParamsFromAnswers(answers)

	found, err := s.catalog.Candidates(ctx, catalog.Query{
		EventType: params.EventType,
		Guests:    params.Guests,
		Budget:    params.Budget,
	})
	if err != nil {
		return nil, err
	}

	request := &models.RecommendationRequest{
		Answers:    answers.Clone(),
		EventType:  params.EventType,
		Essentials: found.Profile.Essentials,
		Candidates: found.Candidates,
		Allocation: s.policy.Allocate(params.Budget),
		Fallback:   found.Fallback,
	}

	prompt, err := prompts.BuildRecommendationPrompt(request)
	if err != nil {
		return nil, fmt.Errorf("build prompt: %w", errors.Join(models.ErrMalformedResponse, err))
	}

	s.log.Info("requesting suggestions",
		zap.String("event_type", params.EventType),
		zap.Int("candidates", len(request.Candidates)),
		zap.Bool("fallback", request.Fallback),
	)

	resp, err := s.provider.Complete(ctx, &llm.LLMRequest{
		Prompt:      prompt,
		MaxTokens:   s.opts.MaxTokens,
		Temperature: s.opts.Temperature,
	})
	if err != nil {
		if !errors.Is(err, models.ErrMalformedResponse) && !errors.Is(err, models.ErrNetworkFailure) {
			err = errors.Join(models.ErrNetworkFailure, err)
		}
		return nil, fmt.Errorf("model call: %w", err)
	}

	reply, err := prompts.ParseRecommendationResponse(resp.Content)
	if err != nil {
		s.log.Warn("unusable model reply", zap.Error(err), zap.Int("length", len(resp.Content)))
		return nil, err
	}

	kept, dropped := ValidateSuggestions(reply.Suggestions, request.Candidates, s.log, s.metrics)
	if dropped > 0 {
		s.log.Info("suggestions dropped", zap.Int("dropped", dropped), zap.Int("kept", len(kept)))
	}

	return &models.RecommendationResult{
		Suggestions:    kept,
		AdditionalTips: reply.AdditionalTips,
		CandidateCount: len(request.Candidates),
		DroppedCount:   dropped,
		Fallback:       request.Fallback,
		GeneratedAt:    s.now().UTC(),
	}, nil
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "completed"
	case errors.Is(err, models.ErrEmptyCatalog):
		return "empty_catalog"
	case errors.Is(err, models.ErrMalformedResponse):
		return "malformed_response"
	case errors.Is(err, context.Canceled):
		return "canceled"
	default:
		return "network_failure"
	}
}
