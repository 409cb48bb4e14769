package handlers

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/moonback/Esil-events-v1-sub001/internal/cart"
	"github.com/moonback/Esil-events-v1-sub001/internal/conversation"
	"github.com/moonback/Esil-events-v1-sub001/internal/logger"
	"github.com/moonback/Esil-events-v1-sub001/internal/models"
)

// SessionManager opens and finds conversations.
type SessionManager interface {
	Start(ctx context.Context) (*conversation.Conversation, error)
	Get(ctx context.Context, sessionID string) (*conversation.Conversation, error)
	ClearSession(ctx context.Context, sessionID string) error
}

type AssistantHandler struct {
	sessions SessionManager
	cart     cart.Sink
	log      *zap.Logger
}

func NewAssistantHandler(sessions SessionManager, sink cart.Sink, log *zap.Logger) *AssistantHandler {
	return &AssistantHandler{
		sessions: sessions,
		cart:     sink,
		log:      logger.OrNop(log).Named("handler"),
	}
}

// ProcessRequest runs one storefront action. Failures are reported in the
// response; the returned error is reserved for transport problems.
func (h *AssistantHandler) ProcessRequest(ctx context.Context, request *models.AssistantRequest) (*models.AssistantResponse, error) {
	if err := h.validateRequest(request); err != nil {
		return h.createErrorResponse(request, models.ErrorBadRequest, err.Error()), nil
	}

	if request.Action == models.ActionStart {
		conv, err := h.sessions.Start(ctx)
		if err != nil {
			h.log.Error("failed to start session", zap.Error(err))
			return h.createErrorResponse(request, models.ErrorInternal, err.Error()), nil
		}
		return h.buildResponse(conv), nil
	}

	if request.Action == models.ActionEnd {
		return h.end(ctx, request), nil
	}

	conv, err := h.sessions.Get(ctx, request.SessionID)
	if err != nil {
		code := models.ErrorCode(err)
		if code != models.ErrorUnknownSession {
			h.log.Error("failed to load session", zap.String("session_id", request.SessionID), zap.Error(err))
		}
		return h.createErrorResponse(request, code, err.Error()), nil
	}

	switch request.Action {
	case models.ActionAnswer:
		return h.answer(ctx, conv, request.Answer), nil
	case models.ActionReset:
		conv.Reset(ctx)
		return h.buildResponse(conv), nil
	case models.ActionState:
		return h.buildResponse(conv), nil
	case models.ActionAddToCart:
		return h.addToCart(ctx, conv, request.SuggestionID), nil
	default:
		return h.createErrorResponse(request, models.ErrorBadRequest, fmt.Sprintf("unknown action %q", request.Action)), nil
	}
}

func (h *AssistantHandler) validateRequest(request *models.AssistantRequest) error {
	if request.Action == "" {
		return fmt.Errorf("action is required")
	}
	if request.Action != models.ActionStart && request.SessionID == "" {
		return fmt.Errorf("session_id is required")
	}
	if request.Action == models.ActionAddToCart && request.SuggestionID == "" {
		return fmt.Errorf("suggestion_id is required")
	}
	return nil
}

func (h *AssistantHandler) end(ctx context.Context, request *models.AssistantRequest) *models.AssistantResponse {
	if err := h.sessions.ClearSession(ctx, request.SessionID); err != nil {
		code := models.ErrorCode(err)
		if code != models.ErrorUnknownSession {
			h.log.Error("failed to end session", zap.String("session_id", request.SessionID), zap.Error(err))
		}
		return h.createErrorResponse(request, code, err.Error())
	}
	return &models.AssistantResponse{
		SessionID:   request.SessionID,
		Status:      models.StatusEnded,
		Answers:     []models.Answer{},
		UserMessage: models.MessageEnded,
	}
}

func (h *AssistantHandler) answer(ctx context.Context, conv *conversation.Conversation, raw string) *models.AssistantResponse {
	err := conv.SubmitAnswer(ctx, raw)
	response := h.buildResponse(conv)
	if err == nil {
		return response
	}

	code := models.ErrorCode(err)
	message := err.Error()
	var verr *models.ValidationError
	if errors.As(err, &verr) {
		response.UserMessage = verr.Reason
	}
	response.ErrorCode = &code
	response.ErrorMessage = &message
	return response
}

func (h *AssistantHandler) addToCart(ctx context.Context, conv *conversation.Conversation, suggestionID string) *models.AssistantResponse {
	snap := conv.Snapshot()
	response := h.responseFromSnapshot(conv, snap)

	var result *models.RecommendationResult
	if snap.State.Status == conversation.Completed {
		result = snap.Result
	}
	item, err := cart.FromResult(snap.ID, result, suggestionID)
	if err == nil {
		err = h.cart.AddItem(ctx, item)
		if err != nil {
			h.log.Error("failed to emit cart item", zap.String("session_id", snap.ID), zap.Error(err))
			err = errors.Join(models.ErrNetworkFailure, err)
		}
	}
	if err != nil {
		code := models.ErrorCode(err)
		message := err.Error()
		response.ErrorCode = &code
		response.ErrorMessage = &message
		return response
	}

	h.log.Info("suggestion added to cart",
		zap.String("session_id", snap.ID),
		zap.String("product_id", item.ProductID),
		zap.Float64("price", item.Price),
	)
	response.UserMessage = fmt.Sprintf("« %s » a été ajouté à votre devis.", item.Name)
	return response
}

func (h *AssistantHandler) buildResponse(conv *conversation.Conversation) *models.AssistantResponse {
	return h.responseFromSnapshot(conv, conv.Snapshot())
}

func (h *AssistantHandler) responseFromSnapshot(conv *conversation.Conversation, snap conversation.Snapshot) *models.AssistantResponse {
	response := &models.AssistantResponse{
		SessionID:  snap.ID,
		Status:     string(snap.State.Status),
		Answers:    snap.Answers,
		Transcript: snap.Transcript,
		Result:     snap.Result,
	}

	switch snap.State.Status {
	case conversation.AwaitingStep:
		if step, ok := conv.StepAt(snap.State.Step); ok {
			response.Step = &models.StepView{
				ID:      step.ID,
				Index:   snap.State.Step,
				Total:   conv.StepCount(),
				Prompt:  step.Prompt,
				Kind:    string(step.Kind),
				Choices: step.Choices,
			}
			response.UserMessage = step.Prompt
		}
	case conversation.Generating:
		response.UserMessage = models.MessageGenerating
	case conversation.Completed:
		response.UserMessage = models.MessageCompleted
	case conversation.Failed:
		code := snap.FailureCode
		response.ErrorCode = &code
		response.UserMessage = snap.Failure
	}

	return response
}

func (h *AssistantHandler) createErrorResponse(request *models.AssistantRequest, errorCode, errorMessage string) *models.AssistantResponse {
	return &models.AssistantResponse{
		SessionID:    request.SessionID,
		Status:       models.StatusError,
		Answers:      []models.Answer{},
		UserMessage:  models.FallbackMessage,
		ErrorCode:    &errorCode,
		ErrorMessage: &errorMessage,
	}
}
