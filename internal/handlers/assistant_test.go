package handlers

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moonback/Esil-events-v1-sub001/internal/cart"
	"github.com/moonback/Esil-events-v1-sub001/internal/conversation"
	"github.com/moonback/Esil-events-v1-sub001/internal/models"
)

var fixedNow = func() time.Time { return time.Date(2025, 1, 10, 9, 0, 0, 0, time.UTC) }

var answers = []string{"Mariage", "80", "2027-06-12", "Extérieur", "3000", "Chic", ""}

type fixedRecommender struct {
	result *models.RecommendationResult
	err    error
}

func (f fixedRecommender) Recommend(context.Context, models.AnswerSet) (*models.RecommendationResult, error) {
	return f.result, f.err
}

type fakeSessions struct {
	mu    sync.Mutex
	rec   conversation.Recommender
	convs map[string]*conversation.Conversation
	next  int
}

func newFakeSessions(rec conversation.Recommender) *fakeSessions {
	return &fakeSessions{rec: rec, convs: map[string]*conversation.Conversation{}}
}

func (f *fakeSessions) Start(context.Context) (*conversation.Conversation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.next++
	id := fmt.Sprintf("s-%d", f.next)
	c := conversation.New(id, conversation.DefaultSteps(fixedNow), f.rec, conversation.Options{Now: fixedNow})
	f.convs[id] = c
	return c, nil
}

func (f *fakeSessions) Get(_ context.Context, id string) (*conversation.Conversation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.convs[id]
	if !ok {
		return nil, fmt.Errorf("session %s: %w", id, models.ErrUnknownSession)
	}
	return c, nil
}

func (f *fakeSessions) ClearSession(ctx context.Context, id string) error {
	f.mu.Lock()
	c, ok := f.convs[id]
	delete(f.convs, id)
	f.mu.Unlock()
	if !ok {
		return fmt.Errorf("session %s: %w", id, models.ErrUnknownSession)
	}
	c.Reset(ctx)
	c.Wait()
	return nil
}

type recordingSink struct {
	mu    sync.Mutex
	items []cart.Item
	err   error
}

func (r *recordingSink) AddItem(_ context.Context, item cart.Item) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.items = append(r.items, item)
	return nil
}

func weddingResult() *models.RecommendationResult {
	return &models.RecommendationResult{
		Suggestions: []models.ProductSuggestion{
			{Kind: models.KindPackage, ID: "deco-arche-florale", Name: "Pack cérémonie", TotalPrice: 1430, Items: []string{"Arche", "Centres de table"}},
			{Kind: models.KindProduct, ID: "mob-table-ronde", Name: "Table ronde", Price: 1200},
		},
		AdditionalTips: "Réservez tôt.",
	}
}

func call(t *testing.T, h *AssistantHandler, req models.AssistantRequest) *models.AssistantResponse {
	t.Helper()
	resp, err := h.ProcessRequest(context.Background(), &req)
	require.NoError(t, err)
	require.NotNil(t, resp)
	return resp
}

func completeDialogue(t *testing.T, h *AssistantHandler, sessions *fakeSessions) string {
	t.Helper()
	start := call(t, h, models.AssistantRequest{Action: models.ActionStart})
	for _, a := range answers {
		call(t, h, models.AssistantRequest{Action: models.ActionAnswer, SessionID: start.SessionID, Answer: a})
	}
	conv, err := sessions.Get(context.Background(), start.SessionID)
	require.NoError(t, err)
	conv.Wait()
	return start.SessionID
}

func TestStartReturnsFirstStep(t *testing.T) {
	h := NewAssistantHandler(newFakeSessions(fixedRecommender{}), &recordingSink{}, nil)

	resp := call(t, h, models.AssistantRequest{Action: models.ActionStart})
	assert.NotEmpty(t, resp.SessionID)
	assert.Equal(t, models.StatusAwaitingStep, resp.Status)
	require.NotNil(t, resp.Step)
	assert.Equal(t, models.StepEventType, resp.Step.ID)
	assert.Equal(t, 0, resp.Step.Index)
	assert.Equal(t, 7, resp.Step.Total)
	assert.Equal(t, "choice", resp.Step.Kind)
	assert.Contains(t, resp.Step.Choices, "Mariage")
	assert.Equal(t, resp.Step.Prompt, resp.UserMessage)
	assert.Nil(t, resp.ErrorCode)
}

func TestAnswerValidationError(t *testing.T) {
	h := NewAssistantHandler(newFakeSessions(fixedRecommender{}), &recordingSink{}, nil)
	start := call(t, h, models.AssistantRequest{Action: models.ActionStart})
	call(t, h, models.AssistantRequest{Action: models.ActionAnswer, SessionID: start.SessionID, Answer: "Mariage"})

	resp := call(t, h, models.AssistantRequest{Action: models.ActionAnswer, SessionID: start.SessionID, Answer: "-3"})
	assert.Equal(t, models.StatusAwaitingStep, resp.Status)
	require.NotNil(t, resp.ErrorCode)
	assert.Equal(t, models.ErrorValidation, *resp.ErrorCode)
	assert.Equal(t, models.StepGuestCount, resp.Step.ID)
	assert.Contains(t, resp.UserMessage, "compris entre")
	assert.Len(t, resp.Answers, 1)
}

func TestFullDialogueAndCart(t *testing.T) {
	sessions := newFakeSessions(fixedRecommender{result: weddingResult()})
	sink := &recordingSink{}
	h := NewAssistantHandler(sessions, sink, nil)

	id := completeDialogue(t, h, sessions)

	state := call(t, h, models.AssistantRequest{Action: models.ActionState, SessionID: id})
	assert.Equal(t, models.StatusCompleted, state.Status)
	require.NotNil(t, state.Result)
	assert.Len(t, state.Result.Suggestions, 2)
	assert.Nil(t, state.Step)

	resp := call(t, h, models.AssistantRequest{Action: models.ActionAddToCart, SessionID: id, SuggestionID: "deco-arche-florale"})
	assert.Nil(t, resp.ErrorCode)
	assert.Contains(t, resp.UserMessage, "Pack cérémonie")

	require.Len(t, sink.items, 1)
	assert.Equal(t, 1430.0, sink.items[0].Price)
	assert.Equal(t, id, sink.items[0].SessionID)

	resp = call(t, h, models.AssistantRequest{Action: models.ActionAddToCart, SessionID: id, SuggestionID: "invented"})
	require.NotNil(t, resp.ErrorCode)
	assert.Equal(t, models.ErrorUnknownSuggestion, *resp.ErrorCode)
	assert.Len(t, sink.items, 1)
}

func TestAddToCartBeforeCompletion(t *testing.T) {
	sink := &recordingSink{}
	h := NewAssistantHandler(newFakeSessions(fixedRecommender{}), sink, nil)
	start := call(t, h, models.AssistantRequest{Action: models.ActionStart})

	resp := call(t, h, models.AssistantRequest{Action: models.ActionAddToCart, SessionID: start.SessionID, SuggestionID: "mob-table-ronde"})
	require.NotNil(t, resp.ErrorCode)
	assert.Equal(t, models.ErrorUnknownSuggestion, *resp.ErrorCode)
	assert.Empty(t, sink.items)
}

func TestAddToCartSinkFailure(t *testing.T) {
	sessions := newFakeSessions(fixedRecommender{result: weddingResult()})
	sink := &recordingSink{err: errors.New("nats: no responders")}
	h := NewAssistantHandler(sessions, sink, nil)
	id := completeDialogue(t, h, sessions)

	resp := call(t, h, models.AssistantRequest{Action: models.ActionAddToCart, SessionID: id, SuggestionID: "mob-table-ronde"})
	require.NotNil(t, resp.ErrorCode)
	assert.Equal(t, models.ErrorNetworkFailure, *resp.ErrorCode)
}

func TestFailedDialogueAndReset(t *testing.T) {
	sessions := newFakeSessions(fixedRecommender{err: models.ErrEmptyCatalog})
	h := NewAssistantHandler(sessions, &recordingSink{}, nil)
	id := completeDialogue(t, h, sessions)

	state := call(t, h, models.AssistantRequest{Action: models.ActionState, SessionID: id})
	assert.Equal(t, models.StatusFailed, state.Status)
	require.NotNil(t, state.ErrorCode)
	assert.Equal(t, models.ErrorEmptyCatalog, *state.ErrorCode)
	assert.Equal(t, models.MessageEmptyCatalog, state.UserMessage)

	closed := call(t, h, models.AssistantRequest{Action: models.ActionAnswer, SessionID: id, Answer: "Gala"})
	require.NotNil(t, closed.ErrorCode)
	assert.Equal(t, models.ErrorDialogueClosed, *closed.ErrorCode)

	reset := call(t, h, models.AssistantRequest{Action: models.ActionReset, SessionID: id})
	assert.Equal(t, models.StatusAwaitingStep, reset.Status)
	assert.Equal(t, 0, reset.Step.Index)
	assert.Empty(t, reset.Answers)
	assert.Nil(t, reset.ErrorCode)
}

func TestRequestErrors(t *testing.T) {
	h := NewAssistantHandler(newFakeSessions(fixedRecommender{}), &recordingSink{}, nil)

	tests := []struct {
		name string
		req  models.AssistantRequest
		code string
	}{
		{"missing action", models.AssistantRequest{SessionID: "x"}, models.ErrorBadRequest},
		{"missing session", models.AssistantRequest{Action: models.ActionState}, models.ErrorBadRequest},
		{"missing suggestion", models.AssistantRequest{Action: models.ActionAddToCart, SessionID: "x"}, models.ErrorBadRequest},
		{"unknown session", models.AssistantRequest{Action: models.ActionState, SessionID: "ghost"}, models.ErrorUnknownSession},
		{"end unknown session", models.AssistantRequest{Action: models.ActionEnd, SessionID: "ghost"}, models.ErrorUnknownSession},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := call(t, h, tt.req)
			assert.Equal(t, models.StatusError, resp.Status)
			require.NotNil(t, resp.ErrorCode)
			assert.Equal(t, tt.code, *resp.ErrorCode)
			assert.Equal(t, models.FallbackMessage, resp.UserMessage)
		})
	}

	start := call(t, h, models.AssistantRequest{Action: models.ActionStart})
	resp := call(t, h, models.AssistantRequest{Action: "dance", SessionID: start.SessionID})
	require.NotNil(t, resp.ErrorCode)
	assert.Equal(t, models.ErrorBadRequest, *resp.ErrorCode)
}

func TestEndClosesSession(t *testing.T) {
	sessions := newFakeSessions(fixedRecommender{})
	h := NewAssistantHandler(sessions, &recordingSink{}, nil)

	start := call(t, h, models.AssistantRequest{Action: models.ActionStart})
	call(t, h, models.AssistantRequest{Action: models.ActionAnswer, SessionID: start.SessionID, Answer: "Mariage"})

	resp := call(t, h, models.AssistantRequest{Action: models.ActionEnd, SessionID: start.SessionID})
	assert.Equal(t, models.StatusEnded, resp.Status)
	assert.Equal(t, models.MessageEnded, resp.UserMessage)
	assert.Nil(t, resp.ErrorCode)

	resp = call(t, h, models.AssistantRequest{Action: models.ActionState, SessionID: start.SessionID})
	require.NotNil(t, resp.ErrorCode)
	assert.Equal(t, models.ErrorUnknownSession, *resp.ErrorCode)
}
