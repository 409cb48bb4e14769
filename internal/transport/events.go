package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/moonback/Esil-events-v1-sub001/internal/cart"
	"github.com/moonback/Esil-events-v1-sub001/internal/conversation"
	"github.com/moonback/Esil-events-v1-sub001/internal/logger"
	"github.com/moonback/Esil-events-v1-sub001/internal/models"
)

// Publisher is the subset of *nats.Conn used for fire-and-forget messages.
type Publisher interface {
	Publish(subject string, data []byte) error
}

// TransitionEvent is published on <prefix>.<session_id> after every state change.
type TransitionEvent struct {
	Type        string                       `json:"type"`
	SessionID   string                       `json:"session_id"`
	From        conversation.State           `json:"from"`
	To          conversation.State           `json:"to"`
	Answers     models.AnswerSet             `json:"answers"`
	Result      *models.RecommendationResult `json:"result,omitempty"`
	FailureCode string                       `json:"failure_code,omitempty"`
	UserMessage string                       `json:"user_message,omitempty"`
	OccurredAt  time.Time                    `json:"occurred_at"`
}

const EventTransition = "ASSISTANT_TRANSITION"

// EventPublisher pushes conversation transitions to the presentation layer.
type EventPublisher struct {
	pub    Publisher
	prefix string
	log    *zap.Logger
}

func NewEventPublisher(pub Publisher, prefix string, log *zap.Logger) *EventPublisher {
	return &EventPublisher{pub: pub, prefix: prefix, log: logger.OrNop(log).Named("events")}
}

func (p *EventPublisher) Subject(sessionID string) string {
	return p.prefix + "." + sessionID
}

func (p *EventPublisher) OnTransition(t conversation.Transition) {
	evt := TransitionEvent{
		Type:        EventTransition,
		SessionID:   t.Snapshot.ID,
		From:        t.From,
		To:          t.To,
		Answers:     t.Snapshot.Answers,
		Result:      t.Snapshot.Result,
		FailureCode: t.Snapshot.FailureCode,
		OccurredAt:  time.Now(),
	}
	switch t.To.Status {
	case conversation.Failed:
		evt.UserMessage = t.Snapshot.Failure
	case conversation.Completed:
		evt.UserMessage = models.MessageCompleted
	case conversation.Generating:
		evt.UserMessage = models.MessageGenerating
	}

	data, err := json.Marshal(evt)
	if err != nil {
		p.log.Error("failed to marshal transition", zap.Error(err))
		return
	}
	if err := p.pub.Publish(p.Subject(evt.SessionID), data); err != nil {
		p.log.Warn("failed to publish transition", zap.String("session_id", evt.SessionID), zap.Error(err))
	}
}

// CartSink forwards selected items to the storefront cart service.
type CartSink struct {
	pub     Publisher
	subject string
}

func NewCartSink(pub Publisher, subject string) *CartSink {
	return &CartSink{pub: pub, subject: subject}
}

func (s *CartSink) AddItem(_ context.Context, item cart.Item) error {
	data, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("failed to marshal cart item: %w", err)
	}
	if err := s.pub.Publish(s.subject, data); err != nil {
		return fmt.Errorf("failed to publish cart item: %w", err)
	}
	return nil
}
