package conversation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/memory"
	"go.uber.org/zap"

	"github.com/moonback/Esil-events-v1-sub001/internal/logger"
	"github.com/moonback/Esil-events-v1-sub001/internal/metrics"
	"github.com/moonback/Esil-events-v1-sub001/internal/models"
)

// Status is the coarse state of a conversation.
type Status string

const (
	AwaitingStep Status = models.StatusAwaitingStep
	Generating   Status = models.StatusGenerating
	Completed    Status = models.StatusCompleted
	Failed       Status = models.StatusFailed
)

// State is a Status plus, for AwaitingStep, the step index.
type State struct {
	Status Status `json:"status"`
	Step   int    `json:"step"`
}

func (s State) String() string {
	if s.Status == AwaitingStep {
		return fmt.Sprintf("%s(%d)", s.Status, s.Step)
	}
	return string(s.Status)
}

// Snapshot is a consistent copy of a conversation.
type Snapshot struct {
	ID          string                       `json:"id"`
	State       State                        `json:"state"`
	Answers     models.AnswerSet             `json:"answers"`
	Transcript  []models.ConversationMessage `json:"transcript"`
	Result      *models.RecommendationResult `json:"result,omitempty"`
	FailureCode string                       `json:"failure_code,omitempty"`
	Failure     string                       `json:"failure,omitempty"`
	UpdatedAt   time.Time                    `json:"updated_at"`
}

// Transition is pushed to listeners after every state change.
type Transition struct {
	From     State
	To       State
	Snapshot Snapshot
}

// Listener receives transitions in order. The transition carries a snapshot;
// listeners must not call back into the conversation.
type Listener interface {
	OnTransition(t Transition)
}

type ListenerFunc func(t Transition)

func (f ListenerFunc) OnTransition(t Transition) { f(t) }

// Recommender runs the recommendation pipeline for a completed answer set.
type Recommender interface {
	Recommend(ctx context.Context, answers models.AnswerSet) (*models.RecommendationResult, error)
}

type Options struct {
	// PipelineTimeout bounds one Generating run. Zero means no bound.
	PipelineTimeout time.Duration
	Logger          *zap.Logger
	Metrics         *metrics.AssistantMetrics
	Now             func() time.Time
}

// Conversation drives the intake dialogue for one session.
type Conversation struct {
	id          string
	steps       []Step
	recommender Recommender
	opts        Options
	log         *zap.Logger

	mu          sync.Mutex
	state       State
	answers     models.AnswerSet
	transcript  *memory.ConversationBuffer
	result      *models.RecommendationResult
	failureCode string
	failure     string
	updatedAt   time.Time
	epoch       uint64
	cancel      context.CancelFunc

	notifyMu  sync.Mutex
	listeners []Listener

	inflight sync.WaitGroup
}

// New starts a conversation in AwaitingStep(0).
func New(id string, steps []Step, recommender Recommender, opts Options) *Conversation {
	c := newConversation(id, steps, recommender, opts)
	c.mu.Lock()
	c.askLocked(0)
	c.mu.Unlock()
	return c
}

// Restore rebuilds a conversation from a snapshot. A snapshot taken while
// Generating cannot resume its pipeline and comes back as Failed.
func Restore(snap Snapshot, steps []Step, recommender Recommender, opts Options) *Conversation {
	c := newConversation(snap.ID, steps, recommender, opts)
	c.state = snap.State
	c.answers = snap.Answers.Clone()
	c.result = snap.Result
	c.failureCode = snap.FailureCode
	c.failure = snap.Failure
	c.updatedAt = snap.UpdatedAt

	ctx := context.Background()
	for _, m := range snap.Transcript {
		if m.Role == "user" {
			_ = c.transcript.ChatHistory.AddUserMessage(ctx, m.Message)
		} else {
			_ = c.transcript.ChatHistory.AddAIMessage(ctx, m.Message)
		}
	}

	switch {
	case c.state.Status == Generating:
		c.state = State{Status: Failed}
		c.failureCode = models.ErrorNetworkFailure
		c.failure = models.MessageRetry
		_ = c.transcript.ChatHistory.AddAIMessage(ctx, c.failure)
	case c.state.Status == AwaitingStep && (c.state.Step < 0 || c.state.Step >= len(steps)):
		c.resetLocked()
	}
	return c
}

func newConversation(id string, steps []Step, recommender Recommender, opts Options) *Conversation {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Conversation{
		id:          id,
		steps:       steps,
		recommender: recommender,
		opts:        opts,
		log:         logger.OrNop(opts.Logger).Named("conversation").With(zap.String("session_id", id)),
		state:       State{Status: AwaitingStep},
		answers:     models.AnswerSet{},
		transcript:  memory.NewConversationBuffer(),
		updatedAt:   opts.Now(),
	}
}

func (c *Conversation) ID() string { return c.id }

func (c *Conversation) AddListener(l Listener) {
	c.notifyMu.Lock()
	defer c.notifyMu.Unlock()
	c.listeners = append(c.listeners, l)
}

func (c *Conversation) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// CurrentStep returns the step awaiting an answer, if any.
func (c *Conversation) CurrentStep() (Step, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state.Status != AwaitingStep {
		return Step{}, false
	}
	return c.steps[c.state.Step], true
}

func (c *Conversation) StepCount() int { return len(c.steps) }

// StepAt returns the i-th step of the fixed sequence.
func (c *Conversation) StepAt(i int) (Step, bool) {
	if i < 0 || i >= len(c.steps) {
		return Step{}, false
	}
	return c.steps[i], true
}

func (c *Conversation) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// SubmitAnswer records the answer to the current step. A rejected answer
// returns a *models.ValidationError and leaves the state unchanged. While
// Generating the call is ignored. After Completed or Failed it returns
// models.ErrDialogueClosed.
func (c *Conversation) SubmitAnswer(ctx context.Context, raw string) error {
	c.mu.Lock()

	switch c.state.Status {
	case Generating:
		c.mu.Unlock()
		c.log.Debug("answer ignored while generating")
		return nil
	case Completed, Failed:
		c.mu.Unlock()
		return models.ErrDialogueClosed
	}

	step := c.steps[c.state.Step]
	if step.Validate != nil {
		if err := step.Validate(raw); err != nil {
			c.mu.Unlock()
			return &models.ValidationError{StepID: step.ID, Reason: err.Error()}
		}
	}

	value := strings.TrimSpace(raw)
	from := c.state
	c.answers = c.answers.With(step.ID, value)
	_ = c.transcript.ChatHistory.AddUserMessage(ctx, value)

	if next := c.state.Step + 1; next < len(c.steps) {
		c.askLocked(next)
	} else {
		c.startPipelineLocked(ctx)
	}

	c.emit(from)
	return nil
}

// Reset clears the dialogue from any state and cancels an in-flight pipeline.
// A pipeline result arriving afterwards is discarded.
func (c *Conversation) Reset(ctx context.Context) {
	c.mu.Lock()
	from := c.state
	c.resetLocked()
	c.log.Info("conversation reset", zap.Stringer("from", from))
	c.emit(from)
}

// Wait blocks until no pipeline goroutine is running.
func (c *Conversation) Wait() {
	c.inflight.Wait()
}

func (c *Conversation) resetLocked() {
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.epoch++
	c.answers = models.AnswerSet{}
	c.result = nil
	c.failureCode = ""
	c.failure = ""
	_ = c.transcript.Clear(context.Background())
	c.askLocked(0)
}

func (c *Conversation) askLocked(n int) {
	c.state = State{Status: AwaitingStep, Step: n}
	c.updatedAt = c.opts.Now()
	_ = c.transcript.ChatHistory.AddAIMessage(context.Background(), c.steps[n].Prompt)
}

func (c *Conversation) startPipelineLocked(ctx context.Context) {
	c.state = State{Status: Generating}
	c.updatedAt = c.opts.Now()
	_ = c.transcript.ChatHistory.AddAIMessage(ctx, models.MessageGenerating)

	// the pipeline outlives the request that completed the dialogue
	runCtx := context.WithoutCancel(ctx)
	var cancel context.CancelFunc
	if c.opts.PipelineTimeout > 0 {
		runCtx, cancel = context.WithTimeout(runCtx, c.opts.PipelineTimeout)
	} else {
		runCtx, cancel = context.WithCancel(runCtx)
	}
	c.cancel = cancel
	c.epoch++
	epoch := c.epoch
	answers := c.answers.Clone()

	c.inflight.Add(1)
	go func() {
		defer c.inflight.Done()
		defer cancel()
		result, err := c.recommender.Recommend(runCtx, answers)
		c.finish(epoch, result, err)
	}()
}

func (c *Conversation) finish(epoch uint64, result *models.RecommendationResult, err error) {
	c.mu.Lock()
	if epoch != c.epoch || c.state.Status != Generating {
		c.mu.Unlock()
		c.log.Info("discarding stale pipeline result", zap.Uint64("epoch", epoch), zap.Error(err))
		return
	}

	from := c.state
	c.cancel = nil
	c.updatedAt = c.opts.Now()
	ctx := context.Background()

	if err == nil && result == nil {
		err = fmt.Errorf("empty pipeline result: %w", models.ErrMalformedResponse)
	}
	if err != nil {
		c.state = State{Status: Failed}
		c.failureCode = failureCode(err)
		c.failure = models.FailureMessage(err)
		_ = c.transcript.ChatHistory.AddAIMessage(ctx, c.failure)
		c.log.Warn("recommendation failed", zap.String("code", c.failureCode), zap.Error(err))
	} else {
		c.state = State{Status: Completed}
		c.result = result
		msg := models.MessageCompleted
		if result.AdditionalTips != "" {
			msg += "\n" + result.AdditionalTips
		}
		_ = c.transcript.ChatHistory.AddAIMessage(ctx, msg)
		c.log.Info("recommendation completed",
			zap.Int("suggestions", len(result.Suggestions)),
			zap.Int("dropped", result.DroppedCount),
		)
	}

	c.emit(from)
}

// failureCode classifies pipeline errors. Anything unrecognised is a network failure.
func failureCode(err error) string {
	switch {
	case errors.Is(err, models.ErrEmptyCatalog):
		return models.ErrorEmptyCatalog
	case errors.Is(err, models.ErrMalformedResponse):
		return models.ErrorMalformedResponse
	default:
		return models.ErrorNetworkFailure
	}
}

// emit must be called with mu held; it releases mu and notifies listeners
// while holding notifyMu so transitions are delivered in order.
func (c *Conversation) emit(from State) {
	t := Transition{From: from, To: c.state, Snapshot: c.snapshotLocked()}
	c.notifyMu.Lock()
	c.mu.Unlock()
	defer c.notifyMu.Unlock()

	c.opts.Metrics.ObserveTransition(string(t.To.Status))
	for _, l := range c.listeners {
		l.OnTransition(t)
	}
}

func (c *Conversation) snapshotLocked() Snapshot {
	return Snapshot{
		ID:          c.id,
		State:       c.state,
		Answers:     c.answers.Clone(),
		Transcript:  c.transcriptLocked(),
		Result:      c.result,
		FailureCode: c.failureCode,
		Failure:     c.failure,
		UpdatedAt:   c.updatedAt,
	}
}

func (c *Conversation) transcriptLocked() []models.ConversationMessage {
	msgs, err := c.transcript.ChatHistory.Messages(context.Background())
	if err != nil {
		return nil
	}
	out := make([]models.ConversationMessage, 0, len(msgs))
	for _, m := range msgs {
		role := "assistant"
		if m.GetType() == llms.ChatMessageTypeHuman {
			role = "user"
		}
		out = append(out, models.ConversationMessage{Role: role, Message: m.GetContent()})
	}
	return out
}
