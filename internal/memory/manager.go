package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/moonback/Esil-events-v1-sub001/internal/conversation"
	"github.com/moonback/Esil-events-v1-sub001/internal/logger"
	"github.com/moonback/Esil-events-v1-sub001/internal/models"
)

const saveTimeout = 5 * time.Second

type session struct {
	conv      *conversation.Conversation
	startedAt time.Time
	// detached is set once the session leaves the cache; its transitions
	// are no longer persisted or forwarded.
	detached atomic.Bool
}

// Manager keeps live conversations in memory and their snapshots in the Store.
type Manager struct {
	store       Store
	steps       []conversation.Step
	recommender conversation.Recommender
	convOpts    conversation.Options
	log         *zap.Logger

	mu        sync.Mutex
	sessions  map[string]*session // In-memory cache
	listeners []conversation.Listener
}

// NewManager creates a new session manager
func NewManager(store Store, steps []conversation.Step, recommender conversation.Recommender, opts conversation.Options) *Manager {
	return &Manager{
		store:       store,
		steps:       steps,
		recommender: recommender,
		convOpts:    opts,
		log:         logger.OrNop(opts.Logger).Named("sessions"),
		sessions:    make(map[string]*session),
	}
}

// AddListener registers a listener on every conversation created or restored afterwards.
func (m *Manager) AddListener(l conversation.Listener) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listeners = append(m.listeners, l)
}

// Start opens a new conversation with a fresh session id.
func (m *Manager) Start(ctx context.Context) (*conversation.Conversation, error) {
	id := uuid.NewString()
	conv := conversation.New(id, m.steps, m.recommender, m.convOpts)
	s := &session{conv: conv, startedAt: time.Now()}

	if err := m.save(ctx, s, conv.Snapshot()); err != nil {
		return nil, err
	}
	m.attach(s)

	m.log.Info("session started", zap.String("session_id", id))
	return conv, nil
}

// Get returns the live conversation, rehydrating it from the Store on a cache miss.
func (m *Manager) Get(ctx context.Context, sessionID string) (*conversation.Conversation, error) {
	m.mu.Lock()
	if s, ok := m.sessions[sessionID]; ok {
		m.mu.Unlock()
		m.touch(ctx, s)
		return s.conv, nil
	}
	m.mu.Unlock()

	data, err := m.store.LoadSession(ctx, sessionID)
	if errors.Is(err, ErrSessionNotFound) {
		return nil, fmt.Errorf("session %s: %w", sessionID, models.ErrUnknownSession)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", errors.Join(models.ErrNetworkFailure, err))
	}

	data.Snapshot.ID = sessionID
	conv := conversation.Restore(data.Snapshot, m.steps, m.recommender, m.convOpts)
	s := &session{conv: conv, startedAt: data.Metadata.StartedAt}

	restored := conv.Snapshot()
	if restored.State != data.Snapshot.State {
		if err := m.save(ctx, s, restored); err != nil {
			m.log.Warn("failed to persist restored session", zap.String("session_id", sessionID), zap.Error(err))
		}
	}
	conv = m.attach(s)

	m.log.Info("session restored",
		zap.String("session_id", sessionID),
		zap.Stringer("state", restored.State),
		zap.Int("messages", len(restored.Transcript)),
	)
	return conv, nil
}

// attach registers the session unless one with the same id won the race.
func (m *Manager) attach(s *session) *conversation.Conversation {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := s.conv.ID()
	if existing, ok := m.sessions[id]; ok {
		return existing.conv
	}

	extra := append([]conversation.Listener(nil), m.listeners...)
	s.conv.AddListener(conversation.ListenerFunc(func(t conversation.Transition) {
		if s.detached.Load() {
			m.log.Debug("dropping transition of a detached session",
				zap.String("session_id", id),
				zap.Stringer("to", t.To),
			)
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
		defer cancel()
		if err := m.save(ctx, s, t.Snapshot); err != nil {
			m.log.Warn("failed to persist session", zap.String("session_id", id), zap.Error(err))
		}
		for _, l := range extra {
			l.OnTransition(t)
		}
	}))
	m.sessions[id] = s
	return s.conv
}

// touch keeps the stored snapshot alive while the session is in use. A snapshot
// that expired while cached is written back from the live conversation.
func (m *Manager) touch(ctx context.Context, s *session) {
	err := m.store.UpdateActivity(ctx, s.conv.ID())
	if errors.Is(err, ErrSessionNotFound) {
		err = m.save(ctx, s, s.conv.Snapshot())
	}
	if err != nil {
		m.log.Warn("failed to refresh session", zap.String("session_id", s.conv.ID()), zap.Error(err))
	}
}

func (m *Manager) save(ctx context.Context, s *session, snap conversation.Snapshot) error {
	return m.store.SaveSession(ctx, &SessionData{
		SessionID: snap.ID,
		Snapshot:  snap,
		Metadata:  Metadata{StartedAt: s.startedAt},
	})
}

// ClearSession ends a session: any running pipeline is cancelled and the
// snapshot is removed from the store.
func (m *Manager) ClearSession(ctx context.Context, sessionID string) error {
	m.mu.Lock()
	s, ok := m.sessions[sessionID]
	delete(m.sessions, sessionID)
	m.mu.Unlock()

	if ok {
		s.detached.Store(true)
		s.conv.Reset(ctx)
		s.conv.Wait()
	} else {
		exists, err := m.store.SessionExists(ctx, sessionID)
		if err != nil {
			return fmt.Errorf("failed to look up session: %w", errors.Join(models.ErrNetworkFailure, err))
		}
		if !exists {
			return fmt.Errorf("session %s: %w", sessionID, models.ErrUnknownSession)
		}
	}

	if err := m.store.ClearSession(ctx, sessionID); err != nil {
		return fmt.Errorf("failed to clear session from store: %w", err)
	}

	m.log.Info("session cleared", zap.String("session_id", sessionID))
	return nil
}

// EvictIdle drops cached conversations untouched for longer than idle.
// Their snapshots stay in the store until it expires them; an evicted
// instance still held by a caller no longer writes to the store.
func (m *Manager) EvictIdle(idle time.Duration) int {
	cutoff := time.Now().Add(-idle)

	m.mu.Lock()
	defer m.mu.Unlock()

	evicted := 0
	for id, s := range m.sessions {
		snap := s.conv.Snapshot()
		if snap.State.Status == conversation.Generating || snap.UpdatedAt.After(cutoff) {
			continue
		}
		s.detached.Store(true)
		delete(m.sessions, id)
		evicted++
	}
	if evicted > 0 {
		m.log.Debug("evicted idle sessions", zap.Int("count", evicted))
	}
	return evicted
}

// GetActiveSessionCount returns the number of cached sessions
func (m *Manager) GetActiveSessionCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Wait blocks until no cached conversation has a pipeline running.
func (m *Manager) Wait() {
	m.mu.Lock()
	convs := make([]*conversation.Conversation, 0, len(m.sessions))
	for _, s := range m.sessions {
		convs = append(convs, s.conv)
	}
	m.mu.Unlock()

	for _, c := range convs {
		c.Wait()
	}
}

// Close closes the underlying store
func (m *Manager) Close() error {
	if closer, ok := m.store.(interface{ Close() error }); ok {
		return closer.Close()
	}
	return nil
}
