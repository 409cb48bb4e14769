package memory

import (
	"context"
	"errors"
	"time"

	"github.com/moonback/Esil-events-v1-sub001/internal/conversation"
)

// ErrSessionNotFound is returned by a Store when no snapshot exists.
var ErrSessionNotFound = errors.New("session not found")

// SessionData represents all data persisted for a conversation session
type SessionData struct {
	SessionID string                `json:"session_id"`
	Snapshot  conversation.Snapshot `json:"snapshot"`
	Metadata  Metadata              `json:"metadata"`
}

// Metadata contains session information
type Metadata struct {
	StartedAt    time.Time `json:"started_at"`
	LastActivity time.Time `json:"last_activity"`
	MessageCount int       `json:"message_count"`
}

// Store defines the interface for session snapshot storage
type Store interface {
	// LoadSession returns ErrSessionNotFound when nothing is stored
	LoadSession(ctx context.Context, sessionID string) (*SessionData, error)

	// SaveSession overwrites the snapshot and refreshes its expiry
	SaveSession(ctx context.Context, session *SessionData) error

	ClearSession(ctx context.Context, sessionID string) error

	SessionExists(ctx context.Context, sessionID string) (bool, error)

	// UpdateActivity refreshes the expiry of a stored snapshot without
	// rewriting it; ErrSessionNotFound when it has already expired.
	UpdateActivity(ctx context.Context, sessionID string) error
}
