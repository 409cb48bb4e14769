package memory

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moonback/Esil-events-v1-sub001/internal/conversation"
	"github.com/moonback/Esil-events-v1-sub001/internal/models"
)

func newTestStore(t *testing.T, ttl time.Duration) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisStoreWithClient(client, ttl), mr
}

func sampleSession(id string) *SessionData {
	return &SessionData{
		SessionID: id,
		Snapshot: conversation.Snapshot{
			ID:      id,
			State:   conversation.State{Status: conversation.AwaitingStep, Step: 2},
			Answers: models.AnswerSet{{StepID: models.StepEventType, Value: "Gala"}, {StepID: models.StepGuestCount, Value: "150"}},
			Transcript: []models.ConversationMessage{
				{Role: "assistant", Message: "Quel type d'événement ?"},
				{Role: "user", Message: "Gala"},
			},
		},
	}
}

func TestRedisStoreSaveAndLoad(t *testing.T) {
	store, mr := newTestStore(t, 30*time.Minute)
	ctx := context.Background()

	require.NoError(t, store.SaveSession(ctx, sampleSession("abc")))
	assert.True(t, mr.Exists("session:abc"))
	assert.Equal(t, 30*time.Minute, mr.TTL("session:abc"))

	got, err := store.LoadSession(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, "abc", got.SessionID)
	assert.Equal(t, conversation.State{Status: conversation.AwaitingStep, Step: 2}, got.Snapshot.State)
	assert.Equal(t, "150", got.Snapshot.Answers[1].Value)
	assert.Equal(t, 2, got.Metadata.MessageCount)
	assert.False(t, got.Metadata.StartedAt.IsZero())
}

func TestRedisStoreLoadMissing(t *testing.T) {
	store, _ := newTestStore(t, time.Minute)

	_, err := store.LoadSession(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestRedisStoreExpiry(t *testing.T) {
	store, mr := newTestStore(t, time.Minute)
	ctx := context.Background()
	require.NoError(t, store.SaveSession(ctx, sampleSession("abc")))

	mr.FastForward(2 * time.Minute)

	exists, err := store.SessionExists(ctx, "abc")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestRedisStoreClearAndActivity(t *testing.T) {
	store, mr := newTestStore(t, time.Minute)
	ctx := context.Background()
	require.NoError(t, store.SaveSession(ctx, sampleSession("abc")))

	mr.FastForward(50 * time.Second)
	require.NoError(t, store.UpdateActivity(ctx, "abc"))
	assert.Equal(t, time.Minute, mr.TTL("session:abc"))

	require.NoError(t, store.ClearSession(ctx, "abc"))
	exists, err := store.SessionExists(ctx, "abc")
	require.NoError(t, err)
	assert.False(t, exists)

	assert.ErrorIs(t, store.UpdateActivity(ctx, "abc"), ErrSessionNotFound)
}

func TestRedisStoreCorruptData(t *testing.T) {
	store, mr := newTestStore(t, time.Minute)
	require.NoError(t, mr.Set("session:bad", "{not json"))

	_, err := store.LoadSession(context.Background(), "bad")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrSessionNotFound)
}

func TestRedisStorePing(t *testing.T) {
	store, mr := newTestStore(t, time.Minute)
	assert.NoError(t, store.Ping(context.Background()))

	mr.Close()
	assert.Error(t, store.Ping(context.Background()))
}
