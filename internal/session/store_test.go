package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewStore(client, time.Hour), mr
}

func TestStore_CreateAndGet(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	id, err := store.Create(ctx, "alice", false)
	require.NoError(t, err)
	require.NotEmpty(t, id)

	sess, err := store.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "alice", sess.Username)
	assert.False(t, sess.IsAdmin)
	assert.NotNil(t, sess.Answers)
	assert.Empty(t, sess.Answers)
}

func TestStore_GetMissing(t *testing.T) {
	store, _ := newTestStore(t)

	_, err := store.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestStore_SaveAnswerRoundTrip(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	id, err := store.Create(ctx, "bob", false)
	require.NoError(t, err)

	key := AnswerKey("QUIZ", 7, 42)
	assert.Equal(t, "QUIZ:7:42", key)

	err = store.SaveAnswer(ctx, id, key, SavedAnswer{Answer: "B", Flagged: true})
	require.NoError(t, err)

	sess, err := store.Get(ctx, id)
	require.NoError(t, err)
	got, ok := sess.Answers[key]
	require.True(t, ok)
	assert.Equal(t, "B", got.Answer)
	assert.True(t, got.Flagged)
}

func TestStore_Destroy(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	id, err := store.Create(ctx, "dave", true)
	require.NoError(t, err)

	require.NoError(t, store.Destroy(ctx, id))

	_, err = store.Get(ctx, id)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestStore_TouchExpired(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	id, err := store.Create(ctx, "erin", false)
	require.NoError(t, err)

	require.NoError(t, store.Touch(ctx, id))

	mr.FastForward(2 * time.Hour)
	assert.ErrorIs(t, store.Touch(ctx, id), ErrSessionNotFound)
}
