package intelligence

import (
	"context"
	"testing"
	"time"

	"concierge/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testContextStore(t *testing.T) (*RedisContextStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisContextStore(client, 30*time.Minute), mr
}

func TestContextStoreRoundTrip(t *testing.T) {
	store, _ := testContextStore(t)
	ctx := context.Background()

	convCtx := &models.ConversationContext{
		SessionID: "s1",
		Turns: []models.Turn{
			{Customer: "any rooms on the 3rd?", Agent: "Two rooms are open.", Action: models.IntentQuery},
		},
	}
	require.NoError(t, store.Set(ctx, "s1", convCtx))

	loaded, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "s1", loaded.SessionID)
	require.Len(t, loaded.Turns, 1)
	assert.Equal(t, "any rooms on the 3rd?", loaded.Turns[0].Customer)
}

func TestContextStoreMissingSessionIsFresh(t *testing.T) {
	store, _ := testContextStore(t)

	loaded, err := store.Get(context.Background(), "never-seen")
	require.NoError(t, err)
	assert.Equal(t, "never-seen", loaded.SessionID)
	assert.Empty(t, loaded.Turns)
}

func TestContextStoreClear(t *testing.T) {
	store, _ := testContextStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "s1", &models.ConversationContext{SessionID: "s1"}))
	require.NoError(t, store.Clear(ctx, "s1"))

	loaded, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Empty(t, loaded.Turns)
}

func TestContextStoreExpires(t *testing.T) {
	store, mr := testContextStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "s1", &models.ConversationContext{
		SessionID: "s1",
		Turns:     []models.Turn{{Customer: "hello", Agent: "hi"}},
	}))

	mr.FastForward(31 * time.Minute)

	loaded, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Empty(t, loaded.Turns)
}
