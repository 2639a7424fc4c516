package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RawatRahul14/ragpipe/store"
)

func newTestStore(t *testing.T) *RedisCheckpointStore {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisCheckpointStoreWithClient(client)
}

func newCheckpoint(id, sessionID string, version int) *store.Checkpoint {
	return &store.Checkpoint{
		ID:        id,
		SessionID: sessionID,
		Node:      "finalize",
		State:     map[string]any{"answer": "hello"},
		Timestamp: time.Now().UTC().Truncate(time.Second),
		Version:   version,
	}
}

func TestRedisStoreSaveLoad(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, newCheckpoint("cp-1", "session_abc", 1)))

	loaded, err := s.Load(ctx, "cp-1")
	require.NoError(t, err)
	assert.Equal(t, "session_abc", loaded.SessionID)
	assert.Equal(t, 1, loaded.Version)

	_, err = s.Load(ctx, "missing")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestRedisStoreLatestAndList(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, newCheckpoint("cp-1", "session_abc", 1)))
	require.NoError(t, s.Save(ctx, newCheckpoint("cp-2", "session_abc", 2)))
	require.NoError(t, s.Save(ctx, newCheckpoint("cp-9", "session_other", 1)))

	latest, err := s.Latest(ctx, "session_abc")
	require.NoError(t, err)
	assert.Equal(t, "cp-2", latest.ID)

	cps, err := s.List(ctx, "session_abc")
	require.NoError(t, err)
	require.Len(t, cps, 2)
	assert.Equal(t, "cp-1", cps[0].ID)
	assert.Equal(t, "cp-2", cps[1].ID)

	_, err = s.Latest(ctx, "session_empty")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestRedisStoreOverwriteKeepsOrder(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, newCheckpoint("cp-1", "session_abc", 1)))
	require.NoError(t, s.Save(ctx, newCheckpoint("cp-2", "session_abc", 2)))

	// Re-saving cp-1 must not move it to the end of the session list.
	cp := newCheckpoint("cp-1", "session_abc", 1)
	cp.Node = "generate"
	require.NoError(t, s.Save(ctx, cp))

	latest, err := s.Latest(ctx, "session_abc")
	require.NoError(t, err)
	assert.Equal(t, "cp-2", latest.ID)

	loaded, err := s.Load(ctx, "cp-1")
	require.NoError(t, err)
	assert.Equal(t, "generate", loaded.Node)
}

func TestRedisStoreDeleteAndClear(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, newCheckpoint("cp-1", "session_abc", 1)))
	require.NoError(t, s.Save(ctx, newCheckpoint("cp-2", "session_abc", 2)))

	require.NoError(t, s.Delete(ctx, "cp-2"))
	latest, err := s.Latest(ctx, "session_abc")
	require.NoError(t, err)
	assert.Equal(t, "cp-1", latest.ID)

	require.NoError(t, s.Clear(ctx, "session_abc"))
	_, err = s.Latest(ctx, "session_abc")
	assert.ErrorIs(t, err, store.ErrNotFound)

	assert.NoError(t, s.Delete(ctx, "missing"))
}
