package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RawatRahul14/ragpipe/store"
)

func newCheckpoint(id, sessionID string, version int) *store.Checkpoint {
	return &store.Checkpoint{
		ID:        id,
		SessionID: sessionID,
		Node:      "finalize",
		State:     map[string]any{"answer": "hello"},
		Timestamp: time.Now(),
		Version:   version,
	}
}

func TestMemoryStoreSaveLoad(t *testing.T) {
	s := NewMemoryCheckpointStore()
	ctx := context.Background()

	cp := newCheckpoint("cp-1", "session_abc", 1)
	require.NoError(t, s.Save(ctx, cp))

	loaded, err := s.Load(ctx, "cp-1")
	require.NoError(t, err)
	assert.Equal(t, "session_abc", loaded.SessionID)
	assert.Equal(t, "finalize", loaded.Node)

	_, err = s.Load(ctx, "missing")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestMemoryStoreLatest(t *testing.T) {
	s := NewMemoryCheckpointStore()
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, newCheckpoint("cp-1", "session_abc", 1)))
	require.NoError(t, s.Save(ctx, newCheckpoint("cp-2", "session_abc", 2)))
	require.NoError(t, s.Save(ctx, newCheckpoint("cp-3", "session_other", 1)))

	latest, err := s.Latest(ctx, "session_abc")
	require.NoError(t, err)
	assert.Equal(t, "cp-2", latest.ID)

	_, err = s.Latest(ctx, "session_empty")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestMemoryStoreList(t *testing.T) {
	s := NewMemoryCheckpointStore()
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, newCheckpoint("cp-2", "session_abc", 2)))
	require.NoError(t, s.Save(ctx, newCheckpoint("cp-1", "session_abc", 1)))

	cps, err := s.List(ctx, "session_abc")
	require.NoError(t, err)
	require.Len(t, cps, 2)
	assert.Equal(t, "cp-1", cps[0].ID)
	assert.Equal(t, "cp-2", cps[1].ID)
}

func TestMemoryStoreDeleteAndClear(t *testing.T) {
	s := NewMemoryCheckpointStore()
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, newCheckpoint("cp-1", "session_abc", 1)))
	require.NoError(t, s.Save(ctx, newCheckpoint("cp-2", "session_abc", 2)))

	require.NoError(t, s.Delete(ctx, "cp-1"))
	_, err := s.Load(ctx, "cp-1")
	assert.ErrorIs(t, err, store.ErrNotFound)

	latest, err := s.Latest(ctx, "session_abc")
	require.NoError(t, err)
	assert.Equal(t, "cp-2", latest.ID)

	require.NoError(t, s.Clear(ctx, "session_abc"))
	_, err = s.Latest(ctx, "session_abc")
	assert.ErrorIs(t, err, store.ErrNotFound)

	// Deleting an unknown ID is a no-op.
	assert.NoError(t, s.Delete(ctx, "missing"))
}

func TestMemoryStoreCopiesOnSave(t *testing.T) {
	s := NewMemoryCheckpointStore()
	ctx := context.Background()

	cp := newCheckpoint("cp-1", "session_abc", 1)
	require.NoError(t, s.Save(ctx, cp))

	cp.Node = "mutated"
	loaded, err := s.Load(ctx, "cp-1")
	require.NoError(t, err)
	assert.Equal(t, "finalize", loaded.Node)
}
