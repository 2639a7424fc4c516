// Package memory provides an in-memory checkpoint store for tests and
// single-process deployments.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/RawatRahul14/ragpipe/store"
)

// MemoryCheckpointStore keeps checkpoints in process memory.
type MemoryCheckpointStore struct {
	mu          sync.RWMutex
	checkpoints map[string]*store.Checkpoint
	sessions    map[string][]string
}

// NewMemoryCheckpointStore creates an empty in-memory store.
func NewMemoryCheckpointStore() *MemoryCheckpointStore {
	return &MemoryCheckpointStore{
		checkpoints: make(map[string]*store.Checkpoint),
		sessions:    make(map[string][]string),
	}
}

func (s *MemoryCheckpointStore) Save(ctx context.Context, checkpoint *store.Checkpoint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *checkpoint
	if _, exists := s.checkpoints[cp.ID]; !exists {
		s.sessions[cp.SessionID] = append(s.sessions[cp.SessionID], cp.ID)
	}
	s.checkpoints[cp.ID] = &cp
	return nil
}

func (s *MemoryCheckpointStore) Load(ctx context.Context, checkpointID string) (*store.Checkpoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cp, ok := s.checkpoints[checkpointID]
	if !ok {
		return nil, store.ErrNotFound
	}
	copied := *cp
	return &copied, nil
}

func (s *MemoryCheckpointStore) Latest(ctx context.Context, sessionID string) (*store.Checkpoint, error) {
	cps, err := s.List(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if len(cps) == 0 {
		return nil, store.ErrNotFound
	}
	return cps[len(cps)-1], nil
}

func (s *MemoryCheckpointStore) List(ctx context.Context, sessionID string) ([]*store.Checkpoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := s.sessions[sessionID]
	cps := make([]*store.Checkpoint, 0, len(ids))
	for _, id := range ids {
		if cp, ok := s.checkpoints[id]; ok {
			copied := *cp
			cps = append(cps, &copied)
		}
	}
	sort.SliceStable(cps, func(i, j int) bool {
		if cps[i].Version != cps[j].Version {
			return cps[i].Version < cps[j].Version
		}
		return cps[i].Timestamp.Before(cps[j].Timestamp)
	})
	return cps, nil
}

func (s *MemoryCheckpointStore) Delete(ctx context.Context, checkpointID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp, ok := s.checkpoints[checkpointID]
	if !ok {
		return nil
	}
	delete(s.checkpoints, checkpointID)

	ids := s.sessions[cp.SessionID]
	for i, id := range ids {
		if id == checkpointID {
			s.sessions[cp.SessionID] = append(ids[:i], ids[i+1:]...)
			break
		}
	}
	return nil
}

func (s *MemoryCheckpointStore) Clear(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range s.sessions[sessionID] {
		delete(s.checkpoints, id)
	}
	delete(s.sessions, sessionID)
	return nil
}
