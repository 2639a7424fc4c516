// Package store defines checkpoint persistence for pipeline state, keyed by
// session so conversations survive across independent query requests.
package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a checkpoint does not exist.
var ErrNotFound = errors.New("checkpoint not found")

// Checkpoint is a saved pipeline state at the end of one query invocation.
type Checkpoint struct {
	ID        string         `json:"id"`
	SessionID string         `json:"session_id"`
	Node      string         `json:"node"`
	State     any            `json:"state"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
	Version   int            `json:"version"`
}

// CheckpointStore persists and restores checkpoints.
type CheckpointStore interface {
	// Save stores a checkpoint.
	Save(ctx context.Context, checkpoint *Checkpoint) error

	// Load retrieves a checkpoint by ID.
	Load(ctx context.Context, checkpointID string) (*Checkpoint, error)

	// Latest returns the most recent checkpoint for a session,
	// or ErrNotFound when the session has none.
	Latest(ctx context.Context, sessionID string) (*Checkpoint, error)

	// List returns all checkpoints for a session, oldest first.
	List(ctx context.Context, sessionID string) ([]*Checkpoint, error)

	// Delete removes a checkpoint.
	Delete(ctx context.Context, checkpointID string) error

	// Clear removes all checkpoints for a session.
	Clear(ctx context.Context, sessionID string) error
}
