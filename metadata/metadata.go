// Package metadata records per-session upload metadata in an external
// document store. The service works without one; use NopStore when no
// MongoDB URI is configured.
package metadata

import (
	"context"
	"time"

	"github.com/RawatRahul14/ragpipe/extract"
)

// Record is the per-session document kept in the metadata store. It is
// upserted on every upload, keyed by SessionID.
type Record struct {
	SessionID     string             `bson:"session_id" json:"session_id"`
	UploadedFiles []extract.FileInfo `bson:"uploaded_files" json:"uploaded_files"`
	UploadedAt    time.Time          `bson:"uploaded_at" json:"uploaded_at"`
}

// Store persists upload records.
type Store interface {
	// SaveUpload upserts the record for its session.
	SaveUpload(ctx context.Context, record *Record) error

	// Close releases the underlying connection.
	Close(ctx context.Context) error
}

// NopStore discards all records.
type NopStore struct{}

func (NopStore) SaveUpload(ctx context.Context, record *Record) error { return nil }

func (NopStore) Close(ctx context.Context) error { return nil }
