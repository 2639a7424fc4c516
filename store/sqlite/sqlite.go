// Package sqlite provides a SQLite-backed checkpoint store.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/RawatRahul14/ragpipe/store"
)

const defaultTableName = "checkpoints"

// SqliteCheckpointStore persists checkpoints in a SQLite database. State and
// metadata are stored as JSON text.
type SqliteCheckpointStore struct {
	db        *sql.DB
	tableName string
}

// NewSqliteCheckpointStore opens (or creates) the database at path and
// ensures the checkpoint table exists. Use ":memory:" for an ephemeral store.
func NewSqliteCheckpointStore(path string) (*SqliteCheckpointStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	s := &SqliteCheckpointStore{db: db, tableName: defaultTableName}
	if err := s.createTable(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SqliteCheckpointStore) createTable() error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id TEXT PRIMARY KEY,
			session_id TEXT NOT NULL,
			node TEXT NOT NULL,
			state TEXT NOT NULL,
			metadata TEXT,
			timestamp DATETIME NOT NULL,
			version INTEGER NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_%s_session ON %s (session_id, version);
	`, s.tableName, s.tableName, s.tableName)

	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("create checkpoint table: %w", err)
	}
	return nil
}

func (s *SqliteCheckpointStore) Save(ctx context.Context, checkpoint *store.Checkpoint) error {
	stateJSON, err := json.Marshal(checkpoint.State)
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}
	metadataJSON, err := json.Marshal(checkpoint.Metadata)
	if err != nil {
		return fmt.Errorf("marshal metadata: %w", err)
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (id, session_id, node, state, metadata, timestamp, version)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			session_id = excluded.session_id,
			node = excluded.node,
			state = excluded.state,
			metadata = excluded.metadata,
			timestamp = excluded.timestamp,
			version = excluded.version
	`, s.tableName)

	_, err = s.db.ExecContext(ctx, query,
		checkpoint.ID,
		checkpoint.SessionID,
		checkpoint.Node,
		string(stateJSON),
		string(metadataJSON),
		checkpoint.Timestamp.UTC(),
		checkpoint.Version,
	)
	if err != nil {
		return fmt.Errorf("save checkpoint: %w", err)
	}
	return nil
}

func (s *SqliteCheckpointStore) Load(ctx context.Context, checkpointID string) (*store.Checkpoint, error) {
	query := fmt.Sprintf(`
		SELECT id, session_id, node, state, metadata, timestamp, version
		FROM %s WHERE id = ?
	`, s.tableName)

	cp, err := s.scanRow(s.db.QueryRowContext(ctx, query, checkpointID))
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load checkpoint: %w", err)
	}
	return cp, nil
}

func (s *SqliteCheckpointStore) Latest(ctx context.Context, sessionID string) (*store.Checkpoint, error) {
	query := fmt.Sprintf(`
		SELECT id, session_id, node, state, metadata, timestamp, version
		FROM %s WHERE session_id = ?
		ORDER BY version DESC, timestamp DESC
		LIMIT 1
	`, s.tableName)

	cp, err := s.scanRow(s.db.QueryRowContext(ctx, query, sessionID))
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("latest checkpoint: %w", err)
	}
	return cp, nil
}

func (s *SqliteCheckpointStore) List(ctx context.Context, sessionID string) ([]*store.Checkpoint, error) {
	query := fmt.Sprintf(`
		SELECT id, session_id, node, state, metadata, timestamp, version
		FROM %s WHERE session_id = ?
		ORDER BY version ASC, timestamp ASC
	`, s.tableName)

	rows, err := s.db.QueryContext(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list checkpoints: %w", err)
	}
	defer rows.Close()

	var cps []*store.Checkpoint
	for rows.Next() {
		cp, err := s.scanRow(rows)
		if err != nil {
			return nil, fmt.Errorf("list checkpoints: %w", err)
		}
		cps = append(cps, cp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list checkpoints: %w", err)
	}
	return cps, nil
}

func (s *SqliteCheckpointStore) Delete(ctx context.Context, checkpointID string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = ?`, s.tableName)
	if _, err := s.db.ExecContext(ctx, query, checkpointID); err != nil {
		return fmt.Errorf("delete checkpoint: %w", err)
	}
	return nil
}

func (s *SqliteCheckpointStore) Clear(ctx context.Context, sessionID string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE session_id = ?`, s.tableName)
	if _, err := s.db.ExecContext(ctx, query, sessionID); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (s *SqliteCheckpointStore) Close() error {
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (s *SqliteCheckpointStore) scanRow(row rowScanner) (*store.Checkpoint, error) {
	var (
		cp           store.Checkpoint
		stateJSON    string
		metadataJSON sql.NullString
		timestamp    time.Time
	)
	err := row.Scan(&cp.ID, &cp.SessionID, &cp.Node, &stateJSON, &metadataJSON, &timestamp, &cp.Version)
	if err != nil {
		return nil, err
	}
	cp.Timestamp = timestamp

	if err := json.Unmarshal([]byte(stateJSON), &cp.State); err != nil {
		return nil, fmt.Errorf("unmarshal state: %w", err)
	}
	if metadataJSON.Valid && metadataJSON.String != "null" {
		if err := json.Unmarshal([]byte(metadataJSON.String), &cp.Metadata); err != nil {
			return nil, fmt.Errorf("unmarshal metadata: %w", err)
		}
	}
	return &cp, nil
}
