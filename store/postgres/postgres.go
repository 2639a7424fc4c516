// Package postgres provides a PostgreSQL-backed checkpoint store built on
// pgx connection pools.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/RawatRahul14/ragpipe/store"
)

const defaultTableName = "checkpoints"

// DBPool abstracts the pgx pool so tests can substitute a mock.
type DBPool interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Close()
}

// PostgresCheckpointStore persists checkpoints in PostgreSQL. State and
// metadata are stored as JSONB.
type PostgresCheckpointStore struct {
	pool      DBPool
	tableName string
}

// NewPostgresCheckpointStore connects with the given DSN and ensures the
// checkpoint table exists.
func NewPostgresCheckpointStore(ctx context.Context, dsn string) (*PostgresCheckpointStore, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}

	s := &PostgresCheckpointStore{pool: pool, tableName: defaultTableName}
	if err := s.createTable(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

// NewPostgresCheckpointStoreWithPool wraps an existing pool without touching
// the schema. Intended for tests.
func NewPostgresCheckpointStoreWithPool(pool DBPool) *PostgresCheckpointStore {
	return &PostgresCheckpointStore{pool: pool, tableName: defaultTableName}
}

func (s *PostgresCheckpointStore) createTable(ctx context.Context) error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id TEXT PRIMARY KEY,
			session_id TEXT NOT NULL,
			node TEXT NOT NULL,
			state JSONB NOT NULL,
			metadata JSONB,
			timestamp TIMESTAMPTZ NOT NULL,
			version INTEGER NOT NULL
		)
	`, s.tableName)
	if _, err := s.pool.Exec(ctx, query); err != nil {
		return fmt.Errorf("create checkpoint table: %w", err)
	}

	index := fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_%s_session ON %s (session_id, version)`,
		s.tableName, s.tableName)
	if _, err := s.pool.Exec(ctx, index); err != nil {
		return fmt.Errorf("create session index: %w", err)
	}
	return nil
}

func (s *PostgresCheckpointStore) Save(ctx context.Context, checkpoint *store.Checkpoint) error {
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
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			session_id = EXCLUDED.session_id,
			node = EXCLUDED.node,
			state = EXCLUDED.state,
			metadata = EXCLUDED.metadata,
			timestamp = EXCLUDED.timestamp,
			version = EXCLUDED.version
	`, s.tableName)

	_, err = s.pool.Exec(ctx, query,
		checkpoint.ID,
		checkpoint.SessionID,
		checkpoint.Node,
		stateJSON,
		metadataJSON,
		checkpoint.Timestamp.UTC(),
		checkpoint.Version,
	)
	if err != nil {
		return fmt.Errorf("save checkpoint: %w", err)
	}
	return nil
}

func (s *PostgresCheckpointStore) Load(ctx context.Context, checkpointID string) (*store.Checkpoint, error) {
	query := fmt.Sprintf(`
		SELECT id, session_id, node, state, metadata, timestamp, version
		FROM %s WHERE id = $1
	`, s.tableName)

	cp, err := scanCheckpoint(s.pool.QueryRow(ctx, query, checkpointID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load checkpoint: %w", err)
	}
	return cp, nil
}

func (s *PostgresCheckpointStore) Latest(ctx context.Context, sessionID string) (*store.Checkpoint, error) {
	query := fmt.Sprintf(`
		SELECT id, session_id, node, state, metadata, timestamp, version
		FROM %s WHERE session_id = $1
		ORDER BY version DESC, timestamp DESC
		LIMIT 1
	`, s.tableName)

	cp, err := scanCheckpoint(s.pool.QueryRow(ctx, query, sessionID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("latest checkpoint: %w", err)
	}
	return cp, nil
}

func (s *PostgresCheckpointStore) List(ctx context.Context, sessionID string) ([]*store.Checkpoint, error) {
	query := fmt.Sprintf(`
		SELECT id, session_id, node, state, metadata, timestamp, version
		FROM %s WHERE session_id = $1
		ORDER BY version ASC, timestamp ASC
	`, s.tableName)

	rows, err := s.pool.Query(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list checkpoints: %w", err)
	}
	defer rows.Close()

	var cps []*store.Checkpoint
	for rows.Next() {
		cp, err := scanCheckpoint(rows)
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

func (s *PostgresCheckpointStore) Delete(ctx context.Context, checkpointID string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, s.tableName)
	if _, err := s.pool.Exec(ctx, query, checkpointID); err != nil {
		return fmt.Errorf("delete checkpoint: %w", err)
	}
	return nil
}

func (s *PostgresCheckpointStore) Clear(ctx context.Context, sessionID string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE session_id = $1`, s.tableName)
	if _, err := s.pool.Exec(ctx, query, sessionID); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// Close releases the pool.
func (s *PostgresCheckpointStore) Close() error {
	s.pool.Close()
	return nil
}

func scanCheckpoint(row pgx.Row) (*store.Checkpoint, error) {
	var (
		cp           store.Checkpoint
		stateJSON    []byte
		metadataJSON []byte
		timestamp    time.Time
	)
	err := row.Scan(&cp.ID, &cp.SessionID, &cp.Node, &stateJSON, &metadataJSON, &timestamp, &cp.Version)
	if err != nil {
		return nil, err
	}
	cp.Timestamp = timestamp

	if err := json.Unmarshal(stateJSON, &cp.State); err != nil {
		return nil, fmt.Errorf("unmarshal state: %w", err)
	}
	if len(metadataJSON) > 0 && string(metadataJSON) != "null" {
		if err := json.Unmarshal(metadataJSON, &cp.Metadata); err != nil {
			return nil, fmt.Errorf("unmarshal metadata: %w", err)
		}
	}
	return &cp, nil
}
