// Package redis provides a Redis-backed checkpoint store.
package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/RawatRahul14/ragpipe/store"
)

const defaultKeyPrefix = "ragpipe:checkpoint:"

// RedisCheckpointStore persists checkpoints in Redis. Each checkpoint is a
// JSON value under its own key; a per-session list keeps insertion order so
// Latest and List stay cheap.
type RedisCheckpointStore struct {
	client *redis.Client
	prefix string
}

// NewRedisCheckpointStore connects to Redis and verifies the connection.
func NewRedisCheckpointStore(ctx context.Context, addr, password string, db int) (*RedisCheckpointStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	return &RedisCheckpointStore{client: client, prefix: defaultKeyPrefix}, nil
}

// NewRedisCheckpointStoreWithClient wraps an existing client.
func NewRedisCheckpointStoreWithClient(client *redis.Client) *RedisCheckpointStore {
	return &RedisCheckpointStore{client: client, prefix: defaultKeyPrefix}
}

func (s *RedisCheckpointStore) checkpointKey(id string) string {
	return s.prefix + "cp:" + id
}

func (s *RedisCheckpointStore) sessionKey(sessionID string) string {
	return s.prefix + "session:" + sessionID
}

func (s *RedisCheckpointStore) Save(ctx context.Context, checkpoint *store.Checkpoint) error {
	data, err := json.Marshal(checkpoint)
	if err != nil {
		return fmt.Errorf("marshal checkpoint: %w", err)
	}

	exists, err := s.client.Exists(ctx, s.checkpointKey(checkpoint.ID)).Result()
	if err != nil {
		return fmt.Errorf("check checkpoint: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, s.checkpointKey(checkpoint.ID), data, 0)
	if exists == 0 {
		pipe.RPush(ctx, s.sessionKey(checkpoint.SessionID), checkpoint.ID)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("save checkpoint: %w", err)
	}
	return nil
}

func (s *RedisCheckpointStore) Load(ctx context.Context, checkpointID string) (*store.Checkpoint, error) {
	data, err := s.client.Get(ctx, s.checkpointKey(checkpointID)).Bytes()
	if err == redis.Nil {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load checkpoint: %w", err)
	}

	var cp store.Checkpoint
	if err := json.Unmarshal(data, &cp); err != nil {
		return nil, fmt.Errorf("unmarshal checkpoint: %w", err)
	}
	return &cp, nil
}

func (s *RedisCheckpointStore) Latest(ctx context.Context, sessionID string) (*store.Checkpoint, error) {
	id, err := s.client.LIndex(ctx, s.sessionKey(sessionID), -1).Result()
	if err == redis.Nil {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("latest checkpoint: %w", err)
	}
	return s.Load(ctx, id)
}

func (s *RedisCheckpointStore) List(ctx context.Context, sessionID string) ([]*store.Checkpoint, error) {
	ids, err := s.client.LRange(ctx, s.sessionKey(sessionID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("list checkpoints: %w", err)
	}
	if len(ids) == 0 {
		return []*store.Checkpoint{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = s.checkpointKey(id)
	}
	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("list checkpoints: %w", err)
	}

	cps := make([]*store.Checkpoint, 0, len(values))
	for _, v := range values {
		raw, ok := v.(string)
		if !ok {
			continue
		}
		var cp store.Checkpoint
		if err := json.Unmarshal([]byte(raw), &cp); err != nil {
			return nil, fmt.Errorf("unmarshal checkpoint: %w", err)
		}
		cps = append(cps, &cp)
	}
	return cps, nil
}

func (s *RedisCheckpointStore) Delete(ctx context.Context, checkpointID string) error {
	cp, err := s.Load(ctx, checkpointID)
	if err == store.ErrNotFound {
		return nil
	}
	if err != nil {
		return err
	}

	pipe := s.client.TxPipeline()
	pipe.Del(ctx, s.checkpointKey(checkpointID))
	pipe.LRem(ctx, s.sessionKey(cp.SessionID), 0, checkpointID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("delete checkpoint: %w", err)
	}
	return nil
}

func (s *RedisCheckpointStore) Clear(ctx context.Context, sessionID string) error {
	ids, err := s.client.LRange(ctx, s.sessionKey(sessionID), 0, -1).Result()
	if err != nil {
		return fmt.Errorf("clear session: %w", err)
	}

	pipe := s.client.TxPipeline()
	for _, id := range ids {
		pipe.Del(ctx, s.checkpointKey(id))
	}
	pipe.Del(ctx, s.sessionKey(sessionID))
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// Close releases the underlying client.
func (s *RedisCheckpointStore) Close() error {
	return s.client.Close()
}
