package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"intake_backend/internal/conversation/domain"

	"github.com/redis/go-redis/v9"
)

const sessionKeyPrefix = "session:"

// RedisStore implements SessionStore on Redis. Sessions are stored as JSON
// under session:<id> with a sliding TTL; Redis is the single source of
// truth, with no in-memory shadow copy.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore creates a session store backed by the given Redis client.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

// Compile-time check that RedisStore implements SessionStore.
var _ SessionStore = (*RedisStore)(nil)

// Get loads a session by identifier. Returns (nil, nil) when absent.
func (s *RedisStore) Get(ctx context.Context, sessionID string) (*domain.Session, error) {
	raw, err := s.client.Get(ctx, sessionKeyPrefix+sessionID).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get session %s: %w", sessionID, err)
	}

	var session domain.Session
	if err := json.Unmarshal(raw, &session); err != nil {
		return nil, fmt.Errorf("decode session %s: %w", sessionID, err)
	}
	return &session, nil
}

// Put stores the session, refreshing its TTL.
func (s *RedisStore) Put(ctx context.Context, session *domain.Session) error {
	raw, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("encode session %s: %w", session.SessionID, err)
	}

	if err := s.client.Set(ctx, sessionKeyPrefix+session.SessionID, raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("put session %s: %w", session.SessionID, err)
	}
	return nil
}

// Delete removes the session record.
func (s *RedisStore) Delete(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, sessionKeyPrefix+sessionID).Err(); err != nil {
		return fmt.Errorf("delete session %s: %w", sessionID, err)
	}
	return nil
}

// Ping checks store connectivity for readiness probes.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
