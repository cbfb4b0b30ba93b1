package auth

import (
	"context" // Context for Redis operations
	"time"    // Session TTL

	"github.com/google/uuid"       // Session id generation
	"github.com/redis/go-redis/v9" // Redis client
)

// SessionTTL is how long a browser session stays valid in Redis.
const SessionTTL = 24 * time.Hour

// SessionStore keeps the authoritative session records in Redis. The
// signed cookie carries the identity; the Redis record decides whether
// the session is still live, which makes logout an actual revocation.
type SessionStore struct {
	rdb *redis.Client
}

// NewSessionStore returns a Redis-backed session store.
func NewSessionStore(rdb *redis.Client) *SessionStore {
	return &SessionStore{rdb: rdb}
}

// Create records a new session for the user and returns its id.
func (s *SessionStore) Create(ctx context.Context, userID uint) (string, error) {
	sid := uuid.New().String()
	if err := s.rdb.Set(ctx, sessionKey(sid), userID, SessionTTL).Err(); err != nil {
		return "", err
	}
	return sid, nil
}

// Live reports whether the session id still has a record in Redis.
func (s *SessionStore) Live(ctx context.Context, sessionID string) (bool, error) {
	_, err := s.rdb.Get(ctx, sessionKey(sessionID)).Result()
	if err == redis.Nil {
		return false, nil // Expired or logged out
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Delete revokes the session.
func (s *SessionStore) Delete(ctx context.Context, sessionID string) error {
	return s.rdb.Del(ctx, sessionKey(sessionID)).Err()
}

func sessionKey(sid string) string {
	return "session:" + sid
}
