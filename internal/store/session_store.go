// Package store holds the volatile auth state in Redis: session records
// and refresh-token look-aside entries.  Consistency with the relational
// store is procedural; Redis only guarantees single-key atomicity, which
// is all these stores need (set-with-TTL, exists, delete).
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/AbdullaK123/writing-website-backend/internal/model"
)

// sessionKey builds the Redis key for a session id.
func sessionKey(id string) string { return "session:" + id }

// SessionStore keeps one record per live session under `session:{id}`.
// The value is the JSON-encoded claim set and the TTL is the session
// lifetime.  The TTL is absolute: it is set once when the session is
// created and reads do not extend it.
type SessionStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewSessionStore(rdb *redis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{rdb: rdb, ttl: ttl}
}

// Create writes a new session record and returns its opaque id.  The id
// is a random UUID; it carries no information and is only meaningful as
// a key into this store.
func (s *SessionStore) Create(ctx context.Context, claims model.SessionClaims) (string, error) {
	id := uuid.NewString()
	data, err := json.Marshal(claims)
	if err != nil {
		return "", err
	}
	if err := s.rdb.SetEx(ctx, sessionKey(id), data, s.ttl).Err(); err != nil {
		return "", fmt.Errorf("save session: %w", err)
	}
	return id, nil
}

// Get loads the claims for a session id.  An absent or expired record is
// (nil, nil): the caller is anonymous.
func (s *SessionStore) Get(ctx context.Context, id string) (*model.SessionClaims, error) {
	data, err := s.rdb.Get(ctx, sessionKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	var claims model.SessionClaims
	if err := json.Unmarshal(data, &claims); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &claims, nil
}

// Delete destroys a session record.  Deleting an absent record is not an
// error; logout is idempotent.
func (s *SessionStore) Delete(ctx context.Context, id string) error {
	return s.rdb.Del(ctx, sessionKey(id)).Err()
}

// TTL returns the configured session lifetime, used by handlers to set
// the cookie max-age to match the record's expiry.
func (s *SessionStore) TTL() time.Duration { return s.ttl }
