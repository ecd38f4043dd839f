package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// refreshKey builds the look-aside key for a refresh token.  Keying by
// subject and token value means a user can hold several concurrent
// refresh tokens (one per device) and each is revocable on its own.
func refreshKey(username, token string) string {
	return "refresh_token:" + username + ":" + token
}

// RefreshTokenStore tracks which refresh tokens are still honored.  The
// tokens themselves are self-contained JWTs; the mere existence of the
// matching record here is what makes them usable, so deleting the record
// revokes the token without any cryptography.
type RefreshTokenStore struct {
	rdb *redis.Client
}

func NewRefreshTokenStore(rdb *redis.Client) *RefreshTokenStore {
	return &RefreshTokenStore{rdb: rdb}
}

// Save records a freshly issued refresh token.  The TTL matches the
// token's own lifetime so the record cannot outlive the credential.
func (s *RefreshTokenStore) Save(ctx context.Context, username, token string, ttl time.Duration) error {
	if err := s.rdb.SetEx(ctx, refreshKey(username, token), "1", ttl).Err(); err != nil {
		return fmt.Errorf("save refresh token: %w", err)
	}
	return nil
}

// Exists reports whether the look-aside record for the token is still
// present.  False means revoked (or naturally expired).
func (s *RefreshTokenStore) Exists(ctx context.Context, username, token string) (bool, error) {
	n, err := s.rdb.Exists(ctx, refreshKey(username, token)).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return false, fmt.Errorf("check refresh token: %w", err)
	}
	return n > 0, nil
}

// Delete revokes a refresh token.  Deleting an absent record is not an
// error; logout is idempotent.
func (s *RefreshTokenStore) Delete(ctx context.Context, username, token string) error {
	return s.rdb.Del(ctx, refreshKey(username, token)).Err()
}
