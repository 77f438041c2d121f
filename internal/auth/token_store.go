package auth

import (
	"context"
	"errors"
	"time"

	"onboarding/internal/cache"
)

// Redis key namespaces. Refresh sessions hold the Identity they were issued
// for; revoked access tokens hold a marker until the token would expire.
const (
	sessionKeyPrefix = "onboarding:session:"
	revokedKeyPrefix = "onboarding:revoked:"
)

// ErrSessionNotFound is returned for a refresh token that was never stored,
// has expired, or was removed at logout.
var ErrSessionNotFound = errors.New("refresh session not found")

// TokenStoreInterface defines the interface for token storage operations.
type TokenStoreInterface interface {
	StoreRefreshToken(ctx context.Context, tokenID string, id Identity, ttl time.Duration) error
	GetRefreshToken(ctx context.Context, tokenID string) (Identity, error)
	DeleteRefreshToken(ctx context.Context, tokenID string) error
	BlacklistAccessToken(ctx context.Context, tokenID string, ttl time.Duration) error
	IsAccessTokenBlacklisted(ctx context.Context, tokenID string) (bool, error)
}

// TokenStore keeps refresh sessions and revoked access tokens in redis.
// With redis down every session reads as missing and no token as revoked.
type TokenStore struct {
	cache *cache.Client
}

var _ TokenStoreInterface = (*TokenStore)(nil)

// NewTokenStore creates a new token store. A nil cache is allowed.
func NewTokenStore(cache *cache.Client) *TokenStore {
	return &TokenStore{cache: cache}
}

// StoreRefreshToken records the session behind a refresh token id.
func (s *TokenStore) StoreRefreshToken(ctx context.Context, tokenID string, id Identity, ttl time.Duration) error {
	if tokenID == "" {
		return errors.New("empty refresh token id")
	}
	s.cache.SetJSON(ctx, sessionKeyPrefix+tokenID, id, ttl)
	return nil
}

// GetRefreshToken returns the identity a refresh token was issued for.
func (s *TokenStore) GetRefreshToken(ctx context.Context, tokenID string) (Identity, error) {
	var id Identity
	if tokenID == "" || !s.cache.GetJSON(ctx, sessionKeyPrefix+tokenID, &id) {
		return Identity{}, ErrSessionNotFound
	}
	return id, nil
}

// DeleteRefreshToken ends a refresh session.
func (s *TokenStore) DeleteRefreshToken(ctx context.Context, tokenID string) error {
	return s.cache.Delete(ctx, sessionKeyPrefix+tokenID)
}

// BlacklistAccessToken revokes an access token for the rest of its lifetime.
// Tokens already past expiry need no entry.
func (s *TokenStore) BlacklistAccessToken(ctx context.Context, tokenID string, ttl time.Duration) error {
	if tokenID == "" || ttl <= 0 {
		return nil
	}
	return s.cache.Set(ctx, revokedKeyPrefix+tokenID, []byte("1"), ttl)
}

// IsAccessTokenBlacklisted reports whether an access token was revoked.
func (s *TokenStore) IsAccessTokenBlacklisted(ctx context.Context, tokenID string) (bool, error) {
	if tokenID == "" {
		return false, nil
	}
	data, err := s.cache.Get(ctx, revokedKeyPrefix+tokenID)
	if err != nil {
		return false, err
	}
	return data != nil, nil
}
