package auth

import (
	"context"
	"time"

	"kairos/internal/cache"
)

const revokedTokenKeyPrefix = "revoked_token:"

// TokenStoreInterface defines revocation bookkeeping for session tokens.
type TokenStoreInterface interface {
	RevokeToken(ctx context.Context, tokenID string, ttl time.Duration) error
	IsTokenRevoked(ctx context.Context, tokenID string) (bool, error)
}

// TokenStore keeps revoked token ids in Redis until they would expire anyway.
type TokenStore struct {
	cache *cache.Client
}

// Ensure TokenStore implements TokenStoreInterface
var _ TokenStoreInterface = (*TokenStore)(nil)

// NewTokenStore creates a new token store.
func NewTokenStore(cache *cache.Client) *TokenStore {
	return &TokenStore{cache: cache}
}

// RevokeToken marks tokenID as unusable for ttl.
func (s *TokenStore) RevokeToken(ctx context.Context, tokenID string, ttl time.Duration) error {
	if tokenID == "" || ttl <= 0 {
		return nil
	}
	return s.cache.Set(ctx, revokedTokenKeyPrefix+tokenID, []byte("1"), ttl)
}

// IsTokenRevoked checks if a token id was revoked.
// An unreachable cache reads as not revoked.
func (s *TokenStore) IsTokenRevoked(ctx context.Context, tokenID string) (bool, error) {
	if tokenID == "" {
		return false, nil
	}
	data, err := s.cache.Get(ctx, revokedTokenKeyPrefix+tokenID)
	if err != nil {
		return false, nil
	}
	return data != nil, nil
}
