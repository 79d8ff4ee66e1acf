package auth

import (
	"context"
	"strconv"

	"itongue/internal/cache"
)

// Refresh tokens live in a single hash keyed by user id, so each user has
// exactly one active refresh token. Storing overwrites the prior value, which
// invalidates it immediately.
const refreshTokenHashKey = "refresh_tokens"

// TokenStoreInterface defines the interface for refresh token storage.
type TokenStoreInterface interface {
	StoreRefreshToken(ctx context.Context, userID uint, token string) error
	GetRefreshToken(ctx context.Context, userID uint) (string, error)
	DeleteRefreshToken(ctx context.Context, userID uint) error
}

// TokenStore handles storage and retrieval of refresh tokens in Redis.
type TokenStore struct {
	cache *cache.Client
}

// Ensure TokenStore implements TokenStoreInterface
var _ TokenStoreInterface = (*TokenStore)(nil)

// NewTokenStore creates a new token store.
func NewTokenStore(cache *cache.Client) *TokenStore {
	return &TokenStore{cache: cache}
}

// StoreRefreshToken stores the user's refresh token, replacing any prior one.
func (s *TokenStore) StoreRefreshToken(ctx context.Context, userID uint, token string) error {
	return s.cache.HSet(ctx, refreshTokenHashKey, field(userID), []byte(token))
}

// GetRefreshToken returns the stored refresh token for the user, or "" when
// none is stored.
func (s *TokenStore) GetRefreshToken(ctx context.Context, userID uint) (string, error) {
	data, err := s.cache.HGet(ctx, refreshTokenHashKey, field(userID))
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// DeleteRefreshToken removes the user's refresh token.
func (s *TokenStore) DeleteRefreshToken(ctx context.Context, userID uint) error {
	return s.cache.HDelete(ctx, refreshTokenHashKey, field(userID))
}

func field(userID uint) string {
	return strconv.FormatUint(uint64(userID), 10)
}
