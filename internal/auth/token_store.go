package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"medscan/internal/cache"
)

const refreshTokenKeyPrefix = "medscan:refresh_token:"

// TokenStoreInterface defines the interface for refresh token storage.
type TokenStoreInterface interface {
	StoreRefreshToken(ctx context.Context, tokenID, username, role string, ttl time.Duration) error
	GetRefreshToken(ctx context.Context, tokenID string) (username, role string, err error)
	DeleteRefreshToken(ctx context.Context, tokenID string) error
}

// TokenStore keeps refresh token ids in Redis. Without Redis every lookup
// misses, so refresh is unavailable but login still works.
type TokenStore struct {
	cache *cache.Client
}

var _ TokenStoreInterface = (*TokenStore)(nil)

// NewTokenStore creates a new token store.
func NewTokenStore(cache *cache.Client) *TokenStore {
	return &TokenStore{cache: cache}
}

type refreshTokenData struct {
	Username string `json:"username"`
	Role     string `json:"role"`
}

// StoreRefreshToken stores a refresh token in Redis with TTL.
func (s *TokenStore) StoreRefreshToken(ctx context.Context, tokenID, username, role string, ttl time.Duration) error {
	payload, err := json.Marshal(refreshTokenData{Username: username, Role: role})
	if err != nil {
		return fmt.Errorf("marshal token data: %w", err)
	}
	s.cache.Set(ctx, refreshTokenKeyPrefix+tokenID, payload, ttl)
	return nil
}

// GetRefreshToken retrieves refresh token data from Redis.
func (s *TokenStore) GetRefreshToken(ctx context.Context, tokenID string) (string, string, error) {
	var data refreshTokenData
	if !s.cache.GetJSON(ctx, refreshTokenKeyPrefix+tokenID, &data) {
		return "", "", fmt.Errorf("refresh token not found")
	}
	return data.Username, data.Role, nil
}

// DeleteRefreshToken removes a refresh token from Redis.
func (s *TokenStore) DeleteRefreshToken(ctx context.Context, tokenID string) error {
	s.cache.Delete(ctx, refreshTokenKeyPrefix+tokenID)
	return nil
}
