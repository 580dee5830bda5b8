package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const refreshTokenKeyPrefix = "refresh_token:"

// DefaultRefreshTokenExpiry is how long a refresh token lives when not configured.
const DefaultRefreshTokenExpiry = 7 * 24 * time.Hour

// ErrRefreshTokenNotFound is returned for unknown or expired refresh tokens.
var ErrRefreshTokenNotFound = errors.New("refresh token not found")

// KV is the subset of a key/value store the token store needs.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// Delete reports whether the key existed.
	Delete(ctx context.Context, key string) (bool, error)
}

// TokenStoreInterface defines the interface for refresh token storage.
type TokenStoreInterface interface {
	Issue(ctx context.Context, userID uint, email string) (token string, err error)
	Lookup(ctx context.Context, token string) (userID uint, email string, err error)
	Revoke(ctx context.Context, token string) error
}

// TokenStore keeps opaque refresh tokens in a key/value store with a TTL.
// Access tokens stay stateless; only refresh tokens are stored.
type TokenStore struct {
	kv  KV
	ttl time.Duration
}

// Ensure TokenStore implements TokenStoreInterface
var _ TokenStoreInterface = (*TokenStore)(nil)

type refreshTokenData struct {
	UserID uint   `json:"user_id"`
	Email  string `json:"email"`
}

// NewTokenStore creates a new token store.
func NewTokenStore(kv KV, ttl time.Duration) *TokenStore {
	if ttl <= 0 {
		ttl = DefaultRefreshTokenExpiry
	}
	return &TokenStore{kv: kv, ttl: ttl}
}

// Issue creates and stores a new refresh token for the user.
func (s *TokenStore) Issue(ctx context.Context, userID uint, email string) (string, error) {
	payload, err := json.Marshal(refreshTokenData{UserID: userID, Email: email})
	if err != nil {
		return "", fmt.Errorf("marshal token data: %w", err)
	}

	token := uuid.NewString()
	if err := s.kv.Set(ctx, refreshTokenKeyPrefix+token, payload, s.ttl); err != nil {
		return "", fmt.Errorf("store refresh token: %w", err)
	}
	return token, nil
}

// Lookup resolves a refresh token to the user it was issued for.
func (s *TokenStore) Lookup(ctx context.Context, token string) (uint, string, error) {
	if _, err := uuid.Parse(token); err != nil {
		return 0, "", ErrRefreshTokenNotFound
	}

	data, err := s.kv.Get(ctx, refreshTokenKeyPrefix+token)
	if err != nil {
		return 0, "", fmt.Errorf("load refresh token: %w", err)
	}
	if data == nil {
		return 0, "", ErrRefreshTokenNotFound
	}

	var tokenData refreshTokenData
	if err := json.Unmarshal(data, &tokenData); err != nil {
		return 0, "", fmt.Errorf("unmarshal token data: %w", err)
	}
	return tokenData.UserID, tokenData.Email, nil
}

// Revoke removes a refresh token. Unknown, expired and already revoked
// tokens yield ErrRefreshTokenNotFound.
func (s *TokenStore) Revoke(ctx context.Context, token string) error {
	if _, err := uuid.Parse(token); err != nil {
		return ErrRefreshTokenNotFound
	}
	removed, err := s.kv.Delete(ctx, refreshTokenKeyPrefix+token)
	if err != nil {
		return fmt.Errorf("revoke refresh token: %w", err)
	}
	if !removed {
		return ErrRefreshTokenNotFound
	}
	return nil
}
