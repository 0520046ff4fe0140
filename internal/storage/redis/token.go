package redis

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const revokedKeyPrefix = "revoked:"

type TokenStorage struct {
	client *redis.Client
}

func NewTokenStorage(client *redis.Client) *TokenStorage {
	return &TokenStorage{client: client}
}

// RevokeToken stores only the token hash; raw tokens never reach Redis.
func (s *TokenStorage) RevokeToken(ctx context.Context, token string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	return s.client.Set(ctx, revokedKey(token), "revoked", ttl).Err()
}

// IsTokenRevoked проверяет наличие токена в Redis.
func (s *TokenStorage) IsTokenRevoked(ctx context.Context, token string) (bool, error) {
	result, err := s.client.Get(ctx, revokedKey(token)).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	} else if err != nil {
		return false, err
	}
	return result == "revoked", nil
}

func revokedKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return revokedKeyPrefix + hex.EncodeToString(sum[:])
}
