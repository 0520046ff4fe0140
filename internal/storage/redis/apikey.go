package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/rryowa/govintel_gateway/internal/models"
	"github.com/rryowa/govintel_gateway/internal/storage"
)

const (
	CurrentAPIKeyRedisKey      = "apikey:current"
	OldAPIKeyRedisKey          = "apikey:old"
	APIKeyRotationTimeRedisKey = "apikey:rotation_time"
)

type APIKeyStorage struct {
	client *redis.Client
}

func NewAPIKeyStorage(client *redis.Client) *APIKeyStorage {
	return &APIKeyStorage{client: client}
}

func (s *APIKeyStorage) GetAPIKeyState(ctx context.Context) (*models.APIKeyState, error) {
	values, err := s.client.MGet(ctx, CurrentAPIKeyRedisKey, OldAPIKeyRedisKey, APIKeyRotationTimeRedisKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get API key state from Redis: %w", err)
	}

	current, _ := values[0].(string)
	if current == "" {
		return nil, storage.ErrAPIKeyNotFound
	}

	state := &models.APIKeyState{CurrentHash: current}
	state.OldHash, _ = values[1].(string)

	if raw, _ := values[2].(string); raw != "" {
		rotatedAt, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return nil, fmt.Errorf("failed to parse key rotation time: %w", err)
		}
		state.RotatedAt = rotatedAt
	}

	return state, nil
}

func (s *APIKeyStorage) RotateAPIKey(ctx context.Context, state models.APIKeyState, oldKeyTTL time.Duration) error {
	pipe := s.client.TxPipeline()
	if state.OldHash != "" {
		pipe.Set(ctx, OldAPIKeyRedisKey, state.OldHash, oldKeyTTL)
	} else {
		pipe.Del(ctx, OldAPIKeyRedisKey)
	}
	pipe.Set(ctx, CurrentAPIKeyRedisKey, state.CurrentHash, 0)
	pipe.Set(ctx, APIKeyRotationTimeRedisKey, state.RotatedAt.UTC().Format(time.RFC3339), 0)

	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("failed to sync API key in Redis: %w", err)
	}
	return nil
}
