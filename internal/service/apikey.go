package service

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/rryowa/govintel_gateway/internal/models"
	"github.com/rryowa/govintel_gateway/internal/storage"
)

// APIKeyGracePeriod is how long the previous operator key keeps working after a rotation.
const APIKeyGracePeriod = 24 * time.Hour

var ErrEmptyAPIKey = errors.New("operator API key is empty")

type APIKeyService struct {
	repo storage.APIKeyRepository
	log  *zap.SugaredLogger
	now  func() time.Time
}

func NewAPIKeyService(repo storage.APIKeyRepository, log *zap.SugaredLogger) *APIKeyService {
	return &APIKeyService{
		repo: repo,
		log:  log,
		now:  time.Now,
	}
}

// SyncAPIKey makes key the current operator key. A different previous key
// stays valid for APIKeyGracePeriod.
func (s *APIKeyService) SyncAPIKey(ctx context.Context, key string) error {
	if key == "" {
		return ErrEmptyAPIKey
	}

	hashedNewKey := hashAPIKey(key)

	state, err := s.repo.GetAPIKeyState(ctx)
	if err != nil {
		if !errors.Is(err, storage.ErrAPIKeyNotFound) {
			return fmt.Errorf("get API key state: %w", err)
		}

		s.log.Warn("Current API key not found during sync; initializing.")
		if err = s.repo.RotateAPIKey(ctx, models.APIKeyState{CurrentHash: hashedNewKey, RotatedAt: s.now().UTC()}, 0); err != nil {
			return fmt.Errorf("init API key: %w", err)
		}
		s.log.Info("API Key initialized.")
		return nil
	}

	if equalHashes(hashedNewKey, state.CurrentHash) {
		s.log.Info("Skipping key sync: new key is the same as the current one.")
		return nil
	}

	next := models.APIKeyState{
		CurrentHash: hashedNewKey,
		OldHash:     state.CurrentHash,
		RotatedAt:   s.now().UTC(),
	}
	if err = s.repo.RotateAPIKey(ctx, next, APIKeyGracePeriod); err != nil {
		return fmt.Errorf("rotate API key: %w", err)
	}

	s.log.Info("API Key synced successfully.")
	return nil
}

func (s *APIKeyService) IsValidAPIKey(ctx context.Context, key string) (bool, error) {
	if key == "" {
		return false, nil
	}

	state, err := s.repo.GetAPIKeyState(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrAPIKeyNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("get API key state: %w", err)
	}

	hashedKey := hashAPIKey(key)
	if equalHashes(hashedKey, state.CurrentHash) {
		return true, nil
	}

	if state.OldHash != "" && equalHashes(hashedKey, state.OldHash) {
		return s.now().Sub(state.RotatedAt) <= APIKeyGracePeriod, nil
	}

	return false, nil
}

func equalHashes(a, b string) bool {
	return len(a) == len(b) && subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

func hashAPIKey(key string) string {
	hash := sha256.Sum256([]byte(key))
	return hex.EncodeToString(hash[:])
}
