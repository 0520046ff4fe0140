package memory

import (
	"context"
	"sync"
	"time"

	"github.com/rryowa/govintel_gateway/internal/models"
	"github.com/rryowa/govintel_gateway/internal/storage"
)

type InMemoryAPIKeyManager struct {
	mu           sync.RWMutex
	state        *models.APIKeyState
	oldExpiresAt time.Time
	now          func() time.Time
}

func NewAPIKeyRepository() *InMemoryAPIKeyManager {
	return &InMemoryAPIKeyManager{now: time.Now}
}

func (m *InMemoryAPIKeyManager) GetAPIKeyState(_ context.Context) (*models.APIKeyState, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.state == nil {
		return nil, storage.ErrAPIKeyNotFound
	}

	state := *m.state
	if state.OldHash != "" && m.now().After(m.oldExpiresAt) {
		state.OldHash = ""
	}
	return &state, nil
}

func (m *InMemoryAPIKeyManager) RotateAPIKey(_ context.Context, state models.APIKeyState, oldKeyTTL time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.state = &state
	m.oldExpiresAt = m.now().Add(oldKeyTTL)
	return nil
}
