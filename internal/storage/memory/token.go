package memory

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"
)

type InMemoryTokenStorage struct {
	mu      sync.RWMutex
	revoked map[string]time.Time
	now     func() time.Time
}

func NewTokenStorage() *InMemoryTokenStorage {
	return &InMemoryTokenStorage{
		revoked: make(map[string]time.Time),
		now:     time.Now,
	}
}

func (m *InMemoryTokenStorage) RevokeToken(_ context.Context, token string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	for k, exp := range m.revoked {
		if now.After(exp) {
			delete(m.revoked, k)
		}
	}
	m.revoked[hashToken(token)] = now.Add(ttl)

	return nil
}

func (m *InMemoryTokenStorage) IsTokenRevoked(_ context.Context, token string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	exp, ok := m.revoked[hashToken(token)]
	if !ok {
		return false, nil
	}
	return m.now().Before(exp), nil
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
