package service

import (
	"sync"
	"time"

	"github.com/rryowa/govintel_gateway/internal/models"
)

// MemoryTokenStore is the TokenStore used by the service tests; the
// gateway itself keeps tokens in cookies.
type MemoryTokenStore struct {
	mu   sync.RWMutex
	pair models.TokenPair
}

func NewMemoryTokenStore(pair models.TokenPair) *MemoryTokenStore {
	return &MemoryTokenStore{pair: pair}
}

func (s *MemoryTokenStore) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pair.AccessToken
}

func (s *MemoryTokenStore) RefreshToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pair.RefreshToken
}

func (s *MemoryTokenStore) SetAccessToken(token string, ttl time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pair.AccessToken = token
	s.pair.AccessExpiresIn = int64(ttl / time.Second)
}

func (s *MemoryTokenStore) SetTokens(pair models.TokenPair) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pair = pair
}

func (s *MemoryTokenStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pair = models.TokenPair{}
}

// Pair returns a copy of the current state.
func (s *MemoryTokenStore) Pair() models.TokenPair {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pair
}
