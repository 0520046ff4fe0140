package memory

import (
	"context"
	"sync"

	"github.com/rryowa/govintel_gateway/internal/models"
)

const maxAuditEvents = 1000

// InMemoryAuditLog keeps the most recent events in a bounded slice.
type InMemoryAuditLog struct {
	mu     sync.RWMutex
	events []models.AuthEvent
}

func NewAuditRepository() *InMemoryAuditLog {
	return &InMemoryAuditLog{}
}

func (m *InMemoryAuditLog) RecordEvent(_ context.Context, event models.AuthEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.events = append(m.events, event)
	if len(m.events) > maxAuditEvents {
		m.events = append([]models.AuthEvent(nil), m.events[len(m.events)-maxAuditEvents:]...)
	}
	return nil
}

func (m *InMemoryAuditLog) ListRecentEvents(_ context.Context, limit int) ([]models.AuthEvent, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if limit <= 0 || limit > len(m.events) {
		limit = len(m.events)
	}

	out := make([]models.AuthEvent, 0, limit)
	for i := len(m.events) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, m.events[i])
	}
	return out, nil
}
