package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rryowa/govintel_gateway/internal/models"
	"github.com/rryowa/govintel_gateway/internal/storage"
)

type ctxKey int

const userMetadataKey ctxKey = iota

func WithUserMetadata(ctx context.Context, md models.UserMetadata) context.Context {
	return context.WithValue(ctx, userMetadataKey, md)
}

func UserMetadataFromContext(ctx context.Context) models.UserMetadata {
	md, _ := ctx.Value(userMetadataKey).(models.UserMetadata)
	return md
}

// Notifier receives security-relevant auth events.
type Notifier interface {
	Notify(ctx context.Context, event models.AuthEvent)
}

// AuditService writes the auth audit trail. Recording never fails the caller.
type AuditService struct {
	repo     storage.AuditRepository
	notifier Notifier
	log      *zap.SugaredLogger
	now      func() time.Time
}

func NewAuditService(repo storage.AuditRepository, notifier Notifier, log *zap.SugaredLogger) *AuditService {
	return &AuditService{
		repo:     repo,
		notifier: notifier,
		log:      log,
		now:      time.Now,
	}
}

func (s *AuditService) Record(ctx context.Context, kind models.AuthEventKind, subject, detail string) {
	if s == nil {
		return
	}

	md := UserMetadataFromContext(ctx)
	event := models.AuthEvent{
		ID:        uuid.NewString(),
		Kind:      kind,
		Subject:   subject,
		ClientIP:  md.IPAddress,
		UserAgent: md.UserAgent,
		Detail:    detail,
		CreatedAt: s.now().UTC(),
	}

	if err := s.repo.RecordEvent(ctx, event); err != nil {
		s.log.Errorw("failed to record auth event", "kind", kind, "error", err)
	}

	if s.notifier != nil && notifiable(kind) {
		s.notifier.Notify(ctx, event)
	}
}

func (s *AuditService) Recent(ctx context.Context, limit int) ([]models.AuthEvent, error) {
	return s.repo.ListRecentEvents(ctx, limit)
}

func notifiable(kind models.AuthEventKind) bool {
	switch kind {
	case models.EventSessionExpired, models.EventLoginFailed, models.EventLogout:
		return true
	default:
		return false
	}
}
