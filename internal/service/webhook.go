package service

import (
	"context"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/rryowa/govintel_gateway/internal/models"
)

const (
	defaultHTTPStatusThreshold = 300
	webhookTimeout             = 5 * time.Second
)

// WebhookService forwards auth events to an optional security webhook.
type WebhookService struct {
	client     *resty.Client
	log        *zap.SugaredLogger
	webhookURL string
}

func NewWebhookService(log *zap.SugaredLogger, webhookURL string) *WebhookService {
	return &WebhookService{
		client:     resty.New().SetTimeout(webhookTimeout).SetCookieJar(nil),
		log:        log,
		webhookURL: webhookURL,
	}
}

// Notify is fire-and-forget; the request context may already be gone when it runs.
func (s *WebhookService) Notify(ctx context.Context, event models.AuthEvent) {
	if s.webhookURL == "" {
		return
	}

	ctx = context.WithoutCancel(ctx)
	go func() {
		resp, err := s.client.R().
			SetContext(ctx).
			SetHeader("Content-Type", "application/json").
			SetBody(event).
			Post(s.webhookURL)
		if err != nil {
			s.log.Errorw("failed to send webhook", "kind", event.Kind, "error", err)
			return
		}

		if resp.StatusCode() >= defaultHTTPStatusThreshold {
			s.log.Warnw("webhook returned non-2xx status", "status", resp.StatusCode(), "kind", event.Kind)
		}
	}()
}
