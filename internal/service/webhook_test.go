package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/rryowa/govintel_gateway/internal/models"
)

func TestWebhookService_PostsEvent(t *testing.T) {
	received := make(chan models.AuthEvent, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var event models.AuthEvent
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&event))
		received <- event
	}))
	defer srv.Close()

	svc := NewWebhookService(zap.NewNop().Sugar(), srv.URL)

	ctx, cancel := context.WithCancel(context.Background())
	svc.Notify(ctx, models.AuthEvent{ID: "e-1", Kind: models.EventLogout, Subject: "user-1"})
	cancel()

	select {
	case event := <-received:
		require.Equal(t, "e-1", event.ID)
		assert.Equal(t, models.EventLogout, event.Kind)
	case <-time.After(3 * time.Second):
		t.Fatal("webhook was not delivered")
	}
}

func TestWebhookService_NoURLIsNoop(t *testing.T) {
	svc := NewWebhookService(zap.NewNop().Sugar(), "")
	assert.NotPanics(t, func() {
		svc.Notify(context.Background(), models.AuthEvent{Kind: models.EventLogout})
	})
}
