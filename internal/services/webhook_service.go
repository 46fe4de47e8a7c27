// File: internal/services/webhook_service.go
package services

import (
	"context"

	"github.com/huddlehq/huddle/internal/realtime"
	"github.com/huddlehq/huddle/internal/services/webhook"
)

// WebhookService forwards realtime events to an external HTTP receiver
// (integrations, bots). Delivery is best effort with a short retry.
type WebhookService struct {
	provider webhook.Provider
	retry    *webhook.RetryConfig
	logger   Logger
}

func NewWebhookService(config *webhook.Config, logger Logger) (*WebhookService, error) {
	if config == nil {
		config = webhook.DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = &NoOpLogger{}
	}

	return &WebhookService{
		provider: webhook.NewHTTPProvider(config),
		retry: &webhook.RetryConfig{
			MaxAttempts: config.MaxRetries,
			Delay:       config.RetryDelay,
		},
		logger: logger,
	}, nil
}

// NewWebhookServiceWithProvider injects a provider directly, used by tests.
func NewWebhookServiceWithProvider(provider webhook.Provider, logger Logger) *WebhookService {
	if logger == nil {
		logger = &NoOpLogger{}
	}
	return &WebhookService{
		provider: provider,
		retry:    webhook.DefaultRetryConfig(),
		logger:   logger,
	}
}

// Forward delivers one event to the receiver. A failed delivery is
// logged, never propagated; the originating write already succeeded.
func (s *WebhookService) Forward(ctx context.Context, event realtime.Event) {
	payload := map[string]interface{}{
		"id":         event.ID,
		"channel_id": event.ChannelID,
		"actor_id":   event.ActorID,
		"emitted_at": event.EmittedAt,
	}
	for k, v := range event.Payload {
		payload[k] = v
	}

	err := webhook.RetryWithBackoff(ctx, s.retry, func(ctx context.Context) error {
		return s.provider.Deliver(ctx, event.Name, payload)
	})
	if err != nil {
		s.logger.Warn("webhook delivery failed", "event", event.Name, "channel_id", event.ChannelID, "error", err)
		return
	}
	s.logger.Debug("webhook delivered", "event", event.Name, "channel_id", event.ChannelID)
}
