// File: internal/services/webhook_service_test.go
package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/huddlehq/huddle/internal/realtime"
	"github.com/huddlehq/huddle/internal/services"
	"github.com/huddlehq/huddle/internal/services/webhook"
)

// fakeProvider counts deliveries and fails the first failUntil attempts.
type fakeProvider struct {
	calls     int
	failUntil int
	lastEvent string
	lastBody  map[string]interface{}
}

func (p *fakeProvider) Deliver(ctx context.Context, eventName string, payload map[string]interface{}) error {
	p.calls++
	p.lastEvent = eventName
	p.lastBody = payload
	if p.calls <= p.failUntil {
		return &webhook.WebhookError{
			Type:    webhook.ErrTypeNetwork,
			Message: "connection refused",
			Cause:   errors.New("dial tcp"),
		}
	}
	return nil
}

func (p *fakeProvider) HealthCheck(ctx context.Context) error { return nil }

func TestWebhookForwardRetriesTransientFailures(t *testing.T) {
	provider := &fakeProvider{failUntil: 2}
	svc := services.NewWebhookServiceWithProvider(provider, nil)

	event := realtime.NewEvent(realtime.EventMessageCreated, 7, 3, map[string]interface{}{
		"message_id": uint(42),
	})
	svc.Forward(context.Background(), event)

	if provider.calls != 3 {
		t.Fatalf("expected 2 failures then success, got %d calls", provider.calls)
	}
	if provider.lastEvent != realtime.EventMessageCreated {
		t.Fatalf("unexpected event name %q", provider.lastEvent)
	}
	if provider.lastBody["channel_id"] != uint(7) || provider.lastBody["message_id"] != uint(42) {
		t.Fatalf("payload not flattened: %+v", provider.lastBody)
	}
}

func TestWebhookForwardNeverPropagatesFailure(t *testing.T) {
	provider := &fakeProvider{failUntil: 100}
	svc := services.NewWebhookServiceWithProvider(provider, nil)

	// Exhausting every retry must not panic or surface anywhere.
	svc.Forward(context.Background(), realtime.NewEvent(realtime.EventReactionUpdated, 1, 1, nil))

	if provider.calls == 0 {
		t.Fatalf("provider never invoked")
	}
}
