// File: internal/services/webhook/interface.go
package webhook

import "context"

// ProviderStatus represents the health status of the webhook receiver
type ProviderStatus struct {
	IsHealthy bool
	Message   string
}

type Provider interface {
	Deliver(ctx context.Context, eventName string, payload map[string]interface{}) error
	HealthCheck(ctx context.Context) error
}
