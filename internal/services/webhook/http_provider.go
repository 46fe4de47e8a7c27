// File: internal/services/webhook/http_provider.go
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"
)

// HTTPProvider POSTs event notifications to a configured receiver.
type HTTPProvider struct {
	config *Config
	client *http.Client
}

func NewHTTPProvider(config *Config) *HTTPProvider {
	return &HTTPProvider{
		config: config,
		client: &http.Client{
			Timeout: config.Timeout,
		},
	}
}

func (p *HTTPProvider) Deliver(ctx context.Context, eventName string, payload map[string]interface{}) error {
	body := map[string]interface{}{
		"event":     eventName,
		"sent_at":   time.Now().UTC().Format(time.RFC3339),
		"payload":   payload,
	}
	return p.sendRequest(ctx, body)
}

func (p *HTTPProvider) sendRequest(ctx context.Context, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return &WebhookError{Type: ErrTypeValidation, Message: "invalid payload", Cause: err}
	}

	req, err := http.NewRequestWithContext(ctx, "POST", p.config.EndpointURL, bytes.NewBuffer(body))
	if err != nil {
		return &WebhookError{Type: ErrTypeNetwork, Message: "failed to create request", Cause: err}
	}

	req.Header.Set("Content-Type", "application/json")
	if p.config.Secret != "" {
		req.Header.Set("X-Webhook-Secret", p.config.Secret)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return &WebhookError{Type: ErrTypeNetwork, Message: "request failed", Cause: err}
	}
	defer resp.Body.Close()

	return p.handleResponse(resp)
}

func (p *HTTPProvider) handleResponse(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	responseBody, _ := io.ReadAll(resp.Body)

	if resp.StatusCode == http.StatusTooManyRequests {
		return &WebhookError{
			Type:    ErrTypeRateLimit,
			Code:    resp.StatusCode,
			Message: "rate limit exceeded",
		}
	}

	return &WebhookError{
		Type:    ErrTypeReceiver,
		Code:    resp.StatusCode,
		Message: string(responseBody),
	}
}

func (p *HTTPProvider) HealthCheck(ctx context.Context) error {
	return nil
}
