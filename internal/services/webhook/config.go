// File: internal/services/webhook/config.go
package webhook

import (
	"fmt"
	"time"
)

type Config struct {
	// Destination endpoint for outgoing event notifications.
	EndpointURL string
	// Shared secret sent as X-Webhook-Secret for receiver verification.
	Secret     string
	Timeout    time.Duration
	MaxRetries int
	RetryDelay time.Duration
}

func (c *Config) Validate() error {
	if c.EndpointURL == "" {
		return fmt.Errorf("WEBHOOK_ENDPOINT_URL is required")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("webhook timeout must be positive")
	}
	return nil
}

func DefaultConfig() *Config {
	return &Config{
		Timeout:    10 * time.Second,
		MaxRetries: 3,
		RetryDelay: 500 * time.Millisecond,
	}
}
