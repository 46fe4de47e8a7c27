// File: internal/services/ai_service.go
package services

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/huddlehq/huddle/internal/services/ai"
)

// AIService is the facade the agents use for embeddings and
// completions. Retries with backoff are handled here so the provider
// stays a thin client.
type AIService struct {
	provider   ai.AIProvider
	model      string
	timeout    time.Duration
	maxRetries int
	retryDelay time.Duration
}

func NewAIService(config *ai.Config) (*AIService, error) {
	if config == nil {
		config = ai.DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &AIService{
		provider:   ai.NewOpenAIProvider(config),
		model:      config.LLMModel,
		timeout:    config.Timeout,
		maxRetries: config.MaxRetries,
		retryDelay: config.RetryDelay,
	}, nil
}

// NewAIServiceWithProvider injects a provider directly, used by tests.
func NewAIServiceWithProvider(provider ai.AIProvider, model string) *AIService {
	return &AIService{
		provider:   provider,
		model:      model,
		timeout:    time.Minute,
		maxRetries: 1,
		retryDelay: time.Second,
	}
}

func (s *AIService) CreateEmbedding(ctx context.Context, text string) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ai.NewValidationError("embedding", "text cannot be empty")
	}

	var embedding []float32
	err := s.retryWithTimeout(ctx, func(ctx context.Context) error {
		vec, err := s.provider.CreateEmbedding(ctx, text)
		if err != nil {
			return err
		}
		embedding = vec
		return nil
	})
	return embedding, err
}

func (s *AIService) GetCompletion(ctx context.Context, prompt string) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", ai.NewValidationError("completion", "prompt cannot be empty")
	}

	var reply string
	err := s.retryWithTimeout(ctx, func(ctx context.Context) error {
		out, err := s.provider.GetCompletion(ctx, s.model, prompt)
		if err != nil {
			return err
		}
		reply = out
		return nil
	})
	return reply, err
}

func (s *AIService) GetProviderStatus(ctx context.Context) ai.ProviderStatus {
	return s.provider.GetStatus(ctx)
}

func (s *AIService) retryWithTimeout(parent context.Context, call func(ctx context.Context) error) error {
	var lastErr error
	for attempt := 1; attempt <= s.maxRetries; attempt++ {
		ctx, cancel := context.WithTimeout(parent, s.timeout)
		err := call(ctx)
		cancel()
		if err == nil {
			return nil
		}
		lastErr = err
		log.Printf("[AIService] Retry %d/%d failed: %v", attempt, s.maxRetries, err)
		if attempt < s.maxRetries {
			select {
			case <-parent.Done():
				return parent.Err()
			case <-time.After(time.Duration(attempt) * s.retryDelay):
			}
		}
	}
	return lastErr
}
