// File: internal/services/vector/interface.go
package vector

import (
	"context"

	"github.com/pinecone-io/go-pinecone/v4/pinecone"
)

// VectorRepository handles vector data operations
type VectorRepository interface {
	UpsertVector(ctx context.Context, id string, values []float32, metadata map[string]interface{}) error
	QuerySimilar(ctx context.Context, embedding []float32, topK int, filter map[string]interface{}) ([]*pinecone.ScoredVector, error)
	DeleteVector(ctx context.Context, id string) error
	FetchVector(ctx context.Context, id string) (*pinecone.Vector, error)
}

// RetryProvider handles retry logic for vector store operations
type RetryProvider interface {
	RetryWithTimeout(call func(ctx context.Context) error) error
}

// ServiceStatus represents vector store health
type ServiceStatus struct {
	IsHealthy         bool
	ConnectionHealthy bool
	IndexHealthy      bool
	Message           string
	IndexHost         string
	Namespace         string
}

// Logger interface for vector store operations
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
	Debug(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
}
