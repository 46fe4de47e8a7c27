// File: internal/services/vector_service.go
package services

import (
	"context"

	pineconeSDK "github.com/pinecone-io/go-pinecone/v4/pinecone"

	"github.com/huddlehq/huddle/internal/services/vector"
)

// VectorService is the facade over the Pinecone-backed vector store
// used to index and search message embeddings.
type VectorService struct {
	config        *vector.Config
	clientService *vector.ClientService
	retryService  *vector.RetryService
	vectorService *vector.VectorService
	logger        Logger
}

func NewVectorService(apiKey, indexHost, namespace string, logger Logger) (*VectorService, error) {
	config := vector.DefaultConfig()
	config.APIKey = apiKey
	config.IndexHost = indexHost
	config.Namespace = namespace

	if err := config.Validate(); err != nil {
		return nil, vector.NewConfigError(err.Error())
	}

	if logger == nil {
		logger = &NoOpLogger{}
	}

	clientService, err := vector.NewClientService(config, logger)
	if err != nil {
		return nil, err
	}

	retryService := vector.NewRetryService(config, logger)
	vectorService := vector.NewVectorService(clientService, retryService, config, logger)

	return &VectorService{
		config:        config,
		clientService: clientService,
		retryService:  retryService,
		vectorService: vectorService,
		logger:        logger,
	}, nil
}

// Vector Operations
func (s *VectorService) UpsertVector(ctx context.Context, id string, values []float32, metadata map[string]any) error {
	return s.vectorService.UpsertVector(ctx, id, values, metadata)
}

func (s *VectorService) QuerySimilar(ctx context.Context, embedding []float32, topK int, filter map[string]any) ([]*pineconeSDK.ScoredVector, error) {
	return s.vectorService.QuerySimilar(ctx, embedding, topK, filter)
}

func (s *VectorService) DeleteVector(ctx context.Context, id string) error {
	return s.vectorService.DeleteVector(ctx, id)
}

func (s *VectorService) FetchVector(ctx context.Context, id string) (*pineconeSDK.Vector, error) {
	return s.vectorService.FetchVector(ctx, id)
}

// Service Management
func (s *VectorService) HealthCheck(ctx context.Context) error {
	return s.clientService.HealthCheck(ctx)
}

func (s *VectorService) GetStatus(ctx context.Context) vector.ServiceStatus {
	return s.clientService.GetStatus(ctx)
}

func (s *VectorService) Close() error {
	return s.clientService.Close()
}
