// File: internal/services/vector/repository.go
package vector

import (
	"context"

	"github.com/pinecone-io/go-pinecone/v4/pinecone"
	"google.golang.org/protobuf/types/known/structpb"
)

type VectorService struct {
	client *ClientService
	retry  *RetryService
	config *Config
	logger Logger
}

func NewVectorService(client *ClientService, retry *RetryService, config *Config, logger Logger) *VectorService {
	return &VectorService{
		client: client,
		retry:  retry,
		config: config,
		logger: logger,
	}
}

func (v *VectorService) UpsertVector(ctx context.Context, id string, values []float32, metadata map[string]interface{}) error {
	return v.retry.RetryWithTimeout(func(ctx context.Context) error {
		return v.upsertVectorOperation(ctx, id, values, metadata)
	})
}

func (v *VectorService) upsertVectorOperation(ctx context.Context, id string, values []float32, metadata map[string]interface{}) error {
	v.logger.Debug("upserting vector", "id", id, "dimension", len(values))

	var meta *pinecone.Metadata
	if len(metadata) > 0 {
		structMeta, err := structpb.NewStruct(metadata)
		if err != nil {
			return NewOperationError("invalid vector metadata", err)
		}
		meta = structMeta
	}

	vec := &pinecone.Vector{
		Id:       id,
		Values:   &values,
		Metadata: meta,
	}
	if _, err := v.client.Index().UpsertVectors(ctx, []*pinecone.Vector{vec}); err != nil {
		v.logger.Error("vector upsert failed", "id", id, "error", err)
		return NewOperationError("upsert operation failed", err)
	}
	return nil
}

func (v *VectorService) QuerySimilar(ctx context.Context, embedding []float32, topK int, filter map[string]interface{}) ([]*pinecone.ScoredVector, error) {
	var result []*pinecone.ScoredVector
	err := v.retry.RetryWithTimeout(func(ctx context.Context) error {
		var err error
		result, err = v.querySimilarOperation(ctx, embedding, topK, filter)
		return err
	})
	return result, err
}

func (v *VectorService) querySimilarOperation(ctx context.Context, embedding []float32, topK int, filter map[string]interface{}) ([]*pinecone.ScoredVector, error) {
	v.logger.Debug("querying similar vectors", "topK", topK, "dimension", len(embedding))

	req := &pinecone.QueryByVectorValuesRequest{
		Vector:          embedding,
		TopK:            uint32(topK),
		IncludeValues:   false,
		IncludeMetadata: true,
	}
	if len(filter) > 0 {
		metadataFilter, err := structpb.NewStruct(filter)
		if err != nil {
			return nil, NewOperationError("invalid metadata filter", err)
		}
		req.MetadataFilter = metadataFilter
	}

	resp, err := v.client.Index().QueryByVectorValues(ctx, req)
	if err != nil {
		v.logger.Error("similarity search failed", "error", err)
		return nil, NewOperationError("search operation failed", err)
	}

	v.logger.Debug("similarity search completed", "results_count", len(resp.Matches))
	return resp.Matches, nil
}

func (v *VectorService) DeleteVector(ctx context.Context, id string) error {
	return v.retry.RetryWithTimeout(func(ctx context.Context) error {
		return v.deleteVectorOperation(ctx, id)
	})
}

func (v *VectorService) deleteVectorOperation(ctx context.Context, id string) error {
	v.logger.Debug("deleting vector", "id", id)

	if err := v.client.Index().DeleteVectorsById(ctx, []string{id}); err != nil {
		v.logger.Error("vector delete failed", "id", id, "error", err)
		return NewOperationError("delete operation failed", err)
	}
	return nil
}

func (v *VectorService) FetchVector(ctx context.Context, id string) (*pinecone.Vector, error) {
	var result *pinecone.Vector
	err := v.retry.RetryWithTimeout(func(ctx context.Context) error {
		var err error
		result, err = v.fetchVectorOperation(ctx, id)
		return err
	})
	return result, err
}

func (v *VectorService) fetchVectorOperation(ctx context.Context, id string) (*pinecone.Vector, error) {
	v.logger.Debug("fetching vector", "id", id)

	resp, err := v.client.Index().FetchVectors(ctx, []string{id})
	if err != nil {
		v.logger.Error("vector fetch failed", "id", id, "error", err)
		return nil, NewOperationError("fetch operation failed", err)
	}
	vec, ok := resp.Vectors[id]
	if !ok {
		return nil, NewOperationError("vector not found", nil)
	}
	return vec, nil
}
