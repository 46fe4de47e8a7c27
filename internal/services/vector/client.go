// File: internal/services/vector/client.go
package vector

import (
	"context"

	"github.com/pinecone-io/go-pinecone/v4/pinecone"
)

// ClientService owns the Pinecone client and index connection.
type ClientService struct {
	config *Config
	client *pinecone.Client
	index  *pinecone.IndexConnection
	logger Logger
}

func NewClientService(config *Config, logger Logger) (*ClientService, error) {
	if err := config.Validate(); err != nil {
		return nil, NewConfigError(err.Error())
	}

	client, err := pinecone.NewClient(pinecone.NewClientParams{
		ApiKey: config.APIKey,
	})
	if err != nil {
		return nil, NewConnectionError("client", "failed to create Pinecone client", err)
	}

	index, err := client.Index(pinecone.NewIndexConnParams{
		Host:      config.IndexHost,
		Namespace: config.Namespace,
	})
	if err != nil {
		return nil, NewConnectionError("index", "failed to open index connection", err)
	}

	logger.Info("Pinecone client initialized successfully",
		"host", config.IndexHost,
		"namespace", config.Namespace)

	return &ClientService{
		config: config,
		client: client,
		index:  index,
		logger: logger,
	}, nil
}

func (c *ClientService) Index() *pinecone.IndexConnection {
	return c.index
}

// HealthCheck verifies the index connection by asking for its stats.
func (c *ClientService) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	if _, err := c.index.DescribeIndexStats(ctx); err != nil {
		c.logger.Error("vector store health check failed", "error", err)
		return NewConnectionError("health_check", "describe index stats failed", err)
	}

	c.logger.Debug("vector store health check passed")
	return nil
}

func (c *ClientService) GetStatus(ctx context.Context) ServiceStatus {
	err := c.HealthCheck(ctx)
	isHealthy := err == nil

	return ServiceStatus{
		IsHealthy:         isHealthy,
		ConnectionHealthy: isHealthy,
		IndexHealthy:      isHealthy,
		IndexHost:         c.config.IndexHost,
		Namespace:         c.config.Namespace,
		Message:           "Pinecone vector store",
	}
}

func (c *ClientService) Close() error {
	if c.index != nil {
		return c.index.Close()
	}
	return nil
}
