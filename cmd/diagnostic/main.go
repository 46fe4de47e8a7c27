// File: cmd/diagnostic/main.go
//
// Connectivity check for the external collaborators: AI provider,
// vector store, and Redis. Run it after changing provider credentials.
package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/huddlehq/huddle/internal/config"
	"github.com/huddlehq/huddle/internal/realtime"
	"github.com/huddlehq/huddle/internal/services"
	"github.com/huddlehq/huddle/internal/services/ai"
)

func main() {
	cfg := config.Load()
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	fmt.Println("Huddle collaborator diagnostic")
	fmt.Println("------------------------------")

	if cfg.AgentsEnabled() {
		checkAI(ctx, cfg)
		checkVector(ctx, cfg)
	} else {
		fmt.Println("AI/vector: skipped (not configured)")
	}

	if cfg.RedisAddr != "" {
		checkRedis(cfg)
	} else {
		fmt.Println("Redis: skipped (not configured)")
	}
}

func checkAI(ctx context.Context, cfg *config.Config) {
	aiConfig := ai.DefaultConfig()
	aiConfig.EmbeddingKey = cfg.AIEmbeddingKey
	aiConfig.EmbeddingBaseURL = cfg.AIEmbeddingBaseURL
	aiConfig.EmbeddingModel = cfg.EmbeddingModelName
	aiConfig.LLMKey = cfg.AILLMKey
	aiConfig.LLMBaseURL = cfg.AILLMBaseURL
	aiConfig.LLMModel = cfg.LLMModelName

	aiService, err := services.NewAIService(aiConfig)
	if err != nil {
		log.Fatalf("AI provider: configuration invalid: %v", err)
	}

	status := aiService.GetProviderStatus(ctx)
	if !status.IsHealthy {
		fmt.Printf("AI provider: UNAVAILABLE (%s)\n", status.Message)
		return
	}
	fmt.Printf("AI provider: OK (embedding=%t llm=%t)\n", status.EmbeddingHealthy, status.LLMHealthy)

	embedding, err := aiService.CreateEmbedding(ctx, "diagnostic ping")
	if err != nil {
		fmt.Printf("Embedding: FAILED (%v)\n", err)
		return
	}
	fmt.Printf("Embedding: OK (%d dimensions)\n", len(embedding))
}

func checkVector(ctx context.Context, cfg *config.Config) {
	vectorService, err := services.NewVectorService(
		cfg.PineconeAPIKey,
		cfg.PineconeIndexHost,
		cfg.PineconeNamespace,
		services.NewLogger("diagnostic"),
	)
	if err != nil {
		fmt.Printf("Vector store: FAILED to connect (%v)\n", err)
		return
	}
	defer vectorService.Close()

	if err := vectorService.HealthCheck(ctx); err != nil {
		fmt.Printf("Vector store: UNHEALTHY (%v)\n", err)
		return
	}
	fmt.Println("Vector store: OK")
}

func checkRedis(cfg *config.Config) {
	bus, err := realtime.NewRedisBus(cfg.RedisAddr, cfg.RedisChannel)
	if err != nil {
		fmt.Printf("Redis: UNREACHABLE (%v)\n", err)
		return
	}
	defer bus.Close()
	fmt.Println("Redis: OK")
}
