// File: internal/config/config.go
package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerPort   string
	DatabasePath string
	JWTSecretKey string
	AdminEmail   string

	// Realtime fan-out
	RedisAddr    string
	RedisChannel string

	// AI agent collaborators
	AIEmbeddingKey     string
	AIEmbeddingBaseURL string
	AILLMKey           string
	AILLMBaseURL       string
	EmbeddingModelName string
	LLMModelName       string
	PineconeAPIKey     string
	PineconeIndexHost  string
	PineconeNamespace  string
	SearchTopK         int

	// Outgoing webhook receiver
	WebhookEndpointURL string
	WebhookSecret      string

	Environment string
}

// Load reads configuration from environment variables or .env file.
func Load() *Config {
	env := os.Getenv("ENV")
	if strings.ToLower(env) != "production" {
		if err := godotenv.Load(); err != nil {
			log.Println("No .env file found; continuing with environment variables")
		}
	}

	cfg := &Config{
		ServerPort:         getEnv("SERVER_PORT", "8080"),
		DatabasePath:       getEnv("DATABASE_PATH", "huddle.db"),
		JWTSecretKey:       getEnv("JWT_SECRET_KEY", ""),
		AdminEmail:         getEnv("ADMIN_EMAIL", ""),
		RedisAddr:          getEnv("REDIS_ADDR", ""),
		RedisChannel:       getEnv("REDIS_CHANNEL", "huddle.events"),
		AIEmbeddingKey:     getEnv("AI_EMBEDDING_KEY", ""),
		AIEmbeddingBaseURL: getEnv("AI_EMBEDDING_BASE_URL", ""),
		AILLMKey:           getEnv("AI_LLM_KEY", ""),
		AILLMBaseURL:       getEnv("AI_LLM_BASE_URL", ""),
		EmbeddingModelName: getEnv("AI_EMBEDDING_MODEL", "text-embedding-3-small"),
		LLMModelName:       getEnv("AI_LLM_MODEL", "gpt-4o-mini"),
		PineconeAPIKey:     getEnv("PINECONE_API_KEY", ""),
		PineconeIndexHost:  getEnv("PINECONE_INDEX_HOST", ""),
		PineconeNamespace:  getEnv("PINECONE_NAMESPACE", "huddle-messages"),
		SearchTopK:         getEnvAsInt("SEARCH_TOPK", 10),
		WebhookEndpointURL: getEnv("WEBHOOK_ENDPOINT_URL", ""),
		WebhookSecret:      getEnv("WEBHOOK_SECRET", ""),
		Environment:        env,
	}

	// Validation for production environments
	if strings.ToLower(env) == "production" {
		missing := []string{}
		if cfg.JWTSecretKey == "" {
			missing = append(missing, "JWT_SECRET_KEY")
		}
		if len(missing) > 0 {
			log.Fatalf("Missing required production environment variables: %v", missing)
		}
	}

	return cfg
}

// AgentsEnabled reports whether the AI agent collaborators are fully
// configured; the server runs without them otherwise.
func (c *Config) AgentsEnabled() bool {
	return c.AIEmbeddingKey != "" && c.AILLMKey != "" &&
		c.PineconeAPIKey != "" && c.PineconeIndexHost != ""
}

// getEnv returns the value of an environment variable or a default.
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvAsInt gets an env var as an integer, with a fallback.
func getEnvAsInt(key string, defaultValue int) int {
	strValue := getEnv(key, "")
	if strValue == "" {
		return defaultValue
	}
	intValue, err := strconv.Atoi(strValue)
	if err != nil {
		log.Printf("Warning: could not parse env var %s as integer. Using default value.", key)
		return defaultValue
	}
	return intValue
}
