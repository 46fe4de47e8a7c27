// File: cmd/server/main.go
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/gorilla/mux"
	"gorm.io/gorm"

	"github.com/huddlehq/huddle/internal/config"
	"github.com/huddlehq/huddle/internal/domain"
	"github.com/huddlehq/huddle/internal/handlers"
	"github.com/huddlehq/huddle/internal/middleware"
	"github.com/huddlehq/huddle/internal/ratelimit"
	"github.com/huddlehq/huddle/internal/realtime"
	channelrepo "github.com/huddlehq/huddle/internal/repository/channel"
	membershiprepo "github.com/huddlehq/huddle/internal/repository/membership"
	messagerepo "github.com/huddlehq/huddle/internal/repository/message"
	reactionrepo "github.com/huddlehq/huddle/internal/repository/reaction"
	readmarkerrepo "github.com/huddlehq/huddle/internal/repository/readmarker"
	threadlinkrepo "github.com/huddlehq/huddle/internal/repository/threadlink"
	userrepo "github.com/huddlehq/huddle/internal/repository/user"
	"github.com/huddlehq/huddle/internal/services"
	"github.com/huddlehq/huddle/internal/services/admin_services"
	"github.com/huddlehq/huddle/internal/services/ai"
	"github.com/huddlehq/huddle/internal/services/user_services"
	"github.com/huddlehq/huddle/internal/services/webhook"
)

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		w.Header().Set("Access-Control-Allow-Credentials", "true")
		w.Header().Set("Access-Control-Max-Age", "86400")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func main() {
	cfg := config.Load()

	db, err := gorm.Open(sqlite.Open(cfg.DatabasePath), &gorm.Config{})
	if err != nil {
		log.Fatalf("DB Error: %v", err)
	}

	if err := db.AutoMigrate(
		&domain.User{},
		&domain.Channel{},
		&domain.Membership{},
		&domain.Message{},
		&domain.ThreadLink{},
		&domain.Reaction{},
		&domain.ReadMarker{},
	); err != nil {
		log.Fatalf("DB Migration Error: %v", err)
	}

	// Channel names are unique only among active channels; a deleted
	// channel's name may be reused. AutoMigrate cannot express a
	// partial index, so it is created here.
	if err := db.Exec(
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_channels_active_name ON channels(name) WHERE deleted_at IS NULL",
	).Error; err != nil {
		log.Fatalf("DB Index Error: %v", err)
	}

	// --- Repositories ---
	userRepo := userrepo.NewGormUserRepository(db)
	channelRepo := channelrepo.NewChannelRepository(db)
	membershipRepo := membershiprepo.NewMembershipRepository(db)
	messageRepo := messagerepo.NewMessageRepository(db)
	threadLinkRepo := threadlinkrepo.NewThreadLinkRepository(db)
	reactionRepo := reactionrepo.NewReactionRepository(db)
	readMarkerRepo := readmarkerrepo.NewReadMarkerRepository(db)

	// --- Realtime bus ---
	var bus realtime.Bus = realtime.NoOpBus{}
	if cfg.RedisAddr != "" {
		redisBus, err := realtime.NewRedisBus(cfg.RedisAddr, cfg.RedisChannel)
		if err != nil {
			log.Printf("WARN: Redis unavailable, realtime events disabled: %v", err)
		} else {
			bus = redisBus
		}
	}

	// --- Services ---
	logger := services.NewLogger("huddle")

	channelService, err := services.NewChannelService(channelRepo, membershipRepo, userRepo, bus, logger)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize Channel Service: %v", err)
	}
	messageService, err := services.NewMessageService(messageRepo, channelRepo, threadLinkRepo, bus, logger)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize Message Service: %v", err)
	}
	reactionService, err := services.NewReactionService(reactionRepo, messageRepo, bus, logger)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize Reaction Service: %v", err)
	}
	readService, err := services.NewReadService(readMarkerRepo, messageRepo, bus, logger)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize Read Service: %v", err)
	}
	conversationService, err := services.NewConversationService(membershipRepo, channelRepo, messageRepo, userRepo, logger)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize Conversation Service: %v", err)
	}

	userService := user_services.NewUserService(userRepo, cfg.JWTSecretKey, cfg.AdminEmail, logger)
	adminService := admin_services.NewAdminService(userRepo, reactionRepo, threadLinkRepo)

	// AI agents are optional: without keys the routes answer 503 and
	// the conversation layer runs unchanged.
	var agentService *services.AgentService
	if cfg.AgentsEnabled() {
		aiConfig := ai.DefaultConfig()
		aiConfig.EmbeddingKey = cfg.AIEmbeddingKey
		aiConfig.EmbeddingBaseURL = cfg.AIEmbeddingBaseURL
		aiConfig.EmbeddingModel = cfg.EmbeddingModelName
		aiConfig.LLMKey = cfg.AILLMKey
		aiConfig.LLMBaseURL = cfg.AILLMBaseURL
		aiConfig.LLMModel = cfg.LLMModelName

		aiService, err := services.NewAIService(aiConfig)
		if err != nil {
			log.Fatalf("FATAL: Failed to initialize AI Service: %v", err)
		}
		vectorService, err := services.NewVectorService(cfg.PineconeAPIKey, cfg.PineconeIndexHost, cfg.PineconeNamespace, logger)
		if err != nil {
			log.Fatalf("FATAL: Failed to initialize Vector Service: %v", err)
		}
		agentService, err = services.NewAgentService(aiService, vectorService, messageRepo, logger)
		if err != nil {
			log.Fatalf("FATAL: Failed to initialize Agent Service: %v", err)
		}
	} else {
		log.Println("AI agent features disabled (missing provider configuration)")
	}

	var webhookService *services.WebhookService
	if cfg.WebhookEndpointURL != "" {
		webhookConfig := webhook.DefaultConfig()
		webhookConfig.EndpointURL = cfg.WebhookEndpointURL
		webhookConfig.Secret = cfg.WebhookSecret
		webhookService, err = services.NewWebhookService(webhookConfig, logger)
		if err != nil {
			log.Fatalf("FATAL: Failed to initialize Webhook Service: %v", err)
		}
	}

	// --- Event forwarder ---
	// Side channel only: indexing and webhook delivery failures are
	// logged and never affect the originating write.
	forwarderCtx, stopForwarder := context.WithCancel(context.Background())
	defer stopForwarder()
	if err := bus.StartForwarder(forwarderCtx, func(event realtime.Event) {
		if webhookService != nil {
			webhookService.Forward(forwarderCtx, event)
		}
		if agentService == nil {
			return
		}
		switch event.Name {
		case realtime.EventMessageCreated:
			messageID, ok := eventMessageID(event)
			if !ok {
				return
			}
			msg, err := messageRepo.FindByID(forwarderCtx, messageID)
			if err != nil {
				log.Printf("WARN: could not load message %d for indexing: %v", messageID, err)
				return
			}
			if err := agentService.IndexMessage(forwarderCtx, msg); err != nil {
				log.Printf("WARN: indexing message %d failed: %v", messageID, err)
			}
		case realtime.EventMessageDeleted:
			messageID, ok := eventMessageID(event)
			if !ok {
				return
			}
			if err := agentService.RemoveFromIndex(forwarderCtx, messageID); err != nil {
				log.Printf("WARN: de-indexing message %d failed: %v", messageID, err)
			}
		}
	}); err != nil {
		log.Printf("WARN: event forwarder not started: %v", err)
	}

	// --- Handlers ---
	authHandler := handlers.NewAuthHandler(userService)
	channelHandler := handlers.NewChannelHandler(channelService, readService)
	messageHandler := handlers.NewMessageHandler(messageService, channelService)
	reactionHandler := handlers.NewReactionHandler(reactionService, messageService, channelService)
	conversationHandler := handlers.NewConversationHandler(conversationService)
	agentHandler := handlers.NewAgentHandler(agentService, channelService)
	adminHandler := handlers.NewAdminHandler(adminService)

	// --- Router Setup ---
	r := mux.NewRouter()
	authMiddleware := middleware.NewJWTMiddleware(userService.AuthService)
	adminMiddleware := middleware.RequireAdmin(userRepo)
	authLimiter := ratelimit.NewMemoryRateLimiter(ratelimit.DefaultAuthConfig())
	defer authLimiter.Close()
	messageLimiter := ratelimit.NewMemoryRateLimiter(ratelimit.MessageConfig())
	defer messageLimiter.Close()

	r.Use(corsMiddleware)
	r.Use(middleware.RecoverPanic)
	r.Use(middleware.LoggingMiddleware)

	// --- Public Routes ---
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK); _, _ = w.Write([]byte("OK")) }).Methods("GET")

	authRoutes := r.PathPrefix("/api/auth").Subrouter()
	authRoutes.Use(middleware.RateLimitMiddleware(authLimiter, "auth"))
	authRoutes.Use(middleware.AuthSuccessMiddleware(authLimiter, "auth"))
	authRoutes.HandleFunc("/register", authHandler.Register).Methods("POST")
	authRoutes.HandleFunc("/login", authHandler.Login).Methods("POST")
	authRoutes.HandleFunc("/logout", authHandler.Logout).Methods("POST")

	// --- Protected Routes ---
	api := r.PathPrefix("/api").Subrouter()
	api.Use(authMiddleware)

	api.HandleFunc("/me", authHandler.GetMe).Methods("GET")
	api.HandleFunc("/me", authHandler.UpdateMe).Methods("PUT")

	api.HandleFunc("/channels", channelHandler.CreateChannel).Methods("POST")
	api.HandleFunc("/channels", channelHandler.ListMyChannels).Methods("GET")
	api.HandleFunc("/channels/public", channelHandler.ListPublicChannels).Methods("GET")
	api.HandleFunc("/channels/direct", channelHandler.GetOrCreateDirectChannel).Methods("POST")
	api.HandleFunc("/channels/unread", channelHandler.GetUnreadCounts).Methods("POST")
	api.HandleFunc("/channels/{id:[0-9]+}", channelHandler.GetChannel).Methods("GET")
	api.HandleFunc("/channels/{id:[0-9]+}", channelHandler.DeleteChannel).Methods("DELETE")
	api.HandleFunc("/channels/{id:[0-9]+}/members", channelHandler.ListMembers).Methods("GET")
	api.HandleFunc("/channels/{id:[0-9]+}/members", channelHandler.AddMember).Methods("POST")
	api.HandleFunc("/channels/{id:[0-9]+}/members/{userID:[0-9]+}", channelHandler.RemoveMember).Methods("DELETE")
	api.HandleFunc("/channels/{id:[0-9]+}/read", channelHandler.MarkRead).Methods("POST")
	api.HandleFunc("/channels/{id:[0-9]+}/unread", channelHandler.GetUnreadCount).Methods("GET")

	api.HandleFunc("/channels/{id:[0-9]+}/messages", messageHandler.ListMessages).Methods("GET")
	api.HandleFunc("/channels/{id:[0-9]+}/search", messageHandler.SearchMessages).Methods("GET")
	api.HandleFunc("/messages/{id:[0-9]+}", messageHandler.EditMessage).Methods("PUT")
	api.HandleFunc("/messages/{id:[0-9]+}", messageHandler.DeleteMessage).Methods("DELETE")
	api.HandleFunc("/messages/{id:[0-9]+}/replies", messageHandler.GetThreadReplies).Methods("GET")
	api.HandleFunc("/messages/{id:[0-9]+}/bookmark", messageHandler.ToggleBookmark).Methods("POST")
	api.HandleFunc("/messages/{id:[0-9]+}/pin", messageHandler.SetPinned).Methods("POST")

	api.HandleFunc("/messages/{id:[0-9]+}/reactions", reactionHandler.AddReaction).Methods("POST")
	api.HandleFunc("/messages/{id:[0-9]+}/reactions", reactionHandler.RemoveReaction).Methods("DELETE")
	api.HandleFunc("/messages/{id:[0-9]+}/reactions", reactionHandler.GetRollup).Methods("GET")
	api.HandleFunc("/messages/reactions", reactionHandler.GetRollups).Methods("POST")

	api.HandleFunc("/conversations", conversationHandler.ListConversations).Methods("GET")

	api.HandleFunc("/channels/{id:[0-9]+}/semantic-search", agentHandler.SemanticSearch).Methods("GET")
	api.HandleFunc("/channels/{id:[0-9]+}/summary", agentHandler.SummarizeChannel).Methods("GET")
	api.HandleFunc("/messages/{id:[0-9]+}/agenda", agentHandler.SuggestAgenda).Methods("GET")
	api.HandleFunc("/experts", agentHandler.FindExperts).Methods("GET")

	// Posting messages carries its own, looser limiter.
	postMessage := middleware.RateLimitMiddleware(messageLimiter, "messages")(http.HandlerFunc(messageHandler.CreateMessage))
	api.Handle("/channels/{id:[0-9]+}/messages", postMessage).Methods("POST")

	// --- Admin Routes ---
	adminApiRoutes := r.PathPrefix("/api/admin").Subrouter()
	adminApiRoutes.Use(authMiddleware)
	adminApiRoutes.Use(adminMiddleware)
	adminApiRoutes.HandleFunc("/users", adminHandler.GetAllUsersHandler).Methods("GET")
	adminApiRoutes.HandleFunc("/sweep", adminHandler.SweepOrphansHandler).Methods("POST")

	// --- Server Configuration ---
	port := ":" + cfg.ServerPort
	srv := &http.Server{
		Addr:    port,
		Handler: r,
	}

	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Printf("Huddle server starting on port %s", port)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server startup failed: %v", err)
		}
	}()

	// --- Graceful Shutdown ---
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Println("Shutting down server gracefully...")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server shutdown failed: %v", err)
	}
	stopForwarder()
	if err := bus.Close(); err != nil {
		log.Printf("WARN: closing event bus: %v", err)
	}
	log.Println("Server stopped gracefully")
}

// eventMessageID extracts the message id from an event payload. Events
// that crossed the wire carry JSON numbers (float64); locally emitted
// ones keep the original uint.
func eventMessageID(event realtime.Event) (uint, bool) {
	raw, ok := event.Payload["message_id"]
	if !ok {
		return 0, false
	}
	switch v := raw.(type) {
	case float64:
		return uint(v), true
	case uint:
		return v, true
	case int:
		return uint(v), true
	}
	return 0, false
}
