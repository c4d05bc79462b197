package main

import (
	"fmt"
	"net/http"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/iyunix/chat-gateway/internal/config"
	"github.com/iyunix/chat-gateway/internal/handlers"
	"github.com/iyunix/chat-gateway/internal/middleware"
	"github.com/iyunix/chat-gateway/internal/repository/category"
	"github.com/iyunix/chat-gateway/internal/repository/conversation"
	"github.com/iyunix/chat-gateway/internal/repository/message"
	"github.com/iyunix/chat-gateway/internal/repository/model"
	"github.com/iyunix/chat-gateway/internal/repository/user"
	"github.com/iyunix/chat-gateway/internal/seed"
	"github.com/iyunix/chat-gateway/internal/services"
	"github.com/iyunix/chat-gateway/internal/services/admin_services"
	"github.com/iyunix/chat-gateway/internal/services/chat"
	"github.com/iyunix/chat-gateway/internal/services/prompt"
	"github.com/iyunix/chat-gateway/internal/services/provider"
	"github.com/iyunix/chat-gateway/internal/services/registry"
	"github.com/iyunix/chat-gateway/internal/services/user_services"
)

type repositories struct {
	users         user.UserRepository
	categories    category.CategoryRepository
	models        model.ModelRepository
	conversations conversation.ConversationRepository
	messages      message.MessageRepository
}

func newRepositories(db *gorm.DB) *repositories {
	return &repositories{
		users:         user.NewGormUserRepository(db),
		categories:    category.NewCategoryRepository(db),
		models:        model.NewModelRepository(db),
		conversations: conversation.NewConversationRepository(db),
		messages:      message.NewMessageRepository(db),
	}
}

func (r *repositories) seeder(base *logrus.Logger) *seed.Seeder {
	return seed.NewSeeder(r.users, r.categories, r.models, services.NewLogrusLogger(base, "seed"))
}

// defaultProviders builds the local and cloud providers from configuration.
func defaultProviders(cfg *config.Config, base *logrus.Logger) ([]provider.Provider, error) {
	ollamaCfg := provider.DefaultOllamaConfig()
	ollamaCfg.Host = cfg.OllamaHost
	if err := ollamaCfg.Validate(); err != nil {
		return nil, err
	}

	groqCfg := provider.DefaultGroqConfig()
	groqCfg.APIKey = cfg.GroqAPIKey
	if cfg.GroqBaseURL != "" {
		groqCfg.BaseURL = cfg.GroqBaseURL
	}
	groqCfg.CatalogTTL = cfg.CloudCatalogTTL

	return []provider.Provider{
		provider.NewOllamaProvider(ollamaCfg, services.NewLogrusLogger(base, "ollama")),
		provider.NewGroqProvider(groqCfg, services.NewLogrusLogger(base, "groq")),
	}, nil
}

// buildHandler wires repositories, services and handlers into the router.
func buildHandler(cfg *config.Config, base *logrus.Logger, db *gorm.DB, providers []provider.Provider) (http.Handler, error) {
	repos := newRepositories(db)

	assembler, err := prompt.NewAssembler(cfg.PromptsDir)
	if err != nil {
		return nil, fmt.Errorf("load prompt templates: %w", err)
	}

	// --- Services ---
	authService := user_services.NewAuthService(repos.users, cfg.SecretKey, cfg.AccessTokenTTL, services.NewLogrusLogger(base, "auth"))
	modelRegistry := registry.NewRegistry(repos.models, services.NewLogrusLogger(base, "registry"), providers...)
	orchestrator := chat.NewOrchestrator(
		chat.DefaultConfig(),
		modelRegistry,
		repos.conversations,
		repos.messages,
		repos.categories,
		assembler,
		middleware.NewMetrics(),
		services.NewLogrusLogger(base, "chat"),
	)
	conversationService := chat.NewConversationService(repos.conversations, services.NewLogrusLogger(base, "conversations"))
	adminService := admin_services.NewAdminService(repos.users, repos.categories, repos.models, repos.conversations, repos.messages)

	// --- Handlers ---
	handlerLogger := services.NewLogrusLogger(base, "http")
	return newRouter(routeDeps{
		auth:          handlers.NewAuthHandler(authService, handlerLogger),
		models:        handlers.NewModelHandler(modelRegistry, handlerLogger),
		chat:          handlers.NewChatHandler(orchestrator, conversationService, handlerLogger),
		admin:         handlers.NewAdminHandler(adminService, handlerLogger),
		authenticator: authService,
		logger:        handlerLogger,
	}), nil
}
