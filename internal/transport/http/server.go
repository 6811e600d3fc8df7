package http

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"

	"guestdesk/internal/ai"
	"guestdesk/internal/bootstrap"
	"guestdesk/internal/cache"
	"guestdesk/internal/chat"
	"guestdesk/internal/classify"
	"guestdesk/internal/knowledge"
	"guestdesk/internal/platform/rabbitmq"
	"guestdesk/internal/repository"
	"guestdesk/internal/tenant"
	"guestdesk/internal/transport/http/handler"
	"guestdesk/internal/transport/http/middleware"
)

func NewRouter(app *bootstrap.App) (*gin.Engine, error) {
	gin.SetMode(app.Config.App.GinMode)
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	healthHandler := handler.NewHealthHandler(app)
	router.GET("/healthz", healthHandler.Check)

	tenantRepo := repository.NewTenantRepository(app.MySQL)
	documentRepo := repository.NewDocumentRepository(app.MySQL)
	chunkRepo := repository.NewChunkRepository(app.MySQL)
	sessionRepo := repository.NewSessionRepository(app.MySQL)
	messageRepo := repository.NewMessageRepository(app.MySQL)
	curatedRepo := repository.NewCuratedMessageRepository(app.MySQL)

	tenantService := tenant.NewService(
		tenantRepo,
		app.Config.Auth.JWTSecret,
		time.Duration(app.Config.Auth.JWTExpireMinute)*time.Minute,
	)

	retrievalMode, err := knowledge.ParseMode(app.Config.Retrieval.Mode)
	if err != nil {
		return nil, fmt.Errorf("invalid retrieval mode: %w", err)
	}
	knowledgeService := knowledge.NewService(
		documentRepo,
		chunkRepo,
		retrievalMode,
		app.Config.Retrieval.MaxChunks,
		app.Config.Ingest.ChunkSize,
		app.Config.Ingest.ChunkOverlap,
	)

	generator, err := ai.NewGenerator(ai.Config{
		Provider:  app.Config.LLM.Provider,
		BaseURL:   app.Config.LLM.BaseURL,
		APIKey:    app.Config.LLM.APIKey,
		Model:     app.Config.LLM.Model,
		MaxTokens: app.Config.LLM.MaxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("build generator failed: %w", err)
	}

	historyCache := cache.NewHistoryCache(
		app.Redis,
		time.Duration(app.Config.Redis.HistoryTTLSeconds)*time.Second,
		time.Duration(app.Config.Redis.HistoryDirtyTTLSeconds)*time.Second,
	)
	curatedPublisher := rabbitmq.NewCuratedPublisher(app.MQConn, app.Config.RabbitMQ.CuratedPersistQueue)

	chatService := chat.NewService(
		sessionRepo,
		messageRepo,
		curatedRepo,
		curatedPublisher,
		historyCache,
		knowledgeService,
		generator,
		classify.NewKeyword(),
		app.Config.Chat.Greeting,
		app.Config.Chat.MaxContextMessage,
	)

	authHandler := handler.NewAuthHandler(tenantService)
	knowledgeHandler := handler.NewKnowledgeHandler(knowledgeService)
	chatHandler := handler.NewChatHandler(chatService)

	v1 := router.Group("/api/v1")

	authGroup := v1.Group("/auth")
	authGroup.POST("/register", authHandler.Register)
	authGroup.POST("/login", authHandler.Login)
	authGroup.GET("/me", middleware.AuthJWT(app.Config.Auth.JWTSecret), authHandler.Me)

	// public guest entry, scoped by the tenant id in the URL
	v1.POST("/guest/:tenant_id/chat", chatHandler.GuestTurn)

	knowledgeGroup := v1.Group("/knowledge")
	knowledgeGroup.Use(middleware.AuthJWT(app.Config.Auth.JWTSecret))
	knowledgeGroup.POST("/documents", knowledgeHandler.Upload)
	knowledgeGroup.POST("/documents/replace", knowledgeHandler.Replace)
	knowledgeGroup.GET("/documents", knowledgeHandler.List)
	knowledgeGroup.DELETE("/documents/:id", knowledgeHandler.Delete)
	knowledgeGroup.DELETE("/documents", knowledgeHandler.DeleteAll)

	chatGroup := v1.Group("/chat")
	chatGroup.Use(middleware.AuthJWT(app.Config.Auth.JWTSecret))
	chatGroup.GET("/sessions", chatHandler.ListSessions)
	chatGroup.GET("/sessions/:id/messages", chatHandler.GetTranscript)
	chatGroup.POST("/sessions/:id/clear", chatHandler.ClearSession)
	chatGroup.DELETE("/sessions/:id", chatHandler.DeleteSession)

	curatedGroup := v1.Group("/curated")
	curatedGroup.Use(middleware.AuthJWT(app.Config.Auth.JWTSecret))
	curatedGroup.GET("", chatHandler.ListCurated)
	curatedGroup.POST("/:id/read", chatHandler.MarkCuratedRead)

	return router, nil
}
