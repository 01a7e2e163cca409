package api

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/crewdigital/promptgate/internal/agents/invoice"
	"github.com/crewdigital/promptgate/internal/api/handlers"
	"github.com/crewdigital/promptgate/internal/api/middleware"
	"github.com/crewdigital/promptgate/internal/auth"
	"github.com/crewdigital/promptgate/internal/config"
	"github.com/crewdigital/promptgate/internal/events"
	"github.com/crewdigital/promptgate/internal/llm"
	"github.com/crewdigital/promptgate/internal/rbac"
	"github.com/crewdigital/promptgate/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"
)

// RequestIDHeader carries the per-request correlation id
const RequestIDHeader = "X-Request-ID"

// NewRouter creates and configures the Gin router
func NewRouter(cfg *config.Config, db *gorm.DB, generator llm.Generator, publisher events.Publisher) (*gin.Engine, error) {
	if cfg.Server.Mode == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	codec, err := auth.NewTokenCodec(cfg.Auth.JWTSecret, cfg.Auth.JWTAlgorithm)
	if err != nil {
		return nil, fmt.Errorf("failed to create token codec: %w", err)
	}
	authenticator := auth.NewBasicAuthenticator(db, codec, cfg.Auth.TokenTTL(), cfg.Auth.DefaultRole)

	promptSvc := service.NewPromptService(db, generator, publisher, cfg.LLM.Model)
	accountSvc := service.NewAccountService(db)

	authHandler := handlers.NewAuthHandler(authenticator)
	promptHandler := handlers.NewPromptHandler(promptSvc, invoice.NewExtractor(promptSvc))
	adminHandler := handlers.NewAdminHandler(accountSvc, promptSvc)
	infoHandler := handlers.NewInfoHandler(db, handlers.ServiceSettings{
		DefaultModel:      cfg.LLM.Model,
		GenerationBackend: cfg.LLM.BaseURL,
		TokenAlgorithm:    codec.Algorithm(),
		TokenTTLMinutes:   int(cfg.Auth.TokenTTL().Minutes()),
		EventsBackend:     cfg.Events.Type,
	})

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(requestIDMiddleware())
	router.Use(loggingMiddleware())
	router.Use(corsMiddleware())

	router.GET("/health", handlers.HealthCheck)

	prefix := cfg.Server.APIPrefix
	if prefix == "" {
		prefix = "/api/v1"
	}

	// Public routes
	public := router.Group(prefix)
	{
		public.GET("/health", handlers.HealthCheck)
		public.GET("/version", handlers.GetVersion)
		public.GET("/info", infoHandler.GetInfo)
		public.POST("/auth/register", authHandler.Register)
		public.POST("/auth/login", authHandler.Login)
	}

	// Protected routes (require authentication)
	protected := router.Group(prefix)
	protected.Use(authenticator.Middleware())
	{
		protected.GET("/auth/me", authHandler.Me)

		protected.POST("/prompts", middleware.RequirePermission(rbac.PermPromptsCreate), promptHandler.CreatePrompt)
		protected.GET("/prompts", promptHandler.ListPrompts)
		protected.GET("/prompts/:id", promptHandler.GetPrompt)
		protected.POST("/extract-invoice", middleware.RequirePermission(rbac.PermPromptsCreate), promptHandler.ExtractInvoice)

		admin := protected.Group("/admin")
		{
			admin.GET("/users", middleware.RequirePermission(rbac.PermUsersRead), adminHandler.ListUsers)
			admin.GET("/all-prompts", middleware.RequirePermission(rbac.PermPromptsReadAll), adminHandler.ListAllPrompts)
		}
	}

	// Swagger documentation
	router.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	slog.Info("API router initialized", "mode", cfg.Server.Mode, "prefix", prefix)
	return router, nil
}

// requestIDMiddleware propagates or assigns a request id
func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Writer.Header().Set(RequestIDHeader, id)
		c.Next()
	}
}

// loggingMiddleware logs HTTP requests
func loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()

		slog.Info("HTTP request",
			"method", method,
			"path", path,
			"status", status,
			"latency", latency.String(),
			"ip", c.ClientIP(),
			"request_id", c.GetString("request_id"),
		)
	}
}

// corsMiddleware adds CORS headers
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Request-ID")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
