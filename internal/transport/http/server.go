package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/fsgmhh-Ray/ai-agent-dashboard/internal/ai"
	appsvc "github.com/fsgmhh-Ray/ai-agent-dashboard/internal/app"
	"github.com/fsgmhh-Ray/ai-agent-dashboard/internal/bootstrap"
	"github.com/fsgmhh-Ray/ai-agent-dashboard/internal/cache"
	gcsClient "github.com/fsgmhh-Ray/ai-agent-dashboard/internal/platform/gcs"
	rabbitmqClient "github.com/fsgmhh-Ray/ai-agent-dashboard/internal/platform/rabbitmq"
	"github.com/fsgmhh-Ray/ai-agent-dashboard/internal/repository"
	"github.com/fsgmhh-Ray/ai-agent-dashboard/internal/transport/http/handler"
	"github.com/fsgmhh-Ray/ai-agent-dashboard/internal/transport/http/middleware"
)

func NewRouter(app *bootstrap.App) *gin.Engine {
	gin.SetMode(app.Config.App.GinMode)
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	// The relay contract promises 405 on a wrong verb, not 404.
	router.HandleMethodNotAllowed = true
	router.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, gin.H{"error": "Method not allowed"})
	})

	healthHandler := handler.NewHealthHandler(app)
	router.GET("/healthz", healthHandler.Check)

	userRepo := repository.NewUserRepository(app.MySQL)
	documentRepo := repository.NewDocumentRepository(app.MySQL)

	tokenDenylist := cache.NewTokenDenylist(app.Redis)
	documentCache := cache.NewDocumentListCache(
		app.Redis,
		time.Duration(app.Config.Redis.DocumentListTTLSeconds)*time.Second,
	)

	clients := map[ai.Provider]ai.Client{
		ai.ProviderOpenAI: ai.NewOpenAIClient(app.Config.OpenAI.BaseURL, app.Config.OpenAI.APIKey, app.Config.OpenAI.Model),
		ai.ProviderGemini: ai.NewGeminiClient(app.Config.Gemini.BaseURL, app.Config.Gemini.APIKey, app.Config.Gemini.Model),
	}
	auditPublisher := rabbitmqClient.NewAuditPublisher(app.MQConn, app.Config.RabbitMQ.GenerationAuditQueue)
	bucketStore := gcsClient.NewBucketStore(app.Storage, app.Config.Storage.Bucket)

	relayService := appsvc.NewRelayService(clients, auditPublisher)
	authService := appsvc.NewAuthService(
		userRepo,
		tokenDenylist,
		app.Config.Auth.JWTSecret,
		time.Duration(app.Config.Auth.JWTExpireMinute)*time.Minute,
	)
	documentService := appsvc.NewDocumentService(documentRepo, documentCache, bucketStore)

	generateHandler := handler.NewGenerateHandler(relayService)
	authHandler := handler.NewAuthHandler(authService)
	documentHandler := handler.NewDocumentHandler(documentService)

	v1 := router.Group("/api/v1")
	v1.POST("/generate",
		middleware.OptionalAuthJWT(app.Config.Auth.JWTSecret, tokenDenylist),
		generateHandler.Generate,
	)

	authGroup := v1.Group("/auth")
	authGroup.POST("/register", authHandler.Register)
	authGroup.POST("/login", authHandler.Login)
	authGroup.POST("/logout", middleware.AuthJWT(app.Config.Auth.JWTSecret, tokenDenylist), authHandler.Logout)
	authGroup.GET("/me", middleware.AuthJWT(app.Config.Auth.JWTSecret, tokenDenylist), authHandler.Me)

	documentGroup := v1.Group("/documents")
	documentGroup.Use(middleware.AuthJWT(app.Config.Auth.JWTSecret, tokenDenylist))
	documentGroup.GET("", documentHandler.List)
	documentGroup.POST("", documentHandler.Create)
	documentGroup.DELETE("/:id", documentHandler.Delete)
	documentGroup.POST("/upload", documentHandler.Upload)

	return router
}
