package app

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"storynest/pkg/cache"
	"storynest/pkg/config"
	"storynest/pkg/database"
	"storynest/pkg/jwt"
	"storynest/pkg/logger"
	"storynest/pkg/metrics"
	"storynest/pkg/middleware"
	"storynest/pkg/models"
	"storynest/pkg/queue"
	"storynest/pkg/realtime"
	"storynest/pkg/s3"
	"storynest/pkg/validation"
	contentHTTP "storynest/services/content/internal/controller/http"
	ratingcache "storynest/services/content/internal/repo/cache"
	"storynest/services/content/internal/repo/persistent"
	"storynest/services/content/internal/usecase"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"
)

const serviceName = "content"

type App struct {
	cfg         *config.Config
	log         *logger.Logger
	db          *gorm.DB
	redisClient *redis.Client
	s3Client    *s3.Client
	jwtService  *jwt.Service
	queueClient *queue.Client
	httpServer  *http.Server
}

func NewApp(cfg *config.Config) (*App, error) {
	log := logger.New().WithRollbar(cfg.RollbarToken, cfg.Environment, serviceName)

	db, err := database.New(cfg)
	if err != nil {
		log.Error("Failed to connect to database: %v", err)
		return nil, err
	}

	redisClient, err := cache.NewRedisClient(cfg)
	if err != nil {
		log.Error("Failed to connect to redis: %v", err)
		return nil, err
	}

	s3Client, err := s3.NewClient(cfg)
	if err != nil {
		log.Error("Failed to create S3 client: %v", err)
		return nil, err
	}

	queueClient, err := queue.NewRabbitMQClient(cfg, log)
	if err != nil {
		log.Error("Failed to connect to RabbitMQ: %v (continuing without queue)", err)
		queueClient = nil
	}

	return &App{
		cfg:         cfg,
		log:         log,
		db:          db,
		redisClient: redisClient,
		s3Client:    s3Client,
		jwtService:  jwt.NewService(cfg.JWTSecret),
		queueClient: queueClient,
	}, nil
}

func (a *App) Run() error {
	validation.Register()

	// Initialize repositories
	contentRepo := persistent.NewContentRepository(a.db)
	favoriteRepo := persistent.NewFavoriteRepository(a.db)
	feedbackRepo := persistent.NewFeedbackRepository(a.db)
	ratings := ratingcache.NewRatingCache(a.redisClient)

	broker := realtime.NewRedisBroker(a.redisClient, a.log)

	var tasks usecase.TaskPublisher
	if a.queueClient != nil {
		tasks = a.queueClient
	}

	// Initialize use cases
	contentUseCase := usecase.NewContentUseCase(contentRepo, a.s3Client, broker, a.log)
	favoriteUseCase := usecase.NewFavoriteUseCase(favoriteRepo, contentRepo, broker, a.log)
	feedbackUseCase := usecase.NewFeedbackUseCase(feedbackRepo, contentRepo, ratings, tasks, broker, a.log)

	// Initialize HTTP handlers
	contentHandler := contentHTTP.NewContentHandler(contentUseCase, favoriteUseCase, a.log)
	feedbackHandler := contentHTTP.NewFeedbackHandler(feedbackUseCase)

	// Setup router
	r := gin.Default()
	r.Use(metrics.Middleware(serviceName))

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{a.cfg.SiteURL},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", middleware.APIKeyHeader},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	r.GET("/metrics", metrics.Handler())

	// Swagger documentation
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := r.Group("/api/v1")
	api.Use(middleware.APIKeyMiddleware(a.cfg.PublicAPIKey))
	{
		api.GET("/content", contentHandler.ListContent)
		api.GET("/content/:id", contentHandler.GetContent)
		api.GET("/content/:id/feedback", feedbackHandler.ListFeedback)

		protected := api.Group("")
		protected.Use(middleware.AuthMiddleware(a.jwtService))
		{
			protected.PUT("/content/:id/feedback", feedbackHandler.SubmitFeedback)

			protected.GET("/favorites", contentHandler.ListFavorites)
			protected.GET("/favorites/:content_id", contentHandler.IsFavorited)
			protected.POST("/favorites/:content_id/toggle", contentHandler.ToggleFavorite)
		}

		uploaders := protected.Group("")
		uploaders.Use(middleware.RequireRoles(string(models.UserTypeTeacher), string(models.UserTypeAdmin)))
		{
			uploaders.POST("/content", contentHandler.CreateContent)
		}

		admin := protected.Group("")
		admin.Use(middleware.RequireRoles(string(models.UserTypeAdmin)))
		{
			admin.POST("/feedback/:feedback_id/responses", feedbackHandler.RespondToFeedback)
			admin.GET("/admin/content", feedbackHandler.ContentMetrics)
		}
	}

	// Create HTTP server
	a.httpServer = &http.Server{
		Addr:    ":" + a.cfg.ServerPort,
		Handler: r,
	}

	// Start server in a goroutine
	go func() {
		a.log.Info("Content service starting on port %s", a.cfg.ServerPort)
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.log.Error("Failed to start server: %v", err)
			panic(err)
		}
	}()

	return nil
}

func (a *App) Wait() {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	a.log.Info("Shutting down content service...")
}

func (a *App) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := a.httpServer.Shutdown(ctx); err != nil {
		a.log.Error("Server forced to shutdown: %v", err)
		return err
	}

	if a.queueClient != nil {
		if err := a.queueClient.Close(); err != nil {
			a.log.Error("Error closing RabbitMQ: %v", err)
		}
	}

	sqlDB, err := a.db.DB()
	if err == nil {
		if err := sqlDB.Close(); err != nil {
			a.log.Error("Error closing database: %v", err)
		}
	}

	if err := a.redisClient.Close(); err != nil {
		a.log.Error("Error closing Redis: %v", err)
	}

	a.log.Info("Content service exited")
	a.log.Close()
	return nil
}
