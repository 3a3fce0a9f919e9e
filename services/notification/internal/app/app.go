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
	"storynest/pkg/validation"
	notificationHTTP "storynest/services/notification/internal/controller/http"
	"storynest/services/notification/internal/repo/persistent"
	"storynest/services/notification/internal/usecase"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"
)

const serviceName = "notification"

type App struct {
	cfg          *config.Config
	log          *logger.Logger
	db           *gorm.DB
	redisClient  *redis.Client
	jwtService   *jwt.Service
	queueClient  *queue.Client
	httpServer   *http.Server
	stopConsumer context.CancelFunc
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
		jwtService:  jwt.NewService(cfg.JWTSecret),
		queueClient: queueClient,
	}, nil
}

func (a *App) Run() error {
	validation.Register()

	// Initialize repository
	notificationRepo := persistent.NewNotificationRepository(a.db)

	broker := realtime.NewRedisBroker(a.redisClient, a.log)

	var tasks usecase.TaskPublisher
	if a.queueClient != nil {
		tasks = a.queueClient
	}

	// Initialize use case
	notificationUseCase := usecase.NewNotificationUseCase(notificationRepo, tasks, broker, a.log)

	// Initialize HTTP handlers
	notificationHandler := notificationHTTP.NewNotificationHandler(notificationUseCase)
	realtimeHandler := notificationHTTP.NewRealtimeHandler(broker, a.jwtService, a.log)

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
		// WebSocket endpoint - authenticates via the token query parameter
		api.GET("/realtime/ws", realtimeHandler.HandleWebSocket)

		protected := api.Group("")
		protected.Use(middleware.AuthMiddleware(a.jwtService))
		{
			protected.GET("/notifications", notificationHandler.GetNotifications)
			protected.POST("/notifications/read-all", notificationHandler.MarkAllAsRead)
			protected.POST("/notifications/:id/read", notificationHandler.MarkAsRead)
		}

		admin := protected.Group("")
		admin.Use(middleware.RequireRoles(string(models.UserTypeAdmin)))
		{
			admin.POST("/notifications", notificationHandler.CreateNotification)
			admin.POST("/notifications/broadcast", notificationHandler.BroadcastNotification)
		}
	}

	// Start consuming notification tasks
	consumerCtx, stopConsumer := context.WithCancel(context.Background())
	a.stopConsumer = stopConsumer
	if a.queueClient != nil {
		a.log.Info("Starting notification queue processor...")
		if err := a.queueClient.Consume(consumerCtx, notificationUseCase.HandleTask); err != nil {
			a.log.Error("Error starting notification queue consumer: %v", err)
		}
	}

	// Create HTTP server
	a.httpServer = &http.Server{
		Addr:    ":" + a.cfg.ServerPort,
		Handler: r,
	}

	// Start server in a goroutine
	go func() {
		a.log.Info("Notification service starting on port %s", a.cfg.ServerPort)
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
	a.log.Info("Shutting down notification service...")
}

func (a *App) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if a.stopConsumer != nil {
		a.stopConsumer()
	}

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

	a.log.Info("Notification service exited")
	a.log.Close()
	return nil
}
