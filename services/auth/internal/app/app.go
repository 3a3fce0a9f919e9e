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
	"storynest/pkg/email"
	"storynest/pkg/jwt"
	"storynest/pkg/logger"
	"storynest/pkg/metrics"
	"storynest/pkg/middleware"
	"storynest/pkg/models"
	"storynest/pkg/realtime"
	"storynest/pkg/s3"
	"storynest/pkg/validation"
	authHTTP "storynest/services/auth/internal/controller/http"
	codecache "storynest/services/auth/internal/repo/cache"
	"storynest/services/auth/internal/repo/persistent"
	"storynest/services/auth/internal/usecase"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"
)

const serviceName = "auth"

type App struct {
	cfg         *config.Config
	log         *logger.Logger
	db          *gorm.DB
	redisClient *redis.Client
	s3Client    *s3.Client
	jwtService  *jwt.Service
	httpServer  *http.Server

	authUseCase usecase.AuthUseCase
	stopPurge   context.CancelFunc
}

func NewApp(cfg *config.Config) (*App, error) {
	log := logger.New().WithRollbar(cfg.RollbarToken, cfg.Environment, serviceName)

	db, err := database.New(cfg)
	if err != nil {
		log.Error("Failed to connect to database: %v", err)
		return nil, err
	}

	// Redis backs one-time codes, rate limits and realtime fan-out.
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

	jwtService := jwt.NewService(cfg.JWTSecret).WithTTL(cfg.AccessTokenTTL)

	return &App{
		cfg:         cfg,
		log:         log,
		db:          db,
		redisClient: redisClient,
		s3Client:    s3Client,
		jwtService:  jwtService,
	}, nil
}

func (a *App) Run() error {
	validation.Register()

	// Initialize repositories
	identityRepo := persistent.NewIdentityRepository(a.db)
	profileRepo := persistent.NewProfileRepository(a.db)
	sessionRepo := persistent.NewSessionRepository(a.db)
	codeStore := codecache.NewCodeStore(a.redisClient)

	// Initialize use cases
	profileUseCase := usecase.NewProfileUseCase(
		profileRepo,
		identityRepo,
		a.s3Client,
		realtime.NewRedisBroker(a.redisClient, a.log),
		a.log,
	)
	a.authUseCase = usecase.NewAuthUseCase(
		identityRepo,
		sessionRepo,
		codeStore,
		profileUseCase,
		a.jwtService,
		email.NewSender(a.cfg, a.log),
		a.log,
		usecase.AuthSettings{
			RefreshTTL: a.cfg.RefreshTokenTTL,
			SiteURL:    a.cfg.SiteURL,
		},
	)

	// Initialize HTTP handlers
	authHandler := authHTTP.NewAuthHandler(a.authUseCase, a.cfg.SiteURL)
	profileHandler := authHTTP.NewProfileHandler(profileUseCase)

	// Setup router
	r := gin.Default()
	r.Use(metrics.Middleware(serviceName))

	// CORS middleware
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
	{
		// Email links are opened by a browser, which cannot send the API key.
		api.GET("/auth/callback", authHandler.Callback)

		public := api.Group("")
		public.Use(middleware.APIKeyMiddleware(a.cfg.PublicAPIKey))

		limited := public.Group("")
		limited.Use(middleware.RateLimitMiddleware(a.redisClient, a.cfg.RateLimit, a.cfg.RateLimitWindow))
		{
			limited.POST("/auth/signup", authHandler.SignUp)
			limited.POST("/auth/token", authHandler.Token)
			limited.POST("/auth/recover", authHandler.Recover)
		}

		protected := public.Group("")
		protected.Use(middleware.AuthMiddleware(a.jwtService))
		{
			protected.POST("/auth/logout", authHandler.Logout)
			protected.GET("/auth/user", authHandler.GetUser)
			protected.PUT("/auth/user", authHandler.UpdateUser)

			protected.GET("/profiles/me", profileHandler.Me)
			protected.PATCH("/profiles/me", profileHandler.UpdateMe)
			protected.POST("/profiles/me/avatar", profileHandler.UploadAvatar)
			protected.GET("/profiles/:id", profileHandler.GetProfile)
		}

		admin := protected.Group("/admin")
		admin.Use(middleware.RequireRoles(string(models.UserTypeAdmin)))
		{
			admin.GET("/users", profileHandler.ListUsers)
			admin.PATCH("/users/:id", profileHandler.UpdateUserType)
		}
	}

	// Create HTTP server
	a.httpServer = &http.Server{
		Addr:    ":" + a.cfg.ServerPort,
		Handler: r,
	}

	purgeCtx, cancel := context.WithCancel(context.Background())
	a.stopPurge = cancel
	go a.purgeSessions(purgeCtx)

	// Start server in a goroutine
	go func() {
		a.log.Info("Auth service starting on port %s", a.cfg.ServerPort)
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.log.Error("Failed to start server: %v", err)
			panic(err)
		}
	}()

	return nil
}

// purgeSessions drops expired and revoked refresh sessions until ctx ends.
func (a *App) purgeSessions(ctx context.Context) {
	interval := a.cfg.SessionCleanupInterval
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed, err := a.authUseCase.PurgeSessions(ctx)
			if err != nil {
				a.log.Error("Failed to purge sessions: %v", err)
				continue
			}
			if removed > 0 {
				a.log.Info("Purged %d stale refresh sessions", removed)
			}
		}
	}
}

func (a *App) Wait() {
	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	a.log.Info("Shutting down auth service...")
}

func (a *App) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if a.stopPurge != nil {
		a.stopPurge()
	}

	// Shutdown server
	if err := a.httpServer.Shutdown(ctx); err != nil {
		a.log.Error("Server forced to shutdown: %v", err)
		return err
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

	a.log.Info("Auth service exited")
	a.log.Close()
	return nil
}
