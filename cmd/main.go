package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	configs "github.com/teamforge/backend/config"
	"github.com/teamforge/backend/internal/email"
	"github.com/teamforge/backend/internal/handler"
	"github.com/teamforge/backend/internal/middleware"
	"github.com/teamforge/backend/internal/repository"
	"github.com/teamforge/backend/internal/router"
	"github.com/teamforge/backend/internal/service"
	"github.com/teamforge/backend/pkg/database"
	"github.com/teamforge/backend/pkg/logger"
	"github.com/teamforge/backend/pkg/redis"
	"go.uber.org/zap"
)

func main() {
	config, err := configs.LoadConfig()
	if err != nil {
		panic("Failed to load config: " + err.Error())
	}

	// Initialize Zap logger
	if err := logger.InitLogger(config.App.Environment); err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer logger.Sync()

	logger.GetLogger().Info("Application starting",
		zap.String("app_name", config.App.Name),
		zap.String("environment", config.App.Environment),
		zap.String("version", "1.0.0"),
	)

	db, err := database.NewPostgresDB(database.Config{
		Host:            config.Database.Host,
		Port:            config.Database.Port,
		User:            config.Database.User,
		Password:        config.Database.Password,
		Database:        config.Database.Name,
		SSLMode:         config.Database.SSLMode,
		MaxIdleConns:    config.Database.MaxIdleConns,
		MaxOpenConns:    config.Database.MaxOpenConns,
		ConnMaxLifetime: config.Database.ConnMaxLifetime,
		ConnMaxIdleTime: config.Database.ConnMaxIdleTime,
	})
	if err != nil {
		logger.GetLogger().Fatal("Failed to connect to database", zap.Error(err))
	}
	defer database.CloseDB(db)

	if err := database.AutoMigrate(db); err != nil {
		logger.GetLogger().Fatal("Failed to run database migrations", zap.Error(err))
	}
	logger.GetLogger().Info("Database migrated successfully")

	redisClient, err := redis.NewClient(redis.Config{
		Host:         config.Redis.Host,
		Port:         config.Redis.Port,
		Password:     config.Redis.Password,
		DB:           config.Redis.Database,
		PoolSize:     config.Redis.PoolSize,
		MinIdleConns: config.Redis.MinIdleConns,
		DialTimeout:  config.Redis.DialTimeout,
		ReadTimeout:  config.Redis.ReadTimeout,
		WriteTimeout: config.Redis.WriteTimeout,
		Enabled:      config.Redis.Enabled,
	})
	if err != nil {
		logger.GetLogger().Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer redisClient.Close()

	logger.GetLogger().Info("Redis client initialized",
		zap.Bool("enabled", redisClient.IsEnabled()),
	)

	// Repositories
	userRepo := repository.NewUserRepository(db)
	refreshTokenRepo := repository.NewRefreshTokenRepository(db)
	passwordResetRepo := repository.NewPasswordResetRepository(db)
	orgRepo := repository.NewOrganizationRepository(db)

	// Services
	tokenService, err := service.NewTokenService(config.JWT, config.App.Environment)
	if err != nil {
		logger.GetLogger().Fatal("Failed to initialize token service", zap.Error(err))
	}
	credentialService := service.NewCredentialService()
	mailer := email.NewService(
		config.SMTP.Host,
		config.SMTP.Port,
		config.SMTP.User,
		config.SMTP.Password,
		config.SMTP.FrontendURL,
	)
	authService := service.NewAuthService(
		userRepo,
		refreshTokenRepo,
		passwordResetRepo,
		credentialService,
		tokenService,
		mailer,
	)
	membershipService := service.NewMembershipService(orgRepo)
	orgService := service.NewOrganizationService(orgRepo, membershipService)

	// Handlers
	authHandler := handler.NewAuthHandler(authService, config.IsProduction())
	orgHandler := handler.NewOrganizationHandler(orgService)
	healthHandler := handler.NewHealthHandler(db, redisClient)

	// Middleware
	jwtMiddleware := middleware.NewJWTMiddleware(tokenService)

	// Rate limit counters live in Redis when available, memory otherwise
	var rateLimitStore middleware.RateLimitStore
	if redisClient.IsEnabled() {
		rateLimitStore = middleware.NewRedisRateLimitStore(redisClient)
	} else {
		rateLimitStore = middleware.NewMemoryRateLimitStore()
	}

	// Expired ledger rows are dead weight; sweep them hourly
	stopCleanup := make(chan struct{})
	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
				if deleted, err := refreshTokenRepo.DeleteExpired(ctx); err == nil && deleted > 0 {
					logger.GetLogger().Info("Expired refresh tokens removed",
						zap.Int64("deleted", deleted),
					)
				}
				cancel()
			case <-stopCleanup:
				return
			}
		}
	}()

	r := router.NewRouter(
		authHandler,
		orgHandler,
		healthHandler,
		jwtMiddleware,
		rateLimitStore,
		config,
	).SetupRoutes()

	go func() {
		logger.GetLogger().Info("Server starting",
			zap.String("port", config.App.Port),
			zap.String("host", "0.0.0.0"),
		)
		if err := r.Run(":" + config.App.Port); err != nil {
			logger.GetLogger().Fatal("Failed to start server",
				zap.Error(err),
				zap.String("port", config.App.Port),
			)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	close(stopCleanup)
	logger.GetLogger().Info("Shutting down server...")
}
