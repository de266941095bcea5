// Package main runs the scheduling API server with graceful shutdown.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/agreeto/backend/config"
	"github.com/agreeto/backend/internal/accounts"
	"github.com/agreeto/backend/internal/auth"
	"github.com/agreeto/backend/internal/calendar"
	"github.com/agreeto/backend/internal/eventgroups"
	"github.com/agreeto/backend/internal/events"
	"github.com/agreeto/backend/internal/middleware"
	"github.com/agreeto/backend/internal/users"
	"github.com/agreeto/backend/pkg/database"
	"github.com/agreeto/backend/pkg/redis"
	"github.com/agreeto/backend/pkg/response"
)

func main() {
	logger := newLogger()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	ctx := context.Background()
	pool, err := database.NewPostgresPool(ctx, cfg.Database.DSN(), logger)
	if err != nil {
		logger.Fatal("database", zap.Error(err))
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool); err != nil {
		logger.Fatal("migrate", zap.Error(err))
	}

	// Redis only backs the meeting-provider cache; the server runs without it.
	var meetingCache calendar.MeetingProviderCache
	if cfg.Redis.Addr != "" {
		rdb, err := redis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
		if err != nil {
			logger.Warn("redis disabled", zap.Error(err))
		} else {
			defer rdb.Close()
			meetingCache = calendar.NewRedisMeetingProviderCache(rdb, logger)
		}
	}

	jwtService := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.ExpireHours)
	calendarFactory := calendar.NewFactory(cfg.Google, cfg.Azure, meetingCache, logger)

	// Accounts
	accountRepo := accounts.NewRepository(pool)
	accountHandler := accounts.NewHandler(accountRepo, calendarFactory, logger)

	// Users
	userRepo := users.NewRepository(pool)
	userHandler := users.NewHandler(userRepo, logger)

	// Event groups and candidate slots
	eventGroupRepo := eventgroups.NewRepository(pool)
	eventGroupService := eventgroups.NewService(eventGroupRepo, accountRepo, calendarFactory, logger)
	eventGroupHandler := eventgroups.NewHandler(eventGroupService)
	eventHandler := events.NewHandler(eventGroupService)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(cfg.Server.CORSAllowedOrigins))
	router.Use(middleware.Logger(logger))

	// Health
	router.GET("/health", func(c *gin.Context) { response.OK(c, gin.H{"status": "ok"}) })

	// Protected API (JWT required)
	api := router.Group("")
	api.Use(middleware.JWT(jwtService))
	{
		// Event groups
		api.POST("/event-groups", eventGroupHandler.Create)
		api.GET("/event-groups/:id", eventGroupHandler.GetByID)
		api.DELETE("/event-groups/:id", eventGroupHandler.Delete)

		// Candidate slots
		api.POST("/events/:id/confirm", eventHandler.Confirm)

		// Accounts
		api.GET("/accounts", accountHandler.List)
		api.GET("/accounts/related", accountHandler.Related)
		api.GET("/accounts/:id/events", accountHandler.ListEvents)

		// Users
		api.GET("/users/me", userHandler.Me)
		api.GET("/users/by-email/:email", userHandler.ByEmail)
		api.GET("/users/:id", userHandler.ByID)
		api.PATCH("/users/me/membership", userHandler.UpdateMembership)
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Info("server listening", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
	logger.Info("server stopped")
}

func newLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := config.Build()
	return logger
}
