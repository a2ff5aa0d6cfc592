// Package main runs the event feedback platform HTTP server with WebSocket and graceful shutdown.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/eventpulse/backend/config"
	"github.com/eventpulse/backend/internal/auth"
	"github.com/eventpulse/backend/internal/events"
	"github.com/eventpulse/backend/internal/export"
	"github.com/eventpulse/backend/internal/feedback"
	"github.com/eventpulse/backend/internal/middleware"
	"github.com/eventpulse/backend/internal/questions"
	"github.com/eventpulse/backend/internal/realtime"
	"github.com/eventpulse/backend/pkg/database"
	"github.com/eventpulse/backend/pkg/queue"
	"github.com/eventpulse/backend/pkg/redis"
	"github.com/eventpulse/backend/pkg/response"
	"github.com/eventpulse/backend/pkg/storage"
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

	rdb, err := redis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
	if err != nil {
		logger.Fatal("redis", zap.Error(err))
	}
	defer rdb.Close()

	var s3Client *storage.S3
	if cfg.AWS.Region != "" {
		s3Cfg := storage.S3Config{
			Region:               cfg.AWS.Region,
			AccessKeyID:          cfg.AWS.AccessKeyID,
			SecretAccessKey:      cfg.AWS.SecretAccessKey,
			ExportsBucket:        cfg.AWS.ExportsBucket,
			PresignExpireMinutes: cfg.AWS.PresignExpireMinutes,
		}
		s3Client, err = storage.NewS3(ctx, s3Cfg, logger)
		if err != nil {
			logger.Warn("s3 disabled", zap.Error(err))
		}
	}

	jwtService := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.ExpireHours)
	redisPubSub := realtime.NewRedisPubSub(rdb.Client, logger)
	hub := realtime.NewHub(logger, redisPubSub, redisPubSub)
	clock := clockwork.NewRealClock()

	// Auth
	authRepo := auth.NewRepository(pool)
	authHandler := auth.NewHandler(authRepo, jwtService, logger)

	// Events and sessions
	eventRepo := events.NewRepository(pool)
	eventHandler := events.NewHandler(eventRepo)

	// Question board
	questionRepo := questions.NewRepository(pool)
	board := questions.NewBoard(questionRepo, clock)
	questionHandler := questions.NewHandler(board, hub)

	// Feedback aggregation
	jobQueue := queue.NewQueue(rdb.Client, logger)
	feedbackRepo := feedback.NewRepository(pool)
	aggregator := feedback.NewAggregator(feedbackRepo, clock)
	feedbackHandler := feedback.NewHandler(aggregator, hub, jobQueue, logger)

	// CSV export
	exportHandler := export.NewHandler(aggregator, s3Client, logger)

	jwtValidate := func(token string) (userID, role string, err error) {
		claims, err := jwtService.Validate(token)
		if err != nil {
			return "", "", err
		}
		return claims.UserID.String(), claims.Role, nil
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(cfg.Server.CORSAllowedOrigins))
	router.Use(middleware.Logger(logger))

	// Health
	router.GET("/health", func(c *gin.Context) { response.OK(c, gin.H{"status": "ok"}) })

	// Auth (public)
	authGroup := router.Group("/auth")
	{
		authGroup.POST("/login", authHandler.Login)
		authGroup.POST("/register", authHandler.Register)
	}

	// Protected API (JWT required)
	api := router.Group("")
	api.Use(middleware.JWT(jwtService))
	{
		// Events and sessions
		api.GET("/events", eventHandler.List)
		api.POST("/events", middleware.RequireRole("organizer"), eventHandler.Create)
		api.POST("/events/join", eventHandler.Join)
		api.GET("/events/:id", eventHandler.GetByID)
		api.PATCH("/events/:id", middleware.RequireRole("organizer"), eventHandler.Update)
		api.GET("/events/:id/sessions", eventHandler.ListSessions)
		api.POST("/events/:id/sessions", middleware.RequireRole("organizer"), eventHandler.CreateSession)

		// Question board
		api.POST("/sessions/:id/questions", questionHandler.Create)
		api.GET("/sessions/:id/questions", questionHandler.ListBySession)
		api.POST("/questions/:id/upvote", questionHandler.Upvote)
		api.PATCH("/questions/:id/answer", middleware.RequireRole("organizer"), questionHandler.Answer)

		// Feedback and aggregated stats
		api.POST("/sessions/:id/feedback", feedbackHandler.Create)
		api.GET("/sessions/:id/stats", feedbackHandler.SessionStats)
		api.GET("/sessions/:id/histogram", feedbackHandler.SessionHistogram)
		api.GET("/events/:id/stats", feedbackHandler.EventStats)
		api.GET("/events/:id/histogram", feedbackHandler.EventHistogram)
		api.GET("/events/:id/feedback/recent", feedbackHandler.Recent)
		api.GET("/events/:id/feedback", middleware.RequireRole("organizer"), feedbackHandler.ListByEvent)
		api.GET("/events/:id/export", middleware.RequireRole("organizer"), exportHandler.Download)
	}

	// WebSocket (token in query; no Authorization header required)
	router.GET("/ws", realtime.ServeWs(hub, logger, jwtValidate))

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
