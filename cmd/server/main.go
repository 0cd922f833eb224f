package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	analyticsapp "github.com/ordersight/backend/internal/application/analytics"
	ingestapp "github.com/ordersight/backend/internal/application/ingest"
	"github.com/ordersight/backend/internal/infrastructure/auth"
	"github.com/ordersight/backend/internal/infrastructure/cache"
	"github.com/ordersight/backend/internal/infrastructure/config"
	"github.com/ordersight/backend/internal/infrastructure/logger"
	"github.com/ordersight/backend/internal/infrastructure/persistence"
	"github.com/ordersight/backend/internal/infrastructure/queue"
	"github.com/ordersight/backend/internal/infrastructure/storage"
	"github.com/ordersight/backend/internal/interfaces/http/handler"
	"github.com/ordersight/backend/internal/interfaces/http/middleware"
	"github.com/ordersight/backend/internal/interfaces/http/router"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log := logger.New(cfg.Log)
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting OrderSight backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Database, with GORM logging routed through zap
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected")

	// Redis backs both the ingestion task queue and the forecast cache, so the
	// client is shared.
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer func() {
		_ = redisClient.Close()
	}()
	pingCtx, cancelPing := context.WithTimeout(context.Background(), 5*time.Second)
	if err := redisClient.Ping(pingCtx).Err(); err != nil {
		cancelPing()
		log.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	cancelPing()
	log.Info("Redis connected", zap.String("addr", cfg.Redis.Addr()))

	taskQueue := queue.NewRedisTaskQueueWithClient(redisClient, cfg.Ingest.QueueName)
	forecastCache := cache.NewForecastCache(redisClient, 0)

	fileStore, err := newFileStore(cfg, log)
	if err != nil {
		log.Fatal("Failed to initialize file storage", zap.Error(err))
	}

	// Repositories and services
	uploadRepo := persistence.NewGormUploadRepository(db.DB)
	analyticsRepo := persistence.NewGormAnalyticsRepository(db.DB)

	uploadService := ingestapp.NewUploadService(uploadRepo, fileStore, taskQueue, log)
	analyticsService := analyticsapp.NewService(analyticsRepo, log)
	jwtService := auth.NewJWTService(cfg.JWT)

	// HTTP handlers
	uploadHandler := handler.NewUploadHandler(uploadService)
	analyticsHandler := handler.NewAnalyticsHandler(analyticsService, log,
		handler.WithProjectionCache(forecastCache))
	systemHandler := handler.NewSystemHandler(map[string]handler.HealthChecker{
		"database": func(context.Context) error { return db.Ping() },
		"redis": func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		},
	})

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	engine.Use(middleware.RequestID())
	engine.Use(gin.Recovery())
	engine.Use(middleware.AccessLog(log))
	engine.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: cfg.HTTP.CORSAllowOrigins,
		AllowMethods: cfg.HTTP.CORSAllowMethods,
		AllowHeaders: cfg.HTTP.CORSAllowHeaders,
	}))
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	// Health endpoint sits outside API versioning and authentication
	engine.GET("/health", systemHandler.Health)

	r := router.NewRouter(engine,
		router.WithAPIVersion("v1"),
		router.WithMiddleware(middleware.JWTAuthMiddlewareWithConfig(middleware.JWTMiddlewareConfig{
			JWTService: jwtService,
			SkipPaths: []string{
				"/api/v1/system/info",
			},
			Logger: log,
		})),
	)
	r.Register(uploadHandler).
		Register(analyticsHandler).
		Register(systemHandler)
	r.Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// newFileStore builds the configured blob store. The S3 driver also ensures
// the bucket exists so a fresh MinIO instance works out of the box.
func newFileStore(cfg *config.Config, log *zap.Logger) (ingestapp.FileStore, error) {
	switch cfg.Storage.Driver {
	case "s3":
		store, err := storage.NewS3FileStore(&cfg.Storage, storage.WithLogger(log))
		if err != nil {
			return nil, err
		}
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := store.EnsureBucket(ctx); err != nil {
			return nil, err
		}
		return store, nil
	default:
		return storage.NewLocalFileStore(cfg.Storage.LocalDir)
	}
}
