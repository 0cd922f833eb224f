package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	ingestapp "github.com/ordersight/backend/internal/application/ingest"
	"github.com/ordersight/backend/internal/infrastructure/config"
	"github.com/ordersight/backend/internal/infrastructure/logger"
	"github.com/ordersight/backend/internal/infrastructure/persistence"
	"github.com/ordersight/backend/internal/infrastructure/queue"
	"github.com/ordersight/backend/internal/infrastructure/storage"
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

	log.Info("Starting OrderSight ingestion worker",
		zap.String("env", cfg.App.Env),
		zap.Int("concurrency", cfg.Ingest.Concurrency),
		zap.String("queue", cfg.Ingest.QueueName),
	)

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

	taskQueue, err := queue.NewRedisTaskQueue(cfg.Redis, cfg.Ingest.QueueName)
	if err != nil {
		log.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer func() {
		_ = taskQueue.Close()
	}()

	fileStore, err := newFileStore(cfg, log)
	if err != nil {
		log.Fatal("Failed to initialize file storage", zap.Error(err))
	}

	uploadRepo := persistence.NewGormUploadRepository(db.DB)
	orderRepo := persistence.NewGormOrderRepository(db.DB)
	lineItemRepo := persistence.NewGormLineItemRepository(db.DB)

	processor := ingestapp.NewProcessor(uploadRepo, orderRepo, lineItemRepo, fileStore, log)
	worker := queue.NewWorker(taskQueue, processor, cfg.Ingest, log)

	// Run blocks until SIGINT/SIGTERM, then waits for in-flight tasks
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	worker.Run(ctx)
	log.Info("Worker exited gracefully")
}

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
