package queue

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	ingestapp "github.com/ordersight/backend/internal/application/ingest"
	"github.com/ordersight/backend/internal/infrastructure/config"
)

// TaskSource yields queued ingestion tasks. A nil task with a nil error means
// the poll timed out with nothing queued.
type TaskSource interface {
	Dequeue(ctx context.Context, timeout time.Duration) (*ingestapp.IngestionTask, error)
}

// TaskRunner executes a single ingestion task
type TaskRunner interface {
	Process(ctx context.Context, fileRef string, userID, uploadID uuid.UUID) error
}

// Ensure the ingestion processor satisfies TaskRunner
var _ TaskRunner = (*ingestapp.Processor)(nil)

// Worker polls a task source and runs each task through the ingestion
// processor. Failures are logged and the loop keeps going; the upload row
// carries the failure state for the client to see.
type Worker struct {
	source      TaskSource
	processor   TaskRunner
	logger      *zap.Logger
	concurrency int
	pollTimeout time.Duration
}

// NewWorker creates a worker driven by the ingest configuration
func NewWorker(source TaskSource, processor TaskRunner, cfg config.IngestConfig, logger *zap.Logger) *Worker {
	concurrency := cfg.Concurrency
	if concurrency < 1 {
		concurrency = 1
	}
	pollTimeout := cfg.PollTimeout
	if pollTimeout <= 0 {
		pollTimeout = 5 * time.Second
	}
	return &Worker{
		source:      source,
		processor:   processor,
		logger:      logger.Named("worker"),
		concurrency: concurrency,
		pollTimeout: pollTimeout,
	}
}

// Run polls for tasks until ctx is cancelled. It blocks until all in-flight
// tasks have finished.
func (w *Worker) Run(ctx context.Context) {
	w.logger.Info("Starting ingestion worker",
		zap.Int("concurrency", w.concurrency),
		zap.Duration("poll_timeout", w.pollTimeout))

	var wg sync.WaitGroup
	for i := 0; i < w.concurrency; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			w.loop(ctx, id)
		}(i)
	}
	wg.Wait()

	w.logger.Info("Ingestion worker stopped")
}

func (w *Worker) loop(ctx context.Context, id int) {
	log := w.logger.With(zap.Int("worker_id", id))
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		task, err := w.source.Dequeue(ctx, w.pollTimeout)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Error("Failed to poll task queue", zap.Error(err))
			// Back off briefly so a broken connection does not spin hot
			select {
			case <-ctx.Done():
				return
			case <-time.After(w.pollTimeout):
			}
			continue
		}
		if task == nil {
			continue
		}

		w.handle(ctx, log, task)
	}
}

func (w *Worker) handle(ctx context.Context, log *zap.Logger, task *ingestapp.IngestionTask) {
	defer func() {
		if r := recover(); r != nil {
			log.Error("Panic while processing ingestion task",
				zap.Any("panic", r),
				zap.String("upload_id", task.UploadID.String()))
		}
	}()

	if err := w.processor.Process(ctx, task.FileRef, task.UserID, task.UploadID); err != nil {
		log.Error("Ingestion task failed",
			zap.Error(err),
			zap.String("upload_id", task.UploadID.String()),
			zap.String("user_id", task.UserID.String()))
	}
}
