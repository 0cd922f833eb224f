package ingestapp

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/ordersight/backend/internal/domain/ingest"
	"github.com/ordersight/backend/internal/infrastructure/orderfile"
	"go.uber.org/zap"
)

// Processor is the ingestion orchestrator. One invocation runs the full
// pipeline for one upload: fetch file, count rows, aggregate, write orders,
// resolve identifiers, write line items, finalize. Exactly one terminal status
// is reached per invocation. Each invocation owns its aggregation state; runs
// for different uploads may execute concurrently.
type Processor struct {
	uploads   ingest.UploadRepository
	orders    ingest.OrderRepository
	lineItems ingest.LineItemRepository
	files     FileStore
	logger    *zap.Logger
}

// NewProcessor creates an ingestion processor
func NewProcessor(
	uploads ingest.UploadRepository,
	orders ingest.OrderRepository,
	lineItems ingest.LineItemRepository,
	files FileStore,
	logger *zap.Logger,
) *Processor {
	return &Processor{
		uploads:   uploads,
		orders:    orders,
		lineItems: lineItems,
		files:     files,
		logger:    logger.Named("ingest"),
	}
}

// Process runs one ingestion for the given task. It is the callable registered
// with the task runner and is safe to re-invoke: a completed upload is a
// no-op, and a prior crashed attempt is wiped and re-run from scratch so
// at-least-once delivery cannot duplicate orders.
func (p *Processor) Process(ctx context.Context, fileRef string, userID, uploadID uuid.UUID) error {
	log := p.logger.With(
		zap.String("upload_id", uploadID.String()),
		zap.String("user_id", userID.String()),
	)

	upload, err := p.uploads.FindByIDForUser(ctx, userID, uploadID)
	if err != nil {
		return fmt.Errorf("upload %s not found for user %s: %w", uploadID, userID, err)
	}

	if upload.Status == ingest.UploadStatusCompleted {
		log.Info("upload already completed, skipping re-invocation")
		return nil
	}

	tracker := NewProgressTracker(p.uploads)

	if err := p.run(ctx, log, tracker, upload, fileRef); err != nil {
		log.Error("ingestion failed", zap.Error(err))
		if finalizeErr := tracker.Finalize(ctx, upload, ingest.UploadStatusFailed); finalizeErr != nil {
			log.Error("failed to mark upload as failed", zap.Error(finalizeErr))
		}
		return err
	}

	if err := tracker.Finalize(ctx, upload, ingest.UploadStatusCompleted); err != nil {
		return err
	}
	log.Info("ingestion completed",
		zap.Int("total_rows", upload.TotalRows),
		zap.Int("records_processed", upload.RecordsProcessed))
	return nil
}

// run executes the pipeline phases; any returned error fails the whole run
func (p *Processor) run(ctx context.Context, log *zap.Logger, tracker *ProgressTracker, upload *ingest.Upload, fileRef string) error {
	if ext := strings.ToLower(filepath.Ext(upload.FileName)); ext != ".csv" {
		return fmt.Errorf("%w: %s", orderfile.ErrUnsupportedFormat, ext)
	}

	// A re-invoked run may find committed batches from a crashed attempt;
	// they are indistinguishable from fresh data, so wipe the job's scope
	// before writing anything.
	if err := p.lineItems.DeleteByUpload(ctx, upload.UserID, upload.ID); err != nil {
		return fmt.Errorf("failed to clear prior line items: %w", err)
	}
	if err := p.orders.DeleteByUpload(ctx, upload.UserID, upload.ID); err != nil {
		return fmt.Errorf("failed to clear prior orders: %w", err)
	}

	if err := upload.StartProcessing(); err != nil {
		return err
	}
	if err := p.uploads.Save(ctx, upload); err != nil {
		return fmt.Errorf("failed to mark upload as processing: %w", err)
	}

	localPath, cleanup, err := p.files.Fetch(ctx, fileRef)
	if err != nil {
		return fmt.Errorf("failed to fetch source file %s: %w", fileRef, err)
	}
	defer cleanup()

	total, err := countRows(localPath)
	if err != nil {
		return fmt.Errorf("failed to count rows: %w", err)
	}
	if err := tracker.SetTotal(ctx, upload, total); err != nil {
		return err
	}
	log.Info("source file read", zap.Int("total_rows", total))

	f, err := os.Open(localPath)
	if err != nil {
		return fmt.Errorf("failed to open source file: %w", err)
	}
	defer f.Close()

	reader, err := orderfile.NewReader(f)
	if err != nil {
		return fmt.Errorf("failed to parse source file: %w", err)
	}

	mapper := NewRowMapper(upload.UserID, upload.ID)
	result, err := NewAggregator(mapper, tracker).Aggregate(ctx, upload, reader)
	if err != nil {
		return fmt.Errorf("aggregation failed: %w", err)
	}
	log.Info("aggregation complete",
		zap.Int("rows", result.Processed),
		zap.Int("orders", len(result.Keys)),
		zap.Int("line_items", result.LineItemCount()))

	writer := NewBulkWriter(p.orders, p.lineItems, p.logger)
	if err := writer.WriteOrders(ctx, result); err != nil {
		return err
	}
	idMap, err := writer.ResolveOrderIDs(ctx, upload.UserID, upload.ID)
	if err != nil {
		return err
	}
	if _, err := writer.WriteLineItems(ctx, result, idMap); err != nil {
		return err
	}
	return nil
}

// countRows opens the file once just to learn the total, so progress can be
// reported as a percentage; the aggregation pass re-streams it afterwards.
func countRows(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()
	return orderfile.CountRows(f)
}
