package ingestapp

import (
	"context"
	"fmt"

	"github.com/ordersight/backend/internal/domain/ingest"
)

// ProgressTracker persists upload progress as ingestion proceeds. Every call
// writes through to storage immediately so a concurrent status poll observes
// monotonically non-decreasing progress.
type ProgressTracker struct {
	uploads ingest.UploadRepository
}

// NewProgressTracker creates a progress tracker over the upload repository
func NewProgressTracker(uploads ingest.UploadRepository) *ProgressTracker {
	return &ProgressTracker{uploads: uploads}
}

// SetTotal records the total row count for the run
func (t *ProgressTracker) SetTotal(ctx context.Context, upload *ingest.Upload, total int) error {
	if err := upload.SetTotalRows(total); err != nil {
		return err
	}
	if err := t.uploads.Save(ctx, upload); err != nil {
		return fmt.Errorf("failed to persist total rows: %w", err)
	}
	return nil
}

// Advance records the number of rows processed so far
func (t *ProgressTracker) Advance(ctx context.Context, upload *ingest.Upload, processed int) error {
	if err := upload.AdvanceProgress(processed); err != nil {
		return err
	}
	if err := t.uploads.Save(ctx, upload); err != nil {
		return fmt.Errorf("failed to persist progress: %w", err)
	}
	return nil
}

// Finalize transitions the upload to a terminal status. Repeating the same
// terminal status is a no-op.
func (t *ProgressTracker) Finalize(ctx context.Context, upload *ingest.Upload, status ingest.UploadStatus) error {
	if err := upload.Finalize(status); err != nil {
		return err
	}
	if err := t.uploads.Save(ctx, upload); err != nil {
		return fmt.Errorf("failed to persist terminal status: %w", err)
	}
	return nil
}
