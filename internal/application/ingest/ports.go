package ingestapp

import (
	"context"
	"io"

	"github.com/google/uuid"
)

// FileStore abstracts blob storage for uploaded order files. Implementations
// may be local disk or S3-compatible object storage.
type FileStore interface {
	// Save stores the file content under key and returns the stored reference.
	Save(ctx context.Context, key string, r io.Reader, size int64) (string, error)
	// Fetch makes the referenced file available on local disk and returns its
	// path plus a cleanup function. Cleanup runs on every exit path of a run.
	Fetch(ctx context.Context, ref string) (string, func(), error)
}

// IngestionTask is the unit of work dispatched to the background worker
type IngestionTask struct {
	FileRef  string    `json:"file_ref"`
	UserID   uuid.UUID `json:"user_id"`
	UploadID uuid.UUID `json:"upload_id"`
}

// TaskEnqueuer dispatches ingestion tasks to the background task runner. The
// runner guarantees at-least-once delivery, not exactly-once; the processor
// tolerates re-invocation.
type TaskEnqueuer interface {
	EnqueueIngestion(ctx context.Context, task IngestionTask) error
}
