package ingest

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/ordersight/backend/internal/domain/shared"
)

// UploadStatus represents the lifecycle status of an upload job
type UploadStatus string

const (
	UploadStatusPending    UploadStatus = "pending"
	UploadStatusUploaded   UploadStatus = "uploaded"
	UploadStatusProcessing UploadStatus = "processing"
	UploadStatusCompleted  UploadStatus = "completed"
	UploadStatusFailed     UploadStatus = "failed"
)

// IsValid checks if the status is valid
func (s UploadStatus) IsValid() bool {
	switch s {
	case UploadStatusPending, UploadStatusUploaded, UploadStatusProcessing,
		UploadStatusCompleted, UploadStatusFailed:
		return true
	}
	return false
}

// IsTerminal returns true if this is a terminal state
func (s UploadStatus) IsTerminal() bool {
	return s == UploadStatusCompleted || s == UploadStatusFailed
}

// Upload tracks the lifecycle and progress of a single order-file ingestion run.
// It is written by exactly one ingestion run at a time; status polls may read it
// concurrently and must tolerate intermediate values.
type Upload struct {
	shared.BaseEntity
	UserID           uuid.UUID    `json:"user_id"`
	FileName         string       `json:"file_name"`
	FilePath         string       `json:"file_path"`
	FileSize         int64        `json:"file_size"`
	Status           UploadStatus `json:"status"`
	TotalRows        int          `json:"total_rows"`
	RecordsProcessed int          `json:"records_processed"`
	UploadedAt       time.Time    `json:"uploaded_at"`
	CompletedAt      *time.Time   `json:"completed_at,omitempty"`
}

// NewUpload creates a new upload job for an accepted file
func NewUpload(userID uuid.UUID, fileName, filePath string, fileSize int64) (*Upload, error) {
	if fileName == "" {
		return nil, shared.NewDomainError("INVALID_FILE_NAME", "File name cannot be empty")
	}
	if filePath == "" {
		return nil, shared.NewDomainError("INVALID_FILE_PATH", "File path cannot be empty")
	}
	if fileSize < 0 {
		return nil, shared.NewDomainError("INVALID_FILE_SIZE", "File size cannot be negative")
	}

	return &Upload{
		BaseEntity: shared.NewBaseEntity(),
		UserID:     userID,
		FileName:   fileName,
		FilePath:   filePath,
		FileSize:   fileSize,
		Status:     UploadStatusPending,
		UploadedAt: time.Now(),
	}, nil
}

// MarkUploaded marks the file as stored and ready for processing
func (u *Upload) MarkUploaded() error {
	if u.Status != UploadStatusPending {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot mark uploaded from state: %s", u.Status))
	}
	u.Status = UploadStatusUploaded
	u.Touch()
	return nil
}

// StartProcessing marks the ingestion run as started. A failed job may be
// restarted (the task runner's retry path); a completed one may not.
func (u *Upload) StartProcessing() error {
	if u.Status == UploadStatusCompleted {
		return shared.NewDomainError("INVALID_STATE", "Cannot reprocess a completed upload")
	}
	u.Status = UploadStatusProcessing
	u.RecordsProcessed = 0
	u.TotalRows = 0
	u.CompletedAt = nil
	u.Touch()
	return nil
}

// SetTotalRows records the total row count once the file has been read
func (u *Upload) SetTotalRows(n int) error {
	if n < 0 {
		return shared.NewDomainError("INVALID_TOTAL_ROWS", "Total rows cannot be negative")
	}
	u.TotalRows = n
	u.Touch()
	return nil
}

// AdvanceProgress records the number of rows processed so far. Progress is
// monotonic within a run; a smaller value than already recorded is rejected so
// a concurrent poller never observes a regression.
func (u *Upload) AdvanceProgress(processed int) error {
	if processed < u.RecordsProcessed {
		return shared.NewDomainError("INVALID_PROGRESS",
			fmt.Sprintf("Progress cannot decrease from %d to %d", u.RecordsProcessed, processed))
	}
	if u.TotalRows > 0 && processed > u.TotalRows {
		return shared.NewDomainError("INVALID_PROGRESS",
			fmt.Sprintf("Processed count %d exceeds total rows %d", processed, u.TotalRows))
	}
	u.RecordsProcessed = processed
	u.Touch()
	return nil
}

// Finalize transitions the job to a terminal status. Finalizing twice with the
// same status is a no-op; finalizing with a different terminal status after the
// first terminal transition is an error.
func (u *Upload) Finalize(status UploadStatus) error {
	if !status.IsTerminal() {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot finalize to non-terminal status: %s", status))
	}
	if u.Status == status {
		return nil
	}
	if u.Status.IsTerminal() {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Cannot finalize to %s from terminal state %s", status, u.Status))
	}
	u.Status = status
	now := time.Now()
	u.CompletedAt = &now
	u.Touch()
	return nil
}

// Percent returns ingestion progress clamped to [0, 100]. It reports 100 only
// for a completed job and caps at 99 while processing, since phase-2 writes may
// still be running after the last row has been counted.
func (u *Upload) Percent() int {
	if u.Status == UploadStatusCompleted {
		return 100
	}
	if u.TotalRows <= 0 {
		return 0
	}
	percent := u.RecordsProcessed * 100 / u.TotalRows
	if percent < 0 {
		percent = 0
	}
	if percent > 99 {
		percent = 99
	}
	return percent
}
