package ingestapp

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/ordersight/backend/internal/domain/ingest"
	"github.com/ordersight/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// allowedExtensions are the upload extensions accepted at intake. Only .csv is
// currently processable; the rest are stored for later export-format support.
var allowedExtensions = map[string]bool{
	".csv":  true,
	".zip":  true,
	".json": true,
	".xls":  true,
	".xlsx": true,
}

// UploadStatusView is the polling read exposed to callers
type UploadStatusView struct {
	UploadID         uuid.UUID           `json:"upload_id"`
	Status           ingest.UploadStatus `json:"status"`
	TotalRows        int                 `json:"total_rows"`
	RecordsProcessed int                 `json:"records_processed"`
	Percent          int                 `json:"percent"`
}

// UploadService handles file intake, status polling, and upload history
type UploadService struct {
	uploads ingest.UploadRepository
	files   FileStore
	queue   TaskEnqueuer
	logger  *zap.Logger
}

// NewUploadService creates an upload service
func NewUploadService(uploads ingest.UploadRepository, files FileStore, queue TaskEnqueuer, logger *zap.Logger) *UploadService {
	return &UploadService{
		uploads: uploads,
		files:   files,
		queue:   queue,
		logger:  logger.Named("uploads"),
	}
}

// Accept stores an uploaded order file, creates its job record, and enqueues
// the ingestion task. The returned upload is in the "uploaded" state.
func (s *UploadService) Accept(ctx context.Context, userID uuid.UUID, fileName string, content io.Reader, size int64) (*ingest.Upload, error) {
	ext := strings.ToLower(filepath.Ext(fileName))
	if !allowedExtensions[ext] {
		return nil, shared.NewDomainError("INVALID_FILE_TYPE", fmt.Sprintf("Invalid file type: %s", ext))
	}

	key := fmt.Sprintf("uploads/%s/%s", userID, fileName)
	ref, err := s.files.Save(ctx, key, content, size)
	if err != nil {
		return nil, fmt.Errorf("failed to store uploaded file: %w", err)
	}

	upload, err := ingest.NewUpload(userID, fileName, ref, size)
	if err != nil {
		return nil, err
	}
	if err := upload.MarkUploaded(); err != nil {
		return nil, err
	}
	if err := s.uploads.Save(ctx, upload); err != nil {
		return nil, fmt.Errorf("failed to save upload record: %w", err)
	}

	task := IngestionTask{
		FileRef:  ref,
		UserID:   userID,
		UploadID: upload.ID,
	}
	if err := s.queue.EnqueueIngestion(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to enqueue ingestion task: %w", err)
	}

	s.logger.Info("upload accepted",
		zap.String("upload_id", upload.ID.String()),
		zap.String("file_name", fileName),
		zap.Int64("file_size", size))
	return upload, nil
}

// Status returns the polling view for an upload owned by userID
func (s *UploadService) Status(ctx context.Context, userID, id uuid.UUID) (*UploadStatusView, error) {
	upload, err := s.uploads.FindByIDForUser(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	return &UploadStatusView{
		UploadID:         upload.ID,
		Status:           upload.Status,
		TotalRows:        upload.TotalRows,
		RecordsProcessed: upload.RecordsProcessed,
		Percent:          upload.Percent(),
	}, nil
}

// History returns the caller's uploads, newest first
func (s *UploadService) History(ctx context.Context, userID uuid.UUID) ([]*ingest.Upload, error) {
	return s.uploads.FindByUser(ctx, userID)
}
