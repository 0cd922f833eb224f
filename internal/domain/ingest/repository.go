package ingest

import (
	"context"

	"github.com/google/uuid"
)

// UploadRepository persists upload jobs and their progress counters
type UploadRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Upload, error)
	FindByIDForUser(ctx context.Context, userID, id uuid.UUID) (*Upload, error)
	FindByUser(ctx context.Context, userID uuid.UUID) ([]*Upload, error)
	Save(ctx context.Context, upload *Upload) error
}

// OrderRepository persists orders written during ingestion. InsertBatch commits
// each call as its own transaction; callers control batch sizing and ordering.
type OrderRepository interface {
	InsertBatch(ctx context.Context, orders []*Order) error
	// ExternalIDMap returns external order ID -> storage-assigned ID for all
	// orders written under (user, upload). First match wins on duplicates.
	ExternalIDMap(ctx context.Context, userID, uploadID uuid.UUID) (map[string]uuid.UUID, error)
	CountByUpload(ctx context.Context, userID, uploadID uuid.UUID) (int, error)
	DeleteByUpload(ctx context.Context, userID, uploadID uuid.UUID) error
}

// LineItemRepository persists line items written during ingestion
type LineItemRepository interface {
	InsertBatch(ctx context.Context, items []*LineItem) error
	CountByUpload(ctx context.Context, userID, uploadID uuid.UUID) (int, error)
	DeleteByUpload(ctx context.Context, userID, uploadID uuid.UUID) error
}
