package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/ordersight/backend/internal/domain/ingest"
	"github.com/ordersight/backend/internal/domain/shared"
	"github.com/ordersight/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormUploadRepository implements ingest.UploadRepository using GORM
type GormUploadRepository struct {
	db *gorm.DB
}

// NewGormUploadRepository creates a new GormUploadRepository
func NewGormUploadRepository(db *gorm.DB) *GormUploadRepository {
	return &GormUploadRepository{db: db}
}

// FindByID finds an upload by ID
func (r *GormUploadRepository) FindByID(ctx context.Context, id uuid.UUID) (*ingest.Upload, error) {
	var model models.UploadModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDForUser finds an upload by ID scoped to its owner
func (r *GormUploadRepository) FindByIDForUser(ctx context.Context, userID, id uuid.UUID) (*ingest.Upload, error) {
	var model models.UploadModel
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND id = ?", userID, id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByUser returns all uploads for a user, newest first
func (r *GormUploadRepository) FindByUser(ctx context.Context, userID uuid.UUID) ([]*ingest.Upload, error) {
	var uploadModels []models.UploadModel
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("uploaded_at DESC").
		Find(&uploadModels).Error; err != nil {
		return nil, err
	}

	uploads := make([]*ingest.Upload, len(uploadModels))
	for i := range uploadModels {
		uploads[i] = uploadModels[i].ToDomain()
	}
	return uploads, nil
}

// Save saves an upload (create or update)
func (r *GormUploadRepository) Save(ctx context.Context, upload *ingest.Upload) error {
	model := models.UploadModelFromDomain(upload)
	return r.db.WithContext(ctx).Save(model).Error
}

// Compile-time interface compliance check
var _ ingest.UploadRepository = (*GormUploadRepository)(nil)
