package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/ordersight/backend/internal/domain/ingest"
	"github.com/ordersight/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormLineItemRepository implements ingest.LineItemRepository using GORM.
// Line items carry no upload column; upload scope resolves through the orders
// FK.
type GormLineItemRepository struct {
	db *gorm.DB
}

// NewGormLineItemRepository creates a new GormLineItemRepository
func NewGormLineItemRepository(db *gorm.DB) *GormLineItemRepository {
	return &GormLineItemRepository{db: db}
}

// InsertBatch inserts a batch of line items inside its own committed
// transaction
func (r *GormLineItemRepository) InsertBatch(ctx context.Context, items []*ingest.LineItem) error {
	if len(items) == 0 {
		return nil
	}
	itemModels := make([]*models.LineItemModel, len(items))
	for i, li := range items {
		itemModels[i] = models.LineItemModelFromDomain(li)
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(&itemModels).Error
	})
}

// CountByUpload counts the line items written for one upload
func (r *GormLineItemRepository) CountByUpload(ctx context.Context, userID, uploadID uuid.UUID) (int, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.LineItemModel{}).
		Joins("JOIN orders ON orders.id = line_items.order_id").
		Where("orders.user_id = ? AND orders.upload_id = ?", userID, uploadID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return int(count), nil
}

// DeleteByUpload removes every line item belonging to one upload's orders
func (r *GormLineItemRepository) DeleteByUpload(ctx context.Context, userID, uploadID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("order_id IN (?)", r.db.
			Model(&models.OrderModel{}).
			Select("id").
			Where("user_id = ? AND upload_id = ?", userID, uploadID)).
		Delete(&models.LineItemModel{}).Error
}

// Compile-time interface compliance check
var _ ingest.LineItemRepository = (*GormLineItemRepository)(nil)
