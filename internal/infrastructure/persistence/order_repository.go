package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/ordersight/backend/internal/domain/ingest"
	"github.com/ordersight/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormOrderRepository implements ingest.OrderRepository using GORM
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new GormOrderRepository
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// InsertBatch inserts a batch of orders inside its own committed transaction,
// so a later failure cannot roll back batches already written.
func (r *GormOrderRepository) InsertBatch(ctx context.Context, orders []*ingest.Order) error {
	if len(orders) == 0 {
		return nil
	}
	orderModels := make([]*models.OrderModel, len(orders))
	for i, o := range orders {
		orderModels[i] = models.OrderModelFromDomain(o)
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(&orderModels).Error
	})
}

// ExternalIDMap returns the external-order-key to primary-key mapping for one
// upload. When duplicate external keys exist the earliest inserted row wins,
// matching the aggregation's first-occurrence rule.
func (r *GormOrderRepository) ExternalIDMap(ctx context.Context, userID, uploadID uuid.UUID) (map[string]uuid.UUID, error) {
	type row struct {
		ID              uuid.UUID
		ExternalOrderID string
	}
	var rows []row
	if err := r.db.WithContext(ctx).
		Model(&models.OrderModel{}).
		Select("id", "external_order_id").
		Where("user_id = ? AND upload_id = ?", userID, uploadID).
		Order("created_at ASC, id ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}

	idMap := make(map[string]uuid.UUID, len(rows))
	for _, r := range rows {
		if _, exists := idMap[r.ExternalOrderID]; !exists {
			idMap[r.ExternalOrderID] = r.ID
		}
	}
	return idMap, nil
}

// CountByUpload counts the orders written for one upload
func (r *GormOrderRepository) CountByUpload(ctx context.Context, userID, uploadID uuid.UUID) (int, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.OrderModel{}).
		Where("user_id = ? AND upload_id = ?", userID, uploadID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return int(count), nil
}

// DeleteByUpload removes every order written for one upload. Line items must
// be deleted first; the FK chain runs through orders.
func (r *GormOrderRepository) DeleteByUpload(ctx context.Context, userID, uploadID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Delete(&models.OrderModel{}, "user_id = ? AND upload_id = ?", userID, uploadID).Error
}

// Compile-time interface compliance check
var _ ingest.OrderRepository = (*GormOrderRepository)(nil)
