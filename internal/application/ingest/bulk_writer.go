package ingestapp

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/ordersight/backend/internal/domain/ingest"
	"github.com/ordersight/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// insertBatchSize is the fixed batch size for bulk writes. Each batch commits
// in its own transaction, bounding transaction size for very large files; a
// crash mid-phase leaves a committed prefix rather than one giant rollback.
const insertBatchSize = 1000

// BulkWriter persists aggregated drafts in two phases: orders first, then
// line items once storage-assigned order identifiers are known.
type BulkWriter struct {
	orders    ingest.OrderRepository
	lineItems ingest.LineItemRepository
	logger    *zap.Logger
}

// NewBulkWriter creates a bulk writer over the order and line-item repositories
func NewBulkWriter(orders ingest.OrderRepository, lineItems ingest.LineItemRepository, logger *zap.Logger) *BulkWriter {
	return &BulkWriter{
		orders:    orders,
		lineItems: lineItems,
		logger:    logger.Named("bulk_writer"),
	}
}

// WriteOrders writes the unique order drafts in fixed-size batches, committing
// each batch before starting the next. Batch failures propagate; retry policy
// belongs to the caller.
func (w *BulkWriter) WriteOrders(ctx context.Context, result *AggregateResult) error {
	drafts := make([]*ingest.Order, 0, len(result.Keys))
	for _, key := range result.Keys {
		order := result.Groups[key].Order
		order.BaseEntity = shared.NewBaseEntity()
		drafts = append(drafts, order)
	}

	for start := 0; start < len(drafts); start += insertBatchSize {
		end := min(start+insertBatchSize, len(drafts))
		if err := w.orders.InsertBatch(ctx, drafts[start:end]); err != nil {
			return fmt.Errorf("order batch starting at %d failed: %w", start, err)
		}
	}

	w.logger.Debug("order phase complete", zap.Int("orders", len(drafts)))
	return nil
}

// ResolveOrderIDs re-reads the orders written under (user, upload) and returns
// the external-key to storage-identifier mapping used to link line items.
func (w *BulkWriter) ResolveOrderIDs(ctx context.Context, userID, uploadID uuid.UUID) (map[string]uuid.UUID, error) {
	idMap, err := w.orders.ExternalIDMap(ctx, userID, uploadID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve order identifiers: %w", err)
	}
	return idMap, nil
}

// WriteLineItems substitutes each draft's owning-order identifier from idMap
// and writes the drafts in fixed-size committed batches. Drafts whose order
// key is absent from the map are skipped with a warning; phase-1 deduplication
// makes that structurally impossible, so an occurrence is a storage anomaly
// worth surfacing without failing the run. Returns the number written.
func (w *BulkWriter) WriteLineItems(ctx context.Context, result *AggregateResult, idMap map[string]uuid.UUID) (int, error) {
	items := make([]*ingest.LineItem, 0, result.LineItemCount())
	for _, key := range result.Keys {
		group := result.Groups[key]
		orderID, ok := idMap[group.Order.ExternalOrderID]
		if !ok {
			w.logger.Warn("order key missing from resolution map, skipping its line items",
				zap.String("external_order_id", group.Order.ExternalOrderID),
				zap.Int("line_items", len(group.Items)))
			continue
		}
		for _, item := range group.Items {
			item.BaseEntity = shared.NewBaseEntity()
			item.OrderID = orderID
			items = append(items, item)
		}
	}

	for start := 0; start < len(items); start += insertBatchSize {
		end := min(start+insertBatchSize, len(items))
		if err := w.lineItems.InsertBatch(ctx, items[start:end]); err != nil {
			return 0, fmt.Errorf("line item batch starting at %d failed: %w", start, err)
		}
	}

	w.logger.Debug("line item phase complete", zap.Int("line_items", len(items)))
	return len(items), nil
}
