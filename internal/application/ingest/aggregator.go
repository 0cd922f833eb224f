package ingestapp

import (
	"context"
	"io"

	"github.com/ordersight/backend/internal/domain/ingest"
	"github.com/ordersight/backend/internal/infrastructure/orderfile"
)

// progressInterval is the row cadence at which progress checkpoints are
// persisted, bounding write amplification on the status row.
const progressInterval = 1000

// RowSource is a lazy sequence of export rows. *orderfile.Reader satisfies it.
type RowSource interface {
	Next() (*orderfile.Row, error)
}

// OrderGroup holds one deduplicated order draft plus its line-item drafts in
// source row order.
type OrderGroup struct {
	Order *ingest.Order
	Items []*ingest.LineItem
}

// AggregateResult is the in-memory outcome of one aggregation pass. It is
// owned exclusively by the run that produced it.
type AggregateResult struct {
	// Groups maps order key to its group; Keys preserves first-seen order so
	// downstream writes are deterministic.
	Groups    map[string]*OrderGroup
	Keys      []string
	Processed int
}

// LineItemCount returns the total number of line-item drafts across groups
func (r *AggregateResult) LineItemCount() int {
	n := 0
	for _, key := range r.Keys {
		n += len(r.Groups[key].Items)
	}
	return n
}

// Aggregator folds a stream of raw rows into one order draft per distinct
// order key. The first occurrence of a key establishes the order draft; every
// occurrence contributes one line-item draft unless the row fails the
// line-item skip rule. Every input row advances the processed counter either way.
type Aggregator struct {
	mapper  *RowMapper
	tracker *ProgressTracker
}

// NewAggregator creates an aggregator for one ingestion run
func NewAggregator(mapper *RowMapper, tracker *ProgressTracker) *Aggregator {
	return &Aggregator{mapper: mapper, tracker: tracker}
}

// Aggregate consumes the row source to exhaustion. Progress is checkpointed
// every progressInterval rows and once more with the final count on return.
func (a *Aggregator) Aggregate(ctx context.Context, upload *ingest.Upload, rows RowSource) (*AggregateResult, error) {
	result := &AggregateResult{
		Groups: make(map[string]*OrderGroup),
	}

	for {
		row, err := rows.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		key := a.mapper.OrderKey(row)
		group, ok := result.Groups[key]
		if !ok {
			group = &OrderGroup{Order: a.mapper.MapOrder(row)}
			result.Groups[key] = group
			result.Keys = append(result.Keys, key)
		}

		if item, ok := a.mapper.MapLineItem(row); ok {
			group.Items = append(group.Items, item)
		}

		result.Processed++
		if result.Processed%progressInterval == 0 {
			if err := a.tracker.Advance(ctx, upload, result.Processed); err != nil {
				return nil, err
			}
		}
	}

	if err := a.tracker.Advance(ctx, upload, result.Processed); err != nil {
		return nil, err
	}
	return result, nil
}
