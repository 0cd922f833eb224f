package ingestapp

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ordersight/backend/internal/domain/ingest"
	"go.uber.org/zap"
)

const sampleExport = `Name,Id,Email,Total,Created at,Shipping City,Lineitem name,Lineitem price,Lineitem quantity
#1001,9001,a@example.com,35.00,2021-01-19 12:00:00 -0500,Austin,Shirt,25.00,1
#1001,9001,a@example.com,35.00,2021-01-19 12:00:00 -0500,Austin,Hat,10.00,1
#1002,9002,b@example.com,15.00,2021-01-20 09:30:00 -0500,Boston,Mug,15.00,1
`

type processorFixture struct {
	uploads   *fakeUploadRepo
	orders    *fakeOrderRepo
	lineItems *fakeLineItemRepo
	files     *fakeFileStore
	processor *Processor
}

func newProcessorFixture(t *testing.T) *processorFixture {
	t.Helper()
	uploads := newFakeUploadRepo()
	orders := &fakeOrderRepo{}
	lineItems := &fakeLineItemRepo{orders: orders}
	files := newFakeFileStore(t.TempDir())
	return &processorFixture{
		uploads:   uploads,
		orders:    orders,
		lineItems: lineItems,
		files:     files,
		processor: NewProcessor(uploads, orders, lineItems, files, zap.NewNop()),
	}
}

// acceptFile stores content and creates an uploaded job for it
func (f *processorFixture) acceptFile(t *testing.T, userID uuid.UUID, fileName, content string) *ingest.Upload {
	t.Helper()
	ctx := context.Background()
	ref, err := f.files.Save(ctx, "uploads/"+fileName, strings.NewReader(content), int64(len(content)))
	require.NoError(t, err)
	upload, err := ingest.NewUpload(userID, fileName, ref, int64(len(content)))
	require.NoError(t, err)
	require.NoError(t, upload.MarkUploaded())
	require.NoError(t, f.uploads.Save(ctx, upload))
	return upload
}

func TestProcess(t *testing.T) {
	ctx := context.Background()

	t.Run("Full pipeline", func(t *testing.T) {
		f := newProcessorFixture(t)
		userID := uuid.New()
		upload := f.acceptFile(t, userID, "orders.csv", sampleExport)

		require.NoError(t, f.processor.Process(ctx, upload.FilePath, userID, upload.ID))

		stored, err := f.uploads.FindByID(ctx, upload.ID)
		require.NoError(t, err)
		assert.Equal(t, ingest.UploadStatusCompleted, stored.Status)
		assert.Equal(t, 3, stored.TotalRows)
		assert.Equal(t, 3, stored.RecordsProcessed)
		assert.Equal(t, 100, stored.Percent())

		// 3 rows sharing 2 order keys collapse to 2 orders, 3 line items
		require.Len(t, f.orders.orders, 2)
		require.Len(t, f.lineItems.items, 3)

		idMap, err := f.orders.ExternalIDMap(ctx, userID, upload.ID)
		require.NoError(t, err)
		for _, item := range f.lineItems.items {
			assert.True(t, item.HasOwner())
			found := false
			for _, id := range idMap {
				if id == item.OrderID {
					found = true
				}
			}
			assert.True(t, found, "line item references an order outside this run")
		}

		// temp file cleaned up
		assert.Equal(t, 1, f.files.cleanups)
	})

	t.Run("Zero row file completes empty", func(t *testing.T) {
		f := newProcessorFixture(t)
		userID := uuid.New()
		upload := f.acceptFile(t, userID, "orders.csv", "Name,Id,Email\n")

		require.NoError(t, f.processor.Process(ctx, upload.FilePath, userID, upload.ID))

		stored, err := f.uploads.FindByID(ctx, upload.ID)
		require.NoError(t, err)
		assert.Equal(t, ingest.UploadStatusCompleted, stored.Status)
		assert.Equal(t, 0, stored.TotalRows)
		assert.Equal(t, 0, stored.RecordsProcessed)
		assert.Empty(t, f.orders.orders)
		assert.Empty(t, f.lineItems.items)
	})

	t.Run("Row with unparseable price keeps order without line item", func(t *testing.T) {
		f := newProcessorFixture(t)
		userID := uuid.New()
		export := "Name,Lineitem price,Lineitem quantity\n#1001,N/A,2\n"
		upload := f.acceptFile(t, userID, "orders.csv", export)

		require.NoError(t, f.processor.Process(ctx, upload.FilePath, userID, upload.ID))

		stored, err := f.uploads.FindByID(ctx, upload.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, stored.RecordsProcessed)
		assert.Len(t, f.orders.orders, 1)
		assert.Empty(t, f.lineItems.items)
	})

	t.Run("Completed job is a no-op on re-invocation", func(t *testing.T) {
		f := newProcessorFixture(t)
		userID := uuid.New()
		upload := f.acceptFile(t, userID, "orders.csv", sampleExport)

		require.NoError(t, f.processor.Process(ctx, upload.FilePath, userID, upload.ID))
		callsAfterFirst := f.orders.insertCalls

		require.NoError(t, f.processor.Process(ctx, upload.FilePath, userID, upload.ID))

		assert.Equal(t, callsAfterFirst, f.orders.insertCalls)
		assert.Len(t, f.orders.orders, 2)
	})

	t.Run("Crashed attempt is wiped and re-run", func(t *testing.T) {
		f := newProcessorFixture(t)
		userID := uuid.New()
		upload := f.acceptFile(t, userID, "orders.csv", sampleExport)

		// Simulate a committed partial prefix from a crashed attempt
		stale := &ingest.Order{UserID: userID, UploadID: upload.ID, ExternalOrderID: "9001"}
		stale.ID = uuid.New()
		require.NoError(t, f.orders.InsertBatch(ctx, []*ingest.Order{stale}))
		require.NoError(t, upload.StartProcessing())
		require.NoError(t, f.uploads.Save(ctx, upload))

		require.NoError(t, f.processor.Process(ctx, upload.FilePath, userID, upload.ID))

		assert.Len(t, f.orders.orders, 2)
		assert.Len(t, f.lineItems.items, 3)
	})

	t.Run("Failed job can be retried", func(t *testing.T) {
		f := newProcessorFixture(t)
		userID := uuid.New()
		upload := f.acceptFile(t, userID, "orders.csv", sampleExport)

		f.files.fetchErr = errors.New("blob storage down")
		require.Error(t, f.processor.Process(ctx, upload.FilePath, userID, upload.ID))

		stored, err := f.uploads.FindByID(ctx, upload.ID)
		require.NoError(t, err)
		require.Equal(t, ingest.UploadStatusFailed, stored.Status)

		f.files.fetchErr = nil
		require.NoError(t, f.processor.Process(ctx, upload.FilePath, userID, upload.ID))

		stored, err = f.uploads.FindByID(ctx, upload.ID)
		require.NoError(t, err)
		assert.Equal(t, ingest.UploadStatusCompleted, stored.Status)
		assert.Len(t, f.orders.orders, 2)
	})

	t.Run("Unreadable file fails the job", func(t *testing.T) {
		f := newProcessorFixture(t)
		userID := uuid.New()
		upload := f.acceptFile(t, userID, "orders.csv", sampleExport)
		f.files.fetchErr = errors.New("blob storage down")

		err := f.processor.Process(ctx, upload.FilePath, userID, upload.ID)

		require.Error(t, err)
		stored, findErr := f.uploads.FindByID(ctx, upload.ID)
		require.NoError(t, findErr)
		assert.Equal(t, ingest.UploadStatusFailed, stored.Status)
	})

	t.Run("Batch write failure fails the job", func(t *testing.T) {
		f := newProcessorFixture(t)
		userID := uuid.New()
		upload := f.acceptFile(t, userID, "orders.csv", sampleExport)
		f.orders.batchErr = errors.New("deadlock detected")

		err := f.processor.Process(ctx, upload.FilePath, userID, upload.ID)

		require.Error(t, err)
		stored, findErr := f.uploads.FindByID(ctx, upload.ID)
		require.NoError(t, findErr)
		assert.Equal(t, ingest.UploadStatusFailed, stored.Status)
		// temp file removed on the failure path too
		assert.Equal(t, 1, f.files.cleanups)
	})

	t.Run("Unsupported extension fails the job", func(t *testing.T) {
		f := newProcessorFixture(t)
		userID := uuid.New()
		upload := f.acceptFile(t, userID, "orders.xlsx", sampleExport)

		err := f.processor.Process(ctx, upload.FilePath, userID, upload.ID)

		require.Error(t, err)
		stored, findErr := f.uploads.FindByID(ctx, upload.ID)
		require.NoError(t, findErr)
		assert.Equal(t, ingest.UploadStatusFailed, stored.Status)
	})

	t.Run("Unknown upload returns error", func(t *testing.T) {
		f := newProcessorFixture(t)
		err := f.processor.Process(ctx, "uploads/missing.csv", uuid.New(), uuid.New())
		assert.Error(t, err)
	})

	t.Run("Upload owned by another user is not processed", func(t *testing.T) {
		f := newProcessorFixture(t)
		upload := f.acceptFile(t, uuid.New(), "orders.csv", sampleExport)

		err := f.processor.Process(ctx, upload.FilePath, uuid.New(), upload.ID)

		assert.Error(t, err)
		assert.Empty(t, f.orders.orders)
	})
}
