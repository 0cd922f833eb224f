package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/ordersight/backend/internal/domain/ingest"
	"github.com/ordersight/backend/internal/domain/shared"
	"github.com/ordersight/backend/internal/infrastructure/persistence/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupTestDB opens an in-memory database with the full ingestion schema
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(&models.UploadModel{}, &models.OrderModel{}, &models.LineItemModel{})
	require.NoError(t, err)

	return db
}

func newStoredUpload(t *testing.T, repo *GormUploadRepository, userID uuid.UUID, fileName string) *ingest.Upload {
	t.Helper()
	upload, err := ingest.NewUpload(userID, fileName, "uploads/"+fileName, 128)
	require.NoError(t, err)
	require.NoError(t, upload.MarkUploaded())
	require.NoError(t, repo.Save(context.Background(), upload))
	return upload
}

func TestGormUploadRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("Save and FindByID roundtrip", func(t *testing.T) {
		repo := NewGormUploadRepository(setupTestDB(t))
		upload := newStoredUpload(t, repo, uuid.New(), "orders.csv")

		found, err := repo.FindByID(ctx, upload.ID)

		require.NoError(t, err)
		assert.Equal(t, upload.ID, found.ID)
		assert.Equal(t, "orders.csv", found.FileName)
		assert.Equal(t, ingest.UploadStatusUploaded, found.Status)
		assert.Equal(t, int64(128), found.FileSize)
	})

	t.Run("FindByID not found", func(t *testing.T) {
		repo := NewGormUploadRepository(setupTestDB(t))

		_, err := repo.FindByID(ctx, uuid.New())

		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("FindByIDForUser rejects other owners", func(t *testing.T) {
		repo := NewGormUploadRepository(setupTestDB(t))
		owner := uuid.New()
		upload := newStoredUpload(t, repo, owner, "orders.csv")

		found, err := repo.FindByIDForUser(ctx, owner, upload.ID)
		require.NoError(t, err)
		assert.Equal(t, upload.ID, found.ID)

		_, err = repo.FindByIDForUser(ctx, uuid.New(), upload.ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("Save updates existing row", func(t *testing.T) {
		repo := NewGormUploadRepository(setupTestDB(t))
		upload := newStoredUpload(t, repo, uuid.New(), "orders.csv")

		require.NoError(t, upload.StartProcessing())
		require.NoError(t, upload.SetTotalRows(500))
		require.NoError(t, upload.AdvanceProgress(100))
		require.NoError(t, repo.Save(ctx, upload))

		found, err := repo.FindByID(ctx, upload.ID)
		require.NoError(t, err)
		assert.Equal(t, ingest.UploadStatusProcessing, found.Status)
		assert.Equal(t, 500, found.TotalRows)
		assert.Equal(t, 100, found.RecordsProcessed)
	})

	t.Run("FindByUser returns own uploads newest first", func(t *testing.T) {
		repo := NewGormUploadRepository(setupTestDB(t))
		userID := uuid.New()

		older := newStoredUpload(t, repo, userID, "january.csv")
		older.UploadedAt = time.Now().Add(-time.Hour)
		require.NoError(t, repo.Save(ctx, older))
		newer := newStoredUpload(t, repo, userID, "february.csv")
		newStoredUpload(t, repo, uuid.New(), "other.csv")

		uploads, err := repo.FindByUser(ctx, userID)

		require.NoError(t, err)
		require.Len(t, uploads, 2)
		assert.Equal(t, newer.ID, uploads[0].ID)
		assert.Equal(t, older.ID, uploads[1].ID)
	})
}
