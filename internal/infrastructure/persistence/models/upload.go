package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/ordersight/backend/internal/domain/ingest"
)

// UploadModel is the persistence model for the Upload job entity.
type UploadModel struct {
	BaseModel
	UserID           uuid.UUID           `gorm:"type:uuid;not null;index"`
	FileName         string              `gorm:"type:varchar(255);not null"`
	FilePath         string              `gorm:"type:varchar(1024);not null"`
	FileSize         int64               `gorm:"not null;default:0"`
	Status           ingest.UploadStatus `gorm:"type:varchar(20);not null;default:'pending';index"`
	TotalRows        int                 `gorm:"not null;default:0"`
	RecordsProcessed int                 `gorm:"not null;default:0"`
	UploadedAt       time.Time           `gorm:"not null"`
	CompletedAt      *time.Time
}

// TableName returns the table name for GORM
func (UploadModel) TableName() string {
	return "uploads"
}

// ToDomain converts the persistence model to a domain Upload entity.
func (m *UploadModel) ToDomain() *ingest.Upload {
	return &ingest.Upload{
		BaseEntity:       m.BaseModel.ToDomain(),
		UserID:           m.UserID,
		FileName:         m.FileName,
		FilePath:         m.FilePath,
		FileSize:         m.FileSize,
		Status:           m.Status,
		TotalRows:        m.TotalRows,
		RecordsProcessed: m.RecordsProcessed,
		UploadedAt:       m.UploadedAt,
		CompletedAt:      m.CompletedAt,
	}
}

// UploadModelFromDomain converts a domain Upload entity to its persistence model.
func UploadModelFromDomain(u *ingest.Upload) *UploadModel {
	model := &UploadModel{
		UserID:           u.UserID,
		FileName:         u.FileName,
		FilePath:         u.FilePath,
		FileSize:         u.FileSize,
		Status:           u.Status,
		TotalRows:        u.TotalRows,
		RecordsProcessed: u.RecordsProcessed,
		UploadedAt:       u.UploadedAt,
		CompletedAt:      u.CompletedAt,
	}
	model.FromDomainBaseEntity(u.BaseEntity)
	return model
}
