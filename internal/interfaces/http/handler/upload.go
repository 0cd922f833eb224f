package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	ingestapp "github.com/ordersight/backend/internal/application/ingest"
	"github.com/ordersight/backend/internal/domain/ingest"
)

// UploadHandler handles order-file upload endpoints
type UploadHandler struct {
	BaseHandler
	service *ingestapp.UploadService
}

// NewUploadHandler creates a new UploadHandler
func NewUploadHandler(service *ingestapp.UploadService) *UploadHandler {
	return &UploadHandler{service: service}
}

// UploadResponse represents an upload job in API responses
type UploadResponse struct {
	ID               uuid.UUID  `json:"id"`
	FileName         string     `json:"file_name"`
	FileSize         int64      `json:"file_size"`
	Status           string     `json:"status"`
	TotalRows        int        `json:"total_rows"`
	RecordsProcessed int        `json:"records_processed"`
	Percent          int        `json:"percent"`
	UploadedAt       time.Time  `json:"uploaded_at"`
	CompletedAt      *time.Time `json:"completed_at,omitempty"`
}

func toUploadResponse(u *ingest.Upload) UploadResponse {
	return UploadResponse{
		ID:               u.ID,
		FileName:         u.FileName,
		FileSize:         u.FileSize,
		Status:           string(u.Status),
		TotalRows:        u.TotalRows,
		RecordsProcessed: u.RecordsProcessed,
		Percent:          u.Percent(),
		UploadedAt:       u.UploadedAt,
		CompletedAt:      u.CompletedAt,
	}
}

// Upload accepts a multipart order-export file, stores it, and queues the
// ingestion job. Returns 201 with the created job.
func (h *UploadHandler) Upload(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		h.BadRequest(c, "file is required")
		return
	}
	defer file.Close()

	fileName := c.PostForm("file_name")
	if fileName == "" {
		fileName = header.Filename
	}

	upload, err := h.service.Accept(c.Request.Context(), userID, fileName, file, header.Size)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, toUploadResponse(upload))
}

// Status returns the polling view for one of the caller's uploads
func (h *UploadHandler) Status(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	uploadID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid upload ID")
		return
	}

	view, err := h.service.Status(c.Request.Context(), userID, uploadID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, view)
}

// History returns the caller's uploads, newest first
func (h *UploadHandler) History(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	uploads, err := h.service.History(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	responses := make([]UploadResponse, 0, len(uploads))
	for _, u := range uploads {
		responses = append(responses, toUploadResponse(u))
	}
	h.Success(c, responses)
}

// RegisterRoutes registers upload routes on the API group
func (h *UploadHandler) RegisterRoutes(rg *gin.RouterGroup) {
	uploads := rg.Group("/uploads")
	{
		uploads.POST("", h.Upload)
		uploads.GET("", h.History)
		uploads.GET("/:id/status", h.Status)
	}
}
