package handler

import (
	"context"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	analyticsapp "github.com/ordersight/backend/internal/application/analytics"
)

// ProjectionCache caches computed projections per (user, upload, horizon)
type ProjectionCache interface {
	Get(ctx context.Context, userID, uploadID uuid.UUID, days int) (*analyticsapp.Projection, error)
	Set(ctx context.Context, userID, uploadID uuid.UUID, days int, projection *analyticsapp.Projection) error
}

// AnalyticsHandler handles report and forecast endpoints
type AnalyticsHandler struct {
	BaseHandler
	service *analyticsapp.Service
	cache   ProjectionCache
	logger  *zap.Logger
}

// AnalyticsHandlerOption is a functional option for AnalyticsHandler
type AnalyticsHandlerOption func(*AnalyticsHandler)

// WithProjectionCache enables forecast caching
func WithProjectionCache(cache ProjectionCache) AnalyticsHandlerOption {
	return func(h *AnalyticsHandler) {
		h.cache = cache
	}
}

// NewAnalyticsHandler creates a new AnalyticsHandler
func NewAnalyticsHandler(service *analyticsapp.Service, logger *zap.Logger, opts ...AnalyticsHandlerOption) *AnalyticsHandler {
	h := &AnalyticsHandler{
		service: service,
		logger:  logger.Named("analytics-api"),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Available lists every report the caller can request
func (h *AnalyticsHandler) Available(c *gin.Context) {
	h.Success(c, h.service.Reports())
}

// Full runs every registered report for one upload in one shot
func (h *AnalyticsHandler) Full(c *gin.Context) {
	userID, uploadID, ok := h.scope(c)
	if !ok {
		return
	}

	result := make(map[string]any)
	for _, info := range h.service.Reports() {
		data, err := h.service.RunReport(c.Request.Context(), info.Key, userID, uploadID)
		if err != nil {
			h.HandleError(c, err)
			return
		}
		result[info.Key] = data
	}
	h.Success(c, result)
}

// Custom runs only the reports named in the request body. Unknown keys get an
// inline error entry instead of failing the whole request.
func (h *AnalyticsHandler) Custom(c *gin.Context) {
	userID, uploadID, ok := h.scope(c)
	if !ok {
		return
	}

	var keys []string
	if err := c.ShouldBindJSON(&keys); err != nil {
		h.BadRequest(c, "Request body must be a JSON array of report keys")
		return
	}

	result := make(map[string]any, len(keys))
	for _, key := range keys {
		data, err := h.service.RunReport(c.Request.Context(), key, userID, uploadID)
		if err != nil {
			result[key] = gin.H{"error": "Unknown report key"}
			continue
		}
		result[key] = data
	}
	h.Success(c, result)
}

// ForecastResponse wraps a projection with request metadata
type ForecastResponse struct {
	UploadID       uuid.UUID                `json:"upload_id"`
	DaysForecasted int                      `json:"days_forecasted"`
	GeneratedAt    time.Time                `json:"generated_at"`
	Projection     *analyticsapp.Projection `json:"projection"`
}

// Forecast generates a sales projection for an upload. Results are cached per
// horizon; pass refresh_cache=true to recompute.
func (h *AnalyticsHandler) Forecast(c *gin.Context) {
	userID, uploadID, ok := h.scope(c)
	if !ok {
		return
	}

	days := 30
	if raw := c.Query("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			h.BadRequest(c, "days must be an integer")
			return
		}
		days = parsed
	}
	refresh := c.Query("refresh_cache") == "true"

	ctx := c.Request.Context()
	if h.cache != nil && !refresh {
		cached, err := h.cache.Get(ctx, userID, uploadID, days)
		if err != nil {
			h.logger.Warn("Forecast cache read failed", zap.Error(err))
		} else if cached != nil {
			h.Success(c, ForecastResponse{
				UploadID:       uploadID,
				DaysForecasted: days,
				GeneratedAt:    time.Now().UTC(),
				Projection:     cached,
			})
			return
		}
	}

	projection, err := h.service.SalesProjection(ctx, userID, uploadID, days)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	if h.cache != nil {
		if err := h.cache.Set(ctx, userID, uploadID, days, projection); err != nil {
			h.logger.Warn("Forecast cache write failed", zap.Error(err))
		}
	}

	h.Success(c, ForecastResponse{
		UploadID:       uploadID,
		DaysForecasted: days,
		GeneratedAt:    time.Now().UTC(),
		Projection:     projection,
	})
}

// scope resolves the caller and the target upload from the request
func (h *AnalyticsHandler) scope(c *gin.Context) (userID, uploadID uuid.UUID, ok bool) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return uuid.Nil, uuid.Nil, false
	}

	uploadID, err = uuid.Parse(c.Query("upload_id"))
	if err != nil {
		h.BadRequest(c, "upload_id query parameter is required")
		return uuid.Nil, uuid.Nil, false
	}
	return userID, uploadID, true
}

// RegisterRoutes registers analytics routes on the API group
func (h *AnalyticsHandler) RegisterRoutes(rg *gin.RouterGroup) {
	analytics := rg.Group("/analytics")
	{
		analytics.GET("/available", h.Available)
		analytics.GET("/full", h.Full)
		analytics.POST("/custom", h.Custom)
	}
	projections := rg.Group("/projections")
	{
		projections.GET("/forecast", h.Forecast)
	}
}
