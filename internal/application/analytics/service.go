package analyticsapp

import (
	"context"
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/ordersight/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// defaultRankingLimit bounds the top-N rankings when the caller does not ask
// for a specific size
const defaultRankingLimit = 5

// CustomerMetrics combines unique and repeat customer counts with the repeat
// purchase rate as a percentage
type CustomerMetrics struct {
	UniqueCount       int     `json:"unique_count"`
	RepeatCount       int     `json:"repeat_count"`
	RepeatRatePercent float64 `json:"repeat_rate_percent"`
}

// ReportInfo describes one entry of the report registry
type ReportInfo struct {
	Key         string `json:"key"`
	Label       string `json:"label"`
	Description string `json:"description"`
}

// Service answers analytics reads over ingested orders
type Service struct {
	repo   Repository
	logger *zap.Logger
}

// NewService creates an analytics service
func NewService(repo Repository, logger *zap.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger.Named("analytics"),
	}
}

// OrdersSummary returns order count, revenue, and average order value
func (s *Service) OrdersSummary(ctx context.Context, userID, uploadID uuid.UUID) (*Summary, error) {
	count, err := s.repo.CountOrders(ctx, userID, uploadID)
	if err != nil {
		return nil, err
	}
	revenue, err := s.repo.SumRevenue(ctx, userID, uploadID)
	if err != nil {
		return nil, err
	}

	avg := decimal.Zero
	if count > 0 {
		avg = revenue.Div(decimal.NewFromInt(int64(count))).Round(2)
	}
	return &Summary{
		TotalOrders:       count,
		TotalRevenue:      revenue,
		AverageOrderValue: avg,
	}, nil
}

// OrdersPerDay returns the daily order-count series in date order
func (s *Service) OrdersPerDay(ctx context.Context, userID, uploadID uuid.UUID) ([]DailyOrders, error) {
	return s.repo.OrdersPerDay(ctx, userID, uploadID)
}

// OrdersPerHour returns the hourly order-count series in time order
func (s *Service) OrdersPerHour(ctx context.Context, userID, uploadID uuid.UUID) ([]HourlyOrders, error) {
	return s.repo.OrdersPerHour(ctx, userID, uploadID)
}

// OrdersByWeekday returns order counts grouped by day of week
func (s *Service) OrdersByWeekday(ctx context.Context, userID, uploadID uuid.UUID) ([]WeekdayOrders, error) {
	return s.repo.OrdersByWeekday(ctx, userID, uploadID)
}

// TopCitiesByOrders ranks shipping cities by order count
func (s *Service) TopCitiesByOrders(ctx context.Context, userID, uploadID uuid.UUID, limit int) ([]CityOrders, error) {
	return s.repo.TopCitiesByOrders(ctx, userID, uploadID, normalizeLimit(limit))
}

// TopCitiesByRevenue ranks shipping cities by summed order totals
func (s *Service) TopCitiesByRevenue(ctx context.Context, userID, uploadID uuid.UUID, limit int) ([]CityRevenue, error) {
	return s.repo.TopCitiesByRevenue(ctx, userID, uploadID, normalizeLimit(limit))
}

// TopProductsByQuantity ranks line-item names by units sold
func (s *Service) TopProductsByQuantity(ctx context.Context, userID, uploadID uuid.UUID, limit int) ([]ProductQuantity, error) {
	return s.repo.TopProductsByQuantity(ctx, userID, uploadID, normalizeLimit(limit))
}

// TopProductsByRevenue ranks line-item names by price * quantity revenue
func (s *Service) TopProductsByRevenue(ctx context.Context, userID, uploadID uuid.UUID, limit int) ([]ProductRevenue, error) {
	return s.repo.TopProductsByRevenue(ctx, userID, uploadID, normalizeLimit(limit))
}

// TopDiscountCodes ranks discount codes by how many orders used them
func (s *Service) TopDiscountCodes(ctx context.Context, userID, uploadID uuid.UUID, limit int) ([]DiscountCodeUsage, error) {
	return s.repo.TopDiscountCodes(ctx, userID, uploadID, normalizeLimit(limit))
}

// TopDiscountCodesBySavings ranks discount codes by total discount amount
func (s *Service) TopDiscountCodesBySavings(ctx context.Context, userID, uploadID uuid.UUID, limit int) ([]DiscountCodeSavings, error) {
	return s.repo.TopDiscountCodesBySavings(ctx, userID, uploadID, normalizeLimit(limit))
}

// RepeatCustomerMetrics combines unique and repeat counts with the repeat rate
func (s *Service) RepeatCustomerMetrics(ctx context.Context, userID, uploadID uuid.UUID) (*CustomerMetrics, error) {
	unique, err := s.repo.UniqueCustomerCount(ctx, userID, uploadID)
	if err != nil {
		return nil, err
	}
	repeat, err := s.repo.RepeatCustomerCount(ctx, userID, uploadID)
	if err != nil {
		return nil, err
	}

	rate := 0.0
	if unique > 0 {
		rate = float64(repeat) / float64(unique) * 100.0
	}
	return &CustomerMetrics{
		UniqueCount:       unique,
		RepeatCount:       repeat,
		RepeatRatePercent: rate,
	}, nil
}

// SalesProjection runs the seasonal forecaster over the upload's revenue
// history
func (s *Service) SalesProjection(ctx context.Context, userID, uploadID uuid.UUID, days int) (*Projection, error) {
	history, err := s.repo.DailyRevenueHistory(ctx, userID, uploadID)
	if err != nil {
		return nil, err
	}
	projection, err := NewForecaster(history).Forecast(days)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("sales projection generated",
		zap.String("upload_id", uploadID.String()),
		zap.Int("horizon_days", days),
		zap.Int("days_analyzed", projection.Metrics.TotalDaysAnalyzed))
	return projection, nil
}

// reportRunner produces one registry report; results are plain serializable
// values handed straight to the response envelope
type reportRunner func(ctx context.Context, s *Service, userID, uploadID uuid.UUID) (any, error)

type reportEntry struct {
	label       string
	description string
	run         reportRunner
}

// reportRegistry maps report keys to their aggregations, so the dashboard can
// request any report through one endpoint
var reportRegistry = map[string]reportEntry{
	"orders_summary": {
		label:       "Orders Summary",
		description: "Total orders, total revenue, and average order value.",
		run: func(ctx context.Context, s *Service, userID, uploadID uuid.UUID) (any, error) {
			return s.OrdersSummary(ctx, userID, uploadID)
		},
	},
	"time_series": {
		label:       "Daily Time Series",
		description: "Number of orders per day.",
		run: func(ctx context.Context, s *Service, userID, uploadID uuid.UUID) (any, error) {
			return s.OrdersPerDay(ctx, userID, uploadID)
		},
	},
	"orders_by_hour": {
		label:       "Hourly Orders",
		description: "Number of orders per hour block.",
		run: func(ctx context.Context, s *Service, userID, uploadID uuid.UUID) (any, error) {
			return s.OrdersPerHour(ctx, userID, uploadID)
		},
	},
	"orders_by_day_of_week": {
		label:       "Orders by Day of Week",
		description: "Order counts by day of week, 0=Sunday through 6=Saturday.",
		run: func(ctx context.Context, s *Service, userID, uploadID uuid.UUID) (any, error) {
			return s.OrdersByWeekday(ctx, userID, uploadID)
		},
	},
	"top_cities_by_orders": {
		label:       "Top Cities (by Order Count)",
		description: "Shipping cities ranked by order count.",
		run: func(ctx context.Context, s *Service, userID, uploadID uuid.UUID) (any, error) {
			return s.TopCitiesByOrders(ctx, userID, uploadID, defaultRankingLimit)
		},
	},
	"top_cities_by_revenue": {
		label:       "Top Cities (by Revenue)",
		description: "Shipping cities ranked by total revenue.",
		run: func(ctx context.Context, s *Service, userID, uploadID uuid.UUID) (any, error) {
			return s.TopCitiesByRevenue(ctx, userID, uploadID, defaultRankingLimit)
		},
	},
	"top_products_by_quantity": {
		label:       "Top Products (by Quantity)",
		description: "Line items ranked by units sold.",
		run: func(ctx context.Context, s *Service, userID, uploadID uuid.UUID) (any, error) {
			return s.TopProductsByQuantity(ctx, userID, uploadID, defaultRankingLimit)
		},
	},
	"top_products_by_revenue": {
		label:       "Top Products (by Revenue)",
		description: "Line items ranked by price times quantity.",
		run: func(ctx context.Context, s *Service, userID, uploadID uuid.UUID) (any, error) {
			return s.TopProductsByRevenue(ctx, userID, uploadID, defaultRankingLimit)
		},
	},
	"repeat_customers": {
		label:       "Repeat Customer Metrics",
		description: "Unique and repeat customers plus the repeat purchase rate.",
		run: func(ctx context.Context, s *Service, userID, uploadID uuid.UUID) (any, error) {
			return s.RepeatCustomerMetrics(ctx, userID, uploadID)
		},
	},
	"top_discount_codes": {
		label:       "Top Discount Codes (by usage)",
		description: "Discount codes ranked by how many orders used them.",
		run: func(ctx context.Context, s *Service, userID, uploadID uuid.UUID) (any, error) {
			return s.TopDiscountCodes(ctx, userID, uploadID, defaultRankingLimit)
		},
	},
	"top_discount_codes_by_savings": {
		label:       "Top Discount Codes (by total discount)",
		description: "Discount codes ranked by total discount amount.",
		run: func(ctx context.Context, s *Service, userID, uploadID uuid.UUID) (any, error) {
			return s.TopDiscountCodesBySavings(ctx, userID, uploadID, defaultRankingLimit)
		},
	},
}

// Reports lists the available report keys with labels and descriptions
func (s *Service) Reports() []ReportInfo {
	infos := make([]ReportInfo, 0, len(reportRegistry))
	for key, entry := range reportRegistry {
		infos = append(infos, ReportInfo{
			Key:         key,
			Label:       entry.label,
			Description: entry.description,
		})
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Key < infos[j].Key })
	return infos
}

// RunReport executes one registry report by key
func (s *Service) RunReport(ctx context.Context, key string, userID, uploadID uuid.UUID) (any, error) {
	entry, ok := reportRegistry[key]
	if !ok {
		return nil, shared.NewDomainError("UNKNOWN_REPORT", "Unknown report: "+key)
	}
	return entry.run(ctx, s, userID, uploadID)
}

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return defaultRankingLimit
	}
	return limit
}
