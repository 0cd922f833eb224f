package persistence

import (
	"context"

	"github.com/google/uuid"
	analyticsapp "github.com/ordersight/backend/internal/application/analytics"
	"github.com/ordersight/backend/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormAnalyticsRepository implements the analytics read-side queries using
// GORM. Date bucketing uses dialect-specific SQL; sqlite is supported so the
// queries stay testable without a postgres server.
type GormAnalyticsRepository struct {
	db *gorm.DB
}

// NewGormAnalyticsRepository creates a new GormAnalyticsRepository
func NewGormAnalyticsRepository(db *gorm.DB) *GormAnalyticsRepository {
	return &GormAnalyticsRepository{db: db}
}

// sqlite date functions differ from postgres; everything else is portable
func (r *GormAnalyticsRepository) sqlite() bool {
	return r.db.Dialector.Name() == "sqlite"
}

func (r *GormAnalyticsRepository) dayExpr() string {
	if r.sqlite() {
		return "strftime('%Y-%m-%d', placed_at)"
	}
	return "to_char(placed_at, 'YYYY-MM-DD')"
}

func (r *GormAnalyticsRepository) hourExpr() string {
	if r.sqlite() {
		return "strftime('%Y-%m-%d %H:00', placed_at)"
	}
	return "to_char(date_trunc('hour', placed_at), 'YYYY-MM-DD HH24:00')"
}

func (r *GormAnalyticsRepository) weekdayExpr() string {
	if r.sqlite() {
		return "CAST(strftime('%w', placed_at) AS INTEGER)"
	}
	return "CAST(EXTRACT(DOW FROM placed_at) AS INTEGER)"
}

// scoped returns an orders query filtered to one upload
func (r *GormAnalyticsRepository) scoped(ctx context.Context, userID, uploadID uuid.UUID) *gorm.DB {
	return r.db.WithContext(ctx).
		Model(&models.OrderModel{}).
		Where("user_id = ? AND upload_id = ?", userID, uploadID)
}

// CountOrders counts the orders for one upload
func (r *GormAnalyticsRepository) CountOrders(ctx context.Context, userID, uploadID uuid.UUID) (int, error) {
	var count int64
	if err := r.scoped(ctx, userID, uploadID).Count(&count).Error; err != nil {
		return 0, err
	}
	return int(count), nil
}

// SumRevenue sums order totals for one upload
func (r *GormAnalyticsRepository) SumRevenue(ctx context.Context, userID, uploadID uuid.UUID) (decimal.Decimal, error) {
	var result struct {
		Revenue decimal.Decimal
	}
	if err := r.scoped(ctx, userID, uploadID).
		Select("COALESCE(SUM(total), 0) AS revenue").
		Scan(&result).Error; err != nil {
		return decimal.Zero, err
	}
	return result.Revenue, nil
}

// OrdersPerDay groups orders by day of placement, in date order. Orders whose
// placement timestamp could not be parsed are excluded.
func (r *GormAnalyticsRepository) OrdersPerDay(ctx context.Context, userID, uploadID uuid.UUID) ([]analyticsapp.DailyOrders, error) {
	day := r.dayExpr()
	var series []analyticsapp.DailyOrders
	if err := r.scoped(ctx, userID, uploadID).
		Select(day+" AS date, COUNT(id) AS order_count").
		Where("placed_at IS NOT NULL").
		Group(day).
		Order("date ASC").
		Scan(&series).Error; err != nil {
		return nil, err
	}
	return series, nil
}

// OrdersPerHour groups orders by hour block, in time order
func (r *GormAnalyticsRepository) OrdersPerHour(ctx context.Context, userID, uploadID uuid.UUID) ([]analyticsapp.HourlyOrders, error) {
	hour := r.hourExpr()
	var series []analyticsapp.HourlyOrders
	if err := r.scoped(ctx, userID, uploadID).
		Select(hour+" AS hour_block, COUNT(id) AS order_count").
		Where("placed_at IS NOT NULL").
		Group(hour).
		Order("hour_block ASC").
		Scan(&series).Error; err != nil {
		return nil, err
	}
	return series, nil
}

// OrdersByWeekday groups orders by day of week, 0=Sunday through 6=Saturday
func (r *GormAnalyticsRepository) OrdersByWeekday(ctx context.Context, userID, uploadID uuid.UUID) ([]analyticsapp.WeekdayOrders, error) {
	dow := r.weekdayExpr()
	var series []analyticsapp.WeekdayOrders
	if err := r.scoped(ctx, userID, uploadID).
		Select(dow+" AS day_of_week, COUNT(id) AS order_count").
		Where("placed_at IS NOT NULL").
		Group(dow).
		Order("day_of_week ASC").
		Scan(&series).Error; err != nil {
		return nil, err
	}
	return series, nil
}

// TopCitiesByOrders ranks shipping cities by order count, excluding blank and
// "nan" cities
func (r *GormAnalyticsRepository) TopCitiesByOrders(ctx context.Context, userID, uploadID uuid.UUID, limit int) ([]analyticsapp.CityOrders, error) {
	var ranking []analyticsapp.CityOrders
	if err := r.scoped(ctx, userID, uploadID).
		Select("shipping_city AS city, COUNT(id) AS order_count").
		Where("shipping_city != '' AND shipping_city != 'nan'").
		Group("shipping_city").
		Order("order_count DESC").
		Limit(limit).
		Scan(&ranking).Error; err != nil {
		return nil, err
	}
	return ranking, nil
}

// TopCitiesByRevenue ranks shipping cities by summed order totals
func (r *GormAnalyticsRepository) TopCitiesByRevenue(ctx context.Context, userID, uploadID uuid.UUID, limit int) ([]analyticsapp.CityRevenue, error) {
	var ranking []analyticsapp.CityRevenue
	if err := r.scoped(ctx, userID, uploadID).
		Select("shipping_city AS city, SUM(total) AS revenue").
		Where("shipping_city != '' AND shipping_city != 'nan'").
		Where("total IS NOT NULL AND total != 0").
		Group("shipping_city").
		Order("revenue DESC").
		Limit(limit).
		Scan(&ranking).Error; err != nil {
		return nil, err
	}
	return ranking, nil
}

// TopProductsByQuantity ranks line-item names by units sold
func (r *GormAnalyticsRepository) TopProductsByQuantity(ctx context.Context, userID, uploadID uuid.UUID, limit int) ([]analyticsapp.ProductQuantity, error) {
	var ranking []analyticsapp.ProductQuantity
	if err := r.db.WithContext(ctx).
		Model(&models.LineItemModel{}).
		Select("line_items.name AS product_name, CAST(SUM(line_items.quantity) AS INTEGER) AS total_quantity").
		Joins("JOIN orders ON orders.id = line_items.order_id").
		Where("orders.user_id = ? AND orders.upload_id = ?", userID, uploadID).
		Group("line_items.name").
		Order("total_quantity DESC").
		Limit(limit).
		Scan(&ranking).Error; err != nil {
		return nil, err
	}
	return ranking, nil
}

// TopProductsByRevenue ranks line-item names by price times quantity,
// excluding zero-priced lines
func (r *GormAnalyticsRepository) TopProductsByRevenue(ctx context.Context, userID, uploadID uuid.UUID, limit int) ([]analyticsapp.ProductRevenue, error) {
	var ranking []analyticsapp.ProductRevenue
	if err := r.db.WithContext(ctx).
		Model(&models.LineItemModel{}).
		Select("line_items.name AS product_name, SUM(line_items.quantity * line_items.price) AS revenue").
		Joins("JOIN orders ON orders.id = line_items.order_id").
		Where("orders.user_id = ? AND orders.upload_id = ?", userID, uploadID).
		Where("line_items.price > 0").
		Group("line_items.name").
		Order("revenue DESC").
		Limit(limit).
		Scan(&ranking).Error; err != nil {
		return nil, err
	}
	return ranking, nil
}

// UniqueCustomerCount counts distinct customer emails for one upload
func (r *GormAnalyticsRepository) UniqueCustomerCount(ctx context.Context, userID, uploadID uuid.UUID) (int, error) {
	var count int64
	if err := r.scoped(ctx, userID, uploadID).
		Distinct("email").
		Count(&count).Error; err != nil {
		return 0, err
	}
	return int(count), nil
}

// RepeatCustomerCount counts customers with two or more orders in one upload
func (r *GormAnalyticsRepository) RepeatCustomerCount(ctx context.Context, userID, uploadID uuid.UUID) (int, error) {
	var count int64
	err := r.db.WithContext(ctx).Raw(`
		SELECT COUNT(*) FROM (
			SELECT email FROM orders
			WHERE user_id = ? AND upload_id = ?
			GROUP BY email
			HAVING COUNT(id) >= 2
		) repeat_customers`, userID, uploadID).
		Scan(&count).Error
	if err != nil {
		return 0, err
	}
	return int(count), nil
}

// TopDiscountCodes ranks discount codes by how many orders used them
func (r *GormAnalyticsRepository) TopDiscountCodes(ctx context.Context, userID, uploadID uuid.UUID, limit int) ([]analyticsapp.DiscountCodeUsage, error) {
	var ranking []analyticsapp.DiscountCodeUsage
	if err := r.scoped(ctx, userID, uploadID).
		Select("discount_code, COUNT(id) AS code_usage").
		Where("discount_code != '' AND discount_code != 'nan'").
		Group("discount_code").
		Order("code_usage DESC").
		Limit(limit).
		Scan(&ranking).Error; err != nil {
		return nil, err
	}
	return ranking, nil
}

// TopDiscountCodesBySavings ranks discount codes by total discount amount
func (r *GormAnalyticsRepository) TopDiscountCodesBySavings(ctx context.Context, userID, uploadID uuid.UUID, limit int) ([]analyticsapp.DiscountCodeSavings, error) {
	var ranking []analyticsapp.DiscountCodeSavings
	if err := r.scoped(ctx, userID, uploadID).
		Select("discount_code, SUM(discount_amount) AS total_discount").
		Where("discount_code != '' AND discount_code != 'nan'").
		Where("discount_amount IS NOT NULL AND discount_amount > 0").
		Group("discount_code").
		Order("total_discount DESC").
		Limit(limit).
		Scan(&ranking).Error; err != nil {
		return nil, err
	}
	return ranking, nil
}

// DailyRevenueHistory returns the densifiable daily revenue series consumed by
// the sales forecaster. Orders without a placement date or total are excluded,
// matching the forecaster's input contract.
func (r *GormAnalyticsRepository) DailyRevenueHistory(ctx context.Context, userID, uploadID uuid.UUID) ([]analyticsapp.DailyRevenue, error) {
	day := r.dayExpr()
	var history []analyticsapp.DailyRevenue
	if err := r.scoped(ctx, userID, uploadID).
		Select(day+" AS date, COUNT(id) AS order_count, SUM(total) AS revenue").
		Where("placed_at IS NOT NULL AND total IS NOT NULL").
		Group(day).
		Order("date ASC").
		Scan(&history).Error; err != nil {
		return nil, err
	}
	return history, nil
}

// Compile-time interface compliance check
var _ analyticsapp.Repository = (*GormAnalyticsRepository)(nil)
