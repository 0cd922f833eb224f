package analyticsapp

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Summary holds the headline order metrics for one upload
type Summary struct {
	TotalOrders       int             `json:"total_orders"`
	TotalRevenue      decimal.Decimal `json:"total_revenue"`
	AverageOrderValue decimal.Decimal `json:"average_order_value"`
}

// DailyOrders is one point of the orders-per-day series
type DailyOrders struct {
	Date       string `json:"date"`
	OrderCount int    `json:"orderCount"`
}

// HourlyOrders is one point of the orders-per-hour series
type HourlyOrders struct {
	HourBlock  string `json:"hour_block"`
	OrderCount int    `json:"count_orders"`
}

// WeekdayOrders counts orders for one day of week, 0=Sunday through 6=Saturday
type WeekdayOrders struct {
	DayOfWeek  int `json:"dow"`
	OrderCount int `json:"count_orders"`
}

// CityOrders ranks a shipping city by order count
type CityOrders struct {
	City       string `json:"city"`
	OrderCount int    `json:"order_count"`
}

// CityRevenue ranks a shipping city by summed order totals
type CityRevenue struct {
	City    string          `json:"city"`
	Revenue decimal.Decimal `json:"revenue"`
}

// ProductQuantity ranks a line-item name by units sold
type ProductQuantity struct {
	ProductName   string `json:"product_name"`
	TotalQuantity int    `json:"total_quantity"`
}

// ProductRevenue ranks a line-item name by price * quantity revenue
type ProductRevenue struct {
	ProductName string          `json:"product_name"`
	Revenue     decimal.Decimal `json:"product_revenue"`
}

// DiscountCodeUsage ranks a discount code by how many orders used it
type DiscountCodeUsage struct {
	DiscountCode string `json:"discount_code"`
	CodeUsage    int    `json:"code_usage"`
}

// DiscountCodeSavings ranks a discount code by total discount amount
type DiscountCodeSavings struct {
	DiscountCode  string          `json:"discount_code"`
	TotalDiscount decimal.Decimal `json:"total_discount"`
}

// DailyRevenue is one densifiable point of revenue history, consumed by the
// sales forecaster
type DailyRevenue struct {
	Date       string          `json:"date"`
	OrderCount int             `json:"order_count"`
	Revenue    decimal.Decimal `json:"revenue"`
}

// Repository is the read-side query surface over ingested orders. All queries
// are scoped to one (user, upload) pair; city and discount-code rankings
// exclude blank and "nan" values, which the sanitizer lets through as literal
// text.
type Repository interface {
	CountOrders(ctx context.Context, userID, uploadID uuid.UUID) (int, error)
	SumRevenue(ctx context.Context, userID, uploadID uuid.UUID) (decimal.Decimal, error)
	OrdersPerDay(ctx context.Context, userID, uploadID uuid.UUID) ([]DailyOrders, error)
	OrdersPerHour(ctx context.Context, userID, uploadID uuid.UUID) ([]HourlyOrders, error)
	OrdersByWeekday(ctx context.Context, userID, uploadID uuid.UUID) ([]WeekdayOrders, error)
	TopCitiesByOrders(ctx context.Context, userID, uploadID uuid.UUID, limit int) ([]CityOrders, error)
	TopCitiesByRevenue(ctx context.Context, userID, uploadID uuid.UUID, limit int) ([]CityRevenue, error)
	TopProductsByQuantity(ctx context.Context, userID, uploadID uuid.UUID, limit int) ([]ProductQuantity, error)
	TopProductsByRevenue(ctx context.Context, userID, uploadID uuid.UUID, limit int) ([]ProductRevenue, error)
	UniqueCustomerCount(ctx context.Context, userID, uploadID uuid.UUID) (int, error)
	RepeatCustomerCount(ctx context.Context, userID, uploadID uuid.UUID) (int, error)
	TopDiscountCodes(ctx context.Context, userID, uploadID uuid.UUID, limit int) ([]DiscountCodeUsage, error)
	TopDiscountCodesBySavings(ctx context.Context, userID, uploadID uuid.UUID, limit int) ([]DiscountCodeSavings, error)
	DailyRevenueHistory(ctx context.Context, userID, uploadID uuid.UUID) ([]DailyRevenue, error)
}
