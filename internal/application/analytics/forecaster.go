package analyticsapp

import (
	"math"
	"time"

	"github.com/ordersight/backend/internal/domain/shared"
)

const (
	// defaultForecastDays is the projection horizon when the caller does not
	// ask for one
	defaultForecastDays = 30
	maxForecastDays     = 365

	// forecastConfidence is a flat placeholder band until a real model
	// replaces the seasonal average
	forecastConfidence = 0.7

	dateLayout = "2006-01-02"
)

// ForecastPoint is one projected day
type ForecastPoint struct {
	Date             string  `json:"date"`
	PredictedRevenue float64 `json:"predicted_revenue"`
	PredictedOrders  int     `json:"predicted_orders"`
	Confidence       float64 `json:"confidence"`
}

// ForecastMetrics summarizes the history the projection was built from
type ForecastMetrics struct {
	MeanRevenue       float64 `json:"mean_revenue"`
	MeanOrders        float64 `json:"mean_orders"`
	TotalDaysAnalyzed int     `json:"total_days_analyzed"`
}

// Projection is a sales forecast over an N-day horizon
type Projection struct {
	Forecast  []ForecastPoint `json:"forecast"`
	ModelType string          `json:"model_type"`
	Metrics   ForecastMetrics `json:"metrics"`
}

// dailyPoint is one densified history day
type dailyPoint struct {
	date    time.Time
	revenue float64
	orders  int
}

// Forecaster projects future sales from daily revenue history using per-day-
// of-week averages. Days without orders count as zero-revenue days, so sparse
// histories are densified over their full date range before averaging. The
// projection is deterministic: the same history always yields the same
// forecast.
type Forecaster struct {
	history []dailyPoint
}

// NewForecaster builds a forecaster from repository revenue history. Rows with
// unparseable dates are dropped; the rest are densified into a continuous
// daily series.
func NewForecaster(history []DailyRevenue) *Forecaster {
	points := make([]dailyPoint, 0, len(history))
	for _, row := range history {
		date, err := time.Parse(dateLayout, row.Date)
		if err != nil {
			continue
		}
		points = append(points, dailyPoint{
			date:    date,
			revenue: row.Revenue.InexactFloat64(),
			orders:  row.OrderCount,
		})
	}
	return &Forecaster{history: densify(points)}
}

// Forecast projects the next `days` days after the last history date
func (f *Forecaster) Forecast(days int) (*Projection, error) {
	if days <= 0 {
		days = defaultForecastDays
	}
	if days > maxForecastDays {
		return nil, shared.NewDomainError("INVALID_HORIZON", "Forecast horizon cannot exceed one year")
	}

	if len(f.history) == 0 {
		return &Projection{
			Forecast:  []ForecastPoint{},
			ModelType: "naive_seasonal",
		}, nil
	}

	meanRevenue, meanOrders := overallMeans(f.history)
	dowRevenue, dowOrders := weekdayMeans(f.history)

	lastDate := f.history[len(f.history)-1].date
	forecast := make([]ForecastPoint, 0, days)
	for i := 1; i <= days; i++ {
		date := lastDate.AddDate(0, 0, i)
		dow := int(date.Weekday())

		revenue := meanRevenue
		orders := meanOrders
		if avg, ok := dowRevenue[dow]; ok {
			revenue = avg
			orders = dowOrders[dow]
		}

		forecast = append(forecast, ForecastPoint{
			Date:             date.Format(dateLayout),
			PredictedRevenue: math.Max(0, revenue),
			PredictedOrders:  int(math.Max(0, math.Round(orders))),
			Confidence:       forecastConfidence,
		})
	}

	return &Projection{
		Forecast:  forecast,
		ModelType: "naive_seasonal",
		Metrics: ForecastMetrics{
			MeanRevenue:       meanRevenue,
			MeanOrders:        meanOrders,
			TotalDaysAnalyzed: len(f.history),
		},
	}, nil
}

// densify sorts the history and fills the gaps between the first and last
// dates with zero-revenue days
func densify(points []dailyPoint) []dailyPoint {
	if len(points) == 0 {
		return nil
	}

	byDate := make(map[string]dailyPoint, len(points))
	first, last := points[0].date, points[0].date
	for _, p := range points {
		day := p.date.Format(dateLayout)
		if existing, ok := byDate[day]; ok {
			existing.revenue += p.revenue
			existing.orders += p.orders
			byDate[day] = existing
			continue
		}
		byDate[day] = p
		if p.date.Before(first) {
			first = p.date
		}
		if p.date.After(last) {
			last = p.date
		}
	}

	var dense []dailyPoint
	for d := first; !d.After(last); d = d.AddDate(0, 0, 1) {
		if p, ok := byDate[d.Format(dateLayout)]; ok {
			dense = append(dense, p)
		} else {
			dense = append(dense, dailyPoint{date: d})
		}
	}
	return dense
}

func overallMeans(history []dailyPoint) (revenue, orders float64) {
	for _, p := range history {
		revenue += p.revenue
		orders += float64(p.orders)
	}
	n := float64(len(history))
	return revenue / n, orders / n
}

// weekdayMeans averages revenue and order counts per day of week,
// 0=Sunday through 6=Saturday
func weekdayMeans(history []dailyPoint) (revenue, orders map[int]float64) {
	revenueSum := make(map[int]float64)
	orderSum := make(map[int]float64)
	count := make(map[int]float64)
	for _, p := range history {
		dow := int(p.date.Weekday())
		revenueSum[dow] += p.revenue
		orderSum[dow] += float64(p.orders)
		count[dow]++
	}

	revenue = make(map[int]float64, len(count))
	orders = make(map[int]float64, len(count))
	for dow, n := range count {
		revenue[dow] = revenueSum[dow] / n
		orders[dow] = orderSum[dow] / n
	}
	return revenue, orders
}
