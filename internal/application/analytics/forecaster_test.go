package analyticsapp

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse(dateLayout, s)
	require.NoError(t, err)
	return d
}

func TestForecaster(t *testing.T) {
	t.Run("Empty history yields empty projection", func(t *testing.T) {
		projection, err := NewForecaster(nil).Forecast(30)

		require.NoError(t, err)
		assert.Empty(t, projection.Forecast)
		assert.Equal(t, "naive_seasonal", projection.ModelType)
		assert.Equal(t, 0, projection.Metrics.TotalDaysAnalyzed)
	})

	t.Run("Horizon starts the day after the last history date", func(t *testing.T) {
		history := []DailyRevenue{
			{Date: "2021-01-18", OrderCount: 2, Revenue: decimal.NewFromInt(100)},
			{Date: "2021-01-19", OrderCount: 1, Revenue: decimal.NewFromInt(50)},
		}

		projection, err := NewForecaster(history).Forecast(7)

		require.NoError(t, err)
		require.Len(t, projection.Forecast, 7)
		assert.Equal(t, "2021-01-20", projection.Forecast[0].Date)
		assert.Equal(t, "2021-01-26", projection.Forecast[6].Date)
	})

	t.Run("Gaps in history count as zero revenue days", func(t *testing.T) {
		// Mondays only, two weeks apart: the 13 days in between are zeros
		history := []DailyRevenue{
			{Date: "2021-01-04", OrderCount: 1, Revenue: decimal.NewFromInt(70)},
			{Date: "2021-01-18", OrderCount: 1, Revenue: decimal.NewFromInt(70)},
		}

		projection, err := NewForecaster(history).Forecast(7)

		require.NoError(t, err)
		assert.Equal(t, 15, projection.Metrics.TotalDaysAnalyzed)
		// 140 revenue spread across 15 analyzed days
		assert.InDelta(t, 140.0/15.0, projection.Metrics.MeanRevenue, 1e-9)

		// Three Mondays fall in the densified range (Jan 4, 11, 18) and the
		// middle one is a zero fill, so the Monday mean is 140/3; every other
		// weekday has only zero-revenue samples
		for _, point := range projection.Forecast {
			if day(t, point.Date).Weekday() == time.Monday {
				assert.InDelta(t, 140.0/3.0, point.PredictedRevenue, 1e-9)
				assert.Equal(t, 1, point.PredictedOrders)
			} else {
				assert.Zero(t, point.PredictedRevenue, point.Date)
				assert.Zero(t, point.PredictedOrders, point.Date)
			}
		}
	})

	t.Run("Deterministic", func(t *testing.T) {
		history := []DailyRevenue{
			{Date: "2021-03-01", OrderCount: 3, Revenue: decimal.NewFromFloat(120.50)},
			{Date: "2021-03-02", OrderCount: 1, Revenue: decimal.NewFromFloat(19.99)},
			{Date: "2021-03-05", OrderCount: 2, Revenue: decimal.NewFromFloat(88.00)},
		}

		first, err := NewForecaster(history).Forecast(30)
		require.NoError(t, err)
		second, err := NewForecaster(history).Forecast(30)
		require.NoError(t, err)

		assert.Equal(t, first, second)
	})

	t.Run("Confidence is the placeholder band", func(t *testing.T) {
		history := []DailyRevenue{
			{Date: "2021-01-18", OrderCount: 1, Revenue: decimal.NewFromInt(10)},
		}

		projection, err := NewForecaster(history).Forecast(3)

		require.NoError(t, err)
		for _, point := range projection.Forecast {
			assert.Equal(t, 0.7, point.Confidence)
		}
	})

	t.Run("Unparseable history dates are dropped", func(t *testing.T) {
		history := []DailyRevenue{
			{Date: "not-a-date", OrderCount: 9, Revenue: decimal.NewFromInt(999)},
			{Date: "2021-01-18", OrderCount: 1, Revenue: decimal.NewFromInt(10)},
		}

		projection, err := NewForecaster(history).Forecast(1)

		require.NoError(t, err)
		assert.Equal(t, 1, projection.Metrics.TotalDaysAnalyzed)
		assert.InDelta(t, 10.0, projection.Metrics.MeanRevenue, 1e-9)
	})

	t.Run("Non positive horizon falls back to default", func(t *testing.T) {
		history := []DailyRevenue{
			{Date: "2021-01-18", OrderCount: 1, Revenue: decimal.NewFromInt(10)},
		}

		projection, err := NewForecaster(history).Forecast(0)

		require.NoError(t, err)
		assert.Len(t, projection.Forecast, defaultForecastDays)
	})

	t.Run("Horizon over one year is rejected", func(t *testing.T) {
		history := []DailyRevenue{
			{Date: "2021-01-18", OrderCount: 1, Revenue: decimal.NewFromInt(10)},
		}

		_, err := NewForecaster(history).Forecast(366)

		assert.Error(t, err)
	})

	t.Run("Predictions never go negative", func(t *testing.T) {
		history := []DailyRevenue{
			{Date: "2021-01-18", OrderCount: 0, Revenue: decimal.NewFromInt(-50)},
			{Date: "2021-01-19", OrderCount: 0, Revenue: decimal.NewFromInt(-10)},
		}

		projection, err := NewForecaster(history).Forecast(7)

		require.NoError(t, err)
		for _, point := range projection.Forecast {
			assert.GreaterOrEqual(t, point.PredictedRevenue, 0.0)
			assert.GreaterOrEqual(t, point.PredictedOrders, 0)
		}
	})
}
