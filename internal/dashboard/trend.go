package dashboard

import (
	"time"

	"github.com/google/uuid"
	"github.com/rogerio-castellano/inventory-master/internal/models"
	"github.com/shopspring/decimal"
)

const trendDateLayout = "2006-01-02"

// TrendPoint is one UTC day of stock movement.
type TrendPoint struct {
	Date       string          `json:"date"`
	UnitsIn    int             `json:"units_in"`
	UnitsOut   int             `json:"units_out"`
	ValueDelta decimal.Decimal `json:"value_delta"`
}

// TrendStart is the first instant covered by a trend of the given length
// ending on now's day.
func TrendStart(now time.Time, days int) time.Time {
	today := now.UTC().Truncate(24 * time.Hour)
	if days <= 1 {
		return today
	}
	return today.AddDate(0, 0, -(days - 1))
}

// MovementTrend buckets recorded movements into days, oldest first. Every day
// in the window is present, with zeros when nothing moved. Only movements of
// products in products count, and ValueDelta is priced at their current price.
func MovementTrend(movements []models.Movement, products []models.Product, days int, now time.Time) []TrendPoint {
	if days <= 0 {
		return []TrendPoint{}
	}

	start := TrendStart(now, days)
	points := make([]TrendPoint, days)
	for i := range points {
		points[i] = TrendPoint{
			Date:       start.AddDate(0, 0, i).Format(trendDateLayout),
			ValueDelta: decimal.Zero,
		}
	}

	prices := make(map[uuid.UUID]decimal.Decimal, len(products))
	for _, p := range products {
		prices[p.ID] = p.Price
	}

	for _, m := range movements {
		at := m.CreatedAt.UTC()
		if at.Before(start) {
			continue
		}
		i := int(at.Sub(start) / (24 * time.Hour))
		if i >= days {
			continue
		}
		price, ok := prices[m.ProductID]
		if !ok {
			continue
		}
		if m.Delta >= 0 {
			points[i].UnitsIn += m.Delta
		} else {
			points[i].UnitsOut += -m.Delta
		}
		points[i].ValueDelta = points[i].ValueDelta.Add(price.Mul(decimal.NewFromInt(int64(m.Delta))))
	}
	return points
}
