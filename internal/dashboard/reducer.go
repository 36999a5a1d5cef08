// Package dashboard computes the inventory dashboard from raw product,
// supplier, category and movement rows. The reducers here are pure: they
// never mutate their inputs and never fail.
package dashboard

import (
	"slices"

	"github.com/google/uuid"
	"github.com/rogerio-castellano/inventory-master/internal/models"
	"github.com/shopspring/decimal"
)

// UncategorizedLabel names the bucket for products with no category or a
// category that no longer exists.
const UncategorizedLabel = "Uncategorized"

// highStockFactor marks stock above this multiple of min_stock as high.
const highStockFactor = 3

type Stats struct {
	TotalProducts       int             `json:"total_products"`
	LowStockProducts    int             `json:"low_stock_products"`
	TotalSuppliers      int             `json:"total_suppliers"`
	TotalCategories     int             `json:"total_categories"`
	TotalInventoryValue decimal.Decimal `json:"total_inventory_value"`
	AverageStockLevel   float64         `json:"average_stock_level"`
}

// ComputeStats aggregates the headline numbers. Values are not rounded.
func ComputeStats(products []models.Product, suppliers []models.Supplier, categories []models.Category) Stats {
	stats := Stats{
		TotalProducts:       len(products),
		TotalSuppliers:      len(suppliers),
		TotalCategories:     len(categories),
		TotalInventoryValue: decimal.Zero,
	}

	totalStock := 0
	for _, p := range products {
		if p.IsLowStock() {
			stats.LowStockProducts++
		}
		stats.TotalInventoryValue = stats.TotalInventoryValue.Add(p.InventoryValue())
		totalStock += p.StockQuantity
	}
	if len(products) > 0 {
		stats.AverageStockLevel = float64(totalStock) / float64(len(products))
	}
	return stats
}

// TopByValue returns the n products with the highest price*stock, highest
// first. Ties keep their input order.
func TopByValue(products []models.Product, n int) []models.Product {
	if n <= 0 {
		return []models.Product{}
	}
	sorted := slices.Clone(products)
	slices.SortStableFunc(sorted, func(a, b models.Product) int {
		return b.InventoryValue().Cmp(a.InventoryValue())
	})
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	if sorted == nil {
		return []models.Product{}
	}
	return sorted
}

type CategoryBucket struct {
	CategoryID *uuid.UUID `json:"category_id,omitempty"`
	Label      string     `json:"label"`
	Count      int        `json:"count"`
}

// BucketByCategory counts products per category label, largest bucket first.
// Buckets of equal size keep the order in which they were first seen.
func BucketByCategory(products []models.Product, categories []models.Category) []CategoryBucket {
	names := make(map[uuid.UUID]string, len(categories))
	for _, c := range categories {
		names[c.ID] = c.Name
	}

	buckets := []CategoryBucket{}
	index := map[uuid.UUID]int{}
	uncategorized := -1

	for _, p := range products {
		var name string
		known := false
		if p.CategoryID != nil {
			name, known = names[*p.CategoryID]
		}

		if !known {
			if uncategorized < 0 {
				uncategorized = len(buckets)
				buckets = append(buckets, CategoryBucket{Label: UncategorizedLabel})
			}
			buckets[uncategorized].Count++
			continue
		}

		i, seen := index[*p.CategoryID]
		if !seen {
			id := *p.CategoryID
			i = len(buckets)
			index[id] = i
			buckets = append(buckets, CategoryBucket{CategoryID: &id, Label: name})
		}
		buckets[i].Count++
	}

	slices.SortStableFunc(buckets, func(a, b CategoryBucket) int {
		return b.Count - a.Count
	})
	return buckets
}

type StockLevel string

const (
	StockLow    StockLevel = "low"
	StockNormal StockLevel = "normal"
	StockHigh   StockLevel = "high"
)

// ClassifyStock places a product in one of the three stock levels. With
// min_stock = 0 zero stock is low and any positive stock is high.
func ClassifyStock(p models.Product) StockLevel {
	switch {
	case p.StockQuantity <= p.MinStock:
		return StockLow
	case p.StockQuantity > highStockFactor*p.MinStock:
		return StockHigh
	default:
		return StockNormal
	}
}

type Histogram struct {
	Low    int `json:"low"`
	Normal int `json:"normal"`
	High   int `json:"high"`
}

func (h Histogram) Total() int {
	return h.Low + h.Normal + h.High
}

type HistogramBucket struct {
	Level StockLevel `json:"level"`
	Count int        `json:"count"`
}

// Buckets lists the histogram in low, normal, high order.
func (h Histogram) Buckets() []HistogramBucket {
	return []HistogramBucket{
		{Level: StockLow, Count: h.Low},
		{Level: StockNormal, Count: h.Normal},
		{Level: StockHigh, Count: h.High},
	}
}

func StockHistogram(products []models.Product) Histogram {
	var h Histogram
	for _, p := range products {
		switch ClassifyStock(p) {
		case StockLow:
			h.Low++
		case StockHigh:
			h.High++
		default:
			h.Normal++
		}
	}
	return h
}

type LowStockItem struct {
	ID              uuid.UUID `json:"id"`
	Name            string    `json:"name"`
	StockQuantity   int       `json:"stock_quantity"`
	MinStock        int       `json:"min_stock"`
	StockPercentage float64   `json:"stock_percentage"`
}

// LowStock returns low-stock products in input order, at most limit of them.
// A limit <= 0 returns all of them.
func LowStock(products []models.Product, limit int) []LowStockItem {
	items := []LowStockItem{}
	for _, p := range products {
		if !p.IsLowStock() {
			continue
		}
		if limit > 0 && len(items) == limit {
			break
		}
		item := LowStockItem{
			ID:            p.ID,
			Name:          p.Name,
			StockQuantity: p.StockQuantity,
			MinStock:      p.MinStock,
		}
		if p.MinStock > 0 {
			item.StockPercentage = float64(p.StockQuantity) / float64(p.MinStock) * 100
		}
		items = append(items, item)
	}
	return items
}
