package dashboard

import (
	"time"

	"github.com/google/uuid"
	"github.com/rogerio-castellano/inventory-master/internal/models"
	"github.com/shopspring/decimal"
)

// Dataset is the raw input of one dashboard computation.
type Dataset struct {
	Products   []models.Product
	Suppliers  []models.Supplier
	Categories []models.Category
	Movements  []models.Movement
}

type Options struct {
	TopN          int
	LowStockLimit int
	TrendDays     int
}

func DefaultOptions() Options {
	return Options{TopN: 5, LowStockLimit: 5, TrendDays: 7}
}

type TopProduct struct {
	ID             uuid.UUID       `json:"id"`
	Name           string          `json:"name"`
	StockQuantity  int             `json:"stock_quantity"`
	Price          decimal.Decimal `json:"price"`
	InventoryValue decimal.Decimal `json:"inventory_value"`
}

// Snapshot is the full dashboard state. It is built from scratch on every
// refresh and replaced as a whole.
type Snapshot struct {
	Sequence      uint64            `json:"sequence"`
	GeneratedAt   time.Time         `json:"generated_at"`
	Stats         Stats             `json:"stats"`
	LowStockItems []LowStockItem    `json:"low_stock_items"`
	TopProducts   []TopProduct      `json:"top_products"`
	Categories    []CategoryBucket  `json:"categories"`
	StockLevels   []HistogramBucket `json:"stock_levels"`
	Trend         []TrendPoint      `json:"trend"`
}

// Build runs every reducer over ds.
func Build(ds Dataset, opts Options, now time.Time) Snapshot {
	top := TopByValue(ds.Products, opts.TopN)
	topProducts := make([]TopProduct, len(top))
	for i, p := range top {
		topProducts[i] = TopProduct{
			ID:             p.ID,
			Name:           p.Name,
			StockQuantity:  p.StockQuantity,
			Price:          p.Price,
			InventoryValue: p.InventoryValue(),
		}
	}

	return Snapshot{
		GeneratedAt:   now.UTC(),
		Stats:         ComputeStats(ds.Products, ds.Suppliers, ds.Categories),
		LowStockItems: LowStock(ds.Products, opts.LowStockLimit),
		TopProducts:   topProducts,
		Categories:    BucketByCategory(ds.Products, ds.Categories),
		StockLevels:   StockHistogram(ds.Products).Buckets(),
		Trend:         MovementTrend(ds.Movements, ds.Products, opts.TrendDays, now),
	}
}
