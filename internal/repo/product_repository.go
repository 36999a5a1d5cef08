package repo

import (
	"context"

	"github.com/google/uuid"
	"github.com/rogerio-castellano/inventory-master/internal/models"
)

const (
	StockFilterAll    = "all"
	StockFilterLow    = "low"
	StockFilterNormal = "normal"
)

// ProductFilter narrows a product listing. Zero values mean "no filter".
type ProductFilter struct {
	Search     string
	CategoryID *uuid.UUID
	SupplierID *uuid.UUID
	Stock      string
	Status     models.ProductStatus
}

// ProductRepository defines the interface for product data operations.
type ProductRepository interface {
	Create(ctx context.Context, product models.Product) (models.Product, error)
	GetByID(ctx context.Context, id uuid.UUID) (models.Product, error)
	GetBySKU(ctx context.Context, sku string) (models.Product, error)
	// Update overwrites a product and reports the stock change it applied,
	// measured against the stored quantity at the moment of the write.
	Update(ctx context.Context, product models.Product) (models.Product, int, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Filter(ctx context.Context, pf ProductFilter) ([]models.Product, error)
	ListByStatus(ctx context.Context, status models.ProductStatus) ([]models.Product, error)
	AdjustQuantity(ctx context.Context, id uuid.UUID, delta int) (models.Product, error)
}
