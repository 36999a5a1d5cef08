package repo

import (
	"context"
	"fmt"
	"time"

	"github.com/rogerio-castellano/inventory-master/internal/dashboard"
	"github.com/rogerio-castellano/inventory-master/internal/models"
)

// DashboardFetcher reads everything the dashboard reducers need in one pass:
// active products, active suppliers, all categories and recent movements.
type DashboardFetcher struct {
	products   ProductRepository
	suppliers  SupplierRepository
	categories CategoryRepository
	movements  MovementRepository
}

func NewDashboardFetcher(products ProductRepository, suppliers SupplierRepository, categories CategoryRepository, movements MovementRepository) *DashboardFetcher {
	return &DashboardFetcher{
		products:   products,
		suppliers:  suppliers,
		categories: categories,
		movements:  movements,
	}
}

// Fetch implements dashboard.Fetcher.
func (f *DashboardFetcher) Fetch(ctx context.Context, since time.Time) (dashboard.Dataset, error) {
	var ds dashboard.Dataset
	var err error

	if ds.Products, err = f.products.ListByStatus(ctx, models.StatusActive); err != nil {
		return dashboard.Dataset{}, fmt.Errorf("fetch products: %w", err)
	}
	if ds.Suppliers, err = f.suppliers.List(ctx, SupplierFilter{ActiveOnly: true}); err != nil {
		return dashboard.Dataset{}, fmt.Errorf("fetch suppliers: %w", err)
	}
	if ds.Categories, err = f.categories.List(ctx); err != nil {
		return dashboard.Dataset{}, fmt.Errorf("fetch categories: %w", err)
	}
	if f.movements != nil {
		if ds.Movements, err = f.movements.ListSince(ctx, since); err != nil {
			return dashboard.Dataset{}, fmt.Errorf("fetch movements: %w", err)
		}
	}
	return ds, nil
}
