package repo

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rogerio-castellano/inventory-master/internal/models"
	"github.com/rogerio-castellano/inventory-master/internal/realtime"
)

// InMemoryProductRepository is an in-memory implementation of ProductRepository.
// Mutations are announced on the optional publisher the way table triggers
// announce them in Postgres.
type InMemoryProductRepository struct {
	mu         sync.RWMutex
	products   []models.Product
	publisher  realtime.Publisher
	categories CategoryRepository
	suppliers  SupplierRepository
}

// NewInMemoryProductRepository creates a new instance of InMemoryProductRepository.
func NewInMemoryProductRepository() *InMemoryProductRepository {
	return &InMemoryProductRepository{
		products: []models.Product{},
	}
}

func (r *InMemoryProductRepository) SetPublisher(p realtime.Publisher) {
	r.publisher = p
}

// SetLabelSources lets listings carry category and supplier names.
func (r *InMemoryProductRepository) SetLabelSources(categories CategoryRepository, suppliers SupplierRepository) {
	r.categories = categories
	r.suppliers = suppliers
}

func (r *InMemoryProductRepository) notify(op realtime.Op) {
	if r.publisher != nil {
		r.publisher.Publish(realtime.Change{Table: realtime.TableProducts, Op: op})
	}
}

func (r *InMemoryProductRepository) withLabels(ctx context.Context, p models.Product) models.Product {
	p.CategoryName, p.SupplierName = "", ""
	if p.CategoryID != nil && r.categories != nil {
		if c, err := r.categories.GetByID(ctx, *p.CategoryID); err == nil {
			p.CategoryName = c.Name
		}
	}
	if p.SupplierID != nil && r.suppliers != nil {
		if s, err := r.suppliers.GetByID(ctx, *p.SupplierID); err == nil {
			p.SupplierName = s.Name
		}
	}
	return p
}

// Create adds a new product to the repository.
func (r *InMemoryProductRepository) Create(ctx context.Context, product models.Product) (models.Product, error) {
	r.mu.Lock()
	for _, p := range r.products {
		if strings.EqualFold(p.SKU, product.SKU) {
			r.mu.Unlock()
			return models.Product{}, ErrDuplicatedValueUnique
		}
	}
	product.ID = uuid.New()
	now := time.Now().UTC()
	product.CreatedAt, product.UpdatedAt = now, now
	r.products = append(r.products, product)
	r.mu.Unlock()

	r.notify(realtime.OpInsert)
	return r.withLabels(ctx, product), nil
}

// GetByID retrieves a product by its ID.
func (r *InMemoryProductRepository) GetByID(ctx context.Context, id uuid.UUID) (models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, p := range r.products {
		if p.ID == id {
			return r.withLabels(ctx, p), nil
		}
	}
	return models.Product{}, ErrProductNotFound
}

func (r *InMemoryProductRepository) GetBySKU(ctx context.Context, sku string) (models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, p := range r.products {
		if strings.EqualFold(p.SKU, sku) {
			return r.withLabels(ctx, p), nil
		}
	}
	return models.Product{}, ErrProductNotFound
}

// Update modifies an existing product in the repository.
func (r *InMemoryProductRepository) Update(ctx context.Context, product models.Product) (models.Product, int, error) {
	r.mu.Lock()
	idx := -1
	for i, p := range r.products {
		if p.ID == product.ID {
			idx = i
			continue
		}
		if strings.EqualFold(p.SKU, product.SKU) {
			r.mu.Unlock()
			return models.Product{}, 0, ErrDuplicatedValueUnique
		}
	}
	if idx < 0 {
		r.mu.Unlock()
		return models.Product{}, 0, ErrProductNotFound
	}
	delta := product.StockQuantity - r.products[idx].StockQuantity
	product.CreatedAt = r.products[idx].CreatedAt
	product.UpdatedAt = time.Now().UTC()
	r.products[idx] = product
	r.mu.Unlock()

	r.notify(realtime.OpUpdate)
	return r.withLabels(ctx, product), delta, nil
}

// Delete removes a product from the repository by its ID.
func (r *InMemoryProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	idx := slices.IndexFunc(r.products, func(p models.Product) bool { return p.ID == id })
	if idx < 0 {
		r.mu.Unlock()
		return ErrProductNotFound
	}
	r.products = slices.Delete(r.products, idx, idx+1)
	r.mu.Unlock()

	r.notify(realtime.OpDelete)
	return nil
}

// DetachCategory clears the category of every product that references id.
func (r *InMemoryProductRepository) DetachCategory(id uuid.UUID) {
	r.detach(func(p *models.Product) bool {
		if p.CategoryID != nil && *p.CategoryID == id {
			p.CategoryID = nil
			return true
		}
		return false
	})
}

// DetachSupplier clears the supplier of every product that references id.
func (r *InMemoryProductRepository) DetachSupplier(id uuid.UUID) {
	r.detach(func(p *models.Product) bool {
		if p.SupplierID != nil && *p.SupplierID == id {
			p.SupplierID = nil
			return true
		}
		return false
	})
}

func (r *InMemoryProductRepository) detach(clear func(p *models.Product) bool) {
	r.mu.Lock()
	changed := false
	for i := range r.products {
		if clear(&r.products[i]) {
			r.products[i].UpdatedAt = time.Now().UTC()
			changed = true
		}
	}
	r.mu.Unlock()

	if changed {
		r.notify(realtime.OpUpdate)
	}
}

func matchesFilter(p models.Product, pf ProductFilter) bool {
	if pf.Search != "" {
		term := strings.ToLower(pf.Search)
		if !strings.Contains(strings.ToLower(p.Name), term) && !strings.Contains(strings.ToLower(p.SKU), term) {
			return false
		}
	}
	if pf.CategoryID != nil && (p.CategoryID == nil || *p.CategoryID != *pf.CategoryID) {
		return false
	}
	if pf.SupplierID != nil && (p.SupplierID == nil || *p.SupplierID != *pf.SupplierID) {
		return false
	}
	if pf.Status != "" && p.Status != pf.Status {
		return false
	}
	switch pf.Stock {
	case StockFilterLow:
		return p.IsLowStock()
	case StockFilterNormal:
		return !p.IsLowStock()
	}
	return true
}

// Filter returns the products matching pf, ordered by name.
func (r *InMemoryProductRepository) Filter(ctx context.Context, pf ProductFilter) ([]models.Product, error) {
	r.mu.RLock()
	filtered := []models.Product{}
	for _, p := range r.products {
		if matchesFilter(p, pf) {
			filtered = append(filtered, p)
		}
	}
	r.mu.RUnlock()

	slices.SortStableFunc(filtered, func(a, b models.Product) int {
		return strings.Compare(a.Name, b.Name)
	})
	for i := range filtered {
		filtered[i] = r.withLabels(ctx, filtered[i])
	}
	return filtered, nil
}

// ListByStatus returns products with the given status in insertion order.
func (r *InMemoryProductRepository) ListByStatus(ctx context.Context, status models.ProductStatus) ([]models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []models.Product{}
	for _, p := range r.products {
		if p.Status == status {
			out = append(out, p)
		}
	}
	return out, nil
}

// AdjustQuantity implements ProductRepository.
func (r *InMemoryProductRepository) AdjustQuantity(ctx context.Context, id uuid.UUID, delta int) (models.Product, error) {
	r.mu.Lock()
	idx := slices.IndexFunc(r.products, func(p models.Product) bool { return p.ID == id })
	if idx < 0 {
		r.mu.Unlock()
		return models.Product{}, ErrProductNotFound
	}
	product := r.products[idx]
	if product.StockQuantity+delta < 0 {
		r.mu.Unlock()
		return models.Product{}, ErrInvalidQuantityChange
	}
	product.StockQuantity += delta
	product.UpdatedAt = time.Now().UTC()
	r.products[idx] = product
	r.mu.Unlock()

	r.notify(realtime.OpUpdate)
	return r.withLabels(ctx, product), nil
}

func (r *InMemoryProductRepository) Clear() {
	r.mu.Lock()
	r.products = []models.Product{}
	r.mu.Unlock()
}
