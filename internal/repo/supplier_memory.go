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

type InMemorySupplierRepository struct {
	mu        sync.RWMutex
	suppliers []models.Supplier
	publisher realtime.Publisher
	products  *InMemoryProductRepository
}

func NewInMemorySupplierRepository() *InMemorySupplierRepository {
	return &InMemorySupplierRepository{suppliers: []models.Supplier{}}
}

func (r *InMemorySupplierRepository) SetPublisher(p realtime.Publisher) {
	r.publisher = p
}

// SetProductRepo registers the products whose supplier is cleared on delete.
func (r *InMemorySupplierRepository) SetProductRepo(p *InMemoryProductRepository) {
	r.products = p
}

func (r *InMemorySupplierRepository) notify(op realtime.Op) {
	if r.publisher != nil {
		r.publisher.Publish(realtime.Change{Table: realtime.TableSuppliers, Op: op})
	}
}

func (r *InMemorySupplierRepository) Create(ctx context.Context, supplier models.Supplier) (models.Supplier, error) {
	r.mu.Lock()
	supplier.ID = uuid.New()
	supplier.CreatedAt = time.Now().UTC()
	r.suppliers = append(r.suppliers, supplier)
	r.mu.Unlock()

	r.notify(realtime.OpInsert)
	return supplier, nil
}

func (r *InMemorySupplierRepository) GetByID(ctx context.Context, id uuid.UUID) (models.Supplier, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, s := range r.suppliers {
		if s.ID == id {
			return s, nil
		}
	}
	return models.Supplier{}, ErrSupplierNotFound
}

func (r *InMemorySupplierRepository) Update(ctx context.Context, supplier models.Supplier) (models.Supplier, error) {
	r.mu.Lock()
	idx := slices.IndexFunc(r.suppliers, func(s models.Supplier) bool { return s.ID == supplier.ID })
	if idx < 0 {
		r.mu.Unlock()
		return models.Supplier{}, ErrSupplierNotFound
	}
	supplier.CreatedAt = r.suppliers[idx].CreatedAt
	r.suppliers[idx] = supplier
	r.mu.Unlock()

	r.notify(realtime.OpUpdate)
	return supplier, nil
}

// Delete removes the supplier and clears it from the registered product
// repository, matching ON DELETE SET NULL in Postgres.
func (r *InMemorySupplierRepository) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	idx := slices.IndexFunc(r.suppliers, func(s models.Supplier) bool { return s.ID == id })
	if idx < 0 {
		r.mu.Unlock()
		return ErrSupplierNotFound
	}
	r.suppliers = slices.Delete(r.suppliers, idx, idx+1)
	r.mu.Unlock()

	if r.products != nil {
		r.products.DetachSupplier(id)
	}
	r.notify(realtime.OpDelete)
	return nil
}

func supplierMatches(s models.Supplier, sf SupplierFilter) bool {
	if sf.ActiveOnly && !s.IsActive {
		return false
	}
	if sf.Search == "" {
		return true
	}
	term := strings.ToLower(sf.Search)
	if strings.Contains(strings.ToLower(s.Name), term) {
		return true
	}
	return s.Email != nil && strings.Contains(strings.ToLower(*s.Email), term)
}

// List returns suppliers matching sf ordered by name.
func (r *InMemorySupplierRepository) List(ctx context.Context, sf SupplierFilter) ([]models.Supplier, error) {
	r.mu.RLock()
	out := []models.Supplier{}
	for _, s := range r.suppliers {
		if supplierMatches(s, sf) {
			out = append(out, s)
		}
	}
	r.mu.RUnlock()

	slices.SortStableFunc(out, func(a, b models.Supplier) int {
		return strings.Compare(a.Name, b.Name)
	})
	return out, nil
}

func (r *InMemorySupplierRepository) Clear() {
	r.mu.Lock()
	r.suppliers = []models.Supplier{}
	r.mu.Unlock()
}
