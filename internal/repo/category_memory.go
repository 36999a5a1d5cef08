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

type InMemoryCategoryRepository struct {
	mu         sync.RWMutex
	categories []models.Category
	publisher  realtime.Publisher
	products   *InMemoryProductRepository
}

func NewInMemoryCategoryRepository() *InMemoryCategoryRepository {
	return &InMemoryCategoryRepository{categories: []models.Category{}}
}

func (r *InMemoryCategoryRepository) SetPublisher(p realtime.Publisher) {
	r.publisher = p
}

// SetProductRepo registers the products whose category is cleared on delete.
func (r *InMemoryCategoryRepository) SetProductRepo(p *InMemoryProductRepository) {
	r.products = p
}

func (r *InMemoryCategoryRepository) notify(op realtime.Op) {
	if r.publisher != nil {
		r.publisher.Publish(realtime.Change{Table: realtime.TableCategories, Op: op})
	}
}

func (r *InMemoryCategoryRepository) Create(ctx context.Context, category models.Category) (models.Category, error) {
	r.mu.Lock()
	for _, c := range r.categories {
		if strings.EqualFold(c.Name, category.Name) {
			r.mu.Unlock()
			return models.Category{}, ErrDuplicatedValueUnique
		}
	}
	category.ID = uuid.New()
	category.CreatedAt = time.Now().UTC()
	r.categories = append(r.categories, category)
	r.mu.Unlock()

	r.notify(realtime.OpInsert)
	return category, nil
}

func (r *InMemoryCategoryRepository) GetByID(ctx context.Context, id uuid.UUID) (models.Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, c := range r.categories {
		if c.ID == id {
			return c, nil
		}
	}
	return models.Category{}, ErrCategoryNotFound
}

func (r *InMemoryCategoryRepository) Update(ctx context.Context, category models.Category) (models.Category, error) {
	r.mu.Lock()
	idx := -1
	for i, c := range r.categories {
		if c.ID == category.ID {
			idx = i
			continue
		}
		if strings.EqualFold(c.Name, category.Name) {
			r.mu.Unlock()
			return models.Category{}, ErrDuplicatedValueUnique
		}
	}
	if idx < 0 {
		r.mu.Unlock()
		return models.Category{}, ErrCategoryNotFound
	}
	category.CreatedAt = r.categories[idx].CreatedAt
	r.categories[idx] = category
	r.mu.Unlock()

	r.notify(realtime.OpUpdate)
	return category, nil
}

// Delete removes the category and clears it from the registered product
// repository, matching ON DELETE SET NULL in Postgres.
func (r *InMemoryCategoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	idx := slices.IndexFunc(r.categories, func(c models.Category) bool { return c.ID == id })
	if idx < 0 {
		r.mu.Unlock()
		return ErrCategoryNotFound
	}
	r.categories = slices.Delete(r.categories, idx, idx+1)
	r.mu.Unlock()

	if r.products != nil {
		r.products.DetachCategory(id)
	}
	r.notify(realtime.OpDelete)
	return nil
}

// List returns all categories ordered by name.
func (r *InMemoryCategoryRepository) List(ctx context.Context) ([]models.Category, error) {
	r.mu.RLock()
	out := slices.Clone(r.categories)
	r.mu.RUnlock()

	slices.SortStableFunc(out, func(a, b models.Category) int {
		return strings.Compare(a.Name, b.Name)
	})
	return out, nil
}

func (r *InMemoryCategoryRepository) Clear() {
	r.mu.Lock()
	r.categories = []models.Category{}
	r.mu.Unlock()
}
