package repo

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rogerio-castellano/inventory-master/internal/models"
)

type InMemoryMovementRepository struct {
	mu        sync.RWMutex
	movements []models.Movement
}

func NewInMemoryMovementRepository() *InMemoryMovementRepository {
	return &InMemoryMovementRepository{
		movements: []models.Movement{},
	}
}

// AddMovement records a movement with an explicit timestamp.
func (r *InMemoryMovementRepository) AddMovement(productID uuid.UUID, delta int, createdAt time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.movements = append(r.movements, models.Movement{
		ID:        int64(len(r.movements) + 1),
		ProductID: productID,
		Delta:     delta,
		CreatedAt: createdAt.UTC(),
	})
}

// Log inserts a new inventory movement
func (r *InMemoryMovementRepository) Log(ctx context.Context, productID uuid.UUID, delta int) error {
	r.AddMovement(productID, delta, time.Now())
	return nil
}

// GetByProductID returns movements for a product, newest first, optionally
// filtered by date range and paginated.
func (r *InMemoryMovementRepository) GetByProductID(ctx context.Context, productID uuid.UUID, mf MovementFilter) ([]models.Movement, int, error) {
	r.mu.RLock()
	filtered := []models.Movement{}
	for _, m := range r.movements {
		if m.ProductID != productID {
			continue
		}
		if (mf.Since != nil && m.CreatedAt.Before(*mf.Since)) || (mf.Until != nil && m.CreatedAt.After(*mf.Until)) {
			continue
		}
		filtered = append(filtered, m)
	}
	r.mu.RUnlock()

	slices.SortFunc(filtered, func(a, b models.Movement) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(b.ID, a.ID)
	})

	start := 0
	if mf.Offset != nil {
		start = clamp(*mf.Offset, 0, len(filtered))
	}
	end := len(filtered)
	if mf.Limit != nil && *mf.Limit > 0 {
		end = clamp(start+*mf.Limit, start, len(filtered))
	}

	return filtered[start:end], len(filtered), nil
}

// ListSince returns every movement at or after since, oldest first.
func (r *InMemoryMovementRepository) ListSince(ctx context.Context, since time.Time) ([]models.Movement, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []models.Movement{}
	for _, m := range r.movements {
		if !m.CreatedAt.Before(since) {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *InMemoryMovementRepository) Clear() {
	r.mu.Lock()
	r.movements = []models.Movement{}
	r.mu.Unlock()
}
