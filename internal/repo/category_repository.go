package repo

import (
	"context"

	"github.com/google/uuid"
	"github.com/rogerio-castellano/inventory-master/internal/models"
)

// CategoryRepository defines the interface for category data operations.
type CategoryRepository interface {
	Create(ctx context.Context, category models.Category) (models.Category, error)
	GetByID(ctx context.Context, id uuid.UUID) (models.Category, error)
	Update(ctx context.Context, category models.Category) (models.Category, error)
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context) ([]models.Category, error)
}
