package repo

import (
	"context"

	"github.com/google/uuid"
	"github.com/rogerio-castellano/inventory-master/internal/models"
)

type SupplierFilter struct {
	Search     string
	ActiveOnly bool
}

// SupplierRepository defines the interface for supplier data operations.
type SupplierRepository interface {
	Create(ctx context.Context, supplier models.Supplier) (models.Supplier, error)
	GetByID(ctx context.Context, id uuid.UUID) (models.Supplier, error)
	Update(ctx context.Context, supplier models.Supplier) (models.Supplier, error)
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, sf SupplierFilter) ([]models.Supplier, error)
}
