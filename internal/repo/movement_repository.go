package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rogerio-castellano/inventory-master/internal/models"
)

type MovementFilter struct {
	Since  *time.Time
	Until  *time.Time
	Offset *int
	Limit  *int
}

type MovementRepository interface {
	Log(ctx context.Context, productID uuid.UUID, delta int) error
	GetByProductID(ctx context.Context, productID uuid.UUID, mf MovementFilter) ([]models.Movement, int, error)
	ListSince(ctx context.Context, since time.Time) ([]models.Movement, error)
}
