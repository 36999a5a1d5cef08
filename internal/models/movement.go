package models

import (
	"time"

	"github.com/google/uuid"
)

// Movement is a single stock adjustment of a product.
type Movement struct {
	ID        int64     `json:"id"`
	ProductID uuid.UUID `json:"product_id"`
	Delta     int       `json:"delta"`
	CreatedAt time.Time `json:"created_at"`
}
