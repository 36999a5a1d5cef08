package handlers

import (
	"github.com/google/uuid"
	"github.com/rogerio-castellano/inventory-master/internal/models"
	"github.com/shopspring/decimal"
)

type ProductRequest struct {
	Name          string          `json:"name"`
	SKU           string          `json:"sku"`
	Description   *string         `json:"description,omitempty"`
	Price         decimal.Decimal `json:"price" swaggertype:"number"`
	Cost          decimal.Decimal `json:"cost" swaggertype:"number"`
	StockQuantity int             `json:"stock_quantity"`
	MinStock      *int            `json:"min_stock,omitempty"`
	Status        string          `json:"status,omitempty"`
	CategoryID    *uuid.UUID      `json:"category_id,omitempty" swaggertype:"string"`
	SupplierID    *uuid.UUID      `json:"supplier_id,omitempty" swaggertype:"string"`
}

type ProductResponse struct {
	models.Product
	LowStock bool `json:"low_stock"`
}

type Meta struct {
	TotalCount int `json:"total_count"`
}

type ProductsSearchResult struct {
	Data []ProductResponse `json:"data"`
	Meta Meta              `json:"meta,omitempty"`
}

type CategoryRequest struct {
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
}

type SupplierRequest struct {
	Name        string  `json:"name"`
	ContactName *string `json:"contact_name,omitempty"`
	Email       *string `json:"email,omitempty"`
	Phone       *string `json:"phone,omitempty"`
	Address     *string `json:"address,omitempty"`
	City        *string `json:"city,omitempty"`
	Country     *string `json:"country,omitempty"`
	Notes       *string `json:"notes,omitempty"`
	IsActive    *bool   `json:"is_active,omitempty"`
}

type QuantityAdjustmentRequest struct {
	Delta int `json:"delta"` // can be positive or negative
}

type MovementResponse struct {
	ID        int64     `json:"id"`
	ProductID uuid.UUID `json:"product_id"`
	Delta     int       `json:"delta"`
	CreatedAt string    `json:"created_at"`
}

type MovementsSearchResult struct {
	Data []MovementResponse `json:"data"`
	Meta Meta               `json:"meta,omitempty"`
}

type CredentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name,omitempty"`
}

type LoginResult struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refresh_token"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type RegisterResult struct {
	Message string `json:"message"`
	Token   string `json:"token"`
}

type RoleUpdateRequest struct {
	Role string `json:"role"`
}

type ImportProductsResult struct {
	ImportedProductsCount int               `json:"imported"`
	UpdatedProductsCount  int               `json:"updated"`
	Errors                []ValidationError `json:"errors"`
}
