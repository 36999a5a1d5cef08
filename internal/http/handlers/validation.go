package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/rogerio-castellano/inventory-master/internal/models"
	repo "github.com/rogerio-castellano/inventory-master/internal/repo"
)

type ValidationError struct {
	Field       string `json:"field"`
	Description string `json:"description"`
}

// validateProduct checks the request and that referenced category and
// supplier exist. A non-nil error means the lookup itself failed.
func validateProduct(ctx context.Context, p ProductRequest) ([]ValidationError, error) {
	errs := []ValidationError{}
	if strings.TrimSpace(p.Name) == "" {
		errs = append(errs, ValidationError{Field: "name", Description: "Name is required"})
	}
	if strings.TrimSpace(p.SKU) == "" {
		errs = append(errs, ValidationError{Field: "sku", Description: "SKU is required"})
	}
	if p.Price.IsNegative() {
		errs = append(errs, ValidationError{Field: "price", Description: "Price cannot be negative"})
	}
	if p.Cost.IsNegative() {
		errs = append(errs, ValidationError{Field: "cost", Description: "Cost cannot be negative"})
	}
	if p.StockQuantity < 0 {
		errs = append(errs, ValidationError{Field: "stock_quantity", Description: "Stock quantity cannot be negative"})
	}
	if p.MinStock != nil && *p.MinStock < 0 {
		errs = append(errs, ValidationError{Field: "min_stock", Description: "Minimum stock cannot be negative"})
	}
	if p.Status != "" && !models.ProductStatus(p.Status).Valid() {
		errs = append(errs, ValidationError{Field: "status", Description: "Status must be active, inactive or discontinued"})
	}

	if p.CategoryID != nil {
		_, err := categoryRepo.GetByID(ctx, *p.CategoryID)
		switch {
		case errors.Is(err, repo.ErrCategoryNotFound):
			errs = append(errs, ValidationError{Field: "category_id", Description: "Category does not exist"})
		case err != nil:
			return nil, fmt.Errorf("look up category: %w", err)
		}
	}
	if p.SupplierID != nil {
		_, err := supplierRepo.GetByID(ctx, *p.SupplierID)
		switch {
		case errors.Is(err, repo.ErrSupplierNotFound):
			errs = append(errs, ValidationError{Field: "supplier_id", Description: "Supplier does not exist"})
		case err != nil:
			return nil, fmt.Errorf("look up supplier: %w", err)
		}
	}
	return errs, nil
}

func validateCategory(c CategoryRequest) []ValidationError {
	errs := []ValidationError{}
	if strings.TrimSpace(c.Name) == "" {
		errs = append(errs, ValidationError{Field: "name", Description: "Name is required"})
	}
	return errs
}

func validateSupplier(s SupplierRequest) []ValidationError {
	errs := []ValidationError{}
	if strings.TrimSpace(s.Name) == "" {
		errs = append(errs, ValidationError{Field: "name", Description: "Name is required"})
	}
	if s.Email != nil && *s.Email != "" {
		if _, err := mail.ParseAddress(*s.Email); err != nil {
			errs = append(errs, ValidationError{Field: "email", Description: "Email is not valid"})
		}
	}
	return errs
}

func validateCredentials(c CredentialsRequest) []ValidationError {
	errs := []ValidationError{}
	if _, err := mail.ParseAddress(c.Email); err != nil {
		errs = append(errs, ValidationError{Field: "email", Description: "Email is not valid"})
	}
	if len(c.Password) < 6 {
		errs = append(errs, ValidationError{Field: "password", Description: "Password must have at least 6 characters"})
	}
	return errs
}
