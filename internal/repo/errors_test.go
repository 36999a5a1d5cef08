package repo

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestWriteError(t *testing.T) {
	wrapped := func(code, constraint string) error {
		return fmt.Errorf("exec: %w", &pgconn.PgError{Code: code, ConstraintName: constraint})
	}

	tests := []struct {
		name string
		err  error
		want error
	}{
		{"unique sku", wrapped(uniqueViolation, "products_sku_key"), ErrDuplicatedValueUnique},
		{"deleted category", wrapped(foreignKeyViolation, "products_category_id_fkey"), ErrCategoryNotFound},
		{"deleted supplier", wrapped(foreignKeyViolation, "products_supplier_id_fkey"), ErrSupplierNotFound},
		{"deleted product", wrapped(foreignKeyViolation, "movements_product_id_fkey"), ErrProductNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, writeError(tt.err, "write"), tt.want)
		})
	}

	t.Run("other errors are wrapped", func(t *testing.T) {
		cause := errors.New("connection reset")
		err := writeError(cause, "failed to update product")
		assert.ErrorIs(t, err, cause)
		assert.EqualError(t, err, "failed to update product: connection reset")
	})
}
