package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rogerio-castellano/inventory-master/internal/models"
)

type PostgresProductRepository struct {
	db *sql.DB
}

func NewPostgresProductRepository(db *sql.DB) *PostgresProductRepository {
	return &PostgresProductRepository{db: db}
}

const productSelect = `
	SELECT p.id, p.name, p.sku, p.description, p.price, p.cost, p.stock_quantity, p.min_stock,
	       p.status, p.category_id, p.supplier_id, COALESCE(c.name, ''), COALESCE(s.name, ''),
	       p.created_at, p.updated_at
	FROM products p
	LEFT JOIN categories c ON c.id = p.category_id
	LEFT JOIN suppliers s ON s.id = p.supplier_id`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (models.Product, error) {
	var (
		p           models.Product
		description sql.NullString
		categoryID  uuid.NullUUID
		supplierID  uuid.NullUUID
	)
	err := row.Scan(&p.ID, &p.Name, &p.SKU, &description, &p.Price, &p.Cost, &p.StockQuantity, &p.MinStock,
		&p.Status, &categoryID, &supplierID, &p.CategoryName, &p.SupplierName, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return models.Product{}, err
	}
	if description.Valid {
		p.Description = &description.String
	}
	if categoryID.Valid {
		p.CategoryID = &categoryID.UUID
	}
	if supplierID.Valid {
		p.SupplierID = &supplierID.UUID
	}
	return p, nil
}

func (r *PostgresProductRepository) query(ctx context.Context, query string, args ...any) ([]models.Product, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	products := []models.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func (r *PostgresProductRepository) Create(ctx context.Context, p models.Product) (models.Product, error) {
	query := `
		INSERT INTO products (name, sku, description, price, cost, stock_quantity, min_stock, status, category_id, supplier_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id`
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var id uuid.UUID
	err := r.db.QueryRowContext(ctx, query, p.Name, p.SKU, p.Description, p.Price, p.Cost, p.StockQuantity,
		p.MinStock, p.Status, p.CategoryID, p.SupplierID).Scan(&id)
	if err != nil {
		return models.Product{}, writeError(err, "failed to insert product")
	}
	return r.GetByID(ctx, id)
}

func (r *PostgresProductRepository) GetByID(ctx context.Context, id uuid.UUID) (models.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	p, err := scanProduct(r.db.QueryRowContext(ctx, productSelect+` WHERE p.id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Product{}, ErrProductNotFound
	}
	return p, err
}

func (r *PostgresProductRepository) GetBySKU(ctx context.Context, sku string) (models.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	p, err := scanProduct(r.db.QueryRowContext(ctx, productSelect+` WHERE lower(p.sku) = lower($1)`, sku))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Product{}, ErrProductNotFound
	}
	return p, err
}

func (r *PostgresProductRepository) Update(ctx context.Context, p models.Product) (models.Product, int, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return models.Product{}, 0, fmt.Errorf("failed to begin product update: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	// The row lock keeps concurrent adjustments out until the new quantity is written.
	var previous int
	err = tx.QueryRowContext(ctx, `SELECT stock_quantity FROM products WHERE id = $1 FOR UPDATE`, p.ID).Scan(&previous)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Product{}, 0, ErrProductNotFound
	}
	if err != nil {
		return models.Product{}, 0, fmt.Errorf("failed to lock product: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE products
		SET name = $1, sku = $2, description = $3, price = $4, cost = $5, stock_quantity = $6,
		    min_stock = $7, status = $8, category_id = $9, supplier_id = $10, updated_at = $11
		WHERE id = $12`,
		p.Name, p.SKU, p.Description, p.Price, p.Cost, p.StockQuantity,
		p.MinStock, p.Status, p.CategoryID, p.SupplierID, time.Now().UTC(), p.ID)
	if err != nil {
		return models.Product{}, 0, writeError(err, "failed to update product")
	}
	if err := tx.Commit(); err != nil {
		return models.Product{}, 0, fmt.Errorf("failed to commit product update: %w", err)
	}

	updated, err := r.GetByID(ctx, p.ID)
	if err != nil {
		return models.Product{}, 0, err
	}
	return updated, p.StockQuantity - previous, nil
}

func (r *PostgresProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	rowsAffected, _ := res.RowsAffected()
	if rowsAffected == 0 {
		return ErrProductNotFound
	}
	return nil
}

func (r *PostgresProductRepository) Filter(ctx context.Context, pf ProductFilter) ([]models.Product, error) {
	conditions, args := filterConditions(pf)

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	return r.query(ctx, productSelect+` WHERE 1=1`+conditions+` ORDER BY p.name`, args...)
}

func filterConditions(pf ProductFilter) (string, []any) {
	query := ""
	argIdx := 1
	args := []any{}

	if pf.Search != "" {
		query += fmt.Sprintf(" AND (p.name ILIKE $%d OR p.sku ILIKE $%d)", argIdx, argIdx)
		args = append(args, "%"+pf.Search+"%")
		argIdx++
	}
	if pf.CategoryID != nil {
		query += fmt.Sprintf(" AND p.category_id = $%d", argIdx)
		args = append(args, *pf.CategoryID)
		argIdx++
	}
	if pf.SupplierID != nil {
		query += fmt.Sprintf(" AND p.supplier_id = $%d", argIdx)
		args = append(args, *pf.SupplierID)
		argIdx++
	}
	if pf.Status != "" {
		query += fmt.Sprintf(" AND p.status = $%d", argIdx)
		args = append(args, pf.Status)
	}
	switch pf.Stock {
	case StockFilterLow:
		query += " AND p.stock_quantity <= p.min_stock"
	case StockFilterNormal:
		query += " AND p.stock_quantity > p.min_stock"
	}

	return query, args
}

func (r *PostgresProductRepository) ListByStatus(ctx context.Context, status models.ProductStatus) ([]models.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	return r.query(ctx, productSelect+` WHERE p.status = $1 ORDER BY p.created_at, p.id`, status)
}

func (r *PostgresProductRepository) AdjustQuantity(ctx context.Context, id uuid.UUID, delta int) (models.Product, error) {
	query := `
		UPDATE products
		SET stock_quantity = stock_quantity + $1, updated_at = $2
		WHERE id = $3 AND stock_quantity + $1 >= 0`
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx, query, delta, time.Now().UTC(), id)
	if err != nil {
		return models.Product{}, fmt.Errorf("failed to adjust quantity: %w", err)
	}
	if rowsAffected, _ := res.RowsAffected(); rowsAffected == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return models.Product{}, err
		}
		return models.Product{}, ErrInvalidQuantityChange
	}
	return r.GetByID(ctx, id)
}
