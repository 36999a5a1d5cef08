package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rogerio-castellano/inventory-master/internal/models"
)

type PostgresCategoryRepository struct {
	db *sql.DB
}

func NewPostgresCategoryRepository(db *sql.DB) *PostgresCategoryRepository {
	return &PostgresCategoryRepository{db: db}
}

func scanCategory(row rowScanner) (models.Category, error) {
	var (
		c           models.Category
		description sql.NullString
	)
	if err := row.Scan(&c.ID, &c.Name, &description, &c.CreatedAt); err != nil {
		return models.Category{}, err
	}
	if description.Valid {
		c.Description = &description.String
	}
	return c, nil
}

func (r *PostgresCategoryRepository) Create(ctx context.Context, c models.Category) (models.Category, error) {
	query := `INSERT INTO categories (name, description) VALUES ($1, $2) RETURNING id, name, description, created_at`
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	created, err := scanCategory(r.db.QueryRowContext(ctx, query, c.Name, c.Description))
	if err != nil {
		if isUniqueViolation(err) {
			return models.Category{}, ErrDuplicatedValueUnique
		}
		return models.Category{}, fmt.Errorf("failed to insert category: %w", err)
	}
	return created, nil
}

func (r *PostgresCategoryRepository) GetByID(ctx context.Context, id uuid.UUID) (models.Category, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	c, err := scanCategory(r.db.QueryRowContext(ctx, `SELECT id, name, description, created_at FROM categories WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Category{}, ErrCategoryNotFound
	}
	return c, err
}

func (r *PostgresCategoryRepository) Update(ctx context.Context, c models.Category) (models.Category, error) {
	query := `UPDATE categories SET name = $1, description = $2 WHERE id = $3 RETURNING id, name, description, created_at`
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	updated, err := scanCategory(r.db.QueryRowContext(ctx, query, c.Name, c.Description, c.ID))
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return models.Category{}, ErrCategoryNotFound
	case isUniqueViolation(err):
		return models.Category{}, ErrDuplicatedValueUnique
	case err != nil:
		return models.Category{}, fmt.Errorf("failed to update category: %w", err)
	}
	return updated, nil
}

func (r *PostgresCategoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}
	if rowsAffected, _ := res.RowsAffected(); rowsAffected == 0 {
		return ErrCategoryNotFound
	}
	return nil
}

func (r *PostgresCategoryRepository) List(ctx context.Context) ([]models.Category, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, `SELECT id, name, description, created_at FROM categories ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	categories := []models.Category{}
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}
