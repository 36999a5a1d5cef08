package repo

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rogerio-castellano/inventory-master/internal/models"
)

const selectMovements = `SELECT id, product_id, delta, created_at FROM movements`

type PostgresMovementRepository struct {
	db *sql.DB
}

func NewPostgresMovementRepository(db *sql.DB) *PostgresMovementRepository {
	return &PostgresMovementRepository{db: db}
}

// Log inserts a new inventory movement
func (r *PostgresMovementRepository) Log(ctx context.Context, productID uuid.UUID, delta int) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO movements (product_id, delta, created_at) VALUES ($1, $2, $3)`,
		productID, delta, time.Now().UTC())
	if err != nil {
		return writeError(err, "failed to insert movement")
	}
	return nil
}

// movementConds collects WHERE conditions with numbered placeholders.
type movementConds struct {
	conds []string
	args  []any
}

func (c *movementConds) add(cond string, arg any) {
	c.args = append(c.args, arg)
	c.conds = append(c.conds, fmt.Sprintf(cond, len(c.args)))
}

func (c *movementConds) where() string {
	return " WHERE " + strings.Join(c.conds, " AND ")
}

func productMovementConds(productID uuid.UUID, mf MovementFilter) *movementConds {
	c := &movementConds{}
	c.add("product_id = $%d", productID)
	if mf.Since != nil {
		c.add("created_at >= $%d", mf.Since.UTC())
	}
	if mf.Until != nil {
		c.add("created_at <= $%d", mf.Until.UTC())
	}
	return c
}

// GetByProductID returns movements for a product, newest first, with the
// total number matching the date range before pagination.
func (r *PostgresMovementRepository) GetByProductID(ctx context.Context, productID uuid.UUID, mf MovementFilter) ([]models.Movement, int, error) {
	c := productMovementConds(productID, mf)

	countCtx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	var total int
	if err := r.db.QueryRowContext(countCtx, "SELECT COUNT(*) FROM movements"+c.where(), c.args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count movements: %w", err)
	}
	if total == 0 || (mf.Offset != nil && *mf.Offset >= total) {
		return []models.Movement{}, total, nil
	}

	query := selectMovements + c.where() + " ORDER BY created_at DESC, id DESC"
	args := c.args
	if mf.Limit != nil && *mf.Limit > 0 {
		args = append(args, *mf.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if mf.Offset != nil && *mf.Offset > 0 {
		args = append(args, *mf.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	movements, err := r.query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list movements: %w", err)
	}
	return movements, total, nil
}

// ListSince returns every movement at or after since, oldest first.
func (r *PostgresMovementRepository) ListSince(ctx context.Context, since time.Time) ([]models.Movement, error) {
	movements, err := r.query(ctx, selectMovements+" WHERE created_at >= $1 ORDER BY created_at, id", since.UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to list recent movements: %w", err)
	}
	return movements, nil
}

func (r *PostgresMovementRepository) query(ctx context.Context, query string, args ...any) ([]models.Movement, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	movements := []models.Movement{}
	for rows.Next() {
		var m models.Movement
		if err := rows.Scan(&m.ID, &m.ProductID, &m.Delta, &m.CreatedAt); err != nil {
			return nil, err
		}
		m.CreatedAt = m.CreatedAt.UTC()
		movements = append(movements, m)
	}
	return movements, rows.Err()
}
