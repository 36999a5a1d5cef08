package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rogerio-castellano/inventory-master/internal/models"
)

type PostgresSupplierRepository struct {
	db *sql.DB
}

func NewPostgresSupplierRepository(db *sql.DB) *PostgresSupplierRepository {
	return &PostgresSupplierRepository{db: db}
}

const supplierColumns = `id, name, contact_name, email, phone, address, city, country, notes, is_active, created_at`

func scanSupplier(row rowScanner) (models.Supplier, error) {
	var (
		s                                                    models.Supplier
		contact, email, phone, address, city, country, notes sql.NullString
	)
	err := row.Scan(&s.ID, &s.Name, &contact, &email, &phone, &address, &city, &country, &notes, &s.IsActive, &s.CreatedAt)
	if err != nil {
		return models.Supplier{}, err
	}
	s.ContactName = nullableString(contact)
	s.Email = nullableString(email)
	s.Phone = nullableString(phone)
	s.Address = nullableString(address)
	s.City = nullableString(city)
	s.Country = nullableString(country)
	s.Notes = nullableString(notes)
	return s, nil
}

func nullableString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	return &ns.String
}

func (r *PostgresSupplierRepository) Create(ctx context.Context, s models.Supplier) (models.Supplier, error) {
	query := `
		INSERT INTO suppliers (name, contact_name, email, phone, address, city, country, notes, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING ` + supplierColumns
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	created, err := scanSupplier(r.db.QueryRowContext(ctx, query,
		s.Name, s.ContactName, s.Email, s.Phone, s.Address, s.City, s.Country, s.Notes, s.IsActive))
	if err != nil {
		return models.Supplier{}, fmt.Errorf("failed to insert supplier: %w", err)
	}
	return created, nil
}

func (r *PostgresSupplierRepository) GetByID(ctx context.Context, id uuid.UUID) (models.Supplier, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	s, err := scanSupplier(r.db.QueryRowContext(ctx, `SELECT `+supplierColumns+` FROM suppliers WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Supplier{}, ErrSupplierNotFound
	}
	return s, err
}

func (r *PostgresSupplierRepository) Update(ctx context.Context, s models.Supplier) (models.Supplier, error) {
	query := `
		UPDATE suppliers
		SET name = $1, contact_name = $2, email = $3, phone = $4, address = $5, city = $6,
		    country = $7, notes = $8, is_active = $9
		WHERE id = $10
		RETURNING ` + supplierColumns
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	updated, err := scanSupplier(r.db.QueryRowContext(ctx, query,
		s.Name, s.ContactName, s.Email, s.Phone, s.Address, s.City, s.Country, s.Notes, s.IsActive, s.ID))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Supplier{}, ErrSupplierNotFound
	}
	if err != nil {
		return models.Supplier{}, fmt.Errorf("failed to update supplier: %w", err)
	}
	return updated, nil
}

func (r *PostgresSupplierRepository) Delete(ctx context.Context, id uuid.UUID) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `DELETE FROM suppliers WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete supplier: %w", err)
	}
	if rowsAffected, _ := res.RowsAffected(); rowsAffected == 0 {
		return ErrSupplierNotFound
	}
	return nil
}

func (r *PostgresSupplierRepository) List(ctx context.Context, sf SupplierFilter) ([]models.Supplier, error) {
	query := `SELECT ` + supplierColumns + ` FROM suppliers WHERE 1=1`
	args := []any{}
	if sf.ActiveOnly {
		query += ` AND is_active = true`
	}
	if sf.Search != "" {
		args = append(args, "%"+sf.Search+"%")
		query += ` AND (name ILIKE $1 OR email ILIKE $1)`
	}
	query += ` ORDER BY name`

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	suppliers := []models.Supplier{}
	for rows.Next() {
		s, err := scanSupplier(rows)
		if err != nil {
			return nil, err
		}
		suppliers = append(suppliers, s)
	}
	return suppliers, rows.Err()
}
