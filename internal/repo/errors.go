package repo

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrProductNotFound is returned when a product is not found in the repository.
	ErrProductNotFound  = errors.New("product not found")
	ErrCategoryNotFound = errors.New("category not found")
	ErrSupplierNotFound = errors.New("supplier not found")
	ErrUserNotFound     = errors.New("user not found")

	// ErrDuplicatedValueUnique is returned when a write violates a unique constraint.
	ErrDuplicatedValueUnique = errors.New("unique constraint violation")

	// ErrInvalidQuantityChange is returned when an adjustment would make stock negative.
	ErrInvalidQuantityChange = errors.New("quantity cannot be negative")
)

const queryTimeout = 3 * time.Second

const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
)

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

// missingReference maps a foreign key violation to the not-found error of
// the referenced table, or returns nil for any other error.
func missingReference(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != foreignKeyViolation {
		return nil
	}
	switch {
	case strings.Contains(pgErr.ConstraintName, "category"):
		return ErrCategoryNotFound
	case strings.Contains(pgErr.ConstraintName, "supplier"):
		return ErrSupplierNotFound
	case strings.Contains(pgErr.ConstraintName, "product"):
		return ErrProductNotFound
	}
	return nil
}

// writeError classifies a failed insert or update.
func writeError(err error, msg string) error {
	if isUniqueViolation(err) {
		return ErrDuplicatedValueUnique
	}
	if ref := missingReference(err); ref != nil {
		return ref
	}
	return fmt.Errorf("%s: %w", msg, err)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
