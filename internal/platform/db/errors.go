package db

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/laundrydesk/laundrydesk/internal/platform/httpx"
)

// PostgreSQL SQLSTATE codes the repositories care about.
const (
	CodeUniqueViolation     = "23505"
	CodeForeignKeyViolation = "23503"
	CodeCheckViolation      = "23514"
)

// ErrCheckViolation marks a row rejected by a CHECK constraint. It answers 400.
var ErrCheckViolation = fmt.Errorf("check constraint violated: %w", httpx.ErrValidation)

// PgCode returns the SQLSTATE carried by err, or "" when err is not a server error.
func PgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// IsUniqueViolation reports a unique constraint failure. When constraint is
// non-empty the violated constraint must match it.
func IsUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != CodeUniqueViolation {
		return false
	}
	return constraint == "" || pgErr.ConstraintName == constraint
}

// IsForeignKeyViolation reports a foreign key failure.
func IsForeignKeyViolation(err error) bool {
	return PgCode(err) == CodeForeignKeyViolation
}

// IsCheckViolation reports a CHECK constraint failure.
func IsCheckViolation(err error) bool {
	return PgCode(err) == CodeCheckViolation
}

// MapCheckViolation rewrites a CHECK constraint failure as ErrCheckViolation
// naming the constraint. Any other error is returned unchanged.
func MapCheckViolation(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != CodeCheckViolation {
		return err
	}
	return fmt.Errorf("%s: %w", pgErr.ConstraintName, ErrCheckViolation)
}
