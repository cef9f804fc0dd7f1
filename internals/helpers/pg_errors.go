package helper

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgCheckViolation      = "23514"
	pgExclusionViolation  = "23P01"
)

// pgCode extracts the SQLSTATE from pgx or lib/pq errors.
func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code)
	}
	return ""
}

// PGConstraint returns the violated constraint/index name, if any.
func PGConstraint(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.ConstraintName
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Constraint
	}
	return ""
}

func IsDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) || pgCode(err) == pgUniqueViolation {
		return true
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "duplicate key") ||
		strings.Contains(s, "violates unique constraint") ||
		strings.Contains(s, "sqlstate 23505")
}

func IsForeignKeyViolation(err error) bool {
	return errors.Is(err, gorm.ErrForeignKeyViolated) || pgCode(err) == pgForeignKeyViolation
}

// MapPGError maps a storage error to a *fiber.Error. Unknown errors are returned unchanged.
func MapPGError(err error) error {
	if err == nil {
		return nil
	}
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return err
	}
	switch {
	case IsDuplicateKey(err):
		return fiber.NewError(fiber.StatusConflict, "Duplicate data (unique violation)")
	case IsForeignKeyViolation(err):
		return fiber.NewError(fiber.StatusBadRequest, "Referenced record not found")
	}
	switch pgCode(err) {
	case pgCheckViolation:
		return fiber.NewError(fiber.StatusBadRequest, "Value rejected by a database constraint")
	case pgExclusionViolation:
		return fiber.NewError(fiber.StatusConflict, "Conflicting record exists")
	}
	return err
}
