package database

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jikulumessu/api/internal/models"
)

// Constraint violation classes from the Postgres error code table.
const (
	pgNotNullViolation    = "23502"
	pgForeignKeyViolation = "23503"
	pgUniqueViolation     = "23505"
	pgCheckViolation      = "23514"
)

// MapPostgresError translates driver errors into the model sentinels the
// service layer branches on. Anything unrecognized passes through unchanged
// so it surfaces in logs with full detail.
func MapPostgresError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return models.ErrNotFound
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	switch pgErr.Code {
	case pgUniqueViolation:
		return models.ErrConflict
	case pgNotNullViolation, pgForeignKeyViolation, pgCheckViolation:
		return models.ErrBadRequest
	}

	return err
}
