package repository

import (
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// PostgreSQL SQLSTATE codes the stores react to.
const (
	codeUniqueViolation      = "23505"
	codeForeignKeyViolation  = "23503"
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
)

// MapError converts sql.ErrNoRows to notFound and unique violations to
// duplicate. Anything else, nil included, passes through.
func MapError(err error, notFound, duplicate error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, sql.ErrNoRows):
		return notFound
	case sqlState(err) == codeUniqueViolation:
		return duplicate
	}
	return err
}

// IsForeignKeyViolation reports a delete blocked by referencing rows or an
// insert whose parent row is missing.
func IsForeignKeyViolation(err error) bool {
	return sqlState(err) == codeForeignKeyViolation
}

// IsRetryable reports an error after which the whole transaction may be
// run again.
func IsRetryable(err error) bool {
	switch sqlState(err) {
	case codeSerializationFailure, codeDeadlockDetected:
		return true
	}
	return false
}

func sqlState(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}
