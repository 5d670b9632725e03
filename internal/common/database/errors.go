// internal/common/database/errors.go
// Translates driver-level failures into the domain error taxonomy at the
// repository boundary, so services never inspect SQLSTATE codes.

package database

import (
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"github.com/daymatch/daymatch-backend/internal/common/apperr"
)

const (
	pqUniqueViolation      = "23505"
	pqForeignKeyViolation  = "23503"
	pqSerializationFailure = "40001"
)

// IsUniqueViolation reports whether err is a unique-constraint violation.
func IsUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && string(pqErr.Code) == pqUniqueViolation
}

// IsForeignKeyViolation reports whether err is a foreign-key violation.
func IsForeignKeyViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && string(pqErr.Code) == pqForeignKeyViolation
}

// IsSerializationFailure reports whether err is a serialization conflict
// between concurrent transactions. Retryable by the caller.
func IsSerializationFailure(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && string(pqErr.Code) == pqSerializationFailure
}

// TranslateError maps a storage error onto the domain taxonomy.
// duplicateMsg is used for unique-constraint conflicts.
func TranslateError(err error, duplicateMsg string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, sql.ErrNoRows):
		return apperr.NotFound("record not found")
	case IsUniqueViolation(err):
		return apperr.AlreadyExists(duplicateMsg)
	case IsForeignKeyViolation(err):
		return apperr.NotFound("user not found")
	case IsSerializationFailure(err):
		return apperr.Infrastructure("transaction conflict, retry the request", err)
	default:
		return apperr.Infrastructure("storage failure", err)
	}
}
