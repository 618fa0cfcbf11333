package dberrors

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// SQLSTATE codes the repositories react to.
const (
	CodeUniqueViolation      = "23505"
	CodeForeignKeyViolation  = "23503"
	CodeSerializationFailure = "40001"
	CodeDeadlockDetected     = "40P01"
)

func pgCode(err error) (string, string, bool) {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return "", "", false
	}
	return pgErr.Code, pgErr.ConstraintName, true
}

// IsDuplicateConstraintError checks if the error is a PostgreSQL unique violation error
// for a specific constraint. An empty constraint name matches any unique violation.
func IsDuplicateConstraintError(err error, constraintName string) bool {
	code, constraint, ok := pgCode(err)
	if !ok || code != CodeUniqueViolation {
		return false
	}
	return constraintName == "" || constraint == constraintName
}

// IsForeignKeyViolation reports a dangling reference, e.g. a post for a deleted club.
func IsForeignKeyViolation(err error) bool {
	code, _, ok := pgCode(err)
	return ok && code == CodeForeignKeyViolation
}

// IsRetryable reports whether the transaction aborted because of a concurrent
// writer and can be run again from the start.
func IsRetryable(err error) bool {
	code, _, ok := pgCode(err)
	return ok && (code == CodeSerializationFailure || code == CodeDeadlockDetected)
}
