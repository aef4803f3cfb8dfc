package errors

import (
	"context"
	stderrs "errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// pgCodes maps the SQLSTATEs the store runs into. Anything else is ErrorCodeDB
var pgCodes = map[string]ErrorCode{
	"23505": ErrorCodeConflict,        // unique_violation
	"23503": ErrorCodeInvalidArgument, // foreign_key_violation: input named a missing row
	"23502": ErrorCodeValidation,      // not_null_violation
	"23514": ErrorCodeValidation,      // check_violation
	"22001": ErrorCodeInvalidArgument, // string_data_right_truncation
	"22P02": ErrorCodeInvalidArgument, // invalid_text_representation
	"25006": ErrorCodeUnavailable,     // read_only_sql_transaction, e.g. a standby
	"53300": ErrorCodeUnavailable,     // too_many_connections
	"57P03": ErrorCodeUnavailable,     // cannot_connect_now
}

// contention SQLSTATEs after which the same transaction can simply be rerun
var pgRetryable = map[string]bool{
	"40001": true, // serialization_failure
	"40P01": true, // deadlock_detected
	"55P03": true, // lock_not_available
}

// driver texts that mean the same as pgRetryable when no PgError survived
var retryableText = []string{
	"commit unexpectedly resulted in rollback",
	"deadlock detected",
	"could not serialize access",
	"canceling statement due to lock timeout",
}

// SQLState returns the SQLSTATE of the first *pgconn.PgError in err's chain, or ""
func SQLState(err error) string {
	var pgErr *pgconn.PgError
	if stderrs.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// FromPostgres wraps a database error with a code derived from its SQLSTATE.
// Column names reported by postgres become the error field
func FromPostgres(err error, msg string) error {
	if err == nil {
		return nil
	}
	code, ok := pgCodes[SQLState(err)]
	if !ok {
		code = ErrorCodeDB
	}
	out := Wrap(err, code, msg)

	var pgErr *pgconn.PgError
	if stderrs.As(err, &pgErr) && pgErr.ColumnName != "" {
		out = WithField(out, pgErr.ColumnName)
	}
	return out
}

// FromPostgresf is FromPostgres with a formatted message
func FromPostgresf(err error, format string, a ...any) error {
	return FromPostgres(err, fmt.Sprintf(format, a...))
}

// IsRetryable reports whether rerunning the failed transaction may succeed.
// Context cancellation is never retryable
func IsRetryable(err error) bool {
	if err == nil || stderrs.Is(err, context.Canceled) || stderrs.Is(err, context.DeadlineExceeded) {
		return false
	}
	if state := SQLState(err); state != "" {
		return pgRetryable[state]
	}
	s := strings.ToLower(err.Error())
	for _, t := range retryableText {
		if strings.Contains(s, t) {
			return true
		}
	}
	return false
}
