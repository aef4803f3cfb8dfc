package domain

import (
	"fmt"

	perr "bulkscan/internal/platform/errors"
)

// Run failure classes. Match with errors.Is; the concrete cause is wrapped alongside
var (
	ErrMalformedRequest = perr.New(perr.ErrorCodeValidation, "malformed bulk request")
	ErrResolution       = perr.New(perr.ErrorCodeNotFound, "upload not resolvable from tree id")
	ErrAudit            = perr.New(perr.ErrorCodeDB, "audit window unavailable")
	ErrCandidateQuery   = perr.New(perr.ErrorCodeDB, "candidate file query failed")
	ErrWorkerConnection = perr.New(perr.ErrorCodeUnavailable, "worker connection unavailable")
	ErrMatch            = perr.New(perr.ErrorCodeUnknown, "match failed")
	ErrRecordWrite      = perr.New(perr.ErrorCodeDB, "record write failed")
)

// Fail tags cause with a failure class. A nil cause returns the class itself
func Fail(class, cause error) error {
	if cause == nil {
		return class
	}
	return fmt.Errorf("%w: %w", class, cause)
}
