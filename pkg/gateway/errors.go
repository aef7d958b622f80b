package gateway

import (
	"errors"
	"fmt"
)

// Kind classifies a remote failure. The coordinator handles both kinds
// identically (full rollback); the distinction only matters to notification
// consumers choosing copy and retry affordances.
type Kind string

const (
	// KindRejected means the server declined the mutation as invalid.
	KindRejected Kind = "rejected"

	// KindUnavailable means the remote service could not be reached or
	// answered with a server error.
	KindUnavailable Kind = "unavailable"
)

// Error is the failure type every gateway implementation returns.
type Error struct {
	Kind Kind   // Failure classification
	Op   string // Gateway operation (e.g. "CreateScheduledItem")
	Err  error  // Underlying error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: remote %s: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewRejected wraps a validation failure from the remote service.
func NewRejected(op string, err error) *Error {
	return &Error{Kind: KindRejected, Op: op, Err: err}
}

// NewUnavailable wraps a network, timeout, or server failure.
func NewUnavailable(op string, err error) *Error {
	return &Error{Kind: KindUnavailable, Op: op, Err: err}
}

// KindOf extracts the failure kind from an error chain. Unclassified errors
// are treated as unavailable, the conservative default for transport faults.
func KindOf(err error) Kind {
	var gerr *Error
	if errors.As(err, &gerr) {
		return gerr.Kind
	}

	return KindUnavailable
}

// IsRejected checks if an error is a remote validation rejection.
func IsRejected(err error) bool {
	var gerr *Error

	return errors.As(err, &gerr) && gerr.Kind == KindRejected
}

// IsUnavailable checks if an error is a remote availability failure.
func IsUnavailable(err error) bool {
	var gerr *Error

	return errors.As(err, &gerr) && gerr.Kind == KindUnavailable
}
