package calendar

import "errors"

var (
	// ErrItemNotFound indicates the identified item is not present in the
	// bucket a transition expected it in. Callers treat this as a no-op,
	// never a crash.
	ErrItemNotFound = errors.New("item not found in day bucket")
)
