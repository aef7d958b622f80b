// Package services provides the operator-facing scheduling operations built
// on top of the mutation coordinator.
package services

import (
	"errors"

	"github.com/postdeck/postdeck/pkg/calendar"
)

var (
	// ErrItemNotFound is returned when a move targets an item that is not in
	// its expected day bucket.
	ErrItemNotFound = calendar.ErrItemNotFound

	// ErrInvalidCreateInput indicates a quick-create request failed local
	// validation before any mutation was started.
	ErrInvalidCreateInput = errors.New("invalid create input")

	// ErrInvalidTimeOfDay indicates a quick-create time that does not parse
	// as HH:MM.
	ErrInvalidTimeOfDay = errors.New("invalid time of day")

	// ErrEmptyBatch indicates a bulk reschedule with no effective moves.
	ErrEmptyBatch = errors.New("bulk reschedule batch is empty")
)

// IsValidationError checks if an error is a local validation error that
// should return HTTP 400.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidCreateInput) ||
		errors.Is(err, ErrInvalidTimeOfDay) ||
		errors.Is(err, ErrEmptyBatch)
}
