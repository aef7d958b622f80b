package models

import "errors"

var (
	// ErrInvalidItemID indicates an empty or malformed item identifier.
	ErrInvalidItemID = errors.New("invalid item id")

	// ErrInvalidScheduledAt indicates a missing publish timestamp.
	ErrInvalidScheduledAt = errors.New("invalid scheduled at timestamp")

	// ErrInvalidItemStatus indicates an unknown lifecycle status.
	ErrInvalidItemStatus = errors.New("invalid item status")
)
