package journal

import "errors"

// Domain errors checked with errors.Is(). The data access layer maps backing
// store failures onto these; surfaces never let a raw driver error through.
var (
	// ErrNotFound - no row exists with the requested id.
	ErrNotFound = errors.New("record not found")

	// ErrValidation - a required field is missing or a supplied value
	// (including a foreign key target) is invalid.
	ErrValidation = errors.New("validation failed")

	// ErrConstraint - the operation would violate referential integrity,
	// e.g. deleting a teacher that still owns subjects.
	ErrConstraint = errors.New("constraint violation")

	// ErrUnknownEntity - the caller named an entity outside the closed set.
	ErrUnknownEntity = errors.New("unknown model")

	// ErrUnknownAction - the caller named an unsupported action.
	ErrUnknownAction = errors.New("unknown action")
)
