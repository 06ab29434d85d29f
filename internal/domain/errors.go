package domain

import "errors"

// ErrNotFound is returned by repo and service functions when the requested
// resource does not exist in the database.
// Handlers should map this to HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrValidation is returned by service functions when input fails business
// rule validation (e.g. missing required field, unknown help kind). It is
// raised before any network or database call so the caller can fix the
// input rather than retry. Handlers should map this to HTTP 422.
var ErrValidation = errors.New("validation error")
