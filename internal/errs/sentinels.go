// Package errs contains sentinel errors used across layers for stable error mapping.
package errs

import "errors"

// Common sentinels across repo/service layers.
var (
	// ErrValidation indicates malformed input, rejected before any store is touched.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound indicates no row for (id, owner). Also returned when the row
	// belongs to a different owner, so existence never leaks across accounts.
	ErrNotFound = errors.New("not found")

	// ErrMediaUpload indicates the media store rejected or failed an upload;
	// the operation was aborted with no relational side effect.
	ErrMediaUpload = errors.New("media upload failed")

	// ErrStorage indicates the relational transaction failed after validation.
	ErrStorage = errors.New("storage failure")

	// ErrUnauthorized indicates failed authentication/authorization.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrRateLimited indicates temporary login lock due to rate limiting.
	ErrRateLimited = errors.New("rate limited")

	// ErrAlreadyExists indicates a unique constraint violation (e.g., username taken).
	ErrAlreadyExists = errors.New("already exists")
)
