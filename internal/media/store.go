// Package media abstracts the external photo asset store. Assets have no
// lifecycle of their own here: they are created and destroyed only as a side
// effect of record operations, addressed by an opaque reference string.
package media

import (
	"context"
	"errors"
	"io"
)

// ErrTooLarge indicates the uploaded asset exceeds the configured size cap.
var ErrTooLarge = errors.New("media: asset too large")

// Store is implemented by asset backends.
type Store interface {
	// Upload stores the asset and returns a new opaque reference.
	// The filename is advisory (extension hint only).
	Upload(ctx context.Context, r io.Reader, filename string) (string, error)

	// Delete removes the asset. Deleting an unknown or already-deleted
	// reference is not an error; callers rely on this for compensation.
	Delete(ctx context.Context, ref string) error
}

// Opener is implemented by backends that can serve asset bytes back.
type Opener interface {
	Open(ctx context.Context, ref string) (io.ReadCloser, error)
}
