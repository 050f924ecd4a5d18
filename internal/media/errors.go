package media

import "errors"

var (
	// ErrNotFound indicates the record is absent or its backing blob is gone.
	ErrNotFound = errors.New("video not found")
	// ErrForbidden indicates the caller lacks the capability for the operation.
	ErrForbidden = errors.New("operation not permitted")
)
