package feed

import "errors"

var (
	// ErrNotFound means the target post does not exist.
	ErrNotFound = errors.New("post not found")
	// ErrValidation means required content is missing or malformed.
	ErrValidation = errors.New("validation failed")
)
