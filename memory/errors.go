package memory

import "errors"

var (
	// ErrKeyNotFound is returned when a document does not exist.
	ErrKeyNotFound = errors.New("document not found")
	// ErrInvalidKey rejects keys that are empty, absolute, or leave the root.
	ErrInvalidKey = errors.New("invalid document key")
	ErrLoadFailed = errors.New("load failed")
	ErrSaveFailed = errors.New("save failed")
)
