package store

import "errors"

var (
	// ErrNotFound is returned when a blob does not exist at any source.
	ErrNotFound = errors.New("store: blob not found")

	// ErrInvalidPointer is returned for an empty or malformed pointer.
	ErrInvalidPointer = errors.New("store: invalid pointer")

	// ErrInvalidBaseDir is returned when a cache base directory is empty.
	ErrInvalidBaseDir = errors.New("store: invalid base directory")

	// ErrEmptyContent is returned when uploading or caching an empty blob.
	ErrEmptyContent = errors.New("store: empty content")

	// ErrIOFailure wraps filesystem errors from the local cache.
	ErrIOFailure = errors.New("store: I/O failure")

	// ErrUploadFailed wraps pinning-service upload failures.
	ErrUploadFailed = errors.New("store: upload failed")

	// ErrFetchFailed wraps pinning-service fetch failures other than
	// a definite not-found.
	ErrFetchFailed = errors.New("store: fetch failed")
)
