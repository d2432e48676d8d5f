// Package store implements the content-addressable blob store clients used
// by the gating flows: a pinning-service HTTP client for uploads and
// retrieval, a sharded local cache, and a resolver that prefers local data.
// Blobs are opaque — callers encrypt before upload and decrypt after fetch.
package store

import "context"

// Pointer is an opaque blob location recorded on the ledger. Its internal
// structure (gateway URL, CID path) belongs to the storage service, not to
// this library.
type Pointer string

// Store provides upload, fetch, and delete of opaque blobs.
type Store interface {
	// Upload stores data under the given filename and returns its pointer.
	Upload(ctx context.Context, data []byte, filename string) (Pointer, error)

	// Fetch retrieves the blob at the pointer.
	// Returns ErrNotFound for a missing blob.
	Fetch(ctx context.Context, ptr Pointer) ([]byte, error)

	// Delete unpins/removes the blob at the pointer.
	Delete(ctx context.Context, ptr Pointer) error
}
