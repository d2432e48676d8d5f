package store

import (
	"context"
	"errors"
	"fmt"
)

// Resolver wraps a remote Store with a local FileStore cache: fetches try
// the cache first and fill it best-effort on a remote hit. Uploads and
// deletes pass through to the remote store; deletes also evict the cache
// entry.
type Resolver struct {
	Remote Store      // authoritative blob store
	Cache  *FileStore // local cache; nil disables caching
}

// NewResolver creates a Resolver over the given remote store and cache.
func NewResolver(remote Store, cache *FileStore) *Resolver {
	return &Resolver{Remote: remote, Cache: cache}
}

// Upload stores the blob remotely and caches it under the returned pointer.
func (r *Resolver) Upload(ctx context.Context, data []byte, filename string) (Pointer, error) {
	ptr, err := r.Remote.Upload(ctx, data, filename)
	if err != nil {
		return "", err
	}
	if r.Cache != nil {
		_ = r.Cache.Put(ptr, data) // best-effort cache
	}
	return ptr, nil
}

// Fetch retrieves a blob, trying the local cache before the remote store.
func (r *Resolver) Fetch(ctx context.Context, ptr Pointer) ([]byte, error) {
	if ptr == "" {
		return nil, ErrInvalidPointer
	}

	if r.Cache != nil {
		data, err := r.Cache.Get(ptr)
		if err == nil {
			return data, nil
		}
		// Only fall through on a miss; other errors are real failures.
		if !errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("resolver: local cache: %w", err)
		}
	}

	data, err := r.Remote.Fetch(ctx, ptr)
	if err != nil {
		return nil, err
	}
	if r.Cache != nil {
		_ = r.Cache.Put(ptr, data) // best-effort cache fill
	}
	return data, nil
}

// Delete removes the blob remotely and evicts any cached copy.
func (r *Resolver) Delete(ctx context.Context, ptr Pointer) error {
	if r.Cache != nil {
		_ = r.Cache.Remove(ptr)
	}
	return r.Remote.Delete(ctx, ptr)
}
