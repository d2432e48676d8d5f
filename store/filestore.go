package store

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// FileStore is a local blob cache keyed by the SHA-256 of the pointer.
// Files are stored at: {baseDir}/{hex(hash[:1])}/{hex(hash)} — the first
// byte (2 hex chars) is used as a subdirectory for sharding.
type FileStore struct {
	baseDir string
	mu      sync.RWMutex
}

// NewFileStore creates a new file-based blob cache.
// The directory is created if it does not exist.
func NewFileStore(baseDir string) (*FileStore, error) {
	if baseDir == "" {
		return nil, ErrInvalidBaseDir
	}

	if err := os.MkdirAll(baseDir, 0700); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrIOFailure, err)
	}

	return &FileStore{
		baseDir: baseDir,
	}, nil
}

// pointerKey hashes a pointer to its fixed-size cache key.
func pointerKey(ptr Pointer) [sha256.Size]byte {
	return sha256.Sum256([]byte(ptr))
}

// filePath returns the full cache path for a pointer.
func (fs *FileStore) filePath(ptr Pointer) string {
	key := pointerKey(ptr)
	hexKey := hex.EncodeToString(key[:])
	return filepath.Join(fs.baseDir, hexKey[:2], hexKey)
}

// Put caches the blob for the given pointer.
func (fs *FileStore) Put(ptr Pointer, data []byte) error {
	if ptr == "" {
		return ErrInvalidPointer
	}
	if len(data) == 0 {
		return ErrEmptyContent
	}

	fs.mu.Lock()
	defer fs.mu.Unlock()

	path := fs.filePath(ptr)
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("%w: %w", ErrIOFailure, err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("%w: %w", ErrIOFailure, err)
	}

	return nil
}

// Get retrieves a cached blob by pointer.
func (fs *FileStore) Get(ptr Pointer) ([]byte, error) {
	if ptr == "" {
		return nil, ErrInvalidPointer
	}

	fs.mu.RLock()
	defer fs.mu.RUnlock()

	data, err := os.ReadFile(fs.filePath(ptr))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: %w", ErrIOFailure, err)
	}

	return data, nil
}

// Has reports whether a blob is cached for the given pointer.
func (fs *FileStore) Has(ptr Pointer) (bool, error) {
	if ptr == "" {
		return false, ErrInvalidPointer
	}

	fs.mu.RLock()
	defer fs.mu.RUnlock()

	_, err := os.Stat(fs.filePath(ptr))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("%w: %w", ErrIOFailure, err)
	}

	return true, nil
}

// Remove evicts a cached blob.
func (fs *FileStore) Remove(ptr Pointer) error {
	if ptr == "" {
		return ErrInvalidPointer
	}

	fs.mu.Lock()
	defer fs.mu.Unlock()

	err := os.Remove(fs.filePath(ptr))
	if err != nil {
		if os.IsNotExist(err) {
			return ErrNotFound
		}
		return fmt.Errorf("%w: %w", ErrIOFailure, err)
	}

	return nil
}
