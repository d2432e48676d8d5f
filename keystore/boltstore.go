package keystore

import (
	"fmt"
	"os"
	"path/filepath"

	"go.etcd.io/bbolt"

	"github.com/poiporg/libpoip-go/filecrypt"
	"github.com/poiporg/libpoip-go/identity"
)

var bucketBundles = []byte("bundles")

// BoltStore persists sealed key bundles in a bbolt database, keyed by
// content ID. Bundles are sealed before they reach the database; the
// database never sees raw key material.
type BoltStore struct {
	db *bbolt.DB
}

// Open opens or creates the bbolt database at dbPath.
// The parent directory is created if it does not exist.
func Open(dbPath string) (*BoltStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0700); err != nil {
		return nil, fmt.Errorf("keystore: create directory: %w", err)
	}
	db, err := bbolt.Open(dbPath, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("keystore: open bolt db: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(bucketBundles); err != nil {
			return fmt.Errorf("keystore: create bucket %q: %w", bucketBundles, err)
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	return &BoltStore{db: db}, nil
}

// Close closes the underlying database.
func (s *BoltStore) Close() error { return s.db.Close() }

// Put seals the bundle under the passphrase and stores it for contentID,
// overwriting any existing entry.
func (s *BoltStore) Put(contentID identity.ID, bundle *filecrypt.Bundle, passphrase string) error {
	if contentID.IsZero() {
		return fmt.Errorf("%w: zero content ID", ErrInvalidBundle)
	}

	sealed, err := SealBundle(bundle, passphrase)
	if err != nil {
		return err
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		if err := tx.Bucket(bucketBundles).Put(contentID.Bytes(), sealed); err != nil {
			return fmt.Errorf("keystore: put bundle: %w", err)
		}
		return nil
	})
}

// Get retrieves and unseals the bundle for contentID.
// Returns ErrNotFound if no entry exists and ErrSealInvalid for a wrong
// passphrase.
func (s *BoltStore) Get(contentID identity.ID, passphrase string) (*filecrypt.Bundle, error) {
	var sealed []byte
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketBundles).Get(contentID.Bytes())
		if data == nil {
			return ErrNotFound
		}
		sealed = make([]byte, len(data))
		copy(sealed, data)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return UnsealBundle(sealed, passphrase)
}

// Has reports whether a sealed bundle exists for contentID.
func (s *BoltStore) Has(contentID identity.ID) (bool, error) {
	var found bool
	err := s.db.View(func(tx *bbolt.Tx) error {
		found = tx.Bucket(bucketBundles).Get(contentID.Bytes()) != nil
		return nil
	})
	return found, err
}

// Delete removes the sealed bundle for contentID.
func (s *BoltStore) Delete(contentID identity.ID) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketBundles)
		if b.Get(contentID.Bytes()) == nil {
			return ErrNotFound
		}
		if err := b.Delete(contentID.Bytes()); err != nil {
			return fmt.Errorf("keystore: delete bundle: %w", err)
		}
		return nil
	})
}

// List returns the content IDs of all stored bundles.
func (s *BoltStore) List() ([]identity.ID, error) {
	var ids []identity.ID
	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketBundles).ForEach(func(k, v []byte) error {
			id, err := identity.IDFromBytes(k)
			if err != nil {
				return fmt.Errorf("keystore: corrupt key %x: %w", k, err)
			}
			ids = append(ids, id)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return ids, nil
}
