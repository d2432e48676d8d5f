package keystore

import "errors"

var (
	// ErrInvalidPassphrase is returned when a passphrase is empty.
	ErrInvalidPassphrase = errors.New("keystore: invalid passphrase")

	// ErrInvalidBundle is returned when sealing a nil or malformed bundle.
	ErrInvalidBundle = errors.New("keystore: invalid key bundle")

	// ErrSealInvalid is returned when unsealing fails: wrong passphrase,
	// truncated blob, or tampered ciphertext.
	ErrSealInvalid = errors.New("keystore: seal invalid")

	// ErrNotFound is returned when no sealed bundle exists for a content ID.
	ErrNotFound = errors.New("keystore: bundle not found")
)
