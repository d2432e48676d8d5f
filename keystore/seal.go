// Package keystore persists a publisher's decryption key bundles, sealed
// under a passphrase. The sealed copies back up the key material the
// custody service holds: losing the custody service must not mean losing
// the ability to decrypt one's own published content.
package keystore

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/json"
	"fmt"

	"golang.org/x/crypto/argon2"

	"github.com/poiporg/libpoip-go/filecrypt"
)

const (
	// Argon2id parameters for passphrase hardening.
	Argon2Time        = 3
	Argon2Memory      = 64 * 1024 // 64 MB
	Argon2Parallelism = 4
	Argon2KeyLen      = 32

	// Seal format sizes.
	SaltLen     = 16
	NonceLen    = 12
	ChecksumLen = 4
)

// SealBundle encrypts a key bundle under a passphrase.
//
// Output format: salt(16B) || nonce(12B) || AES-GCM(argon2id(passphrase,salt), nonce, json||checksum)
//
// The checksum is SHA256(json)[:4] for verifying correct decryption.
func SealBundle(bundle *filecrypt.Bundle, passphrase string) ([]byte, error) {
	if bundle == nil {
		return nil, ErrInvalidBundle
	}
	if _, _, err := bundle.Materialize(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidBundle, err)
	}
	if passphrase == "" {
		return nil, ErrInvalidPassphrase
	}

	payload, err := json.Marshal(bundle)
	if err != nil {
		return nil, fmt.Errorf("keystore: encode bundle: %w", err)
	}

	salt := make([]byte, SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("keystore: generate salt: %w", err)
	}

	derivedKey := argon2.IDKey(
		[]byte(passphrase),
		salt,
		Argon2Time,
		Argon2Memory,
		Argon2Parallelism,
		Argon2KeyLen,
	)

	checksum := sha256.Sum256(payload)
	plaintext := make([]byte, len(payload)+ChecksumLen)
	copy(plaintext, payload)
	copy(plaintext[len(payload):], checksum[:ChecksumLen])

	block, err := aes.NewCipher(derivedKey)
	if err != nil {
		return nil, fmt.Errorf("keystore: AES cipher creation failed: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("keystore: GCM creation failed: %w", err)
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("keystore: generate nonce: %w", err)
	}

	ciphertext := gcm.Seal(nil, nonce, plaintext, nil)

	sealed := make([]byte, 0, SaltLen+NonceLen+len(ciphertext))
	sealed = append(sealed, salt...)
	sealed = append(sealed, nonce...)
	sealed = append(sealed, ciphertext...)

	return sealed, nil
}

// UnsealBundle decrypts a sealed bundle with the passphrase.
// Returns ErrSealInvalid for a wrong passphrase or a tampered blob.
func UnsealBundle(sealed []byte, passphrase string) (*filecrypt.Bundle, error) {
	if passphrase == "" {
		return nil, ErrInvalidPassphrase
	}
	minLen := SaltLen + NonceLen + ChecksumLen
	if len(sealed) < minLen {
		return nil, ErrSealInvalid
	}

	salt := sealed[:SaltLen]
	nonce := sealed[SaltLen : SaltLen+NonceLen]
	ciphertext := sealed[SaltLen+NonceLen:]

	derivedKey := argon2.IDKey(
		[]byte(passphrase),
		salt,
		Argon2Time,
		Argon2Memory,
		Argon2Parallelism,
		Argon2KeyLen,
	)

	block, err := aes.NewCipher(derivedKey)
	if err != nil {
		return nil, ErrSealInvalid
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, ErrSealInvalid
	}

	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, ErrSealInvalid
	}
	if len(plaintext) < ChecksumLen {
		return nil, ErrSealInvalid
	}

	payload := plaintext[:len(plaintext)-ChecksumLen]
	storedChecksum := plaintext[len(plaintext)-ChecksumLen:]

	checksum := sha256.Sum256(payload)
	for i := 0; i < ChecksumLen; i++ {
		if storedChecksum[i] != checksum[i] {
			return nil, ErrSealInvalid
		}
	}

	var bundle filecrypt.Bundle
	if err := json.Unmarshal(payload, &bundle); err != nil {
		return nil, ErrSealInvalid
	}
	if _, _, err := bundle.Materialize(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidBundle, err)
	}

	return &bundle, nil
}
