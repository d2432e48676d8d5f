// Package filecrypt implements the symmetric encryption engine for gated
// content: AES-256-CBC with PKCS#7 padding, key and IV drawn from a
// cryptographically secure random source at encrypt time.
//
// The scheme is intentionally reproducible: any client holding the ciphertext
// plus the (key, iv) pair from the publishing client — typically obtained via
// the key custody service — recovers the exact original bytes.
//
// Known, accepted weakness: CBC with PKCS#7 has no authentication. A wrong
// key is detected by padding validation, which false-accepts a random final
// block with probability ~2^-8 (and then yields garbage plaintext rather
// than the original). Callers needing a hard integrity guarantee should
// compare a content commitment out of band.
package filecrypt

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"fmt"
)

const (
	// KeyLen is the AES-256 key length in bytes.
	KeyLen = 32

	// IVLen is the CBC initialization vector length in bytes (one block).
	IVLen = aes.BlockSize
)

// EncryptResult holds the output of an encryption operation.
type EncryptResult struct {
	// Ciphertext is CBC(plaintext || pkcs7-padding). Always a non-zero
	// multiple of the block size, even for empty plaintext.
	Ciphertext []byte

	// Key is the random AES-256 key, 32 bytes.
	Key []byte

	// IV is the random initialization vector, 16 bytes.
	IV []byte
}

// Encrypt encrypts plaintext with a fresh random key and IV.
// It accepts any input length, including empty, and fails only if the
// system random source fails.
func Encrypt(plaintext []byte) (*EncryptResult, error) {
	key := make([]byte, KeyLen)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("filecrypt: generate key: %w", err)
	}
	iv := make([]byte, IVLen)
	if _, err := rand.Read(iv); err != nil {
		return nil, fmt.Errorf("filecrypt: generate iv: %w", err)
	}

	ciphertext, err := EncryptWithKey(plaintext, key, iv)
	if err != nil {
		return nil, err
	}

	return &EncryptResult{
		Ciphertext: ciphertext,
		Key:        key,
		IV:         iv,
	}, nil
}

// EncryptWithKey encrypts plaintext with a caller-provided key and IV.
// Used by tests and by custody services re-encrypting escrowed content.
func EncryptWithKey(plaintext, key, iv []byte) ([]byte, error) {
	if len(key) != KeyLen {
		return nil, fmt.Errorf("%w: got %d bytes", ErrInvalidKeySize, len(key))
	}
	if len(iv) != IVLen {
		return nil, fmt.Errorf("%w: got %d bytes", ErrInvalidIVSize, len(iv))
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("filecrypt: create cipher: %w", err)
	}

	padded := pkcs7Pad(plaintext, aes.BlockSize)
	ciphertext := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(ciphertext, padded)
	return ciphertext, nil
}

// Decrypt decrypts ciphertext produced by Encrypt.
//
// It returns ErrInvalidKeySize / ErrInvalidIVSize for malformed key material,
// ErrInvalidCiphertext for structurally malformed input (empty or not a
// block-size multiple), and ErrDecryptionFailed when padding validation
// rejects the result — the deterministic signal of a wrong key.
func Decrypt(ciphertext, key, iv []byte) ([]byte, error) {
	if len(key) != KeyLen {
		return nil, fmt.Errorf("%w: got %d bytes", ErrInvalidKeySize, len(key))
	}
	if len(iv) != IVLen {
		return nil, fmt.Errorf("%w: got %d bytes", ErrInvalidIVSize, len(iv))
	}
	if len(ciphertext) == 0 || len(ciphertext)%aes.BlockSize != 0 {
		return nil, fmt.Errorf("%w: length %d", ErrInvalidCiphertext, len(ciphertext))
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("filecrypt: create cipher: %w", err)
	}

	padded := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(padded, ciphertext)

	plaintext, err := pkcs7Unpad(padded, aes.BlockSize)
	if err != nil {
		return nil, err
	}
	return plaintext, nil
}
