package filecrypt

import "errors"

var (
	// ErrInvalidKeySize indicates the key is not 32 bytes.
	ErrInvalidKeySize = errors.New("filecrypt: invalid key size")

	// ErrInvalidIVSize indicates the IV is not 16 bytes.
	ErrInvalidIVSize = errors.New("filecrypt: invalid iv size")

	// ErrInvalidCiphertext indicates the ciphertext is empty or not a
	// multiple of the AES block size.
	ErrInvalidCiphertext = errors.New("filecrypt: invalid ciphertext")

	// ErrDecryptionFailed indicates padding validation rejected the result.
	// The key/IV did not correspond to the ciphertext.
	ErrDecryptionFailed = errors.New("filecrypt: decryption failed")

	// ErrInvalidBundle indicates a transport bundle with malformed base64
	// or wrong decoded lengths.
	ErrInvalidBundle = errors.New("filecrypt: invalid bundle")
)
