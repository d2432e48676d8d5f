package filecrypt

import (
	"encoding/base64"
	"fmt"
)

// Bundle is the transport form of an encryption key and IV, base64-encoded.
// It is ephemeral: surfaced to the publisher exactly once at encrypt time, or
// returned by the key custody service after proof-of-purchase verification.
// It must never appear in chain-recorded or otherwise public channels.
type Bundle struct {
	Key string `json:"key"`
	IV  string `json:"iv"`
}

// NewBundle encodes an EncryptResult's key material for transport.
func NewBundle(result *EncryptResult) *Bundle {
	return &Bundle{
		Key: base64.StdEncoding.EncodeToString(result.Key),
		IV:  base64.StdEncoding.EncodeToString(result.IV),
	}
}

// Materialize decodes the bundle back into raw key and IV bytes,
// validating both lengths.
func (b *Bundle) Materialize() (key, iv []byte, err error) {
	key, err = base64.StdEncoding.DecodeString(b.Key)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: key: %w", ErrInvalidBundle, err)
	}
	if len(key) != KeyLen {
		return nil, nil, fmt.Errorf("%w: key length %d, want %d", ErrInvalidBundle, len(key), KeyLen)
	}
	iv, err = base64.StdEncoding.DecodeString(b.IV)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: iv: %w", ErrInvalidBundle, err)
	}
	if len(iv) != IVLen {
		return nil, nil, fmt.Errorf("%w: iv length %d, want %d", ErrInvalidBundle, len(iv), IVLen)
	}
	return key, iv, nil
}

// DecryptBundle decrypts ciphertext using a transport bundle.
func DecryptBundle(ciphertext []byte, b *Bundle) ([]byte, error) {
	key, iv, err := b.Materialize()
	if err != nil {
		return nil, err
	}
	return Decrypt(ciphertext, key, iv)
}
