package filecrypt

import (
	"bytes"
	"testing"
)

// FuzzRoundTrip asserts decrypt(encrypt(b)) == b for arbitrary inputs.
func FuzzRoundTrip(f *testing.F) {
	f.Add([]byte{})
	f.Add([]byte("seed"))
	f.Add(bytes.Repeat([]byte{0xFF}, 16))
	f.Add(bytes.Repeat([]byte{0x00}, 33))

	f.Fuzz(func(t *testing.T, plaintext []byte) {
		result, err := Encrypt(plaintext)
		if err != nil {
			t.Fatalf("encrypt: %v", err)
		}
		decrypted, err := Decrypt(result.Ciphertext, result.Key, result.IV)
		if err != nil {
			t.Fatalf("decrypt: %v", err)
		}
		if !bytes.Equal(plaintext, decrypted) {
			t.Fatalf("round trip mismatch: %d bytes in, %d bytes out", len(plaintext), len(decrypted))
		}
	})
}

// FuzzDecryptMalformed asserts Decrypt never panics on arbitrary inputs.
func FuzzDecryptMalformed(f *testing.F) {
	f.Add([]byte("ciphertext"), []byte("key"), []byte("iv"))
	f.Add(make([]byte, 32), make([]byte, 32), make([]byte, 16))

	f.Fuzz(func(t *testing.T, ciphertext, key, iv []byte) {
		_, _ = Decrypt(ciphertext, key, iv)
	})
}
