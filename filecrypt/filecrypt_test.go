package filecrypt

import (
	"bytes"
	"crypto/aes"
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Round-trip tests ---

func TestEncryptDecrypt_RoundTrip(t *testing.T) {
	tests := []struct {
		name      string
		plaintext []byte
	}{
		{"empty input", []byte{}},
		{"single byte", []byte{0x42}},
		{"ten bytes", []byte("0123456789")},
		{"exactly one block", bytes.Repeat([]byte{0xAA}, aes.BlockSize)},
		{"exactly two blocks", bytes.Repeat([]byte{0xBB}, 2*aes.BlockSize)},
		{"block size minus one", bytes.Repeat([]byte{0xCC}, aes.BlockSize-1)},
		{"block size plus one", bytes.Repeat([]byte{0xDD}, aes.BlockSize+1)},
		{"binary data", []byte{0x00, 0x01, 0xff, 0xfe, 0x80}},
		{"large input", bytes.Repeat([]byte("content"), 100_000)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Encrypt(tt.plaintext)
			require.NoError(t, err)
			assert.Len(t, result.Key, KeyLen)
			assert.Len(t, result.IV, IVLen)
			assert.NotEmpty(t, result.Ciphertext, "padding guarantees at least one block")
			assert.Zero(t, len(result.Ciphertext)%aes.BlockSize)

			plaintext, err := Decrypt(result.Ciphertext, result.Key, result.IV)
			require.NoError(t, err)
			assert.Equal(t, tt.plaintext, plaintext)
		})
	}
}

func TestEncrypt_FreshKeyMaterial(t *testing.T) {
	a, err := Encrypt([]byte("same input"))
	require.NoError(t, err)
	b, err := Encrypt([]byte("same input"))
	require.NoError(t, err)

	assert.NotEqual(t, a.Key, b.Key, "each encrypt draws a fresh key")
	assert.NotEqual(t, a.IV, b.IV, "each encrypt draws a fresh iv")
	assert.NotEqual(t, a.Ciphertext, b.Ciphertext)
}

// --- Wrong-key rejection ---

// A wrong key garbles the final block, so PKCS#7 validation rejects it with
// probability ~255/256 per trial. The test asserts the statistical bound and
// that a false-accept never silently reproduces the original plaintext.
func TestDecrypt_WrongKeyRejected(t *testing.T) {
	original := []byte("the gated content payload")
	result, err := Encrypt(original)
	require.NoError(t, err)

	const trials = 100
	failures := 0
	for i := 0; i < trials; i++ {
		wrongKey := make([]byte, KeyLen)
		_, err := rand.Read(wrongKey)
		require.NoError(t, err)

		plaintext, err := Decrypt(result.Ciphertext, wrongKey, result.IV)
		if err != nil {
			assert.ErrorIs(t, err, ErrDecryptionFailed)
			failures++
			continue
		}
		// Padding false-accept: must never equal the original bytes.
		assert.NotEqual(t, original, plaintext)
	}
	assert.GreaterOrEqual(t, failures, 90, "wrong keys must overwhelmingly fail padding validation")
}

func TestDecrypt_SingleBitFlippedKey(t *testing.T) {
	original := []byte("bit flip sensitivity")
	result, err := Encrypt(original)
	require.NoError(t, err)

	flipped := make([]byte, KeyLen)
	copy(flipped, result.Key)
	flipped[0] ^= 0x01

	plaintext, err := Decrypt(result.Ciphertext, flipped, result.IV)
	if err == nil {
		assert.NotEqual(t, original, plaintext)
	} else {
		assert.ErrorIs(t, err, ErrDecryptionFailed)
	}
}

// --- Structural validation ---

func TestDecrypt_MalformedInput(t *testing.T) {
	result, err := Encrypt([]byte("payload"))
	require.NoError(t, err)

	tests := []struct {
		name       string
		ciphertext []byte
		key        []byte
		iv         []byte
		wantErr    error
	}{
		{"empty ciphertext", nil, result.Key, result.IV, ErrInvalidCiphertext},
		{"non-block multiple", result.Ciphertext[:len(result.Ciphertext)-1], result.Key, result.IV, ErrInvalidCiphertext},
		{"short key", result.Ciphertext, result.Key[:16], result.IV, ErrInvalidKeySize},
		{"long key", result.Ciphertext, append(result.Key, 0x00), result.IV, ErrInvalidKeySize},
		{"short iv", result.Ciphertext, result.Key, result.IV[:8], ErrInvalidIVSize},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decrypt(tt.ciphertext, tt.key, tt.iv)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestEncryptWithKey_Validation(t *testing.T) {
	_, err := EncryptWithKey([]byte("x"), make([]byte, 16), make([]byte, IVLen))
	assert.ErrorIs(t, err, ErrInvalidKeySize)

	_, err = EncryptWithKey([]byte("x"), make([]byte, KeyLen), make([]byte, 8))
	assert.ErrorIs(t, err, ErrInvalidIVSize)
}

func TestEncryptWithKey_Deterministic(t *testing.T) {
	key := bytes.Repeat([]byte{0x11}, KeyLen)
	iv := bytes.Repeat([]byte{0x22}, IVLen)

	a, err := EncryptWithKey([]byte("reproducible"), key, iv)
	require.NoError(t, err)
	b, err := EncryptWithKey([]byte("reproducible"), key, iv)
	require.NoError(t, err)
	assert.Equal(t, a, b, "same key material must reproduce identical ciphertext")
}

// --- PKCS#7 internals ---

func TestPKCS7_PadUnpad(t *testing.T) {
	for length := 0; length <= 3*aes.BlockSize; length++ {
		data := bytes.Repeat([]byte{0x5A}, length)
		padded := pkcs7Pad(data, aes.BlockSize)
		require.Zero(t, len(padded)%aes.BlockSize)
		require.Greater(t, len(padded), len(data), "padding always adds at least one byte")

		unpadded, err := pkcs7Unpad(padded, aes.BlockSize)
		require.NoError(t, err)
		assert.Equal(t, data, unpadded)
	}
}

func TestPKCS7_UnpadRejects(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"empty", []byte{}},
		{"zero pad byte", append(bytes.Repeat([]byte{0x00}, 15), 0x00)},
		{"pad longer than block", append(bytes.Repeat([]byte{0x00}, 15), 0x20)},
		{"inconsistent pad bytes", append(bytes.Repeat([]byte{0x03}, 14), 0x02, 0x03)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := pkcs7Unpad(tt.data, aes.BlockSize)
			assert.Error(t, err)
		})
	}
}

// --- Bundle transport ---

func TestBundle_RoundTrip(t *testing.T) {
	result, err := Encrypt([]byte("bundle me"))
	require.NoError(t, err)

	bundle := NewBundle(result)
	key, iv, err := bundle.Materialize()
	require.NoError(t, err)
	assert.Equal(t, result.Key, key)
	assert.Equal(t, result.IV, iv)

	plaintext, err := DecryptBundle(result.Ciphertext, bundle)
	require.NoError(t, err)
	assert.Equal(t, []byte("bundle me"), plaintext)
}

func TestBundle_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		bundle Bundle
	}{
		{"bad key base64", Bundle{Key: "!!!", IV: "AAAAAAAAAAAAAAAAAAAAAA=="}},
		{"bad iv base64", Bundle{Key: "AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA=", IV: "!!!"}},
		{"short key", Bundle{Key: "AAAA", IV: "AAAAAAAAAAAAAAAAAAAAAA=="}},
		{"short iv", Bundle{Key: "AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA=", IV: "AAAA"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := tt.bundle.Materialize()
			assert.ErrorIs(t, err, ErrInvalidBundle)
		})
	}
}
