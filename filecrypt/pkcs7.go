package filecrypt

import "fmt"

// pkcs7Pad appends PKCS#7 padding to reach a multiple of blockSize.
// Input of exactly N blocks gains a full padding block, so the output
// is never empty and always unambiguous.
func pkcs7Pad(data []byte, blockSize int) []byte {
	padLen := blockSize - len(data)%blockSize
	padded := make([]byte, len(data)+padLen)
	copy(padded, data)
	for i := len(data); i < len(padded); i++ {
		padded[i] = byte(padLen)
	}
	return padded
}

// pkcs7Unpad validates and strips PKCS#7 padding.
// Any inconsistency means the key/IV did not correspond to the ciphertext.
func pkcs7Unpad(data []byte, blockSize int) ([]byte, error) {
	if len(data) == 0 || len(data)%blockSize != 0 {
		return nil, fmt.Errorf("%w: length %d", ErrInvalidCiphertext, len(data))
	}
	padLen := int(data[len(data)-1])
	if padLen == 0 || padLen > blockSize {
		return nil, ErrDecryptionFailed
	}
	for _, b := range data[len(data)-padLen:] {
		if int(b) != padLen {
			return nil, ErrDecryptionFailed
		}
	}
	return data[:len(data)-padLen], nil
}
