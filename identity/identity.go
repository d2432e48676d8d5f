// Package identity implements ed25519 identities and the fixed-size public
// identifiers used throughout libpoip: wallet identities, content identifiers,
// and derived ledger account addresses all share the same 32-byte ID form,
// rendered as base58 text.
package identity

import (
	"crypto/ed25519"
	"crypto/rand"
	"fmt"

	"github.com/mr-tron/base58"
)

// IDLen is the length of a public identifier in bytes.
const IDLen = 32

// ID is a fixed-size public identifier. It names an identity, a piece of
// content, or a derived ledger account, independent of any key material.
type ID [IDLen]byte

// ParseID decodes a base58 string into an ID.
// The decoded form must be exactly IDLen bytes.
func ParseID(s string) (ID, error) {
	var id ID
	if s == "" {
		return id, fmt.Errorf("%w: empty string", ErrInvalidID)
	}
	raw, err := base58.Decode(s)
	if err != nil {
		return id, fmt.Errorf("%w: %w", ErrInvalidID, err)
	}
	if len(raw) != IDLen {
		return id, fmt.Errorf("%w: decoded length %d, want %d", ErrInvalidID, len(raw), IDLen)
	}
	copy(id[:], raw)
	return id, nil
}

// IDFromBytes constructs an ID from a raw 32-byte slice.
func IDFromBytes(b []byte) (ID, error) {
	var id ID
	if len(b) != IDLen {
		return id, fmt.Errorf("%w: length %d, want %d", ErrInvalidID, len(b), IDLen)
	}
	copy(id[:], b)
	return id, nil
}

// String returns the base58 text form.
func (id ID) String() string {
	return base58.Encode(id[:])
}

// Bytes returns a copy of the raw identifier bytes.
func (id ID) Bytes() []byte {
	b := make([]byte, IDLen)
	copy(b, id[:])
	return b
}

// IsZero reports whether the ID is the all-zero value.
func (id ID) IsZero() bool {
	return id == ID{}
}

// Equal reports whether two IDs are identical.
func (id ID) Equal(other ID) bool {
	return id == other
}

// MarshalText implements encoding.TextMarshaler (base58).
func (id ID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (id *ID) UnmarshalText(text []byte) error {
	parsed, err := ParseID(string(text))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// NewContentID generates a fresh random content identifier.
// Content identifiers are not keys; they only need to be unique.
func NewContentID() (ID, error) {
	var id ID
	if _, err := rand.Read(id[:]); err != nil {
		return id, fmt.Errorf("identity: generate content id: %w", err)
	}
	return id, nil
}

// KeyPair is an ed25519 identity keypair.
type KeyPair struct {
	pub  ed25519.PublicKey
	priv ed25519.PrivateKey
}

// Generate creates a new random identity keypair.
func Generate() (*KeyPair, error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("identity: generate keypair: %w", err)
	}
	return &KeyPair{pub: pub, priv: priv}, nil
}

// FromSeed derives a keypair from a 32-byte ed25519 seed.
func FromSeed(seed []byte) (*KeyPair, error) {
	if len(seed) != ed25519.SeedSize {
		return nil, fmt.Errorf("%w: seed length %d, want %d", ErrInvalidSeed, len(seed), ed25519.SeedSize)
	}
	priv := ed25519.NewKeyFromSeed(seed)
	return &KeyPair{pub: priv.Public().(ed25519.PublicKey), priv: priv}, nil
}

// PublicID returns the 32-byte identifier for this keypair's public key.
func (kp *KeyPair) PublicID() ID {
	var id ID
	copy(id[:], kp.pub)
	return id
}

// Sign signs the message with the identity's private key.
func (kp *KeyPair) Sign(message []byte) ([]byte, error) {
	if kp.priv == nil {
		return nil, ErrNoPrivateKey
	}
	return ed25519.Sign(kp.priv, message), nil
}

// Verify checks an ed25519 signature against a public identifier.
func Verify(signer ID, message, sig []byte) bool {
	if len(sig) != ed25519.SignatureSize {
		return false
	}
	return ed25519.Verify(ed25519.PublicKey(signer[:]), message, sig)
}
