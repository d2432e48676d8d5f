package identity

import "errors"

var (
	// ErrInvalidID indicates a malformed identifier (bad base58 or wrong length).
	ErrInvalidID = errors.New("identity: invalid identifier")

	// ErrInvalidSeed indicates the ed25519 seed has the wrong length.
	ErrInvalidSeed = errors.New("identity: invalid seed")

	// ErrNoPrivateKey indicates a signing attempt on a public-only identity.
	ErrNoPrivateKey = errors.New("identity: no private key")
)
