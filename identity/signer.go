package identity

// Signer is the signing capability handed to network clients.
// Implementations hold the private key; callers only invoke it.
type Signer interface {
	// PublicID returns the signer's public identifier.
	PublicID() ID

	// Sign signs the message and returns the raw signature bytes.
	Sign(message []byte) ([]byte, error)
}

// KeyPair satisfies Signer.
var _ Signer = (*KeyPair)(nil)
