// Package pda derives deterministic ledger account addresses from content
// identifiers. The system is indexless: knowledge of a content identifier is
// sufficient to locate its content record, its sale-terms record, and any
// buyer's payment record, with no registry lookups and no network access.
//
// Derivation is a domain-separated SHA-256 over a scheme prefix, a role tag,
// and the role's seeds:
//
//	address = SHA256(prefix || role || seed_1 || ... || seed_n)
//
// Payment addresses seed on the sale-terms address rather than the raw
// content identifier, so the full account family remains reachable through a
// single derivation chain.
package pda

import (
	"crypto/sha256"
	"fmt"

	"github.com/poiporg/libpoip-go/identity"
)

// prefix domain-separates poip account derivation from any other use of
// SHA-256 over the same seed material.
const prefix = "poip-account-v1"

// Role tags an account's position in the content family.
type Role string

const (
	// RoleContent is the content record: pointers, owner, ownership tier.
	RoleContent Role = "content"

	// RoleSaleTerms is the economic contract attached to a content item.
	RoleSaleTerms Role = "sale-terms"

	// RolePayment is a per-buyer proof-of-purchase record.
	RolePayment Role = "payment"
)

// Validate rejects malformed derivation inputs before any address math.
// A zero-valued identifier is a caller error, never a derivable input.
func Validate(contentID identity.ID) error {
	if contentID.IsZero() {
		return fmt.Errorf("%w: zero content identifier", ErrInvalidSeed)
	}
	return nil
}

// ContentAddress derives the content record address for a content identifier.
func ContentAddress(contentID identity.ID) identity.ID {
	return derive(RoleContent, contentID[:])
}

// SaleTermsAddress derives the sale-terms record address for a content
// identifier.
func SaleTermsAddress(contentID identity.ID) identity.ID {
	return derive(RoleSaleTerms, contentID[:])
}

// PaymentAddress derives the payment record address for a (buyer, content)
// pair. Seeds are the buyer identity and the sale-terms address, keeping the
// family transitively reachable from the content identifier alone.
func PaymentAddress(contentID, buyer identity.ID) identity.ID {
	terms := SaleTermsAddress(contentID)
	return derive(RolePayment, buyer[:], terms[:])
}

// derive computes SHA256(prefix || role || seeds...). Same inputs always
// yield the same output; distinct inputs collide only with SHA-256's
// negligible collision probability.
func derive(role Role, seeds ...[]byte) identity.ID {
	h := sha256.New()
	h.Write([]byte(prefix))
	h.Write([]byte(role))
	for _, seed := range seeds {
		h.Write(seed)
	}
	var addr identity.ID
	copy(addr[:], h.Sum(nil))
	return addr
}
