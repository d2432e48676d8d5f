package pda

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiporg/libpoip-go/identity"
)

func makeID(seed byte) identity.ID {
	var id identity.ID
	for i := range id {
		id[i] = seed
	}
	return id
}

func TestDerive_Deterministic(t *testing.T) {
	contentID := makeID(0x01)
	buyer := makeID(0x02)

	assert.Equal(t, ContentAddress(contentID), ContentAddress(contentID))
	assert.Equal(t, SaleTermsAddress(contentID), SaleTermsAddress(contentID))
	assert.Equal(t, PaymentAddress(contentID, buyer), PaymentAddress(contentID, buyer))
}

func TestDerive_RolesDisjoint(t *testing.T) {
	contentID := makeID(0x01)
	buyer := makeID(0x02)

	addrs := []identity.ID{
		ContentAddress(contentID),
		SaleTermsAddress(contentID),
		PaymentAddress(contentID, buyer),
		contentID,
	}
	for i := range addrs {
		for j := i + 1; j < len(addrs); j++ {
			assert.NotEqual(t, addrs[i], addrs[j], "derived addresses must be pairwise distinct")
		}
	}
}

func TestDerive_DistinctContentIDs(t *testing.T) {
	a, err := identity.NewContentID()
	require.NoError(t, err)
	b, err := identity.NewContentID()
	require.NoError(t, err)

	assert.NotEqual(t, ContentAddress(a), ContentAddress(b))
	assert.NotEqual(t, SaleTermsAddress(a), SaleTermsAddress(b))
}

func TestPaymentAddress_PerBuyer(t *testing.T) {
	contentID := makeID(0x01)
	buyerA := makeID(0xAA)
	buyerB := makeID(0xBB)

	assert.NotEqual(t,
		PaymentAddress(contentID, buyerA),
		PaymentAddress(contentID, buyerB),
		"payment addresses are per (buyer, content) pair")

	otherContent := makeID(0x03)
	assert.NotEqual(t,
		PaymentAddress(contentID, buyerA),
		PaymentAddress(otherContent, buyerA))
}

func TestValidate(t *testing.T) {
	assert.NoError(t, Validate(makeID(0x01)))

	var zero identity.ID
	assert.ErrorIs(t, Validate(zero), ErrInvalidSeed)
}
