package ledger

import (
	"encoding/json"
	"fmt"
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

func envelope(t *testing.T, kind string, data any) json.RawMessage {
	t.Helper()
	payload, err := json.Marshal(data)
	require.NoError(t, err)
	raw, err := json.Marshal(accountEnvelope{Kind: kind, Data: payload})
	require.NoError(t, err)
	return raw
}

func TestDecodeContentRecord(t *testing.T) {
	rec := &ContentRecord{
		ContentID:       makeID(0x01),
		Owner:           makeID(0x02),
		BlobPointer:     "https://gateway.example/ipfs/QmBlob",
		MetadataPointer: "https://gateway.example/ipfs/QmMeta",
		Tier:            TierPublished,
	}

	decoded, err := decodeContentRecord(envelope(t, kindContent, rec))
	require.NoError(t, err)
	assert.Equal(t, rec, decoded)
}

func TestDecodeContentRecord_Invalid(t *testing.T) {
	valid := ContentRecord{
		ContentID:   makeID(0x01),
		Owner:       makeID(0x02),
		BlobPointer: "ptr",
		Tier:        TierPublic,
	}

	tests := []struct {
		name   string
		mutate func(*ContentRecord)
	}{
		{"zero content id", func(r *ContentRecord) { r.ContentID = identity.ID{} }},
		{"zero owner", func(r *ContentRecord) { r.Owner = identity.ID{} }},
		{"invalid tier", func(r *ContentRecord) { r.Tier = 99 }},
		{"empty blob pointer", func(r *ContentRecord) { r.BlobPointer = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := valid
			tt.mutate(&rec)
			_, err := decodeContentRecord(envelope(t, kindContent, &rec))
			assert.ErrorIs(t, err, ErrMalformedAccount)
		})
	}
}

func TestDecodeSaleTerms_Invariants(t *testing.T) {
	tests := []struct {
		name    string
		terms   SaleTerms
		wantErr bool
	}{
		{"unbounded cap", SaleTerms{ContentID: makeID(0x01), SoldCount: 1000, MaxCount: 0}, false},
		{"at cap", SaleTerms{ContentID: makeID(0x01), SoldCount: 10, MaxCount: 10}, false},
		{"sold exceeds cap", SaleTerms{ContentID: makeID(0x01), SoldCount: 11, MaxCount: 10}, true},
		{"withdrawn exceeds sold", SaleTerms{ContentID: makeID(0x01), SoldCount: 5, WithdrawnCount: 6}, true},
		{"zero content id", SaleTerms{SoldCount: 1}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := decodeSaleTerms(envelope(t, kindSaleTerms, &tt.terms))
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrMalformedAccount)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSaleTerms_SoldOut(t *testing.T) {
	assert.False(t, (&SaleTerms{SoldCount: 1000, MaxCount: 0}).SoldOut(), "zero cap means unbounded")
	assert.False(t, (&SaleTerms{SoldCount: 9, MaxCount: 10}).SoldOut())
	assert.True(t, (&SaleTerms{SoldCount: 10, MaxCount: 10}).SoldOut())
}

func TestDecode_KindMismatch(t *testing.T) {
	terms := &SaleTerms{ContentID: makeID(0x01), UnitPrice: 100}
	raw := envelope(t, kindSaleTerms, terms)

	_, err := decodeContentRecord(raw)
	assert.ErrorIs(t, err, ErrMalformedAccount)

	_, err = decodePaymentRecord(raw)
	assert.ErrorIs(t, err, ErrMalformedAccount)
}

func TestDecode_UnknownKind(t *testing.T) {
	raw := envelope(t, "escrow", map[string]string{})
	_, err := decodeContentRecord(raw)
	require.ErrorIs(t, err, ErrMalformedAccount)
	assert.Contains(t, err.Error(), "unknown account kind")
}

func TestDecode_GarbageEnvelope(t *testing.T) {
	_, err := decodeSaleTerms(json.RawMessage(`{not json`))
	assert.ErrorIs(t, err, ErrMalformedAccount)

	_, err = decodePaymentRecord(json.RawMessage(`{"kind":"payment"}`))
	assert.ErrorIs(t, err, ErrMalformedAccount)
}

func TestTier_String(t *testing.T) {
	assert.Equal(t, "PRIVATE", TierPrivate.String())
	assert.Equal(t, "PUBLISHED", TierPublished.String())
	assert.Equal(t, "PUBLIC", TierPublic.String())
	assert.Equal(t, "UNKNOWN", Tier(0).String())
}

func TestInstruction_Validate(t *testing.T) {
	contentID := makeID(0x01)
	asset := makeID(0x05)

	tests := []struct {
		instr   Instruction
		wantErr bool
	}{
		{CreateContent{ContentID: contentID, BlobPointer: "b", MetadataPointer: "m", Tier: TierPublished}, false},
		{CreateContent{BlobPointer: "b", MetadataPointer: "m", Tier: TierPublished}, true},
		{CreateContent{ContentID: contentID, MetadataPointer: "m", Tier: TierPublished}, true},
		{CreateContent{ContentID: contentID, BlobPointer: "b", Tier: TierPublished}, true},
		{CreateContent{ContentID: contentID, BlobPointer: "b", MetadataPointer: "m", Tier: 9}, true},
		{UpdateContentPointer{ContentID: contentID, NewPointer: "p"}, false},
		{UpdateContentPointer{ContentID: contentID}, true},
		{UpdateMetadataPointer{ContentID: contentID, NewPointer: "p"}, false},
		{UpdateMetadataPointer{NewPointer: "p"}, true},
		{DeleteContent{ContentID: contentID}, false},
		{DeleteContent{}, true},
		{PublishSaleTerms{ContentID: contentID, SettlementAsset: asset, UnitPrice: 100, GoalCount: 5}, false},
		{PublishSaleTerms{ContentID: contentID, SettlementAsset: asset, UnitPrice: 100, GoalCount: 5, MaxCount: 4}, true},
		{PublishSaleTerms{ContentID: contentID, SettlementAsset: asset, GoalCount: 5}, true},
		{PublishSaleTerms{ContentID: contentID, SettlementAsset: asset, UnitPrice: 100}, true},
		{PublishSaleTerms{ContentID: contentID, UnitPrice: 100, GoalCount: 5}, true},
		{SubmitPayment{ContentID: contentID}, false},
		{SubmitPayment{}, true},
		{WithdrawProceeds{ContentID: contentID}, false},
		{WithdrawProceeds{}, true},
		{ClaimBonus{ContentID: contentID}, false},
		{ClaimBonus{}, true},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s/%v", tt.instr.Method(), tt.wantErr), func(t *testing.T) {
			err := tt.instr.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidInstruction)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSigningBytes_BindsRef(t *testing.T) {
	instr := SubmitPayment{ContentID: makeID(0x01)}

	a, err := signingBytes(instr, "ref-1")
	require.NoError(t, err)
	b, err := signingBytes(instr, "ref-2")
	require.NoError(t, err)
	assert.NotEqual(t, a, b, "signing bytes must bind the submission reference")

	again, err := signingBytes(instr, "ref-1")
	require.NoError(t, err)
	assert.Equal(t, a, again)
}
