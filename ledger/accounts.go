// Package ledger defines the typed interface to the trust ledger that hosts
// content records, sale terms, and payment records. The ledger's execution
// engine is an external collaborator: this package only reads accounts at
// derived addresses and submits signed instructions; the program on the
// ledger is the authority that enforces the real invariants at commit time.
package ledger

import (
	"encoding/json"
	"fmt"

	"github.com/poiporg/libpoip-go/identity"
)

// Tier is the ownership tier of a content record.
type Tier uint64

const (
	// TierPrivate is owner-only content; no sale terms apply.
	TierPrivate Tier = 1

	// TierPublished is content gated behind a payment record.
	TierPublished Tier = 2

	// TierPublic is content decryptable without payment.
	TierPublic Tier = 3
)

// String returns a human-readable representation of the tier.
func (t Tier) String() string {
	switch t {
	case TierPrivate:
		return "PRIVATE"
	case TierPublished:
		return "PUBLISHED"
	case TierPublic:
		return "PUBLIC"
	default:
		return "UNKNOWN"
	}
}

// valid reports whether the tier is one of the defined values.
func (t Tier) valid() bool {
	return t == TierPrivate || t == TierPublished || t == TierPublic
}

// ContentRecord is the ledger-resident record for a piece of content.
// Created once by the publisher; pointers are mutable by the owner only.
type ContentRecord struct {
	ContentID       identity.ID `json:"content_id"`
	Owner           identity.ID `json:"owner"`
	BlobPointer     string      `json:"blob_pointer"`
	MetadataPointer string      `json:"metadata_pointer"`
	Tier            Tier        `json:"tier"`
}

func (r *ContentRecord) validate() error {
	if r.ContentID.IsZero() {
		return fmt.Errorf("%w: content record: zero content id", ErrMalformedAccount)
	}
	if r.Owner.IsZero() {
		return fmt.Errorf("%w: content record: zero owner", ErrMalformedAccount)
	}
	if !r.Tier.valid() {
		return fmt.Errorf("%w: content record: tier %d", ErrMalformedAccount, r.Tier)
	}
	if r.BlobPointer == "" {
		return fmt.Errorf("%w: content record: empty blob pointer", ErrMalformedAccount)
	}
	return nil
}

// SaleTerms is the economic contract attached to a content item.
// MaxCount == 0 means unbounded.
type SaleTerms struct {
	ContentID       identity.ID `json:"content_id"`
	SettlementAsset identity.ID `json:"settlement_asset"`
	UnitPrice       uint64      `json:"unit_price"`
	GoalCount       uint64      `json:"goal_count"`
	MaxCount        uint64      `json:"max_count"`
	SoldCount       uint64      `json:"sold_count"`
	WithdrawnCount  uint64      `json:"withdrawn_count"`
}

func (t *SaleTerms) validate() error {
	if t.ContentID.IsZero() {
		return fmt.Errorf("%w: sale terms: zero content id", ErrMalformedAccount)
	}
	if t.MaxCount != 0 && t.SoldCount > t.MaxCount {
		return fmt.Errorf("%w: sale terms: sold %d exceeds cap %d", ErrMalformedAccount, t.SoldCount, t.MaxCount)
	}
	if t.WithdrawnCount > t.SoldCount {
		return fmt.Errorf("%w: sale terms: withdrawn %d exceeds sold %d", ErrMalformedAccount, t.WithdrawnCount, t.SoldCount)
	}
	return nil
}

// SoldOut reports whether the sale cap has been reached.
func (t *SaleTerms) SoldOut() bool {
	return t.MaxCount != 0 && t.SoldCount >= t.MaxCount
}

// PaymentRecord is ledger-resident proof that a buyer purchased a content
// item. Its existence is the proof; absence means not yet purchased.
type PaymentRecord struct {
	ContentID identity.ID `json:"content_id"`
	Buyer     identity.ID `json:"buyer"`
	// BonusUnits is the cumulative bonus already claimed by this buyer,
	// in withdrawal units (converted to asset value at read time).
	BonusUnits uint64 `json:"bonus_units"`
}

func (p *PaymentRecord) validate() error {
	if p.ContentID.IsZero() {
		return fmt.Errorf("%w: payment record: zero content id", ErrMalformedAccount)
	}
	if p.Buyer.IsZero() {
		return fmt.Errorf("%w: payment record: zero buyer", ErrMalformedAccount)
	}
	return nil
}

// Account kind tags used in the read envelope.
const (
	kindContent   = "content"
	kindSaleTerms = "sale-terms"
	kindPayment   = "payment"
)

// accountEnvelope is the tagged wire form of a ledger account read.
type accountEnvelope struct {
	Kind string          `json:"kind"`
	Data json.RawMessage `json:"data"`
}

// decodeContentRecord decodes and validates a content record envelope.
func decodeContentRecord(raw json.RawMessage) (*ContentRecord, error) {
	data, err := envelopeData(raw, kindContent)
	if err != nil {
		return nil, err
	}
	var rec ContentRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("%w: content record: %w", ErrMalformedAccount, err)
	}
	if err := rec.validate(); err != nil {
		return nil, err
	}
	return &rec, nil
}

// decodeSaleTerms decodes and validates a sale-terms envelope.
func decodeSaleTerms(raw json.RawMessage) (*SaleTerms, error) {
	data, err := envelopeData(raw, kindSaleTerms)
	if err != nil {
		return nil, err
	}
	var terms SaleTerms
	if err := json.Unmarshal(data, &terms); err != nil {
		return nil, fmt.Errorf("%w: sale terms: %w", ErrMalformedAccount, err)
	}
	if err := terms.validate(); err != nil {
		return nil, err
	}
	return &terms, nil
}

// decodePaymentRecord decodes and validates a payment record envelope.
func decodePaymentRecord(raw json.RawMessage) (*PaymentRecord, error) {
	data, err := envelopeData(raw, kindPayment)
	if err != nil {
		return nil, err
	}
	var rec PaymentRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("%w: payment record: %w", ErrMalformedAccount, err)
	}
	if err := rec.validate(); err != nil {
		return nil, err
	}
	return &rec, nil
}

// envelopeData unwraps an account envelope, rejecting kind mismatches so a
// record of one kind can never be misread as another.
func envelopeData(raw json.RawMessage, wantKind string) (json.RawMessage, error) {
	var env accountEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("%w: envelope: %w", ErrMalformedAccount, err)
	}
	switch env.Kind {
	case kindContent, kindSaleTerms, kindPayment:
	default:
		return nil, fmt.Errorf("%w: unknown account kind %q", ErrMalformedAccount, env.Kind)
	}
	if env.Kind != wantKind {
		return nil, fmt.Errorf("%w: account kind %q, want %q", ErrMalformedAccount, env.Kind, wantKind)
	}
	if len(env.Data) == 0 {
		return nil, fmt.Errorf("%w: empty account data", ErrMalformedAccount)
	}
	return env.Data, nil
}
