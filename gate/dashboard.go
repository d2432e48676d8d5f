package gate

import (
	"context"
	"errors"
	"fmt"

	"github.com/poiporg/libpoip-go/ledger"
	"github.com/poiporg/libpoip-go/pda"
	"github.com/poiporg/libpoip-go/revenue"
)

// PublishedItem is one row of the publisher dashboard: a content record
// with its sale terms and revenue projections.
type PublishedItem struct {
	Record *ledger.ContentRecord
	Terms  *ledger.SaleTerms // nil for ungated content

	// Withdrawable and PotentialBonus are projections from Terms.
	// Zero for ungated content.
	Withdrawable   uint64
	PotentialBonus uint64
}

// ListPublished returns the signer's published content with revenue
// projections attached.
func (e *Engine) ListPublished(ctx context.Context) ([]*PublishedItem, error) {
	records, err := e.Ledger.ListContentRecords(ctx)
	if err != nil {
		return nil, fmt.Errorf("gate: list content records: %w", err)
	}

	owner := e.Signer.PublicID()
	var items []*PublishedItem
	for _, record := range records {
		if !record.Owner.Equal(owner) {
			continue
		}
		item := &PublishedItem{Record: record}

		terms, err := e.Ledger.GetSaleTerms(ctx, pda.SaleTermsAddress(record.ContentID))
		switch {
		case err == nil:
			item.Terms = terms
			item.Withdrawable = revenue.Withdrawable(terms)
			item.PotentialBonus = revenue.PotentialBonus(terms)
		case errors.Is(err, ledger.ErrRecordNotFound):
			// Ungated content has no terms.
		default:
			return nil, fmt.Errorf("gate: read sale terms for %s: %w", record.ContentID, err)
		}

		items = append(items, item)
	}
	return items, nil
}

// PurchaseItem is one row of the buyer dashboard: a payment record with
// the content it bought and the buyer's bonus position.
type PurchaseItem struct {
	Payment *ledger.PaymentRecord
	Record  *ledger.ContentRecord // nil when the publisher deleted the content

	// ClaimableBonus is the buyer's unclaimed overfunding share.
	ClaimableBonus uint64
}

// ListPurchases returns the signer's purchases with bonus projections
// attached. Purchases of since-deleted content keep their payment record
// with a nil content record.
func (e *Engine) ListPurchases(ctx context.Context) ([]*PurchaseItem, error) {
	buyer := e.Signer.PublicID()
	payments, err := e.Ledger.ListPaymentRecords(ctx, buyer)
	if err != nil {
		return nil, fmt.Errorf("gate: list payment records: %w", err)
	}

	var items []*PurchaseItem
	for _, payment := range payments {
		item := &PurchaseItem{Payment: payment}

		record, err := e.Ledger.GetContentRecord(ctx, pda.ContentAddress(payment.ContentID))
		switch {
		case err == nil:
			item.Record = record
		case errors.Is(err, ledger.ErrRecordNotFound):
			// Content deleted after purchase; keep the payment row.
		default:
			return nil, fmt.Errorf("gate: read content record for %s: %w", payment.ContentID, err)
		}

		terms, err := e.Ledger.GetSaleTerms(ctx, pda.SaleTermsAddress(payment.ContentID))
		if err == nil {
			item.ClaimableBonus = revenue.ClaimableBonus(terms, payment)
		} else if !errors.Is(err, ledger.ErrRecordNotFound) {
			return nil, fmt.Errorf("gate: read sale terms for %s: %w", payment.ContentID, err)
		}

		items = append(items, item)
	}
	return items, nil
}
