package gate

import (
	"context"
	"errors"
	"fmt"

	"github.com/poiporg/libpoip-go/identity"
	"github.com/poiporg/libpoip-go/ledger"
	"github.com/poiporg/libpoip-go/pda"
	"github.com/poiporg/libpoip-go/revenue"
)

// WithdrawResult is the output of a proceeds withdrawal.
type WithdrawResult struct {
	// Amount is the asset value withdrawn, projected from the sale terms
	// at submission time.
	Amount uint64
	TxID   string
}

// Withdraw moves the signer's withdrawable proceeds out of the sale
// contract. Returns ErrNothingToWithdraw when all sold units have
// already been withdrawn.
func (e *Engine) Withdraw(ctx context.Context, contentID identity.ID) (*WithdrawResult, error) {
	if _, err := e.ownedRecord(ctx, contentID); err != nil {
		return nil, err
	}

	terms, err := e.saleTerms(ctx, contentID)
	if err != nil {
		return nil, err
	}

	amount := revenue.Withdrawable(terms)
	if amount == 0 {
		return nil, ErrNothingToWithdraw
	}

	receipt, err := e.Ledger.Submit(ctx, e.Signer, ledger.WithdrawProceeds{ContentID: contentID})
	if err != nil {
		return nil, fmt.Errorf("gate: withdraw proceeds: %w", err)
	}

	e.log().Info("proceeds withdrawn",
		"content_id", contentID.String(), "amount", amount, "txid", receipt.TxID)

	return &WithdrawResult{Amount: amount, TxID: receipt.TxID}, nil
}

// ClaimResult is the output of a bonus claim.
type ClaimResult struct {
	// Amount is the asset value claimed, projected from the sale terms
	// and the signer's payment record at submission time.
	Amount uint64
	TxID   string
}

// ClaimBonus pays out the signer's unclaimed share of overfunding
// revenue. The signer must hold a payment record for the content.
// Returns ErrNothingToClaim when the sale has not passed its goal or the
// share was already claimed.
func (e *Engine) ClaimBonus(ctx context.Context, contentID identity.ID) (*ClaimResult, error) {
	if err := pda.Validate(contentID); err != nil {
		return nil, err
	}

	terms, err := e.saleTerms(ctx, contentID)
	if err != nil {
		return nil, err
	}

	buyer := e.Signer.PublicID()
	payment, err := e.Ledger.GetPaymentRecord(ctx, pda.PaymentAddress(contentID, buyer))
	if err != nil {
		if errors.Is(err, ledger.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrNoPaymentRecord, contentID)
		}
		return nil, fmt.Errorf("gate: read payment record: %w", err)
	}

	amount := revenue.ClaimableBonus(terms, payment)
	if amount == 0 {
		return nil, ErrNothingToClaim
	}

	receipt, err := e.Ledger.Submit(ctx, e.Signer, ledger.ClaimBonus{ContentID: contentID})
	if err != nil {
		return nil, fmt.Errorf("gate: claim bonus: %w", err)
	}

	e.log().Info("bonus claimed",
		"content_id", contentID.String(), "amount", amount, "txid", receipt.TxID)

	return &ClaimResult{Amount: amount, TxID: receipt.TxID}, nil
}

// saleTerms reads the sale-terms record for a content identifier.
func (e *Engine) saleTerms(ctx context.Context, contentID identity.ID) (*ledger.SaleTerms, error) {
	terms, err := e.Ledger.GetSaleTerms(ctx, pda.SaleTermsAddress(contentID))
	if err != nil {
		if errors.Is(err, ledger.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrNoSaleTerms, contentID)
		}
		return nil, fmt.Errorf("gate: read sale terms: %w", err)
	}
	return terms, nil
}
