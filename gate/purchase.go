package gate

import (
	"context"
	"errors"
	"fmt"

	"github.com/poiporg/libpoip-go/filecrypt"
	"github.com/poiporg/libpoip-go/identity"
	"github.com/poiporg/libpoip-go/ledger"
	"github.com/poiporg/libpoip-go/pda"
	"github.com/poiporg/libpoip-go/store"
)

// PurchaseResult is the output of a completed purchase flow.
type PurchaseResult struct {
	Plaintext []byte
	Metadata  *ContentMetadata

	// Paid is true when this flow submitted a payment. False means the
	// ledger already held a payment record for the signer, or the content
	// is ungated.
	Paid bool

	// PaymentTxID is the payment transaction identifier when Paid is true.
	PaymentTxID string
}

// Purchase runs the buy-and-decrypt flow for a content identifier:
// resolve the ledger records, probe the custody service, pay if no
// payment record exists yet, fetch the encrypted blob, request the key
// with a signed challenge, and decrypt.
//
// The flow is idempotent over the expensive step: an existing payment
// record skips payment, so a retried flow never pays twice. Failures
// surface as *FlowError naming the step that stopped the flow.
func (e *Engine) Purchase(ctx context.Context, contentID identity.ID) (*PurchaseResult, error) {
	if err := pda.Validate(contentID); err != nil {
		return nil, err
	}
	log := e.log().With("content_id", contentID.String())
	buyer := e.Signer.PublicID()

	// Content lookup: ledger record plus the public metadata document.
	record, err := e.Ledger.GetContentRecord(ctx, pda.ContentAddress(contentID))
	if err != nil {
		if errors.Is(err, ledger.ErrRecordNotFound) {
			return nil, flowErr(StepContentLookup, ReasonNotFound, err)
		}
		return nil, flowErr(StepContentLookup, ReasonContentUnavailable, err)
	}

	metaDoc, err := e.Store.Fetch(ctx, store.Pointer(record.MetadataPointer))
	if err != nil {
		return nil, flowErr(StepContentLookup, ReasonContentUnavailable, err)
	}
	meta, err := decodeMetadata(metaDoc)
	if err != nil {
		return nil, flowErr(StepContentLookup, ReasonContentUnavailable, err)
	}

	if record.Tier == ledger.TierPrivate && !record.Owner.Equal(buyer) {
		return nil, flowErr(StepContentLookup, ReasonNotPurchasable,
			fmt.Errorf("gate: content is private"))
	}

	// Custody probe before any money moves: a dead key service must not
	// cost the buyer a payment they cannot redeem.
	custodyURL := e.custodyURL(meta)
	if err := e.Custody.Ping(ctx, custodyURL, contentID); err != nil {
		return nil, flowErr(StepCustodyPing, ReasonCustodyUnavailable, err)
	}

	result := &PurchaseResult{Metadata: meta}

	if record.Tier == ledger.TierPublished && !record.Owner.Equal(buyer) {
		paymentAddr := pda.PaymentAddress(contentID, buyer)
		_, err := e.Ledger.GetPaymentRecord(ctx, paymentAddr)
		switch {
		case err == nil:
			log.Debug("payment record exists, skipping payment")
		case errors.Is(err, ledger.ErrRecordNotFound):
			receipt, err := e.Ledger.Submit(ctx, e.Signer, ledger.SubmitPayment{ContentID: contentID})
			if err != nil {
				return nil, flowErr(StepPayment, ReasonPaymentRejected, err)
			}
			result.Paid = true
			result.PaymentTxID = receipt.TxID
			log.Info("payment submitted", "txid", receipt.TxID)
		default:
			return nil, flowErr(StepPaymentCheck, ReasonContentUnavailable, err)
		}
	}

	ciphertext, err := e.Store.Fetch(ctx, store.Pointer(record.BlobPointer))
	if err != nil {
		return nil, flowErr(StepContentFetch, ReasonContentUnavailable, err)
	}

	bundle, err := e.Custody.RequestKey(ctx, custodyURL, contentID, e.Signer)
	if err != nil {
		return nil, flowErr(StepKeyRequest, ReasonKeyUnavailable, err)
	}

	plaintext, err := filecrypt.DecryptBundle(ciphertext, bundle)
	if err != nil {
		return nil, flowErr(StepDecrypt, ReasonDecryptionFailed, err)
	}

	result.Plaintext = plaintext
	log.Info("content decrypted", "size", len(plaintext))
	return result, nil
}
