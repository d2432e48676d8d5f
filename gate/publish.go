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

// TermsOpts are the sale terms attached to gated content.
type TermsOpts struct {
	SettlementAsset identity.ID
	UnitPrice       uint64
	GoalCount       uint64
	MaxCount        uint64 // 0 means unbounded
}

// PublishOpts holds options for the Publish operation.
type PublishOpts struct {
	// Plaintext is the file content to gate.
	Plaintext []byte

	// ContentID optionally fixes the content identifier. Zero means a
	// fresh random identifier.
	ContentID identity.ID

	Title       string
	Filename    string
	Description string
	Cover       string
	Links       []string

	// CustodyURL names the key custody endpoint recorded in the metadata
	// document. Empty falls back to the client default at purchase time.
	CustodyURL string

	// Tier is the ownership tier. TierPublished requires Terms;
	// TierPrivate and TierPublic forbid them.
	Tier ledger.Tier

	// Terms is the economic contract for TierPublished content.
	Terms *TermsOpts

	// SealPassphrase, when non-empty and the engine has a key store,
	// escrows the key bundle sealed under this passphrase.
	SealPassphrase string
}

// PublishResult is the output of a publish operation.
type PublishResult struct {
	ContentID       identity.ID
	BlobPointer     store.Pointer
	MetadataPointer store.Pointer

	// Bundle is the decryption key material. This is the only time the
	// engine surfaces it; the caller must deliver it to the custody
	// service out of band.
	Bundle *filecrypt.Bundle

	// CreateTxID is the ledger transaction that created the content record.
	CreateTxID string

	// TermsTxID is the ledger transaction that published the sale terms.
	// Empty for ungated tiers.
	TermsTxID string
}

// Publish encrypts the plaintext, uploads the blob and the metadata
// document, and creates the ledger records. The returned bundle is
// surfaced exactly once.
func (e *Engine) Publish(ctx context.Context, opts *PublishOpts) (*PublishResult, error) {
	if len(opts.Plaintext) == 0 {
		return nil, ErrEmptyPlaintext
	}
	switch opts.Tier {
	case ledger.TierPublished:
		if opts.Terms == nil {
			return nil, ErrTermsRequired
		}
	case ledger.TierPrivate, ledger.TierPublic:
		if opts.Terms != nil {
			return nil, ErrTermsForbidden
		}
	default:
		return nil, fmt.Errorf("gate: invalid tier %d", opts.Tier)
	}

	contentID := opts.ContentID
	if contentID.IsZero() {
		var err error
		contentID, err = identity.NewContentID()
		if err != nil {
			return nil, fmt.Errorf("gate: generate content id: %w", err)
		}
	} else {
		// Caller-chosen identifiers can collide with existing content.
		_, err := e.Ledger.GetContentRecord(ctx, pda.ContentAddress(contentID))
		if err == nil {
			return nil, fmt.Errorf("%w: %s", ErrAlreadyPublished, contentID)
		}
		if !errors.Is(err, ledger.ErrRecordNotFound) {
			return nil, fmt.Errorf("gate: check existing record: %w", err)
		}
	}

	log := e.log().With("content_id", contentID.String())
	log.Debug("publishing content", "tier", opts.Tier.String(), "size", len(opts.Plaintext))

	result, err := filecrypt.Encrypt(opts.Plaintext)
	if err != nil {
		return nil, fmt.Errorf("gate: encrypt: %w", err)
	}

	blobPtr, err := e.Store.Upload(ctx, result.Ciphertext, opts.Filename)
	if err != nil {
		return nil, fmt.Errorf("gate: upload blob: %w", err)
	}
	log.Debug("blob uploaded", "pointer", string(blobPtr))

	meta := &ContentMetadata{
		ContentID:   contentID,
		Title:       opts.Title,
		Filename:    opts.Filename,
		Description: opts.Description,
		Cover:       opts.Cover,
		Links:       opts.Links,
		CustodyURL:  opts.CustodyURL,
	}
	metaDoc, err := encodeMetadata(meta)
	if err != nil {
		return nil, err
	}
	metaPtr, err := e.Store.Upload(ctx, metaDoc, opts.Filename+".meta.json")
	if err != nil {
		return nil, fmt.Errorf("gate: upload metadata: %w", err)
	}

	createReceipt, err := e.Ledger.Submit(ctx, e.Signer, ledger.CreateContent{
		ContentID:       contentID,
		BlobPointer:     string(blobPtr),
		MetadataPointer: string(metaPtr),
		Tier:            opts.Tier,
	})
	if err != nil {
		return nil, fmt.Errorf("gate: create content record: %w", err)
	}
	log.Info("content record created", "txid", createReceipt.TxID)

	out := &PublishResult{
		ContentID:       contentID,
		BlobPointer:     blobPtr,
		MetadataPointer: metaPtr,
		Bundle:          filecrypt.NewBundle(result),
		CreateTxID:      createReceipt.TxID,
	}

	if opts.Tier == ledger.TierPublished {
		termsReceipt, err := e.Ledger.Submit(ctx, e.Signer, ledger.PublishSaleTerms{
			ContentID:       contentID,
			SettlementAsset: opts.Terms.SettlementAsset,
			UnitPrice:       opts.Terms.UnitPrice,
			GoalCount:       opts.Terms.GoalCount,
			MaxCount:        opts.Terms.MaxCount,
		})
		if err != nil {
			return nil, fmt.Errorf("gate: publish sale terms: %w", err)
		}
		out.TermsTxID = termsReceipt.TxID
		log.Info("sale terms published", "txid", termsReceipt.TxID,
			"unit_price", opts.Terms.UnitPrice, "goal_count", opts.Terms.GoalCount)
	}

	if e.Keys != nil && opts.SealPassphrase != "" {
		if err := e.Keys.Put(contentID, out.Bundle, opts.SealPassphrase); err != nil {
			return nil, fmt.Errorf("gate: escrow key bundle: %w", err)
		}
		log.Debug("key bundle escrowed")
	}

	return out, nil
}
