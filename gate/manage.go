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

// ownedRecord reads the content record and checks the signer owns it.
func (e *Engine) ownedRecord(ctx context.Context, contentID identity.ID) (*ledger.ContentRecord, error) {
	if err := pda.Validate(contentID); err != nil {
		return nil, err
	}
	record, err := e.Ledger.GetContentRecord(ctx, pda.ContentAddress(contentID))
	if err != nil {
		if errors.Is(err, ledger.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, contentID)
		}
		return nil, fmt.Errorf("gate: read content record: %w", err)
	}
	if !record.Owner.Equal(e.Signer.PublicID()) {
		return nil, fmt.Errorf("%w: owner %s", ErrNotOwner, record.Owner)
	}
	return record, nil
}

// UpdateResult is the output of a content or metadata update.
type UpdateResult struct {
	NewPointer store.Pointer
	TxID       string

	// Bundle is the fresh key material after a content update, surfaced
	// once. Nil for metadata-only updates.
	Bundle *filecrypt.Bundle
}

// UpdateContent replaces the encrypted blob behind a content record.
// The plaintext is re-encrypted under fresh key material; the custody
// service needs the new bundle before buyers can decrypt again.
func (e *Engine) UpdateContent(ctx context.Context, contentID identity.ID, plaintext []byte, sealPassphrase string) (*UpdateResult, error) {
	if len(plaintext) == 0 {
		return nil, ErrEmptyPlaintext
	}
	record, err := e.ownedRecord(ctx, contentID)
	if err != nil {
		return nil, err
	}

	result, err := filecrypt.Encrypt(plaintext)
	if err != nil {
		return nil, fmt.Errorf("gate: encrypt: %w", err)
	}

	blobPtr, err := e.Store.Upload(ctx, result.Ciphertext, contentID.String()+".bin")
	if err != nil {
		return nil, fmt.Errorf("gate: upload blob: %w", err)
	}

	receipt, err := e.Ledger.Submit(ctx, e.Signer, ledger.UpdateContentPointer{
		ContentID:  contentID,
		NewPointer: string(blobPtr),
	})
	if err != nil {
		return nil, fmt.Errorf("gate: update content pointer: %w", err)
	}

	bundle := filecrypt.NewBundle(result)
	if e.Keys != nil && sealPassphrase != "" {
		if err := e.Keys.Put(contentID, bundle, sealPassphrase); err != nil {
			return nil, fmt.Errorf("gate: escrow key bundle: %w", err)
		}
	}

	// Best-effort cleanup of the superseded blob.
	_ = e.Store.Delete(ctx, store.Pointer(record.BlobPointer))

	e.log().Info("content updated",
		"content_id", contentID.String(), "txid", receipt.TxID)

	return &UpdateResult{NewPointer: blobPtr, TxID: receipt.TxID, Bundle: bundle}, nil
}

// UpdateMetadata rewrites the public metadata document. The mutate
// callback receives the current document and edits it in place; the
// content identifier cannot change.
func (e *Engine) UpdateMetadata(ctx context.Context, contentID identity.ID, mutate func(*ContentMetadata)) (*UpdateResult, error) {
	record, err := e.ownedRecord(ctx, contentID)
	if err != nil {
		return nil, err
	}

	metaDoc, err := e.Store.Fetch(ctx, store.Pointer(record.MetadataPointer))
	if err != nil {
		return nil, fmt.Errorf("gate: fetch metadata: %w", err)
	}
	meta, err := decodeMetadata(metaDoc)
	if err != nil {
		return nil, err
	}

	mutate(meta)
	meta.ContentID = contentID

	newDoc, err := encodeMetadata(meta)
	if err != nil {
		return nil, err
	}
	metaPtr, err := e.Store.Upload(ctx, newDoc, meta.Filename+".meta.json")
	if err != nil {
		return nil, fmt.Errorf("gate: upload metadata: %w", err)
	}

	receipt, err := e.Ledger.Submit(ctx, e.Signer, ledger.UpdateMetadataPointer{
		ContentID:  contentID,
		NewPointer: string(metaPtr),
	})
	if err != nil {
		return nil, fmt.Errorf("gate: update metadata pointer: %w", err)
	}

	_ = e.Store.Delete(ctx, store.Pointer(record.MetadataPointer))

	e.log().Info("metadata updated",
		"content_id", contentID.String(), "txid", receipt.TxID)

	return &UpdateResult{NewPointer: metaPtr, TxID: receipt.TxID}, nil
}

// Delete removes a content record from the ledger and, best effort, the
// stored blob, metadata document, and any escrowed key bundle.
func (e *Engine) Delete(ctx context.Context, contentID identity.ID) (string, error) {
	record, err := e.ownedRecord(ctx, contentID)
	if err != nil {
		return "", err
	}

	receipt, err := e.Ledger.Submit(ctx, e.Signer, ledger.DeleteContent{ContentID: contentID})
	if err != nil {
		return "", fmt.Errorf("gate: delete content record: %w", err)
	}

	_ = e.Store.Delete(ctx, store.Pointer(record.BlobPointer))
	if record.MetadataPointer != "" {
		_ = e.Store.Delete(ctx, store.Pointer(record.MetadataPointer))
	}
	if e.Keys != nil {
		_ = e.Keys.Delete(contentID)
	}

	e.log().Info("content deleted",
		"content_id", contentID.String(), "txid", receipt.TxID)

	return receipt.TxID, nil
}
