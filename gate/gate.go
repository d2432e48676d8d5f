// Package gate is the orchestration layer for publishing and purchasing
// ledger-gated encrypted content. It composes the lower layers — file
// encryption, address derivation, the ledger gateway, the blob store, and
// the key custody client — into the end-to-end flows a client application
// calls.
package gate

import (
	"io"
	"log/slog"

	"github.com/poiporg/libpoip-go/custody"
	"github.com/poiporg/libpoip-go/identity"
	"github.com/poiporg/libpoip-go/keystore"
	"github.com/poiporg/libpoip-go/ledger"
	"github.com/poiporg/libpoip-go/store"
)

// Engine holds the collaborators for the publish and purchase flows.
// All fields except Keys are required.
type Engine struct {
	// Ledger reads accounts and submits signed instructions.
	Ledger ledger.Gateway

	// Store uploads and fetches encrypted blobs and metadata documents.
	Store store.Store

	// Custody requests decryption keys with signed challenges.
	Custody *custody.Client

	// Signer is the acting identity: publisher in publish flows, buyer in
	// purchase flows.
	Signer identity.Signer

	// Keys optionally escrows sealed key bundles for published content.
	// Nil disables escrow.
	Keys *keystore.BoltStore

	// DefaultCustodyURL is used when content metadata does not name a
	// custody endpoint.
	DefaultCustodyURL string

	// Log receives structured flow logging. Nil discards.
	Log *slog.Logger
}

// New creates an Engine over the given collaborators with logging discarded.
func New(gw ledger.Gateway, st store.Store, cc *custody.Client, signer identity.Signer) *Engine {
	return &Engine{
		Ledger:  gw,
		Store:   st,
		Custody: cc,
		Signer:  signer,
		Log:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func (e *Engine) log() *slog.Logger {
	if e.Log != nil {
		return e.Log
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// custodyURL picks the metadata's custody endpoint, falling back to the
// engine default.
func (e *Engine) custodyURL(meta *ContentMetadata) string {
	if meta != nil && meta.CustodyURL != "" {
		return meta.CustodyURL
	}
	return e.DefaultCustodyURL
}
