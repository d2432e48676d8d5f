package ledger

import (
	"encoding/json"
	"fmt"

	"github.com/poiporg/libpoip-go/identity"
)

// Instruction is a fully-typed ledger operation request. One struct per
// program instruction, each enumerating exactly its required fields. The
// interface is sealed: only this package's types satisfy it.
type Instruction interface {
	// Method is the wire method name for the instruction.
	Method() string

	// Validate rejects malformed instructions before any network call.
	Validate() error

	sealed()
}

// CreateContent creates a content record. One-time, publisher-only.
type CreateContent struct {
	ContentID       identity.ID `json:"content_id"`
	BlobPointer     string      `json:"blob_pointer"`
	MetadataPointer string      `json:"metadata_pointer"`
	Tier            Tier        `json:"tier"`
}

func (CreateContent) Method() string { return "createcontent" }
func (CreateContent) sealed()        {}

func (in CreateContent) Validate() error {
	if in.ContentID.IsZero() {
		return fmt.Errorf("%w: createcontent: zero content id", ErrInvalidInstruction)
	}
	if in.BlobPointer == "" {
		return fmt.Errorf("%w: createcontent: empty blob pointer", ErrInvalidInstruction)
	}
	if in.MetadataPointer == "" {
		return fmt.Errorf("%w: createcontent: empty metadata pointer", ErrInvalidInstruction)
	}
	if !in.Tier.valid() {
		return fmt.Errorf("%w: createcontent: tier %d", ErrInvalidInstruction, in.Tier)
	}
	return nil
}

// UpdateContentPointer repoints a content record at a new encrypted blob.
// Owner-only.
type UpdateContentPointer struct {
	ContentID  identity.ID `json:"content_id"`
	NewPointer string      `json:"new_pointer"`
}

func (UpdateContentPointer) Method() string { return "updatecontentpointer" }
func (UpdateContentPointer) sealed()        {}

func (in UpdateContentPointer) Validate() error {
	if in.ContentID.IsZero() {
		return fmt.Errorf("%w: updatecontentpointer: zero content id", ErrInvalidInstruction)
	}
	if in.NewPointer == "" {
		return fmt.Errorf("%w: updatecontentpointer: empty pointer", ErrInvalidInstruction)
	}
	return nil
}

// UpdateMetadataPointer repoints a content record at a new metadata document.
// Owner-only.
type UpdateMetadataPointer struct {
	ContentID  identity.ID `json:"content_id"`
	NewPointer string      `json:"new_pointer"`
}

func (UpdateMetadataPointer) Method() string { return "updatemetadatapointer" }
func (UpdateMetadataPointer) sealed()        {}

func (in UpdateMetadataPointer) Validate() error {
	if in.ContentID.IsZero() {
		return fmt.Errorf("%w: updatemetadatapointer: zero content id", ErrInvalidInstruction)
	}
	if in.NewPointer == "" {
		return fmt.Errorf("%w: updatemetadatapointer: empty pointer", ErrInvalidInstruction)
	}
	return nil
}

// DeleteContent removes a content record. Explicit owner-only operation,
// never part of the normal flow.
type DeleteContent struct {
	ContentID identity.ID `json:"content_id"`
}

func (DeleteContent) Method() string { return "deletecontent" }
func (DeleteContent) sealed()        {}

func (in DeleteContent) Validate() error {
	if in.ContentID.IsZero() {
		return fmt.Errorf("%w: deletecontent: zero content id", ErrInvalidInstruction)
	}
	return nil
}

// PublishSaleTerms attaches the economic contract to a content item.
// MaxCount == 0 means unbounded.
type PublishSaleTerms struct {
	ContentID       identity.ID `json:"content_id"`
	SettlementAsset identity.ID `json:"settlement_asset"`
	UnitPrice       uint64      `json:"unit_price"`
	GoalCount       uint64      `json:"goal_count"`
	MaxCount        uint64      `json:"max_count"`
}

func (PublishSaleTerms) Method() string { return "publishsaleterms" }
func (PublishSaleTerms) sealed()        {}

func (in PublishSaleTerms) Validate() error {
	if in.ContentID.IsZero() {
		return fmt.Errorf("%w: publishsaleterms: zero content id", ErrInvalidInstruction)
	}
	if in.SettlementAsset.IsZero() {
		return fmt.Errorf("%w: publishsaleterms: zero settlement asset", ErrInvalidInstruction)
	}
	if in.UnitPrice == 0 {
		return fmt.Errorf("%w: publishsaleterms: zero unit price", ErrInvalidInstruction)
	}
	if in.GoalCount == 0 {
		return fmt.Errorf("%w: publishsaleterms: zero goal count", ErrInvalidInstruction)
	}
	if in.MaxCount != 0 && in.MaxCount < in.GoalCount {
		return fmt.Errorf("%w: publishsaleterms: cap %d below goal %d", ErrInvalidInstruction, in.MaxCount, in.GoalCount)
	}
	return nil
}

// SubmitPayment purchases one unit of a content item for the signer.
// The ledger creates the payment record; at most one exists per
// (buyer, content) pair.
type SubmitPayment struct {
	ContentID identity.ID `json:"content_id"`
}

func (SubmitPayment) Method() string { return "submitpayment" }
func (SubmitPayment) sealed()        {}

func (in SubmitPayment) Validate() error {
	if in.ContentID.IsZero() {
		return fmt.Errorf("%w: submitpayment: zero content id", ErrInvalidInstruction)
	}
	return nil
}

// WithdrawProceeds moves the owner's withdrawable revenue out of the
// contract. Owner-only.
type WithdrawProceeds struct {
	ContentID identity.ID `json:"content_id"`
}

func (WithdrawProceeds) Method() string { return "withdrawproceeds" }
func (WithdrawProceeds) sealed()        {}

func (in WithdrawProceeds) Validate() error {
	if in.ContentID.IsZero() {
		return fmt.Errorf("%w: withdrawproceeds: zero content id", ErrInvalidInstruction)
	}
	return nil
}

// ClaimBonus pays out the signer's share of overfunding revenue.
// Requires an existing payment record.
type ClaimBonus struct {
	ContentID identity.ID `json:"content_id"`
}

func (ClaimBonus) Method() string { return "claimbonus" }
func (ClaimBonus) sealed()        {}

func (in ClaimBonus) Validate() error {
	if in.ContentID.IsZero() {
		return fmt.Errorf("%w: claimbonus: zero content id", ErrInvalidInstruction)
	}
	return nil
}

// signingBytes is the canonical byte string an identity signs to authorize
// an instruction: method, JSON payload, and the client reference, newline
// separated. The reference makes retried submissions distinguishable from
// replays on the server side.
func signingBytes(instr Instruction, ref string) ([]byte, error) {
	payload, err := json.Marshal(instr)
	if err != nil {
		return nil, fmt.Errorf("ledger: marshal instruction: %w", err)
	}
	msg := make([]byte, 0, len(instr.Method())+len(payload)+len(ref)+2)
	msg = append(msg, instr.Method()...)
	msg = append(msg, '\n')
	msg = append(msg, payload...)
	msg = append(msg, '\n')
	msg = append(msg, ref...)
	return msg, nil
}
