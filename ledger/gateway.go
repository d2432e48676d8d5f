package ledger

import (
	"context"

	"github.com/poiporg/libpoip-go/identity"
)

// Gateway is the primary interface for ledger interaction. The purchase
// orchestrator and dashboard layers consume this interface; production code
// uses RPCGateway, tests use MockGateway.
//
// A Gateway is bound to one network endpoint at construction. Switching
// networks means constructing a new Gateway, never mutating a shared one.
type Gateway interface {
	// GetContentRecord reads a content record at a derived address.
	// Returns ErrRecordNotFound if the account does not exist.
	GetContentRecord(ctx context.Context, addr identity.ID) (*ContentRecord, error)

	// GetSaleTerms reads a sale-terms record at a derived address.
	// Returns ErrRecordNotFound if the account does not exist.
	GetSaleTerms(ctx context.Context, addr identity.ID) (*SaleTerms, error)

	// GetPaymentRecord reads a payment record at a derived address.
	// Returns ErrRecordNotFound if the account does not exist — which is
	// the "not yet purchased" outcome, not an error condition.
	GetPaymentRecord(ctx context.Context, addr identity.ID) (*PaymentRecord, error)

	// ListContentRecords enumerates all content records (dashboard use).
	ListContentRecords(ctx context.Context) ([]*ContentRecord, error)

	// ListPaymentRecords enumerates a buyer's payment records (dashboard use).
	ListPaymentRecords(ctx context.Context, buyer identity.ID) ([]*PaymentRecord, error)

	// Submit signs and submits an instruction. The ledger transaction is
	// atomic; a returned error means the instruction did not commit.
	// Program-level rejections surface as *RejectionError.
	Submit(ctx context.Context, signer identity.Signer, instr Instruction) (*Receipt, error)
}

// Receipt is the result of a committed instruction submission.
type Receipt struct {
	// TxID is the ledger transaction identifier.
	TxID string `json:"txid"`

	// Ref is the client-generated submission reference.
	Ref string `json:"ref"`
}
