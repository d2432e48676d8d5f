package ledger

import (
	"context"

	"github.com/poiporg/libpoip-go/identity"
)

// MockGateway is a test double for Gateway.
// All function fields must be set before the corresponding method is called.
type MockGateway struct {
	GetContentRecordFn   func(ctx context.Context, addr identity.ID) (*ContentRecord, error)
	GetSaleTermsFn       func(ctx context.Context, addr identity.ID) (*SaleTerms, error)
	GetPaymentRecordFn   func(ctx context.Context, addr identity.ID) (*PaymentRecord, error)
	ListContentRecordsFn func(ctx context.Context) ([]*ContentRecord, error)
	ListPaymentRecordsFn func(ctx context.Context, buyer identity.ID) ([]*PaymentRecord, error)
	SubmitFn             func(ctx context.Context, signer identity.Signer, instr Instruction) (*Receipt, error)
}

var _ Gateway = (*MockGateway)(nil)

func (m *MockGateway) GetContentRecord(ctx context.Context, addr identity.ID) (*ContentRecord, error) {
	return m.GetContentRecordFn(ctx, addr)
}
func (m *MockGateway) GetSaleTerms(ctx context.Context, addr identity.ID) (*SaleTerms, error) {
	return m.GetSaleTermsFn(ctx, addr)
}
func (m *MockGateway) GetPaymentRecord(ctx context.Context, addr identity.ID) (*PaymentRecord, error) {
	return m.GetPaymentRecordFn(ctx, addr)
}
func (m *MockGateway) ListContentRecords(ctx context.Context) ([]*ContentRecord, error) {
	return m.ListContentRecordsFn(ctx)
}
func (m *MockGateway) ListPaymentRecords(ctx context.Context, buyer identity.ID) ([]*PaymentRecord, error) {
	return m.ListPaymentRecordsFn(ctx, buyer)
}
func (m *MockGateway) Submit(ctx context.Context, signer identity.Signer, instr Instruction) (*Receipt, error) {
	return m.SubmitFn(ctx, signer, instr)
}
