package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/mr-tron/base58"

	"github.com/poiporg/libpoip-go/identity"
)

// RPCConfig holds the connection parameters for a ledger node's JSON-RPC
// interface.
type RPCConfig struct {
	URL      string        `json:"url"`
	User     string        `json:"user"`
	Password string        `json:"password"`
	Timeout  time.Duration `json:"timeout"`
}

// defaultRPCTimeout bounds every ledger call; network waits fail visibly
// rather than hang.
const defaultRPCTimeout = 30 * time.Second

// RPCGateway is a JSON-RPC 1.0 client implementing Gateway. It handles
// request serialization, optional Basic Auth, and response parsing, and maps
// program-level rejections to *RejectionError.
type RPCGateway struct {
	url    string
	user   string
	pass   string
	client *http.Client
	nextID atomic.Int64
}

var _ Gateway = (*RPCGateway)(nil)

// NewRPCGateway creates a ledger gateway from explicit configuration.
// The endpoint is fixed for the gateway's lifetime.
func NewRPCGateway(cfg RPCConfig) *RPCGateway {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultRPCTimeout
	}
	return &RPCGateway{
		url:  cfg.URL,
		user: cfg.User,
		pass: cfg.Password,
		client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        10,
				IdleConnTimeout:     90 * time.Second,
				MaxIdleConnsPerHost: 10,
			},
		},
	}
}

// rpcRequest represents a JSON-RPC 1.0 request payload.
type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      int64  `json:"id"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
}

// rpcResponse represents a JSON-RPC 1.0 response payload.
type rpcResponse struct {
	ID     int64           `json:"id"`
	Result json.RawMessage `json:"result"`
	Error  *rpcError       `json:"error"`
}

// rpcError represents an error returned by the JSON-RPC server.
type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// call invokes a JSON-RPC method on the ledger node. A nil result pointer
// discards the response body. Returns the raw result so callers can
// distinguish a JSON null (absent account) from decode failures.
func (g *RPCGateway) call(ctx context.Context, method string, params []any) (json.RawMessage, error) {
	if params == nil {
		params = []any{}
	}
	reqBody := rpcRequest{
		JSONRPC: "1.0",
		ID:      g.nextID.Add(1),
		Method:  method,
		Params:  params,
	}
	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("ledger: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("ledger: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if g.user != "" {
		req.SetBasicAuth(g.user, g.pass)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("%w: HTTP %d: %s", ErrConnectionFailed, resp.StatusCode, string(respBody))
	}

	var rpcResp rpcResponse
	if err := json.NewDecoder(resp.Body).Decode(&rpcResp); err != nil {
		return nil, fmt.Errorf("%w: decode response: %w", ErrInvalidResponse, err)
	}

	if rpcResp.ID != reqBody.ID {
		return nil, fmt.Errorf("%w: response ID mismatch: expected %d, got %d",
			ErrInvalidResponse, reqBody.ID, rpcResp.ID)
	}

	if rpcResp.Error != nil {
		if rpcResp.Error.Code >= rejectionCodeBase && rpcResp.Error.Code < rejectionCodeBase+1000 {
			return nil, &RejectionError{Code: rpcResp.Error.Code, Name: rpcResp.Error.Message}
		}
		return nil, fmt.Errorf("ledger: rpc error %d: %s", rpcResp.Error.Code, rpcResp.Error.Message)
	}

	return rpcResp.Result, nil
}

// getAccount reads the tagged account envelope at addr.
// A JSON null result maps to ErrRecordNotFound.
func (g *RPCGateway) getAccount(ctx context.Context, addr identity.ID) (json.RawMessage, error) {
	result, err := g.call(ctx, "getaccount", []any{addr.String()})
	if err != nil {
		return nil, err
	}
	if isJSONNull(result) {
		return nil, fmt.Errorf("%w: address %s", ErrRecordNotFound, addr)
	}
	return result, nil
}

// GetContentRecord implements Gateway.
func (g *RPCGateway) GetContentRecord(ctx context.Context, addr identity.ID) (*ContentRecord, error) {
	raw, err := g.getAccount(ctx, addr)
	if err != nil {
		return nil, err
	}
	return decodeContentRecord(raw)
}

// GetSaleTerms implements Gateway.
func (g *RPCGateway) GetSaleTerms(ctx context.Context, addr identity.ID) (*SaleTerms, error) {
	raw, err := g.getAccount(ctx, addr)
	if err != nil {
		return nil, err
	}
	return decodeSaleTerms(raw)
}

// GetPaymentRecord implements Gateway.
func (g *RPCGateway) GetPaymentRecord(ctx context.Context, addr identity.ID) (*PaymentRecord, error) {
	raw, err := g.getAccount(ctx, addr)
	if err != nil {
		return nil, err
	}
	return decodePaymentRecord(raw)
}

// ListContentRecords implements Gateway.
func (g *RPCGateway) ListContentRecords(ctx context.Context) ([]*ContentRecord, error) {
	result, err := g.call(ctx, "listcontent", nil)
	if err != nil {
		return nil, err
	}
	var envelopes []json.RawMessage
	if err := json.Unmarshal(result, &envelopes); err != nil {
		return nil, fmt.Errorf("%w: content list: %w", ErrInvalidResponse, err)
	}
	records := make([]*ContentRecord, 0, len(envelopes))
	for _, env := range envelopes {
		rec, err := decodeContentRecord(env)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

// ListPaymentRecords implements Gateway.
func (g *RPCGateway) ListPaymentRecords(ctx context.Context, buyer identity.ID) ([]*PaymentRecord, error) {
	result, err := g.call(ctx, "listpayments", []any{buyer.String()})
	if err != nil {
		return nil, err
	}
	var envelopes []json.RawMessage
	if err := json.Unmarshal(result, &envelopes); err != nil {
		return nil, fmt.Errorf("%w: payment list: %w", ErrInvalidResponse, err)
	}
	records := make([]*PaymentRecord, 0, len(envelopes))
	for _, env := range envelopes {
		rec, err := decodePaymentRecord(env)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

// signedInstruction is the wire form of an authorized instruction.
type signedInstruction struct {
	Ref       string          `json:"ref"`
	Method    string          `json:"method"`
	Identity  string          `json:"identity"`
	Signature string          `json:"signature"`
	Payload   json.RawMessage `json:"payload"`
}

// Submit implements Gateway. The instruction is validated locally, signed
// over its canonical encoding together with a fresh client reference, and
// submitted as a single atomic ledger transaction.
func (g *RPCGateway) Submit(ctx context.Context, signer identity.Signer, instr Instruction) (*Receipt, error) {
	if err := instr.Validate(); err != nil {
		return nil, err
	}

	ref := uuid.NewString()
	msg, err := signingBytes(instr, ref)
	if err != nil {
		return nil, err
	}
	sig, err := signer.Sign(msg)
	if err != nil {
		return nil, fmt.Errorf("ledger: sign instruction: %w", err)
	}
	payload, err := json.Marshal(instr)
	if err != nil {
		return nil, fmt.Errorf("ledger: marshal instruction: %w", err)
	}

	signed := signedInstruction{
		Ref:       ref,
		Method:    instr.Method(),
		Identity:  signer.PublicID().String(),
		Signature: base58.Encode(sig),
		Payload:   payload,
	}

	result, err := g.call(ctx, "submit", []any{signed})
	if err != nil {
		return nil, err
	}

	var receipt Receipt
	if err := json.Unmarshal(result, &receipt); err != nil {
		return nil, fmt.Errorf("%w: receipt: %w", ErrInvalidResponse, err)
	}
	if receipt.TxID == "" {
		return nil, fmt.Errorf("%w: receipt missing txid", ErrInvalidResponse)
	}
	receipt.Ref = ref
	return &receipt, nil
}

// isJSONNull reports whether raw is absent or the JSON null literal.
func isJSONNull(raw json.RawMessage) bool {
	return len(raw) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
