// Package custody implements the client side of the key custody protocol:
// a buyer proves control of their purchasing identity by signing a
// per-content challenge message, and the custody service releases the
// decryption key bundle after checking the purchase on the ledger.
package custody

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/mr-tron/base58"

	"github.com/poiporg/libpoip-go/filecrypt"
	"github.com/poiporg/libpoip-go/identity"
)

// ChallengeMessage returns the canonical challenge a buyer signs to
// request the decryption key for a piece of content. Both sides must
// build the exact same string.
func ChallengeMessage(contentID identity.ID) string {
	return "Requesting decryption key for content: " + contentID.String()
}

// Client talks to a key custody service over HTTP.
type Client struct {
	// HTTPClient is used for all requests; nil uses a 30-second timeout
	// default.
	HTTPClient *http.Client
}

// NewClient creates a Client with a 30-second HTTP timeout.
func NewClient() *Client {
	return &Client{
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return &http.Client{Timeout: 30 * time.Second}
}

// decryptRequest is the body of POST {custody}/decrypt.
type decryptRequest struct {
	Identity  string `json:"identity"`
	Signature string `json:"signature"`
	Message   string `json:"message"`
	ContentID string `json:"content_id"`
}

// decryptResponse is the custody service's key release answer.
type decryptResponse struct {
	Key string `json:"key"`
	IV  string `json:"iv"`
}

// pingRequest is the body of POST {custody}/ping.
type pingRequest struct {
	ContentID string `json:"content_id"`
}

// RequestKey signs the challenge for contentID with the given signer and
// asks the custody service at custodyURL to release the key bundle.
// Returns ErrKeyDenied when the service refuses (no purchase on record,
// signature rejected) and ErrUnavailable on transport failures.
func (c *Client) RequestKey(ctx context.Context, custodyURL string, contentID identity.ID, signer identity.Signer) (*filecrypt.Bundle, error) {
	if custodyURL == "" {
		return nil, ErrInvalidURL
	}

	message := ChallengeMessage(contentID)
	sig, err := signer.Sign([]byte(message))
	if err != nil {
		return nil, fmt.Errorf("custody: sign challenge: %w", err)
	}

	reqBody := decryptRequest{
		Identity:  signer.PublicID().String(),
		Signature: base58.Encode(sig),
		Message:   message,
		ContentID: contentID.String(),
	}

	var resp decryptResponse
	if err := c.post(ctx, strings.TrimRight(custodyURL, "/")+"/decrypt", reqBody, &resp); err != nil {
		return nil, err
	}

	if resp.Key == "" || resp.IV == "" {
		return nil, fmt.Errorf("%w: missing key material", ErrInvalidResponse)
	}

	bundle := &filecrypt.Bundle{Key: resp.Key, IV: resp.IV}
	// Reject bundles the service cannot have derived from real key
	// material before handing them to the caller.
	if _, _, err := bundle.Materialize(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidResponse, err)
	}

	return bundle, nil
}

// Ping probes the custody service for liveness and knowledge of the
// given content. Returns ErrUnavailable when the probe fails.
func (c *Client) Ping(ctx context.Context, custodyURL string, contentID identity.ID) error {
	if custodyURL == "" {
		return ErrInvalidURL
	}

	reqBody := pingRequest{ContentID: contentID.String()}
	return c.post(ctx, strings.TrimRight(custodyURL, "/")+"/ping", reqBody, nil)
}

// post sends a JSON POST and decodes the response into out (nil skips
// decoding). Non-2xx statuses map to ErrKeyDenied (401/403) or
// ErrUnavailable.
func (c *Client) post(ctx context.Context, url string, in, out any) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("custody: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidURL, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return fmt.Errorf("%w: HTTP %d", ErrKeyDenied, resp.StatusCode)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return fmt.Errorf("%w: HTTP %d", ErrUnavailable, resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode body: %w", ErrInvalidResponse, err)
	}
	return nil
}
