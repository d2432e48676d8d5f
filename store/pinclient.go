package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"
)

// MaxBlobResponseSize is the maximum allowed response body size for blob
// fetches (1 GB). This prevents memory exhaustion from malicious gateways.
const MaxBlobResponseSize = 1 << 30

// PinClient implements Store against a pinning service: uploads go to the
// service API as multipart form posts, fetches go through a public gateway
// by content hash.
type PinClient struct {
	// APIURL is the pinning service base URL, e.g. "https://api.pinata.cloud".
	APIURL string

	// GatewayURL is the public gateway base URL used for fetches,
	// e.g. "https://gateway.pinata.cloud/ipfs".
	GatewayURL string

	// Token is the bearer token for the pinning service API.
	Token string

	// Client is the HTTP client; nil uses a 30-second timeout default.
	Client *http.Client
}

// NewPinClient creates a PinClient with a 30-second HTTP timeout.
func NewPinClient(apiURL, gatewayURL, token string) *PinClient {
	return &PinClient{
		APIURL:     strings.TrimRight(apiURL, "/"),
		GatewayURL: strings.TrimRight(gatewayURL, "/"),
		Token:      token,
		Client:     &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *PinClient) httpClient() *http.Client {
	if c.Client != nil {
		return c.Client
	}
	return &http.Client{Timeout: 30 * time.Second}
}

// pinResponse is the pinning service's upload response.
type pinResponse struct {
	Hash string `json:"IpfsHash"`
}

// Upload pins data under the given filename and returns a pointer that
// resolves through the configured gateway.
func (c *PinClient) Upload(ctx context.Context, data []byte, filename string) (Pointer, error) {
	if len(data) == 0 {
		return "", ErrEmptyContent
	}
	if filename == "" {
		filename = "blob"
	}

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("file", filename)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrUploadFailed, err)
	}
	if _, err := part.Write(data); err != nil {
		return "", fmt.Errorf("%w: %w", ErrUploadFailed, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("%w: %w", ErrUploadFailed, err)
	}

	url := c.APIURL + "/pinning/pinFileToIPFS"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &body)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrUploadFailed, err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+c.Token)

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrUploadFailed, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: HTTP %d", ErrUploadFailed, resp.StatusCode)
	}

	var pr pinResponse
	if err := json.NewDecoder(resp.Body).Decode(&pr); err != nil {
		return "", fmt.Errorf("%w: decode response: %w", ErrUploadFailed, err)
	}
	if pr.Hash == "" {
		return "", fmt.Errorf("%w: empty hash in response", ErrUploadFailed)
	}

	return Pointer(c.GatewayURL + "/" + pr.Hash), nil
}

// Fetch retrieves the blob at the pointer via HTTP GET.
func (c *PinClient) Fetch(ctx context.Context, ptr Pointer) ([]byte, error) {
	if ptr == "" {
		return nil, ErrInvalidPointer
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, string(ptr), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidPointer, err)
	}

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetchFailed, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: HTTP %d", ErrFetchFailed, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxBlobResponseSize))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %w", ErrFetchFailed, err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty response", ErrFetchFailed)
	}

	return data, nil
}

// Delete unpins the blob at the pointer. The pin hash is the final path
// segment of the pointer.
func (c *PinClient) Delete(ctx context.Context, ptr Pointer) error {
	if ptr == "" {
		return ErrInvalidPointer
	}
	hash := string(ptr)
	if i := strings.LastIndexByte(hash, '/'); i >= 0 {
		hash = hash[i+1:]
	}
	if hash == "" {
		return ErrInvalidPointer
	}

	url := c.APIURL + "/pinning/unpin/" + hash
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, url, nil)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidPointer, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.Token)

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrFetchFailed, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: HTTP %d", ErrFetchFailed, resp.StatusCode)
	}

	return nil
}
