package gate

import (
	"encoding/json"
	"fmt"

	"github.com/poiporg/libpoip-go/identity"
)

// ContentMetadata is the public metadata document stored next to the
// encrypted blob. It is world-readable: nothing in it may help decrypt
// the content.
type ContentMetadata struct {
	ContentID   identity.ID `json:"content_id"`
	Title       string      `json:"title"`
	Filename    string      `json:"filename"`
	Description string      `json:"description,omitempty"`
	Cover       string      `json:"cover,omitempty"`
	Links       []string    `json:"links,omitempty"`

	// CustodyURL is the key custody service endpoint for this content.
	// Empty means the client's configured default.
	CustodyURL string `json:"custody_url,omitempty"`
}

func (m *ContentMetadata) validate() error {
	if m.ContentID.IsZero() {
		return fmt.Errorf("gate: metadata: zero content id")
	}
	if m.Title == "" {
		return fmt.Errorf("gate: metadata: empty title")
	}
	if m.Filename == "" {
		return fmt.Errorf("gate: metadata: empty filename")
	}
	return nil
}

// encodeMetadata serializes a metadata document for upload.
func encodeMetadata(m *ContentMetadata) ([]byte, error) {
	if err := m.validate(); err != nil {
		return nil, err
	}
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("gate: encode metadata: %w", err)
	}
	return data, nil
}

// decodeMetadata parses a fetched metadata document.
func decodeMetadata(data []byte) (*ContentMetadata, error) {
	var m ContentMetadata
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("gate: decode metadata: %w", err)
	}
	if err := m.validate(); err != nil {
		return nil, err
	}
	return &m, nil
}
