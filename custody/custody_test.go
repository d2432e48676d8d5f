package custody

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mr-tron/base58"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiporg/libpoip-go/filecrypt"
	"github.com/poiporg/libpoip-go/identity"
)

func TestChallengeMessage(t *testing.T) {
	id, err := identity.NewContentID()
	require.NoError(t, err)

	msg := ChallengeMessage(id)
	assert.Equal(t, "Requesting decryption key for content: "+id.String(), msg)
}

// custodyHandler serves /decrypt with server-side signature verification,
// the way a real custody service would.
func custodyHandler(t *testing.T, contentID identity.ID, bundle *filecrypt.Bundle) http.HandlerFunc {
	t.Helper()
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ping":
			var req pingRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			if req.ContentID != contentID.String() {
				w.WriteHeader(http.StatusNotFound)
				return
			}
			w.WriteHeader(http.StatusOK)

		case "/decrypt":
			var req decryptRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

			buyer, err := identity.ParseID(req.Identity)
			require.NoError(t, err)
			sig, err := base58.Decode(req.Signature)
			require.NoError(t, err)

			if req.Message != ChallengeMessage(contentID) ||
				req.ContentID != contentID.String() ||
				!identity.Verify(buyer, []byte(req.Message), sig) {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			_ = json.NewEncoder(w).Encode(bundle)

		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}
}

func TestRequestKey(t *testing.T) {
	contentID, err := identity.NewContentID()
	require.NoError(t, err)

	result, err := filecrypt.Encrypt([]byte("secret track"))
	require.NoError(t, err)
	bundle := filecrypt.NewBundle(result)

	srv := httptest.NewServer(custodyHandler(t, contentID, bundle))
	defer srv.Close()

	buyer, err := identity.Generate()
	require.NoError(t, err)

	c := NewClient()
	got, err := c.RequestKey(context.Background(), srv.URL, contentID, buyer)
	require.NoError(t, err)
	assert.Equal(t, bundle.Key, got.Key)
	assert.Equal(t, bundle.IV, got.IV)

	// The released bundle decrypts the ciphertext.
	plaintext, err := filecrypt.DecryptBundle(result.Ciphertext, got)
	require.NoError(t, err)
	assert.Equal(t, []byte("secret track"), plaintext)
}

func TestRequestKeyDenied(t *testing.T) {
	contentID, err := identity.NewContentID()
	require.NoError(t, err)
	otherID, err := identity.NewContentID()
	require.NoError(t, err)

	result, err := filecrypt.Encrypt([]byte("x"))
	require.NoError(t, err)

	srv := httptest.NewServer(custodyHandler(t, contentID, filecrypt.NewBundle(result)))
	defer srv.Close()

	buyer, err := identity.Generate()
	require.NoError(t, err)

	// Challenge signed for the wrong content is refused.
	c := NewClient()
	_, err = c.RequestKey(context.Background(), srv.URL, otherID, buyer)
	assert.ErrorIs(t, err, ErrKeyDenied)
}

func TestRequestKeyMalformedBundle(t *testing.T) {
	contentID, err := identity.NewContentID()
	require.NoError(t, err)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{"key": "not-base64!!!", "iv": "bogus"})
	}))
	defer srv.Close()

	buyer, err := identity.Generate()
	require.NoError(t, err)

	c := NewClient()
	_, err = c.RequestKey(context.Background(), srv.URL, contentID, buyer)
	assert.ErrorIs(t, err, ErrInvalidResponse)
}

func TestRequestKeyUnavailable(t *testing.T) {
	contentID, err := identity.NewContentID()
	require.NoError(t, err)
	buyer, err := identity.Generate()
	require.NoError(t, err)

	c := NewClient()
	_, err = c.RequestKey(context.Background(), "http://127.0.0.1:1", contentID, buyer)
	assert.ErrorIs(t, err, ErrUnavailable)

	_, err = c.RequestKey(context.Background(), "", contentID, buyer)
	assert.ErrorIs(t, err, ErrInvalidURL)
}

func TestPing(t *testing.T) {
	contentID, err := identity.NewContentID()
	require.NoError(t, err)
	otherID, err := identity.NewContentID()
	require.NoError(t, err)

	result, err := filecrypt.Encrypt([]byte("x"))
	require.NoError(t, err)

	srv := httptest.NewServer(custodyHandler(t, contentID, filecrypt.NewBundle(result)))
	defer srv.Close()

	c := NewClient()
	assert.NoError(t, c.Ping(context.Background(), srv.URL, contentID))
	assert.ErrorIs(t, c.Ping(context.Background(), srv.URL, otherID), ErrUnavailable)
	assert.ErrorIs(t, c.Ping(context.Background(), "http://127.0.0.1:1", contentID), ErrUnavailable)
}

// fakeResolver is an in-memory DNSResolver for discovery tests.
type fakeResolver struct {
	srv    []*net.SRV
	srvErr error
	txt    []string
	txtErr error
}

func (f *fakeResolver) LookupSRV(service, proto, name string) (string, []*net.SRV, error) {
	return "", f.srv, f.srvErr
}

func (f *fakeResolver) LookupTXT(name string) ([]string, error) {
	return f.txt, f.txtErr
}

func TestResolveEndpoints(t *testing.T) {
	resolver := &fakeResolver{
		srv: []*net.SRV{
			{Target: "backup.example.com.", Port: 8443, Priority: 20, Weight: 5},
			{Target: "custody.example.com.", Port: 443, Priority: 10, Weight: 10},
			{Target: "custody2.example.com.", Port: 443, Priority: 10, Weight: 20},
		},
	}

	endpoints, err := ResolveEndpointsWithResolver("example.com", resolver)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"custody2.example.com:443",
		"custody.example.com:443",
		"backup.example.com:8443",
	}, endpoints)
}

func TestResolveEndpointsErrors(t *testing.T) {
	_, err := ResolveEndpointsWithResolver("", &fakeResolver{})
	assert.ErrorIs(t, err, ErrDNSLookupFailed)

	_, err = ResolveEndpointsWithResolver("example.com", &fakeResolver{srvErr: errors.New("nxdomain")})
	assert.ErrorIs(t, err, ErrDNSLookupFailed)

	_, err = ResolveEndpointsWithResolver("example.com", &fakeResolver{})
	assert.ErrorIs(t, err, ErrNoEndpoints)
}

func TestResolveServiceIdentity(t *testing.T) {
	service, err := identity.Generate()
	require.NoError(t, err)
	want := service.PublicID()

	resolver := &fakeResolver{
		txt: []string{
			"v=spf1 -all",
			"poip=" + want.String(),
		},
	}

	got, err := ResolveServiceIdentityWithResolver("example.com", resolver)
	require.NoError(t, err)
	assert.True(t, want.Equal(got))
}

func TestResolveServiceIdentityErrors(t *testing.T) {
	_, err := ResolveServiceIdentityWithResolver("example.com", &fakeResolver{txt: []string{"unrelated"}})
	assert.ErrorIs(t, err, ErrDNSLookupFailed)

	_, err = ResolveServiceIdentityWithResolver("example.com", &fakeResolver{txt: []string{"poip=!!bad!!"}})
	assert.ErrorIs(t, err, ErrInvalidServiceIdentity)
}
