package custody

import (
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/miekg/dns"

	"github.com/poiporg/libpoip-go/identity"
)

// SecureResolver is a DNSResolver that only accepts DNSSEC-authenticated
// answers. Discovery records decide where key requests go and which
// identity signs the release, so a forged SRV or TXT record is an
// interception primitive; the resolver queries a validating recursive
// resolver with the DO bit set and rejects any response that comes back
// without the AD flag.
type SecureResolver struct {
	// Upstream is the validating recursive resolver, host:port.
	Upstream string

	// Timeout bounds each query. Zero means 10 seconds.
	Timeout time.Duration

	// exchange overrides the wire exchange in tests.
	exchange func(msg *dns.Msg, addr string) (*dns.Msg, error)
}

// NewSecureResolver returns a SecureResolver against the given upstream.
// An empty upstream selects Google Public DNS (8.8.8.8:53).
func NewSecureResolver(upstream string) *SecureResolver {
	if upstream == "" {
		upstream = "8.8.8.8:53"
	}
	return &SecureResolver{Upstream: upstream}
}

// ResolveEndpointsSecure resolves custody endpoints for a domain with
// DNSSEC validation. An empty upstream selects the default resolver.
func ResolveEndpointsSecure(domain, upstream string) ([]string, error) {
	return ResolveEndpointsWithResolver(domain, NewSecureResolver(upstream))
}

// ResolveServiceIdentitySecure resolves the custody service identity for
// a domain with DNSSEC validation.
func ResolveServiceIdentitySecure(domain, upstream string) (identity.ID, error) {
	return ResolveServiceIdentityWithResolver(domain, NewSecureResolver(upstream))
}

func (r *SecureResolver) query(name string, qtype uint16) (*dns.Msg, error) {
	msg := new(dns.Msg)
	msg.SetQuestion(dns.Fqdn(name), qtype)
	msg.RecursionDesired = true
	msg.SetEdns0(4096, true) // DO bit: request DNSSEC material upstream

	exchange := r.exchange
	if exchange == nil {
		timeout := r.Timeout
		if timeout == 0 {
			timeout = 10 * time.Second
		}
		client := &dns.Client{Timeout: timeout}
		exchange = func(m *dns.Msg, addr string) (*dns.Msg, error) {
			resp, _, err := client.Exchange(m, addr)
			return resp, err
		}
	}

	resp, err := exchange(msg, r.Upstream)
	if err != nil {
		return nil, fmt.Errorf("%w: query %s %s: %w",
			ErrDNSLookupFailed, name, dns.TypeToString[qtype], err)
	}
	if resp.Rcode != dns.RcodeSuccess && resp.Rcode != dns.RcodeNameError {
		return nil, fmt.Errorf("%w: query %s %s: rcode %s",
			ErrDNSLookupFailed, name, dns.TypeToString[qtype],
			dns.RcodeToString[resp.Rcode])
	}

	// The upstream resolver validated the chain; without the AD flag the
	// answer is unauthenticated and discovery must not trust it.
	if !resp.AuthenticatedData {
		return nil, fmt.Errorf("%w: no AD flag for %s %s",
			ErrDNSSECValidationFailed, name, dns.TypeToString[qtype])
	}
	return resp, nil
}

// LookupSRV looks up SRV records with DNSSEC validation. The cname return
// is always empty; miekg/dns does not surface a canonical name for SRV
// queries the way net.LookupSRV does.
func (r *SecureResolver) LookupSRV(service, proto, name string) (string, []*net.SRV, error) {
	qname := fmt.Sprintf("_%s._%s.%s", service, proto, name)

	resp, err := r.query(qname, dns.TypeSRV)
	if err != nil {
		return "", nil, err
	}

	var records []*net.SRV
	for _, rr := range resp.Answer {
		srv, ok := rr.(*dns.SRV)
		if !ok {
			continue
		}
		records = append(records, &net.SRV{
			Target:   strings.TrimSuffix(srv.Target, "."),
			Port:     srv.Port,
			Priority: srv.Priority,
			Weight:   srv.Weight,
		})
	}
	if len(records) == 0 {
		return "", nil, fmt.Errorf("%w: no SRV records for %s", ErrDNSLookupFailed, qname)
	}
	return "", records, nil
}

// LookupTXT looks up TXT records with DNSSEC validation.
func (r *SecureResolver) LookupTXT(name string) ([]string, error) {
	resp, err := r.query(name, dns.TypeTXT)
	if err != nil {
		return nil, err
	}

	var values []string
	for _, rr := range resp.Answer {
		txt, ok := rr.(*dns.TXT)
		if !ok {
			continue
		}
		// A record may be split into multiple character strings.
		values = append(values, strings.Join(txt.Txt, ""))
	}
	if len(values) == 0 {
		return nil, fmt.Errorf("%w: no TXT records for %s", ErrDNSLookupFailed, name)
	}
	return values, nil
}
