package custody

import (
	"fmt"
	"net"
	"sort"
	"strings"

	"github.com/poiporg/libpoip-go/identity"
)

// DNSResolver defines the interface for DNS lookups.
// This allows tests to mock DNS resolution.
type DNSResolver interface {
	// LookupSRV looks up SRV records for the given service, proto, and name.
	LookupSRV(service, proto, name string) (string, []*net.SRV, error)

	// LookupTXT looks up TXT records for the given name.
	LookupTXT(name string) ([]string, error)
}

// defaultDNSResolver wraps the standard net package DNS functions.
type defaultDNSResolver struct{}

func (d *defaultDNSResolver) LookupSRV(service, proto, name string) (string, []*net.SRV, error) {
	return net.LookupSRV(service, proto, name)
}

func (d *defaultDNSResolver) LookupTXT(name string) ([]string, error) {
	return net.LookupTXT(name)
}

// DefaultDNSResolver is the production DNS resolver using the net package.
var DefaultDNSResolver DNSResolver = &defaultDNSResolver{}

// SRVCustody is the SRV service label for custody endpoint discovery:
// _poip-custody._tcp.{domain}.
const SRVCustody = "poip-custody"

// ResolveEndpoints resolves custody endpoints for a domain via SRV.
// Returns endpoint addresses (host:port) sorted by priority then weight.
func ResolveEndpoints(domain string) ([]string, error) {
	return ResolveEndpointsWithResolver(domain, DefaultDNSResolver)
}

// ResolveEndpointsWithResolver resolves custody endpoints using the
// provided DNS resolver.
func ResolveEndpointsWithResolver(domain string, resolver DNSResolver) ([]string, error) {
	if domain == "" {
		return nil, fmt.Errorf("%w: empty domain", ErrDNSLookupFailed)
	}

	_, addrs, err := resolver.LookupSRV(SRVCustody, "tcp", domain)
	if err != nil {
		return nil, fmt.Errorf("%w: SRV lookup for _%s._tcp.%s: %w", ErrDNSLookupFailed, SRVCustody, domain, err)
	}

	if len(addrs) == 0 {
		return nil, fmt.Errorf("%w: no SRV records for _%s._tcp.%s", ErrNoEndpoints, SRVCustody, domain)
	}

	// Sort by priority (ascending), then by weight (descending)
	sort.Slice(addrs, func(i, j int) bool {
		if addrs[i].Priority != addrs[j].Priority {
			return addrs[i].Priority < addrs[j].Priority
		}
		return addrs[i].Weight > addrs[j].Weight
	})

	endpoints := make([]string, len(addrs))
	for i, srv := range addrs {
		host := strings.TrimSuffix(srv.Target, ".")
		endpoints[i] = fmt.Sprintf("%s:%d", host, srv.Port)
	}

	return endpoints, nil
}

// ResolveServiceIdentity resolves the custody service's signing identity
// published at _poip.{domain} as a TXT record with the "poip=" prefix
// (e.g. "poip=7raY4..."). The value is the base58 form of the service's
// public identity.
func ResolveServiceIdentity(domain string) (identity.ID, error) {
	return ResolveServiceIdentityWithResolver(domain, DefaultDNSResolver)
}

// ResolveServiceIdentityWithResolver resolves the service identity using
// the provided DNS resolver.
func ResolveServiceIdentityWithResolver(domain string, resolver DNSResolver) (identity.ID, error) {
	if domain == "" {
		return identity.ID{}, fmt.Errorf("%w: empty domain", ErrDNSLookupFailed)
	}

	name := "_poip." + domain
	txts, err := resolver.LookupTXT(name)
	if err != nil {
		return identity.ID{}, fmt.Errorf("%w: TXT lookup for %s: %w", ErrDNSLookupFailed, name, err)
	}

	if len(txts) == 0 {
		return identity.ID{}, fmt.Errorf("%w: no TXT records for %s", ErrDNSLookupFailed, name)
	}

	// Find the first TXT record with the "poip=" prefix.
	const prefix = "poip="
	var encoded string
	for _, txt := range txts {
		txt = strings.TrimSpace(txt)
		if strings.HasPrefix(txt, prefix) {
			encoded = strings.TrimSpace(strings.TrimPrefix(txt, prefix))
			break
		}
	}

	if encoded == "" {
		return identity.ID{}, fmt.Errorf("%w: no poip= TXT record for %s", ErrDNSLookupFailed, name)
	}

	id, err := identity.ParseID(encoded)
	if err != nil {
		return identity.ID{}, fmt.Errorf("%w: %w", ErrInvalidServiceIdentity, err)
	}

	return id, nil
}
