package custody

import "errors"

var (
	// ErrInvalidURL is returned for an empty or malformed custody URL.
	ErrInvalidURL = errors.New("custody: invalid custody URL")

	// ErrUnavailable is returned when the custody service cannot be
	// reached or does not answer a liveness probe.
	ErrUnavailable = errors.New("custody: service unavailable")

	// ErrKeyDenied is returned when the custody service refuses to
	// release the key (no valid purchase, bad signature).
	ErrKeyDenied = errors.New("custody: key release denied")

	// ErrInvalidResponse is returned when the custody service answers
	// with a malformed or incomplete body.
	ErrInvalidResponse = errors.New("custody: invalid response")

	// ErrDNSLookupFailed wraps DNS resolution failures during endpoint
	// discovery.
	ErrDNSLookupFailed = errors.New("custody: DNS lookup failed")

	// ErrNoEndpoints is returned when discovery finds no custody
	// endpoints for a domain.
	ErrNoEndpoints = errors.New("custody: no endpoints found")

	// ErrDNSSECValidationFailed is returned when a DNSSEC-validating
	// lookup does not carry the Authenticated Data flag.
	ErrDNSSECValidationFailed = errors.New("custody: DNSSEC validation failed")

	// ErrInvalidServiceIdentity is returned when a discovered service
	// identity TXT record is malformed.
	ErrInvalidServiceIdentity = errors.New("custody: invalid service identity")
)
