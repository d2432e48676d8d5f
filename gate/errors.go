package gate

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrAlreadyPublished is returned when a content identifier already
	// has a ledger record.
	ErrAlreadyPublished = errors.New("gate: content already published")

	// ErrEmptyPlaintext is returned when publishing empty content.
	ErrEmptyPlaintext = errors.New("gate: empty plaintext")

	// ErrTermsRequired is returned when publishing gated content without
	// sale terms.
	ErrTermsRequired = errors.New("gate: sale terms required for gated content")

	// ErrTermsForbidden is returned when sale terms accompany a tier that
	// cannot sell.
	ErrTermsForbidden = errors.New("gate: sale terms not allowed for this tier")

	// ErrNotOwner is returned when a management operation is attempted by
	// a non-owner identity.
	ErrNotOwner = errors.New("gate: signer does not own this content")

	// ErrNotFound is returned when no ledger record exists for a content
	// identifier.
	ErrNotFound = errors.New("gate: content not found")

	// ErrNoSaleTerms is returned when a revenue operation targets content
	// without published sale terms.
	ErrNoSaleTerms = errors.New("gate: no sale terms published")

	// ErrNothingToWithdraw is returned when the withdrawable balance is zero.
	ErrNothingToWithdraw = errors.New("gate: nothing to withdraw")

	// ErrNothingToClaim is returned when the claimable bonus is zero.
	ErrNothingToClaim = errors.New("gate: nothing to claim")

	// ErrNoPaymentRecord is returned when a bonus claim has no purchase
	// behind it.
	ErrNoPaymentRecord = errors.New("gate: no payment record for signer")
)

// Step names a stage of the purchase flow.
type Step string

const (
	StepContentLookup Step = "content-lookup"
	StepCustodyPing   Step = "custody-ping"
	StepPaymentCheck  Step = "payment-check"
	StepPayment       Step = "payment"
	StepContentFetch  Step = "content-fetch"
	StepKeyRequest    Step = "key-request"
	StepDecrypt       Step = "decrypt"
)

// Reason classifies why a purchase flow stopped.
type Reason string

const (
	ReasonNotFound           Reason = "not-found"
	ReasonNotPurchasable     Reason = "not-purchasable"
	ReasonCustodyUnavailable Reason = "custody-unavailable"
	ReasonPaymentRejected    Reason = "payment-rejected"
	ReasonContentUnavailable Reason = "content-unavailable"
	ReasonKeyUnavailable     Reason = "key-unavailable"
	ReasonDecryptionFailed   Reason = "decryption-failed"
	ReasonTimeout            Reason = "timeout"
)

// FlowError reports where and why a purchase flow stopped. The flow is
// staged so that a failure before the payment step costs the buyer
// nothing; Step tells the caller which side of that line the failure
// landed on.
type FlowError struct {
	Step   Step
	Reason Reason
	Err    error
}

func (e *FlowError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("gate: %s failed (%s): %v", e.Step, e.Reason, e.Err)
	}
	return fmt.Sprintf("gate: %s failed (%s)", e.Step, e.Reason)
}

func (e *FlowError) Unwrap() error { return e.Err }

// flowErr builds a FlowError, upgrading context expiry to ReasonTimeout.
func flowErr(step Step, reason Reason, err error) *FlowError {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		reason = ReasonTimeout
	}
	return &FlowError{Step: step, Reason: reason, Err: err}
}
