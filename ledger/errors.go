package ledger

import (
	"errors"
	"fmt"
)

var (
	// ErrConnectionFailed indicates the client could not reach the ledger node.
	ErrConnectionFailed = errors.New("ledger: connection failed")

	// ErrInvalidResponse indicates the node returned a malformed or
	// unexpected response.
	ErrInvalidResponse = errors.New("ledger: invalid response")

	// ErrRecordNotFound indicates no account exists at the derived address.
	ErrRecordNotFound = errors.New("ledger: record not found")

	// ErrMalformedAccount indicates an account decoded at the read boundary
	// failed kind or invariant validation.
	ErrMalformedAccount = errors.New("ledger: malformed account")

	// ErrInvalidInstruction indicates an instruction failed local validation
	// before any network call.
	ErrInvalidInstruction = errors.New("ledger: invalid instruction")
)

// Program rejection names, passed through verbatim from the ledger.
// The set mirrors the deployed program's error table.
const (
	RejectInsufficientFunds   = "InsufficientFunds"
	RejectGoalAlreadyAchieved = "GoalAlreadyAchieved"
	RejectContractDrained     = "ContractDrained"
	RejectWrongOwnershipTier  = "WrongOwnershipTier"
	RejectWrongContractType   = "WrongContractType"
	RejectMathFailure         = "MathFailure"
	RejectInvalidPrice        = "InvalidPrice"
	RejectInvalidGoalCount    = "InvalidGoalCount"
	RejectInvalidMaxCount     = "InvalidMaxCount"
)

// rejectionCodeBase is the first program-level error code. Codes in
// [rejectionCodeBase, rejectionCodeBase+1000) are program rejections rather
// than transport failures.
const rejectionCodeBase = 6000

// RejectionError is a transaction reverted by a program-level invariant.
// Code and Name come from the ledger verbatim for debuggability.
type RejectionError struct {
	Code int
	Name string
}

func (e *RejectionError) Error() string {
	return fmt.Sprintf("ledger: transaction rejected: %s (code %d)", e.Name, e.Code)
}

// IsRejection reports whether err is a program-level rejection and, if so,
// returns it.
func IsRejection(err error) (*RejectionError, bool) {
	var rej *RejectionError
	if errors.As(err, &rej) {
		return rej, true
	}
	return nil, false
}
