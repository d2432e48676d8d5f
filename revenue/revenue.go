// Package revenue implements the client-side revenue accounting math for
// sale terms and payment records: withdrawable proceeds, the pro-rata
// overfunding bonus, and claimed-bonus projections.
//
// All functions are pure integer math in base settlement-asset units.
// Display layers divide by the asset's decimal precision; accounting never
// does. These are read-only projections — the ledger program enforces the
// real invariant at commit time, and a projection that diverges from a
// freshly re-read ledger state is wrong, not the ledger.
package revenue

import (
	"fmt"
	"strings"

	"github.com/poiporg/libpoip-go/ledger"
)

// TotalWithdrawable returns the gross revenue accrued to the contract:
// sold count times unit price.
func TotalWithdrawable(terms *ledger.SaleTerms) uint64 {
	return terms.SoldCount * terms.UnitPrice
}

// AlreadyWithdrawn returns the revenue the owner has already taken out.
func AlreadyWithdrawn(terms *ledger.SaleTerms) uint64 {
	return terms.WithdrawnCount * terms.UnitPrice
}

// Withdrawable returns the owner's currently withdrawable amount.
// WithdrawnCount <= SoldCount is a ledger invariant, validated at the read
// boundary, so the subtraction cannot underflow on a well-formed record.
func Withdrawable(terms *ledger.SaleTerms) uint64 {
	return TotalWithdrawable(terms) - AlreadyWithdrawn(terms)
}

// PotentialBonus returns the per-buyer overfunding dividend: once sales
// exceed the funding goal, the marginal excess revenue per unit is shared
// back to buyers pro rata rather than accruing entirely to the owner.
//
//	bonus = max(0, (sold - goal) * price / sold)    (sold > 0)
//
// Integer division truncates; the remainder stays in the contract pool.
func PotentialBonus(terms *ledger.SaleTerms) uint64 {
	if terms.SoldCount == 0 || terms.SoldCount <= terms.GoalCount {
		return 0
	}
	excess := terms.SoldCount - terms.GoalCount
	return excess * terms.UnitPrice / terms.SoldCount
}

// ClaimedBonus returns the asset value of the bonus a buyer has already
// claimed, converting cumulative withdrawal units at the current unit price.
func ClaimedBonus(terms *ledger.SaleTerms, payment *ledger.PaymentRecord) uint64 {
	if payment == nil {
		return 0
	}
	return payment.BonusUnits * terms.UnitPrice
}

// ClaimableBonus returns the bonus a buyer could claim now, floored at zero.
// A nil payment record means no purchase and therefore no eligibility.
func ClaimableBonus(terms *ledger.SaleTerms, payment *ledger.PaymentRecord) uint64 {
	if payment == nil {
		return 0
	}
	potential := PotentialBonus(terms)
	claimed := ClaimedBonus(terms, payment)
	if claimed >= potential {
		return 0
	}
	return potential - claimed
}

// FormatAmount renders a base-unit amount with the settlement asset's
// declared decimal precision, for display only.
func FormatAmount(base uint64, decimals uint8) string {
	if decimals == 0 {
		return fmt.Sprintf("%d", base)
	}
	div := uint64(1)
	for i := uint8(0); i < decimals; i++ {
		div *= 10
	}
	whole := base / div
	frac := base % div
	s := fmt.Sprintf("%d.%0*d", whole, decimals, frac)
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}
