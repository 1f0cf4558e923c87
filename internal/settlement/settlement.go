// Package settlement derives the charges owed when a rental vehicle comes back.
package settlement

import (
	"time"

	"evrental-backend/internal/domain"
	"evrental-backend/internal/pricing"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Input gathers everything the calculation reads.
type Input struct {
	RentalStatus       domain.RentalStatus
	ExpectedReturnDate time.Time
	AsOf               time.Time
	BalanceDue         decimal.Decimal
	Deposit            decimal.Decimal
	Settings           domain.SettlementSettings
	Charges            domain.InspectionCharges
}

// Validate rejects negative inspector-entered fees. OtherAdjustments may be
// negative to model a goodwill credit.
func (in Input) Validate() error {
	v := &domain.ValidationError{}
	if in.Charges.MissingItemsCharge.IsNegative() {
		v.Add("missing_items_charge", "must not be negative")
	}
	if in.Charges.CleaningFee.IsNegative() {
		v.Add("cleaning_fee", "must not be negative")
	}
	if in.Charges.DamageFee.IsNegative() {
		v.Add("damage_fee", "must not be negative")
	}
	if tp := in.Charges.TaxPercent; tp != nil && (tp.IsNegative() || tp.GreaterThan(hundred)) {
		v.Add("tax_percent", "must be between 0 and 100")
	}
	return v.OrNil()
}

// LateDays counts whole days past the expected return date. Only overdue
// rentals accrue late days.
func LateDays(status domain.RentalStatus, expectedReturn, asOf time.Time) int {
	if status != domain.RentalStatusOverdue {
		return 0
	}
	days := pricing.DaysBetween(expectedReturn, asOf)
	if days < 0 {
		return 0
	}
	return days
}

// Calculate computes the settlement totals. It is deterministic for a given input.
func Calculate(in Input) domain.InspectionTotals {
	lateDays := LateDays(in.RentalStatus, in.ExpectedReturnDate, in.AsOf)
	lateFee := decimal.Zero
	if in.Settings.LateFeeEnabled {
		lateFee = in.Settings.LateFeePerDay.Mul(decimal.NewFromInt(int64(lateDays)))
	}

	c := in.Charges
	subtotal := c.MissingItemsCharge.
		Add(c.CleaningFee).
		Add(c.DamageFee).
		Add(c.OtherAdjustments).
		Add(lateFee)
	subtotal = domain.RoundMoney(subtotal)

	taxPercent := in.Settings.TaxPercentDefault
	if c.TaxPercent != nil {
		taxPercent = *c.TaxPercent
	}
	taxAmount := domain.RoundMoney(subtotal.Mul(taxPercent).Div(hundred))

	totalDue := subtotal.Add(taxAmount).Add(in.BalanceDue)

	finalAmount := totalDue
	depositReturn := decimal.Zero
	if in.Settings.DepositPolicy == domain.DepositPolicyOffset {
		finalAmount = totalDue.Sub(in.Deposit)
		depositReturn = decimal.Min(in.Deposit, decimal.Max(decimal.Zero, in.Deposit.Sub(totalDue)))
	}

	return domain.InspectionTotals{
		LateDays:          lateDays,
		LateFee:           domain.RoundMoney(lateFee),
		Subtotal:          subtotal,
		AppliedTaxPercent: taxPercent,
		TaxAmount:         taxAmount,
		PriorBalance:      in.BalanceDue,
		TotalDue:          totalDue,
		DepositReturn:     depositReturn,
		FinalAmount:       finalAmount,
	}
}

// Charges is the amount folded into the rental's payable total on settlement:
// the new charges plus tax, less any deposit applied under the offset policy.
func Charges(t domain.InspectionTotals, policy domain.DepositPolicy, deposit decimal.Decimal) decimal.Decimal {
	charges := t.Subtotal.Add(t.TaxAmount)
	if policy == domain.DepositPolicyOffset {
		charges = charges.Sub(deposit)
	}
	return charges
}

// Settleable reports whether every due has been cleared.
func Settleable(t domain.InspectionTotals) bool {
	return !t.FinalAmount.IsPositive()
}
