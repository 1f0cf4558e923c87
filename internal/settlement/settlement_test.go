package settlement

import (
	"testing"
	"time"

	"evrental-backend/internal/domain"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func d(s string) time.Time {
	t, _ := domain.ParseDate(s)
	return t
}

func money(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func lateFeeSettings() domain.SettlementSettings {
	return domain.SettlementSettings{
		LateFeeEnabled:    true,
		LateFeePerDay:     money("500"),
		TaxPercentDefault: money("18"),
		DepositPolicy:     domain.DepositPolicyHold,
	}
}

func TestCalculate_OverdueReferenceExample(t *testing.T) {
	totals := Calculate(Input{
		RentalStatus:       domain.RentalStatusOverdue,
		ExpectedReturnDate: d("2024-01-03"),
		AsOf:               d("2024-01-05"),
		BalanceDue:         decimal.Zero,
		Settings:           lateFeeSettings(),
	})

	assert.Equal(t, 2, totals.LateDays)
	assert.Equal(t, "1000.00", totals.LateFee.StringFixed(2))
	assert.Equal(t, "1000.00", totals.Subtotal.StringFixed(2))
	assert.Equal(t, "180.00", totals.TaxAmount.StringFixed(2))
	assert.Equal(t, "1180.00", totals.TotalDue.StringFixed(2))
	assert.True(t, totals.FinalAmount.Equal(totals.TotalDue))
	assert.False(t, Settleable(totals))
}

func TestCalculate_LateDaysOnlyWhenOverdue(t *testing.T) {
	for _, status := range []domain.RentalStatus{domain.RentalStatusOngoing, domain.RentalStatusCompleted} {
		totals := Calculate(Input{
			RentalStatus:       status,
			ExpectedReturnDate: d("2024-01-03"),
			AsOf:               d("2024-01-10"),
			Settings:           lateFeeSettings(),
		})
		assert.Equal(t, 0, totals.LateDays, status)
		assert.True(t, totals.LateFee.IsZero())
	}
}

func TestCalculate_LateFeeDisabled(t *testing.T) {
	s := lateFeeSettings()
	s.LateFeeEnabled = false
	totals := Calculate(Input{
		RentalStatus:       domain.RentalStatusOverdue,
		ExpectedReturnDate: d("2024-01-03"),
		AsOf:               d("2024-01-05"),
		Settings:           s,
	})
	assert.Equal(t, 2, totals.LateDays)
	assert.True(t, totals.LateFee.IsZero())
	assert.True(t, totals.TotalDue.IsZero())
	assert.True(t, Settleable(totals))
}

func TestCalculate_ReturnBeforeExpectedDateHasNoLateDays(t *testing.T) {
	totals := Calculate(Input{
		RentalStatus:       domain.RentalStatusOverdue,
		ExpectedReturnDate: d("2024-01-10"),
		AsOf:               d("2024-01-05"),
		Settings:           lateFeeSettings(),
	})
	assert.Equal(t, 0, totals.LateDays)
}

func TestCalculate_ChargesTaxAndPriorBalance(t *testing.T) {
	tax := money("5")
	totals := Calculate(Input{
		RentalStatus: domain.RentalStatusOngoing,
		BalanceDue:   money("250"),
		Settings:     lateFeeSettings(),
		Charges: domain.InspectionCharges{
			MissingItemsCharge: money("100"),
			CleaningFee:        money("50"),
			DamageFee:          money("300"),
			OtherAdjustments:   money("-50"),
			TaxPercent:         &tax,
		},
	})
	assert.Equal(t, "400.00", totals.Subtotal.StringFixed(2))
	assert.Equal(t, "20.00", totals.TaxAmount.StringFixed(2))
	assert.Equal(t, "670.00", totals.TotalDue.StringFixed(2))
	assert.True(t, totals.AppliedTaxPercent.Equal(tax))
}

func TestCalculate_TaxRoundsToMinorUnit(t *testing.T) {
	tax := money("18")
	totals := Calculate(Input{
		RentalStatus: domain.RentalStatusOngoing,
		Settings:     lateFeeSettings(),
		Charges: domain.InspectionCharges{
			CleaningFee: money("33.33"),
			TaxPercent:  &tax,
		},
	})
	assert.Equal(t, "6.00", totals.TaxAmount.StringFixed(2))
}

func TestCalculate_CreditBalanceAllowsSettlement(t *testing.T) {
	totals := Calculate(Input{
		RentalStatus: domain.RentalStatusCompleted,
		BalanceDue:   money("-100"),
		Settings:     lateFeeSettings(),
		Charges:      domain.InspectionCharges{CleaningFee: money("50")},
	})
	assert.Equal(t, "-41.00", totals.FinalAmount.StringFixed(2))
	assert.True(t, Settleable(totals))
}

func TestCalculate_DepositOffsetPolicy(t *testing.T) {
	s := lateFeeSettings()
	s.DepositPolicy = domain.DepositPolicyOffset
	totals := Calculate(Input{
		RentalStatus: domain.RentalStatusCompleted,
		Deposit:      money("1750"),
		Settings:     s,
		Charges: domain.InspectionCharges{
			DamageFee:  money("1000"),
			TaxPercent: &decimal.Zero,
		},
	})
	assert.Equal(t, "1000.00", totals.TotalDue.StringFixed(2))
	assert.Equal(t, "-750.00", totals.FinalAmount.StringFixed(2))
	assert.Equal(t, "750.00", totals.DepositReturn.StringFixed(2))
	assert.Equal(t, "-750.00", Charges(totals, s.DepositPolicy, money("1750")).StringFixed(2))
}

func TestCalculate_Deterministic(t *testing.T) {
	in := Input{
		RentalStatus:       domain.RentalStatusOverdue,
		ExpectedReturnDate: d("2024-01-01"),
		AsOf:               d("2024-01-04"),
		BalanceDue:         money("99.50"),
		Settings:           lateFeeSettings(),
		Charges:            domain.InspectionCharges{DamageFee: money("12.34")},
	}
	assert.Equal(t, Calculate(in), Calculate(in))
}

func TestInput_Validate(t *testing.T) {
	bad := money("120")
	err := Input{Charges: domain.InspectionCharges{
		CleaningFee: money("-1"),
		TaxPercent:  &bad,
	}}.Validate()
	var verr *domain.ValidationError
	assert.ErrorAs(t, err, &verr)
	assert.Len(t, verr.Fields, 2)
}
