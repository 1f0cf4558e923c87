// Package pricing turns a daily rate, a date range and plan fees into the
// payable total of a rental. Everything here is pure.
package pricing

import (
	"time"

	"evrental-backend/internal/domain"

	"github.com/shopspring/decimal"
)

const hoursPerDay = 24

// Input carries the live vehicle and plan values at the moment of pricing.
type Input struct {
	RentPerDay         decimal.Decimal
	StartDate          time.Time
	ExpectedReturnDate time.Time
	JoiningFee         decimal.Decimal
	SecurityDeposit    decimal.Decimal
}

// InclusiveDays counts the calendar days from start to end with both ends
// billable, so a same-day rental is one day.
func InclusiveDays(start, end time.Time) (int, error) {
	s := domain.CalendarDate(start)
	e := domain.CalendarDate(end)
	if e.Before(s) {
		return 0, domain.NewValidationError("expected_return_date", "must be on or after start_date")
	}
	return int(e.Sub(s).Hours()/hoursPerDay) + 1, nil
}

// DaysBetween returns the whole calendar days from `from` to `to`, negative
// when `to` is earlier.
func DaysBetween(from, to time.Time) int {
	return int(domain.CalendarDate(to).Sub(domain.CalendarDate(from)).Hours() / hoursPerDay)
}

// Calculate prices a rental and returns the snapshot to persist with it.
func Calculate(in Input) (domain.PricingSnapshot, error) {
	v := &domain.ValidationError{}
	if in.RentPerDay.IsNegative() {
		v.Add("rent_per_day", "must not be negative")
	}
	if in.JoiningFee.IsNegative() {
		v.Add("joining_fee", "must not be negative")
	}
	if in.SecurityDeposit.IsNegative() {
		v.Add("security_deposit", "must not be negative")
	}
	if err := v.OrNil(); err != nil {
		return domain.PricingSnapshot{}, err
	}

	days, err := InclusiveDays(in.StartDate, in.ExpectedReturnDate)
	if err != nil {
		return domain.PricingSnapshot{}, err
	}
	if days < 1 {
		days = 1
	}

	rate := domain.RoundMoney(in.RentPerDay)
	return domain.PricingSnapshot{
		Version:    domain.PricingSnapshotVersion,
		Days:       days,
		Usage:      domain.RoundMoney(rate.Mul(decimal.NewFromInt(int64(days)))),
		RentPerDay: rate,
		Joining:    domain.RoundMoney(in.JoiningFee),
		Deposit:    domain.RoundMoney(in.SecurityDeposit),
	}, nil
}
