package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"evrental-backend/internal/domain"
	"evrental-backend/internal/events"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// overdueRental is fully paid, due 2024-01-03 and overdue on testToday.
func overdueRental(t *testing.T, f *fixture) *domain.Rental {
	t.Helper()
	in := f.createInput()
	in.Payment = successPayment(4250)
	r := f.mustCreate(t, in)
	r, err := f.rentals.MarkOverdue(context.Background(), r.ID)
	require.NoError(t, err)
	return r
}

func TestInspectionService_SettleOverdueReturn(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 1)
	r := overdueRental(t, f)

	insp, err := f.inspections.SaveInspection(ctx, SaveInspectionInput{
		RentalID:      r.ID,
		Odometer:      1520,
		ChargePercent: 64,
		AccessoriesReturned: []domain.ReturnedAccessory{
			{Kind: "battery", Returned: true},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, insp.LateDays)
	assert.True(t, insp.LateFee.Equal(money(t, "1000")))
	assert.True(t, insp.Subtotal.Equal(money(t, "1000")))
	assert.True(t, insp.TaxAmount.Equal(money(t, "180")))
	assert.True(t, insp.TotalDue.Equal(money(t, "1180")))
	assert.True(t, insp.FinalAmount.Equal(money(t, "1180")))

	// saving never touches the rental
	got, err := f.rentals.GetRental(ctx, r.ID)
	require.NoError(t, err)
	assert.True(t, got.PayableTotal.Equal(money(t, "4250")))

	_, _, err = f.inspections.SettleInspection(ctx, insp.ID)
	require.ErrorIs(t, err, domain.ErrInvalidState)
	assert.Contains(t, err.Error(), "clear outstanding balance")

	_, _, err = f.payments.RecordPayment(ctx, r.ID, *successPayment(1180))
	require.NoError(t, err)

	settled, rental, err := f.inspections.SettleInspection(ctx, insp.ID)
	require.NoError(t, err)
	assert.True(t, settled.Settled)
	require.NotNil(t, settled.SettledAt)
	assert.True(t, settled.FinalAmount.IsZero())
	assert.True(t, rental.PayableTotal.Equal(money(t, "5430")))
	assert.True(t, rental.BalanceDue().IsZero())
	assert.True(t, rental.Settled())

	_, _, err = f.inspections.SettleInspection(ctx, insp.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidState)

	_, err = f.inspections.SaveInspection(ctx, SaveInspectionInput{RentalID: r.ID})
	assert.ErrorIs(t, err, domain.ErrInvalidState)

	_, _, err = f.payments.RecordPayment(ctx, r.ID, *successPayment(1))
	assert.ErrorIs(t, err, domain.ErrInvalidState)

	assert.Contains(t, f.events.Types(), events.InspectionSettled)
}

func TestInspectionService_SaveIsAnUpsert(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 1)
	in := f.createInput()
	in.Payment = successPayment(4250)
	r := f.mustCreate(t, in)

	first, err := f.inspections.SaveInspection(ctx, SaveInspectionInput{RentalID: r.ID, Notes: "scratch"})
	require.NoError(t, err)
	assert.Zero(t, first.LateDays)
	assert.True(t, first.FinalAmount.IsZero())

	tax := decimal.NewFromInt(5)
	second, err := f.inspections.SaveInspection(ctx, SaveInspectionInput{
		RentalID: r.ID,
		Notes:    "scratch and dent",
		Charges:  domain.InspectionCharges{DamageFee: decimal.NewFromInt(200), TaxPercent: &tax},
	})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.True(t, second.TaxAmount.Equal(money(t, "10")))
	assert.True(t, second.FinalAmount.Equal(money(t, "210")))

	got, err := f.inspections.GetInspection(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, "scratch and dent", got.Notes)
}

func TestInspectionService_OffsetPolicyAppliesDeposit(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 1)
	_, err := f.settings.UpdateSettlementSettings(ctx, &domain.SettlementSettings{
		TaxPercentDefault: decimal.Zero,
		DepositPolicy:     domain.DepositPolicyOffset,
	})
	require.NoError(t, err)

	in := f.createInput()
	in.Payment = successPayment(4250)
	r := f.mustCreate(t, in)

	insp, err := f.inspections.SaveInspection(ctx, SaveInspectionInput{
		RentalID: r.ID,
		Charges:  domain.InspectionCharges{CleaningFee: decimal.NewFromInt(250)},
	})
	require.NoError(t, err)
	assert.True(t, insp.FinalAmount.Equal(money(t, "-1500")))
	assert.True(t, insp.DepositReturn.Equal(money(t, "1500")))

	_, rental, err := f.inspections.SettleInspection(ctx, insp.ID)
	require.NoError(t, err)
	assert.True(t, rental.PayableTotal.Equal(money(t, "2750")))
	assert.True(t, rental.BalanceDue().Equal(money(t, "-1500")))
}

func TestInspectionService_Rejections(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 2)

	confirmed := f.createInput()
	confirmed.PreBooked = true
	r := f.mustCreate(t, confirmed)

	_, err := f.inspections.SaveInspection(ctx, SaveInspectionInput{RentalID: r.ID})
	assert.ErrorIs(t, err, domain.ErrInvalidState)

	_, err = f.inspections.SaveInspection(ctx, SaveInspectionInput{RentalID: r.ID, ChargePercent: 140, Odometer: -1})
	assert.ErrorIs(t, err, domain.ErrValidation)

	ongoing := f.mustCreate(t, f.createInput())
	_, err = f.inspections.SaveInspection(ctx, SaveInspectionInput{
		RentalID: ongoing.ID,
		Charges:  domain.InspectionCharges{DamageFee: decimal.NewFromInt(-1)},
	})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, _, err = f.inspections.SettleInspection(ctx, 9999)
	assert.ErrorIs(t, err, domain.ErrInspectionNotFound)

	_, err = f.inspections.GetInspection(ctx, ongoing.ID)
	assert.ErrorIs(t, err, domain.ErrInspectionNotFound)
}

func TestInspectionService_ConcurrentSettleAppliesOnce(t *testing.T) {
	const n = 6
	ctx := context.Background()
	f := newFixture(t, 1)
	r := overdueRental(t, f)

	insp, err := f.inspections.SaveInspection(ctx, SaveInspectionInput{RentalID: r.ID, Odometer: 1520, ChargePercent: 64})
	require.NoError(t, err)
	_, _, err = f.payments.RecordPayment(ctx, r.ID, *successPayment(1180))
	require.NoError(t, err)

	var (
		wg              sync.WaitGroup
		mu              sync.Mutex
		settled, reject int
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, err := f.inspections.SettleInspection(ctx, insp.ID)
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				settled++
			} else if errors.Is(err, domain.ErrInvalidState) {
				reject++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, settled)
	assert.Equal(t, n-1, reject)
	got, err := f.rentals.GetRental(ctx, r.ID)
	require.NoError(t, err)
	assert.True(t, got.PayableTotal.Equal(money(t, "5430")))
	assert.True(t, got.BalanceDue().IsZero())
}
