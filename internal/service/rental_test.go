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

func TestRentalService_CreateRental(t *testing.T) {
	ctx := context.Background()

	t.Run("PricesAndAllocates", func(t *testing.T) {
		f := newFixture(t, 2)
		in := f.createInput()
		in.Payment = successPayment(4250)

		res, err := f.rentals.CreateRental(ctx, in)
		require.NoError(t, err)

		r := res.Rental
		assert.Equal(t, domain.RentalStatusOngoing, r.Status)
		assert.Equal(t, 3, r.Pricing.Days)
		assert.True(t, r.Pricing.Usage.Equal(money(t, "1500")))
		assert.True(t, r.PayableTotal.Equal(money(t, "4250")))
		assert.True(t, r.PaidTotal.Equal(money(t, "4250")))
		assert.True(t, r.BalanceDue().IsZero())
		assert.True(t, r.Deposit.Equal(money(t, "1750")))
		require.NotNil(t, res.Payment)
		assert.Equal(t, r.ID, res.Payment.RentalID)
		assert.Equal(t, int32(1), f.vehicleQuantity(t))
		assert.Equal(t, []events.Type{events.RentalCreated}, f.events.Types())
	})

	t.Run("PreBookedIsConfirmed", func(t *testing.T) {
		f := newFixture(t, 1)
		in := f.createInput()
		in.PreBooked = true

		r := f.mustCreate(t, in)
		assert.Equal(t, domain.RentalStatusConfirmed, r.Status)
		assert.True(t, r.PaidTotal.IsZero())
		assert.Equal(t, int32(0), f.vehicleQuantity(t))
	})

	t.Run("PendingPaymentIsRecordedButNotCounted", func(t *testing.T) {
		f := newFixture(t, 1)
		in := f.createInput()
		in.Payment = successPayment(1000)
		in.Payment.Status = domain.PaymentStatusPending

		res, err := f.rentals.CreateRental(ctx, in)
		require.NoError(t, err)
		require.NotNil(t, res.Payment)
		assert.True(t, res.Rental.PaidTotal.IsZero())
		assert.True(t, res.Rental.BalanceDue().Equal(money(t, "4250")))
	})

	t.Run("ValidationListsEveryField", func(t *testing.T) {
		f := newFixture(t, 1)
		in := CreateRentalInput{
			StartDate:          f.createInput().ExpectedReturnDate,
			ExpectedReturnDate: f.createInput().StartDate,
			Payment:            &domain.PaymentInput{Amount: money(t, "-5"), Method: "barter"},
		}

		_, err := f.rentals.CreateRental(ctx, in)
		require.ErrorIs(t, err, domain.ErrValidation)
		var verr *domain.ValidationError
		require.True(t, errors.As(err, &verr))
		fields := make([]string, 0, len(verr.Fields))
		for _, fe := range verr.Fields {
			fields = append(fields, fe.Field)
		}
		assert.ElementsMatch(t, []string{"rider_id", "vehicle_id", "plan_id", "expected_return_date", "payment.amount", "payment.method"}, fields)
		assert.Equal(t, int32(1), f.vehicleQuantity(t))
	})

	t.Run("MissingRiderRollsBackAllocation", func(t *testing.T) {
		f := newFixture(t, 1)
		in := f.createInput()
		in.RiderID = 9999
		in.Payment = successPayment(100)

		_, err := f.rentals.CreateRental(ctx, in)
		assert.ErrorIs(t, err, domain.ErrRiderNotFound)
		assert.Equal(t, int32(1), f.vehicleQuantity(t))
		rentals, payments := f.store.Counts()
		assert.Zero(t, rentals)
		assert.Zero(t, payments)
		assert.Empty(t, f.events.Types())
	})

	t.Run("MissingPlan", func(t *testing.T) {
		f := newFixture(t, 1)
		in := f.createInput()
		in.PlanID = 9999

		_, err := f.rentals.CreateRental(ctx, in)
		assert.ErrorIs(t, err, domain.ErrPlanNotFound)
		assert.Equal(t, int32(1), f.vehicleQuantity(t))
	})

	t.Run("OutOfStock", func(t *testing.T) {
		f := newFixture(t, 0)
		_, err := f.rentals.CreateRental(ctx, f.createInput())
		assert.ErrorIs(t, err, domain.ErrOutOfStock)
	})

	t.Run("AccessoriesBestEffort", func(t *testing.T) {
		f := newFixture(t, 1)
		battery := f.store.AddItem(domain.MiscInventoryItem{Kind: "battery", Serial: "B-1"})
		broken := f.store.AddItem(domain.MiscInventoryItem{Kind: "charger", Serial: "C-1", Status: domain.ItemStatusDamaged})
		in := f.createInput()
		in.AccessoryIDs = []int64{battery.ID, broken.ID, 9999}

		res, err := f.rentals.CreateRental(ctx, in)
		require.NoError(t, err)
		require.Len(t, res.Accessories, 3)
		assert.Equal(t, []int64{battery.ID}, domain.AssignedItemIDs(res.Accessories))
		assert.Equal(t, "item is Damaged", res.Accessories[1].Reason)
		assert.Equal(t, "item not found", res.Accessories[2].Reason)
	})
}

func TestRentalService_PricingIsFrozenAtCreation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 2)
	in := f.createInput()
	in.Payment = successPayment(2000)
	r := f.mustCreate(t, in)

	v := f.vehicle
	v.RentPerDay = decimal.NewFromInt(900)
	v.Quantity = 1
	f.store.AddVehicle(v)
	p := f.plan
	p.JoiningFee = decimal.NewFromInt(3000)
	p.SecurityDeposit = decimal.NewFromInt(5000)
	f.store.AddPlan(p)

	_, got, err := f.payments.RecordPayment(ctx, r.ID, *successPayment(250))
	require.NoError(t, err)
	assert.True(t, got.PayableTotal.Equal(money(t, "4250")))
	assert.True(t, got.PaidTotal.Equal(money(t, "2250")))

	got, err = f.rentals.GetRental(ctx, r.ID)
	require.NoError(t, err)
	assert.True(t, got.RatePerDay.Equal(money(t, "500")))
	assert.True(t, got.Deposit.Equal(money(t, "1750")))
	assert.True(t, got.Pricing.RentPerDay.Equal(money(t, "500")))
	assert.True(t, got.Pricing.Joining.Equal(money(t, "1000")))
	assert.True(t, got.PayableTotal.Equal(money(t, "4250")))
	assert.True(t, got.BalanceDue().Equal(money(t, "2000")))
}

func TestRentalService_ConcurrentCreateOnLastUnit(t *testing.T) {
	const n = 8
	f := newFixture(t, 1)
	ctx := context.Background()

	var (
		wg         sync.WaitGroup
		mu         sync.Mutex
		ok, failed int
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.rentals.CreateRental(ctx, f.createInput())
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				ok++
			} else if errors.Is(err, domain.ErrOutOfStock) {
				failed++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, ok)
	assert.Equal(t, n-1, failed)
	assert.Equal(t, int32(0), f.vehicleQuantity(t))
	rentals, _ := f.store.Counts()
	assert.Equal(t, 1, rentals)
}

func TestRentalService_StartRental(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 1)
	in := f.createInput()
	in.PreBooked = true
	r := f.mustCreate(t, in)

	pending := *successPayment(500)
	pending.Status = domain.PaymentStatusPending
	_, err := f.rentals.StartRental(ctx, StartRentalInput{RentalID: r.ID, Payment: pending})
	assert.ErrorIs(t, err, domain.ErrValidation)

	helmet := f.store.AddItem(domain.MiscInventoryItem{Kind: "helmet", Serial: "H-1"})
	res, err := f.rentals.StartRental(ctx, StartRentalInput{RentalID: r.ID, Payment: *successPayment(500), AccessoryIDs: []int64{helmet.ID}})
	require.NoError(t, err)
	assert.Equal(t, domain.RentalStatusOngoing, res.Rental.Status)
	assert.True(t, res.Rental.PaidTotal.Equal(money(t, "500")))
	assert.Equal(t, []int64{helmet.ID}, domain.AssignedItemIDs(res.Accessories))

	_, err = f.rentals.StartRental(ctx, StartRentalInput{RentalID: r.ID, Payment: *successPayment(500)})
	assert.ErrorIs(t, err, domain.ErrInvalidState)

	got, err := f.rentals.GetRental(ctx, r.ID)
	require.NoError(t, err)
	assert.True(t, got.PaidTotal.Equal(money(t, "500")))
}

func TestRentalService_ReturnRental(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 1)
	battery := f.store.AddItem(domain.MiscInventoryItem{Kind: "battery", Serial: "B-9"})
	in := f.createInput()
	in.AccessoryIDs = []int64{battery.ID}
	r := f.mustCreate(t, in)
	require.Equal(t, int32(0), f.vehicleQuantity(t))

	returned, err := f.rentals.ReturnRental(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RentalStatusCompleted, returned.Status)
	require.NotNil(t, returned.ActualReturnDate)
	assert.Equal(t, testToday, *returned.ActualReturnDate)
	assert.Equal(t, int32(1), f.vehicleQuantity(t))

	item, err := f.store.AccessoryRepository.GetByID(ctx, battery.ID)
	require.NoError(t, err)
	assert.Nil(t, item.AssignedRentalID)
	assert.Equal(t, domain.ItemStatusInStock, item.Status)

	_, err = f.rentals.ReturnRental(ctx, r.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidState)
	_, err = f.rentals.CancelRental(ctx, r.ID, "late")
	assert.ErrorIs(t, err, domain.ErrInvalidState)
}

func TestRentalService_CancelRental(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 1)
	in := f.createInput()
	in.PreBooked = true
	r := f.mustCreate(t, in)

	cancelled, err := f.rentals.CancelRental(ctx, r.ID, "rider no-show")
	require.NoError(t, err)
	assert.Equal(t, domain.RentalStatusCancelled, cancelled.Status)
	assert.Equal(t, "rider no-show", cancelled.CancelReason)
	assert.Equal(t, int32(1), f.vehicleQuantity(t))

	_, err = f.rentals.CancelRental(ctx, r.ID, "again")
	assert.ErrorIs(t, err, domain.ErrInvalidState)
	_, err = f.rentals.ReturnRental(ctx, r.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidState)
	assert.Equal(t, []events.Type{events.RentalCreated, events.RentalCancelled}, f.events.Types())
}

func TestRentalService_MarkOverdue(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 3)
	late := f.mustCreate(t, f.createInput())

	notDue := f.createInput()
	notDue.ExpectedReturnDate = testToday.AddDate(0, 0, 2)
	onTime := f.mustCreate(t, notDue)

	_, err := f.rentals.MarkOverdue(ctx, onTime.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidState)

	ids, err := f.rentals.MarkOverdueRentals(ctx, testToday)
	require.NoError(t, err)
	assert.Equal(t, []int64{late.ID}, ids)

	got, err := f.rentals.GetRental(ctx, late.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RentalStatusOverdue, got.Status)

	_, err = f.rentals.MarkOverdue(ctx, late.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidState)

	// overdue rentals can still be returned
	_, err = f.rentals.ReturnRental(ctx, late.ID)
	assert.NoError(t, err)
}

func TestRentalService_ListRentals(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 3)
	first := f.mustCreate(t, f.createInput())
	second := f.mustCreate(t, f.createInput())
	_, err := f.rentals.CancelRental(ctx, first.ID, "")
	require.NoError(t, err)

	list, total, err := f.rentals.ListRentals(ctx, domain.RentalFilter{Status: domain.RentalStatusOngoing})
	require.NoError(t, err)
	assert.Equal(t, int32(1), total)
	require.Len(t, list, 1)
	assert.Equal(t, second.ID, list[0].ID)

	_, _, err = f.rentals.ListRentals(ctx, domain.RentalFilter{Status: "lost"})
	assert.ErrorIs(t, err, domain.ErrValidation)
}
