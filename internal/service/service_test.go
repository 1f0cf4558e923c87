package service

import (
	"context"
	"testing"
	"time"

	"evrental-backend/internal/domain"
	"evrental-backend/internal/events"
	"evrental-backend/internal/repository/memory"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

var testToday = time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)

type fixture struct {
	store       *memory.Store
	events      *events.Recorder
	rentals     *rentalService
	payments    *paymentService
	accessories *accessoryService
	inspections *inspectionService
	settings    SettingsService

	vehicle domain.Vehicle
	plan    domain.Plan
	rider   domain.Rider
}

func newFixture(t *testing.T, quantity int32) *fixture {
	t.Helper()
	store := memory.NewStore()
	rec := &events.Recorder{}
	clock := func() time.Time { return testToday.Add(10 * time.Hour) }

	settings := NewSettingsService(store.SettingsRepository, domain.SettlementSettings{
		LateFeeEnabled:    true,
		LateFeePerDay:     decimal.NewFromInt(500),
		TaxPercentDefault: decimal.NewFromInt(18),
		DepositPolicy:     domain.DepositPolicyHold,
	})

	rs := NewRentalService(store, store.VehicleRepository, store.PlanRepository, store.RiderRepository, store.RentalRepository, store.PaymentRepository, store.AccessoryRepository, rec).(*rentalService)
	rs.now = clock
	ps := NewPaymentService(store, store.RentalRepository, store.PaymentRepository, rec).(*paymentService)
	ps.now = clock
	is := NewInspectionService(store, store.RentalRepository, store.InspectionRepository, settings, rec).(*inspectionService)
	is.now = clock

	f := &fixture{
		store:       store,
		events:      rec,
		rentals:     rs,
		payments:    ps,
		accessories: NewAccessoryService(store, store.RentalRepository, store.AccessoryRepository).(*accessoryService),
		inspections: is,
		settings:    settings,
	}
	f.vehicle = store.AddVehicle(domain.Vehicle{Code: "EV-01", Model: "Ather 450X", RentPerDay: decimal.NewFromInt(500), Quantity: quantity})
	f.plan = store.AddPlan(domain.Plan{Name: "Weekly", JoiningFee: decimal.NewFromInt(1000), SecurityDeposit: decimal.NewFromInt(1750)})
	f.rider = store.AddRider(domain.Rider{Name: "Asha", Phone: "9000000001"})
	return f
}

func (f *fixture) createInput() CreateRentalInput {
	return CreateRentalInput{
		RiderID:            f.rider.ID,
		VehicleID:          f.vehicle.ID,
		PlanID:             f.plan.ID,
		StartDate:          time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		ExpectedReturnDate: time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC),
	}
}

func (f *fixture) mustCreate(t *testing.T, in CreateRentalInput) *domain.Rental {
	t.Helper()
	res, err := f.rentals.CreateRental(context.Background(), in)
	require.NoError(t, err)
	return res.Rental
}

func (f *fixture) vehicleQuantity(t *testing.T) int32 {
	t.Helper()
	v, err := f.store.VehicleRepository.GetByID(context.Background(), f.vehicle.ID)
	require.NoError(t, err)
	return v.Quantity
}

func successPayment(amount int64) *domain.PaymentInput {
	return &domain.PaymentInput{Amount: decimal.NewFromInt(amount), Method: domain.PaymentMethodUPI, Status: domain.PaymentStatusSuccess}
}

func money(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return d
}
