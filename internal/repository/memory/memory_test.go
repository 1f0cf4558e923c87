package memory

import (
	"context"
	"errors"
	"sync"
	"testing"

	"evrental-backend/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_RunInTxRollsBack(t *testing.T) {
	s := NewStore()
	v := s.AddVehicle(domain.Vehicle{Code: "EV-1", RentPerDay: domain.Money(500), Quantity: 1})
	ctx := context.Background()

	boom := errors.New("boom")
	err := s.RunInTx(ctx, func(ctx context.Context) error {
		if _, err := s.Allocate(ctx, v.ID); err != nil {
			return err
		}
		if err := s.RentalRepository.Create(ctx, &domain.Rental{VehicleID: v.ID}); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	got, err := s.VehicleRepository.GetByID(ctx, v.ID)
	require.NoError(t, err)
	assert.Equal(t, int32(1), got.Quantity)
	assert.Equal(t, domain.VehicleStatusAvailable, got.Status)
	rentals, payments := s.Counts()
	assert.Zero(t, rentals)
	assert.Zero(t, payments)
}

func TestStore_UncommittedWritesAreInvisible(t *testing.T) {
	s := NewStore()
	v := s.AddVehicle(domain.Vehicle{Code: "EV-3", RentPerDay: domain.Money(500), Quantity: 1})
	ctx := context.Background()

	var (
		wg      sync.WaitGroup
		saveErr error
	)
	boom := errors.New("boom")
	err := s.RunInTx(ctx, func(txCtx context.Context) error {
		if _, err := s.Allocate(txCtx, v.ID); err != nil {
			return err
		}

		outside, err := s.VehicleRepository.GetByID(ctx, v.ID)
		require.NoError(t, err)
		assert.Equal(t, int32(1), outside.Quantity)

		inside, err := s.VehicleRepository.GetByID(txCtx, v.ID)
		require.NoError(t, err)
		assert.Equal(t, int32(0), inside.Quantity)

		wg.Add(1)
		go func() {
			defer wg.Done()
			saveErr = s.SaveSettlement(ctx, &domain.SettlementSettings{
				LateFeeEnabled: true, LateFeePerDay: domain.Money(300), DepositPolicy: domain.DepositPolicyHold,
			})
		}()
		return boom
	})
	assert.ErrorIs(t, err, boom)
	wg.Wait()
	require.NoError(t, saveErr)

	got, err := s.VehicleRepository.GetByID(ctx, v.ID)
	require.NoError(t, err)
	assert.Equal(t, int32(1), got.Quantity)

	settings, err := s.GetSettlement(ctx)
	require.NoError(t, err)
	assert.True(t, settings.LateFeePerDay.Equal(domain.Money(300)))
}

func TestStore_AllocateAndRelease(t *testing.T) {
	s := NewStore()
	v := s.AddVehicle(domain.Vehicle{Code: "EV-2", Quantity: 1})
	ctx := context.Background()

	got, err := s.Allocate(ctx, v.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.VehicleStatusRented, got.Status)

	_, err = s.Allocate(ctx, v.ID)
	assert.ErrorIs(t, err, domain.ErrOutOfStock)

	require.NoError(t, s.Release(ctx, v.ID))
	got, _ = s.VehicleRepository.GetByID(ctx, v.ID)
	assert.Equal(t, int32(1), got.Quantity)

	_, err = s.Allocate(ctx, 999)
	assert.ErrorIs(t, err, domain.ErrVehicleNotFound)
}

func TestStore_AssignGuard(t *testing.T) {
	s := NewStore()
	battery := s.AddItem(domain.MiscInventoryItem{Kind: "battery", Serial: "B-1"})
	lost := s.AddItem(domain.MiscInventoryItem{Kind: "charger", Serial: "C-1", Status: domain.ItemStatusLost})
	ctx := context.Background()

	ok, err := s.Assign(ctx, battery.ID, 10, "")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, _ = s.Assign(ctx, battery.ID, 11, "")
	assert.False(t, ok)

	ok, _ = s.Assign(ctx, lost.ID, 10, "")
	assert.False(t, ok)

	n, err := s.ReleaseForRental(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	it, _ := s.AccessoryRepository.GetByID(ctx, battery.ID)
	assert.Equal(t, domain.ItemStatusInStock, it.Status)
	assert.Nil(t, it.AssignedRentalID)
}

func TestStore_CancelledContextDoesNotCommit(t *testing.T) {
	s := NewStore()
	v := s.AddVehicle(domain.Vehicle{Code: "EV-3", Quantity: 1})
	ctx, cancel := context.WithCancel(context.Background())

	err := s.RunInTx(ctx, func(txCtx context.Context) error {
		if _, err := s.Allocate(txCtx, v.ID); err != nil {
			return err
		}
		cancel()
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)

	got, _ := s.VehicleRepository.GetByID(context.Background(), v.ID)
	assert.Equal(t, int32(1), got.Quantity)
}

func TestRentalRepository_ListFarPage(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	require.NoError(t, s.RentalRepository.Create(ctx, &domain.Rental{RiderID: 1}))

	rentals, total, err := s.RentalRepository.List(ctx, domain.RentalFilter{Page: 30000000, PageSize: 100})
	require.NoError(t, err)
	assert.Equal(t, int32(1), total)
	assert.Empty(t, rentals)

	rentals, _, err = s.RentalRepository.List(ctx, domain.RentalFilter{})
	require.NoError(t, err)
	assert.Len(t, rentals, 1)
}
