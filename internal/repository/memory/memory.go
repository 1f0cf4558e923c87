// Package memory is an in-process store used by tests and the "memory"
// database driver. Transactions are serialized by a single lock and commit by
// swapping in their working copy.
package memory

import (
	"context"
	"maps"
	"sync"

	"evrental-backend/internal/domain"
	"evrental-backend/internal/repository"
)

type txKey struct{}

type state struct {
	seq         int64
	vehicles    map[int64]domain.Vehicle
	plans       map[int64]domain.Plan
	riders      map[int64]domain.Rider
	rentals     map[int64]domain.Rental
	payments    map[int64]domain.Payment
	items       map[int64]domain.MiscInventoryItem
	inspections map[int64]domain.ReturnInspection
	staff       map[int64]domain.Staff
	settings    *domain.SettlementSettings
}

func newState() *state {
	return &state{
		vehicles:    make(map[int64]domain.Vehicle),
		plans:       make(map[int64]domain.Plan),
		riders:      make(map[int64]domain.Rider),
		rentals:     make(map[int64]domain.Rental),
		payments:    make(map[int64]domain.Payment),
		items:       make(map[int64]domain.MiscInventoryItem),
		inspections: make(map[int64]domain.ReturnInspection),
		staff:       make(map[int64]domain.Staff),
	}
}

func (st *state) clone() *state {
	c := &state{
		seq:         st.seq,
		vehicles:    maps.Clone(st.vehicles),
		plans:       maps.Clone(st.plans),
		riders:      maps.Clone(st.riders),
		rentals:     maps.Clone(st.rentals),
		payments:    maps.Clone(st.payments),
		items:       maps.Clone(st.items),
		inspections: maps.Clone(st.inspections),
		staff:       maps.Clone(st.staff),
	}
	if st.settings != nil {
		s := *st.settings
		c.settings = &s
	}
	return c
}

func (st *state) nextID() int64 {
	st.seq++
	return st.seq
}

type Store struct {
	txMu sync.Mutex
	mu   sync.RWMutex
	data *state

	repository.VehicleRepository
	repository.PlanRepository
	repository.RiderRepository
	repository.RentalRepository
	repository.PaymentRepository
	repository.AccessoryRepository
	repository.InspectionRepository
	repository.SettingsRepository
	repository.StaffRepository
}

func NewStore() *Store {
	s := &Store{data: newState()}
	s.VehicleRepository = &vehicleRepository{s}
	s.PlanRepository = &planRepository{s}
	s.RiderRepository = &riderRepository{s}
	s.RentalRepository = &rentalRepository{s}
	s.PaymentRepository = &paymentRepository{s}
	s.AccessoryRepository = &accessoryRepository{s}
	s.InspectionRepository = &inspectionRepository{s}
	s.SettingsRepository = &settingsRepository{s}
	s.StaffRepository = &staffRepository{s}
	return s
}

// RunInTx serializes transactions. fn works on a private copy of the committed
// state which replaces it only when fn succeeds, so readers outside the
// transaction never observe uncommitted writes.
func (s *Store) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*state); ok {
		return fn(ctx)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.RLock()
	work := s.data.clone()
	s.mu.RUnlock()

	if err := fn(context.WithValue(ctx, txKey{}, work)); err != nil {
		return err
	}
	// A cancelled caller never commits.
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	s.data = work
	s.mu.Unlock()
	return nil
}

// read runs fn against the transaction's working state, or the committed
// state outside a transaction.
func (s *Store) read(ctx context.Context, fn func(st *state) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if work, ok := ctx.Value(txKey{}).(*state); ok {
		return fn(work)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(s.data)
}

// write runs fn against the transaction's working state. Outside a
// transaction it waits for any open transaction so its change cannot be
// overwritten by that transaction's commit.
func (s *Store) write(ctx context.Context, fn func(st *state) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if work, ok := ctx.Value(txKey{}).(*state); ok {
		return fn(work)
	}
	s.txMu.Lock()
	defer s.txMu.Unlock()
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.data)
}

// Repositories exposes the store as the bundle the services are built from.
func (s *Store) Repositories() repository.Repositories {
	return repository.Repositories{
		Tx:          s,
		Vehicles:    s.VehicleRepository,
		Plans:       s.PlanRepository,
		Riders:      s.RiderRepository,
		Rentals:     s.RentalRepository,
		Payments:    s.PaymentRepository,
		Accessories: s.AccessoryRepository,
		Inspections: s.InspectionRepository,
		Settings:    s.SettingsRepository,
		Staff:       s.StaffRepository,
		Ping:        func(ctx context.Context) error { return ctx.Err() },
	}
}
