package postgres

import (
	"context"
	"database/sql"
	"errors"

	"evrental-backend/internal/repository"

	_ "github.com/lib/pq"
)

type Store struct {
	db *sql.DB
	*TxManager
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

func NewStore(db *sql.DB, opts TxOptions) *Store {
	return &Store{
		db:                   db,
		TxManager:            NewTxManager(db, opts),
		VehicleRepository:    NewVehicleRepository(db),
		PlanRepository:       NewPlanRepository(db),
		RiderRepository:      NewRiderRepository(db),
		RentalRepository:     NewRentalRepository(db),
		PaymentRepository:    NewPaymentRepository(db),
		AccessoryRepository:  NewAccessoryRepository(db),
		InspectionRepository: NewInspectionRepository(db),
		SettingsRepository:   NewSettingsRepository(db),
		StaffRepository:      NewStaffRepository(db),
	}
}

// DB exposes the pool for health checks.
func (s *Store) DB() *sql.DB {
	return s.db
}

// executor is satisfied by both *sql.DB and *sql.Tx.
type executor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type rowScanner interface {
	Scan(dest ...any) error
}

// conn returns the transaction carried by ctx, or the pool when there is none.
func conn(ctx context.Context, db *sql.DB) executor {
	if tx, ok := ctx.Value(txKey{}).(*sql.Tx); ok {
		return tx
	}
	return db
}

// notFound maps sql.ErrNoRows to the entity's not-found error.
func notFound(err, target error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return target
	}
	return err
}

// Repositories exposes the store as the bundle the services are built from.
func (s *Store) Repositories() repository.Repositories {
	return repository.Repositories{
		Tx:          s.TxManager,
		Vehicles:    s.VehicleRepository,
		Plans:       s.PlanRepository,
		Riders:      s.RiderRepository,
		Rentals:     s.RentalRepository,
		Payments:    s.PaymentRepository,
		Accessories: s.AccessoryRepository,
		Inspections: s.InspectionRepository,
		Settings:    s.SettingsRepository,
		Staff:       s.StaffRepository,
		Ping:        s.db.PingContext,
	}
}
