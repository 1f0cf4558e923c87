package repository

import (
	"context"
	"time"

	"evrental-backend/internal/domain"

	"github.com/shopspring/decimal"
)

// TxManager runs fn inside one database transaction. Repositories called with
// the ctx handed to fn join that transaction; any error rolls everything back.
type TxManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type VehicleRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Vehicle, error)
	// Allocate takes one unit out of stock. Returns domain.ErrOutOfStock when
	// none is left. Must run inside a transaction.
	Allocate(ctx context.Context, id int64) (*domain.Vehicle, error)
	Release(ctx context.Context, id int64) error
}

type PlanRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Plan, error)
}

type RiderRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Rider, error)
}

type RentalRepository interface {
	Create(ctx context.Context, rental *domain.Rental) error
	GetByID(ctx context.Context, id int64) (*domain.Rental, error)
	// GetForUpdate locks the rental row for the rest of the transaction.
	GetForUpdate(ctx context.Context, id int64) (*domain.Rental, error)
	// UpdateStatus persists status, actual return date and cancel reason.
	UpdateStatus(ctx context.Context, rental *domain.Rental) error
	// RecomputePaidTotal sets paid_total to the sum of SUCCESS payments and
	// returns the new value.
	RecomputePaidTotal(ctx context.Context, id int64) (decimal.Decimal, error)
	// ApplySettlement adds charges to payable_total and stamps settled_at.
	ApplySettlement(ctx context.Context, id int64, charges decimal.Decimal, settledAt time.Time) error
	List(ctx context.Context, filter domain.RentalFilter) ([]domain.Rental, int32, error)
	// MarkOverdue moves every ongoing rental whose expected return date is
	// before asOf to overdue and returns their ids.
	MarkOverdue(ctx context.Context, asOf time.Time) ([]int64, error)
}

type PaymentRepository interface {
	Create(ctx context.Context, payment *domain.Payment) error
	GetByID(ctx context.Context, id int64) (*domain.Payment, error)
	UpdateStatus(ctx context.Context, id int64, status domain.PaymentStatus) error
	ListByRental(ctx context.Context, rentalID int64) ([]domain.Payment, error)
}

type AccessoryRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.MiscInventoryItem, error)
	// Assign hands the item to the rental if it is unassigned and in an
	// assignable status. Reports false when the guard did not match.
	Assign(ctx context.Context, itemID, rentalID int64, notes string) (bool, error)
	// ReleaseForRental returns every item held by the rental to stock.
	ReleaseForRental(ctx context.Context, rentalID int64) (int64, error)
	ListByRental(ctx context.Context, rentalID int64) ([]domain.MiscInventoryItem, error)
}

type InspectionRepository interface {
	// Upsert inserts or replaces the rental's unsettled inspection.
	Upsert(ctx context.Context, inspection *domain.ReturnInspection) error
	GetByID(ctx context.Context, id int64) (*domain.ReturnInspection, error)
	GetByRentalID(ctx context.Context, rentalID int64) (*domain.ReturnInspection, error)
	GetForUpdate(ctx context.Context, id int64) (*domain.ReturnInspection, error)
	// MarkSettled freezes the inspection with its final totals. Reports false
	// when it was already settled.
	MarkSettled(ctx context.Context, inspection *domain.ReturnInspection, settledAt time.Time) (bool, error)
}

type SettingsRepository interface {
	// GetSettlement returns domain.ErrNotFound when no row has been saved.
	GetSettlement(ctx context.Context) (*domain.SettlementSettings, error)
	SaveSettlement(ctx context.Context, settings *domain.SettlementSettings) error
}

type StaffRepository interface {
	GetByEmail(ctx context.Context, email string) (*domain.Staff, error)
	GetByID(ctx context.Context, id int64) (*domain.Staff, error)
}

// Repositories bundles every repository with the transaction manager they join.
type Repositories struct {
	Tx          TxManager
	Vehicles    VehicleRepository
	Plans       PlanRepository
	Riders      RiderRepository
	Rentals     RentalRepository
	Payments    PaymentRepository
	Accessories AccessoryRepository
	Inspections InspectionRepository
	Settings    SettingsRepository
	Staff       StaffRepository
	// Ping reports whether the backing store is reachable.
	Ping func(ctx context.Context) error
}
