package service

import (
	"context"
	"time"

	"evrental-backend/internal/domain"
)

// CreateRentalInput is everything needed to open a rental in one step.
type CreateRentalInput struct {
	RiderID            int64
	VehicleID          int64
	PlanID             int64
	StartDate          time.Time
	ExpectedReturnDate time.Time
	// PreBooked creates the rental as confirmed; it is activated later by Start.
	PreBooked      bool
	Payment        *domain.PaymentInput
	AccessoryIDs   []int64
	AccessoryNotes string
}

// RentalResult bundles a rental with what the same operation recorded.
type RentalResult struct {
	Rental      *domain.Rental             `json:"rental"`
	Payment     *domain.Payment            `json:"payment,omitempty"`
	Accessories []domain.AssignmentOutcome `json:"accessories,omitempty"`
}

// StartRentalInput activates a pre-booked rental.
type StartRentalInput struct {
	RentalID       int64
	Payment        domain.PaymentInput
	AccessoryIDs   []int64
	AccessoryNotes string
}

// SaveInspectionInput is the inspector's draft for a returned rental.
type SaveInspectionInput struct {
	RentalID            int64
	Odometer            int64
	ChargePercent       int32
	AccessoriesReturned []domain.ReturnedAccessory
	BatteryMissing      bool
	PhotoURLs           []string
	Notes               string
	Charges             domain.InspectionCharges
}

type RentalService interface {
	CreateRental(ctx context.Context, in CreateRentalInput) (*RentalResult, error)
	StartRental(ctx context.Context, in StartRentalInput) (*RentalResult, error)
	ReturnRental(ctx context.Context, rentalID int64) (*domain.Rental, error)
	CancelRental(ctx context.Context, rentalID int64, reason string) (*domain.Rental, error)
	MarkOverdue(ctx context.Context, rentalID int64) (*domain.Rental, error)
	MarkOverdueRentals(ctx context.Context, asOf time.Time) ([]int64, error)
	GetRental(ctx context.Context, rentalID int64) (*domain.Rental, error)
	ListRentals(ctx context.Context, filter domain.RentalFilter) ([]domain.Rental, int32, error)
}

type PaymentService interface {
	RecordPayment(ctx context.Context, rentalID int64, in domain.PaymentInput) (*domain.Payment, *domain.Rental, error)
	UpdatePaymentStatus(ctx context.Context, paymentID int64, status domain.PaymentStatus) (*domain.Payment, *domain.Rental, error)
	ListPayments(ctx context.Context, rentalID int64) ([]domain.Payment, error)
}

type AccessoryService interface {
	AssignAccessories(ctx context.Context, rentalID int64, itemIDs []int64, notes string) ([]domain.AssignmentOutcome, error)
}

type InspectionService interface {
	SaveInspection(ctx context.Context, in SaveInspectionInput) (*domain.ReturnInspection, error)
	SettleInspection(ctx context.Context, inspectionID int64) (*domain.ReturnInspection, *domain.Rental, error)
	GetInspection(ctx context.Context, rentalID int64) (*domain.ReturnInspection, error)
}

type SettingsService interface {
	GetSettlementSettings(ctx context.Context) (*domain.SettlementSettings, error)
	UpdateSettlementSettings(ctx context.Context, settings *domain.SettlementSettings) (*domain.SettlementSettings, error)
}

type AuthService interface {
	// Login returns a signed access token and its expiry.
	Login(ctx context.Context, email, password string) (string, time.Time, *domain.Staff, error)
}
