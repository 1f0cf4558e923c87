package http_test

import (
	"context"
	"time"

	"evrental-backend/internal/domain"
	"evrental-backend/internal/service"

	"github.com/stretchr/testify/mock"
)

type MockRentalService struct {
	mock.Mock
}

func (m *MockRentalService) CreateRental(ctx context.Context, in service.CreateRentalInput) (*service.RentalResult, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.RentalResult), args.Error(1)
}

func (m *MockRentalService) StartRental(ctx context.Context, in service.StartRentalInput) (*service.RentalResult, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.RentalResult), args.Error(1)
}

func (m *MockRentalService) ReturnRental(ctx context.Context, rentalID int64) (*domain.Rental, error) {
	args := m.Called(ctx, rentalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Rental), args.Error(1)
}

func (m *MockRentalService) CancelRental(ctx context.Context, rentalID int64, reason string) (*domain.Rental, error) {
	args := m.Called(ctx, rentalID, reason)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Rental), args.Error(1)
}

func (m *MockRentalService) MarkOverdue(ctx context.Context, rentalID int64) (*domain.Rental, error) {
	args := m.Called(ctx, rentalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Rental), args.Error(1)
}

func (m *MockRentalService) MarkOverdueRentals(ctx context.Context, asOf time.Time) ([]int64, error) {
	args := m.Called(ctx, asOf)
	return args.Get(0).([]int64), args.Error(1)
}

func (m *MockRentalService) GetRental(ctx context.Context, rentalID int64) (*domain.Rental, error) {
	args := m.Called(ctx, rentalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Rental), args.Error(1)
}

func (m *MockRentalService) ListRentals(ctx context.Context, filter domain.RentalFilter) ([]domain.Rental, int32, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]domain.Rental), args.Get(1).(int32), args.Error(2)
}

type MockPaymentService struct {
	mock.Mock
}

func (m *MockPaymentService) RecordPayment(ctx context.Context, rentalID int64, in domain.PaymentInput) (*domain.Payment, *domain.Rental, error) {
	args := m.Called(ctx, rentalID, in)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*domain.Payment), args.Get(1).(*domain.Rental), args.Error(2)
}

func (m *MockPaymentService) UpdatePaymentStatus(ctx context.Context, paymentID int64, status domain.PaymentStatus) (*domain.Payment, *domain.Rental, error) {
	args := m.Called(ctx, paymentID, status)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*domain.Payment), args.Get(1).(*domain.Rental), args.Error(2)
}

func (m *MockPaymentService) ListPayments(ctx context.Context, rentalID int64) ([]domain.Payment, error) {
	args := m.Called(ctx, rentalID)
	return args.Get(0).([]domain.Payment), args.Error(1)
}

type MockAccessoryService struct {
	mock.Mock
}

func (m *MockAccessoryService) AssignAccessories(ctx context.Context, rentalID int64, itemIDs []int64, notes string) ([]domain.AssignmentOutcome, error) {
	args := m.Called(ctx, rentalID, itemIDs, notes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.AssignmentOutcome), args.Error(1)
}

type MockInspectionService struct {
	mock.Mock
}

func (m *MockInspectionService) SaveInspection(ctx context.Context, in service.SaveInspectionInput) (*domain.ReturnInspection, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ReturnInspection), args.Error(1)
}

func (m *MockInspectionService) SettleInspection(ctx context.Context, inspectionID int64) (*domain.ReturnInspection, *domain.Rental, error) {
	args := m.Called(ctx, inspectionID)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*domain.ReturnInspection), args.Get(1).(*domain.Rental), args.Error(2)
}

func (m *MockInspectionService) GetInspection(ctx context.Context, rentalID int64) (*domain.ReturnInspection, error) {
	args := m.Called(ctx, rentalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ReturnInspection), args.Error(1)
}

type MockSettingsService struct {
	mock.Mock
}

func (m *MockSettingsService) GetSettlementSettings(ctx context.Context) (*domain.SettlementSettings, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SettlementSettings), args.Error(1)
}

func (m *MockSettingsService) UpdateSettlementSettings(ctx context.Context, settings *domain.SettlementSettings) (*domain.SettlementSettings, error) {
	args := m.Called(ctx, settings)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SettlementSettings), args.Error(1)
}

type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Login(ctx context.Context, email, password string) (string, time.Time, *domain.Staff, error) {
	args := m.Called(ctx, email, password)
	if args.Get(2) == nil {
		return args.String(0), args.Get(1).(time.Time), nil, args.Error(3)
	}
	return args.String(0), args.Get(1).(time.Time), args.Get(2).(*domain.Staff), args.Error(3)
}
