package service

import (
	"context"
	"time"

	"evrental-backend/internal/domain"
	"evrental-backend/internal/events"
	"evrental-backend/internal/logger"
	"evrental-backend/internal/metrics"
	"evrental-backend/internal/repository"
)

type paymentService struct {
	tx        repository.TxManager
	rentals   repository.RentalRepository
	payments  repository.PaymentRepository
	publisher events.Publisher
	now       func() time.Time
}

func NewPaymentService(
	tx repository.TxManager,
	rentals repository.RentalRepository,
	payments repository.PaymentRepository,
	publisher events.Publisher,
) PaymentService {
	return &paymentService{
		tx:        tx,
		rentals:   rentals,
		payments:  payments,
		publisher: publisher,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// recordPayment appends a validated payment row. The caller recomputes the
// rental's paid total in the same transaction.
func recordPayment(ctx context.Context, payments repository.PaymentRepository, rental *domain.Rental, in domain.PaymentInput, at time.Time) (*domain.Payment, error) {
	payment := &domain.Payment{
		RentalID:        rental.ID,
		RiderID:         rental.RiderID,
		Amount:          domain.RoundMoney(in.Amount),
		Method:          in.Method,
		TxnRef:          in.TxnRef,
		Status:          in.Status,
		TransactionDate: at,
	}
	if err := payments.Create(ctx, payment); err != nil {
		return nil, err
	}
	return payment, nil
}

func (s *paymentService) RecordPayment(ctx context.Context, rentalID int64, in domain.PaymentInput) (*domain.Payment, *domain.Rental, error) {
	logger.EnterMethod("paymentService.RecordPayment", "rentalID", rentalID, "amount", in.Amount.String(), "method", in.Method)

	v := &domain.ValidationError{}
	in.Validate("", v)
	if err := v.OrNil(); err != nil {
		logger.ExitMethodWithError("paymentService.RecordPayment", err)
		return nil, nil, err
	}

	var (
		payment *domain.Payment
		rental  *domain.Rental
	)
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		var err error
		rental, err = s.rentals.GetForUpdate(ctx, rentalID)
		if err != nil {
			return err
		}
		if rental.Status == domain.RentalStatusCancelled {
			return &domain.StateError{Op: "record payment", Status: string(rental.Status)}
		}
		if rental.Settled() {
			return &domain.StateError{Op: "record payment", Status: string(rental.Status), Hint: "rental is already settled"}
		}
		payment, err = recordPayment(ctx, s.payments, rental, in, s.now())
		if err != nil {
			return err
		}
		rental.PaidTotal, err = s.rentals.RecomputePaidTotal(ctx, rentalID)
		return err
	})
	if err != nil {
		logger.ExitMethodWithError("paymentService.RecordPayment", err)
		return nil, nil, err
	}

	metrics.PaymentsRecorded.WithLabelValues(string(payment.Status)).Inc()
	publish(ctx, s.publisher, events.PaymentRecorded, rentalID, payment)

	logger.ExitMethod("paymentService.RecordPayment", "paymentID", payment.ID, "paidTotal", rental.PaidTotal.String())
	return payment, rental, nil
}

func (s *paymentService) UpdatePaymentStatus(ctx context.Context, paymentID int64, status domain.PaymentStatus) (*domain.Payment, *domain.Rental, error) {
	logger.EnterMethod("paymentService.UpdatePaymentStatus", "paymentID", paymentID, "status", status)

	if !status.Valid() {
		err := domain.NewValidationError("status", "must be SUCCESS, FAILED or PENDING")
		logger.ExitMethodWithError("paymentService.UpdatePaymentStatus", err)
		return nil, nil, err
	}

	var (
		payment *domain.Payment
		rental  *domain.Rental
	)
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		var err error
		payment, err = s.payments.GetByID(ctx, paymentID)
		if err != nil {
			return err
		}
		rental, err = s.rentals.GetForUpdate(ctx, payment.RentalID)
		if err != nil {
			return err
		}
		if err := s.payments.UpdateStatus(ctx, paymentID, status); err != nil {
			return err
		}
		payment.Status = status
		rental.PaidTotal, err = s.rentals.RecomputePaidTotal(ctx, rental.ID)
		return err
	})
	if err != nil {
		logger.ExitMethodWithError("paymentService.UpdatePaymentStatus", err)
		return nil, nil, err
	}

	publish(ctx, s.publisher, events.PaymentCorrected, rental.ID, payment)

	logger.ExitMethod("paymentService.UpdatePaymentStatus", "paymentID", paymentID, "paidTotal", rental.PaidTotal.String())
	return payment, rental, nil
}

func (s *paymentService) ListPayments(ctx context.Context, rentalID int64) ([]domain.Payment, error) {
	if _, err := s.rentals.GetByID(ctx, rentalID); err != nil {
		return nil, err
	}
	return s.payments.ListByRental(ctx, rentalID)
}
