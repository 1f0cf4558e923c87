package service

import (
	"context"
	"errors"
	"time"

	"evrental-backend/internal/domain"
	"evrental-backend/internal/events"
	"evrental-backend/internal/logger"
	"evrental-backend/internal/metrics"
	"evrental-backend/internal/pricing"
	"evrental-backend/internal/repository"
)

type rentalService struct {
	tx          repository.TxManager
	vehicles    repository.VehicleRepository
	plans       repository.PlanRepository
	riders      repository.RiderRepository
	rentals     repository.RentalRepository
	payments    repository.PaymentRepository
	accessories repository.AccessoryRepository
	publisher   events.Publisher
	now         func() time.Time
}

func NewRentalService(
	tx repository.TxManager,
	vehicles repository.VehicleRepository,
	plans repository.PlanRepository,
	riders repository.RiderRepository,
	rentals repository.RentalRepository,
	payments repository.PaymentRepository,
	accessories repository.AccessoryRepository,
	publisher events.Publisher,
) RentalService {
	return &rentalService{
		tx:          tx,
		vehicles:    vehicles,
		plans:       plans,
		riders:      riders,
		rentals:     rentals,
		payments:    payments,
		accessories: accessories,
		publisher:   publisher,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

func (in *CreateRentalInput) validate() error {
	v := &domain.ValidationError{}
	if in.RiderID <= 0 {
		v.Add("rider_id", "is required")
	}
	if in.VehicleID <= 0 {
		v.Add("vehicle_id", "is required")
	}
	if in.PlanID <= 0 {
		v.Add("plan_id", "is required")
	}
	if in.StartDate.IsZero() {
		v.Add("start_date", "is required")
	}
	if in.ExpectedReturnDate.IsZero() {
		v.Add("expected_return_date", "is required")
	} else if !in.StartDate.IsZero() && domain.CalendarDate(in.ExpectedReturnDate).Before(domain.CalendarDate(in.StartDate)) {
		v.Add("expected_return_date", "must be on or after start_date")
	}
	if in.Payment != nil && !in.Payment.Amount.IsZero() {
		in.Payment.Validate("payment.", v)
	}
	return v.OrNil()
}

func (s *rentalService) CreateRental(ctx context.Context, in CreateRentalInput) (*RentalResult, error) {
	logger.EnterMethod("rentalService.CreateRental", "riderID", in.RiderID, "vehicleID", in.VehicleID, "planID", in.PlanID)

	if err := in.validate(); err != nil {
		logger.ExitMethodWithError("rentalService.CreateRental", err)
		return nil, err
	}

	var result *RentalResult
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		vehicle, err := s.vehicles.Allocate(ctx, in.VehicleID)
		if err != nil {
			if errors.Is(err, domain.ErrOutOfStock) {
				metrics.AllocationFailures.Inc()
			}
			return err
		}
		plan, err := s.plans.GetByID(ctx, in.PlanID)
		if err != nil {
			return err
		}
		if _, err := s.riders.GetByID(ctx, in.RiderID); err != nil {
			return err
		}

		snapshot, err := pricing.Calculate(pricing.Input{
			RentPerDay:         vehicle.RentPerDay,
			StartDate:          in.StartDate,
			ExpectedReturnDate: in.ExpectedReturnDate,
			JoiningFee:         plan.JoiningFee,
			SecurityDeposit:    plan.SecurityDeposit,
		})
		if err != nil {
			return err
		}

		status := domain.RentalStatusOngoing
		if in.PreBooked {
			status = domain.RentalStatusConfirmed
		}
		rental := &domain.Rental{
			RiderID:            in.RiderID,
			VehicleID:          in.VehicleID,
			PlanID:             in.PlanID,
			StartDate:          domain.CalendarDate(in.StartDate),
			ExpectedReturnDate: domain.CalendarDate(in.ExpectedReturnDate),
			Status:             status,
			RatePerDay:         snapshot.RentPerDay,
			Deposit:            snapshot.Deposit,
			PayableTotal:       snapshot.Total(),
			Pricing:            snapshot,
		}
		if err := s.rentals.Create(ctx, rental); err != nil {
			return err
		}
		result = &RentalResult{Rental: rental}

		// Any status is stored; only SUCCESS moves paid_total.
		if in.Payment != nil && !in.Payment.Amount.IsZero() {
			payment, err := recordPayment(ctx, s.payments, rental, *in.Payment, s.now())
			if err != nil {
				return err
			}
			result.Payment = payment
		}
		if len(in.AccessoryIDs) > 0 {
			outcomes, err := assignAccessories(ctx, s.accessories, rental.ID, in.AccessoryIDs, in.AccessoryNotes)
			if err != nil {
				return err
			}
			result.Accessories = outcomes
		}

		paid, err := s.rentals.RecomputePaidTotal(ctx, rental.ID)
		if err != nil {
			return err
		}
		rental.PaidTotal = paid
		return nil
	})
	if err != nil {
		logger.ExitMethodWithError("rentalService.CreateRental", err)
		return nil, err
	}

	metrics.RentalTransitions.WithLabelValues(string(result.Rental.Status)).Inc()
	publish(ctx, s.publisher, events.RentalCreated, result.Rental.ID, result)
	if result.Payment != nil {
		metrics.PaymentsRecorded.WithLabelValues(string(result.Payment.Status)).Inc()
	}

	logger.ExitMethod("rentalService.CreateRental", "rentalID", result.Rental.ID, "status", result.Rental.Status)
	return result, nil
}

func (s *rentalService) StartRental(ctx context.Context, in StartRentalInput) (*RentalResult, error) {
	logger.EnterMethod("rentalService.StartRental", "rentalID", in.RentalID)

	v := &domain.ValidationError{}
	in.Payment.Validate("payment.", v)
	if in.Payment.Status != domain.PaymentStatusSuccess {
		v.Add("payment.status", "a successful payment is required to start a rental")
	}
	if err := v.OrNil(); err != nil {
		logger.ExitMethodWithError("rentalService.StartRental", err)
		return nil, err
	}

	var result *RentalResult
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		rental, err := s.rentals.GetForUpdate(ctx, in.RentalID)
		if err != nil {
			return err
		}
		if rental.Status != domain.RentalStatusConfirmed {
			return &domain.StateError{Op: "start rental", Status: string(rental.Status), Hint: "only confirmed rentals can be started"}
		}
		rental.Status = domain.RentalStatusOngoing
		if err := s.rentals.UpdateStatus(ctx, rental); err != nil {
			return err
		}

		payment, err := recordPayment(ctx, s.payments, rental, in.Payment, s.now())
		if err != nil {
			return err
		}
		result = &RentalResult{Rental: rental, Payment: payment}

		if len(in.AccessoryIDs) > 0 {
			outcomes, err := assignAccessories(ctx, s.accessories, rental.ID, in.AccessoryIDs, in.AccessoryNotes)
			if err != nil {
				return err
			}
			result.Accessories = outcomes
		}

		paid, err := s.rentals.RecomputePaidTotal(ctx, rental.ID)
		if err != nil {
			return err
		}
		rental.PaidTotal = paid
		return nil
	})
	if err != nil {
		logger.ExitMethodWithError("rentalService.StartRental", err)
		return nil, err
	}

	metrics.RentalTransitions.WithLabelValues(string(domain.RentalStatusOngoing)).Inc()
	metrics.PaymentsRecorded.WithLabelValues(string(result.Payment.Status)).Inc()
	publish(ctx, s.publisher, events.RentalStarted, in.RentalID, result)

	logger.ExitMethod("rentalService.StartRental", "rentalID", in.RentalID)
	return result, nil
}

func (s *rentalService) ReturnRental(ctx context.Context, rentalID int64) (*domain.Rental, error) {
	logger.EnterMethod("rentalService.ReturnRental", "rentalID", rentalID)

	var rental *domain.Rental
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		var err error
		rental, err = s.rentals.GetForUpdate(ctx, rentalID)
		if err != nil {
			return err
		}
		if rental.Status != domain.RentalStatusOngoing && rental.Status != domain.RentalStatusOverdue {
			return &domain.StateError{Op: "return rental", Status: string(rental.Status)}
		}
		returned := domain.CalendarDate(s.now())
		rental.Status = domain.RentalStatusCompleted
		rental.ActualReturnDate = &returned
		if err := s.rentals.UpdateStatus(ctx, rental); err != nil {
			return err
		}
		return s.releaseHoldings(ctx, rental)
	})
	if err != nil {
		logger.ExitMethodWithError("rentalService.ReturnRental", err)
		return nil, err
	}

	metrics.RentalTransitions.WithLabelValues(string(domain.RentalStatusCompleted)).Inc()
	publish(ctx, s.publisher, events.RentalReturned, rental.ID, rental)

	logger.ExitMethod("rentalService.ReturnRental", "rentalID", rentalID)
	return rental, nil
}

func (s *rentalService) CancelRental(ctx context.Context, rentalID int64, reason string) (*domain.Rental, error) {
	logger.EnterMethod("rentalService.CancelRental", "rentalID", rentalID)

	var rental *domain.Rental
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		var err error
		rental, err = s.rentals.GetForUpdate(ctx, rentalID)
		if err != nil {
			return err
		}
		if !rental.Status.CanTransitionTo(domain.RentalStatusCancelled) {
			return &domain.StateError{Op: "cancel rental", Status: string(rental.Status)}
		}
		rental.Status = domain.RentalStatusCancelled
		rental.CancelReason = reason
		if err := s.rentals.UpdateStatus(ctx, rental); err != nil {
			return err
		}
		return s.releaseHoldings(ctx, rental)
	})
	if err != nil {
		logger.ExitMethodWithError("rentalService.CancelRental", err)
		return nil, err
	}

	metrics.RentalTransitions.WithLabelValues(string(domain.RentalStatusCancelled)).Inc()
	publish(ctx, s.publisher, events.RentalCancelled, rental.ID, rental)

	logger.ExitMethod("rentalService.CancelRental", "rentalID", rentalID)
	return rental, nil
}

// releaseHoldings puts the vehicle unit and every accessory of the rental back in stock.
func (s *rentalService) releaseHoldings(ctx context.Context, rental *domain.Rental) error {
	if err := s.vehicles.Release(ctx, rental.VehicleID); err != nil {
		return err
	}
	released, err := s.accessories.ReleaseForRental(ctx, rental.ID)
	if err != nil {
		return err
	}
	logger.Debug("Released rental holdings", "rentalID", rental.ID, "vehicleID", rental.VehicleID, "accessories", released)
	return nil
}

func (s *rentalService) MarkOverdue(ctx context.Context, rentalID int64) (*domain.Rental, error) {
	logger.EnterMethod("rentalService.MarkOverdue", "rentalID", rentalID)

	var rental *domain.Rental
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		var err error
		rental, err = s.rentals.GetForUpdate(ctx, rentalID)
		if err != nil {
			return err
		}
		if !rental.Status.CanTransitionTo(domain.RentalStatusOverdue) {
			return &domain.StateError{Op: "mark rental overdue", Status: string(rental.Status)}
		}
		if !rental.ExpectedReturnDate.Before(domain.CalendarDate(s.now())) {
			return &domain.StateError{Op: "mark rental overdue", Status: string(rental.Status), Hint: "expected return date has not passed"}
		}
		rental.Status = domain.RentalStatusOverdue
		return s.rentals.UpdateStatus(ctx, rental)
	})
	if err != nil {
		logger.ExitMethodWithError("rentalService.MarkOverdue", err)
		return nil, err
	}

	metrics.RentalTransitions.WithLabelValues(string(domain.RentalStatusOverdue)).Inc()
	publish(ctx, s.publisher, events.RentalOverdue, rental.ID, rental)

	logger.ExitMethod("rentalService.MarkOverdue", "rentalID", rentalID)
	return rental, nil
}

func (s *rentalService) MarkOverdueRentals(ctx context.Context, asOf time.Time) ([]int64, error) {
	logger.EnterMethod("rentalService.MarkOverdueRentals", "asOf", asOf.Format(domain.DateLayout))

	var ids []int64
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		var err error
		ids, err = s.rentals.MarkOverdue(ctx, domain.CalendarDate(asOf))
		return err
	})
	if err != nil {
		logger.ExitMethodWithError("rentalService.MarkOverdueRentals", err)
		return nil, err
	}

	metrics.RentalTransitions.WithLabelValues(string(domain.RentalStatusOverdue)).Add(float64(len(ids)))
	for _, id := range ids {
		publish(ctx, s.publisher, events.RentalOverdue, id, map[string]any{"as_of": asOf.Format(domain.DateLayout)})
	}

	logger.ExitMethod("rentalService.MarkOverdueRentals", "count", len(ids))
	return ids, nil
}

func (s *rentalService) GetRental(ctx context.Context, rentalID int64) (*domain.Rental, error) {
	return s.rentals.GetByID(ctx, rentalID)
}

func (s *rentalService) ListRentals(ctx context.Context, filter domain.RentalFilter) ([]domain.Rental, int32, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, 0, domain.NewValidationError("status", "unknown rental status")
	}
	return s.rentals.List(ctx, filter)
}
