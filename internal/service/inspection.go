package service

import (
	"context"
	"time"

	"evrental-backend/internal/domain"
	"evrental-backend/internal/events"
	"evrental-backend/internal/logger"
	"evrental-backend/internal/metrics"
	"evrental-backend/internal/repository"
	"evrental-backend/internal/settlement"
)

type inspectionService struct {
	tx          repository.TxManager
	rentals     repository.RentalRepository
	inspections repository.InspectionRepository
	settings    SettingsService
	publisher   events.Publisher
	now         func() time.Time
}

func NewInspectionService(
	tx repository.TxManager,
	rentals repository.RentalRepository,
	inspections repository.InspectionRepository,
	settings SettingsService,
	publisher events.Publisher,
) InspectionService {
	return &inspectionService{
		tx:          tx,
		rentals:     rentals,
		inspections: inspections,
		settings:    settings,
		publisher:   publisher,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// inspectable rejects rentals whose vehicle never left or whose books are closed.
func inspectable(op string, rental *domain.Rental) error {
	switch {
	case rental.Status == domain.RentalStatusConfirmed || rental.Status == domain.RentalStatusCancelled:
		return &domain.StateError{Op: op, Status: string(rental.Status)}
	case rental.Settled():
		return &domain.StateError{Op: op, Status: string(rental.Status), Hint: "rental is already settled"}
	}
	return nil
}

func (s *inspectionService) totals(ctx context.Context, rental *domain.Rental, charges domain.InspectionCharges) (domain.InspectionTotals, domain.SettlementSettings, error) {
	settings, err := s.settings.GetSettlementSettings(ctx)
	if err != nil {
		return domain.InspectionTotals{}, domain.SettlementSettings{}, err
	}
	in := settlement.Input{
		RentalStatus:       rental.Status,
		ExpectedReturnDate: rental.ExpectedReturnDate,
		AsOf:               s.now(),
		BalanceDue:         rental.BalanceDue(),
		Deposit:            rental.Deposit,
		Settings:           *settings,
		Charges:            charges,
	}
	if err := in.Validate(); err != nil {
		return domain.InspectionTotals{}, domain.SettlementSettings{}, err
	}
	return settlement.Calculate(in), *settings, nil
}

func (in *SaveInspectionInput) validate() error {
	v := &domain.ValidationError{}
	if in.RentalID <= 0 {
		v.Add("rental_id", "is required")
	}
	if in.Odometer < 0 {
		v.Add("odometer", "must not be negative")
	}
	if in.ChargePercent < 0 || in.ChargePercent > 100 {
		v.Add("charge_percent", "must be between 0 and 100")
	}
	return v.OrNil()
}

func (s *inspectionService) SaveInspection(ctx context.Context, in SaveInspectionInput) (*domain.ReturnInspection, error) {
	logger.EnterMethod("inspectionService.SaveInspection", "rentalID", in.RentalID)

	if err := in.validate(); err != nil {
		logger.ExitMethodWithError("inspectionService.SaveInspection", err)
		return nil, err
	}

	var inspection *domain.ReturnInspection
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		rental, err := s.rentals.GetForUpdate(ctx, in.RentalID)
		if err != nil {
			return err
		}
		if err := inspectable("save inspection", rental); err != nil {
			return err
		}
		totals, _, err := s.totals(ctx, rental, in.Charges)
		if err != nil {
			return err
		}
		photos := in.PhotoURLs
		if photos == nil {
			photos = []string{}
		}
		inspection = &domain.ReturnInspection{
			RentalID:            in.RentalID,
			Odometer:            in.Odometer,
			ChargePercent:       in.ChargePercent,
			AccessoriesReturned: domain.AccessoriesReturned{Version: domain.AccessoriesReturnedVersion, Items: in.AccessoriesReturned},
			BatteryMissing:      in.BatteryMissing,
			PhotoURLs:           photos,
			Notes:               in.Notes,
			InspectionCharges:   in.Charges,
			InspectionTotals:    totals,
		}
		return s.inspections.Upsert(ctx, inspection)
	})
	if err != nil {
		logger.ExitMethodWithError("inspectionService.SaveInspection", err)
		return nil, err
	}

	logger.ExitMethod("inspectionService.SaveInspection", "inspectionID", inspection.ID, "finalAmount", inspection.FinalAmount.String())
	return inspection, nil
}

func (s *inspectionService) SettleInspection(ctx context.Context, inspectionID int64) (*domain.ReturnInspection, *domain.Rental, error) {
	logger.EnterMethod("inspectionService.SettleInspection", "inspectionID", inspectionID)

	var (
		inspection *domain.ReturnInspection
		rental     *domain.Rental
	)
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		var err error
		inspection, err = s.inspections.GetForUpdate(ctx, inspectionID)
		if err != nil {
			return err
		}
		if inspection.Settled {
			return &domain.StateError{Op: "settle inspection", Status: "settled", Hint: "inspection is already settled"}
		}
		rental, err = s.rentals.GetForUpdate(ctx, inspection.RentalID)
		if err != nil {
			return err
		}
		if err := inspectable("settle inspection", rental); err != nil {
			return err
		}

		totals, settings, err := s.totals(ctx, rental, inspection.InspectionCharges)
		if err != nil {
			return err
		}
		if !settlement.Settleable(totals) {
			return &domain.StateError{
				Op:     "settle inspection",
				Status: string(rental.Status),
				Hint:   "clear outstanding balance of " + totals.FinalAmount.StringFixed(domain.MoneyScale) + " before settling",
			}
		}

		settledAt := s.now()
		inspection.InspectionTotals = totals
		ok, err := s.inspections.MarkSettled(ctx, inspection, settledAt)
		if err != nil {
			return err
		}
		if !ok {
			return &domain.StateError{Op: "settle inspection", Status: "settled", Hint: "inspection is already settled"}
		}

		charges := settlement.Charges(totals, settings.DepositPolicy, rental.Deposit)
		if err := s.rentals.ApplySettlement(ctx, rental.ID, charges, settledAt); err != nil {
			return err
		}
		rental, err = s.rentals.GetByID(ctx, rental.ID)
		return err
	})
	if err != nil {
		logger.ExitMethodWithError("inspectionService.SettleInspection", err)
		return nil, nil, err
	}

	metrics.SettlementsTotal.Inc()
	publish(ctx, s.publisher, events.InspectionSettled, rental.ID, inspection)

	logger.ExitMethod("inspectionService.SettleInspection", "inspectionID", inspectionID, "rentalID", rental.ID)
	return inspection, rental, nil
}

func (s *inspectionService) GetInspection(ctx context.Context, rentalID int64) (*domain.ReturnInspection, error) {
	return s.inspections.GetByRentalID(ctx, rentalID)
}
