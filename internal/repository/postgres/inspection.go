package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"evrental-backend/internal/domain"
	"evrental-backend/internal/logger"
	"evrental-backend/internal/repository"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

const inspectionColumns = `id, rental_id, odometer, charge_percent, accessories_returned, battery_missing, photo_urls, notes,
	missing_items_charge, cleaning_fee, damage_fee, other_adjustments, tax_percent,
	late_days, late_fee, subtotal, applied_tax_percent, tax_amount, prior_balance, total_due, deposit_return, final_amount,
	settled, settled_at, created_at, updated_at`

type inspectionRepository struct {
	db *sql.DB
}

func NewInspectionRepository(db *sql.DB) repository.InspectionRepository {
	return &inspectionRepository{db: db}
}

func scanInspection(row rowScanner) (*domain.ReturnInspection, error) {
	in := &domain.ReturnInspection{}
	var taxPercent decimal.NullDecimal
	err := row.Scan(
		&in.ID, &in.RentalID, &in.Odometer, &in.ChargePercent, &in.AccessoriesReturned, &in.BatteryMissing,
		pq.Array(&in.PhotoURLs), &in.Notes,
		&in.MissingItemsCharge, &in.CleaningFee, &in.DamageFee, &in.OtherAdjustments, &taxPercent,
		&in.LateDays, &in.LateFee, &in.Subtotal, &in.AppliedTaxPercent, &in.TaxAmount, &in.PriorBalance,
		&in.TotalDue, &in.DepositReturn, &in.FinalAmount,
		&in.Settled, &in.SettledAt, &in.CreatedAt, &in.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if taxPercent.Valid {
		in.TaxPercent = &taxPercent.Decimal
	}
	return in, nil
}

func nullableDecimal(d *decimal.Decimal) decimal.NullDecimal {
	if d == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: *d, Valid: true}
}

// Upsert writes the draft. The conflict branch only fires for unsettled rows,
// so a settled inspection surfaces as ErrInvalidState.
func (r *inspectionRepository) Upsert(ctx context.Context, in *domain.ReturnInspection) error {
	logger.EnterMethod("inspectionRepository.Upsert", "rentalID", in.RentalID)

	query := `
		INSERT INTO return_inspections (
			rental_id, odometer, charge_percent, accessories_returned, battery_missing, photo_urls, notes,
			missing_items_charge, cleaning_fee, damage_fee, other_adjustments, tax_percent,
			late_days, late_fee, subtotal, applied_tax_percent, tax_amount, prior_balance, total_due,
			deposit_return, final_amount
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)
		ON CONFLICT (rental_id) DO UPDATE SET
			odometer = EXCLUDED.odometer,
			charge_percent = EXCLUDED.charge_percent,
			accessories_returned = EXCLUDED.accessories_returned,
			battery_missing = EXCLUDED.battery_missing,
			photo_urls = EXCLUDED.photo_urls,
			notes = EXCLUDED.notes,
			missing_items_charge = EXCLUDED.missing_items_charge,
			cleaning_fee = EXCLUDED.cleaning_fee,
			damage_fee = EXCLUDED.damage_fee,
			other_adjustments = EXCLUDED.other_adjustments,
			tax_percent = EXCLUDED.tax_percent,
			late_days = EXCLUDED.late_days,
			late_fee = EXCLUDED.late_fee,
			subtotal = EXCLUDED.subtotal,
			applied_tax_percent = EXCLUDED.applied_tax_percent,
			tax_amount = EXCLUDED.tax_amount,
			prior_balance = EXCLUDED.prior_balance,
			total_due = EXCLUDED.total_due,
			deposit_return = EXCLUDED.deposit_return,
			final_amount = EXCLUDED.final_amount,
			updated_at = NOW()
		WHERE return_inspections.settled = FALSE
		RETURNING id, created_at, updated_at
	`
	err := conn(ctx, r.db).QueryRowContext(ctx, query,
		in.RentalID, in.Odometer, in.ChargePercent, in.AccessoriesReturned, in.BatteryMissing, pq.Array(in.PhotoURLs), in.Notes,
		in.MissingItemsCharge, in.CleaningFee, in.DamageFee, in.OtherAdjustments, nullableDecimal(in.TaxPercent),
		in.LateDays, in.LateFee, in.Subtotal, in.AppliedTaxPercent, in.TaxAmount, in.PriorBalance, in.TotalDue,
		in.DepositReturn, in.FinalAmount,
	).Scan(&in.ID, &in.CreatedAt, &in.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		logger.ExitMethod("inspectionRepository.Upsert", "rentalID", in.RentalID, "result", "already_settled")
		return &domain.StateError{Op: "save inspection", Status: "settled", Hint: "settled inspections are frozen"}
	}
	if err != nil {
		logger.ExitMethodWithError("inspectionRepository.Upsert", err, "rentalID", in.RentalID)
		return err
	}

	logger.ExitMethod("inspectionRepository.Upsert", "inspectionID", in.ID)
	return nil
}

func (r *inspectionRepository) GetByID(ctx context.Context, id int64) (*domain.ReturnInspection, error) {
	return r.get(ctx, "inspectionRepository.GetByID", `SELECT `+inspectionColumns+` FROM return_inspections WHERE id = $1`, id)
}

func (r *inspectionRepository) GetByRentalID(ctx context.Context, rentalID int64) (*domain.ReturnInspection, error) {
	return r.get(ctx, "inspectionRepository.GetByRentalID", `SELECT `+inspectionColumns+` FROM return_inspections WHERE rental_id = $1`, rentalID)
}

func (r *inspectionRepository) GetForUpdate(ctx context.Context, id int64) (*domain.ReturnInspection, error) {
	return r.get(ctx, "inspectionRepository.GetForUpdate", `SELECT `+inspectionColumns+` FROM return_inspections WHERE id = $1 FOR UPDATE`, id)
}

func (r *inspectionRepository) get(ctx context.Context, method, query string, arg int64) (*domain.ReturnInspection, error) {
	logger.EnterMethod(method, "id", arg)

	in, err := scanInspection(conn(ctx, r.db).QueryRowContext(ctx, query, arg))
	if err != nil {
		logger.ExitMethodWithError(method, err, "id", arg)
		return nil, notFound(err, domain.ErrInspectionNotFound)
	}

	logger.ExitMethod(method, "inspectionID", in.ID, "settled", in.Settled)
	return in, nil
}

func (r *inspectionRepository) MarkSettled(ctx context.Context, in *domain.ReturnInspection, settledAt time.Time) (bool, error) {
	logger.EnterMethod("inspectionRepository.MarkSettled", "inspectionID", in.ID)

	query := `
		UPDATE return_inspections SET
			settled = TRUE,
			settled_at = $1,
			late_days = $2,
			late_fee = $3,
			subtotal = $4,
			applied_tax_percent = $5,
			tax_amount = $6,
			prior_balance = $7,
			total_due = $8,
			deposit_return = $9,
			final_amount = $10,
			updated_at = $1
		WHERE id = $11 AND settled = FALSE
	`
	res, err := conn(ctx, r.db).ExecContext(ctx, query,
		settledAt, in.LateDays, in.LateFee, in.Subtotal, in.AppliedTaxPercent, in.TaxAmount,
		in.PriorBalance, in.TotalDue, in.DepositReturn, in.FinalAmount, in.ID,
	)
	if err != nil {
		logger.ExitMethodWithError("inspectionRepository.MarkSettled", err, "inspectionID", in.ID)
		return false, err
	}
	n, _ := res.RowsAffected()
	if n == 1 {
		in.Settled = true
		in.SettledAt = &settledAt
		in.UpdatedAt = settledAt
	}

	logger.ExitMethod("inspectionRepository.MarkSettled", "inspectionID", in.ID, "settled", n == 1)
	return n == 1, nil
}
