package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"evrental-backend/internal/domain"
	"evrental-backend/internal/logger"
	"evrental-backend/internal/repository"

	"github.com/shopspring/decimal"
)

const rentalColumns = `id, rider_id, vehicle_id, plan_id, start_date, expected_return_date, actual_return_date,
	status, rate_per_day, deposit, payable_total, paid_total, pricing_json, cancel_reason, settled_at,
	created_at, updated_at`

type rentalRepository struct {
	db *sql.DB
}

func NewRentalRepository(db *sql.DB) repository.RentalRepository {
	return &rentalRepository{db: db}
}

func scanRental(row rowScanner) (*domain.Rental, error) {
	rt := &domain.Rental{}
	err := row.Scan(
		&rt.ID, &rt.RiderID, &rt.VehicleID, &rt.PlanID, &rt.StartDate, &rt.ExpectedReturnDate, &rt.ActualReturnDate,
		&rt.Status, &rt.RatePerDay, &rt.Deposit, &rt.PayableTotal, &rt.PaidTotal, &rt.Pricing, &rt.CancelReason, &rt.SettledAt,
		&rt.CreatedAt, &rt.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return rt, nil
}

func (r *rentalRepository) Create(ctx context.Context, rt *domain.Rental) error {
	logger.EnterMethod("rentalRepository.Create", "riderID", rt.RiderID, "vehicleID", rt.VehicleID)

	query := `
		INSERT INTO rentals (
			rider_id, vehicle_id, plan_id, start_date, expected_return_date, status,
			rate_per_day, deposit, payable_total, paid_total, pricing_json, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id, created_at, updated_at
	`
	now := time.Now().UTC()
	err := conn(ctx, r.db).QueryRowContext(ctx, query,
		rt.RiderID, rt.VehicleID, rt.PlanID, rt.StartDate, rt.ExpectedReturnDate, rt.Status,
		rt.RatePerDay, rt.Deposit, rt.PayableTotal, rt.PaidTotal, rt.Pricing, now, now,
	).Scan(&rt.ID, &rt.CreatedAt, &rt.UpdatedAt)
	if err != nil {
		logger.ExitMethodWithError("rentalRepository.Create", err, "riderID", rt.RiderID)
		return err
	}

	logger.ExitMethod("rentalRepository.Create", "rentalID", rt.ID)
	return nil
}

func (r *rentalRepository) GetByID(ctx context.Context, id int64) (*domain.Rental, error) {
	return r.get(ctx, "rentalRepository.GetByID", `SELECT `+rentalColumns+` FROM rentals WHERE id = $1`, id)
}

func (r *rentalRepository) GetForUpdate(ctx context.Context, id int64) (*domain.Rental, error) {
	return r.get(ctx, "rentalRepository.GetForUpdate", `SELECT `+rentalColumns+` FROM rentals WHERE id = $1 FOR UPDATE`, id)
}

func (r *rentalRepository) get(ctx context.Context, method, query string, id int64) (*domain.Rental, error) {
	logger.EnterMethod(method, "rentalID", id)

	rt, err := scanRental(conn(ctx, r.db).QueryRowContext(ctx, query, id))
	if err != nil {
		logger.ExitMethodWithError(method, err, "rentalID", id)
		return nil, notFound(err, domain.ErrRentalNotFound)
	}

	logger.ExitMethod(method, "rentalID", id, "status", rt.Status)
	return rt, nil
}

func (r *rentalRepository) UpdateStatus(ctx context.Context, rt *domain.Rental) error {
	logger.EnterMethod("rentalRepository.UpdateStatus", "rentalID", rt.ID, "status", rt.Status)

	query := `UPDATE rentals SET status = $1, actual_return_date = $2, cancel_reason = $3, updated_at = $4 WHERE id = $5`
	now := time.Now().UTC()
	res, err := conn(ctx, r.db).ExecContext(ctx, query, rt.Status, rt.ActualReturnDate, rt.CancelReason, now, rt.ID)
	if err != nil {
		logger.ExitMethodWithError("rentalRepository.UpdateStatus", err, "rentalID", rt.ID)
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrRentalNotFound
	}
	rt.UpdatedAt = now

	logger.ExitMethod("rentalRepository.UpdateStatus", "rentalID", rt.ID)
	return nil
}

func (r *rentalRepository) RecomputePaidTotal(ctx context.Context, id int64) (decimal.Decimal, error) {
	logger.EnterMethod("rentalRepository.RecomputePaidTotal", "rentalID", id)

	query := `
		UPDATE rentals SET
			paid_total = (
				SELECT COALESCE(SUM(amount), 0) FROM payments
				WHERE rental_id = $1 AND status = 'SUCCESS'
			),
			updated_at = NOW()
		WHERE id = $1
		RETURNING paid_total
	`
	var paid decimal.Decimal
	if err := conn(ctx, r.db).QueryRowContext(ctx, query, id).Scan(&paid); err != nil {
		logger.ExitMethodWithError("rentalRepository.RecomputePaidTotal", err, "rentalID", id)
		return decimal.Zero, notFound(err, domain.ErrRentalNotFound)
	}

	logger.ExitMethod("rentalRepository.RecomputePaidTotal", "rentalID", id, "paidTotal", paid)
	return paid, nil
}

func (r *rentalRepository) ApplySettlement(ctx context.Context, id int64, charges decimal.Decimal, settledAt time.Time) error {
	logger.EnterMethod("rentalRepository.ApplySettlement", "rentalID", id, "charges", charges)

	query := `UPDATE rentals SET payable_total = payable_total + $1, settled_at = $2, updated_at = $2 WHERE id = $3 AND settled_at IS NULL`
	res, err := conn(ctx, r.db).ExecContext(ctx, query, charges, settledAt, id)
	if err != nil {
		logger.ExitMethodWithError("rentalRepository.ApplySettlement", err, "rentalID", id)
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return &domain.StateError{Op: "settle", Hint: "rental already settled"}
	}

	logger.ExitMethod("rentalRepository.ApplySettlement", "rentalID", id)
	return nil
}

func (r *rentalRepository) List(ctx context.Context, f domain.RentalFilter) ([]domain.Rental, int32, error) {
	logger.EnterMethod("rentalRepository.List", "riderID", f.RiderID, "vehicleID", f.VehicleID, "status", f.Status)
	db := conn(ctx, r.db)

	where := ` WHERE 1=1`
	var args []any
	if f.RiderID != 0 {
		args = append(args, f.RiderID)
		where += fmt.Sprintf(" AND rider_id = $%d", len(args))
	}
	if f.VehicleID != 0 {
		args = append(args, f.VehicleID)
		where += fmt.Sprintf(" AND vehicle_id = $%d", len(args))
	}
	if f.Status != "" {
		args = append(args, f.Status)
		where += fmt.Sprintf(" AND status = $%d", len(args))
	}

	var count int32
	if err := db.QueryRowContext(ctx, `SELECT count(*) FROM rentals`+where, args...).Scan(&count); err != nil {
		logger.ExitMethodWithError("rentalRepository.List", err)
		return nil, 0, err
	}

	limit, offset := f.Window()
	query := `SELECT ` + rentalColumns + ` FROM rentals` + where +
		fmt.Sprintf(" ORDER BY created_at DESC, id DESC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		logger.ExitMethodWithError("rentalRepository.List", err)
		return nil, 0, err
	}
	defer rows.Close()

	var rentals []domain.Rental
	for rows.Next() {
		rt, err := scanRental(rows)
		if err != nil {
			return nil, 0, err
		}
		rentals = append(rentals, *rt)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	logger.ExitMethod("rentalRepository.List", "count", len(rentals), "total", count)
	return rentals, count, nil
}

func (r *rentalRepository) MarkOverdue(ctx context.Context, asOf time.Time) ([]int64, error) {
	logger.EnterMethod("rentalRepository.MarkOverdue", "asOf", asOf)

	query := `UPDATE rentals SET status = 'overdue', updated_at = NOW() WHERE status = 'ongoing' AND expected_return_date < $1 RETURNING id`
	rows, err := conn(ctx, r.db).QueryContext(ctx, query, asOf)
	if err != nil {
		logger.ExitMethodWithError("rentalRepository.MarkOverdue", err)
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	logger.ExitMethod("rentalRepository.MarkOverdue", "count", len(ids))
	return ids, nil
}
