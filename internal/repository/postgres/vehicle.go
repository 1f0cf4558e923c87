package postgres

import (
	"context"
	"database/sql"
	"errors"

	"evrental-backend/internal/domain"
	"evrental-backend/internal/logger"
	"evrental-backend/internal/repository"
)

const vehicleColumns = `id, code, model, rent_per_day, quantity, status, created_at, updated_at`

type vehicleRepository struct {
	db *sql.DB
}

func NewVehicleRepository(db *sql.DB) repository.VehicleRepository {
	return &vehicleRepository{db: db}
}

func scanVehicle(row rowScanner) (*domain.Vehicle, error) {
	v := &domain.Vehicle{}
	err := row.Scan(&v.ID, &v.Code, &v.Model, &v.RentPerDay, &v.Quantity, &v.Status, &v.CreatedAt, &v.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return v, nil
}

func (r *vehicleRepository) GetByID(ctx context.Context, id int64) (*domain.Vehicle, error) {
	logger.EnterMethod("vehicleRepository.GetByID", "vehicleID", id)

	query := `SELECT ` + vehicleColumns + ` FROM vehicles WHERE id = $1`
	v, err := scanVehicle(conn(ctx, r.db).QueryRowContext(ctx, query, id))
	if err != nil {
		logger.ExitMethodWithError("vehicleRepository.GetByID", err, "vehicleID", id)
		return nil, notFound(err, domain.ErrVehicleNotFound)
	}

	logger.ExitMethod("vehicleRepository.GetByID", "vehicleID", id)
	return v, nil
}

// Allocate locks the vehicle row, then decrements with a guarded update so a
// unit can never be handed out twice even if the lock is not held.
func (r *vehicleRepository) Allocate(ctx context.Context, id int64) (*domain.Vehicle, error) {
	logger.EnterMethod("vehicleRepository.Allocate", "vehicleID", id)
	db := conn(ctx, r.db)

	var quantity int32
	lock := `SELECT quantity FROM vehicles WHERE id = $1 FOR UPDATE`
	logger.DatabaseCall("lock_vehicle", lock, "vehicleID", id)
	if err := db.QueryRowContext(ctx, lock, id).Scan(&quantity); err != nil {
		logger.ExitMethodWithError("vehicleRepository.Allocate", err, "vehicleID", id)
		return nil, notFound(err, domain.ErrVehicleNotFound)
	}
	if quantity <= 0 {
		logger.ExitMethod("vehicleRepository.Allocate", "vehicleID", id, "result", "out_of_stock")
		return nil, domain.ErrOutOfStock
	}

	update := `
		UPDATE vehicles SET
			quantity = quantity - 1,
			status = CASE WHEN quantity - 1 = 0 THEN 'Rented' ELSE 'Available' END,
			updated_at = NOW()
		WHERE id = $1 AND quantity > 0
		RETURNING ` + vehicleColumns
	v, err := scanVehicle(db.QueryRowContext(ctx, update, id))
	if errors.Is(err, sql.ErrNoRows) {
		logger.ExitMethod("vehicleRepository.Allocate", "vehicleID", id, "result", "out_of_stock")
		return nil, domain.ErrOutOfStock
	}
	if err != nil {
		logger.ExitMethodWithError("vehicleRepository.Allocate", err, "vehicleID", id)
		return nil, err
	}

	logger.ExitMethod("vehicleRepository.Allocate", "vehicleID", id, "remaining", v.Quantity)
	return v, nil
}

func (r *vehicleRepository) Release(ctx context.Context, id int64) error {
	logger.EnterMethod("vehicleRepository.Release", "vehicleID", id)

	query := `UPDATE vehicles SET quantity = quantity + 1, status = 'Available', updated_at = NOW() WHERE id = $1`
	res, err := conn(ctx, r.db).ExecContext(ctx, query, id)
	if err != nil {
		logger.ExitMethodWithError("vehicleRepository.Release", err, "vehicleID", id)
		return err
	}
	n, _ := res.RowsAffected()
	logger.DatabaseResult("release_vehicle", n, nil, "vehicleID", id)
	if n == 0 {
		return domain.ErrVehicleNotFound
	}

	logger.ExitMethod("vehicleRepository.Release", "vehicleID", id)
	return nil
}
