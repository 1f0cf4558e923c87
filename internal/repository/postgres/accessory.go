package postgres

import (
	"context"
	"database/sql"

	"evrental-backend/internal/domain"
	"evrental-backend/internal/logger"
	"evrental-backend/internal/repository"
)

const itemColumns = `id, kind, serial, status, assigned_rental_id, notes, updated_at`

type accessoryRepository struct {
	db *sql.DB
}

func NewAccessoryRepository(db *sql.DB) repository.AccessoryRepository {
	return &accessoryRepository{db: db}
}

func scanItem(row rowScanner) (*domain.MiscInventoryItem, error) {
	it := &domain.MiscInventoryItem{}
	err := row.Scan(&it.ID, &it.Kind, &it.Serial, &it.Status, &it.AssignedRentalID, &it.Notes, &it.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return it, nil
}

func (r *accessoryRepository) GetByID(ctx context.Context, id int64) (*domain.MiscInventoryItem, error) {
	logger.EnterMethod("accessoryRepository.GetByID", "itemID", id)

	query := `SELECT ` + itemColumns + ` FROM misc_inventory_items WHERE id = $1`
	it, err := scanItem(conn(ctx, r.db).QueryRowContext(ctx, query, id))
	if err != nil {
		logger.ExitMethodWithError("accessoryRepository.GetByID", err, "itemID", id)
		return nil, notFound(err, domain.ErrItemNotFound)
	}

	logger.ExitMethod("accessoryRepository.GetByID", "itemID", id)
	return it, nil
}

func (r *accessoryRepository) Assign(ctx context.Context, itemID, rentalID int64, notes string) (bool, error) {
	logger.EnterMethod("accessoryRepository.Assign", "itemID", itemID, "rentalID", rentalID)

	query := `
		UPDATE misc_inventory_items SET
			assigned_rental_id = $1,
			status = 'Assigned',
			notes = COALESCE(NULLIF($3, ''), notes),
			updated_at = NOW()
		WHERE id = $2 AND assigned_rental_id IS NULL AND status IN ('Available', 'InStock')
	`
	res, err := conn(ctx, r.db).ExecContext(ctx, query, rentalID, itemID, notes)
	if err != nil {
		logger.ExitMethodWithError("accessoryRepository.Assign", err, "itemID", itemID)
		return false, err
	}
	n, _ := res.RowsAffected()

	logger.ExitMethod("accessoryRepository.Assign", "itemID", itemID, "assigned", n == 1)
	return n == 1, nil
}

func (r *accessoryRepository) ReleaseForRental(ctx context.Context, rentalID int64) (int64, error) {
	logger.EnterMethod("accessoryRepository.ReleaseForRental", "rentalID", rentalID)

	query := `
		UPDATE misc_inventory_items SET
			assigned_rental_id = NULL,
			status = CASE WHEN status = 'Assigned' THEN 'InStock' ELSE status END,
			updated_at = NOW()
		WHERE assigned_rental_id = $1
	`
	res, err := conn(ctx, r.db).ExecContext(ctx, query, rentalID)
	if err != nil {
		logger.ExitMethodWithError("accessoryRepository.ReleaseForRental", err, "rentalID", rentalID)
		return 0, err
	}
	n, _ := res.RowsAffected()

	logger.ExitMethod("accessoryRepository.ReleaseForRental", "rentalID", rentalID, "released", n)
	return n, nil
}

func (r *accessoryRepository) ListByRental(ctx context.Context, rentalID int64) ([]domain.MiscInventoryItem, error) {
	logger.EnterMethod("accessoryRepository.ListByRental", "rentalID", rentalID)

	query := `SELECT ` + itemColumns + ` FROM misc_inventory_items WHERE assigned_rental_id = $1 ORDER BY id`
	rows, err := conn(ctx, r.db).QueryContext(ctx, query, rentalID)
	if err != nil {
		logger.ExitMethodWithError("accessoryRepository.ListByRental", err, "rentalID", rentalID)
		return nil, err
	}
	defer rows.Close()

	var items []domain.MiscInventoryItem
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *it)
	}

	logger.ExitMethod("accessoryRepository.ListByRental", "rentalID", rentalID, "count", len(items))
	return items, rows.Err()
}
