package postgres

import (
	"context"
	"database/sql"

	"evrental-backend/internal/domain"
	"evrental-backend/internal/logger"
	"evrental-backend/internal/repository"
)

const paymentColumns = `id, rental_id, rider_id, amount, method, txn_ref, status, transaction_date, created_at`

type paymentRepository struct {
	db *sql.DB
}

func NewPaymentRepository(db *sql.DB) repository.PaymentRepository {
	return &paymentRepository{db: db}
}

func scanPayment(row rowScanner) (*domain.Payment, error) {
	p := &domain.Payment{}
	err := row.Scan(&p.ID, &p.RentalID, &p.RiderID, &p.Amount, &p.Method, &p.TxnRef, &p.Status, &p.TransactionDate, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *paymentRepository) Create(ctx context.Context, p *domain.Payment) error {
	logger.EnterMethod("paymentRepository.Create", "rentalID", p.RentalID, "amount", p.Amount, "status", p.Status)

	query := `
		INSERT INTO payments (rental_id, rider_id, amount, method, txn_ref, status, transaction_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`
	err := conn(ctx, r.db).QueryRowContext(ctx, query,
		p.RentalID, p.RiderID, p.Amount, p.Method, p.TxnRef, p.Status, p.TransactionDate,
	).Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		logger.ExitMethodWithError("paymentRepository.Create", err, "rentalID", p.RentalID)
		return err
	}

	logger.ExitMethod("paymentRepository.Create", "paymentID", p.ID)
	return nil
}

func (r *paymentRepository) GetByID(ctx context.Context, id int64) (*domain.Payment, error) {
	logger.EnterMethod("paymentRepository.GetByID", "paymentID", id)

	query := `SELECT ` + paymentColumns + ` FROM payments WHERE id = $1`
	p, err := scanPayment(conn(ctx, r.db).QueryRowContext(ctx, query, id))
	if err != nil {
		logger.ExitMethodWithError("paymentRepository.GetByID", err, "paymentID", id)
		return nil, notFound(err, domain.ErrPaymentNotFound)
	}

	logger.ExitMethod("paymentRepository.GetByID", "paymentID", id)
	return p, nil
}

func (r *paymentRepository) UpdateStatus(ctx context.Context, id int64, status domain.PaymentStatus) error {
	logger.EnterMethod("paymentRepository.UpdateStatus", "paymentID", id, "status", status)

	res, err := conn(ctx, r.db).ExecContext(ctx, `UPDATE payments SET status = $1 WHERE id = $2`, status, id)
	if err != nil {
		logger.ExitMethodWithError("paymentRepository.UpdateStatus", err, "paymentID", id)
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrPaymentNotFound
	}

	logger.ExitMethod("paymentRepository.UpdateStatus", "paymentID", id)
	return nil
}

func (r *paymentRepository) ListByRental(ctx context.Context, rentalID int64) ([]domain.Payment, error) {
	logger.EnterMethod("paymentRepository.ListByRental", "rentalID", rentalID)

	query := `SELECT ` + paymentColumns + ` FROM payments WHERE rental_id = $1 ORDER BY transaction_date, id`
	rows, err := conn(ctx, r.db).QueryContext(ctx, query, rentalID)
	if err != nil {
		logger.ExitMethodWithError("paymentRepository.ListByRental", err, "rentalID", rentalID)
		return nil, err
	}
	defer rows.Close()

	var payments []domain.Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		payments = append(payments, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	logger.ExitMethod("paymentRepository.ListByRental", "rentalID", rentalID, "count", len(payments))
	return payments, nil
}
