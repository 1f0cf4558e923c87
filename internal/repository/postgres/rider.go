package postgres

import (
	"context"
	"database/sql"

	"evrental-backend/internal/domain"
	"evrental-backend/internal/logger"
	"evrental-backend/internal/repository"

	"github.com/lib/pq"
)

type riderRepository struct {
	db *sql.DB
}

func NewRiderRepository(db *sql.DB) repository.RiderRepository {
	return &riderRepository{db: db}
}

func (r *riderRepository) GetByID(ctx context.Context, id int64) (*domain.Rider, error) {
	logger.EnterMethod("riderRepository.GetByID", "riderID", id)

	query := `SELECT id, name, phone, COALESCE(email, ''), document_urls, created_at FROM riders WHERE id = $1`
	rd := &domain.Rider{}
	err := conn(ctx, r.db).QueryRowContext(ctx, query, id).Scan(
		&rd.ID, &rd.Name, &rd.Phone, &rd.Email, pq.Array(&rd.DocumentURLs), &rd.CreatedAt,
	)
	if err != nil {
		logger.ExitMethodWithError("riderRepository.GetByID", err, "riderID", id)
		return nil, notFound(err, domain.ErrRiderNotFound)
	}

	logger.ExitMethod("riderRepository.GetByID", "riderID", id)
	return rd, nil
}
