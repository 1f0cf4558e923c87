package postgres

import (
	"context"
	"database/sql"

	"evrental-backend/internal/domain"
	"evrental-backend/internal/logger"
	"evrental-backend/internal/repository"

	"github.com/lib/pq"
)

type planRepository struct {
	db *sql.DB
}

func NewPlanRepository(db *sql.DB) repository.PlanRepository {
	return &planRepository{db: db}
}

func (r *planRepository) GetByID(ctx context.Context, id int64) (*domain.Plan, error) {
	logger.EnterMethod("planRepository.GetByID", "planID", id)

	query := `SELECT id, name, joining_fee, security_deposit, required_documents, created_at FROM plans WHERE id = $1`
	p := &domain.Plan{}
	err := conn(ctx, r.db).QueryRowContext(ctx, query, id).Scan(
		&p.ID, &p.Name, &p.JoiningFee, &p.SecurityDeposit, pq.Array(&p.RequiredDocuments), &p.CreatedAt,
	)
	if err != nil {
		logger.ExitMethodWithError("planRepository.GetByID", err, "planID", id)
		return nil, notFound(err, domain.ErrPlanNotFound)
	}

	logger.ExitMethod("planRepository.GetByID", "planID", id)
	return p, nil
}
