package postgres

import (
	"context"
	"database/sql"
	"strings"

	"evrental-backend/internal/domain"
	"evrental-backend/internal/logger"
	"evrental-backend/internal/repository"
)

const staffColumns = `id, email, name, password_hash, role, active, created_at`

type staffRepository struct {
	db *sql.DB
}

func NewStaffRepository(db *sql.DB) repository.StaffRepository {
	return &staffRepository{db: db}
}

func (r *staffRepository) scan(row rowScanner) (*domain.Staff, error) {
	s := &domain.Staff{}
	if err := row.Scan(&s.ID, &s.Email, &s.Name, &s.PasswordHash, &s.Role, &s.Active, &s.CreatedAt); err != nil {
		return nil, err
	}
	return s, nil
}

func (r *staffRepository) GetByEmail(ctx context.Context, email string) (*domain.Staff, error) {
	logger.EnterMethod("staffRepository.GetByEmail", "email", email)

	query := `SELECT ` + staffColumns + ` FROM staff WHERE lower(email) = $1`
	s, err := r.scan(conn(ctx, r.db).QueryRowContext(ctx, query, strings.ToLower(email)))
	if err != nil {
		logger.ExitMethodWithError("staffRepository.GetByEmail", err, "email", email)
		return nil, notFound(err, domain.ErrStaffNotFound)
	}

	logger.ExitMethod("staffRepository.GetByEmail", "staffID", s.ID)
	return s, nil
}

func (r *staffRepository) GetByID(ctx context.Context, id int64) (*domain.Staff, error) {
	logger.EnterMethod("staffRepository.GetByID", "staffID", id)

	s, err := r.scan(conn(ctx, r.db).QueryRowContext(ctx, `SELECT `+staffColumns+` FROM staff WHERE id = $1`, id))
	if err != nil {
		logger.ExitMethodWithError("staffRepository.GetByID", err, "staffID", id)
		return nil, notFound(err, domain.ErrStaffNotFound)
	}

	logger.ExitMethod("staffRepository.GetByID", "staffID", id)
	return s, nil
}
