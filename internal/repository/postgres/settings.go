package postgres

import (
	"context"
	"database/sql"

	"evrental-backend/internal/domain"
	"evrental-backend/internal/logger"
	"evrental-backend/internal/repository"
)

// settlement_settings holds a single row keyed by id = 1.
type settingsRepository struct {
	db *sql.DB
}

func NewSettingsRepository(db *sql.DB) repository.SettingsRepository {
	return &settingsRepository{db: db}
}

func (r *settingsRepository) GetSettlement(ctx context.Context) (*domain.SettlementSettings, error) {
	logger.EnterMethod("settingsRepository.GetSettlement")

	query := `SELECT late_fee_enabled, late_fee_per_day, tax_percent_default, deposit_policy FROM settlement_settings WHERE id = 1`
	s := &domain.SettlementSettings{}
	err := conn(ctx, r.db).QueryRowContext(ctx, query).Scan(&s.LateFeeEnabled, &s.LateFeePerDay, &s.TaxPercentDefault, &s.DepositPolicy)
	if err != nil {
		logger.ExitMethodWithError("settingsRepository.GetSettlement", err)
		return nil, notFound(err, domain.ErrNotFound)
	}

	logger.ExitMethod("settingsRepository.GetSettlement")
	return s, nil
}

func (r *settingsRepository) SaveSettlement(ctx context.Context, s *domain.SettlementSettings) error {
	logger.EnterMethod("settingsRepository.SaveSettlement", "depositPolicy", s.DepositPolicy)

	query := `
		INSERT INTO settlement_settings (id, late_fee_enabled, late_fee_per_day, tax_percent_default, deposit_policy, updated_at)
		VALUES (1, $1, $2, $3, $4, NOW())
		ON CONFLICT (id) DO UPDATE SET
			late_fee_enabled = EXCLUDED.late_fee_enabled,
			late_fee_per_day = EXCLUDED.late_fee_per_day,
			tax_percent_default = EXCLUDED.tax_percent_default,
			deposit_policy = EXCLUDED.deposit_policy,
			updated_at = NOW()
	`
	_, err := conn(ctx, r.db).ExecContext(ctx, query, s.LateFeeEnabled, s.LateFeePerDay, s.TaxPercentDefault, s.DepositPolicy)
	if err != nil {
		logger.ExitMethodWithError("settingsRepository.SaveSettlement", err)
		return err
	}

	logger.ExitMethod("settingsRepository.SaveSettlement")
	return nil
}
