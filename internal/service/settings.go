package service

import (
	"context"
	"errors"

	"evrental-backend/internal/domain"
	"evrental-backend/internal/logger"
	"evrental-backend/internal/repository"

	"github.com/shopspring/decimal"
)

type settingsService struct {
	repo     repository.SettingsRepository
	defaults domain.SettlementSettings
}

// NewSettingsService serves the stored settlement settings, falling back to
// defaults until an operator saves a row.
func NewSettingsService(repo repository.SettingsRepository, defaults domain.SettlementSettings) SettingsService {
	return &settingsService{repo: repo, defaults: defaults}
}

func (s *settingsService) GetSettlementSettings(ctx context.Context) (*domain.SettlementSettings, error) {
	settings, err := s.repo.GetSettlement(ctx)
	if errors.Is(err, domain.ErrNotFound) {
		d := s.defaults
		return &d, nil
	}
	if err != nil {
		return nil, err
	}
	return settings, nil
}

func validateSettings(settings *domain.SettlementSettings) error {
	v := &domain.ValidationError{}
	if settings.LateFeePerDay.IsNegative() {
		v.Add("late_fee_per_day", "must not be negative")
	}
	if settings.TaxPercentDefault.IsNegative() || settings.TaxPercentDefault.GreaterThan(decimal.NewFromInt(100)) {
		v.Add("tax_percent_default", "must be between 0 and 100")
	}
	if settings.DepositPolicy == "" {
		settings.DepositPolicy = domain.DepositPolicyHold
	}
	if !settings.DepositPolicy.Valid() {
		v.Add("deposit_policy", "must be hold or offset")
	}
	return v.OrNil()
}

func (s *settingsService) UpdateSettlementSettings(ctx context.Context, settings *domain.SettlementSettings) (*domain.SettlementSettings, error) {
	logger.EnterMethod("settingsService.UpdateSettlementSettings", "lateFeeEnabled", settings.LateFeeEnabled, "depositPolicy", settings.DepositPolicy)

	if err := validateSettings(settings); err != nil {
		logger.ExitMethodWithError("settingsService.UpdateSettlementSettings", err)
		return nil, err
	}
	settings.LateFeePerDay = domain.RoundMoney(settings.LateFeePerDay)
	if err := s.repo.SaveSettlement(ctx, settings); err != nil {
		logger.ExitMethodWithError("settingsService.UpdateSettlementSettings", err)
		return nil, err
	}

	logger.ExitMethod("settingsService.UpdateSettlementSettings")
	return settings, nil
}
