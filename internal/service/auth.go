package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"evrental-backend/internal/domain"
	"evrental-backend/internal/logger"
	"evrental-backend/internal/repository"
	"evrental-backend/internal/security"

	"golang.org/x/crypto/bcrypt"
)

var ErrInvalidCredentials = errors.New("invalid email or password")

type authService struct {
	staffRepo repository.StaffRepository
	tokens    security.TokenManager
}

func NewAuthService(staffRepo repository.StaffRepository, tokens security.TokenManager) AuthService {
	return &authService{staffRepo: staffRepo, tokens: tokens}
}

func (s *authService) Login(ctx context.Context, email, password string) (string, time.Time, *domain.Staff, error) {
	email = strings.TrimSpace(email)
	logger.EnterMethod("authService.Login", "email", email)

	if email == "" || password == "" {
		logger.ExitMethodWithError("authService.Login", ErrInvalidCredentials)
		return "", time.Time{}, nil, ErrInvalidCredentials
	}

	staff, err := s.staffRepo.GetByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			logger.ExitMethodWithError("authService.Login", err)
			return "", time.Time{}, nil, err
		}
		logger.ExitMethodWithError("authService.Login", ErrInvalidCredentials)
		return "", time.Time{}, nil, ErrInvalidCredentials
	}
	if !staff.Active {
		logger.ExitMethodWithError("authService.Login", ErrInvalidCredentials, "staffID", staff.ID, "reason", "inactive")
		return "", time.Time{}, nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(staff.PasswordHash), []byte(password)); err != nil {
		logger.ExitMethodWithError("authService.Login", ErrInvalidCredentials, "staffID", staff.ID)
		return "", time.Time{}, nil, ErrInvalidCredentials
	}

	token, expiresAt, err := s.tokens.GenerateAccessToken(staff)
	if err != nil {
		logger.ExitMethodWithError("authService.Login", err)
		return "", time.Time{}, nil, err
	}

	logger.ExitMethod("authService.Login", "staffID", staff.ID)
	return token, expiresAt, staff, nil
}
