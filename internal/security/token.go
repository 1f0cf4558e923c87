package security

import (
	"errors"
	"strconv"
	"time"

	"evrental-backend/internal/domain"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalidToken   = errors.New("invalid token")
	ErrExpiredToken   = errors.New("token has expired")
	ErrWrongTokenType = errors.New("wrong token type for this endpoint")
)

type TokenType string

const TokenTypeAccess TokenType = "access"

const (
	issuer   = "evrental-backend"
	audience = "staff-api"
)

// StaffClaims are carried by every staff access token.
type StaffClaims struct {
	StaffID int64            `json:"staff_id"`
	Email   string           `json:"email,omitempty"`
	Role    domain.StaffRole `json:"role"`
	Type    TokenType        `json:"type"`
	jwt.RegisteredClaims
}

// IsAdmin reports whether the token grants administrative routes.
func (c *StaffClaims) IsAdmin() bool {
	return c.Role == domain.StaffRoleAdmin
}

type TokenManager interface {
	GenerateAccessToken(staff *domain.Staff) (string, time.Time, error)
	ValidateToken(tokenString string) (*StaffClaims, error)
}

type tokenManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenManager(secret string, ttl time.Duration) TokenManager {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &tokenManager{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

func (m *tokenManager) GenerateAccessToken(staff *domain.Staff) (string, time.Time, error) {
	now := m.now()
	expiresAt := now.Add(m.ttl)
	claims := StaffClaims{
		StaffID: staff.ID,
		Email:   staff.Email,
		Role:    staff.Role,
		Type:    TokenTypeAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(staff.ID, 10),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    issuer,
			Audience:  jwt.ClaimStrings{audience},
			ID:        uuid.NewString(),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	return signed, expiresAt, err
}

func (m *tokenManager) ValidateToken(tokenString string) (*StaffClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &StaffClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return m.secret, nil
	}, jwt.WithIssuer(issuer), jwt.WithAudience(audience))

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*StaffClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Type != TokenTypeAccess {
		return nil, ErrWrongTokenType
	}
	if claims.StaffID == 0 && claims.Subject != "" {
		claims.StaffID, _ = strconv.ParseInt(claims.Subject, 10, 64)
	}
	return claims, nil
}
