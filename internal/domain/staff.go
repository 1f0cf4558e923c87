package domain

import "time"

type StaffRole string

const (
	StaffRoleAdmin    StaffRole = "ADMIN"
	StaffRoleOperator StaffRole = "OPERATOR"
)

// Staff is a back-office user. Accounts are managed elsewhere; the core only
// authenticates them.
type Staff struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	Role         StaffRole `json:"role"`
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"created_at"`
}
