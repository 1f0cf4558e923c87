package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type PaymentStatus string

const (
	PaymentStatusSuccess PaymentStatus = "SUCCESS"
	PaymentStatusFailed  PaymentStatus = "FAILED"
	PaymentStatusPending PaymentStatus = "PENDING"
)

func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentStatusSuccess, PaymentStatusFailed, PaymentStatusPending:
		return true
	}
	return false
}

type PaymentMethod string

const (
	PaymentMethodCash   PaymentMethod = "cash"
	PaymentMethodUPI    PaymentMethod = "upi"
	PaymentMethodCard   PaymentMethod = "card"
	PaymentMethodBank   PaymentMethod = "bank_transfer"
	PaymentMethodOnline PaymentMethod = "online"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodUPI, PaymentMethodCard, PaymentMethodBank, PaymentMethodOnline:
		return true
	}
	return false
}

// Payment is an append-only money movement against a rental. Only SUCCESS
// payments count towards the rental's paid total.
type Payment struct {
	ID              int64           `json:"id"`
	RentalID        int64           `json:"rental_id"`
	RiderID         int64           `json:"rider_id"`
	Amount          decimal.Decimal `json:"amount"`
	Method          PaymentMethod   `json:"method"`
	TxnRef          *string         `json:"txn_ref,omitempty"`
	Status          PaymentStatus   `json:"transaction_status"`
	TransactionDate time.Time       `json:"transaction_date"`
	CreatedAt       time.Time       `json:"created_at"`
}

// PaymentInput is a payment supplied alongside a create or start request.
type PaymentInput struct {
	Amount decimal.Decimal `json:"amount"`
	Method PaymentMethod   `json:"method"`
	TxnRef *string         `json:"txn_ref,omitempty"`
	Status PaymentStatus   `json:"status"`
}

// Validate checks the payment fields, prefixing field names with prefix.
func (p *PaymentInput) Validate(prefix string, v *ValidationError) {
	if !p.Amount.IsPositive() {
		v.Add(prefix+"amount", "must be greater than 0")
	}
	if !p.Method.Valid() {
		v.Add(prefix+"method", "unknown payment method")
	}
	if p.Status == "" {
		p.Status = PaymentStatusSuccess
	}
	if !p.Status.Valid() {
		v.Add(prefix+"status", "must be SUCCESS, FAILED or PENDING")
	}
}
