package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Plan carries the fixed fees charged on top of daily usage.
// Rentals snapshot these amounts, so later edits never reach existing rentals.
type Plan struct {
	ID                int64           `json:"id"`
	Name              string          `json:"name"`
	JoiningFee        decimal.Decimal `json:"joining_fee"`
	SecurityDeposit   decimal.Decimal `json:"security_deposit"`
	RequiredDocuments []string        `json:"required_documents"`
	CreatedAt         time.Time       `json:"created_at"`
}
