package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type RentalStatus string

const (
	RentalStatusConfirmed RentalStatus = "confirmed"
	RentalStatusOngoing   RentalStatus = "ongoing"
	RentalStatusOverdue   RentalStatus = "overdue"
	RentalStatusCompleted RentalStatus = "completed"
	RentalStatusCancelled RentalStatus = "cancelled"
)

var rentalTransitions = map[RentalStatus][]RentalStatus{
	RentalStatusConfirmed: {RentalStatusOngoing, RentalStatusCancelled},
	RentalStatusOngoing:   {RentalStatusCompleted, RentalStatusCancelled, RentalStatusOverdue},
	RentalStatusOverdue:   {RentalStatusCompleted},
}

// Valid reports whether s is a known rental status.
func (s RentalStatus) Valid() bool {
	switch s {
	case RentalStatusConfirmed, RentalStatusOngoing, RentalStatusOverdue, RentalStatusCompleted, RentalStatusCancelled:
		return true
	}
	return false
}

// CanTransitionTo reports whether the state machine allows s -> next.
func (s RentalStatus) CanTransitionTo(next RentalStatus) bool {
	for _, allowed := range rentalTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Terminal statuses accept no further transitions.
func (s RentalStatus) Terminal() bool {
	return len(rentalTransitions[s]) == 0
}

// PricingSnapshotVersion is bumped whenever the snapshot shape changes.
const PricingSnapshotVersion = 1

// PricingSnapshot is the audit record of how a rental was priced at creation.
// It is persisted verbatim in rentals.pricing_json.
type PricingSnapshot struct {
	Version    int             `json:"v"`
	Days       int             `json:"days"`
	Usage      decimal.Decimal `json:"usage"`
	RentPerDay decimal.Decimal `json:"rentPerDay"`
	Joining    decimal.Decimal `json:"joining"`
	Deposit    decimal.Decimal `json:"deposit"`
}

// Total is the payable amount the snapshot produces.
func (p PricingSnapshot) Total() decimal.Decimal {
	return p.Joining.Add(p.Deposit).Add(p.Usage)
}

// Value implements driver.Valuer for the JSONB column.
func (p PricingSnapshot) Value() (driver.Value, error) {
	return json.Marshal(p)
}

// Scan implements sql.Scanner for the JSONB column.
func (p *PricingSnapshot) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	case nil:
		*p = PricingSnapshot{}
		return nil
	default:
		return fmt.Errorf("pricing snapshot: unsupported source type %T", src)
	}
	if err := json.Unmarshal(raw, p); err != nil {
		return fmt.Errorf("pricing snapshot: %w", err)
	}
	if p.Version == 0 {
		p.Version = PricingSnapshotVersion
	}
	if p.Version > PricingSnapshotVersion {
		return fmt.Errorf("pricing snapshot: unsupported version %d", p.Version)
	}
	return nil
}

// Rental is the aggregate root of the rental core.
type Rental struct {
	ID                 int64        `json:"id"`
	RiderID            int64        `json:"rider_id"`
	VehicleID          int64        `json:"vehicle_id"`
	PlanID             int64        `json:"plan_id"`
	StartDate          time.Time    `json:"start_date"`
	ExpectedReturnDate time.Time    `json:"expected_return_date"`
	ActualReturnDate   *time.Time   `json:"actual_return_date,omitempty"`
	Status             RentalStatus `json:"status"`
	// Snapshots of the live vehicle rate and plan deposit at creation time.
	RatePerDay   decimal.Decimal `json:"rate_per_day"`
	Deposit      decimal.Decimal `json:"deposit"`
	PayableTotal decimal.Decimal `json:"payable_total"`
	// PaidTotal is always the sum of SUCCESS payments; only the payment recorder writes it.
	PaidTotal    decimal.Decimal `json:"paid_total"`
	Pricing      PricingSnapshot `json:"pricing"`
	CancelReason string          `json:"cancel_reason,omitempty"`
	SettledAt    *time.Time      `json:"settled_at,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// BalanceDue is payable minus paid. A negative value is a credit owed to the rider.
func (r *Rental) BalanceDue() decimal.Decimal {
	return r.PayableTotal.Sub(r.PaidTotal)
}

// Settled reports whether the rental's charges are frozen.
func (r *Rental) Settled() bool {
	return r.SettledAt != nil
}

// MarshalJSON adds the derived balance to the wire form.
func (r Rental) MarshalJSON() ([]byte, error) {
	type alias Rental
	return json.Marshal(struct {
		alias
		BalanceDue decimal.Decimal `json:"balance_due"`
	}{alias: alias(r), BalanceDue: r.BalanceDue()})
}

// Listing bounds. Pages beyond MaxPage are rejected at the API edge.
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
	MaxPage         = 1_000_000
)

// RentalFilter narrows rental listings.
type RentalFilter struct {
	RiderID   int64
	VehicleID int64
	Status    RentalStatus
	Page      int32
	PageSize  int32
}

// Window returns the LIMIT and OFFSET for the filter's page, applying defaults.
// The offset is computed in int64 so large pages cannot overflow.
func (f RentalFilter) Window() (limit, offset int64) {
	page, size := int64(f.Page), int64(f.PageSize)
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = DefaultPageSize
	}
	return size, (page - 1) * size
}
