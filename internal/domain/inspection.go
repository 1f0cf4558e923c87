package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// AccessoriesReturnedVersion is bumped whenever the accessories blob changes shape.
const AccessoriesReturnedVersion = 1

// ReturnedAccessory is one accessory line checked at inspection.
type ReturnedAccessory struct {
	ItemID    int64  `json:"itemId,omitempty"`
	Kind      string `json:"kind"`
	Returned  bool   `json:"returned"`
	Condition string `json:"condition,omitempty"`
}

// AccessoriesReturned is persisted in return_inspections.accessories_returned.
type AccessoriesReturned struct {
	Version int                 `json:"v"`
	Items   []ReturnedAccessory `json:"items"`
}

func (a AccessoriesReturned) Value() (driver.Value, error) {
	if a.Version == 0 {
		a.Version = AccessoriesReturnedVersion
	}
	if a.Items == nil {
		a.Items = []ReturnedAccessory{}
	}
	return json.Marshal(a)
}

func (a *AccessoriesReturned) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	case nil:
		*a = AccessoriesReturned{Version: AccessoriesReturnedVersion}
		return nil
	default:
		return fmt.Errorf("accessories returned: unsupported source type %T", src)
	}
	if err := json.Unmarshal(raw, a); err != nil {
		return fmt.Errorf("accessories returned: %w", err)
	}
	if a.Version == 0 {
		a.Version = AccessoriesReturnedVersion
	}
	if a.Version > AccessoriesReturnedVersion {
		return fmt.Errorf("accessories returned: unsupported version %d", a.Version)
	}
	return nil
}

// InspectionCharges are the inspector-entered money values.
type InspectionCharges struct {
	MissingItemsCharge decimal.Decimal  `json:"missing_items_charge"`
	CleaningFee        decimal.Decimal  `json:"cleaning_fee"`
	DamageFee          decimal.Decimal  `json:"damage_fee"`
	OtherAdjustments   decimal.Decimal  `json:"other_adjustments"`
	TaxPercent         *decimal.Decimal `json:"tax_percent,omitempty"`
}

// InspectionTotals are derived on every save and frozen on settle.
type InspectionTotals struct {
	LateDays          int             `json:"late_days"`
	LateFee           decimal.Decimal `json:"late_fee"`
	Subtotal          decimal.Decimal `json:"subtotal"`
	AppliedTaxPercent decimal.Decimal `json:"applied_tax_percent"`
	TaxAmount         decimal.Decimal `json:"tax_amount"`
	PriorBalance      decimal.Decimal `json:"prior_balance"`
	TotalDue          decimal.Decimal `json:"total_due"`
	DepositReturn     decimal.Decimal `json:"deposit_return"`
	FinalAmount       decimal.Decimal `json:"final_amount"`
}

// ReturnInspection records the condition of a returned vehicle and the
// charges derived from it. Once settled it never changes again.
type ReturnInspection struct {
	ID                  int64               `json:"id"`
	RentalID            int64               `json:"rental_id"`
	Odometer            int64               `json:"odometer"`
	ChargePercent       int32               `json:"charge_percent"`
	AccessoriesReturned AccessoriesReturned `json:"accessories_returned"`
	BatteryMissing      bool                `json:"battery_missing"`
	PhotoURLs           []string            `json:"photo_urls"`
	Notes               string              `json:"notes"`
	InspectionCharges
	InspectionTotals
	Settled   bool       `json:"settled"`
	SettledAt *time.Time `json:"settled_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}
