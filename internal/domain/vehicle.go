package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type VehicleStatus string

const (
	VehicleStatusAvailable VehicleStatus = "Available"
	VehicleStatusRented    VehicleStatus = "Rented"
)

// Vehicle is a rentable model with a pool of interchangeable units.
type Vehicle struct {
	ID         int64           `json:"id"`
	Code       string          `json:"code"`
	Model      string          `json:"model"`
	RentPerDay decimal.Decimal `json:"rent_per_day"`
	Quantity   int32           `json:"quantity"`
	Status     VehicleStatus   `json:"status"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// StatusForQuantity derives the vehicle status from the units left in stock.
func StatusForQuantity(quantity int32) VehicleStatus {
	if quantity <= 0 {
		return VehicleStatusRented
	}
	return VehicleStatusAvailable
}
