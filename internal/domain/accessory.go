package domain

import "time"

type ItemStatus string

const (
	ItemStatusAvailable ItemStatus = "Available"
	ItemStatusInStock   ItemStatus = "InStock"
	ItemStatusAssigned  ItemStatus = "Assigned"
	ItemStatusDamaged   ItemStatus = "Damaged"
	ItemStatusRetired   ItemStatus = "Retired"
	ItemStatusLost      ItemStatus = "Lost"
)

// Assignable reports whether an item in this status may be handed to a rider.
func (s ItemStatus) Assignable() bool {
	return s == ItemStatusAvailable || s == ItemStatusInStock
}

// MiscInventoryItem is loose stock such as batteries and chargers.
type MiscInventoryItem struct {
	ID               int64      `json:"id"`
	Kind             string     `json:"kind"`
	Serial           string     `json:"serial"`
	Status           ItemStatus `json:"status"`
	AssignedRentalID *int64     `json:"assigned_rental_id,omitempty"`
	Notes            string     `json:"notes"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// AssignmentOutcome is the per-item result of a best-effort assignment.
type AssignmentOutcome struct {
	ItemID   int64  `json:"item_id"`
	Assigned bool   `json:"assigned"`
	Reason   string `json:"reason,omitempty"`
}

// AssignedItemIDs returns the items that were actually assigned.
func AssignedItemIDs(outcomes []AssignmentOutcome) []int64 {
	ids := make([]int64, 0, len(outcomes))
	for _, o := range outcomes {
		if o.Assigned {
			ids = append(ids, o.ItemID)
		}
	}
	return ids
}
