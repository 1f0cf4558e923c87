// Package events publishes rental domain events for downstream consumers such
// as notification and reminder workers. Publishing happens after commit and is
// best effort: a broker outage never fails the operation that produced the event.
package events

import (
	"context"
	"time"
)

type Type string

const (
	RentalCreated     Type = "rental.created"
	RentalStarted     Type = "rental.started"
	RentalReturned    Type = "rental.returned"
	RentalCancelled   Type = "rental.cancelled"
	RentalOverdue     Type = "rental.overdue"
	RentalReminder    Type = "rental.reminder"
	PaymentRecorded   Type = "payment.recorded"
	PaymentCorrected  Type = "payment.corrected"
	InspectionSettled Type = "inspection.settled"
)

// Event is the envelope written to the broker.
type Event struct {
	ID         string    `json:"id"`
	Type       Type      `json:"type"`
	RentalID   int64     `json:"rental_id"`
	OccurredAt time.Time `json:"occurred_at"`
	Data       any       `json:"data,omitempty"`
}

// Publisher is implemented by every broker adapter.
type Publisher interface {
	Publish(ctx context.Context, evt Event) error
	Close() error
}
