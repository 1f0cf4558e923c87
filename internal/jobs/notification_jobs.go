package jobs

import (
	"context"

	"evrental-backend/internal/domain"
	"evrental-backend/internal/events"
	"evrental-backend/internal/logger"
	"evrental-backend/internal/pricing"

	"github.com/google/uuid"
)

const reminderPageSize = 100

type overdueReminder struct {
	RiderID            int64  `json:"rider_id"`
	VehicleID          int64  `json:"vehicle_id"`
	ExpectedReturnDate string `json:"expected_return_date"`
	DaysOverdue        int    `json:"days_overdue"`
	BalanceDue         string `json:"balance_due"`
}

// SendOverdueReminders publishes one reminder event per overdue rental for
// the notification workers to deliver.
func (jr *JobRunner) SendOverdueReminders() {
	jr.runWithRecovery("SendOverdueReminders", func() {
		ctx := context.Background()
		now := jr.now()

		count := 0
		for page := int32(1); ; page++ {
			rentals, total, err := jr.services.Rental.ListRentals(ctx, domain.RentalFilter{
				Status:   domain.RentalStatusOverdue,
				Page:     page,
				PageSize: reminderPageSize,
			})
			if err != nil {
				logger.Error("Failed to query overdue rentals", "error", err)
				return
			}

			for _, r := range rentals {
				evt := events.Event{
					ID:         uuid.NewString(),
					Type:       events.RentalReminder,
					RentalID:   r.ID,
					OccurredAt: now,
					Data: overdueReminder{
						RiderID:            r.RiderID,
						VehicleID:          r.VehicleID,
						ExpectedReturnDate: r.ExpectedReturnDate.Format(domain.DateLayout),
						DaysOverdue:        pricing.DaysBetween(r.ExpectedReturnDate, now),
						BalanceDue:         r.BalanceDue().StringFixed(domain.MoneyScale),
					},
				}
				if err := jr.services.Publisher.Publish(ctx, evt); err != nil {
					logger.Error("Failed to publish overdue reminder", "rental_id", r.ID, "error", err)
					continue
				}
				count++
			}

			if len(rentals) == 0 || int64(page)*reminderPageSize >= int64(total) {
				break
			}
		}

		logger.Info("Sent overdue reminders", "count", count)
	})
}
