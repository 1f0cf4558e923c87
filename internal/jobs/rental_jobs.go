package jobs

import (
	"context"

	"evrental-backend/internal/domain"
	"evrental-backend/internal/logger"
)

// MarkOverdueRentals moves ongoing rentals past their expected return date to overdue.
func (jr *JobRunner) MarkOverdueRentals() {
	jr.runWithRecovery("MarkOverdueRentals", func() {
		ctx := context.Background()
		asOf := domain.CalendarDate(jr.now())

		ids, err := jr.services.Rental.MarkOverdueRentals(ctx, asOf)
		if err != nil {
			logger.Error("Failed to mark overdue rentals", "error", err)
			return
		}

		logger.Info("Marked rentals as overdue", "count", len(ids), "as_of", asOf.Format(domain.DateLayout))
		for _, id := range ids {
			logger.Debug("Marked rental as overdue", "rental_id", id)
		}
	})
}
