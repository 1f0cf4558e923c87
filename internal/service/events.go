package service

import (
	"context"
	"time"

	"evrental-backend/internal/events"
	"evrental-backend/internal/logger"
	"evrental-backend/internal/metrics"

	"github.com/google/uuid"
)

// publish emits evt after the surrounding transaction committed. Failures are
// logged and counted but never returned.
func publish(ctx context.Context, pub events.Publisher, typ events.Type, rentalID int64, data any) {
	if pub == nil {
		return
	}
	evt := events.Event{
		ID:         uuid.NewString(),
		Type:       typ,
		RentalID:   rentalID,
		OccurredAt: time.Now().UTC(),
		Data:       data,
	}
	if err := pub.Publish(ctx, evt); err != nil {
		metrics.EventPublishFailures.WithLabelValues(string(typ)).Inc()
		logger.WarnContext(ctx, "Failed to publish domain event", "type", typ, "rentalID", rentalID, "error", err)
	}
}
