package events

import (
	"context"

	"evrental-backend/internal/logger"
)

// LogPublisher writes events to the application log. It is the default when
// no broker is configured.
type LogPublisher struct{}

func NewLogPublisher() *LogPublisher {
	return &LogPublisher{}
}

func (p *LogPublisher) Publish(ctx context.Context, evt Event) error {
	logger.InfoContext(ctx, "Domain event", "type", evt.Type, "rentalID", evt.RentalID, "eventID", evt.ID)
	return nil
}

func (p *LogPublisher) Close() error { return nil }
