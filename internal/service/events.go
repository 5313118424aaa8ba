package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/referral-service/internal/events"
)

// publish fills in the id and timestamp and dispatches the event. Handler failures are logged
// and never fail the calling operation.
func publish(ctx context.Context, dispatcher events.Dispatcher, logger *zap.Logger, event events.Event) {
	if dispatcher == nil {
		return
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	if event.ID == "" {
		event.ID = events.NewEventID(event.Timestamp)
	}
	if err := dispatcher.Publish(ctx, event); err != nil {
		logger.Warn("event handler failed", zap.String("event_type", string(event.Type)), zap.Error(err))
	}
}
