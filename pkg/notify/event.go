package notify

import (
	"context"
	"fmt"
	"time"

	"akoben/pkg/kafka"
)

const eventSchemaVersion = "1"

// NotificationEvent is the payload carried on the notification topic.
type NotificationEvent struct {
	Email      string         `json:"email"`
	Kind       Kind           `json:"kind"`
	Booking    BookingContext `json:"booking"`
	OccurredAt time.Time      `json:"occurred_at"`
}

// EventHandler turns notification events back into Send calls. The notifier
// binary feeds it from the Kafka consumer.
func EventHandler(dispatcher Dispatcher) kafka.MessageHandler {
	return func(ctx context.Context, msg kafka.Message) error {
		var event NotificationEvent
		if err := msg.DecodeValue(&event); err != nil {
			return err
		}
		if !event.Kind.Valid() {
			return kafka.NewPermanentError(fmt.Sprintf("unknown notification kind %q", event.Kind), nil)
		}
		if event.Email == "" {
			return kafka.NewPermanentError("notification event without recipient", nil)
		}
		return dispatcher.Send(ctx, event.Email, event.Kind, event.Booking)
	}
}
