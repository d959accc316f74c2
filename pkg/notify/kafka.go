package notify

import (
	"context"
	"fmt"
	"time"

	"akoben/pkg/kafka"
	"akoben/pkg/logger"
)

type Publisher interface {
	Publish(ctx context.Context, msg kafka.Message) error
}

// KafkaDispatcher hands notifications to the notifier service through the
// notification topic. Events are keyed by booking id so one booking's mails
// stay ordered.
type KafkaDispatcher struct {
	publisher     Publisher
	source        string
	correlationID func(ctx context.Context) string
	log           *logger.Logger
}

func NewKafkaDispatcher(publisher Publisher, source string, correlationID func(ctx context.Context) string, log *logger.Logger) *KafkaDispatcher {
	if correlationID == nil {
		correlationID = func(context.Context) string { return "" }
	}
	return &KafkaDispatcher{
		publisher:     publisher,
		source:        source,
		correlationID: correlationID,
		log:           log,
	}
}

func (d *KafkaDispatcher) Send(ctx context.Context, email string, kind Kind, booking BookingContext) error {
	if !kind.Valid() {
		return fmt.Errorf("unknown notification kind %q", kind)
	}

	msg, err := kafka.NewMessage().
		WithKey(booking.BookingID).
		WithValue(NotificationEvent{
			Email:      email,
			Kind:       kind,
			Booking:    booking,
			OccurredAt: time.Now().UTC(),
		}).
		WithEventID("").
		WithEventType(string(kind)).
		WithCorrelationID(d.correlationID(ctx)).
		WithSchemaVersion(eventSchemaVersion).
		WithSource(d.source).
		Build()
	if err != nil {
		return err
	}

	if err := d.publisher.Publish(ctx, msg); err != nil {
		return fmt.Errorf("publish %s for booking %s: %w", kind, booking.BookingID, err)
	}

	d.log.Debug("Notification queued", "kind", kind, "booking_id", booking.BookingID, "event_id", msg.GetEventID())
	return nil
}
