// Package notify delivers booking status notifications. Delivery is best
// effort: callers log a failed Send and carry on.
package notify

import (
	"context"
	"fmt"
	"time"

	"akoben/pkg/logger"
	"akoben/pkg/model"
)

type Kind string

const (
	KindPending     Kind = "booking_pending"
	KindConfirmed   Kind = "booking_confirmed"
	KindRescheduled Kind = "booking_rescheduled"
	KindCancelled   Kind = "booking_cancelled"
)

func (k Kind) Valid() bool {
	switch k {
	case KindPending, KindConfirmed, KindRescheduled, KindCancelled:
		return true
	}
	return false
}

// KindForStatus maps a booking status to the notification sent when a
// booking enters it.
func KindForStatus(status model.BookingStatus) (Kind, bool) {
	switch status {
	case model.BookingPending:
		return KindPending, true
	case model.BookingConfirmed:
		return KindConfirmed, true
	case model.BookingReschedule:
		return KindRescheduled, true
	case model.BookingCancelled:
		return KindCancelled, true
	}
	return "", false
}

// BookingContext is what the templates and the receipt render.
type BookingContext struct {
	BookingID      string     `json:"booking_id"`
	Name           string     `json:"name"`
	TripName       string     `json:"trip_name"`
	StartDate      time.Time  `json:"start_date"`
	EndDate        time.Time  `json:"end_date"`
	NumberOfPeople int        `json:"number_of_people"`
	Status         string     `json:"status"`
	Reference      string     `json:"reference,omitempty"`
	AmountPaid     float64    `json:"amount_paid,omitempty"`
	Currency       string     `json:"currency,omitempty"`
	RescheduleDate *time.Time `json:"reschedule_date,omitempty"`
}

type Dispatcher interface {
	Send(ctx context.Context, email string, kind Kind, booking BookingContext) error
}

// LogDispatcher only records what would have been sent.
type LogDispatcher struct {
	log *logger.Logger
}

func NewLogDispatcher(log *logger.Logger) *LogDispatcher {
	return &LogDispatcher{log: log}
}

func (d *LogDispatcher) Send(ctx context.Context, email string, kind Kind, booking BookingContext) error {
	if !kind.Valid() {
		return fmt.Errorf("unknown notification kind %q", kind)
	}
	d.log.Info("Notification not delivered, no transport configured",
		"kind", kind,
		"email", email,
		"booking_id", booking.BookingID,
	)
	return nil
}
