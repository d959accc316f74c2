package service

import (
	"context"
	"fmt"
	"net/http"
	"time"

	apperrors "akoben/pkg/errors"
	"akoben/pkg/locale"
	"akoben/pkg/model"
	"akoben/pkg/notify"
)

const defaultNotificationTimeout = 10 * time.Second

// notifyAsync sends kind for booking after the request returns. The request
// values (request id) travel along, its cancellation does not. Failures are
// logged and dropped.
func (s *bookingService) notifyAsync(reqCtx context.Context, booking *model.Booking, kind notify.Kind) {
	if s.dispatcher == nil {
		return
	}
	snapshot := *booking
	detached := context.WithoutCancel(reqCtx)

	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()
		timeout := s.cfg.NotificationTimeout
		if timeout <= 0 {
			timeout = defaultNotificationTimeout
		}
		ctx, cancel := context.WithTimeout(detached, timeout)
		defer cancel()

		if err := s.notify(ctx, &snapshot, kind); err != nil {
			s.cfg.Log.Warn("Failed to send booking notification",
				"booking_id", snapshot.ID,
				"kind", kind,
				"error", err,
			)
		}
	}()
}

func (s *bookingService) Drain(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.inflight.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return apperrors.Wrap(ctx.Err(), apperrors.CodeUnavailable, "Notifications still in flight at shutdown", http.StatusServiceUnavailable)
	}
}

func (s *bookingService) notify(ctx context.Context, booking *model.Booking, kind notify.Kind) error {
	identity, err := s.identities.GetByID(ctx, booking.IdentityID)
	if err != nil {
		return fmt.Errorf("load identity: %w", err)
	}
	trip, err := s.trips.FindByID(ctx, booking.TripID)
	if err != nil {
		return fmt.Errorf("load trip: %w", err)
	}

	// dates go out in the traveller's local time
	loc := locale.LocationForPhone(identity.Phone)
	bc := notify.BookingContext{
		BookingID:      booking.ID,
		Name:           identity.Name,
		TripName:       trip.Name,
		NumberOfPeople: booking.NumberOfPeople,
		Status:         string(booking.Status),
		Reference:      booking.Reference,
	}
	if booking.RescheduleDate != nil {
		local := booking.RescheduleDate.In(loc)
		bc.RescheduleDate = &local
	}
	if occ := trip.FindOccurrence(booking.OccurrenceID); occ != nil {
		bc.StartDate = occ.StartDate.In(loc)
		bc.EndDate = occ.EndDate.In(loc)
	}
	if booking.Payment {
		bc.AmountPaid = trip.Cost.PricePerPerson() * float64(booking.NumberOfPeople)
		bc.Currency = s.cfg.PaymentCurrency
	}

	return s.dispatcher.Send(ctx, identity.Email, kind, bc)
}
