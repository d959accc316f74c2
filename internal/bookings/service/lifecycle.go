package service

import (
	"context"

	apperrors "akoben/pkg/errors"
	"akoben/pkg/model"
	"akoben/pkg/notify"
	"akoben/pkg/sanitizer"
)

// Update applies a partial update. Status changes follow the booking
// transition table; cancelling gives the seat back and changing the
// occurrence moves it, both in the same transaction as the booking write.
func (s *bookingService) Update(ctx context.Context, id string, updates *model.BookingUpdate) (*model.Booking, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}
	if updates.IsEmpty() {
		return nil, apperrors.InvalidInput("Update must contain at least one field")
	}

	s.sanitizeUpdate(updates)
	if err := s.validator.ValidateUpdate(updates); err != nil {
		return nil, apperrors.Validation("Booking update validation failed", map[string]any{
			"error": err.Error(),
		})
	}
	if updates.RescheduleDate != nil && !updates.RescheduleDate.After(s.now()) {
		return nil, apperrors.Validation("Booking update validation failed", map[string]any{
			"error": "reschedule_date: must be in the future",
		})
	}

	var updated *model.Booking
	var previous model.BookingStatus
	err := s.repo.ExecuteTransaction(ctx, func(txCtx context.Context) error {
		existing, err := s.repo.FindByID(txCtx, id)
		if err != nil {
			return err
		}
		previous = existing.Status

		merged, err := s.applyUpdate(existing, updates)
		if err != nil {
			return err
		}

		switch {
		case existing.Status.Active() && !merged.Status.Active():
			if err := s.releaseSeat(txCtx, existing); err != nil {
				return err
			}
		case merged.OccurrenceID != existing.OccurrenceID:
			if err := s.moveSeat(txCtx, existing, merged.OccurrenceID); err != nil {
				return err
			}
		}

		if err := s.repo.Update(txCtx, merged); err != nil {
			return err
		}
		updated = merged
		return nil
	})
	if err != nil {
		if apperrors.IsAppError(err) {
			s.cfg.Log.Warn("Booking update refused", "id", id, "error", err)
		}
		return nil, s.translate(err, id, "Failed to update booking")
	}

	s.cfg.Log.Info("Booking updated successfully",
		"id", id,
		"from_status", previous,
		"to_status", updated.Status,
		"occurrence_id", updated.OccurrenceID,
	)
	if updated.Status != previous || (updates.RescheduleDate != nil && updated.Status == model.BookingReschedule) {
		if kind, ok := notify.KindForStatus(updated.Status); ok {
			s.notifyAsync(ctx, updated, kind)
		}
	}
	return updated, nil
}

// applyUpdate checks updates against existing and returns the merged booking.
func (s *bookingService) applyUpdate(existing *model.Booking, updates *model.BookingUpdate) (*model.Booking, error) {
	merged := *existing

	if updates.Status != nil {
		next := *updates.Status
		if !existing.Status.CanTransitionTo(next) {
			return nil, apperrors.InvalidTransition(string(existing.Status), string(next))
		}
		merged.Status = next
	}
	if merged.Status == model.BookingReschedule && existing.Status != model.BookingReschedule && updates.RescheduleDate == nil {
		return nil, apperrors.Validation("Booking update validation failed", map[string]any{
			"error": "reschedule_date: required when rescheduling",
		})
	}
	if updates.RescheduleDate != nil {
		if merged.Status != model.BookingReschedule {
			return nil, apperrors.Validation("Booking update validation failed", map[string]any{
				"error": "reschedule_date: only allowed on a rescheduled booking",
			})
		}
		date := updates.RescheduleDate.UTC()
		merged.RescheduleDate = &date
	}

	if updates.OccurrenceID != nil && *updates.OccurrenceID != existing.OccurrenceID {
		if !existing.Status.Active() || !merged.Status.Active() {
			return nil, apperrors.Conflict("Cancelled bookings cannot change occurrence")
		}
		merged.OccurrenceID = *updates.OccurrenceID
	}
	if updates.Participating != nil {
		merged.Participating = *updates.Participating
	}
	if updates.NumberOfPeople != nil {
		merged.NumberOfPeople = *updates.NumberOfPeople
	}
	if updates.Payment != nil {
		merged.Payment = *updates.Payment
	}
	if updates.AuthorizationURL != nil {
		merged.AuthorizationURL = *updates.AuthorizationURL
	}
	if updates.Reference != nil {
		merged.Reference = *updates.Reference
	}
	return &merged, nil
}

// releaseSeat removes the booking's identity from its occurrence. A seat that
// is already gone is logged and skipped so the cancellation still lands.
func (s *bookingService) releaseSeat(ctx context.Context, booking *model.Booking) error {
	trip, err := s.trips.FindByID(ctx, booking.TripID)
	if err != nil {
		return err
	}

	occ := trip.FindOccurrence(booking.OccurrenceID)
	if occ == nil || !occ.HasParticipant(booking.IdentityID) {
		s.cfg.Log.Warn("No seat to release for cancelled booking",
			"booking_id", booking.ID,
			"trip_id", booking.TripID,
			"occurrence_id", booking.OccurrenceID,
		)
		return nil
	}

	expected := len(occ.Participants)
	occ.RemoveParticipant(booking.IdentityID)
	return s.trips.SaveOccurrence(ctx, trip.ID, occ, expected)
}

// moveSeat takes a seat on the target occurrence, checked like a new
// reservation, then frees the old one.
func (s *bookingService) moveSeat(ctx context.Context, booking *model.Booking, targetID string) error {
	trip, err := s.trips.FindByID(ctx, booking.TripID)
	if err != nil {
		return err
	}

	target := trip.FindOccurrence(targetID)
	if target == nil {
		return apperrors.NotFoundWithID("Occurrence", targetID)
	}
	target.Recompute()
	if target.HasParticipant(booking.IdentityID) {
		return apperrors.Conflict("Identity already holds a seat on the target occurrence")
	}
	if !target.CanAccept(booking.IdentityID) {
		return apperrors.CapacityExceeded("Occurrence is fully booked").WithDetails(map[string]any{
			"occurrence_id": target.ID,
		})
	}

	expected := len(target.Participants)
	target.AddParticipant(booking.IdentityID)
	if err := s.trips.SaveOccurrence(ctx, trip.ID, target, expected); err != nil {
		return err
	}

	source := trip.FindOccurrence(booking.OccurrenceID)
	if source == nil || !source.HasParticipant(booking.IdentityID) {
		s.cfg.Log.Warn("No seat to free on previous occurrence",
			"booking_id", booking.ID,
			"occurrence_id", booking.OccurrenceID,
		)
		return nil
	}
	expected = len(source.Participants)
	source.RemoveParticipant(booking.IdentityID)
	return s.trips.SaveOccurrence(ctx, trip.ID, source, expected)
}

func (s *bookingService) sanitizeUpdate(updates *model.BookingUpdate) {
	if updates.OccurrenceID != nil {
		*updates.OccurrenceID = sanitizer.TrimAndNormalize(*updates.OccurrenceID)
	}
	if updates.AuthorizationURL != nil {
		*updates.AuthorizationURL = sanitizer.NormalizeURL(*updates.AuthorizationURL)
	}
	if updates.Reference != nil {
		*updates.Reference = sanitizer.TrimAndNormalize(*updates.Reference)
	}
}

