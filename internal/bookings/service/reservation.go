package service

import (
	"context"
	"errors"
	"fmt"

	bookingserrors "akoben/internal/bookings/errors"
	tripserrors "akoben/internal/trips/errors"
	apperrors "akoben/pkg/errors"
	"akoben/pkg/model"
	"akoben/pkg/notify"
)

// maxCommitAttempts bounds how often Reserve re-runs its transaction when the
// occurrence moved underneath it.
const maxCommitAttempts = 3

func (s *bookingService) Reserve(ctx context.Context, req *model.ReservationRequest) (*model.ReservationResult, error) {
	s.sanitizeRequest(req)
	if err := s.validator.ValidateReservation(req); err != nil {
		return nil, apperrors.Validation("Booking validation failed", map[string]any{
			"error": err.Error(),
		})
	}

	identity, err := s.identities.Resolve(ctx, &req.IdentityInput)
	if err != nil {
		return nil, err
	}

	var result *model.ReservationResult
	for attempt := 1; attempt <= maxCommitAttempts; attempt++ {
		result, err = s.reserveOnce(ctx, req, identity)
		if !errors.Is(err, tripserrors.ErrOccurrenceChanged) {
			break
		}
		s.cfg.Log.Debug("Occurrence changed during reservation, retrying",
			"trip_id", req.TripID,
			"occurrence_id", req.OccurrenceID,
			"attempt", attempt,
		)
	}
	if err != nil {
		return nil, s.reservationError(err, req, identity)
	}

	if result.AlreadyBooked {
		s.cfg.Log.Info("Reservation already held",
			"booking_id", result.Booking.ID,
			"identity_id", identity.ID,
			"occurrence_id", req.OccurrenceID,
		)
		return result, nil
	}

	s.cfg.Log.Info("Booking created successfully",
		"id", result.Booking.ID,
		"identity_id", identity.ID,
		"trip_id", req.TripID,
		"occurrence_id", req.OccurrenceID,
		"number_of_people", req.NumberOfPeople,
	)
	s.notifyAsync(ctx, result.Booking, notify.KindPending)
	return result, nil
}

// reserveOnce runs the capacity check and every write of a reservation in a
// single transaction.
func (s *bookingService) reserveOnce(ctx context.Context, req *model.ReservationRequest, identity *model.Identity) (*model.ReservationResult, error) {
	var result *model.ReservationResult

	err := s.repo.ExecuteTransaction(ctx, func(txCtx context.Context) error {
		result = nil

		trip, err := s.trips.FindByID(txCtx, req.TripID)
		if err != nil {
			return err
		}
		occ := trip.FindOccurrence(req.OccurrenceID)
		if occ == nil {
			return apperrors.NotFoundWithID("Occurrence", req.OccurrenceID)
		}
		occ.Recompute()

		if occ.HasParticipant(identity.ID) {
			existing, err := s.repo.FindActive(txCtx, identity.ID, trip.ID, occ.ID)
			if errors.Is(err, bookingserrors.ErrNotFound) {
				return apperrors.InternalInconsistency(fmt.Errorf(
					"identity %s is a participant of %s/%s without an active booking",
					identity.ID, trip.ID, occ.ID,
				))
			}
			if err != nil {
				return err
			}
			result = &model.ReservationResult{Booking: existing, AlreadyBooked: true}
			return nil
		}

		if !occ.CanAccept(identity.ID) {
			return apperrors.CapacityExceeded("Occurrence is fully booked").WithDetails(map[string]any{
				"occurrence_id":   occ.ID,
				"slots_remaining": occ.SlotsRemaining,
			})
		}

		expected := len(occ.Participants)
		occ.AddParticipant(identity.ID)
		if err := s.trips.SaveOccurrence(txCtx, trip.ID, occ, expected); err != nil {
			return err
		}

		booking := &model.Booking{
			IdentityID:     identity.ID,
			TripID:         trip.ID,
			OccurrenceID:   occ.ID,
			Participating:  participating(req.Participating),
			NumberOfPeople: req.NumberOfPeople,
			BookingDate:    s.now().UTC(),
			Payment:        false,
			Status:         model.BookingPending,
		}
		if err := s.repo.Create(txCtx, booking); err != nil {
			return err
		}
		if err := s.identities.AppendBooking(txCtx, identity.ID, booking.ID); err != nil {
			return err
		}

		result = &model.ReservationResult{Booking: booking}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *bookingService) reservationError(err error, req *model.ReservationRequest, identity *model.Identity) error {
	if apperrors.HasCode(err, apperrors.CodeInternalInconsistency) {
		s.cfg.Log.Error("Reservation state is inconsistent",
			"trip_id", req.TripID,
			"occurrence_id", req.OccurrenceID,
			"identity_id", identity.ID,
			"error", err,
		)
		return err
	}
	if apperrors.IsAppError(err) {
		s.cfg.Log.Warn("Reservation refused",
			"trip_id", req.TripID,
			"occurrence_id", req.OccurrenceID,
			"identity_id", identity.ID,
			"error", err,
		)
		return err
	}
	return s.translate(err, req.TripID, "Failed to create booking")
}

// participating defaults to true: the person booking travels unless told
// otherwise.
func participating(flag *bool) bool {
	if flag == nil {
		return true
	}
	return *flag
}
