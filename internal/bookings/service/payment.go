package service

import (
	"context"
	"errors"
	"math"

	bookingserrors "akoben/internal/bookings/errors"
	apperrors "akoben/pkg/errors"
	"akoben/pkg/model"
	"akoben/pkg/notify"
	"akoben/pkg/payment"

	"github.com/google/uuid"
)

// minorUnits converts a major-unit amount (cedis) to what the gateway charges
// in (pesewas).
const minorUnits = 100

// InitializePayment opens a hosted payment session for the booking's total
// and stores the session reference on the booking.
func (s *bookingService) InitializePayment(ctx context.Context, bookingID string) (*model.PaymentInitialization, error) {
	booking, err := s.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !booking.Status.Active() {
		return nil, apperrors.Conflict("Cancelled bookings cannot be paid")
	}
	if booking.Payment {
		return nil, apperrors.Conflict("Booking is already paid")
	}

	trip, err := s.trips.FindByID(ctx, booking.TripID)
	if err != nil {
		return nil, s.translate(err, booking.TripID, "Failed to retrieve trip")
	}
	identity, err := s.identities.GetByID(ctx, booking.IdentityID)
	if err != nil {
		return nil, err
	}

	total := trip.Cost.PricePerPerson() * float64(booking.NumberOfPeople)
	amount := int64(math.Round(total * minorUnits))
	if amount <= 0 {
		return nil, apperrors.Conflict("Trip has nothing to pay for")
	}

	session, err := s.gateway.Initialize(ctx, payment.InitializeRequest{
		Email:     identity.Email,
		Amount:    amount,
		Currency:  s.cfg.PaymentCurrency,
		Reference: uuid.NewString(),
		Metadata: map[string]string{
			"booking_id": booking.ID,
			"trip_id":    booking.TripID,
		},
	})
	if err != nil {
		s.cfg.Log.Error("Payment initialization failed", "booking_id", booking.ID, "error", err)
		return nil, err
	}

	// the booking may have been cancelled while the gateway was answering,
	// so only the session fields are written and only if still payable
	if err := s.repo.SetPaymentSession(ctx, booking.ID, session.Reference, session.AuthorizationURL); err != nil {
		if errors.Is(err, bookingserrors.ErrNotPayable) {
			s.cfg.Log.Warn("Booking changed during payment initialization", "booking_id", booking.ID, "reference", session.Reference)
		}
		return nil, s.translate(err, booking.ID, "Failed to store payment reference")
	}

	s.cfg.Log.Info("Payment initialized",
		"booking_id", booking.ID,
		"reference", session.Reference,
		"amount", amount,
	)
	return &model.PaymentInitialization{
		BookingID:        booking.ID,
		Reference:        session.Reference,
		AuthorizationURL: session.AuthorizationURL,
		AccessCode:       session.AccessCode,
		Amount:           amount,
		Currency:         s.cfg.PaymentCurrency,
		DisplayAmount:    float64(amount) / minorUnits,
	}, nil
}

// VerifyAndApplyPayment asks the gateway about reference and, on success,
// marks the booking holding it as paid and confirmed. Nothing is written when
// the gateway reports anything else.
func (s *bookingService) VerifyAndApplyPayment(ctx context.Context, reference string) (*model.Booking, error) {
	if reference == "" {
		return nil, apperrors.InvalidInput("Payment reference cannot be empty")
	}

	verification, err := s.gateway.Verify(ctx, reference)
	if err != nil {
		s.cfg.Log.Warn("Payment verification failed", "reference", reference, "error", err)
		return nil, err
	}
	if !verification.Successful() {
		s.cfg.Log.Info("Payment not successful", "reference", reference, "status", verification.Status)
		return nil, apperrors.PaymentNotSuccessful(reference, verification.Status)
	}

	var updated *model.Booking
	var previous model.BookingStatus
	err = s.repo.ExecuteTransaction(ctx, func(txCtx context.Context) error {
		booking, err := s.repo.FindByReference(txCtx, reference)
		if err != nil {
			return err
		}
		previous = booking.Status
		if booking.Payment && booking.Status == model.BookingConfirmed {
			updated = booking
			return nil
		}
		if !booking.Status.CanTransitionTo(model.BookingConfirmed) {
			return apperrors.InvalidTransition(string(booking.Status), string(model.BookingConfirmed))
		}

		booking.Payment = true
		booking.Status = model.BookingConfirmed
		if verification.Reference != "" {
			booking.Reference = verification.Reference
		}
		if verification.AuthorizationURL != "" {
			booking.AuthorizationURL = verification.AuthorizationURL
		}
		if err := s.repo.Update(txCtx, booking); err != nil {
			return err
		}
		updated = booking
		return nil
	})
	if err != nil {
		return nil, s.translate(err, reference, "Failed to apply payment")
	}

	if previous != model.BookingConfirmed {
		s.cfg.Log.Info("Payment applied", "booking_id", updated.ID, "reference", reference)
		s.notifyAsync(ctx, updated, notify.KindConfirmed)
	}
	return updated, nil
}
