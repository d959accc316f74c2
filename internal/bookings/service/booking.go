package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	bookingserrors "akoben/internal/bookings/errors"
	"akoben/internal/bookings/repository"
	"akoben/internal/bookings/validator"
	tripserrors "akoben/internal/trips/errors"
	"akoben/pkg/config"
	apperrors "akoben/pkg/errors"
	"akoben/pkg/model"
	"akoben/pkg/notify"
	"akoben/pkg/payment"
	"akoben/pkg/sanitizer"
)

type BookingService interface {
	// Reserve books one seat on an occurrence for the person described in req.
	// Re-submitting for someone who already holds an active booking on the
	// occurrence returns that booking with AlreadyBooked set.
	Reserve(ctx context.Context, req *model.ReservationRequest) (*model.ReservationResult, error)
	GetByID(ctx context.Context, id string) (*model.Booking, error)
	GetAll(ctx context.Context, status model.BookingStatus, limit int, offset int64) ([]*model.Booking, int64, error)
	Update(ctx context.Context, id string, updates *model.BookingUpdate) (*model.Booking, error)
	Delete(ctx context.Context, id string) error
	InitializePayment(ctx context.Context, bookingID string) (*model.PaymentInitialization, error)
	VerifyAndApplyPayment(ctx context.Context, reference string) (*model.Booking, error)
	// Drain waits for notifications still being sent, or until ctx is done.
	Drain(ctx context.Context) error
}

// TripStore is the slice of the trip catalog the engine reads and writes.
type TripStore interface {
	FindByID(ctx context.Context, id string) (*model.Trip, error)
	SaveOccurrence(ctx context.Context, tripID string, occ *model.Occurrence, expectedParticipants int) error
}

type IdentityResolver interface {
	Resolve(ctx context.Context, input *model.IdentityInput) (*model.Identity, error)
	GetByID(ctx context.Context, id string) (*model.Identity, error)
	AppendBooking(ctx context.Context, identityID string, bookingID string) error
}

type bookingService struct {
	repo       repository.BookingRepository
	trips      TripStore
	identities IdentityResolver
	gateway    payment.Gateway
	dispatcher notify.Dispatcher
	validator  *validator.BookingValidator
	cfg        *config.Config
	now        func() time.Time

	inflight sync.WaitGroup
}

func NewBookingService(
	repo repository.BookingRepository,
	trips TripStore,
	identities IdentityResolver,
	gateway payment.Gateway,
	dispatcher notify.Dispatcher,
	validator *validator.BookingValidator,
	cfg *config.Config,
) BookingService {
	return &bookingService{
		repo:       repo,
		trips:      trips,
		identities: identities,
		gateway:    gateway,
		dispatcher: dispatcher,
		validator:  validator,
		cfg:        cfg,
		now:        time.Now,
	}
}

func (s *bookingService) GetByID(ctx context.Context, id string) (*model.Booking, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}

	booking, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.translate(err, id, "Failed to retrieve booking")
	}
	return booking, nil
}

func (s *bookingService) GetAll(ctx context.Context, status model.BookingStatus, limit int, offset int64) ([]*model.Booking, int64, error) {
	if status != "" && !status.Valid() {
		return nil, 0, apperrors.InvalidInput(fmt.Sprintf("Unknown booking status %q", status))
	}
	limit = config.NormalizePaginationLimit(limit)
	offset = config.NormalizeOffset(offset)
	filter := repository.Filter{Status: status}

	sharedCtx, cancel := context.WithTimeout(ctx, s.cfg.ReadTimeout)
	defer cancel()

	var count int64
	var bookings []*model.Booking
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		var err error
		count, err = s.repo.Count(sharedCtx, filter)
		if err != nil {
			s.cfg.Log.Error("Failed to count bookings", "error", err)
			errCount = apperrors.Internal("Failed to count bookings", err)
		}
	}()

	go func() {
		defer wg.Done()
		var err error
		bookings, err = s.repo.FindAll(sharedCtx, filter, limit, offset)
		if err != nil {
			s.cfg.Log.Error("Failed to list bookings",
				"status", status,
				"limit", limit,
				"offset", offset,
				"error", err,
			)
			errFind = apperrors.Internal("Failed to retrieve bookings", err)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}
	if bookings == nil {
		bookings = []*model.Booking{}
	}
	return bookings, count, nil
}

// Delete is an administrative hard delete. It does not give the seat back.
func (s *bookingService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return apperrors.InvalidInput("Booking ID cannot be empty")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return s.translate(err, id, "Failed to delete booking")
	}

	s.cfg.Log.Info("Booking deleted", "id", id)
	return nil
}

// translate maps repository sentinels to AppErrors. AppErrors raised inside a
// transaction pass through untouched.
func (s *bookingService) translate(err error, id string, message string) error {
	switch {
	case apperrors.IsAppError(err):
		return err
	case errors.Is(err, bookingserrors.ErrNotFound):
		return apperrors.NotFoundWithID("Booking", id)
	case errors.Is(err, bookingserrors.ErrInvalidID):
		return apperrors.InvalidInput("Invalid booking ID format")
	case errors.Is(err, bookingserrors.ErrReferenceNotFound):
		return apperrors.NotFoundWithID("Booking", id)
	case errors.Is(err, bookingserrors.ErrNotPayable):
		return apperrors.Conflict("Booking can no longer be paid")
	case errors.Is(err, tripserrors.ErrNotFound):
		return apperrors.NotFound("Trip")
	case errors.Is(err, tripserrors.ErrInvalidID):
		return apperrors.InvalidInput("Invalid trip ID format")
	case errors.Is(err, tripserrors.ErrOccurrenceNotFound):
		return apperrors.NotFound("Occurrence")
	case errors.Is(err, tripserrors.ErrOccurrenceChanged):
		return apperrors.TransientStore(err)
	}
	s.cfg.Log.Error(message, "id", id, "error", err)
	return apperrors.Internal(message, err)
}

func (s *bookingService) sanitizeRequest(req *model.ReservationRequest) {
	req.TripID = sanitizer.TrimAndNormalize(req.TripID)
	req.OccurrenceID = sanitizer.TrimAndNormalize(req.OccurrenceID)
}
