package service

import (
	"context"
	"errors"
	"sync"

	tripserrors "akoben/internal/trips/errors"
	"akoben/internal/trips/repository"
	"akoben/internal/trips/validator"
	"akoben/pkg/config"
	apperrors "akoben/pkg/errors"
	"akoben/pkg/model"
	"akoben/pkg/sanitizer"
)

// DateRequestService records requests for a trip on dates it is not
// scheduled for.
type DateRequestService interface {
	Create(ctx context.Context, tripID string, input *model.DateRequestInput) (*model.DateRequest, error)
	GetByID(ctx context.Context, id string) (*model.DateRequest, error)
	GetAll(ctx context.Context, tripID string, limit int, offset int64) ([]*model.DateRequest, int64, error)
}

// TripFinder resolves the trip a date request is made for.
type TripFinder interface {
	FindByID(ctx context.Context, id string) (*model.Trip, error)
}

type dateRequestService struct {
	repo      repository.DateRequestRepository
	trips     TripFinder
	validator *validator.TripValidator
	cfg       *config.Config
}

func NewDateRequestService(
	repo repository.DateRequestRepository,
	trips TripFinder,
	validator *validator.TripValidator,
	cfg *config.Config,
) DateRequestService {
	return &dateRequestService{
		repo:      repo,
		trips:     trips,
		validator: validator,
		cfg:       cfg,
	}
}

func (s *dateRequestService) Create(ctx context.Context, tripID string, input *model.DateRequestInput) (*model.DateRequest, error) {
	input.Name = sanitizer.NormalizeName(input.Name)
	input.Email = sanitizer.NormalizeEmail(input.Email)
	input.Phone = sanitizer.TrimAndNormalize(input.Phone)

	if err := s.validator.ValidateDateRequest(input); err != nil {
		s.cfg.Log.Warn("Date request validation failed", "trip_id", tripID, "error", err)
		return nil, apperrors.Validation("Date request validation failed", map[string]any{
			"error": err.Error(),
		})
	}
	phone := sanitizer.NormalizePhone(input.Phone, s.cfg.DefaultPhoneRegion)
	if phone == "" {
		return nil, apperrors.InvalidInput("Invalid phone number format")
	}

	trip, err := s.trips.FindByID(ctx, tripID)
	if err != nil {
		return nil, s.translate(err, tripID, "Failed to retrieve trip")
	}

	req := &model.DateRequest{
		TripID:    trip.ID,
		TripName:  trip.Name,
		Name:      input.Name,
		Email:     input.Email,
		Phone:     phone,
		StartDate: input.StartDate.UTC(),
		EndDate:   input.EndDate.UTC(),
	}
	if err := s.repo.Create(ctx, req); err != nil {
		return nil, s.translate(err, tripID, "Failed to create date request")
	}

	s.cfg.Log.Info("Date request created",
		"id", req.ID,
		"trip_id", req.TripID,
		"start_date", req.StartDate,
	)
	return req, nil
}

func (s *dateRequestService) GetByID(ctx context.Context, id string) (*model.DateRequest, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Date request ID cannot be empty")
	}

	req, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.translate(err, id, "Failed to retrieve date request")
	}
	return req, nil
}

func (s *dateRequestService) GetAll(ctx context.Context, tripID string, limit int, offset int64) ([]*model.DateRequest, int64, error) {
	limit = config.NormalizePaginationLimit(limit)
	offset = config.NormalizeOffset(offset)

	sharedCtx, cancel := context.WithTimeout(ctx, s.cfg.ReadTimeout)
	defer cancel()

	var count int64
	var requests []*model.DateRequest
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.Count(sharedCtx, tripID)
	}()

	go func() {
		defer wg.Done()
		requests, errFind = s.repo.FindAll(sharedCtx, tripID, limit, offset)
	}()

	wg.Wait()
	if err := errors.Join(errCount, errFind); err != nil {
		s.cfg.Log.Error("Failed to list date requests", "trip_id", tripID, "error", err)
		return nil, 0, apperrors.Internal("Failed to retrieve date requests", err)
	}
	return requests, count, nil
}

func (s *dateRequestService) translate(err error, id string, message string) error {
	switch {
	case errors.Is(err, tripserrors.ErrDuplicateDateRequest):
		return apperrors.Conflict("A similar request already exists")
	case errors.Is(err, tripserrors.ErrDateRequestNotFound):
		return apperrors.NotFoundWithID("Date request", id)
	case errors.Is(err, tripserrors.ErrNotFound):
		return apperrors.NotFoundWithID("Trip", id)
	case errors.Is(err, tripserrors.ErrInvalidID):
		return apperrors.InvalidInput("Invalid ID format")
	}
	s.cfg.Log.Error(message, "id", id, "error", err)
	return apperrors.Internal(message, err)
}
