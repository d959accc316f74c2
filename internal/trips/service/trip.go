package service

import (
	"context"
	"errors"
	"sync"
	"time"

	tripserrors "akoben/internal/trips/errors"
	"akoben/internal/trips/repository"
	"akoben/internal/trips/validator"
	"akoben/pkg/config"
	apperrors "akoben/pkg/errors"
	"akoben/pkg/model"
	"akoben/pkg/sanitizer"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	defaultGroupMin      = 4
	defaultGroupMax      = 12
	defaultActivityLevel = 1
	defaultStatus        = "open"
)

type TripService interface {
	Create(ctx context.Context, trip *model.Trip) error
	GetByID(ctx context.Context, id string) (*model.Trip, error)
	GetAll(ctx context.Context, limit int, offset int64) ([]*model.Trip, int64, error)
	Update(ctx context.Context, id string, updates *model.TripUpdate) error
	Delete(ctx context.Context, id string) error
	AddOccurrence(ctx context.Context, tripID string, input *model.OccurrenceInput) (*model.Occurrence, error)
	RemoveOccurrence(ctx context.Context, tripID string, occurrenceID string) error
	DescribeOccurrence(ctx context.Context, tripID string, occurrenceID string) (*model.OccurrenceAvailability, error)
}

// BookingCounter reports how many non-cancelled bookings reference a trip or
// one of its occurrences.
type BookingCounter interface {
	CountActiveByTrip(ctx context.Context, tripID string) (int64, error)
	CountActiveByOccurrence(ctx context.Context, tripID string, occurrenceID string) (int64, error)
}

type tripService struct {
	repo      repository.TripRepository
	bookings  BookingCounter
	validator *validator.TripValidator
	cfg       *config.Config
}

func NewTripService(
	repo repository.TripRepository,
	bookings BookingCounter,
	validator *validator.TripValidator,
	cfg *config.Config,
) TripService {
	return &tripService{
		repo:      repo,
		bookings:  bookings,
		validator: validator,
		cfg:       cfg,
	}
}

func (s *tripService) Create(ctx context.Context, trip *model.Trip) error {
	s.sanitize(trip)
	s.applyDefaults(trip)

	if err := s.validator.Validate(trip); err != nil {
		s.cfg.Log.Warn("Trip validation failed",
			"name", trip.Name,
			"error", err,
		)
		return apperrors.Validation("Trip validation failed", map[string]any{
			"error": err.Error(),
		})
	}

	if err := s.repo.Create(ctx, trip); err != nil {
		s.cfg.Log.Error("Failed to create trip",
			"name", trip.Name,
			"error", err,
		)
		return apperrors.Internal("Failed to create trip", err)
	}

	s.cfg.Log.Info("Trip created successfully",
		"id", trip.ID,
		"name", trip.Name,
		"occurrences", len(trip.Schedule.Occurrences),
	)
	return nil
}

func (s *tripService) GetByID(ctx context.Context, id string) (*model.Trip, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Trip ID cannot be empty")
	}

	trip, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.translate(err, id, "Failed to retrieve trip")
	}

	trip.RecomputeAvailability()
	return trip, nil
}

func (s *tripService) GetAll(ctx context.Context, limit int, offset int64) ([]*model.Trip, int64, error) {
	limit = config.NormalizePaginationLimit(limit)
	offset = config.NormalizeOffset(offset)

	sharedCtx, cancel := context.WithTimeout(ctx, s.cfg.ReadTimeout)
	defer cancel()

	var count int64
	var trips []*model.Trip
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		var err error
		count, err = s.repo.Count(sharedCtx)
		if err != nil {
			s.cfg.Log.Error("Failed to count trips", "error", err)
			errCount = apperrors.Internal("Failed to count trips", err)
		}
	}()

	go func() {
		defer wg.Done()
		var err error
		trips, err = s.repo.FindAll(sharedCtx, limit, offset)
		if err != nil {
			s.cfg.Log.Error("Failed to get all trips",
				"limit", limit,
				"offset", offset,
				"error", err,
			)
			errFind = apperrors.Internal("Failed to retrieve trips", err)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	for _, t := range trips {
		t.RecomputeAvailability()
	}
	return trips, count, nil
}

func (s *tripService) Update(ctx context.Context, id string, updates *model.TripUpdate) error {
	if id == "" {
		return apperrors.InvalidInput("Trip ID cannot be empty")
	}
	if updates.IsEmpty() {
		return apperrors.InvalidInput("Update must contain at least one field")
	}

	s.sanitizeUpdate(updates)
	if err := s.validator.ValidateUpdate(updates); err != nil {
		return apperrors.Validation("Trip update validation failed", map[string]any{
			"error": err.Error(),
		})
	}

	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return s.translate(err, id, "Failed to check trip existence")
	}

	merged := mergeTripUpdates(existing, updates)
	if err := s.validator.Validate(merged); err != nil {
		s.cfg.Log.Warn("Trip validation failed",
			"id", id,
			"error", err,
		)
		return apperrors.Validation("Trip validation failed", map[string]any{
			"error": err.Error(),
		})
	}

	if err := s.repo.Update(ctx, id, merged); err != nil {
		return s.translate(err, id, "Failed to update trip")
	}

	s.cfg.Log.Info("Trip updated successfully", "id", id, "name", merged.Name)
	return nil
}

// Delete refuses to remove a trip that still has non-cancelled bookings.
func (s *tripService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return apperrors.InvalidInput("Trip ID cannot be empty")
	}

	err := s.repo.ExecuteTransaction(ctx, func(txCtx context.Context) error {
		active, err := s.bookings.CountActiveByTrip(txCtx, id)
		if err != nil {
			return err
		}
		if active > 0 {
			return apperrors.Conflict("Trip has active bookings").WithDetails(map[string]any{
				"active_bookings": active,
			})
		}
		return s.repo.Delete(txCtx, id)
	})
	if err != nil {
		s.cfg.Log.Warn("Trip deletion refused or failed", "id", id, "error", err)
		return s.translate(err, id, "Failed to delete trip")
	}

	s.cfg.Log.Info("Trip deleted successfully", "id", id)
	return nil
}

func (s *tripService) AddOccurrence(ctx context.Context, tripID string, input *model.OccurrenceInput) (*model.Occurrence, error) {
	if err := s.validator.ValidateOccurrence(input); err != nil {
		return nil, apperrors.Validation("Occurrence validation failed", map[string]any{
			"error": err.Error(),
		})
	}

	trip, err := s.repo.FindByID(ctx, tripID)
	if err != nil {
		return nil, s.translate(err, tripID, "Failed to retrieve trip")
	}

	occ := newOccurrence(input.StartDate, input.EndDate, input.Capacity, trip.GroupSize.Max)
	if err := s.repo.AddOccurrence(ctx, tripID, occ); err != nil {
		return nil, s.translate(err, tripID, "Failed to add occurrence")
	}

	s.cfg.Log.Info("Occurrence added",
		"trip_id", tripID,
		"occurrence_id", occ.ID,
		"capacity", occ.Capacity,
	)
	return occ, nil
}

// RemoveOccurrence refuses to drop an occurrence that non-cancelled bookings
// still point at.
func (s *tripService) RemoveOccurrence(ctx context.Context, tripID string, occurrenceID string) error {
	if occurrenceID == "" {
		return apperrors.InvalidInput("Occurrence ID cannot be empty")
	}

	err := s.repo.ExecuteTransaction(ctx, func(txCtx context.Context) error {
		active, err := s.bookings.CountActiveByOccurrence(txCtx, tripID, occurrenceID)
		if err != nil {
			return err
		}
		if active > 0 {
			return apperrors.Conflict("Occurrence has active bookings").WithDetails(map[string]any{
				"active_bookings": active,
			})
		}
		return s.repo.RemoveOccurrence(txCtx, tripID, occurrenceID)
	})
	if err != nil {
		return s.translate(err, tripID, "Failed to remove occurrence")
	}

	s.cfg.Log.Info("Occurrence removed", "trip_id", tripID, "occurrence_id", occurrenceID)
	return nil
}

func (s *tripService) DescribeOccurrence(ctx context.Context, tripID string, occurrenceID string) (*model.OccurrenceAvailability, error) {
	trip, err := s.repo.FindByID(ctx, tripID)
	if err != nil {
		return nil, s.translate(err, tripID, "Failed to retrieve trip")
	}

	occ := trip.FindOccurrence(occurrenceID)
	if occ == nil {
		return nil, apperrors.NotFoundWithID("Occurrence", occurrenceID)
	}

	availability := occ.Describe()
	return &availability, nil
}

func (s *tripService) translate(err error, id string, message string) error {
	switch {
	case errors.Is(err, tripserrors.ErrNotFound):
		return apperrors.NotFoundWithID("Trip", id)
	case errors.Is(err, tripserrors.ErrInvalidID):
		return apperrors.InvalidInput("Invalid trip ID format")
	case errors.Is(err, tripserrors.ErrOccurrenceNotFound):
		return apperrors.NotFound("Occurrence")
	case apperrors.IsAppError(err):
		return err
	}
	s.cfg.Log.Error(message, "id", id, "error", err)
	return apperrors.Internal(message, err)
}

func (s *tripService) sanitize(trip *model.Trip) {
	trip.Name = sanitizer.NormalizeName(trip.Name)
	trip.Description = sanitizer.TrimAndNormalize(trip.Description)
	trip.Location.MainLocation = sanitizer.TrimAndNormalize(trip.Location.MainLocation)
	trip.Location.PointsOfInterest = sanitizer.NormalizePointsOfInterest(trip.Location.PointsOfInterest)
	trip.Logistics.Transportation = sanitizer.TrimAndNormalize(trip.Logistics.Transportation)
	trip.Logistics.Accommodation = sanitizer.TrimAndNormalize(trip.Logistics.Accommodation)
	trip.Images = sanitizer.NormalizeImageURLs(trip.Images)
}

func (s *tripService) sanitizeUpdate(updates *model.TripUpdate) {
	if updates.Name != nil {
		*updates.Name = sanitizer.NormalizeName(*updates.Name)
	}
	if updates.Description != nil {
		*updates.Description = sanitizer.TrimAndNormalize(*updates.Description)
	}
	if updates.Location != nil {
		updates.Location.MainLocation = sanitizer.TrimAndNormalize(updates.Location.MainLocation)
		updates.Location.PointsOfInterest = sanitizer.NormalizePointsOfInterest(updates.Location.PointsOfInterest)
	}
	if updates.Images != nil {
		images := sanitizer.NormalizeImageURLs(*updates.Images)
		updates.Images = &images
	}
}

func (s *tripService) applyDefaults(trip *model.Trip) {
	if trip.GroupSize.Min == 0 {
		trip.GroupSize.Min = defaultGroupMin
	}
	if trip.GroupSize.Max == 0 {
		trip.GroupSize.Max = max(defaultGroupMax, trip.GroupSize.Min)
	}
	if trip.ActivityLevel == 0 {
		trip.ActivityLevel = defaultActivityLevel
	}
	if trip.Status == "" {
		trip.Status = defaultStatus
	}

	occurrences := make([]model.Occurrence, 0, len(trip.Schedule.Occurrences))
	for _, o := range trip.Schedule.Occurrences {
		occurrences = append(occurrences, *newOccurrence(o.StartDate, o.EndDate, o.Capacity, trip.GroupSize.Max))
	}
	trip.Schedule.Occurrences = occurrences
}

// newOccurrence builds an empty occurrence. Client-supplied participants and
// counters are never trusted.
func newOccurrence(start, end time.Time, capacity int, fallbackCapacity int) *model.Occurrence {
	if capacity <= 0 {
		capacity = fallbackCapacity
	}
	occ := &model.Occurrence{
		ID:           primitive.NewObjectID().Hex(),
		StartDate:    start.UTC(),
		EndDate:      end.UTC(),
		Capacity:     capacity,
		Participants: []string{},
	}
	occ.Recompute()
	return occ
}

func mergeTripUpdates(existing *model.Trip, updates *model.TripUpdate) *model.Trip {
	merged := *existing

	if updates.Name != nil {
		merged.Name = *updates.Name
	}
	if updates.Description != nil {
		merged.Description = *updates.Description
	}
	if updates.Type != nil {
		merged.Type = *updates.Type
	}
	if updates.Difficulty != nil {
		merged.Difficulty = *updates.Difficulty
	}
	if updates.ActivityLevel != nil {
		merged.ActivityLevel = *updates.ActivityLevel
	}
	if updates.Duration != nil {
		merged.Duration = *updates.Duration
	}
	if updates.GroupSize != nil {
		merged.GroupSize = *updates.GroupSize
	}
	if updates.Location != nil {
		merged.Location = *updates.Location
	}
	if updates.Cost != nil {
		merged.Cost = *updates.Cost
	}
	if updates.Itinerary != nil {
		merged.Schedule.Itinerary = *updates.Itinerary
	}
	if updates.Logistics != nil {
		merged.Logistics = *updates.Logistics
	}
	if updates.Images != nil {
		merged.Images = *updates.Images
	}
	if updates.Status != nil {
		merged.Status = *updates.Status
	}

	merged.ID = existing.ID
	merged.CreatedAt = existing.CreatedAt
	return &merged
}
