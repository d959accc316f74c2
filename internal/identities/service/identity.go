package service

import (
	"context"
	"errors"
	"time"

	identitieserrors "akoben/internal/identities/errors"
	"akoben/internal/identities/repository"
	"akoben/internal/identities/validator"
	"akoben/pkg/config"
	apperrors "akoben/pkg/errors"
	"akoben/pkg/model"
	"akoben/pkg/sanitizer"
)

type IdentityService interface {
	// Resolve finds the person described by input or creates them. Matching
	// goes by (email, phone) first, then by email plus a case-insensitive
	// full name.
	Resolve(ctx context.Context, input *model.IdentityInput) (*model.Identity, error)
	GetByID(ctx context.Context, id string) (*model.Identity, error)
	AppendBooking(ctx context.Context, identityID string, bookingID string) error
}

type identityService struct {
	repo      repository.IdentityRepository
	validator *validator.IdentityValidator
	cfg       *config.Config
	now       func() time.Time
}

func NewIdentityService(
	repo repository.IdentityRepository,
	validator *validator.IdentityValidator,
	cfg *config.Config,
) IdentityService {
	return &identityService{
		repo:      repo,
		validator: validator,
		cfg:       cfg,
		now:       time.Now,
	}
}

func (s *identityService) Resolve(ctx context.Context, input *model.IdentityInput) (*model.Identity, error) {
	input.Gender = sanitizer.NormalizeGender(input.Gender)
	input.Email = sanitizer.NormalizeEmail(input.Email)
	if err := s.validator.Validate(input); err != nil {
		return nil, apperrors.Validation("Identity validation failed", map[string]any{
			"error": err.Error(),
		})
	}

	candidate := s.normalize(input)
	if candidate.Phone == "" {
		return nil, apperrors.Validation("Identity validation failed", map[string]any{
			"error": "phone: not a valid phone number",
		})
	}

	existing, err := s.repo.FindByEmailAndPhone(ctx, candidate.Email, candidate.Phone)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, identitieserrors.ErrNotFound) {
		return nil, s.upstream(err)
	}

	existing, err = s.repo.FindByEmailAndName(ctx, candidate.Email, candidate.Name)
	if err == nil {
		s.cfg.Log.Debug("Identity matched by email and name",
			"identity_id", existing.ID,
			"stored_phone", existing.Phone,
			"given_phone", candidate.Phone,
		)
		return existing, nil
	}
	if !errors.Is(err, identitieserrors.ErrNotFound) {
		return nil, s.upstream(err)
	}

	created, err := s.repo.Insert(ctx, candidate)
	if err != nil {
		return nil, s.upstream(err)
	}

	s.cfg.Log.Info("Identity created", "identity_id", created.ID, "email", created.Email)
	return created, nil
}

func (s *identityService) GetByID(ctx context.Context, id string) (*model.Identity, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Identity ID cannot be empty")
	}

	identity, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, identitieserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Identity", id)
		}
		if errors.Is(err, identitieserrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid identity ID format")
		}
		s.cfg.Log.Error("Failed to get identity by ID", "id", id, "error", err)
		return nil, apperrors.Internal("Failed to retrieve identity", err)
	}
	return identity, nil
}

// AppendBooking returns the repository error unchanged so a surrounding
// transaction can classify it.
func (s *identityService) AppendBooking(ctx context.Context, identityID string, bookingID string) error {
	return s.repo.AppendBooking(ctx, identityID, bookingID)
}

func (s *identityService) normalize(input *model.IdentityInput) *model.Identity {
	identity := &model.Identity{
		Name:          sanitizer.NormalizeName(input.FullName),
		Email:         sanitizer.NormalizeEmail(input.Email),
		Phone:         sanitizer.NormalizePhone(input.Phone, s.cfg.DefaultPhoneRegion),
		StreetAddress: sanitizer.TrimAndNormalize(input.StreetAddress),
		Address2:      sanitizer.TrimAndNormalize(input.Address2),
		City:          sanitizer.TrimAndNormalize(input.City),
		ZipCode:       sanitizer.TrimAndNormalize(input.ZipCode),
		IDCard:        sanitizer.TrimAndNormalize(input.IDCard),
		Gender:        sanitizer.NormalizeGender(input.Gender),
		Bookings:      []string{},
	}
	if input.DateOfBirth != nil && !input.DateOfBirth.IsZero() {
		dob := input.DateOfBirth.Time
		identity.DateOfBirth = &dob
		identity.Age = model.AgeAt(dob, s.now())
	}
	return identity
}

func (s *identityService) upstream(err error) error {
	s.cfg.Log.Error("Identity resolution failed", "error", err)
	return apperrors.Upstream("identity resolver", err)
}
