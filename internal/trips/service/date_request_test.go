package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	tripserrors "akoben/internal/trips/errors"
	"akoben/internal/trips/validator"
	"akoben/pkg/config"
	apperrors "akoben/pkg/errors"
	"akoben/pkg/logger"
	"akoben/pkg/model"
)

// memDateRequests enforces the (email, trip, start, end) uniqueness the
// collection index provides.
type memDateRequests struct {
	mu       sync.Mutex
	requests []*model.DateRequest
	failList error
}

func (m *memDateRequests) Create(ctx context.Context, req *model.DateRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.requests {
		if r.Email == req.Email && r.TripID == req.TripID && r.StartDate.Equal(req.StartDate) && r.EndDate.Equal(req.EndDate) {
			return fmt.Errorf("%w: %s", tripserrors.ErrDuplicateDateRequest, req.Email)
		}
	}
	req.ID = fmt.Sprintf("%024x", len(m.requests)+1)
	stored := *req
	m.requests = append(m.requests, &stored)
	return nil
}

func (m *memDateRequests) FindByID(ctx context.Context, id string) (*model.DateRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.requests {
		if r.ID == id {
			found := *r
			return &found, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", tripserrors.ErrDateRequestNotFound, id)
}

func (m *memDateRequests) FindAll(ctx context.Context, tripID string, limit int, offset int64) ([]*model.DateRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failList != nil {
		return nil, m.failList
	}
	var out []*model.DateRequest
	for _, r := range m.requests {
		if tripID == "" || r.TripID == tripID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memDateRequests) Count(ctx context.Context, tripID string) (int64, error) {
	list, err := m.FindAll(ctx, tripID, 0, 0)
	return int64(len(list)), err
}

func newDateRequestService(repo *memDateRequests) *dateRequestService {
	log := logger.Discard()
	trips := &mockTripRepository{findByIDFunc: func(ctx context.Context, id string) (*model.Trip, error) {
		if id != tripID {
			return nil, fmt.Errorf("%w: %s", tripserrors.ErrNotFound, id)
		}
		return &model.Trip{ID: tripID, Name: "Mount Afadja Hike"}, nil
	}}
	return &dateRequestService{
		repo:      repo,
		trips:     trips,
		validator: validator.NewTripValidator(log),
		cfg:       &config.Config{Log: log, ReadTimeout: 5 * time.Second, DefaultPhoneRegion: "GH"},
	}
}

func dateRequestInput(email string) *model.DateRequestInput {
	start := time.Date(2026, time.November, 14, 0, 0, 0, 0, time.UTC)
	return &model.DateRequestInput{
		Name:      " Ama   Mensah ",
		Email:     email,
		Phone:     "024 123 4567",
		StartDate: &model.Date{Time: start},
		EndDate:   &model.Date{Time: start.Add(48 * time.Hour)},
	}
}

func TestDateRequest_Create(t *testing.T) {
	svc := newDateRequestService(&memDateRequests{})

	req, err := svc.Create(context.Background(), tripID, dateRequestInput(" Ama@Example.com "))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.ID == "" || req.TripName != "Mount Afadja Hike" {
		t.Errorf("trip not resolved: %+v", req)
	}
	if req.Name != "Ama Mensah" || req.Email != "ama@example.com" || req.Phone != "+233241234567" {
		t.Errorf("input not normalized: %q %q %q", req.Name, req.Email, req.Phone)
	}
}

func TestDateRequest_DuplicateRejected(t *testing.T) {
	svc := newDateRequestService(&memDateRequests{})
	if _, err := svc.Create(context.Background(), tripID, dateRequestInput("ama@example.com")); err != nil {
		t.Fatalf("first request: %v", err)
	}

	// same person, differently cased
	_, err := svc.Create(context.Background(), tripID, dateRequestInput("AMA@example.com"))
	if !apperrors.HasCode(err, apperrors.CodeConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}

	// other dates are a new request
	other := dateRequestInput("ama@example.com")
	other.EndDate = &model.Date{Time: other.EndDate.Add(24 * time.Hour)}
	if _, err := svc.Create(context.Background(), tripID, other); err != nil {
		t.Errorf("different dates rejected: %v", err)
	}
}

func TestDateRequest_CreateErrors(t *testing.T) {
	tests := []struct {
		name     string
		tripID   string
		mutate   func(*model.DateRequestInput)
		wantCode string
	}{
		{"unknown trip", "507f1f77bcf86cd799439099", func(*model.DateRequestInput) {}, apperrors.CodeNotFound},
		{"end before start", tripID, func(in *model.DateRequestInput) {
			in.EndDate = &model.Date{Time: in.StartDate.Add(-time.Hour)}
		}, apperrors.CodeValidation},
		{"unparseable phone", tripID, func(in *model.DateRequestInput) { in.Phone = "invalid-phone" }, apperrors.CodeInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &memDateRequests{}
			svc := newDateRequestService(repo)
			in := dateRequestInput("ama@example.com")
			tt.mutate(in)

			_, err := svc.Create(context.Background(), tt.tripID, in)
			if !apperrors.HasCode(err, tt.wantCode) {
				t.Fatalf("expected %s, got %v", tt.wantCode, err)
			}
			if len(repo.requests) != 0 {
				t.Error("nothing should be stored")
			}
		})
	}
}

func TestDateRequest_GetAll(t *testing.T) {
	repo := &memDateRequests{}
	svc := newDateRequestService(repo)
	for _, email := range []string{"a@example.com", "b@example.com"} {
		if _, err := svc.Create(context.Background(), tripID, dateRequestInput(email)); err != nil {
			t.Fatalf("setup: %v", err)
		}
	}

	requests, total, err := svc.GetAll(context.Background(), tripID, 0, -5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 2 || len(requests) != 2 {
		t.Errorf("got %d/%d, want 2", len(requests), total)
	}

	repo.failList = errors.New("connection reset")
	_, _, err = svc.GetAll(context.Background(), "", 10, 0)
	if !apperrors.HasCode(err, apperrors.CodeInternal) {
		t.Errorf("expected internal error, got %v", err)
	}
}

func TestDateRequest_GetByID(t *testing.T) {
	svc := newDateRequestService(&memDateRequests{})
	created, err := svc.Create(context.Background(), tripID, dateRequestInput("ama@example.com"))
	if err != nil {
		t.Fatalf("setup: %v", err)
	}

	got, err := svc.GetByID(context.Background(), created.ID)
	if err != nil || got.Email != "ama@example.com" {
		t.Errorf("lookup failed: %+v %v", got, err)
	}

	_, err = svc.GetByID(context.Background(), "507f1f77bcf86cd799439099")
	if !apperrors.HasCode(err, apperrors.CodeNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
}
