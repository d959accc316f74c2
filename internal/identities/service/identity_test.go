package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	identitieserrors "akoben/internal/identities/errors"
	"akoben/internal/identities/validator"
	"akoben/pkg/config"
	apperrors "akoben/pkg/errors"
	"akoben/pkg/logger"
	"akoben/pkg/model"
)

type mockIdentityRepository struct {
	mu         sync.Mutex
	identities []*model.Identity
	inserts    int
	failWith   error
}

func (m *mockIdentityRepository) FindByID(ctx context.Context, id string) (*model.Identity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, i := range m.identities {
		if i.ID == id {
			return i, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", identitieserrors.ErrNotFound, id)
}

func (m *mockIdentityRepository) FindByEmailAndPhone(ctx context.Context, email string, phone string) (*model.Identity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return nil, m.failWith
	}
	for _, i := range m.identities {
		if i.Email == email && i.Phone == phone {
			return i, nil
		}
	}
	return nil, identitieserrors.ErrNotFound
}

func (m *mockIdentityRepository) FindByEmailAndName(ctx context.Context, email string, name string) (*model.Identity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, i := range m.identities {
		if i.Email == email && equalFold(i.Name, name) {
			return i, nil
		}
	}
	return nil, identitieserrors.ErrNotFound
}

func (m *mockIdentityRepository) Insert(ctx context.Context, identity *model.Identity) (*model.Identity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, i := range m.identities {
		if i.Email == identity.Email && i.Phone == identity.Phone {
			return i, nil
		}
	}
	m.inserts++
	identity.ID = fmt.Sprintf("id-%d", m.inserts)
	m.identities = append(m.identities, identity)
	return identity, nil
}

func (m *mockIdentityRepository) AppendBooking(ctx context.Context, identityID string, bookingID string) error {
	return nil
}

func equalFold(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := 0; i < len(a); i++ {
		ca, cb := a[i], b[i]
		if 'A' <= ca && ca <= 'Z' {
			ca += 'a' - 'A'
		}
		if 'A' <= cb && cb <= 'Z' {
			cb += 'a' - 'A'
		}
		if ca != cb {
			return false
		}
	}
	return true
}

func newTestService(repo *mockIdentityRepository) *identityService {
	log := logger.Discard()
	return &identityService{
		repo:      repo,
		validator: validator.NewIdentityValidator(log),
		cfg:       &config.Config{Log: log, DefaultPhoneRegion: "GH"},
		now:       func() time.Time { return time.Date(2026, time.October, 1, 0, 0, 0, 0, time.UTC) },
	}
}

func input() *model.IdentityInput {
	return &model.IdentityInput{
		FullName: "  Ama   Mensah ",
		Email:    "Ama.Mensah@Example.com ",
		Phone:    "023 123 4567",
		Gender:   "Female",
		DateOfBirth: &model.Date{Time: time.Date(1995, time.December, 24, 0, 0, 0, 0, time.UTC)},
	}
}

func TestResolve_CreatesNormalizedIdentity(t *testing.T) {
	repo := &mockIdentityRepository{}
	svc := newTestService(repo)

	identity, err := svc.Resolve(context.Background(), input())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if identity.Name != "Ama Mensah" {
		t.Errorf("name = %q", identity.Name)
	}
	if identity.Email != "ama.mensah@example.com" {
		t.Errorf("email = %q", identity.Email)
	}
	if identity.Phone != "+233231234567" {
		t.Errorf("phone = %q", identity.Phone)
	}
	if identity.Gender != "female" {
		t.Errorf("gender = %q", identity.Gender)
	}
	if identity.Age != 30 {
		t.Errorf("age = %d, want 30", identity.Age)
	}
}

func TestResolve_ReusesExistingByEmailAndPhone(t *testing.T) {
	repo := &mockIdentityRepository{}
	svc := newTestService(repo)

	first, err := svc.Resolve(context.Background(), input())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	again := input()
	again.Phone = "+233231234567"
	second, err := svc.Resolve(context.Background(), again)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if first.ID != second.ID || repo.inserts != 1 {
		t.Errorf("expected one identity, got ids %s/%s and %d inserts", first.ID, second.ID, repo.inserts)
	}
}

func TestResolve_MatchesByEmailAndNameWhenPhoneDiffers(t *testing.T) {
	repo := &mockIdentityRepository{identities: []*model.Identity{
		{ID: "existing", Name: "Ama Mensah", Email: "ama.mensah@example.com", Phone: "+233201111111"},
	}}
	svc := newTestService(repo)

	in := input()
	in.FullName = "AMA MENSAH"
	identity, err := svc.Resolve(context.Background(), in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if identity.ID != "existing" || repo.inserts != 0 {
		t.Errorf("expected existing identity, got %s with %d inserts", identity.ID, repo.inserts)
	}
}

func TestResolve_ConcurrentCallsConverge(t *testing.T) {
	repo := &mockIdentityRepository{}
	svc := newTestService(repo)

	var wg sync.WaitGroup
	ids := make([]string, 10)
	for i := range ids {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			identity, err := svc.Resolve(context.Background(), input())
			if err != nil {
				t.Errorf("resolve %d: %v", i, err)
				return
			}
			ids[i] = identity.ID
		}(i)
	}
	wg.Wait()

	for _, id := range ids {
		if id != ids[0] {
			t.Fatalf("concurrent resolves produced different identities: %v", ids)
		}
	}
}

func TestResolve_ValidationFailures(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*model.IdentityInput)
	}{
		{"missing name", func(in *model.IdentityInput) { in.FullName = "" }},
		{"bad email", func(in *model.IdentityInput) { in.Email = "not-an-email" }},
		{"unparseable phone", func(in *model.IdentityInput) { in.Phone = "phone-number" }},
		{"future dob", func(in *model.IdentityInput) {
			in.DateOfBirth = &model.Date{Time: time.Now().Add(48 * time.Hour)}
		}},
		{"unknown gender", func(in *model.IdentityInput) { in.Gender = "robot" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &mockIdentityRepository{}
			svc := newTestService(repo)

			in := input()
			tt.mutate(in)
			_, err := svc.Resolve(context.Background(), in)
			if !apperrors.HasCode(err, apperrors.CodeValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
			if repo.inserts != 0 {
				t.Error("nothing should be inserted on validation failure")
			}
		})
	}
}

func TestResolve_StoreFailureIsUpstream(t *testing.T) {
	svc := newTestService(&mockIdentityRepository{failWith: errors.New("socket closed")})

	_, err := svc.Resolve(context.Background(), input())
	if !apperrors.HasCode(err, apperrors.CodeUpstream) {
		t.Fatalf("expected upstream failure, got %v", err)
	}
}

func TestGetByID_NotFound(t *testing.T) {
	svc := newTestService(&mockIdentityRepository{})

	_, err := svc.GetByID(context.Background(), "missing")
	if !apperrors.HasCode(err, apperrors.CodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
