package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	apperrors "akoben/pkg/errors"
	"akoben/pkg/logger"
	"akoben/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type mockDateRequestService struct {
	createFunc func(ctx context.Context, tripID string, input *model.DateRequestInput) (*model.DateRequest, error)
	gotTripID  string
}

func (m *mockDateRequestService) Create(ctx context.Context, tripID string, input *model.DateRequestInput) (*model.DateRequest, error) {
	return m.createFunc(ctx, tripID, input)
}

func (m *mockDateRequestService) GetByID(ctx context.Context, id string) (*model.DateRequest, error) {
	return nil, apperrors.NotFoundWithID("Date request", id)
}

func (m *mockDateRequestService) GetAll(ctx context.Context, tripID string, limit int, offset int64) ([]*model.DateRequest, int64, error) {
	m.gotTripID = tripID
	return []*model.DateRequest{}, 0, nil
}

func newDateRequestRouter(svc *mockDateRequestService) *httprouter.Router {
	router := httprouter.New()
	NewDateRequestHandler(svc, logger.Discard()).RegisterRoutes(router)
	return router
}

func TestCreateDateRequest(t *testing.T) {
	var gotTrip string
	var gotInput *model.DateRequestInput
	router := newDateRequestRouter(&mockDateRequestService{createFunc: func(ctx context.Context, tripID string, input *model.DateRequestInput) (*model.DateRequest, error) {
		gotTrip, gotInput = tripID, input
		return &model.DateRequest{ID: "r1", TripID: tripID}, nil
	}})

	body := `{"name":"Ama","email":"ama@example.com","phone":"0241234567","start_date":"2026-11-14","end_date":"2026-11-16"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/trips/t1/date-requests", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	if gotTrip != "t1" || gotInput.StartDate == nil || gotInput.StartDate.Day() != 14 {
		t.Errorf("request not routed: trip %q input %+v", gotTrip, gotInput)
	}
}

func TestCreateDateRequest_Duplicate(t *testing.T) {
	router := newDateRequestRouter(&mockDateRequestService{createFunc: func(ctx context.Context, tripID string, input *model.DateRequestInput) (*model.DateRequest, error) {
		return nil, apperrors.Conflict("A similar request already exists")
	}})

	body := `{"name":"Ama","email":"ama@example.com","phone":"0241234567","start_date":"2026-11-14","end_date":"2026-11-16"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/trips/t1/date-requests", strings.NewReader(body))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusConflict {
		t.Errorf("expected 409, got %d", w.Code)
	}
}

func TestListDateRequests_Scope(t *testing.T) {
	svc := &mockDateRequestService{}
	router := newDateRequestRouter(svc)

	for path, wantTrip := range map[string]string{
		"/api/v1/trips/t1/date-requests": "t1",
		"/api/v1/date-requests":          "",
	} {
		svc.gotTripID = "unset"
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))

		if w.Code != http.StatusOK {
			t.Errorf("%s: expected 200, got %d", path, w.Code)
		}
		if svc.gotTripID != wantTrip {
			t.Errorf("%s: trip filter %q, want %q", path, svc.gotTripID, wantTrip)
		}
	}
}
