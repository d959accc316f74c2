package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"akoben/internal/bookings/validator"
	"akoben/pkg/config"
	apperrors "akoben/pkg/errors"
	"akoben/pkg/logger"
	"akoben/pkg/model"
	"akoben/pkg/notify"
	"akoben/pkg/payment"
)

const (
	tripID = "652f1c2e8a1b2c3d4e5f6789"
	occA   = "occ-a"
	occB   = "occ-b"
)

var testNow = time.Date(2026, time.October, 1, 9, 0, 0, 0, time.UTC)

type mockGateway struct {
	initializeFunc func(ctx context.Context, req payment.InitializeRequest) (*payment.Initialization, error)
	verifyFunc     func(ctx context.Context, reference string) (*payment.Verification, error)
}

func (m *mockGateway) Initialize(ctx context.Context, req payment.InitializeRequest) (*payment.Initialization, error) {
	if m.initializeFunc != nil {
		return m.initializeFunc(ctx, req)
	}
	return &payment.Initialization{AuthorizationURL: "https://checkout.example.com/" + req.Reference, Reference: req.Reference}, nil
}

func (m *mockGateway) Verify(ctx context.Context, reference string) (*payment.Verification, error) {
	if m.verifyFunc != nil {
		return m.verifyFunc(ctx, reference)
	}
	return &payment.Verification{Status: payment.StatusSuccess, Reference: reference}, nil
}

type sentNotification struct {
	email string
	kind  notify.Kind
	ctx   notify.BookingContext
}

type recordingDispatcher struct {
	sent chan sentNotification
}

func (d *recordingDispatcher) Send(ctx context.Context, email string, kind notify.Kind, booking notify.BookingContext) error {
	d.sent <- sentNotification{email: email, kind: kind, ctx: booking}
	return nil
}

type fixture struct {
	db         *memDB
	svc        *bookingService
	gateway    *mockGateway
	identities *memIdentities
	dispatcher *recordingDispatcher
}

func newFixture(t *testing.T, capacity int) *fixture {
	t.Helper()
	db := newMemDB()
	start := testNow.Add(30 * 24 * time.Hour)
	db.addTrip(&model.Trip{
		ID:   tripID,
		Name: "Mount Afadja Hike",
		Cost: model.Cost{BasePrice: 200, Discount: 25},
		Schedule: model.TripSchedule{Occurrences: []model.Occurrence{
			{ID: occA, StartDate: start, EndDate: start.Add(48 * time.Hour), Capacity: capacity},
			{ID: occB, StartDate: start.Add(7 * 24 * time.Hour), EndDate: start.Add(9 * 24 * time.Hour), Capacity: capacity},
		}},
	})

	log := logger.Discard()
	f := &fixture{
		db:         db,
		gateway:    &mockGateway{},
		identities: &memIdentities{db: db},
		dispatcher: &recordingDispatcher{sent: make(chan sentNotification, 128)},
	}
	f.svc = &bookingService{
		repo:       memBookings{db: db},
		trips:      memTrips{db: db},
		identities: f.identities,
		gateway:    f.gateway,
		dispatcher: f.dispatcher,
		validator:  validator.NewBookingValidator(log),
		cfg: &config.Config{
			Log:                 log,
			ReadTimeout:         time.Second,
			PaymentCurrency:     "GHS",
			NotificationTimeout: time.Second,
		},
		now: func() time.Time { return testNow },
	}
	return f
}

func request(email string, occurrenceID string) *model.ReservationRequest {
	return &model.ReservationRequest{
		TripID:         tripID,
		OccurrenceID:   occurrenceID,
		NumberOfPeople: 1,
		IdentityInput: model.IdentityInput{
			FullName: "Guest " + email,
			Email:    email,
			Phone:    "0231234567",
		},
	}
}

func (f *fixture) reserve(t *testing.T, email string, occurrenceID string) *model.ReservationResult {
	t.Helper()
	result, err := f.svc.Reserve(context.Background(), request(email, occurrenceID))
	if err != nil {
		t.Fatalf("reserve %s: %v", email, err)
	}
	return result
}

func (f *fixture) occurrence(t *testing.T, occurrenceID string) model.Occurrence {
	t.Helper()
	return *f.db.trip(tripID).FindOccurrence(occurrenceID)
}

func assertCounters(t *testing.T, occ model.Occurrence, slots int, available bool) {
	t.Helper()
	if occ.SlotsRemaining != slots {
		t.Errorf("slots_remaining = %d, want %d", occ.SlotsRemaining, slots)
	}
	if occ.IsAvailable != available {
		t.Errorf("is_available = %v, want %v", occ.IsAvailable, available)
	}
	if occ.SlotsRemaining != occ.Capacity-len(occ.Participants) {
		t.Errorf("slots_remaining %d out of step with %d participants of %d", occ.SlotsRemaining, len(occ.Participants), occ.Capacity)
	}
}

func TestReserve_Scenarios(t *testing.T) {
	f := newFixture(t, 2)

	// A: first reservation on an empty occurrence
	x := f.reserve(t, "x@example.com", occA)
	if x.AlreadyBooked {
		t.Fatal("first reservation must not be flagged as already booked")
	}
	if x.Booking.Status != model.BookingPending || x.Booking.Payment {
		t.Errorf("new booking should be pending and unpaid, got %s/%v", x.Booking.Status, x.Booking.Payment)
	}
	if !x.Booking.Participating {
		t.Error("participating should default to true")
	}
	assertCounters(t, f.occurrence(t, occA), 1, true)

	// B: the last seat closes the occurrence
	f.reserve(t, "y@example.com", occA)
	assertCounters(t, f.occurrence(t, occA), 0, false)

	// C: a newcomer is turned away
	_, err := f.svc.Reserve(context.Background(), request("z@example.com", occA))
	if !apperrors.HasCode(err, apperrors.CodeCapacityExceeded) {
		t.Fatalf("expected capacity exceeded, got %v", err)
	}
	if f.db.bookingCount() != 2 {
		t.Errorf("bookings = %d, want 2", f.db.bookingCount())
	}

	// D: an existing participant gets their booking back
	again := f.reserve(t, "x@example.com", occA)
	if !again.AlreadyBooked {
		t.Error("expected already booked flag")
	}
	if again.Booking.ID != x.Booking.ID {
		t.Errorf("expected booking %s, got %s", x.Booking.ID, again.Booking.ID)
	}
	assertCounters(t, f.occurrence(t, occA), 0, false)
}

func TestReserve_Idempotent(t *testing.T) {
	f := newFixture(t, 5)

	first := f.reserve(t, "ama@example.com", occA)
	second := f.reserve(t, "AMA@example.com ", occA)

	if first.Booking.ID != second.Booking.ID || !second.AlreadyBooked {
		t.Fatalf("expected the same booking twice, got %s and %s", first.Booking.ID, second.Booking.ID)
	}
	assertCounters(t, f.occurrence(t, occA), 4, true)
	if got := f.db.bookingsOf(first.Booking.IdentityID); len(got) != 1 {
		t.Errorf("identity should list one booking, got %v", got)
	}
}

func TestReserve_RollsBackOnFailure(t *testing.T) {
	tests := []struct {
		name   string
		inject func(db *memDB)
	}{
		{"booking write fails", func(db *memDB) { db.failBookingCreate = errors.New("disk full") }},
		{"identity write fails", func(db *memDB) { db.failAppendBooking = errors.New("connection reset") }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, 2)
			f.reserve(t, "x@example.com", occA)
			tt.inject(f.db)

			_, err := f.svc.Reserve(context.Background(), request("y@example.com", occA))
			if !apperrors.HasCode(err, apperrors.CodeInternal) {
				t.Fatalf("expected internal error, got %v", err)
			}

			occ := f.occurrence(t, occA)
			assertCounters(t, occ, 1, true)
			if occ.HasParticipant("identity-y@example.com") {
				t.Error("failed reservation left a participant behind")
			}
			if f.db.bookingCount() != 1 {
				t.Errorf("bookings = %d, want 1", f.db.bookingCount())
			}
			if got := f.db.bookingsOf("identity-y@example.com"); len(got) != 0 {
				t.Errorf("identity kept booking ids %v", got)
			}
		})
	}
}

func TestReserve_ConcurrentCapacity(t *testing.T) {
	const capacity, callers = 5, 40
	f := newFixture(t, capacity)

	var wg sync.WaitGroup
	var mu sync.Mutex
	created, refused := 0, 0
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			result, err := f.svc.Reserve(context.Background(), request(fmt.Sprintf("guest%d@example.com", i), occA))
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil && !result.AlreadyBooked:
				created++
			case apperrors.HasCode(err, apperrors.CodeCapacityExceeded):
				refused++
			default:
				t.Errorf("unexpected outcome: %v", err)
			}
		}(i)
	}
	wg.Wait()

	if created != capacity || refused != callers-capacity {
		t.Errorf("created %d refused %d, want %d and %d", created, refused, capacity, callers-capacity)
	}
	occ := f.occurrence(t, occA)
	assertCounters(t, occ, 0, false)
	if len(occ.Participants) != capacity || f.db.bookingCount() != capacity {
		t.Errorf("participants %d bookings %d, want %d", len(occ.Participants), f.db.bookingCount(), capacity)
	}
}

func TestReserve_RetriesWhenOccurrenceChanged(t *testing.T) {
	f := newFixture(t, 3)
	f.db.occurrenceConflict = 2

	result := f.reserve(t, "x@example.com", occA)
	if result.Booking.ID == "" {
		t.Fatal("expected a booking after retry")
	}
	assertCounters(t, f.occurrence(t, occA), 2, true)
	if f.db.bookingCount() != 1 {
		t.Errorf("bookings = %d, want 1", f.db.bookingCount())
	}
}

func TestReserve_GivesUpAfterRepeatedConflicts(t *testing.T) {
	f := newFixture(t, 3)
	f.db.occurrenceConflict = maxCommitAttempts

	_, err := f.svc.Reserve(context.Background(), request("x@example.com", occA))
	if !apperrors.HasCode(err, apperrors.CodeTransientStore) {
		t.Fatalf("expected transient store error, got %v", err)
	}
}

func TestReserve_NotFound(t *testing.T) {
	f := newFixture(t, 2)

	_, err := f.svc.Reserve(context.Background(), request("x@example.com", "missing"))
	if !apperrors.HasCode(err, apperrors.CodeNotFound) {
		t.Errorf("unknown occurrence: expected not found, got %v", err)
	}

	req := request("x@example.com", occA)
	req.TripID = "652f1c2e8a1b2c3d4e5f0000"
	_, err = f.svc.Reserve(context.Background(), req)
	if !apperrors.HasCode(err, apperrors.CodeNotFound) {
		t.Errorf("unknown trip: expected not found, got %v", err)
	}
}

func TestReserve_ParticipantWithoutBooking(t *testing.T) {
	f := newFixture(t, 3)
	f.db.mu.Lock()
	f.db.trips[tripID].FindOccurrence(occA).Participants = []string{"identity-x@example.com"}
	f.db.mu.Unlock()

	_, err := f.svc.Reserve(context.Background(), request("x@example.com", occA))
	if !apperrors.HasCode(err, apperrors.CodeInternalInconsistency) {
		t.Fatalf("expected internal inconsistency, got %v", err)
	}
}

func TestReserve_Validation(t *testing.T) {
	f := newFixture(t, 3)

	req := request("x@example.com", occA)
	req.NumberOfPeople = 0
	_, err := f.svc.Reserve(context.Background(), req)
	if !apperrors.HasCode(err, apperrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}

	f.identities.resolveErr = apperrors.Upstream("identity resolver", errors.New("timeout"))
	_, err = f.svc.Reserve(context.Background(), request("x@example.com", occA))
	if !apperrors.HasCode(err, apperrors.CodeUpstream) {
		t.Fatalf("expected upstream failure, got %v", err)
	}
	if f.db.transactions != 0 {
		t.Error("no transaction should start before the identity is resolved")
	}
}

func TestReserve_NotifiesPending(t *testing.T) {
	f := newFixture(t, 3)
	f.reserve(t, "x@example.com", occA)

	select {
	case n := <-f.dispatcher.sent:
		if n.kind != notify.KindPending || n.email != "x@example.com" {
			t.Errorf("unexpected notification %+v", n)
		}
		if n.ctx.TripName != "Mount Afadja Hike" {
			t.Errorf("trip name = %q", n.ctx.TripName)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no notification sent")
	}
}

func statusPtr(s model.BookingStatus) *model.BookingStatus { return &s }

func TestUpdate_CancelReleasesSeat(t *testing.T) {
	f := newFixture(t, 1)
	booking := f.reserve(t, "x@example.com", occA).Booking
	assertCounters(t, f.occurrence(t, occA), 0, false)

	updated, err := f.svc.Update(context.Background(), booking.ID, &model.BookingUpdate{Status: statusPtr(model.BookingCancelled)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Status != model.BookingCancelled {
		t.Errorf("status = %s", updated.Status)
	}
	occ := f.occurrence(t, occA)
	assertCounters(t, occ, 1, true)
	if occ.HasParticipant(booking.IdentityID) {
		t.Error("cancelled identity still listed")
	}

	// the freed seat can be booked again
	f.reserve(t, "y@example.com", occA)
	assertCounters(t, f.occurrence(t, occA), 0, false)
}

func TestUpdate_Transitions(t *testing.T) {
	future := testNow.Add(60 * 24 * time.Hour)
	past := testNow.Add(-time.Hour)

	tests := []struct {
		name     string
		from     []model.BookingStatus
		update   model.BookingUpdate
		wantCode string
	}{
		{"pending to confirmed", nil, model.BookingUpdate{Status: statusPtr(model.BookingConfirmed)}, ""},
		{"confirmed back to pending", []model.BookingStatus{model.BookingConfirmed}, model.BookingUpdate{Status: statusPtr(model.BookingPending)}, apperrors.CodeInvalidTransition},
		{"cancelled to confirmed", []model.BookingStatus{model.BookingCancelled}, model.BookingUpdate{Status: statusPtr(model.BookingConfirmed)}, apperrors.CodeInvalidTransition},
		{"cancelled stays cancelled", []model.BookingStatus{model.BookingCancelled}, model.BookingUpdate{Status: statusPtr(model.BookingCancelled)}, ""},
		{"reschedule without date", nil, model.BookingUpdate{Status: statusPtr(model.BookingReschedule)}, apperrors.CodeValidation},
		{"reschedule to the past", nil, model.BookingUpdate{Status: statusPtr(model.BookingReschedule), RescheduleDate: &past}, apperrors.CodeValidation},
		{"reschedule", nil, model.BookingUpdate{Status: statusPtr(model.BookingReschedule), RescheduleDate: &future}, ""},
		{"reschedule then confirm", []model.BookingStatus{model.BookingReschedule}, model.BookingUpdate{Status: statusPtr(model.BookingConfirmed)}, ""},
		{"date without reschedule", nil, model.BookingUpdate{RescheduleDate: &future}, apperrors.CodeValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, 3)
			booking := f.reserve(t, "x@example.com", occA).Booking

			for _, s := range tt.from {
				update := &model.BookingUpdate{Status: statusPtr(s)}
				if s == model.BookingReschedule {
					update.RescheduleDate = &future
				}
				if _, err := f.svc.Update(context.Background(), booking.ID, update); err != nil {
					t.Fatalf("setup move to %s: %v", s, err)
				}
			}

			update := tt.update
			_, err := f.svc.Update(context.Background(), booking.ID, &update)
			if tt.wantCode == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !apperrors.HasCode(err, tt.wantCode) {
				t.Fatalf("expected %s, got %v", tt.wantCode, err)
			}
		})
	}
}

func TestUpdate_MoveOccurrence(t *testing.T) {
	f := newFixture(t, 1)
	booking := f.reserve(t, "x@example.com", occA).Booking

	target := occB
	updated, err := f.svc.Update(context.Background(), booking.ID, &model.BookingUpdate{OccurrenceID: &target})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.OccurrenceID != occB {
		t.Errorf("occurrence = %s", updated.OccurrenceID)
	}
	assertCounters(t, f.occurrence(t, occA), 1, true)
	assertCounters(t, f.occurrence(t, occB), 0, false)

	// occB is now full: moving someone else there fails and changes nothing
	other := f.reserve(t, "y@example.com", occA).Booking
	_, err = f.svc.Update(context.Background(), other.ID, &model.BookingUpdate{OccurrenceID: &target})
	if !apperrors.HasCode(err, apperrors.CodeCapacityExceeded) {
		t.Fatalf("expected capacity exceeded, got %v", err)
	}
	assertCounters(t, f.occurrence(t, occA), 0, false)
	stored, _ := f.svc.GetByID(context.Background(), other.ID)
	if stored.OccurrenceID != occA {
		t.Errorf("failed move changed the booking to %s", stored.OccurrenceID)
	}
}

func TestUpdate_EmptyAndMissing(t *testing.T) {
	f := newFixture(t, 1)

	_, err := f.svc.Update(context.Background(), "b1", &model.BookingUpdate{})
	if !apperrors.HasCode(err, apperrors.CodeInvalidInput) {
		t.Errorf("empty update: expected invalid input, got %v", err)
	}

	_, err = f.svc.Update(context.Background(), "missing", &model.BookingUpdate{Status: statusPtr(model.BookingConfirmed)})
	if !apperrors.HasCode(err, apperrors.CodeNotFound) {
		t.Errorf("missing booking: expected not found, got %v", err)
	}
}

func TestPayment_InitializeAndVerify(t *testing.T) {
	f := newFixture(t, 3)
	req := request("x@example.com", occA)
	req.NumberOfPeople = 2
	result, err := f.svc.Reserve(context.Background(), req)
	if err != nil {
		t.Fatalf("reserve: %v", err)
	}
	<-f.dispatcher.sent

	var charged payment.InitializeRequest
	f.gateway.initializeFunc = func(ctx context.Context, req payment.InitializeRequest) (*payment.Initialization, error) {
		charged = req
		return &payment.Initialization{AuthorizationURL: "https://checkout.example.com/s", AccessCode: "s", Reference: req.Reference}, nil
	}

	session, err := f.svc.InitializePayment(context.Background(), result.Booking.ID)
	if err != nil {
		t.Fatalf("initialize: %v", err)
	}
	// 200 at 25% off for two people, in pesewas
	if charged.Amount != 30000 || session.Amount != 30000 || session.DisplayAmount != 300 {
		t.Errorf("amount = %d/%d/%v, want 30000", charged.Amount, session.Amount, session.DisplayAmount)
	}
	if charged.Email != "x@example.com" || charged.Currency != "GHS" || charged.Reference == "" {
		t.Errorf("unexpected gateway request %+v", charged)
	}

	stored, _ := f.svc.GetByID(context.Background(), result.Booking.ID)
	if stored.Reference != session.Reference || stored.AuthorizationURL != "https://checkout.example.com/s" || stored.Status != model.BookingPending {
		t.Errorf("session not stored: %+v", stored)
	}

	f.gateway.verifyFunc = func(ctx context.Context, reference string) (*payment.Verification, error) {
		return &payment.Verification{Status: payment.StatusSuccess, Reference: reference, AuthorizationURL: "https://checkout.example.com/paid"}, nil
	}

	// E: success confirms and marks paid
	booking, err := f.svc.VerifyAndApplyPayment(context.Background(), session.Reference)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if !booking.Payment || booking.Status != model.BookingConfirmed {
		t.Errorf("payment %v status %s", booking.Payment, booking.Status)
	}
	if booking.AuthorizationURL != "https://checkout.example.com/paid" {
		t.Errorf("authorization_url = %q", booking.AuthorizationURL)
	}
	select {
	case n := <-f.dispatcher.sent:
		if n.kind != notify.KindConfirmed || n.ctx.AmountPaid != 300 {
			t.Errorf("unexpected notification %+v", n)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no confirmation sent")
	}

	// paying twice is refused
	_, err = f.svc.InitializePayment(context.Background(), result.Booking.ID)
	if !apperrors.HasCode(err, apperrors.CodeConflict) {
		t.Errorf("expected conflict for a paid booking, got %v", err)
	}
}

func TestPayment_InitializeRacingCancel(t *testing.T) {
	f := newFixture(t, 1)
	booking := f.reserve(t, "x@example.com", occA).Booking

	// the guest cancels while the gateway is still opening the session
	f.gateway.initializeFunc = func(ctx context.Context, req payment.InitializeRequest) (*payment.Initialization, error) {
		if _, err := f.svc.Update(ctx, booking.ID, &model.BookingUpdate{Status: statusPtr(model.BookingCancelled)}); err != nil {
			t.Errorf("cancel: %v", err)
		}
		return &payment.Initialization{AuthorizationURL: "https://checkout.example.com/late", Reference: req.Reference}, nil
	}

	_, err := f.svc.InitializePayment(context.Background(), booking.ID)
	if !apperrors.HasCode(err, apperrors.CodeConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}

	stored, _ := f.svc.GetByID(context.Background(), booking.ID)
	if stored.Status != model.BookingCancelled || stored.Reference != "" {
		t.Errorf("cancelled booking overwritten: status %s reference %q", stored.Status, stored.Reference)
	}
	assertCounters(t, f.occurrence(t, occA), 1, true)

	// the released seat goes to someone else and only one booking is active
	again := f.reserve(t, "x@example.com", occA).Booking
	if again.ID == booking.ID {
		t.Error("cancelled booking reused")
	}
	active, err := f.svc.repo.CountActiveByOccurrence(context.Background(), tripID, occA)
	if err != nil || active != 1 {
		t.Errorf("active bookings = %d (%v), want 1", active, err)
	}
	assertCounters(t, f.occurrence(t, occA), 0, false)
}

func TestPayment_VerifyFailures(t *testing.T) {
	tests := []struct {
		name     string
		verify   func(ctx context.Context, reference string) (*payment.Verification, error)
		ref      string
		wantCode string
	}{
		{"reference held by no booking", nil, "nope", apperrors.CodeNotFound},
		{"reference unknown to the gateway", func(ctx context.Context, reference string) (*payment.Verification, error) {
			return nil, apperrors.NotFoundWithID("Payment", reference)
		}, "nope", apperrors.CodeNotFound},
		{"declined", func(ctx context.Context, reference string) (*payment.Verification, error) {
			return &payment.Verification{Status: "failed", Reference: reference}, nil
		}, "ref-1", apperrors.CodePaymentNotSuccessful},
		{"gateway down", func(ctx context.Context, reference string) (*payment.Verification, error) {
			return nil, apperrors.Upstream("payment gateway", errors.New("dial tcp: refused"))
		}, "ref-1", apperrors.CodeUpstream},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, 3)
			booking := f.reserve(t, "x@example.com", occA).Booking
			ref := "ref-1"
			if _, err := f.svc.Update(context.Background(), booking.ID, &model.BookingUpdate{Reference: &ref}); err != nil {
				t.Fatalf("setup: %v", err)
			}
			f.gateway.verifyFunc = tt.verify

			_, err := f.svc.VerifyAndApplyPayment(context.Background(), tt.ref)
			if !apperrors.HasCode(err, tt.wantCode) {
				t.Fatalf("expected %s, got %v", tt.wantCode, err)
			}

			stored, _ := f.svc.GetByID(context.Background(), booking.ID)
			if stored.Payment || stored.Status != model.BookingPending {
				t.Errorf("booking mutated: payment %v status %s", stored.Payment, stored.Status)
			}
		})
	}
}

func TestGetAll_StatusFilter(t *testing.T) {
	f := newFixture(t, 5)
	a := f.reserve(t, "a@example.com", occA).Booking
	f.reserve(t, "b@example.com", occA)
	if _, err := f.svc.Update(context.Background(), a.ID, &model.BookingUpdate{Status: statusPtr(model.BookingConfirmed)}); err != nil {
		t.Fatalf("setup: %v", err)
	}

	confirmed, total, err := f.svc.GetAll(context.Background(), model.BookingConfirmed, 10, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 1 || len(confirmed) != 1 || confirmed[0].ID != a.ID {
		t.Errorf("expected only %s, got %d total", a.ID, total)
	}

	_, _, err = f.svc.GetAll(context.Background(), "archived", 10, 0)
	if !apperrors.HasCode(err, apperrors.CodeInvalidInput) {
		t.Errorf("expected invalid input for unknown status, got %v", err)
	}
}

func TestDelete_DoesNotTouchCapacity(t *testing.T) {
	f := newFixture(t, 2)
	booking := f.reserve(t, "x@example.com", occA).Booking

	if err := f.svc.Delete(context.Background(), booking.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertCounters(t, f.occurrence(t, occA), 1, true)

	err := f.svc.Delete(context.Background(), booking.ID)
	if !apperrors.HasCode(err, apperrors.CodeNotFound) {
		t.Errorf("expected not found on second delete, got %v", err)
	}
}
