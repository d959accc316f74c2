package service

import (
	"context"
	"errors"
	"testing"
	"time"

	apperrors "akoben/pkg/errors"
	"akoben/pkg/notify"
)

type blockingDispatcher struct {
	started chan struct{}
	release chan struct{}
	sent    chan notify.Kind
}

func (d *blockingDispatcher) Send(ctx context.Context, email string, kind notify.Kind, booking notify.BookingContext) error {
	d.started <- struct{}{}
	<-d.release
	d.sent <- kind
	return nil
}

func TestDrain_WaitsForInFlightNotifications(t *testing.T) {
	f := newFixture(t, 2)
	d := &blockingDispatcher{
		started: make(chan struct{}, 1),
		release: make(chan struct{}),
		sent:    make(chan notify.Kind, 1),
	}
	f.svc.dispatcher = d

	f.reserve(t, "x@example.com", occA)
	select {
	case <-d.started:
	case <-time.After(2 * time.Second):
		t.Fatal("notification never started")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := f.svc.Drain(ctx)
	if !apperrors.HasCode(err, apperrors.CodeUnavailable) || !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected unavailable with the deadline as cause, got %v", err)
	}

	close(d.release)
	if err := f.svc.Drain(context.Background()); err != nil {
		t.Fatalf("drain: %v", err)
	}
	// the send completed before Drain returned
	select {
	case kind := <-d.sent:
		if kind != notify.KindPending {
			t.Errorf("kind = %s", kind)
		}
	default:
		t.Fatal("drain returned before the notification was sent")
	}
}

func TestDrain_NothingInFlight(t *testing.T) {
	f := newFixture(t, 1)
	if err := f.svc.Drain(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
