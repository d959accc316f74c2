package repository

import (
	"context"
	"testing"
	"time"

	bookingserrors "akoben/internal/bookings/errors"
	"akoben/internal/testutil"
	"akoben/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func newBooking(identity int, occurrenceID string) *model.Booking {
	return &model.Booking{
		IdentityID:     testutil.ObjectIDHex(identity),
		TripID:         testutil.ObjectIDHex(100),
		OccurrenceID:   occurrenceID,
		Participating:  true,
		NumberOfPeople: 1,
		BookingDate:    time.Now().UTC().Truncate(time.Millisecond),
		Status:         model.BookingPending,
	}
}

func TestMongoBookingRepository_FindActive(t *testing.T) {
	h := testutil.NewMongoHelper(t)
	repo := NewMongoBookingRepository(h.Config)
	ctx := context.Background()

	cancelled := newBooking(1, "occ-a")
	cancelled.Status = model.BookingCancelled
	require.NoError(t, repo.Create(ctx, cancelled))

	_, err := repo.FindActive(ctx, testutil.ObjectIDHex(1), testutil.ObjectIDHex(100), "occ-a")
	assert.ErrorIs(t, err, bookingserrors.ErrNotFound)

	active := newBooking(1, "occ-a")
	require.NoError(t, repo.Create(ctx, active))
	require.NoError(t, repo.Create(ctx, newBooking(1, "occ-b")))

	found, err := repo.FindActive(ctx, testutil.ObjectIDHex(1), testutil.ObjectIDHex(100), "occ-a")
	require.NoError(t, err)
	assert.Equal(t, active.ID, found.ID)

	n, err := repo.CountActiveByOccurrence(ctx, testutil.ObjectIDHex(100), "occ-a")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	n, err = repo.CountActiveByTrip(ctx, testutil.ObjectIDHex(100))
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestMongoBookingRepository_ReferenceIsUnsetWhenEmpty(t *testing.T) {
	h := testutil.NewMongoHelper(t)
	repo := NewMongoBookingRepository(h.Config)
	ctx := context.Background()

	a := newBooking(1, "occ-a")
	b := newBooking(2, "occ-a")
	require.NoError(t, repo.Create(ctx, a))
	require.NoError(t, repo.Create(ctx, b))

	a.Reference = "ref-1"
	require.NoError(t, repo.Update(ctx, a))
	found, err := repo.FindByReference(ctx, "ref-1")
	require.NoError(t, err)
	assert.Equal(t, a.ID, found.ID)

	// clearing the reference on both must not collide on the unique index
	a.Reference = ""
	require.NoError(t, repo.Update(ctx, a))
	require.NoError(t, repo.Update(ctx, b))
	assert.Zero(t, h.CountDocuments(t, CollectionName, bson.M{"reference": bson.M{"$exists": true}}))

	_, err = repo.FindByReference(ctx, "ref-1")
	assert.ErrorIs(t, err, bookingserrors.ErrReferenceNotFound)

	// a reference held by one booking cannot be given to another
	a.Reference = "ref-2"
	require.NoError(t, repo.Update(ctx, a))
	b.Reference = "ref-2"
	assert.Error(t, repo.Update(ctx, b))
}

func TestMongoBookingRepository_SetPaymentSession(t *testing.T) {
	h := testutil.NewMongoHelper(t)
	repo := NewMongoBookingRepository(h.Config)
	ctx := context.Background()

	booking := newBooking(1, "occ-a")
	require.NoError(t, repo.Create(ctx, booking))

	require.NoError(t, repo.SetPaymentSession(ctx, booking.ID, "ref-1", "https://checkout.example.com/ref-1"))
	stored, err := repo.FindByID(ctx, booking.ID)
	require.NoError(t, err)
	assert.Equal(t, "ref-1", stored.Reference)
	assert.Equal(t, "https://checkout.example.com/ref-1", stored.AuthorizationURL)
	assert.Equal(t, model.BookingPending, stored.Status)

	stored.Status = model.BookingCancelled
	require.NoError(t, repo.Update(ctx, stored))

	err = repo.SetPaymentSession(ctx, booking.ID, "ref-2", "https://checkout.example.com/ref-2")
	assert.ErrorIs(t, err, bookingserrors.ErrNotPayable)

	stored, err = repo.FindByID(ctx, booking.ID)
	require.NoError(t, err)
	assert.Equal(t, model.BookingCancelled, stored.Status)
	assert.Equal(t, "ref-1", stored.Reference)

	err = repo.SetPaymentSession(ctx, testutil.ObjectIDHex(999), "ref-3", "")
	assert.ErrorIs(t, err, bookingserrors.ErrNotFound)
}
