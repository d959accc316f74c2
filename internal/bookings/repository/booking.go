package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	bookingserrors "akoben/internal/bookings/errors"
	"akoben/pkg/config"
	mongotx "akoben/pkg/db/mongo"
	"akoben/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName = "Bookings"
)

// Filter narrows listing queries. Zero values match everything.
type Filter struct {
	Status     model.BookingStatus
	TripID     string
	IdentityID string
}

func (f Filter) toBSON() bson.M {
	query := bson.M{}
	if f.Status != "" {
		query["status"] = f.Status
	}
	if f.TripID != "" {
		query["trip_id"] = f.TripID
	}
	if f.IdentityID != "" {
		query["identity_id"] = f.IdentityID
	}
	return query
}

type mongoBookingRepository struct {
	cfg        *config.Config
	db         *mongo.Database
	collection *mongo.Collection
	txManager  mongotx.TransactionManager
}

type BookingRepository interface {
	Create(ctx context.Context, booking *model.Booking) error
	FindByID(ctx context.Context, id string) (*model.Booking, error)
	FindAll(ctx context.Context, filter Filter, limit int, offset int64) ([]*model.Booking, error)
	Count(ctx context.Context, filter Filter) (int64, error)
	Update(ctx context.Context, booking *model.Booking) error
	// SetPaymentSession stores the gateway session on an unpaid, active
	// booking and touches nothing else.
	SetPaymentSession(ctx context.Context, id string, reference string, authorizationURL string) error
	Delete(ctx context.Context, id string) error
	// FindActive returns the non-cancelled booking of identityID on the given
	// occurrence.
	FindActive(ctx context.Context, identityID string, tripID string, occurrenceID string) (*model.Booking, error)
	FindByReference(ctx context.Context, reference string) (*model.Booking, error)
	CountActiveByTrip(ctx context.Context, tripID string) (int64, error)
	CountActiveByOccurrence(ctx context.Context, tripID string, occurrenceID string) (int64, error)
	ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error
}

func NewMongoBookingRepository(cfg *config.Config) BookingRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoBookingRepository{
		cfg:        cfg,
		db:         db,
		collection: db.Collection(CollectionName),
		txManager:  mongotx.NewTransactionManager(cfg.Client.Mongo, cfg.TransactionTimeout),
	}
}

func (r *mongoBookingRepository) Create(ctx context.Context, booking *model.Booking) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	now := time.Now().UTC().Truncate(time.Millisecond)
	booking.CreatedAt = now
	booking.UpdatedAt = now
	result, err := r.collection.InsertOne(ctx, booking)
	if err != nil {
		return fmt.Errorf("failed to create booking: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		booking.ID = oid.Hex()
	}
	return nil
}

func (r *mongoBookingRepository) FindByID(ctx context.Context, id string) (*model.Booking, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", bookingserrors.ErrInvalidID, id)
	}

	return r.findOne(ctx, bson.M{"_id": objectID}, bookingserrors.ErrNotFound)
}

func (r *mongoBookingRepository) FindAll(ctx context.Context, filter Filter, limit int, offset int64) ([]*model.Booking, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "booking_date", Value: -1}}).
		SetLimit(int64(limit)).
		SetSkip(offset)

	cursor, err := r.collection.Find(ctx, filter.toBSON(), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find bookings: %w", err)
	}
	defer cursor.Close(ctx)

	var bookings []*model.Booking
	if err = cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("failed to decode bookings: %w", err)
	}
	return bookings, nil
}

func (r *mongoBookingRepository) Count(ctx context.Context, filter Filter) (int64, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, filter.toBSON())
	if err != nil {
		return 0, fmt.Errorf("failed to count bookings: %w", err)
	}
	return count, nil
}

// Update writes every mutable field of booking. Identity and trip references
// never change after creation.
func (r *mongoBookingRepository) Update(ctx context.Context, booking *model.Booking) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(booking.ID)
	if err != nil {
		return fmt.Errorf("%w: %s", bookingserrors.ErrInvalidID, booking.ID)
	}

	booking.UpdatedAt = time.Now().UTC().Truncate(time.Millisecond)
	set := bson.M{
		"occurrence_id":     booking.OccurrenceID,
		"participating":     booking.Participating,
		"number_of_people":  booking.NumberOfPeople,
		"payment":           booking.Payment,
		"authorization_url": booking.AuthorizationURL,
		"status":            booking.Status,
		"updated_at":        booking.UpdatedAt,
	}
	update := bson.M{"$set": set}

	// reference carries a sparse unique index, so an empty one is unset
	// rather than stored
	unset := bson.M{}
	if booking.Reference != "" {
		set["reference"] = booking.Reference
	} else {
		unset["reference"] = ""
	}
	if booking.RescheduleDate != nil {
		set["reschedule_date"] = booking.RescheduleDate
	} else {
		unset["reschedule_date"] = ""
	}
	if len(unset) > 0 {
		update["$unset"] = unset
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objectID}, update)
	if err != nil {
		return fmt.Errorf("failed to update booking: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("%w: %s", bookingserrors.ErrNotFound, booking.ID)
	}
	return nil
}

func (r *mongoBookingRepository) SetPaymentSession(ctx context.Context, id string, reference string, authorizationURL string) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", bookingserrors.ErrInvalidID, id)
	}

	filter := bson.M{
		"_id":     objectID,
		"status":  bson.M{"$ne": model.BookingCancelled},
		"payment": false,
	}
	update := bson.M{"$set": bson.M{
		"reference":         reference,
		"authorization_url": authorizationURL,
		"updated_at":        time.Now().UTC().Truncate(time.Millisecond),
	}}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to store payment session: %w", err)
	}
	if result.MatchedCount == 0 {
		if _, err := r.FindByID(ctx, id); err != nil {
			return err
		}
		return fmt.Errorf("%w: %s", bookingserrors.ErrNotPayable, id)
	}
	return nil
}

func (r *mongoBookingRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", bookingserrors.ErrInvalidID, id)
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return fmt.Errorf("failed to delete booking: %w", err)
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("%w: %s", bookingserrors.ErrNotFound, id)
	}
	return nil
}

func (r *mongoBookingRepository) FindActive(ctx context.Context, identityID string, tripID string, occurrenceID string) (*model.Booking, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{
		"identity_id":   identityID,
		"trip_id":       tripID,
		"occurrence_id": occurrenceID,
		"status":        bson.M{"$ne": model.BookingCancelled},
	}
	return r.findOne(ctx, filter, bookingserrors.ErrNotFound)
}

func (r *mongoBookingRepository) FindByReference(ctx context.Context, reference string) (*model.Booking, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	return r.findOne(ctx, bson.M{"reference": reference}, bookingserrors.ErrReferenceNotFound)
}

func (r *mongoBookingRepository) CountActiveByTrip(ctx context.Context, tripID string) (int64, error) {
	return r.countActive(ctx, bson.M{"trip_id": tripID})
}

func (r *mongoBookingRepository) CountActiveByOccurrence(ctx context.Context, tripID string, occurrenceID string) (int64, error) {
	return r.countActive(ctx, bson.M{"trip_id": tripID, "occurrence_id": occurrenceID})
}

func (r *mongoBookingRepository) countActive(ctx context.Context, filter bson.M) (int64, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter["status"] = bson.M{"$ne": model.BookingCancelled}
	count, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("failed to count active bookings: %w", err)
	}
	return count, nil
}

func (r *mongoBookingRepository) findOne(ctx context.Context, filter bson.M, notFound error) (*model.Booking, error) {
	var booking model.Booking
	err := r.collection.FindOne(ctx, filter).Decode(&booking)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, notFound
		}
		return nil, fmt.Errorf("failed to find booking: %w", err)
	}
	return &booking, nil
}

func (r *mongoBookingRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}
