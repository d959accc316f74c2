package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	tripserrors "akoben/internal/trips/errors"
	"akoben/pkg/config"
	mongotx "akoben/pkg/db/mongo"
	"akoben/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName = "Trips"
)

type mongoTripRepository struct {
	cfg        *config.Config
	db         *mongo.Database
	collection *mongo.Collection
	txManager  mongotx.TransactionManager
}

type TripRepository interface {
	Create(ctx context.Context, trip *model.Trip) error
	FindByID(ctx context.Context, id string) (*model.Trip, error)
	FindAll(ctx context.Context, limit int, offset int64) ([]*model.Trip, error)
	Count(ctx context.Context) (int64, error)
	Update(ctx context.Context, id string, trip *model.Trip) error
	Delete(ctx context.Context, id string) error
	AddOccurrence(ctx context.Context, tripID string, occ *model.Occurrence) error
	RemoveOccurrence(ctx context.Context, tripID string, occurrenceID string) error
	// SaveOccurrence writes participants and derived counters of occ, provided
	// the stored occurrence still has expectedParticipants entries.
	SaveOccurrence(ctx context.Context, tripID string, occ *model.Occurrence, expectedParticipants int) error
	ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error
}

func NewMongoTripRepository(cfg *config.Config) TripRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoTripRepository{
		cfg:        cfg,
		db:         db,
		collection: db.Collection(CollectionName),
		txManager:  mongotx.NewTransactionManager(cfg.Client.Mongo, cfg.TransactionTimeout),
	}
}

func (r *mongoTripRepository) Create(ctx context.Context, trip *model.Trip) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	now := time.Now().UTC().Truncate(time.Millisecond)
	trip.CreatedAt = now
	trip.UpdatedAt = now
	result, err := r.collection.InsertOne(ctx, trip)
	if err != nil {
		return fmt.Errorf("failed to create trip: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		trip.ID = oid.Hex()
	}
	return nil
}

func (r *mongoTripRepository) FindByID(ctx context.Context, id string) (*model.Trip, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", tripserrors.ErrInvalidID, id)
	}

	var trip model.Trip
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&trip)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: %s", tripserrors.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to find trip: %w", err)
	}

	return &trip, nil
}

func (r *mongoTripRepository) FindAll(ctx context.Context, limit int, offset int64) ([]*model.Trip, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetLimit(int64(limit)).
		SetSkip(offset).
		SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query trips: %w", err)
	}
	defer cursor.Close(ctx)

	var trips []*model.Trip
	if err = cursor.All(ctx, &trips); err != nil {
		return nil, fmt.Errorf("failed to decode trips: %w", err)
	}
	return trips, nil
}

func (r *mongoTripRepository) Count(ctx context.Context) (int64, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count trips: %w", err)
	}
	return count, nil
}

// Update replaces the descriptive fields only. Occurrences are written through
// AddOccurrence, RemoveOccurrence and SaveOccurrence.
func (r *mongoTripRepository) Update(ctx context.Context, id string, trip *model.Trip) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", tripserrors.ErrInvalidID, id)
	}

	update := bson.M{
		"$set": bson.M{
			"name":               trip.Name,
			"description":        trip.Description,
			"type":               trip.Type,
			"difficulty":         trip.Difficulty,
			"activity_level":     trip.ActivityLevel,
			"duration":           trip.Duration,
			"group_size":         trip.GroupSize,
			"location":           trip.Location,
			"cost":               trip.Cost,
			"schedule.itinerary": trip.Schedule.Itinerary,
			"logistics":          trip.Logistics,
			"images":             trip.Images,
			"status":             trip.Status,
			"updated_at":         time.Now().UTC().Truncate(time.Millisecond),
		},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objectID}, update)
	if err != nil {
		return fmt.Errorf("failed to update trip: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("%w: %s", tripserrors.ErrNotFound, id)
	}
	return nil
}

func (r *mongoTripRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", tripserrors.ErrInvalidID, id)
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return fmt.Errorf("failed to delete trip: %w", err)
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("%w: %s", tripserrors.ErrNotFound, id)
	}
	return nil
}

func (r *mongoTripRepository) AddOccurrence(ctx context.Context, tripID string, occ *model.Occurrence) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(tripID)
	if err != nil {
		return fmt.Errorf("%w: %s", tripserrors.ErrInvalidID, tripID)
	}

	update := bson.M{
		"$push": bson.M{"schedule.dates": occ},
		"$set":  bson.M{"updated_at": time.Now().UTC().Truncate(time.Millisecond)},
	}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objectID}, update)
	if err != nil {
		return fmt.Errorf("failed to add occurrence: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("%w: %s", tripserrors.ErrNotFound, tripID)
	}
	return nil
}

func (r *mongoTripRepository) RemoveOccurrence(ctx context.Context, tripID string, occurrenceID string) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(tripID)
	if err != nil {
		return fmt.Errorf("%w: %s", tripserrors.ErrInvalidID, tripID)
	}

	filter := bson.M{"_id": objectID, "schedule.dates._id": occurrenceID}
	update := bson.M{
		"$pull": bson.M{"schedule.dates": bson.M{"_id": occurrenceID}},
		"$set":  bson.M{"updated_at": time.Now().UTC().Truncate(time.Millisecond)},
	}
	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to remove occurrence: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("%w: %s/%s", tripserrors.ErrOccurrenceNotFound, tripID, occurrenceID)
	}
	return nil
}

func (r *mongoTripRepository) SaveOccurrence(ctx context.Context, tripID string, occ *model.Occurrence, expectedParticipants int) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(tripID)
	if err != nil {
		return fmt.Errorf("%w: %s", tripserrors.ErrInvalidID, tripID)
	}

	filter := bson.M{
		"_id": objectID,
		"schedule.dates": bson.M{"$elemMatch": bson.M{
			"_id":          occ.ID,
			"participants": bson.M{"$size": expectedParticipants},
		}},
	}
	update := bson.M{
		"$set": bson.M{
			"schedule.dates.$.participants":    occ.Participants,
			"schedule.dates.$.slots_remaining": occ.SlotsRemaining,
			"schedule.dates.$.is_available":    occ.IsAvailable,
			"updated_at":                       time.Now().UTC().Truncate(time.Millisecond),
		},
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to save occurrence: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("%w: %s/%s", tripserrors.ErrOccurrenceChanged, tripID, occ.ID)
	}
	return nil
}

func (r *mongoTripRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}
