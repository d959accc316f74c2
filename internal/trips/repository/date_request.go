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

const DateRequestCollectionName = "DateRequests"

type DateRequestRepository interface {
	// Create stores req. A request with the same email, trip and dates
	// fails with ErrDuplicateDateRequest.
	Create(ctx context.Context, req *model.DateRequest) error
	FindByID(ctx context.Context, id string) (*model.DateRequest, error)
	// FindAll lists requests newest first, narrowed to tripID when set.
	FindAll(ctx context.Context, tripID string, limit int, offset int64) ([]*model.DateRequest, error)
	Count(ctx context.Context, tripID string) (int64, error)
}

type mongoDateRequestRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoDateRequestRepository(cfg *config.Config) DateRequestRepository {
	return &mongoDateRequestRepository{
		cfg:        cfg,
		collection: cfg.Client.Mongo.Database(cfg.MongoDatabaseName).Collection(DateRequestCollectionName),
	}
}

func (r *mongoDateRequestRepository) Create(ctx context.Context, req *model.DateRequest) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	now := time.Now().UTC().Truncate(time.Millisecond)
	req.CreatedAt = now
	req.UpdatedAt = now
	result, err := r.collection.InsertOne(ctx, req)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: %s", tripserrors.ErrDuplicateDateRequest, req.Email)
		}
		return fmt.Errorf("failed to create date request: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		req.ID = oid.Hex()
	}
	return nil
}

func (r *mongoDateRequestRepository) FindByID(ctx context.Context, id string) (*model.DateRequest, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", tripserrors.ErrInvalidID, id)
	}

	var req model.DateRequest
	if err := r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&req); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: %s", tripserrors.ErrDateRequestNotFound, id)
		}
		return nil, fmt.Errorf("failed to find date request: %w", err)
	}
	return &req, nil
}

func (r *mongoDateRequestRepository) FindAll(ctx context.Context, tripID string, limit int, offset int64) ([]*model.DateRequest, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetLimit(int64(limit)).
		SetSkip(offset).
		SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := r.collection.Find(ctx, byTrip(tripID), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query date requests: %w", err)
	}
	defer cursor.Close(ctx)

	var requests []*model.DateRequest
	if err = cursor.All(ctx, &requests); err != nil {
		return nil, fmt.Errorf("failed to decode date requests: %w", err)
	}
	return requests, nil
}

func (r *mongoDateRequestRepository) Count(ctx context.Context, tripID string) (int64, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, byTrip(tripID))
	if err != nil {
		return 0, fmt.Errorf("failed to count date requests: %w", err)
	}
	return count, nil
}

func byTrip(tripID string) bson.M {
	if tripID == "" {
		return bson.M{}
	}
	return bson.M{"trip_id": tripID}
}
