package repository

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	identitieserrors "akoben/internal/identities/errors"
	"akoben/pkg/config"
	mongotx "akoben/pkg/db/mongo"
	"akoben/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName = "Identities"
)

var reRegexSpecial = regexp.MustCompile(`[.*+?^$()[\]{}|\\]`)

type IdentityRepository interface {
	FindByID(ctx context.Context, id string) (*model.Identity, error)
	FindByEmailAndPhone(ctx context.Context, email string, phone string) (*model.Identity, error)
	FindByEmailAndName(ctx context.Context, email string, name string) (*model.Identity, error)
	// Insert creates identity unless one with the same email and phone exists,
	// in which case the stored document is returned.
	Insert(ctx context.Context, identity *model.Identity) (*model.Identity, error)
	AppendBooking(ctx context.Context, identityID string, bookingID string) error
}

type mongoIdentityRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoIdentityRepository(cfg *config.Config) IdentityRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoIdentityRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
	}
}

func (r *mongoIdentityRepository) FindByID(ctx context.Context, id string) (*model.Identity, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", identitieserrors.ErrInvalidID, id)
	}
	return r.findOne(ctx, bson.M{"_id": objectID}, id)
}

func (r *mongoIdentityRepository) FindByEmailAndPhone(ctx context.Context, email string, phone string) (*model.Identity, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	return r.findOne(ctx, bson.M{"email": email, "phone": phone}, email)
}

// FindByEmailAndName matches the name case-insensitively and in full.
func (r *mongoIdentityRepository) FindByEmailAndName(ctx context.Context, email string, name string) (*model.Identity, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{
		"email": email,
		"name":  bson.M{"$regex": "^" + escapeRegexSpecialChars(name) + "$", "$options": "i"},
	}
	return r.findOne(ctx, filter, email)
}

func (r *mongoIdentityRepository) Insert(ctx context.Context, identity *model.Identity) (*model.Identity, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	now := time.Now().UTC().Truncate(time.Millisecond)
	identity.CreatedAt = now
	identity.UpdatedAt = now
	if identity.Bookings == nil {
		identity.Bookings = []string{}
	}

	filter := bson.M{"email": identity.Email, "phone": identity.Phone}
	update := bson.M{"$setOnInsert": identity}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var stored model.Identity
	err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&stored)
	if err != nil {
		// two upserts raced on the unique (email, phone) index; the winner's
		// document is the one to use
		if mongo.IsDuplicateKeyError(err) {
			return r.findOne(ctx, filter, identity.Email)
		}
		return nil, fmt.Errorf("failed to insert identity: %w", err)
	}
	return &stored, nil
}

func (r *mongoIdentityRepository) AppendBooking(ctx context.Context, identityID string, bookingID string) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(identityID)
	if err != nil {
		return fmt.Errorf("%w: %s", identitieserrors.ErrInvalidID, identityID)
	}

	update := bson.M{
		"$addToSet": bson.M{"bookings": bookingID},
		"$set":      bson.M{"updated_at": time.Now().UTC().Truncate(time.Millisecond)},
	}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objectID}, update)
	if err != nil {
		return fmt.Errorf("failed to append booking to identity: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("%w: %s", identitieserrors.ErrNotFound, identityID)
	}
	return nil
}

func (r *mongoIdentityRepository) findOne(ctx context.Context, filter bson.M, key string) (*model.Identity, error) {
	var identity model.Identity
	err := r.collection.FindOne(ctx, filter).Decode(&identity)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: %s", identitieserrors.ErrNotFound, key)
		}
		return nil, fmt.Errorf("failed to find identity: %w", err)
	}
	return &identity, nil
}

// escapeRegexSpecialChars escapes special regex characters to prevent ReDoS attacks
func escapeRegexSpecialChars(s string) string {
	return reRegexSpecial.ReplaceAllStringFunc(s, func(match string) string {
		return "\\" + match
	})
}
