// Package testutil connects tests to a real MongoDB. Tests that use it are
// skipped unless MONGO_TEST_URI is set. Transactions need a replica set, e.g.
// mongodb://localhost:27017/?replicaSet=rs0.
package testutil

import (
	"context"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	mongoMigration "akoben/internal/migrations/mongo"
	"akoben/pkg/client"
	"akoben/pkg/config"
	"akoben/pkg/logger"
	"akoben/pkg/model"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	EnvMongoTestURI   = "MONGO_TEST_URI"
	ConnectionTimeout = 10 * time.Second
)

type MongoHelper struct {
	Client   *mongo.Client
	Database *mongo.Database
	DBName   string
	// Config points repositories at Database.
	Config *config.Config
}

// NewMongoHelper connects, creates a throwaway database with the production
// collections and indexes, and drops it when the test ends.
func NewMongoHelper(t *testing.T) *MongoHelper {
	t.Helper()

	uri := os.Getenv(EnvMongoTestURI)
	if uri == "" {
		t.Skipf("%s not set, skipping MongoDB test", EnvMongoTestURI)
	}

	ctx, cancel := context.WithTimeout(context.Background(), ConnectionTimeout)
	defer cancel()

	mc, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		t.Fatalf("failed to connect to MongoDB: %v", err)
	}
	if err := mc.Ping(ctx, nil); err != nil {
		t.Fatalf("failed to ping MongoDB: %v", err)
	}

	dbName := "akoben_test_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	log := logger.Discard()
	if err := mongoMigration.RunMigration(ctx, mc, dbName, log); err != nil {
		t.Fatalf("failed to migrate %s: %v", dbName, err)
	}

	h := &MongoHelper{
		Client:   mc,
		Database: mc.Database(dbName),
		DBName:   dbName,
		Config: &config.Config{
			MongoDatabaseName:   dbName,
			TransactionTimeout:  15 * time.Second,
			ReadTimeout:         5 * time.Second,
			WriteTimeout:        5 * time.Second,
			DefaultPhoneRegion:  "GH",
			PaymentCurrency:     "GHS",
			NotificationTimeout: time.Second,
			Log:                 log,
			Client:              &client.Client{Mongo: mc},
		},
	}
	t.Cleanup(func() { h.Close(t) })
	return h
}

func (m *MongoHelper) Close(t *testing.T) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := m.Database.Drop(ctx); err != nil {
		t.Logf("warning: failed to drop %s: %v", m.DBName, err)
	}
	if err := m.Client.Disconnect(ctx); err != nil {
		t.Logf("warning: failed to disconnect from MongoDB: %v", err)
	}
}

func (m *MongoHelper) CountDocuments(t *testing.T, collectionName string, filter any) int64 {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	count, err := m.Database.Collection(collectionName).CountDocuments(ctx, filter)
	if err != nil {
		t.Fatalf("failed to count documents in %s: %v", collectionName, err)
	}
	return count
}

// Trip returns a trip that satisfies the collection schema, with one
// occurrence per id, each seating capacity.
func Trip(capacity int, occurrenceIDs ...string) *model.Trip {
	start := time.Date(2027, time.January, 9, 6, 0, 0, 0, time.UTC)
	trip := &model.Trip{
		Name:          "Mount Afadja Hike",
		Description:   "A day hike up the highest mountain in Ghana with a stop at Wli falls.",
		Type:          "hiking",
		Difficulty:    "moderate",
		ActivityLevel: 2,
		Duration:      model.Duration{Days: 1},
		GroupSize:     model.GroupSize{Min: 1, Max: capacity},
		Location:      model.Location{MainLocation: "Volta Region"},
		Cost:          model.Cost{BasePrice: 200},
		Status:        "open",
	}
	for i, id := range occurrenceIDs {
		day := start.Add(time.Duration(i) * 7 * 24 * time.Hour)
		trip.Schedule.Occurrences = append(trip.Schedule.Occurrences, model.Occurrence{
			ID:             id,
			StartDate:      day,
			EndDate:        day.Add(12 * time.Hour),
			Capacity:       capacity,
			SlotsRemaining: capacity,
			IsAvailable:    capacity > 0,
			Participants:   []string{},
		})
	}
	return trip
}

// ObjectIDHex returns a fresh identifier in the form bookings reference
// identities and trips by.
func ObjectIDHex(n int) string {
	return fmt.Sprintf("%024x", n)
}
