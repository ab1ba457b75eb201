//go:build integration

package repository

import (
	"context"
	"os"
	"testing"
	"time"

	"roombook/internal/availability"
	"roombook/pkg/client"
	"roombook/pkg/config"
	"roombook/pkg/logger"
	"roombook/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const integrationDatabase = "roombook_integration"

func newIntegrationConfig(t *testing.T) *config.Config {
	t.Helper()

	uri := os.Getenv(config.EnvMongoURI)
	if uri == "" {
		uri = config.DefaultMongoURI
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		t.Fatalf("failed to connect to MongoDB: %v", err)
	}
	if err := mongoClient.Ping(ctx, nil); err != nil {
		t.Fatalf("failed to ping MongoDB: %v", err)
	}

	db := mongoClient.Database(integrationDatabase)
	if err := db.Drop(ctx); err != nil {
		t.Fatalf("failed to reset database: %v", err)
	}

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := db.Drop(ctx); err != nil {
			t.Logf("warning: failed to drop database: %v", err)
		}
		if err := mongoClient.Disconnect(ctx); err != nil {
			t.Logf("warning: failed to disconnect from MongoDB: %v", err)
		}
	})

	return &config.Config{
		MongoDatabaseName: integrationDatabase,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      5 * time.Second,
		Log:               logger.Discard(),
		Client:            &client.Client{Mongo: mongoClient},
	}
}

func TestFetchBookings_AllRoomShapes(t *testing.T) {
	cfg := newIntegrationConfig(t)
	repo := NewMongoBookingRepository(cfg)
	ctx := context.Background()

	nine := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

	stored := &model.Booking{
		Title:       "Nested",
		MeetingRoom: model.LookupRef{Id: 1, Value: "Orion"},
		StartTime:   nine,
		EndTime:     nine.Add(time.Hour),
		Status:      model.Choice{Value: model.BookingStatusConfirmed},
	}
	if err := repo.Create(ctx, stored); err != nil {
		t.Fatalf("create: %v", err)
	}

	raw := cfg.Client.Mongo.Database(integrationDatabase).Collection(CollectionName)
	docs := []any{
		bson.M{"_id": int64(900), "Title": "Flattened", "MeetingRoom#Id": "2", "StartTime": nine, "EndTime": nine.Add(time.Hour), "Status": "Confirmed"},
		bson.M{"_id": int64(901), "Title": "Plain", "MeetingRoomId": int32(3), "StartTime": nine, "EndTime": nine.Add(time.Hour), "Status": bson.M{"Value": "Confirmed"}},
		bson.M{"_id": int64(902), "Title": "Cancelled", "MeetingRoomId": int64(4), "StartTime": nine, "EndTime": nine.Add(time.Hour), "Status": "Cancelled"},
		bson.M{"_id": int64(903), "Title": "Padded", "MeetingRoomId": "05", "StartTime": nine, "EndTime": nine.Add(time.Hour), "Status": "Confirmed"},
		bson.M{"_id": int64(904), "Title": "Spaced", "MeetingRoom#Id": " 6", "StartTime": nine, "EndTime": nine.Add(time.Hour), "Status": "Confirmed"},
		bson.M{"_id": int64(905), "Title": "Fractional", "MeetingRoom": bson.M{"Id": "7.0"}, "StartTime": nine, "EndTime": nine.Add(time.Hour), "Status": "Confirmed"},
		bson.M{"_id": int64(906), "Title": "Double", "MeetingRoomId": float64(8), "StartTime": nine, "EndTime": nine.Add(time.Hour), "Status": "Confirmed"},
	}
	if _, err := raw.InsertMany(ctx, docs); err != nil {
		t.Fatalf("insert raw: %v", err)
	}

	checker := availability.NewChecker(repo, logger.Discard(), nil)

	tests := []struct {
		name  string
		room  int64
		start time.Time
		want  availability.Verdict
	}{
		{"nested reference conflicts", 1, nine.Add(30 * time.Minute), availability.Conflict},
		{"flattened string reference conflicts", 2, nine, availability.Conflict},
		{"plain reference conflicts", 3, nine.Add(-30 * time.Minute), availability.Conflict},
		{"cancelled never conflicts", 4, nine, availability.Available},
		{"zero padded string reference conflicts", 5, nine, availability.Conflict},
		{"space padded string reference conflicts", 6, nine, availability.Conflict},
		{"fractional string reference conflicts", 7, nine, availability.Conflict},
		{"double reference conflicts", 8, nine, availability.Conflict},
		{"adjacent window is free", 1, nine.Add(time.Hour), availability.Available},
		{"unknown room is free", 99, nine, availability.Available},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := checker.Check(ctx, tt.room, tt.start, tt.start.Add(time.Hour))
			if result.Verdict != tt.want {
				t.Errorf("expected %s, got %s (err %v)", tt.want, result.Verdict, result.Err)
			}
		})
	}
}

func TestFindByBooker_MatchesMailOrClaims(t *testing.T) {
	cfg := newIntegrationConfig(t)
	repo := NewMongoBookingRepository(cfg)
	ctx := context.Background()
	start := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

	for _, person := range []model.Person{
		{Email: "Ada@Corp.Example"},
		{Claims: "i:0#.f|membership|ada@corp.example"},
		{Email: "grace@corp.example"},
		{Claims: "i:0#.f|membership|mada@corp.example"},
		{Email: "ada@corp.example.org"},
	} {
		b := &model.Booking{
			Title:       "Sync",
			MeetingRoom: model.LookupRef{Id: 1, Value: "Orion"},
			StartTime:   start,
			EndTime:     start.Add(time.Hour),
			Status:      model.Choice{Value: model.BookingStatusConfirmed},
			BookedBy:    person,
		}
		if err := repo.Create(ctx, b); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	mine, err := repo.FindByBooker(ctx, "ada@corp.example")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if len(mine) != 2 {
		t.Errorf("expected 2 bookings, got %d", len(mine))
	}
}
