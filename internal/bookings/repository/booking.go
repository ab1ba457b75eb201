package repository

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"roombook/internal/availability"
	bookingserrors "roombook/internal/bookings/errors"
	"roombook/pkg/config"
	mongodb "roombook/pkg/db/mongo"
	"roombook/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName = "Bookings"
)

type BookingRepository interface {
	availability.Source

	Create(ctx context.Context, booking *model.Booking) error
	FindByID(ctx context.Context, id int64) (*model.Booking, error)
	FindAll(ctx context.Context, limit int, offset int64) ([]*model.Booking, error)
	Count(ctx context.Context) (int64, error)
	FindByBooker(ctx context.Context, mail string) ([]*model.Booking, error)
	FindStartingBetween(ctx context.Context, from, to time.Time) ([]*model.Booking, error)
	UpdateStatus(ctx context.Context, id int64, status string) error
}

type mongoBookingRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
	sequencer  mongodb.Sequencer
}

func NewMongoBookingRepository(cfg *config.Config) BookingRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoBookingRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
		sequencer:  mongodb.NewSequencer(db),
	}
}

func (r *mongoBookingRepository) Create(ctx context.Context, booking *model.Booking) error {
	ctx, cancel := mongodb.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	id, err := r.sequencer.Next(ctx, CollectionName)
	if err != nil {
		return err
	}
	booking.ID = id
	booking.Created = time.Now().UTC().Truncate(time.Millisecond)

	if _, err := r.collection.InsertOne(ctx, booking); err != nil {
		return fmt.Errorf("failed to create booking: %w", err)
	}
	return nil
}

func (r *mongoBookingRepository) FindByID(ctx context.Context, id int64) (*model.Booking, error) {
	ctx, cancel := mongodb.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	if id <= 0 {
		return nil, fmt.Errorf("%w: %d", bookingserrors.ErrInvalidID, id)
	}

	var booking model.Booking
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&booking)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, bookingserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find booking: %w", err)
	}

	return &booking, nil
}

func (r *mongoBookingRepository) FindAll(ctx context.Context, limit int, offset int64) ([]*model.Booking, error) {
	ctx, cancel := mongodb.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "StartTime", Value: -1}}).
		SetLimit(int64(limit)).
		SetSkip(offset)

	return r.find(ctx, bson.M{}, opts)
}

func (r *mongoBookingRepository) Count(ctx context.Context) (int64, error) {
	ctx, cancel := mongodb.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count bookings: %w", err)
	}
	return count, nil
}

// FindByBooker matches the booker's email exactly (ignoring case) or a claims string whose
// last segment is the mailbox, e.g. "i:0#.f|membership|<mail>".
func (r *mongoBookingRepository) FindByBooker(ctx context.Context, mail string) ([]*model.Booking, error) {
	ctx, cancel := mongodb.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	quoted := regexp.QuoteMeta(mail)
	filter := bson.M{"$or": bson.A{
		bson.M{"BookedBy.Email": bson.M{"$regex": "^" + quoted + "$", "$options": "i"}},
		bson.M{"BookedBy.Claims": bson.M{"$regex": `(^|\|)\s*` + quoted + `\s*$`, "$options": "i"}},
	}}
	opts := options.Find().SetSort(bson.D{{Key: "StartTime", Value: -1}})

	return r.find(ctx, filter, opts)
}

func (r *mongoBookingRepository) FindStartingBetween(ctx context.Context, from, to time.Time) ([]*model.Booking, error) {
	ctx, cancel := mongodb.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{"StartTime": bson.M{"$gte": from, "$lte": to}}
	opts := options.Find().SetSort(bson.D{{Key: "StartTime", Value: 1}})

	return r.find(ctx, filter, opts)
}

func (r *mongoBookingRepository) UpdateStatus(ctx context.Context, id int64, status string) error {
	ctx, cancel := mongodb.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"Status.Value": status}},
	)
	if err != nil {
		return fmt.Errorf("failed to update booking status: %w", err)
	}
	if result.MatchedCount == 0 {
		return bookingserrors.ErrNotFound
	}
	return nil
}

// FetchBookings returns raw documents for the availability check. Only the room is
// filtered server-side; times and status are left to the checker.
func (r *mongoBookingRepository) FetchBookings(ctx context.Context, q availability.Query) ([]availability.Record, error) {
	ctx, cancel := mongodb.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find()
	if projection := buildProjection(q.Fields); len(projection) > 0 {
		opts.SetProjection(projection)
	}

	cursor, err := r.collection.Find(ctx, roomFilter(q.RoomID), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch bookings: %w", err)
	}
	defer cursor.Close(ctx)

	var records []availability.Record
	for cursor.Next(ctx) {
		var doc bson.M
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode booking: %w", err)
		}
		records = append(records, toRecord(doc))
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("failed to read bookings: %w", err)
	}

	return records, nil
}

func (r *mongoBookingRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]*model.Booking, error) {
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find bookings: %w", err)
	}
	defer cursor.Close(ctx)

	bookings := []*model.Booking{}
	if err = cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("failed to decode bookings: %w", err)
	}

	return bookings, nil
}

// roomFilter keeps any document that could reference the room: a numeric reference equal
// to the id (int32, int64 and double compare by value) or any textual reference. Strings
// such as "07" or "7.0" are resolved by the checker, not here.
func roomFilter(roomID int64) bson.M {
	var alternatives bson.A
	for _, key := range roomReferenceKeys {
		alternatives = append(alternatives,
			bson.M{key: roomID},
			bson.M{key: bson.M{"$type": "string"}},
		)
	}
	return bson.M{"$or": alternatives}
}

var roomReferenceKeys = []string{
	availability.FieldMeetingRoom + ".Id",
	availability.FieldMeetingRoomID,
	availability.FieldRoomID,
}

func buildProjection(fields []string) bson.M {
	projection := bson.M{}
	for _, f := range fields {
		if f == availability.FieldID {
			continue
		}
		projection[f] = 1
	}
	return projection
}

func toRecord(doc bson.M) availability.Record {
	record := availability.Record(doc)
	if id, ok := doc["_id"]; ok {
		record[availability.FieldID] = id
	}
	return record
}
