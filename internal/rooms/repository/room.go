package repository

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	roomserrors "roombook/internal/rooms/errors"
	"roombook/pkg/config"
	mongodb "roombook/pkg/db/mongo"
	"roombook/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName = "Rooms"
)

// Filter narrows a room listing. Capacity bands are applied server-side.
type Filter struct {
	Query    string
	Capacity string
	Active   *bool
}

type RoomRepository interface {
	Create(ctx context.Context, room *model.Room) error
	FindByID(ctx context.Context, id int64) (*model.Room, error)
	List(ctx context.Context, filter Filter) ([]*model.Room, error)
	Update(ctx context.Context, id int64, room *model.Room) error
	SetActive(ctx context.Context, id int64, active bool) error
	Delete(ctx context.Context, id int64) error
	ExistsByTitle(ctx context.Context, title string, excludeID int64) (bool, error)
}

type mongoRoomRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
	sequencer  mongodb.Sequencer
}

func NewMongoRoomRepository(cfg *config.Config) RoomRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoRoomRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
		sequencer:  mongodb.NewSequencer(db),
	}
}

func (r *mongoRoomRepository) Create(ctx context.Context, room *model.Room) error {
	ctx, cancel := mongodb.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	id, err := r.sequencer.Next(ctx, CollectionName)
	if err != nil {
		return err
	}
	room.ID = id

	if _, err := r.collection.InsertOne(ctx, room); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return roomserrors.ErrDuplicateTitle
		}
		return fmt.Errorf("failed to create room: %w", err)
	}
	return nil
}

func (r *mongoRoomRepository) FindByID(ctx context.Context, id int64) (*model.Room, error) {
	ctx, cancel := mongodb.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	if id <= 0 {
		return nil, fmt.Errorf("%w: %d", roomserrors.ErrInvalidID, id)
	}

	var room model.Room
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&room)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, roomserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find room: %w", err)
	}

	return &room, nil
}

func (r *mongoRoomRepository) List(ctx context.Context, filter Filter) ([]*model.Room, error) {
	ctx, cancel := mongodb.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "Title", Value: 1}}).
		SetCollation(&options.Collation{Locale: "en", Strength: 2})

	cursor, err := r.collection.Find(ctx, buildFilter(filter), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find rooms: %w", err)
	}
	defer cursor.Close(ctx)

	rooms := []*model.Room{}
	if err = cursor.All(ctx, &rooms); err != nil {
		return nil, fmt.Errorf("failed to decode rooms: %w", err)
	}

	return rooms, nil
}

func buildFilter(filter Filter) bson.M {
	var clauses bson.A

	if filter.Query != "" {
		pattern := bson.M{"$regex": regexp.QuoteMeta(filter.Query), "$options": "i"}
		clauses = append(clauses, bson.M{"$or": bson.A{
			bson.M{"Title": pattern},
			bson.M{"Location": pattern},
			bson.M{"Equipment": pattern},
		}})
	}

	switch filter.Capacity {
	case model.CapacitySmall:
		clauses = append(clauses, bson.M{"$or": bson.A{
			bson.M{"Capacity": bson.M{"$lt": 10}},
			bson.M{"Capacity": bson.M{"$exists": false}},
		}})
	case model.CapacityMedium:
		clauses = append(clauses, bson.M{"Capacity": bson.M{"$gte": 10, "$lt": 20}})
	case model.CapacityLarge:
		clauses = append(clauses, bson.M{"Capacity": bson.M{"$gte": 20}})
	}

	if filter.Active != nil {
		clauses = append(clauses, bson.M{"IsActive": *filter.Active})
	}

	switch len(clauses) {
	case 0:
		return bson.M{}
	case 1:
		return clauses[0].(bson.M)
	default:
		return bson.M{"$and": clauses}
	}
}

func (r *mongoRoomRepository) Update(ctx context.Context, id int64, room *model.Room) error {
	ctx, cancel := mongodb.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	update := bson.M{
		"$set": bson.M{
			"Title":       room.Title,
			"Capacity":    room.Capacity,
			"Location":    room.Location,
			"Equipment":   room.Equipment,
			"Description": room.Description,
			"IsActive":    room.IsActive,
			"ColorTag":    room.ColorTag,
		},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return roomserrors.ErrDuplicateTitle
		}
		return fmt.Errorf("failed to update room: %w", err)
	}
	if result.MatchedCount == 0 {
		return roomserrors.ErrNotFound
	}
	return nil
}

func (r *mongoRoomRepository) SetActive(ctx context.Context, id int64, active bool) error {
	ctx, cancel := mongodb.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"IsActive": active}})
	if err != nil {
		return fmt.Errorf("failed to update room status: %w", err)
	}
	if result.MatchedCount == 0 {
		return roomserrors.ErrNotFound
	}
	return nil
}

func (r *mongoRoomRepository) Delete(ctx context.Context, id int64) error {
	ctx, cancel := mongodb.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete room: %w", err)
	}
	if result.DeletedCount == 0 {
		return roomserrors.ErrNotFound
	}
	return nil
}

func (r *mongoRoomRepository) ExistsByTitle(ctx context.Context, title string, excludeID int64) (bool, error) {
	ctx, cancel := mongodb.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{
		"Title": bson.M{"$regex": "^" + regexp.QuoteMeta(title) + "$", "$options": "i"},
	}
	if excludeID > 0 {
		filter["_id"] = bson.M{"$ne": excludeID}
	}

	count, err := r.collection.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("failed to check room title: %w", err)
	}
	return count > 0, nil
}
