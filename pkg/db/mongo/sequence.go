package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const CountersCollection = "Counters"

// Sequencer hands out gap-tolerant, monotonically increasing integer ids, one counter
// document per collection. List connectors address rows by integer id, so rooms and
// bookings keep that shape.
type Sequencer interface {
	Next(ctx context.Context, name string) (int64, error)
}

type mongoSequencer struct {
	collection *mongo.Collection
}

func NewSequencer(db *mongo.Database) Sequencer {
	return &mongoSequencer{collection: db.Collection(CountersCollection)}
}

func (s *mongoSequencer) Next(ctx context.Context, name string) (int64, error) {
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var counter struct {
		Seq int64 `bson:"seq"`
	}
	err := s.collection.FindOneAndUpdate(ctx,
		bson.M{"_id": name},
		bson.M{"$inc": bson.M{"seq": int64(1)}},
		opts,
	).Decode(&counter)
	if err != nil {
		return 0, fmt.Errorf("failed to advance sequence %s: %w", name, err)
	}

	return counter.Seq, nil
}
