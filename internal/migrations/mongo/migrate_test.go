package mongo

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson"
)

func TestCollections(t *testing.T) {
	specs := Collections()

	names := map[string]CollectionSpec{}
	for _, s := range specs {
		names[s.Name] = s
		if s.Validator == nil {
			t.Errorf("%s has no validator", s.Name)
		}
	}
	for _, want := range []string{"Rooms", "Bookings", "Counters"} {
		if _, ok := names[want]; !ok {
			t.Errorf("missing collection %s", want)
		}
	}
}

func TestBookingsIndexes_CoverAvailabilityLookup(t *testing.T) {
	first, ok := BookingsIndexes[0].Keys.(bson.D)
	if !ok {
		t.Fatalf("unexpected key type %T", BookingsIndexes[0].Keys)
	}
	if len(first) != 2 || first[0].Key != "MeetingRoom.Id" || first[1].Key != "StartTime" {
		t.Errorf("unexpected availability index %v", first)
	}
}

func TestRoomsTitleIndex_IsCaseInsensitiveUnique(t *testing.T) {
	opts := RoomsIndexes[0].Options
	if opts == nil || opts.Unique == nil || !*opts.Unique {
		t.Fatal("title index must be unique")
	}
	if opts.Collation == nil || opts.Collation.Strength != 2 {
		t.Errorf("expected strength 2 collation, got %+v", opts.Collation)
	}
}
