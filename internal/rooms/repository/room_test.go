package repository

import (
	"reflect"
	"testing"

	"go.mongodb.org/mongo-driver/bson"
)

func TestBuildFilter(t *testing.T) {
	active := true

	tests := []struct {
		name   string
		filter Filter
		want   bson.M
	}{
		{
			name:   "no filter",
			filter: Filter{},
			want:   bson.M{},
		},
		{
			name:   "active only",
			filter: Filter{Active: &active},
			want:   bson.M{"IsActive": true},
		},
		{
			name:   "large band",
			filter: Filter{Capacity: "large"},
			want:   bson.M{"Capacity": bson.M{"$gte": 20}},
		},
		{
			name:   "medium band",
			filter: Filter{Capacity: "medium"},
			want:   bson.M{"Capacity": bson.M{"$gte": 10, "$lt": 20}},
		},
		{
			name:   "small band includes rooms without capacity",
			filter: Filter{Capacity: "small"},
			want: bson.M{"$or": bson.A{
				bson.M{"Capacity": bson.M{"$lt": 10}},
				bson.M{"Capacity": bson.M{"$exists": false}},
			}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := buildFilter(tt.filter)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("buildFilter() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBuildFilter_QueryIsEscaped(t *testing.T) {
	got := buildFilter(Filter{Query: "a+b", Capacity: "large"})

	clauses, ok := got["$and"].(bson.A)
	if !ok || len(clauses) != 2 {
		t.Fatalf("expected two $and clauses, got %v", got)
	}

	or := clauses[0].(bson.M)["$or"].(bson.A)
	if len(or) != 3 {
		t.Fatalf("expected title, location and equipment alternatives, got %d", len(or))
	}
	pattern := or[0].(bson.M)["Title"].(bson.M)
	if pattern["$regex"] != `a\+b` || pattern["$options"] != "i" {
		t.Errorf("unexpected pattern %v", pattern)
	}
}
