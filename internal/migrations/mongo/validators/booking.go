package validators

import "go.mongodb.org/mongo-driver/bson"

// BookingValidator leaves MeetingRoom optional so rows imported in the flattened
// connector shape (MeetingRoom#Id, MeetingRoomId) are still accepted.
var BookingValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"Title",
			"StartTime",
			"EndTime",
			"Status",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "long",
				"minimum":  1,
			},

			"Title": bson.M{
				"bsonType":  "string",
				"minLength": 1,
				"maxLength": 255,
			},

			"MeetingRoom": bson.M{
				"bsonType": "object",
				"required": []string{"Id"},
				"properties": bson.M{
					"Id":    bson.M{"bsonType": []string{"long", "int"}},
					"Value": bson.M{"bsonType": "string"},
				},
			},

			"StartTime": bson.M{
				"bsonType": "date",
			},

			"EndTime": bson.M{
				"bsonType": "date",
			},

			"Status": bson.M{
				"bsonType": "object",
				"required": []string{"Value"},
				"properties": bson.M{
					"Value": bson.M{
						"bsonType": "string",
						"enum":     []string{"Confirmed", "Cancelled"},
					},
				},
			},

			"BookedBy": bson.M{
				"bsonType": "object",
				"properties": bson.M{
					"Claims":      bson.M{"bsonType": "string"},
					"DisplayName": bson.M{"bsonType": "string"},
					"Email":       bson.M{"bsonType": "string"},
				},
			},

			"Description": bson.M{
				"bsonType":  "string",
				"maxLength": 2000,
			},

			"Created": bson.M{
				"bsonType": "date",
			},
		},
	},
}
