package validators

import "go.mongodb.org/mongo-driver/bson"

var RoomValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"Title",
			"IsActive",
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

			"Capacity": bson.M{
				"bsonType": []string{"int", "long"},
				"minimum":  0,
				"maximum":  1000,
			},

			"Location": bson.M{
				"bsonType":  "string",
				"maxLength": 255,
			},

			"Equipment": bson.M{
				"bsonType": "array",
				"maxItems": 50,
				"items": bson.M{
					"bsonType":  "string",
					"maxLength": 100,
				},
			},

			"Description": bson.M{
				"bsonType":  "string",
				"maxLength": 2000,
			},

			"IsActive": bson.M{
				"bsonType": "bool",
			},

			"ColorTag": bson.M{
				"bsonType": "string",
				"pattern":  "^#([0-9a-fA-F]{3}|[0-9a-fA-F]{6})$",
			},
		},
	},
}

var CounterValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{"_id", "seq"},
		"properties": bson.M{
			"_id": bson.M{"bsonType": "string"},
			"seq": bson.M{"bsonType": "long", "minimum": 0},
		},
	},
}
