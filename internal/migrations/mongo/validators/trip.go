package validators

import "go.mongodb.org/mongo-driver/bson"

var occurrenceSchema = bson.M{
	"bsonType": "object",
	"required": []string{"_id", "start_date", "end_date", "capacity", "slots_remaining", "is_available"},
	"properties": bson.M{
		"_id":             bson.M{"bsonType": "string", "minLength": 1},
		"start_date":      bson.M{"bsonType": "date"},
		"end_date":        bson.M{"bsonType": "date"},
		"capacity":        bson.M{"bsonType": []string{"int", "long"}, "minimum": 0, "maximum": 500},
		"slots_remaining": bson.M{"bsonType": []string{"int", "long"}, "minimum": 0},
		"is_available":    bson.M{"bsonType": "bool"},
		"participants": bson.M{
			"bsonType": []string{"array", "null"},
			"items":    bson.M{"bsonType": "string"},
		},
	},
}

var TripValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"name",
			"description",
			"type",
			"difficulty",
			"activity_level",
			"duration",
			"group_size",
			"location",
			"cost",
			"status",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},

			"name": bson.M{
				"bsonType":  "string",
				"minLength": 2,
				"maxLength": 100,
			},

			"description": bson.M{
				"bsonType":  "string",
				"minLength": 20,
				"maxLength": 5000,
			},

			"type": bson.M{
				"enum": []string{"hiking", "camping", "mountaineering", "camping & hiking", "other"},
			},

			"difficulty": bson.M{
				"enum": []string{"easy", "moderate", "hard", "expert"},
			},

			"activity_level": bson.M{
				"bsonType": []string{"int", "long"},
				"minimum":  1,
				"maximum":  5,
			},

			"duration": bson.M{
				"bsonType": "object",
				"required": []string{"days"},
				"properties": bson.M{
					"days":   bson.M{"bsonType": []string{"int", "long"}, "minimum": 1, "maximum": 60},
					"nights": bson.M{"bsonType": []string{"int", "long"}, "minimum": 0, "maximum": 60},
				},
			},

			"group_size": bson.M{
				"bsonType": "object",
				"required": []string{"min", "max"},
				"properties": bson.M{
					"min": bson.M{"bsonType": []string{"int", "long"}, "minimum": 1},
					"max": bson.M{"bsonType": []string{"int", "long"}, "minimum": 1},
				},
			},

			"location": bson.M{
				"bsonType": "object",
				"required": []string{"main_location"},
				"properties": bson.M{
					"main_location": bson.M{"bsonType": "string", "minLength": 2, "maxLength": 100},
				},
			},

			"cost": bson.M{
				"bsonType": "object",
				"required": []string{"base_price"},
				"properties": bson.M{
					"base_price": bson.M{"bsonType": []string{"double", "int", "long", "decimal"}, "minimum": 0},
					"discount":   bson.M{"bsonType": []string{"double", "int", "long", "decimal"}, "minimum": 0, "maximum": 100},
				},
			},

			"schedule": bson.M{
				"bsonType": "object",
				"properties": bson.M{
					"dates": bson.M{
						"bsonType": []string{"array", "null"},
						"items":    occurrenceSchema,
					},
					"itinerary": bson.M{
						"bsonType": []string{"array", "null"},
					},
				},
			},

			"images": bson.M{
				"bsonType": "array",
				"maxItems": 20,
				"items":    bson.M{"bsonType": "string"},
			},

			"status": bson.M{
				"enum": []string{"open", "closed", "completed", "cancelled"},
			},

			"created_at": bson.M{
				"bsonType": "date",
			},

			"updated_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
