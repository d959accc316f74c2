package validators

import "go.mongodb.org/mongo-driver/bson"

var BookingValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"identity_id",
			"trip_id",
			"occurrence_id",
			"number_of_people",
			"booking_date",
			"payment",
			"status",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},

			"identity_id": bson.M{
				"bsonType":  "string",
				"minLength": 24,
				"maxLength": 24,
			},

			"trip_id": bson.M{
				"bsonType":  "string",
				"minLength": 24,
				"maxLength": 24,
			},

			"occurrence_id": bson.M{
				"bsonType":  "string",
				"minLength": 1,
			},

			"participating": bson.M{
				"bsonType": "bool",
			},

			"number_of_people": bson.M{
				"bsonType": []string{"int", "long"},
				"minimum":  1,
				"maximum":  50,
			},

			"booking_date": bson.M{
				"bsonType": "date",
			},

			"payment": bson.M{
				"bsonType": "bool",
			},

			"authorization_url": bson.M{
				"bsonType": "string",
			},

			"reference": bson.M{
				"bsonType":  "string",
				"minLength": 1,
			},

			"status": bson.M{
				"enum": []string{"pending", "confirmed", "cancelled", "reschedule"},
			},

			"reschedule_date": bson.M{
				"bsonType": "date",
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
