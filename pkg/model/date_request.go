package model

import "time"

// DateRequest asks for a trip to run on dates it is not scheduled for.
type DateRequest struct {
	ID        string    `json:"id,omitempty" bson:"_id,omitempty"`
	TripID    string    `json:"trip_id" bson:"trip_id"`
	TripName  string    `json:"trip_name" bson:"trip_name"`
	Name      string    `json:"name" bson:"name"`
	Email     string    `json:"email" bson:"email"`
	Phone     string    `json:"phone" bson:"phone"`
	StartDate time.Time `json:"start_date" bson:"start_date"`
	EndDate   time.Time `json:"end_date" bson:"end_date"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

type DateRequestInput struct {
	Name      string `json:"name" validate:"required,min=2,max=100"`
	Email     string `json:"email" validate:"required,email"`
	Phone     string `json:"phone" validate:"required,min=7,max=20"`
	StartDate *Date  `json:"start_date" validate:"required"`
	EndDate   *Date  `json:"end_date" validate:"required"`
}
