package model

import (
	"time"
)

type BookingStatus string

const (
	BookingPending    BookingStatus = "pending"
	BookingConfirmed  BookingStatus = "confirmed"
	BookingCancelled  BookingStatus = "cancelled"
	BookingReschedule BookingStatus = "reschedule"
)

var bookingTransitions = map[BookingStatus][]BookingStatus{
	BookingPending:    {BookingPending, BookingConfirmed, BookingCancelled, BookingReschedule},
	BookingConfirmed:  {BookingConfirmed, BookingCancelled, BookingReschedule},
	BookingReschedule: {BookingConfirmed, BookingCancelled, BookingReschedule},
	BookingCancelled:  {BookingCancelled},
}

func (s BookingStatus) Valid() bool {
	_, ok := bookingTransitions[s]
	return ok
}

// Active bookings hold a seat on their occurrence.
func (s BookingStatus) Active() bool {
	return s != BookingCancelled
}

func (s BookingStatus) CanTransitionTo(next BookingStatus) bool {
	for _, allowed := range bookingTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

type Booking struct {
	ID               string        `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	IdentityID       string        `json:"identity_id" bson:"identity_id" validate:"required,mongodb"`
	TripID           string        `json:"trip_id" bson:"trip_id" validate:"required,mongodb"`
	OccurrenceID     string        `json:"occurrence_id" bson:"occurrence_id" validate:"required"`
	Participating    bool          `json:"participating" bson:"participating"`
	NumberOfPeople   int           `json:"number_of_people" bson:"number_of_people" validate:"required,min=1,max=50"`
	BookingDate      time.Time     `json:"booking_date" bson:"booking_date"`
	Payment          bool          `json:"payment" bson:"payment"`
	AuthorizationURL string        `json:"authorization_url,omitempty" bson:"authorization_url,omitempty" validate:"omitempty,url"`
	Reference        string        `json:"reference,omitempty" bson:"reference,omitempty"`
	Status           BookingStatus `json:"status" bson:"status" validate:"required,oneof=pending confirmed cancelled reschedule"`
	RescheduleDate   *time.Time    `json:"reschedule_date,omitempty" bson:"reschedule_date,omitempty"`
	CreatedAt        time.Time     `json:"created_at" bson:"created_at"`
	UpdatedAt        time.Time     `json:"updated_at" bson:"updated_at"`
}

type BookingUpdate struct {
	OccurrenceID     *string        `json:"occurrence_id,omitempty" validate:"omitempty,min=1"`
	Participating    *bool          `json:"participating,omitempty"`
	NumberOfPeople   *int           `json:"number_of_people,omitempty" validate:"omitempty,min=1,max=50"`
	Payment          *bool          `json:"payment,omitempty"`
	AuthorizationURL *string        `json:"authorization_url,omitempty" validate:"omitempty,url"`
	Reference        *string        `json:"reference,omitempty" validate:"omitempty,min=1,max=100"`
	Status           *BookingStatus `json:"status,omitempty" validate:"omitempty,oneof=pending confirmed cancelled reschedule"`
	RescheduleDate   *time.Time     `json:"reschedule_date,omitempty"`
}

func (u *BookingUpdate) IsEmpty() bool {
	return u.OccurrenceID == nil && u.Participating == nil && u.NumberOfPeople == nil &&
		u.Payment == nil && u.AuthorizationURL == nil && u.Reference == nil &&
		u.Status == nil && u.RescheduleDate == nil
}

// ReservationRequest is the public booking payload: the occurrence being
// booked plus the raw contact data of the person booking it.
type ReservationRequest struct {
	TripID         string `json:"trip_id" validate:"required,mongodb"`
	OccurrenceID   string `json:"occurrence_id" validate:"required"`
	NumberOfPeople int    `json:"number_of_people" validate:"required,min=1,max=50"`
	Participating  *bool  `json:"participating,omitempty"`
	IdentityInput
}

type ReservationResult struct {
	Booking       *Booking
	AlreadyBooked bool
}

type PaymentInitialization struct {
	BookingID        string  `json:"booking_id"`
	Reference        string  `json:"reference"`
	AuthorizationURL string  `json:"authorization_url"`
	AccessCode       string  `json:"access_code,omitempty"`
	Amount           int64   `json:"amount"`
	Currency         string  `json:"currency"`
	DisplayAmount    float64 `json:"display_amount"`
}
