package model

import (
	"time"
)

type Trip struct {
	ID            string       `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	Name          string       `json:"name" bson:"name" validate:"required,min=2,max=100"`
	Description   string       `json:"description" bson:"description" validate:"required,min=20,max=5000"`
	Type          string       `json:"type" bson:"type" validate:"required,oneof=hiking camping mountaineering 'camping & hiking' other"`
	Difficulty    string       `json:"difficulty" bson:"difficulty" validate:"required,oneof=easy moderate hard expert"`
	ActivityLevel int          `json:"activity_level" bson:"activity_level" validate:"required,min=1,max=5"`
	Duration      Duration     `json:"duration" bson:"duration" validate:"required"`
	GroupSize     GroupSize    `json:"group_size" bson:"group_size" validate:"required"`
	Location      Location     `json:"location" bson:"location" validate:"required"`
	Cost          Cost         `json:"cost" bson:"cost" validate:"required"`
	Schedule      TripSchedule `json:"schedule" bson:"schedule"`
	Logistics     Logistics    `json:"logistics" bson:"logistics"`
	Images        []string     `json:"images,omitempty" bson:"images,omitempty" validate:"omitempty,max=20,dive,url,image_url"`
	Status        string       `json:"status" bson:"status" validate:"required,oneof=open closed completed cancelled"`
	CreatedAt     time.Time    `json:"created_at" bson:"created_at" validate:"omitempty"`
	UpdatedAt     time.Time    `json:"updated_at" bson:"updated_at" validate:"omitempty"`
}

type Duration struct {
	Days   int `json:"days" bson:"days" validate:"required,min=1,max=60"`
	Nights int `json:"nights" bson:"nights" validate:"min=0,max=60"`
}

type GroupSize struct {
	Min int `json:"min" bson:"min" validate:"required,min=1"`
	Max int `json:"max" bson:"max" validate:"required,min=1,gtefield=Min"`
}

type Location struct {
	MainLocation     string   `json:"main_location" bson:"main_location" validate:"required,min=2,max=100"`
	PointsOfInterest []string `json:"points_of_interest,omitempty" bson:"points_of_interest,omitempty" validate:"omitempty,dive,min=1,max=100"`
}

type Cost struct {
	BasePrice float64 `json:"base_price" bson:"base_price" validate:"min=0"`
	Discount  float64 `json:"discount" bson:"discount" validate:"min=0,max=100"`
}

// PricePerPerson is the base price with the percentage discount applied.
func (c Cost) PricePerPerson() float64 {
	return c.BasePrice * (1 - c.Discount/100)
}

type TripSchedule struct {
	Occurrences []Occurrence   `json:"dates" bson:"dates" validate:"omitempty,dive"`
	Itinerary   []ItineraryDay `json:"itinerary,omitempty" bson:"itinerary,omitempty" validate:"omitempty,dive"`
}

type ItineraryDay struct {
	Day        int    `json:"day" bson:"day" validate:"required,min=1"`
	Activities string `json:"activities" bson:"activities" validate:"required,min=1,max=500"`
}

type Logistics struct {
	Transportation string `json:"transportation,omitempty" bson:"transportation,omitempty" validate:"omitempty,max=100"`
	GearProvided   bool   `json:"gear_provided" bson:"gear_provided"`
	Accommodation  string `json:"accommodation,omitempty" bson:"accommodation,omitempty" validate:"omitempty,max=100"`
}

// FindOccurrence returns a pointer into the trip's schedule, so changes made
// through it are visible on the trip.
func (t *Trip) FindOccurrence(occurrenceID string) *Occurrence {
	for i := range t.Schedule.Occurrences {
		if t.Schedule.Occurrences[i].ID == occurrenceID {
			return &t.Schedule.Occurrences[i]
		}
	}
	return nil
}

type TripUpdate struct {
	Name          *string         `json:"name,omitempty" validate:"omitempty,min=2,max=100"`
	Description   *string         `json:"description,omitempty" validate:"omitempty,min=20,max=5000"`
	Type          *string         `json:"type,omitempty" validate:"omitempty,oneof=hiking camping mountaineering 'camping & hiking' other"`
	Difficulty    *string         `json:"difficulty,omitempty" validate:"omitempty,oneof=easy moderate hard expert"`
	ActivityLevel *int            `json:"activity_level,omitempty" validate:"omitempty,min=1,max=5"`
	Duration      *Duration       `json:"duration,omitempty" validate:"omitempty"`
	GroupSize     *GroupSize      `json:"group_size,omitempty" validate:"omitempty"`
	Location      *Location       `json:"location,omitempty" validate:"omitempty"`
	Cost          *Cost           `json:"cost,omitempty" validate:"omitempty"`
	Itinerary     *[]ItineraryDay `json:"itinerary,omitempty" validate:"omitempty,dive"`
	Logistics     *Logistics      `json:"logistics,omitempty" validate:"omitempty"`
	Images        *[]string       `json:"images,omitempty" validate:"omitempty,max=20,dive,url,image_url"`
	Status        *string         `json:"status,omitempty" validate:"omitempty,oneof=open closed completed cancelled"`
}

// IsEmpty reports whether the update carries no field at all.
func (u *TripUpdate) IsEmpty() bool {
	return u.Name == nil && u.Description == nil && u.Type == nil && u.Difficulty == nil &&
		u.ActivityLevel == nil && u.Duration == nil && u.GroupSize == nil && u.Location == nil &&
		u.Cost == nil && u.Itinerary == nil && u.Logistics == nil && u.Images == nil && u.Status == nil
}

// RecomputeAvailability refreshes the derived counters of every occurrence.
func (t *Trip) RecomputeAvailability() {
	for i := range t.Schedule.Occurrences {
		t.Schedule.Occurrences[i].Recompute()
	}
}
