package model

import (
	"time"
)

// Occurrence is one dated instance of a trip with its own capacity.
// SlotsRemaining and IsAvailable are derived from Capacity and Participants;
// Recompute must run after every change to Participants.
type Occurrence struct {
	ID             string    `json:"id" bson:"_id" validate:"omitempty"`
	StartDate      time.Time `json:"start_date" bson:"start_date" validate:"required"`
	EndDate        time.Time `json:"end_date" bson:"end_date" validate:"required,gtfield=StartDate"`
	Capacity       int       `json:"capacity" bson:"capacity" validate:"min=0,max=500"`
	SlotsRemaining int       `json:"slots_remaining" bson:"slots_remaining" validate:"min=0"`
	IsAvailable    bool      `json:"is_available" bson:"is_available"`
	Participants   []string  `json:"participants" bson:"participants"`
}

type OccurrenceInput struct {
	StartDate time.Time `json:"start_date" validate:"required"`
	EndDate   time.Time `json:"end_date" validate:"required,gtfield=StartDate"`
	Capacity  int       `json:"capacity,omitempty" validate:"omitempty,min=1,max=500"`
}

type OccurrenceAvailability struct {
	OccurrenceID     string    `json:"occurrence_id"`
	StartDate        time.Time `json:"start_date"`
	EndDate          time.Time `json:"end_date"`
	Capacity         int       `json:"capacity"`
	ParticipantCount int       `json:"participant_count"`
	SlotsRemaining   int       `json:"slots_remaining"`
	IsAvailable      bool      `json:"is_available"`
}

func (o *Occurrence) HasParticipant(identityID string) bool {
	for _, p := range o.Participants {
		if p == identityID {
			return true
		}
	}
	return false
}

// Describe computes availability from the participant list without touching
// the stored counters.
func (o *Occurrence) Describe() OccurrenceAvailability {
	count := len(o.Participants)
	return OccurrenceAvailability{
		OccurrenceID:     o.ID,
		StartDate:        o.StartDate,
		EndDate:          o.EndDate,
		Capacity:         o.Capacity,
		ParticipantCount: count,
		SlotsRemaining:   max(o.Capacity-count, 0),
		IsAvailable:      count < o.Capacity,
	}
}

// Recompute writes the derived counters back onto the occurrence.
func (o *Occurrence) Recompute() {
	a := o.Describe()
	o.SlotsRemaining = a.SlotsRemaining
	o.IsAvailable = a.IsAvailable
	if o.Participants == nil {
		o.Participants = []string{}
	}
}

// CanAccept reports whether identityID may be added: the occurrence must be
// open, have a free slot and not already list the identity.
func (o *Occurrence) CanAccept(identityID string) bool {
	return o.IsAvailable && o.SlotsRemaining > 0 && !o.HasParticipant(identityID)
}

// AddParticipant appends identityID and recomputes. It returns false when the
// occurrence cannot accept it.
func (o *Occurrence) AddParticipant(identityID string) bool {
	if !o.CanAccept(identityID) {
		return false
	}
	o.Participants = append(o.Participants, identityID)
	o.Recompute()
	return true
}

// RemoveParticipant drops identityID and recomputes. It returns false when
// the identity was not listed.
func (o *Occurrence) RemoveParticipant(identityID string) bool {
	for i, p := range o.Participants {
		if p == identityID {
			o.Participants = append(o.Participants[:i:i], o.Participants[i+1:]...)
			o.Recompute()
			return true
		}
	}
	return false
}
