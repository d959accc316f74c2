package model

import (
	"encoding/json"
	"testing"
	"time"
)

func TestOccurrence_Describe(t *testing.T) {
	tests := []struct {
		name          string
		capacity      int
		participants  []string
		wantRemaining int
		wantAvailable bool
	}{
		{"empty", 4, nil, 4, true},
		{"partially booked", 4, []string{"a", "b"}, 2, true},
		{"exactly full", 2, []string{"a", "b"}, 0, false},
		{"over capacity clamps to zero", 1, []string{"a", "b", "c"}, 0, false},
		{"zero capacity", 0, nil, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			occ := &Occurrence{ID: "o1", Capacity: tt.capacity, Participants: tt.participants}
			got := occ.Describe()

			if got.SlotsRemaining != tt.wantRemaining {
				t.Errorf("SlotsRemaining = %d, want %d", got.SlotsRemaining, tt.wantRemaining)
			}
			if got.IsAvailable != tt.wantAvailable {
				t.Errorf("IsAvailable = %v, want %v", got.IsAvailable, tt.wantAvailable)
			}
			if got.ParticipantCount != len(tt.participants) {
				t.Errorf("ParticipantCount = %d, want %d", got.ParticipantCount, len(tt.participants))
			}
			if occ.SlotsRemaining != 0 || occ.IsAvailable {
				t.Error("Describe must not modify the stored counters")
			}
		})
	}
}

func TestOccurrence_AddParticipant(t *testing.T) {
	occ := &Occurrence{ID: "o1", Capacity: 2}
	occ.Recompute()

	if !occ.AddParticipant("u1") {
		t.Fatal("expected first participant to be accepted")
	}
	if occ.AddParticipant("u1") {
		t.Error("duplicate participant must be rejected")
	}
	if !occ.AddParticipant("u2") {
		t.Fatal("expected second participant to be accepted")
	}
	if occ.SlotsRemaining != 0 || occ.IsAvailable {
		t.Errorf("full occurrence reported slots=%d available=%v", occ.SlotsRemaining, occ.IsAvailable)
	}
	if occ.AddParticipant("u3") {
		t.Error("full occurrence must reject new participants")
	}
	if len(occ.Participants) != 2 {
		t.Errorf("expected 2 participants, got %d", len(occ.Participants))
	}
}

func TestOccurrence_AddParticipant_ClosedOccurrence(t *testing.T) {
	occ := &Occurrence{ID: "o1", Capacity: 5, SlotsRemaining: 5, IsAvailable: false}

	if occ.AddParticipant("u1") {
		t.Error("closed occurrence must reject participants even with free slots")
	}
}

func TestOccurrence_RemoveParticipant(t *testing.T) {
	occ := &Occurrence{ID: "o1", Capacity: 2, Participants: []string{"u1", "u2"}}
	occ.Recompute()

	if occ.RemoveParticipant("missing") {
		t.Error("removing an unknown participant must report false")
	}
	if !occ.RemoveParticipant("u1") {
		t.Fatal("expected u1 to be removed")
	}
	if occ.HasParticipant("u1") {
		t.Error("u1 still listed after removal")
	}
	if occ.SlotsRemaining != 1 || !occ.IsAvailable {
		t.Errorf("after release got slots=%d available=%v", occ.SlotsRemaining, occ.IsAvailable)
	}
}

func TestTrip_FindOccurrence(t *testing.T) {
	trip := &Trip{Schedule: TripSchedule{Occurrences: []Occurrence{{ID: "a", Capacity: 3}, {ID: "b", Capacity: 1}}}}
	trip.RecomputeAvailability()

	occ := trip.FindOccurrence("b")
	if occ == nil {
		t.Fatal("expected occurrence b")
	}
	if !occ.AddParticipant("u1") {
		t.Fatal("expected u1 to be accepted")
	}
	if occ.Capacity != 1 {
		t.Fatalf("wrong occurrence returned")
	}

	trip.RecomputeAvailability()
	if trip.Schedule.Occurrences[1].IsAvailable {
		t.Error("change through pointer should be visible on the trip")
	}
	if trip.FindOccurrence("zzz") != nil {
		t.Error("unknown occurrence must return nil")
	}
}

func TestBookingStatus_Transitions(t *testing.T) {
	tests := []struct {
		from BookingStatus
		to   BookingStatus
		want bool
	}{
		{BookingPending, BookingPending, true},
		{BookingPending, BookingConfirmed, true},
		{BookingPending, BookingCancelled, true},
		{BookingPending, BookingReschedule, true},
		{BookingConfirmed, BookingPending, false},
		{BookingConfirmed, BookingCancelled, true},
		{BookingConfirmed, BookingReschedule, true},
		{BookingReschedule, BookingConfirmed, true},
		{BookingReschedule, BookingPending, false},
		{BookingCancelled, BookingConfirmed, false},
		{BookingCancelled, BookingPending, false},
		{BookingCancelled, BookingCancelled, true},
		{BookingStatus("approved"), BookingConfirmed, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"_to_"+string(tt.to), func(t *testing.T) {
			if got := tt.from.CanTransitionTo(tt.to); got != tt.want {
				t.Errorf("CanTransitionTo = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBookingStatus_ValidAndActive(t *testing.T) {
	if BookingStatus("approved").Valid() {
		t.Error("approved is not a booking status")
	}
	if !BookingReschedule.Valid() {
		t.Error("reschedule must be valid")
	}
	if BookingCancelled.Active() {
		t.Error("cancelled bookings are not active")
	}
	if !BookingConfirmed.Active() {
		t.Error("confirmed bookings are active")
	}
}

func TestCost_PricePerPerson(t *testing.T) {
	c := Cost{BasePrice: 200, Discount: 25}
	if got := c.PricePerPerson(); got != 150 {
		t.Errorf("PricePerPerson = %v, want 150", got)
	}
}

func TestDate_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"date only", `"1990-04-12"`, "1990-04-12", false},
		{"rfc3339", `"1990-04-12T10:00:00Z"`, "1990-04-12", false},
		{"garbage", `"12/04/1990"`, "", true},
		{"number", `19900412`, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d Date
			err := json.Unmarshal([]byte(tt.input), &d)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && d.Format(time.DateOnly) != tt.want {
				t.Errorf("got %s, want %s", d.Format(time.DateOnly), tt.want)
			}
		})
	}
}

func TestAgeAt(t *testing.T) {
	dob := time.Date(2000, time.June, 15, 0, 0, 0, 0, time.UTC)

	if got := AgeAt(dob, time.Date(2024, time.June, 14, 0, 0, 0, 0, time.UTC)); got != 23 {
		t.Errorf("day before birthday: got %d, want 23", got)
	}
	if got := AgeAt(dob, time.Date(2024, time.June, 15, 0, 0, 0, 0, time.UTC)); got != 24 {
		t.Errorf("on birthday: got %d, want 24", got)
	}
	if got := AgeAt(dob, time.Date(1999, time.January, 1, 0, 0, 0, 0, time.UTC)); got != 0 {
		t.Errorf("future dob: got %d, want 0", got)
	}
}
