package model

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

type Identity struct {
	ID            string     `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	Name          string     `json:"name" bson:"name" validate:"required,min=2,max=100"`
	Email         string     `json:"email" bson:"email" validate:"required,email"`
	Phone         string     `json:"phone" bson:"phone" validate:"required,e164"`
	StreetAddress string     `json:"street_address,omitempty" bson:"street_address,omitempty"`
	Address2      string     `json:"address2,omitempty" bson:"address2,omitempty"`
	City          string     `json:"city,omitempty" bson:"city,omitempty"`
	ZipCode       string     `json:"zip_code,omitempty" bson:"zip_code,omitempty"`
	IDCard        string     `json:"id_card,omitempty" bson:"id_card,omitempty"`
	Gender        string     `json:"gender,omitempty" bson:"gender,omitempty"`
	DateOfBirth   *time.Time `json:"dob,omitempty" bson:"dob,omitempty"`
	Age           int        `json:"age,omitempty" bson:"age,omitempty"`
	IsMember      bool       `json:"is_member" bson:"is_member"`
	Bookings      []string   `json:"bookings" bson:"bookings"`
	CreatedAt     time.Time  `json:"created_at" bson:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at" bson:"updated_at"`
}

type IdentityInput struct {
	FullName      string `json:"full_name" validate:"required,min=2,max=100"`
	Email         string `json:"email" validate:"required,email"`
	Phone         string `json:"phone" validate:"required,min=7,max=20"`
	DateOfBirth   *Date  `json:"dob,omitempty"`
	Gender        string `json:"gender,omitempty" validate:"omitempty,oneof=male female other"`
	StreetAddress string `json:"street_address,omitempty" validate:"omitempty,max=200"`
	Address2      string `json:"address2,omitempty" validate:"omitempty,max=200"`
	City          string `json:"city,omitempty" validate:"omitempty,max=100"`
	ZipCode       string `json:"zip_code,omitempty" validate:"omitempty,max=20"`
	IDCard        string `json:"id_card,omitempty" validate:"omitempty,max=50"`
}

// Date accepts either a calendar date ("2006-01-02") or a full RFC 3339
// timestamp.
type Date struct {
	time.Time
}

func (d *Date) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("date must be a string: %w", err)
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	for _, layout := range []string{time.DateOnly, time.RFC3339} {
		if t, err := time.Parse(layout, raw); err == nil {
			d.Time = t.UTC()
			return nil
		}
	}
	return fmt.Errorf("invalid date %q, expected YYYY-MM-DD", raw)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Format(time.DateOnly))
}

// AgeAt returns the number of whole years between dob and now.
func AgeAt(dob, now time.Time) int {
	age := now.Year() - dob.Year()
	if now.Month() < dob.Month() || (now.Month() == dob.Month() && now.Day() < dob.Day()) {
		age--
	}
	if age < 0 {
		return 0
	}
	return age
}
