package locale

import (
	"time"

	"github.com/nyaruka/phonenumbers"
)

// InferCountryFromPhone resolves the region of an E.164 number. Numbers that
// cannot be parsed or belong to an unlisted region return nil.
func InferCountryFromPhone(phone string) *Country {
	num, err := phonenumbers.Parse(phone, "")
	if err != nil {
		return nil
	}
	c, ok := LookupCountry(phonenumbers.GetRegionCodeForNumber(num))
	if !ok {
		return nil
	}
	return &c
}

func InferTimezoneFromPhone(phone string) string {
	if c := InferCountryFromPhone(phone); c != nil {
		return c.DefaultTimezone
	}
	return DefaultTimezone
}

// LocationForPhone is InferTimezoneFromPhone loaded as a *time.Location.
// A missing tz database yields UTC.
func LocationForPhone(phone string) *time.Location {
	loc, err := time.LoadLocation(InferTimezoneFromPhone(phone))
	if err != nil {
		return time.UTC
	}
	return loc
}
