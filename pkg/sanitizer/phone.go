package sanitizer

import (
	"strings"

	"github.com/nyaruka/phonenumbers"
)

var fallbackRegions = []string{
	"US",
	"GB",
}

// NormalizePhone parses phone in defaultRegion first, then in the fallback
// regions, and returns the E.164 form of the first valid number. Unparseable
// or invalid input yields "".
func NormalizePhone(phone string, defaultRegion string) string {
	phone = strings.TrimSpace(phone)

	if phone == "" {
		return ""
	}

	regions := append([]string{strings.ToUpper(defaultRegion)}, fallbackRegions...)
	for _, region := range regions {
		parsedNumber, err := phonenumbers.Parse(phone, region)
		if err != nil || !phonenumbers.IsValidNumber(parsedNumber) {
			continue
		}
		return phonenumbers.Format(parsedNumber, phonenumbers.E164)
	}
	return ""
}

// MSISDN returns the number without the leading '+', the form SMS gateways
// expect (0241234567 in GH becomes 233241234567).
func MSISDN(phone string, defaultRegion string) string {
	return strings.TrimPrefix(NormalizePhone(phone, defaultRegion), "+")
}
