package locale

import (
	"strings"
)

const (
	DefaultTimezone = "Africa/Accra"
)

type Country struct {
	Code            string // ISO 3166-1 alpha-2 country code (e.g., "GH", "GB")
	Name            string
	DefaultTimezone string // IANA timezone identifier (e.g., "Africa/Accra")
}

// Countries covers where most travellers book from. Any other region falls
// back to DefaultTimezone.
var Countries = map[string]Country{
	"GH": {Code: "GH", Name: "Ghana", DefaultTimezone: "Africa/Accra"},
	"NG": {Code: "NG", Name: "Nigeria", DefaultTimezone: "Africa/Lagos"},
	"CI": {Code: "CI", Name: "Côte d'Ivoire", DefaultTimezone: "Africa/Abidjan"},
	"TG": {Code: "TG", Name: "Togo", DefaultTimezone: "Africa/Lome"},
	"GB": {Code: "GB", Name: "United Kingdom", DefaultTimezone: "Europe/London"},
	"DE": {Code: "DE", Name: "Germany", DefaultTimezone: "Europe/Berlin"},
	"NL": {Code: "NL", Name: "Netherlands", DefaultTimezone: "Europe/Amsterdam"},
	"US": {Code: "US", Name: "United States", DefaultTimezone: "America/New_York"},
	"CA": {Code: "CA", Name: "Canada", DefaultTimezone: "America/Toronto"},
}

func LookupCountry(code string) (Country, bool) {
	c, ok := Countries[strings.ToUpper(strings.TrimSpace(code))]
	return c, ok
}
