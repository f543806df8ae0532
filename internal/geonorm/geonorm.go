// Package geonorm normalizes free-text country and state names into the
// canonical forms the address validation providers expect. All lookups are
// case-insensitive, trim whitespace, and degrade to passing the original
// value through rather than failing — a bad country name must never abort
// the validation pipeline.
package geonorm

import (
	"regexp"
	"strings"
)

var twoLetterRe = regexp.MustCompile(`^[A-Za-z]{2}$`)

// countryCodes maps lowercased country names to ISO 3166-1 alpha-2 codes.
var countryCodes = map[string]string{
	"united states":  "US",
	"usa":            "US",
	"us":             "US",
	"germany":        "DE",
	"deutschland":    "DE",
	"united kingdom": "GB",
	"uk":             "GB",
	"great britain":  "GB",
	"canada":         "CA",
	"france":         "FR",
	"australia":      "AU",
	"japan":          "JP",
	"mexico":         "MX",
	"spain":          "ES",
	"italy":          "IT",
	"netherlands":    "NL",
	"belgium":        "BE",
	"switzerland":    "CH",
	"austria":        "AT",
	"sweden":         "SE",
	"norway":         "NO",
	"denmark":        "DK",
	"finland":        "FI",
	"poland":         "PL",
	"portugal":       "PT",
	"greece":         "GR",
	"ireland":        "IE",
	"new zealand":    "NZ",
}

// countryNames is the inverse table, keyed by alpha-2 code.
var countryNames = map[string]string{
	"US": "United States",
	"GB": "United Kingdom",
	"CA": "Canada",
	"DE": "Germany",
	"FR": "France",
	"ES": "Spain",
	"IT": "Italy",
	"NL": "Netherlands",
	"BE": "Belgium",
	"CH": "Switzerland",
	"AT": "Austria",
	"SE": "Sweden",
	"NO": "Norway",
	"DK": "Denmark",
	"FI": "Finland",
	"PL": "Poland",
	"PT": "Portugal",
	"GR": "Greece",
	"IE": "Ireland",
	"AU": "Australia",
	"NZ": "New Zealand",
	"JP": "Japan",
	"MX": "Mexico",
}

// stateAbbreviations maps lowercased US state/territory names to their
// two-letter USPS abbreviations.
var stateAbbreviations = map[string]string{
	"alabama":                  "AL",
	"alaska":                   "AK",
	"arizona":                  "AZ",
	"arkansas":                 "AR",
	"california":               "CA",
	"colorado":                 "CO",
	"connecticut":              "CT",
	"delaware":                 "DE",
	"florida":                  "FL",
	"georgia":                  "GA",
	"hawaii":                   "HI",
	"idaho":                    "ID",
	"illinois":                 "IL",
	"indiana":                  "IN",
	"iowa":                     "IA",
	"kansas":                   "KS",
	"kentucky":                 "KY",
	"louisiana":                "LA",
	"maine":                    "ME",
	"maryland":                 "MD",
	"massachusetts":            "MA",
	"michigan":                 "MI",
	"minnesota":                "MN",
	"mississippi":              "MS",
	"missouri":                 "MO",
	"montana":                  "MT",
	"nebraska":                 "NE",
	"nevada":                   "NV",
	"new hampshire":            "NH",
	"new jersey":               "NJ",
	"new mexico":               "NM",
	"new york":                 "NY",
	"north carolina":           "NC",
	"north dakota":             "ND",
	"ohio":                     "OH",
	"oklahoma":                 "OK",
	"oregon":                   "OR",
	"pennsylvania":             "PA",
	"rhode island":             "RI",
	"south carolina":           "SC",
	"south dakota":             "SD",
	"tennessee":                "TN",
	"texas":                    "TX",
	"utah":                     "UT",
	"vermont":                  "VT",
	"virginia":                 "VA",
	"washington":               "WA",
	"west virginia":            "WV",
	"wisconsin":                "WI",
	"wyoming":                  "WY",
	"district of columbia":     "DC",
	"puerto rico":              "PR",
	"guam":                     "GU",
	"american samoa":           "AS",
	"virgin islands":           "VI",
	"northern mariana islands": "MP",
}

// CountryCode maps a free-text country name to its ISO 3166-1 alpha-2 code.
// An input that already looks like a 2-letter code passes through uppercased.
// Returns "" when the country is not recognized; callers treat that as the
// country field being absent.
func CountryCode(name string) string {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return ""
	}
	if code, ok := countryCodes[strings.ToLower(trimmed)]; ok {
		return code
	}
	if twoLetterRe.MatchString(trimmed) {
		return strings.ToUpper(trimmed)
	}
	return ""
}

// CountryName maps an ISO 3166-1 alpha-2 code back to its display name.
// Returns "" for unknown codes.
func CountryName(code string) string {
	return countryNames[strings.ToUpper(strings.TrimSpace(code))]
}

// StateAbbreviation maps a full US state/territory name to its 2-letter
// abbreviation. Unrecognized names are returned uppercased so a state the
// table does not know still flows through to the provider unchanged.
func StateAbbreviation(state string) string {
	trimmed := strings.TrimSpace(state)
	if len(trimmed) == 2 {
		return strings.ToUpper(trimmed)
	}
	if abbr, ok := stateAbbreviations[strings.ToLower(trimmed)]; ok {
		return abbr
	}
	return strings.ToUpper(trimmed)
}

// IsDomestic reports whether the given free-text country refers to the US.
// An empty country is treated as domestic, matching the admin tool's
// US-default recipient list.
func IsDomestic(country string) bool {
	trimmed := strings.TrimSpace(country)
	if trimmed == "" {
		return true
	}
	return CountryCode(trimmed) == "US"
}
