package geonorm

import "testing"

func TestCountryCode(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"United States", "US"},
		{"united states", "US"},
		{"USA", "US"},
		{"usa", "US"},
		{"us", "US"},
		{"  US  ", "US"},
		{"Germany", "DE"},
		{"Deutschland", "DE"},
		{"United Kingdom", "GB"},
		{"uk", "GB"},
		{"Great Britain", "GB"},
		{"New Zealand", "NZ"},
		{"fr", "FR"},     // 2-letter pass-through
		{"xX", "XX"},     // unknown but 2-letter alphabetic
		{"Atlantis", ""}, // unrecognized
		{"", ""},         // empty
		{"   ", ""},      // whitespace only
		{"U1", ""},       // not alphabetic
	}

	for _, tt := range tests {
		if got := CountryCode(tt.input); got != tt.expected {
			t.Errorf("CountryCode(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestCountryName(t *testing.T) {
	tests := []struct {
		code     string
		expected string
	}{
		{"US", "United States"},
		{"us", "United States"},
		{"GB", "United Kingdom"},
		{"DE", "Germany"},
		{"ZZ", ""},
		{"", ""},
	}

	for _, tt := range tests {
		if got := CountryName(tt.code); got != tt.expected {
			t.Errorf("CountryName(%q) = %q, want %q", tt.code, got, tt.expected)
		}
	}
}

func TestStateAbbreviation(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Illinois", "IL"},
		{"illinois", "IL"},
		{"New York", "NY"},
		{"District of Columbia", "DC"},
		{"Puerto Rico", "PR"},
		{"Northern Mariana Islands", "MP"},
		{"ca", "CA"}, // already 2 letters
		{"TX", "TX"},
		{"Narnia", "NARNIA"}, // unknown passes through uppercased
	}

	for _, tt := range tests {
		if got := StateAbbreviation(tt.input); got != tt.expected {
			t.Errorf("StateAbbreviation(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestStateAbbreviationCoversAllStates(t *testing.T) {
	// 50 states + DC + 5 territories
	if len(stateAbbreviations) != 56 {
		t.Errorf("expected 56 state/territory entries, got %d", len(stateAbbreviations))
	}
}

func TestIsDomestic(t *testing.T) {
	for _, in := range []string{"", "US", "usa", "United States"} {
		if !IsDomestic(in) {
			t.Errorf("IsDomestic(%q) = false, want true", in)
		}
	}
	for _, in := range []string{"Germany", "GB", "Canada"} {
		if IsDomestic(in) {
			t.Errorf("IsDomestic(%q) = true, want false", in)
		}
	}
}
