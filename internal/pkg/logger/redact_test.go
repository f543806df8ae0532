package logger

import "testing"

func TestRedactEmail(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"john.doe@example.com", "jo***@example.com"},
		{"ab@example.com", "***@example.com"},
		{"not-an-email", "***@***"},
	}
	for _, tt := range tests {
		if got := RedactEmail(tt.input); got != tt.expected {
			t.Errorf("RedactEmail(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestRedactCode(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"KEL-A1B2-C3D4", "KEL-A1B2-****"},
		{"kel-a1b2-c3d4", "kel-a1b2-****"},
		{"queued code KEL-FF00-1234 for recipient", "queued code KEL-FF00-**** for recipient"},
		{"no code here", "no code here"},
	}
	for _, tt := range tests {
		if got := RedactCode(tt.input); got != tt.expected {
			t.Errorf("RedactCode(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}
