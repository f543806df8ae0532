// Package accesscode generates and validates invitation codes of the form
// KEL-XXXX-XXXX. Codes gate public access to the newsletter site; each is
// consumable exactly once.
package accesscode

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"
)

// Prefix is the fixed leading block of every code.
const Prefix = "KEL"

var codePattern = regexp.MustCompile(`^KEL-[A-Z0-9]{4}-[A-Z0-9]{4}$`)

// Generate returns a fresh random code, e.g. "KEL-4F2A-9C1B".
func Generate() (string, error) {
	buf := make([]byte, 4)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("reading random bytes: %w", err)
	}
	h := strings.ToUpper(hex.EncodeToString(buf))
	return fmt.Sprintf("%s-%s-%s", Prefix, h[:4], h[4:]), nil
}

// Normalize strips whitespace and uppercases a user-entered code so that
// "kel-4f2a-9c1b " and "KEL-4F2A-9C1B" compare equal.
func Normalize(code string) string {
	return strings.ToUpper(strings.Join(strings.Fields(code), ""))
}

// ValidFormat reports whether a normalized code matches the expected shape.
func ValidFormat(code string) bool {
	return codePattern.MatchString(code)
}

// GenerateBatch returns n distinct codes. Collisions within the batch are
// regenerated; cross-batch uniqueness is enforced by the store's
// conditional put.
func GenerateBatch(n int) ([]string, error) {
	seen := make(map[string]struct{}, n)
	codes := make([]string, 0, n)
	for len(codes) < n {
		code, err := Generate()
		if err != nil {
			return nil, err
		}
		if _, dup := seen[code]; dup {
			continue
		}
		seen[code] = struct{}{}
		codes = append(codes, code)
	}
	return codes, nil
}
