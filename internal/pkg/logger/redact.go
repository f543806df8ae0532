package logger

import (
	"regexp"
	"strings"
)

// RedactEmail masks an email address for safe logging.
// "john.doe@example.com" → "jo***@example.com"
// Short local parts (≤2 chars) are fully masked: "ab@example.com" → "***@example.com"
func RedactEmail(email string) string {
	parts := strings.Split(email, "@")
	if len(parts) != 2 {
		return "***@***"
	}
	name := parts[0]
	if len(name) > 2 {
		return name[:2] + "***@" + parts[1]
	}
	return "***@" + parts[1]
}

var codeRegex = regexp.MustCompile(`(?i)KEL-[A-Z0-9]{4}-[A-Z0-9]{4}`)

// RedactCode masks an invitation access code for safe logging, keeping the
// first block so coordinated debugging with an admin is still possible.
// "KEL-A1B2-C3D4" → "KEL-A1B2-****"
func RedactCode(code string) string {
	if !codeRegex.MatchString(code) {
		return code
	}
	return codeRegex.ReplaceAllStringFunc(code, func(m string) string {
		return m[:len(m)-4] + "****"
	})
}
