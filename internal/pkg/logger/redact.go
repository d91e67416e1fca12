package logger

import "strings"

// RedactEmail masks an email address for safe logging.
// "liquid.dnb@example.com" → "li***@example.com"
// Short local parts (≤2 chars) are fully masked: "dj@example.com" → "***@example.com"
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
